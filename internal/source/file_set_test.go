package source

import (
	"testing"
)

func TestResolveLineCol(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("test.vt", []byte("let a = 1;\nlet b = 2;\n\nmatch a {}\n"))

	cases := []struct {
		off  uint32
		line uint32
		col  uint32
	}{
		{0, 1, 1},   // 'l' первой строки
		{4, 1, 5},   // 'a'
		{10, 1, 11}, // сам '\n' принадлежит первой строке
		{11, 2, 1},  // начало второй строки
		{15, 2, 5},  // 'b'
		{22, 3, 1},  // пустая строка
		{23, 4, 1},  // 'm' в match
	}
	for _, tc := range cases {
		start, _ := fs.Resolve(Span{File: id, Start: tc.off, End: tc.off})
		if start.Line != tc.line || start.Col != tc.col {
			t.Errorf("Resolve(%d) = %d:%d, want %d:%d", tc.off, start.Line, start.Col, tc.line, tc.col)
		}
	}
}

func TestGetLine(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("test.vt", []byte("first\nsecond\nthird"))
	f := fs.Get(id)

	if got := f.GetLine(1); got != "first" {
		t.Errorf("GetLine(1) = %q, want %q", got, "first")
	}
	if got := f.GetLine(2); got != "second" {
		t.Errorf("GetLine(2) = %q, want %q", got, "second")
	}
	if got := f.GetLine(3); got != "third" {
		t.Errorf("GetLine(3) = %q, want %q", got, "third")
	}
	if got := f.GetLine(4); got != "" {
		t.Errorf("GetLine(4) = %q, want empty", got)
	}
	if got := f.GetLine(0); got != "" {
		t.Errorf("GetLine(0) = %q, want empty", got)
	}
	if n := f.LineCount(); n != 3 {
		t.Errorf("LineCount = %d, want 3", n)
	}
}

func TestSnippet(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("test.vt", []byte("match x { _ => {} }"))

	if s, ok := fs.Snippet(Span{File: id, Start: 6, End: 7}); !ok || s != "x" {
		t.Errorf("Snippet = %q, %v; want \"x\", true", s, ok)
	}
	if _, ok := fs.Snippet(Span{File: id, Start: 5, End: 200}); ok {
		t.Error("out-of-range snippet must report not-available")
	}
	if _, ok := fs.Snippet(Span{File: id, Start: 9, End: 7}); ok {
		t.Error("inverted snippet must report not-available")
	}
}

func TestDecodeSourceUTF8BOM(t *testing.T) {
	content, flags, err := DecodeSource([]byte{0xEF, 0xBB, 0xBF, 'l', 'e', 't'})
	if err != nil {
		t.Fatalf("DecodeSource: %v", err)
	}
	if string(content) != "let" {
		t.Errorf("content = %q, want %q", content, "let")
	}
	if flags&FileHadBOM == 0 {
		t.Error("FileHadBOM must be set")
	}
	if flags&FileDecodedUTF16 != 0 {
		t.Error("FileDecodedUTF16 must not be set for UTF-8 input")
	}
}

func TestDecodeSourceUTF16(t *testing.T) {
	// "ok" в UTF-16 LE с BOM
	raw := []byte{0xFF, 0xFE, 'o', 0x00, 'k', 0x00}
	content, flags, err := DecodeSource(raw)
	if err != nil {
		t.Fatalf("DecodeSource: %v", err)
	}
	if string(content) != "ok" {
		t.Errorf("content = %q, want %q", content, "ok")
	}
	if flags&FileDecodedUTF16 == 0 || flags&FileHadBOM == 0 {
		t.Errorf("flags = %b, want UTF16+BOM set", flags)
	}

	// то же самое в big-endian
	raw = []byte{0xFE, 0xFF, 0x00, 'o', 0x00, 'k'}
	content, _, err = DecodeSource(raw)
	if err != nil {
		t.Fatalf("DecodeSource BE: %v", err)
	}
	if string(content) != "ok" {
		t.Errorf("BE content = %q, want %q", content, "ok")
	}
}

func TestDecodeSourceCRLF(t *testing.T) {
	content, flags, err := DecodeSource([]byte("a\r\nb\rc"))
	if err != nil {
		t.Fatalf("DecodeSource: %v", err)
	}
	if string(content) != "a\nb\rc" {
		t.Errorf("content = %q, want %q", content, "a\nb\rc")
	}
	if flags&FileNormalizedCRLF == 0 {
		t.Error("FileNormalizedCRLF must be set")
	}
}

func TestGetLatest(t *testing.T) {
	fs := NewFileSet()
	first := fs.AddVirtual("same.vt", []byte("v1"))
	second := fs.AddVirtual("same.vt", []byte("v2"))
	if first == second {
		t.Fatal("re-adding a path must allocate a fresh FileID")
	}
	latest, ok := fs.GetLatest("same.vt")
	if !ok || latest != second {
		t.Errorf("GetLatest = %d, %v; want %d, true", latest, ok, second)
	}
}
