package parser_test

import (
	"bytes"
	"testing"

	"volt/internal/ast"
	"volt/internal/diag"
	"volt/internal/lexer"
	"volt/internal/parser"
	"volt/internal/source"
)

func benchParse(b *testing.B, program []byte) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("bench.vt", program)
	file := fs.Get(fileID)

	b.ReportAllocs()
	b.ResetTimer()

	for b.Loop() {
		builder := ast.NewBuilder(ast.Hints{})
		bag := diag.NewBag()
		handler := diag.NewHandler(diag.DefaultFlags(), diag.NewBagEmitter(bag))
		lx := lexer.New(file, handler)
		parser.ParseFile(lx, builder, handler, parser.Options{})
	}
}

func BenchmarkParseShort(b *testing.B) {
	src := []byte(`fn main() { let x = 1; }`)
	benchParse(b, src)
}

func BenchmarkParseLarge(b *testing.B) {
	var buf bytes.Buffer
	for i := range 2000 {
		buf.WriteString("fn f")
		buf.WriteByte(byte('a' + (i % 26)))
		buf.WriteString("() { let x: int = 1; }\n")
	}
	benchParse(b, buf.Bytes())
}

func BenchmarkParseMatchHeavy(b *testing.B) {
	var buf bytes.Buffer
	for i := range 500 {
		buf.WriteString("fn m")
		buf.WriteByte(byte('a' + (i % 26)))
		buf.WriteString(`() -> int {
	match value {
		0 => 1,
		1..10 => 2,
		Point { x, y: 0 } => x,
		(a, .., b) => a,
		[first, rest @ .., last] => first,
		_ => 0,
	}
}
`)
	}
	benchParse(b, buf.Bytes())
}
