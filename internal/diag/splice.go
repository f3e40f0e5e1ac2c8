package diag

import (
	"sort"
	"strings"
	"unicode/utf8"

	"volt/internal/source"
)

// SplicedSubstitution is one substitution rendered into the full replacement
// text of the lines it touches. Parts are kept alongside so the renderer can
// highlight the changed regions.
type SplicedSubstitution struct {
	Text       string
	Parts      []SubstitutionPart
	Highlights []SpliceHighlight
}

// SpliceHighlight marks where one snippet segment landed in the spliced
// text: 0-based line within Text, rune columns, end exclusive. Insert
// distinguishes pure insertions from replacements.
type SpliceHighlight struct {
	Line     int
	StartCol int
	EndCol   int
	Insert   bool
}

// spliceCursor tracks the output position while the replacement text is
// being assembled.
type spliceCursor struct {
	line int
	col  int
}

func (c *spliceCursor) write(buf *strings.Builder, s string) {
	buf.WriteString(s)
	for _, r := range s {
		if r == '\n' {
			c.line++
			c.col = 0
		} else {
			c.col++
		}
	}
}

// Splice reconstructs every substitution of the suggestion against the files
// in fs. The result covers the lines from the first affected line through the
// last; untouched text on those lines is copied verbatim between the spliced
// snippets.
//
// Позиции внутри строки считаем в рунах, не в байтах, чтобы совпадать с
// колонками в остальном выводе.
func (cs *CodeSuggestion) Splice(fs *source.FileSet) ([]SplicedSubstitution, bool) {
	out := make([]SplicedSubstitution, 0, len(cs.Substitutions))
	for _, sub := range cs.Substitutions {
		if len(sub.Parts) == 0 {
			continue
		}
		parts := make([]SubstitutionPart, len(sub.Parts))
		copy(parts, sub.Parts)
		// Части предполагаются непересекающимися; сортировка по началу.
		sort.SliceStable(parts, func(i, j int) bool {
			return parts[i].Span.Start < parts[j].Span.Start
		})

		if int(parts[0].Span.File) >= fs.Len() {
			return nil, false
		}
		file := fs.Get(parts[0].Span.File)

		var buf strings.Builder
		var cursor spliceCursor
		var highlights []SpliceHighlight
		prevLine := file.PositionFor(parts[0].Span.Start).Line
		prevCol := 0 // phantom anchor at the start of the first line

		for i := range parts {
			part := &parts[i]
			curPos := file.PositionFor(part.Span.Start)
			curCol := runeCol(file, curPos)
			if prevLine == curPos.Line {
				line := file.GetLine(prevLine)
				cursor.write(&buf, runeSlice(line, prevCol, curCol))
			} else {
				line := file.GetLine(prevLine)
				cursor.write(&buf, runeSuffix(line, prevCol))
				cursor.write(&buf, "\n")
				for l := prevLine + 1; l < curPos.Line; l++ {
					cursor.write(&buf, file.GetLine(l))
					cursor.write(&buf, "\n")
				}
				cursor.write(&buf, runePrefix(file.GetLine(curPos.Line), curCol))
			}
			snipLine, snipCol := cursor.line, cursor.col
			cursor.write(&buf, part.Snippet)
			for j, seg := range strings.Split(part.Snippet, "\n") {
				start := 0
				if j == 0 {
					start = snipCol
				}
				if n := utf8.RuneCountInString(seg); n > 0 {
					highlights = append(highlights, SpliceHighlight{
						Line:     snipLine + j,
						StartCol: start,
						EndCol:   start + n,
						Insert:   part.Span.Empty(),
					})
				}
			}

			endPos := file.PositionFor(part.Span.End)
			prevLine = endPos.Line
			prevCol = runeCol(file, endPos)
		}

		// Хвост последней строки, если замена не закончилась переводом
		// строки (иначе в подсказке появится лишняя пустая строка).
		text := buf.String()
		if !strings.HasSuffix(text, "\n") {
			buf.WriteString(runeSuffix(file.GetLine(prevLine), prevCol))
			buf.WriteByte('\n')
			text = buf.String()
		}
		text = strings.TrimRight(text, "\n")
		out = append(out, SplicedSubstitution{Text: text, Parts: parts, Highlights: highlights})
	}
	if len(out) == 0 {
		return nil, false
	}
	return out, true
}

// runeCol converts a byte column (1-based) into a 0-based rune column on the
// position's line.
func runeCol(f *source.File, pos source.LineCol) int {
	line := f.GetLine(pos.Line)
	byteCol := int(pos.Col) - 1
	if byteCol < 0 {
		byteCol = 0
	}
	if byteCol > len(line) {
		byteCol = len(line)
	}
	return utf8.RuneCountInString(line[:byteCol])
}

// runeIndex returns the byte index of the n-th rune, clamped to len(line).
func runeIndex(line string, n int) int {
	if n <= 0 {
		return 0
	}
	count := 0
	for i := range line {
		if count == n {
			return i
		}
		count++
	}
	return len(line)
}

func runeSlice(line string, lo, hi int) string {
	return line[runeIndex(line, lo):runeIndex(line, hi)]
}

func runePrefix(line string, n int) string {
	return line[:runeIndex(line, n)]
}

func runeSuffix(line string, n int) string {
	return line[runeIndex(line, n):]
}
