package diag

import (
	"fmt"
	"strings"

	"volt/internal/source"
)

// FormatShort renders one diagnostic as a single line:
//
//	main.vt:3:5: error[TYP3308]: mismatched types
//
// Used by the short output mode and by tests; the annotated multi-line view
// lives in internal/diagfmt.
func FormatShort(d *Diagnostic, fs *source.FileSet) string {
	var sb strings.Builder
	if sp, ok := d.Span.PrimarySpan(); ok && fs != nil && int(sp.File) < fs.Len() {
		f := fs.Get(sp.File)
		pos := f.PositionFor(sp.Start)
		fmt.Fprintf(&sb, "%s:%d:%d: ", f.Path, pos.Line, pos.Col)
	}
	sb.WriteString(d.Level.String())
	if d.Code != NoCode {
		fmt.Fprintf(&sb, "[%s]", d.Code.ID())
	}
	sb.WriteString(": ")
	sb.WriteString(d.Message)
	return sb.String()
}
