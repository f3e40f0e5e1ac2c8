package diagfmt

import (
	"encoding/json"
	"io"
	"strings"

	"volt/internal/diag"
	"volt/internal/source"
)

// LocationJSON pins a span to a file: byte offsets always, line/col when
// JSONOpts.IncludePositions is set. Columns are 1-based bytes, same as the
// positions in short output.
type LocationJSON struct {
	File      string `json:"file"`
	StartByte uint32 `json:"start_byte"`
	EndByte   uint32 `json:"end_byte"`
	StartLine uint32 `json:"start_line,omitempty"`
	StartCol  uint32 `json:"start_col,omitempty"`
	EndLine   uint32 `json:"end_line,omitempty"`
	EndCol    uint32 `json:"end_col,omitempty"`
}

// SpanJSON is one annotated region of a diagnostic.
type SpanJSON struct {
	LocationJSON
	Primary bool   `json:"is_primary"`
	Label   string `json:"label,omitempty"`
}

// ChildJSON is a sub-message (note/help) of a diagnostic.
type ChildJSON struct {
	Level   string     `json:"level"`
	Message string     `json:"message"`
	Spans   []SpanJSON `json:"spans,omitempty"`
}

// SubstitutionPartJSON is a single span-to-snippet edit.
type SubstitutionPartJSON struct {
	LocationJSON
	Snippet string `json:"snippet"`
}

// SubstitutionJSON is one complete rewrite variant. Rendered holds the
// affected lines with the edits applied, when they could be reconstructed.
type SubstitutionJSON struct {
	Parts    []SubstitutionPartJSON `json:"parts"`
	Rendered string                 `json:"rendered,omitempty"`
}

// SuggestionJSON is a structured fix attached to a diagnostic.
type SuggestionJSON struct {
	Message       string             `json:"message"`
	Applicability string             `json:"applicability"`
	Substitutions []SubstitutionJSON `json:"substitutions"`
}

// DiagnosticJSON mirrors diag.Diagnostic for machine consumers.
type DiagnosticJSON struct {
	Level    string           `json:"level"`
	Code     string           `json:"code,omitempty"`
	Message  string           `json:"message"`
	Spans    []SpanJSON       `json:"spans,omitempty"`
	Children []ChildJSON      `json:"children,omitempty"`
	Fixes    []SuggestionJSON `json:"fixes,omitempty"`
	Rendered string           `json:"rendered,omitempty"`
}

// DiagnosticsOutput is the top-level JSON document.
// Count and Errors всегда считаются по всему Bag, даже если Max
// обрезал список.
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
	Errors      int              `json:"errors"`
}

// jsonLevel keeps level names stable for machine output; Level.String is a
// display string and folds several levels into "error".
func jsonLevel(l diag.Level) string {
	switch l {
	case diag.LevelBug:
		return "bug"
	case diag.LevelFatal:
		return "fatal"
	case diag.LevelError:
		return "error"
	case diag.LevelWarning:
		return "warning"
	case diag.LevelNote:
		return "note"
	case diag.LevelHelp:
		return "help"
	case diag.LevelFailureNote:
		return "failure-note"
	default:
		return l.String()
	}
}

func makeLocation(sp source.Span, fs *source.FileSet, opts JSONOpts) LocationJSON {
	loc := LocationJSON{StartByte: sp.Start, EndByte: sp.End}
	if fs == nil || int(sp.File) >= fs.Len() {
		return loc
	}
	f := fs.Get(sp.File)
	loc.File = pathFor(f, fs, opts.PathMode)
	if opts.IncludePositions {
		start := f.PositionFor(sp.Start)
		end := f.PositionFor(sp.End)
		loc.StartLine, loc.StartCol = start.Line, start.Col
		loc.EndLine, loc.EndCol = end.Line, end.Col
	}
	return loc
}

// makeSpans flattens a MultiSpan: labeled spans carry their text, primary
// spans without a label follow bare.
func makeSpans(ms *diag.MultiSpan, fs *source.FileSet, opts JSONOpts) []SpanJSON {
	var spans []SpanJSON
	labeled := make(map[source.Span]bool)
	for _, l := range ms.Labels {
		labeled[l.Span] = true
		spans = append(spans, SpanJSON{
			LocationJSON: makeLocation(l.Span, fs, opts),
			Primary:      ms.IsPrimary(l.Span),
			Label:        l.Text,
		})
	}
	for _, sp := range ms.Primary {
		if labeled[sp] {
			continue
		}
		spans = append(spans, SpanJSON{
			LocationJSON: makeLocation(sp, fs, opts),
			Primary:      true,
		})
	}
	return spans
}

func makeSuggestion(s *diag.CodeSuggestion, fs *source.FileSet, opts JSONOpts) SuggestionJSON {
	out := SuggestionJSON{
		Message:       s.Message,
		Applicability: s.Applicability.String(),
	}
	var spliced []diag.SplicedSubstitution
	if fs != nil {
		spliced, _ = s.Splice(fs)
	}
	si := 0
	for _, sub := range s.Substitutions {
		sj := SubstitutionJSON{}
		for _, part := range sub.Parts {
			sj.Parts = append(sj.Parts, SubstitutionPartJSON{
				LocationJSON: makeLocation(part.Span, fs, opts),
				Snippet:      part.Snippet,
			})
		}
		// Splice пропускает пустые подстановки, поэтому индексы
		// выравниваются вручную.
		if len(sub.Parts) > 0 && si < len(spliced) {
			sj.Rendered = spliced[si].Text
			si++
		}
		out.Substitutions = append(out.Substitutions, sj)
	}
	return out
}

func makeDiagnostic(d *diag.Diagnostic, fs *source.FileSet, opts JSONOpts) DiagnosticJSON {
	out := DiagnosticJSON{
		Level:   jsonLevel(d.Level),
		Message: d.Message,
		Spans:   makeSpans(&d.Span, fs, opts),
	}
	if d.Code != diag.NoCode {
		out.Code = d.Code.ID()
	}
	if opts.IncludeNotes {
		for i := range d.Children {
			c := &d.Children[i]
			out.Children = append(out.Children, ChildJSON{
				Level:   jsonLevel(c.Level),
				Message: c.Message,
				Spans:   makeSpans(&c.Span, fs, opts),
			})
		}
	}
	if opts.IncludeFixes {
		for i := range d.Suggestions {
			s := &d.Suggestions[i]
			out.Fixes = append(out.Fixes, makeSuggestion(s, fs, opts))
		}
	}
	if opts.IncludeRendered {
		var sb strings.Builder
		popts := PrettyOpts{
			PathMode:  opts.PathMode,
			ShowNotes: opts.IncludeNotes,
			ShowFixes: opts.IncludeFixes,
		}
		newPrettyRenderer(&errWriter{w: &sb}, fs, popts, newPalette(false)).render(d)
		out.Rendered = sb.String()
	}
	return out
}

// BuildDiagnosticsOutput собирает документ без сериализации, чтобы
// встраивающий код мог дополнить его своими полями.
func BuildDiagnosticsOutput(bag *diag.Bag, fs *source.FileSet, opts JSONOpts) DiagnosticsOutput {
	out := DiagnosticsOutput{
		Diagnostics: []DiagnosticJSON{},
		Count:       bag.Len(),
	}
	for _, d := range bag.Items() {
		if d.IsError() {
			out.Errors++
		}
		if opts.Max > 0 && len(out.Diagnostics) == opts.Max {
			continue
		}
		out.Diagnostics = append(out.Diagnostics, makeDiagnostic(d, fs, opts))
	}
	return out
}

// JSON writes the whole bag as one indented document.
func JSON(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts JSONOpts) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(BuildDiagnosticsOutput(bag, fs, opts))
}

// JSONEmitter streams one JSON object per diagnostic (NDJSON), for editors
// and CI that consume output as it happens.
type JSONEmitter struct {
	w    io.Writer
	fs   *source.FileSet
	opts JSONOpts
	err  error
}

func NewJSONEmitter(w io.Writer, fs *source.FileSet, opts JSONOpts) *JSONEmitter {
	return &JSONEmitter{w: w, fs: fs, opts: opts}
}

func (e *JSONEmitter) Emit(d *diag.Diagnostic) {
	if e.err != nil {
		return
	}
	e.err = json.NewEncoder(e.w).Encode(makeDiagnostic(d, e.fs, e.opts))
}

// Err returns the first write error, if any.
func (e *JSONEmitter) Err() error { return e.err }

// ShouldShowExplain: машинный вывод не приглашает к `volt explain`.
func (e *JSONEmitter) ShouldShowExplain() bool { return false }
