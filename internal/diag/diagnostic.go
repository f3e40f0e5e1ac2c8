package diag

import (
	"crypto/sha256"
	"encoding/binary"
	"io"

	"volt/internal/source"
)

// SpanLabel attaches explanatory text to one span of a MultiSpan.
type SpanLabel struct {
	Span source.Span
	Text string
}

// MultiSpan is the set of source locations one diagnostic points at:
// primary spans carry the main underline, labels add inline annotations.
type MultiSpan struct {
	Primary []source.Span
	Labels  []SpanLabel
}

// MultiSpanFrom builds a MultiSpan with a single primary span.
func MultiSpanFrom(span source.Span) MultiSpan {
	return MultiSpan{Primary: []source.Span{span}}
}

// PrimarySpan returns the first primary span.
func (ms *MultiSpan) PrimarySpan() (source.Span, bool) {
	if len(ms.Primary) == 0 {
		return source.Span{}, false
	}
	return ms.Primary[0], true
}

// HasPrimary reports whether any primary span is attached.
func (ms *MultiSpan) HasPrimary() bool { return len(ms.Primary) > 0 }

// IsPrimary reports whether the given span is one of the primary spans.
func (ms *MultiSpan) IsPrimary(span source.Span) bool {
	for _, p := range ms.Primary {
		if p == span {
			return true
		}
	}
	return false
}

// AddPrimary appends one more primary span.
func (ms *MultiSpan) AddPrimary(span source.Span) {
	ms.Primary = append(ms.Primary, span)
}

// PushLabel annotates a span. The span does not have to be primary.
func (ms *MultiSpan) PushLabel(span source.Span, text string) {
	ms.Labels = append(ms.Labels, SpanLabel{Span: span, Text: text})
}

func (ms *MultiSpan) clone() MultiSpan {
	out := MultiSpan{}
	if len(ms.Primary) > 0 {
		out.Primary = make([]source.Span, len(ms.Primary))
		copy(out.Primary, ms.Primary)
	}
	if len(ms.Labels) > 0 {
		out.Labels = make([]SpanLabel, len(ms.Labels))
		copy(out.Labels, ms.Labels)
	}
	return out
}

// SubDiagnostic is a child message (note/help/warning) hanging off a parent
// diagnostic. It never carries a code or suggestions of its own.
type SubDiagnostic struct {
	Level   Level
	Message string
	Span    MultiSpan
}

// Diagnostic is one complete report: a level, a message, the spans it points
// at, child notes and structured suggestions. Построение идёт через
// chainable-методы, отправка — через Handler или Builder.
type Diagnostic struct {
	Level       Level
	Message     string
	Code        Code
	Span        MultiSpan
	Children    []SubDiagnostic
	Suggestions []CodeSuggestion
}

// NewDiagnostic creates a detached diagnostic. Most callers should go
// through the Handler's Struct* constructors instead.
func NewDiagnostic(level Level, msg string) *Diagnostic {
	return &Diagnostic{Level: level, Message: msg}
}

// WithCode attaches an error code.
func (d *Diagnostic) WithCode(code Code) *Diagnostic {
	d.Code = code
	return d
}

// SetSpan replaces the primary location.
func (d *Diagnostic) SetSpan(span source.Span) *Diagnostic {
	d.Span = MultiSpanFrom(span)
	return d
}

// SetMultiSpan replaces the whole location set.
func (d *Diagnostic) SetMultiSpan(ms MultiSpan) *Diagnostic {
	d.Span = ms
	return d
}

// SpanLabel annotates one span with inline text.
func (d *Diagnostic) SpanLabel(span source.Span, text string) *Diagnostic {
	d.Span.PushLabel(span, text)
	return d
}

func (d *Diagnostic) sub(level Level, msg string, ms MultiSpan) *Diagnostic {
	d.Children = append(d.Children, SubDiagnostic{Level: level, Message: msg, Span: ms})
	return d
}

// Note appends a child note without a location.
func (d *Diagnostic) Note(msg string) *Diagnostic {
	return d.sub(LevelNote, msg, MultiSpan{})
}

// SpanNote appends a child note pointing at a span.
func (d *Diagnostic) SpanNote(span source.Span, msg string) *Diagnostic {
	return d.sub(LevelNote, msg, MultiSpanFrom(span))
}

// Help appends a child help message without a location.
func (d *Diagnostic) Help(msg string) *Diagnostic {
	return d.sub(LevelHelp, msg, MultiSpan{})
}

// SpanHelp appends a child help message pointing at a span.
func (d *Diagnostic) SpanHelp(span source.Span, msg string) *Diagnostic {
	return d.sub(LevelHelp, msg, MultiSpanFrom(span))
}

// Warn appends a child warning.
func (d *Diagnostic) Warn(msg string) *Diagnostic {
	return d.sub(LevelWarning, msg, MultiSpan{})
}

// NoteExpectedFound appends the standard two-line expected/found note.
func (d *Diagnostic) NoteExpectedFound(expected, found string) *Diagnostic {
	d.Note("expected type `" + expected + "`")
	return d.Note("   found type `" + found + "`")
}

// SpanSuggestion attaches a single-span replacement suggestion.
func (d *Diagnostic) SpanSuggestion(span source.Span, msg, snippet string, app Applicability) *Diagnostic {
	return d.suggest(msg, app, StyleShowCode, Substitution{
		Parts: []SubstitutionPart{{Span: span, Snippet: snippet}},
	})
}

// SpanSuggestionShort attaches a suggestion whose snippet stays out of the
// inline view (the message alone is enough to understand it).
func (d *Diagnostic) SpanSuggestionShort(span source.Span, msg, snippet string, app Applicability) *Diagnostic {
	return d.suggestStyled(msg, app, StyleHideCodeInline, Substitution{
		Parts: []SubstitutionPart{{Span: span, Snippet: snippet}},
	})
}

// SpanSuggestionHidden attaches a suggestion that is never rendered inline.
func (d *Diagnostic) SpanSuggestionHidden(span source.Span, msg, snippet string, app Applicability) *Diagnostic {
	return d.suggestStyled(msg, app, StyleHideCodeAlways, Substitution{
		Parts: []SubstitutionPart{{Span: span, Snippet: snippet}},
	})
}

// ToolOnlySpanSuggestion attaches a suggestion visible only to tools such as
// `volt fix`; human output skips it entirely.
func (d *Diagnostic) ToolOnlySpanSuggestion(span source.Span, msg, snippet string, app Applicability) *Diagnostic {
	return d.suggestStyled(msg, app, StyleCompletelyHidden, Substitution{
		Parts: []SubstitutionPart{{Span: span, Snippet: snippet}},
	})
}

// MultipartSuggestion attaches a suggestion whose parts must be applied
// together (например, вставить открывающую и закрывающую скобку).
func (d *Diagnostic) MultipartSuggestion(msg string, parts []SubstitutionPart, app Applicability) *Diagnostic {
	return d.suggest(msg, app, StyleShowCode, Substitution{Parts: parts})
}

func (d *Diagnostic) suggest(msg string, app Applicability, style SuggestionStyle, sub Substitution) *Diagnostic {
	return d.suggestStyled(msg, app, style, sub)
}

func (d *Diagnostic) suggestStyled(msg string, app Applicability, style SuggestionStyle, sub Substitution) *Diagnostic {
	d.Suggestions = append(d.Suggestions, CodeSuggestion{
		Substitutions: []Substitution{sub},
		Message:       msg,
		Applicability: app,
		Style:         style,
	})
	return d
}

// Cancel marks the diagnostic as cancelled; cancelled diagnostics are
// silently dropped by the Handler.
func (d *Diagnostic) Cancel() { d.Level = LevelCancelled }

// Cancelled reports whether the diagnostic was cancelled.
func (d *Diagnostic) Cancelled() bool { return d.Level == LevelCancelled }

// IsError reports whether the diagnostic counts toward the error tally.
func (d *Diagnostic) IsError() bool { return d.Level.IsError() }

// Clone makes a deep copy; the copy shares no slices with the original.
func (d *Diagnostic) Clone() *Diagnostic {
	out := &Diagnostic{
		Level:   d.Level,
		Message: d.Message,
		Code:    d.Code,
		Span:    d.Span.clone(),
	}
	if len(d.Children) > 0 {
		out.Children = make([]SubDiagnostic, len(d.Children))
		for i := range d.Children {
			out.Children[i] = SubDiagnostic{
				Level:   d.Children[i].Level,
				Message: d.Children[i].Message,
				Span:    d.Children[i].Span.clone(),
			}
		}
	}
	if len(d.Suggestions) > 0 {
		out.Suggestions = make([]CodeSuggestion, len(d.Suggestions))
		for i := range d.Suggestions {
			out.Suggestions[i] = d.Suggestions[i].clone()
		}
	}
	return out
}

// fingerprint hashes everything user-visible about the diagnostic. Two
// diagnostics with the same fingerprint render identically, so only the
// first one reaches the emitter.
func (d *Diagnostic) fingerprint() [32]byte {
	h := sha256.New()
	writeU32 := func(v uint32) {
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], v)
		h.Write(b[:])
	}
	writeStr := func(s string) {
		writeU32(hashLen(s))
		io.WriteString(h, s)
	}
	writeSpan := func(sp source.Span) {
		writeU32(uint32(sp.File))
		writeU32(sp.Start)
		writeU32(sp.End)
	}
	writeMS := func(ms *MultiSpan) {
		writeU32(hashLenN(len(ms.Primary)))
		for _, sp := range ms.Primary {
			writeSpan(sp)
		}
		writeU32(hashLenN(len(ms.Labels)))
		for _, l := range ms.Labels {
			writeSpan(l.Span)
			writeStr(l.Text)
		}
	}

	h.Write([]byte{byte(d.Level)})
	writeU32(uint32(d.Code))
	writeStr(d.Message)
	writeMS(&d.Span)
	writeU32(hashLenN(len(d.Children)))
	for i := range d.Children {
		c := &d.Children[i]
		h.Write([]byte{byte(c.Level)})
		writeStr(c.Message)
		writeMS(&c.Span)
	}
	writeU32(hashLenN(len(d.Suggestions)))
	for i := range d.Suggestions {
		s := &d.Suggestions[i]
		writeStr(s.Message)
		h.Write([]byte{byte(s.Applicability), byte(s.Style)})
		writeU32(hashLenN(len(s.Substitutions)))
		for _, sub := range s.Substitutions {
			writeU32(hashLenN(len(sub.Parts)))
			for _, p := range sub.Parts {
				writeSpan(p.Span)
				writeStr(p.Snippet)
			}
		}
	}

	var sum [32]byte
	h.Sum(sum[:0])
	return sum
}

func hashLen(s string) uint32 { return hashLenN(len(s)) }

// hashLenN folds a length into 32 bits. Длины здесь служат разделителями
// полей, точность сверх 32 бит не нужна.
func hashLenN(n int) uint32 { return uint32(uint64(n)) }
