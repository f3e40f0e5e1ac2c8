package diag

import (
	"runtime"

	"volt/internal/source"
)

// Builder stages one in-flight diagnostic. Every builder must be resolved
// by exactly one of Emit, Cancel, Buffer or DelayAsBug; a builder that is
// garbage-collected unresolved escalates to an internal bug, so diagnostics
// cannot be silently dropped by forgetting to send them.
//
// Builder не потокобезопасен: его заполняет и завершает один поток.
// Handler, в который он отправляет, разделяемый.
type Builder struct {
	handler          *Handler
	diag             *Diagnostic
	allowSuggestions bool
	tracked          bool
}

func newBuilder(h *Handler, level Level, msg string) *Builder {
	b := &Builder{
		handler:          h,
		diag:             NewDiagnostic(level, msg),
		allowSuggestions: true,
	}
	if level != LevelCancelled {
		b.tracked = true
		h.trackBuilder()
		runtime.SetFinalizer(b, (*Builder).finalize)
	}
	return b
}

// resolve releases the must-emit obligation. Idempotent.
func (b *Builder) resolve() {
	if b.tracked {
		b.tracked = false
		b.handler.builderResolved()
	}
	runtime.SetFinalizer(b, nil)
}

// finalize fires when an unresolved builder is collected: it reports the
// dropped diagnostic and escalates. Cancelled builders pass silently, which
// covers pre-cancelled warnings under суппрессией. Builders unwound by a
// session abort pass silently too, they are casualties, not leaks.
func (b *Builder) finalize() {
	if b.diag.Cancelled() || b.handler.isAborted() {
		return
	}
	b.handler.EmitDiagnostic(NewDiagnostic(LevelBug,
		"the following error was constructed but not emitted"))
	b.handler.EmitDiagnostic(b.diag)
	// Разряжаем бомбу до паники: повторный вызов должен быть тихим.
	b.resolve()
	b.diag.Cancel()
	panic(ExplicitBug{})
}

// Diag exposes the staged diagnostic.
func (b *Builder) Diag() *Diagnostic { return b.diag }

// Emit sends the diagnostic through the handler pipeline and cancels the
// builder, so a second Emit is a no-op. The cancel is deferred so the
// builder resolves even when the pipeline unwinds under treat-err-as-bug.
func (b *Builder) Emit() {
	defer b.Cancel()
	b.handler.EmitDiagnostic(b.diag)
}

// EmitUnless emits, or delays as a bug when delay is set (используется,
// когда рядом уже есть пользовательская ошибка, объясняющая эту).
func (b *Builder) EmitUnless(delay bool) {
	if delay {
		b.DelayAsBug()
		return
	}
	b.Emit()
}

// Cancel discards the diagnostic and releases the builder.
func (b *Builder) Cancel() {
	b.diag.Cancel()
	b.resolve()
}

// Cancelled reports whether the staged diagnostic was cancelled.
func (b *Builder) Cancelled() bool { return b.diag.Cancelled() }

// Buffer moves the diagnostic into the bag instead of emitting. Under
// DontBufferDiagnostics or TreatErrAsBug the buffering step is skipped and
// the diagnostic is emitted immediately, which keeps failure points close
// to their cause when debugging the compiler itself.
func (b *Builder) Buffer(bag *Bag) {
	if b.handler.flags.DontBufferDiagnostics || b.handler.flags.TreatErrAsBug > 0 {
		b.Emit()
		return
	}
	d := b.diag
	b.diag = NewDiagnostic(LevelCancelled, "")
	b.resolve()
	bag.Add(d)
}

// DelayAsBug demotes the diagnostic to a delayed bug: it only surfaces at
// session close if no ordinary errors were reported.
func (b *Builder) DelayAsBug() {
	b.diag.Level = LevelBug
	b.handler.delayAsBug(b.diag.Clone())
	b.Cancel()
}

// AllowSuggestions toggles whether suggestion calls attach anything.
// Полезно при редактировании сгенерированного кода, где подсказки бьют
// мимо настоящего исходника.
func (b *Builder) AllowSuggestions(allow bool) *Builder {
	b.allowSuggestions = allow
	return b
}

// WithCode attaches an error code.
func (b *Builder) WithCode(code Code) *Builder {
	b.diag.WithCode(code)
	return b
}

// SetSpan replaces the primary location.
func (b *Builder) SetSpan(span source.Span) *Builder {
	b.diag.SetSpan(span)
	return b
}

// SetMultiSpan replaces the whole location set.
func (b *Builder) SetMultiSpan(ms MultiSpan) *Builder {
	b.diag.SetMultiSpan(ms)
	return b
}

// SpanLabel annotates one span with inline text.
func (b *Builder) SpanLabel(span source.Span, text string) *Builder {
	b.diag.SpanLabel(span, text)
	return b
}

// Note appends a child note.
func (b *Builder) Note(msg string) *Builder {
	b.diag.Note(msg)
	return b
}

// SpanNote appends a child note pointing at a span.
func (b *Builder) SpanNote(span source.Span, msg string) *Builder {
	b.diag.SpanNote(span, msg)
	return b
}

// Help appends a child help message.
func (b *Builder) Help(msg string) *Builder {
	b.diag.Help(msg)
	return b
}

// SpanHelp appends a child help message pointing at a span.
func (b *Builder) SpanHelp(span source.Span, msg string) *Builder {
	b.diag.SpanHelp(span, msg)
	return b
}

// Warn appends a child warning.
func (b *Builder) Warn(msg string) *Builder {
	b.diag.Warn(msg)
	return b
}

// NoteExpectedFound appends the standard expected/found note pair.
func (b *Builder) NoteExpectedFound(expected, found string) *Builder {
	b.diag.NoteExpectedFound(expected, found)
	return b
}

// SpanSuggestion attaches a single-span replacement suggestion.
func (b *Builder) SpanSuggestion(span source.Span, msg, snippet string, app Applicability) *Builder {
	if !b.allowSuggestions {
		return b
	}
	b.diag.SpanSuggestion(span, msg, snippet, app)
	return b
}

// SpanSuggestionShort attaches a suggestion rendered without its snippet.
func (b *Builder) SpanSuggestionShort(span source.Span, msg, snippet string, app Applicability) *Builder {
	if !b.allowSuggestions {
		return b
	}
	b.diag.SpanSuggestionShort(span, msg, snippet, app)
	return b
}

// SpanSuggestionHidden attaches a suggestion never rendered inline.
func (b *Builder) SpanSuggestionHidden(span source.Span, msg, snippet string, app Applicability) *Builder {
	if !b.allowSuggestions {
		return b
	}
	b.diag.SpanSuggestionHidden(span, msg, snippet, app)
	return b
}

// ToolOnlySpanSuggestion attaches a suggestion visible only to tooling.
func (b *Builder) ToolOnlySpanSuggestion(span source.Span, msg, snippet string, app Applicability) *Builder {
	if !b.allowSuggestions {
		return b
	}
	b.diag.ToolOnlySpanSuggestion(span, msg, snippet, app)
	return b
}

// MultipartSuggestion attaches a suggestion whose parts apply together.
func (b *Builder) MultipartSuggestion(msg string, parts []SubstitutionPart, app Applicability) *Builder {
	if !b.allowSuggestions {
		return b
	}
	b.diag.MultipartSuggestion(msg, parts, app)
	return b
}
