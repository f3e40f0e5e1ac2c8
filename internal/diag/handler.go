package diag

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"volt/internal/source"
)

// Flags configures session-wide diagnostic policy. Zero value: warnings
// suppressed, errors tolerated, buffering on. Обычный набор для компиляции
// берите из DefaultFlags.
type Flags struct {
	// CanEmitWarnings gates Warning-level output entirely.
	CanEmitWarnings bool

	// TreatErrAsBug aborts with an internal bug once this many errors were
	// reported. 0 disables. Used to get a backtrace at the N-th error when
	// debugging the compiler.
	TreatErrAsBug int

	// DontBufferDiagnostics forces Buffer to emit immediately.
	DontBufferDiagnostics bool

	// ReportDelayedBugs emits delayed bugs at the point of delay instead of
	// only at session close.
	ReportDelayedBugs bool

	// ContinueAfterError keeps a pass going after errors; when unset,
	// AbortIfErrorsAndShouldAbort raises between pass boundaries.
	ContinueAfterError bool

	// WarningsAsErrors promotes warnings to errors before counting.
	WarningsAsErrors bool

	// DenyCodes promotes warnings carrying these codes to errors, a
	// per-code form of WarningsAsErrors. Заполняется из deny-списка
	// манифеста.
	DenyCodes map[Code]struct{}
}

// Deny registers a code in the deny list, allocating it on first use.
func (f *Flags) Deny(c Code) {
	if f.DenyCodes == nil {
		f.DenyCodes = make(map[Code]struct{})
	}
	f.DenyCodes[c] = struct{}{}
}

// DefaultFlags returns the flags used for a normal compilation.
func DefaultFlags() Flags {
	return Flags{CanEmitWarnings: true, ContinueAfterError: true}
}

// Handler is the diagnostic session: it owns counting, deduplication,
// delayed bugs and the teach-once set, and forwards everything that should
// be shown to its Emitter. One Handler is shared by every stage of a
// compilation; all methods are safe for concurrent use.
type Handler struct {
	flags   Flags
	emitter Emitter

	mu            sync.Mutex
	errCount      int // raw error-level emissions, duplicates included
	dedupErrCount int // errors that actually reached the emitter
	emitted       map[[32]byte]struct{}
	emittedCodes  map[Code]struct{}
	delayed       []*Diagnostic
	taught        map[Code]struct{}
	outstanding   int // builders constructed but not yet resolved
	onEmit        func(*Diagnostic)
	closed        bool
	aborted       bool // session unwound; integrity checks stand down
}

// NewHandler creates a session that reports through the given emitter.
func NewHandler(flags Flags, emitter Emitter) *Handler {
	return &Handler{
		flags:        flags,
		emitter:      emitter,
		emitted:      make(map[[32]byte]struct{}),
		emittedCodes: make(map[Code]struct{}),
		taught:       make(map[Code]struct{}),
	}
}

// Flags returns the session policy.
func (h *Handler) Flags() Flags { return h.flags }

// SetTracker installs a hook called for every diagnostic that passes the
// cancellation and warning gates, before dedup. Tooling только; на вывод
// не влияет.
func (h *Handler) SetTracker(fn func(*Diagnostic)) {
	h.mu.Lock()
	h.onEmit = fn
	h.mu.Unlock()
}

// EmitDiagnostic runs the full pipeline: gates, tracking, code recording,
// dedup, rendering, counting. The whole pipeline is atomic with respect to
// other emissions, so structurally identical diagnostics from concurrent
// workers still collapse to a single rendered one.
func (h *Handler) EmitDiagnostic(d *Diagnostic) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.emitLocked(d)
}

func (h *Handler) emitLocked(d *Diagnostic) {
	if d.Cancelled() {
		return
	}
	if d.Level == LevelWarning {
		_, denied := h.flags.DenyCodes[d.Code]
		if h.flags.WarningsAsErrors || denied {
			d = d.Clone()
			d.Level = LevelError
		}
	}
	if d.Level == LevelWarning && !h.flags.CanEmitWarnings {
		return
	}
	if h.onEmit != nil {
		h.onEmit(d)
	}
	if d.Code != NoCode {
		h.emittedCodes[d.Code] = struct{}{}
	}

	fp := d.fingerprint()
	if _, seen := h.emitted[fp]; !seen {
		h.emitted[fp] = struct{}{}
		h.emitter.Emit(d)
		if d.IsError() {
			h.dedupErrCount++
		}
	}
	// Сырой счётчик растёт и для дублей: порог treat-err-as-bug и решение
	// об аварийном выходе считают каждую ошибку, а не каждую напечатанную.
	if d.IsError() {
		h.errCount++
		h.panicIfTreatErrAsBugLocked()
	}
}

func (h *Handler) treatErrAsBugLocked() bool {
	return h.flags.TreatErrAsBug > 0 && h.errCount >= h.flags.TreatErrAsBug
}

func (h *Handler) panicIfTreatErrAsBugLocked() {
	if !h.treatErrAsBugLocked() {
		return
	}
	var msg string
	if h.errCount == 1 && h.flags.TreatErrAsBug == 1 {
		msg = "aborting due to `--treat-err-as-bug=1`"
	} else {
		msg = fmt.Sprintf("aborting after %d errors due to `--treat-err-as-bug=%d`",
			h.errCount, h.flags.TreatErrAsBug)
	}
	h.emitter.Emit(NewDiagnostic(LevelBug, msg))
	h.aborted = true
	panic(ExplicitBug{})
}

func (h *Handler) isAborted() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.aborted
}

func (h *Handler) markAborted() {
	h.mu.Lock()
	h.aborted = true
	h.mu.Unlock()
}

func (h *Handler) trackBuilder() {
	h.mu.Lock()
	h.outstanding++
	h.mu.Unlock()
}

func (h *Handler) builderResolved() {
	h.mu.Lock()
	h.outstanding--
	h.mu.Unlock()
}

// StructDummy returns a pre-cancelled builder: callers can attach to it and
// emit it, nothing will be shown.
func (h *Handler) StructDummy() *Builder {
	return newBuilder(h, LevelCancelled, "")
}

// StructErr stages an error without a location.
func (h *Handler) StructErr(msg string) *Builder {
	return newBuilder(h, LevelError, msg)
}

// StructErrWithCode stages an error with a code.
func (h *Handler) StructErrWithCode(msg string, code Code) *Builder {
	return h.StructErr(msg).WithCode(code)
}

// StructSpanErr stages an error pointing at a span.
func (h *Handler) StructSpanErr(span source.Span, msg string) *Builder {
	return h.StructErr(msg).SetSpan(span)
}

// StructSpanErrWithCode stages an error with a span and a code.
func (h *Handler) StructSpanErrWithCode(span source.Span, msg string, code Code) *Builder {
	return h.StructSpanErr(span, msg).WithCode(code)
}

// StructWarn stages a warning; pre-cancelled when warnings are suppressed,
// so attaching and emitting it stays cheap and silent.
func (h *Handler) StructWarn(msg string) *Builder {
	b := newBuilder(h, LevelWarning, msg)
	if !h.flags.CanEmitWarnings && !h.flags.WarningsAsErrors {
		b.Cancel()
	}
	return b
}

// StructSpanWarn stages a warning pointing at a span.
func (h *Handler) StructSpanWarn(span source.Span, msg string) *Builder {
	return h.StructWarn(msg).SetSpan(span)
}

// StructSpanWarnWithCode stages a warning with a span and a code.
func (h *Handler) StructSpanWarnWithCode(span source.Span, msg string, code Code) *Builder {
	return h.StructSpanWarn(span, msg).WithCode(code)
}

// StructFatal stages a fatal error.
func (h *Handler) StructFatal(msg string) *Builder {
	return newBuilder(h, LevelFatal, msg)
}

// StructSpanFatal stages a fatal error pointing at a span.
func (h *Handler) StructSpanFatal(span source.Span, msg string) *Builder {
	return h.StructFatal(msg).SetSpan(span)
}

// StructSpanFatalWithCode stages a fatal error with a span and a code.
func (h *Handler) StructSpanFatalWithCode(span source.Span, msg string, code Code) *Builder {
	return h.StructSpanFatal(span, msg).WithCode(code)
}

// SpanErr emits an error at a span.
func (h *Handler) SpanErr(span source.Span, msg string) {
	h.StructSpanErr(span, msg).Emit()
}

// SpanErrWithCode emits a coded error at a span.
func (h *Handler) SpanErrWithCode(span source.Span, msg string, code Code) {
	h.StructSpanErrWithCode(span, msg, code).Emit()
}

// Err emits an error without a location.
func (h *Handler) Err(msg string) {
	h.StructErr(msg).Emit()
}

// SpanWarn emits a warning at a span.
func (h *Handler) SpanWarn(span source.Span, msg string) {
	h.StructSpanWarn(span, msg).Emit()
}

// SpanWarnWithCode emits a coded warning at a span.
func (h *Handler) SpanWarnWithCode(span source.Span, msg string, code Code) {
	h.StructSpanWarnWithCode(span, msg, code).Emit()
}

// Warn emits a warning without a location.
func (h *Handler) Warn(msg string) {
	h.StructWarn(msg).Emit()
}

// Note emits a standalone note that does not count as an error.
func (h *Handler) Note(msg string) {
	h.EmitDiagnostic(NewDiagnostic(LevelNote, msg))
}

// SpanNote emits a standalone note at a span.
func (h *Handler) SpanNote(span source.Span, msg string) {
	h.EmitDiagnostic(NewDiagnostic(LevelNote, msg).SetSpan(span))
}

// Fatal emits and returns the fatal marker for the caller to Raise.
func (h *Handler) Fatal(msg string) FatalError {
	h.EmitDiagnostic(NewDiagnostic(LevelFatal, msg))
	return FatalError{}
}

// SpanFatal emits at a span and returns the fatal marker.
func (h *Handler) SpanFatal(span source.Span, msg string) FatalError {
	h.EmitDiagnostic(NewDiagnostic(LevelFatal, msg).SetSpan(span))
	return FatalError{}
}

// Bug reports an internal error and unwinds. Never returns.
func (h *Handler) Bug(msg string) {
	h.EmitDiagnostic(NewDiagnostic(LevelBug, msg))
	h.markAborted()
	panic(ExplicitBug{})
}

// SpanBug reports an internal error at a span and unwinds. Never returns.
func (h *Handler) SpanBug(span source.Span, msg string) {
	h.EmitDiagnostic(NewDiagnostic(LevelBug, msg).SetSpan(span))
	h.markAborted()
	panic(ExplicitBug{})
}

// DelaySpanBug records an internal inconsistency that is excused if the
// session reports ordinary user errors: the bug only surfaces at Close when
// the error count stayed zero. Past the treat-err-as-bug threshold it
// escalates to SpanBug immediately.
func (h *Handler) DelaySpanBug(span source.Span, msg string) {
	h.mu.Lock()
	treat := h.treatErrAsBugLocked()
	h.mu.Unlock()
	if treat {
		h.SpanBug(span, msg)
	}
	h.delayAsBug(NewDiagnostic(LevelBug, msg).SetSpan(span))
}

func (h *Handler) delayAsBug(d *Diagnostic) {
	if h.flags.ReportDelayedBugs {
		h.EmitDiagnostic(d)
	}
	h.mu.Lock()
	h.delayed = append(h.delayed, d.Clone())
	h.mu.Unlock()
}

// MustTeach reports whether the long-form text for the code was not shown
// yet this session, and marks it shown. Первый вызов на код — true.
func (h *Handler) MustTeach(code Code) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.taught[code]; ok {
		return false
	}
	h.taught[code] = struct{}{}
	return true
}

// ErrCount returns the raw error count, duplicates included.
func (h *Handler) ErrCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.errCount
}

// HasErrors reports whether any error was emitted.
func (h *Handler) HasErrors() bool {
	return h.ErrCount() > 0
}

// Reset clears counters, dedup state, delayed bugs and the taught set.
// Flags and emitter stay. Для длинноживущих сессий, перепроверяющих
// изменённые файлы.
func (h *Handler) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errCount = 0
	h.dedupErrCount = 0
	h.emitted = make(map[[32]byte]struct{})
	h.emittedCodes = make(map[Code]struct{})
	h.delayed = nil
	h.taught = make(map[Code]struct{})
	h.closed = false
	h.aborted = false
}

// AbortIfErrors raises the fatal unwind when any error was reported.
func (h *Handler) AbortIfErrors() {
	if h.HasErrors() {
		h.markAborted()
		FatalError{}.Raise()
	}
}

// AbortIfErrorsAndShouldAbort raises only when the session is not
// configured to continue past errors. Вызывается на границах фаз.
func (h *Handler) AbortIfErrorsAndShouldAbort() {
	if h.HasErrors() && !h.flags.ContinueAfterError {
		h.markAborted()
		FatalError{}.Raise()
	}
}

// PrintErrorCount emits the end-of-session summary: the deduplicated error
// total and, when the emitter allows it, hints about `volt explain` for
// every explainable code seen this session.
func (h *Handler) PrintErrorCount() {
	h.mu.Lock()
	count := h.dedupErrCount
	codes := make([]Code, 0, len(h.emittedCodes))
	for c := range h.emittedCodes {
		if HasExplanation(c) {
			codes = append(codes, c)
		}
	}
	h.mu.Unlock()

	var summary string
	switch count {
	case 0:
		return
	case 1:
		summary = "aborting due to previous error"
	default:
		summary = fmt.Sprintf("aborting due to %d previous errors", count)
	}
	h.EmitDiagnostic(NewDiagnostic(LevelFatal, summary))

	if !h.emitter.ShouldShowExplain() || len(codes) == 0 {
		return
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	if len(codes) > 1 {
		limit := len(codes)
		tail := "."
		if limit > 9 {
			limit = 9
			tail = "..."
		}
		ids := make([]string, 0, limit)
		for _, c := range codes[:limit] {
			ids = append(ids, c.ID())
		}
		h.failure("Some errors have detailed explanations: " + strings.Join(ids, ", ") + tail)
		h.failure(fmt.Sprintf("For more information about an error, try `volt explain %s`.", codes[0].ID()))
	} else {
		h.failure(fmt.Sprintf("For more information about this error, try `volt explain %s`.", codes[0].ID()))
	}
}

func (h *Handler) failure(msg string) {
	h.EmitDiagnostic(NewDiagnostic(LevelFailureNote, msg))
}

// Close runs the session-final integrity checks. If no user errors were
// reported but delayed bugs exist, they are emitted and the session unwinds
// as an internal error; the same happens for builders that were never
// resolved. Idempotent.
func (h *Handler) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed || h.aborted {
		return
	}
	h.closed = true

	if h.errCount == 0 && len(h.delayed) > 0 {
		delayed := h.delayed
		h.delayed = nil
		for _, bug := range delayed {
			h.emitLocked(bug)
		}
		h.emitter.Emit(NewDiagnostic(LevelBug,
			"no errors encountered even though delayed bugs were issued"))
		h.aborted = true
		panic(ExplicitBug{})
	}
	if h.outstanding > 0 {
		h.emitter.Emit(NewDiagnostic(LevelBug,
			fmt.Sprintf("%d diagnostics were constructed but never emitted", h.outstanding)))
		h.aborted = true
		panic(ExplicitBug{})
	}
}
