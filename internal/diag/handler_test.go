package diag

import (
	"strings"
	"sync"
	"testing"

	"volt/internal/source"
)

func newTestHandler(flags Flags) (*Handler, *Bag) {
	bag := NewBag()
	return NewHandler(flags, NewBagEmitter(bag)), bag
}

func expectExplicitBug(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected panic(ExplicitBug), got none")
		}
		if _, ok := r.(ExplicitBug); !ok {
			t.Fatalf("unexpected panic payload: %v", r)
		}
	}()
	fn()
}

func testSpan(start, end uint32) source.Span {
	return source.Span{File: 0, Start: start, End: end}
}

func TestDedupRendersOnceCountsTwice(t *testing.T) {
	h, bag := newTestHandler(DefaultFlags())

	// Две структурно одинаковые ошибки: печатается одна, считаются обе.
	h.SpanErrWithCode(testSpan(0, 4), "mismatched types", TypMismatch)
	h.SpanErrWithCode(testSpan(0, 4), "mismatched types", TypMismatch)

	if bag.Len() != 1 {
		t.Fatalf("expected 1 rendered diagnostic, got %d", bag.Len())
	}
	if h.ErrCount() != 2 {
		t.Fatalf("raw error count must include duplicates, got %d", h.ErrCount())
	}
}

func TestDedupDistinguishesSpans(t *testing.T) {
	h, bag := newTestHandler(DefaultFlags())
	h.SpanErrWithCode(testSpan(0, 4), "mismatched types", TypMismatch)
	h.SpanErrWithCode(testSpan(5, 9), "mismatched types", TypMismatch)
	if bag.Len() != 2 {
		t.Fatalf("different spans must not dedup, got %d", bag.Len())
	}
}

func TestWarningSuppression(t *testing.T) {
	h, bag := newTestHandler(Flags{ContinueAfterError: true})
	h.SpanWarn(testSpan(0, 1), "unused variable")
	h.EmitDiagnostic(NewDiagnostic(LevelWarning, "direct warning"))
	if bag.Len() != 0 {
		t.Fatalf("warnings must be suppressed, got %d diagnostics", bag.Len())
	}
	if h.ErrCount() != 0 {
		t.Fatalf("suppressed warnings must not count, got %d", h.ErrCount())
	}
}

func TestWarningsAsErrors(t *testing.T) {
	h, bag := newTestHandler(Flags{WarningsAsErrors: true, ContinueAfterError: true})
	h.SpanWarn(testSpan(0, 1), "unused variable")
	if bag.Len() != 1 {
		t.Fatalf("promoted warning must render, got %d", bag.Len())
	}
	if got := bag.Items()[0].Level; got != LevelError {
		t.Fatalf("expected LevelError after promotion, got %v", got)
	}
	if h.ErrCount() != 1 {
		t.Fatalf("promoted warning must count as error, got %d", h.ErrCount())
	}
}

func TestDenyCodesPromoteSelectively(t *testing.T) {
	flags := DefaultFlags()
	flags.Deny(TypNonExhaustive)
	h, bag := newTestHandler(flags)

	h.SpanWarnWithCode(testSpan(0, 1), "missing `..` in type match", TypNonExhaustive)
	h.SpanWarnWithCode(testSpan(2, 3), "unused variable", NoCode)

	if bag.Len() != 2 {
		t.Fatalf("expected both diagnostics rendered, got %d", bag.Len())
	}
	if got := bag.Items()[0].Level; got != LevelError {
		t.Fatalf("denied code must promote to error, got %v", got)
	}
	if got := bag.Items()[1].Level; got != LevelWarning {
		t.Fatalf("codes outside the deny list stay warnings, got %v", got)
	}
	if h.ErrCount() != 1 {
		t.Fatalf("only the denied warning counts as error, got %d", h.ErrCount())
	}
}

func TestDelayedBugExcusedByUserError(t *testing.T) {
	h, bag := newTestHandler(DefaultFlags())
	h.SpanErr(testSpan(0, 2), "real user error")
	h.DelaySpanBug(testSpan(3, 4), "inconsistency, probably caused by the error above")

	// Настоящая пользовательская ошибка оправдывает отложенный баг.
	h.Close()

	if bag.Len() != 1 {
		t.Fatalf("delayed bug must stay hidden, got %d diagnostics", bag.Len())
	}
	if bag.Items()[0].Level != LevelError {
		t.Fatalf("only the user error should render")
	}
}

func TestDelayedBugSurfacesOnCleanSession(t *testing.T) {
	h, bag := newTestHandler(DefaultFlags())
	h.DelaySpanBug(testSpan(0, 1), "inconsistency with no user error to blame")

	expectExplicitBug(t, h.Close)

	var sawBug bool
	for _, d := range bag.Items() {
		if d.Level == LevelBug && strings.Contains(d.Message, "inconsistency") {
			sawBug = true
		}
	}
	if !sawBug {
		t.Fatalf("delayed bug was not flushed before the panic")
	}
}

func TestReportDelayedBugsEmitsImmediately(t *testing.T) {
	h, bag := newTestHandler(Flags{CanEmitWarnings: true, ReportDelayedBugs: true})
	h.DelaySpanBug(testSpan(0, 1), "visible at the point of delay")
	if bag.Len() != 1 {
		t.Fatalf("delayed bug must render immediately, got %d", bag.Len())
	}
	// The immediate emission counts as an error, so Close must not panic.
	h.Close()
}

func TestTreatErrAsBugThreshold(t *testing.T) {
	h, bag := newTestHandler(Flags{CanEmitWarnings: true, TreatErrAsBug: 2})
	h.SpanErr(testSpan(0, 1), "first")

	expectExplicitBug(t, func() {
		h.SpanErr(testSpan(2, 3), "second")
	})

	var sawAbort bool
	for _, d := range bag.Items() {
		if d.Level == LevelBug &&
			d.Message == "aborting after 2 errors due to `--treat-err-as-bug=2`" {
			sawAbort = true
		}
	}
	if !sawAbort {
		t.Fatalf("missing abort message, bag: %d items", bag.Len())
	}
}

func TestTreatErrAsBugFirstError(t *testing.T) {
	h, bag := newTestHandler(Flags{CanEmitWarnings: true, TreatErrAsBug: 1})
	expectExplicitBug(t, func() {
		h.SpanErr(testSpan(0, 1), "boom")
	})
	var sawAbort bool
	for _, d := range bag.Items() {
		if d.Message == "aborting due to `--treat-err-as-bug=1`" {
			sawAbort = true
		}
	}
	if !sawAbort {
		t.Fatal("missing single-error abort message")
	}
}

func TestMustTeach(t *testing.T) {
	h, _ := newTestHandler(DefaultFlags())
	if !h.MustTeach(TypMismatch) {
		t.Fatal("первый показ кода должен вернуть true")
	}
	if h.MustTeach(TypMismatch) {
		t.Fatal("повторный показ того же кода должен вернуть false")
	}
	if !h.MustTeach(TypPatArity) {
		t.Fatal("другой код учится независимо")
	}
}

func TestAbortIfErrors(t *testing.T) {
	h, _ := newTestHandler(DefaultFlags())
	h.AbortIfErrors() // clean session, no unwind

	h.SpanErr(testSpan(0, 1), "boom")
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected FatalError unwind")
		} else if _, ok := r.(FatalError); !ok {
			t.Fatalf("unexpected panic payload: %v", r)
		}
	}()
	h.AbortIfErrors()
}

func TestAbortIfErrorsAndShouldAbort(t *testing.T) {
	h, _ := newTestHandler(DefaultFlags()) // ContinueAfterError: true
	h.SpanErr(testSpan(0, 1), "boom")
	h.AbortIfErrorsAndShouldAbort() // tolerated

	h2, _ := newTestHandler(Flags{CanEmitWarnings: true})
	h2.SpanErr(testSpan(0, 1), "boom")
	defer func() {
		if _, ok := recover().(FatalError); !ok {
			t.Fatal("expected FatalError unwind when ContinueAfterError is off")
		}
	}()
	h2.AbortIfErrorsAndShouldAbort()
}

func TestPrintErrorCountSingular(t *testing.T) {
	h, bag := newTestHandler(DefaultFlags())
	h.SpanErrWithCode(testSpan(0, 4), "mismatched types", TypMismatch)
	h.SpanErrWithCode(testSpan(0, 4), "mismatched types", TypMismatch) // dup

	h.PrintErrorCount()

	// Сводка считает напечатанные ошибки, не сырые.
	var messages []string
	for _, d := range bag.Items() {
		messages = append(messages, d.Message)
	}
	joined := strings.Join(messages, "\n")
	if !strings.Contains(joined, "aborting due to previous error") {
		t.Fatalf("missing singular summary, got:\n%s", joined)
	}
	if !strings.Contains(joined, "For more information about this error, try `volt explain TYP3308`.") {
		t.Fatalf("missing explain hint, got:\n%s", joined)
	}
}

func TestPrintErrorCountPlural(t *testing.T) {
	h, bag := newTestHandler(DefaultFlags())
	h.SpanErrWithCode(testSpan(0, 4), "mismatched types", TypMismatch)
	h.SpanErrWithCode(testSpan(5, 9), "pattern field count mismatch", TypPatArity)

	h.PrintErrorCount()

	var messages []string
	for _, d := range bag.Items() {
		messages = append(messages, d.Message)
	}
	joined := strings.Join(messages, "\n")
	if !strings.Contains(joined, "aborting due to 2 previous errors") {
		t.Fatalf("missing plural summary, got:\n%s", joined)
	}
	if !strings.Contains(joined, "Some errors have detailed explanations: TYP3023, TYP3308.") {
		t.Fatalf("missing code list, got:\n%s", joined)
	}
	if !strings.Contains(joined, "For more information about an error, try `volt explain TYP3023`.") {
		t.Fatalf("missing explain hint, got:\n%s", joined)
	}
}

func TestPrintErrorCountSilentWhenClean(t *testing.T) {
	h, bag := newTestHandler(DefaultFlags())
	h.PrintErrorCount()
	if bag.Len() != 0 {
		t.Fatalf("clean session must print nothing, got %d", bag.Len())
	}
}

type noExplainEmitter struct{ *BagEmitter }

func (noExplainEmitter) ShouldShowExplain() bool { return false }

func TestPrintErrorCountWithoutExplain(t *testing.T) {
	bag := NewBag()
	h := NewHandler(DefaultFlags(), noExplainEmitter{NewBagEmitter(bag)})
	h.SpanErrWithCode(testSpan(0, 4), "mismatched types", TypMismatch)

	h.PrintErrorCount()

	for _, d := range bag.Items() {
		if d.Level == LevelFailureNote {
			t.Fatalf("machine emitter must not receive explain hints: %q", d.Message)
		}
	}
}

func TestTrackerSeesDuplicates(t *testing.T) {
	h, _ := newTestHandler(DefaultFlags())
	var tracked int
	h.SetTracker(func(*Diagnostic) { tracked++ })

	h.SpanErr(testSpan(0, 1), "same")
	h.SpanErr(testSpan(0, 1), "same")

	// Хук срабатывает до дедупликации.
	if tracked != 2 {
		t.Fatalf("tracker must see every emission, got %d", tracked)
	}
}

func TestConcurrentIdenticalEmissions(t *testing.T) {
	h, bag := newTestHandler(DefaultFlags())
	const workers = 16

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.SpanErrWithCode(testSpan(0, 4), "mismatched types", TypMismatch)
		}()
	}
	wg.Wait()

	if bag.Len() != 1 {
		t.Fatalf("exactly one copy must survive concurrent dedup, got %d", bag.Len())
	}
	if h.ErrCount() != workers {
		t.Fatalf("raw count must see all workers, got %d", h.ErrCount())
	}
}

func TestReset(t *testing.T) {
	h, bag := newTestHandler(DefaultFlags())
	h.SpanErrWithCode(testSpan(0, 4), "mismatched types", TypMismatch)
	h.Reset()

	if h.HasErrors() {
		t.Fatal("Reset must clear the error count")
	}
	// После Reset та же ошибка снова печатается.
	h.SpanErrWithCode(testSpan(0, 4), "mismatched types", TypMismatch)
	if bag.Len() != 2 {
		t.Fatalf("dedup set must be cleared by Reset, got %d", bag.Len())
	}
	if !h.MustTeach(TypMismatch) {
		t.Fatal("taught set must be cleared by Reset")
	}
}

func TestBagSortStable(t *testing.T) {
	b := NewBag()
	b.Add(NewDiagnostic(LevelWarning, "w").SetSpan(testSpan(10, 12)))
	b.Add(NewDiagnostic(LevelError, "e2").SetSpan(testSpan(10, 12)))
	b.Add(NewDiagnostic(LevelError, "e1").SetSpan(testSpan(2, 4)))
	b.Add(NewDiagnostic(LevelNote, "n"))

	b.Sort()

	got := make([]string, 0, b.Len())
	for _, d := range b.Items() {
		got = append(got, d.Message)
	}
	want := []string{"n", "e1", "e2", "w"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sort order %v, want %v", got, want)
		}
	}
}
