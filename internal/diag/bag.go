package diag

import "sort"

// Bag accumulates diagnostics for staged emission. Workers collect into
// private bags and the driver replays them into the shared Handler in a
// stable order, so parallel checking cannot shuffle the output.
type Bag struct {
	items []*Diagnostic
}

// NewBag creates an empty bag.
func NewBag() *Bag {
	return &Bag{}
}

// Add takes ownership of the diagnostic.
func (b *Bag) Add(d *Diagnostic) {
	b.items = append(b.items, d)
}

// Items returns the collected diagnostics in their current order.
func (b *Bag) Items() []*Diagnostic {
	return b.items
}

// Len returns the number of collected diagnostics.
func (b *Bag) Len() int {
	return len(b.items)
}

// HasErrors reports whether any collected diagnostic counts as an error.
func (b *Bag) HasErrors() bool {
	for _, d := range b.items {
		if d.IsError() {
			return true
		}
	}
	return false
}

// Sort orders diagnostics by primary location (file, start, end), then by
// severity, then by code. Diagnostics without a primary span sort first
// within their file group.
func (b *Bag) Sort() {
	sort.SliceStable(b.items, func(i, j int) bool {
		di, dj := b.items[i], b.items[j]
		si, oki := di.Span.PrimarySpan()
		sj, okj := dj.Span.PrimarySpan()
		if oki != okj {
			return !oki
		}
		if oki && si != sj {
			return si.Before(sj)
		}
		if di.Level.sortRank() != dj.Level.sortRank() {
			return di.Level.sortRank() < dj.Level.sortRank()
		}
		return di.Code < dj.Code
	})
}

// EmitInto replays every collected diagnostic through the handler's normal
// pipeline (dedup and counters apply) and empties the bag.
func (b *Bag) EmitInto(h *Handler) {
	for _, d := range b.items {
		h.EmitDiagnostic(d)
	}
	b.items = b.items[:0]
}

// BagEmitter is an Emitter that collects into a Bag. Используется в тестах
// и в воркерах драйвера.
type BagEmitter struct {
	bag *Bag
}

// NewBagEmitter wraps the given bag.
func NewBagEmitter(bag *Bag) *BagEmitter {
	return &BagEmitter{bag: bag}
}

// Emit clones the diagnostic into the bag. The clone matters: the caller may
// cancel or mutate its copy after emission.
func (e *BagEmitter) Emit(d *Diagnostic) {
	e.bag.Add(d.Clone())
}

// ShouldShowExplain reports that collected output may carry explain hints.
func (e *BagEmitter) ShouldShowExplain() bool { return true }
