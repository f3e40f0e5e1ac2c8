package ast

import (
	"volt/internal/source"
)

// Hints задаёт начальные ёмкости арен. Нулевое поле означает
// значение по умолчанию.
type Hints struct {
	Files uint
	Items uint
	Stmts uint
	Exprs uint
	Pats  uint
	Types uint
}

// Builder bundles every arena a single parse produces. One Builder per
// module; FileIDs, ItemIDs and the rest are only meaningful relative to
// the Builder they came from.
type Builder struct {
	Files *Files
	Items *Items
	Stmts *Stmts
	Exprs *Exprs
	Pats  *Pats
	Types *TypeExprs

	// Strings interns every name the parser records; sema resolves
	// против тех же StringID.
	Strings *source.Interner
}

// NewBuilder creates a Builder with the given capacity hints.
func NewBuilder(h Hints) *Builder {
	if h.Files == 0 {
		h.Files = 1 << 3
	}
	if h.Items == 0 {
		h.Items = 1 << 6
	}
	if h.Stmts == 0 {
		h.Stmts = 1 << 8
	}
	if h.Exprs == 0 {
		h.Exprs = 1 << 8
	}
	if h.Pats == 0 {
		h.Pats = 1 << 8
	}
	if h.Types == 0 {
		h.Types = 1 << 7
	}
	return &Builder{
		Files:   NewFiles(h.Files),
		Items:   NewItems(h.Items),
		Stmts:   NewStmts(h.Stmts),
		Exprs:   NewExprs(h.Exprs),
		Pats:    NewPats(h.Pats),
		Types:   NewTypeExprs(h.Types),
		Strings: source.NewInterner(),
	}
}

// PushItem appends an item to a file's item list.
func (b *Builder) PushItem(file FileID, item ItemID) {
	f := b.Files.Get(file)
	if f == nil {
		return
	}
	f.Items = append(f.Items, item)
}
