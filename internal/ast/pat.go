package ast

import (
	"volt/internal/source"
)

// PatKind enumerates pattern forms.
type PatKind uint8

const (
	// PatWild represents `_`.
	PatWild PatKind = iota
	// PatLit represents a literal pattern (`42`, `'a'`, `"s"`, `true`).
	PatLit
	// PatRange represents `lo..hi` / `lo..=hi`.
	PatRange
	// PatBinding represents `x`, `mut x`, `ref x`, `name @ sub`.
	PatBinding
	// PatPath represents a path that resolves to a const or unit variant.
	PatPath
	// PatStruct represents `Name { field: pat, .. }`.
	PatStruct
	// PatTupleStruct represents `Name(a, b)` / `Enum::Variant(a)`.
	PatTupleStruct
	// PatTuple represents `(a, b, ..)`.
	PatTuple
	// PatOr represents `a | b | c`.
	PatOr
	// PatRef represents `&pat` / `&mut pat`.
	PatRef
	// PatOwn represents `own pat`.
	PatOwn
	// PatSlice represents `[a, rest @ .., z]`.
	PatSlice
)

// Pat represents a pattern node in the AST.
type Pat struct {
	Kind    PatKind
	Span    source.Span
	Payload PayloadID
}

// BindingAnnot is the binding annotation written in the source.
type BindingAnnot uint8

const (
	// BindDefault binds by the current default mode: `x`.
	BindDefault BindingAnnot = iota
	// BindMut binds by value, mutable: `mut x`.
	BindMut
	// BindRef binds by shared reference: `ref x`.
	BindRef
	// BindRefMut binds by mutable reference: `ref mut x`.
	BindRefMut
)

type PatLitData struct {
	Value ExprID
}

type PatRangeData struct {
	Lo        ExprID
	Hi        ExprID
	Inclusive bool
}

type PatBindingData struct {
	Annot    BindingAnnot
	Name     source.StringID
	NameSpan source.Span
	Sub      PatID // `name @ subpattern`; NoPatID if absent
}

type PatPathData struct {
	Segments []PathSegment
}

// PatStructField is one `name: pat` (or shorthand `name`) of a struct
// pattern.
type PatStructField struct {
	Name      source.StringID
	NameSpan  source.Span
	Pat       PatID
	Shorthand bool
	Span      source.Span
}

type PatStructData struct {
	Path    []PathSegment
	Fields  []PatFieldID
	HasRest bool // trailing `..`
}

type PatTupleStructData struct {
	Path  []PathSegment
	Elems []PatID
	// Rest is the index of `..` inside the written element list, -1 when
	// absent. Elems never contains the `..` itself.
	Rest int
}

type PatTupleData struct {
	Elems []PatID
	Rest  int // same convention as PatTupleStructData
}

type PatOrData struct {
	Alts []PatID
}

type PatRefData struct {
	Sub     PatID
	Mutable bool
}

type PatOwnData struct {
	Sub PatID
}

type PatSliceData struct {
	Before  []PatID
	HasRest bool
	Rest    PatID // binding over `..` (`rest @ ..`); NoPatID for bare `..`
	After   []PatID
}

// Pats manages allocation of patterns.
type Pats struct {
	Arena        *Arena[Pat]
	Lits         *Arena[PatLitData]
	Ranges       *Arena[PatRangeData]
	Bindings     *Arena[PatBindingData]
	Paths        *Arena[PatPathData]
	Structs      *Arena[PatStructData]
	StructFields *Arena[PatStructField]
	TupleStructs *Arena[PatTupleStructData]
	Tuples       *Arena[PatTupleData]
	Ors          *Arena[PatOrData]
	Refs         *Arena[PatRefData]
	Owns         *Arena[PatOwnData]
	Slices       *Arena[PatSliceData]
}

// NewPats creates a new Pats with per-kind arenas preallocated using
// capHint as the initial capacity. If capHint is 0, 1<<8 is used.
func NewPats(capHint uint) *Pats {
	if capHint == 0 {
		capHint = 1 << 8
	}
	return &Pats{
		Arena:        NewArena[Pat](capHint),
		Lits:         NewArena[PatLitData](capHint),
		Ranges:       NewArena[PatRangeData](capHint),
		Bindings:     NewArena[PatBindingData](capHint),
		Paths:        NewArena[PatPathData](capHint),
		Structs:      NewArena[PatStructData](capHint),
		StructFields: NewArena[PatStructField](capHint),
		TupleStructs: NewArena[PatTupleStructData](capHint),
		Tuples:       NewArena[PatTupleData](capHint),
		Ors:          NewArena[PatOrData](capHint),
		Refs:         NewArena[PatRefData](capHint),
		Owns:         NewArena[PatOwnData](capHint),
		Slices:       NewArena[PatSliceData](capHint),
	}
}

func (p *Pats) new(kind PatKind, span source.Span, payload PayloadID) PatID {
	return PatID(p.Arena.Allocate(Pat{
		Kind:    kind,
		Span:    span,
		Payload: payload,
	}))
}

// Get returns the pattern with the given ID.
func (p *Pats) Get(id PatID) *Pat {
	return p.Arena.Get(uint32(id))
}

// NewWild creates a wildcard pattern.
func (p *Pats) NewWild(span source.Span) PatID {
	return p.new(PatWild, span, NoPayloadID)
}

// NewLit creates a literal pattern over the given expression.
func (p *Pats) NewLit(span source.Span, value ExprID) PatID {
	payload := p.Lits.Allocate(PatLitData{Value: value})
	return p.new(PatLit, span, PayloadID(payload))
}

// Lit returns the literal data for the given pattern ID.
func (p *Pats) Lit(id PatID) (*PatLitData, bool) {
	pat := p.Get(id)
	if pat == nil || pat.Kind != PatLit {
		return nil, false
	}
	return p.Lits.Get(uint32(pat.Payload)), true
}

// NewRange creates a range pattern.
func (p *Pats) NewRange(span source.Span, lo, hi ExprID, inclusive bool) PatID {
	payload := p.Ranges.Allocate(PatRangeData{Lo: lo, Hi: hi, Inclusive: inclusive})
	return p.new(PatRange, span, PayloadID(payload))
}

// Range returns the range data for the given pattern ID.
func (p *Pats) Range(id PatID) (*PatRangeData, bool) {
	pat := p.Get(id)
	if pat == nil || pat.Kind != PatRange {
		return nil, false
	}
	return p.Ranges.Get(uint32(pat.Payload)), true
}

// NewBinding creates a binding pattern.
func (p *Pats) NewBinding(span source.Span, annot BindingAnnot, name source.StringID, nameSpan source.Span, sub PatID) PatID {
	payload := p.Bindings.Allocate(PatBindingData{
		Annot:    annot,
		Name:     name,
		NameSpan: nameSpan,
		Sub:      sub,
	})
	return p.new(PatBinding, span, PayloadID(payload))
}

// Binding returns the binding data for the given pattern ID.
func (p *Pats) Binding(id PatID) (*PatBindingData, bool) {
	pat := p.Get(id)
	if pat == nil || pat.Kind != PatBinding {
		return nil, false
	}
	return p.Bindings.Get(uint32(pat.Payload)), true
}

// NewPath creates a path pattern.
func (p *Pats) NewPath(span source.Span, segments []PathSegment) PatID {
	payload := p.Paths.Allocate(PatPathData{Segments: segments})
	return p.new(PatPath, span, PayloadID(payload))
}

// Path returns the path data for the given pattern ID.
func (p *Pats) Path(id PatID) (*PatPathData, bool) {
	pat := p.Get(id)
	if pat == nil || pat.Kind != PatPath {
		return nil, false
	}
	return p.Paths.Get(uint32(pat.Payload)), true
}

// NewStructField allocates one field of a struct pattern.
func (p *Pats) NewStructField(field PatStructField) PatFieldID {
	return PatFieldID(p.StructFields.Allocate(field))
}

// StructField returns the field with the given ID.
func (p *Pats) StructField(id PatFieldID) *PatStructField {
	return p.StructFields.Get(uint32(id))
}

// NewStruct creates a struct pattern.
func (p *Pats) NewStruct(span source.Span, path []PathSegment, fields []PatFieldID, hasRest bool) PatID {
	payload := p.Structs.Allocate(PatStructData{Path: path, Fields: fields, HasRest: hasRest})
	return p.new(PatStruct, span, PayloadID(payload))
}

// Struct returns the struct data for the given pattern ID.
func (p *Pats) Struct(id PatID) (*PatStructData, bool) {
	pat := p.Get(id)
	if pat == nil || pat.Kind != PatStruct {
		return nil, false
	}
	return p.Structs.Get(uint32(pat.Payload)), true
}

// NewTupleStruct creates a tuple-struct pattern.
func (p *Pats) NewTupleStruct(span source.Span, path []PathSegment, elems []PatID, rest int) PatID {
	payload := p.TupleStructs.Allocate(PatTupleStructData{Path: path, Elems: elems, Rest: rest})
	return p.new(PatTupleStruct, span, PayloadID(payload))
}

// TupleStruct returns the tuple-struct data for the given pattern ID.
func (p *Pats) TupleStruct(id PatID) (*PatTupleStructData, bool) {
	pat := p.Get(id)
	if pat == nil || pat.Kind != PatTupleStruct {
		return nil, false
	}
	return p.TupleStructs.Get(uint32(pat.Payload)), true
}

// NewTuple creates a tuple pattern.
func (p *Pats) NewTuple(span source.Span, elems []PatID, rest int) PatID {
	payload := p.Tuples.Allocate(PatTupleData{Elems: elems, Rest: rest})
	return p.new(PatTuple, span, PayloadID(payload))
}

// Tuple returns the tuple data for the given pattern ID.
func (p *Pats) Tuple(id PatID) (*PatTupleData, bool) {
	pat := p.Get(id)
	if pat == nil || pat.Kind != PatTuple {
		return nil, false
	}
	return p.Tuples.Get(uint32(pat.Payload)), true
}

// NewOr creates an or pattern.
func (p *Pats) NewOr(span source.Span, alts []PatID) PatID {
	payload := p.Ors.Allocate(PatOrData{Alts: alts})
	return p.new(PatOr, span, PayloadID(payload))
}

// Or returns the or data for the given pattern ID.
func (p *Pats) Or(id PatID) (*PatOrData, bool) {
	pat := p.Get(id)
	if pat == nil || pat.Kind != PatOr {
		return nil, false
	}
	return p.Ors.Get(uint32(pat.Payload)), true
}

// NewRef creates a reference pattern.
func (p *Pats) NewRef(span source.Span, sub PatID, mutable bool) PatID {
	payload := p.Refs.Allocate(PatRefData{Sub: sub, Mutable: mutable})
	return p.new(PatRef, span, PayloadID(payload))
}

// Ref returns the reference data for the given pattern ID.
func (p *Pats) Ref(id PatID) (*PatRefData, bool) {
	pat := p.Get(id)
	if pat == nil || pat.Kind != PatRef {
		return nil, false
	}
	return p.Refs.Get(uint32(pat.Payload)), true
}

// NewOwn creates an own pattern.
func (p *Pats) NewOwn(span source.Span, sub PatID) PatID {
	payload := p.Owns.Allocate(PatOwnData{Sub: sub})
	return p.new(PatOwn, span, PayloadID(payload))
}

// Own returns the own data for the given pattern ID.
func (p *Pats) Own(id PatID) (*PatOwnData, bool) {
	pat := p.Get(id)
	if pat == nil || pat.Kind != PatOwn {
		return nil, false
	}
	return p.Owns.Get(uint32(pat.Payload)), true
}

// NewSlice creates a slice pattern.
func (p *Pats) NewSlice(span source.Span, before []PatID, hasRest bool, rest PatID, after []PatID) PatID {
	payload := p.Slices.Allocate(PatSliceData{
		Before:  before,
		HasRest: hasRest,
		Rest:    rest,
		After:   after,
	})
	return p.new(PatSlice, span, PayloadID(payload))
}

// Slice returns the slice data for the given pattern ID.
func (p *Pats) Slice(id PatID) (*PatSliceData, bool) {
	pat := p.Get(id)
	if pat == nil || pat.Kind != PatSlice {
		return nil, false
	}
	return p.Slices.Get(uint32(pat.Payload)), true
}
