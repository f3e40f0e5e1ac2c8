package ast

import (
	"volt/internal/source"
)

// TypeExprKind enumerates written type forms.
type TypeExprKind uint8

const (
	// TypeExprName represents an identifier, a builtin, or `Name<args>`.
	TypeExprName TypeExprKind = iota
	// TypeExprRef represents `&T` / `&mut T`.
	TypeExprRef
	// TypeExprOwn represents `own T`.
	TypeExprOwn
	// TypeExprTuple represents `(T, U)`; zero elements is the unit type.
	TypeExprTuple
	// TypeExprSlice represents `[T]`.
	TypeExprSlice
	// TypeExprArray represents `[T; N]`.
	TypeExprArray
	// TypeExprContract represents the contract-object type `any Name`.
	TypeExprContract
	// TypeExprInfer represents `_`.
	TypeExprInfer
)

// TypeExpr represents a written type in the AST.
type TypeExpr struct {
	Kind    TypeExprKind
	Span    source.Span
	Payload PayloadID
}

type TypeNameData struct {
	Name     source.StringID
	NameSpan source.Span
	Args     []TypeID
}

type TypeRefData struct {
	Elem    TypeID
	Mutable bool
}

type TypeOwnData struct {
	Elem TypeID
}

type TypeTupleData struct {
	Elems []TypeID
}

type TypeSliceData struct {
	Elem TypeID
}

type TypeArrayData struct {
	Elem TypeID
	Len  ExprID // must resolve to an integer literal
}

type TypeContractData struct {
	Name     source.StringID
	NameSpan source.Span
}

// TypeExprs manages allocation of written types.
type TypeExprs struct {
	Arena     *Arena[TypeExpr]
	Names     *Arena[TypeNameData]
	Refs      *Arena[TypeRefData]
	Owns      *Arena[TypeOwnData]
	Tuples    *Arena[TypeTupleData]
	Slices    *Arena[TypeSliceData]
	Arrays    *Arena[TypeArrayData]
	Contracts *Arena[TypeContractData]
}

// NewTypeExprs creates a new TypeExprs with arenas preallocated using
// capHint as the initial capacity. If capHint is 0, 1<<8 is used.
func NewTypeExprs(capHint uint) *TypeExprs {
	if capHint == 0 {
		capHint = 1 << 8
	}
	return &TypeExprs{
		Arena:     NewArena[TypeExpr](capHint),
		Names:     NewArena[TypeNameData](capHint),
		Refs:      NewArena[TypeRefData](capHint),
		Owns:      NewArena[TypeOwnData](capHint),
		Tuples:    NewArena[TypeTupleData](capHint),
		Slices:    NewArena[TypeSliceData](capHint),
		Arrays:    NewArena[TypeArrayData](capHint),
		Contracts: NewArena[TypeContractData](capHint),
	}
}

func (t *TypeExprs) new(kind TypeExprKind, span source.Span, payload PayloadID) TypeID {
	return TypeID(t.Arena.Allocate(TypeExpr{
		Kind:    kind,
		Span:    span,
		Payload: payload,
	}))
}

// Get returns the type expression with the given ID.
func (t *TypeExprs) Get(id TypeID) *TypeExpr {
	return t.Arena.Get(uint32(id))
}

// NewName creates a named type reference.
func (t *TypeExprs) NewName(span source.Span, name source.StringID, nameSpan source.Span, args []TypeID) TypeID {
	payload := t.Names.Allocate(TypeNameData{Name: name, NameSpan: nameSpan, Args: args})
	return t.new(TypeExprName, span, PayloadID(payload))
}

// Name returns the name data for the given type ID.
func (t *TypeExprs) Name(id TypeID) (*TypeNameData, bool) {
	te := t.Get(id)
	if te == nil || te.Kind != TypeExprName {
		return nil, false
	}
	return t.Names.Get(uint32(te.Payload)), true
}

// NewRef creates a reference type.
func (t *TypeExprs) NewRef(span source.Span, elem TypeID, mutable bool) TypeID {
	payload := t.Refs.Allocate(TypeRefData{Elem: elem, Mutable: mutable})
	return t.new(TypeExprRef, span, PayloadID(payload))
}

// Ref returns the reference data for the given type ID.
func (t *TypeExprs) Ref(id TypeID) (*TypeRefData, bool) {
	te := t.Get(id)
	if te == nil || te.Kind != TypeExprRef {
		return nil, false
	}
	return t.Refs.Get(uint32(te.Payload)), true
}

// NewOwn creates an own type.
func (t *TypeExprs) NewOwn(span source.Span, elem TypeID) TypeID {
	payload := t.Owns.Allocate(TypeOwnData{Elem: elem})
	return t.new(TypeExprOwn, span, PayloadID(payload))
}

// Own returns the own data for the given type ID.
func (t *TypeExprs) Own(id TypeID) (*TypeOwnData, bool) {
	te := t.Get(id)
	if te == nil || te.Kind != TypeExprOwn {
		return nil, false
	}
	return t.Owns.Get(uint32(te.Payload)), true
}

// NewTuple creates a tuple type.
func (t *TypeExprs) NewTuple(span source.Span, elems []TypeID) TypeID {
	payload := t.Tuples.Allocate(TypeTupleData{Elems: elems})
	return t.new(TypeExprTuple, span, PayloadID(payload))
}

// Tuple returns the tuple data for the given type ID.
func (t *TypeExprs) Tuple(id TypeID) (*TypeTupleData, bool) {
	te := t.Get(id)
	if te == nil || te.Kind != TypeExprTuple {
		return nil, false
	}
	return t.Tuples.Get(uint32(te.Payload)), true
}

// NewSlice creates a slice type.
func (t *TypeExprs) NewSlice(span source.Span, elem TypeID) TypeID {
	payload := t.Slices.Allocate(TypeSliceData{Elem: elem})
	return t.new(TypeExprSlice, span, PayloadID(payload))
}

// Slice returns the slice data for the given type ID.
func (t *TypeExprs) Slice(id TypeID) (*TypeSliceData, bool) {
	te := t.Get(id)
	if te == nil || te.Kind != TypeExprSlice {
		return nil, false
	}
	return t.Slices.Get(uint32(te.Payload)), true
}

// NewArray creates a fixed-length array type.
func (t *TypeExprs) NewArray(span source.Span, elem TypeID, length ExprID) TypeID {
	payload := t.Arrays.Allocate(TypeArrayData{Elem: elem, Len: length})
	return t.new(TypeExprArray, span, PayloadID(payload))
}

// Array returns the array data for the given type ID.
func (t *TypeExprs) Array(id TypeID) (*TypeArrayData, bool) {
	te := t.Get(id)
	if te == nil || te.Kind != TypeExprArray {
		return nil, false
	}
	return t.Arrays.Get(uint32(te.Payload)), true
}

// NewContract creates a contract-object type.
func (t *TypeExprs) NewContract(span source.Span, name source.StringID, nameSpan source.Span) TypeID {
	payload := t.Contracts.Allocate(TypeContractData{Name: name, NameSpan: nameSpan})
	return t.new(TypeExprContract, span, PayloadID(payload))
}

// Contract returns the contract data for the given type ID.
func (t *TypeExprs) Contract(id TypeID) (*TypeContractData, bool) {
	te := t.Get(id)
	if te == nil || te.Kind != TypeExprContract {
		return nil, false
	}
	return t.Contracts.Get(uint32(te.Payload)), true
}

// NewInfer creates the `_` type.
func (t *TypeExprs) NewInfer(span source.Span) TypeID {
	return t.new(TypeExprInfer, span, NoPayloadID)
}
