package types

import "fmt"

// TypeID uniquely identifies a type inside the interner.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

// Kind enumerates all supported kinds of types.
type Kind uint8

const (
	KindInvalid Kind = iota
	// KindError is the placeholder for types that already produced a
	// diagnostic. It unifies with everything, so one mistake is reported
	// once instead of cascading.
	KindError
	KindUnit
	KindBool
	KindChar
	KindByte
	KindString
	KindInt
	KindUint
	KindFloat
	// KindUntypedInt and KindUntypedFloat type literals before inference
	// commits them to a concrete numeric type.
	KindUntypedInt
	KindUntypedFloat
	KindArray
	KindReference
	KindOwn
	KindTuple
	KindStruct
	KindEnum
	KindUnion
	// KindContract is the erased contract-object type (`any Name`).
	KindContract
	KindFn
	// KindParam is a generic type parameter inside its declaration.
	KindParam
	// KindInfer is a fresh inference variable owned by the unifier.
	KindInfer
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindError:
		return "error"
	case KindUnit:
		return "unit"
	case KindBool:
		return "bool"
	case KindChar:
		return "char"
	case KindByte:
		return "byte"
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindFloat:
		return "float"
	case KindUntypedInt:
		return "untyped int"
	case KindUntypedFloat:
		return "untyped float"
	case KindArray:
		return "array"
	case KindReference:
		return "reference"
	case KindOwn:
		return "own"
	case KindTuple:
		return "tuple"
	case KindStruct:
		return "struct"
	case KindEnum:
		return "enum"
	case KindUnion:
		return "union"
	case KindContract:
		return "contract"
	case KindFn:
		return "fn"
	case KindParam:
		return "param"
	case KindInfer:
		return "infer"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Width captures the precision of integers/floats.
type Width uint8

const (
	WidthAny Width = 0
	Width8   Width = 8
	Width16  Width = 16
	Width32  Width = 32
	Width64  Width = 64
)

// ArrayDynamicLength marks slices with unknown compile-time length.
const ArrayDynamicLength = ^uint32(0)

// Type is a compact descriptor for any supported type. Payload points into
// the interner's side tables for kinds that carry extra metadata (structs,
// enums, unions, contracts, tuples, fns, params) and holds the variable
// index for inference variables.
type Type struct {
	Kind    Kind
	Elem    TypeID
	Count   uint32 // for arrays (ArrayDynamicLength means slice)
	Width   Width  // for numeric primitives
	Mutable bool   // for references
	Payload uint32
}

// Descriptor helpers ---------------------------------------------------------

// MakeInt describes a signed integer of the given width (WidthAny for "int").
func MakeInt(width Width) Type {
	return Type{Kind: KindInt, Width: width}
}

// MakeUint describes an unsigned integer type.
func MakeUint(width Width) Type {
	return Type{Kind: KindUint, Width: width}
}

// MakeFloat describes a floating-point type.
func MakeFloat(width Width) Type {
	return Type{Kind: KindFloat, Width: width}
}

// MakeArray describes an array/slice of element type. Use ArrayDynamicLength
// for open-ended slices ([T]).
func MakeArray(elem TypeID, count uint32) Type {
	return Type{Kind: KindArray, Elem: elem, Count: count}
}

// MakeReference describes &T or &mut T depending on the mutable flag.
func MakeReference(elem TypeID, mutable bool) Type {
	return Type{Kind: KindReference, Elem: elem, Mutable: mutable}
}

// MakeOwn describes own T.
func MakeOwn(elem TypeID) Type {
	return Type{Kind: KindOwn, Elem: elem}
}
