package types

import (
	"fmt"

	"fortio.org/safecast"

	"volt/internal/source"
)

// Builtins stores TypeIDs for common primitive types.
type Builtins struct {
	Invalid      TypeID
	Error        TypeID
	Unit         TypeID
	Bool         TypeID
	Char         TypeID
	Byte         TypeID
	String       TypeID
	Int          TypeID
	Uint         TypeID
	Float        TypeID
	UntypedInt   TypeID
	UntypedFloat TypeID
}

// Interner provides stable TypeIDs by hashing structural descriptors.
// Nominal kinds get a fresh Payload slot per registration, so identically
// named declarations stay distinct; structural lookups go through the
// Find*Instance helpers instead of descriptor identity.
type Interner struct {
	// Strings resolves the names stored in the side tables.
	Strings *source.Interner

	types    []Type
	index    map[typeKey]TypeID
	builtins Builtins

	structs   []StructInfo
	enums     []EnumInfo
	unions    []UnionInfo
	contracts []ContractInfo
	tuples    []TupleInfo
	fns       []FnInfo
	params    []TypeParamInfo

	inferCount uint32
}

// NewInterner constructs an interner seeded with built-in primitives.
func NewInterner(strings *source.Interner) *Interner {
	in := &Interner{
		Strings: strings,
		index:   make(map[typeKey]TypeID, 64),
	}
	// Слот 0 в каждой side-таблице зарезервирован как невалидный.
	in.structs = append(in.structs, StructInfo{})
	in.enums = append(in.enums, EnumInfo{})
	in.unions = append(in.unions, UnionInfo{})
	in.contracts = append(in.contracts, ContractInfo{})
	in.tuples = append(in.tuples, TupleInfo{})
	in.fns = append(in.fns, FnInfo{})
	in.params = append(in.params, TypeParamInfo{})

	in.builtins.Invalid = in.internRaw(Type{Kind: KindInvalid})
	in.builtins.Error = in.Intern(Type{Kind: KindError})
	in.builtins.Unit = in.Intern(Type{Kind: KindUnit})
	in.builtins.Bool = in.Intern(Type{Kind: KindBool})
	in.builtins.Char = in.Intern(Type{Kind: KindChar})
	in.builtins.Byte = in.Intern(Type{Kind: KindByte})
	in.builtins.String = in.Intern(Type{Kind: KindString})
	in.builtins.Int = in.Intern(MakeInt(WidthAny))
	in.builtins.Uint = in.Intern(MakeUint(WidthAny))
	in.builtins.Float = in.Intern(MakeFloat(WidthAny))
	in.builtins.UntypedInt = in.Intern(Type{Kind: KindUntypedInt})
	in.builtins.UntypedFloat = in.Intern(Type{Kind: KindUntypedFloat})
	return in
}

// Builtins returns TypeIDs for primitive types.
func (in *Interner) Builtins() Builtins {
	return in.builtins
}

// Intern ensures the provided descriptor has a stable TypeID.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	key := typeKey(t)
	if id, ok := in.index[key]; ok {
		return id
	}
	return in.internRaw(t)
}

// internRaw adds the descriptor to the storage without consulting the map.
func (in *Interner) internRaw(t Type) TypeID {
	lenTypes, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	id := TypeID(lenTypes)
	in.types = append(in.types, t)
	key := typeKey(t)
	in.index[key] = id
	return id
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics when id is invalid.
func (in *Interner) MustLookup(id TypeID) Type {
	tt, ok := in.Lookup(id)
	if !ok {
		panic("types: invalid TypeID")
	}
	return tt
}

// FreshInfer allocates a new inference variable. Resolution state belongs to
// the unifier; the interner only hands out distinct descriptors.
func (in *Interner) FreshInfer() TypeID {
	in.inferCount++
	return in.internRaw(Type{Kind: KindInfer, Payload: in.inferCount})
}

// InferIndex returns the variable index behind an inference TypeID.
func (in *Interner) InferIndex(id TypeID) (uint32, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindInfer {
		return 0, false
	}
	return tt.Payload, true
}

type typeKey struct {
	Kind    Kind
	Elem    TypeID
	Count   uint32
	Width   Width
	Mutable bool
	Payload uint32
}

func cloneTypeArgs(args []TypeID) []TypeID {
	if len(args) == 0 {
		return nil
	}
	result := make([]TypeID, len(args))
	copy(result, args)
	return result
}
