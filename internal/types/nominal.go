package types

import (
	"fmt"
	"slices"

	"fortio.org/safecast"

	"volt/internal/source"
)

// StructField describes a single field inside a nominal struct type.
// Positional fields (tuple structs) carry NoStringID names.
type StructField struct {
	Name source.StringID
	Type TypeID
	Span source.Span
}

// StructInfo stores metadata for a struct type or an instantiation of a
// generic one.
type StructInfo struct {
	Name source.StringID
	Decl source.Span
	// Positional marks tuple structs: `type Pair struct(int, int)`.
	Positional bool
	// NonExhaustive marks @non_exhaustive declarations: patterns outside
	// the declaring file must acknowledge unseen fields with `..`.
	NonExhaustive bool
	Fields        []StructField
	TypeArgs      []TypeID
}

// RegisterStruct allocates a nominal struct type slot and returns its TypeID.
func (in *Interner) RegisterStruct(name source.StringID, decl source.Span) TypeID {
	slot := in.appendStructInfo(StructInfo{Name: name, Decl: decl})
	return in.internRaw(Type{Kind: KindStruct, Payload: slot})
}

// RegisterStructInstance allocates a struct instantiation with concrete type
// arguments. Fields are filled in later with substituted types.
func (in *Interner) RegisterStructInstance(name source.StringID, decl source.Span, args []TypeID) TypeID {
	slot := in.appendStructInfo(StructInfo{Name: name, Decl: decl, TypeArgs: cloneTypeArgs(args)})
	return in.internRaw(Type{Kind: KindStruct, Payload: slot})
}

// SetStructFields stores the resolved field descriptors for the struct type.
func (in *Interner) SetStructFields(typeID TypeID, fields []StructField) {
	info := in.structInfo(typeID)
	if info == nil {
		return
	}
	info.Fields = cloneStructFields(fields)
}

// SetStructShape records the positional and non-exhaustive markers.
func (in *Interner) SetStructShape(typeID TypeID, positional, nonExhaustive bool) {
	info := in.structInfo(typeID)
	if info == nil {
		return
	}
	info.Positional = positional
	info.NonExhaustive = nonExhaustive
}

// StructInfo returns metadata for the provided struct TypeID.
func (in *Interner) StructInfo(typeID TypeID) (*StructInfo, bool) {
	info := in.structInfo(typeID)
	if info == nil {
		return nil, false
	}
	return info, true
}

// StructFields returns a copy of struct fields for the TypeID.
func (in *Interner) StructFields(typeID TypeID) []StructField {
	info := in.structInfo(typeID)
	if info == nil || len(info.Fields) == 0 {
		return nil
	}
	return cloneStructFields(info.Fields)
}

// StructArgs returns type arguments for the struct instantiation.
func (in *Interner) StructArgs(typeID TypeID) []TypeID {
	info := in.structInfo(typeID)
	if info == nil || len(info.TypeArgs) == 0 {
		return nil
	}
	return cloneTypeArgs(info.TypeArgs)
}

// FindStructInstance returns a struct TypeID whose name and type arguments
// match args.
func (in *Interner) FindStructInstance(name source.StringID, args []TypeID) (TypeID, bool) {
	if in == nil || name == source.NoStringID {
		return NoTypeID, false
	}
	for id := TypeID(1); int(id) < len(in.types); id++ {
		if in.types[id].Kind != KindStruct {
			continue
		}
		info, ok := in.StructInfo(id)
		if !ok || info == nil {
			continue
		}
		if info.Name != name {
			continue
		}
		if slices.Equal(info.TypeArgs, args) {
			return id, true
		}
	}
	return NoTypeID, false
}

func (in *Interner) structInfo(typeID TypeID) *StructInfo {
	if typeID == NoTypeID {
		return nil
	}
	tt, ok := in.Lookup(typeID)
	if !ok || tt.Kind != KindStruct {
		return nil
	}
	if tt.Payload == 0 || int(tt.Payload) >= len(in.structs) {
		return nil
	}
	return &in.structs[tt.Payload]
}

func (in *Interner) appendStructInfo(info StructInfo) uint32 {
	in.structs = append(in.structs, StructInfo{
		Name:          info.Name,
		Decl:          info.Decl,
		Positional:    info.Positional,
		NonExhaustive: info.NonExhaustive,
		Fields:        cloneStructFields(info.Fields),
		TypeArgs:      cloneTypeArgs(info.TypeArgs),
	})
	slot, err := safecast.Conv[uint32](len(in.structs) - 1)
	if err != nil {
		panic(fmt.Errorf("struct info overflow: %w", err))
	}
	return slot
}

func cloneStructFields(fields []StructField) []StructField {
	if len(fields) == 0 {
		return nil
	}
	return slices.Clone(fields)
}
