package types

import (
	"fmt"

	"fortio.org/safecast"

	"volt/internal/source"
)

// VariantKind classifies the payload shape of an enum variant.
type VariantKind uint8

const (
	// VariantUnit has no payload: `Red`.
	VariantUnit VariantKind = iota
	// VariantTuple has positional fields: `Some(int)`.
	VariantTuple
	// VariantStruct has named fields: `Move { dx: int, dy: int }`.
	VariantStruct
)

// EnumVariantInfo stores metadata for a single enum variant. Fields are
// positional for tuple variants and named for struct variants.
type EnumVariantInfo struct {
	Name   source.StringID
	Kind   VariantKind
	Span   source.Span
	Fields []StructField
}

// EnumInfo stores metadata for an enum type or an instantiation of a
// generic one.
type EnumInfo struct {
	Name          source.StringID
	Decl          source.Span
	NonExhaustive bool
	Variants      []EnumVariantInfo
	TypeArgs      []TypeID
}

// RegisterEnum allocates a nominal enum type slot and returns its TypeID.
func (in *Interner) RegisterEnum(name source.StringID, decl source.Span) TypeID {
	slot := in.appendEnumInfo(EnumInfo{Name: name, Decl: decl})
	return in.internRaw(Type{Kind: KindEnum, Payload: slot})
}

// RegisterEnumInstance allocates an enum instantiation with concrete type
// arguments.
func (in *Interner) RegisterEnumInstance(name source.StringID, decl source.Span, args []TypeID) TypeID {
	slot := in.appendEnumInfo(EnumInfo{Name: name, Decl: decl, TypeArgs: cloneTypeArgs(args)})
	return in.internRaw(Type{Kind: KindEnum, Payload: slot})
}

// SetEnumVariants stores the resolved variants for the enum type.
func (in *Interner) SetEnumVariants(typeID TypeID, variants []EnumVariantInfo) {
	info := in.enumInfo(typeID)
	if info == nil {
		return
	}
	info.Variants = cloneEnumVariants(variants)
}

// SetEnumNonExhaustive marks the enum as open for future variants.
func (in *Interner) SetEnumNonExhaustive(typeID TypeID, nonExhaustive bool) {
	info := in.enumInfo(typeID)
	if info == nil {
		return
	}
	info.NonExhaustive = nonExhaustive
}

// EnumInfo returns metadata for the provided enum TypeID.
func (in *Interner) EnumInfo(typeID TypeID) (*EnumInfo, bool) {
	info := in.enumInfo(typeID)
	if info == nil {
		return nil, false
	}
	return info, true
}

// EnumArgs returns type arguments for the enum instantiation.
func (in *Interner) EnumArgs(typeID TypeID) []TypeID {
	info := in.enumInfo(typeID)
	if info == nil || len(info.TypeArgs) == 0 {
		return nil
	}
	return cloneTypeArgs(info.TypeArgs)
}

// EnumVariant looks up a variant by name and returns its index.
func (in *Interner) EnumVariant(typeID TypeID, name source.StringID) (int, *EnumVariantInfo, bool) {
	info := in.enumInfo(typeID)
	if info == nil {
		return 0, nil, false
	}
	for i := range info.Variants {
		if info.Variants[i].Name == name {
			return i, &info.Variants[i], true
		}
	}
	return 0, nil, false
}

// FindEnumInstance returns an enum TypeID whose name and type arguments
// match args.
func (in *Interner) FindEnumInstance(name source.StringID, args []TypeID) (TypeID, bool) {
	if in == nil || name == source.NoStringID {
		return NoTypeID, false
	}
	for id := TypeID(1); int(id) < len(in.types); id++ {
		if in.types[id].Kind != KindEnum {
			continue
		}
		info := in.enumInfo(id)
		if info == nil || info.Name != name {
			continue
		}
		if len(info.TypeArgs) == len(args) {
			match := true
			for i, a := range args {
				if info.TypeArgs[i] != a {
					match = false
					break
				}
			}
			if match {
				return id, true
			}
		}
	}
	return NoTypeID, false
}

func (in *Interner) enumInfo(typeID TypeID) *EnumInfo {
	if typeID == NoTypeID {
		return nil
	}
	tt, ok := in.Lookup(typeID)
	if !ok || tt.Kind != KindEnum {
		return nil
	}
	if tt.Payload == 0 || int(tt.Payload) >= len(in.enums) {
		return nil
	}
	return &in.enums[tt.Payload]
}

func (in *Interner) appendEnumInfo(info EnumInfo) uint32 {
	in.enums = append(in.enums, EnumInfo{
		Name:          info.Name,
		Decl:          info.Decl,
		NonExhaustive: info.NonExhaustive,
		Variants:      cloneEnumVariants(info.Variants),
		TypeArgs:      cloneTypeArgs(info.TypeArgs),
	})
	slot, err := safecast.Conv[uint32](len(in.enums) - 1)
	if err != nil {
		panic(fmt.Errorf("enum info overflow: %w", err))
	}
	return slot
}

func cloneEnumVariants(variants []EnumVariantInfo) []EnumVariantInfo {
	if len(variants) == 0 {
		return nil
	}
	result := make([]EnumVariantInfo, len(variants))
	for i, v := range variants {
		result[i] = EnumVariantInfo{
			Name:   v.Name,
			Kind:   v.Kind,
			Span:   v.Span,
			Fields: cloneStructFields(v.Fields),
		}
	}
	return result
}
