package types

import (
	"fmt"
	"slices"

	"fortio.org/safecast"

	"volt/internal/source"
)

// UnionInfo stores metadata for an untagged union type: named fields that
// share storage. A union pattern must pick exactly one of them.
type UnionInfo struct {
	Name     source.StringID
	Decl     source.Span
	Fields   []StructField
	TypeArgs []TypeID
}

// RegisterUnion allocates a nominal union type slot and returns its TypeID.
func (in *Interner) RegisterUnion(name source.StringID, decl source.Span) TypeID {
	slot := in.appendUnionInfo(UnionInfo{Name: name, Decl: decl})
	return in.internRaw(Type{Kind: KindUnion, Payload: slot})
}

// RegisterUnionInstance allocates a union instantiation with concrete type
// arguments.
func (in *Interner) RegisterUnionInstance(name source.StringID, decl source.Span, args []TypeID) TypeID {
	slot := in.appendUnionInfo(UnionInfo{Name: name, Decl: decl, TypeArgs: cloneTypeArgs(args)})
	return in.internRaw(Type{Kind: KindUnion, Payload: slot})
}

// SetUnionFields stores the resolved fields for the union type.
func (in *Interner) SetUnionFields(typeID TypeID, fields []StructField) {
	info := in.unionInfo(typeID)
	if info == nil {
		return
	}
	info.Fields = cloneStructFields(fields)
}

// UnionInfo returns metadata for the provided union TypeID.
func (in *Interner) UnionInfo(typeID TypeID) (*UnionInfo, bool) {
	info := in.unionInfo(typeID)
	if info == nil {
		return nil, false
	}
	return info, true
}

// UnionArgs returns type arguments for the union instantiation.
func (in *Interner) UnionArgs(typeID TypeID) []TypeID {
	info := in.unionInfo(typeID)
	if info == nil || len(info.TypeArgs) == 0 {
		return nil
	}
	return cloneTypeArgs(info.TypeArgs)
}

// FindUnionInstance returns a union TypeID whose name and type arguments
// match args.
func (in *Interner) FindUnionInstance(name source.StringID, args []TypeID) (TypeID, bool) {
	if in == nil || name == source.NoStringID {
		return NoTypeID, false
	}
	for id := TypeID(1); int(id) < len(in.types); id++ {
		if in.types[id].Kind != KindUnion {
			continue
		}
		info := in.unionInfo(id)
		if info == nil || info.Name != name {
			continue
		}
		if slices.Equal(info.TypeArgs, args) {
			return id, true
		}
	}
	return NoTypeID, false
}

func (in *Interner) unionInfo(typeID TypeID) *UnionInfo {
	if typeID == NoTypeID {
		return nil
	}
	tt, ok := in.Lookup(typeID)
	if !ok || tt.Kind != KindUnion {
		return nil
	}
	if tt.Payload == 0 || int(tt.Payload) >= len(in.unions) {
		return nil
	}
	return &in.unions[tt.Payload]
}

func (in *Interner) appendUnionInfo(info UnionInfo) uint32 {
	in.unions = append(in.unions, UnionInfo{
		Name:     info.Name,
		Decl:     info.Decl,
		Fields:   cloneStructFields(info.Fields),
		TypeArgs: cloneTypeArgs(info.TypeArgs),
	})
	slot, err := safecast.Conv[uint32](len(in.unions) - 1)
	if err != nil {
		panic(fmt.Errorf("union info overflow: %w", err))
	}
	return slot
}
