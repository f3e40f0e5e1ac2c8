package types

// Substitute rewrites id, replacing every type in mapping with its image.
// Keys are usually KindParam types produced by RegisterTypeParam; the walk
// re-interns structural types and deduplicates nominal instantiations
// through Find*Instance.
func Substitute(in *Interner, id TypeID, mapping map[TypeID]TypeID) TypeID {
	if in == nil || id == NoTypeID || len(mapping) == 0 {
		return id
	}
	if repl, ok := mapping[id]; ok && repl != NoTypeID {
		return repl
	}
	tt, ok := in.Lookup(id)
	if !ok {
		return id
	}

	switch tt.Kind {
	case KindReference, KindOwn, KindArray:
		elem := Substitute(in, tt.Elem, mapping)
		if elem == tt.Elem {
			return id
		}
		clone := tt
		clone.Elem = elem
		return in.Intern(clone)

	case KindTuple:
		info, ok := in.TupleInfo(id)
		if !ok || info == nil || len(info.Elems) == 0 {
			return id
		}
		elems, changed := substituteList(in, info.Elems, mapping)
		if !changed {
			return id
		}
		return in.RegisterTuple(elems)

	case KindFn:
		info, ok := in.FnInfo(id)
		if !ok || info == nil {
			return id
		}
		params, changed := substituteList(in, info.Params, mapping)
		result := Substitute(in, info.Result, mapping)
		if !changed && result == info.Result {
			return id
		}
		return in.RegisterFn(params, result)

	case KindStruct:
		return substituteStruct(in, id, mapping)

	case KindEnum:
		return substituteEnum(in, id, mapping)

	case KindUnion:
		return substituteUnion(in, id, mapping)

	default:
		return id
	}
}

func substituteStruct(in *Interner, id TypeID, mapping map[TypeID]TypeID) TypeID {
	info, ok := in.StructInfo(id)
	if !ok || info == nil || len(info.TypeArgs) == 0 {
		return id
	}
	args, changed := substituteList(in, info.TypeArgs, mapping)
	if !changed {
		return id
	}
	if existing, ok := in.FindStructInstance(info.Name, args); ok {
		return existing
	}
	positional, nonExhaustive := info.Positional, info.NonExhaustive
	// Register before touching fields so recursive field references resolve
	// to this instance instead of looping.
	inst := in.RegisterStructInstance(info.Name, info.Decl, args)
	fields := in.StructFields(id)
	for i := range fields {
		fields[i].Type = Substitute(in, fields[i].Type, mapping)
	}
	in.SetStructFields(inst, fields)
	in.SetStructShape(inst, positional, nonExhaustive)
	return inst
}

func substituteEnum(in *Interner, id TypeID, mapping map[TypeID]TypeID) TypeID {
	info, ok := in.EnumInfo(id)
	if !ok || info == nil || len(info.TypeArgs) == 0 {
		return id
	}
	args, changed := substituteList(in, info.TypeArgs, mapping)
	if !changed {
		return id
	}
	if existing, ok := in.FindEnumInstance(info.Name, args); ok {
		return existing
	}
	nonExhaustive := info.NonExhaustive
	variants := cloneEnumVariants(info.Variants)
	inst := in.RegisterEnumInstance(info.Name, info.Decl, args)
	for i := range variants {
		for j := range variants[i].Fields {
			variants[i].Fields[j].Type = Substitute(in, variants[i].Fields[j].Type, mapping)
		}
	}
	in.SetEnumVariants(inst, variants)
	in.SetEnumNonExhaustive(inst, nonExhaustive)
	return inst
}

func substituteUnion(in *Interner, id TypeID, mapping map[TypeID]TypeID) TypeID {
	info, ok := in.UnionInfo(id)
	if !ok || info == nil || len(info.TypeArgs) == 0 {
		return id
	}
	args, changed := substituteList(in, info.TypeArgs, mapping)
	if !changed {
		return id
	}
	if existing, ok := in.FindUnionInstance(info.Name, args); ok {
		return existing
	}
	fields := cloneStructFields(info.Fields)
	inst := in.RegisterUnionInstance(info.Name, info.Decl, args)
	for i := range fields {
		fields[i].Type = Substitute(in, fields[i].Type, mapping)
	}
	in.SetUnionFields(inst, fields)
	return inst
}

func substituteList(in *Interner, ids []TypeID, mapping map[TypeID]TypeID) ([]TypeID, bool) {
	out := make([]TypeID, len(ids))
	changed := false
	for i, id := range ids {
		out[i] = Substitute(in, id, mapping)
		changed = changed || out[i] != id
	}
	return out, changed
}
