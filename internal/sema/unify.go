package sema

import (
	"volt/internal/diag"
	"volt/internal/source"
	"volt/internal/types"
)

// resolve снимает цепочку решённых переменных вывода с верхушки типа.
func (c *checker) resolve(id types.TypeID) types.TypeID {
	for {
		idx, ok := c.types.InferIndex(id)
		if !ok {
			return id
		}
		bound, ok := c.bound[idx]
		if !ok {
			return id
		}
		id = bound
	}
}

// bindInfer решает переменную. Occurs-check отбрасывает рекурсивные
// решения.
func (c *checker) bindInfer(idx uint32, to types.TypeID) bool {
	if c.occursIn(idx, to) {
		return false
	}
	c.bound[idx] = to
	return true
}

func (c *checker) occursIn(idx uint32, id types.TypeID) bool {
	id = c.resolve(id)
	if i, ok := c.types.InferIndex(id); ok {
		return i == idx
	}
	t, ok := c.types.Lookup(id)
	if !ok {
		return false
	}
	switch t.Kind {
	case types.KindReference, types.KindOwn, types.KindArray:
		return c.occursIn(idx, t.Elem)
	case types.KindTuple:
		info, ok := c.types.TupleInfo(id)
		if !ok {
			return false
		}
		for _, e := range info.Elems {
			if c.occursIn(idx, e) {
				return true
			}
		}
	case types.KindStruct:
		return c.occursInArgs(idx, c.types.StructArgs(id))
	case types.KindEnum:
		return c.occursInArgs(idx, c.types.EnumArgs(id))
	case types.KindUnion:
		return c.occursInArgs(idx, c.types.UnionArgs(id))
	case types.KindFn:
		info, ok := c.types.FnInfo(id)
		if !ok {
			return false
		}
		if c.occursInArgs(idx, info.Params) {
			return true
		}
		return c.occursIn(idx, info.Result)
	}
	return false
}

func (c *checker) occursInArgs(idx uint32, args []types.TypeID) bool {
	for _, a := range args {
		if c.occursIn(idx, a) {
			return true
		}
	}
	return false
}

// unify сводит ожидаемый и фактический типы. Ошибочные типы совместимы со
// всем: одна поломка не каскадит.
func (c *checker) unify(expected, actual types.TypeID) bool {
	expected = c.resolve(expected)
	actual = c.resolve(actual)
	if expected == actual {
		return true
	}
	bt := c.types.Builtins()
	if expected == types.NoTypeID || actual == types.NoTypeID ||
		expected == bt.Error || actual == bt.Error {
		return true
	}
	if idx, ok := c.types.InferIndex(expected); ok {
		return c.bindInfer(idx, actual)
	}
	if idx, ok := c.types.InferIndex(actual); ok {
		return c.bindInfer(idx, expected)
	}

	et := c.types.MustLookup(expected)
	at := c.types.MustLookup(actual)

	if fits, handled := c.unifyUntyped(et, at); handled {
		return fits
	}
	if et.Kind != at.Kind {
		return false
	}

	switch et.Kind {
	case types.KindInt, types.KindUint, types.KindFloat:
		return et.Width == at.Width
	case types.KindReference:
		// &mut коэрсится к &, обратное запрещено
		if et.Mutable && !at.Mutable {
			return false
		}
		return c.unify(et.Elem, at.Elem)
	case types.KindOwn:
		return c.unify(et.Elem, at.Elem)
	case types.KindArray:
		// слайс принимает массив любой длины
		if et.Count != at.Count && et.Count != types.ArrayDynamicLength {
			return false
		}
		return c.unify(et.Elem, at.Elem)
	case types.KindTuple:
		ei, eok := c.types.TupleInfo(expected)
		ai, aok := c.types.TupleInfo(actual)
		if !eok || !aok || len(ei.Elems) != len(ai.Elems) {
			return false
		}
		for i := range ei.Elems {
			if !c.unify(ei.Elems[i], ai.Elems[i]) {
				return false
			}
		}
		return true
	case types.KindStruct, types.KindEnum, types.KindUnion:
		return c.unifyNominal(expected, actual, et.Kind)
	case types.KindFn:
		ei, eok := c.types.FnInfo(expected)
		ai, aok := c.types.FnInfo(actual)
		if !eok || !aok || len(ei.Params) != len(ai.Params) {
			return false
		}
		for i := range ei.Params {
			if !c.unify(ei.Params[i], ai.Params[i]) {
				return false
			}
		}
		return c.unify(ei.Result, ai.Result)
	case types.KindContract:
		ei, eok := c.types.ContractInfo(expected)
		ai, aok := c.types.ContractInfo(actual)
		return eok && aok && ei.Name == ai.Name
	}
	// разные интернированные примитивы и разные параметры не равны
	return false
}

func (c *checker) unifyNominal(expected, actual types.TypeID, kind types.Kind) bool {
	var en, an source.StringID
	var ea, aa []types.TypeID
	switch kind {
	case types.KindStruct:
		ei, eok := c.types.StructInfo(expected)
		ai, aok := c.types.StructInfo(actual)
		if !eok || !aok {
			return false
		}
		en, an = ei.Name, ai.Name
		ea, aa = c.types.StructArgs(expected), c.types.StructArgs(actual)
	case types.KindEnum:
		ei, eok := c.types.EnumInfo(expected)
		ai, aok := c.types.EnumInfo(actual)
		if !eok || !aok {
			return false
		}
		en, an = ei.Name, ai.Name
		ea, aa = c.types.EnumArgs(expected), c.types.EnumArgs(actual)
	case types.KindUnion:
		ei, eok := c.types.UnionInfo(expected)
		ai, aok := c.types.UnionInfo(actual)
		if !eok || !aok {
			return false
		}
		en, an = ei.Name, ai.Name
		ea, aa = c.types.UnionArgs(expected), c.types.UnionArgs(actual)
	}
	if en != an || len(ea) != len(aa) {
		return false
	}
	for i := range ea {
		if !c.unify(ea[i], aa[i]) {
			return false
		}
	}
	return true
}

// unifyUntyped обрабатывает литеральные типы. Второй результат false
// означает "не наш случай".
func (c *checker) unifyUntyped(et, at types.Type) (bool, bool) {
	eu := et.Kind == types.KindUntypedInt || et.Kind == types.KindUntypedFloat
	au := at.Kind == types.KindUntypedInt || at.Kind == types.KindUntypedFloat
	if !eu && !au {
		return false, false
	}
	if eu && au {
		if et.Kind == at.Kind {
			return true, true
		}
		// целый литерал годится там, где ждут дробный
		return et.Kind == types.KindUntypedFloat, true
	}
	var concrete types.Type
	var untyped types.Kind
	if eu {
		untyped, concrete = et.Kind, at
	} else {
		untyped, concrete = at.Kind, et
	}
	if untyped == types.KindUntypedInt {
		switch concrete.Kind {
		case types.KindInt, types.KindUint, types.KindByte, types.KindFloat:
			return true, true
		}
		return false, true
	}
	return concrete.Kind == types.KindFloat, true
}

// demand требует совместимости и репортит mismatched types при провале.
func (c *checker) demand(expected, actual types.TypeID, span source.Span) bool {
	if c.unify(expected, actual) {
		return true
	}
	c.mismatch(expected, actual, span).Emit()
	return false
}

// mismatch строит стандартный репорт о несовпадении типов; вызывающий
// завершает его Emit или EmitUnless.
func (c *checker) mismatch(expected, actual types.TypeID, span source.Span) *diag.Builder {
	return c.handler.StructSpanErrWithCode(span, "mismatched types", diag.TypMismatch).
		NoteExpectedFound(c.label(expected), c.label(actual))
}

// label печатает тип для диагностики. Литеральные типы не дефолтятся,
// чтобы в сообщениях оставались {integer} и {float}.
func (c *checker) label(id types.TypeID) string {
	return types.Label(c.types, c.resolveDeep(id))
}

func (c *checker) resolveDeep(id types.TypeID) types.TypeID {
	return c.rebuild(id, false)
}

// normalize дополнительно заменяет нерешённые литеральные типы дефолтами
// int и float.
func (c *checker) normalize(id types.TypeID) types.TypeID {
	return c.rebuild(id, true)
}

func (c *checker) rebuild(id types.TypeID, def bool) types.TypeID {
	id = c.resolve(id)
	t, ok := c.types.Lookup(id)
	if !ok {
		return id
	}
	bt := c.types.Builtins()
	switch t.Kind {
	case types.KindUntypedInt:
		if def {
			return bt.Int
		}
		return id
	case types.KindUntypedFloat:
		if def {
			return bt.Float
		}
		return id
	case types.KindReference:
		elem := c.rebuild(t.Elem, def)
		if elem == t.Elem {
			return id
		}
		return c.types.Intern(types.MakeReference(elem, t.Mutable))
	case types.KindOwn:
		elem := c.rebuild(t.Elem, def)
		if elem == t.Elem {
			return id
		}
		return c.types.Intern(types.MakeOwn(elem))
	case types.KindArray:
		elem := c.rebuild(t.Elem, def)
		if elem == t.Elem {
			return id
		}
		return c.types.Intern(types.MakeArray(elem, t.Count))
	case types.KindTuple:
		info, ok := c.types.TupleInfo(id)
		if !ok {
			return id
		}
		elems, changed := c.rebuildList(info.Elems, def)
		if !changed {
			return id
		}
		return c.types.RegisterTuple(elems)
	case types.KindStruct, types.KindEnum, types.KindUnion:
		return c.rebuildNominal(id, t.Kind, def)
	case types.KindFn:
		info, ok := c.types.FnInfo(id)
		if !ok {
			return id
		}
		params, changed := c.rebuildList(info.Params, def)
		res := c.rebuild(info.Result, def)
		if !changed && res == info.Result {
			return id
		}
		return c.types.RegisterFn(params, res)
	}
	return id
}

func (c *checker) rebuildList(in []types.TypeID, def bool) ([]types.TypeID, bool) {
	changed := false
	out := make([]types.TypeID, len(in))
	for i, e := range in {
		out[i] = c.rebuild(e, def)
		changed = changed || out[i] != e
	}
	return out, changed
}

func (c *checker) rebuildNominal(id types.TypeID, kind types.Kind, def bool) types.TypeID {
	decl, ok := c.nominalDecl(id)
	if !ok || len(decl.params) == 0 {
		return id
	}
	var args []types.TypeID
	switch kind {
	case types.KindStruct:
		args = c.types.StructArgs(id)
	case types.KindEnum:
		args = c.types.EnumArgs(id)
	case types.KindUnion:
		args = c.types.UnionArgs(id)
	}
	newArgs, changed := c.rebuildList(args, def)
	if !changed || len(newArgs) != len(decl.params) {
		return id
	}
	mapping := make(map[types.TypeID]types.TypeID, len(decl.params))
	for i, p := range decl.params {
		mapping[p] = newArgs[i]
	}
	return types.Substitute(c.types, decl.typeID, mapping)
}

// nominalDecl находит декларацию номинального типа по любому его инстансу.
func (c *checker) nominalDecl(id types.TypeID) (*typeDecl, bool) {
	t, ok := c.types.Lookup(id)
	if !ok {
		return nil, false
	}
	var name source.StringID
	switch t.Kind {
	case types.KindStruct:
		info, ok := c.types.StructInfo(id)
		if !ok {
			return nil, false
		}
		name = info.Name
	case types.KindEnum:
		info, ok := c.types.EnumInfo(id)
		if !ok {
			return nil, false
		}
		name = info.Name
	case types.KindUnion:
		info, ok := c.types.UnionInfo(id)
		if !ok {
			return nil, false
		}
		name = info.Name
	default:
		return nil, false
	}
	decl, ok := c.typeDecls[name]
	return decl, ok
}

// memberMapping строит подстановку параметров декларации на аргументы
// конкретного инстанса.
func (c *checker) memberMapping(decl *typeDecl, instance types.TypeID) map[types.TypeID]types.TypeID {
	if len(decl.params) == 0 {
		return nil
	}
	var args []types.TypeID
	switch decl.kind {
	case declStruct:
		args = c.types.StructArgs(instance)
	case declEnum:
		args = c.types.EnumArgs(instance)
	case declUnion:
		args = c.types.UnionArgs(instance)
	}
	if len(args) != len(decl.params) {
		return nil
	}
	m := make(map[types.TypeID]types.TypeID, len(args))
	for i, p := range decl.params {
		m[p] = args[i]
	}
	return m
}

// memberType подставляет аргументы инстанса в тип поля декларации.
func (c *checker) memberType(raw types.TypeID, mapping map[types.TypeID]types.TypeID) types.TypeID {
	if len(mapping) == 0 {
		return raw
	}
	return types.Substitute(c.types, raw, mapping)
}

// freshInstance выдаёт инстанс декларации; generic получает свежие
// переменные вывода в аргументах.
func (c *checker) freshInstance(decl *typeDecl) types.TypeID {
	if len(decl.params) == 0 {
		return decl.typeID
	}
	mapping := make(map[types.TypeID]types.TypeID, len(decl.params))
	for _, p := range decl.params {
		mapping[p] = c.types.FreshInfer()
	}
	return types.Substitute(c.types, decl.typeID, mapping)
}

// instanceFor переиспользует ожидаемый тип, если тот уже инстанс той же
// декларации, иначе берёт свежие аргументы.
func (c *checker) instanceFor(decl *typeDecl, expected types.TypeID) types.TypeID {
	expected = c.resolve(expected)
	if d, ok := c.nominalDecl(expected); ok && d == decl {
		return expected
	}
	return c.freshInstance(decl)
}
