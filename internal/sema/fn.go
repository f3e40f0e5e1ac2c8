package sema

import (
	"fmt"

	"volt/internal/ast"
	"volt/internal/diag"
	"volt/internal/types"
)

// checkFnItem проверяет тело функции против её сигнатуры.
func (c *checker) checkFnItem(itemID ast.ItemID) {
	decl, ok := c.fnItems[itemID]
	if !ok {
		return
	}
	fi, ok := c.builder.Items.Fn(itemID)
	if !ok {
		return
	}

	savedIn, savedResult := c.inFn, c.fnResult
	c.inFn, c.fnResult = true, decl.result
	defer func() {
		c.inFn, c.fnResult = savedIn, savedResult
	}()

	c.pushScope()
	defer c.popScope()

	params := c.builder.Items.CollectFnParams(fi.ParamStart, fi.ParamCount)
	for _, p := range params {
		t := c.resolveTypeExpr(p.Type)
		mark := len(c.newBindings)
		c.checkPatTop(p.Pat, t, patCtx{
			atParamTop:    true,
			paramTypeSpan: c.typeExprSpan(p.Type),
		})
		c.finalizeBindings(mark)
	}

	body, ok := c.builder.Exprs.Block(fi.Body)
	if !ok {
		return
	}
	bodyType, diverges := c.checkBlock(body)
	c.result.ExprTypes[fi.Body] = bodyType
	if diverges {
		return
	}
	if c.unify(decl.result, bodyType) {
		return
	}
	b := c.mismatch(decl.result, bodyType, c.blockResultSpan(fi.Body))
	if fi.ReturnType == ast.NoTypeID {
		norm := c.normalize(bodyType)
		if c.suggestable(norm) {
			snippet := fmt.Sprintf("-> %s ", types.Label(c.types, norm))
			b.SpanSuggestion(
				c.exprSpan(fi.Body).CollapseToStart(),
				"try adding a return type",
				snippet,
				diag.ApplicabilityMachineApplicable,
			)
		}
	}
	b.Emit()
}

// suggestable сообщает, можно ли печатать тип в автоподсказке. Ошибки и
// нерешённые переменные внутри делают подсказку мусорной.
func (c *checker) suggestable(id types.TypeID) bool {
	id = c.resolve(id)
	if _, ok := c.types.InferIndex(id); ok {
		return false
	}
	t, ok := c.types.Lookup(id)
	if !ok {
		return false
	}
	switch t.Kind {
	case types.KindInvalid, types.KindError, types.KindParam:
		return false
	case types.KindReference, types.KindOwn, types.KindArray:
		return c.suggestable(t.Elem)
	case types.KindTuple:
		info, ok := c.types.TupleInfo(id)
		if !ok {
			return false
		}
		return c.suggestableAll(info.Elems)
	case types.KindStruct:
		return c.suggestableAll(c.types.StructArgs(id))
	case types.KindEnum:
		return c.suggestableAll(c.types.EnumArgs(id))
	case types.KindUnion:
		return c.suggestableAll(c.types.UnionArgs(id))
	case types.KindFn:
		info, ok := c.types.FnInfo(id)
		if !ok {
			return false
		}
		return c.suggestableAll(info.Params) && c.suggestable(info.Result)
	}
	return true
}

func (c *checker) suggestableAll(ids []types.TypeID) bool {
	for _, id := range ids {
		if !c.suggestable(id) {
			return false
		}
	}
	return true
}
