package sema

import (
	"fmt"

	"volt/internal/ast"
	"volt/internal/diag"
	"volt/internal/types"
)

// checkPatSlice сопоставляет `[a, b, rest @ .., z]` с массивом или
// слайсом. Для массива известной длины арность проверяется здесь же.
func (c *checker) checkPatSlice(id ast.PatID, data *ast.PatSliceData, expected types.TypeID, defMode BindingMode, ctx patCtx) {
	bt := c.types.Builtins()
	span := c.patSpan(id)
	resolved := c.resolve(expected)
	minLen := uint32(len(data.Before) + len(data.After))

	elemType := bt.Error
	restType := bt.Error

	t, found := c.types.Lookup(resolved)
	_, isInfer := c.types.InferIndex(resolved)
	switch {
	case found && t.Kind == types.KindArray && t.Count == types.ArrayDynamicLength:
		elemType = t.Elem
		restType = resolved
	case found && t.Kind == types.KindArray:
		elemType = t.Elem
		switch {
		case !data.HasRest && minLen != t.Count:
			c.handler.StructSpanErrWithCode(
				span,
				fmt.Sprintf("pattern requires %d element%s but array has %d", minLen, plural(int(minLen)), t.Count),
				diag.TypSliceCount,
			).
				SpanLabel(span, fmt.Sprintf("expected %d element%s", t.Count, plural(int(t.Count)))).
				Emit()
		case data.HasRest && minLen > t.Count:
			c.handler.StructSpanErrWithCode(
				span,
				fmt.Sprintf("pattern requires at least %d element%s but array has %d", minLen, plural(int(minLen)), t.Count),
				diag.TypSliceMin,
			).
				SpanLabel(span, fmt.Sprintf("pattern cannot match array of %d element%s", t.Count, plural(int(t.Count)))).
				Emit()
		case data.HasRest:
			restType = c.types.Intern(types.MakeArray(t.Elem, t.Count-minLen))
		}
	case found && t.Kind == types.KindError:
		// скрутини уже сломан, молчим
	case !found || isInfer:
		// тип скрутини ещё не известен, элементы не проверяются
	default:
		c.handler.StructSpanErrWithCode(
			span,
			fmt.Sprintf("expected an array or slice, found `%s`", c.label(resolved)),
			diag.TypExpectedSlice,
		).
			SpanLabel(span, fmt.Sprintf("pattern cannot match with input type `%s`", c.label(resolved))).
			Emit()
		c.result.PatTypes[id] = bt.Error
	}

	for _, el := range data.Before {
		c.checkPat(el, elemType, defMode, ctx.sub())
	}
	if data.HasRest && data.Rest != ast.NoPatID {
		c.checkPat(data.Rest, restType, defMode, ctx.sub())
	}
	for _, el := range data.After {
		c.checkPat(el, elemType, defMode, ctx.sub())
	}
}
