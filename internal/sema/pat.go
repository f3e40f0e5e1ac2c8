package sema

import (
	"fmt"
	"strings"

	"volt/internal/ast"
	"volt/internal/diag"
	"volt/internal/source"
	"volt/internal/types"
)

// patCtx несёт флаги сверху вниз по паттерну.
type patCtx struct {
	// condDesugar отмечает ветки, синтезированные из if и while:
	// несовпадение типа скрутини уже отрепорчено на условии.
	condDesugar bool
	// atParamTop действует только на верхнем паттерне параметра функции
	// и включает подсказку с правкой сигнатуры.
	atParamTop    bool
	paramTypeSpan source.Span
}

// sub возвращает контекст для подпаттернов: флаг параметра не наследуется.
func (ctx patCtx) sub() patCtx {
	return patCtx{condDesugar: ctx.condDesugar}
}

// adjustMode решает, что делать со ссылками скрутини перед сопоставлением.
type adjustMode uint8

const (
	// adjustPeel снимает ссылки и ослабляет режим биндинга.
	adjustPeel adjustMode = iota
	// adjustPass сопоставляет тип как есть.
	adjustPass
	// adjustReset возвращает режим биндинга к значению: паттерн сам
	// говорит о ссылке явно.
	adjustReset
)

func (c *checker) checkPatTop(id ast.PatID, expected types.TypeID, ctx patCtx) {
	c.checkPat(id, expected, BindByValue, ctx)
}

func (c *checker) checkPat(id ast.PatID, expected types.TypeID, defMode BindingMode, ctx patCtx) {
	pat := c.builder.Pats.Get(id)
	if pat == nil {
		return
	}
	switch c.adjustModeFor(id, pat) {
	case adjustPeel:
		expected, defMode = c.peelRefs(id, expected, defMode)
	case adjustReset:
		defMode = BindByValue
	}
	expected = c.resolve(expected)
	c.result.PatTypes[id] = expected

	switch pat.Kind {
	case ast.PatWild:
		// подходит к любому типу
	case ast.PatLit:
		if data, ok := c.builder.Pats.Lit(id); ok {
			c.checkPatLit(id, data, expected, ctx)
		}
	case ast.PatRange:
		if data, ok := c.builder.Pats.Range(id); ok {
			c.checkPatRange(id, data, expected)
		}
	case ast.PatBinding:
		if data, ok := c.builder.Pats.Binding(id); ok {
			c.checkPatBinding(id, data, expected, defMode, ctx)
		}
	case ast.PatPath:
		if data, ok := c.builder.Pats.Path(id); ok {
			c.checkPatPath(id, data, expected, ctx)
		}
	case ast.PatStruct:
		if data, ok := c.builder.Pats.Struct(id); ok {
			c.checkPatStruct(id, data, expected, defMode, ctx)
		}
	case ast.PatTupleStruct:
		if data, ok := c.builder.Pats.TupleStruct(id); ok {
			c.checkPatTupleStruct(id, data, expected, defMode, ctx)
		}
	case ast.PatTuple:
		if data, ok := c.builder.Pats.Tuple(id); ok {
			c.checkPatTuple(id, data, expected, defMode, ctx)
		}
	case ast.PatOr:
		if data, ok := c.builder.Pats.Or(id); ok {
			c.checkPatOr(data, expected, defMode, ctx)
		}
	case ast.PatRef:
		if data, ok := c.builder.Pats.Ref(id); ok {
			c.checkPatRef(id, data, expected, defMode, ctx)
		}
	case ast.PatOwn:
		if data, ok := c.builder.Pats.Own(id); ok {
			c.checkPatOwn(id, data, expected, defMode, ctx)
		}
	case ast.PatSlice:
		if data, ok := c.builder.Pats.Slice(id); ok {
			c.checkPatSlice(id, data, expected, defMode, ctx)
		}
	}
}

// adjustModeFor повторяет правила match-эргономики: деструктурирующие
// паттерны снимают ссылки, биндинги и `_` берут тип как есть, явный `&`
// сбрасывает накопленный режим.
func (c *checker) adjustModeFor(id ast.PatID, pat *ast.Pat) adjustMode {
	switch pat.Kind {
	case ast.PatWild, ast.PatBinding:
		return adjustPass
	case ast.PatRef:
		return adjustReset
	case ast.PatLit:
		// литерал, чей тип сам ссылка, сопоставляется без снятия
		if data, ok := c.builder.Pats.Lit(id); ok {
			if lit, ok := c.builder.Exprs.Lit(data.Value); ok && lit.Kind == ast.LitByteString {
				return adjustPass
			}
		}
		return adjustPeel
	}
	return adjustPeel
}

// peelRefs снимает ссылки со скрутини и ослабляет дефолтный режим
// биндинга. Каждый снятый слой запоминается для последующих фаз.
func (c *checker) peelRefs(id ast.PatID, expected types.TypeID, defMode BindingMode) (types.TypeID, BindingMode) {
	for {
		resolved := c.resolve(expected)
		t, ok := c.types.Lookup(resolved)
		if !ok || t.Kind != types.KindReference {
			return expected, defMode
		}
		c.result.Adjustments[id] = append(c.result.Adjustments[id], resolved)
		switch {
		case defMode == BindByValue && t.Mutable:
			defMode = BindByRefMut
		case defMode == BindByValue:
			defMode = BindByRef
		case defMode == BindByRefMut && !t.Mutable:
			// после разделяемой ссылки мутабельность не возвращается
			defMode = BindByRef
		}
		expected = t.Elem
	}
}

func (c *checker) checkPatLit(id ast.PatID, data *ast.PatLitData, expected types.TypeID, ctx patCtx) {
	litType := c.checkExpr(data.Value)
	if !c.unify(expected, litType) {
		c.mismatch(expected, litType, c.patSpan(id)).EmitUnless(ctx.condDesugar)
	}
}

func (c *checker) checkPatRange(id ast.PatID, data *ast.PatRangeData, expected types.TypeID) {
	loType := c.checkExpr(data.Lo)
	hiType := c.checkExpr(data.Hi)
	loOK := c.rangeEndpointOK(loType)
	hiOK := c.rangeEndpointOK(hiType)
	if !loOK || !hiOK {
		b := c.handler.StructSpanErrWithCode(
			c.patSpan(id),
			"only `char` and numeric types are allowed in range patterns",
			diag.TypRangeEndpoint,
		)
		c.rangeEndpointLabel(b, data.Lo, loType, !loOK)
		c.rangeEndpointLabel(b, data.Hi, hiType, !hiOK)
		b.Emit()
		return
	}
	c.demand(expected, loType, c.exprSpan(data.Lo))
	c.demand(expected, hiType, c.exprSpan(data.Hi))
}

func (c *checker) rangeEndpointOK(id types.TypeID) bool {
	id = c.resolve(id)
	if _, ok := c.types.InferIndex(id); ok {
		return true
	}
	t, ok := c.types.Lookup(id)
	if !ok {
		return true
	}
	switch t.Kind {
	case types.KindInt, types.KindUint, types.KindFloat, types.KindByte,
		types.KindChar, types.KindUntypedInt, types.KindUntypedFloat,
		types.KindError:
		return true
	}
	return false
}

func (c *checker) rangeEndpointLabel(b *diag.Builder, expr ast.ExprID, t types.TypeID, bad bool) {
	span := c.exprSpan(expr)
	if bad {
		b.SpanLabel(span, fmt.Sprintf("this is of type `%s` but it should be `char` or numeric", c.label(t)))
		return
	}
	b.SpanLabel(span, fmt.Sprintf("this is of type `%s`", c.label(t)))
}

func (c *checker) checkPatBinding(id ast.PatID, data *ast.PatBindingData, expected types.TypeID, defMode BindingMode, ctx patCtx) {
	// голое имя без подпаттерна может оказаться константой
	if data.Annot == ast.BindDefault && data.Sub == ast.NoPatID {
		if cd, ok := c.consts[data.Name]; ok {
			constType := c.resolveConstType(cd, data.NameSpan)
			if !c.unify(expected, constType) {
				c.mismatch(expected, constType, c.patSpan(id)).
					SpanLabel(cd.nameSpan, "constant defined here").
					EmitUnless(ctx.condDesugar)
			}
			return
		}
	}

	mode := defMode
	switch data.Annot {
	case ast.BindMut:
		// явный mut возвращает биндинг к значению
		mode = BindByValue
	case ast.BindRef:
		mode = BindByRef
	case ast.BindRefMut:
		mode = BindByRefMut
	}

	bindType := expected
	switch mode {
	case BindByRef:
		bindType = c.types.Intern(types.MakeReference(expected, false))
	case BindByRefMut:
		bindType = c.types.Intern(types.MakeReference(expected, true))
	}

	c.result.BindingModes[id] = mode
	c.result.BindingTypes[id] = bindType
	c.newBindings = append(c.newBindings, id)
	c.declare(binding{name: data.Name, typ: bindType, mode: mode, span: data.NameSpan})

	if data.Sub != ast.NoPatID {
		c.checkPat(data.Sub, expected, defMode, ctx.sub())
	}
}

// checkPatPath сопоставляет путь `Enum::Variant`. В позиции паттерна без
// скобок допустим только unit-вариант.
func (c *checker) checkPatPath(id ast.PatID, data *ast.PatPathData, expected types.TypeID, ctx patCtx) {
	span := c.patSpan(id)
	if len(data.Segments) != 2 {
		c.handler.StructSpanErrWithCode(
			span,
			fmt.Sprintf("cannot find value `%s` in this scope", c.renderPath(data.Segments)),
			diag.TypUnknownName,
		).Emit()
		return
	}
	head, tail := data.Segments[0], data.Segments[1]
	headText := c.lookupName(head.Name)
	decl, ok := c.typeDecls[head.Name]
	if !ok {
		b := c.handler.StructSpanErrWithCode(
			head.Span,
			fmt.Sprintf("cannot find type `%s` in this scope", headText),
			diag.TypUnknownName,
		)
		if hint, ok := nearestName(headText, c.visibleTypeNames()); ok {
			b.SpanSuggestionShort(head.Span, "a type with a similar name exists", hint, diag.ApplicabilityMaybeIncorrect)
		}
		b.Emit()
		return
	}
	if decl.kind != declEnum {
		c.handler.StructSpanErrWithCode(
			head.Span,
			fmt.Sprintf("`%s` is not an enum", headText),
			diag.TypUnknownName,
		).
			SpanLabel(decl.nameSpan, fmt.Sprintf("%s declared here", decl.kind)).
			Emit()
		return
	}
	_, variant, ok := c.types.EnumVariant(decl.typeID, tail.Name)
	if !ok {
		c.reportUnknownVariant(decl, tail)
		return
	}
	varText := c.lookupName(tail.Name)
	switch variant.Kind {
	case types.VariantTuple:
		holes := make([]string, len(variant.Fields))
		for i := range holes {
			holes[i] = "_"
		}
		c.handler.StructSpanErrWithCode(
			span,
			fmt.Sprintf("expected unit variant or constant, found tuple variant `%s::%s`", headText, varText),
			diag.TypUnknownName,
		).
			SpanSuggestion(
				span,
				"use the tuple variant pattern syntax instead",
				fmt.Sprintf("%s::%s(%s)", headText, varText, strings.Join(holes, ", ")),
				diag.ApplicabilityHasPlaceholders,
			).
			Emit()
		return
	case types.VariantStruct:
		c.handler.StructSpanErrWithCode(
			span,
			fmt.Sprintf("expected unit variant or constant, found struct variant `%s::%s`", headText, varText),
			diag.TypUnknownName,
		).
			Help("use the struct variant pattern syntax instead").
			Emit()
		return
	}
	c.demand(expected, c.freshInstance(decl), span)
}

func (c *checker) checkPatOr(data *ast.PatOrData, expected types.TypeID, defMode BindingMode, ctx patCtx) {
	for _, alt := range data.Alts {
		c.checkPat(alt, expected, defMode, ctx.sub())
	}
}

func (c *checker) checkPatTuple(id ast.PatID, data *ast.PatTupleData, expected types.TypeID, defMode BindingMode, ctx patCtx) {
	bt := c.types.Builtins()
	hasRest := data.Rest >= 0
	expectedLen := len(data.Elems)
	if hasRest {
		// `..` растягивает паттерн до длины скрутини
		if info, ok := c.types.TupleInfo(c.resolve(expected)); ok && len(info.Elems) > expectedLen {
			expectedLen = len(info.Elems)
		}
	}
	maxLen := max(expectedLen, len(data.Elems))

	if maxLen == 0 {
		if !c.unify(expected, bt.Unit) {
			c.mismatch(expected, bt.Unit, c.patSpan(id)).EmitUnless(ctx.condDesugar)
			c.result.PatTypes[id] = bt.Error
			return
		}
		c.result.PatTypes[id] = bt.Unit
		return
	}

	elemVars := make([]types.TypeID, maxLen)
	for i := range elemVars {
		elemVars[i] = c.types.FreshInfer()
	}
	patType := c.types.RegisterTuple(elemVars)
	if !c.unify(expected, patType) {
		c.mismatch(expected, patType, c.patSpan(id)).EmitUnless(ctx.condDesugar)
		for _, el := range data.Elems {
			c.checkPat(el, bt.Error, defMode, ctx.sub())
		}
		c.result.PatTypes[id] = bt.Error
		return
	}
	for i, el := range data.Elems {
		idx := i
		if hasRest && i >= data.Rest {
			idx = maxLen - (len(data.Elems) - i)
		}
		c.checkPat(el, elemVars[idx], defMode, ctx.sub())
	}
	c.result.PatTypes[id] = c.resolve(patType)
}

func (c *checker) checkPatRef(id ast.PatID, data *ast.PatRefData, expected types.TypeID, defMode BindingMode, ctx patCtx) {
	bt := c.types.Builtins()
	if !c.dereferenceable(id, expected, data.Sub) {
		c.checkPat(data.Sub, bt.Error, defMode, ctx.sub())
		c.result.PatTypes[id] = bt.Error
		return
	}
	resolved := c.resolve(expected)
	if t, ok := c.types.Lookup(resolved); ok && t.Kind == types.KindReference {
		if t.Mutable == data.Mutable {
			c.checkPat(data.Sub, t.Elem, defMode, ctx.sub())
			c.result.PatTypes[id] = resolved
			return
		}
		// мутабельность ссылки в паттерне обязана совпадать со скрутини
		inner := c.types.FreshInfer()
		refType := c.types.Intern(types.MakeReference(inner, data.Mutable))
		c.mismatch(expected, refType, c.patSpan(id)).EmitUnless(ctx.condDesugar)
		c.checkPat(data.Sub, t.Elem, defMode, ctx.sub())
		c.result.PatTypes[id] = resolved
		return
	}
	inner := c.types.FreshInfer()
	refType := c.types.Intern(types.MakeReference(inner, data.Mutable))
	if !c.unify(expected, refType) {
		b := c.mismatch(expected, refType, c.patSpan(id))
		c.borrowSuggestion(b, id, data, expected, ctx)
		b.EmitUnless(ctx.condDesugar)
	}
	c.checkPat(data.Sub, inner, defMode, ctx.sub())
	c.result.PatTypes[id] = c.resolve(refType)
}

// borrowSuggestion предлагает убрать лишний `&` или поправить тип
// параметра, когда паттерн-ссылка встретил не-ссылку.
func (c *checker) borrowSuggestion(b *diag.Builder, id ast.PatID, data *ast.PatRefData, expected types.TypeID, ctx patCtx) {
	bind, ok := c.builder.Pats.Binding(data.Sub)
	if !ok || bind.Annot != ast.BindDefault || bind.Sub != ast.NoPatID {
		return
	}
	nameText := c.lookupName(bind.Name)
	if ctx.atParamTop {
		norm := c.normalize(expected)
		if c.suggestable(norm) {
			amp := "&"
			if data.Mutable {
				amp = "&mut "
			}
			b.SpanSuggestion(
				c.patSpan(id).Cover(ctx.paramTypeSpan),
				"did you mean",
				fmt.Sprintf("%s: %s%s", nameText, amp, types.Label(c.types, norm)),
				diag.ApplicabilityMachineApplicable,
			)
			return
		}
	}
	b.SpanSuggestion(
		c.patSpan(id),
		"you can probably remove the explicit borrow",
		nameText,
		diag.ApplicabilityMaybeIncorrect,
	)
}

// dereferenceable запрещает вынимать контрактный объект из-под ссылки по
// значению: за `&any C` нет типа известного размера.
func (c *checker) dereferenceable(id ast.PatID, expected types.TypeID, sub ast.PatID) bool {
	bind, ok := c.builder.Pats.Binding(sub)
	if !ok || bind.Annot == ast.BindRef || bind.Annot == ast.BindRefMut {
		return true
	}
	resolved := c.resolve(expected)
	t, ok := c.types.Lookup(resolved)
	if !ok || (t.Kind != types.KindReference && t.Kind != types.KindOwn) {
		return true
	}
	pointee := c.resolve(t.Elem)
	pt, ok := c.types.Lookup(pointee)
	if !ok || pt.Kind != types.KindContract {
		return true
	}
	c.handler.StructSpanErrWithCode(
		c.patSpan(id),
		fmt.Sprintf("type `%s` cannot be dereferenced", c.label(resolved)),
		diag.TypDerefContract,
	).
		SpanLabel(c.patSpan(id), "cannot be dereferenced").
		Emit()
	return false
}

func (c *checker) checkPatOwn(id ast.PatID, data *ast.PatOwnData, expected types.TypeID, defMode BindingMode, ctx patCtx) {
	bt := c.types.Builtins()
	if !c.dereferenceable(id, expected, data.Sub) {
		c.checkPat(data.Sub, bt.Error, defMode, ctx.sub())
		c.result.PatTypes[id] = bt.Error
		return
	}
	inner := c.types.FreshInfer()
	ownType := c.types.Intern(types.MakeOwn(inner))
	c.demand(expected, ownType, c.patSpan(id))
	c.checkPat(data.Sub, inner, defMode, ctx.sub())
	c.result.PatTypes[id] = c.resolve(ownType)
}
