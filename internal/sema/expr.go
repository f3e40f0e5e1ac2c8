package sema

import (
	"fmt"
	"strings"

	"volt/internal/ast"
	"volt/internal/diag"
	"volt/internal/source"
	"volt/internal/types"
)

// checkExpr типизирует выражение и записывает результат в таблицу.
func (c *checker) checkExpr(id ast.ExprID) types.TypeID {
	if id == ast.NoExprID {
		return c.types.Builtins().Error
	}
	t := c.exprType(id)
	c.result.ExprTypes[id] = t
	return t
}

func (c *checker) exprType(id ast.ExprID) types.TypeID {
	bt := c.types.Builtins()
	expr := c.builder.Exprs.Get(id)
	if expr == nil {
		return bt.Error
	}
	switch expr.Kind {
	case ast.ExprLit:
		if data, ok := c.builder.Exprs.Lit(id); ok {
			return c.literalType(data)
		}
	case ast.ExprPath:
		if data, ok := c.builder.Exprs.Path(id); ok {
			return c.pathExprType(id, data)
		}
	case ast.ExprRef:
		if data, ok := c.builder.Exprs.Ref(id); ok {
			operand := c.checkExpr(data.Operand)
			return c.types.Intern(types.MakeReference(operand, data.Mutable))
		}
	case ast.ExprOwn:
		if data, ok := c.builder.Exprs.Own(id); ok {
			operand := c.checkExpr(data.Operand)
			return c.types.Intern(types.MakeOwn(operand))
		}
	case ast.ExprTuple:
		if data, ok := c.builder.Exprs.Tuple(id); ok {
			if len(data.Elements) == 0 {
				return bt.Unit
			}
			elems := make([]types.TypeID, len(data.Elements))
			for i, el := range data.Elements {
				elems[i] = c.checkExpr(el)
			}
			return c.types.RegisterTuple(elems)
		}
	case ast.ExprGroup:
		if data, ok := c.builder.Exprs.Group(id); ok {
			return c.checkExpr(data.Inner)
		}
	case ast.ExprMatch:
		if data, ok := c.builder.Exprs.Match(id); ok {
			return c.matchType(id, data)
		}
	case ast.ExprBlock:
		if data, ok := c.builder.Exprs.Block(id); ok {
			t, _ := c.checkBlock(data)
			return t
		}
	}
	return bt.Error
}

func (c *checker) pathExprType(id ast.ExprID, data *ast.ExprPathData) types.TypeID {
	switch len(data.Segments) {
	case 0:
		return c.types.Builtins().Error
	case 1:
		return c.singlePathType(data.Segments[0])
	case 2:
		return c.enumPathType(id, data)
	}
	c.handler.StructSpanErrWithCode(
		c.exprSpan(id),
		fmt.Sprintf("cannot find value `%s` in this scope", c.renderPath(data.Segments)),
		diag.TypUnknownName,
	).Emit()
	return c.types.Builtins().Error
}

// singlePathType резолвит одиночное имя: локалы затеняют константы,
// константы затеняют функции.
func (c *checker) singlePathType(seg ast.PathSegment) types.TypeID {
	if b, ok := c.lookupLocal(seg.Name); ok {
		return b.typ
	}
	if cd, ok := c.consts[seg.Name]; ok {
		return c.resolveConstType(cd, seg.Span)
	}
	if fd, ok := c.fns[seg.Name]; ok {
		return fd.typ
	}
	text := c.lookupName(seg.Name)
	if _, ok := c.typeDecls[seg.Name]; ok {
		c.handler.StructSpanErrWithCode(
			seg.Span,
			fmt.Sprintf("expected a value, found type `%s`", text),
			diag.TypUnknownName,
		).Emit()
		return c.types.Builtins().Error
	}
	b := c.handler.StructSpanErrWithCode(
		seg.Span,
		fmt.Sprintf("cannot find value `%s` in this scope", text),
		diag.TypUnknownName,
	)
	if hint, ok := nearestName(text, c.visibleValueNames()); ok {
		b.SpanSuggestionShort(seg.Span, "a value with a similar name exists", hint, diag.ApplicabilityMaybeIncorrect)
	}
	b.Emit()
	return c.types.Builtins().Error
}

// enumPathType резолвит `Enum::Variant` в позиции значения. Значением
// может быть только unit-вариант.
func (c *checker) enumPathType(id ast.ExprID, data *ast.ExprPathData) types.TypeID {
	head, tail := data.Segments[0], data.Segments[1]
	headText := c.lookupName(head.Name)
	errType := c.types.Builtins().Error

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
		return errType
	}
	if decl.kind != declEnum {
		c.handler.StructSpanErrWithCode(
			head.Span,
			fmt.Sprintf("`%s` is not an enum", headText),
			diag.TypUnknownName,
		).
			SpanLabel(decl.nameSpan, fmt.Sprintf("%s declared here", decl.kind)).
			Emit()
		return errType
	}
	_, variant, ok := c.types.EnumVariant(decl.typeID, tail.Name)
	if !ok {
		c.reportUnknownVariant(decl, tail)
		return errType
	}
	variantText := c.lookupName(tail.Name)
	switch variant.Kind {
	case types.VariantTuple:
		c.handler.StructSpanErrWithCode(
			c.exprSpan(id),
			fmt.Sprintf("expected a value, found tuple variant `%s::%s`", headText, variantText),
			diag.TypUnknownName,
		).Emit()
		return errType
	case types.VariantStruct:
		c.handler.StructSpanErrWithCode(
			c.exprSpan(id),
			fmt.Sprintf("expected a value, found struct variant `%s::%s`", headText, variantText),
			diag.TypUnknownName,
		).Emit()
		return errType
	}
	return c.freshInstance(decl)
}

func (c *checker) reportUnknownVariant(decl *typeDecl, seg ast.PathSegment) {
	enumText := c.lookupName(decl.name)
	varText := c.lookupName(seg.Name)
	b := c.handler.StructSpanErrWithCode(
		seg.Span,
		fmt.Sprintf("no variant named `%s` found for enum `%s`", varText, enumText),
		diag.TypUnknownName,
	).
		SpanLabel(seg.Span, "variant not found").
		SpanLabel(decl.nameSpan, fmt.Sprintf("enum `%s` declared here", enumText))
	if info, ok := c.types.EnumInfo(decl.typeID); ok {
		names := make([]string, 0, len(info.Variants))
		for i := range info.Variants {
			names = append(names, c.lookupName(info.Variants[i].Name))
		}
		if hint, ok := nearestName(varText, names); ok {
			b.SpanSuggestionShort(seg.Span, "there is a variant with a similar name", hint, diag.ApplicabilityMaybeIncorrect)
		}
	}
	b.Emit()
}

func (c *checker) renderPath(segs []ast.PathSegment) string {
	parts := make([]string, len(segs))
	for i, s := range segs {
		parts[i] = c.lookupName(s.Name)
	}
	return strings.Join(parts, "::")
}

// matchType проверяет match вместе с происходящими из него if и while.
// Тип результата задаёт первая незавершающаяся ветка.
func (c *checker) matchType(id ast.ExprID, data *ast.ExprMatchData) types.TypeID {
	scrType := c.checkExpr(data.Scrutinee)
	desugared := data.Source != ast.MatchNormal
	if desugared {
		c.demandCond(scrType, c.exprSpan(data.Scrutinee), data.Source)
	}
	matchSpan := c.exprSpan(id)
	bt := c.types.Builtins()
	loop := data.Source == ast.MatchWhileDesugar

	result := types.NoTypeID
	var anchorSpan source.Span

	for _, armID := range data.Arms {
		arm := c.builder.Exprs.Arm(armID)
		if arm == nil {
			continue
		}
		mark := len(c.newBindings)
		c.pushScope()
		c.checkPatTop(arm.Pat, scrType, patCtx{condDesugar: desugared})
		bodyType, diverges := c.checkArmBody(arm.Body)
		c.popScope()
		c.newBindings = c.newBindings[:mark]

		if loop {
			// тело цикла обязано давать Unit; синтезированная ветка
			// выхода пропускается
			if !c.exprSpan(arm.Body).Empty() {
				c.demand(bt.Unit, bodyType, c.blockResultSpan(arm.Body))
			}
			continue
		}
		if diverges {
			continue
		}
		if result == types.NoTypeID {
			result = bodyType
			anchorSpan = c.exprSpan(arm.Body)
			continue
		}
		if !c.unify(result, bodyType) {
			c.reportArmMismatch(data.Source, matchSpan, anchorSpan, arm, result, bodyType)
			// дальше match считается ошибочным, чтобы не каскадить
			result = bt.Error
		}
	}
	if loop {
		return bt.Unit
	}
	if result == types.NoTypeID {
		// все ветки завершаются return
		return c.types.FreshInfer()
	}
	return result
}

// demandCond требует bool от условия if или while.
func (c *checker) demandCond(scrType types.TypeID, span source.Span, src ast.MatchSource) {
	if c.unify(c.types.Builtins().Bool, scrType) {
		return
	}
	msg := "`if` condition is not boolean"
	if src == ast.MatchWhileDesugar {
		msg = "`while` condition is not boolean"
	}
	c.handler.StructSpanErrWithCode(span, msg, diag.TypCondNotBool).
		NoteExpectedFound("bool", c.label(scrType)).
		Emit()
}

func (c *checker) reportArmMismatch(src ast.MatchSource, matchSpan, anchorSpan source.Span, arm *ast.Arm, expected, found types.TypeID) {
	bodySpan := c.exprSpan(arm.Body)
	expectedLabel := c.label(expected)
	foundLabel := c.label(found)
	if src == ast.MatchIfDesugar {
		if bodySpan.Empty() {
			// ветка else синтезирована парсером; отсутствующий else
			// даёт `()`, так что ожидание на его стороне
			c.handler.StructSpanErrWithCode(matchSpan, "`if` may be missing an `else` clause", diag.TypMismatch).
				SpanLabel(matchSpan, fmt.Sprintf("expected `%s`, found `%s`", foundLabel, expectedLabel)).
				Note("`if` expressions without `else` evaluate to `()`").
				Help("consider adding an `else` block that evaluates to the expected type").
				Emit()
			return
		}
		c.handler.StructSpanErrWithCode(bodySpan, "`if` and `else` have incompatible types", diag.TypMismatch).
			SpanLabel(anchorSpan, "expected because of this").
			SpanLabel(bodySpan, fmt.Sprintf("expected `%s`, found `%s`", expectedLabel, foundLabel)).
			Emit()
		return
	}
	c.handler.StructSpanErrWithCode(bodySpan, "`match` arms have incompatible types", diag.TypMismatch).
		SpanLabel(anchorSpan, fmt.Sprintf("this is found to be of type `%s`", expectedLabel)).
		SpanLabel(bodySpan, fmt.Sprintf("expected `%s`, found `%s`", expectedLabel, foundLabel)).
		Emit()
}

// checkArmBody типизирует тело ветки и сообщает, завершается ли оно
// безусловным return.
func (c *checker) checkArmBody(id ast.ExprID) (types.TypeID, bool) {
	if data, ok := c.builder.Exprs.Block(id); ok {
		t, diverges := c.checkBlock(data)
		c.result.ExprTypes[id] = t
		return t, diverges
	}
	return c.checkExpr(id), false
}

// checkBlock проверяет стейтменты и возвращает тип хвостового выражения,
// Unit при его отсутствии.
func (c *checker) checkBlock(data *ast.ExprBlockData) (types.TypeID, bool) {
	c.pushScope()
	defer c.popScope()
	diverges := false
	for _, sid := range data.Stmts {
		if c.checkStmt(sid) {
			diverges = true
		}
	}
	if data.Tail != ast.NoExprID {
		return c.checkExpr(data.Tail), diverges
	}
	return c.types.Builtins().Unit, diverges
}

func (c *checker) checkStmt(id ast.StmtID) bool {
	stmt := c.builder.Stmts.Get(id)
	if stmt == nil {
		return false
	}
	switch stmt.Kind {
	case ast.StmtLet:
		if data, ok := c.builder.Stmts.Let(id); ok {
			c.checkLet(data)
		}
	case ast.StmtExpr:
		if data, ok := c.builder.Stmts.Expr(id); ok {
			c.checkExpr(data.Expr)
		}
	case ast.StmtReturn:
		if data, ok := c.builder.Stmts.Return(id); ok {
			c.checkReturn(stmt, data)
		}
		return true
	}
	return false
}

func (c *checker) checkLet(data *ast.StmtLetData) {
	declared := types.NoTypeID
	if data.Type != ast.NoTypeID {
		declared = c.resolveTypeExpr(data.Type)
	}
	var initType types.TypeID
	hasInit := data.Init != ast.NoExprID
	if hasInit {
		initType = c.checkExpr(data.Init)
	}

	var expected types.TypeID
	switch {
	case declared != types.NoTypeID && hasInit:
		c.demand(declared, initType, c.exprSpan(data.Init))
		expected = declared
	case declared != types.NoTypeID:
		expected = declared
	case hasInit:
		expected = initType
	default:
		expected = c.types.FreshInfer()
	}

	mark := len(c.newBindings)
	c.checkPatTop(data.Pat, expected, patCtx{})
	c.finalizeBindings(mark)
}

func (c *checker) checkReturn(stmt *ast.Stmt, data *ast.StmtReturnData) {
	got := c.types.Builtins().Unit
	span := stmt.Span
	if data.Value != ast.NoExprID {
		got = c.checkExpr(data.Value)
		span = c.exprSpan(data.Value)
	}
	if !c.inFn {
		c.handler.SpanErr(stmt.Span, "return statement outside of function body")
		return
	}
	c.demand(c.fnResult, got, span)
}

// finalizeBindings дефолтит литеральные типы на границе let: дальше имя
// видно уже с конкретным типом.
func (c *checker) finalizeBindings(mark int) {
	for _, pid := range c.newBindings[mark:] {
		norm := c.normalize(c.result.BindingTypes[pid])
		c.result.BindingTypes[pid] = norm
		if data, ok := c.builder.Pats.Binding(pid); ok {
			c.rebind(data.Name, norm)
		}
	}
	c.newBindings = c.newBindings[:mark]
}

// blockResultSpan указывает на хвостовое выражение блока, если оно есть.
func (c *checker) blockResultSpan(id ast.ExprID) source.Span {
	if data, ok := c.builder.Exprs.Block(id); ok && data.Tail != ast.NoExprID {
		return c.exprSpan(data.Tail)
	}
	return c.exprSpan(id)
}
