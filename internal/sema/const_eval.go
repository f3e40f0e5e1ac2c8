package sema

import (
	"fmt"

	"volt/internal/ast"
	"volt/internal/source"
	"volt/internal/types"
)

// resolveConstType лениво проверяет инициализатор константы и возвращает её
// тип. Повторный вход во время вычисления означает цикл.
func (c *checker) resolveConstType(decl *constDecl, use source.Span) types.TypeID {
	switch decl.state {
	case constResolved:
		return decl.typ
	case constResolving:
		name := c.lookupName(decl.name)
		c.handler.SpanErr(use,
			fmt.Sprintf("cycle detected when computing the value of `%s`", name))
		decl.typ = c.types.Builtins().Error
		decl.state = constResolved
		return decl.typ
	}
	decl.state = constResolving
	decl.typ = c.checkConstInit(decl)
	decl.state = constResolved
	return decl.typ
}

// checkConstInit проверяет тело константы вне функционального контекста:
// локальные имена и return туда не протекают.
func (c *checker) checkConstInit(decl *constDecl) types.TypeID {
	ci, ok := c.builder.Items.Const(decl.item)
	if !ok {
		return c.types.Builtins().Error
	}

	savedScopes, savedInFn, savedResult := c.scopes, c.inFn, c.fnResult
	c.scopes, c.inFn, c.fnResult = nil, false, types.NoTypeID
	defer func() { c.scopes, c.inFn, c.fnResult = savedScopes, savedInFn, savedResult }()

	declared := types.NoTypeID
	if ci.Type != ast.NoTypeID {
		declared = c.resolveTypeExpr(ci.Type)
	}
	got := c.checkExpr(ci.Value)
	if declared != types.NoTypeID {
		c.demand(declared, got, c.exprSpan(ci.Value))
		return declared
	}
	return c.normalize(got)
}

func (c *checker) checkConstItem(itemID ast.ItemID) {
	decl, ok := c.constItems[itemID]
	if !ok {
		// имя проиграло дубликату, тело не проверяется
		return
	}
	c.resolveConstType(decl, decl.nameSpan)
}

// evalConstInt вычисляет целое значение константного выражения для длины
// массива: литералы, группы и имена констант. visiting рвёт циклы.
func (c *checker) evalConstInt(id ast.ExprID, visiting map[source.StringID]struct{}) (uint64, bool) {
	expr := c.builder.Exprs.Get(id)
	if expr == nil {
		return 0, false
	}
	switch expr.Kind {
	case ast.ExprLit:
		lit, ok := c.builder.Exprs.Lit(id)
		if !ok || lit.Kind != ast.LitInt || lit.Neg {
			return 0, false
		}
		return parseIntLit(c.lookupName(lit.Value))
	case ast.ExprGroup:
		g, ok := c.builder.Exprs.Group(id)
		if !ok {
			return 0, false
		}
		return c.evalConstInt(g.Inner, visiting)
	case ast.ExprPath:
		p, ok := c.builder.Exprs.Path(id)
		if !ok || len(p.Segments) != 1 {
			return 0, false
		}
		name := p.Segments[0].Name
		decl, ok := c.consts[name]
		if !ok {
			return 0, false
		}
		if _, busy := visiting[name]; busy {
			return 0, false
		}
		visiting[name] = struct{}{}
		defer delete(visiting, name)
		ci, ok := c.builder.Items.Const(decl.item)
		if !ok {
			return 0, false
		}
		return c.evalConstInt(ci.Value, visiting)
	}
	return 0, false
}
