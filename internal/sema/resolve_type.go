package sema

import (
	"fmt"

	"volt/internal/ast"
	"volt/internal/diag"
	"volt/internal/source"
	"volt/internal/types"
)

// resolveTypeExpr переводит синтаксический тип в TypeID. Результат
// мемоизируется: узел типа встречается в AST один раз, так что повторный
// обход сигнатуры не дублирует диагностику.
func (c *checker) resolveTypeExpr(id ast.TypeID) types.TypeID {
	if id == ast.NoTypeID {
		return c.types.Builtins().Error
	}
	if cached, ok := c.typeExprCache[id]; ok {
		return cached
	}
	resolved := c.resolveTypeExprUncached(id)
	c.typeExprCache[id] = resolved
	return resolved
}

func (c *checker) resolveTypeExprUncached(id ast.TypeID) types.TypeID {
	te := c.builder.Types.Get(id)
	if te == nil {
		return c.types.Builtins().Error
	}
	switch te.Kind {
	case ast.TypeExprName:
		data, ok := c.builder.Types.Name(id)
		if !ok {
			return c.types.Builtins().Error
		}
		return c.resolveNamedType(data, te.Span)
	case ast.TypeExprRef:
		data, ok := c.builder.Types.Ref(id)
		if !ok {
			return c.types.Builtins().Error
		}
		elem := c.resolveTypeExpr(data.Elem)
		return c.types.Intern(types.MakeReference(elem, data.Mutable))
	case ast.TypeExprOwn:
		data, ok := c.builder.Types.Own(id)
		if !ok {
			return c.types.Builtins().Error
		}
		return c.types.Intern(types.MakeOwn(c.resolveTypeExpr(data.Elem)))
	case ast.TypeExprTuple:
		data, ok := c.builder.Types.Tuple(id)
		if !ok {
			return c.types.Builtins().Error
		}
		if len(data.Elems) == 0 {
			return c.types.Builtins().Unit
		}
		elems := make([]types.TypeID, len(data.Elems))
		for i, e := range data.Elems {
			elems[i] = c.resolveTypeExpr(e)
		}
		return c.types.RegisterTuple(elems)
	case ast.TypeExprSlice:
		data, ok := c.builder.Types.Slice(id)
		if !ok {
			return c.types.Builtins().Error
		}
		elem := c.resolveTypeExpr(data.Elem)
		return c.types.Intern(types.MakeArray(elem, types.ArrayDynamicLength))
	case ast.TypeExprArray:
		data, ok := c.builder.Types.Array(id)
		if !ok {
			return c.types.Builtins().Error
		}
		elem := c.resolveTypeExpr(data.Elem)
		count, okLen := c.arrayLength(data.Len)
		if !okLen {
			return c.types.Builtins().Error
		}
		return c.types.Intern(types.MakeArray(elem, count))
	case ast.TypeExprContract:
		data, ok := c.builder.Types.Contract(id)
		if !ok {
			return c.types.Builtins().Error
		}
		return c.resolveContractType(data)
	case ast.TypeExprInfer:
		return c.types.FreshInfer()
	}
	return c.types.Builtins().Error
}

func (c *checker) resolveNamedType(data *ast.TypeNameData, span source.Span) types.TypeID {
	name := c.lookupName(data.Name)

	if builtin, ok := c.builtinNamed(name); ok {
		c.rejectTypeArgs(data, span, name)
		return builtin
	}
	if tp, ok := c.typeParams[data.Name]; ok {
		c.rejectTypeArgs(data, span, name)
		return tp
	}

	decl, ok := c.typeDecls[data.Name]
	if !ok {
		b := c.handler.StructSpanErrWithCode(data.NameSpan,
			fmt.Sprintf("cannot find type `%s`", name), diag.TypUnknownName)
		if hint, found := nearestName(name, c.visibleTypeNames()); found {
			b.SpanSuggestionShort(data.NameSpan,
				"a type with a similar name exists", hint,
				diag.ApplicabilityMaybeIncorrect)
		}
		b.Emit()
		return c.types.Builtins().Error
	}
	if decl.kind == declContract {
		c.handler.StructSpanErrWithCode(data.NameSpan,
			fmt.Sprintf("expected a type, found contract `%s`", name), diag.TypUnknownName).
			Help(fmt.Sprintf("use `any %s` for a contract object type", name)).
			Emit()
		return c.types.Builtins().Error
	}

	args := make([]types.TypeID, len(data.Args))
	for i, a := range data.Args {
		args[i] = c.resolveTypeExpr(a)
	}
	return c.instantiate(decl, args, span)
}

// rejectTypeArgs репортит аргументы у типа, который их не принимает.
// Сами аргументы всё равно резолвятся, чтобы не терять их ошибки.
func (c *checker) rejectTypeArgs(data *ast.TypeNameData, span source.Span, name string) {
	if len(data.Args) == 0 {
		return
	}
	c.handler.StructSpanErrWithCode(span,
		fmt.Sprintf("wrong number of type arguments: expected 0, found %d", len(data.Args)),
		diag.TypWrongTypeArgCount).
		SpanLabel(data.NameSpan, fmt.Sprintf("`%s` takes no type arguments", name)).
		Emit()
	for _, a := range data.Args {
		c.resolveTypeExpr(a)
	}
}

func (c *checker) resolveContractType(data *ast.TypeContractData) types.TypeID {
	name := c.lookupName(data.Name)
	decl, ok := c.typeDecls[data.Name]
	if !ok {
		c.handler.StructSpanErrWithCode(data.NameSpan,
			fmt.Sprintf("cannot find contract `%s`", name), diag.TypUnknownName).
			Emit()
		return c.types.Builtins().Error
	}
	if decl.kind != declContract {
		c.handler.StructSpanErrWithCode(data.NameSpan,
			fmt.Sprintf("expected a contract, found %s `%s`", decl.kind, name), diag.TypUnknownName).
			SpanLabel(decl.nameSpan, fmt.Sprintf("`%s` declared here", name)).
			Emit()
		return c.types.Builtins().Error
	}
	return decl.typeID
}

// instantiate подставляет аргументы в generic-декларацию.
func (c *checker) instantiate(decl *typeDecl, args []types.TypeID, span source.Span) types.TypeID {
	if len(args) != len(decl.params) {
		c.handler.StructSpanErrWithCode(span,
			fmt.Sprintf("wrong number of type arguments: expected %d, found %d",
				len(decl.params), len(args)),
			diag.TypWrongTypeArgCount).
			SpanLabel(decl.nameSpan, "declared here").
			Emit()
		return c.types.Builtins().Error
	}
	if len(args) == 0 {
		return decl.typeID
	}
	mapping := make(map[types.TypeID]types.TypeID, len(args))
	for i, p := range decl.params {
		mapping[p] = args[i]
	}
	return types.Substitute(c.types, decl.typeID, mapping)
}

// builtinNamed отображает имена примитивов на их TypeID.
func (c *checker) builtinNamed(name string) (types.TypeID, bool) {
	bt := c.types.Builtins()
	switch name {
	case "bool":
		return bt.Bool, true
	case "char":
		return bt.Char, true
	case "byte":
		return bt.Byte, true
	case "string":
		return bt.String, true
	case "int":
		return bt.Int, true
	case "uint":
		return bt.Uint, true
	case "float":
		return bt.Float, true
	case "int8":
		return c.types.Intern(types.MakeInt(types.Width8)), true
	case "int16":
		return c.types.Intern(types.MakeInt(types.Width16)), true
	case "int32":
		return c.types.Intern(types.MakeInt(types.Width32)), true
	case "int64":
		return c.types.Intern(types.MakeInt(types.Width64)), true
	case "uint8":
		return c.types.Intern(types.MakeUint(types.Width8)), true
	case "uint16":
		return c.types.Intern(types.MakeUint(types.Width16)), true
	case "uint32":
		return c.types.Intern(types.MakeUint(types.Width32)), true
	case "uint64":
		return c.types.Intern(types.MakeUint(types.Width64)), true
	case "float32":
		return c.types.Intern(types.MakeFloat(types.Width32)), true
	case "float64":
		return c.types.Intern(types.MakeFloat(types.Width64)), true
	}
	return types.NoTypeID, false
}

// arrayLength вычисляет длину массива из константного выражения.
func (c *checker) arrayLength(id ast.ExprID) (uint32, bool) {
	if id == ast.NoExprID {
		return 0, false
	}
	v, ok := c.evalConstInt(id, make(map[source.StringID]struct{}))
	if !ok || v >= uint64(types.ArrayDynamicLength) {
		c.handler.SpanErr(c.exprSpan(id), "array length must be a constant integer")
		return 0, false
	}
	return uint32(v), true
}
