package parser

import (
	"testing"

	"volt/internal/ast"
	"volt/internal/diag"
)

func TestNamedTypes(t *testing.T) {
	t.Run("plain", func(t *testing.T) {
		builder, typeID := parseLetType(t, "int")
		name, ok := builder.Types.Name(typeID)
		if !ok {
			t.Fatalf("expected named type, got %v", builder.Types.Get(typeID).Kind)
		}
		if mustLookup(t, builder, name.Name) != "int" || len(name.Args) != 0 {
			t.Fatal("unexpected name or arguments")
		}
	})

	t.Run("generic", func(t *testing.T) {
		builder, typeID := parseLetType(t, "Pair<int, string>")
		name, ok := builder.Types.Name(typeID)
		if !ok || len(name.Args) != 2 {
			t.Fatal("expected two type arguments")
		}
		first, _ := builder.Types.Name(name.Args[0])
		second, _ := builder.Types.Name(name.Args[1])
		if first == nil || second == nil {
			t.Fatal("arguments must be named types")
		}
		if mustLookup(t, builder, first.Name) != "int" || mustLookup(t, builder, second.Name) != "string" {
			t.Fatal("unexpected argument names")
		}
	})

	t.Run("nested_generic", func(t *testing.T) {
		// лексер выдаёт `>>` как два `>`, так что вложенные аргументы
		// закрываются без специальной обработки
		builder, typeID := parseLetType(t, "Pair<Pair<int>>")
		outer, ok := builder.Types.Name(typeID)
		if !ok || len(outer.Args) != 1 {
			t.Fatal("expected one type argument")
		}
		inner, ok := builder.Types.Name(outer.Args[0])
		if !ok || len(inner.Args) != 1 {
			t.Fatal("expected the nested argument list to close cleanly")
		}
	})
}

func TestRefTypes(t *testing.T) {
	t.Run("shared", func(t *testing.T) {
		builder, typeID := parseLetType(t, "&int")
		ref, ok := builder.Types.Ref(typeID)
		if !ok || ref.Mutable {
			t.Fatal("expected shared reference type")
		}
	})

	t.Run("mutable", func(t *testing.T) {
		builder, typeID := parseLetType(t, "&mut int")
		ref, ok := builder.Types.Ref(typeID)
		if !ok || !ref.Mutable {
			t.Fatal("expected mutable reference type")
		}
	})

	t.Run("double", func(t *testing.T) {
		builder, typeID := parseLetType(t, "&&int")
		outer, ok := builder.Types.Ref(typeID)
		if !ok || outer.Mutable {
			t.Fatal("expected outer shared reference")
		}
		inner, ok := builder.Types.Ref(outer.Elem)
		if !ok {
			t.Fatalf("expected inner reference, got %v", builder.Types.Get(outer.Elem).Kind)
		}
		if _, ok := builder.Types.Name(inner.Elem); !ok {
			t.Fatal("inner reference must wrap the named type")
		}
		outerSpan := builder.Types.Get(typeID).Span
		innerSpan := builder.Types.Get(outer.Elem).Span
		if innerSpan.Start != outerSpan.Start+1 {
			t.Fatalf("inner span must start after the first `&`: outer %v, inner %v", outerSpan, innerSpan)
		}
	})

	t.Run("double_mut", func(t *testing.T) {
		// `&&mut T` — это `&(&mut T)`
		builder, typeID := parseLetType(t, "&&mut int")
		outer, _ := builder.Types.Ref(typeID)
		if outer == nil || outer.Mutable {
			t.Fatal("expected outer shared reference")
		}
		inner, _ := builder.Types.Ref(outer.Elem)
		if inner == nil || !inner.Mutable {
			t.Fatal("expected inner mutable reference")
		}
	})
}

func TestOwnType(t *testing.T) {
	builder, typeID := parseLetType(t, "own Buffer")
	ownData, ok := builder.Types.Own(typeID)
	if !ok {
		t.Fatalf("expected own type, got %v", builder.Types.Get(typeID).Kind)
	}
	if _, ok := builder.Types.Name(ownData.Elem); !ok {
		t.Fatal("own must wrap the named type")
	}
}

func TestTupleTypes(t *testing.T) {
	t.Run("unit", func(t *testing.T) {
		builder, typeID := parseLetType(t, "()")
		tuple, ok := builder.Types.Tuple(typeID)
		if !ok || len(tuple.Elems) != 0 {
			t.Fatal("expected the unit type")
		}
	})

	t.Run("group_collapses", func(t *testing.T) {
		builder, typeID := parseLetType(t, "(int)")
		if _, ok := builder.Types.Name(typeID); !ok {
			t.Fatalf("parenthesized type must collapse to its inner node, got %v",
				builder.Types.Get(typeID).Kind)
		}
	})

	t.Run("pair", func(t *testing.T) {
		builder, typeID := parseLetType(t, "(int, bool)")
		tuple, ok := builder.Types.Tuple(typeID)
		if !ok || len(tuple.Elems) != 2 {
			t.Fatal("expected a two-element tuple type")
		}
	})

	t.Run("single_with_comma", func(t *testing.T) {
		builder, typeID := parseLetType(t, "(int,)")
		tuple, ok := builder.Types.Tuple(typeID)
		if !ok || len(tuple.Elems) != 1 {
			t.Fatal("expected a one-element tuple type")
		}
	})
}

func TestSliceAndArrayTypes(t *testing.T) {
	t.Run("slice", func(t *testing.T) {
		builder, typeID := parseLetType(t, "[int]")
		sl, ok := builder.Types.Slice(typeID)
		if !ok {
			t.Fatalf("expected slice type, got %v", builder.Types.Get(typeID).Kind)
		}
		if _, ok := builder.Types.Name(sl.Elem); !ok {
			t.Fatal("element must be the named type")
		}
	})

	t.Run("array", func(t *testing.T) {
		builder, typeID := parseLetType(t, "[byte; 4]")
		arr, ok := builder.Types.Array(typeID)
		if !ok {
			t.Fatalf("expected array type, got %v", builder.Types.Get(typeID).Kind)
		}
		length, ok := builder.Exprs.Lit(arr.Len)
		if !ok || length.Kind != ast.LitInt {
			t.Fatal("length must be the integer literal")
		}
	})

	t.Run("array_const_len", func(t *testing.T) {
		// длину разрешает sema; парсер принимает любое выражение
		builder, typeID := parseLetType(t, "[byte; SIZE]")
		arr, ok := builder.Types.Array(typeID)
		if !ok {
			t.Fatal("expected array type")
		}
		if _, ok := builder.Exprs.Path(arr.Len); !ok {
			t.Fatal("length must be the path expression")
		}
	})
}

func TestContractType(t *testing.T) {
	builder, typeID := parseLetType(t, "any Printable")
	contract, ok := builder.Types.Contract(typeID)
	if !ok {
		t.Fatalf("expected contract type, got %v", builder.Types.Get(typeID).Kind)
	}
	if mustLookup(t, builder, contract.Name) != "Printable" {
		t.Fatalf("unexpected contract name %q", mustLookup(t, builder, contract.Name))
	}
}

func TestInferType(t *testing.T) {
	builder, typeID := parseLetType(t, "_")
	if builder.Types.Get(typeID).Kind != ast.TypeExprInfer {
		t.Fatalf("expected infer type, got %v", builder.Types.Get(typeID).Kind)
	}
}

func TestEmptyTypeArgList(t *testing.T) {
	_, _, bag := parseSource(t, "fn main() { let x: Box<> = y; }")
	if !hasCode(bag, diag.SynExpectedType) {
		t.Fatalf("expected SynExpectedType, got %s", diagnosticsSummary(bag))
	}
}

func TestMissingType(t *testing.T) {
	_, _, bag := parseSource(t, "fn main() { let x: = y; }")
	if !hasCode(bag, diag.SynExpectedType) {
		t.Fatalf("expected SynExpectedType, got %s", diagnosticsSummary(bag))
	}
}
