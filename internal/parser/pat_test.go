package parser

import (
	"testing"

	"volt/internal/ast"
	"volt/internal/diag"
)

func TestWildcardPat(t *testing.T) {
	builder, patID := parseLetPat(t, "_")
	if builder.Pats.Get(patID).Kind != ast.PatWild {
		t.Fatalf("expected wildcard, got %v", builder.Pats.Get(patID).Kind)
	}
}

func TestBindingPats(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		annot ast.BindingAnnot
	}{
		{"plain", "x", ast.BindDefault},
		{"mut", "mut x", ast.BindMut},
		{"ref", "ref x", ast.BindRef},
		{"ref_mut", "ref mut x", ast.BindRefMut},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			builder, patID := parseLetPat(t, tt.src)
			bind, ok := builder.Pats.Binding(patID)
			if !ok {
				t.Fatalf("expected binding, got %v", builder.Pats.Get(patID).Kind)
			}
			if bind.Annot != tt.annot {
				t.Fatalf("expected annot %v, got %v", tt.annot, bind.Annot)
			}
			if mustLookup(t, builder, bind.Name) != "x" {
				t.Fatalf("unexpected binding name %q", mustLookup(t, builder, bind.Name))
			}
			if bind.Sub.IsValid() {
				t.Fatal("plain binding must have no subpattern")
			}
		})
	}
}

func TestBindingWithSubpattern(t *testing.T) {
	builder, patID := parseLetPat(t, "point @ (a, b)")
	bind, ok := builder.Pats.Binding(patID)
	if !ok {
		t.Fatalf("expected binding, got %v", builder.Pats.Get(patID).Kind)
	}
	if mustLookup(t, builder, bind.Name) != "point" {
		t.Fatalf("unexpected binding name %q", mustLookup(t, builder, bind.Name))
	}
	if !bind.Sub.IsValid() {
		t.Fatal("expected a subpattern")
	}
	if builder.Pats.Get(bind.Sub).Kind != ast.PatTuple {
		t.Fatalf("expected tuple subpattern, got %v", builder.Pats.Get(bind.Sub).Kind)
	}
}

func TestAnnotBindingWithSub(t *testing.T) {
	builder, patID := parseLetPat(t, "mut n @ 1..10")
	bind, ok := builder.Pats.Binding(patID)
	if !ok || bind.Annot != ast.BindMut {
		t.Fatal("expected mut binding")
	}
	if builder.Pats.Get(bind.Sub).Kind != ast.PatRange {
		t.Fatalf("expected range subpattern, got %v", builder.Pats.Get(bind.Sub).Kind)
	}
}

func TestLitPats(t *testing.T) {
	tests := []struct {
		name string
		src  string
		kind ast.ExprLitKind
	}{
		{"int", "42", ast.LitInt},
		{"negative", "-1", ast.LitInt},
		{"char", "'a'", ast.LitChar},
		{"string", `"name"`, ast.LitString},
		{"bool", "true", ast.LitBool},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			builder, patID := parseLetPat(t, tt.src)
			lit, ok := builder.Pats.Lit(patID)
			if !ok {
				t.Fatalf("expected literal pattern, got %v", builder.Pats.Get(patID).Kind)
			}
			litData, ok := builder.Exprs.Lit(lit.Value)
			if !ok || litData.Kind != tt.kind {
				t.Fatalf("expected literal kind %v", tt.kind)
			}
		})
	}
}

func TestRangePats(t *testing.T) {
	t.Run("exclusive", func(t *testing.T) {
		builder, patID := parseLetPat(t, "0..10")
		rng, ok := builder.Pats.Range(patID)
		if !ok {
			t.Fatalf("expected range, got %v", builder.Pats.Get(patID).Kind)
		}
		if rng.Inclusive {
			t.Fatal("`..` must be exclusive")
		}
	})

	t.Run("inclusive", func(t *testing.T) {
		builder, patID := parseLetPat(t, "0..=10")
		rng, ok := builder.Pats.Range(patID)
		if !ok || !rng.Inclusive {
			t.Fatal("`..=` must be inclusive")
		}
	})

	t.Run("negative_lo", func(t *testing.T) {
		builder, patID := parseLetPat(t, "-5..5")
		rng, ok := builder.Pats.Range(patID)
		if !ok {
			t.Fatal("expected range")
		}
		lo, ok := builder.Exprs.Lit(rng.Lo)
		if !ok || !lo.Neg {
			t.Fatal("low endpoint must keep the folded minus")
		}
	})

	t.Run("char_endpoints", func(t *testing.T) {
		builder, patID := parseLetPat(t, "'a'..='z'")
		rng, ok := builder.Pats.Range(patID)
		if !ok {
			t.Fatal("expected range")
		}
		lo, _ := builder.Exprs.Lit(rng.Lo)
		hi, _ := builder.Exprs.Lit(rng.Hi)
		if lo == nil || hi == nil || lo.Kind != ast.LitChar || hi.Kind != ast.LitChar {
			t.Fatal("expected char endpoints")
		}
	})

	t.Run("const_endpoints", func(t *testing.T) {
		// границы могут ссылаться на константы; резолвит их sema
		builder, patID := parseLetPat(t, "MIN..=MAX")
		rng, ok := builder.Pats.Range(patID)
		if !ok {
			t.Fatalf("expected range, got %v", builder.Pats.Get(patID).Kind)
		}
		if _, ok := builder.Exprs.Path(rng.Lo); !ok {
			t.Fatal("low endpoint must be a path")
		}
		if _, ok := builder.Exprs.Path(rng.Hi); !ok {
			t.Fatal("high endpoint must be a path")
		}
	})
}

func TestTuplePats(t *testing.T) {
	t.Run("unit", func(t *testing.T) {
		builder, patID := parseLetPat(t, "()")
		tuple, ok := builder.Pats.Tuple(patID)
		if !ok || len(tuple.Elems) != 0 || tuple.Rest != -1 {
			t.Fatal("expected the unit tuple pattern")
		}
	})

	t.Run("group_collapses", func(t *testing.T) {
		builder, patID := parseLetPat(t, "(x)")
		if _, ok := builder.Pats.Binding(patID); !ok {
			t.Fatalf("parenthesized pattern must collapse to its inner node, got %v",
				builder.Pats.Get(patID).Kind)
		}
	})

	t.Run("pair", func(t *testing.T) {
		builder, patID := parseLetPat(t, "(a, b)")
		tuple, ok := builder.Pats.Tuple(patID)
		if !ok || len(tuple.Elems) != 2 || tuple.Rest != -1 {
			t.Fatal("expected a two-element tuple pattern")
		}
	})

	t.Run("rest_positions", func(t *testing.T) {
		tests := []struct {
			name  string
			src   string
			elems int
			rest  int
		}{
			{"leading", "(.., z)", 1, 0},
			{"middle", "(a, .., z)", 2, 1},
			{"trailing", "(a, ..)", 1, 1},
			{"only", "(..)", 0, 0},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				builder, patID := parseLetPat(t, tt.src)
				tuple, ok := builder.Pats.Tuple(patID)
				if !ok {
					t.Fatalf("expected tuple, got %v", builder.Pats.Get(patID).Kind)
				}
				if len(tuple.Elems) != tt.elems || tuple.Rest != tt.rest {
					t.Fatalf("expected %d elems with rest %d, got %d with %d",
						tt.elems, tt.rest, len(tuple.Elems), tuple.Rest)
				}
			})
		}
	})

	t.Run("double_rest_error", func(t *testing.T) {
		_, _, bag := parseSource(t, "fn main() { let (.., a, ..) = 0; }")
		if !hasCode(bag, diag.SynUnexpectedToken) {
			t.Fatalf("expected double-rest error, got %s", diagnosticsSummary(bag))
		}
	})
}

func TestPathPat(t *testing.T) {
	builder, patID := parseLetPat(t, "Color::Red")
	path, ok := builder.Pats.Path(patID)
	if !ok {
		t.Fatalf("expected path pattern, got %v", builder.Pats.Get(patID).Kind)
	}
	if len(path.Segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(path.Segments))
	}
	if mustLookup(t, builder, path.Segments[0].Name) != "Color" ||
		mustLookup(t, builder, path.Segments[1].Name) != "Red" {
		t.Fatal("unexpected segment names")
	}
}

func TestSingleIdentIsBinding(t *testing.T) {
	// одиночное имя — всегда биндинг на уровне синтаксиса; совпадения с
	// константами распознаёт sema
	builder, patID := parseLetPat(t, "ZERO")
	if _, ok := builder.Pats.Binding(patID); !ok {
		t.Fatalf("expected binding, got %v", builder.Pats.Get(patID).Kind)
	}
}

func TestTupleStructPats(t *testing.T) {
	t.Run("qualified", func(t *testing.T) {
		builder, patID := parseLetPat(t, "Shape::Circle(r)")
		ts, ok := builder.Pats.TupleStruct(patID)
		if !ok {
			t.Fatalf("expected tuple struct, got %v", builder.Pats.Get(patID).Kind)
		}
		if len(ts.Path) != 2 || len(ts.Elems) != 1 || ts.Rest != -1 {
			t.Fatalf("unexpected shape: path %d, elems %d, rest %d", len(ts.Path), len(ts.Elems), ts.Rest)
		}
	})

	t.Run("bare_ctor", func(t *testing.T) {
		builder, patID := parseLetPat(t, "Some(x)")
		ts, ok := builder.Pats.TupleStruct(patID)
		if !ok || len(ts.Path) != 1 || len(ts.Elems) != 1 {
			t.Fatal("expected one-segment constructor with one element")
		}
	})

	t.Run("with_rest", func(t *testing.T) {
		builder, patID := parseLetPat(t, "Triple(first, ..)")
		ts, ok := builder.Pats.TupleStruct(patID)
		if !ok || len(ts.Elems) != 1 || ts.Rest != 1 {
			t.Fatal("expected rest after the first element")
		}
	})
}

func TestStructPats(t *testing.T) {
	t.Run("full_form", func(t *testing.T) {
		builder, patID := parseLetPat(t, "Point { x: 1, y: other }")
		st, ok := builder.Pats.Struct(patID)
		if !ok {
			t.Fatalf("expected struct pattern, got %v", builder.Pats.Get(patID).Kind)
		}
		if len(st.Fields) != 2 || st.HasRest {
			t.Fatalf("unexpected shape: %d fields, rest %v", len(st.Fields), st.HasRest)
		}
		first := builder.Pats.StructField(st.Fields[0])
		if first.Shorthand {
			t.Fatal("`x: 1` is not the shorthand form")
		}
		if mustLookup(t, builder, first.Name) != "x" {
			t.Fatalf("unexpected field name %q", mustLookup(t, builder, first.Name))
		}
		if _, ok := builder.Pats.Lit(first.Pat); !ok {
			t.Fatal("field pattern must be the literal")
		}
	})

	t.Run("shorthand", func(t *testing.T) {
		builder, patID := parseLetPat(t, "Point { x, y }")
		st, _ := builder.Pats.Struct(patID)
		if st == nil || len(st.Fields) != 2 {
			t.Fatal("expected two shorthand fields")
		}
		for _, fid := range st.Fields {
			field := builder.Pats.StructField(fid)
			if !field.Shorthand {
				t.Fatal("expected shorthand field")
			}
			bind, ok := builder.Pats.Binding(field.Pat)
			if !ok || bind.Annot != ast.BindDefault {
				t.Fatal("shorthand must desugar to a default binding")
			}
			if bind.Name != field.Name {
				t.Fatal("shorthand binding must reuse the field name")
			}
		}
	})

	t.Run("annotated_shorthand", func(t *testing.T) {
		builder, patID := parseLetPat(t, "Point { ref x, mut y }")
		st, _ := builder.Pats.Struct(patID)
		if st == nil || len(st.Fields) != 2 {
			t.Fatal("expected two fields")
		}
		bx, _ := builder.Pats.Binding(builder.Pats.StructField(st.Fields[0]).Pat)
		by, _ := builder.Pats.Binding(builder.Pats.StructField(st.Fields[1]).Pat)
		if bx == nil || bx.Annot != ast.BindRef {
			t.Fatal("expected ref binding for x")
		}
		if by == nil || by.Annot != ast.BindMut {
			t.Fatal("expected mut binding for y")
		}
	})

	t.Run("with_rest", func(t *testing.T) {
		builder, patID := parseLetPat(t, "Config { debug, .. }")
		st, _ := builder.Pats.Struct(patID)
		if st == nil || len(st.Fields) != 1 || !st.HasRest {
			t.Fatal("expected one field plus rest")
		}
	})

	t.Run("rest_must_be_last", func(t *testing.T) {
		_, _, bag := parseSource(t, "fn main() { let Point { .., x } = 0; }")
		if !hasCode(bag, diag.SynUnexpectedToken) {
			t.Fatalf("expected rest-position error, got %s", diagnosticsSummary(bag))
		}
	})

	t.Run("annot_with_explicit_pattern", func(t *testing.T) {
		_, _, bag := parseSource(t, "fn main() { let Point { ref x: 1 } = 0; }")
		if !hasCode(bag, diag.SynUnexpectedToken) {
			t.Fatalf("expected modifier error, got %s", diagnosticsSummary(bag))
		}
	})
}

func TestOrPats(t *testing.T) {
	t.Run("literals", func(t *testing.T) {
		builder, patID := parseLetPat(t, "1 | 2 | 3")
		or, ok := builder.Pats.Or(patID)
		if !ok {
			t.Fatalf("expected or pattern, got %v", builder.Pats.Get(patID).Kind)
		}
		if len(or.Alts) != 3 {
			t.Fatalf("expected 3 alternatives, got %d", len(or.Alts))
		}
	})

	t.Run("constructors", func(t *testing.T) {
		builder, patID := parseLetPat(t, "Ok(v) | Err(v)")
		or, ok := builder.Pats.Or(patID)
		if !ok || len(or.Alts) != 2 {
			t.Fatal("expected 2 alternatives")
		}
		for _, alt := range or.Alts {
			if _, ok := builder.Pats.TupleStruct(alt); !ok {
				t.Fatal("alternatives must be tuple structs")
			}
		}
	})

	t.Run("binding_precedence", func(t *testing.T) {
		// `n @ 1 | 2` — это `(n @ 1) | 2`
		builder, patID := parseLetPat(t, "n @ 1 | 2")
		or, ok := builder.Pats.Or(patID)
		if !ok || len(or.Alts) != 2 {
			t.Fatal("expected or pattern over the binding")
		}
		if _, ok := builder.Pats.Binding(or.Alts[0]); !ok {
			t.Fatal("first alternative must be the binding")
		}
	})
}

func TestRefPats(t *testing.T) {
	t.Run("shared", func(t *testing.T) {
		builder, patID := parseLetPat(t, "&x")
		ref, ok := builder.Pats.Ref(patID)
		if !ok || ref.Mutable {
			t.Fatal("expected shared reference pattern")
		}
	})

	t.Run("mutable", func(t *testing.T) {
		builder, patID := parseLetPat(t, "&mut x")
		ref, ok := builder.Pats.Ref(patID)
		if !ok || !ref.Mutable {
			t.Fatal("expected mutable reference pattern")
		}
	})

	t.Run("double", func(t *testing.T) {
		builder, patID := parseLetPat(t, "&&x")
		outer, ok := builder.Pats.Ref(patID)
		if !ok || outer.Mutable {
			t.Fatal("expected outer shared reference")
		}
		inner, ok := builder.Pats.Ref(outer.Sub)
		if !ok {
			t.Fatalf("expected inner reference, got %v", builder.Pats.Get(outer.Sub).Kind)
		}
		if _, ok := builder.Pats.Binding(inner.Sub); !ok {
			t.Fatal("inner reference must wrap the binding")
		}
		outerSpan := builder.Pats.Get(patID).Span
		innerSpan := builder.Pats.Get(outer.Sub).Span
		if innerSpan.Start != outerSpan.Start+1 {
			t.Fatalf("inner span must start after the first `&`: outer %v, inner %v", outerSpan, innerSpan)
		}
	})

	t.Run("double_mut", func(t *testing.T) {
		// `&&mut x` — это `&(&mut x)`
		builder, patID := parseLetPat(t, "&&mut x")
		outer, _ := builder.Pats.Ref(patID)
		if outer == nil || outer.Mutable {
			t.Fatal("expected outer shared reference")
		}
		inner, _ := builder.Pats.Ref(outer.Sub)
		if inner == nil || !inner.Mutable {
			t.Fatal("expected inner mutable reference")
		}
	})
}

func TestOwnPat(t *testing.T) {
	builder, patID := parseLetPat(t, "own x")
	ownData, ok := builder.Pats.Own(patID)
	if !ok {
		t.Fatalf("expected own pattern, got %v", builder.Pats.Get(patID).Kind)
	}
	if _, ok := builder.Pats.Binding(ownData.Sub); !ok {
		t.Fatal("own must wrap the binding")
	}
}

func TestSlicePats(t *testing.T) {
	t.Run("fixed", func(t *testing.T) {
		builder, patID := parseLetPat(t, "[a, b, c]")
		sl, ok := builder.Pats.Slice(patID)
		if !ok {
			t.Fatalf("expected slice pattern, got %v", builder.Pats.Get(patID).Kind)
		}
		if len(sl.Before) != 3 || sl.HasRest || len(sl.After) != 0 {
			t.Fatalf("unexpected shape: before %d, rest %v, after %d", len(sl.Before), sl.HasRest, len(sl.After))
		}
	})

	t.Run("bare_rest", func(t *testing.T) {
		builder, patID := parseLetPat(t, "[..]")
		sl, _ := builder.Pats.Slice(patID)
		if sl == nil || !sl.HasRest || sl.Rest.IsValid() {
			t.Fatal("expected bare rest without a binding")
		}
	})

	t.Run("head_and_rest", func(t *testing.T) {
		builder, patID := parseLetPat(t, "[first, ..]")
		sl, _ := builder.Pats.Slice(patID)
		if sl == nil || len(sl.Before) != 1 || !sl.HasRest || len(sl.After) != 0 {
			t.Fatal("expected one element before the rest")
		}
	})

	t.Run("named_rest", func(t *testing.T) {
		builder, patID := parseLetPat(t, "[first, rest @ .., last]")
		sl, _ := builder.Pats.Slice(patID)
		if sl == nil || len(sl.Before) != 1 || len(sl.After) != 1 {
			t.Fatal("expected elements on both sides of the rest")
		}
		if !sl.HasRest || !sl.Rest.IsValid() {
			t.Fatal("expected a rest binding")
		}
		bind, ok := builder.Pats.Binding(sl.Rest)
		if !ok || mustLookup(t, builder, bind.Name) != "rest" {
			t.Fatal("rest binding must carry the name")
		}
	})

	t.Run("binding_with_sub_inside", func(t *testing.T) {
		// `x @ 1` внутри среза не должен путаться с `x @ ..`
		builder, patID := parseLetPat(t, "[x @ 1, y]")
		sl, _ := builder.Pats.Slice(patID)
		if sl == nil || len(sl.Before) != 2 || sl.HasRest {
			t.Fatal("expected two plain elements")
		}
		bind, ok := builder.Pats.Binding(sl.Before[0])
		if !ok || !bind.Sub.IsValid() {
			t.Fatal("first element must be a binding with a subpattern")
		}
	})

	t.Run("or_element", func(t *testing.T) {
		builder, patID := parseLetPat(t, "[1 | 2, _]")
		sl, _ := builder.Pats.Slice(patID)
		if sl == nil || len(sl.Before) != 2 {
			t.Fatal("expected two elements")
		}
		if _, ok := builder.Pats.Or(sl.Before[0]); !ok {
			t.Fatal("first element must be an or pattern")
		}
	})

	t.Run("double_rest_error", func(t *testing.T) {
		_, _, bag := parseSource(t, "fn main() { let [a, .., b, ..] = 0; }")
		if !hasCode(bag, diag.SynUnexpectedToken) {
			t.Fatalf("expected double-rest error, got %s", diagnosticsSummary(bag))
		}
	})
}

func TestMissingPattern(t *testing.T) {
	_, _, bag := parseSource(t, "fn main() { let = 0; }")
	if !hasCode(bag, diag.SynExpectedPattern) {
		t.Fatalf("expected SynExpectedPattern, got %s", diagnosticsSummary(bag))
	}
}
