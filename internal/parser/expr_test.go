package parser

import (
	"testing"

	"volt/internal/ast"
	"volt/internal/diag"
)

func TestLiteralExprs(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		kind  ast.ExprLitKind
		value string
	}{
		{"int", "42", ast.LitInt, "42"},
		{"int_based", "0xFF", ast.LitInt, "0xFF"},
		{"float", "3.14", ast.LitFloat, "3.14"},
		{"char", "'a'", ast.LitChar, "'a'"},
		{"byte", "b'a'", ast.LitByte, "b'a'"},
		{"string", `"hello"`, ast.LitString, `"hello"`},
		{"byte_string", `b"raw"`, ast.LitByteString, `b"raw"`},
		{"true", "true", ast.LitBool, "true"},
		{"false", "false", ast.LitBool, "false"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			builder, exprID := parseLetInit(t, tt.src)
			lit, ok := builder.Exprs.Lit(exprID)
			if !ok {
				t.Fatalf("expected literal, got %v", builder.Exprs.Get(exprID).Kind)
			}
			if lit.Kind != tt.kind {
				t.Fatalf("expected literal kind %v, got %v", tt.kind, lit.Kind)
			}
			if lit.Neg {
				t.Fatal("literal must not be negative")
			}
			if got := mustLookup(t, builder, lit.Value); got != tt.value {
				t.Fatalf("expected raw value %q, got %q", tt.value, got)
			}
		})
	}
}

func TestNegativeLiteralFolded(t *testing.T) {
	builder, exprID := parseLetInit(t, "-7")
	lit, ok := builder.Exprs.Lit(exprID)
	if !ok {
		t.Fatalf("expected literal, got %v", builder.Exprs.Get(exprID).Kind)
	}
	if !lit.Neg {
		t.Fatal("leading minus must fold into the literal")
	}
	if mustLookup(t, builder, lit.Value) != "7" {
		t.Fatalf("raw value must not contain the sign, got %q", mustLookup(t, builder, lit.Value))
	}
	// спан покрывает и минус
	span := builder.Exprs.Get(exprID).Span
	if span.Len() != 2 {
		t.Fatalf("expected span over `-7`, got length %d", span.Len())
	}
}

func TestMinusWithoutLiteral(t *testing.T) {
	_, _, bag := parseSource(t, "fn main() { let x = -y; }")
	if !hasCode(bag, diag.SynExpectedExpr) {
		t.Fatalf("expected SynExpectedExpr, got %s", diagnosticsSummary(bag))
	}
}

func TestPathExprs(t *testing.T) {
	t.Run("single", func(t *testing.T) {
		builder, exprID := parseLetInit(t, "value")
		path, ok := builder.Exprs.Path(exprID)
		if !ok {
			t.Fatalf("expected path, got %v", builder.Exprs.Get(exprID).Kind)
		}
		if len(path.Segments) != 1 || mustLookup(t, builder, path.Segments[0].Name) != "value" {
			t.Fatalf("unexpected segments %v", path.Segments)
		}
	})

	t.Run("qualified", func(t *testing.T) {
		builder, exprID := parseLetInit(t, "Color::Red")
		path, ok := builder.Exprs.Path(exprID)
		if !ok {
			t.Fatalf("expected path, got %v", builder.Exprs.Get(exprID).Kind)
		}
		if len(path.Segments) != 2 {
			t.Fatalf("expected 2 segments, got %d", len(path.Segments))
		}
		if mustLookup(t, builder, path.Segments[0].Name) != "Color" ||
			mustLookup(t, builder, path.Segments[1].Name) != "Red" {
			t.Fatal("unexpected segment names")
		}
	})
}

func TestTupleExprs(t *testing.T) {
	t.Run("unit", func(t *testing.T) {
		builder, exprID := parseLetInit(t, "()")
		tuple, ok := builder.Exprs.Tuple(exprID)
		if !ok || len(tuple.Elements) != 0 {
			t.Fatal("expected the unit tuple")
		}
	})

	t.Run("group_is_not_tuple", func(t *testing.T) {
		builder, exprID := parseLetInit(t, "(42)")
		group, ok := builder.Exprs.Group(exprID)
		if !ok {
			t.Fatalf("expected group, got %v", builder.Exprs.Get(exprID).Kind)
		}
		if _, ok := builder.Exprs.Lit(group.Inner); !ok {
			t.Fatal("group must wrap the literal")
		}
	})

	t.Run("pair", func(t *testing.T) {
		builder, exprID := parseLetInit(t, "(1, 2)")
		tuple, ok := builder.Exprs.Tuple(exprID)
		if !ok || len(tuple.Elements) != 2 {
			t.Fatal("expected a two-element tuple")
		}
	})

	t.Run("trailing_comma", func(t *testing.T) {
		builder, exprID := parseLetInit(t, "(1, 2,)")
		tuple, ok := builder.Exprs.Tuple(exprID)
		if !ok || len(tuple.Elements) != 2 {
			t.Fatal("trailing comma must not add an element")
		}
	})

	t.Run("single_with_comma", func(t *testing.T) {
		builder, exprID := parseLetInit(t, "(1,)")
		tuple, ok := builder.Exprs.Tuple(exprID)
		if !ok || len(tuple.Elements) != 1 {
			t.Fatal("expected a one-element tuple")
		}
	})
}

func TestRefExprs(t *testing.T) {
	t.Run("shared", func(t *testing.T) {
		builder, exprID := parseLetInit(t, "&y")
		ref, ok := builder.Exprs.Ref(exprID)
		if !ok || ref.Mutable {
			t.Fatal("expected a shared reference")
		}
	})

	t.Run("mutable", func(t *testing.T) {
		builder, exprID := parseLetInit(t, "&mut y")
		ref, ok := builder.Exprs.Ref(exprID)
		if !ok || !ref.Mutable {
			t.Fatal("expected a mutable reference")
		}
	})

	t.Run("double", func(t *testing.T) {
		// `&&` лексер отдаёт одним токеном, парсер расщепляет
		builder, exprID := parseLetInit(t, "&&y")
		outer, ok := builder.Exprs.Ref(exprID)
		if !ok || outer.Mutable {
			t.Fatal("expected outer shared reference")
		}
		inner, ok := builder.Exprs.Ref(outer.Operand)
		if !ok {
			t.Fatalf("expected inner reference, got %v", builder.Exprs.Get(outer.Operand).Kind)
		}
		if _, ok := builder.Exprs.Path(inner.Operand); !ok {
			t.Fatal("inner reference must wrap the path")
		}
		outerSpan := builder.Exprs.Get(exprID).Span
		innerSpan := builder.Exprs.Get(outer.Operand).Span
		if innerSpan.Start != outerSpan.Start+1 {
			t.Fatalf("inner span must start after the first `&`: outer %v, inner %v", outerSpan, innerSpan)
		}
	})

	t.Run("double_mut", func(t *testing.T) {
		// `&&mut y` — это `&(&mut y)`
		builder, exprID := parseLetInit(t, "&&mut y")
		outer, ok := builder.Exprs.Ref(exprID)
		if !ok || outer.Mutable {
			t.Fatal("expected outer shared reference")
		}
		inner, ok := builder.Exprs.Ref(outer.Operand)
		if !ok || !inner.Mutable {
			t.Fatal("expected inner mutable reference")
		}
	})
}

func TestOwnExpr(t *testing.T) {
	builder, exprID := parseLetInit(t, "own y")
	ownData, ok := builder.Exprs.Own(exprID)
	if !ok {
		t.Fatalf("expected own expression, got %v", builder.Exprs.Get(exprID).Kind)
	}
	if _, ok := builder.Exprs.Path(ownData.Operand); !ok {
		t.Fatal("own must wrap the path")
	}
}

func TestMatchExpr(t *testing.T) {
	builder, exprID := parseLetInit(t, `match v {
        0 => "zero",
        _ => "other",
    }`)
	matchData, ok := builder.Exprs.Match(exprID)
	if !ok {
		t.Fatalf("expected match, got %v", builder.Exprs.Get(exprID).Kind)
	}
	if matchData.Source != ast.MatchNormal {
		t.Fatalf("written match must keep MatchNormal, got %v", matchData.Source)
	}
	if len(matchData.Arms) != 2 {
		t.Fatalf("expected 2 arms, got %d", len(matchData.Arms))
	}
	if _, ok := builder.Exprs.Path(matchData.Scrutinee); !ok {
		t.Fatal("scrutinee must be the path v")
	}

	first := builder.Exprs.Arm(matchData.Arms[0])
	if _, ok := builder.Pats.Lit(first.Pat); !ok {
		t.Fatal("first arm must have a literal pattern")
	}
	second := builder.Exprs.Arm(matchData.Arms[1])
	if builder.Pats.Get(second.Pat).Kind != ast.PatWild {
		t.Fatal("second arm must have the wildcard pattern")
	}
}

func TestMatchArmCommaOptionalAfterBlock(t *testing.T) {
	input := `fn main() {
    match v {
        0 => { let t = 1; }
        _ => 1,
    };
}`
	// тело первой ветки блочное, запятая не нужна
	_, _, bag := parseSource(t, input)
	if hasCode(bag, diag.SynUnexpectedToken) {
		t.Fatalf("block arm must not require a comma: %s", diagnosticsSummary(bag))
	}
}

func TestMatchArmMissingComma(t *testing.T) {
	input := `fn main() {
    match v {
        0 => 1
        _ => 2,
    };
}`
	_, _, bag := parseSource(t, input)
	if !hasCode(bag, diag.SynUnexpectedToken) {
		t.Fatalf("expected missing-comma error, got %s", diagnosticsSummary(bag))
	}
}

func TestIfDesugarsToMatch(t *testing.T) {
	input := `fn main() {
    if cond { work; }
}`
	builder, fileID := parseClean(t, input)
	fn := firstFn(t, builder, fileID)
	block := fnBlock(t, builder, fn)
	if len(block.Stmts) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(block.Stmts))
	}
	stmtExpr, ok := builder.Stmts.Expr(block.Stmts[0])
	if !ok {
		t.Fatal("expected expression statement")
	}
	matchData, ok := builder.Exprs.Match(stmtExpr.Expr)
	if !ok {
		t.Fatal("if must desugar into match")
	}
	if matchData.Source != ast.MatchIfDesugar {
		t.Fatalf("expected MatchIfDesugar, got %v", matchData.Source)
	}
	if len(matchData.Arms) != 2 {
		t.Fatalf("desugar must produce 2 arms, got %d", len(matchData.Arms))
	}

	condSpan := builder.Exprs.Get(matchData.Scrutinee).Span

	trueArm := builder.Exprs.Arm(matchData.Arms[0])
	truePat, ok := builder.Pats.Lit(trueArm.Pat)
	if !ok {
		t.Fatal("true arm must carry a literal pattern")
	}
	trueLit, ok := builder.Exprs.Lit(truePat.Value)
	if !ok || trueLit.Kind != ast.LitBool || mustLookup(t, builder, trueLit.Value) != "true" {
		t.Fatal("true arm pattern must be the bool literal true")
	}
	// синтетический паттерн наследует спан условия
	if builder.Pats.Get(trueArm.Pat).Span != condSpan {
		t.Fatalf("synthetic pattern span %v must equal condition span %v",
			builder.Pats.Get(trueArm.Pat).Span, condSpan)
	}

	falseArm := builder.Exprs.Arm(matchData.Arms[1])
	falseBody, ok := builder.Exprs.Block(falseArm.Body)
	if !ok {
		t.Fatal("false arm must carry a block")
	}
	if len(falseBody.Stmts) != 0 || falseBody.Tail.IsValid() {
		t.Fatal("false arm of a bare if must be an empty block")
	}
	if !builder.Exprs.Get(falseArm.Body).Span.Empty() {
		t.Fatal("synthetic else block must have a zero-width span")
	}
}

func TestIfElseDesugar(t *testing.T) {
	input := `fn main() {
    if cond { first; } else { second; }
}`
	builder, fileID := parseClean(t, input)
	fn := firstFn(t, builder, fileID)
	block := fnBlock(t, builder, fn)
	stmtExpr, _ := builder.Stmts.Expr(block.Stmts[0])
	matchData, ok := builder.Exprs.Match(stmtExpr.Expr)
	if !ok || matchData.Source != ast.MatchIfDesugar {
		t.Fatal("expected desugared if")
	}
	falseArm := builder.Exprs.Arm(matchData.Arms[1])
	falseBody, ok := builder.Exprs.Block(falseArm.Body)
	if !ok {
		t.Fatal("false arm must carry the else block")
	}
	if len(falseBody.Stmts) != 1 {
		t.Fatalf("else block must keep its statement, got %d", len(falseBody.Stmts))
	}
}

func TestElseIfChain(t *testing.T) {
	input := `fn main() {
    if a { first; } else if b { second; } else { third; }
}`
	builder, fileID := parseClean(t, input)
	fn := firstFn(t, builder, fileID)
	block := fnBlock(t, builder, fn)
	stmtExpr, _ := builder.Stmts.Expr(block.Stmts[0])
	outerMatch, ok := builder.Exprs.Match(stmtExpr.Expr)
	if !ok || outerMatch.Source != ast.MatchIfDesugar {
		t.Fatal("expected desugared if")
	}
	// false-ветка внешнего if — вложенный десахаренный if
	falseArm := builder.Exprs.Arm(outerMatch.Arms[1])
	innerMatch, ok := builder.Exprs.Match(falseArm.Body)
	if !ok || innerMatch.Source != ast.MatchIfDesugar {
		t.Fatal("else-if must nest another desugared if")
	}
	innerFalse := builder.Exprs.Arm(innerMatch.Arms[1])
	if _, ok := builder.Exprs.Block(innerFalse.Body); !ok {
		t.Fatal("final else must be the inner false arm")
	}
}

func TestWhileDesugarsToMatch(t *testing.T) {
	input := `fn main() {
    while running { step; }
}`
	builder, fileID := parseClean(t, input)
	fn := firstFn(t, builder, fileID)
	block := fnBlock(t, builder, fn)
	stmtExpr, ok := builder.Stmts.Expr(block.Stmts[0])
	if !ok {
		t.Fatal("expected expression statement")
	}
	matchData, ok := builder.Exprs.Match(stmtExpr.Expr)
	if !ok {
		t.Fatal("while must desugar into match")
	}
	if matchData.Source != ast.MatchWhileDesugar {
		t.Fatalf("expected MatchWhileDesugar, got %v", matchData.Source)
	}
	falseArm := builder.Exprs.Arm(matchData.Arms[1])
	falseBody, ok := builder.Exprs.Block(falseArm.Body)
	if !ok || len(falseBody.Stmts) != 0 || falseBody.Tail.IsValid() {
		t.Fatal("while must always get an empty false arm")
	}
}

func TestMissingExpr(t *testing.T) {
	_, _, bag := parseSource(t, "fn main() { let x = ; }")
	if !hasCode(bag, diag.SynExpectedExpr) {
		t.Fatalf("expected SynExpectedExpr, got %s", diagnosticsSummary(bag))
	}
}
