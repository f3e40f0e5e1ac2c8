package sema

import (
	"strings"
	"testing"

	"volt/internal/diag"
)

func TestLocalShadowsConst(t *testing.T) {
	checkClean(t, `
const flag: int = 1;

fn probe() {
	let flag = true;
	let use: bool = flag;
}
`)
}

func TestUnknownValueSuggestion(t *testing.T) {
	_, _, bag := checkSource(t, `
fn probe() {
	let count = 1;
	let y: int = cout;
}
`)
	if countCode(bag, diag.TypUnknownName) != 1 {
		t.Fatalf("expected one unknown name, got: %s", diagnosticsSummary(bag))
	}
	d := findDiag(t, bag, diag.TypUnknownName)
	if !hasSnippet(d, "count") {
		t.Fatalf("expected a `count` suggestion, snippets: %v", suggestionSnippets(d))
	}
}

func TestTypeInValuePosition(t *testing.T) {
	_, _, bag := checkSource(t, `
type Point struct { x: int }

fn probe() {
	let p = Point;
}
`)
	d := findDiag(t, bag, diag.TypUnknownName)
	if !strings.Contains(d.Message, "expected a value, found type `Point`") {
		t.Fatalf("unexpected message %q", d.Message)
	}
}

func TestLongPathNotFound(t *testing.T) {
	_, _, bag := checkSource(t, `
fn probe() {
	let x = a::b::c;
}
`)
	d := findDiag(t, bag, diag.TypUnknownName)
	if !strings.Contains(d.Message, "cannot find value `a::b::c`") {
		t.Fatalf("unexpected message %q", d.Message)
	}
}

func TestEnumUnitVariantValue(t *testing.T) {
	checkClean(t, `
type Color enum { Red, Green }

fn probe() {
	let c = Color::Red;
	let d: Color = c;
}
`)
}

func TestEnumVariantSuggestion(t *testing.T) {
	_, _, bag := checkSource(t, `
type Color enum { Red, Green }

fn probe() {
	let c = Color::Rad;
}
`)
	d := findDiag(t, bag, diag.TypUnknownName)
	if !strings.Contains(d.Message, "no variant named `Rad` found for enum `Color`") {
		t.Fatalf("unexpected message %q", d.Message)
	}
	if !hasSnippet(d, "Red") {
		t.Fatalf("expected a `Red` suggestion, snippets: %v", suggestionSnippets(d))
	}
}

func TestDataVariantsAreNotValues(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			"tuple",
			"type E enum { P(int) }\nfn probe() {\n\tlet x = E::P;\n}",
			"expected a value, found tuple variant `E::P`",
		},
		{
			"struct",
			"type E enum { R { a: int } }\nfn probe() {\n\tlet x = E::R;\n}",
			"expected a value, found struct variant `E::R`",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, bag := checkSource(t, tt.src)
			d := findDiag(t, bag, diag.TypUnknownName)
			if !strings.Contains(d.Message, tt.want) {
				t.Fatalf("unexpected message %q", d.Message)
			}
		})
	}
}

func TestCondMustBeBool(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"if", "fn probe(x: int) { if x { } }", "`if` condition is not boolean"},
		{"while", "fn probe(x: float) { while x { } }", "`while` condition is not boolean"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, bag := checkSource(t, tt.src)
			// ошибка ровно одна: литеральные паттерны веток молчат
			if bag.Len() != 1 {
				t.Fatalf("expected a single diagnostic, got: %s", diagnosticsSummary(bag))
			}
			d := findDiag(t, bag, diag.TypCondNotBool)
			if d.Message != tt.want {
				t.Fatalf("unexpected message %q", d.Message)
			}
		})
	}
}

func TestBoolCondClean(t *testing.T) {
	checkClean(t, `
fn probe(c: bool) {
	if c { }
	while c { }
}
`)
}

func TestIfMissingElse(t *testing.T) {
	_, _, bag := checkSource(t, `
fn probe(c: bool) {
	let x: int = if c { 1 };
}
`)
	if countCode(bag, diag.TypMismatch) != 1 {
		t.Fatalf("expected one mismatch, got: %s", diagnosticsSummary(bag))
	}
	d := findDiag(t, bag, diag.TypMismatch)
	if d.Message != "`if` may be missing an `else` clause" {
		t.Fatalf("unexpected message %q", d.Message)
	}
	if !hasChildNote(d, "`if` expressions without `else` evaluate to `()`") {
		t.Fatal("expected the missing-else note")
	}
}

func TestIfElseIncompatible(t *testing.T) {
	_, _, bag := checkSource(t, `
fn probe(c: bool) {
	let x = if c { 1 } else { "s" };
}
`)
	d := findDiag(t, bag, diag.TypMismatch)
	if d.Message != "`if` and `else` have incompatible types" {
		t.Fatalf("unexpected message %q", d.Message)
	}
}

func TestMatchArmIncompatible(t *testing.T) {
	_, _, bag := checkSource(t, `
fn probe(x: int) {
	let y = match x {
		1 => true,
		2 => "a",
		_ => 1.5,
	};
}
`)
	// после первой несовместимой ветки match считается ошибочным
	if countCode(bag, diag.TypMismatch) != 1 {
		t.Fatalf("expected a single mismatch, got: %s", diagnosticsSummary(bag))
	}
	d := findDiag(t, bag, diag.TypMismatch)
	if d.Message != "`match` arms have incompatible types" {
		t.Fatalf("unexpected message %q", d.Message)
	}
}

func TestMatchArmsWidenLiterals(t *testing.T) {
	// целые литералы подстраиваются под дробный якорь
	checkClean(t, `
fn probe(x: int) -> float {
	match x {
		1 => 1.5,
		_ => 2,
	}
}
`)
}

func TestReturnCheckedAgainstSignature(t *testing.T) {
	checkClean(t, `
fn ok() -> int {
	return 5;
}
`)
	_, _, bag := checkSource(t, `
fn probe(x: int) -> bool {
	return x;
}
`)
	if countCode(bag, diag.TypMismatch) != 1 {
		t.Fatalf("expected one mismatch, got: %s", diagnosticsSummary(bag))
	}
}

func TestBareReturnIsUnit(t *testing.T) {
	checkClean(t, `
fn probe(c: bool) {
	if c {
		return;
	}
}
`)
	_, _, bag := checkSource(t, `
fn probe() -> int {
	return;
}
`)
	if countCode(bag, diag.TypMismatch) != 1 {
		t.Fatalf("expected one mismatch, got: %s", diagnosticsSummary(bag))
	}
}

func TestReturnOutsideFn(t *testing.T) {
	_, _, bag := checkSource(t, `
const X: int = { return 5; 1 };
`)
	if bag.Len() != 1 {
		t.Fatalf("expected one error, got: %s", diagnosticsSummary(bag))
	}
	if !strings.Contains(bag.Items()[0].Message, "return statement outside of function body") {
		t.Fatalf("unexpected message %q", bag.Items()[0].Message)
	}
}

func TestMissingReturnTypeSuggestion(t *testing.T) {
	_, _, bag := checkSource(t, `
fn probe() { 42 }
`)
	d := findDiag(t, bag, diag.TypMismatch)
	if !hasSnippet(d, "-> int ") {
		t.Fatalf("expected a return type suggestion, snippets: %v", suggestionSnippets(d))
	}
}

func TestDeclaredReturnTypeNotSuggested(t *testing.T) {
	_, _, bag := checkSource(t, `
fn probe() -> int { }
`)
	d := findDiag(t, bag, diag.TypMismatch)
	if len(d.Suggestions) != 0 {
		t.Fatalf("expected no suggestions, got: %v", suggestionSnippets(d))
	}
}

func TestWhileBodyMustBeUnit(t *testing.T) {
	_, _, bag := checkSource(t, `
fn probe(c: bool) {
	while c { 42 }
}
`)
	if countCode(bag, diag.TypMismatch) != 1 {
		t.Fatalf("expected one mismatch, got: %s", diagnosticsSummary(bag))
	}
}

func TestAllArmsReturn(t *testing.T) {
	checkClean(t, `
fn probe(x: int) -> int {
	match x {
		1 => { return 1; }
		_ => { return 0; }
	}
}
`)
}

func TestParamDestructuring(t *testing.T) {
	builder, res := checkClean(t, `
fn probe((a, b): (int, bool)) -> int {
	a
}
`)
	if got := bindingLabel(t, builder, res, "a"); got != "int" {
		t.Fatalf("expected `int`, got %q", got)
	}
	if got := bindingLabel(t, builder, res, "b"); got != "bool" {
		t.Fatalf("expected `bool`, got %q", got)
	}
}

func TestBlockTailTyping(t *testing.T) {
	checkClean(t, `
fn probe() -> int {
	let x = 5;
	x
}
`)
}

func TestRefExprTyping(t *testing.T) {
	builder, res := checkClean(t, `
fn probe(x: int) {
	let r = &x;
	let m = &&x;
	let h = own x;
}
`)
	if got := bindingLabel(t, builder, res, "r"); got != "&int" {
		t.Fatalf("expected `&int`, got %q", got)
	}
	if got := bindingLabel(t, builder, res, "m"); got != "&&int" {
		t.Fatalf("expected `&&int`, got %q", got)
	}
	if got := bindingLabel(t, builder, res, "h"); got != "own int" {
		t.Fatalf("expected `own int`, got %q", got)
	}
}
