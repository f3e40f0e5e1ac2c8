package sema

import (
	"fmt"
	"strings"
	"testing"

	"volt/internal/diag"
	"volt/internal/types"
)

func TestBindingModeLattice(t *testing.T) {
	tests := []struct {
		name string
		typ  string
		want string
		mode BindingMode
	}{
		{"shared", "&Point", "&int", BindByRef},
		{"mutable", "&mut Point", "&mut int", BindByRefMut},
		{"shared_over_mut", "&&mut Point", "&int", BindByRef},
		{"mut_then_shared", "&mut &Point", "&int", BindByRef},
		{"mut_all_the_way", "&mut &mut Point", "&mut int", BindByRefMut},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := fmt.Sprintf(`
type Point struct { x: int, y: int }

fn probe(p: %s) {
	let Point { x, .. } = p;
}
`, tt.typ)
			builder, res := checkClean(t, src)
			if got := bindingLabel(t, builder, res, "x"); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
			if got := bindingMode(t, builder, res, "x"); got != tt.mode {
				t.Fatalf("expected mode %v, got %v", tt.mode, got)
			}
		})
	}
}

func TestMutAnnotationResetsMode(t *testing.T) {
	builder, res := checkClean(t, `
type Point struct { x: int, y: int }

fn probe(p: &Point) {
	let Point { mut x, .. } = p;
}
`)
	// явный mut отменяет накопленный режим ссылки
	if got := bindingLabel(t, builder, res, "x"); got != "int" {
		t.Fatalf("expected `int`, got %q", got)
	}
	if got := bindingMode(t, builder, res, "x"); got != BindByValue {
		t.Fatalf("expected by-value, got %v", got)
	}
}

func TestRefPatternExactMutability(t *testing.T) {
	builder, res := checkClean(t, `
fn probe(r: &int) {
	let &x = r;
}
`)
	if got := bindingLabel(t, builder, res, "x"); got != "int" {
		t.Fatalf("expected `int`, got %q", got)
	}
	if got := bindingMode(t, builder, res, "x"); got != BindByValue {
		t.Fatalf("expected by-value, got %v", got)
	}

	tests := []struct {
		name string
		src  string
	}{
		{"shared_on_mut", "fn probe(r: &mut int) {\n\tlet &x = r;\n}"},
		{"mut_on_shared", "fn probe(r: &int) {\n\tlet &mut x = r;\n}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, bag := checkSource(t, tt.src)
			// в паттерне мутабельность ссылки обязана совпадать
			if countCode(bag, diag.TypMismatch) != 1 {
				t.Fatalf("expected one mismatch, got: %s", diagnosticsSummary(bag))
			}
		})
	}
}

func TestParamBorrowSuggestion(t *testing.T) {
	_, _, bag := checkSource(t, `
fn probe(&x: int) { }
`)
	d := findDiag(t, bag, diag.TypMismatch)
	if !hasSnippet(d, "x: &int") {
		t.Fatalf("expected the signature fix, snippets: %v", suggestionSnippets(d))
	}
	if d.Suggestions[0].Applicability != diag.ApplicabilityMachineApplicable {
		t.Fatalf("expected machine applicable, got %v", d.Suggestions[0].Applicability)
	}

	_, _, bag = checkSource(t, `
fn probe(&mut x: int) { }
`)
	d = findDiag(t, bag, diag.TypMismatch)
	if !hasSnippet(d, "x: &mut int") {
		t.Fatalf("expected the mutable fix, snippets: %v", suggestionSnippets(d))
	}
}

func TestRemoveBorrowSuggestion(t *testing.T) {
	_, _, bag := checkSource(t, `
fn probe(v: int) {
	let &y = v;
}
`)
	d := findDiag(t, bag, diag.TypMismatch)
	if !hasSnippet(d, "y") {
		t.Fatalf("expected removal suggestion, snippets: %v", suggestionSnippets(d))
	}
	if d.Suggestions[0].Applicability != diag.ApplicabilityMaybeIncorrect {
		t.Fatalf("expected maybe-incorrect, got %v", d.Suggestions[0].Applicability)
	}
}

func TestTuplePatternArity(t *testing.T) {
	_, _, bag := checkSource(t, `
fn probe(p: (int, bool)) {
	let (a, b, c) = p;
}
`)
	// подпаттерны после провала получают тип ошибки и не каскадят
	if bag.Len() != 1 || countCode(bag, diag.TypMismatch) != 1 {
		t.Fatalf("expected a single mismatch, got: %s", diagnosticsSummary(bag))
	}
}

func TestTupleRestSpreads(t *testing.T) {
	builder, res := checkClean(t, `
fn probe(p: (int, bool, string)) {
	let (first, .., last) = p;
	let (.., tail) = p;
}
`)
	if got := bindingLabel(t, builder, res, "first"); got != "int" {
		t.Fatalf("expected `int`, got %q", got)
	}
	if got := bindingLabel(t, builder, res, "last"); got != "string" {
		t.Fatalf("expected `string`, got %q", got)
	}
	if got := bindingLabel(t, builder, res, "tail"); got != "string" {
		t.Fatalf("expected `string`, got %q", got)
	}
}

func TestUnitPattern(t *testing.T) {
	checkClean(t, `
fn probe(u: ()) {
	let () = u;
}
`)
	_, _, bag := checkSource(t, `
fn probe(x: int) {
	let () = x;
}
`)
	if countCode(bag, diag.TypMismatch) != 1 {
		t.Fatalf("expected one mismatch, got: %s", diagnosticsSummary(bag))
	}
}

func TestConstInPattern(t *testing.T) {
	builder, res, bag := checkSource(t, `
const LIMIT: int = 10;

fn probe(x: int) -> int {
	match x {
		LIMIT => 1,
		_ => 0,
	}
}
`)
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %s", diagnosticsSummary(bag))
	}
	// имя константы сопоставляется со значением, биндинг не создаётся
	for pid := range res.BindingTypes {
		data, ok := builder.Pats.Binding(pid)
		if !ok {
			continue
		}
		if name, _ := builder.Strings.Lookup(data.Name); name == "LIMIT" {
			t.Fatal("const pattern must not create a binding")
		}
	}
}

func TestConstPatternMismatch(t *testing.T) {
	_, _, bag := checkSource(t, `
const NAME: string = "x";

fn probe(x: int) -> int {
	match x {
		NAME => 1,
		_ => 0,
	}
}
`)
	if countCode(bag, diag.TypMismatch) != 1 {
		t.Fatalf("expected one mismatch, got: %s", diagnosticsSummary(bag))
	}
}

func TestRangePatterns(t *testing.T) {
	checkClean(t, `
fn probe(c: char) -> int {
	match c {
		'a'..='z' => 1,
		_ => 0,
	}
}
`)

	tests := []struct {
		name string
		src  string
	}{
		{"bool_endpoints", "fn probe(b: bool) -> int {\n\tmatch b {\n\t\ttrue..false => 1,\n\t\t_ => 0,\n\t}\n}"},
		{"string_endpoints", "fn probe(s: string) -> int {\n\tmatch s {\n\t\t\"a\"..\"b\" => 1,\n\t\t_ => 0,\n\t}\n}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, bag := checkSource(t, tt.src)
			if countCode(bag, diag.TypRangeEndpoint) != 1 {
				t.Fatalf("expected one endpoint error, got: %s", diagnosticsSummary(bag))
			}
			if countCode(bag, diag.TypMismatch) != 0 {
				t.Fatalf("endpoint error must not cascade: %s", diagnosticsSummary(bag))
			}
		})
	}
}

func TestRangeEndpointsAgainstScrutinee(t *testing.T) {
	_, _, bag := checkSource(t, `
fn probe(x: int) -> int {
	match x {
		'a'..='z' => 1,
		_ => 0,
	}
}
`)
	// каждая граница сверяется со скрутини отдельно
	if countCode(bag, diag.TypMismatch) != 2 {
		t.Fatalf("expected two mismatches, got: %s", diagnosticsSummary(bag))
	}
}

func TestStructPatternBasics(t *testing.T) {
	builder, res := checkClean(t, `
type Point struct { x: int, y: int }

fn probe(p: Point) -> int {
	let Point { x, y } = p;
	x
}
`)
	if got := bindingLabel(t, builder, res, "x"); got != "int" {
		t.Fatalf("expected `int`, got %q", got)
	}
	if got := bindingLabel(t, builder, res, "y"); got != "int" {
		t.Fatalf("expected `int`, got %q", got)
	}
}

func TestStructPatternMissingFields(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		message string
		snippet string
	}{
		{
			"two_missing",
			"type Point struct { x: int, y: int, z: int }\n\nfn probe(p: Point) {\n\tlet Point { x } = p;\n}",
			"pattern does not mention fields `y`, `z`",
			", y, z }",
		},
		{
			"one_missing",
			"type Point struct { x: int, y: int }\n\nfn probe(p: Point) {\n\tlet Point { x } = p;\n}",
			"pattern does not mention field `y`",
			", y }",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, bag := checkSource(t, tt.src)
			if countCode(bag, diag.TypMissingFields) != 1 {
				t.Fatalf("expected one missing-fields error, got: %s", diagnosticsSummary(bag))
			}
			d := findDiag(t, bag, diag.TypMissingFields)
			if !strings.Contains(d.Message, tt.message) {
				t.Fatalf("unexpected message %q", d.Message)
			}
			if !hasSnippet(d, tt.snippet) {
				t.Fatalf("expected snippet %q, got: %v", tt.snippet, suggestionSnippets(d))
			}
			// второй вариант правки: игнорировать хвост через `..`
			if !hasSnippet(d, ", .. }") {
				t.Fatalf("expected the ignore suggestion, got: %v", suggestionSnippets(d))
			}
		})
	}
}

func TestStructPatternUnknownField(t *testing.T) {
	_, _, bag := checkSource(t, `
type Stat struct { x: int, y: int, count: int }

fn probe(s: Stat) {
	let Stat { x, y, cont, .. } = s;
}
`)
	if bag.Len() != 1 || countCode(bag, diag.TypUnknownField) != 1 {
		t.Fatalf("expected a single unknown-field error, got: %s", diagnosticsSummary(bag))
	}
	d := findDiag(t, bag, diag.TypUnknownField)
	if !strings.Contains(d.Message, "struct `Stat` does not have a field named `cont`") {
		t.Fatalf("unexpected message %q", d.Message)
	}
	if !hasSnippet(d, "count") {
		t.Fatalf("expected a `count` suggestion, got: %v", suggestionSnippets(d))
	}
}

func TestStructPatternDuplicateField(t *testing.T) {
	_, _, bag := checkSource(t, `
type Point struct { x: int, y: int }

fn probe(p: Point) {
	let Point { x, x, .. } = p;
}
`)
	if bag.Len() != 1 || countCode(bag, diag.TypFieldBoundTwice) != 1 {
		t.Fatalf("expected a single duplicate-field error, got: %s", diagnosticsSummary(bag))
	}
}

func TestStructShorthandAnnotations(t *testing.T) {
	builder, res := checkClean(t, `
type Point struct { x: int, y: int }

fn probe(p: Point) {
	let Point { ref x, ref mut y } = p;
}
`)
	if got := bindingLabel(t, builder, res, "x"); got != "&int" {
		t.Fatalf("expected `&int`, got %q", got)
	}
	if got := bindingLabel(t, builder, res, "y"); got != "&mut int" {
		t.Fatalf("expected `&mut int`, got %q", got)
	}
	if got := bindingMode(t, builder, res, "y"); got != BindByRefMut {
		t.Fatalf("expected ref mut, got %v", got)
	}
}

func TestTupleStructPattern(t *testing.T) {
	builder, res := checkClean(t, `
type Pair struct(int, bool);

fn probe(p: Pair) {
	let Pair(a, b) = p;
	let Pair(c, ..) = p;
	let Pair(.., d) = p;
}
`)
	tests := []struct {
		name string
		want string
	}{
		{"a", "int"},
		{"b", "bool"},
		{"c", "int"},
		{"d", "bool"},
	}
	for _, tt := range tests {
		if got := bindingLabel(t, builder, res, tt.name); got != tt.want {
			t.Errorf("%s: expected %q, got %q", tt.name, tt.want, got)
		}
	}
}

func TestTupleStructArity(t *testing.T) {
	_, _, bag := checkSource(t, `
type Pair struct(int, bool);

fn probe(p: Pair) {
	let Pair(a) = p;
}
`)
	if bag.Len() != 1 || countCode(bag, diag.TypPatArity) != 1 {
		t.Fatalf("expected a single arity error, got: %s", diagnosticsSummary(bag))
	}
	d := findDiag(t, bag, diag.TypPatArity)
	if !strings.Contains(d.Message, "this pattern has 1 field, but the corresponding tuple struct has 2 fields") {
		t.Fatalf("unexpected message %q", d.Message)
	}
}

func TestTupleStructParenHeuristic(t *testing.T) {
	_, _, bag := checkSource(t, `
type Wrap struct((int, bool));

fn probe(w: Wrap) {
	let Wrap(a, b) = w;
}
`)
	d := findDiag(t, bag, diag.TypPatArity)
	// единственное поле-кортеж: предлагаем вернуть скобки
	if !hasSnippet(d, "(") || !hasSnippet(d, ")") {
		t.Fatalf("expected paren suggestion, got: %v", suggestionSnippets(d))
	}
}

func TestNamedStructAsTupleCtor(t *testing.T) {
	_, _, bag := checkSource(t, `
type Point struct { x: int }

fn probe(p: Point) {
	let Point(a) = p;
}
`)
	d := findDiag(t, bag, diag.TypExpectedTupleCtor)
	if !strings.Contains(d.Message, "expected tuple struct or tuple variant, found struct `Point`") {
		t.Fatalf("unexpected message %q", d.Message)
	}
}

func TestTupleStructAsStructPattern(t *testing.T) {
	_, _, bag := checkSource(t, `
type Pair struct(int, bool);

fn probe(p: Pair) {
	let Pair { a } = p;
}
`)
	d := findDiag(t, bag, diag.TypStructPatOnTuple)
	if !strings.Contains(d.Message, "tuple struct `Pair` written as struct pattern") {
		t.Fatalf("unexpected message %q", d.Message)
	}
}

func TestConstAsTupleCtor(t *testing.T) {
	_, _, bag := checkSource(t, `
const MAX: int = 10;

fn probe(x: int) -> int {
	match x {
		MAX(a) => 1,
		_ => 0,
	}
}
`)
	d := findDiag(t, bag, diag.TypExpectedTupleCtor)
	if !strings.Contains(d.Message, "found constant `MAX`") {
		t.Fatalf("unexpected message %q", d.Message)
	}
}

func TestEnumVariantPatterns(t *testing.T) {
	builder, res := checkClean(t, `
type Shape enum { Dot, Line(int, int), Rect { w: int, h: int } }

fn probe(s: Shape) -> int {
	match s {
		Shape::Dot => 0,
		Shape::Line(a, b) => a,
		Shape::Rect { w, h } => w,
	}
}
`)
	tests := []struct {
		name string
		want string
	}{
		{"a", "int"},
		{"b", "int"},
		{"w", "int"},
		{"h", "int"},
	}
	for _, tt := range tests {
		if got := bindingLabel(t, builder, res, tt.name); got != tt.want {
			t.Errorf("%s: expected %q, got %q", tt.name, tt.want, got)
		}
	}
}

func TestBareTupleVariantPattern(t *testing.T) {
	_, _, bag := checkSource(t, `
type Shape enum { Dot, Line(int, int) }

fn probe(s: Shape) -> int {
	match s {
		Shape::Line => 1,
		_ => 0,
	}
}
`)
	d := findDiag(t, bag, diag.TypUnknownName)
	if !strings.Contains(d.Message, "expected unit variant or constant, found tuple variant `Shape::Line`") {
		t.Fatalf("unexpected message %q", d.Message)
	}
	if !hasSnippet(d, "Shape::Line(_, _)") {
		t.Fatalf("expected placeholder suggestion, got: %v", suggestionSnippets(d))
	}
}

func TestBareStructVariantPattern(t *testing.T) {
	_, _, bag := checkSource(t, `
type Shape enum { Dot, Rect { w: int, h: int } }

fn probe(s: Shape) -> int {
	match s {
		Shape::Rect => 1,
		_ => 0,
	}
}
`)
	d := findDiag(t, bag, diag.TypUnknownName)
	if !strings.Contains(d.Message, "expected unit variant or constant, found struct variant `Shape::Rect`") {
		t.Fatalf("unexpected message %q", d.Message)
	}
}

func TestTupleVariantAsStructPattern(t *testing.T) {
	_, _, bag := checkSource(t, `
type Shape enum { Dot, Line(int, int) }

fn probe(s: Shape) -> int {
	match s {
		Shape::Line { a } => 1,
		_ => 0,
	}
}
`)
	d := findDiag(t, bag, diag.TypUnknownName)
	if !strings.Contains(d.Message, "expected struct variant, found tuple variant `Shape::Line`") {
		t.Fatalf("unexpected message %q", d.Message)
	}
}

func TestUnitVariantAsTupleCtor(t *testing.T) {
	_, _, bag := checkSource(t, `
type Shape enum { Dot, Line(int, int) }

fn probe(s: Shape) -> int {
	match s {
		Shape::Dot(a) => 1,
		_ => 0,
	}
}
`)
	d := findDiag(t, bag, diag.TypExpectedTupleCtor)
	if !strings.Contains(d.Message, "found unit variant `Shape::Dot`") {
		t.Fatalf("unexpected message %q", d.Message)
	}
}

func TestStructVariantAsTupleCtor(t *testing.T) {
	_, _, bag := checkSource(t, `
type Shape enum { Rect { w: int, h: int } }

fn probe(s: Shape) -> int {
	match s {
		Shape::Rect(a) => 1,
		_ => 0,
	}
}
`)
	d := findDiag(t, bag, diag.TypExpectedTupleCtor)
	if !strings.Contains(d.Message, "found struct variant `Shape::Rect`") {
		t.Fatalf("unexpected message %q", d.Message)
	}
}

func TestUnknownVariantInPattern(t *testing.T) {
	_, _, bag := checkSource(t, `
type Shape enum { Dot, Line(int, int) }

fn probe(s: Shape) -> int {
	match s {
		Shape::Circle => 1,
		_ => 0,
	}
}
`)
	d := findDiag(t, bag, diag.TypUnknownName)
	if !strings.Contains(d.Message, "no variant named `Circle` found for enum `Shape`") {
		t.Fatalf("unexpected message %q", d.Message)
	}
}

func TestWrongEnumInPattern(t *testing.T) {
	_, _, bag := checkSource(t, `
type Shape enum { Dot }
type Other enum { A }

fn probe(s: Shape) -> int {
	match s {
		Other::A => 1,
		_ => 0,
	}
}
`)
	if countCode(bag, diag.TypMismatch) != 1 {
		t.Fatalf("expected one mismatch, got: %s", diagnosticsSummary(bag))
	}
}

func TestGenericEnumInference(t *testing.T) {
	builder, res := checkClean(t, `
type Option<T> enum { None, Some(T) }

fn probe(o: Option<int>) -> int {
	match o {
		Option::Some(v) => v,
		Option::None => 0,
	}
}
`)
	if got := bindingLabel(t, builder, res, "v"); got != "int" {
		t.Fatalf("expected `int`, got %q", got)
	}
}

func TestGenericStructPattern(t *testing.T) {
	builder, res := checkClean(t, `
type Box<T> struct { value: T }

fn probe(b: Box<bool>) {
	let Box { value } = b;
}
`)
	if got := bindingLabel(t, builder, res, "value"); got != "bool" {
		t.Fatalf("expected `bool`, got %q", got)
	}
}

func TestNonExhaustiveForeignStruct(t *testing.T) {
	_, _, bag := checkTwoFiles(t, `
fn probe(c: Config) -> int {
	let Config { retries, verbose } = c;
	retries
}
`, `
@non_exhaustive
type Config struct { retries: int, verbose: bool }
`)
	if countCode(bag, diag.TypNonExhaustive) != 1 {
		t.Fatalf("expected one non-exhaustive error, got: %s", diagnosticsSummary(bag))
	}
	// репорт о пропущенных полях не дублируется
	if countCode(bag, diag.TypMissingFields) != 0 {
		t.Fatalf("missing-fields must not fire: %s", diagnosticsSummary(bag))
	}
	d := findDiag(t, bag, diag.TypNonExhaustive)
	if !hasSnippet(d, ", .. }") {
		t.Fatalf("expected the `..` suggestion, got: %v", suggestionSnippets(d))
	}
}

func TestNonExhaustiveForeignVariant(t *testing.T) {
	_, _, bag := checkTwoFiles(t, `
fn probe(e: Event) -> int {
	match e {
		Event::Boom { code } => code,
		_ => 0,
	}
}
`, `
@non_exhaustive
type Event enum { Boom { code: int }, Quiet }
`)
	d := findDiag(t, bag, diag.TypNonExhaustive)
	if !strings.Contains(d.Message, "`..` required with variant marked as non-exhaustive") {
		t.Fatalf("unexpected message %q", d.Message)
	}
}

func TestNonExhaustiveWithRestIsFine(t *testing.T) {
	_, _, bag := checkTwoFiles(t, `
fn probe(c: Config) -> int {
	let Config { retries, .. } = c;
	retries
}
`, `
@non_exhaustive
type Config struct { retries: int, verbose: bool }
`)
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %s", diagnosticsSummary(bag))
	}
}

func TestNonExhaustiveSameFileIsFine(t *testing.T) {
	// пометка действует только на паттерны из других файлов
	checkClean(t, `
@non_exhaustive
type Config struct { retries: int }

fn probe(c: Config) -> int {
	let Config { retries } = c;
	retries
}
`)
}

func TestSlicePatternsOnArray(t *testing.T) {
	builder, res := checkClean(t, `
fn probe(a: [int; 3]) {
	let [x, y, z] = a;
	let [first, rest @ .., last] = a;
}
`)
	if got := bindingLabel(t, builder, res, "x"); got != "int" {
		t.Fatalf("expected `int`, got %q", got)
	}
	if got := bindingLabel(t, builder, res, "rest"); got != "[int; 1]" {
		t.Fatalf("expected `[int; 1]`, got %q", got)
	}
	if got := bindingLabel(t, builder, res, "last"); got != "int" {
		t.Fatalf("expected `int`, got %q", got)
	}
}

func TestSlicePatternCountMismatch(t *testing.T) {
	_, _, bag := checkSource(t, `
fn probe(a: [int; 3]) {
	let [x, y] = a;
}
`)
	d := findDiag(t, bag, diag.TypSliceCount)
	if !strings.Contains(d.Message, "pattern requires 2 elements but array has 3") {
		t.Fatalf("unexpected message %q", d.Message)
	}
}

func TestSlicePatternTooManyBeforeRest(t *testing.T) {
	_, _, bag := checkSource(t, `
fn probe(a: [int; 1]) {
	let [x, y, ..] = a;
}
`)
	d := findDiag(t, bag, diag.TypSliceMin)
	if !strings.Contains(d.Message, "pattern requires at least 2 elements but array has 1") {
		t.Fatalf("unexpected message %q", d.Message)
	}
}

func TestSlicePatternOnSlice(t *testing.T) {
	builder, res := checkClean(t, `
fn probe(s: [int]) {
	let [head, mid @ ..] = s;
}
`)
	if got := bindingLabel(t, builder, res, "head"); got != "int" {
		t.Fatalf("expected `int`, got %q", got)
	}
	// остаток слайса остаётся слайсом
	if got := bindingLabel(t, builder, res, "mid"); got != "[int]" {
		t.Fatalf("expected `[int]`, got %q", got)
	}
}

func TestSlicePatternOnNonSlice(t *testing.T) {
	_, _, bag := checkSource(t, `
fn probe(x: int) {
	let [a] = x;
}
`)
	d := findDiag(t, bag, diag.TypExpectedSlice)
	if !strings.Contains(d.Message, "expected an array or slice, found `int`") {
		t.Fatalf("unexpected message %q", d.Message)
	}
}

func TestOrPatternAlternatives(t *testing.T) {
	checkClean(t, `
fn probe(x: int) -> bool {
	match x {
		1 | 2 | 3 => true,
		_ => false,
	}
}
`)
	builder, res := checkClean(t, `
fn probe(p: (int, int)) -> int {
	match p {
		(a, 1) | (1, a) => a,
		_ => 0,
	}
}
`)
	if got := bindingLabel(t, builder, res, "a"); got != "int" {
		t.Fatalf("expected `int`, got %q", got)
	}
}

func TestByteStringPattern(t *testing.T) {
	checkClean(t, `
fn probe(data: &[byte; 2]) -> bool {
	match data {
		b"ok" => true,
		_ => false,
	}
}
`)
	checkClean(t, `
fn probe(data: &[byte]) -> bool {
	match data {
		b"hi" => true,
		_ => false,
	}
}
`)
	_, _, bag := checkSource(t, `
fn probe(data: &[byte; 2]) -> bool {
	match data {
		b"nope" => true,
		_ => false,
	}
}
`)
	// длина байтовой строки входит в тип
	if countCode(bag, diag.TypMismatch) != 1 {
		t.Fatalf("expected one mismatch, got: %s", diagnosticsSummary(bag))
	}
}

func TestContractCannotBeDereferenced(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			"behind_ref",
			"contract Draw;\n\nfn probe(d: &any Draw) {\n\tlet &x = d;\n}",
			"type `&any Draw` cannot be dereferenced",
		},
		{
			"behind_own",
			"contract Draw;\n\nfn probe(d: own any Draw) {\n\tlet own x = d;\n}",
			"type `own any Draw` cannot be dereferenced",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, bag := checkSource(t, tt.src)
			d := findDiag(t, bag, diag.TypDerefContract)
			if !strings.Contains(d.Message, tt.want) {
				t.Fatalf("unexpected message %q", d.Message)
			}
		})
	}
}

func TestContractRefBindingAllowed(t *testing.T) {
	builder, res := checkClean(t, `
contract Draw;

fn probe(d: &any Draw) {
	let &ref x = d;
}
`)
	// ref-биндинг не вынимает значение из-под ссылки
	if got := bindingLabel(t, builder, res, "x"); got != "&any Draw" {
		t.Fatalf("expected `&any Draw`, got %q", got)
	}
}

func TestOwnPattern(t *testing.T) {
	builder, res := checkClean(t, `
fn probe(h: own string) {
	let own s = h;
}
`)
	if got := bindingLabel(t, builder, res, "s"); got != "string" {
		t.Fatalf("expected `string`, got %q", got)
	}

	_, _, bag := checkSource(t, `
fn probe(x: int) {
	let own s = x;
}
`)
	if countCode(bag, diag.TypMismatch) != 1 {
		t.Fatalf("expected one mismatch, got: %s", diagnosticsSummary(bag))
	}
}

func TestUnionPattern(t *testing.T) {
	builder, res := checkClean(t, `
type Value union { i: int, f: float }

fn probe(v: Value) -> int {
	let Value { i } = v;
	i
}
`)
	if got := bindingLabel(t, builder, res, "i"); got != "int" {
		t.Fatalf("expected `int`, got %q", got)
	}
}

func TestUnionPatternShape(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			"two_fields",
			"type Value union { i: int, f: float }\n\nfn probe(v: Value) {\n\tlet Value { i, f } = v;\n}",
			"union patterns should have exactly one field",
		},
		{
			"rest",
			"type Value union { i: int, f: float }\n\nfn probe(v: Value) {\n\tlet Value { i, .. } = v;\n}",
			"`..` cannot be used in union patterns",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, bag := checkSource(t, tt.src)
			if bag.Len() != 1 {
				t.Fatalf("expected one error, got: %s", diagnosticsSummary(bag))
			}
			if !strings.Contains(bag.Items()[0].Message, tt.want) {
				t.Fatalf("unexpected message %q", bag.Items()[0].Message)
			}
		})
	}
}

func TestUnionPatternUnknownField(t *testing.T) {
	_, _, bag := checkSource(t, `
type Value union { i: int, f: float }

fn probe(v: Value) {
	let Value { q } = v;
}
`)
	d := findDiag(t, bag, diag.TypUnknownField)
	if !strings.Contains(d.Message, "union `Value` does not have a field named `q`") {
		t.Fatalf("unexpected message %q", d.Message)
	}
}

func TestAdjustmentsRecorded(t *testing.T) {
	builder, res := checkClean(t, `
fn probe(p: &(int, bool)) {
	let (a, b) = p;
}
`)
	if len(res.Adjustments) != 1 {
		t.Fatalf("expected one adjusted pattern, got %d", len(res.Adjustments))
	}
	for _, adj := range res.Adjustments {
		if len(adj) != 1 {
			t.Fatalf("expected one peeled layer, got %d", len(adj))
		}
		if got := types.Label(res.Types, adj[0]); got != "&(int, bool)" {
			t.Fatalf("expected `&(int, bool)`, got %q", got)
		}
	}
	if got := bindingLabel(t, builder, res, "a"); got != "&int" {
		t.Fatalf("expected `&int`, got %q", got)
	}
	if got := bindingMode(t, builder, res, "b"); got != BindByRef {
		t.Fatalf("expected ref mode, got %v", got)
	}
}

func TestUnknownStructPatternName(t *testing.T) {
	_, _, bag := checkSource(t, `
fn probe(x: int) {
	let Missing { a } = x;
}
`)
	d := findDiag(t, bag, diag.TypUnknownName)
	if !strings.Contains(d.Message, "cannot find struct, variant or union type `Missing`") {
		t.Fatalf("unexpected message %q", d.Message)
	}
}

func TestEnumInStructPatternPosition(t *testing.T) {
	_, _, bag := checkSource(t, `
type E enum { A }

fn probe(e: E) {
	let E { a } = e;
}
`)
	d := findDiag(t, bag, diag.TypUnknownName)
	if !strings.Contains(d.Message, "expected struct, variant or union type, found enum `E`") {
		t.Fatalf("unexpected message %q", d.Message)
	}
}

func TestBindingWithSubpatternTyping(t *testing.T) {
	builder, res := checkClean(t, `
fn probe(p: (int, bool)) {
	let all @ (a, b) = p;
}
`)
	if got := bindingLabel(t, builder, res, "all"); got != "(int, bool)" {
		t.Fatalf("expected `(int, bool)`, got %q", got)
	}
	if got := bindingLabel(t, builder, res, "a"); got != "int" {
		t.Fatalf("expected `int`, got %q", got)
	}
}

func TestRangeSubpatternBinding(t *testing.T) {
	builder, res := checkClean(t, `
fn probe(n: int) -> int {
	match n {
		small @ 0..=9 => small,
		_ => n,
	}
}
`)
	if got := bindingLabel(t, builder, res, "small"); got != "int" {
		t.Fatalf("expected `int`, got %q", got)
	}
}
