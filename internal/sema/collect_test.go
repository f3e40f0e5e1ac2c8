package sema

import (
	"strings"
	"testing"

	"volt/internal/diag"
)

func TestDuplicateTypeDecl(t *testing.T) {
	_, _, bag := checkSource(t, `
type Point struct { x: int }
type Point struct { y: float }
`)
	if countCode(bag, diag.TypDuplicateDecl) != 1 {
		t.Fatalf("expected one duplicate declaration error, got: %s", diagnosticsSummary(bag))
	}
	d := bag.Items()[0]
	if !strings.Contains(d.Message, "`Point` is defined multiple times") {
		t.Fatalf("unexpected message %q", d.Message)
	}
}

func TestContractSharesTypeNamespace(t *testing.T) {
	_, _, bag := checkSource(t, `
contract Draw;
type Draw struct { id: int }
`)
	if countCode(bag, diag.TypDuplicateDecl) != 1 {
		t.Fatalf("expected a clash between contract and type, got: %s", diagnosticsSummary(bag))
	}
}

func TestConstAndFnShareValueNamespace(t *testing.T) {
	_, _, bag := checkSource(t, `
const answer: int = 42;

fn answer() { }
`)
	if countCode(bag, diag.TypDuplicateDecl) != 1 {
		t.Fatalf("expected one duplicate, got: %s", diagnosticsSummary(bag))
	}
}

func TestTypeAndValueNamespacesAreSeparate(t *testing.T) {
	// тип и константа с одним именем живут в разных пространствах
	checkClean(t, `
type Size struct { n: int }

const Size: int = 3;
`)
}

func TestDuplicateEnumVariant(t *testing.T) {
	_, _, bag := checkSource(t, `
type Mode enum { Fast, Slow, Fast }
`)
	if countCode(bag, diag.TypDuplicateDecl) != 1 {
		t.Fatalf("expected one duplicate variant error, got: %s", diagnosticsSummary(bag))
	}
	if !strings.Contains(bag.Items()[0].Message, "variant `Fast`") {
		t.Fatalf("unexpected message %q", bag.Items()[0].Message)
	}
}

func TestDuplicateStructField(t *testing.T) {
	_, _, bag := checkSource(t, `
type Pair struct { a: int, a: float }
`)
	if countCode(bag, diag.TypDuplicateDecl) != 1 {
		t.Fatalf("expected one duplicate field error, got: %s", diagnosticsSummary(bag))
	}
}

func TestUnknownFieldType(t *testing.T) {
	_, _, bag := checkSource(t, `
type Holder struct { value: Nope }
`)
	if countCode(bag, diag.TypUnknownName) != 1 {
		t.Fatalf("expected unknown type error, got: %s", diagnosticsSummary(bag))
	}
}

func TestTypeArgCount(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"missing_args", "type Box<T> struct { value: T }\nfn probe(b: Box) { }"},
		{"extra_args", "type Box<T> struct { value: T }\nfn probe(b: Box<int, float>) { }"},
		{"builtin_with_args", "fn probe(x: int<float>) { }"},
		{"param_with_args", "type Box<T> struct { value: T<int> }"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, bag := checkSource(t, tt.src)
			if countCode(bag, diag.TypWrongTypeArgCount) != 1 {
				t.Fatalf("expected one arg count error, got: %s", diagnosticsSummary(bag))
			}
		})
	}
}

func TestContractUsedAsType(t *testing.T) {
	_, _, bag := checkSource(t, `
contract Draw;

fn probe(d: Draw) { }
`)
	if countCode(bag, diag.TypUnknownName) != 1 {
		t.Fatalf("expected contract misuse error, got: %s", diagnosticsSummary(bag))
	}
	if !strings.Contains(bag.Items()[0].Message, "found contract `Draw`") {
		t.Fatalf("unexpected message %q", bag.Items()[0].Message)
	}
}

func TestContractObjectBehindRef(t *testing.T) {
	builder, res := checkClean(t, `
contract Draw;

fn probe(d: &any Draw) {
	let held = d;
}
`)
	if got := bindingLabel(t, builder, res, "held"); got != "&any Draw" {
		t.Fatalf("expected `&any Draw`, got %q", got)
	}
}

func TestNonContractAfterAny(t *testing.T) {
	_, _, bag := checkSource(t, `
type Point struct { x: int }

fn probe(p: any Point) { }
`)
	if countCode(bag, diag.TypUnknownName) != 1 {
		t.Fatalf("expected error for `any` on a struct, got: %s", diagnosticsSummary(bag))
	}
}

func TestDeclarationOrderIrrelevant(t *testing.T) {
	// функция видит тип, объявленный ниже по файлу
	checkClean(t, `
fn probe(p: Point) { }

type Point struct { x: int, y: int }
`)
}

func TestSiblingDeclsVisible(t *testing.T) {
	_, _, bag := checkTwoFiles(t, `
fn probe(p: Point) -> int {
	let Point { x, .. } = p;
	x
}
`, `
type Point struct { x: int, y: int }
`)
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %s", diagnosticsSummary(bag))
	}
}

func TestSiblingDuplicateReported(t *testing.T) {
	_, _, bag := checkTwoFiles(t, `
type Config struct { retries: int }
`, `
type Config struct { verbose: bool }
`)
	if countCode(bag, diag.TypDuplicateDecl) != 1 {
		t.Fatalf("expected cross-file duplicate, got: %s", diagnosticsSummary(bag))
	}
}
