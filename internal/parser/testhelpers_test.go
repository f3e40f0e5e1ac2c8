package parser

import (
	"fmt"
	"strings"
	"testing"

	"volt/internal/ast"
	"volt/internal/diag"
	"volt/internal/lexer"
	"volt/internal/source"
)

func diagnosticsSummary(bag *diag.Bag) string {
	if bag == nil {
		return "<nil bag>"
	}
	diags := bag.Items()
	if len(diags) == 0 {
		return "<none>"
	}
	lines := make([]string, len(diags))
	for i, d := range diags {
		lines[i] = fmt.Sprintf("[%s] %s", d.Code.ID(), d.Message)
	}
	return strings.Join(lines, "; ")
}

func hasCode(bag *diag.Bag, code diag.Code) bool {
	for _, d := range bag.Items() {
		if d.Code == code {
			return true
		}
	}
	return false
}

func parseSource(t *testing.T, input string) (*ast.Builder, ast.FileID, *diag.Bag) {
	t.Helper()

	fs := source.NewFileSet()
	fileID := fs.AddVirtual("test.vt", []byte(input))
	file := fs.Get(fileID)

	bag := diag.NewBag()
	handler := diag.NewHandler(diag.DefaultFlags(), diag.NewBagEmitter(bag))

	lx := lexer.New(file, handler)
	builder := ast.NewBuilder(ast.Hints{})

	astFile := ParseFile(lx, builder, handler, Options{MaxErrors: 100})
	return builder, astFile, bag
}

// parseClean — как parseSource, но любая диагностика заваливает тест.
func parseClean(t *testing.T, input string) (*ast.Builder, ast.FileID) {
	t.Helper()
	builder, fileID, bag := parseSource(t, input)
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %s", diagnosticsSummary(bag))
	}
	return builder, fileID
}

// firstFn достаёт первую функцию файла.
func firstFn(t *testing.T, builder *ast.Builder, fileID ast.FileID) *ast.FnItem {
	t.Helper()
	file := builder.Files.Get(fileID)
	if file == nil || len(file.Items) == 0 {
		t.Fatal("expected at least one item")
	}
	fn, ok := builder.Items.Fn(file.Items[0])
	if !ok {
		t.Fatalf("expected fn item, got kind %v", builder.Items.Get(file.Items[0]).Kind)
	}
	return fn
}

func fnBlock(t *testing.T, builder *ast.Builder, fn *ast.FnItem) *ast.ExprBlockData {
	t.Helper()
	block, ok := builder.Exprs.Block(fn.Body)
	if !ok {
		t.Fatal("fn body is not a block")
	}
	return block
}

// parseLetStmtData оборачивает один let в функцию и возвращает его данные.
func parseLetStmtData(t *testing.T, letSrc string) (*ast.Builder, *ast.StmtLetData) {
	t.Helper()
	builder, fileID := parseClean(t, "fn main() { "+letSrc+" }")
	fn := firstFn(t, builder, fileID)
	block := fnBlock(t, builder, fn)
	if len(block.Stmts) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(block.Stmts))
	}
	letData, ok := builder.Stmts.Let(block.Stmts[0])
	if !ok {
		t.Fatalf("expected let statement, got %v", builder.Stmts.Get(block.Stmts[0]).Kind)
	}
	return builder, letData
}

// parseLetInit возвращает выражение-инициализатор `let x = <expr>;`.
func parseLetInit(t *testing.T, exprSrc string) (*ast.Builder, ast.ExprID) {
	t.Helper()
	builder, letData := parseLetStmtData(t, "let x = "+exprSrc+";")
	if !letData.Init.IsValid() {
		t.Fatal("let has no initializer")
	}
	return builder, letData.Init
}

// parseLetPat возвращает паттерн из `let <pat> = 0;`.
func parseLetPat(t *testing.T, patSrc string) (*ast.Builder, ast.PatID) {
	t.Helper()
	builder, letData := parseLetStmtData(t, "let "+patSrc+" = 0;")
	if !letData.Pat.IsValid() {
		t.Fatal("let has no pattern")
	}
	return builder, letData.Pat
}

// parseLetType возвращает аннотацию типа из `let x: <type> = y;`.
func parseLetType(t *testing.T, typeSrc string) (*ast.Builder, ast.TypeID) {
	t.Helper()
	builder, letData := parseLetStmtData(t, "let x: "+typeSrc+" = y;")
	if !letData.Type.IsValid() {
		t.Fatal("let has no type annotation")
	}
	return builder, letData.Type
}

func mustLookup(t *testing.T, builder *ast.Builder, id source.StringID) string {
	t.Helper()
	if id == source.NoStringID {
		t.Fatal("expected an interned name")
	}
	return builder.Strings.MustLookup(id)
}
