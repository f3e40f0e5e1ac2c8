package sema

import (
	"fmt"
	"strings"
	"testing"

	"volt/internal/ast"
	"volt/internal/diag"
	"volt/internal/lexer"
	"volt/internal/parser"
	"volt/internal/source"
	"volt/internal/types"
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
	return countCode(bag, code) > 0
}

func countCode(bag *diag.Bag, code diag.Code) int {
	n := 0
	for _, d := range bag.Items() {
		if d.Code == code {
			n++
		}
	}
	return n
}

func parseInto(t *testing.T, fs *source.FileSet, builder *ast.Builder, name, input string) ast.FileID {
	t.Helper()

	fileID := fs.AddVirtual(name, []byte(input))
	file := fs.Get(fileID)

	bag := diag.NewBag()
	handler := diag.NewHandler(diag.DefaultFlags(), diag.NewBagEmitter(bag))
	lx := lexer.New(file, handler)
	astFile := parser.ParseFile(lx, builder, handler, parser.Options{MaxErrors: 100})
	if bag.Len() != 0 {
		t.Fatalf("parse diagnostics in %s: %s", name, diagnosticsSummary(bag))
	}
	return astFile
}

// checkSource парсит и проверяет один файл. Парсинг обязан быть чистым:
// тесты sema не зависят от восстановления парсера.
func checkSource(t *testing.T, input string) (*ast.Builder, *Result, *diag.Bag) {
	t.Helper()

	fs := source.NewFileSet()
	builder := ast.NewBuilder(ast.Hints{})
	astFile := parseInto(t, fs, builder, "test.vt", input)

	bag := diag.NewBag()
	handler := diag.NewHandler(diag.DefaultFlags(), diag.NewBagEmitter(bag))
	res := Check(builder, astFile, Options{Handler: handler})
	// Close ловит отложенные баги, оставшиеся без настоящей ошибки
	handler.Close()
	return builder, res, bag
}

// checkTwoFiles проверяет primary, видя декларации файла-соседа.
func checkTwoFiles(t *testing.T, primary, sibling string) (*ast.Builder, *Result, *diag.Bag) {
	t.Helper()

	fs := source.NewFileSet()
	builder := ast.NewBuilder(ast.Hints{})
	mainFile := parseInto(t, fs, builder, "main.vt", primary)
	depFile := parseInto(t, fs, builder, "dep.vt", sibling)

	bag := diag.NewBag()
	handler := diag.NewHandler(diag.DefaultFlags(), diag.NewBagEmitter(bag))
	res := Check(builder, mainFile, Options{
		Handler:  handler,
		Siblings: []ast.FileID{depFile},
	})
	handler.Close()
	return builder, res, bag
}

// checkClean — как checkSource, но любая диагностика заваливает тест.
func checkClean(t *testing.T, input string) (*ast.Builder, *Result) {
	t.Helper()
	builder, res, bag := checkSource(t, input)
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %s", diagnosticsSummary(bag))
	}
	return builder, res
}

// findBinding ищет паттерн-биндинг по имени в таблице результатов.
func findBinding(t *testing.T, builder *ast.Builder, res *Result, name string) ast.PatID {
	t.Helper()
	for pid := range res.BindingTypes {
		data, ok := builder.Pats.Binding(pid)
		if !ok {
			continue
		}
		if text, ok := builder.Strings.Lookup(data.Name); ok && text == name {
			return pid
		}
	}
	t.Fatalf("no binding named %q in result", name)
	return ast.NoPatID
}

// bindingLabel печатает тип биндинга по имени.
func bindingLabel(t *testing.T, builder *ast.Builder, res *Result, name string) string {
	t.Helper()
	pid := findBinding(t, builder, res, name)
	return types.Label(res.Types, res.BindingTypes[pid])
}

func bindingMode(t *testing.T, builder *ast.Builder, res *Result, name string) BindingMode {
	t.Helper()
	pid := findBinding(t, builder, res, name)
	return res.BindingModes[pid]
}

// findDiag возвращает первую диагностику с данным кодом.
func findDiag(t *testing.T, bag *diag.Bag, code diag.Code) *diag.Diagnostic {
	t.Helper()
	for _, d := range bag.Items() {
		if d.Code == code {
			return d
		}
	}
	t.Fatalf("no diagnostic with code %s: %s", code.ID(), diagnosticsSummary(bag))
	return nil
}

// suggestionSnippets собирает сниппеты всех замен диагностики.
func suggestionSnippets(d *diag.Diagnostic) []string {
	var out []string
	for _, s := range d.Suggestions {
		for _, sub := range s.Substitutions {
			for _, part := range sub.Parts {
				out = append(out, part.Snippet)
			}
		}
	}
	return out
}

func hasSnippet(d *diag.Diagnostic, snippet string) bool {
	for _, s := range suggestionSnippets(d) {
		if s == snippet {
			return true
		}
	}
	return false
}

func hasChildNote(d *diag.Diagnostic, text string) bool {
	for _, ch := range d.Children {
		if strings.Contains(ch.Message, text) {
			return true
		}
	}
	return false
}
