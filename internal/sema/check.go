package sema

import (
	"volt/internal/ast"
	"volt/internal/diag"
	"volt/internal/source"
	"volt/internal/types"
)

// BindingMode описывает, как биндинг паттерна захватывает значение после
// применения match-эргономики.
type BindingMode uint8

const (
	// BindByValue перемещает или копирует значение: `x`, `mut x`.
	BindByValue BindingMode = iota
	// BindByRef берёт разделяемую ссылку: `ref x` или биндинг за `&`.
	BindByRef
	// BindByRefMut берёт мутабельную ссылку: `ref mut x` или биндинг
	// за `&mut`.
	BindByRefMut
)

func (m BindingMode) String() string {
	switch m {
	case BindByRef:
		return "ref"
	case BindByRefMut:
		return "ref mut"
	default:
		return "value"
	}
}

// Options управляет одиночным вызовом Check.
type Options struct {
	// Handler принимает диагностики проверки. Обязателен.
	Handler *diag.Handler
	// Types — общий интернер типов. Nil означает свой собственный.
	Types *types.Interner
	// Siblings — остальные файлы модуля: их декларации видны из
	// проверяемого файла, но тела функций не проверяются.
	Siblings []ast.FileID
}

// Result — выход проверки одного файла. Таблицы заполняются по мере того,
// как проверка доходит до узлов, и нормализуются в конце: переменные вывода
// заменяются решениями, нерешённые литеральные типы получают дефолт.
type Result struct {
	Types *types.Interner

	ExprTypes map[ast.ExprID]types.TypeID
	PatTypes  map[ast.PatID]types.TypeID

	// BindingModes и BindingTypes заполняются только для паттернов-биндингов.
	BindingModes map[ast.PatID]BindingMode
	BindingTypes map[ast.PatID]types.TypeID

	// Adjustments перечисляет ссылки, снятые с ожидаемого типа перед
	// сопоставлением паттерна; каждый элемент — тип до очередного снятия.
	Adjustments map[ast.PatID][]types.TypeID
}

type checker struct {
	builder *ast.Builder
	fileID  ast.FileID
	handler *diag.Handler
	types   *types.Interner
	result  *Result

	typeDecls  map[source.StringID]*typeDecl
	typeItems  map[ast.ItemID]*typeDecl
	consts     map[source.StringID]*constDecl
	constItems map[ast.ItemID]*constDecl
	fns        map[source.StringID]*fnDecl
	fnItems    map[ast.ItemID]*fnDecl

	scopes []scope

	// typeParams видимы, пока заполняется тело generic-декларации.
	typeParams map[source.StringID]types.TypeID

	// typeExprCache мемоизирует resolveTypeExpr: каждый синтаксический
	// узел типа резолвится и репортится ровно один раз.
	typeExprCache map[ast.TypeID]types.TypeID

	// bound хранит решения переменных вывода по их индексу.
	bound map[uint32]types.TypeID

	// newBindings накапливает биндинги текущего паттерна; владелец
	// паттерна решает, финализировать их или просто срезать.
	newBindings []ast.PatID

	fnResult types.TypeID
	inFn     bool
}

// Check проверяет файл и возвращает таблицы типов. Паникует на nil Handler:
// проверка без места для диагностик не имеет смысла.
func Check(builder *ast.Builder, fileID ast.FileID, opts Options) *Result {
	if opts.Handler == nil {
		panic("sema: Options.Handler is required")
	}
	typesIn := opts.Types
	if typesIn == nil {
		typesIn = types.NewInterner(builder.Strings)
	}
	res := &Result{
		Types:        typesIn,
		ExprTypes:    make(map[ast.ExprID]types.TypeID),
		PatTypes:     make(map[ast.PatID]types.TypeID),
		BindingModes: make(map[ast.PatID]BindingMode),
		BindingTypes: make(map[ast.PatID]types.TypeID),
		Adjustments:  make(map[ast.PatID][]types.TypeID),
	}
	c := &checker{
		builder:       builder,
		fileID:        fileID,
		handler:       opts.Handler,
		types:         typesIn,
		result:        res,
		typeDecls:     make(map[source.StringID]*typeDecl),
		typeItems:     make(map[ast.ItemID]*typeDecl),
		consts:        make(map[source.StringID]*constDecl),
		constItems:    make(map[ast.ItemID]*constDecl),
		fns:           make(map[source.StringID]*fnDecl),
		fnItems:       make(map[ast.ItemID]*fnDecl),
		typeExprCache: make(map[ast.TypeID]types.TypeID),
		bound:         make(map[uint32]types.TypeID),
	}
	c.run(opts.Siblings)
	return res
}

// run — три фазы: регистрация имён по всем файлам, заполнение тел и
// сигнатур, затем проверка констант и функций основного файла.
func (c *checker) run(siblings []ast.FileID) {
	files := make([]ast.FileID, 0, len(siblings)+1)
	files = append(files, c.fileID)
	files = append(files, siblings...)

	for _, fid := range files {
		c.registerDecls(fid)
	}
	for _, fid := range files {
		c.populateDecls(fid)
	}

	file := c.builder.Files.Get(c.fileID)
	if file == nil {
		return
	}
	for _, itemID := range file.Items {
		item := c.builder.Items.Get(itemID)
		if item == nil {
			continue
		}
		switch item.Kind {
		case ast.ItemConst:
			c.checkConstItem(itemID)
		case ast.ItemFn:
			c.checkFnItem(itemID)
		}
	}

	c.finishResult()
}

func (c *checker) finishResult() {
	for id, t := range c.result.ExprTypes {
		c.result.ExprTypes[id] = c.normalize(t)
	}
	for id, t := range c.result.PatTypes {
		c.result.PatTypes[id] = c.normalize(t)
	}
	for id, t := range c.result.BindingTypes {
		c.result.BindingTypes[id] = c.normalize(t)
	}
	for id, adj := range c.result.Adjustments {
		for i, t := range adj {
			adj[i] = c.normalize(t)
		}
		c.result.Adjustments[id] = adj
	}
}

func (c *checker) exprSpan(id ast.ExprID) source.Span {
	if expr := c.builder.Exprs.Get(id); expr != nil {
		return expr.Span
	}
	return source.Span{}
}

func (c *checker) patSpan(id ast.PatID) source.Span {
	if pat := c.builder.Pats.Get(id); pat != nil {
		return pat.Span
	}
	return source.Span{}
}

func (c *checker) typeExprSpan(id ast.TypeID) source.Span {
	if te := c.builder.Types.Get(id); te != nil {
		return te.Span
	}
	return source.Span{}
}

func (c *checker) lookupName(id source.StringID) string {
	if name, ok := c.builder.Strings.Lookup(id); ok {
		return name
	}
	return "?"
}
