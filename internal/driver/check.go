// Package driver orchestrates the check pipeline: load, lex, parse, type
// check. Воркеры собирают диагностики в приватные баги с нейтральной
// политикой, а сессия проигрывает их через общий Handler в стабильном
// порядке, так что параллелизм и кеш не влияют на вывод.
package driver

import (
	"context"
	"os"
	"time"

	"volt/internal/ast"
	"volt/internal/diag"
	"volt/internal/lexer"
	"volt/internal/parser"
	"volt/internal/sema"
	"volt/internal/source"
)

// Options configures one Check or CheckDir run.
type Options struct {
	// Flags is the session diagnostic policy, usually assembled from the
	// manifest and CLI flags. Zero value suppresses warnings; callers
	// normally start from diag.DefaultFlags.
	Flags diag.Flags

	// Jobs caps the worker count for directory runs. 0 или меньше —
	// GOMAXPROCS.
	Jobs int

	// Cache enables per-file result caching. Nil disables it.
	Cache *DiskCache

	// Progress, when set, is called after every finished file. Вызывается
	// из воркеров: потребитель обязан быть потокобезопасным.
	Progress func(Progress)
}

// Progress describes one finished file of a run.
type Progress struct {
	Path   string
	Done   int // files finished so far, this one included
	Total  int
	Errors int // errors collected for this file before session gates
	Cached bool
}

// Timing breaks a run down by phase.
type Timing struct {
	Load  time.Duration
	Parse time.Duration
	Check time.Duration
	Total time.Duration
}

// FileReport summarises one checked file.
type FileReport struct {
	Path   string
	FileID source.FileID
	Diags  int // collected before session gates, duplicates included
	Errors int
	Cached bool
}

// Result is the outcome of a Check or CheckDir run. Bag holds the rendered
// diagnostics in their final order, including the closing error summary.
type Result struct {
	FileSet  *source.FileSet
	Bag      *diag.Bag
	Files    []FileReport
	Errors   int // deduplicated errors in Bag, summary excluded
	Warnings int
	Timing   Timing
}

// HasErrors reports whether the run must fail the process.
func (r *Result) HasErrors() bool { return r.Errors > 0 }

// fileState carries one file through the fan-out and into the merge.
type fileState struct {
	path    string
	id      source.FileID
	loadErr error
	bag     *diag.Bag
	timing  Timing
	cached  bool
}

// Check runs the pipeline over a single file or, when path is a directory,
// over every *.vt file under it.
func Check(ctx context.Context, path string, opts Options) (*Result, error) {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return CheckDir(ctx, path, opts)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	started := time.Now()
	fs := source.NewFileSet()

	loadStart := time.Now()
	id, loadErr := fs.Load(path)
	loadTime := time.Since(loadStart)

	state := fileState{path: path, id: id, loadErr: loadErr}
	runFile(&state, fs, opts.Cache)

	res := mergeStates(fs, opts, []*fileState{&state})
	res.Timing.Load = loadTime
	res.Timing.Total = time.Since(started)
	return res, nil
}

// runFile produces the file's private bag: from the load error, from the
// cache, or by running the pipeline.
func runFile(s *fileState, fs *source.FileSet, cache *DiskCache) {
	if s.loadErr != nil {
		bag := diag.NewBag()
		h := diag.NewHandler(diag.DefaultFlags(), diag.NewBagEmitter(bag))
		h.StructErrWithCode("cannot read "+s.path+": "+s.loadErr.Error(), diag.IoUnreadableFile).Emit()
		h.Close()
		s.bag = bag
		return
	}

	file := fs.Get(s.id)
	key := cacheKey(file)

	if cache != nil {
		var entry CheckEntry
		if ok, err := cache.Get(key, &entry); err == nil && ok {
			if bag := entry.Replay(s.id); bag != nil {
				s.bag = bag
				s.cached = true
				return
			}
		}
		// Ошибки кеша не фатальны: всегда можно пересчитать.
	}

	s.bag, s.timing = checkLoaded(fs, s.id)

	if cache != nil {
		_ = cache.Put(key, EntryFromBag(s.bag))
	}
}

// checkLoaded runs lex+parse+sema for one loaded file under a neutral
// handler. Политика сессии (подавление предупреждений, промоушены,
// treat-err-as-bug) применяется позже, при проигрывании в общий Handler;
// поэтому содержимое бага зависит только от содержимого файла и результат
// можно кешировать.
func checkLoaded(fs *source.FileSet, id source.FileID) (*diag.Bag, Timing) {
	var tm Timing
	bag := diag.NewBag()
	h := diag.NewHandler(diag.DefaultFlags(), diag.NewBagEmitter(bag))
	file := fs.Get(id)

	start := time.Now()
	lx := lexer.New(file, h)
	arenas := ast.NewBuilder(ast.Hints{})
	astFile := parser.ParseFile(lx, arenas, h, parser.Options{})
	tm.Parse = time.Since(start)

	start = time.Now()
	sema.Check(arenas, astFile, sema.Options{Handler: h})
	tm.Check = time.Since(start)

	h.Close()
	return bag, tm
}

// mergeStates replays the private bags through the session handler in file
// order, then sorts and closes the session.
func mergeStates(fs *source.FileSet, opts Options, states []*fileState) *Result {
	sessionBag := diag.NewBag()
	sh := diag.NewHandler(opts.Flags, diag.NewBagEmitter(sessionBag))

	res := &Result{
		FileSet: fs,
		Bag:     sessionBag,
		Files:   make([]FileReport, 0, len(states)),
	}

	for _, s := range states {
		report := FileReport{
			Path:   s.path,
			FileID: s.id,
			Cached: s.cached,
		}
		if s.bag != nil {
			report.Diags = s.bag.Len()
			report.Errors = countErrors(s.bag)
			s.bag.EmitInto(sh)
		}
		res.Files = append(res.Files, report)
		res.Timing.Parse += s.timing.Parse
		res.Timing.Check += s.timing.Check
	}

	for _, d := range sessionBag.Items() {
		switch {
		case d.IsError():
			res.Errors++
		case d.Level == diag.LevelWarning:
			res.Warnings++
		}
	}

	sessionBag.Sort()
	sh.PrintErrorCount()
	sh.Close()
	return res
}

func countErrors(bag *diag.Bag) int {
	n := 0
	for _, d := range bag.Items() {
		if d.IsError() {
			n++
		}
	}
	return n
}
