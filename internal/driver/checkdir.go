package driver

import (
	"context"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"volt/internal/source"
)

// listVoltFiles возвращает отсортированный список всех *.vt файлов в
// директории. Сортировка фиксирует порядок FileID и, значит, порядок
// вывода.
func listVoltFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ".vt") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// CheckDir checks every *.vt file under dir in parallel. Файлы независимы:
// общие у них только FileSet, кеш и сессионный Handler, который глобально
// дедуплицирует повторяющиеся диагностики.
func CheckDir(ctx context.Context, dir string, opts Options) (*Result, error) {
	started := time.Now()

	files, err := listVoltFiles(dir)
	if err != nil {
		return nil, err
	}

	fileSet := source.NewFileSetWithBase(dir)

	// Загружаем последовательно: FileID должны идти в порядке путей.
	loadStart := time.Now()
	states := make([]*fileState, len(files))
	for i, path := range files {
		id, loadErr := fileSet.Load(path)
		states[i] = &fileState{path: path, id: id, loadErr: loadErr}
	}
	loadTime := time.Since(loadStart)

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, max(len(files), 1)))

	var done atomic.Int64
	for i := range states {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			s := states[i]
			runFile(s, fileSet, opts.Cache)

			if opts.Progress != nil {
				opts.Progress(Progress{
					Path:   s.path,
					Done:   int(done.Add(1)),
					Total:  len(states),
					Errors: countErrors(s.bag),
					Cached: s.cached,
				})
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := mergeStates(fileSet, opts, states)
	res.Timing.Load = loadTime
	res.Timing.Total = time.Since(started)
	return res, nil
}
