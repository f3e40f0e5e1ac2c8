package driver

import (
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"volt/internal/diag"
	"volt/internal/project"
	"volt/internal/source"
)

// Current schema version - increment when CheckEntry format changes
const diskCacheSchemaVersion uint16 = 1

// checkFingerprint входит в ключ кеша: смена пайплайна инвалидирует все
// записи без смены схемы.
var checkFingerprint = project.DigestOf([]byte("volt check pipeline v1"))

// cacheKey derives the disk cache key for one loaded file.
func cacheKey(f *source.File) project.Digest {
	return project.Combine(project.Digest(f.Hash), checkFingerprint)
}

// DiskCache хранит результаты проверки файлов на диске, по ключу от хеша
// содержимого. Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// OpenDiskCache initializes and returns a disk cache at the standard
// location (XDG_CACHE_HOME or ~/.cache).
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenDiskCacheAt(filepath.Join(base, app))
}

// OpenDiskCacheAt initializes a disk cache rooted at an explicit directory.
func OpenDiskCacheAt(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) pathFor(key project.Digest) string {
	hexKey := hex.EncodeToString(key[:])
	// Для удобства читаемости/очистки — подкаталог "checks".
	return filepath.Join(c.dir, "checks", hexKey+".mp")
}

// Put serializes and writes an entry to the disk cache.
func (c *DiskCache) Put(key project.Digest, entry *CheckEntry) error {
	if c == nil || entry == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	if err := msgpack.NewEncoder(f).Encode(entry); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return err
	}
	// Атомарная замена
	return os.Rename(f.Name(), p)
}

// Get reads and deserializes an entry from the disk cache.
func (c *DiskCache) Get(key project.Digest, out *CheckEntry) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer func() { _ = f.Close() }()

	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, err
	}
	return true, nil
}

// DropAll invalidates the cache, useful after format changes.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	// тривиально: переименуем каталог и удалим целиком
	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		return err
	}
	if err := os.RemoveAll(old); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o755)
}

// CachedSpan is a span without its file: per-file entries always point at
// the file they are keyed by, so the FileID is restored on replay.
type CachedSpan struct {
	Start uint32
	End   uint32
}

// CachedLabel mirrors diag.SpanLabel.
type CachedLabel struct {
	Span CachedSpan
	Text string
}

// CachedChild mirrors diag.SubDiagnostic.
type CachedChild struct {
	Level   diag.Level
	Message string
	Primary []CachedSpan
	Labels  []CachedLabel
}

// CachedPart mirrors diag.SubstitutionPart.
type CachedPart struct {
	Span    CachedSpan
	Snippet string
}

// CachedSubstitution mirrors diag.Substitution.
type CachedSubstitution struct {
	Parts []CachedPart
}

// CachedSuggestion mirrors diag.CodeSuggestion.
type CachedSuggestion struct {
	Message       string
	Applicability diag.Applicability
	Style         diag.SuggestionStyle
	Substitutions []CachedSubstitution
}

// CachedDiagnostic mirrors diag.Diagnostic with file-relative spans.
type CachedDiagnostic struct {
	Level       diag.Level
	Code        diag.Code
	Message     string
	Primary     []CachedSpan
	Labels      []CachedLabel
	Children    []CachedChild
	Suggestions []CachedSuggestion
}

// CheckEntry stores one file's check results for fast re-checking.
type CheckEntry struct {
	// Schema version for safe invalidation when format changes
	Schema uint16
	Diags  []CachedDiagnostic
}

func spanOut(sp source.Span) CachedSpan {
	return CachedSpan{Start: sp.Start, End: sp.End}
}

func spanIn(cs CachedSpan, id source.FileID) source.Span {
	return source.Span{File: id, Start: cs.Start, End: cs.End}
}

func multiSpanOut(ms diag.MultiSpan) ([]CachedSpan, []CachedLabel) {
	var primary []CachedSpan
	var labels []CachedLabel
	for _, sp := range ms.Primary {
		primary = append(primary, spanOut(sp))
	}
	for _, l := range ms.Labels {
		labels = append(labels, CachedLabel{Span: spanOut(l.Span), Text: l.Text})
	}
	return primary, labels
}

func multiSpanIn(primary []CachedSpan, labels []CachedLabel, id source.FileID) diag.MultiSpan {
	var ms diag.MultiSpan
	for _, sp := range primary {
		ms.AddPrimary(spanIn(sp, id))
	}
	for _, l := range labels {
		ms.PushLabel(spanIn(l.Span, id), l.Text)
	}
	return ms
}

// EntryFromBag converts a file's private bag into a cacheable entry.
func EntryFromBag(bag *diag.Bag) *CheckEntry {
	entry := &CheckEntry{Schema: diskCacheSchemaVersion}
	if bag == nil {
		return entry
	}
	for _, d := range bag.Items() {
		cd := CachedDiagnostic{
			Level:   d.Level,
			Code:    d.Code,
			Message: d.Message,
		}
		cd.Primary, cd.Labels = multiSpanOut(d.Span)
		for _, child := range d.Children {
			cc := CachedChild{Level: child.Level, Message: child.Message}
			cc.Primary, cc.Labels = multiSpanOut(child.Span)
			cd.Children = append(cd.Children, cc)
		}
		for _, sugg := range d.Suggestions {
			cs := CachedSuggestion{
				Message:       sugg.Message,
				Applicability: sugg.Applicability,
				Style:         sugg.Style,
			}
			for _, sub := range sugg.Substitutions {
				var csub CachedSubstitution
				for _, part := range sub.Parts {
					csub.Parts = append(csub.Parts, CachedPart{
						Span:    spanOut(part.Span),
						Snippet: part.Snippet,
					})
				}
				cs.Substitutions = append(cs.Substitutions, csub)
			}
			cd.Suggestions = append(cd.Suggestions, cs)
		}
		entry.Diags = append(entry.Diags, cd)
	}
	return entry
}

// Replay reconstructs the bag, retargeting every span at fileID. Nil для
// записи с чужой схемой.
func (e *CheckEntry) Replay(fileID source.FileID) *diag.Bag {
	if e == nil || e.Schema != diskCacheSchemaVersion {
		return nil
	}
	bag := diag.NewBag()
	for _, cd := range e.Diags {
		d := diag.NewDiagnostic(cd.Level, cd.Message)
		d.Code = cd.Code
		d.Span = multiSpanIn(cd.Primary, cd.Labels, fileID)
		for _, cc := range cd.Children {
			d.Children = append(d.Children, diag.SubDiagnostic{
				Level:   cc.Level,
				Message: cc.Message,
				Span:    multiSpanIn(cc.Primary, cc.Labels, fileID),
			})
		}
		for _, cs := range cd.Suggestions {
			sugg := diag.CodeSuggestion{
				Message:       cs.Message,
				Applicability: cs.Applicability,
				Style:         cs.Style,
			}
			for _, csub := range cs.Substitutions {
				var sub diag.Substitution
				for _, part := range csub.Parts {
					sub.Parts = append(sub.Parts, diag.SubstitutionPart{
						Span:    spanIn(part.Span, fileID),
						Snippet: part.Snippet,
					})
				}
				sugg.Substitutions = append(sugg.Substitutions, sub)
			}
			d.Suggestions = append(d.Suggestions, sugg)
		}
		bag.Add(d)
	}
	return bag
}
