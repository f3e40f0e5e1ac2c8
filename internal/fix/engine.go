package fix

// todo: интеграция с git:
// По умолчанию создавать .bak только для незатрекинных файлов.
// Флаг --staged-only (работать по git diff --name-only --staged).

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"volt/internal/diag"
	"volt/internal/source"
)

// ErrNoFixes is returned when no fixes were applied.
var ErrNoFixes = errors.New("no applicable fixes found")

// ApplyOptions configures how suggestions are selected and written out.
type ApplyOptions struct {
	// DryRun собирает изменения и диффы, но не трогает диск.
	DryRun bool
	// ApplyMaybeIncorrect also applies suggestions graded maybe-incorrect.
	// The default takes machine-applicable ones only.
	ApplyMaybeIncorrect bool
}

// AppliedFix records one successfully applied suggestion.
type AppliedFix struct {
	Code          diag.Code
	Message       string // текст диагностики
	Suggestion    string // текст подсказки
	Applicability diag.Applicability
	Path          string
	EditCount     int
}

// SkippedFix captures a rejected suggestion with the reason.
type SkippedFix struct {
	Message string
	Reason  string
}

// FileChange summarises modifications performed on one file.
// NewContent and Diff are populated in dry-run mode only.
type FileChange struct {
	Path       string
	EditCount  int
	NewContent []byte
	Diff       string
}

// ApplyResult aggregates applied fixes, skipped ones, and file changes.
type ApplyResult struct {
	Applied     []AppliedFix
	Skipped     []SkippedFix
	FileChanges []FileChange
}

type candidate struct {
	code    diag.Code
	message string
	sugg    string
	app     diag.Applicability
	parts   []diag.SubstitutionPart
	primary source.Span
	order   int
}

// appliedEdit remembers one landed edit in original-file coordinates, so
// later candidates can be shifted and conflict-checked against it.
type appliedEdit struct {
	span    source.Span
	newText string
	oldText string
}

// Apply collects suggestions from the bag, selects the applicable ones and
// applies them to the files behind fs. Returns ErrNoFixes when nothing
// could be applied.
func Apply(fs *source.FileSet, bag *diag.Bag, opts ApplyOptions) (*ApplyResult, error) {
	result := &ApplyResult{
		Applied:     make([]AppliedFix, 0),
		Skipped:     make([]SkippedFix, 0),
		FileChanges: make([]FileChange, 0),
	}
	if fs == nil {
		return result, fmt.Errorf("fix: FileSet is nil")
	}

	candidates, gatherSkips := gatherCandidates(bag, opts)
	result.Skipped = append(result.Skipped, gatherSkips...)
	if len(candidates) == 0 {
		return result, ErrNoFixes
	}

	sortCandidates(candidates)

	applied, applySkips, changes, err := applyCandidates(fs, candidates, opts)
	result.Applied = append(result.Applied, applied...)
	result.Skipped = append(result.Skipped, applySkips...)
	result.FileChanges = append(result.FileChanges, changes...)

	if err != nil {
		return result, err
	}
	if len(result.Applied) == 0 {
		return result, ErrNoFixes
	}
	return result, nil
}

// gatherCandidates walks the bag and keeps suggestions whose applicability
// passes the options. Only the first substitution of each suggestion is
// taken; alternates are display variants for humans.
func gatherCandidates(bag *diag.Bag, opts ApplyOptions) ([]candidate, []SkippedFix) {
	cands := make([]candidate, 0)
	skips := make([]SkippedFix, 0)

	order := 0
	for _, d := range bag.Items() {
		for i := range d.Suggestions {
			s := &d.Suggestions[i]
			if !applicable(s.Applicability, opts) {
				skips = append(skips, SkippedFix{
					Message: s.Message,
					Reason:  fmt.Sprintf("applicability is %s", s.Applicability),
				})
				continue
			}
			if len(s.Substitutions) == 0 || len(s.Substitutions[0].Parts) == 0 {
				skips = append(skips, SkippedFix{
					Message: s.Message,
					Reason:  "suggestion has no edits",
				})
				continue
			}
			parts := s.Substitutions[0].Parts
			primary, ok := d.Span.PrimarySpan()
			if !ok {
				primary = parts[0].Span
			}
			cands = append(cands, candidate{
				code:    d.Code,
				message: d.Message,
				sugg:    s.Message,
				app:     s.Applicability,
				parts:   parts,
				primary: primary,
				order:   order,
			})
			order++
		}
	}
	return cands, skips
}

func applicable(app diag.Applicability, opts ApplyOptions) bool {
	switch app {
	case diag.ApplicabilityMachineApplicable:
		return true
	case diag.ApplicabilityMaybeIncorrect:
		return opts.ApplyMaybeIncorrect
	default:
		return false
	}
}

// sortCandidates orders candidates deterministically: by primary location,
// then insertion order, code and suggestion text.
func sortCandidates(cands []candidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.primary.File != b.primary.File {
			return a.primary.File < b.primary.File
		}
		if a.primary.Start != b.primary.Start {
			return a.primary.Start < b.primary.Start
		}
		if a.primary.End != b.primary.End {
			return a.primary.End < b.primary.End
		}
		if a.order != b.order {
			return a.order < b.order
		}
		if a.code != b.code {
			return a.code < b.code
		}
		return a.sugg < b.sugg
	})
}

func applyCandidates(fs *source.FileSet, selected []candidate, opts ApplyOptions) ([]AppliedFix, []SkippedFix, []FileChange, error) {
	buffers := make(map[source.FileID][]byte)
	appliedEdits := make(map[source.FileID][]appliedEdit)
	fileEditCount := make(map[source.FileID]int)

	applied := make([]AppliedFix, 0, len(selected))
	skipped := make([]SkippedFix, 0)
	baseDir := fs.BaseDir()

	for _, cand := range selected {
		buckets := groupPartsByFile(cand.parts)
		stagedBuffers := make(map[source.FileID][]byte)
		stagedApplied := make(map[source.FileID][]appliedEdit)
		stagedCount := make(map[source.FileID]int)
		totalEdits := 0
		var skipReason string

		for fileID, parts := range buckets {
			if int(fileID) >= fs.Len() {
				skipReason = "edit points at an unknown file"
				break
			}
			file := fs.Get(fileID)
			if !opts.DryRun && file.Flags&source.FileVirtual != 0 {
				skipReason = "target file is virtual"
				break
			}
			if overlapWithin(parts) {
				skipReason = "suggestion edits overlap"
				break
			}
			if conflictsWithExisting(appliedEdits[fileID], parts) {
				skipReason = fmt.Sprintf("conflicts with previously applied edits in %s",
					file.FormatPath("auto", baseDir))
				break
			}

			working := buffers[fileID]
			if working == nil {
				working = append([]byte(nil), file.Content...)
			} else {
				working = append([]byte(nil), working...)
			}

			// Правки применяются с конца файла, тогда ещё не
			// применённые спаны не сдвигаются.
			ordered := append([]diag.SubstitutionPart(nil), parts...)
			sort.SliceStable(ordered, func(i, j int) bool {
				if ordered[i].Span.Start == ordered[j].Span.Start {
					return ordered[i].Span.End > ordered[j].Span.End
				}
				return ordered[i].Span.Start > ordered[j].Span.Start
			})

			existing := append([]appliedEdit(nil), appliedEdits[fileID]...)
			for _, part := range ordered {
				old, ok := originalText(file, part.Span)
				if !ok {
					skipReason = "edit span out of range"
					break
				}
				start := int(part.Span.Start) + cumulativeDelta(existing, int(part.Span.Start))
				end := int(part.Span.End) + cumulativeDelta(existing, int(part.Span.End))
				if start < 0 || end < start || end > len(working) {
					skipReason = "edit span out of range"
					break
				}
				if string(working[start:end]) != old {
					skipReason = "source text changed since the diagnostic was produced"
					break
				}
				suffix := append([]byte(nil), working[end:]...)
				working = append(append(working[:start], []byte(part.Snippet)...), suffix...)
				existing = insertEditSorted(existing, appliedEdit{
					span:    part.Span,
					newText: part.Snippet,
					oldText: old,
				})
			}
			if skipReason != "" {
				break
			}
			stagedBuffers[fileID] = working
			stagedApplied[fileID] = existing
			stagedCount[fileID] = len(parts)
			totalEdits += len(parts)
		}

		if skipReason != "" {
			skipped = append(skipped, SkippedFix{
				Message: cand.sugg,
				Reason:  skipReason,
			})
			continue
		}

		for fileID, buf := range stagedBuffers {
			buffers[fileID] = buf
			appliedEdits[fileID] = stagedApplied[fileID]
			fileEditCount[fileID] += stagedCount[fileID]
		}

		applied = append(applied, AppliedFix{
			Code:          cand.code,
			Message:       cand.message,
			Suggestion:    cand.sugg,
			Applicability: cand.app,
			Path:          formatFilePath(fs, cand.primary.File, baseDir),
			EditCount:     totalEdits,
		})
	}

	if len(applied) == 0 {
		return applied, skipped, nil, nil
	}

	ids := make([]source.FileID, 0, len(buffers))
	for id := range buffers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	changes := make([]FileChange, 0, len(ids))
	for _, fileID := range ids {
		buf := buffers[fileID]
		file := fs.Get(fileID)
		change := FileChange{
			Path:      file.FormatPath("relative", baseDir),
			EditCount: fileEditCount[fileID],
		}
		if opts.DryRun {
			change.NewContent = buf
			change.Diff = unifiedDiff(change.Path, file, appliedEdits[fileID], buf)
		} else {
			mode := os.FileMode(0o644)
			if info, err := os.Stat(file.Path); err == nil {
				mode = info.Mode()
			}
			if err := os.WriteFile(file.Path, buf, mode); err != nil {
				return applied, skipped, changes, fmt.Errorf("write %s: %w", file.Path, err)
			}
		}
		changes = append(changes, change)
	}

	sort.SliceStable(changes, func(i, j int) bool {
		return changes[i].Path < changes[j].Path
	})

	return applied, skipped, changes, nil
}

func originalText(f *source.File, sp source.Span) (string, bool) {
	if sp.Start > sp.End || int(sp.End) > len(f.Content) {
		return "", false
	}
	return string(f.Content[sp.Start:sp.End]), true
}

func groupPartsByFile(parts []diag.SubstitutionPart) map[source.FileID][]diag.SubstitutionPart {
	buckets := make(map[source.FileID][]diag.SubstitutionPart)
	for _, part := range parts {
		buckets[part.Span.File] = append(buckets[part.Span.File], part)
	}
	return buckets
}

func overlapWithin(parts []diag.SubstitutionPart) bool {
	for i := 1; i < len(parts); i++ {
		for j := 0; j < i; j++ {
			if spansConflict(parts[j].Span, parts[i].Span) {
				return true
			}
		}
	}
	return false
}

func conflictsWithExisting(existing []appliedEdit, parts []diag.SubstitutionPart) bool {
	for _, prev := range existing {
		for _, part := range parts {
			if spansConflict(prev.span, part.Span) {
				return true
			}
		}
	}
	return false
}

// spansConflict reports whether two edit spans collide. Spans are half-open
// [Start, End). Two insertions never conflict; an insertion inside a
// replaced range does; two replacements conflict on any overlap.
func spansConflict(a, b source.Span) bool {
	if a.Start == a.End && b.Start == b.End {
		return false
	}
	if a.Start == a.End {
		return b.Start <= a.Start && a.Start < b.End
	}
	if b.Start == b.End {
		return a.Start <= b.Start && b.Start < a.End
	}
	return a.Start < b.End && b.Start < a.End
}

// cumulativeDelta sums the length changes of edits fully before pos; edits
// are sorted by original start.
func cumulativeDelta(edits []appliedEdit, pos int) int {
	delta := 0
	for _, e := range edits {
		eStart := int(e.span.Start)
		if eStart > pos {
			break
		}
		eEnd := int(e.span.End)
		if eEnd <= pos {
			delta += len(e.newText) - (eEnd - eStart)
		}
	}
	return delta
}

func insertEditSorted(edits []appliedEdit, edit appliedEdit) []appliedEdit {
	idx := sort.Search(len(edits), func(i int) bool {
		if edits[i].span.Start == edit.span.Start {
			return edits[i].span.End >= edit.span.End
		}
		return edits[i].span.Start > edit.span.Start
	})
	edits = append(edits, appliedEdit{})
	copy(edits[idx+1:], edits[idx:])
	edits[idx] = edit
	return edits
}

func formatFilePath(fs *source.FileSet, fileID source.FileID, baseDir string) string {
	if int(fileID) >= fs.Len() {
		return ""
	}
	return fs.Get(fileID).FormatPath("auto", baseDir)
}
