package fix

import (
	"fmt"
	"sort"
	"strings"

	"volt/internal/source"
)

// diffContext is the number of unchanged lines shown around a hunk.
const diffContext = 2

// unifiedDiff renders applied edits as a unified diff. Hunks come straight
// from the edit spans: the change set is known exactly, so no generic diff
// walk is needed.
func unifiedDiff(path string, file *source.File, edits []appliedEdit, newContent []byte) string {
	if len(edits) == 0 {
		return ""
	}
	oldLines := splitLines(string(file.Content))
	newLines := splitLines(string(newContent))

	type editRange struct {
		oldLo     int // 1-based, включительно
		oldHi     int
		lineDelta int
	}
	ranges := make([]editRange, 0, len(edits))
	for _, e := range edits {
		start := file.PositionFor(e.span.Start)
		endOff := e.span.End
		if endOff > e.span.Start {
			// последний затронутый байт; '\n' принадлежит строке,
			// которую завершает
			endOff--
		}
		end := file.PositionFor(endOff)
		ranges = append(ranges, editRange{
			oldLo:     int(start.Line),
			oldHi:     int(end.Line),
			lineDelta: strings.Count(e.newText, "\n") - strings.Count(e.oldText, "\n"),
		})
	}
	sort.SliceStable(ranges, func(i, j int) bool {
		if ranges[i].oldLo != ranges[j].oldLo {
			return ranges[i].oldLo < ranges[j].oldLo
		}
		return ranges[i].oldHi < ranges[j].oldHi
	})

	var b strings.Builder
	fmt.Fprintf(&b, "--- a/%s\n+++ b/%s\n", path, path)

	delta := 0 // сдвиг строк, накопленный предыдущими кластерами
	i := 0
	for i < len(ranges) {
		// правки ближе 2*context+1 строк сливаются в один ханк
		j := i
		lo := ranges[i].oldLo
		hi := ranges[i].oldHi
		clusterDelta := ranges[i].lineDelta
		for j+1 < len(ranges) && ranges[j+1].oldLo-hi <= 2*diffContext+1 {
			j++
			if ranges[j].oldHi > hi {
				hi = ranges[j].oldHi
			}
			clusterDelta += ranges[j].lineDelta
		}

		hunkOldLo := lo - diffContext
		if hunkOldLo < 1 {
			hunkOldLo = 1
		}
		hunkOldHi := hi + diffContext
		if hunkOldHi > len(oldLines) {
			hunkOldHi = len(oldLines)
		}
		hunkNewLo := hunkOldLo + delta
		hunkNewHi := hunkOldHi + delta + clusterDelta
		if hunkNewHi > len(newLines) {
			hunkNewHi = len(newLines)
		}

		fmt.Fprintf(&b, "@@ -%d,%d +%d,%d @@\n",
			hunkOldLo, hunkOldHi-hunkOldLo+1,
			hunkNewLo, hunkNewHi-hunkNewLo+1)

		for l := hunkOldLo; l < lo; l++ {
			b.WriteString(" " + oldLines[l-1] + "\n")
		}
		for l := lo; l <= hi && l <= len(oldLines); l++ {
			b.WriteString("-" + oldLines[l-1] + "\n")
		}
		newTo := hi + delta + clusterDelta
		for l := lo + delta; l <= newTo && l <= len(newLines); l++ {
			b.WriteString("+" + newLines[l-1] + "\n")
		}
		for l := hi + 1; l <= hunkOldHi; l++ {
			b.WriteString(" " + oldLines[l-1] + "\n")
		}

		delta += clusterDelta
		i = j + 1
	}
	return b.String()
}

func splitLines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
