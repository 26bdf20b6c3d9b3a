package merge

import (
	"github.com/sourcebridge/sourcebridge/pkg/engine/diff"
)

// conflictMarkerStart / conflictMarkerMid / conflictMarkerEnd delimit an
// unresolved region the same way `diff3 -m` does, naming the two sides
// instead of revision hashes since the core has no VCS identity here.
const (
	conflictMarkerStart = "<<<<<<< ORIGIN"
	conflictMarkerMid   = "======="
	conflictMarkerEnd   = ">>>>>>> DESTINATION"
)

type region struct {
	start, end int // half-open range over baseline lines, 0-based
	newLines   []string
}

func regionsFromHunks(hunks []diff.Hunk) []region {
	out := make([]region, 0, len(hunks))
	for _, h := range hunks {
		start := h.OldStart - 1
		r := region{start: start, end: start + h.OldLines}
		for _, l := range h.Lines {
			if l.Op == diff.Add {
				r.newLines = append(r.newLines, l.Text)
			}
		}
		out = append(out, r)
	}
	return out
}

// mergeLines reconciles baseline, origin-edits (hunksO) and
// destination-edits (hunksD), both anchored to baseline's coordinate space.
// Disjoint edits apply independently; overlapping edits with identical
// replacement text apply once; overlapping edits that disagree become an
// inline conflict region (mergeLines returns conflict=true).
func mergeLines(baseline []string, hunksO, hunksD []diff.Hunk) (merged []string, conflict bool) {
	regionsO := regionsFromHunks(hunksO)
	regionsD := regionsFromHunks(hunksD)

	var out []string
	cursor := 0
	i, j := 0, 0
	hadConflict := false

	for i < len(regionsO) || j < len(regionsD) {
		switch {
		case i < len(regionsO) && (j >= len(regionsD) || regionsO[i].end <= regionsD[j].start):
			out = append(out, baseline[cursor:regionsO[i].start]...)
			out = append(out, regionsO[i].newLines...)
			cursor = regionsO[i].end
			i++
		case j < len(regionsD) && (i >= len(regionsO) || regionsD[j].end <= regionsO[i].start):
			out = append(out, baseline[cursor:regionsD[j].start]...)
			out = append(out, regionsD[j].newLines...)
			cursor = regionsD[j].end
			j++
		default:
			start := minInt(regionsO[i].start, regionsD[j].start)
			end := maxInt(regionsO[i].end, regionsD[j].end)
			oLines := append([]string(nil), regionsO[i].newLines...)
			dLines := append([]string(nil), regionsD[j].newLines...)
			i++
			j++
			for {
				advanced := false
				if i < len(regionsO) && regionsO[i].start < end {
					end = maxInt(end, regionsO[i].end)
					oLines = append(oLines, regionsO[i].newLines...)
					i++
					advanced = true
				}
				if j < len(regionsD) && regionsD[j].start < end {
					end = maxInt(end, regionsD[j].end)
					dLines = append(dLines, regionsD[j].newLines...)
					j++
					advanced = true
				}
				if !advanced {
					break
				}
			}

			out = append(out, baseline[cursor:start]...)
			if linesEqual(oLines, dLines) {
				out = append(out, oLines...)
			} else {
				hadConflict = true
				out = append(out, conflictMarkerStart)
				out = append(out, oLines...)
				out = append(out, conflictMarkerMid)
				out = append(out, dLines...)
				out = append(out, conflictMarkerEnd)
			}
			cursor = end
		}
	}
	out = append(out, baseline[cursor:]...)
	return out, hadConflict
}

func linesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// diff3File merges one path's three versions, returning the merged content
// and whether a conflict region was introduced.
func diff3File(path string, baseline, origin, destination []byte) ([]byte, bool) {
	if string(origin) == string(destination) {
		return origin, false
	}
	if string(baseline) == string(origin) {
		return destination, false
	}
	if string(baseline) == string(destination) {
		return origin, false
	}

	bLines := diff.Lines(baseline)
	var hunksO, hunksD []diff.Hunk
	if fp := diff.DiffFile(path, baseline, origin, 0); fp != nil {
		hunksO = fp.Hunks
	}
	if fp := diff.DiffFile(path, baseline, destination, 0); fp != nil {
		hunksD = fp.Hunks
	}
	merged, conflict := mergeLines(bLines, hunksO, hunksD)
	return diff.Unlines(merged), conflict
}
