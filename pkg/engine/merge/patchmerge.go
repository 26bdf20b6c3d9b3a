package merge

import (
	"github.com/sourcebridge/sourcebridge/pkg/engine/diff"
)

// patchMergeFile computes patch(baseline->destination) for one path and
// applies it to origin. On a clean apply it returns the patched content; on
// a conflicting apply it falls back to inline conflict markers around
// origin's and destination's content so the result is still usable and
// auditable (spec.md §4.3 PATCH_MERGE).
func patchMergeFile(path string, baseline, origin, destination []byte) ([]byte, bool) {
	if string(baseline) == string(destination) {
		return origin, false
	}
	if string(origin) == string(destination) {
		return origin, false
	}

	patch := diff.CompareTrees(
		map[string][]byte{path: baseline},
		map[string][]byte{path: destination},
		0, nil,
	)
	tree, err := diff.ApplyToTree(map[string][]byte{path: origin}, patch)
	if err != nil {
		return conflictBlock(origin, destination), true
	}
	return tree[path], false
}

func conflictBlock(origin, destination []byte) []byte {
	var out []string
	out = append(out, conflictMarkerStart)
	out = append(out, diff.Lines(origin)...)
	out = append(out, conflictMarkerMid)
	out = append(out, diff.Lines(destination)...)
	out = append(out, conflictMarkerEnd)
	return diff.Unlines(out)
}
