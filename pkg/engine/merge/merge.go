package merge

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/sourcebridge/sourcebridge/pkg/engine/diff"
	"github.com/sourcebridge/sourcebridge/pkg/engine/model"
	"github.com/sourcebridge/sourcebridge/pkg/engine/pipeline"
)

// Importer reconciles a baseline, a freshly transformed origin tree, and
// the current destination tree into one merged tree (spec.md §4.3).
type Importer struct {
	Config Config
}

// New returns an Importer for cfg.
func New(cfg Config) *Importer {
	return &Importer{Config: cfg}
}

// Result is the outcome of one merge: the merged tree plus any paths where
// DIFF3 or PATCH_MERGE could not reconcile the two sides cleanly.
type Result struct {
	Tree      map[string][]byte
	Conflicts []string
}

// ConflictSummary renders the destination-side effect message scenario S7
// expects: "Found merge errors for paths: a.txt, b.txt".
func (r Result) ConflictSummary() string {
	if len(r.Conflicts) == 0 {
		return ""
	}
	paths := append([]string(nil), r.Conflicts...)
	sort.Strings(paths)
	msg := "Found merge errors for paths:"
	for i, p := range paths {
		if i > 0 {
			msg += ","
		}
		msg += " " + p
	}
	return msg
}

// Merge reconciles baseline, origin and destination. Paths outside the
// configured scope (PackagePath/Paths) take origin's value unconditionally
// (spec.md §4.3 "package_path", "paths glob").
func (m *Importer) Merge(baseline, origin, destination map[string][]byte) (*Result, error) {
	res := &Result{Tree: map[string][]byte{}}

	allPaths := map[string]bool{}
	for p := range baseline {
		allPaths[p] = true
	}
	for p := range origin {
		allPaths[p] = true
	}
	for p := range destination {
		allPaths[p] = true
	}

	for path := range allPaths {
		if _, ok := origin[path]; !ok {
			// Origin no longer carries this path; it is gone from the
			// transformed tree regardless of merge scope.
			continue
		}
		if !m.Config.inScope(path) {
			res.Tree[path] = origin[path]
			continue
		}

		b, d := baseline[path], destination[path]
		o := origin[path]

		var merged []byte
		var conflict bool
		switch m.Config.Strategy {
		case PatchMerge:
			merged, conflict = patchMergeFile(path, b, o, d)
		default:
			merged, conflict = diff3File(path, b, o, d)
		}
		res.Tree[path] = merged
		if conflict {
			res.Conflicts = append(res.Conflicts, path)
		}
	}

	return res, nil
}

// RunAfterMergeTransforms materializes tree to dir, runs cfg's
// AfterMergeTransforms against it, and returns the resulting tree (spec.md
// §4.3 "After-merge transformations").
func RunAfterMergeTransforms(dir string, transforms []pipeline.Transformation, work *model.TransformWork) (map[string][]byte, error) {
	if len(transforms) == 0 {
		return diff.Snapshot(dir)
	}
	work.CheckoutDir = dir
	ctx := pipeline.NewContext(work, true, nil, nil)
	seq := pipeline.NewSequence("after_merge", transforms...)
	if _, err := pipeline.Run(seq, ctx); err != nil {
		return nil, fmt.Errorf("after-merge transforms: %w", err)
	}
	return diff.Snapshot(dir)
}

// WriteTree materializes tree under dir, removing any pre-existing file not
// present in tree.
func WriteTree(dir string, tree map[string][]byte) error {
	existing, err := diff.Snapshot(dir)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	for path := range existing {
		if _, ok := tree[path]; !ok {
			_ = os.Remove(filepath.Join(dir, path))
		}
	}
	for path, content := range tree {
		abs := filepath.Join(dir, path)
		if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(abs, content, 0o644); err != nil {
			return err
		}
	}
	return nil
}
