// Package merge implements the MergeImporter: three-way reconciliation
// between a baseline, a freshly transformed origin tree, and the current
// destination tree, plus AutoPatch generation over the merged result
// (spec.md §4.3, §4.4).
package merge

import (
	"strings"

	"github.com/sourcebridge/sourcebridge/pkg/engine/glob"
	"github.com/sourcebridge/sourcebridge/pkg/engine/pipeline"
)

// Strategy selects how conflicting paths are reconciled.
type Strategy string

const (
	// DIFF3 performs a classical three-way per-file merge: a path unchanged
	// between baseline and one side takes the other side's value; a path
	// changed on both sides gets inline conflict markers.
	DIFF3 Strategy = "DIFF3"

	// PatchMerge computes patch(baseline->destination) and applies it to
	// the fresh origin tree, falling back to a conflict marker and a
	// destination-side effect on apply failure (spec.md §4.3).
	PatchMerge Strategy = "PATCH_MERGE"
)

// Config is one workflow's merge_import settings.
type Config struct {
	Strategy Strategy

	// PackagePath scopes merging to a sub-directory prefix; paths outside
	// it take the fresh origin value unconditionally (spec.md §4.3
	// "package_path").
	PackagePath string

	// Paths further narrows which in-scope paths actually get merged;
	// nil means every in-scope path.
	Paths *glob.Glob

	UseConsistencyFile bool

	// AfterMergeTransforms run on the merged tree before the consistency
	// file is regenerated and before the destination write (spec.md §4.3
	// "After-merge transformations").
	AfterMergeTransforms []pipeline.Transformation
}

// inScope reports whether path participates in the merge, per
// PackagePath/Paths scoping.
func (c Config) inScope(path string) bool {
	if c.PackagePath != "" && !strings.HasPrefix(path, strings.TrimSuffix(c.PackagePath, "/")+"/") && path != c.PackagePath {
		return false
	}
	if c.Paths != nil && !c.Paths.Matches(path) {
		return false
	}
	return true
}
