package pipeline

import (
	"fmt"

	"github.com/sourcebridge/sourcebridge/pkg/engine/diff"
	"github.com/sourcebridge/sourcebridge/pkg/engine/glob"
	"github.com/sourcebridge/sourcebridge/pkg/engine/model"
)

// ReversibleCheck runs t, then t.Reverse(), and diffs the resulting tree
// against the pre-transform snapshot, restricted to ignore's complement.
// A non-empty diff is a ValidationError "not reversible" carrying a
// unified-diff block naming the offending paths (spec.md §4.1 step 4d,
// testable property 3, scenario S5).
func ReversibleCheck(t Transformation, ctx *Context, ignore *glob.Glob) error {
	before, err := diff.Snapshot(ctx.Work.CheckoutDir)
	if err != nil {
		return err
	}

	if _, err := Run(t, ctx); err != nil {
		return err
	}

	rev, ok := t.(Reversible)
	if !ok {
		return notReversible(t)
	}
	reversed, err := rev.Reverse()
	if err != nil {
		return err
	}
	if _, err := Run(reversed, ctx); err != nil {
		return err
	}

	after, err := diff.Snapshot(ctx.Work.CheckoutDir)
	if err != nil {
		return err
	}

	keep := func(path string) bool { return ignore == nil || !ignore.Matches(path) }
	filteredBefore := filterTree(before, keep)
	filteredAfter := filterTree(after, keep)
	if diff.TreesEqual(filteredBefore, filteredAfter) {
		return nil
	}

	patch := diff.CompareTrees(filteredBefore, filteredAfter, 3, nil)
	return &model.ValidationError{Message: fmt.Sprintf("transformation %q is not reversible:\n%s", t.Describe(), patch.String())}
}

func filterTree(tree map[string][]byte, keep func(string) bool) map[string][]byte {
	out := map[string][]byte{}
	for path, content := range tree {
		if keep(path) {
			out[path] = content
		}
	}
	return out
}
