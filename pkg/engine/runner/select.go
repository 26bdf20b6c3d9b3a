package runner

import (
	"context"
	"fmt"
	"os"

	"github.com/sourcebridge/sourcebridge/pkg/engine/capability"
	"github.com/sourcebridge/sourcebridge/pkg/engine/diff"
	"github.com/sourcebridge/sourcebridge/pkg/engine/glob"
	"github.com/sourcebridge/sourcebridge/pkg/engine/message"
	"github.com/sourcebridge/sourcebridge/pkg/engine/model"
)

// batch is one unit of migration work: a single change for ITERATIVE/CR
// modes, or the whole affected-path-filtered set collapsed into one
// synthetic change for SQUASH.
type batch struct {
	changes []model.Change // oldest first
	squash  bool

	// baseline is the CHANGE_REQUEST/CHANGE_REQUEST_FROM_SOT baseline
	// value (testable property 7), empty for SQUASH/ITERATIVE.
	baseline string

	// originFiles, when set, narrows the checkout glob for this batch
	// below Config.OriginFiles (smart prune, GLOSSARY "Smart prune").
	originFiles *glob.Glob
}

// checkoutFiles returns the glob this batch's checkout should use: the
// smart-pruned narrowing if one was computed, otherwise the workflow's
// configured origin_files.
func (b batch) checkoutFiles(configured *glob.Glob) *glob.Glob {
	if b.originFiles != nil {
		return b.originFiles
	}
	return configured
}

func affects(c model.Change, files *glob.Glob) bool {
	if c.AffectedFiles == nil {
		return true
	}
	for _, p := range c.AffectedFiles {
		if files == nil || files.Matches(p) {
			return true
		}
	}
	return false
}

// selectBatches implements spec.md §4.1 step 3 for each mode.
func (r *Runner) selectBatches(ctx context.Context, lastImported *model.Revision, resolved model.Revision) ([]batch, error) {
	resp, err := r.Origin.Changes(ctx, lastImported, resolved)
	if err != nil {
		return nil, &model.RepoError{Op: "changes", Err: err}
	}
	all := resp.Changes

	affecting := make([]model.Change, 0, len(all))
	for _, c := range all {
		if affects(c, r.Config.OriginFiles) {
			affecting = append(affecting, c)
		}
	}

	switch r.Config.Mode {
	case Squash:
		if len(affecting) == 0 {
			if r.Config.Force {
				return nil, nil
			}
			return nil, model.NewEmptyChangeError("no origin changes affecting origin_files since the last import")
		}
		return []batch{{changes: affecting, squash: true}}, nil

	case Iterative:
		changes := affecting
		if r.Config.MigrateNoopChanges {
			changes = all
		}
		if r.Config.IterativeLimitChanges > 0 && len(changes) > r.Config.IterativeLimitChanges {
			changes = changes[:r.Config.IterativeLimitChanges]
		}
		batches := make([]batch, 0, len(changes))
		for _, c := range changes {
			batches = append(batches, batch{changes: []model.Change{c}})
		}
		return batches, nil

	case ChangeRequest, ChangeRequestFromSOT:
		baselineIdx, baselineValue := findLabeledBaseline(all, r.Config.DestLabelName, r.Config.ChangeRequestParent)
		changes := all[baselineIdx:]
		if len(changes) == 0 {
			return nil, model.NewEmptyChangeError("no changes between the labeled baseline and the resolved revision")
		}
		b := batch{changes: changes, squash: true, baseline: baselineValue}
		if r.Config.SmartPrune && baselineIdx > 0 {
			pruned, err := r.smartPruneOriginFiles(ctx, all[baselineIdx-1].Revision, resolved)
			if err != nil {
				return nil, err
			}
			b.originFiles = pruned
		}
		return []batch{b}, nil

	default:
		return nil, fmt.Errorf("unknown mode %q", r.Config.Mode)
	}
}

// findLabeledBaseline scans change messages oldest-first for the last one
// carrying labelName (spec.md §4.1 "Baseline is resolved by scanning origin
// messages for <dest-label>=<value>"), returning the index just past it
// plus the label's own value (testable property 7). If parent is
// non-empty, it is used verbatim instead of scanning, and is itself
// reported as the baseline value.
func findLabeledBaseline(changes []model.Change, labelName, parent string) (int, string) {
	if parent != "" {
		for i, c := range changes {
			if c.Revision.Canonical == parent {
				return i + 1, parent
			}
		}
		return 0, parent
	}
	if labelName == "" {
		return 0, ""
	}
	for i := len(changes) - 1; i >= 0; i-- {
		msg := message.Parse(changes[i].Message)
		if val, ok := msg.GetLabel(labelName); ok {
			return i + 1, val
		}
	}
	return 0, ""
}

// smartPruneOriginFiles implements GLOSSARY "Smart prune": restrict a
// CHANGE_REQUEST batch's checkout to files that actually differ between
// the origin tree at the labeled baseline and the origin tree at the
// resolved head, narrowing the change set this run materializes and
// transforms. Checks out both trees to scratch directories and diffs them,
// since no OriginReader capability exposes a native path-level diff
// between two arbitrary revisions (spec.md §4.1 --diff-in-origin governs
// whether the origin itself is trusted to report that diff instead; this
// local reconstruction is the fallback every origin supports).
func (r *Runner) smartPruneOriginFiles(ctx context.Context, baseline, head model.Revision) (*glob.Glob, error) {
	baseDir, err := os.MkdirTemp(r.Workdir, "sourcebridge-prune-base-")
	if err != nil {
		return nil, &model.RepoError{Op: "mkdir_prune_base", Err: err}
	}
	defer os.RemoveAll(baseDir)
	headDir, err := os.MkdirTemp(r.Workdir, "sourcebridge-prune-head-")
	if err != nil {
		return nil, &model.RepoError{Op: "mkdir_prune_head", Err: err}
	}
	defer os.RemoveAll(headDir)

	if err := r.Origin.Checkout(ctx, baseline, baseDir, r.Config.OriginFiles); err != nil {
		return nil, &model.RepoError{Op: "checkout_prune_base", Err: err}
	}
	if err := r.Origin.Checkout(ctx, head, headDir, r.Config.OriginFiles); err != nil {
		return nil, &model.RepoError{Op: "checkout_prune_head", Err: err}
	}

	baseTree, err := diff.Snapshot(baseDir)
	if err != nil {
		return nil, &model.RepoError{Op: "snapshot_prune_base", Err: err}
	}
	headTree, err := diff.Snapshot(headDir)
	if err != nil {
		return nil, &model.RepoError{Op: "snapshot_prune_head", Err: err}
	}

	changed := map[string]bool{}
	for p, content := range headTree {
		if old, ok := baseTree[p]; !ok || string(old) != string(content) {
			changed[p] = true
		}
	}
	for p := range baseTree {
		if _, ok := headTree[p]; !ok {
			changed[p] = true
		}
	}

	paths := make([]string, 0, len(changed))
	for p := range changed {
		paths = append(paths, p)
	}
	return glob.New(paths, nil)
}

// findLastImportedRevision queries the destination for the most recent
// commit carrying the configured rev-id label (spec.md §4.1 step 2).
func (r *Runner) findLastImportedRevision(ctx context.Context, w capability.Writer) (*model.Revision, error) {
	if r.Config.LastRevision != "" {
		rev, err := r.Origin.Resolve(ctx, r.Config.LastRevision)
		if err != nil {
			return nil, &model.CannotResolveRevisionError{Ref: r.Config.LastRevision, Err: err}
		}
		return &rev, nil
	}

	status, err := w.DestinationStatus(ctx, r.Config.DestinationFiles, r.Config.revIDLabelName())
	if err != nil {
		return nil, &model.RepoError{Op: "destination_status", Err: err}
	}
	if status == nil || status.Baseline.Canonical == "" {
		if r.Config.Force || r.Config.InitHistory {
			return nil, nil
		}
		return nil, model.NewValidationError("previous revision label %q not found in the destination", r.Config.revIDLabelName())
	}
	b := status.Baseline
	return &b, nil
}
