package runner

import (
	"context"

	"github.com/sourcebridge/sourcebridge/pkg/engine/capability"
	"github.com/sourcebridge/sourcebridge/pkg/engine/model"
)

// InfoResult is the read-only introspection spec.md §4.7 describes: the
// origin's head, the last-imported revision (if any), and the pending
// changes between them, filtered by origin_files.
type InfoResult struct {
	OriginHead     model.Revision
	LastImported   *model.Revision
	PendingChanges []model.Change
}

// Info resolves the origin head and the last-imported revision and lists
// the changes still pending migration, without mutating the destination
// (spec.md §4.7).
func (r *Runner) Info(ctx context.Context, sourceRef string) (*InfoResult, error) {
	w, err := r.Writer.NewWriter(ctx, capability.WriterContext{DryRun: true, WorkflowName: r.Config.Name})
	if err != nil {
		return nil, &model.RepoError{Op: "new_writer", Err: err}
	}
	defer w.Close()

	head, err := r.Origin.Resolve(ctx, sourceRef)
	if err != nil {
		return nil, &model.CannotResolveRevisionError{Ref: sourceRef, Err: err}
	}

	lastImported, err := r.findLastImportedRevision(ctx, w)
	if err != nil {
		return nil, err
	}

	resp, err := r.Origin.Changes(ctx, lastImported, head)
	if err != nil {
		return nil, &model.RepoError{Op: "changes", Err: err}
	}

	pending := make([]model.Change, 0, len(resp.Changes))
	for _, c := range resp.Changes {
		if affects(c, r.Config.OriginFiles) {
			pending = append(pending, c)
		}
	}

	return &InfoResult{OriginHead: head, LastImported: lastImported, PendingChanges: pending}, nil
}
