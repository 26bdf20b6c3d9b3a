package runner

import (
	"context"
	"os"

	"github.com/sourcebridge/sourcebridge/pkg/engine/baseline"
	"github.com/sourcebridge/sourcebridge/pkg/engine/capability"
	"github.com/sourcebridge/sourcebridge/pkg/engine/model"
	"github.com/sourcebridge/sourcebridge/pkg/engine/pipeline"
)

// Regenerate re-creates the autopatch/consistency-file artifacts after
// destination-side edits, per spec.md §4.5. It runs the transformation
// pipeline against the resolved baseline and hands the result to the
// writer's PatchRegenerator; the diff-against-target and patch/consistency
// file writing described in §4.5 happen inside UpdateChange, which is the
// writer's own concern (the core never reaches into destination storage
// directly, per spec.md §1).
func (r *Runner) Regenerate(ctx context.Context, opts baseline.Options) (*baseline.Plan, error) {
	w, err := r.Writer.NewWriter(ctx, capability.WriterContext{WorkflowName: r.Config.Name})
	if err != nil {
		return nil, &model.RepoError{Op: "new_writer", Err: err}
	}
	defer w.Close()

	regen, ok := w.PatchRegenerator()
	if !ok {
		return nil, model.NewValidationError("destination does not support regenerate")
	}

	plan, err := baseline.Resolve(ctx, opts, r.Origin, regen)
	if err != nil {
		return nil, err
	}
	for _, warn := range plan.Warnings {
		runnerLog.Printf("warning: %s", warn)
	}

	workdir, err := os.MkdirTemp(r.Workdir, "sourcebridge-regen-")
	if err != nil {
		return nil, &model.RepoError{Op: "mkdir_regen", Err: err}
	}
	if !r.KeepWorkdir {
		defer os.RemoveAll(workdir)
	}

	if err := r.Origin.Checkout(ctx, plan.Baseline, workdir, r.Config.OriginFiles); err != nil {
		return nil, &model.RepoError{Op: "checkout", Err: err}
	}

	change, err := r.Origin.Change(ctx, plan.Baseline)
	if err != nil {
		return nil, &model.RepoError{Op: "change", Err: err}
	}
	work := model.NewTransformWork(workdir, change.Message, change.Author)
	work.CurrentRevision = plan.Baseline
	work.ResolvedRevision = plan.Baseline
	work.Changes = model.Changes{Current: []model.Change{change}}
	work.WorkflowName = r.Config.Name

	pctx := pipeline.NewContext(work, r.Config.IgnoreNoop, nil, r.Console)
	seq := pipeline.NewSequence(r.Config.Name, r.Config.Transformations...)
	pctx = pctx.WithProgress(pipeline.NewProgress(pipeline.CountLeaves(seq), nil))
	if _, err := pipeline.Run(seq, pctx); err != nil {
		return nil, err
	}

	if err := regen.UpdateChange(ctx, plan.Baseline, workdir, r.Config.DestinationFiles, plan.Target); err != nil {
		return nil, &model.RepoError{Op: "update_change", Err: err}
	}

	return plan, nil
}
