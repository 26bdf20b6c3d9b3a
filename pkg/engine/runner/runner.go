package runner

import (
	"context"
	"os"
	"time"

	"github.com/sourcebridge/sourcebridge/pkg/engine/capability"
	"github.com/sourcebridge/sourcebridge/pkg/engine/consistency"
	"github.com/sourcebridge/sourcebridge/pkg/engine/diff"
	"github.com/sourcebridge/sourcebridge/pkg/engine/merge"
	"github.com/sourcebridge/sourcebridge/pkg/engine/message"
	"github.com/sourcebridge/sourcebridge/pkg/engine/model"
	"github.com/sourcebridge/sourcebridge/pkg/engine/pipeline"
	"github.com/sourcebridge/sourcebridge/pkg/logger"
)

var runnerLog = logger.New("engine:runner")

// Runner executes one WorkflowConfig end-to-end against an origin and a
// destination (spec.md §4.1).
type Runner struct {
	Origin  capability.OriginReader
	Writer  capability.DestinationWriter
	Config  WorkflowConfig
	CLILabels map[string]string

	// Workdir is the parent directory under which each change's checkout
	// is created; the checkout itself is removed on exit from the change
	// unless KeepWorkdir is set (spec.md §5 Shared resources).
	Workdir     string
	KeepWorkdir bool

	Console func(level, message string)
}

// RunOptions are the per-invocation user inputs (spec.md §4.1 "zero or
// more source refs", §6 CLI surface).
type RunOptions struct {
	SourceRefs []string
	DryRun     bool
}

// RunResult is the outcome of one invocation: the accumulated effect
// ledger (spec.md §4.1 Output).
type RunResult struct {
	Effects []model.Effect
}

// New constructs a Runner for cfg.
func New(origin capability.OriginReader, writer capability.DestinationWriter, cfg WorkflowConfig) *Runner {
	return &Runner{Origin: origin, Writer: writer, Config: cfg}
}

// Run executes the migration per spec.md §4.1's algorithm.
func (r *Runner) Run(ctx context.Context, opts RunOptions) (*RunResult, error) {
	if r.Config.DiffInOrigin && !r.Origin.SupportsDiffInOrigin() {
		return nil, model.NewValidationError("--diff-in-origin requested but origin driver %v does not support diff-in-origin", r.Origin.Descriptor())
	}

	ledger := &model.Ledger{}

	w, err := r.Writer.NewWriter(ctx, capability.WriterContext{DryRun: opts.DryRun, WorkflowName: r.Config.Name})
	if err != nil {
		return nil, &model.RepoError{Op: "new_writer", Err: err}
	}
	defer w.Close()

	resolved, err := r.resolveSourceRef(ctx, opts.SourceRefs)
	if err != nil {
		return nil, err
	}

	lastImported, err := r.findLastImportedRevision(ctx, w)
	if err != nil {
		return nil, err
	}

	batches, err := r.selectBatchesForMode(ctx, lastImported, resolved)
	if err != nil {
		if _, isEmpty := err.(*model.EmptyChangeError); isEmpty {
			ledger.Append(model.Effect{Type: model.EffectNoop, Summary: err.Error()})
			r.runAfterWorkflowActions(ledger)
			return &RunResult{Effects: ledger.All()}, nil
		}
		return nil, err
	}

	failFast := r.Config.Mode == Squash || r.Config.Mode == ChangeRequest || r.Config.Mode == ChangeRequestFromSOT

	for _, b := range batches {
		effects, err := r.runBatch(ctx, w, b, lastImported)
		for _, e := range effects {
			ledger.Append(e)
		}
		if err != nil {
			if _, isEmpty := err.(*model.EmptyChangeError); isEmpty {
				runnerLog.Printf("warning: %v", err)
				ledger.Append(model.Effect{Type: model.EffectNoop, Summary: err.Error()})
				if failFast {
					break
				}
				continue
			}
			ledger.Append(model.Effect{Type: model.EffectError, Summary: err.Error(), Errors: []string{err.Error()}})
			if failFast {
				break
			}
			continue
		}
		if len(b.changes) > 0 {
			lastImported = &b.changes[len(b.changes)-1].Revision
		}
	}

	r.runAfterWorkflowActions(ledger)
	return &RunResult{Effects: ledger.All()}, nil
}

// resolveSourceRef implements spec.md §4.1 step 1.
func (r *Runner) resolveSourceRef(ctx context.Context, refs []string) (model.Revision, error) {
	ref := ""
	if len(refs) > 0 {
		ref = refs[0]
	}
	resolved, err := r.Origin.Resolve(ctx, ref)
	if err != nil {
		return model.Revision{}, &model.CannotResolveRevisionError{Ref: ref, Err: err}
	}

	if r.Config.ExpectedFixedRef != "" && resolved.HasFixedReference() && resolved.FixedReference != r.Config.ExpectedFixedRef {
		return model.Revision{}, model.NewEmptyChangeError("resolved revision's fixed ref %q does not match expected_fixed_ref %q", resolved.FixedReference, r.Config.ExpectedFixedRef)
	}

	if r.Config.PinnedFixedRef != "" {
		if resolved.FixedReference != r.Config.PinnedFixedRef {
			return model.Revision{}, model.NewValidationError("no ancestor of %q has fixed ref pinned to %q", resolved.Canonical, r.Config.PinnedFixedRef)
		}
	}

	return resolved, nil
}

func (r *Runner) selectBatchesForMode(ctx context.Context, lastImported *model.Revision, resolved model.Revision) ([]batch, error) {
	if r.Config.Mode == ChangeRequestFromSOT {
		return r.selectWithRetry(ctx, lastImported, resolved)
	}
	return r.selectBatches(ctx, lastImported, resolved)
}

// selectWithRetry retries batch selection per ChangeRequestFromSOTRetry
// while the baseline is not yet present (spec.md §4.1 CHANGE_REQUEST_FROM_SOT).
func (r *Runner) selectWithRetry(ctx context.Context, lastImported *model.Revision, resolved model.Revision) ([]batch, error) {
	attempt := 0
	for {
		batches, err := r.selectBatches(ctx, lastImported, resolved)
		if err == nil {
			return batches, nil
		}
		if _, isEmpty := err.(*model.EmptyChangeError); !isEmpty {
			return nil, err
		}
		delay, ok := r.Config.ChangeRequestFromSOTRetry.delayFor(attempt)
		limit := r.Config.ChangeRequestFromSOTLimit
		if !ok || (limit > 0 && attempt >= limit) {
			return nil, err
		}
		runnerLog.Printf("baseline not yet present, retrying in %s", delay)
		select {
		case <-ctx.Done():
			return nil, &model.CancelledError{}
		case <-afterDelay(delay):
		}
		attempt++
	}
}

// runBatch executes one selected batch through checkout, transform,
// reversible-check, merge-import, autopatch, write, and after-migration
// actions (spec.md §4.1 step 4).
func (r *Runner) runBatch(ctx context.Context, w capability.Writer, b batch, lastImported *model.Revision) ([]model.Effect, error) {
	if len(b.changes) == 0 {
		return nil, model.NewEmptyChangeError("empty batch")
	}
	head := b.changes[len(b.changes)-1]

	checkoutDir, err := os.MkdirTemp(r.Workdir, "sourcebridge-checkout-")
	if err != nil {
		return nil, &model.RepoError{Op: "mkdir_checkout", Err: err}
	}
	if !r.KeepWorkdir {
		defer os.RemoveAll(checkoutDir)
	}

	if err := r.Origin.Checkout(ctx, head.Revision, checkoutDir, b.checkoutFiles(r.Config.OriginFiles)); err != nil {
		return nil, &model.RepoError{Op: "checkout", Err: err}
	}

	msg := b.message()
	author := head.Author
	if r.Config.ForceAuthor != nil {
		author = *r.Config.ForceAuthor
	}
	if r.Config.ForceMessage != "" {
		msg = r.Config.ForceMessage
	}
	work := model.NewTransformWork(checkoutDir, msg, author)
	work.CurrentRevision = head.Revision
	work.ResolvedRevision = head.Revision
	work.Changes = model.Changes{Current: b.changes}
	work.WorkflowName = r.Config.Name

	if r.Config.SetRevID {
		work.Labels.Set(r.Config.revIDLabelName(), head.Revision.Canonical)
	}

	pctx := pipeline.NewContext(work, r.Config.IgnoreNoop, nil, r.Console)
	seq := pipeline.NewSequence(r.Config.Name, r.Config.Transformations...)
	prog := pipeline.NewProgress(pipeline.CountLeaves(seq), nil)
	pctx = pctx.WithProgress(prog)

	if r.Config.ReversibleCheck {
		// Run the check against a scratch copy of the pre-transform tree
		// so ReversibleCheck's own apply-then-reverse cycle never touches
		// the checkout we are about to write from.
		if err := r.checkReversible(seq, work, pctx); err != nil {
			return nil, err
		}
	}

	if _, err := pipeline.Run(seq, pctx); err != nil {
		return nil, err
	}
	work.Message = pctx.Work.Message

	if r.Config.SetRevID {
		label := r.Config.revIDLabelName()
		val, _ := work.Labels.Get(label)
		work.Message = message.Parse(work.Message).AddOrReplaceLabel(label, val).String()
	}

	mergedTree, conflictSummary, err := r.runMergeImport(ctx, w, checkoutDir, work, lastImported)
	if err != nil {
		return nil, err
	}

	var autoPatches map[string]string
	if r.Config.AutoPatch != nil {
		originTree, err := diff.Snapshot(checkoutDir)
		if err != nil {
			return nil, &model.RepoError{Op: "snapshot", Err: err}
		}
		compareAgainst := mergedTree
		if compareAgainst == nil {
			compareAgainst = originTree
		}
		autoPatches, err = merge.GenerateAutoPatches(originTree, compareAgainst, *r.Config.AutoPatch)
		if err != nil {
			return nil, &model.ValidationError{Message: "autopatch generation failed", Err: err}
		}
	}

	if mergedTree != nil {
		if err := merge.WriteTree(checkoutDir, mergedTree); err != nil {
			return nil, &model.RepoError{Op: "write_merged_tree", Err: err}
		}
	}
	for relPath, content := range autoPatches {
		if err := writeAutoPatch(checkoutDir, relPath, content); err != nil {
			return nil, &model.RepoError{Op: "write_autopatch", Err: err}
		}
	}

	result := capability.TransformResult{Work: work, Changes: b.changes, Baseline: b.baseline}
	effects, err := w.Write(ctx, result, r.Config.DestinationFiles, capability.Console(r.consoleAdapter()))
	if err != nil {
		return nil, &model.RepoError{Op: "write", Err: err}
	}
	if conflictSummary != "" {
		effects = append(effects, model.Effect{Type: model.EffectError, Summary: conflictSummary, DestinationRef: head.Revision.Canonical})
	}

	ledger := &model.Ledger{}
	for _, e := range effects {
		ledger.Append(e)
	}
	actionEffects, err := r.runAfterMigrationActions(ledger, work.Labels)
	if err != nil {
		return effects, err
	}
	effects = append(effects, actionEffects...)

	return effects, nil
}

// consistencyFilePath is where a generated ConsistencyFile is checked into
// the destination tree alongside an imported change.
const consistencyFilePath = ".sourcebridge-consistency"

// runMergeImport reconciles a baseline, the fresh transformed origin tree,
// and the live destination tree per spec.md §4.3. If there is no previous
// import, merge import is silently skipped (destination driver never
// consulted) but a consistency file is still generated against the
// identity baseline so a future run can use it.
func (r *Runner) runMergeImport(ctx context.Context, w capability.Writer, checkoutDir string, work *model.TransformWork, lastImported *model.Revision) (map[string][]byte, string, error) {
	originTree, err := diff.Snapshot(checkoutDir)
	if err != nil {
		return nil, "", &model.RepoError{Op: "snapshot", Err: err}
	}

	if r.Config.MergeImport == nil {
		return nil, "", nil
	}

	if lastImported == nil {
		runnerLog.Printf("warning: merge-import configured but no previous import exists; skipping")
		if r.Config.MergeImport.UseConsistencyFile {
			cf := consistency.Generate(originTree, originTree, consistency.SHA256)
			originTree[consistencyFilePath] = []byte(cf.String())
		}
		return originTree, "", nil
	}

	destDir, err := os.MkdirTemp(r.Workdir, "sourcebridge-dest-")
	if err != nil {
		return nil, "", &model.RepoError{Op: "mkdir_dest", Err: err}
	}
	defer os.RemoveAll(destDir)

	reader, err := w.DestinationReader(ctx, *lastImported, destDir)
	if err != nil {
		return nil, "", &model.RepoError{Op: "destination_reader", Err: err}
	}
	if err := reader.CopyFilesToDirectory(ctx, r.Config.DestinationFiles, destDir); err != nil {
		return nil, "", &model.RepoError{Op: "copy_destination", Err: err}
	}
	destTree, err := diff.Snapshot(destDir)
	if err != nil {
		return nil, "", &model.RepoError{Op: "snapshot_destination", Err: err}
	}

	baselineTree := destTree
	if r.Config.MergeImport.UseConsistencyFile {
		raw, ok := destTree[consistencyFilePath]
		if ok {
			cf, err := consistency.Parse(string(raw))
			if err != nil {
				return nil, "", &model.ValidationError{Message: "cannot parse consistency file", Err: err}
			}
			delete(destTree, consistencyFilePath)
			reconstructed, err := cf.Reconstruct(destTree)
			if err != nil {
				if !r.Config.DisableConsistencyMergeImport {
					return nil, "", err
				}
				runnerLog.Printf("warning: %v (proceeding, --disable-consistency-merge-import set)", err)
			} else {
				baselineTree = reconstructed
			}
		}
	}

	importer := merge.New(*r.Config.MergeImport)
	res, err := importer.Merge(baselineTree, originTree, destTree)
	if err != nil {
		return nil, "", &model.ValidationError{Message: "merge import failed", Err: err}
	}

	if len(r.Config.MergeImport.AfterMergeTransforms) > 0 {
		merged, err := merge.RunAfterMergeTransforms(checkoutDir, r.Config.MergeImport.AfterMergeTransforms, work)
		if err != nil {
			return nil, "", err
		}
		res.Tree = merged
	}

	if r.Config.MergeImport.UseConsistencyFile {
		cf := consistency.Generate(originTree, res.Tree, consistency.SHA256)
		res.Tree[consistencyFilePath] = []byte(cf.String())
	}

	if len(res.Conflicts) > 0 {
		return res.Tree, res.ConflictSummary(), nil
	}
	return res.Tree, "", nil
}

// checkReversible materializes preTree's pre-transform state into a scratch
// directory and runs pipeline.ReversibleCheck there, leaving the real
// checkout (and pctx) untouched (spec.md §4.1 step 4d).
func (r *Runner) checkReversible(seq *pipeline.Sequence, work *model.TransformWork, pctx *pipeline.Context) error {
	scratchDir, err := os.MkdirTemp(r.Workdir, "sourcebridge-reversible-")
	if err != nil {
		return &model.RepoError{Op: "mkdir_scratch", Err: err}
	}
	defer os.RemoveAll(scratchDir)

	preTree, err := diff.Snapshot(work.CheckoutDir)
	if err != nil {
		return &model.RepoError{Op: "snapshot", Err: err}
	}
	if err := merge.WriteTree(scratchDir, preTree); err != nil {
		return &model.RepoError{Op: "write_scratch", Err: err}
	}

	scratchWork := work.Clone()
	scratchWork.CheckoutDir = scratchDir
	scratchCtx := pipeline.NewContext(scratchWork, pctx.IgnoreNoop, nil, r.Console)
	scratchCtx = scratchCtx.WithProgress(pipeline.NewProgress(pipeline.CountLeaves(seq), nil))

	return pipeline.ReversibleCheck(seq, scratchCtx, r.Config.ReversibleCheckIgnoreFiles)
}

func writeAutoPatch(checkoutDir, relPath, content string) error {
	abs := checkoutDir + "/" + relPath
	if err := os.MkdirAll(dirOf(abs), 0o755); err != nil {
		return err
	}
	return os.WriteFile(abs, []byte(content), 0o644)
}

func dirOf(p string) string {
	for i := len(p) - 1; i >= 0; i-- {
		if p[i] == '/' {
			return p[:i]
		}
	}
	return "."
}

func (r *Runner) runAfterMigrationActions(ledger *model.Ledger, labels *model.LabelStore) ([]model.Effect, error) {
	start := len(ledger.All())
	for _, a := range r.Config.AfterMigrationActions {
		actx := &ActionContext{
			Effects:   ledger.All(),
			CLILabels: r.CLILabels,
			labels:    labels,
			ledger:    ledger,
			OriginMessage:      func(string) {},
			DestinationMessage: func(string) {},
		}
		effect, err := runAction(a, actx)
		if err != nil {
			return ledger.All()[start:], err
		}
		if effect.Type != "" {
			ledger.Append(effect)
		}
	}
	return ledger.All()[start:], nil
}

func (r *Runner) runAfterWorkflowActions(ledger *model.Ledger) {
	for _, a := range r.Config.AfterWorkflowActions {
		actx := &ActionContext{
			Effects:   ledger.All(),
			CLILabels: r.CLILabels,
			ledger:    ledger,
			OriginMessage:      func(string) {},
			DestinationMessage: func(string) {},
		}
		effect, err := runAction(a, actx)
		if err != nil {
			ledger.Append(model.Effect{Type: model.EffectError, Summary: err.Error()})
			continue
		}
		if effect.Type != "" {
			ledger.Append(effect)
		}
	}
}

func (r *Runner) consoleAdapter() func(level, msg string) {
	if r.Console != nil {
		return r.Console
	}
	return func(level, msg string) {}
}

func (b batch) message() string {
	if len(b.changes) == 0 {
		return ""
	}
	if !b.squash || len(b.changes) == 1 {
		return b.changes[len(b.changes)-1].Message
	}
	return message.SquashNotes("Imported changes:", b.changes)
}

func afterDelay(d time.Duration) <-chan time.Time {
	return time.After(d)
}
