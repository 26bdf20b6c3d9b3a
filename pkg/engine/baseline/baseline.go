// Package baseline implements the BaselineResolver driving the
// `regenerate` command: selecting which destination ref is the new truth
// (regen-target) and which ref the pristine origin state should be
// reconstructed against (regen-baseline), per spec.md §4.5.
package baseline

import (
	"context"
	"fmt"

	"github.com/sourcebridge/sourcebridge/pkg/engine/capability"
	"github.com/sourcebridge/sourcebridge/pkg/engine/model"
	"github.com/sourcebridge/sourcebridge/pkg/logger"
)

var baselineLog = logger.New("engine:baseline")

// Options are the user-supplied regenerate inputs (spec.md §6
// --regen-baseline, --regen-target, --regen-import-baseline).
type Options struct {
	RegenTarget         string // resolved ref, empty if not supplied
	RegenBaseline       string
	RegenImportBaseline bool
	SourceRef           string // positional source ref, if any
}

// Plan is the resolved target/baseline pair a regenerate run acts on.
type Plan struct {
	Target           model.Revision
	Baseline         model.Revision
	BaselineIsImport bool // true when Baseline came from a fresh origin import
	Warnings         []string
}

// Resolve implements spec.md §4.5's selection order for regen-target and
// regen-baseline.
func Resolve(ctx context.Context, opts Options, origin capability.OriginReader, regen capability.PatchRegenerator) (*Plan, error) {
	plan := &Plan{}

	target, err := resolveTarget(ctx, opts, regen)
	if err != nil {
		return nil, err
	}
	plan.Target = target

	baselineRev, isImport, warn, err := resolveBaseline(ctx, opts, origin, regen)
	if err != nil {
		return nil, err
	}
	plan.Baseline = baselineRev
	plan.BaselineIsImport = isImport
	if warn != "" {
		plan.Warnings = append(plan.Warnings, warn)
	}
	return plan, nil
}

func resolveTarget(ctx context.Context, opts Options, regen capability.PatchRegenerator) (model.Revision, error) {
	if opts.RegenTarget != "" {
		return model.Revision{Canonical: opts.RegenTarget, ContextReference: opts.RegenTarget}, nil
	}
	rev, ok, err := regen.InferRegenTarget(ctx)
	if err != nil {
		return model.Revision{}, fmt.Errorf("regen-target: %w", err)
	}
	if !ok {
		return model.Revision{}, fmt.Errorf("regen-target not supplied and the destination could not infer one")
	}
	return rev, nil
}

func resolveBaseline(ctx context.Context, opts Options, origin capability.OriginReader, regen capability.PatchRegenerator) (model.Revision, bool, string, error) {
	if opts.RegenBaseline != "" {
		return model.Revision{Canonical: opts.RegenBaseline, ContextReference: opts.RegenBaseline}, false, "", nil
	}

	if rev, ok, err := regen.InferRegenBaseline(ctx); err != nil {
		return model.Revision{}, false, "", fmt.Errorf("regen-baseline: %w", err)
	} else if ok {
		return rev, false, "", nil
	}

	if !opts.RegenImportBaseline {
		return model.Revision{}, false, "", fmt.Errorf("regen-baseline not supplied, the destination could not infer one, and --regen-import-baseline was not set")
	}

	importRef, ok, err := regen.InferImportBaseline(ctx)
	if err != nil {
		return model.Revision{}, false, "", fmt.Errorf("regen-import-baseline: %w", err)
	}

	var warning string
	var ref string
	switch {
	case ok:
		ref = importRef.ContextReference
		if ref == "" {
			ref = importRef.Canonical
		}
	case opts.SourceRef != "":
		ref = opts.SourceRef
	default:
		warning = "no import-baseline reference supplied or inferred; falling back to the origin's head"
		baselineLog.Printf("%s", warning)
	}

	resolved, err := origin.Resolve(ctx, ref)
	if err != nil {
		return model.Revision{}, false, "", fmt.Errorf("cannot resolve import baseline ref %q: %w", ref, err)
	}
	return resolved, true, warning, nil
}
