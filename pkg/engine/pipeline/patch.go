package pipeline

import (
	"github.com/sourcebridge/sourcebridge/pkg/engine/diff"
	"github.com/sourcebridge/sourcebridge/pkg/engine/glob"
	"github.com/sourcebridge/sourcebridge/pkg/engine/model"
)

// PatchApply applies a unified diff to the checkout. Hunks touching a path
// in ExcludedPaths are skipped. Applying cleanly is required; a conflict
// is a ValidationError (spec.md §4.2 PatchApply).
type PatchApply struct {
	Patch         diff.Patch
	ExcludedPaths *glob.Glob
	desc          string
}

func NewPatchApply(desc string, patch diff.Patch, excluded *glob.Glob) *PatchApply {
	return &PatchApply{Patch: patch, ExcludedPaths: excluded, desc: desc}
}

func (p *PatchApply) Describe() string {
	if p.desc != "" {
		return p.desc
	}
	return "apply patch"
}

func (p *PatchApply) Apply(ctx *Context) (Result, error) {
	patch := p.Patch
	if p.ExcludedPaths != nil {
		patch = patch.Filter(func(path string) bool { return !p.ExcludedPaths.Matches(path) })
	}
	if len(patch.Files) == 0 {
		return Result{Changed: false}, nil
	}
	if err := diff.Apply(ctx.Work.CheckoutDir, patch); err != nil {
		return Result{}, &model.ValidationError{Message: "patch did not apply cleanly", Err: err}
	}
	return Result{Changed: true}, nil
}

// Reverse applies the negated diff (spec.md §4.2 PatchApply: "reverse
// applies the negated diff").
func (p *PatchApply) Reverse() (Transformation, error) {
	return &PatchApply{Patch: p.Patch.Negate(), ExcludedPaths: p.ExcludedPaths, desc: "reverse(" + p.Describe() + ")"}, nil
}
