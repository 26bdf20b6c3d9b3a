package config

import (
	"fmt"
	"time"

	"github.com/sourcebridge/sourcebridge/pkg/engine/diff"
	"github.com/sourcebridge/sourcebridge/pkg/engine/glob"
	"github.com/sourcebridge/sourcebridge/pkg/engine/merge"
	"github.com/sourcebridge/sourcebridge/pkg/engine/message"
	"github.com/sourcebridge/sourcebridge/pkg/engine/pipeline"
	"github.com/sourcebridge/sourcebridge/pkg/engine/runner"
)

// Built is one decoded, buildable workflow: its runner config plus the
// driver names its origin/destination entries referenced (resolving those
// names to capability.OriginReader/DestinationWriter implementations is a
// CLI concern — concrete drivers are out of scope for the core, spec.md
// §1).
type Built struct {
	Config      runner.WorkflowConfig
	OriginName  string
	DestName    string
}

// Build decodes and validates raw YAML bytes into a name-indexed map of
// Built workflows.
func Build(yamlBytes []byte) (map[string]*Built, error) {
	f, err := decodeAndValidate(yamlBytes)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*Built, len(f.Workflows))
	for _, w := range f.Workflows {
		if w.Name == "" {
			return nil, fmt.Errorf("workflow definition has an unnamed workflow entry")
		}
		if _, dup := out[w.Name]; dup {
			return nil, fmt.Errorf("duplicate workflow name %q", w.Name)
		}
		built, err := buildWorkflow(w)
		if err != nil {
			return nil, fmt.Errorf("workflow %q: %w", w.Name, err)
		}
		out[w.Name] = built
	}
	return out, nil
}

func buildGlob(g *Glob) (*glob.Glob, error) {
	if g == nil {
		return glob.All(), nil
	}
	include := g.Include
	if len(include) == 0 {
		include = []string{"**"}
	}
	return glob.New(include, g.Exclude)
}

func buildWorkflow(w Workflow) (*Built, error) {
	originFiles, err := buildGlob(w.OriginFiles)
	if err != nil {
		return nil, fmt.Errorf("origin_files: %w", err)
	}
	destFiles, err := buildGlob(w.DestinationFiles)
	if err != nil {
		return nil, fmt.Errorf("destination_files: %w", err)
	}

	transforms := make([]pipeline.Transformation, 0, len(w.Transformations))
	for i, t := range w.Transformations {
		built, err := buildTransform(t)
		if err != nil {
			return nil, fmt.Errorf("transformations[%d]: %w", i, err)
		}
		transforms = append(transforms, built)
	}

	cfg := runner.WorkflowConfig{
		Name:                           w.Name,
		Mode:                           runner.Mode(w.Mode),
		OriginFiles:                    originFiles,
		DestinationFiles:               destFiles,
		Transformations:                transforms,
		RevIDLabel:                     w.RevIDLabel,
		CustomRevIDLabel:               w.CustomRevIDLabel,
		SetRevID:                       w.SetRevID,
		SmartPrune:                     w.SmartPrune,
		DisableConsistencyMergeImport:  w.DisableConsistencyMergeImport,
		MigrateNoopChanges:             w.MigrateNoopChanges,
		IgnoreNoop:                     w.IgnoreNoop,
		ReversibleCheck:                w.ReversibleCheck,
		CheckLastRevState:              w.CheckLastRevState,
		ExpectedFixedRef:               w.ExpectedFixedRef,
		PinnedFixedRef:                 w.PinnedFixedRef,
		DiffInOrigin:                   w.DiffInOrigin,
		InitHistory:                    w.InitHistory,
		LastRevision:                   w.LastRevision,
		Force:                          w.Force,
		DestLabelName:                  w.DestLabelName,
		ChangeRequestParent:            w.ChangeRequestParent,
		ChangeRequestFromSOTLimit:      w.ChangeRequestFromSOTLimit,
		IterativeLimitChanges:          w.IterativeLimitChanges,
	}

	if w.ReversibleCheckIgnoreFiles != nil {
		g, err := buildGlob(w.ReversibleCheckIgnoreFiles)
		if err != nil {
			return nil, fmt.Errorf("reversible_check_ignore_files: %w", err)
		}
		cfg.ReversibleCheckIgnoreFiles = g
	}

	if w.ChangeRequestFromSOTRetry != nil {
		sched, err := buildRetry(*w.ChangeRequestFromSOTRetry)
		if err != nil {
			return nil, fmt.Errorf("change_request_from_sot_retry: %w", err)
		}
		cfg.ChangeRequestFromSOTRetry = sched
	}

	if w.MergeImport != nil {
		mi, err := buildMergeImport(*w.MergeImport)
		if err != nil {
			return nil, fmt.Errorf("merge_import: %w", err)
		}
		cfg.MergeImport = mi
	}

	if w.AutoPatch != nil {
		ap, err := buildAutoPatch(*w.AutoPatch)
		if err != nil {
			return nil, fmt.Errorf("autopatch: %w", err)
		}
		cfg.AutoPatch = ap
	}

	return &Built{Config: cfg, OriginName: w.Origin, DestName: w.Destination}, nil
}

func buildRetry(r Retry) (runner.RetrySchedule, error) {
	delays := make([]time.Duration, 0, len(r.Delays))
	for _, s := range r.Delays {
		d, err := time.ParseDuration(s)
		if err != nil {
			return runner.RetrySchedule{}, fmt.Errorf("invalid delay %q: %w", s, err)
		}
		delays = append(delays, d)
	}
	return runner.RetrySchedule{Exponential: r.Exponential, Delays: delays}, nil
}

func buildMergeImport(m MergeImport) (*merge.Config, error) {
	strategy := merge.Strategy(m.Strategy)
	if strategy == "" {
		strategy = merge.DIFF3
	}
	paths, err := buildOptionalGlob(m.Paths)
	if err != nil {
		return nil, fmt.Errorf("paths: %w", err)
	}
	after := make([]pipeline.Transformation, 0, len(m.AfterMergeTransforms))
	for i, t := range m.AfterMergeTransforms {
		built, err := buildTransform(t)
		if err != nil {
			return nil, fmt.Errorf("after_merge_transforms[%d]: %w", i, err)
		}
		after = append(after, built)
	}
	return &merge.Config{
		Strategy:             strategy,
		PackagePath:          m.PackagePath,
		Paths:                paths,
		UseConsistencyFile:   m.UseConsistencyFile,
		AfterMergeTransforms: after,
	}, nil
}

func buildAutoPatch(a AutoPatch) (*merge.AutoPatchConfig, error) {
	paths, err := buildOptionalGlob(a.Paths)
	if err != nil {
		return nil, fmt.Errorf("paths: %w", err)
	}
	return &merge.AutoPatchConfig{
		DirectoryPrefix:               a.DirectoryPrefix,
		Directory:                     a.Directory,
		Suffix:                        a.Suffix,
		Header:                        a.Header,
		Paths:                         paths,
		StripFileNamesAndLineNumbers:  a.StripFileNamesAndLineNumbers,
	}, nil
}

func buildOptionalGlob(g *Glob) (*glob.Glob, error) {
	if g == nil {
		return nil, nil
	}
	return buildGlob(g)
}

// buildTransform dispatches on whichever field of t is populated; exactly
// one is expected (enforced by the embedded schema's maxProperties: 1 on
// each transform node).
func buildTransform(t Transform) (pipeline.Transformation, error) {
	switch {
	case t.Replace != nil:
		paths, err := buildOptionalGlob(t.Replace.Paths)
		if err != nil {
			return nil, err
		}
		return &pipeline.Replace{
			Before:     t.Replace.Before,
			After:      t.Replace.After,
			Paths:      paths,
			Multiline:  t.Replace.Multiline,
			FirstOnly:  t.Replace.FirstOnly,
			GroupRegex: t.Replace.GroupRegex,
		}, nil

	case t.Move != nil:
		from, err := buildGlob(&t.Move.From)
		if err != nil {
			return nil, err
		}
		return pipeline.NewMove("move "+t.Move.ToPath, from, renameTo(t.Move.ToPath)), nil

	case t.Copy != nil:
		from, err := buildGlob(&t.Copy.From)
		if err != nil {
			return nil, err
		}
		return pipeline.NewCopy("copy "+t.Copy.ToPath, from, renameTo(t.Copy.ToPath)), nil

	case t.PatchApply != nil:
		patch, err := diff.Parse(t.PatchApply.DiffText)
		if err != nil {
			return nil, fmt.Errorf("patch_apply: %w", err)
		}
		excluded, err := buildOptionalGlob(t.PatchApply.ExcludedPaths)
		if err != nil {
			return nil, err
		}
		return pipeline.NewPatchApply("apply patch", patch, excluded), nil

	case t.AddLabel != nil:
		return &pipeline.AddLabel{Name: t.AddLabel.Name, Value: t.AddLabel.Value}, nil
	case t.AddOrReplaceLabel != nil:
		return &pipeline.AddOrReplaceLabel{Name: t.AddOrReplaceLabel.Name, Value: t.AddOrReplaceLabel.Value}, nil
	case t.ReplaceLabel != nil:
		return &pipeline.ReplaceLabel{Name: t.ReplaceLabel.Name, Value: t.ReplaceLabel.Value}, nil
	case t.RemoveLabel != nil:
		return &pipeline.RemoveLabel{Name: t.RemoveLabel.Name, All: t.RemoveLabel.WholeMessage}, nil
	case t.AddTextBeforeLabels != nil:
		return &pipeline.AddTextBeforeLabels{Text: *t.AddTextBeforeLabels}, nil
	case t.SetMessage != nil:
		return &pipeline.SetMessage{Text: *t.SetMessage}, nil
	case t.ReplaceMessage != nil:
		return &pipeline.ReplaceMessage{Text: *t.ReplaceMessage}, nil
	case t.UseLastChange != nil:
		return &pipeline.UseLastChange{}, nil
	case t.SquashNotes != nil:
		return &pipeline.SquashNotes{Header: t.SquashNotes.Header}, nil
	case t.ExposeLabel != nil:
		return &pipeline.ExposeLabel{Name: *t.ExposeLabel}, nil
	case t.SetLabel != nil:
		return &pipeline.SetLabel{Name: t.SetLabel.Name, Value: t.SetLabel.Value, Hidden: t.SetLabel.Hidden}, nil
	case t.DeleteLabel != nil:
		return &pipeline.DeleteLabel{Name: *t.DeleteLabel}, nil
	case t.TemplateLabel != nil:
		return &pipeline.TemplateLabel{
			Name:     t.TemplateLabel.Name,
			Template: message.Template(t.TemplateLabel.Template),
			Hidden:   t.TemplateLabel.Hidden,
		}, nil
	case t.VerifyMatch != nil:
		paths, err := buildOptionalGlob(t.VerifyMatch.Paths)
		if err != nil {
			return nil, err
		}
		return &pipeline.VerifyMatch{Pattern: t.VerifyMatch.Pattern, Paths: paths}, nil
	case t.VerifyNoMatch != nil:
		paths, err := buildOptionalGlob(t.VerifyNoMatch.Paths)
		if err != nil {
			return nil, err
		}
		return &pipeline.VerifyMatch{Pattern: t.VerifyNoMatch.Pattern, Paths: paths, Negate: true}, nil
	case t.FailWithNoop != nil:
		return &pipeline.FailWithNoop{Message: *t.FailWithNoop}, nil
	case t.SetExecutable != nil:
		paths, err := buildGlob(&t.SetExecutable.Paths)
		if err != nil {
			return nil, err
		}
		return &pipeline.SetExecutable{Paths: paths, Executable: t.SetExecutable.Executable}, nil
	case t.IgnoreNoop != nil:
		inner, err := buildTransform(*t.IgnoreNoop)
		if err != nil {
			return nil, err
		}
		return &pipeline.IgnoreNoop{Inner: inner}, nil
	case len(t.Sequence) > 0:
		steps := make([]pipeline.Transformation, 0, len(t.Sequence))
		for i, st := range t.Sequence {
			built, err := buildTransform(st)
			if err != nil {
				return nil, fmt.Errorf("sequence[%d]: %w", i, err)
			}
			steps = append(steps, built)
		}
		return pipeline.NewSequence("sequence", steps...), nil
	default:
		return nil, fmt.Errorf("transformation node names no recognized kind")
	}
}

// renameTo builds the path-rewrite function a Move/Copy spec's flat "to"
// prefix describes: every matched path is re-rooted under prefix,
// preserving its name.
func renameTo(prefix string) func(string) string {
	return func(relPath string) string {
		if prefix == "" {
			return relPath
		}
		return prefix + "/" + relPath
	}
}
