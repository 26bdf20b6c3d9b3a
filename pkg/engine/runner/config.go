// Package runner implements the WorkflowRunner: the orchestration of one
// migration invocation across its four modes, wiring together the
// transformation pipeline, merge-import, consistency file, and autopatch
// subsystems against an OriginReader/DestinationWriter pair (spec.md §4.1).
package runner

import (
	"time"

	"github.com/sourcebridge/sourcebridge/pkg/engine/glob"
	"github.com/sourcebridge/sourcebridge/pkg/engine/merge"
	"github.com/sourcebridge/sourcebridge/pkg/engine/model"
	"github.com/sourcebridge/sourcebridge/pkg/engine/pipeline"
)

// Mode selects which batch-shape/baseline state machine a run uses
// (spec.md §4.1 Modes table).
type Mode string

const (
	Squash               Mode = "SQUASH"
	Iterative            Mode = "ITERATIVE"
	ChangeRequest        Mode = "CHANGE_REQUEST"
	ChangeRequestFromSOT Mode = "CHANGE_REQUEST_FROM_SOT"
)

// RetrySchedule configures the backoff used by CHANGE_REQUEST_FROM_SOT
// while the referenced baseline is not yet present in the destination.
type RetrySchedule struct {
	Exponential bool
	Delays      []time.Duration
}

func (s RetrySchedule) delayFor(attempt int) (time.Duration, bool) {
	if len(s.Delays) == 0 {
		return 0, false
	}
	if attempt < len(s.Delays) {
		return s.Delays[attempt], true
	}
	if !s.Exponential {
		return s.Delays[len(s.Delays)-1], true
	}
	last := s.Delays[len(s.Delays)-1]
	extra := attempt - len(s.Delays) + 1
	for i := 0; i < extra; i++ {
		last *= 2
	}
	return last, true
}

// WorkflowConfig is the declarative definition of one migration: name,
// endpoints' file scopes, the transformation list, action hooks, and every
// mode/merge/autopatch policy flag named in spec.md §4.1's Inputs.
type WorkflowConfig struct {
	Name string
	Mode Mode

	OriginFiles      *glob.Glob
	DestinationFiles *glob.Glob

	Transformations       []pipeline.Transformation
	AfterMigrationActions []Action
	AfterWorkflowActions  []Action

	// RevIDLabel is the label name carrying the last-imported origin
	// revision in a destination commit message; CustomRevIDLabel
	// overrides it when set.
	RevIDLabel       string
	CustomRevIDLabel string
	SetRevID         bool

	SmartPrune bool

	MergeImport                   *merge.Config
	DisableConsistencyMergeImport bool

	AutoPatch *merge.AutoPatchConfig

	MigrateNoopChanges bool
	IgnoreNoop         bool

	ReversibleCheck            bool
	ReversibleCheckIgnoreFiles *glob.Glob

	CheckLastRevState bool

	ExpectedFixedRef string
	PinnedFixedRef   string

	DiffInOrigin bool
	InitHistory  bool
	LastRevision string
	Force        bool

	// ForceAuthor and ForceMessage override every change's author/message
	// before the transformation pipeline runs, for destinations that need
	// a single uniform committer or commit message regardless of origin
	// history (--force-author / --force-message).
	ForceAuthor  *model.Author
	ForceMessage string

	// DestLabelName is the label scanned in origin commit messages to
	// find a CHANGE_REQUEST baseline (spec.md §4.1 step 3).
	DestLabelName             string
	ChangeRequestParent       string
	ChangeRequestFromSOTLimit int
	ChangeRequestFromSOTRetry RetrySchedule

	IterativeLimitChanges int
}

func (c WorkflowConfig) revIDLabelName() string {
	if c.CustomRevIDLabel != "" {
		return c.CustomRevIDLabel
	}
	if c.RevIDLabel != "" {
		return c.RevIDLabel
	}
	return "rev_id"
}
