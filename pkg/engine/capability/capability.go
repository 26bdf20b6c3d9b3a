// Package capability defines the OriginReader and DestinationWriter
// interfaces the core consumes but never implements (spec.md §1, §6). Every
// concrete driver (git, hg, folder, remote-archive, go-module proxy) is a
// capability record implementing these interfaces plus a descriptor bag for
// introspection; the core never downcasts to a concrete driver type
// (spec.md §9 "Dynamic dispatch over open capability sets").
package capability

import (
	"context"

	"github.com/sourcebridge/sourcebridge/pkg/engine/glob"
	"github.com/sourcebridge/sourcebridge/pkg/engine/model"
)

// ChangesResponse is the result of an OriginReader.Changes query.
type ChangesResponse struct {
	Changes []model.Change
	// ConditionalChanges maps a change's canonical revision to a parent
	// canonical revision that is only included in the batch if the child
	// is (used by origins with shallow/partial history).
	ConditionalChanges map[string]string
}

// OriginReader is supplied by an origin driver: it resolves refs,
// enumerates changes, and materializes a checkout (spec.md §6).
type OriginReader interface {
	Resolve(ctx context.Context, ref string) (model.Revision, error)
	Changes(ctx context.Context, from *model.Revision, to model.Revision) (ChangesResponse, error)
	Change(ctx context.Context, rev model.Revision) (model.Change, error)
	Checkout(ctx context.Context, rev model.Revision, dir string, files *glob.Glob) error

	// Tags is optional; origins without tag support return ErrUnsupported.
	Tags(ctx context.Context) ([]model.Revision, error)

	// SupportsHistory/SupportsDiffInOrigin are capability flags the runner
	// consults before taking a history-dependent or diff-in-origin path.
	SupportsHistory() bool
	SupportsDiffInOrigin() bool

	// Descriptor exposes driver identity for logging/introspection without
	// the core ever downcasting to the concrete type.
	Descriptor() map[string]string
}

// ErrUnsupported is returned by an optional capability method a driver
// doesn't implement.
type ErrUnsupported struct{ Capability string }

func (e *ErrUnsupported) Error() string { return "unsupported capability: " + e.Capability }

// Console reports progress/warning/error lines during a write.
type Console func(level, message string)

// DestinationStatus is the destination's view of where the last import
// landed and what, if anything, is still pending (spec.md §6).
type DestinationStatus struct {
	Baseline       model.Revision
	PendingChanges []model.Change
}

// DestinationReader exposes read access to a destination tree at a given
// baseline, for merge-import and regenerate (spec.md §6).
type DestinationReader interface {
	ReadFile(path string) ([]byte, error)
	CopyFilesToDirectory(ctx context.Context, files *glob.Glob, dir string) error
	Exists(path string) bool
}

// TransformResult is what the pipeline produced for one change, handed to
// the writer verbatim.
type TransformResult struct {
	Work    *model.TransformWork
	Changes []model.Change

	// Baseline is the CHANGE_REQUEST/CHANGE_REQUEST_FROM_SOT baseline this
	// change was diffed against: the value of the `<dest-label>` label
	// found in the most recent ancestor carrying it (spec.md §4.1 step 3,
	// testable property 7), or the literal `--change-request-parent`
	// override when one was supplied. Empty for SQUASH/ITERATIVE, which
	// have no destination-facing baseline value to report.
	Baseline string
}

// Writer is the per-invocation handle a DestinationWriter hands back; it is
// shared across changes within one run and closed by the runner on every
// exit path (spec.md §3 Ownership).
type Writer interface {
	DestinationStatus(ctx context.Context, files *glob.Glob, labelName string) (*DestinationStatus, error)
	DestinationReader(ctx context.Context, baseline model.Revision, workdir string) (DestinationReader, error)
	Write(ctx context.Context, result TransformResult, destinationFiles *glob.Glob, console Console) ([]model.Effect, error)

	// PatchRegenerator is optional; writers that don't support regenerate
	// return (nil, false).
	PatchRegenerator() (PatchRegenerator, bool)

	Close() error
}

// WriterContext carries per-invocation settings a DestinationWriter needs
// to build a Writer (dry-run mode, workflow identity).
type WriterContext struct {
	DryRun       bool
	WorkflowName string
}

// DestinationWriter is supplied by a destination driver: it mints a Writer
// bound to one invocation (spec.md §6).
type DestinationWriter interface {
	NewWriter(ctx context.Context, wc WriterContext) (Writer, error)
}

// PatchRegenerator is the optional capability a Writer exposes for the
// `regenerate` command (spec.md §4.5).
type PatchRegenerator interface {
	// InferRegenTarget/InferRegenBaseline/InferImportBaseline return
	// (revision, ok, err); ok is false when the writer has no opinion and
	// the caller must fall back per §4.5's selection order.
	InferRegenTarget(ctx context.Context) (model.Revision, bool, error)
	InferRegenBaseline(ctx context.Context) (model.Revision, bool, error)
	InferImportBaseline(ctx context.Context) (model.Revision, bool, error)

	UpdateChange(ctx context.Context, original model.Revision, workdir string, files *glob.Glob, target model.Revision) error
}
