package folder

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/sourcebridge/sourcebridge/pkg/engine/capability"
	"github.com/sourcebridge/sourcebridge/pkg/engine/glob"
	"github.com/sourcebridge/sourcebridge/pkg/engine/model"
)

// Origin is a read-only view over a directory tree whose revision history
// is recorded in sourcebridge-log.json (spec.md §6 OriginReader).
type Origin struct {
	Root string
}

// NewOrigin returns a folder-backed OriginReader rooted at root.
func NewOrigin(root string) *Origin { return &Origin{Root: root} }

var _ capability.OriginReader = (*Origin)(nil)

func (o *Origin) records() ([]commitRecord, error) { return readLog(o.Root) }

// Resolve maps ref to a revision; an empty ref resolves to the most recent
// commit (the origin's head, per spec.md §4.1 step 1).
func (o *Origin) Resolve(ctx context.Context, ref string) (model.Revision, error) {
	records, err := o.records()
	if err != nil {
		return model.Revision{}, err
	}
	if len(records) == 0 {
		return model.Revision{}, fmt.Errorf("folder origin %s has no revisions", o.Root)
	}
	if ref == "" {
		r := records[len(records)-1]
		rev := toChange(r).Revision
		return rev, nil
	}
	r, ok := findByID(records, ref)
	if !ok {
		return model.Revision{}, fmt.Errorf("folder origin: no revision %q", ref)
	}
	rev := toChange(r).Revision
	rev.ContextReference = ref
	return rev, nil
}

// Changes enumerates every commit strictly after from (or from the root if
// from is nil) up to and including to, oldest first (spec.md §6 Changes).
func (o *Origin) Changes(ctx context.Context, from *model.Revision, to model.Revision) (capability.ChangesResponse, error) {
	records, err := o.records()
	if err != nil {
		return capability.ChangesResponse{}, err
	}
	stopAt := ""
	if from != nil {
		stopAt = from.Canonical
	}
	chain := ancestorChain(records, to.Canonical, stopAt)
	changes := make([]model.Change, 0, len(chain))
	for _, r := range chain {
		changes = append(changes, toChange(r))
	}
	return capability.ChangesResponse{Changes: changes}, nil
}

// Change resolves one revision to its full Change record.
func (o *Origin) Change(ctx context.Context, rev model.Revision) (model.Change, error) {
	records, err := o.records()
	if err != nil {
		return model.Change{}, err
	}
	r, ok := findByID(records, rev.Canonical)
	if !ok {
		return model.Change{}, fmt.Errorf("folder origin: no revision %q", rev.Canonical)
	}
	return toChange(r), nil
}

// Checkout copies rev's recorded tree (under <root>/revisions/<id>/) into
// dir, keeping only paths matching files.
func (o *Origin) Checkout(ctx context.Context, rev model.Revision, dir string, files *glob.Glob) error {
	src := filepath.Join(o.Root, "revisions", rev.Canonical)
	return copyTreeFiltered(src, dir, files)
}

func (o *Origin) Tags(ctx context.Context) ([]model.Revision, error) {
	return nil, &capability.ErrUnsupported{Capability: "tags"}
}

func (o *Origin) SupportsHistory() bool      { return true }
func (o *Origin) SupportsDiffInOrigin() bool { return false }

func (o *Origin) Descriptor() map[string]string {
	return map[string]string{"driver": "folder", "root": o.Root}
}
