package folder

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sourcebridge/sourcebridge/pkg/engine/capability"
	"github.com/sourcebridge/sourcebridge/pkg/engine/glob"
	"github.com/sourcebridge/sourcebridge/pkg/engine/message"
	"github.com/sourcebridge/sourcebridge/pkg/engine/model"
	"github.com/sourcebridge/sourcebridge/pkg/logger"
)

var destLog = logger.New("drivers:folder:destination")

const destLogFileName = "sourcebridge-dest-log.json"

// writeRecord is one entry in a folder destination's write history.
type writeRecord struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Author    string    `json:"author"`
	Baseline  string    `json:"baseline,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Destination is a folder-backed DestinationWriter (spec.md §6
// DestinationWriter): a plain directory whose write history — and thus the
// rev-id label a later run's findLastImportedRevision scans for — lives in
// sourcebridge-dest-log.json.
type Destination struct {
	Dir string
}

// NewDestination returns a folder-backed DestinationWriter rooted at dir.
func NewDestination(dir string) *Destination { return &Destination{Dir: dir} }

var _ capability.DestinationWriter = (*Destination)(nil)

func (d *Destination) NewWriter(ctx context.Context, wc capability.WriterContext) (capability.Writer, error) {
	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		return nil, err
	}
	return &writer{dir: d.Dir, dryRun: wc.DryRun}, nil
}

type writer struct {
	dir    string
	dryRun bool
}

var _ capability.Writer = (*writer)(nil)

func (w *writer) records() ([]writeRecord, error) {
	data, err := os.ReadFile(filepath.Join(w.dir, destLogFileName))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var records []writeRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (w *writer) appendRecord(r writeRecord) error {
	records, err := w.records()
	if err != nil {
		return err
	}
	records = append(records, r)
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(w.dir, destLogFileName), data, 0o644)
}

// DestinationStatus scans write history, most recent first, for a message
// carrying labelName, per spec.md §4.1 step 2.
func (w *writer) DestinationStatus(ctx context.Context, files *glob.Glob, labelName string) (*capability.DestinationStatus, error) {
	records, err := w.records()
	if err != nil {
		return nil, err
	}
	for i := len(records) - 1; i >= 0; i-- {
		parsed := message.Parse(records[i].Message)
		val, ok := parsed.GetLabel(labelName)
		if !ok {
			continue
		}
		return &capability.DestinationStatus{Baseline: model.Revision{Canonical: val}}, nil
	}
	return nil, nil
}

// DestinationReader snapshots the live destination directory into workdir,
// ignoring baseline (a folder destination keeps only its current working
// tree, not per-revision history).
func (w *writer) DestinationReader(ctx context.Context, baseline model.Revision, workdir string) (capability.DestinationReader, error) {
	if err := copyTreeFiltered(w.dir, workdir, nil); err != nil {
		return nil, err
	}
	return &reader{root: w.dir}, nil
}

type reader struct{ root string }

func (r *reader) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(filepath.Join(r.root, path))
}

func (r *reader) CopyFilesToDirectory(ctx context.Context, files *glob.Glob, dir string) error {
	return copyTreeFiltered(r.root, dir, files)
}

func (r *reader) Exists(path string) bool {
	_, err := os.Stat(filepath.Join(r.root, path))
	return err == nil
}

// Write overlays result's checkout tree (filtered by destinationFiles) onto
// the destination directory and appends a write-history record, per
// spec.md §6 Writer.write. A dry run performs no mutation but still
// returns the effect it would have produced, so repeated calls within one
// dry-run invocation observe the same (unwritten) state.
func (w *writer) Write(ctx context.Context, result capability.TransformResult, destinationFiles *glob.Glob, console capability.Console) ([]model.Effect, error) {
	if !w.dryRun {
		if err := copyTreeFiltered(result.Work.CheckoutDir, w.dir, destinationFiles); err != nil {
			return nil, err
		}
		if err := w.appendRecord(writeRecord{
			ID:        result.Work.ResolvedRevision.Canonical,
			Message:   result.Work.Message,
			Author:    result.Work.Author.String(),
			Baseline:  result.Baseline,
			Timestamp: timeNow(),
		}); err != nil {
			return nil, err
		}
	}

	// Every write appends its own write-history record, so each one is a
	// new destination change.
	effectType := model.EffectCreated
	if console != nil {
		console("info", fmt.Sprintf("wrote revision %s to %s", result.Work.ResolvedRevision.Canonical, w.dir))
	}
	destLog.Printf("wrote revision %s (dry_run=%v)", result.Work.ResolvedRevision.Canonical, w.dryRun)

	return []model.Effect{{
		Type:           effectType,
		Summary:        "imported " + result.Work.ResolvedRevision.Canonical,
		OriginRefs:     []model.Revision{result.Work.ResolvedRevision},
		DestinationRef: result.Work.ResolvedRevision.Canonical,
	}}, nil
}

func (w *writer) PatchRegenerator() (capability.PatchRegenerator, bool) { return nil, false }

func (w *writer) Close() error { return nil }

func dirHasEntries(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if e.Name() == destLogFileName {
			continue
		}
		return true
	}
	return false
}
