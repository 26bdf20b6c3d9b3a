// Package folder implements the "folder" origin/destination driver named
// as an out-of-scope external collaborator in spec.md §1: a plain
// directory tree on local disk, with revision history recorded as a small
// JSON log rather than a real VCS. It exists outside pkg/engine like any
// other driver would, consuming only the capability interfaces the core
// defines (pkg/engine/capability) and never reaching back into the core's
// internals.
package folder

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/sourcebridge/sourcebridge/pkg/engine/model"
	"github.com/sourcebridge/sourcebridge/pkg/logger"
)

var folderLog = logger.New("drivers:folder")

// commitRecord is one entry in a folder origin's on-disk revision log
// (<root>/sourcebridge-log.json). The tree it refers to lives under
// <root>/revisions/<ID>/.
type commitRecord struct {
	ID            string            `json:"id"`
	ParentID      string            `json:"parent_id,omitempty"`
	Author        string            `json:"author"`
	Message       string            `json:"message"`
	Timestamp     time.Time         `json:"timestamp"`
	FixedRef      string            `json:"fixed_ref,omitempty"`
	Labels        map[string][]string `json:"labels,omitempty"`
	AffectedFiles []string          `json:"affected_files,omitempty"`
}

const logFileName = "sourcebridge-log.json"

func readLog(root string) ([]commitRecord, error) {
	data, err := os.ReadFile(filepath.Join(root, logFileName))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var records []commitRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func writeLog(root string, records []commitRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(root, logFileName), data, 0o644)
}

func toChange(r commitRecord) model.Change {
	return model.Change{
		Revision: model.Revision{
			Canonical:      r.ID,
			FixedReference: r.FixedRef,
			Labels:         r.Labels,
			Timestamp:      r.Timestamp,
		},
		Author:        model.ParseAuthor(r.Author),
		Message:       r.Message,
		Timestamp:     r.Timestamp,
		Labels:        r.Labels,
		AffectedFiles: r.AffectedFiles,
	}
}

func findByID(records []commitRecord, id string) (commitRecord, bool) {
	for _, r := range records {
		if r.ID == id {
			return r, true
		}
	}
	return commitRecord{}, false
}

// ancestorChain walks parent pointers from id back to (but excluding) the
// commit named stopAt, returning the chain oldest-first. stopAt == "" walks
// to the root.
func ancestorChain(records []commitRecord, id, stopAt string) []commitRecord {
	var chain []commitRecord
	cur := id
	for cur != "" && cur != stopAt {
		r, ok := findByID(records, cur)
		if !ok {
			break
		}
		chain = append([]commitRecord{r}, chain...)
		cur = r.ParentID
	}
	return chain
}
