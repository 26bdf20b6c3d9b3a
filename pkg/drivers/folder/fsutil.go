package folder

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sourcebridge/sourcebridge/pkg/engine/glob"
)

// copyTreeFiltered copies every regular file under src into dst, keeping
// only paths matching files (nil means everything), confined to dst
// (spec.md §4.2 Path safety — callers pass a freshly created checkout
// directory).
func copyTreeFiltered(src, dst string, files *glob.Glob) error {
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return err
	}
	return filepath.Walk(src, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		relSlash := filepath.ToSlash(rel)
		if files != nil && !files.Matches(relSlash) {
			return nil
		}
		dstPath := filepath.Join(dst, rel)
		if err := os.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
			return err
		}
		return copyFile(p, dstPath, info.Mode())
	})
}

func copyFile(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = io.Copy(out, in)
	return err
}

// RevisionInput is the user-supplied part of a new commit appended to a
// folder origin by AppendRevision.
type RevisionInput struct {
	ID            string
	Author        string
	Message       string
	FixedRef      string
	Labels        map[string][]string
	AffectedFiles []string
	TreeDir       string // directory whose contents become this revision's snapshot
}

// AppendRevision records a new commit in root's log, copying TreeDir into
// <root>/revisions/<ID>/, and linking it as a child of the current head
// (empty ParentID for the first commit). It is the write-side counterpart
// to Origin, used to construct folder-origin fixtures.
func AppendRevision(root string, in RevisionInput) error {
	records, err := readLog(root)
	if err != nil {
		return err
	}
	parent := ""
	if len(records) > 0 {
		parent = records[len(records)-1].ID
	}
	dest := filepath.Join(root, "revisions", in.ID)
	if err := copyTreeFiltered(in.TreeDir, dest, nil); err != nil {
		return err
	}
	records = append(records, commitRecord{
		ID:            in.ID,
		ParentID:      parent,
		Author:        in.Author,
		Message:       in.Message,
		Timestamp:     timeNow(),
		FixedRef:      in.FixedRef,
		Labels:        in.Labels,
		AffectedFiles: in.AffectedFiles,
	})
	return writeLog(root, records)
}

// timeNow is a seam so tests can't accidentally depend on wall-clock
// ordering; production callers get the real time.
var timeNow = func() time.Time { return time.Now() }
