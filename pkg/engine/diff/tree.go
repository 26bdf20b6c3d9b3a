package diff

import (
	"os"
	"path/filepath"
)

// Snapshot reads every regular file under root into a map keyed by
// "/"-separated path relative to root.
func Snapshot(root string) (map[string][]byte, error) {
	out := map[string][]byte{}
	err := filepath.Walk(root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		out[rel] = data
		return nil
	})
	return out, err
}

// CompareTrees returns the Patch turning old into new, covering every path
// present in either tree, filtered to keep(path). ctxLines controls hunk
// context the way DiffFile does.
func CompareTrees(old, new map[string][]byte, ctxLines int, keep func(path string) bool) Patch {
	seen := map[string]bool{}
	var patch Patch
	add := func(path string) {
		if seen[path] || (keep != nil && !keep(path)) {
			return
		}
		seen[path] = true
		oldContent, inOld := old[path]
		newContent, inNew := new[path]
		switch {
		case inOld && inNew:
			if fp := DiffFile(path, oldContent, newContent, ctxLines); fp != nil {
				patch.Files = append(patch.Files, *fp)
			}
		case inOld && !inNew:
			if fp := DiffFile(path, oldContent, nil, ctxLines); fp != nil {
				patch.Files = append(patch.Files, *fp)
			}
		case !inOld && inNew:
			if fp := DiffFile(path, nil, newContent, ctxLines); fp != nil {
				patch.Files = append(patch.Files, *fp)
			}
		}
	}
	for path := range old {
		add(path)
	}
	for path := range new {
		add(path)
	}
	return patch
}

// TreesEqual reports whether old and new contain exactly the same paths
// with exactly the same bytes.
func TreesEqual(old, new map[string][]byte) bool {
	if len(old) != len(new) {
		return false
	}
	for path, content := range old {
		other, ok := new[path]
		if !ok || string(other) != string(content) {
			return false
		}
	}
	return true
}
