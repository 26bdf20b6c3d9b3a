// Package pathsafe implements the single resolveWithinRoot helper (spec.md
// §9) used by every file API in the pipeline, the merge importer, and the
// consistency file reader so that no path resolution can ever escape the
// checkout root — including via a symlink.
package pathsafe

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Resolve canonicalizes userPath against root and returns the resulting
// absolute path. It fails if the normalized path escapes root, and it
// fails if resolving an existing symlink along the way would land outside
// root (spec.md §4.2, §9).
func Resolve(root, userPath string) (string, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("pathsafe: resolve root %q: %w", root, err)
	}
	joined := filepath.Join(root, userPath)
	cleaned := filepath.Clean(joined)

	if !withinRoot(root, cleaned) {
		return "", fmt.Errorf("pathsafe: path %q escapes root %q", userPath, root)
	}

	resolved, err := resolveSymlinks(root, cleaned)
	if err != nil {
		return "", err
	}
	return resolved, nil
}

// ResolveNew is like Resolve but for a path that is about to be created
// (e.g. create_symlink's target) and therefore may not exist yet; it only
// checks the lexical containment, not symlink resolution of the target
// itself (its parent directories are still checked).
func ResolveNew(root, userPath string) (string, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	joined := filepath.Clean(filepath.Join(root, userPath))
	if !withinRoot(root, joined) {
		return "", fmt.Errorf("pathsafe: path %q escapes root %q", userPath, root)
	}
	parent := filepath.Dir(joined)
	if _, err := resolveSymlinks(root, parent); err != nil {
		return "", err
	}
	return joined, nil
}

func withinRoot(root, candidate string) bool {
	if candidate == root {
		return true
	}
	return strings.HasPrefix(candidate, root+string(filepath.Separator))
}

// resolveSymlinks walks path component by component from root, following
// symlinks as it goes (reads follow symlinks, spec.md §4.2), and fails the
// moment a resolved symlink target would fall outside root.
func resolveSymlinks(root, path string) (string, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", err
	}
	if rel == "." {
		return root, nil
	}

	segments := strings.Split(rel, string(filepath.Separator))
	current := root
	for _, seg := range segments {
		current = filepath.Join(current, seg)
		info, err := os.Lstat(current)
		if err != nil {
			// Component doesn't exist yet (e.g. a file about to be
			// written); nothing more to resolve.
			if os.IsNotExist(err) {
				return current, nil
			}
			return "", err
		}
		if info.Mode()&os.ModeSymlink == 0 {
			continue
		}
		target, err := os.Readlink(current)
		if err != nil {
			return "", err
		}
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(current), target)
		}
		target = filepath.Clean(target)
		if !withinRoot(root, target) {
			return "", fmt.Errorf("pathsafe: symlink %q points outside root %q", current, root)
		}
		current = target
	}
	return current, nil
}
