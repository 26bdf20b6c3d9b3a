package pathsafe

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveWithinRoot(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("x"), 0o644))

	resolved, err := Resolve(root, "a.txt")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "a.txt"), resolved)
}

func TestResolveRejectsDotDotEscape(t *testing.T) {
	root := t.TempDir()
	_, err := Resolve(root, "../outside.txt")
	assert.Error(t, err)
}

func TestResolveFollowsSymlinkWithinRoot(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "real"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "real", "f.txt"), []byte("x"), 0o644))
	require.NoError(t, os.Symlink(filepath.Join(root, "real"), filepath.Join(root, "link")))

	resolved, err := Resolve(root, "link/f.txt")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "real", "f.txt"), resolved)
}

func TestResolveRejectsSymlinkEscapingRoot(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(outside, "secret.txt"), []byte("x"), 0o644))
	require.NoError(t, os.Symlink(outside, filepath.Join(root, "escape")))

	_, err := Resolve(root, "escape/secret.txt")
	assert.Error(t, err)
}

func TestResolveNewAllowsNonexistentPath(t *testing.T) {
	root := t.TempDir()
	resolved, err := ResolveNew(root, "new/file.txt")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "new", "file.txt"), resolved)
}

func TestResolveNewRejectsEscape(t *testing.T) {
	root := t.TempDir()
	_, err := ResolveNew(root, "../escape.txt")
	assert.Error(t, err)
}
