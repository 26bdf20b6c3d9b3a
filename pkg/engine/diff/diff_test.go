package diff

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiffFileIdenticalReturnsNil(t *testing.T) {
	fp := DiffFile("a.txt", []byte("same\n"), []byte("same\n"), 3)
	assert.Nil(t, fp)
}

func TestDiffFileSingleLineChange(t *testing.T) {
	old := []byte("one\ntwo\nthree\n")
	new := []byte("one\nTWO\nthree\n")
	fp := DiffFile("a.txt", old, new, 1)
	require.NotNil(t, fp)
	require.Len(t, fp.Hunks, 1)
	h := fp.Hunks[0]
	assert.Equal(t, 1, h.OldStart)
	assert.Equal(t, 3, h.OldLines)
	assert.Equal(t, 3, h.NewLines)
}

func TestDiffFileNewFile(t *testing.T) {
	fp := DiffFile("new.txt", nil, []byte("hello\n"), 3)
	require.NotNil(t, fp)
	require.Len(t, fp.Hunks, 1)
	assert.Equal(t, Add, fp.Hunks[0].Lines[0].Op)
}

func TestPatchStringParseRoundTrip(t *testing.T) {
	old := []byte("one\ntwo\nthree\nfour\n")
	new := []byte("one\nTWO\nthree\nfour\n")
	fp := DiffFile("a.txt", old, new, 1)
	p := Patch{Files: []FilePatch{*fp}}

	text := p.String()
	parsed, err := Parse(text)
	require.NoError(t, err)
	require.Len(t, parsed.Files, 1)
	assert.Equal(t, fp.Path, parsed.Files[0].Path)
	assert.Equal(t, fp.Hunks, parsed.Files[0].Hunks)
}

func TestPatchNegateSwapsDirection(t *testing.T) {
	old := []byte("one\ntwo\nthree\n")
	new := []byte("one\nTWO\nthree\n")
	fp := DiffFile("a.txt", old, new, 1)
	p := Patch{Files: []FilePatch{*fp}}

	negated := p.Negate()
	restored, err := ApplyToTree(map[string][]byte{"a.txt": new}, negated)
	require.NoError(t, err)
	assert.Equal(t, old, restored["a.txt"])
}

func TestApplyRoundTripsForwardAndBack(t *testing.T) {
	old := map[string][]byte{"a.txt": []byte("one\ntwo\nthree\n")}
	new := map[string][]byte{"a.txt": []byte("one\nTWO\nthree\nfour\n")}

	forward := CompareTrees(old, new, 3, nil)
	applied, err := ApplyToTree(old, forward)
	require.NoError(t, err)
	assert.Equal(t, new, applied)

	back, err := ApplyToTree(new, forward.Negate())
	require.NoError(t, err)
	assert.Equal(t, old, back)
}

func TestApplyDetectsContextMismatch(t *testing.T) {
	old := []byte("one\ntwo\nthree\n")
	new := []byte("one\nTWO\nthree\n")
	fp := DiffFile("a.txt", old, new, 1)
	p := Patch{Files: []FilePatch{*fp}}

	dir := t.TempDir()
	require.NoError(t, writeFile(dir, "a.txt", []byte("one\ndifferent\nthree\n")))
	err := Apply(dir, p)
	assert.Error(t, err, "context mismatch must fail, not fuzz-apply")
}

func TestSnapshotAndCompareTrees(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, writeFile(dir, "a.txt", []byte("hello\n")))
	require.NoError(t, writeFile(dir, "sub/b.txt", []byte("world\n")))

	snap, err := Snapshot(dir)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello\n"), snap["a.txt"])
	assert.Equal(t, []byte("world\n"), snap["sub/b.txt"])
}

func TestTreesEqual(t *testing.T) {
	a := map[string][]byte{"x": []byte("1")}
	b := map[string][]byte{"x": []byte("1")}
	c := map[string][]byte{"x": []byte("2")}
	assert.True(t, TreesEqual(a, b))
	assert.False(t, TreesEqual(a, c))
	assert.False(t, TreesEqual(a, map[string][]byte{}))
}

func TestFilterKeepsOnlyMatchingPaths(t *testing.T) {
	p := Patch{Files: []FilePatch{{Path: "keep.txt"}, {Path: "drop.txt"}}}
	filtered := p.Filter(func(path string) bool { return path == "keep.txt" })
	require.Len(t, filtered.Files, 1)
	assert.Equal(t, "keep.txt", filtered.Files[0].Path)
}

func writeFile(dir, rel string, content []byte) error {
	abs := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return err
	}
	return os.WriteFile(abs, content, 0o644)
}
