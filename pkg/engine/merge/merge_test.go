package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiff3MergeConflict(t *testing.T) {
	// spec.md scenario S7.
	baseline := map[string][]byte{"foo.txt": []byte("a\nb\nc\n")}
	destination := map[string][]byte{"foo.txt": []byte("destination\nb\nc\n")}
	origin := map[string][]byte{"foo.txt": []byte("origin\nb\nc\n")}

	importer := New(Config{Strategy: DIFF3})
	res, err := importer.Merge(baseline, origin, destination)
	require.NoError(t, err)

	assert.Contains(t, res.Conflicts, "foo.txt")
	merged := string(res.Tree["foo.txt"])
	assert.Contains(t, merged, ">>>>>>>")
	assert.Contains(t, merged, "origin")
	assert.Contains(t, merged, "destination")
	assert.Contains(t, res.ConflictSummary(), "Found merge errors for paths")
}

func TestDiff3MergeTakesOriginWhenDestinationUnchanged(t *testing.T) {
	baseline := map[string][]byte{"f.txt": []byte("a\nb\n")}
	origin := map[string][]byte{"f.txt": []byte("A\nb\n")}
	destination := map[string][]byte{"f.txt": []byte("a\nb\n")}

	importer := New(Config{Strategy: DIFF3})
	res, err := importer.Merge(baseline, origin, destination)
	require.NoError(t, err)
	assert.Empty(t, res.Conflicts)
	assert.Equal(t, "A\nb\n", string(res.Tree["f.txt"]))
}

func TestDiff3MergeTakesDestinationWhenOriginUnchanged(t *testing.T) {
	baseline := map[string][]byte{"f.txt": []byte("a\nb\n")}
	origin := map[string][]byte{"f.txt": []byte("a\nb\n")}
	destination := map[string][]byte{"f.txt": []byte("a\nB\n")}

	importer := New(Config{Strategy: DIFF3})
	res, err := importer.Merge(baseline, origin, destination)
	require.NoError(t, err)
	assert.Empty(t, res.Conflicts)
	assert.Equal(t, "a\nB\n", string(res.Tree["f.txt"]))
}

func TestDiff3MergeNonOverlappingEditsBothApply(t *testing.T) {
	baseline := map[string][]byte{"f.txt": []byte("one\ntwo\nthree\nfour\n")}
	origin := map[string][]byte{"f.txt": []byte("ONE\ntwo\nthree\nfour\n")}
	destination := map[string][]byte{"f.txt": []byte("one\ntwo\nthree\nFOUR\n")}

	importer := New(Config{Strategy: DIFF3})
	res, err := importer.Merge(baseline, origin, destination)
	require.NoError(t, err)
	assert.Empty(t, res.Conflicts)
	assert.Equal(t, "ONE\ntwo\nthree\nFOUR\n", string(res.Tree["f.txt"]))
}

func TestPatchMergeAppliesDestinationEditOntoOrigin(t *testing.T) {
	baseline := map[string][]byte{"f.txt": []byte("one\ntwo\nthree\n")}
	destination := map[string][]byte{"f.txt": []byte("one\nTWO\nthree\n")}
	origin := map[string][]byte{"f.txt": []byte("one\ntwo\nthree\nfour\n")}

	importer := New(Config{Strategy: PatchMerge})
	res, err := importer.Merge(baseline, origin, destination)
	require.NoError(t, err)
	assert.Empty(t, res.Conflicts)
	assert.Equal(t, "one\nTWO\nthree\nfour\n", string(res.Tree["f.txt"]))
}

func TestPatchMergeConflictFallsBackToMarkers(t *testing.T) {
	baseline := map[string][]byte{"f.txt": []byte("one\ntwo\nthree\n")}
	destination := map[string][]byte{"f.txt": []byte("one\nDEST\nthree\n")}
	origin := map[string][]byte{"f.txt": []byte("one\nORIGIN\nthree\n")}

	importer := New(Config{Strategy: PatchMerge})
	res, err := importer.Merge(baseline, origin, destination)
	require.NoError(t, err)
	assert.Contains(t, res.Conflicts, "f.txt")
	assert.Contains(t, string(res.Tree["f.txt"]), ">>>>>>>")
}

func TestMergeScopesByPackagePath(t *testing.T) {
	baseline := map[string][]byte{"pkg/a.txt": []byte("a\n"), "other/b.txt": []byte("b\n")}
	origin := map[string][]byte{"pkg/a.txt": []byte("A\n"), "other/b.txt": []byte("B-origin\n")}
	destination := map[string][]byte{"pkg/a.txt": []byte("a\n"), "other/b.txt": []byte("B-dest\n")}

	importer := New(Config{Strategy: DIFF3, PackagePath: "pkg"})
	res, err := importer.Merge(baseline, origin, destination)
	require.NoError(t, err)

	assert.Equal(t, "A\n", string(res.Tree["pkg/a.txt"]))
	assert.Equal(t, "B-origin\n", string(res.Tree["other/b.txt"]), "paths outside package_path take origin's value unconditionally")
}

func TestMergeDropsPathsRemovedFromOrigin(t *testing.T) {
	baseline := map[string][]byte{"gone.txt": []byte("x\n")}
	origin := map[string][]byte{}
	destination := map[string][]byte{"gone.txt": []byte("x\n")}

	importer := New(Config{Strategy: DIFF3})
	res, err := importer.Merge(baseline, origin, destination)
	require.NoError(t, err)
	_, present := res.Tree["gone.txt"]
	assert.False(t, present)
}

func TestGenerateAutoPatchesSkipsIdenticalFiles(t *testing.T) {
	origin := map[string][]byte{"a.txt": []byte("same\n"), "b.txt": []byte("old\n")}
	merged := map[string][]byte{"a.txt": []byte("same\n"), "b.txt": []byte("new\n")}

	patches, err := GenerateAutoPatches(origin, merged, AutoPatchConfig{DirectoryPrefix: "patches"})
	require.NoError(t, err)
	require.Len(t, patches, 1)
	content, ok := patches["patches/b.txt"]
	require.True(t, ok)
	assert.Contains(t, content, "new")
}

func TestGenerateAutoPatchesStripsFileNamesAndLineNumbers(t *testing.T) {
	origin := map[string][]byte{"a.txt": []byte("one\ntwo\n")}
	merged := map[string][]byte{"a.txt": []byte("one\nTWO\n")}

	patches, err := GenerateAutoPatches(origin, merged, AutoPatchConfig{
		DirectoryPrefix:              "patches",
		StripFileNamesAndLineNumbers: true,
		Header:                       "Generated patch",
	})
	require.NoError(t, err)
	content := patches["patches/a.txt"]
	assert.Contains(t, content, "Generated patch")
	assert.NotContains(t, content, "--- a/")
	assert.Contains(t, content, "@@")
}
