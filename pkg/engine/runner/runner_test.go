package runner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sourcebridge/sourcebridge/pkg/drivers/folder"
	"github.com/sourcebridge/sourcebridge/pkg/engine/glob"
	"github.com/sourcebridge/sourcebridge/pkg/engine/model"
	"github.com/sourcebridge/sourcebridge/pkg/testutil"
)

// writeTree creates a small file tree under dir for use as a folder-origin
// revision snapshot.
func writeTree(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		abs := filepath.Join(dir, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
		require.NoError(t, os.WriteFile(abs, []byte(content), 0o644))
	}
}

func newFolderFixture(t *testing.T) (originRoot, destRoot string) {
	t.Helper()
	originRoot = testutil.TempDir(t, "sourcebridge-origin-")
	destRoot = testutil.TempDir(t, "sourcebridge-dest-")
	return originRoot, destRoot
}

func squashConfig() WorkflowConfig {
	return WorkflowConfig{
		Name:             "test-workflow",
		Mode:             Squash,
		OriginFiles:      glob.All(),
		DestinationFiles: glob.All(),
		SetRevID:         true,
		RevIDLabel:       "SourceBridge-RevId",
		InitHistory:      true,
	}
}

func TestRunSquashMigratesHeadTreeAndRecordsRevID(t *testing.T) {
	originRoot, destRoot := newFolderFixture(t)

	tree1 := testutil.TempDir(t, "tree1-")
	writeTree(t, tree1, map[string]string{"a.txt": "hello\n"})
	require.NoError(t, folder.AppendRevision(originRoot, folder.RevisionInput{
		ID: "rev1", Author: "Ada Lovelace <ada@example.com>", Message: "first change", TreeDir: tree1,
	}))

	origin := folder.NewOrigin(originRoot)
	dest := folder.NewDestination(destRoot)

	r := New(origin, dest, squashConfig())
	r.Workdir = testutil.TempDir(t, "sourcebridge-work-")

	result, err := r.Run(context.Background(), RunOptions{})
	require.NoError(t, err)
	require.Len(t, result.Effects, 1)
	assert.Equal(t, model.EffectCreated, result.Effects[0].Type)
	assert.NotEmpty(t, result.Effects[0].ID)

	written, err := os.ReadFile(filepath.Join(destRoot, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(written))
}

func TestRunSquashIsNoopWithoutNewChanges(t *testing.T) {
	originRoot, destRoot := newFolderFixture(t)

	tree1 := testutil.TempDir(t, "tree1-")
	writeTree(t, tree1, map[string]string{"a.txt": "hello\n"})
	require.NoError(t, folder.AppendRevision(originRoot, folder.RevisionInput{
		ID: "rev1", Author: "Ada Lovelace <ada@example.com>", Message: "first change", TreeDir: tree1,
	}))

	origin := folder.NewOrigin(originRoot)
	dest := folder.NewDestination(destRoot)
	cfg := squashConfig()

	r1 := New(origin, dest, cfg)
	r1.Workdir = testutil.TempDir(t, "sourcebridge-work-")
	first, err := r1.Run(context.Background(), RunOptions{})
	require.NoError(t, err)
	require.Len(t, first.Effects, 1)
	require.Equal(t, model.EffectCreated, first.Effects[0].Type)

	r2 := New(origin, dest, cfg)
	r2.Workdir = testutil.TempDir(t, "sourcebridge-work-")
	second, err := r2.Run(context.Background(), RunOptions{})
	require.NoError(t, err)
	require.Len(t, second.Effects, 1)
	assert.Equal(t, model.EffectNoop, second.Effects[0].Type)
}

func TestRunIterativeProducesOneCreatedEffectPerChange(t *testing.T) {
	originRoot, destRoot := newFolderFixture(t)

	tree1 := testutil.TempDir(t, "tree1-")
	writeTree(t, tree1, map[string]string{"a.txt": "one\n"})
	require.NoError(t, folder.AppendRevision(originRoot, folder.RevisionInput{
		ID: "rev1", Author: "Ada Lovelace <ada@example.com>", Message: "first", TreeDir: tree1,
	}))

	tree2 := testutil.TempDir(t, "tree2-")
	writeTree(t, tree2, map[string]string{"a.txt": "one\n", "b.txt": "two\n"})
	require.NoError(t, folder.AppendRevision(originRoot, folder.RevisionInput{
		ID: "rev2", Author: "Ada Lovelace <ada@example.com>", Message: "second", TreeDir: tree2,
	}))

	origin := folder.NewOrigin(originRoot)
	dest := folder.NewDestination(destRoot)
	cfg := squashConfig()
	cfg.Mode = Iterative

	r := New(origin, dest, cfg)
	r.Workdir = testutil.TempDir(t, "sourcebridge-work-")

	result, err := r.Run(context.Background(), RunOptions{})
	require.NoError(t, err)

	created := 0
	for _, e := range result.Effects {
		if e.Type == model.EffectCreated {
			created++
		}
	}
	assert.Equal(t, 2, created, "iterative migration of 2 changes must produce exactly 2 CREATED effects")
}

func TestRunForceAuthorAndMessageOverrideTheChange(t *testing.T) {
	originRoot, destRoot := newFolderFixture(t)

	tree1 := testutil.TempDir(t, "tree1-")
	writeTree(t, tree1, map[string]string{"a.txt": "hello\n"})
	require.NoError(t, folder.AppendRevision(originRoot, folder.RevisionInput{
		ID: "rev1", Author: "Ada Lovelace <ada@example.com>", Message: "original message", TreeDir: tree1,
	}))

	origin := folder.NewOrigin(originRoot)
	dest := folder.NewDestination(destRoot)
	cfg := squashConfig()
	forced := model.ParseAuthor("Migration Bot <bot@example.com>")
	cfg.ForceAuthor = &forced
	cfg.ForceMessage = "forced commit message"

	r := New(origin, dest, cfg)
	r.Workdir = testutil.TempDir(t, "sourcebridge-work-")

	_, err := r.Run(context.Background(), RunOptions{})
	require.NoError(t, err)

	raw, err := os.ReadFile(filepath.Join(destRoot, "sourcebridge-dest-log.json"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Migration Bot <bot@example.com>")
	assert.Contains(t, string(raw), "forced commit message")
}

// TestRunChangeRequestBaselineReachesDestination covers scenario S3 and
// testable property 7: the baseline handed to the destination writer must
// equal the value of DEST_LABEL in the most recent ancestor carrying it.
func TestRunChangeRequestBaselineReachesDestination(t *testing.T) {
	originRoot, destRoot := newFolderFixture(t)

	tree0 := testutil.TempDir(t, "tree0-")
	writeTree(t, tree0, map[string]string{"a.txt": "base\n"})
	require.NoError(t, folder.AppendRevision(originRoot, folder.RevisionInput{
		ID: "rev0", Author: "Ada Lovelace <ada@example.com>", Message: "Base\n\nDEST_LABEL=42", TreeDir: tree0,
	}))

	tree1 := testutil.TempDir(t, "tree1-")
	writeTree(t, tree1, map[string]string{"a.txt": "changed\n"})
	require.NoError(t, folder.AppendRevision(originRoot, folder.RevisionInput{
		ID: "rev1", Author: "Ada Lovelace <ada@example.com>", Message: "desc", TreeDir: tree1,
	}))

	origin := folder.NewOrigin(originRoot)
	dest := folder.NewDestination(destRoot)
	cfg := squashConfig()
	cfg.Mode = ChangeRequest
	cfg.DestLabelName = "DEST_LABEL"
	cfg.Force = true

	r := New(origin, dest, cfg)
	r.Workdir = testutil.TempDir(t, "sourcebridge-work-")

	result, err := r.Run(context.Background(), RunOptions{})
	require.NoError(t, err)
	require.Len(t, result.Effects, 1)
	assert.Equal(t, model.EffectCreated, result.Effects[0].Type)

	raw, err := os.ReadFile(filepath.Join(destRoot, "sourcebridge-dest-log.json"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"baseline": "42"`)
}

// TestRunChangeRequestSmartPruneRestrictsToChangedFiles covers GLOSSARY
// "Smart prune": only origin paths that differ between the labeled
// baseline and the resolved head are checked out and written.
func TestRunChangeRequestSmartPruneRestrictsToChangedFiles(t *testing.T) {
	originRoot, destRoot := newFolderFixture(t)

	tree0 := testutil.TempDir(t, "tree0-")
	writeTree(t, tree0, map[string]string{"a.txt": "unchanged\n", "b.txt": "old\n"})
	require.NoError(t, folder.AppendRevision(originRoot, folder.RevisionInput{
		ID: "rev0", Author: "Ada Lovelace <ada@example.com>", Message: "Base\n\nDEST_LABEL=42", TreeDir: tree0,
	}))

	tree1 := testutil.TempDir(t, "tree1-")
	writeTree(t, tree1, map[string]string{"a.txt": "unchanged\n", "b.txt": "new\n"})
	require.NoError(t, folder.AppendRevision(originRoot, folder.RevisionInput{
		ID: "rev1", Author: "Ada Lovelace <ada@example.com>", Message: "desc", TreeDir: tree1,
	}))

	origin := folder.NewOrigin(originRoot)
	dest := folder.NewDestination(destRoot)
	cfg := squashConfig()
	cfg.Mode = ChangeRequest
	cfg.DestLabelName = "DEST_LABEL"
	cfg.SmartPrune = true
	cfg.Force = true

	r := New(origin, dest, cfg)
	r.Workdir = testutil.TempDir(t, "sourcebridge-work-")

	_, err := r.Run(context.Background(), RunOptions{})
	require.NoError(t, err)

	written, err := os.ReadFile(filepath.Join(destRoot, "b.txt"))
	require.NoError(t, err)
	assert.Equal(t, "new\n", string(written))

	_, err = os.Stat(filepath.Join(destRoot, "a.txt"))
	assert.True(t, os.IsNotExist(err), "smart prune must exclude a.txt from the checkout since it is unchanged between baseline and head")
}

// TestRunDiffInOriginRejectedByUnsupportedOrigin ensures --diff-in-origin
// fails fast against a driver that does not advertise the capability,
// rather than silently being ignored.
func TestRunDiffInOriginRejectedByUnsupportedOrigin(t *testing.T) {
	originRoot, destRoot := newFolderFixture(t)

	tree1 := testutil.TempDir(t, "tree1-")
	writeTree(t, tree1, map[string]string{"a.txt": "hello\n"})
	require.NoError(t, folder.AppendRevision(originRoot, folder.RevisionInput{
		ID: "rev1", Author: "Ada Lovelace <ada@example.com>", Message: "first change", TreeDir: tree1,
	}))

	origin := folder.NewOrigin(originRoot)
	dest := folder.NewDestination(destRoot)
	cfg := squashConfig()
	cfg.DiffInOrigin = true

	r := New(origin, dest, cfg)
	r.Workdir = testutil.TempDir(t, "sourcebridge-work-")

	_, err := r.Run(context.Background(), RunOptions{})
	require.Error(t, err)
	assert.IsType(t, &model.ValidationError{}, err)
}
