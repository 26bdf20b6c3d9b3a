package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sourcebridge/sourcebridge/pkg/engine/model"
	"github.com/sourcebridge/sourcebridge/pkg/testutil"
)

func newWork(t *testing.T, files map[string]string) *model.TransformWork {
	t.Helper()
	dir := testutil.TempDir(t, "sourcebridge-pipeline-")
	for rel, content := range files {
		abs := filepath.Join(dir, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
		require.NoError(t, os.WriteFile(abs, []byte(content), 0o644))
	}
	return model.NewTransformWork(dir, "msg", model.ParseAuthor("Ada Lovelace <ada@example.com>"))
}

func TestReplaceReverseSwapsBeforeAfterWhenGroupsMatch(t *testing.T) {
	r := &Replace{Before: "old", After: "new"}
	reversed, err := r.Reverse()
	require.NoError(t, err)

	rr, ok := reversed.(*Replace)
	require.True(t, ok)
	assert.Equal(t, "new", rr.Before)
	assert.Equal(t, "old", rr.After)
}

func TestReplaceReverseFailsWhenGroupSetsDiffer(t *testing.T) {
	r := &Replace{
		Before:     "v${major}.${minor}",
		After:      "${major}.0",
		GroupRegex: map[string]string{"major": "[0-9]+", "minor": "[0-9]+"},
	}
	_, err := r.Reverse()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is not reversible")
}

func TestReplaceReverseRoundTripsThroughApply(t *testing.T) {
	work := newWork(t, map[string]string{"a.txt": "hello old world\n"})
	ctx := NewContext(work, false, nil, nil)

	forward := &Replace{Before: "old", After: "new"}
	res, err := Run(forward, ctx)
	require.NoError(t, err)
	assert.True(t, res.Changed)

	content, err := os.ReadFile(filepath.Join(work.CheckoutDir, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello new world\n", string(content))

	reversed, err := forward.Reverse()
	require.NoError(t, err)
	res, err = Run(reversed, ctx)
	require.NoError(t, err)
	assert.True(t, res.Changed)

	content, err = os.ReadFile(filepath.Join(work.CheckoutDir, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello old world\n", string(content))
}

// TestReversibleCheckFailsWhenReverseDoesNotRestoreTheTree covers scenario
// S5: replacing "a" with "b" in content that already contains a "b" is not
// reversible, since reversing cannot distinguish the original "b" from the
// one the forward pass introduced.
func TestReversibleCheckFailsWhenReverseDoesNotRestoreTheTree(t *testing.T) {
	work := newWork(t, map[string]string{"a.txt": "ab"})
	ctx := NewContext(work, false, nil, nil)

	r := &Replace{Before: "a", After: "b"}
	err := ReversibleCheck(r, ctx, nil)
	require.Error(t, err)

	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Error(), "is not reversible")
	assert.Contains(t, verr.Error(), "a.txt")
}

func TestReversibleCheckSucceedsForACleanSwap(t *testing.T) {
	work := newWork(t, map[string]string{"a.txt": "hello old world\n"})
	ctx := NewContext(work, false, nil, nil)

	r := &Replace{Before: "old", After: "new"}
	err := ReversibleCheck(r, ctx, nil)
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(work.CheckoutDir, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello old world\n", string(content), "reversible check must leave the tree as it found it")
}

func TestRunNoopLeafIsFatalByDefault(t *testing.T) {
	work := newWork(t, map[string]string{"a.txt": "hello world\n"})
	ctx := NewContext(work, false, nil, nil)

	r := &Replace{Before: "zzz", After: "yyy"}
	_, err := Run(r, ctx)
	require.Error(t, err)

	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Error(), "was a no-op")
}

func TestRunNoopLeafIsWarningWhenContextIgnoresNoop(t *testing.T) {
	work := newWork(t, map[string]string{"a.txt": "hello world\n"})
	var warnings []string
	ctx := NewContext(work, true, nil, func(level, message string) {
		warnings = append(warnings, level+": "+message)
	})

	r := &Replace{Before: "zzz", After: "yyy"}
	res, err := Run(r, ctx)
	require.NoError(t, err)
	assert.False(t, res.Changed)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "was a no-op")
}

func TestRunNoopLeafIsWarningUnderIgnoreNoopWrapper(t *testing.T) {
	work := newWork(t, map[string]string{"a.txt": "hello world\n"})
	var warnings []string
	ctx := NewContext(work, false, nil, func(level, message string) {
		warnings = append(warnings, level+": "+message)
	})

	wrapped := &IgnoreNoop{Inner: &Replace{Before: "zzz", After: "yyy"}}
	res, err := Run(wrapped, ctx)
	require.NoError(t, err)
	assert.False(t, res.Changed)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "was a no-op")
}

func TestSequenceStopsAtFirstNoopUnlessIgnored(t *testing.T) {
	work := newWork(t, map[string]string{"a.txt": "hello world\n"})
	ctx := NewContext(work, false, nil, nil)

	seq := NewSequence("rewrite",
		&Replace{Before: "hello", After: "goodbye"},
		&Replace{Before: "zzz", After: "yyy"},
	)
	_, err := Run(seq, ctx)
	require.Error(t, err)

	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Error(), "was a no-op")

	content, err := os.ReadFile(filepath.Join(work.CheckoutDir, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "goodbye world\n", string(content), "the step before the failing no-op must still have applied")
}
