package message

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sourcebridge/sourcebridge/pkg/engine/model"
)

func TestParseStringRoundTrip(t *testing.T) {
	text := "Fix the bug.\n\nOrigin-Revision-Id=abc123\nReviewed-By=alice\n"
	m := Parse(text)
	assert.Equal(t, "Fix the bug.", m.Body)
	require.Len(t, m.Labels, 2)
	assert.Equal(t, Label{"Origin-Revision-Id", "abc123"}, m.Labels[0])
	assert.Equal(t, text, m.String(), "parse then render must be idempotent")
}

func TestParseNoLabels(t *testing.T) {
	m := Parse("just a body\nwith two lines")
	assert.Equal(t, "just a body\nwith two lines", m.Body)
	assert.Empty(t, m.Labels)
}

func TestParseLabelLikeLineWithoutBlankSeparatorIsBody(t *testing.T) {
	text := "Fix the bug.\nNotes=see ticket"
	m := Parse(text)
	assert.Equal(t, text, m.Body)
	assert.Empty(t, m.Labels)
}

func TestParseColonForm(t *testing.T) {
	m := Parse("Body text.\n\nReviewed-By: alice")
	require.Len(t, m.Labels, 1)
	assert.Equal(t, "alice", m.Labels[0].Value)
}

func TestGetLabel(t *testing.T) {
	m := Parse("Body.\n\nA=1\nB=2")
	v, ok := m.GetLabel("B")
	require.True(t, ok)
	assert.Equal(t, "2", v)

	_, ok = m.GetLabel("C")
	assert.False(t, ok)
}

func TestAddLabel(t *testing.T) {
	m := Parse("Body.")
	m = m.AddLabel("X", "1")
	m = m.AddLabel("X", "2")
	assert.Len(t, m.Labels, 2, "AddLabel always appends, never replaces")
}

func TestAddOrReplaceLabel(t *testing.T) {
	m := Parse("Body.\n\nX=1")
	m = m.AddOrReplaceLabel("X", "2")
	assert.Len(t, m.Labels, 1)
	assert.Equal(t, "2", m.Labels[0].Value)

	m = m.AddOrReplaceLabel("Y", "3")
	assert.Len(t, m.Labels, 2)
}

func TestReplaceIfPresentLeavesMessageUnchangedWhenAbsent(t *testing.T) {
	m := Parse("Body.")
	out := m.ReplaceIfPresent("X", "1")
	assert.Equal(t, m, out)
}

func TestRemoveLabelFirstOnly(t *testing.T) {
	m := Parse("Body.\n\nX=1\nX=2")
	m = m.RemoveLabel("X", false)
	require.Len(t, m.Labels, 1)
	assert.Equal(t, "2", m.Labels[0].Value)
}

func TestRemoveLabelAll(t *testing.T) {
	m := Parse("Body.\n\nX=1\nX=2\nY=3")
	m = m.RemoveLabel("X", true)
	require.Len(t, m.Labels, 1)
	assert.Equal(t, "Y", m.Labels[0].Name)
}

func TestAddTextBeforeLabels(t *testing.T) {
	m := Parse("Body.\n\nX=1")
	m = m.AddTextBeforeLabels("Extra paragraph.")
	assert.Equal(t, "Body.\n\nExtra paragraph.", m.Body)
}

func TestTemplateResolve(t *testing.T) {
	lookup := func(name string) (string, bool) {
		if name == "origin_ref" {
			return "abc123", true
		}
		return "", false
	}
	out, err := Template("Imported from ${origin_ref}").Resolve(lookup)
	require.NoError(t, err)
	assert.Equal(t, "Imported from abc123", out)
}

func TestTemplateResolveMissingLabel(t *testing.T) {
	lookup := func(name string) (string, bool) { return "", false }
	_, err := Template("Imported from ${origin_ref}").Resolve(lookup)
	require.Error(t, err)
	var notFound *model.LabelNotFoundError
	assert.ErrorAs(t, err, &notFound)
	assert.Equal(t, "origin_ref", notFound.Name)
}

func TestSquashNotes(t *testing.T) {
	changes := []model.Change{
		{Revision: model.Revision{Canonical: "0123456789abcdef"}, Author: model.Author{Name: "Ada"}, Message: "Fix bug\n\nmore detail"},
		{Revision: model.Revision{Canonical: "fedcba9876543210"}, Author: model.Author{Name: "Bob"}, Message: "Add feature"},
	}
	out := SquashNotes("", changes)
	assert.Contains(t, out, DefaultSquashHeader)
	assert.Contains(t, out, "0123456789ab Fix bug by Ada")
	assert.Contains(t, out, "fedcba987654 Add feature by Bob")
}

func TestSquashNotesCustomHeader(t *testing.T) {
	out := SquashNotes("Custom header:", nil)
	assert.Contains(t, out, "Custom header:")
}
