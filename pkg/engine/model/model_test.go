package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAuthor(t *testing.T) {
	tests := []struct {
		name    string
		literal string
		want    Author
	}{
		{"name and email", "Ada Lovelace <ada@example.com>", Author{Name: "Ada Lovelace", Email: "ada@example.com"}},
		{"name only", "Ada Lovelace", Author{Name: "Ada Lovelace"}},
		{"empty email", "Ada Lovelace <>", Author{Name: "Ada Lovelace", Email: ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseAuthor(tt.literal))
		})
	}
}

func TestAuthorStringRoundTrip(t *testing.T) {
	a := Author{Name: "Ada Lovelace", Email: "ada@example.com"}
	assert.Equal(t, a, ParseAuthor(a.String()))

	nameOnly := Author{Name: "Ada Lovelace"}
	assert.Equal(t, "Ada Lovelace", nameOnly.String())
}

func TestRevisionEqual(t *testing.T) {
	a := Revision{Canonical: "abc123", URL: "https://example.com/a"}
	b := Revision{Canonical: "abc123", URL: "https://example.com/b"}
	c := Revision{Canonical: "def456"}
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestRevisionHasFixedReference(t *testing.T) {
	assert.False(t, Revision{}.HasFixedReference())
	assert.True(t, Revision{FixedReference: "deadbeef"}.HasFixedReference())
}

func TestRevisionLabel(t *testing.T) {
	r := Revision{Labels: map[string][]string{"reviewed-by": {"alice", "bob"}}}
	v, ok := r.Label("reviewed-by")
	require.True(t, ok)
	assert.Equal(t, "alice", v)

	_, ok = r.Label("missing")
	assert.False(t, ok)
}

func TestIsAncestorBatch(t *testing.T) {
	parent := Change{Revision: Revision{Canonical: "p"}}
	child := Change{Revision: Revision{Canonical: "c"}, Parents: []Revision{{Canonical: "p"}}}

	assert.True(t, IsAncestorBatch([]Change{parent, child}))
	assert.False(t, IsAncestorBatch([]Change{child, parent}))
}

func TestLedgerCounts(t *testing.T) {
	var l Ledger
	l.Append(Effect{Type: EffectCreated})
	l.Append(Effect{Type: EffectNoop})
	l.Append(Effect{Type: EffectCreated})

	assert.True(t, l.HasCreated())
	assert.Equal(t, 2, l.CountCreated())
	assert.Len(t, l.All(), 3)
}

func TestEffectIsFailure(t *testing.T) {
	assert.True(t, Effect{Type: EffectError}.IsFailure())
	assert.True(t, Effect{Type: EffectTemporaryError}.IsFailure())
	assert.True(t, Effect{Type: EffectInsufficientApprove}.IsFailure())
	assert.False(t, Effect{Type: EffectCreated}.IsFailure())
	assert.False(t, Effect{Type: EffectNoop}.IsFailure())
}

func TestLedgerAppendAssignsID(t *testing.T) {
	var l Ledger
	l.Append(Effect{Type: EffectCreated})
	l.Append(Effect{Type: EffectCreated, ID: "explicit"})

	effects := l.All()
	assert.NotEmpty(t, effects[0].ID)
	assert.Equal(t, "explicit", effects[1].ID)
	assert.NotEqual(t, effects[0].ID, effects[1].ID)
}

func TestLabelStoreHiddenNeverLeaksToVisible(t *testing.T) {
	s := NewLabelStore()
	s.Set("origin-ref", "abc123")
	s.SetHidden("origin-sha", "deadbeef")

	assert.True(t, s.IsHidden("origin-sha"))
	assert.False(t, s.IsHidden("origin-ref"))

	visible := s.Visible()
	_, present := visible["origin-sha"]
	assert.False(t, present, "hidden label must never appear in Visible()")
	assert.Equal(t, "abc123", visible["origin-ref"])

	v, ok := s.Get("origin-sha")
	require.True(t, ok, "hidden labels remain readable to later transforms")
	assert.Equal(t, "deadbeef", v)
}

func TestLabelStoreSetPromotesOutOfHidden(t *testing.T) {
	s := NewLabelStore()
	s.SetHidden("x", "1")
	s.Set("x", "1")
	assert.False(t, s.IsHidden("x"))
	assert.Equal(t, "1", s.Visible()["x"])
}

func TestLabelStoreDelete(t *testing.T) {
	s := NewLabelStore()
	s.Set("x", "1")
	s.Delete("x")
	_, ok := s.Get("x")
	assert.False(t, ok)
}

func TestNewTransformWork(t *testing.T) {
	w := NewTransformWork("/tmp/checkout", "msg", Author{Name: "a"})
	require.NotNil(t, w.Labels)
	assert.Equal(t, "msg", w.Message)
}

func TestTransformWorkClone(t *testing.T) {
	w := NewTransformWork("/tmp/checkout", "msg", Author{Name: "a"})
	clone := w.Clone()
	clone.Message = "changed"
	assert.Equal(t, "msg", w.Message, "clone must not alias the original's scalar fields")
	assert.Same(t, w.Labels, clone.Labels, "clone shares the label store")
}
