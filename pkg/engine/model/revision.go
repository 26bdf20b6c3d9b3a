// Package model defines the immutable data types shared by every stage of a
// migration: revisions, changes, authors, effects, and the mutable
// TransformWork carrier threaded through a single change's transformation.
package model

import "time"

// Revision is an opaque identifier produced by an origin. Two revisions with
// equal canonical form are equal regardless of any other attribute.
type Revision struct {
	// Canonical is the stable string form used for equality and for
	// embedding in destination labels.
	Canonical string

	// ContextReference is the user-facing name that resolved to this
	// revision (a branch, a tag, a PR number). Empty if none was given.
	ContextReference string

	// FixedReference is an immutable pointer form (e.g. a commit hash)
	// used for equality and pin checks. Empty if the origin has none.
	FixedReference string

	// Labels is a multimap of label name to values attached to this
	// revision by the origin (distinct from message labels).
	Labels map[string][]string

	Timestamp time.Time
	URL       string
}

// Equal reports whether two revisions have the same canonical form.
func (r Revision) Equal(other Revision) bool {
	return r.Canonical == other.Canonical
}

// HasFixedReference reports whether the revision carries an immutable
// pointer form (used by expected/pinned fixed-ref filtering, spec.md §4.1).
func (r Revision) HasFixedReference() bool {
	return r.FixedReference != ""
}

// Label returns the first value for name, and whether it was present.
func (r Revision) Label(name string) (string, bool) {
	vals, ok := r.Labels[name]
	if !ok || len(vals) == 0 {
		return "", false
	}
	return vals[0], true
}
