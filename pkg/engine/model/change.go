package model

import (
	"fmt"
	"regexp"
	"time"
)

// Author is a commit author, parsed from the literal "Name <email>". Email
// is the identity key.
type Author struct {
	Name  string
	Email string
}

var authorPattern = regexp.MustCompile(`^(.*?)\s*<([^<>]*)>\s*$`)

// ParseAuthor parses the literal "Name <email>" form used throughout commit
// metadata. A bare string with no angle brackets is treated as a name with
// no email.
func ParseAuthor(literal string) Author {
	if m := authorPattern.FindStringSubmatch(literal); m != nil {
		return Author{Name: m[1], Email: m[2]}
	}
	return Author{Name: literal}
}

// String renders the author back to "Name <email>" form.
func (a Author) String() string {
	if a.Email == "" {
		return a.Name
	}
	return fmt.Sprintf("%s <%s>", a.Name, a.Email)
}

// Change is a single origin commit: immutable once produced by an
// OriginReader.
type Change struct {
	Revision      Revision
	Author        Author
	Message       string
	Timestamp     time.Time
	Labels        map[string][]string
	Parents       []Revision
	Merge         bool
	AffectedFiles []string // nil means "unknown, assume all"
}

// IsAncestorBatch reports whether changes is already a valid parent-first
// (topological) ordering: every change's parents that appear in the batch
// must appear earlier in the slice.
func IsAncestorBatch(changes []Change) bool {
	seen := make(map[string]bool, len(changes))
	for _, c := range changes {
		for _, p := range c.Parents {
			if _, present := indexOf(changes, p.Canonical); present {
				if !seen[p.Canonical] {
					return false
				}
			}
		}
		seen[c.Revision.Canonical] = true
	}
	return true
}

func indexOf(changes []Change, canonical string) (int, bool) {
	for i, c := range changes {
		if c.Revision.Canonical == canonical {
			return i, true
		}
	}
	return -1, false
}
