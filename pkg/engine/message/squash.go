package message

import (
	"fmt"
	"strings"

	"github.com/sourcebridge/sourcebridge/pkg/engine/model"
)

// DefaultSquashHeader is the header line rendered by SquashNotes when a
// workflow does not override it.
const DefaultSquashHeader = "Imported changes:"

// SquashNotes renders the canonical squash-import summary: a header
// followed by one "  - <rev> <title> by <author>" line per change, oldest
// first (spec.md §4.2 squash_notes).
func SquashNotes(header string, changes []model.Change) string {
	if header == "" {
		header = DefaultSquashHeader
	}
	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n\n")
	for _, c := range changes {
		title := firstLine(c.Message)
		b.WriteString(fmt.Sprintf("  - %s %s by %s\n", shortRevision(c.Revision), title, c.Author.Name))
	}
	return b.String()
}

func firstLine(msg string) string {
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		return msg[:i]
	}
	return msg
}

func shortRevision(r model.Revision) string {
	if len(r.Canonical) > 12 {
		return r.Canonical[:12]
	}
	return r.Canonical
}
