package message

import (
	"regexp"

	"github.com/sourcebridge/sourcebridge/pkg/engine/model"
)

// placeholderPattern matches "${NAME}" placeholders (spec.md §3
// LabelTemplate).
var placeholderPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_-]*)\}`)

// Template is a string with ${NAME} placeholders.
type Template string

// Resolve expands every placeholder using lookup, failing with a
// LabelNotFoundError naming the first missing label.
func (t Template) Resolve(lookup func(name string) (string, bool)) (string, error) {
	var firstErr error
	result := placeholderPattern.ReplaceAllStringFunc(string(t), func(match string) string {
		if firstErr != nil {
			return match
		}
		name := placeholderPattern.FindStringSubmatch(match)[1]
		val, ok := lookup(name)
		if !ok {
			firstErr = &model.LabelNotFoundError{Name: name}
			return match
		}
		return val
	})
	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}
