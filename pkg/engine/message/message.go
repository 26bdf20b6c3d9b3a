// Package message implements ChangeMessage parsing and the label-block
// operations used by message-rewriting transformations (spec.md §3
// ChangeMessage, §4.2 Message transforms).
package message

import (
	"regexp"
	"strings"
)

// Label is one NAME=VALUE (or NAME: VALUE) line in a message's trailing
// label block.
type Label struct {
	Name  string
	Value string
}

// labelLinePattern matches a line of the form "NAME (=|:) VALUE" where NAME
// is an identifier (spec.md §3).
var labelLinePattern = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_-]*)\s*(?:=|:)\s*(.*)$`)

// ChangeMessage is a parsed commit message: body text plus an ordered
// label group at the tail.
type ChangeMessage struct {
	Body   string
	Labels []Label
}

// Parse splits text into a body and a trailing contiguous block of label
// lines, separated from the body by a blank line. Parsing is idempotent:
// Parse(msg.String()) == msg whenever msg already ends in a labels
// paragraph (spec.md §3, testable property 1).
func Parse(text string) ChangeMessage {
	lines := strings.Split(text, "\n")

	// Trim a single trailing empty line produced by a final "\n".
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	labelStart := len(lines)
	for i := len(lines) - 1; i >= 0; i-- {
		if lines[i] == "" {
			break
		}
		if !labelLinePattern.MatchString(lines[i]) {
			break
		}
		labelStart = i
	}

	// A label block must be preceded by a blank line (or be the entire
	// message) to count as the label group; otherwise treat everything
	// as body.
	if labelStart > 0 && labelStart < len(lines) && lines[labelStart-1] != "" {
		labelStart = len(lines)
	}

	var labels []Label
	for _, l := range lines[labelStart:] {
		m := labelLinePattern.FindStringSubmatch(l)
		labels = append(labels, Label{Name: m[1], Value: m[2]})
	}

	bodyLines := lines[:labelStart]
	for len(bodyLines) > 0 && bodyLines[len(bodyLines)-1] == "" {
		bodyLines = bodyLines[:len(bodyLines)-1]
	}

	return ChangeMessage{Body: strings.Join(bodyLines, "\n"), Labels: labels}
}

// String renders the message back to text: the body, a blank line, then
// the label block (if any), each as "NAME=VALUE".
func (m ChangeMessage) String() string {
	var b strings.Builder
	b.WriteString(m.Body)
	if len(m.Labels) > 0 {
		if m.Body != "" {
			b.WriteString("\n\n")
		}
		for i, l := range m.Labels {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString(l.Name)
			b.WriteString("=")
			b.WriteString(l.Value)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// GetLabel returns the first label's value matching name.
func (m ChangeMessage) GetLabel(name string) (string, bool) {
	for _, l := range m.Labels {
		if l.Name == name {
			return l.Value, true
		}
	}
	return "", false
}

// AddLabel appends a label to the block unconditionally (spec.md §3 add).
func (m ChangeMessage) AddLabel(name, value string) ChangeMessage {
	m.Labels = append(append([]Label(nil), m.Labels...), Label{Name: name, Value: value})
	return m
}

// AddOrReplaceLabel replaces the first label named name, or appends one if
// absent.
func (m ChangeMessage) AddOrReplaceLabel(name, value string) ChangeMessage {
	labels := append([]Label(nil), m.Labels...)
	for i, l := range labels {
		if l.Name == name {
			labels[i].Value = value
			m.Labels = labels
			return m
		}
	}
	m.Labels = append(labels, Label{Name: name, Value: value})
	return m
}

// ReplaceIfPresent replaces every label named name with value only if at
// least one such label already exists; otherwise the message is unchanged.
func (m ChangeMessage) ReplaceIfPresent(name, value string) ChangeMessage {
	found := false
	labels := append([]Label(nil), m.Labels...)
	for i, l := range labels {
		if l.Name == name {
			labels[i].Value = value
			found = true
		}
	}
	if !found {
		return m
	}
	m.Labels = labels
	return m
}

// RemoveLabel removes labels named name. If all is false, only the first
// match is removed.
func (m ChangeMessage) RemoveLabel(name string, all bool) ChangeMessage {
	var out []Label
	removed := false
	for _, l := range m.Labels {
		if l.Name == name && (all || !removed) {
			removed = true
			continue
		}
		out = append(out, l)
	}
	m.Labels = out
	return m
}

// AddTextBeforeLabels inserts text as its own paragraph immediately before
// the label block (or at the end of the body if there is no label block).
func (m ChangeMessage) AddTextBeforeLabels(text string) ChangeMessage {
	if m.Body == "" {
		m.Body = text
		return m
	}
	m.Body = m.Body + "\n\n" + text
	return m
}
