package pipeline

import (
	"github.com/sourcebridge/sourcebridge/pkg/engine/message"
)

// messageOp applies an idempotent ChangeMessage transform and records
// whether the rendered message actually changed.
func messageOp(ctx *Context, fn func(message.ChangeMessage) message.ChangeMessage) Result {
	before := ctx.Work.Message
	parsed := message.Parse(before)
	after := fn(parsed).String()
	ctx.Work.Message = after
	return Result{Changed: after != before}
}

// AddLabel appends NAME=VALUE to the message's label block unconditionally.
type AddLabel struct{ Name, Value string }

func (t *AddLabel) Describe() string { return "add_label(" + t.Name + ")" }
func (t *AddLabel) Apply(ctx *Context) (Result, error) {
	return messageOp(ctx, func(m message.ChangeMessage) message.ChangeMessage { return m.AddLabel(t.Name, t.Value) }), nil
}
func (t *AddLabel) Reverse() (Transformation, error) {
	return &RemoveLabel{Name: t.Name, All: false}, nil
}

// AddOrReplaceLabel replaces NAME's value or appends it if absent.
type AddOrReplaceLabel struct{ Name, Value string }

func (t *AddOrReplaceLabel) Describe() string { return "add_or_replace_label(" + t.Name + ")" }
func (t *AddOrReplaceLabel) Apply(ctx *Context) (Result, error) {
	return messageOp(ctx, func(m message.ChangeMessage) message.ChangeMessage {
		return m.AddOrReplaceLabel(t.Name, t.Value)
	}), nil
}

// ReplaceLabel replaces NAME's value only where it is already present.
type ReplaceLabel struct{ Name, Value string }

func (t *ReplaceLabel) Describe() string { return "replace_label(" + t.Name + ")" }
func (t *ReplaceLabel) Apply(ctx *Context) (Result, error) {
	return messageOp(ctx, func(m message.ChangeMessage) message.ChangeMessage {
		return m.ReplaceIfPresent(t.Name, t.Value)
	}), nil
}

// RemoveLabel removes NAME from the message's label block: every
// occurrence when All is set (the config's whole_message option), otherwise
// only the first. Label-like lines in the body text are not removed — see
// spec.md §4.2 remove_label(wholeMessage?).
type RemoveLabel struct {
	Name string
	All  bool
}

func (t *RemoveLabel) Describe() string { return "remove_label(" + t.Name + ")" }
func (t *RemoveLabel) Apply(ctx *Context) (Result, error) {
	return messageOp(ctx, func(m message.ChangeMessage) message.ChangeMessage { return m.RemoveLabel(t.Name, t.All) }), nil
}

// AddTextBeforeLabels inserts Text as its own paragraph before the trailing
// label block.
type AddTextBeforeLabels struct{ Text string }

func (t *AddTextBeforeLabels) Describe() string { return "add_text_before_labels" }
func (t *AddTextBeforeLabels) Apply(ctx *Context) (Result, error) {
	return messageOp(ctx, func(m message.ChangeMessage) message.ChangeMessage { return m.AddTextBeforeLabels(t.Text) }), nil
}

// SetMessage replaces the entire message body, keeping the existing label
// block.
type SetMessage struct{ Text string }

func (t *SetMessage) Describe() string { return "set_message" }
func (t *SetMessage) Apply(ctx *Context) (Result, error) {
	return messageOp(ctx, func(m message.ChangeMessage) message.ChangeMessage {
		m.Body = t.Text
		return m
	}), nil
}

// ReplaceMessage replaces the message wholesale, including labels; an
// empty Text clears the message entirely (spec.md §4.2
// "replace_message('')").
type ReplaceMessage struct{ Text string }

func (t *ReplaceMessage) Describe() string { return "replace_message" }
func (t *ReplaceMessage) Apply(ctx *Context) (Result, error) {
	before := ctx.Work.Message
	ctx.Work.Message = t.Text
	return Result{Changed: t.Text != before}, nil
}

// UseLastChange sets the message to the last (most recent) change's
// message in the current batch.
type UseLastChange struct{}

func (t *UseLastChange) Describe() string { return "use_last_change" }
func (t *UseLastChange) Apply(ctx *Context) (Result, error) {
	changes := ctx.Work.Changes.Current
	if len(changes) == 0 {
		return Result{Changed: false}, nil
	}
	last := changes[len(changes)-1]
	before := ctx.Work.Message
	ctx.Work.Message = last.Message
	ctx.Work.Author = last.Author
	return Result{Changed: before != last.Message}, nil
}

// SquashNotes renders the canonical squash-import summary as the message
// body (spec.md §4.2 squash_notes).
type SquashNotes struct{ Header string }

func (t *SquashNotes) Describe() string { return "squash_notes" }
func (t *SquashNotes) Apply(ctx *Context) (Result, error) {
	before := ctx.Work.Message
	after := message.SquashNotes(t.Header, ctx.Work.Changes.Current)
	ctx.Work.Message = after
	return Result{Changed: before != after}, nil
}

// ExposeLabel promotes a hidden label from ctx.Work.Labels into the
// visible message (spec.md §4.2 expose_label).
type ExposeLabel struct{ Name string }

func (t *ExposeLabel) Describe() string { return "expose_label(" + t.Name + ")" }
func (t *ExposeLabel) Apply(ctx *Context) (Result, error) {
	val, ok := ctx.Work.Labels.Get(t.Name)
	if !ok {
		return Result{Changed: false}, nil
	}
	ctx.Work.Labels.Set(t.Name, val)
	return messageOp(ctx, func(m message.ChangeMessage) message.ChangeMessage {
		return m.AddOrReplaceLabel(t.Name, val)
	}), nil
}
