package runner

import (
	"github.com/sourcebridge/sourcebridge/pkg/engine/message"
	"github.com/sourcebridge/sourcebridge/pkg/engine/model"
)

// ActionResultKind is the recognized return shape of an after-migration or
// after-workflow action hook (spec.md §4.6).
type ActionResultKind string

const (
	ActionSuccess ActionResultKind = "success"
	ActionNoop    ActionResultKind = "noop"
	ActionError   ActionResultKind = "error"
)

// ActionResult is what an Action must return. A hook function that returns
// a value outside {success, noop, error} fails the migration
// (spec.md §4.6).
type ActionResult struct {
	Kind    ActionResultKind
	Message string
}

func Success() ActionResult          { return ActionResult{Kind: ActionSuccess} }
func Noop(msg string) ActionResult   { return ActionResult{Kind: ActionNoop, Message: msg} }
func Failure(msg string) ActionResult { return ActionResult{Kind: ActionError, Message: msg} }

// ActionContext is what an Action observes: the effects produced so far,
// the user-supplied --labels map, side-channel message emitters, and a
// helper to append a new effect (spec.md §4.6).
type ActionContext struct {
	Effects   []model.Effect
	CLILabels map[string]string

	OriginMessage      func(string)
	DestinationMessage func(string)

	labels *model.LabelStore
	ledger *model.Ledger
}

// RecordEffect appends a new effect to the run's ledger, visible to later
// actions via ctx.Effects on the next invocation.
func (c *ActionContext) RecordEffect(summary string, originRefs []model.Revision, destRef string, kind model.EffectType) {
	c.ledger.Append(model.Effect{
		Type:           kind,
		Summary:        summary,
		OriginRefs:     originRefs,
		DestinationRef: destRef,
	})
}

// TemplateFill expands "${LABEL}" placeholders in s using the current
// change's labels (spec.md §4.6 "ctx.template_fill(s)").
func (c *ActionContext) TemplateFill(s string) (string, error) {
	return message.Template(s).Resolve(func(name string) (string, bool) {
		if c.labels == nil {
			return "", false
		}
		return c.labels.Get(name)
	})
}

// Action is an after-migration or after-workflow hook (spec.md §4.1 steps
// 4h, 5).
type Action func(ctx *ActionContext) (ActionResult, error)

func runAction(a Action, ctx *ActionContext) (model.Effect, error) {
	res, err := a(ctx)
	if err != nil {
		return model.Effect{}, model.NewValidationError("action failed: %v", err)
	}
	switch res.Kind {
	case ActionSuccess:
		return model.Effect{}, nil
	case ActionNoop:
		return model.Effect{Type: model.EffectNoop, Summary: res.Message}, nil
	case ActionError:
		return model.Effect{}, model.NewValidationError("%s", res.Message)
	default:
		return model.Effect{}, model.NewValidationError("action returned an unrecognized result")
	}
}
