package pipeline

import "github.com/sourcebridge/sourcebridge/pkg/engine/message"

// SetLabel writes a label into the TransformWork's label store; Hidden
// keeps it out of the final destination message (spec.md §3 "hidden
// labels").
type SetLabel struct {
	Name   string
	Value  string
	Hidden bool
}

func (t *SetLabel) Describe() string { return "set_label(" + t.Name + ")" }
func (t *SetLabel) Apply(ctx *Context) (Result, error) {
	_, existed := ctx.Work.Labels.Get(t.Name)
	if t.Hidden {
		ctx.Work.Labels.SetHidden(t.Name, t.Value)
	} else {
		ctx.Work.Labels.Set(t.Name, t.Value)
	}
	return Result{Changed: true, Detail: boolString(existed, "updated", "created")}, nil
}

func boolString(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}

// DeleteLabel removes a label from the TransformWork's label store.
type DeleteLabel struct{ Name string }

func (t *DeleteLabel) Describe() string { return "delete_label(" + t.Name + ")" }
func (t *DeleteLabel) Apply(ctx *Context) (Result, error) {
	_, existed := ctx.Work.Labels.Get(t.Name)
	ctx.Work.Labels.Delete(t.Name)
	return Result{Changed: existed}, nil
}

// TemplateLabel resolves a LabelTemplate and stores the result under Name.
type TemplateLabel struct {
	Name     string
	Template message.Template
	Hidden   bool
}

func (t *TemplateLabel) Describe() string { return "template_label(" + t.Name + ")" }
func (t *TemplateLabel) Apply(ctx *Context) (Result, error) {
	resolved, err := t.Template.Resolve(ctx.Work.Labels.Resolve)
	if err != nil {
		return Result{}, err
	}
	if t.Hidden {
		ctx.Work.Labels.SetHidden(t.Name, resolved)
	} else {
		ctx.Work.Labels.Set(t.Name, resolved)
	}
	return Result{Changed: true}, nil
}
