package pipeline

// IgnoreNoop wraps a transformation so that if it (or any of its children)
// is a no-op, it is downgraded to a warning instead of a fatal
// ValidationError (spec.md §4.2 No-op policy).
type IgnoreNoop struct {
	Inner Transformation
}

func (w *IgnoreNoop) Describe() string { return w.Inner.Describe() }

func (w *IgnoreNoop) Apply(ctx *Context) (Result, error) {
	return Run(w.Inner, ctx.WithIgnoreNoop(true))
}

func (w *IgnoreNoop) Reverse() (Transformation, error) {
	rev, ok := w.Inner.(Reversible)
	if !ok {
		return nil, notReversible(w.Inner)
	}
	reversed, err := rev.Reverse()
	if err != nil {
		return nil, err
	}
	return &IgnoreNoop{Inner: reversed}, nil
}
