package pipeline

// Sequence runs a list of transformations in order. Nested inside another
// Sequence, its children still receive flat top-level progress numbering
// (spec.md §4.2 Progress reporting) because Sequence itself never reports;
// only its leaves do.
type Sequence struct {
	Name  string
	Steps []Transformation
}

func NewSequence(name string, steps ...Transformation) *Sequence {
	return &Sequence{Name: name, Steps: steps}
}

func (s *Sequence) Describe() string {
	if s.Name != "" {
		return s.Name
	}
	return "sequence"
}

// Apply runs every step, stopping at the first error.
func (s *Sequence) Apply(ctx *Context) (Result, error) {
	changed := false
	for _, step := range s.Steps {
		res, err := Run(step, ctx)
		if err != nil {
			return Result{Changed: changed}, err
		}
		changed = changed || res.Changed
	}
	return Result{Changed: changed}, nil
}

// Reverse returns a new Sequence running the reverse of each step in
// reverse order, failing if any step is not reversible.
func (s *Sequence) Reverse() (Transformation, error) {
	steps := make([]Transformation, len(s.Steps))
	for i, step := range s.Steps {
		rev, ok := step.(Reversible)
		if !ok {
			return nil, notReversible(step)
		}
		reversed, err := rev.Reverse()
		if err != nil {
			return nil, err
		}
		steps[len(s.Steps)-1-i] = reversed
	}
	return &Sequence{Name: "reverse(" + s.Describe() + ")", Steps: steps}, nil
}

// CountLeaves returns how many top-level leaves (flattening nested
// sequences and ignore-noop wrappers) this transformation contributes to
// progress numbering.
func CountLeaves(t Transformation) int {
	if w, ok := t.(*IgnoreNoop); ok {
		return CountLeaves(w.Inner)
	}
	if seq, ok := t.(*Sequence); ok {
		n := 0
		for _, step := range seq.Steps {
			n += CountLeaves(step)
		}
		return n
	}
	return 1
}
