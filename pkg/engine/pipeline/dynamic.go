package pipeline

import "github.com/sourcebridge/sourcebridge/pkg/engine/model"

// Closure is the capability surface exposed to a dynamic transformation: it
// can read/write labels (including hidden ones), consult the change
// batches, and re-invoke other named transformations. It stands in for the
// out-of-scope user closure language (spec.md §4.2 Dynamic
// transformations, §9 "User closures").
type Closure func(ctx *Context) (Result, error)

// Dynamic wraps a user closure as a Transformation. Errors from the
// closure are wrapped as ValidationError (spec.md §4.2).
type Dynamic struct {
	Name string
	Fn   Closure
}

func NewDynamic(name string, fn Closure) *Dynamic {
	return &Dynamic{Name: name, Fn: fn}
}

func (d *Dynamic) Describe() string { return d.Name }

func (d *Dynamic) Apply(ctx *Context) (Result, error) {
	res, err := d.Fn(ctx)
	if err != nil {
		return res, &model.ValidationError{Message: "dynamic transformation \"" + d.Name + "\" failed", Err: err}
	}
	return res, nil
}

// Dynamic transformations are not reversible unless the closure author
// supplies an explicit reverse via NewDynamicPair.
type dynamicPair struct {
	*Dynamic
	reverse *Dynamic
}

// NewDynamicPair builds a dynamic transformation together with its
// explicit reverse closure.
func NewDynamicPair(name string, forward, reverse Closure) Transformation {
	return &dynamicPair{Dynamic: &Dynamic{Name: name, Fn: forward}, reverse: &Dynamic{Name: "reverse(" + name + ")", Fn: reverse}}
}

func (p *dynamicPair) Reverse() (Transformation, error) {
	return p.reverse, nil
}
