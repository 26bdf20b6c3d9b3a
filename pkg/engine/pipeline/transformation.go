// Package pipeline implements the TransformationPipeline: the ordered tree
// of transformations that runs against a checkout directory, with
// reversal, no-op policy, and dynamic sub-transformations (spec.md §4.2).
package pipeline

import (
	"fmt"

	"github.com/sourcebridge/sourcebridge/pkg/engine/model"
	"github.com/sourcebridge/sourcebridge/pkg/logger"
)

var pipelineLog = logger.New("engine:pipeline")

// Result reports whether a leaf changed anything, for the no-op policy
// (spec.md §4.2 No-op policy).
type Result struct {
	Changed bool
	Detail  string
}

// Progress tracks top-level leaf numbering for the "[i/N] Transform
// <description>" reporting. Sequences nested inside sequences are
// flattened so there is never a nested [i/N] (spec.md §4.2 Progress
// reporting).
type Progress struct {
	total int
	index int
	sink  func(i, n int, description string)
}

// NewProgress creates a progress tracker that reports through sink. sink
// may be nil to disable reporting.
func NewProgress(total int, sink func(i, n int, description string)) *Progress {
	return &Progress{total: total, sink: sink}
}

func (p *Progress) report(description string) {
	if p == nil {
		return
	}
	p.index++
	if p.sink != nil {
		p.sink(p.index, p.total, description)
	}
}

// Context is the single object passed as the first parameter to every
// transformation, carrying the TransformWork plus pipeline-scoped state
// (spec.md §9 "arena+index" design note — transformations carry no
// back-pointer to the runner).
type Context struct {
	Work *model.TransformWork

	// IgnoreNoop downgrades a no-op leaf under this context to a warning
	// instead of a fatal error; set by an enclosing ignore_noop wrapper
	// or a global flag.
	IgnoreNoop bool

	progress *Progress

	// registry resolves transformations by name so a dynamic closure can
	// re-invoke another transformation (spec.md §4.2 Dynamic
	// transformations (b)).
	registry map[string]Transformation

	// Console reports no-op warnings and errors; nil is valid (no
	// reporting).
	Console func(level, message string)
}

// NewContext builds a root pipeline context.
func NewContext(work *model.TransformWork, ignoreNoop bool, registry map[string]Transformation, console func(level, message string)) *Context {
	return &Context{Work: work, IgnoreNoop: ignoreNoop, registry: registry, Console: console}
}

func (c *Context) warn(format string, args ...any) {
	if c.Console != nil {
		c.Console("warning", fmt.Sprintf(format, args...))
	}
}

// WithProgress returns a copy of c reporting through p.
func (c *Context) WithProgress(p *Progress) *Context {
	clone := *c
	clone.progress = p
	return &clone
}

// WithIgnoreNoop returns a copy of c with IgnoreNoop forced to ignore.
func (c *Context) WithIgnoreNoop(ignore bool) *Context {
	clone := *c
	clone.IgnoreNoop = ignore
	return &clone
}

// Invoke re-enters the pipeline machinery for a transformation looked up
// by name, preserving progress counters and no-op accounting (spec.md
// §4.2 Dynamic transformations (b)).
func (c *Context) Invoke(name string) (Result, error) {
	t, ok := c.registry[name]
	if !ok {
		return Result{}, fmt.Errorf("unknown transformation %q", name)
	}
	return Run(t, c)
}

// Transformation is a node in the pipeline tree: a leaf (rename,
// substitution, patch-apply, message-rewrite, label op, archive-extract,
// symlink-create, set-executable) or a composite (sequence, dynamic
// closure, ignore-noop wrapper).
type Transformation interface {
	// Apply performs the transformation against ctx.Work's checkout.
	Apply(ctx *Context) (Result, error)
	// Describe returns a short human-readable description for progress
	// reporting.
	Describe() string
}

// Reversible is implemented by transformations that can produce their own
// inverse (spec.md §4.2 "reverse()").
type Reversible interface {
	Reverse() (Transformation, error)
}

// Run executes t, reporting progress for top-level leaves and enforcing
// the no-op policy: a no-op leaf is fatal unless ctx.IgnoreNoop is set
// (spec.md §4.2 No-op policy).
func Run(t Transformation, ctx *Context) (Result, error) {
	_, isSequence := t.(*Sequence)
	_, isWrapper := t.(*IgnoreNoop)
	if !isSequence && !isWrapper {
		ctx.progress.report(t.Describe())
	}
	res, err := t.Apply(ctx)
	if err != nil {
		return res, err
	}
	if isSequence || isWrapper {
		// Composites: the leaves they ran already applied the no-op policy.
		return res, nil
	}
	if !res.Changed {
		if ctx.IgnoreNoop {
			ctx.warn("transformation %q was a no-op", t.Describe())
			return res, nil
		}
		return res, &model.ValidationError{Message: "transformation \"" + t.Describe() + "\" was a no-op"}
	}
	return res, nil
}
