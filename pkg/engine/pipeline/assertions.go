package pipeline

import (
	"os"
	"regexp"

	"github.com/sourcebridge/sourcebridge/pkg/engine/glob"
	"github.com/sourcebridge/sourcebridge/pkg/engine/model"
)

// VerifyMatch asserts that Pattern matches at least one file under Paths
// (or, if Paths is nil, the message). It never changes the tree; a match
// is the "change" that satisfies the no-op policy.
type VerifyMatch struct {
	Pattern string
	Paths   *glob.Glob
	Negate  bool // VerifyNoMatch when true
}

func (t *VerifyMatch) Describe() string {
	if t.Negate {
		return "verify_no_match(" + t.Pattern + ")"
	}
	return "verify_match(" + t.Pattern + ")"
}

func (t *VerifyMatch) Apply(ctx *Context) (Result, error) {
	re, err := regexp.Compile(t.Pattern)
	if err != nil {
		return Result{}, err
	}
	found := false
	if t.Paths == nil {
		found = re.MatchString(ctx.Work.Message)
	} else {
		err := walkFiles(ctx.Work.CheckoutDir, t.Paths, func(relPath, absPath string) error {
			if found {
				return nil
			}
			data, err := os.ReadFile(absPath)
			if err != nil {
				return err
			}
			if re.Match(data) {
				found = true
			}
			return nil
		})
		if err != nil {
			return Result{}, err
		}
	}
	ok := found
	if t.Negate {
		ok = !found
	}
	if !ok {
		return Result{}, &model.ValidationError{Message: "verify_match: pattern " + t.Pattern + " did not match as expected"}
	}
	// An assertion never changes the tree; it reports Changed=true so the
	// no-op policy treats a satisfied assertion as productive, matching
	// spec.md's "assertion transforms" (they terminate the migration on
	// failure rather than participating in no-op accounting).
	return Result{Changed: true}, nil
}

// FailWithNoop terminates the migration with an EmptyChangeError carrying
// Message (spec.md §4.2 "fail-with-noop").
type FailWithNoop struct{ Message string }

func (t *FailWithNoop) Describe() string { return "fail_with_noop" }
func (t *FailWithNoop) Apply(ctx *Context) (Result, error) {
	return Result{}, &model.EmptyChangeError{Message: t.Message}
}
