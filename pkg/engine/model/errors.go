package model

import "fmt"

// CannotResolveRevisionError is fatal and non-retriable: the origin could
// not map a ref to a revision (spec.md §4.1 step 1, §7).
type CannotResolveRevisionError struct {
	Ref string
	Err error
}

func (e *CannotResolveRevisionError) Error() string {
	return fmt.Sprintf("cannot resolve revision %q: %v", e.Ref, e.Err)
}

func (e *CannotResolveRevisionError) Unwrap() error { return e.Err }

// EmptyChangeError signals nothing to migrate for the resolved ref
// (spec.md §4.1 step 3, §7). Message is shown to the user verbatim when it
// originates from a fail_with_noop assertion transform.
type EmptyChangeError struct {
	Message string
}

func (e *EmptyChangeError) Error() string { return e.Message }

// NewEmptyChangeError builds an EmptyChangeError with a formatted message.
func NewEmptyChangeError(format string, args ...any) *EmptyChangeError {
	return &EmptyChangeError{Message: fmt.Sprintf(format, args...)}
}

// ValidationError is fatal for the current change: a transformation no-op
// without ignore_noop, a reversibility failure, a symlink escape, or a hook
// that didn't return a recognized result (spec.md §7).
type ValidationError struct {
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error { return e.Err }

// NewValidationError builds a ValidationError with a formatted message.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// RepoError wraps an I/O failure from the origin or destination. The core
// never retries it automatically: Run returns it when it occurs before
// batch selection, and a batch that fails with it is recorded as an ERROR
// effect.
type RepoError struct {
	Op  string
	Err error
}

func (e *RepoError) Error() string { return fmt.Sprintf("repo error during %s: %v", e.Op, e.Err) }

func (e *RepoError) Unwrap() error { return e.Err }

// NotADestinationFileError lists files a transformation left that do not
// match destination_files (spec.md §7).
type NotADestinationFileError struct {
	Paths []string
}

func (e *NotADestinationFileError) Error() string {
	return fmt.Sprintf("transformation result contains %d path(s) outside destination_files: %v", len(e.Paths), e.Paths)
}

// ChangeRejectedError reports a change the user declined (spec.md §7). No
// engine or CLI code path returns it; the CLI maps it to the command-line
// error exit code.
type ChangeRejectedError struct {
	Reason string
}

func (e *ChangeRejectedError) Error() string { return "change rejected: " + e.Reason }

// CancelledError propagates an external cancellation signal (spec.md §5,
// §7). No retries follow it.
type CancelledError struct{}

func (e *CancelledError) Error() string { return "migration cancelled" }

// LabelNotFoundError is returned by LabelTemplate.Resolve when a referenced
// label is absent (spec.md §3).
type LabelNotFoundError struct {
	Name string
}

func (e *LabelNotFoundError) Error() string { return fmt.Sprintf("label not found: %s", e.Name) }
