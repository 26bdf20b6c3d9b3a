package model

import "github.com/google/uuid"

// EffectType is the kind of outcome produced by a destination write or a
// user record_effect call (spec.md §3, Effect).
type EffectType string

const (
	EffectCreated             EffectType = "CREATED"
	EffectUpdated             EffectType = "UPDATED"
	EffectNoop                EffectType = "NOOP"
	EffectNoopAgainstPending  EffectType = "NOOP_AGAINST_PENDING"
	EffectInsufficientApprove EffectType = "INSUFFICIENT_APPROVALS"
	EffectError               EffectType = "ERROR"
	EffectTemporaryError      EffectType = "TEMPORARY_ERROR"
	EffectStarted             EffectType = "STARTED"
)

// Effect is a structured record of what a migration did, or failed to do,
// for external observers (spec.md §3, §4.6).
type Effect struct {
	ID              string
	Type            EffectType
	Summary         string
	OriginRefs      []Revision
	DestinationRef  string
	Errors          []string
}

// IsFailure reports whether the effect represents a non-success outcome.
func (e Effect) IsFailure() bool {
	switch e.Type {
	case EffectError, EffectTemporaryError, EffectInsufficientApprove:
		return true
	default:
		return false
	}
}

// Ledger accumulates effects for one migration invocation, in production
// order (spec.md §5: "Effects within a change are appended in the order
// they were produced").
type Ledger struct {
	effects []Effect
}

// Append records an effect, assigning it a unique ID if the caller left one
// unset.
func (l *Ledger) Append(e Effect) {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	l.effects = append(l.effects, e)
}

// All returns the accumulated effects in production order.
func (l *Ledger) All() []Effect {
	out := make([]Effect, len(l.effects))
	copy(out, l.effects)
	return out
}

// HasCreated reports whether any CREATED effect was recorded; used by
// idempotence checks (testable property 5).
func (l *Ledger) HasCreated() bool {
	for _, e := range l.effects {
		if e.Type == EffectCreated {
			return true
		}
	}
	return false
}

// CountCreated returns the number of CREATED effects recorded (testable
// property 6: iterative migration of N changes produces exactly N CREATED
// effects).
func (l *Ledger) CountCreated() int {
	n := 0
	for _, e := range l.effects {
		if e.Type == EffectCreated {
			n++
		}
	}
	return n
}
