package search

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by this package wraps exactly one of them,
// so callers can classify failures with errors.Is.
var (
	// ErrInvalidGeometry is returned for a region with a non-positive height or
	// width, more than MaxRegionArea cells, or a prior outside [0, 1].
	ErrInvalidGeometry = errors.New("invalid geometry")
	// ErrInvalidStrategy is returned for an unknown strategy name or value.
	ErrInvalidStrategy = errors.New("invalid strategy")
	// ErrDegenerateBelief is returned when the Bayesian normalization
	// denominator is zero, or a scenario has no prior mass at all.
	ErrDegenerateBelief = errors.New("degenerate belief state")
	// ErrEmptyScenario is returned when a scenario is built without regions.
	ErrEmptyScenario = errors.New("empty scenario")
	// ErrRegionNotFound is returned for a region index outside the scenario.
	ErrRegionNotFound = errors.New("region not found")
)

// Error carries the operation and a message alongside the error kind.
type Error struct {
	// Op is the operation that failed, e.g. "NewScenario".
	Op string
	// Kind is one of the package sentinel errors.
	Kind error
	// Message describes the offending input.
	Message string
}

// Error returns the string representation of the error.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := e.Kind.Error()
	if e.Message != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Message)
	}
	if e.Op != "" {
		return fmt.Sprintf("search: %s: %s", e.Op, msg)
	}
	return "search: " + msg
}

// Unwrap returns the error kind.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Kind
}

func newError(op string, kind error, format string, args ...interface{}) *Error {
	return &Error{
		Op:      op,
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
}

// IsSearchError checks if an error is of type *Error.
func IsSearchError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
