package types

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is the kind shared by all ValidationError values.
	ErrValidation = errors.New("validation failed")

	// ErrUnsupportedTransition is the kind shared by all UnsupportedTransitionError values.
	ErrUnsupportedTransition = errors.New("unsupported transition")

	// ErrInvalidResolution is the kind shared by all InvalidResolutionError values.
	ErrInvalidResolution = errors.New("invalid resolution")
)

// ValidationError reports a malformed constructor or command argument.
// It is always raised before anything is mutated.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrValidation.Error(), e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", ErrValidation.Error(), e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalidf(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// UnsupportedTransitionError reports a well-formed command offered to a state
// that has no transition for it.
type UnsupportedTransitionError struct {
	Action Action
	State  State
	// Resolution is set when the action is legal but the resolution guard rejected it.
	Resolution Resolution
}

func (e *UnsupportedTransitionError) Error() string {
	if e == nil {
		return ""
	}
	if e.Resolution != ResolutionNone || (e.Action == ActionReopen && e.State == StateClosed) {
		res := string(e.Resolution)
		if res == "" {
			res = "none"
		}
		return fmt.Sprintf("%s: cannot %s from %s with resolution %s",
			ErrUnsupportedTransition.Error(), e.Action, e.State, res)
	}
	return fmt.Sprintf("%s: cannot %s from %s", ErrUnsupportedTransition.Error(), e.Action, e.State)
}

func (e *UnsupportedTransitionError) Unwrap() error { return ErrUnsupportedTransition }

// InvalidResolutionError reports a resolution label outside the known set.
type InvalidResolutionError struct {
	Label string
}

func (e *InvalidResolutionError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %q", ErrInvalidResolution.Error(), e.Label)
}

func (e *InvalidResolutionError) Unwrap() error { return ErrInvalidResolution }
