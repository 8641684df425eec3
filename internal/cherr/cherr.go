// Package cherr defines the error taxonomy shared by every analyzer layer.
//
// There are exactly three kinds of error the engine ever returns: a bad
// enumerated config value, a bar that breaks the monotone-time contract, and
// a broken internal invariant. Every layer returns its detail as an *Error
// built with New or Wrap; because Error implements Unwrap, a caller that
// wraps it further with fmt.Errorf("...: %w", ...) can still errors.As
// into the underlying Error to recover the Kind.
package cherr

import (
	"errors"
	"fmt"
)

// Kind classifies why an operation failed.
type Kind int

const (
	// InvalidConfig means a constructor received an unknown enumerated option.
	// Fatal: the config could not be built at all.
	InvalidConfig Kind = iota
	// InvalidBar means AddBar was called with a non-monotone timestamp or a
	// non-finite price. The engine state is left unchanged.
	InvalidBar
	// InternalInvariant means a layer detected a broken invariant (e.g. a
	// bsp trying to overwrite relate_bsp1 with a different endpoint). This
	// is a programming defect, not a data problem; the current AddBar call
	// is aborted and the caller must re-initialize the analyzer.
	InternalInvariant
)

func (k Kind) String() string {
	switch k {
	case InvalidConfig:
		return "invalid_config"
	case InvalidBar:
		return "invalid_bar"
	case InternalInvariant:
		return "internal_invariant"
	default:
		return "unknown"
	}
}

// Error is the single error type the engine returns. Component is the
// layer that raised it (e.g. "bi", "seg", "zs", "bsp"), Msg is a short
// human description, and Cause is an optional wrapped error.
type Error struct {
	Kind      Kind
	Component string
	Msg       string
	Cause     error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %s: %v", e.Component, e.Kind, e.Msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s: %s", e.Component, e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is makes errors.Is match on Kind alone: errors.Is(err, cherr.New("",
// cherr.InvalidBar, "")) holds for any InvalidBar Error in err's chain,
// whatever its Component and Msg.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return e.Kind == other.Kind
	}
	return false
}

// New constructs an Error of the given kind.
func New(component string, kind Kind, msg string) *Error {
	return &Error{Component: component, Kind: kind, Msg: msg}
}

// Wrap constructs an Error of the given kind, wrapping cause.
func Wrap(component string, kind Kind, msg string, cause error) *Error {
	return &Error{Component: component, Kind: kind, Msg: msg, Cause: cause}
}

// KindOf extracts the Kind of err if it is (or wraps) a *Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
