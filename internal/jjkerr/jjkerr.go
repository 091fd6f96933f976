// Package jjkerr defines the error taxonomy shared across Job Jockey's
// packages, so callers (in particular the cobra command layer) can map a
// failure to an exit code and a stable diagnostic prefix without string
// matching.
package jjkerr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure for exit-code and presentation purposes.
type Kind string

const (
	// InvalidIdentifier means a Firemark/Coronet string failed to parse.
	InvalidIdentifier Kind = "invalid_identifier"
	// InvalidArgument means a command argument was malformed or violated a
	// precondition (e.g. non-kebab silks, bad date, conflicting flags).
	InvalidArgument Kind = "invalid_argument"
	// EntityNotFound means a referenced Heat or Pace does not exist.
	EntityNotFound Kind = "entity_not_found"
	// StateConflict means the requested mutation is illegal given current
	// state (e.g. draft to the same heat, mutating a retired heat).
	StateConflict Kind = "state_conflict"
	// InvariantViolation means loaded or about-to-be-saved data failed a
	// structural invariant check.
	InvariantViolation Kind = "invariant_violation"
	// LockHeld means the VCS-ref lock (or a local flock) is already held.
	LockHeld Kind = "lock_held"
	// IoFailure means a filesystem operation failed.
	IoFailure Kind = "io_failure"
	// ExternalFailure means a subprocess (git, or an external assistant)
	// failed or returned an unexpected result.
	ExternalFailure Kind = "external_failure"
)

// Error is a Kind-tagged error with an optional wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// New constructs an Error with no wrapped cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf constructs an Error with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap constructs an Error carrying cause as its Unwrap target.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// Wrapf constructs an Error with a formatted message and a wrapped cause.
func Wrapf(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// KindOf extracts the Kind from err if it is (or wraps) a *Error, returning
// ok=false otherwise.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if !errors.As(err, &e) {
		return "", false
	}
	return e.Kind, true
}
