package gallops

import "fmt"

// IOErrorKind classifies a Load/Save failure so callers can branch on it
// with errors.As instead of string-matching, the way the teacher's
// internal/doctor checks return typed, categorized errors.
type IOErrorKind string

const (
	// ParseFailure means the on-disk bytes are not valid JSON.
	ParseFailure IOErrorKind = "parse_failure"
	// RoundTripFailure means the document parsed, but re-serializing it
	// with the canonical formatter did not reproduce the on-disk bytes
	// (whitespace drift, key reordering, or alias expansion at rest).
	RoundTripFailure IOErrorKind = "round_trip_failure"
	// SemanticFailure means the document passed parsing and the
	// round-trip check but failed the semantic validator.
	SemanticFailure IOErrorKind = "semantic_failure"
	// IoFailure means a filesystem operation itself failed (read, write,
	// or rename), independent of the document's contents.
	IoFailure IOErrorKind = "io_failure"
)

// IOError is the typed error Load and Save return on failure.
type IOError struct {
	Kind  IOErrorKind
	Path  string
	Msg   string
	Cause error
}

func (e *IOError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Path, e.Msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Msg)
}

func (e *IOError) Unwrap() error { return e.Cause }

func newIOError(kind IOErrorKind, path, msg string, cause error) *IOError {
	return &IOError{Kind: kind, Path: path, Msg: msg, Cause: cause}
}
