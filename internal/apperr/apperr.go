// Package apperr defines the error taxonomy shared by all services. Each
// error carries a Kind that the HTTP layer maps to a status code.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error.
type Kind int

const (
	// KindUnknown is the zero value, returned by KindOf for foreign errors.
	KindUnknown Kind = iota
	// KindValidation is bad input shape or range.
	KindValidation
	// KindConflict is a uniqueness violation.
	KindConflict
	// KindNotFound is an unknown record id.
	KindNotFound
	// KindInvariant is an operation that would break an always-true rule,
	// such as deleting the last admin.
	KindInvariant
	// KindAuthentication is a credential mismatch. Unknown user and wrong
	// password are deliberately not distinguished.
	KindAuthentication
	// KindStorage is an I/O failure reading or writing a record store.
	KindStorage
	// KindArtifact is an image or document file failure. Always non-fatal:
	// callers degrade and surface these as warnings.
	KindArtifact
)

// Error is a kinded application error, optionally wrapping a cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of err, or KindUnknown for errors that did not
// originate here.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Validation creates a validation error.
func Validation(format string, args ...any) error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

// Conflict creates a uniqueness-violation error.
func Conflict(format string, args ...any) error {
	return &Error{Kind: KindConflict, Msg: fmt.Sprintf(format, args...)}
}

// NotFound creates an unknown-record error.
func NotFound(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

// Invariant creates an invariant-violation error.
func Invariant(format string, args ...any) error {
	return &Error{Kind: KindInvariant, Msg: fmt.Sprintf(format, args...)}
}

// Authentication creates a credential-mismatch error.
func Authentication(msg string) error {
	return &Error{Kind: KindAuthentication, Msg: msg}
}

// Storage wraps an I/O failure on a record store.
func Storage(err error, format string, args ...any) error {
	return &Error{Kind: KindStorage, Msg: fmt.Sprintf(format, args...), Err: err}
}

// Artifact wraps an image or document file failure.
func Artifact(err error, format string, args ...any) error {
	return &Error{Kind: KindArtifact, Msg: fmt.Sprintf(format, args...), Err: err}
}
