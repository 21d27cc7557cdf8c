package errors

import (
	"errors"
	"fmt"
)

// Error Handling Guidelines:
//
// For services/repositories/internal packages:
//   - Wrap failures with one of the typed constructors below so callers can
//     branch on the failure class with the Is* helpers
//   - Plain wrapped errors (fmt.Errorf("context: %w", err)) are fine for
//     failures that carry no class of their own
//
// For HTTP REST handlers:
//   - Call Respond(c, err); it maps the failure class to a status code and
//     writes the standard JSON body
//   - Do not log and respond for the same error (avoid double logging)

// Kind classifies a failure for callers and the HTTP layer.
type Kind string

const (
	// bad caller input, never retried
	KindValidation Kind = "validation_error"

	// embedding provider or store unreachable/timeout
	KindExternal Kind = "external_service_error"

	// invariant broken in data about to be written, fatal for the document
	KindIntegrity Kind = "data_integrity_error"
)

// Error is a classified failure. Use the constructors rather than building
// one directly.
type Error struct {
	kind      Kind
	msg       string
	transient bool
	err       error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}

	return e.msg
}

func (e *Error) Unwrap() error {
	return e.err
}

// Kind returns the failure class.
func (e *Error) Kind() Kind {
	return e.kind
}

// creates a validation error from a format string
func Validationf(format string, args ...any) error {
	return &Error{kind: KindValidation, msg: fmt.Sprintf(format, args...)}
}

// wraps a caller-input failure
func Validation(err error, msg string) error {
	return &Error{kind: KindValidation, msg: msg, err: err}
}

// wraps an external collaborator failure that is not worth retrying
func External(err error, msg string) error {
	return &Error{kind: KindExternal, msg: msg, err: err}
}

// creates an external-service error from a format string
func Externalf(format string, args ...any) error {
	return &Error{kind: KindExternal, msg: fmt.Sprintf(format, args...)}
}

// wraps an external collaborator failure that a bounded retry may recover
// from (network errors, timeouts, 5xx, rate limits)
func Transient(err error, msg string) error {
	return &Error{kind: KindExternal, msg: msg, transient: true, err: err}
}

// creates a data-integrity error from a format string
func Integrityf(format string, args ...any) error {
	return &Error{kind: KindIntegrity, msg: fmt.Sprintf(format, args...)}
}

// wraps a data-integrity failure
func Integrity(err error, msg string) error {
	return &Error{kind: KindIntegrity, msg: msg, err: err}
}

// KindOf reports the failure class of err, or "" for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}

	return ""
}

// IsValidation reports whether err is a caller-input failure.
func IsValidation(err error) bool {
	return KindOf(err) == KindValidation
}

// IsExternal reports whether err is an external collaborator failure.
func IsExternal(err error) bool {
	return KindOf(err) == KindExternal
}

// IsIntegrity reports whether err is a data-integrity failure.
func IsIntegrity(err error) bool {
	return KindOf(err) == KindIntegrity
}

// IsTransient reports whether a bounded retry may recover from err.
func IsTransient(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.transient
	}

	return false
}
