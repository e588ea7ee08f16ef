// Package registryerrors defines the error taxonomy shared by the registry
// core: not-found, validation, conflict, and internal failures. Handlers map
// these codes onto HTTP statuses; the core itself never retries.
package registryerrors

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error classification.
type Code string

const (
	// CodeNotFound means a referenced vehicle, owner, or plate does not
	// exist or is soft-deleted.
	CodeNotFound Code = "not_found"
	// CodeValidation means a business rule was violated: duplicate chassis
	// or plate, self-transfer, owner/plate mismatch, illegal state
	// transition, missing active ownership.
	CodeValidation Code = "validation"
	// CodeConflict means a concurrent transfer on the same vehicle
	// committed first; the caller should re-fetch state and retry.
	CodeConflict Code = "conflict"
	// CodeInternal covers unexpected storage or infrastructure failures.
	CodeInternal Code = "internal"
)

// Error carries a code alongside a human-readable message.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New creates an error with the given code and message.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf creates an error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) error {
	return &Error{Code: code, Message: message, Err: err}
}

// NotFound creates a not-found error for a named resource and lookup field.
func NotFound(resource, field string, value any) error {
	return Newf(CodeNotFound, "%s not found for %s %v", resource, field, value)
}

// CodeOf returns the code of err, or CodeInternal when err carries none.
func CodeOf(err error) Code {
	var re *Error
	if errors.As(err, &re) {
		return re.Code
	}
	return CodeInternal
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool { return HasCode(err, CodeNotFound) }

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool { return HasCode(err, CodeValidation) }

// IsConflict reports whether err is a conflict error.
func IsConflict(err error) bool { return HasCode(err, CodeConflict) }

// MessageOf returns the message of err without its code prefix, falling
// back to err.Error() for foreign errors.
func MessageOf(err error) string {
	var re *Error
	if errors.As(err, &re) {
		return re.Message
	}
	return err.Error()
}
