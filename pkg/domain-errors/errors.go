// Package domainerrors provides coded errors for domain and service layers.
//
// Stores return sentinel errors (pkg/platform/sentinel) describing
// infrastructure facts; services translate those into coded domain errors
// that transports can map to protocol responses. Codes classify the failure,
// messages stay human-readable.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error.
type Code string

const (
	// CodeValidation marks a missing or invalid required field on a request.
	CodeValidation Code = "validation"
	// CodeInvalidInput marks malformed input rejected at a trust boundary.
	CodeInvalidInput Code = "invalid_input"
	// CodeBadRequest marks a structurally unusable request (e.g. bad JSON).
	CodeBadRequest Code = "bad_request"
	// CodeNotFound marks a lookup for an unknown entity.
	CodeNotFound Code = "not_found"
	// CodeConflict marks a state transition attempted from the wrong state,
	// or a duplicate of an already-applied operation.
	CodeConflict Code = "conflict"
	// CodeInvariantViolation marks a broken domain invariant. Services
	// usually convert this to CodeValidation before it reaches a client.
	CodeInvariantViolation Code = "invariant_violation"
	// CodePricing marks a pricing service failure or invalid priced value.
	CodePricing Code = "pricing"
	// CodeTimeout marks an external call that exceeded its deadline.
	CodeTimeout Code = "timeout"
	// CodeInternal marks persistence or other infrastructure failure.
	CodeInternal Code = "internal"
)

// Error is a coded domain error, optionally wrapping a cause.
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

// New creates a coded error with a human-readable message.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap annotates err with a code and message while preserving the cause for
// errors.Is / errors.As chains. A nil err returns nil.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Err: err}
}

// HasCode reports whether any error in the chain carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	for errors.As(err, &de) {
		if de.Code == code {
			return true
		}
		err = de.Err
		de = nil
	}
	return false
}

// Is is an alias of HasCode kept for readability at call sites
// (dErrors.Is(err, dErrors.CodeConflict)).
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// IsCoded reports whether err carries a domain code at all. Use it to pass
// already-classified errors through before applying a fallback code; CodeOf
// cannot serve there because it folds uncoded errors into CodeInternal.
func IsCoded(err error) bool {
	var de *Error
	return errors.As(err, &de)
}

// CodeOf returns the outermost code in the chain, or CodeInternal when the
// error carries no code.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// MessageOf returns the outermost coded message, or the raw error text when
// the error carries no code.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
