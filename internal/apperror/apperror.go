// Package apperror defines the error kinds shared by the client, the history store
// and the mock server.
//
// Every AppError carries a sentinel (its kind) and, optionally, the underlying cause.
// errors.Is matches either of them, so callers can test for the kind
// (errors.Is(err, ErrTransport)) or for the concrete failure
// (errors.Is(err, context.DeadlineExceeded)) on the same value.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrTransport        = errors.New("transport failure")
	ErrDecode           = errors.New("decode failure")
	ErrUnexpectedStatus = errors.New("unexpected status")
	ErrNotFound         = errors.New("not found")
	ErrValidation       = errors.New("validation error")
	ErrUnauthorized     = errors.New("unauthorized")
)

type AppError struct {
	Err     error  // sentinel kind
	Cause   error  // underlying failure, may be nil
	Message string // human-readable message
	Field   string // optional: field causing a validation error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

// Transport reports that an exchange with the remote service could not complete.
func Transport(op string, cause error) *AppError {
	return &AppError{
		Err:     ErrTransport,
		Cause:   cause,
		Message: op,
	}
}

// Decode reports a response body that does not match the expected schema.
func Decode(what string, cause error) *AppError {
	return &AppError{
		Err:     ErrDecode,
		Cause:   cause,
		Message: fmt.Sprintf("decoding %s", what),
	}
}

func UnexpectedStatus(status int, body string) *AppError {
	return &AppError{
		Err:     ErrUnexpectedStatus,
		Message: fmt.Sprintf("unexpected status %d: %s", status, body),
	}
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}
