// Package errors provides structured error types for critpath.
//
// Errors carry a machine-readable [Code] so the CLI and the HTTP API can
// report failures consistently:
//   - INVALID_*: the caller supplied something the tool cannot use
//   - NOT_FOUND: a referenced task or file does not exist
//   - SUGGESTION_* / NETWORK_*: the external suggestion service failed
//   - INTERNAL_ERROR: unexpected failures
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidInput, "expected a JSON array of tasks")
//	if errors.Is(err, errors.ErrCodeInvalidInput) {
//	    // reject the request
//	}
//
//	err := errors.Wrap(errors.ErrCodeNetwork, origErr, "calling %s", endpoint)
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"
	ErrCodeInvalidFile   Code = "INVALID_FILE"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeTaskNotFound Code = "TASK_NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Suggestion service errors
	ErrCodeNotConfigured Code = "SUGGESTION_NOT_CONFIGURED"
	ErrCodeUnauthorized  Code = "UNAUTHORIZED"
	ErrCodeQuotaExceeded Code = "QUOTA_EXCEEDED"
	ErrCodeNetwork       Code = "NETWORK_ERROR"
	ErrCodeTimeout       Code = "TIMEOUT"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Cause != nil {
			return fmt.Sprintf("%s: %v", e.Message, e.Cause)
		}
		return e.Message
	}
	return err.Error()
}

// HTTPStatus maps an error to the status code the API responds with.
// Errors without a code map to 500.
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidFormat, ErrCodeInvalidFile:
		return http.StatusBadRequest
	case ErrCodeNotFound, ErrCodeTaskNotFound, ErrCodeFileNotFound:
		return http.StatusNotFound
	case ErrCodeNotConfigured:
		return http.StatusServiceUnavailable
	case ErrCodeUnauthorized, ErrCodeQuotaExceeded, ErrCodeNetwork:
		return http.StatusBadGateway
	case ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
