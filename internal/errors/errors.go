// Package errors defines the structured error taxonomy for API calls.
// Failures are surfaced to the caller unchanged, never recovered locally.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a category of client error.
type ErrorCode string

const (
	// ErrCodeNetwork indicates a transport failure (timeout, connection refused).
	ErrCodeNetwork ErrorCode = "network"
	// ErrCodeDecode indicates a response body that does not match the expected shape.
	ErrCodeDecode ErrorCode = "decode"
	// ErrCodeServer indicates a 4xx/5xx response, surfaced without interpretation.
	ErrCodeServer ErrorCode = "server"
)

// AppError is a structured error with a code, message, optional cause, and,
// for server errors, the HTTP status. It supports errors.Is and errors.As
// through Unwrap.
type AppError struct {
	// Code categorizes the error type
	Code ErrorCode
	// Message is a human-readable error message
	Message string
	// Cause is the underlying error that caused this error (optional)
	Cause error
	// Status is the HTTP status code (set for server errors only)
	Status int
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause, enabling errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Network wraps a transport failure.
func Network(err error, message string) *AppError {
	return &AppError{
		Code:    ErrCodeNetwork,
		Message: message,
		Cause:   err,
	}
}

// Networkf wraps a transport failure with a formatted message.
func Networkf(err error, format string, args ...any) *AppError {
	return Network(err, fmt.Sprintf(format, args...))
}

// Decode wraps a body-shape mismatch.
func Decode(err error, message string) *AppError {
	return &AppError{
		Code:    ErrCodeDecode,
		Message: message,
		Cause:   err,
	}
}

// Server creates an error for a non-2xx response.
func Server(status int, message string) *AppError {
	return &AppError{
		Code:    ErrCodeServer,
		Message: message,
		Status:  status,
	}
}

// isCode checks if an error has a specific error code.
func isCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// IsNetwork checks if an error is a Network error.
func IsNetwork(err error) bool {
	return isCode(err, ErrCodeNetwork)
}

// IsDecode checks if an error is a Decode error.
func IsDecode(err error) bool {
	return isCode(err, ErrCodeDecode)
}

// IsServer checks if an error is a Server error.
func IsServer(err error) bool {
	return isCode(err, ErrCodeServer)
}

// GetCode returns the ErrorCode from an error, or empty string if not an AppError.
func GetCode(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// GetStatus returns the HTTP status from an error, or 0 when absent.
func GetStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	return 0
}
