// Package errors provides structured error types for beerxml.
//
// This package defines error codes and types that enable:
//   - Distinguishing malformed documents from unreachable sources
//   - Machine-readable error codes for the HTTP API and logs
//   - User-friendly error messages in the CLI
//   - Error wrapping with context preservation
//
// # Error Codes
//
// The codes map onto the loader's failure taxonomy:
//   - MALFORMED, SOURCE_UNAVAILABLE: document parse failures
//   - BACKEND_UNAVAILABLE: cache backend failures
//   - INVALID_*: input validation failures
//   - NO_RECIPE: a document loaded but contained nothing to show
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidSource, "unsupported scheme: %s", scheme)
//	if errors.Is(err, errors.ErrCodeInvalidSource) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeSourceUnavailable, origErr, "fetch %s", url)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Document errors
	ErrCodeMalformed         Code = "MALFORMED"
	ErrCodeSourceUnavailable Code = "SOURCE_UNAVAILABLE"

	// Cache errors
	ErrCodeBackendUnavailable Code = "BACKEND_UNAVAILABLE"

	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidSource Code = "INVALID_SOURCE"
	ErrCodeInvalidUnits  Code = "INVALID_UNITS"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"

	// Outcome errors
	ErrCodeNoRecipe    Code = "NO_RECIPE"
	ErrCodeRateLimited Code = "RATE_LIMITED"
	ErrCodeInternal    Code = "INTERNAL_ERROR"
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
// It unwraps the error chain looking for the outermost *Error and compares
// its code. Use [Has] to search every *Error in the chain.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// Has reports whether any *Error in err's chain carries code.
func Has(err error, code Code) bool {
	for err != nil {
		if e, ok := err.(*Error); ok && e.Code == code {
			return true
		}
		switch u := err.(type) {
		case interface{ Unwrap() []error }:
			for _, inner := range u.Unwrap() {
				if Has(inner, code) {
					return true
				}
			}
			return false
		case interface{ Unwrap() error }:
			err = u.Unwrap()
		default:
			return false
		}
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
		return e.Message
	}
	return err.Error()
}

// RateLimitedError provides additional information for rate-limited responses.
type RateLimitedError struct {
	RetryAfter int // Seconds to wait before retrying
	Message    string
}

// Error implements the error interface.
func (e *RateLimitedError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited: retry after %d seconds", e.RetryAfter)
	}
	return "rate limited"
}

// Code returns the error code for this error type.
func (e *RateLimitedError) Code() Code {
	return ErrCodeRateLimited
}
