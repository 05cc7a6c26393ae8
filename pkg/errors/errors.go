// Package errors provides structured error types for the blueprint engine.
//
// This package defines error codes and types that enable:
//   - Typed node results (node, pin and link failures) that name the offending element
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages for the CLI, TUI and HTTP API
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Node behaviors report one of four result codes:
//   - NODE_ERROR: the operation itself failed (unsupported parameter, invalid operation)
//   - PIN_ERROR: a required input has no resolvable value
//   - LINK_ERROR: a link references a pin that cannot produce a value
//   - UNKNOWN_ERROR: the behavior panicked
//
// The remaining codes describe misuse of the graph API (type mismatches,
// invalid links, unknown identifiers) and configuration problems.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeNode, "division by zero").WithSource(nodeID)
//	if errors.Is(err, errors.ErrCodeNode) {
//	    // Handle node failure
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidConfig, origErr, "failed to read %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Node result errors
	ErrCodeNode    Code = "NODE_ERROR"
	ErrCodePin     Code = "PIN_ERROR"
	ErrCodeLink    Code = "LINK_ERROR"
	ErrCodeUnknown Code = "UNKNOWN_ERROR"

	// Graph API errors
	ErrCodeTypeMismatch Code = "TYPE_MISMATCH"
	ErrCodeInvalidLink  Code = "INVALID_LINK"
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeDuplicateID  Code = "DUPLICATE_ID"
	ErrCodeNotBuilt     Code = "NOT_BUILT"

	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidName   Code = "INVALID_NAME"
	ErrCodeInvalidPath   Code = "INVALID_PATH"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Source  int64  // ID of the offending node, pin or link (0 if none)
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	prefix := string(e.Code)
	if e.Source != 0 {
		prefix = fmt.Sprintf("%s(#%d)", e.Code, e.Source)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithSource records the ID of the node, pin or link the error is about.
func (e *Error) WithSource(id int64) *Error {
	e.Source = id
	return e
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

// As finds the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
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

// IsResultCode reports whether code is one of the node result codes.
func IsResultCode(code Code) bool {
	switch code {
	case ErrCodeNode, ErrCodePin, ErrCodeLink, ErrCodeUnknown:
		return true
	}
	return false
}
