// Package errors provides structured error types for tilelabel.
//
// Region processing fails in a small number of well-known ways. Each one has
// a code so the region driver can log a one-line diagnostic, skip the region
// and keep going, while tests can assert on the failure category.
//
// # Error Codes
//
//   - MISSING_INPUT: geometry file absent, or no imagery tiles for a region
//   - MALFORMED_GRAPH: a line feature lacks a usable src/dst identifier
//   - EMPTY_GRAPH: the geometry file parsed but yielded no edges
//   - INVALID_INPUT: bad options (tile size, region names, directories)
//   - INTERNAL_ERROR: unexpected failures such as label writes
//
// # Usage
//
//	err := errors.New(errors.ErrCodeEmptyGraph, "no edges in %s", path)
//	if errors.Is(err, errors.ErrCodeEmptyGraph) {
//	    // skip region
//	}
//
//	err := errors.Wrap(errors.ErrCodeMissingInput, origErr, "geometry file %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Region input errors
	ErrCodeMissingInput   Code = "MISSING_INPUT"
	ErrCodeMalformedGraph Code = "MALFORMED_GRAPH"
	ErrCodeEmptyGraph     Code = "EMPTY_GRAPH"

	// Option validation errors
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidRegion   Code = "INVALID_REGION"
	ErrCodeInvalidTileSize Code = "INVALID_TILE_SIZE"

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

// IsRegionSkip reports whether err is one of the region-level failures that
// the driver logs and skips instead of aborting the run.
func IsRegionSkip(err error) bool {
	switch GetCode(err) {
	case ErrCodeMissingInput, ErrCodeMalformedGraph, ErrCodeEmptyGraph:
		return true
	}
	return false
}
