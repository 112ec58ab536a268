// Package errors provides structured error types for slinktree.
//
// Every failure the loader can report carries a machine-readable [Code], so
// callers can branch on the kind of failure without parsing messages:
//
//	doc, err := r.Resolve(ctx, "model/system_root.xml")
//	if errors.Is(err, errors.ErrCodeCyclicReference) {
//	    var cyc *errors.CycleError
//	    if stderrors.As(err, &cyc) {
//	        fmt.Println(strings.Join(cyc.Chain, " -> "))
//	    }
//	}
//
// # Error Codes
//
// Document-level codes describe a single file (MALFORMED_DOCUMENT,
// SCHEMA_VIOLATION, DUPLICATE_ID). Reference-level codes describe the
// resolved forest (UNRESOLVED_REFERENCE, CYCLIC_REFERENCE). Container codes
// describe binary input (UNSUPPORTED_VERSION, TRUNCATED_OR_CORRUPT).
//
// All of them are terminal: no partial tree is ever returned alongside one.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Document errors
	ErrCodeMalformedDocument Code = "MALFORMED_DOCUMENT"
	ErrCodeSchemaViolation   Code = "SCHEMA_VIOLATION"
	ErrCodeDuplicateID       Code = "DUPLICATE_ID"

	// Reference errors
	ErrCodeUnresolvedReference Code = "UNRESOLVED_REFERENCE"
	ErrCodeCyclicReference     Code = "CYCLIC_REFERENCE"
	ErrCodeResolutionTimeout   Code = "RESOLUTION_TIMEOUT"

	// Container errors
	ErrCodeUnsupportedVersion Code = "UNSUPPORTED_VERSION"
	ErrCodeTruncatedOrCorrupt Code = "TRUNCATED_OR_CORRUPT"

	// Input errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidPath   Code = "INVALID_PATH"
	ErrCodeFileNotFound  Code = "FILE_NOT_FOUND"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"

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
		return e.Message
	}
	return err.Error()
}

// CycleError describes a reference chain that loops back on itself.
// Chain lists canonical paths from the first occurrence of the repeated
// path to the repeated path itself, inclusive on both ends.
type CycleError struct {
	Chain []string
}

// Error implements the error interface.
func (e *CycleError) Error() string {
	return "reference cycle: " + strings.Join(e.Chain, " -> ")
}

// Cycle builds a CYCLIC_REFERENCE error carrying the full chain.
func Cycle(chain []string) *Error {
	c := &CycleError{Chain: append([]string(nil), chain...)}
	return &Error{
		Code:    ErrCodeCyclicReference,
		Message: c.Error(),
		Cause:   c,
	}
}

// ReferenceError describes a subsystem reference whose target is missing.
type ReferenceError struct {
	Path    string // canonical path that could not be read
	BlockID string // SID of the referencing block
	From    string // canonical path of the referencing file
	Err     error
}

// Error implements the error interface.
func (e *ReferenceError) Error() string {
	if e.From == "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("%s (block %s in %s): %v", e.Path, e.BlockID, e.From, e.Err)
}

// Unwrap returns the underlying read error.
func (e *ReferenceError) Unwrap() error { return e.Err }

// Unresolved builds an UNRESOLVED_REFERENCE error for ref.
func Unresolved(ref *ReferenceError) *Error {
	msg := "cannot resolve " + ref.Path
	if ref.BlockID != "" {
		msg = fmt.Sprintf("cannot resolve %s referenced by block %s", ref.Path, ref.BlockID)
	}
	return &Error{
		Code:    ErrCodeUnresolvedReference,
		Message: msg,
		Cause:   ref,
	}
}
