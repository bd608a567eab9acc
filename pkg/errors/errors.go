// Package errors provides structured error types for soup.
//
// Every failure raised by the manifest model, the reference parsers, the
// recipe view, the graph builder and the package provider carries a
// machine-readable [Code]. Callers branch on the code with [Is] instead of
// matching message text:
//
//	rec, err := recipe.FromDocument(doc)
//	if errors.Is(err, errors.ErrCodeMissingRequiredProperty) {
//	    // the manifest lacks Name or Language
//	}
//
// Existing errors are wrapped with [Wrap] so that errors.Is/As from the
// standard library still reach the underlying cause:
//
//	err := errors.Wrap(errors.ErrCodeRecipeLoadFailure, ioErr, "load %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Document model errors
	ErrCodeMissingProperty Code = "MISSING_PROPERTY"
	ErrCodeTypeMismatch    Code = "TYPE_MISMATCH"
	ErrCodeInvalidSyntax   Code = "INVALID_SYNTAX"

	// Recipe and reference errors
	ErrCodeMissingRequiredProperty Code = "MISSING_REQUIRED_PROPERTY"
	ErrCodeInvalidLanguage         Code = "INVALID_LANGUAGE_REFERENCE"
	ErrCodeInvalidPackage          Code = "INVALID_PACKAGE_REFERENCE"
	ErrCodeInvalidVersion          Code = "INVALID_VERSION"
	ErrCodeInvalidOperation        Code = "INVALID_OPERATION"
	ErrCodeRecipeLoadFailure       Code = "RECIPE_LOAD_FAILURE"

	// Lookup errors
	ErrCodeNotFound Code = "NOT_FOUND"

	// Generic errors
	ErrCodeInvalidInput Code = "INVALID_INPUT"
	ErrCodeInternal     Code = "INTERNAL_ERROR"
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
// It unwraps the error chain looking for an *Error with a matching code,
// so a RECIPE_LOAD_FAILURE wrapping an INVALID_SYNTAX matches both codes.
func Is(err error, code Code) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Cause
	}
	return false
}

// GetCode extracts the outermost error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message (and cause) without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Cause != nil {
			return e.Message + ": " + UserMessage(e.Cause)
		}
		return e.Message
	}
	return err.Error()
}
