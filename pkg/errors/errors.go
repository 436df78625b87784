// Package errors defines the coded errors netgrid returns.
//
// Every failure that crosses a package boundary carries a [Code]: the CLI
// prints [UserMessage], the HTTP API maps the code to a status, and callers
// of the layout engine branch on it with [Is], [Has] or [IsFatal].
//
// Codes fall into three groups: INVALID_* for rejected input, the layout
// failures (UNROUTABLE_NET, ESCALATION_EXHAUSTED, GRID_NON_CONVERGENCE), and
// the resource and internal codes.
//
//	err := errors.New(errors.ErrCodeInvalidNetlist, "port %s has no owning cell", name)
//	if errors.Is(err, errors.ErrCodeInvalidNetlist) {
//	    // reject input
//	}
//
//	err = errors.Wrap(errors.ErrCodeEscalationExhausted, cause, "cell %s", name)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput   Code = "INVALID_INPUT"
	ErrCodeInvalidNetlist Code = "INVALID_NETLIST"
	ErrCodeInvalidConfig  Code = "INVALID_CONFIG"
	ErrCodeInvalidFormat  Code = "INVALID_FORMAT"

	// Layout errors
	ErrCodeUnroutable          Code = "UNROUTABLE_NET"
	ErrCodeEscalationExhausted Code = "ESCALATION_EXHAUSTED"
	ErrCodeGridNonConvergence  Code = "GRID_NON_CONVERGENCE"

	// Resource errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
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

// Is reports whether the outermost *Error in err carries code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// Has reports whether any *Error in the chain of err carries code. Unlike
// [Is], which only inspects the outermost *Error, Has keeps unwrapping, so a
// layout failure wrapped by its ancestors' frames is still recognised.
func Has(err error, code Code) bool {
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

// GetCode returns the code of the outermost *Error in err, or "".
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns the message of the outermost *Error without its code,
// or err.Error() for plain errors.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// IsFatal reports whether err is a layout failure that no retry inside the
// engine can recover from.
func IsFatal(err error) bool {
	return Has(err, ErrCodeEscalationExhausted) || Has(err, ErrCodeGridNonConvergence)
}
