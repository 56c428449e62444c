// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: AaronLi

package blackjackvm

import (
	"errors"
	"fmt"
)

// ErrorCode represents specific error categories for protocol operations.
type ErrorCode int

const (
	// ErrMalformedFrame indicates an encoded frame that cannot be decoded.
	ErrMalformedFrame ErrorCode = iota
	// ErrConnection indicates a failure of the underlying byte stream.
	ErrConnection
	// ErrUnknownCommand indicates an input line with an unrecognised leading token.
	ErrUnknownCommand
	// ErrMalformedCommand indicates an input line with missing or non-numeric fields.
	ErrMalformedCommand
	// ErrTruncatedSnapshot indicates a snapshot line that ended before its declared fields.
	ErrTruncatedSnapshot
	// ErrInconsistentMoveSet indicates move tokens that disagree on the active hand.
	ErrInconsistentMoveSet
	// ErrMalformedSnapshot indicates any other structural snapshot violation.
	ErrMalformedSnapshot
	// ErrRejected indicates the game engine answered with a failure status.
	ErrRejected
	// ErrTimeout indicates an idle or I/O deadline expired.
	ErrTimeout
	// ErrValidation indicates input validation failure.
	ErrValidation
	// ErrConfiguration indicates a configuration error.
	ErrConfiguration
)

// String returns the string representation of the error code.
func (e ErrorCode) String() string {
	switch e {
	case ErrMalformedFrame:
		return "malformed frame"
	case ErrConnection:
		return "connection"
	case ErrUnknownCommand:
		return "unknown command"
	case ErrMalformedCommand:
		return "malformed command"
	case ErrTruncatedSnapshot:
		return "truncated snapshot"
	case ErrInconsistentMoveSet:
		return "inconsistent move set"
	case ErrMalformedSnapshot:
		return "malformed snapshot"
	case ErrRejected:
		return "rejected"
	case ErrTimeout:
		return "timeout"
	case ErrValidation:
		return "validation"
	case ErrConfiguration:
		return "configuration"
	default:
		return "unknown"
	}
}

// Error provides structured error information with operation context,
// error codes, and message wrapping.
type Error struct {
	Op      string
	Code    ErrorCode
	Message string
	Err     error
}

// Error returns the formatted error message.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("blackjackvm %s: %s: %s: %v", e.Code.String(), e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("blackjackvm %s: %s: %s", e.Code.String(), e.Op, e.Message)
}

// Unwrap returns the underlying error for error chain unwrapping.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether this error matches the target error.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return e.Code == other.Code && e.Op == other.Op
	}
	return false
}

// NewError creates a new Error with the specified parameters.
func NewError(op string, code ErrorCode, message string, err error) *Error {
	return &Error{
		Op:      op,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// WrapError wraps an existing error with protocol context.
// Returns nil if the input error is nil.
func WrapError(op string, code ErrorCode, message string, err error) error {
	if err == nil {
		return nil
	}
	return NewError(op, code, message, err)
}

// IsError checks if an error is an *Error and optionally matches specific codes.
// If no codes are provided, returns true for any *Error.
func IsError(err error, code ...ErrorCode) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}

	if len(code) == 0 {
		return true
	}

	for _, c := range code {
		if e.Code == c {
			return true
		}
	}
	return false
}

// GetErrorCode extracts the error code from an *Error.
// Returns -1 if the error is not an *Error.
func GetErrorCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrorCode(-1)
}

// ErrDisplayClosed is returned by a Display when the user closed it.
var ErrDisplayClosed = errors.New("display closed")

func malformedFrameError(op, message string, err error) error {
	return NewError(op, ErrMalformedFrame, message, err)
}

func connectionError(op, message string, err error) error {
	return NewError(op, ErrConnection, message, err)
}

func unknownCommandError(op, message string, err error) error {
	return NewError(op, ErrUnknownCommand, message, err)
}

func malformedCommandError(op, message string, err error) error {
	return NewError(op, ErrMalformedCommand, message, err)
}

func truncatedSnapshotError(op, message string, err error) error {
	return NewError(op, ErrTruncatedSnapshot, message, err)
}

func inconsistentMoveSetError(op, message string, err error) error {
	return NewError(op, ErrInconsistentMoveSet, message, err)
}

func malformedSnapshotError(op, message string, err error) error {
	return NewError(op, ErrMalformedSnapshot, message, err)
}

func rejectedError(op, message string, err error) error {
	return NewError(op, ErrRejected, message, err)
}

func timeoutError(op, message string, err error) error {
	return NewError(op, ErrTimeout, message, err)
}

func validationError(op, message string, err error) error {
	return NewError(op, ErrValidation, message, err)
}

func configurationError(op, message string, err error) error {
	return NewError(op, ErrConfiguration, message, err)
}
