// Package errors defines the coded errors shared by the engine, the CLI and
// the HTTP API.
//
// Every failure that comes from a bad request carries an INVALID_* code, so
// callers can tell a rejected chart definition from a broken disk with
// [IsPrecondition]. Missing resources use NOT_FOUND or FILE_NOT_FOUND.
//
// Overflow in the exponential formulas and isopleths truncated to nothing
// are results, not errors, and never carry a code.
//
//	err := errors.New(errors.ErrCodeInvalidDomain, "min pressure %g >= max pressure %g", lo, hi)
//	if errors.Is(err, errors.ErrCodeInvalidDomain) {
//	    // reject before sampling
//	}
//
//	err = errors.Wrap(errors.ErrCodeInvalidSounding, cause, "read %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error category.
type Code string

const (
	ErrCodeInvalidInput      Code = "INVALID_INPUT"
	ErrCodeInvalidDomain     Code = "INVALID_DOMAIN"
	ErrCodeInvalidLevel      Code = "INVALID_LEVEL"
	ErrCodeInvalidFamily     Code = "INVALID_FAMILY"
	ErrCodeInvalidState      Code = "INVALID_STATE"
	ErrCodeInvalidProjection Code = "INVALID_PROJECTION"
	ErrCodeInvalidTransform  Code = "INVALID_TRANSFORM"
	ErrCodeInvalidFormat     Code = "INVALID_FORMAT"
	ErrCodeInvalidSounding   Code = "INVALID_SOUNDING"
	ErrCodeInvalidPath       Code = "INVALID_PATH"

	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

var preconditions = map[Code]bool{
	ErrCodeInvalidInput:      true,
	ErrCodeInvalidDomain:     true,
	ErrCodeInvalidLevel:      true,
	ErrCodeInvalidFamily:     true,
	ErrCodeInvalidState:      true,
	ErrCodeInvalidProjection: true,
	ErrCodeInvalidTransform:  true,
	ErrCodeInvalidFormat:     true,
	ErrCodeInvalidSounding:   true,
	ErrCodeInvalidPath:       true,
}

// Error is a coded error with an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := string(e.Code) + ": " + e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return Wrap(code, nil, format, args...)
}

// Wrap returns an error with the given code that wraps cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// find returns the outermost *Error in the chain.
func find(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// Is reports whether the outermost coded error in err's chain has code.
func Is(err error, code Code) bool {
	return GetCode(err) == code && code != ""
}

// GetCode returns the outermost code in err's chain, or "".
func GetCode(err error) Code {
	if e, ok := find(err); ok {
		return e.Code
	}
	return ""
}

// UserMessage returns the message without the code prefix or cause.
// Uncoded errors are returned as their full string.
func UserMessage(err error) string {
	if e, ok := find(err); ok {
		return e.Message
	}
	return err.Error()
}

// IsPrecondition reports whether err carries any INVALID_* code.
func IsPrecondition(err error) bool {
	return preconditions[GetCode(err)]
}
