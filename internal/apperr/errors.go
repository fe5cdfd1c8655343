// Package apperr defines the error kinds surfaced to API callers.
package apperr

import (
	"errors"
	"fmt"
)

// Error kinds, checked with errors.Is
var (
	ErrValidation       = errors.New("validation error")
	ErrNotFound         = errors.New("not found")
	ErrUnsupportedMedia = errors.New("unsupported media type")
)

// Error carries the operation that failed and a message safe to show to the caller
type Error struct {
	Op      string
	Kind    error
	Message string
	Err     error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// Unwrap returns the underlying error, falling back to the kind
func (e *Error) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is matches against the kind as well as the wrapped error
func (e *Error) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	return e.Err != nil && errors.Is(e.Err, target)
}

// Validation returns a validation error for op
func Validation(op, message string) *Error {
	return &Error{Op: op, Kind: ErrValidation, Message: message}
}

// NotFound returns a not-found error for op
func NotFound(op, message string) *Error {
	return &Error{Op: op, Kind: ErrNotFound, Message: message}
}

// UnsupportedMedia returns an unsupported-media error for op
func UnsupportedMedia(op, message string) *Error {
	return &Error{Op: op, Kind: ErrUnsupportedMedia, Message: message}
}

// Message returns the caller-facing message of err, if it carries one
func Message(err error) (string, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Message, true
	}
	return "", false
}
