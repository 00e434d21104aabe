// Package common defines the sentinel errors shared by the service, transport
// and client layers. Callers match them with errors.Is; the wrapped message
// carries the text shown to the user.
package common

import (
	"errors"
	"fmt"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrInternal        = errors.New("internal error")
)

// Error wraps kind with a user-facing message.
func Error(kind error, msg string) error {
	return &messageError{kind: kind, msg: msg}
}

// Errorf is Error with formatting.
func Errorf(kind error, format string, args ...any) error {
	return Error(kind, fmt.Sprintf(format, args...))
}

type messageError struct {
	kind error
	msg  string
}

func (e *messageError) Error() string { return e.msg }

func (e *messageError) Unwrap() error { return e.kind }

// Message returns the user-facing text of err. Errors without one fall back
// to a generic text so internal details never leak.
func Message(err error) string {
	var me *messageError
	if errors.As(err, &me) {
		return me.msg
	}
	switch {
	case errors.Is(err, ErrValidation):
		return "Invalid request"
	case errors.Is(err, ErrUnauthenticated):
		return "Authentication required"
	case errors.Is(err, ErrForbidden):
		return "Forbidden"
	case errors.Is(err, ErrNotFound):
		return "Not found"
	case errors.Is(err, ErrConflict):
		return "Conflict"
	default:
		return "Internal server error"
	}
}
