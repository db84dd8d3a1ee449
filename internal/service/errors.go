package service

import (
	"errors"
	"fmt"

	"github.com/chenterphai/storefront-api/internal/utils"
)

// Kind classifies a failure so the transport can map it to a protocol
// status without inspecting messages.
type Kind string

const (
	KindInvalidInput    Kind = "INVALID_INPUT"
	KindConflict        Kind = "CONFLICT"
	KindUnauthorized    Kind = "UNAUTHORIZED"
	KindForbidden       Kind = "FORBIDDEN"
	KindNotFound        Kind = "NOT_FOUND"
	KindInvalidDuration Kind = "INVALID_DURATION"
	KindInvalidToken    Kind = "INVALID_TOKEN"
	KindInternal        Kind = "INTERNAL"
)

// Error is the single error type returned by services.  Msg is safe to
// show to clients; Err keeps the underlying cause for logs and errors.Is.
type Error struct {
	Kind  Kind
	Field string
	Msg   string
	Err   error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of err.  Codec and duration sentinels that
// escaped without being wrapped keep their own kinds; any other foreign
// error is KindInternal.
func KindOf(err error) Kind {
	var e *Error
	switch {
	case errors.As(err, &e):
		return e.Kind
	case errors.Is(err, utils.ErrInvalidToken):
		return KindInvalidToken
	case errors.Is(err, utils.ErrInvalidDuration):
		return KindInvalidDuration
	}
	return KindInternal
}

func newErr(kind Kind, msg string) *Error { return &Error{Kind: kind, Msg: msg} }

func InvalidInput(field, msg string) *Error {
	return &Error{Kind: KindInvalidInput, Field: field, Msg: msg}
}

func Conflict(field, msg string) *Error {
	return &Error{Kind: KindConflict, Field: field, Msg: msg}
}

func Unauthorized(msg string) *Error { return newErr(KindUnauthorized, msg) }

func Forbidden(msg string) *Error { return newErr(KindForbidden, msg) }

func NotFound(msg string) *Error { return newErr(KindNotFound, msg) }

// Internal wraps an unexpected failure.  The client sees only msg.
func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Msg: msg, Err: err}
}
