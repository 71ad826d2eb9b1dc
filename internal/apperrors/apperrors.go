package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies every failure a service operation can return. The HTTP
// layer maps kinds to status codes; services never touch transport codes.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindInvalidState
	KindInvalidTransition
	KindValidation
	KindForbidden
)

// Error is a classified domain error. Operations return exactly one kind
// per failure; infrastructure errors are wrapped as KindInternal.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, format string, args ...interface{}) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// NotFound reports a missing order, restaurant, menu item, discount or user.
func NotFound(format string, args ...interface{}) error {
	return newError(KindNotFound, format, args...)
}

// InvalidState reports a mutation against a non-mutable order status.
func InvalidState(format string, args ...interface{}) error {
	return newError(KindInvalidState, format, args...)
}

// InvalidTransition reports a restaurant status change not permitted by
// the workflow table.
func InvalidTransition(format string, args ...interface{}) error {
	return newError(KindInvalidTransition, format, args...)
}

// Validation reports malformed or inconsistent caller input.
func Validation(format string, args ...interface{}) error {
	return newError(KindValidation, format, args...)
}

// Forbidden reports a caller acting on a resource it does not own.
func Forbidden(format string, args ...interface{}) error {
	return newError(KindForbidden, format, args...)
}

// Internal wraps an infrastructure failure.
func Internal(msg string, err error) error {
	return &Error{Kind: KindInternal, Msg: msg, Err: err}
}

// KindOf returns the kind of err, or KindInternal for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

func IsNotFound(err error) bool          { return is(err, KindNotFound) }
func IsInvalidState(err error) bool      { return is(err, KindInvalidState) }
func IsInvalidTransition(err error) bool { return is(err, KindInvalidTransition) }
func IsValidation(err error) bool        { return is(err, KindValidation) }
func IsForbidden(err error) bool         { return is(err, KindForbidden) }
