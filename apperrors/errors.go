// Package apperrors holds the typed failures returned by the friendship core.
// Callers match on the kind with errors.Is, e.g. errors.Is(err, apperrors.ErrNotFriends).
package apperrors

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindNotFound         Kind = "NOT_FOUND"
	KindInvalidTarget    Kind = "INVALID_TARGET"
	KindAlreadyFriends   Kind = "ALREADY_FRIENDS"
	KindNotFriends       Kind = "NOT_FRIENDS"
	KindNoSuchRequest    Kind = "NO_SUCH_REQUEST"
	KindDuplicateRequest Kind = "DUPLICATE_REQUEST"
	KindUnauthenticated  Kind = "UNAUTHENTICATED"
	KindInvalidInput     Kind = "INVALID_INPUT"
	KindUsernameTaken    Kind = "USERNAME_TAKEN"
	KindInternal         Kind = "INTERNAL_ERROR"
)

// Sentinels for errors.Is. Only the Kind is compared.
var (
	ErrNotFound         = &Error{Kind: KindNotFound}
	ErrInvalidTarget    = &Error{Kind: KindInvalidTarget}
	ErrAlreadyFriends   = &Error{Kind: KindAlreadyFriends}
	ErrNotFriends       = &Error{Kind: KindNotFriends}
	ErrNoSuchRequest    = &Error{Kind: KindNoSuchRequest}
	ErrDuplicateRequest = &Error{Kind: KindDuplicateRequest}
	ErrUnauthenticated  = &Error{Kind: KindUnauthenticated}
	ErrInvalidInput     = &Error{Kind: KindInvalidInput}
	ErrUsernameTaken    = &Error{Kind: KindUsernameTaken}
	ErrInternal         = &Error{Kind: KindInternal}
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Kind, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(err error, kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal
// for anything untyped.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf returns the client-facing message. Internal details stay in logs.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		if e.Message != "" {
			return e.Message
		}
		return string(e.Kind)
	}
	return "internal server error"
}
