// Package apperr classifies application errors so the HTTP layer can map
// them to a status code without inspecting message text.
package apperr

import (
	"errors"
	"net/http"
)

// Kind identifies the broad class an error belongs to.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalid
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
)

// Error wraps an underlying cause with a Kind the HTTP layer understands.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

func newErr(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

func Invalid(message string) error      { return newErr(KindInvalid, message, nil) }
func Unauthorized(message string) error { return newErr(KindUnauthorized, message, nil) }
func Forbidden(message string) error    { return newErr(KindForbidden, message, nil) }
func NotFound(message string) error     { return newErr(KindNotFound, message, nil) }
func Conflict(message string) error     { return newErr(KindConflict, message, nil) }

// Wrap attaches a Kind to an underlying error, preserving it for errors.Is/As.
func Wrap(kind Kind, message string, cause error) error {
	return newErr(kind, message, cause)
}

// KindOf extracts the Kind carried by err, walking the unwrap chain.
// Errors with no attached Kind report KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// StatusFor maps err to the HTTP status code its Kind implies.
func StatusFor(err error) int {
	switch KindOf(err) {
	case KindInvalid:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden, KindConflict:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func IsNotFound(err error) bool     { return KindOf(err) == KindNotFound }
func IsInvalid(err error) bool      { return KindOf(err) == KindInvalid }
func IsForbidden(err error) bool    { return KindOf(err) == KindForbidden }
func IsConflict(err error) bool     { return KindOf(err) == KindConflict }
func IsUnauthorized(err error) bool { return KindOf(err) == KindUnauthorized }
