// Package common defines shared constants and sentinel errors used across
// client and server layers of MemoBoost. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Validation errors: missing fields, self-parenting, reparenting into a descendant.
	ErrorInvalidArgument = errors.New("invalid argument")

	// Duplicate sibling folder name or duplicate account email.
	ErrorConflict = errors.New("conflict")

	// Identity errors. ErrorUnauthenticated means no identity was supplied,
	// ErrorInvalidSession means the supplied identity does not resolve.
	ErrorUnauthenticated = errors.New("authentication required")
	ErrorInvalidSession  = errors.New("invalid session")

	// Credential check failed on login.
	ErrorUnauthorized = errors.New("unauthorized")

	// Persistence layer failure.
	ErrorUnavailable = errors.New("storage unavailable")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Error carries a human readable message together with one of the sentinel
// kinds above. errors.Is(err, kind) keeps working on it.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// NewError builds an *Error of the given kind with the given message.
func NewError(kind error, message string) error {
	return &Error{Kind: kind, Message: message}
}

// Message returns the user-facing message of err: the message of the
// closest *Error in the chain, or the fallback when there is none.
func Message(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return fallback
}
