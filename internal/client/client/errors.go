package client

import (
	"errors"
	"net/http"
)

var (
	ErrUnavailable     = errors.New("server unavailable")
	ErrUnauthorized    = errors.New("invalid credentials")
	ErrSessionExpired  = errors.New("session expired, please log in again")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("already exists")
	ErrInvalidArgument = errors.New("invalid input")
	ErrServer          = errors.New("server error")
)

// APIError is a non-2xx answer of the API. It unwraps to one of the
// sentinels above so callers can use errors.Is.
type APIError struct {
	Status  int
	Message string
	Kind    error
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return e.Kind.Error()
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Kind
}

// kindFor maps a response status to a sentinel. credentials selects the
// meaning of 401: a failed login rather than a lost session.
func kindFor(status int, credentials bool) error {
	switch {
	case status == http.StatusBadRequest:
		return ErrInvalidArgument
	case status == http.StatusUnauthorized && credentials:
		return ErrUnauthorized
	case status == http.StatusUnauthorized:
		return ErrSessionExpired
	case status == http.StatusNotFound, status == http.StatusMethodNotAllowed:
		return ErrNotFound
	case status == http.StatusConflict:
		return ErrConflict
	case status == http.StatusServiceUnavailable, status == http.StatusBadGateway, status == http.StatusGatewayTimeout:
		return ErrUnavailable
	default:
		return ErrServer
	}
}
