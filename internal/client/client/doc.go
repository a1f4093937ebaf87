// Package client contains the MemoBoost API client used by the CLI.
//
// # Overview
//
// Client is the transport-agnostic contract; HTTPClient implements it over
// the REST API. Once a session is set, every request carries the user id
// in X-User-Id and the access token as a bearer token.
//
// # Error Handling
//
// Non-2xx answers become *APIError values that unwrap to a sentinel:
//
//	400       ErrInvalidArgument
//	401       ErrSessionExpired (ErrUnauthorized for login and register)
//	404, 405  ErrNotFound
//	409       ErrConflict
//	502-504   ErrUnavailable
//
// Transport failures are reported as ErrUnavailable as well. Match them
// with errors.Is; the server's message is available through Error().
package client
