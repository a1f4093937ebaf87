// Package common contains shared constants and sentinel errors used across
// MemoBoost components.
package common

// UserIDHeaderName carries the caller's opaque user id on every API request.
const UserIDHeaderName = "X-User-Id"

// AuthorizationHeaderName carries an optional "Bearer <jwt>" access token.
const AuthorizationHeaderName = "Authorization"

// RequestIDHeaderName is echoed back on every response.
const RequestIDHeaderName = "X-Request-Id"
