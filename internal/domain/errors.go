// internal/domain/errors.go
package domain

import "errors"

// ErrSessionNotFound is returned by session lookups when no live session matches the
// presented access token. Callers treat it as a stale or revoked credential and ask the
// user to log in again.
var ErrSessionNotFound = errors.New("session not found")

// ErrNotFound is returned by repositories when a record does not exist.
var ErrNotFound = errors.New("not found")
