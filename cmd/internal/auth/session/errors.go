package session

import "errors"

var (
	// ErrConfig indicates invalid session configuration.
	ErrConfig = errors.New("invalid session config")

	// ErrInvalidInput indicates a malformed argument.
	ErrInvalidInput = errors.New("invalid input")

	// ErrSessionNotFound indicates no session matches the credential.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionExpired indicates the session exists but is past expiry.
	ErrSessionExpired = errors.New("session expired")
)
