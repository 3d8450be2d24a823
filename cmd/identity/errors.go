package identity

import "errors"

var (
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound reports that no account exists for the lookup key. The
	// auth bridge maps it to the opaque mobile_auth_failed redirect so an
	// unknown address is indistinguishable from any other callback failure.
	ErrNotFound = errors.New("user not found")
)
