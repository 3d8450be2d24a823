package devicetoken

import "errors"

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("device token not found")

	// Verification failures, in the order the checks run.
	ErrMalformedCredential = errors.New("malformed bearer credential")
	ErrInvalidToken        = errors.New("invalid device token")
	ErrExpired             = errors.New("device token expired")
)
