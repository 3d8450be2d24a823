package handoff

import "errors"

var (
	ErrInvalidInput = errors.New("invalid input")

	// Redemption failures are deliberately distinguishable so the mobile
	// client can show a precise message.
	ErrCodeNotFound = errors.New("handoff code not found")
	ErrCodeUsed     = errors.New("handoff code already used")
	ErrCodeExpired  = errors.New("handoff code expired")
)
