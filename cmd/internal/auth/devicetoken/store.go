package devicetoken

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Platform is the native client platform that owns a device token.
type Platform string

const (
	PlatformAndroid Platform = "android"
	PlatformIOS     Platform = "ios"
)

// ParsePlatform validates a client-supplied platform value.
func ParsePlatform(s string) (Platform, error) {
	switch Platform(strings.ToLower(strings.TrimSpace(s))) {
	case PlatformAndroid:
		return PlatformAndroid, nil
	case PlatformIOS:
		return PlatformIOS, nil
	default:
		return "", fmt.Errorf("%w: platform must be android or ios", ErrInvalidInput)
	}
}

// Token is device-token metadata. The secret exists only client-side; the
// server keeps its hash, and this struct never carries either.
type Token struct {
	ID         string
	UserID     string
	DeviceName *string
	Platform   Platform
	CreatedAt  time.Time
	LastUsedAt *time.Time
	ExpiresAt  time.Time
}

// CreateRecord is a normalized device-token insert payload.
type CreateRecord struct {
	ID         string
	UserID     string
	TokenHash  string
	DeviceName *string
	Platform   Platform
	CreatedAt  time.Time
	ExpiresAt  time.Time
}

// Store is the persistence boundary for device tokens.
type Store interface {
	// Create inserts a new token row.
	Create(ctx context.Context, in CreateRecord) error

	// GetByHash loads a token by its secret hash. Returns ErrNotFound when
	// no row matches.
	GetByHash(ctx context.Context, tokenHash string) (Token, error)

	// Touch updates last_used_at for a token.
	Touch(ctx context.Context, now time.Time, tokenID string) error

	// ListByUser returns the user's tokens ordered by last_used_at DESC.
	ListByUser(ctx context.Context, userID string) ([]Token, error)

	// Delete removes a token only when it exists AND belongs to userID,
	// reporting whether a row was deleted. Not-found and not-owned are
	// indistinguishable to the caller.
	Delete(ctx context.Context, userID, tokenID string) (bool, error)
}
