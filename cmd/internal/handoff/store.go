package handoff

import (
	"context"
	"time"
)

// CreateRecord is a normalized handoff-code insert payload.
type CreateRecord struct {
	Code      string
	UserID    string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Store is the persistence boundary for handoff codes.
type Store interface {
	// Create inserts a new unused code row.
	Create(ctx context.Context, in CreateRecord) error

	// Redeem atomically flips used=true for an unused, unexpired code and
	// returns the owning user id. The check-and-flip MUST be a single
	// conditional update so two concurrent redemptions of the same code
	// cannot both succeed. Failures are reported as ErrCodeNotFound,
	// ErrCodeUsed, or ErrCodeExpired.
	Redeem(ctx context.Context, now time.Time, code string) (userID string, err error)

	// DeleteSpent removes this user's codes that are used or expired.
	DeleteSpent(ctx context.Context, now time.Time, userID string) (int64, error)
}
