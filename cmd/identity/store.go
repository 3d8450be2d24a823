package identity

import (
	"context"
	"time"
)

// User is the calldex security principal.
type User struct {
	ID          string
	Email       string
	DisplayName *string
	CreatedAt   time.Time
}

// Store is the identity persistence boundary.
type Store interface {
	// GetByEmail resolves a user by normalized email. Returns ErrNotFound
	// when no account exists for the address.
	GetByEmail(ctx context.Context, email string) (User, error)

	// GetByID loads a user by id. Returns ErrNotFound when absent.
	GetByID(ctx context.Context, userID string) (User, error)
}
