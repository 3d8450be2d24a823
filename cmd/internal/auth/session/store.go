package session

import (
	"context"
	"time"
)

// Session mirrors the calldex.sessions row.
type Session struct {
	Token     string
	UserID    string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Store abstracts persistence for session state.
type Store interface {
	// Create inserts a new session row.
	Create(ctx context.Context, in Session) error

	// GetByToken loads a session row by its opaque identifier. Returns
	// ErrSessionNotFound when absent.
	GetByToken(ctx context.Context, token string) (Session, error)
}
