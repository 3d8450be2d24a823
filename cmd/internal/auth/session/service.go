package session

import (
	"context"
	"strings"
	"time"

	"calldex/cmd/security/token"
)

// Service implements the high-level session operations for calldex.
type Service struct {
	cfg   Config
	store Store
}

// NewService constructs a Service with the provided configuration and store.
func NewService(cfg Config, store Store) *Service {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultConfig().TTL
	}
	if cfg.TokenBytes <= 0 {
		cfg.TokenBytes = DefaultConfig().TokenBytes
	}
	return &Service{cfg: cfg, store: store}
}

// Issue creates a new session row and returns the credential the cookie
// carries. The token is an opaque random identifier.
func (s *Service) Issue(ctx context.Context, now time.Time, userID string) (Session, error) {
	if s == nil || s.store == nil {
		return Session{}, ErrInvalidInput
	}
	if err := ctx.Err(); err != nil {
		return Session{}, err
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Session{}, ErrInvalidInput
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	tok, err := token.NewOpaque(s.cfg.TokenBytes)
	if err != nil {
		return Session{}, err
	}

	sess := Session{
		Token:     tok,
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.TTL),
	}
	if err := s.store.Create(ctx, sess); err != nil {
		return Session{}, err
	}
	return sess, nil
}

// Validate resolves a session credential to the owning user id, honoring
// expiry. It is the server-authoritative check behind the browser-session
// middleware.
func (s *Service) Validate(ctx context.Context, now time.Time, tok string) (string, error) {
	if s == nil || s.store == nil {
		return "", ErrInvalidInput
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	tok = strings.TrimSpace(tok)
	// Basic sanity bounds to avoid pathological inputs.
	if tok == "" || len(tok) > 4096 {
		return "", ErrSessionNotFound
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	row, err := s.store.GetByToken(ctx, tok)
	if err != nil {
		return "", err
	}
	if !row.ExpiresAt.After(now) {
		return "", ErrSessionExpired
	}
	return row.UserID, nil
}

// TTL exposes the configured session lifetime for cookie expiry alignment.
func (s *Service) TTL() time.Duration { return s.cfg.TTL }
