// Package handoff bridges a browser-completed login to the mobile web view.
//
// A handoff code is a short-lived, single-use secret: issued after the
// identity provider verifies the user, carried once through a custom-scheme
// redirect, and exchanged exactly once for a session. Codes are stored as
// the literal value rather than a hash; the 5-minute lifetime and single
// use keep the at-rest exposure window narrow.
package handoff

import (
	"context"
	"strings"
	"time"

	"calldex/cmd/security/token"
)

const (
	defaultCodeBytes = 32
	defaultTTL       = 5 * time.Minute
)

// Code represents a handoff-code row.
type Code struct {
	Code      string
	UserID    string
	CreatedAt time.Time
	ExpiresAt time.Time
	Used      bool
}

// IssueInput describes code issuance.
type IssueInput struct {
	UserID string
	TTL    time.Duration
	Now    time.Time
}

// Service manages handoff code issuance, redemption, and housekeeping.
type Service struct {
	store     Store
	codeBytes int
}

// Option configures the Service.
type Option func(*Service) error

// WithCodeBytes sets the entropy of generated codes in bytes.
func WithCodeBytes(n int) Option {
	return func(s *Service) error {
		if n <= 0 {
			return ErrInvalidInput
		}
		s.codeBytes = n
		return nil
	}
}

// NewService constructs a Service with safe defaults.
func NewService(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, ErrInvalidInput
	}
	s := &Service{store: store, codeBytes: defaultCodeBytes}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Issue creates a new single-use code for userID and returns it.
func (s *Service) Issue(ctx context.Context, in IssueInput) (Code, error) {
	if s == nil || s.store == nil {
		return Code{}, ErrInvalidInput
	}
	if err := ctx.Err(); err != nil {
		return Code{}, err
	}
	userID := strings.TrimSpace(in.UserID)
	if userID == "" {
		return Code{}, ErrInvalidInput
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	ttl := in.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}

	value, err := token.NewOpaque(s.codeBytes)
	if err != nil {
		return Code{}, err
	}

	rec := CreateRecord{
		Code:      value,
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if err := s.store.Create(ctx, rec); err != nil {
		return Code{}, err
	}

	return Code{
		Code:      rec.Code,
		UserID:    rec.UserID,
		CreatedAt: rec.CreatedAt,
		ExpiresAt: rec.ExpiresAt,
	}, nil
}

// Redeem exchanges a code for the owning user id, consuming it.
// Exactly one of two concurrent redemptions succeeds; the loser sees
// ErrCodeUsed.
func (s *Service) Redeem(ctx context.Context, now time.Time, code string) (string, error) {
	if s == nil || s.store == nil {
		return "", ErrInvalidInput
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	code = strings.TrimSpace(code)
	if code == "" || len(code) > 512 {
		return "", ErrCodeNotFound
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	return s.store.Redeem(ctx, now, code)
}

// Sweep deletes this user's used or expired codes. It is housekeeping, not
// correctness-bearing; callers fire and forget and only log failures.
func (s *Service) Sweep(ctx context.Context, now time.Time, userID string) error {
	if s == nil || s.store == nil {
		return ErrInvalidInput
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ErrInvalidInput
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}
	_, err := s.store.DeleteSpent(ctx, now, userID)
	return err
}
