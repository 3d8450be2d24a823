// Package devicetoken manages the long-lived bearer tokens a native app
// presents to call the lookup API without a browser session.
//
// The raw secret is returned exactly once at creation and never persisted
// or logged; the store keys rows by its one-way hash.
package devicetoken

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"calldex/cmd/security/token"

	"github.com/oklog/ulid/v2"
)

const (
	defaultSecretBytes = 32
	defaultTTL         = 365 * 24 * time.Hour
	touchTimeout       = 5 * time.Second
)

// CreateInput describes token issuance.
type CreateInput struct {
	UserID     string
	DeviceName *string
	Platform   Platform
	TTL        time.Duration
	Now        time.Time
}

// Created is the one-time issuance result. Secret is unrecoverable after
// this value is dropped.
type Created struct {
	Token  Token
	Secret string
}

// Service manages device-token lifecycle.
type Service struct {
	store       Store
	log         *slog.Logger
	secretBytes int
}

// Option configures the Service.
type Option func(*Service) error

// WithSecretBytes sets the entropy of generated secrets in bytes.
func WithSecretBytes(n int) Option {
	return func(s *Service) error {
		if n <= 0 {
			return ErrInvalidInput
		}
		s.secretBytes = n
		return nil
	}
}

// WithLogger sets the logger used for swallowed housekeeping failures.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) error {
		if log != nil {
			s.log = log
		}
		return nil
	}
}

// NewService constructs a Service with safe defaults.
func NewService(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, ErrInvalidInput
	}
	s := &Service{store: store, log: slog.Default(), secretBytes: defaultSecretBytes}
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

// Create issues a new device token. The returned Secret is shown to the
// caller exactly once; only its hash is stored.
func (s *Service) Create(ctx context.Context, in CreateInput) (Created, error) {
	if s == nil || s.store == nil {
		return Created{}, ErrInvalidInput
	}
	if err := ctx.Err(); err != nil {
		return Created{}, err
	}
	userID := strings.TrimSpace(in.UserID)
	if userID == "" {
		return Created{}, ErrInvalidInput
	}
	if in.Platform != PlatformAndroid && in.Platform != PlatformIOS {
		return Created{}, ErrInvalidInput
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	ttl := in.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	deviceName := trimPtr(in.DeviceName)
	if deviceName != nil && len(*deviceName) > 128 {
		return Created{}, ErrInvalidInput
	}

	secret, err := token.NewOpaque(s.secretBytes)
	if err != nil {
		return Created{}, err
	}

	rec := CreateRecord{
		ID:         ulid.Make().String(),
		UserID:     userID,
		TokenHash:  token.HashDeviceTokenHex(secret),
		DeviceName: deviceName,
		Platform:   in.Platform,
		CreatedAt:  now,
		ExpiresAt:  now.Add(ttl),
	}
	if err := s.store.Create(ctx, rec); err != nil {
		return Created{}, err
	}

	return Created{
		Token: Token{
			ID:         rec.ID,
			UserID:     rec.UserID,
			DeviceName: rec.DeviceName,
			Platform:   rec.Platform,
			CreatedAt:  rec.CreatedAt,
			ExpiresAt:  rec.ExpiresAt,
		},
		Secret: secret,
	}, nil
}

// VerifyHeader authenticates an Authorization header value and returns the
// owning user id.
//
// Failure modes, in check order:
//   - ErrMalformedCredential: header absent or not "Bearer <token>".
//   - ErrInvalidToken: no stored hash matches.
//   - ErrExpired: token past its expiry (the row is left for passive expiry,
//     not deleted eagerly).
//
// On success a detached best-effort goroutine records last_used_at; its
// failure never surfaces to the request.
func (s *Service) VerifyHeader(ctx context.Context, now time.Time, authorization string) (string, error) {
	if s == nil || s.store == nil {
		return "", ErrInvalidInput
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	secret, ok := bearerSecret(authorization)
	if !ok {
		return "", ErrMalformedCredential
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	row, err := s.store.GetByHash(ctx, token.HashDeviceTokenHex(secret))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", ErrInvalidToken
		}
		return "", err
	}
	if !row.ExpiresAt.After(now) {
		return "", ErrExpired
	}

	s.touchAsync(ctx, now, row.ID)
	return row.UserID, nil
}

// List returns the user's token metadata ordered by last_used_at DESC.
func (s *Service) List(ctx context.Context, userID string) ([]Token, error) {
	if s == nil || s.store == nil {
		return nil, ErrInvalidInput
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrInvalidInput
	}
	return s.store.ListByUser(ctx, userID)
}

// Revoke deletes a token the user owns, reporting whether a deletion
// occurred. A token owned by another user reads as false, nil.
func (s *Service) Revoke(ctx context.Context, userID, tokenID string) (bool, error) {
	if s == nil || s.store == nil {
		return false, ErrInvalidInput
	}
	userID = strings.TrimSpace(userID)
	tokenID = strings.TrimSpace(tokenID)
	if userID == "" || tokenID == "" {
		return false, ErrInvalidInput
	}
	return s.store.Delete(ctx, userID, tokenID)
}

// touchAsync records a successful use without blocking the request path.
func (s *Service) touchAsync(ctx context.Context, now time.Time, tokenID string) {
	touchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), touchTimeout)
	go func() {
		defer cancel()
		if err := s.store.Touch(touchCtx, now, tokenID); err != nil {
			s.log.Warn("devicetoken.touch.fail", "token_id", tokenID, "err", err)
		}
	}()
}

// bearerSecret extracts the secret from a "Bearer <token>" header value.
func bearerSecret(authorization string) (string, bool) {
	authorization = strings.TrimSpace(authorization)
	const prefix = "Bearer "
	if len(authorization) <= len(prefix) || !strings.EqualFold(authorization[:len(prefix)], prefix) {
		return "", false
	}
	secret := strings.TrimSpace(authorization[len(prefix):])
	if secret == "" || len(secret) > 4096 || strings.ContainsAny(secret, " \t") {
		return "", false
	}
	return secret, true
}

func trimPtr(v *string) *string {
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(*v)
	if s == "" {
		return nil
	}
	return &s
}
