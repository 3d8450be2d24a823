package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type memStore struct {
	mu   sync.Mutex
	rows map[string]Session
}

func newMemStore() *memStore { return &memStore{rows: make(map[string]Session)} }

func (m *memStore) Create(_ context.Context, in Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[in.Token] = in
	return nil
}

func (m *memStore) GetByToken(_ context.Context, token string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[token]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	return row, nil
}

func TestIssueAndValidate(t *testing.T) {
	ctx := context.Background()
	svc := NewService(DefaultConfig(), newMemStore())

	now := time.Now().UTC()
	sess, err := svc.Issue(ctx, now, "u1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if sess.Token == "" {
		t.Fatalf("empty token")
	}
	if got := sess.ExpiresAt.Sub(now); got != 30*24*time.Hour {
		t.Fatalf("default TTL = %v, want 30d", got)
	}

	userID, err := svc.Validate(ctx, now.Add(time.Hour), sess.Token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if userID != "u1" {
		t.Fatalf("user = %q, want u1", userID)
	}
}

func TestValidate_ExpiryIsSoleLifecycleControl(t *testing.T) {
	ctx := context.Background()
	cfg := DefaultConfig()
	cfg.TTL = time.Hour
	svc := NewService(cfg, newMemStore())

	now := time.Now().UTC()
	sess, err := svc.Issue(ctx, now, "u1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := svc.Validate(ctx, now.Add(59*time.Minute), sess.Token); err != nil {
		t.Fatalf("pre-expiry Validate: %v", err)
	}
	if _, err := svc.Validate(ctx, now.Add(time.Hour), sess.Token); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("err = %v, want ErrSessionExpired", err)
	}
}

func TestValidate_Unknown(t *testing.T) {
	ctx := context.Background()
	svc := NewService(DefaultConfig(), newMemStore())

	if _, err := svc.Validate(ctx, time.Now().UTC(), "nope"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("err = %v, want ErrSessionNotFound", err)
	}
	if _, err := svc.Validate(ctx, time.Now().UTC(), ""); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("blank token err = %v, want ErrSessionNotFound", err)
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("CALLDEX_SESSION_TTL", "")
	t.Setenv("CALLDEX_SESSION_TOKEN_BYTES", "")
	cfg, err := LoadConfigFromEnv()
	if err != nil {
		t.Fatalf("LoadConfigFromEnv: %v", err)
	}
	if cfg.TTL != 30*24*time.Hour || cfg.TokenBytes != 32 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}

	t.Setenv("CALLDEX_SESSION_TTL", "72h")
	cfg, err = LoadConfigFromEnv()
	if err != nil {
		t.Fatalf("LoadConfigFromEnv: %v", err)
	}
	if cfg.TTL != 72*time.Hour {
		t.Fatalf("TTL = %v, want 72h", cfg.TTL)
	}

	t.Setenv("CALLDEX_SESSION_TTL", "not-a-duration")
	if _, err := LoadConfigFromEnv(); !errors.Is(err, ErrConfig) {
		t.Fatalf("err = %v, want ErrConfig", err)
	}

	t.Setenv("CALLDEX_SESSION_TTL", "72h")
	t.Setenv("CALLDEX_SESSION_TOKEN_BYTES", "16")
	if _, err := LoadConfigFromEnv(); !errors.Is(err, ErrConfig) {
		t.Fatalf("token bytes below floor: err = %v, want ErrConfig", err)
	}
}
