package handoff

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// memStore mirrors the conditional-update semantics of the Postgres store.
type memStore struct {
	mu   sync.Mutex
	rows map[string]*Code
}

func newMemStore() *memStore {
	return &memStore{rows: make(map[string]*Code)}
}

func (m *memStore) Create(_ context.Context, in CreateRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[in.Code] = &Code{
		Code:      in.Code,
		UserID:    in.UserID,
		CreatedAt: in.CreatedAt,
		ExpiresAt: in.ExpiresAt,
	}
	return nil
}

func (m *memStore) Redeem(_ context.Context, now time.Time, code string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[code]
	if !ok {
		return "", ErrCodeNotFound
	}
	if row.Used {
		return "", ErrCodeUsed
	}
	if !row.ExpiresAt.After(now) {
		return "", ErrCodeExpired
	}
	row.Used = true
	return row.UserID, nil
}

func (m *memStore) DeleteSpent(_ context.Context, now time.Time, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for k, row := range m.rows {
		if row.UserID != userID {
			continue
		}
		if row.Used || !row.ExpiresAt.After(now) {
			delete(m.rows, k)
			n++
		}
	}
	return n, nil
}

func TestIssueAndRedeem(t *testing.T) {
	ctx := context.Background()
	st := newMemStore()
	svc, err := NewService(st)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	now := time.Now().UTC()
	code, err := svc.Issue(ctx, IssueInput{UserID: "u1", Now: now})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if code.Code == "" {
		t.Fatalf("empty code")
	}
	if got := code.ExpiresAt.Sub(now); got != 5*time.Minute {
		t.Fatalf("default TTL = %v, want 5m", got)
	}

	userID, err := svc.Redeem(ctx, now.Add(time.Second), code.Code)
	if err != nil {
		t.Fatalf("Redeem: %v", err)
	}
	if userID != "u1" {
		t.Fatalf("Redeem user = %q, want u1", userID)
	}

	// Replay must fail with the precise sentinel, never a second success.
	if _, err := svc.Redeem(ctx, now.Add(2*time.Second), code.Code); !errors.Is(err, ErrCodeUsed) {
		t.Fatalf("replay err = %v, want ErrCodeUsed", err)
	}
}

func TestRedeem_Expired(t *testing.T) {
	ctx := context.Background()
	st := newMemStore()
	svc, _ := NewService(st)

	now := time.Now().UTC()
	code, err := svc.Issue(ctx, IssueInput{UserID: "u1", TTL: time.Minute, Now: now})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := svc.Redeem(ctx, now.Add(time.Minute), code.Code); !errors.Is(err, ErrCodeExpired) {
		t.Fatalf("err = %v, want ErrCodeExpired", err)
	}
}

func TestRedeem_Unknown(t *testing.T) {
	ctx := context.Background()
	svc, _ := NewService(newMemStore())

	if _, err := svc.Redeem(ctx, time.Now().UTC(), "no-such-code"); !errors.Is(err, ErrCodeNotFound) {
		t.Fatalf("err = %v, want ErrCodeNotFound", err)
	}
	if _, err := svc.Redeem(ctx, time.Now().UTC(), "   "); !errors.Is(err, ErrCodeNotFound) {
		t.Fatalf("blank code err = %v, want ErrCodeNotFound", err)
	}
}

func TestRedeem_ConcurrentSingleWinner(t *testing.T) {
	ctx := context.Background()
	st := newMemStore()
	svc, _ := NewService(st)

	now := time.Now().UTC()
	code, err := svc.Issue(ctx, IssueInput{UserID: "u1", Now: now})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	const attempts = 16
	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Redeem(ctx, now.Add(time.Second), code.Code)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var wins, used int
	for err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrCodeUsed):
			used++
		default:
			t.Fatalf("unexpected err: %v", err)
		}
	}
	if wins != 1 {
		t.Fatalf("winners = %d, want exactly 1", wins)
	}
	if used != attempts-1 {
		t.Fatalf("ErrCodeUsed count = %d, want %d", used, attempts-1)
	}
}

func TestSweep_RemovesSpentOnly(t *testing.T) {
	ctx := context.Background()
	st := newMemStore()
	svc, _ := NewService(st)

	now := time.Now().UTC()
	spent, _ := svc.Issue(ctx, IssueInput{UserID: "u1", Now: now})
	expired, _ := svc.Issue(ctx, IssueInput{UserID: "u1", TTL: time.Second, Now: now.Add(-time.Minute)})
	live, _ := svc.Issue(ctx, IssueInput{UserID: "u1", Now: now})
	other, _ := svc.Issue(ctx, IssueInput{UserID: "u2", TTL: time.Second, Now: now.Add(-time.Minute)})

	if _, err := svc.Redeem(ctx, now, spent.Code); err != nil {
		t.Fatalf("Redeem: %v", err)
	}
	if err := svc.Sweep(ctx, now, "u1"); err != nil {
		t.Fatalf("Sweep: %v", err)
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.rows[spent.Code]; ok {
		t.Fatalf("used code survived sweep")
	}
	if _, ok := st.rows[expired.Code]; ok {
		t.Fatalf("expired code survived sweep")
	}
	if _, ok := st.rows[live.Code]; !ok {
		t.Fatalf("live code was swept")
	}
	if _, ok := st.rows[other.Code]; !ok {
		t.Fatalf("sweep crossed user boundary")
	}
}
