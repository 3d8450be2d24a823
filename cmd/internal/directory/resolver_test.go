package directory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"calldex/cmd/internal/cache"
)

type fakeStore struct {
	mu       sync.Mutex
	byUser   map[string]map[string]ContactSummary // userID -> fragment -> contact
	failWith error
	queries  atomic.Int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{byUser: make(map[string]map[string]ContactSummary)}
}

func (f *fakeStore) put(userID, fragment string, c ContactSummary) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := f.byUser[userID]
	if m == nil {
		m = make(map[string]ContactSummary)
		f.byUser[userID] = m
	}
	m[fragment] = c
}

func (f *fakeStore) FindByPhoneFragment(_ context.Context, userID, fragment string) (ContactSummary, error) {
	f.queries.Add(1)
	if f.failWith != nil {
		return ContactSummary{}, f.failWith
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.byUser[userID][fragment]; ok {
		return c, nil
	}
	return ContactSummary{}, ErrNoMatch
}

func TestResolve_MatchAcrossFormatting(t *testing.T) {
	ctx := context.Background()
	st := newFakeStore()
	st.put("u1", "4155550134", ContactSummary{ID: "c1", DisplayName: "Ada"})

	r, err := NewResolver(st)
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}

	// All of these carry the same national number and must hit the same
	// 10-digit fragment.
	for _, raw := range []string{"+1 (415) 555-0134", "415-555-0134", "14155550134"} {
		got, found, err := r.Resolve(ctx, "u1", raw)
		if err != nil {
			t.Fatalf("Resolve(%q): %v", raw, err)
		}
		if !found || got.ID != "c1" {
			t.Fatalf("Resolve(%q) = (%+v, %v), want c1", raw, got, found)
		}
	}
}

func TestResolve_UserScoping(t *testing.T) {
	ctx := context.Background()
	st := newFakeStore()
	st.put("u1", "4155550134", ContactSummary{ID: "c1", DisplayName: "Ada"})

	r, _ := NewResolver(st)
	_, found, err := r.Resolve(ctx, "u2", "+14155550134")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if found {
		t.Fatalf("u2 resolved u1's contact")
	}
}

func TestResolve_TooFewDigitsSkipsStore(t *testing.T) {
	ctx := context.Background()
	st := newFakeStore()
	r, _ := NewResolver(st)

	_, found, err := r.Resolve(ctx, "u1", "+1a")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if found {
		t.Fatalf("short number resolved")
	}
	if n := st.queries.Load(); n != 0 {
		t.Fatalf("store queried %d times, want 0", n)
	}
}

func TestResolve_MissIsNotError(t *testing.T) {
	ctx := context.Background()
	r, _ := NewResolver(newFakeStore())

	got, found, err := r.Resolve(ctx, "u1", "+14155550134")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if found || got.ID != "" {
		t.Fatalf("unexpected match: %+v", got)
	}
}

func TestResolve_CacheReadThrough(t *testing.T) {
	ctx := context.Background()
	st := newFakeStore()
	st.put("u1", "4155550134", ContactSummary{ID: "c1", DisplayName: "Ada"})

	r, err := NewResolver(st, WithCache(cache.NewMemory("t"), 0))
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, found, err := r.Resolve(ctx, "u1", "+14155550134"); err != nil || !found {
			t.Fatalf("Resolve #%d = (found=%v, err=%v)", i, found, err)
		}
	}
	if n := st.queries.Load(); n != 1 {
		t.Fatalf("store queried %d times, want 1 with warm cache", n)
	}
}

func TestResolveMany_PartialFailure(t *testing.T) {
	ctx := context.Background()
	st := newFakeStore()
	st.put("u1", "4155550134", ContactSummary{ID: "c1", DisplayName: "Ada"})
	st.put("u1", "2125550198", ContactSummary{ID: "c2", DisplayName: "Grace"})

	r, _ := NewResolver(st)
	out, err := r.ResolveMany(ctx, "u1", []string{
		"+14155550134",
		"+12125550198",
		"+19995550000", // no such contact
		"12",           // too short
	})
	if err != nil {
		t.Fatalf("ResolveMany: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("got %d results, want 2: %+v", len(out), out)
	}
	if out["+14155550134"].ID != "c1" || out["+12125550198"].ID != "c2" {
		t.Fatalf("wrong mapping: %+v", out)
	}
}

func TestResolveMany_StoreErrorOmitsEntry(t *testing.T) {
	ctx := context.Background()
	st := newFakeStore()
	st.failWith = errors.New("db down")

	r, _ := NewResolver(st)
	out, err := r.ResolveMany(ctx, "u1", []string{"+14155550134"})
	if err != nil {
		t.Fatalf("ResolveMany: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("failed lookup produced a result: %+v", out)
	}
}
