// Package directory resolves incoming call numbers against a user's private
// contact set.
//
// Matching is deliberately broad: the last 10 digits of the caller's number
// are matched as a substring of the stored number's digit form, trading
// false-positive risk for recall across inconsistent international
// formatting. Tightening this to an exact suffix match is a product
// decision, not a bug fix.
package directory

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"calldex/cmd/internal/cache"
	"calldex/cmd/internal/phone"

	"golang.org/x/sync/errgroup"
)

const (
	defaultCacheTTL = time.Minute
	batchFanout     = 8
)

// Resolver answers caller-ID queries for authenticated users.
type Resolver struct {
	store    Store
	cache    cache.Client
	cacheTTL time.Duration
	log      *slog.Logger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver) error

// WithCache puts a short-TTL read-through cache in front of the store.
func WithCache(c cache.Client, ttl time.Duration) ResolverOption {
	return func(r *Resolver) error {
		if c == nil {
			return ErrInvalidInput
		}
		r.cache = c
		if ttl > 0 {
			r.cacheTTL = ttl
		}
		return nil
	}
}

// WithLogger sets the logger used for swallowed cache failures.
func WithLogger(log *slog.Logger) ResolverOption {
	return func(r *Resolver) error {
		if log != nil {
			r.log = log
		}
		return nil
	}
}

// NewResolver constructs a Resolver.
func NewResolver(store Store, opts ...ResolverOption) (*Resolver, error) {
	if store == nil {
		return nil, ErrInvalidInput
	}
	r := &Resolver{store: store, cacheTTL: defaultCacheTTL, log: slog.Default()}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Resolve finds the best-matching contact for rawPhone, scoped to userID.
// A number too short to match (under 4 digits) is a miss without any store
// query. A store miss is (zero, false, nil), never an error.
func (r *Resolver) Resolve(ctx context.Context, userID, rawPhone string) (ContactSummary, bool, error) {
	if r == nil || r.store == nil {
		return ContactSummary{}, false, ErrInvalidInput
	}
	if err := ctx.Err(); err != nil {
		return ContactSummary{}, false, err
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ContactSummary{}, false, ErrInvalidInput
	}

	digits, ok := phone.NormalizeForFuzzyLookup(rawPhone)
	if !ok {
		return ContactSummary{}, false, nil
	}
	fragment := phone.MatchFragment(digits)

	if c, hit := r.cacheGet(ctx, userID, fragment); hit {
		return c, true, nil
	}

	contact, err := r.store.FindByPhoneFragment(ctx, userID, fragment)
	if err != nil {
		if errors.Is(err, ErrNoMatch) {
			return ContactSummary{}, false, nil
		}
		return ContactSummary{}, false, err
	}

	r.cachePut(ctx, userID, fragment, contact)
	return contact, true, nil
}

// ResolveMany resolves a batch of numbers concurrently and independently.
// A phone whose lookup fails is omitted from the result; one bad lookup
// never aborts the batch.
func (r *Resolver) ResolveMany(ctx context.Context, userID string, rawPhones []string) (map[string]ContactSummary, error) {
	if r == nil || r.store == nil {
		return nil, ErrInvalidInput
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var mu sync.Mutex
	out := make(map[string]ContactSummary, len(rawPhones))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(batchFanout)
	for _, raw := range rawPhones {
		g.Go(func() error {
			contact, found, err := r.Resolve(gctx, userID, raw)
			if err != nil {
				r.log.Warn("directory.resolve_many.lookup.fail", "err", err)
				return nil
			}
			if !found {
				return nil
			}
			mu.Lock()
			out[raw] = contact
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Resolver) cacheKey(userID, fragment string) string {
	return "lookup:" + userID + ":" + fragment
}

func (r *Resolver) cacheGet(ctx context.Context, userID, fragment string) (ContactSummary, bool) {
	if r.cache == nil {
		return ContactSummary{}, false
	}
	raw, err := r.cache.Get(ctx, r.cacheKey(userID, fragment))
	if err != nil {
		if !errors.Is(err, cache.ErrNotFound) {
			r.log.Warn("directory.cache.get.fail", "err", err)
		}
		return ContactSummary{}, false
	}
	var c ContactSummary
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return ContactSummary{}, false
	}
	return c, true
}

func (r *Resolver) cachePut(ctx context.Context, userID, fragment string, c ContactSummary) {
	if r.cache == nil {
		return
	}
	raw, err := json.Marshal(c)
	if err != nil {
		return
	}
	if err := r.cache.Set(ctx, r.cacheKey(userID, fragment), string(raw), r.cacheTTL); err != nil {
		r.log.Warn("directory.cache.set.fail", "err", err)
	}
}
