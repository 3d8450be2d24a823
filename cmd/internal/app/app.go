// Package app wires the calldex runtime: config, logging, storage, cache,
// and the HTTP surface of the auth bridge and caller-ID lookup.
package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"calldex/cmd/identity"
	authapi "calldex/cmd/internal/auth/api"
	"calldex/cmd/internal/auth/devicetoken"
	"calldex/cmd/internal/auth/provider"
	"calldex/cmd/internal/auth/session"
	"calldex/cmd/internal/cache"
	"calldex/cmd/internal/directory"
	"calldex/cmd/internal/handoff"

	"github.com/jackc/pgx/v5/pgxpool"
)

// App owns the wired HTTP server and its backing resources.
type App struct {
	cfg Config
	log Logger

	pool  *pgxpool.Pool
	cache cache.Client

	auth   *authapi.Handler
	lookup *directory.Handler
}

// New constructs a fully wired App instance from config and logger.
func New(cfg Config, log Logger) (*App, error) {
	if log == nil {
		log = NewLogger(cfg.LogLevel)
	}
	if cfg.DatabaseURL == "" {
		return nil, errors.New("CALLDEX_DATABASE_URL is required")
	}

	if cfg.MigrateOnStart {
		if err := MigrateUp(cfg.DatabaseURL); err != nil {
			return nil, err
		}
		log.Info("db.migrate.ok")
	}

	pool, err := NewDBPool(context.Background(), cfg)
	if err != nil {
		return nil, err
	}

	cacheClient := newCache(cfg, log)

	a, err := wire(cfg, log, pool, cacheClient)
	if err != nil {
		cacheClient.Close()
		pool.Close()
		return nil, err
	}
	return a, nil
}

// newCache builds the lookup cache. Redis trouble degrades to the in-process
// cache instead of blocking startup; the lookup path works either way.
func newCache(cfg Config, log Logger) cache.Client {
	c, err := cache.New(cache.Config{
		Driver: cfg.CacheDriver,
		Addr:   cfg.CacheAddr,
		DB:     cfg.CacheDB,
		Prefix: cfg.CachePrefix,
	})
	if err != nil {
		log.Warn("cache.fallback.memory", "driver", cfg.CacheDriver, "err", err)
		return cache.NewMemory(cfg.CachePrefix)
	}
	log.Info("cache.ready", "driver", cfg.CacheDriver)
	return c
}

func wire(cfg Config, log Logger, pool *pgxpool.Pool, cacheClient cache.Client) (*App, error) {
	users, err := identity.NewPostgresStore(pool)
	if err != nil {
		return nil, err
	}

	handoffStore, err := handoff.NewPostgresStore(pool)
	if err != nil {
		return nil, err
	}
	codes, err := handoff.NewService(handoffStore)
	if err != nil {
		return nil, err
	}

	sessCfg, err := session.LoadConfigFromEnv()
	if err != nil {
		return nil, err
	}
	sessStore, err := session.NewPostgresStore(pool)
	if err != nil {
		return nil, err
	}
	sessions := session.NewService(sessCfg, sessStore)

	tokStore, err := devicetoken.NewPostgresStore(pool)
	if err != nil {
		return nil, err
	}
	tokens, err := devicetoken.NewService(tokStore, devicetoken.WithLogger(log))
	if err != nil {
		return nil, err
	}

	dirStore, err := directory.NewPostgresStore(pool)
	if err != nil {
		return nil, err
	}
	resolver, err := directory.NewResolver(dirStore,
		directory.WithCache(cacheClient, cfg.LookupCacheTTL),
		directory.WithLogger(log),
	)
	if err != nil {
		return nil, err
	}
	lookup, err := directory.NewHandler(log, resolver, tokens)
	if err != nil {
		return nil, err
	}

	prov, err := provider.NewGoogle(provider.GoogleConfig{
		ClientID:     EnvString("CALLDEX_GOOGLE_CLIENT_ID", ""),
		ClientSecret: EnvString("CALLDEX_GOOGLE_CLIENT_SECRET", ""),
		RedirectURL:  EnvString("CALLDEX_GOOGLE_REDIRECT_URL", ""),
	})
	if err != nil {
		return nil, err
	}

	auth, err := authapi.New(log, authapi.LoadConfigFromEnv(), prov, users, codes, sessions, tokens)
	if err != nil {
		return nil, err
	}

	return &App{
		cfg:    cfg,
		log:    log,
		pool:   pool,
		cache:  cacheClient,
		auth:   auth,
		lookup: lookup,
	}, nil
}

// Run starts the HTTP server and blocks until context cancellation or fatal
// server error.
func (a *App) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	registerHTTP(mux, a.log, a.pool, a.auth, a.lookup)

	var handler http.Handler = mux
	handler = WithCORS(handler, a.cfg, a.log)
	handler = WithSecurityHeaders(handler)
	handler = WithRequestLogging(handler, a.log)

	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: nonZeroDuration(a.cfg.ReadHeaderTimeout, 5*time.Second),
		ReadTimeout:       nonZeroDuration(a.cfg.ReadTimeout, 15*time.Second),
		WriteTimeout:      nonZeroDuration(a.cfg.WriteTimeout, 15*time.Second),
		IdleTimeout:       nonZeroDuration(a.cfg.IdleTimeout, 60*time.Second),
		MaxHeaderBytes:    nonZeroInt(a.cfg.MaxHeaderBytes, 1<<20),
	}

	a.log.Info("server.start", "addr", a.cfg.HTTPAddr)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.log.Info("server.stop", "reason", "context_done")
	case err := <-errCh:
		a.log.Error("server.fail", "err", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("server.shutdown.fail", "err", err)
		return err
	}

	if err := a.cache.Close(); err != nil {
		a.log.Error("cache.close.fail", "err", err)
	}
	a.pool.Close()

	a.log.Info("server.stopped")
	return nil
}

func nonZeroDuration(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}

func nonZeroInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
