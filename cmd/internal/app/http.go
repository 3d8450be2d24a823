package app

import (
	"net/http"
	"time"

	authapi "calldex/cmd/internal/auth/api"
	"calldex/cmd/internal/directory"
	"calldex/cmd/internal/metrics"

	"github.com/jackc/pgx/v5/pgxpool"
)

func registerHTTP(
	mux *http.ServeMux,
	log Logger,
	dbPool *pgxpool.Pool,
	auth *authapi.Handler,
	lookup *directory.Handler,
) {
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if dbPool != nil {
			if err := PingDB(r.Context(), dbPool, 2*time.Second); err != nil {
				http.Error(w, "db not ready", http.StatusServiceUnavailable)
				log.Info("readyz.db.not_ready", "err", err)
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready\n"))
	})

	mux.Handle("GET /metrics", metrics.Handler())

	if auth != nil {
		auth.Register(mux)
	}
	if lookup != nil {
		lookup.Register(mux)
	}
}
