// Package metrics exposes Prometheus counters for the auth bridge and the
// caller-ID lookup path.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HandoffRedeems counts handoff-code redemptions by outcome:
	// ok, not_found, already_used, expired, error.
	HandoffRedeems = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "calldex",
		Subsystem: "handoff",
		Name:      "redeem_total",
		Help:      "Handoff code redemptions by outcome.",
	}, []string{"result"})

	// TokenVerifies counts bearer-token verifications by outcome:
	// ok, malformed, invalid, expired, error.
	TokenVerifies = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "calldex",
		Subsystem: "devicetoken",
		Name:      "verify_total",
		Help:      "Device token verifications by outcome.",
	}, []string{"result"})

	// Lookups counts caller-ID resolutions by outcome: hit, miss, error.
	Lookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "calldex",
		Subsystem: "lookup",
		Name:      "resolve_total",
		Help:      "Caller-ID resolutions by outcome.",
	}, []string{"result"})
)

// Handler returns the /metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
