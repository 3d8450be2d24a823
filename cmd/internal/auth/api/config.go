package authapi

import (
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config controls the auth bridge HTTP surface: redirect targets, cookie
// attributes, and request limits.
type Config struct {
	// AppRedirectURI is the custom-scheme URI the handoff code is delivered
	// to after a successful mobile login.
	AppRedirectURI string

	// LandingURL is where a redeemed session lands; ErrorURL is where
	// failed flows land with ?error=<code> appended.
	LandingURL string
	ErrorURL   string

	SessionCookieName string
	StateCookieName   string
	StateTTL          time.Duration

	CookiePath   string
	CookieDomain string
	CookieSecure bool

	HandoffTTL   time.Duration
	MaxBodyBytes int64
}

// LoadConfigFromEnv loads auth API config from environment variables with
// safe defaults.
func LoadConfigFromEnv() Config {
	cfg := Config{
		AppRedirectURI:    envString("CALLDEX_APP_REDIRECT_URI", "calldex://auth"),
		LandingURL:        envString("CALLDEX_LANDING_URL", "/"),
		ErrorURL:          envString("CALLDEX_AUTH_ERROR_URL", "/login"),
		SessionCookieName: envString("CALLDEX_SESSION_COOKIE", "calldex_session"),
		StateCookieName:   envString("CALLDEX_STATE_COOKIE", "calldex_oauth_state"),
		StateTTL:          envDuration("CALLDEX_STATE_TTL", 10*time.Minute),
		CookiePath:        envString("CALLDEX_COOKIE_PATH", "/"),
		CookieDomain:      envString("CALLDEX_COOKIE_DOMAIN", ""),
		CookieSecure:      envBool("CALLDEX_COOKIE_SECURE", true),
		HandoffTTL:        envDuration("CALLDEX_HANDOFF_TTL", 5*time.Minute),
		MaxBodyBytes:      envInt64("CALLDEX_AUTH_MAX_BODY_BYTES", 1<<20), // 1 MiB
	}

	if cfg.StateTTL <= 0 {
		cfg.StateTTL = 10 * time.Minute
	}
	if cfg.HandoffTTL <= 0 {
		cfg.HandoffTTL = 5 * time.Minute
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 1 << 20
	}

	return cfg
}

// sameSite is fixed: Lax lets the provider's top-level redirect back to the
// callback carry the state cookie while still blocking cross-site POSTs.
func (c Config) sameSite() http.SameSite { return http.SameSiteLaxMode }

func envString(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func envInt64(key string, def int64) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
