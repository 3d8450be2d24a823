package authapi

import (
	"testing"
	"time"
)

func TestLoadConfigFromEnv_Defaults(t *testing.T) {
	cfg := LoadConfigFromEnv()

	if cfg.AppRedirectURI != "calldex://auth" {
		t.Fatalf("AppRedirectURI = %q", cfg.AppRedirectURI)
	}
	if cfg.SessionCookieName != "calldex_session" {
		t.Fatalf("SessionCookieName = %q", cfg.SessionCookieName)
	}
	if cfg.HandoffTTL != 5*time.Minute {
		t.Fatalf("HandoffTTL = %v", cfg.HandoffTTL)
	}
	if !cfg.CookieSecure {
		t.Fatalf("CookieSecure should default to true")
	}
}

func TestLoadConfigFromEnv_Overrides(t *testing.T) {
	t.Setenv("CALLDEX_APP_REDIRECT_URI", "myapp://login")
	t.Setenv("CALLDEX_HANDOFF_TTL", "2m")
	t.Setenv("CALLDEX_COOKIE_SECURE", "false")
	t.Setenv("CALLDEX_STATE_TTL", "garbage")

	cfg := LoadConfigFromEnv()
	if cfg.AppRedirectURI != "myapp://login" {
		t.Fatalf("AppRedirectURI = %q", cfg.AppRedirectURI)
	}
	if cfg.HandoffTTL != 2*time.Minute {
		t.Fatalf("HandoffTTL = %v", cfg.HandoffTTL)
	}
	if cfg.CookieSecure {
		t.Fatalf("CookieSecure override ignored")
	}
	if cfg.StateTTL != 10*time.Minute {
		t.Fatalf("bad duration should fall back to default, got %v", cfg.StateTTL)
	}
}
