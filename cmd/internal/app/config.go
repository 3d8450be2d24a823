package app

import "time"

// Config contains all runtime configuration loaded from environment variables.
type Config struct {
	HTTPAddr string
	LogLevel string

	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int

	DatabaseURL    string
	DBMaxConns     int32
	DBMinConns     int32
	MigrateOnStart bool

	CacheDriver    string
	CacheAddr      string
	CacheDB        int
	CachePrefix    string
	LookupCacheTTL time.Duration

	CORSAllowedOrigins   []string
	CORSAllowCredentials bool
	CORSMaxAgeSeconds    int

	// Security policy:
	// If true, CALLDEX_TOKEN_HMAC_KEY MUST be set (>= 32 bytes) and
	// device-token hashing must be HMAC-based.
	RequireTokenHMAC bool
}

// LoadConfig loads Config from environment variables with defaults.
func LoadConfig() Config {
	return Config{
		HTTPAddr: EnvString("CALLDEX_HTTP_ADDR", "0.0.0.0:8080"),
		LogLevel: EnvString("CALLDEX_LOG_LEVEL", "info"),

		ReadHeaderTimeout: EnvDuration("CALLDEX_HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
		ReadTimeout:       EnvDuration("CALLDEX_HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:      EnvDuration("CALLDEX_HTTP_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:       EnvDuration("CALLDEX_HTTP_IDLE_TIMEOUT", 60*time.Second),

		MaxHeaderBytes: EnvInt("CALLDEX_HTTP_MAX_HEADER_BYTES", 1<<20),

		DatabaseURL:    EnvString("CALLDEX_DATABASE_URL", ""),
		DBMaxConns:     EnvInt32("CALLDEX_DB_MAX_CONNS", 10),
		DBMinConns:     EnvInt32("CALLDEX_DB_MIN_CONNS", 0),
		MigrateOnStart: EnvBool("CALLDEX_DB_MIGRATE", true),

		CacheDriver:    EnvString("CALLDEX_CACHE_DRIVER", "memory"),
		CacheAddr:      EnvString("CALLDEX_CACHE_ADDR", "127.0.0.1:6379"),
		CacheDB:        EnvInt("CALLDEX_CACHE_DB", 0),
		CachePrefix:    EnvString("CALLDEX_CACHE_PREFIX", "calldex"),
		LookupCacheTTL: EnvDuration("CALLDEX_LOOKUP_CACHE_TTL", time.Minute),

		CORSAllowedOrigins:   EnvStrings("CALLDEX_CORS_ALLOWED_ORIGINS", nil),
		CORSAllowCredentials: EnvBool("CALLDEX_CORS_ALLOW_CREDENTIALS", true),
		CORSMaxAgeSeconds:    EnvInt("CALLDEX_CORS_MAX_AGE_SECONDS", 600),

		RequireTokenHMAC: EnvBool("CALLDEX_REQUIRE_TOKEN_HMAC", false),
	}
}
