package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Catalog backends supported by the service.
const (
	CatalogBackendPostgres = "postgres"
	CatalogBackendMongo    = "mongo"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv                     string
	Port                       string
	CatalogBackend             string
	DatabaseURL                string
	MongoURI                   string
	MongoDatabase              string
	RedisURL                   string
	CatalogCacheTTL            time.Duration
	CheckoutCatalogTimeout     time.Duration
	CheckoutResolveWorkers     int
	CatalogBreakerMinRequests  int
	CatalogBreakerFailureRatio float64
	CatalogBreakerOpenFor      time.Duration
	CatalogRetryAttempts       int
	CatalogRetryBase           time.Duration
	RateLimit                  string
	CORSAllowedOrigins         []string
	MigrateOnStart             bool
	// TrustProxyHeaders lets X-Forwarded-For and X-Real-IP replace the peer
	// address. Enable only behind a proxy that overwrites those headers.
	TrustProxyHeaders bool
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:                     valueOrDefault(k.String("APP_ENV"), "development"),
		Port:                       valueOrDefault(k.String("PORT"), "8080"),
		CatalogBackend:             strings.ToLower(valueOrDefault(k.String("CATALOG_BACKEND"), CatalogBackendPostgres)),
		DatabaseURL:                k.String("DATABASE_URL"),
		MongoURI:                   k.String("MONGO_URI"),
		MongoDatabase:              valueOrDefault(k.String("MONGO_DATABASE"), "reaction"),
		RedisURL:                   k.String("REDIS_URL"),
		CatalogCacheTTL:            parseDuration(k.String("CATALOG_CACHE_TTL"), "5m"),
		CheckoutCatalogTimeout:     parseDuration(k.String("CHECKOUT_CATALOG_TIMEOUT"), "3s"),
		CheckoutResolveWorkers:     parseInt(k.String("CHECKOUT_RESOLVE_WORKERS"), 8),
		CatalogBreakerMinRequests:  parseInt(k.String("CATALOG_BREAKER_MIN_REQUESTS"), 10),
		CatalogBreakerFailureRatio: parseFloat(k.String("CATALOG_BREAKER_FAILURE_RATIO"), 0.5),
		CatalogBreakerOpenFor:      parseDuration(k.String("CATALOG_BREAKER_OPEN_FOR"), "30s"),
		CatalogRetryAttempts:       parseInt(k.String("CATALOG_RETRY_ATTEMPTS"), 2),
		CatalogRetryBase:           parseDuration(k.String("CATALOG_RETRY_BASE"), "50ms"),
		RateLimit:                  valueOrDefault(k.String("RATE_LIMIT"), "120-M"),
		CORSAllowedOrigins:         splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),
		MigrateOnStart:             parseBool(k.String("MIGRATE_ON_START")),
		TrustProxyHeaders:          parseBool(k.String("TRUST_PROXY_HEADERS")),
	}

	// The cart store always lives in Postgres, whatever the catalog backend.
	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	switch cfg.CatalogBackend {
	case CatalogBackendPostgres:
	case CatalogBackendMongo:
		if cfg.MongoURI == "" {
			return nil, errors.New("MONGO_URI is required when CATALOG_BACKEND=mongo")
		}
	default:
		return nil, fmt.Errorf("unsupported CATALOG_BACKEND %q", cfg.CatalogBackend)
	}
	if cfg.CheckoutResolveWorkers <= 0 {
		return nil, errors.New("CHECKOUT_RESOLVE_WORKERS must be positive")
	}

	return cfg, nil
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

func parseInt(value string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func parseFloat(value string, fallback float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return f
}

// MustLoad behaves like Load but panics on error. Useful for tests and command entrypoints.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadForTests allows tests to override environment variables without touching the real environment.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]string, len(env))
	for key := range env {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
