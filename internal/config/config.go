// Copyright (c) 2025-2026 The MetaModels team
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Supported database drivers.
const (
	DriverSQLite    = "sqlite"  // modernc.org/sqlite, pure Go
	DriverSQLiteCGO = "sqlite3" // github.com/mattn/go-sqlite3
	DriverMySQL     = "mysql"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBDriver   string `env:"MM_DB_DRIVER" envDefault:"sqlite"`
	DBDSN      string `env:"MM_DB_DSN" envDefault:"./data/metamodels.db"`
	ServerHost string `env:"MM_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"MM_SERVER_PORT" envDefault:"8080"`
	Env        string `env:"MM_ENV" envDefault:"development"`
	LogLevel   string `env:"MM_LOG_LEVEL" envDefault:"info"`

	// CollectionsFile is the TOML file declaring item collections and their attributes.
	CollectionsFile string `env:"MM_COLLECTIONS_FILE,required"`

	// Cache configuration
	RedisURL        string `env:"MM_REDIS_URL"`                             // Optional Redis URL for distributed caching
	CachePrefix     string `env:"MM_CACHE_PREFIX" envDefault:"metamodels:"` // Redis key prefix
	CacheTTL        int    `env:"MM_CACHE_TTL" envDefault:"300"`            // Value cache TTL in seconds, 0 disables the cache
	CacheMaxEntries int    `env:"MM_CACHE_MAX_ENTRIES" envDefault:"10000"`  // Max memory cache entries

	// Admin API limits
	APIRateLimit   float64 `env:"MM_API_RATE_LIMIT" envDefault:"20"`  // Requests per second per client IP, 0 disables
	APIRateBurst   int     `env:"MM_API_RATE_BURST" envDefault:"40"`  // Burst size for the rate limiter
	RequestTimeout int     `env:"MM_REQUEST_TIMEOUT" envDefault:"30"` // Seconds before an API request is cancelled

	// OpenTelemetry tracing of store operations, exported via OTLP/gRPC.
	OTelEnabled     bool   `env:"MM_OTEL_ENABLED" envDefault:"false"`
	OTelEndpoint    string `env:"MM_OTEL_ENDPOINT" envDefault:"localhost:4317"`
	OTelServiceName string `env:"MM_OTEL_SERVICE_NAME" envDefault:"mmtranslatedurl"`
}

// RateLimitEnabled returns true if the admin API is rate limited.
func (c Config) RateLimitEnabled() bool {
	return c.APIRateLimit > 0
}

// RequestTimeoutDuration returns the API request timeout.
func (c Config) RequestTimeoutDuration() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// CacheEnabled returns true if translated values should be cached.
func (c Config) CacheEnabled() bool {
	return c.CacheTTL > 0
}

// CacheDuration returns the cache TTL as a duration.
func (c Config) CacheDuration() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}

// SlogLevel maps LogLevel onto a slog.Level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	switch cfg.DBDriver {
	case DriverSQLite, DriverSQLiteCGO, DriverMySQL:
	default:
		return nil, fmt.Errorf("MM_DB_DRIVER must be one of %q, %q, %q; got %q",
			DriverSQLite, DriverSQLiteCGO, DriverMySQL, cfg.DBDriver)
	}

	if strings.TrimSpace(cfg.DBDSN) == "" {
		return nil, fmt.Errorf("MM_DB_DSN must not be empty")
	}

	if cfg.CacheTTL < 0 {
		return nil, fmt.Errorf("MM_CACHE_TTL must not be negative, got %d", cfg.CacheTTL)
	}

	if cfg.RequestTimeout <= 0 {
		return nil, fmt.Errorf("MM_REQUEST_TIMEOUT must be positive, got %d", cfg.RequestTimeout)
	}

	if cfg.RateLimitEnabled() && cfg.APIRateBurst < 1 {
		return nil, fmt.Errorf("MM_API_RATE_BURST must be at least 1 when rate limiting is enabled")
	}

	return cfg, nil
}
