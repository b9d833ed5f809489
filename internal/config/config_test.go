// Copyright (c) 2025-2026 The MetaModels team
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"log/slog"
	"os"
	"testing"
	"time"
)

func setEnv(t *testing.T, key, value string) {
	t.Helper()
	if err := os.Setenv(key, value); err != nil {
		t.Fatalf("failed to set %s: %v", key, err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()
	setEnv(t, "MM_COLLECTIONS_FILE", "./collections.toml")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.DBDriver != DriverSQLite {
		t.Errorf("DBDriver = %q, want %q", cfg.DBDriver, DriverSQLite)
	}
	if cfg.DBDSN != "./data/metamodels.db" {
		t.Errorf("DBDSN = %q, want %q", cfg.DBDSN, "./data/metamodels.db")
	}
	if cfg.ServerHost != "localhost" {
		t.Errorf("ServerHost = %q, want %q", cfg.ServerHost, "localhost")
	}
	if cfg.ServerPort != 8080 {
		t.Errorf("ServerPort = %d, want %d", cfg.ServerPort, 8080)
	}
	if cfg.Env != "development" {
		t.Errorf("Env = %q, want %q", cfg.Env, "development")
	}
	if cfg.CacheTTL != 300 {
		t.Errorf("CacheTTL = %d, want 300", cfg.CacheTTL)
	}
	if cfg.OTelEnabled {
		t.Error("OTelEnabled should default to false")
	}
	if cfg.OTelEndpoint != "localhost:4317" {
		t.Errorf("OTelEndpoint = %q", cfg.OTelEndpoint)
	}
	if !cfg.RateLimitEnabled() {
		t.Error("rate limiting should be enabled by default")
	}
	if cfg.RequestTimeoutDuration() != 30*time.Second {
		t.Errorf("RequestTimeoutDuration() = %v, want 30s", cfg.RequestTimeoutDuration())
	}
}

func TestLoad_CustomValues(t *testing.T) {
	os.Clearenv()
	setEnv(t, "MM_COLLECTIONS_FILE", "/etc/mm/collections.toml")
	setEnv(t, "MM_DB_DRIVER", "mysql")
	setEnv(t, "MM_DB_DSN", "user:pass@tcp(localhost:3306)/contao")
	setEnv(t, "MM_SERVER_HOST", "0.0.0.0")
	setEnv(t, "MM_SERVER_PORT", "3000")
	setEnv(t, "MM_ENV", "production")
	setEnv(t, "MM_LOG_LEVEL", "debug")
	setEnv(t, "MM_REDIS_URL", "redis://localhost:6379/0")
	setEnv(t, "MM_CACHE_TTL", "60")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.DBDriver != DriverMySQL {
		t.Errorf("DBDriver = %q, want mysql", cfg.DBDriver)
	}
	if cfg.ServerAddr() != "0.0.0.0:3000" {
		t.Errorf("ServerAddr() = %q, want 0.0.0.0:3000", cfg.ServerAddr())
	}
	if cfg.IsDevelopment() {
		t.Error("IsDevelopment() = true, want false")
	}
	if !cfg.UseRedisCache() {
		t.Error("UseRedisCache() = false, want true")
	}
	if cfg.CacheDuration() != time.Minute {
		t.Errorf("CacheDuration() = %v, want 1m", cfg.CacheDuration())
	}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Errorf("SlogLevel() = %v, want debug", cfg.SlogLevel())
	}
}

func TestLoad_MissingCollectionsFile(t *testing.T) {
	os.Clearenv()

	if _, err := Load(); err == nil {
		t.Error("Load() should fail without MM_COLLECTIONS_FILE")
	}
}

func TestLoad_InvalidDriver(t *testing.T) {
	os.Clearenv()
	setEnv(t, "MM_COLLECTIONS_FILE", "./collections.toml")
	setEnv(t, "MM_DB_DRIVER", "postgres")

	if _, err := Load(); err == nil {
		t.Error("Load() should reject unsupported drivers")
	}
}

func TestLoad_NegativeCacheTTL(t *testing.T) {
	os.Clearenv()
	setEnv(t, "MM_COLLECTIONS_FILE", "./collections.toml")
	setEnv(t, "MM_CACHE_TTL", "-1")

	if _, err := Load(); err == nil {
		t.Error("Load() should reject negative cache TTL")
	}
}

func TestLoad_InvalidLimits(t *testing.T) {
	tests := map[string]string{
		"MM_REQUEST_TIMEOUT": "0",
		"MM_API_RATE_BURST":  "0",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			os.Clearenv()
			setEnv(t, "MM_COLLECTIONS_FILE", "./collections.toml")
			setEnv(t, key, value)

			if _, err := Load(); err == nil {
				t.Errorf("Load() should reject %s=%s", key, value)
			}
		})
	}
}

func TestLoad_RateLimitDisabled(t *testing.T) {
	os.Clearenv()
	setEnv(t, "MM_COLLECTIONS_FILE", "./collections.toml")
	setEnv(t, "MM_API_RATE_LIMIT", "0")
	setEnv(t, "MM_API_RATE_BURST", "0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.RateLimitEnabled() {
		t.Error("RateLimitEnabled() = true with MM_API_RATE_LIMIT=0")
	}
}

func TestCacheEnabled(t *testing.T) {
	if (Config{CacheTTL: 0}).CacheEnabled() {
		t.Error("CacheEnabled() = true for TTL 0")
	}
	if !(Config{CacheTTL: 1}).CacheEnabled() {
		t.Error("CacheEnabled() = false for TTL 1")
	}
}

func TestSlogLevel(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			if got := (Config{LogLevel: tt.level}).SlogLevel(); got != tt.want {
				t.Errorf("SlogLevel() = %v, want %v", got, tt.want)
			}
		})
	}
}
