// Copyright (c) 2025-2026 The MetaModels team
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/metamodels/translatedurl/internal/attribute"
	"github.com/metamodels/translatedurl/internal/cache"
	"github.com/metamodels/translatedurl/internal/config"
	"github.com/metamodels/translatedurl/internal/i18n"
	"github.com/metamodels/translatedurl/internal/middleware"
	"github.com/metamodels/translatedurl/internal/module"
	"github.com/metamodels/translatedurl/internal/store"
	"github.com/metamodels/translatedurl/internal/version"
	"github.com/metamodels/translatedurl/modules/translatedurl"
)

var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func main() {
	// Parse CLI flags
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "mmtranslatedurl - translated URL attribute service\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MM_COLLECTIONS_FILE    TOML file with collections and attributes (required)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MM_DB_DRIVER           sqlite|sqlite3|mysql (default: sqlite)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MM_DB_DSN              Database DSN (default: ./data/metamodels.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MM_SERVER_PORT         Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MM_REDIS_URL           Redis URL for the value cache (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MM_OTEL_ENABLED        Export traces via OTLP/gRPC (default: false)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	info := version.Info{
		Version:   appVersion,
		GitCommit: appGitCommit,
		BuildTime: appBuildTime,
	}

	if *showVersion {
		_, _ = fmt.Println(info.String())
		os.Exit(0)
	}

	if err := run(info); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run(info version.Info) error {
	// Load .env file if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)
	logger.Info("starting", "version", info.Version, "commit", info.GitCommit, "env", cfg.Env)

	if cfg.OTelEnabled {
		shutdownTracing, err := setupTracing(context.Background(), cfg, info)
		if err != nil {
			return fmt.Errorf("setting up tracing: %w", err)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownTracing(ctx); err != nil {
				slog.Error("error shutting down tracer provider", "error", err)
			}
		}()
		logger.Info("tracing enabled", "endpoint", cfg.OTelEndpoint, "service", cfg.OTelServiceName)
	}

	if err := i18n.Init(logger); err != nil {
		return fmt.Errorf("initializing i18n: %w", err)
	}

	catalog, err := attribute.LoadCatalog(cfg.CollectionsFile)
	if err != nil {
		return fmt.Errorf("loading collections: %w", err)
	}
	logger.Info("collections loaded", "file", cfg.CollectionsFile, "collections", len(catalog.Collections))

	if store.IsSQLite(cfg.DBDriver) {
		if err := os.MkdirAll(filepath.Dir(cfg.DBDSN), 0755); err != nil {
			return fmt.Errorf("creating data directory: %w", err)
		}
	}

	logger.Info("initializing database", "driver", cfg.DBDriver)
	db, err := store.NewDB(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	logger.Info("running database migrations")
	if err := store.Migrate(db, cfg.DBDriver); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	dialect, err := store.Dialect(cfg.DBDriver)
	if err != nil {
		return err
	}
	logger.Info("database ready", "dialect", dialect)

	hooks := module.NewHookRegistry(logger)
	moduleCtx := &module.Context{
		DB:          db,
		Dialect:     dialect,
		Logger:      logger,
		Config:      cfg,
		Hooks:       hooks,
		Collections: catalog,
	}

	if cfg.CacheEnabled() {
		valueCache, err := newValueCache(context.Background(), cfg, logger)
		if err != nil {
			return err
		}
		defer func() {
			if err := valueCache.Close(); err != nil {
				slog.Error("error closing value cache", "error", err)
			}
		}()
		moduleCtx.Cache = valueCache
		moduleCtx.CacheTTL = cfg.CacheDuration()
	}

	moduleRegistry := module.NewRegistry(logger)
	if err := moduleRegistry.Register(translatedurl.New()); err != nil {
		return fmt.Errorf("registering translatedurl module: %w", err)
	}
	if err := moduleRegistry.RegisterCustom(); err != nil {
		return err
	}

	if err := moduleRegistry.InitAll(moduleCtx); err != nil {
		return fmt.Errorf("initializing modules: %w", err)
	}
	defer func() {
		if err := moduleRegistry.ShutdownAll(); err != nil {
			slog.Error("error shutting down modules", "error", err)
		}
	}()

	languages, defaultLang := contentLanguages(catalog)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5, "application/json"))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		status := http.StatusOK
		body := map[string]any{
			"version":  info.Version,
			"database": "ok",
			"modules":  moduleRegistry.ListInfo(),
		}
		if err := db.PingContext(req.Context()); err != nil {
			status = http.StatusServiceUnavailable
			body["database"] = "unavailable"
		}
		if sp, ok := moduleCtx.Cache.(cache.StatsProvider); ok {
			body["cache"] = sp.Stats()
		}
		body["status"] = http.StatusText(status)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())))
		if cfg.RateLimitEnabled() {
			r.Use(middleware.RateLimit(cfg.APIRateLimit, cfg.APIRateBurst))
		}
		r.Use(middleware.Language(languages, defaultLang))
		r.Use(middleware.Timeout(cfg.RequestTimeoutDuration()))
		moduleRegistry.AdminRouteAll(r)
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.RequestTimeoutDuration() + 10*time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

// newValueCache creates the Redis or in-memory value cache.
func newValueCache(ctx context.Context, cfg *config.Config, logger *slog.Logger) (cache.Cache, error) {
	cacheCfg := cache.DefaultConfig()
	cacheCfg.DefaultTTL = cfg.CacheDuration()
	cacheCfg.MaxEntries = cfg.CacheMaxEntries
	if cfg.UseRedisCache() {
		cacheCfg.Type = cache.TypeRedis
		cacheCfg.RedisURL = cfg.RedisURL
		cacheCfg.Prefix = cfg.CachePrefix
	}

	c, info, err := cache.NewCache(ctx, cacheCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("creating value cache: %w", err)
	}

	attrs := []any{"type", info.Type, "ttl", cacheCfg.DefaultTTL, "fallback", info.IsFallback}
	if cfg.UseRedisCache() {
		attrs = append(attrs, "redis", cache.MaskRedisURL(cfg.RedisURL))
	}
	logger.Info("value cache ready", attrs...)
	return c, nil
}

// contentLanguages returns the union of all collection languages and the
// fallback language of the first collection.
func contentLanguages(catalog *attribute.Catalog) ([]string, string) {
	var languages []string
	for _, c := range catalog.Collections {
		for _, lang := range c.Languages {
			if !slices.Contains(languages, lang) {
				languages = append(languages, lang)
			}
		}
	}

	defaultLang := i18n.SupportedLanguages[0]
	if len(catalog.Collections) > 0 {
		defaultLang = catalog.Collections[0].Fallback
	}
	return languages, defaultLang
}
