// Copyright (c) 2025-2026 The MetaModels team
// SPDX-License-Identifier: GPL-3.0-or-later

package module

import (
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/metamodels/translatedurl/internal/cache"
)

func TestManifestCopy(t *testing.T) {
	base := NewBaseModule(Manifest{
		Name:           "translatedurl",
		Version:        "1.0.0",
		AttributeTypes: []string{"translatedurl"},
		Requires:       []string{"core"},
	})

	man := base.Manifest()
	if man.Name != "translatedurl" || man.Version != "1.0.0" {
		t.Errorf("Manifest() = %+v", man)
	}

	man.AttributeTypes[0] = "changed"
	man.Requires[0] = "changed"
	again := base.Manifest()
	if again.AttributeTypes[0] != "translatedurl" || again.Requires[0] != "core" {
		t.Error("Manifest() must not share slices with the module")
	}
}

func TestManifestServes(t *testing.T) {
	man := Manifest{AttributeTypes: []string{"translatedurl", "url"}}
	if !man.Serves("url") {
		t.Error("Serves(url) = false")
	}
	if man.Serves("text") {
		t.Error("Serves(text) = true")
	}
	if (Manifest{}).Serves("") {
		t.Error("empty manifest serves nothing")
	}
}

func TestBaseModuleDefaults(t *testing.T) {
	base := NewBaseModule(Manifest{Name: "plain"})

	if base.Context() != nil {
		t.Error("Context() should be nil before Init")
	}
	ctx := &Context{Dialect: "sqlite3"}
	if err := base.Init(ctx); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if base.Context() != ctx {
		t.Error("Context() should return the context passed to Init")
	}
	if err := base.Shutdown(); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
	if base.Translations() != nil {
		t.Error("Translations() should be nil by default")
	}

	// No routes are mounted.
	r := chi.NewRouter()
	base.RegisterAdminRoutes(r)
	if routes := r.Routes(); len(routes) != 0 {
		t.Errorf("RegisterAdminRoutes mounted %d routes", len(routes))
	}
}

func TestContextAttributeDeps(t *testing.T) {
	c := cache.NewSimpleMemoryCache(time.Minute)
	defer func() { _ = c.Close() }()

	ctx := &Context{
		Dialect:  "sqlite3",
		Logger:   newTestLogger(),
		Cache:    c,
		CacheTTL: time.Minute,
	}

	deps := ctx.AttributeDeps()
	if deps.Dialect != "sqlite3" {
		t.Errorf("Dialect = %q", deps.Dialect)
	}
	if deps.Cache != c || deps.CacheTTL != time.Minute {
		t.Error("cache settings not propagated")
	}
	if deps.Logger == nil {
		t.Error("logger not propagated")
	}
}
