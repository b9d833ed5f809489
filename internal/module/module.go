// Copyright (c) 2025-2026 The MetaModels team
// SPDX-License-Identifier: GPL-3.0-or-later

// Package module provides the extension points attribute type plugins use to
// integrate with the host: lifecycle, admin routes, translations and hooks.
package module

import (
	"database/sql"
	"io/fs"
	"log/slog"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/metamodels/translatedurl/internal/attribute"
	"github.com/metamodels/translatedurl/internal/cache"
	"github.com/metamodels/translatedurl/internal/config"
)

// Context provides access to application services for modules.
type Context struct {
	DB          *sql.DB
	Dialect     string
	Logger      *slog.Logger
	Config      *config.Config
	Hooks       *HookRegistry
	Collections *attribute.Catalog
	Cache       cache.Cache // nil when value caching is disabled
	CacheTTL    time.Duration
}

// AttributeDeps returns the services handed to attribute type factories.
func (c *Context) AttributeDeps() attribute.Deps {
	return attribute.Deps{
		DB:       c.DB,
		Dialect:  c.Dialect,
		Cache:    c.Cache,
		CacheTTL: c.CacheTTL,
		Logger:   c.Logger,
	}
}

// Manifest describes a module.
type Manifest struct {
	Name        string
	Version     string
	Description string
	// AttributeTypes lists the attribute types whose admin API the module
	// serves.
	AttributeTypes []string
	// Requires lists modules that must be registered as well.
	Requires []string
}

// Serves reports whether the module handles attributes of typeName.
func (m Manifest) Serves(typeName string) bool {
	return slices.Contains(m.AttributeTypes, typeName)
}

// Module is an attribute type plugin.
type Module interface {
	Manifest() Manifest

	// Init binds the module to the host. It runs once, before any route
	// is served.
	Init(ctx *Context) error
	Shutdown() error

	// RegisterAdminRoutes mounts the module's JSON API.
	RegisterAdminRoutes(r chi.Router)

	// Translations returns a filesystem holding locales/{lang}/messages.json,
	// or nil.
	Translations() fs.FS
}

// BaseModule implements Module with no-ops. Modules embed it and override
// what they need.
type BaseModule struct {
	manifest Manifest
	ctx      *Context
}

// NewBaseModule creates a BaseModule for manifest.
func NewBaseModule(manifest Manifest) BaseModule {
	return BaseModule{manifest: manifest}
}

// Manifest returns a copy of the module manifest.
func (m *BaseModule) Manifest() Manifest {
	out := m.manifest
	out.AttributeTypes = slices.Clone(m.manifest.AttributeTypes)
	out.Requires = slices.Clone(m.manifest.Requires)
	return out
}

func (m *BaseModule) Init(ctx *Context) error {
	m.ctx = ctx
	return nil
}

func (m *BaseModule) Shutdown() error { return nil }

func (m *BaseModule) RegisterAdminRoutes(_ chi.Router) {}

func (m *BaseModule) Translations() fs.FS { return nil }

// Context returns the context passed to Init.
func (m *BaseModule) Context() *Context { return m.ctx }
