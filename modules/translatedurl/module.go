// Copyright (c) 2025-2026 The MetaModels team
// SPDX-License-Identifier: GPL-3.0-or-later

// Package translatedurl provides the JSON admin API for translated URL
// attributes of the configured collections.
package translatedurl

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/metamodels/translatedurl/internal/attribute"
	urlattr "github.com/metamodels/translatedurl/internal/attribute/translatedurl"
	"github.com/metamodels/translatedurl/internal/module"
)

//go:embed locales
var localesFS embed.FS

// maxBodySize limits PUT and POST request bodies.
const maxBodySize = 1 << 20

// binding is a configured attribute together with its collection.
type binding struct {
	attr       *urlattr.Attribute
	collection attribute.Collection
}

// Module implements the module.Module interface for translated URL attributes.
type Module struct {
	module.BaseModule
	ctx *module.Context

	mu    sync.RWMutex
	attrs map[int64]binding
}

// New creates a new instance of the translated URL module.
func New() *Module {
	return &Module{
		BaseModule: module.NewBaseModule(module.Manifest{
			Name:           urlattr.TypeName,
			Version:        "1.0.0",
			Description:    "Language dependent links with optional titles",
			AttributeTypes: []string{urlattr.TypeName},
		}),
		attrs: make(map[int64]binding),
	}
}

// Init builds an attribute for every configured attribute of type
// translatedurl and registers their widget wizards.
func (m *Module) Init(ctx *module.Context) error {
	m.ctx = ctx

	if ctx.Collections == nil {
		ctx.Logger.Warn("no collections configured, translated URL module has nothing to serve")
		return nil
	}

	attrs := make(map[int64]binding)
	for _, b := range ctx.Collections.OfType(urlattr.TypeName) {
		attr, err := attribute.New(b.Definition, b.Collection, ctx.AttributeDeps())
		if err != nil {
			return fmt.Errorf("creating attribute %d of collection %q: %w", b.Definition.ID, b.Collection.Name, err)
		}
		a, ok := attr.(*urlattr.Attribute)
		if !ok {
			return fmt.Errorf("attribute %d: unexpected implementation %T", b.Definition.ID, attr)
		}
		a.FieldDefinition(nil, ctx.Hooks)
		attrs[a.ID()] = binding{attr: a, collection: b.Collection}
	}

	m.mu.Lock()
	m.attrs = attrs
	m.mu.Unlock()

	ctx.Logger.Info("Translated URL module initialized", "attributes", len(attrs))
	return nil
}

// Shutdown performs cleanup when the module is shutting down.
func (m *Module) Shutdown() error {
	if m.ctx != nil {
		m.ctx.Logger.Info("Translated URL module shutting down")
	}
	return nil
}

// RegisterAdminRoutes registers the JSON admin API.
func (m *Module) RegisterAdminRoutes(r chi.Router) {
	r.Route("/translatedurl", func(r chi.Router) {
		r.Get("/", m.handleList)
		r.Route("/{attrID}", func(r chi.Router) {
			r.Get("/values", m.handleGetValues)
			r.Put("/values", m.handleSetValues)
			r.Delete("/values", m.handleDeleteValues)
			r.Get("/search", m.handleSearch)
			r.Get("/sort", m.handleSort)
			r.Get("/settings", m.handleSettings)
			r.Get("/field", m.handleField)
			r.Post("/widget", m.handleWidget)
		})
	})
}

// Translations returns the module's message catalogs.
func (m *Module) Translations() fs.FS {
	return localesFS
}

// Attribute returns the attribute with the given id.
func (m *Module) Attribute(id int64) (*urlattr.Attribute, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.attrs[id]
	return b.attr, ok
}

func (m *Module) lookup(id int64) (binding, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.attrs[id]
	return b, ok
}

// attributeIDs returns the ids of all attributes in ascending order.
func (m *Module) attributeIDs() []int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]int64, 0, len(m.attrs))
	for id := range m.attrs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
