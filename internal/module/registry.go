// Copyright (c) 2025-2026 The MetaModels team
// SPDX-License-Identifier: GPL-3.0-or-later

package module

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/metamodels/translatedurl/internal/attribute"
	"github.com/metamodels/translatedurl/internal/i18n"
)

// Registry owns the modules of the process. Modules are initialized in
// registration order and shut down in reverse.
type Registry struct {
	mu          sync.RWMutex
	modules     map[string]Module
	order       []string
	inactive    map[string]bool
	initialized map[string]bool
	logger      *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		modules:     make(map[string]Module),
		inactive:    make(map[string]bool),
		initialized: make(map[string]bool),
		logger:      logger,
	}
}

// Register adds m. Module names are unique.
func (r *Registry) Register(m Module) error {
	man := m.Manifest()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.modules[man.Name]; exists {
		return fmt.Errorf("module %q already registered", man.Name)
	}
	r.modules[man.Name] = m
	r.order = append(r.order, man.Name)

	r.logger.Info("module registered", "name", man.Name, "version", man.Version, "types", man.AttributeTypes)
	return nil
}

// Get returns the module registered under name.
func (r *Registry) Get(name string) (Module, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.modules[name]
	return m, ok
}

// InitAll initializes every module once its requirements are known to be
// registered, loads module translations, and warns about catalog
// attributes no module serves.
func (r *Registry) InitAll(ctx *Context) error {
	if err := r.checkRequires(); err != nil {
		return err
	}

	if ctx.Hooks != nil {
		ctx.Hooks.SetIsModuleActive(r.IsActive)
	}

	for _, m := range r.modulesInOrder() {
		name := m.Manifest().Name
		if err := m.Init(ctx); err != nil {
			return fmt.Errorf("initializing module %q: %w", name, err)
		}

		r.mu.Lock()
		r.initialized[name] = true
		r.mu.Unlock()

		if tfs := m.Translations(); tfs != nil {
			if err := i18n.LoadTranslationsFromFS(tfs, "locales"); err != nil {
				r.logger.Warn("failed to load module translations", "module", name, "error", err)
			}
		}
		r.logger.Info("module initialized", "name", name, "active", r.IsActive(name))
	}

	if ctx.Collections != nil {
		for _, b := range r.Unserved(ctx.Collections) {
			r.logger.Warn("no module serves attribute",
				"collection", b.Collection.Name,
				"attribute", b.Definition.ID,
				"type", b.Definition.Type,
			)
		}
	}
	return nil
}

func (r *Registry) checkRequires() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, name := range r.order {
		for _, dep := range r.modules[name].Manifest().Requires {
			if _, ok := r.modules[dep]; !ok {
				return fmt.Errorf("module %q requires %q which is not registered", name, dep)
			}
		}
	}
	return nil
}

func (r *Registry) modulesInOrder() []Module {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Module, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.modules[name])
	}
	return out
}

// Unserved returns the catalog attributes whose type is not served by any
// registered module, in catalog order.
func (r *Registry) Unserved(cat *attribute.Catalog) []attribute.Binding {
	modules := r.modulesInOrder()

	var out []attribute.Binding
	for _, c := range cat.Collections {
		for _, def := range c.Attributes {
			served := false
			for _, m := range modules {
				if m.Manifest().Serves(def.Type) {
					served = true
					break
				}
			}
			if !served {
				out = append(out, attribute.Binding{Definition: def, Collection: c})
			}
		}
	}
	return out
}

// IsActive reports whether the routes and hooks of a module are enabled.
// Modules are active until SetActive disables them.
func (r *Registry) IsActive(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return !r.inactive[name]
}

// SetActive enables or disables a module's routes and hooks.
func (r *Registry) SetActive(name string, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.modules[name]; !exists {
		return fmt.Errorf("module %q not registered", name)
	}
	r.inactive[name] = !active
	r.logger.Info("module status changed", "module", name, "active", active)
	return nil
}

// ShutdownAll shuts modules down in reverse registration order and joins
// their errors.
func (r *Registry) ShutdownAll() error {
	modules := r.modulesInOrder()

	var errs []error
	for i := len(modules) - 1; i >= 0; i-- {
		name := modules[i].Manifest().Name
		if err := modules[i].Shutdown(); err != nil {
			r.logger.Error("module shutdown error", "name", name, "error", err)
			errs = append(errs, fmt.Errorf("shutting down module %q: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// AdminRouteAll mounts the admin routes of every module. Requests to
// inactive modules get a 404.
func (r *Registry) AdminRouteAll(router chi.Router) {
	for _, m := range r.modulesInOrder() {
		name := m.Manifest().Name
		router.Group(func(sub chi.Router) {
			sub.Use(r.requireActive(name))
			m.RegisterAdminRoutes(sub)
		})
	}
}

func (r *Registry) requireActive(name string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if !r.IsActive(name) {
				r.logger.Debug("blocked request to inactive module", "module", name, "path", req.URL.Path)
				http.NotFound(w, req)
				return
			}
			next.ServeHTTP(w, req)
		})
	}
}

// Info describes a registered module.
type Info struct {
	Name           string   `json:"name"`
	Version        string   `json:"version"`
	Description    string   `json:"description"`
	AttributeTypes []string `json:"attribute_types"`
	Initialized    bool     `json:"initialized"`
	Active         bool     `json:"active"`
}

// ListInfo describes all modules in registration order.
func (r *Registry) ListInfo() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]Info, 0, len(r.order))
	for _, name := range r.order {
		man := r.modules[name].Manifest()
		infos = append(infos, Info{
			Name:           man.Name,
			Version:        man.Version,
			Description:    man.Description,
			AttributeTypes: man.AttributeTypes,
			Initialized:    r.initialized[name],
			Active:         !r.inactive[name],
		})
	}
	return infos
}
