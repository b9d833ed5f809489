// Copyright (c) 2025-2026 The MetaModels team
// SPDX-License-Identifier: GPL-3.0-or-later

package module

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
)

// Hook is a named extension point whose handlers receive events of type E.
// Events are pointers, so handlers report back by mutating them.
type Hook[E any] struct {
	name string
}

// Name returns the hook name used in logs and registry lookups.
func (h Hook[E]) Name() string {
	return h.name
}

var (
	// WidgetManipulate fires before a backend widget is rendered.
	WidgetManipulate = Hook[*WidgetEvent]{name: "widget.manipulate"}
	// ValuesSaved fires after attribute values were written or removed.
	ValuesSaved = Hook[*ValuesEvent]{name: "values.saved"}
)

// Wizard is a helper control rendered next to a widget.
type Wizard struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// WidgetEvent describes the widget of one collection property.
type WidgetEvent struct {
	Table    string   `json:"table"`
	Property string   `json:"property"`
	Language string   `json:"language"`
	Wizards  []Wizard `json:"wizards"`
}

// AddWizard appends w to the widget.
func (e *WidgetEvent) AddWizard(w Wizard) {
	e.Wizards = append(e.Wizards, w)
}

// ValuesEvent reports a change of attribute values.
type ValuesEvent struct {
	AttributeID int64
	Language    string
	ItemIDs     []int64
	Deleted     bool
}

type hookHandler struct {
	name     string
	module   string
	priority int
	fn       func(context.Context, any) error
}

// HookRegistry holds the handlers of all hooks. Handlers of modules that
// are not active are skipped when a hook fires.
type HookRegistry struct {
	mu       sync.RWMutex
	handlers map[string][]hookHandler
	isActive func(module string) bool
	logger   *slog.Logger
}

// NewHookRegistry creates an empty registry in which every module counts
// as active.
func NewHookRegistry(logger *slog.Logger) *HookRegistry {
	return &HookRegistry{
		handlers: make(map[string][]hookHandler),
		isActive: func(string) bool { return true },
		logger:   logger,
	}
}

// SetIsModuleActive replaces the module activity check.
func (r *HookRegistry) SetIsModuleActive(fn func(module string) bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.isActive = fn
}

// On registers fn for hook on behalf of module. Lower priorities run first;
// handlers of equal priority run in registration order.
func On[E any](r *HookRegistry, hook Hook[E], module, name string, priority int, fn func(context.Context, E) error) {
	h := hookHandler{
		name:     name,
		module:   module,
		priority: priority,
		fn: func(ctx context.Context, ev any) error {
			return fn(ctx, ev.(E))
		},
	}

	// Fire iterates without the lock, so lists are replaced, never mutated.
	r.mu.Lock()
	list := append(slices.Clone(r.handlers[hook.name]), h)
	slices.SortStableFunc(list, func(a, b hookHandler) int {
		return a.priority - b.priority
	})
	r.handlers[hook.name] = list
	r.mu.Unlock()

	r.logger.Debug("hook registered", "hook", hook.name, "handler", name, "module", module, "priority", priority)
}

// Fire runs the handlers of hook with ev. The first handler error stops the
// chain and is returned. Firing on a nil registry is a no-op.
func Fire[E any](ctx context.Context, r *HookRegistry, hook Hook[E], ev E) error {
	if r == nil {
		return nil
	}

	r.mu.RLock()
	list := r.handlers[hook.name]
	isActive := r.isActive
	r.mu.RUnlock()

	for _, h := range list {
		if !isActive(h.module) {
			continue
		}
		if err := h.fn(ctx, ev); err != nil {
			r.logger.Error("hook handler failed", "hook", hook.name, "handler", h.name, "module", h.module, "error", err)
			return fmt.Errorf("hook %s handler %s: %w", hook.name, h.name, err)
		}
	}
	return nil
}

// HandlerCount returns the number of handlers registered for a hook name.
func (r *HookRegistry) HandlerCount(hook string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers[hook])
}

// UnregisterAll removes every handler registered by module.
func (r *HookRegistry) UnregisterAll(module string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for name, list := range r.handlers {
		r.handlers[name] = slices.DeleteFunc(slices.Clone(list), func(h hookHandler) bool {
			return h.module == module
		})
	}
}
