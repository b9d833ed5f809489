// Copyright (c) 2025-2026 The MetaModels team
// SPDX-License-Identifier: GPL-3.0-or-later

package attribute

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/metamodels/translatedurl/internal/cache"
)

// ErrUnknownType is returned by New for unregistered attribute types.
var ErrUnknownType = errors.New("unknown attribute type")

// Deps are the services an attribute type may use.
type Deps struct {
	DB       *sql.DB
	Dialect  string
	Cache    cache.Cache // nil disables value caching
	CacheTTL time.Duration
	Logger   *slog.Logger
}

// Factory builds an attribute instance.
type Factory func(def Definition, mm MetaModel, deps Deps) (Attribute, error)

var (
	typesMu sync.RWMutex
	types   = make(map[string]Factory)
)

// RegisterType makes an attribute type available by name. It is meant to be
// called from init() and panics on duplicates, like database/sql.Register.
func RegisterType(name string, f Factory) {
	typesMu.Lock()
	defer typesMu.Unlock()

	if f == nil {
		panic("attribute: RegisterType factory is nil")
	}
	if _, dup := types[name]; dup {
		panic("attribute: RegisterType called twice for " + name)
	}
	types[name] = f
}

// Types returns the registered type names, sorted.
func Types() []string {
	typesMu.RLock()
	defer typesMu.RUnlock()

	names := make([]string, 0, len(types))
	for name := range types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New builds an attribute of def.Type.
func New(def Definition, mm MetaModel, deps Deps) (Attribute, error) {
	typesMu.RLock()
	f, ok := types[def.Type]
	typesMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, def.Type)
	}
	return f(def, mm, deps)
}
