// Copyright (c) 2025-2026 The MetaModels team
// SPDX-License-Identifier: GPL-3.0-or-later

package module

import (
	"fmt"
	"sync"
)

// customModules holds modules of additional attribute types, registered from
// the init() of their packages like database/sql drivers.
var (
	customMu      sync.Mutex
	customModules []Module
)

// RegisterCustomModule queues a module for RegisterCustom:
//
//	func init() { module.RegisterCustomModule(New()) }
//
// Nil modules are ignored.
func RegisterCustomModule(m Module) {
	if m == nil {
		return
	}
	customMu.Lock()
	defer customMu.Unlock()
	customModules = append(customModules, m)
}

// CustomModules returns the queued custom modules in registration order.
func CustomModules() []Module {
	customMu.Lock()
	defer customMu.Unlock()
	result := make([]Module, len(customModules))
	copy(result, customModules)
	return result
}

// RegisterCustom registers all queued custom modules with r.
func (r *Registry) RegisterCustom() error {
	for _, m := range CustomModules() {
		if err := r.Register(m); err != nil {
			return fmt.Errorf("registering custom module %s: %w", m.Manifest().Name, err)
		}
	}
	return nil
}
