// Copyright (c) 2025-2026 The MetaModels team
// SPDX-License-Identifier: GPL-3.0-or-later

package module

import (
	"testing"

	"github.com/metamodels/translatedurl/internal/testutil"
)

func testModule(name string) *BaseModule {
	m := NewBaseModule(Manifest{Name: name, Version: "1.0.0"})
	return &m
}

// resetCustomModules clears the global custom module queue between tests.
func resetCustomModules() {
	customMu.Lock()
	defer customMu.Unlock()
	customModules = nil
}

func TestRegisterCustomModule(t *testing.T) {
	resetCustomModules()
	defer resetCustomModules()

	RegisterCustomModule(testModule("mod-a"))
	RegisterCustomModule(nil)
	RegisterCustomModule(testModule("mod-b"))

	modules := CustomModules()
	if len(modules) != 2 {
		t.Fatalf("CustomModules() returned %d modules, want 2", len(modules))
	}
	if modules[0].Manifest().Name != "mod-a" || modules[1].Manifest().Name != "mod-b" {
		t.Errorf("unexpected order: %q, %q", modules[0].Manifest().Name, modules[1].Manifest().Name)
	}

	// The returned slice is a copy.
	modules[0] = testModule("tampered")
	if CustomModules()[0].Manifest().Name != "mod-a" {
		t.Error("CustomModules() returned shared data")
	}
}

func TestCustomModulesEmpty(t *testing.T) {
	resetCustomModules()
	defer resetCustomModules()

	modules := CustomModules()
	if modules == nil || len(modules) != 0 {
		t.Errorf("CustomModules() = %v, want non-nil empty slice", modules)
	}
}

func TestRegistryRegisterCustom(t *testing.T) {
	resetCustomModules()
	defer resetCustomModules()

	RegisterCustomModule(testModule("mod-a"))
	RegisterCustomModule(testModule("mod-b"))

	r := NewRegistry(testutil.TestLogger())
	if err := r.RegisterCustom(); err != nil {
		t.Fatalf("RegisterCustom: %v", err)
	}
	if n := len(r.ListInfo()); n != 2 {
		t.Errorf("ListInfo() has %d modules, want 2", n)
	}

	// A second run collides with the registered names.
	if err := r.RegisterCustom(); err == nil {
		t.Error("expected duplicate registration error")
	}
}
