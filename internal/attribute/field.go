// Copyright (c) 2025-2026 The MetaModels team
// SPDX-License-Identifier: GPL-3.0-or-later

package attribute

import (
	"maps"
	"strings"
)

// FieldDefinition describes how the backend edits an attribute.
type FieldDefinition struct {
	Label     [2]string      `json:"label"`
	InputType string         `json:"inputType"`
	Eval      map[string]any `json:"eval"`
}

// BaseFieldDefinition returns the definition shared by all types, with
// overrides merged into Eval.
func (b *Base) BaseFieldDefinition(overrides map[string]any) FieldDefinition {
	fd := FieldDefinition{
		Label: [2]string{b.def.Name, b.def.Description},
		Eval:  make(map[string]any),
	}
	maps.Copy(fd.Eval, overrides)
	return fd
}

// AddClass appends CSS classes to eval.tl_class.
func (fd *FieldDefinition) AddClass(classes string) {
	if fd.Eval == nil {
		fd.Eval = make(map[string]any)
	}
	current, _ := fd.Eval["tl_class"].(string)
	fd.Eval["tl_class"] = strings.TrimSpace(current + " " + classes)
}

// Class returns eval.tl_class.
func (fd FieldDefinition) Class() string {
	s, _ := fd.Eval["tl_class"].(string)
	return s
}
