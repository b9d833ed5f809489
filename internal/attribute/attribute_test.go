// Copyright (c) 2025-2026 The MetaModels team
// SPDX-License-Identifier: GPL-3.0-or-later

package attribute

import (
	"errors"
	"slices"
	"testing"
)

func TestDefinitionGetBool(t *testing.T) {
	def := Definition{Settings: map[string]any{
		"yes":      true,
		"no":       false,
		"one":      int64(1),
		"zero":     int64(0),
		"string1":  "1",
		"stringT":  "true",
		"garbage":  "maybe",
		"floatOne": 1.0,
	}}

	tests := map[string]bool{
		"yes":      true,
		"no":       false,
		"one":      true,
		"zero":     false,
		"string1":  true,
		"stringT":  true,
		"garbage":  false,
		"floatOne": true,
		"missing":  false,
	}

	for key, want := range tests {
		if got := def.GetBool(key); got != want {
			t.Errorf("GetBool(%q) = %v, want %v", key, got, want)
		}
	}

	if (Definition{}).Get("anything") != nil {
		t.Error("Get on nil settings should return nil")
	}
}

func TestNormalizeDirection(t *testing.T) {
	tests := map[string]string{
		"DESC":       SortDesc,
		"ASC":        SortAsc,
		"desc":       SortDesc,
		"Desc":       SortDesc,
		" DESC ":     SortDesc,
		"descending": SortAsc,
		"sideways":   SortAsc,
		"":           SortAsc,
		"up":         SortAsc,
	}
	for in, want := range tests {
		if got := NormalizeDirection(in); got != want {
			t.Errorf("NormalizeDirection(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMergeSettingNames(t *testing.T) {
	got := MergeSettingNames([]string{"name", "type"}, "mandatory", "type", "trim_title", "mandatory")
	want := []string{"name", "type", "mandatory", "trim_title"}
	if !slices.Equal(got, want) {
		t.Errorf("MergeSettingNames = %v, want %v", got, want)
	}
}

func TestNewBase(t *testing.T) {
	mm := Collection{Name: "p", Table: "mm_p", Languages: []string{"en"}, Fallback: "en"}

	if _, err := NewBase(Definition{ID: 0, ColName: "x"}, mm); err == nil {
		t.Error("NewBase should reject id 0")
	}
	if _, err := NewBase(Definition{ID: 1}, mm); err == nil {
		t.Error("NewBase should reject an empty column name")
	}
	if _, err := NewBase(Definition{ID: 1, ColName: "x"}, nil); err == nil {
		t.Error("NewBase should reject a nil collection")
	}

	b, err := NewBase(Definition{ID: 7, ColName: "link", Type: "translatedurl", Name: "Link"}, mm)
	if err != nil {
		t.Fatalf("NewBase: %v", err)
	}
	if b.ID() != 7 || b.ColName() != "link" || b.Type() != "translatedurl" || b.Name() != "Link" {
		t.Errorf("unexpected base: %+v", b.Definition())
	}
	if b.MetaModel().TableName() != "mm_p" {
		t.Errorf("MetaModel().TableName() = %q", b.MetaModel().TableName())
	}

	names := b.SettingNames()
	names[0] = "changed"
	if BaseSettingNames[0] != "name" {
		t.Error("SettingNames must return a copy")
	}

	de := Collection{Name: "p", Table: "mm_p", Languages: []string{"en", "de"}, Fallback: "en"}.WithActiveLanguage("de")
	rebound := b.WithMetaModel(de)
	if got := rebound.MetaModel().ActiveLanguage(); got != "de" {
		t.Errorf("rebound ActiveLanguage() = %q, want de", got)
	}
	if got := b.MetaModel().ActiveLanguage(); got != "en" {
		t.Errorf("original ActiveLanguage() = %q, want en", got)
	}
	if kept := b.WithMetaModel(nil); kept.MetaModel().TableName() != "mm_p" {
		t.Error("WithMetaModel(nil) should keep the collection")
	}
}

func TestFieldDefinitionClasses(t *testing.T) {
	b, err := NewBase(Definition{ID: 1, ColName: "x", Name: "X", Description: "an x"},
		Collection{Table: "t", Languages: []string{"en"}, Fallback: "en"})
	if err != nil {
		t.Fatalf("NewBase: %v", err)
	}

	fd := b.BaseFieldDefinition(map[string]any{"tl_class": "w50"})
	if fd.Label != [2]string{"X", "an x"} {
		t.Errorf("Label = %v", fd.Label)
	}

	fd.AddClass("wizard inline")
	if got := fd.Class(); got != "w50 wizard inline" {
		t.Errorf("Class() = %q", got)
	}

	var empty FieldDefinition
	empty.AddClass("wizard")
	if got := empty.Class(); got != "wizard" {
		t.Errorf("Class() on empty = %q", got)
	}
}

type stubAttribute struct{ Base }

func TestTypeRegistry(t *testing.T) {
	RegisterType("stub-test", func(def Definition, mm MetaModel, _ Deps) (Attribute, error) {
		b, err := NewBase(def, mm)
		if err != nil {
			return nil, err
		}
		return &stubAttribute{Base: b}, nil
	})

	if !slices.Contains(Types(), "stub-test") {
		t.Errorf("Types() = %v, missing stub-test", Types())
	}

	mm := Collection{Table: "t", Languages: []string{"en"}, Fallback: "en"}
	attr, err := New(Definition{ID: 3, ColName: "c", Type: "stub-test"}, mm, Deps{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if attr.ID() != 3 {
		t.Errorf("ID() = %d, want 3", attr.ID())
	}

	_, err = New(Definition{ID: 3, ColName: "c", Type: "nope"}, mm, Deps{})
	if !errors.Is(err, ErrUnknownType) {
		t.Errorf("New(unknown) error = %v, want ErrUnknownType", err)
	}
}

func TestRegisterTypeDuplicatePanics(t *testing.T) {
	factory := func(Definition, MetaModel, Deps) (Attribute, error) { return nil, nil }
	RegisterType("dup-test", factory)

	defer func() {
		if recover() == nil {
			t.Error("second RegisterType should panic")
		}
	}()
	RegisterType("dup-test", factory)
}
