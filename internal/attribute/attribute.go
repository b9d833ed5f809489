// Copyright (c) 2025-2026 The MetaModels team
// SPDX-License-Identifier: GPL-3.0-or-later

// Package attribute defines the contract between item collections and the
// attribute types that store values for their items. An attribute type
// implements Attribute plus whichever capability interfaces it supports.
package attribute

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// MetaModel is the runtime view of the collection owning an attribute.
type MetaModel interface {
	// TableName returns the item table; it has an integer id column.
	TableName() string
	// ActiveLanguage returns the language of the current request.
	ActiveLanguage() string
	// FallbackLanguage returns the language used when the active one has no value.
	FallbackLanguage() string
}

// Attribute is implemented by every attribute type.
type Attribute interface {
	ID() int64
	ColName() string
	Type() string
	MetaModel() MetaModel
	// SettingNames lists the configuration keys the attribute understands.
	SettingNames() []string
}

// Translated is implemented by attributes storing one value per item and language.
type Translated[V any] interface {
	Attribute
	TranslatedDataFor(ctx context.Context, ids []int64, language string) (map[int64]V, error)
	SetTranslatedDataFor(ctx context.Context, values map[int64]V, language string) error
	UnsetValueFor(ctx context.Context, ids []int64, language string) error
}

// Searchable is implemented by attributes supporting wildcard search.
// In patterns "*" matches any sequence and "?" a single character.
type Searchable interface {
	SearchForInLanguages(ctx context.Context, pattern string, languages []string) ([]int64, error)
}

// Sortable is implemented by attributes that can order item ids by their values.
type Sortable interface {
	SortIDs(ctx context.Context, ids []int64, direction string) ([]int64, error)
}

// Filterable is implemented by attributes usable in frontend filters.
type Filterable[V any] interface {
	FilterOptions(ctx context.Context, ids []int64, usedOnly bool) (map[string]FilterOption, error)
	FilterURLValue(value V) string
}

// FilterOption is one selectable value of a filter.
type FilterOption struct {
	Label string
	Count int
}

// WidgetConverter converts between stored values and the widget representation.
type WidgetConverter[V any] interface {
	ValueToWidget(value V) any
	WidgetToValue(widget any, itemID int64) (V, error)
}

// Sort directions understood by Sortable.
const (
	SortAsc  = "ASC"
	SortDesc = "DESC"
)

// NormalizeDirection maps DESC in any letter case to SortDesc and anything
// else to SortAsc.
func NormalizeDirection(direction string) string {
	if strings.EqualFold(strings.TrimSpace(direction), SortDesc) {
		return SortDesc
	}
	return SortAsc
}

// BaseSettingNames are the settings every attribute understands.
var BaseSettingNames = []string{"name", "description", "type", "colname", "isvariant", "isunique"}

// Definition is the configuration of one attribute instance.
type Definition struct {
	ID          int64          `toml:"id"`
	ColName     string         `toml:"colname"`
	Type        string         `toml:"type"`
	Name        string         `toml:"name"`
	Description string         `toml:"description"`
	Settings    map[string]any `toml:"settings"`
}

// Get returns a setting value or nil.
func (d Definition) Get(key string) any {
	if d.Settings == nil {
		return nil
	}
	return d.Settings[key]
}

// GetBool interprets a setting as a checkbox value.
func (d Definition) GetBool(key string) bool {
	switch v := d.Get(key).(type) {
	case bool:
		return v
	case int64:
		return v != 0
	case int:
		return v != 0
	case float64:
		return v != 0
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		return err == nil && b
	default:
		return false
	}
}

// Base carries what every attribute type shares. Types embed it.
type Base struct {
	def Definition
	mm  MetaModel
}

// NewBase creates a Base for the given definition and owning collection.
func NewBase(def Definition, mm MetaModel) (Base, error) {
	if def.ID <= 0 {
		return Base{}, fmt.Errorf("attribute id must be positive, got %d", def.ID)
	}
	if def.ColName == "" {
		return Base{}, fmt.Errorf("attribute %d has no column name", def.ID)
	}
	if mm == nil {
		return Base{}, fmt.Errorf("attribute %d has no collection", def.ID)
	}
	return Base{def: def, mm: mm}, nil
}

// ID returns the attribute id.
func (b *Base) ID() int64 { return b.def.ID }

// ColName returns the column name of the attribute.
func (b *Base) ColName() string { return b.def.ColName }

// Type returns the attribute type name.
func (b *Base) Type() string { return b.def.Type }

// Name returns the human readable name.
func (b *Base) Name() string { return b.def.Name }

// Definition returns the attribute configuration.
func (b *Base) Definition() Definition { return b.def }

// MetaModel returns the owning collection.
func (b *Base) MetaModel() MetaModel { return b.mm }

// WithMetaModel returns a copy of b owned by mm. A nil mm keeps the current one.
func (b *Base) WithMetaModel(mm MetaModel) Base {
	cp := *b
	if mm != nil {
		cp.mm = mm
	}
	return cp
}

// Get returns a setting value.
func (b *Base) Get(key string) any { return b.def.Get(key) }

// GetBool returns a boolean setting.
func (b *Base) GetBool(key string) bool { return b.def.GetBool(key) }

// SettingNames returns the base setting names.
func (b *Base) SettingNames() []string {
	return slices.Clone(BaseSettingNames)
}

// MergeSettingNames appends extra names to base, dropping duplicates and
// keeping the first occurrence.
func MergeSettingNames(base []string, extra ...string) []string {
	out := make([]string, 0, len(base)+len(extra))
	seen := make(map[string]struct{}, len(base)+len(extra))
	for _, name := range slices.Concat(base, extra) {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
