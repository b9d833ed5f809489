// Copyright (c) 2025-2026 The MetaModels team
// SPDX-License-Identifier: GPL-3.0-or-later

package attribute

import (
	"fmt"
	"os"
	"regexp"
	"slices"

	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Collection is a configured item collection. It implements MetaModel.
type Collection struct {
	Name       string       `toml:"name"`
	Table      string       `toml:"table"`
	Languages  []string     `toml:"languages"`
	Fallback   string       `toml:"fallback"`
	Attributes []Definition `toml:"attribute"`

	active string
}

// TableName returns the item table of the collection.
func (c Collection) TableName() string { return c.Table }

// FallbackLanguage returns the fallback language.
func (c Collection) FallbackLanguage() string { return c.Fallback }

// ActiveLanguage returns the request language, or the fallback language
// when none was set.
func (c Collection) ActiveLanguage() string {
	if c.active == "" {
		return c.Fallback
	}
	return c.active
}

// HasLanguage reports whether lang is one of the content languages.
func (c Collection) HasLanguage(lang string) bool {
	return slices.Contains(c.Languages, lang)
}

// WithActiveLanguage returns a copy of the collection with lang active.
// Languages outside the collection leave the fallback language active.
func (c Collection) WithActiveLanguage(lang string) Collection {
	if c.HasLanguage(lang) {
		c.active = lang
	} else {
		c.active = ""
	}
	return c
}

// Attribute returns the definition with the given id.
func (c Collection) Attribute(id int64) (Definition, bool) {
	for _, def := range c.Attributes {
		if def.ID == id {
			return def, true
		}
	}
	return Definition{}, false
}

func (c Collection) validate() error {
	if c.Name == "" {
		return fmt.Errorf("collection without name")
	}
	if !tableNamePattern.MatchString(c.Table) {
		return fmt.Errorf("collection %q: invalid table name %q", c.Name, c.Table)
	}
	if len(c.Languages) == 0 {
		return fmt.Errorf("collection %q: no languages", c.Name)
	}
	for _, lang := range c.Languages {
		if _, err := language.Parse(lang); err != nil {
			return fmt.Errorf("collection %q: invalid language %q: %w", c.Name, lang, err)
		}
	}
	if !c.HasLanguage(c.Fallback) {
		return fmt.Errorf("collection %q: fallback language %q is not one of %v", c.Name, c.Fallback, c.Languages)
	}
	for _, def := range c.Attributes {
		if def.ColName == "" || def.Type == "" {
			return fmt.Errorf("collection %q: attribute %d needs colname and type", c.Name, def.ID)
		}
	}
	return nil
}

// Catalog holds all configured collections.
type Catalog struct {
	Collections []Collection `toml:"collection"`
}

// Binding pairs an attribute definition with its collection.
type Binding struct {
	Definition Definition
	Collection Collection
}

// ParseCatalog decodes and validates a TOML collection catalog.
func ParseCatalog(data []byte) (*Catalog, error) {
	var cat Catalog
	if err := toml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("decoding collections: %w", err)
	}

	ids := make(map[int64]string)
	names := make(map[string]struct{})
	for _, c := range cat.Collections {
		if err := c.validate(); err != nil {
			return nil, err
		}
		if _, dup := names[c.Name]; dup {
			return nil, fmt.Errorf("collection %q defined twice", c.Name)
		}
		names[c.Name] = struct{}{}

		for _, def := range c.Attributes {
			if def.ID <= 0 {
				return nil, fmt.Errorf("collection %q: attribute %q needs a positive id", c.Name, def.ColName)
			}
			if owner, dup := ids[def.ID]; dup {
				return nil, fmt.Errorf("attribute id %d used by collections %q and %q", def.ID, owner, c.Name)
			}
			ids[def.ID] = c.Name
		}
	}

	return &cat, nil
}

// LoadCatalog reads a collection catalog from a TOML file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading collections file: %w", err)
	}
	return ParseCatalog(data)
}

// Collection returns the collection with the given name.
func (cat *Catalog) Collection(name string) (Collection, bool) {
	for _, c := range cat.Collections {
		if c.Name == name {
			return c, true
		}
	}
	return Collection{}, false
}

// Find returns the attribute with the given id and its collection.
func (cat *Catalog) Find(attrID int64) (Binding, bool) {
	for _, c := range cat.Collections {
		if def, ok := c.Attribute(attrID); ok {
			return Binding{Definition: def, Collection: c}, true
		}
	}
	return Binding{}, false
}

// OfType returns all attributes of the given type in catalog order.
func (cat *Catalog) OfType(typeName string) []Binding {
	var out []Binding
	for _, c := range cat.Collections {
		for _, def := range c.Attributes {
			if def.Type == typeName {
				out = append(out, Binding{Definition: def, Collection: c})
			}
		}
	}
	return out
}
