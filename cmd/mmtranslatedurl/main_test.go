// Copyright (c) 2025-2026 The MetaModels team
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"reflect"
	"testing"

	"github.com/metamodels/translatedurl/internal/attribute"
)

func TestContentLanguages(t *testing.T) {
	catalog := &attribute.Catalog{Collections: []attribute.Collection{
		{Name: "products", Languages: []string{"de", "en"}, Fallback: "de"},
		{Name: "news", Languages: []string{"en", "fr"}, Fallback: "en"},
	}}

	languages, defaultLang := contentLanguages(catalog)
	if want := []string{"de", "en", "fr"}; !reflect.DeepEqual(languages, want) {
		t.Errorf("languages = %v, want %v", languages, want)
	}
	if defaultLang != "de" {
		t.Errorf("default language = %q, want de", defaultLang)
	}

	languages, defaultLang = contentLanguages(&attribute.Catalog{})
	if len(languages) != 0 {
		t.Errorf("expected no languages, got %v", languages)
	}
	if defaultLang != "en" {
		t.Errorf("default language = %q, want en", defaultLang)
	}
}
