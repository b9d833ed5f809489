// Copyright (c) 2025-2026 The MetaModels team
// SPDX-License-Identifier: GPL-3.0-or-later

package translatedurl

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/metamodels/translatedurl/internal/attribute"
	"github.com/metamodels/translatedurl/internal/module"
)

var (
	// ErrInvalidWidgetValue is returned by WidgetToValue for input of the wrong shape.
	ErrInvalidWidgetValue = errors.New("invalid widget value")

	// ErrInvalidValue is the parent of all Validate errors.
	ErrInvalidValue = errors.New("invalid value")

	ErrMandatory    = fmt.Errorf("%w: link required", ErrInvalidValue)
	ErrExternalLink = fmt.Errorf("%w: external links not allowed", ErrInvalidValue)
)

// Validate checks v against the mandatory and no_external_link settings.
func (a *Attribute) Validate(v Value) error {
	href := strings.TrimSpace(v.Href)
	if href == "" {
		if a.GetBool(SettingMandatory) {
			return fmt.Errorf("attribute %d: %w", a.ID(), ErrMandatory)
		}
		return nil
	}

	if a.GetBool(SettingNoExternalLink) {
		u, err := url.Parse(href)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidValue, err)
		}
		if u.Scheme != "" || u.Host != "" {
			return fmt.Errorf("attribute %d: %w", a.ID(), ErrExternalLink)
		}
	}
	return nil
}

// ValueToWidget returns the bare href when titles are trimmed and the
// pair [title, href] otherwise.
func (a *Attribute) ValueToWidget(v Value) any {
	if a.TrimTitle() {
		return v.Href
	}
	return [2]string{v.Title, v.Href}
}

// WidgetToValue is the inverse of ValueToWidget. Besides [2]string it accepts
// []string and []any of length two, as produced by decoding JSON.
func (a *Attribute) WidgetToValue(widget any, _ int64) (Value, error) {
	if a.TrimTitle() {
		href, ok := widget.(string)
		if !ok {
			return Value{}, fmt.Errorf("%w: want string, got %T", ErrInvalidWidgetValue, widget)
		}
		return Value{Href: href}, nil
	}

	pair, err := widgetPair(widget)
	if err != nil {
		return Value{}, err
	}
	return Value{Title: pair[0], Href: pair[1]}, nil
}

func widgetPair(widget any) ([2]string, error) {
	switch w := widget.(type) {
	case [2]string:
		return w, nil
	case []string:
		if len(w) == 2 {
			return [2]string{w[0], w[1]}, nil
		}
	case []any:
		if len(w) == 2 {
			title, ok1 := w[0].(string)
			href, ok2 := w[1].(string)
			if ok1 && ok2 {
				return [2]string{title, href}, nil
			}
		}
	}
	return [2]string{}, fmt.Errorf("%w: want [title, href], got %T", ErrInvalidWidgetValue, widget)
}

// FieldDefinition returns the backend field definition for the attribute and
// registers the URL picker wizard for its widget. The wizard is registered
// once per attribute no matter how often this is called.
func (a *Attribute) FieldDefinition(overrides map[string]any, hooks *module.HookRegistry) attribute.FieldDefinition {
	fd := a.BaseFieldDefinition(overrides)
	fd.InputType = "text"
	fd.AddClass("wizard inline")

	if !a.TrimTitle() {
		fd.Eval["size"] = 2
		fd.Eval["multiple"] = true
		fd.AddClass("metamodelsattribute_url")
	}

	if hooks != nil {
		a.wizardOnce.Do(func() {
			module.On(hooks, module.WidgetManipulate, TypeName, fmt.Sprintf("url_wizard_%d", a.ID()), 0, a.urlWizard)
		})
	}

	return fd
}

// urlWizard attaches the page picker to the widget of this attribute.
func (a *Attribute) urlWizard(_ context.Context, ev *module.WidgetEvent) error {
	if ev.Table != a.MetaModel().TableName() || ev.Property != a.ColName() {
		return nil
	}

	q := url.Values{}
	q.Set("table", ev.Table)
	q.Set("field", ev.Property)
	if ev.Language != "" {
		q.Set("lang", ev.Language)
	}
	ev.AddWizard(module.Wizard{
		Name: "pagepicker",
		URL:  "/picker/page?" + q.Encode(),
	})
	return nil
}
