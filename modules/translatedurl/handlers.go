// Copyright (c) 2025-2026 The MetaModels team
// SPDX-License-Identifier: GPL-3.0-or-later

package translatedurl

import (
	"errors"
	"maps"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/metamodels/translatedurl/internal/attribute"
	urlattr "github.com/metamodels/translatedurl/internal/attribute/translatedurl"
	"github.com/metamodels/translatedurl/internal/i18n"
	"github.com/metamodels/translatedurl/internal/middleware"
	"github.com/metamodels/translatedurl/internal/module"
	"github.com/metamodels/translatedurl/internal/util"
)

// request bundles what every attribute handler needs.
type request struct {
	attr       *urlattr.Attribute
	collection attribute.Collection
	uiLang     string
}

// resolve looks up the attribute of the route and binds it to the request
// language. It writes the error response and returns false on failure.
func (m *Module) resolve(w http.ResponseWriter, r *http.Request) (request, bool) {
	active := middleware.GetLanguageCode(r)
	uiLang := i18n.MatchLanguage(active)

	id, err := strconv.ParseInt(chi.URLParam(r, "attrID"), 10, 64)
	if err != nil || id <= 0 {
		writeJSONError(w, http.StatusBadRequest, i18n.T(uiLang, "error.invalid_attribute"))
		return request{}, false
	}

	b, ok := m.lookup(id)
	if !ok {
		writeJSONError(w, http.StatusNotFound, i18n.T(uiLang, "error.unknown_attribute", id))
		return request{}, false
	}

	coll := b.collection.WithActiveLanguage(active)
	return request{
		attr:       b.attr.ForMetaModel(coll),
		collection: coll,
		uiLang:     uiLang,
	}, true
}

// targetLanguage returns the lang query parameter, or the active language
// when it is absent. The second result is false for unknown languages.
func (req request) targetLanguage(r *http.Request) (string, bool, bool) {
	lang := r.URL.Query().Get("lang")
	if lang == "" {
		return req.collection.ActiveLanguage(), false, true
	}
	return lang, true, req.collection.HasLanguage(lang)
}

func (req request) parseIDs(w http.ResponseWriter, r *http.Request) ([]int64, bool) {
	ids, err := util.ParseInt64List(r.URL.Query()["ids"]...)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, i18n.T(req.uiLang, "error.invalid_ids", err.Error()))
		return nil, false
	}
	return ids, true
}

func (m *Module) internalError(w http.ResponseWriter, req request, msg string, err error) {
	m.ctx.Logger.Error(msg, "attribute", req.attr.ID(), "error", err)
	writeJSONError(w, http.StatusInternalServerError, i18n.T(req.uiLang, "error.internal"))
}

func (m *Module) valuesSaved(r *http.Request, req request, language string, ids []int64, deleted bool) {
	err := module.Fire(r.Context(), m.ctx.Hooks, module.ValuesSaved, &module.ValuesEvent{
		AttributeID: req.attr.ID(),
		Language:    language,
		ItemIDs:     ids,
		Deleted:     deleted,
	})
	if err != nil {
		m.ctx.Logger.Warn("values.saved hook failed", "attribute", req.attr.ID(), "error", err)
	}
}

// attributeInfo describes an attribute in API responses.
type attributeInfo struct {
	ID         int64    `json:"id"`
	ColName    string   `json:"colname"`
	Name       string   `json:"name"`
	Collection string   `json:"collection"`
	Table      string   `json:"table"`
	Languages  []string `json:"languages"`
	Fallback   string   `json:"fallback"`
	TrimTitle  bool     `json:"trim_title"`
}

// handleList handles GET /translatedurl - lists the configured attributes.
func (m *Module) handleList(w http.ResponseWriter, _ *http.Request) {
	ids := m.attributeIDs()
	infos := make([]attributeInfo, 0, len(ids))
	for _, id := range ids {
		b, ok := m.lookup(id)
		if !ok {
			continue
		}
		infos = append(infos, attributeInfo{
			ID:         id,
			ColName:    b.attr.ColName(),
			Name:       b.attr.Name(),
			Collection: b.collection.Name,
			Table:      b.collection.Table,
			Languages:  b.collection.Languages,
			Fallback:   b.collection.Fallback,
			TrimTitle:  b.attr.TrimTitle(),
		})
	}
	writeJSONSuccess(w, map[string]any{"attributes": infos})
}

// handleGetValues handles GET /translatedurl/{attrID}/values.
// Without lang the active language is used, completed from the fallback language.
func (m *Module) handleGetValues(w http.ResponseWriter, r *http.Request) {
	req, ok := m.resolve(w, r)
	if !ok {
		return
	}
	ids, ok := req.parseIDs(w, r)
	if !ok {
		return
	}
	lang, explicit, known := req.targetLanguage(r)
	if !known {
		writeJSONError(w, http.StatusBadRequest, i18n.T(req.uiLang, "error.unknown_language", lang))
		return
	}

	var (
		values map[int64]urlattr.Value
		err    error
	)
	if explicit {
		values, err = req.attr.TranslatedDataFor(r.Context(), ids, lang)
	} else {
		values, err = req.attr.DataFor(r.Context(), ids)
	}
	if err != nil {
		m.internalError(w, req, "failed to load values", err)
		return
	}

	writeJSONSuccess(w, map[string]any{
		"language": lang,
		"values":   values,
	})
}

// handleSetValues handles PUT /translatedurl/{attrID}/values.
// The body maps item ids to values; all rows are replaced in one transaction.
func (m *Module) handleSetValues(w http.ResponseWriter, r *http.Request) {
	req, ok := m.resolve(w, r)
	if !ok {
		return
	}
	lang, _, known := req.targetLanguage(r)
	if !known {
		writeJSONError(w, http.StatusBadRequest, i18n.T(req.uiLang, "error.unknown_language", lang))
		return
	}

	var body map[string]urlattr.Value
	if err := decodeJSON(w, r, &body); err != nil {
		writeJSONError(w, http.StatusBadRequest, i18n.T(req.uiLang, "error.invalid_body"))
		return
	}

	values := make(map[int64]urlattr.Value, len(body))
	for key, v := range body {
		id, err := strconv.ParseInt(strings.TrimSpace(key), 10, 64)
		if err != nil || id <= 0 {
			writeJSONError(w, http.StatusBadRequest, i18n.T(req.uiLang, "error.invalid_ids", key))
			return
		}
		if err := req.attr.Validate(v); err != nil {
			writeJSONError(w, http.StatusBadRequest, i18n.T(req.uiLang, validationMessage(err), id))
			return
		}
		values[id] = v
	}

	tx, err := m.ctx.DB.BeginTx(r.Context(), nil)
	if err != nil {
		m.internalError(w, req, "failed to begin transaction", err)
		return
	}
	if err := req.attr.WithDB(tx).SetTranslatedDataFor(r.Context(), values, lang); err != nil {
		_ = tx.Rollback()
		m.internalError(w, req, "failed to save values", err)
		return
	}
	if err := tx.Commit(); err != nil {
		m.internalError(w, req, "failed to commit values", err)
		return
	}

	ids := slices.Sorted(maps.Keys(values))
	req.attr.Invalidate(r.Context(), ids, lang)
	m.valuesSaved(r, req, lang, ids, false)

	m.ctx.Logger.Info("translated URLs saved", "attribute", req.attr.ID(), "language", lang, "items", len(ids))
	writeJSONSuccess(w, map[string]any{
		"language": lang,
		"saved":    len(ids),
	})
}

// validationMessage maps a Validate error onto a message key.
func validationMessage(err error) string {
	switch {
	case errors.Is(err, urlattr.ErrMandatory):
		return "error.mandatory"
	case errors.Is(err, urlattr.ErrExternalLink):
		return "error.external_link"
	default:
		return "error.invalid_value"
	}
}

// handleDeleteValues handles DELETE /translatedurl/{attrID}/values.
func (m *Module) handleDeleteValues(w http.ResponseWriter, r *http.Request) {
	req, ok := m.resolve(w, r)
	if !ok {
		return
	}
	ids, ok := req.parseIDs(w, r)
	if !ok {
		return
	}
	lang, _, known := req.targetLanguage(r)
	if !known {
		writeJSONError(w, http.StatusBadRequest, i18n.T(req.uiLang, "error.unknown_language", lang))
		return
	}

	if err := req.attr.UnsetValueFor(r.Context(), ids, lang); err != nil {
		m.internalError(w, req, "failed to delete values", err)
		return
	}
	if len(ids) > 0 {
		m.valuesSaved(r, req, lang, ids, true)
	}

	writeJSONSuccess(w, map[string]any{
		"language": lang,
		"deleted":  len(ids),
	})
}

// handleSearch handles GET /translatedurl/{attrID}/search?q=pattern&lang=xx.
// Repeated lang parameters search several languages, none searches all.
func (m *Module) handleSearch(w http.ResponseWriter, r *http.Request) {
	req, ok := m.resolve(w, r)
	if !ok {
		return
	}

	languages := r.URL.Query()["lang"]
	for _, lang := range languages {
		if !req.collection.HasLanguage(lang) {
			writeJSONError(w, http.StatusBadRequest, i18n.T(req.uiLang, "error.unknown_language", lang))
			return
		}
	}

	ids, err := req.attr.SearchForInLanguages(r.Context(), r.URL.Query().Get("q"), languages)
	if err != nil {
		m.internalError(w, req, "failed to search values", err)
		return
	}
	writeJSONSuccess(w, map[string]any{"ids": ids})
}

// handleSort handles GET /translatedurl/{attrID}/sort?ids=..&dir=ASC|DESC.
func (m *Module) handleSort(w http.ResponseWriter, r *http.Request) {
	req, ok := m.resolve(w, r)
	if !ok {
		return
	}
	ids, ok := req.parseIDs(w, r)
	if !ok {
		return
	}

	direction := attribute.NormalizeDirection(r.URL.Query().Get("dir"))
	sorted, err := req.attr.SortIDs(r.Context(), ids, direction)
	if err != nil {
		m.internalError(w, req, "failed to sort items", err)
		return
	}
	if sorted == nil {
		sorted = []int64{}
	}
	writeJSONSuccess(w, map[string]any{
		"direction": direction,
		"ids":       sorted,
	})
}

// setting is a setting name with its localized label.
type setting struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	Value any    `json:"value,omitempty"`
}

// handleSettings handles GET /translatedurl/{attrID}/settings.
func (m *Module) handleSettings(w http.ResponseWriter, r *http.Request) {
	req, ok := m.resolve(w, r)
	if !ok {
		return
	}

	names := req.attr.SettingNames()
	settings := make([]setting, 0, len(names))
	for _, name := range names {
		settings = append(settings, setting{
			Name:  name,
			Label: i18n.T(req.uiLang, "setting."+name),
			Value: req.attr.Get(name),
		})
	}
	writeJSONSuccess(w, map[string]any{
		"type":     i18n.T(req.uiLang, "type.translatedurl"),
		"settings": settings,
	})
}

// handleField handles GET /translatedurl/{attrID}/field - returns the field
// definition and the wizards contributed through the widget.manipulate hook.
func (m *Module) handleField(w http.ResponseWriter, r *http.Request) {
	req, ok := m.resolve(w, r)
	if !ok {
		return
	}

	fd := req.attr.FieldDefinition(nil, m.ctx.Hooks)

	ev := &module.WidgetEvent{
		Table:    req.collection.TableName(),
		Property: req.attr.ColName(),
		Language: req.collection.ActiveLanguage(),
	}
	if err := module.Fire(r.Context(), m.ctx.Hooks, module.WidgetManipulate, ev); err != nil {
		m.internalError(w, req, "widget hook failed", err)
		return
	}

	wizards := ev.Wizards
	if wizards == nil {
		wizards = []module.Wizard{}
	}
	writeJSONSuccess(w, map[string]any{
		"field":   fd,
		"wizards": wizards,
	})
}

// widgetRequest is the body of POST /translatedurl/{attrID}/widget.
type widgetRequest struct {
	ItemID int64 `json:"item_id"`
	Widget any   `json:"widget"`
}

// handleWidget handles POST /translatedurl/{attrID}/widget - converts widget
// input into a value and back.
func (m *Module) handleWidget(w http.ResponseWriter, r *http.Request) {
	req, ok := m.resolve(w, r)
	if !ok {
		return
	}

	var body widgetRequest
	if err := decodeJSON(w, r, &body); err != nil {
		writeJSONError(w, http.StatusBadRequest, i18n.T(req.uiLang, "error.invalid_body"))
		return
	}

	v, err := req.attr.WidgetToValue(body.Widget, body.ItemID)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, i18n.T(req.uiLang, "error.invalid_widget"))
		return
	}

	writeJSONSuccess(w, map[string]any{
		"value":            v,
		"widget":           req.attr.ValueToWidget(v),
		"filter_url_value": req.attr.FilterURLValue(v),
	})
}
