// Copyright (c) 2025-2026 The MetaModels team
// SPDX-License-Identifier: GPL-3.0-or-later

package translatedurl

import (
	"context"
	"database/sql"
	"fmt"
	"maps"
	"slices"

	"github.com/doug-martin/goqu/v9"
	otelattr "go.opentelemetry.io/otel/attribute"

	"github.com/metamodels/translatedurl/internal/util"
)

// TranslatedDataFor returns the values stored for ids in language. Items
// without a row are absent from the result.
func (a *Attribute) TranslatedDataFor(ctx context.Context, ids []int64, language string) (_ map[int64]Value, err error) {
	result := make(map[int64]Value, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	ctx, span := a.startSpan(ctx, "TranslatedDataFor",
		otelattr.String("language", language),
		otelattr.Int("ids", len(ids)),
	)
	defer func() { endSpan(span, err) }()

	missing := ids
	if a.cached() {
		missing = a.cachedValues(ctx, ids, language, result)
		if len(missing) == 0 {
			return result, nil
		}
	}

	fetched, err := a.queryValues(ctx, missing, language)
	if err != nil {
		return nil, err
	}
	maps.Copy(result, fetched)

	if a.cached() {
		a.storeCachedValues(ctx, language, fetched)
	}
	return result, nil
}

func (a *Attribute) queryValues(ctx context.Context, ids []int64, language string) (map[int64]Value, error) {
	query, args, err := a.dialect.From(ValueTable).
		Select(ValueTableItemIDCol, ValueTableHrefCol, ValueTableTitleCol).
		Where(
			ValueTableAttIDCol.Eq(a.ID()),
			ValueTableLanguageCol.Eq(language),
			ValueTableItemIDCol.In(ids),
		).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("building select: %w", err)
	}

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("selecting values of attribute %d: %w", a.ID(), err)
	}
	defer func() { _ = rows.Close() }()

	values := make(map[int64]Value, len(ids))
	for rows.Next() {
		var (
			id    int64
			href  string
			title sql.NullString
		)
		if err := rows.Scan(&id, &href, &title); err != nil {
			return nil, fmt.Errorf("scanning value row: %w", err)
		}
		values[id] = Value{Href: href, Title: util.StringFromNull(title)}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating value rows: %w", err)
	}
	return values, nil
}

// SetTranslatedDataFor replaces the values of the given items in language.
// Existing rows are removed with UnsetValueFor. The delete and the inserts
// are atomic only when the attribute runs on a transaction (see WithDB).
func (a *Attribute) SetTranslatedDataFor(ctx context.Context, values map[int64]Value, language string) (err error) {
	if len(values) == 0 {
		return nil
	}

	ctx, span := a.startSpan(ctx, "SetTranslatedDataFor",
		otelattr.String("language", language),
		otelattr.Int("values", len(values)),
	)
	defer func() { endSpan(span, err) }()

	ids := slices.Sorted(maps.Keys(values))
	if err := a.UnsetValueFor(ctx, ids, language); err != nil {
		return err
	}

	tstamp := a.now().Unix()
	for chunk := range slices.Chunk(ids, insertChunkSize) {
		rows := make([][]any, 0, len(chunk))
		for _, id := range chunk {
			v := values[id]
			rows = append(rows, goqu.Vals{a.ID(), id, language, tstamp, v.Href, util.NullStringFromValue(v.Title)})
		}

		query, args, err := a.dialect.Insert(ValueTable).
			Cols(insertColumns...).
			Vals(rows...).
			Prepared(true).
			ToSQL()
		if err != nil {
			return fmt.Errorf("building insert: %w", err)
		}
		if _, err := a.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("inserting values of attribute %d: %w", a.ID(), err)
		}
	}

	a.Invalidate(ctx, ids, language)
	return nil
}

// UnsetValueFor deletes the values of ids in language.
func (a *Attribute) UnsetValueFor(ctx context.Context, ids []int64, language string) (err error) {
	if len(ids) == 0 {
		return nil
	}

	ctx, span := a.startSpan(ctx, "UnsetValueFor",
		otelattr.String("language", language),
		otelattr.Int("ids", len(ids)),
	)
	defer func() { endSpan(span, err) }()

	query, args, err := a.dialect.Delete(ValueTable).
		Where(
			ValueTableAttIDCol.Eq(a.ID()),
			ValueTableLanguageCol.Eq(language),
			ValueTableItemIDCol.In(ids),
		).
		Prepared(true).
		ToSQL()
	if err != nil {
		return fmt.Errorf("building delete: %w", err)
	}
	if _, err := a.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("deleting values of attribute %d: %w", a.ID(), err)
	}

	a.Invalidate(ctx, ids, language)
	return nil
}

// DataFor returns the values of ids in the active language, completed from
// the fallback language for items that have no active translation.
func (a *Attribute) DataFor(ctx context.Context, ids []int64) (map[int64]Value, error) {
	mm := a.MetaModel()
	active, fallback := mm.ActiveLanguage(), mm.FallbackLanguage()

	values, err := a.TranslatedDataFor(ctx, ids, active)
	if err != nil {
		return nil, err
	}
	if fallback == "" || fallback == active {
		return values, nil
	}

	var missing []int64
	for _, id := range ids {
		if _, ok := values[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return values, nil
	}

	fallbackValues, err := a.TranslatedDataFor(ctx, missing, fallback)
	if err != nil {
		return nil, err
	}
	maps.Copy(values, fallbackValues)
	return values, nil
}

// SetDataFor stores values in the active language.
func (a *Attribute) SetDataFor(ctx context.Context, values map[int64]Value) error {
	return a.SetTranslatedDataFor(ctx, values, a.MetaModel().ActiveLanguage())
}

// UnsetDataFor deletes the values of ids in the active language.
func (a *Attribute) UnsetDataFor(ctx context.Context, ids []int64) error {
	return a.UnsetValueFor(ctx, ids, a.MetaModel().ActiveLanguage())
}
