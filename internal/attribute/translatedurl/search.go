// Copyright (c) 2025-2026 The MetaModels team
// SPDX-License-Identifier: GPL-3.0-or-later

package translatedurl

import (
	"context"
	"fmt"
	"strings"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	otelattr "go.opentelemetry.io/otel/attribute"
)

var likeEscaper = strings.NewReplacer(
	"!", "!!",
	"%", "!%",
	"_", "!_",
	"*", "%",
	"?", "_",
)

// LikePattern turns a wildcard pattern into a LIKE pattern using "!" as the
// escape character. "*" matches any sequence and "?" one character; every
// other character matches itself.
func LikePattern(pattern string) string {
	return likeEscaper.Replace(pattern)
}

func likeEscaped(col string, pattern string) exp.LiteralExpression {
	return goqu.L("? LIKE ? ESCAPE '!'", goqu.C(col), pattern)
}

// SearchForInLanguages returns the ids of items whose title or href matches
// pattern. An empty languages list searches all languages.
func (a *Attribute) SearchForInLanguages(ctx context.Context, pattern string, languages []string) (_ []int64, err error) {
	ctx, span := a.startSpan(ctx, "SearchForInLanguages",
		otelattr.String("pattern", pattern),
		otelattr.StringSlice("languages", languages),
	)
	defer func() { endSpan(span, err) }()

	like := LikePattern(pattern)
	where := []exp.Expression{
		goqu.Or(
			likeEscaped(ValueTableTitleColName, like),
			likeEscaped(ValueTableHrefColName, like),
		),
		goqu.C(ValueTableAttIDColName).Eq(a.ID()),
	}
	if len(languages) > 0 {
		where = append(where, goqu.C(ValueTableLanguageColName).In(languages))
	}

	query, args, err := a.dialect.From(ValueTable).
		SelectDistinct(goqu.C(ValueTableItemIDColName)).
		Where(where...).
		Order(goqu.C(ValueTableItemIDColName).Asc()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("building search: %w", err)
	}

	return a.queryIDs(ctx, query, args)
}

// SearchFor searches the active language only.
func (a *Attribute) SearchFor(ctx context.Context, pattern string) ([]int64, error) {
	return a.SearchForInLanguages(ctx, pattern, []string{a.MetaModel().ActiveLanguage()})
}

func (a *Attribute) queryIDs(ctx context.Context, query string, args []any) ([]int64, error) {
	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying ids of attribute %d: %w", a.ID(), err)
	}
	defer func() { _ = rows.Close() }()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating ids: %w", err)
	}
	return ids, nil
}
