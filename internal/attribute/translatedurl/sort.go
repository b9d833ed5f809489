// Copyright (c) 2025-2026 The MetaModels team
// SPDX-License-Identifier: GPL-3.0-or-later

package translatedurl

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	otelattr "go.opentelemetry.io/otel/attribute"

	"github.com/metamodels/translatedurl/internal/attribute"
)

func col(alias, name string) exp.IdentifierExpression {
	return goqu.T(alias).Col(name)
}

// orderKey sorts by key in direction with NULL keys last, whatever the
// direction.
func orderKey(key exp.Expression, direction string) []exp.OrderedExpression {
	nullsLast := goqu.L("(? IS NULL)", key).Asc()
	if direction == attribute.SortDesc {
		return []exp.OrderedExpression{nullsLast, goqu.L("?", key).Desc()}
	}
	return []exp.OrderedExpression{nullsLast, goqu.L("?", key).Asc()}
}

// SortIDs orders ids by title, then href. Each item uses its row in the
// active language, or its fallback row when it has no active one. Items
// without any row sort last. Ids with no item in the collection table are
// dropped. Ties are broken by id.
func (a *Attribute) SortIDs(ctx context.Context, ids []int64, direction string) (_ []int64, err error) {
	if len(ids) < 2 {
		return ids, nil
	}

	direction = attribute.NormalizeDirection(direction)
	mm := a.MetaModel()

	ctx, span := a.startSpan(ctx, "SortIDs",
		otelattr.String("direction", direction),
		otelattr.Int("ids", len(ids)),
	)
	defer func() { endSpan(span, err) }()

	modelID := col(modelAlias, itemIDColName)
	titleKey := goqu.COALESCE(
		col(activeAlias, ValueTableTitleColName),
		col(activeAlias, ValueTableHrefColName),
		col(fallbackAlias, ValueTableTitleColName),
		col(fallbackAlias, ValueTableHrefColName),
	)
	hrefKey := goqu.COALESCE(
		col(activeAlias, ValueTableHrefColName),
		col(fallbackAlias, ValueTableHrefColName),
	)

	order := append(orderKey(titleKey, direction), orderKey(hrefKey, direction)...)
	order = append(order, modelID.Asc())

	query, args, err := a.dialect.From(goqu.T(mm.TableName()).As(modelAlias)).
		Select(modelID).
		LeftJoin(ValueTable.As(activeAlias), goqu.On(
			col(activeAlias, ValueTableItemIDColName).Eq(modelID),
			col(activeAlias, ValueTableAttIDColName).Eq(a.ID()),
			col(activeAlias, ValueTableLanguageColName).Eq(mm.ActiveLanguage()),
		)).
		LeftJoin(ValueTable.As(fallbackAlias), goqu.On(
			col(activeAlias, ValueTableItemIDColName).IsNull(),
			col(fallbackAlias, ValueTableItemIDColName).Eq(modelID),
			col(fallbackAlias, ValueTableAttIDColName).Eq(a.ID()),
			col(fallbackAlias, ValueTableLanguageColName).Eq(mm.FallbackLanguage()),
		)).
		Where(modelID.In(ids)).
		Order(order...).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("building sort: %w", err)
	}

	return a.queryIDs(ctx, query, args)
}
