// Copyright (c) 2025-2026 The MetaModels team
// SPDX-License-Identifier: GPL-3.0-or-later

package translatedurl

import "github.com/doug-martin/goqu/v9"

const (
	ValueTableName            = "tl_metamodel_translatedurl"
	ValueTableAttIDColName    = "att_id"
	ValueTableItemIDColName   = "item_id"
	ValueTableLanguageColName = "language"
	ValueTableTstampColName   = "tstamp"
	ValueTableHrefColName     = "href"
	ValueTableTitleColName    = "title"

	itemIDColName = "id"

	activeAlias   = "_active"
	fallbackAlias = "_fallback"
	modelAlias    = "_model"
)

var (
	ValueTable            = goqu.T(ValueTableName)
	ValueTableAttIDCol    = ValueTable.Col(ValueTableAttIDColName)
	ValueTableItemIDCol   = ValueTable.Col(ValueTableItemIDColName)
	ValueTableLanguageCol = ValueTable.Col(ValueTableLanguageColName)
	ValueTableHrefCol     = ValueTable.Col(ValueTableHrefColName)
	ValueTableTitleCol    = ValueTable.Col(ValueTableTitleColName)
)

var insertColumns = []any{
	ValueTableAttIDColName,
	ValueTableItemIDColName,
	ValueTableLanguageColName,
	ValueTableTstampColName,
	ValueTableHrefColName,
	ValueTableTitleColName,
}
