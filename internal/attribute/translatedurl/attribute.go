// Copyright (c) 2025-2026 The MetaModels team
// SPDX-License-Identifier: GPL-3.0-or-later

// Package translatedurl implements the translated URL attribute type. Each
// item stores one {href, title} pair per language in a side table.
package translatedurl

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/mysql"   // MySQL SQL dialect
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3" // SQLite SQL dialect

	"github.com/metamodels/translatedurl/internal/attribute"
	"github.com/metamodels/translatedurl/internal/cache"
)

// TypeName is the attribute type handled by this package.
const TypeName = "translatedurl"

// Settings understood in addition to the base settings.
const (
	SettingNoExternalLink = "no_external_link"
	SettingMandatory      = "mandatory"
	SettingTrimTitle      = "trim_title"
)

// insertChunkSize bounds the rows of a single INSERT statement.
const insertChunkSize = 500

func init() {
	attribute.RegisterType(TypeName, func(def attribute.Definition, mm attribute.MetaModel, deps attribute.Deps) (attribute.Attribute, error) {
		if deps.DB == nil {
			return nil, fmt.Errorf("attribute %d: no database", def.ID)
		}
		opts := []Option{WithDialect(deps.Dialect)}
		if deps.Logger != nil {
			opts = append(opts, WithLogger(deps.Logger))
		}
		if deps.Cache != nil {
			opts = append(opts, WithCache(deps.Cache, deps.CacheTTL))
		}
		return New(def, mm, deps.DB, opts...)
	})
}

// Value is a translated URL. An empty Title is stored as NULL.
type Value struct {
	Href  string `json:"href"`
	Title string `json:"title"`
}

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// committer is implemented by transactions such as *sql.Tx.
type committer interface {
	Commit() error
}

// Attribute is a translated URL attribute bound to one collection.
type Attribute struct {
	attribute.Base

	db       DBTX
	dialect  goqu.DialectWrapper
	cache    cache.Cache
	cacheTTL time.Duration
	logger   *slog.Logger
	now      func() time.Time

	// set on copies bound to a transaction; they bypass the value cache
	inTx bool

	// shared between copies made by WithDB
	wizardOnce *sync.Once
}

var (
	_ attribute.Translated[Value]      = (*Attribute)(nil)
	_ attribute.Searchable             = (*Attribute)(nil)
	_ attribute.Sortable               = (*Attribute)(nil)
	_ attribute.Filterable[Value]      = (*Attribute)(nil)
	_ attribute.WidgetConverter[Value] = (*Attribute)(nil)
)

// Option configures an Attribute.
type Option func(*Attribute)

// WithDialect selects the SQL dialect ("sqlite3" or "mysql").
func WithDialect(name string) Option {
	return func(a *Attribute) {
		if name != "" {
			a.dialect = goqu.Dialect(name)
		}
	}
}

// WithCache enables read-through caching of TranslatedDataFor.
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(a *Attribute) {
		a.cache = c
		a.cacheTTL = ttl
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Attribute) { a.logger = logger }
}

// WithClock overrides the time source used for tstamp.
func WithClock(now func() time.Time) Option {
	return func(a *Attribute) { a.now = now }
}

// New creates a translated URL attribute.
func New(def attribute.Definition, mm attribute.MetaModel, db DBTX, opts ...Option) (*Attribute, error) {
	base, err := attribute.NewBase(def, mm)
	if err != nil {
		return nil, err
	}
	if db == nil {
		return nil, fmt.Errorf("attribute %d: no database", def.ID)
	}

	a := &Attribute{
		Base:       base,
		db:         db,
		dialect:    goqu.Dialect("sqlite3"),
		logger:     slog.Default(),
		now:        time.Now,
		wizardOnce: &sync.Once{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// WithDB returns a copy of the attribute that runs its statements on db,
// typically a transaction. A copy bound to a transaction neither reads nor
// writes the value cache; call Invalidate on the original attribute once the
// transaction has committed.
func (a *Attribute) WithDB(db DBTX) *Attribute {
	cp := *a
	cp.db = db
	_, cp.inTx = db.(committer)
	return &cp
}

// ForMetaModel returns a copy of the attribute owned by mm, usually the
// collection with the request language active.
func (a *Attribute) ForMetaModel(mm attribute.MetaModel) *Attribute {
	cp := *a
	cp.Base = a.Base.WithMetaModel(mm)
	return &cp
}

// SettingNames returns the base settings plus the URL specific ones.
func (a *Attribute) SettingNames() []string {
	return attribute.MergeSettingNames(a.Base.SettingNames(),
		SettingNoExternalLink,
		SettingMandatory,
		SettingTrimTitle,
	)
}

// TrimTitle reports whether the title is hidden from editors.
func (a *Attribute) TrimTitle() bool {
	return a.GetBool(SettingTrimTitle)
}

// FilterURLValue encodes a value for use in a filter URL.
func (a *Attribute) FilterURLValue(v Value) string {
	// Marshalling a struct of two strings cannot fail.
	data, _ := json.Marshal(v)
	return url.QueryEscape(string(data))
}

// DecodeFilterURLValue reverses FilterURLValue.
func DecodeFilterURLValue(s string) (Value, error) {
	raw, err := url.QueryUnescape(s)
	if err != nil {
		return Value{}, fmt.Errorf("unescaping filter value: %w", err)
	}
	var v Value
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return Value{}, fmt.Errorf("decoding filter value: %w", err)
	}
	return v, nil
}

// FilterOptions is not supported for URLs and always returns an empty set.
func (a *Attribute) FilterOptions(_ context.Context, _ []int64, _ bool) (map[string]attribute.FilterOption, error) {
	return map[string]attribute.FilterOption{}, nil
}
