// Copyright (c) 2025-2026 The MetaModels team
// SPDX-License-Identifier: GPL-3.0-or-later

// Package testutil provides shared test helpers.
package testutil

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"testing"

	"github.com/metamodels/translatedurl/internal/store"
)

// TestLogger creates a silent test logger that only outputs warnings and errors.
func TestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
}

// TestLoggerSilent creates a completely silent test logger (error level only).
func TestLoggerSilent() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// TestDB creates a temporary SQLite database with migrations applied.
// Returns the database and a cleanup function that should be deferred.
func TestDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()

	f, err := os.CreateTemp(t.TempDir(), "mm-test-*.db")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	dbPath := f.Name()
	_ = f.Close()

	db, err := store.NewDB(store.DriverSQLite, dbPath)
	if err != nil {
		_ = os.Remove(dbPath)
		t.Fatalf("NewDB: %v", err)
	}

	if err := store.Migrate(db, store.DriverSQLite); err != nil {
		_ = db.Close()
		_ = os.Remove(dbPath)
		t.Fatalf("Migrate: %v", err)
	}

	return db, func() {
		_ = db.Close()
		_ = os.Remove(dbPath)
	}
}

// CreateItemTable creates a collection item table with the given ids.
func CreateItemTable(t *testing.T, db *sql.DB, table string, ids ...int64) {
	t.Helper()

	stmt := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (id INTEGER PRIMARY KEY, tstamp INTEGER NOT NULL DEFAULT 0)`, table)
	if _, err := db.Exec(stmt); err != nil {
		t.Fatalf("creating item table %s: %v", table, err)
	}

	for _, id := range ids {
		if _, err := db.Exec(fmt.Sprintf(`INSERT INTO %s (id) VALUES (?)`, table), id); err != nil {
			t.Fatalf("inserting item %d into %s: %v", id, table, err)
		}
	}
}

// InsertValue writes a raw row into the translated URL table. A nil title
// is stored as NULL.
func InsertValue(t *testing.T, db *sql.DB, attID, itemID int64, language, href string, title *string) {
	t.Helper()

	_, err := db.Exec(`INSERT INTO tl_metamodel_translatedurl
		(att_id, item_id, language, tstamp, href, title) VALUES (?, ?, ?, 0, ?, ?)`,
		attID, itemID, language, href, title)
	if err != nil {
		t.Fatalf("inserting value row: %v", err)
	}
}

// CountValues counts rows of an attribute, optionally restricted to a language.
func CountValues(t *testing.T, db *sql.DB, attID int64, language string) int {
	t.Helper()

	query := `SELECT COUNT(*) FROM tl_metamodel_translatedurl WHERE att_id = ?`
	args := []any{attID}
	if language != "" {
		query += ` AND language = ?`
		args = append(args, language)
	}

	var n int
	if err := db.QueryRow(query, args...).Scan(&n); err != nil {
		t.Fatalf("counting values: %v", err)
	}
	return n
}
