// Package moduleutil provides module-specific test helpers.
package moduleutil

import (
	"database/sql"
	"testing"

	"github.com/metamodels/translatedurl/internal/attribute"
	"github.com/metamodels/translatedurl/internal/config"
	"github.com/metamodels/translatedurl/internal/i18n"
	"github.com/metamodels/translatedurl/internal/module"
	"github.com/metamodels/translatedurl/internal/testutil"
)

// TestModuleContext creates a module.Context for testing with the given
// collections. Returns the context and the hooks registry for verifying
// hook behavior.
func TestModuleContext(t *testing.T, db *sql.DB, catalog *attribute.Catalog) (*module.Context, *module.HookRegistry) {
	t.Helper()

	logger := testutil.TestLogger()
	if err := i18n.Init(logger); err != nil {
		t.Fatalf("i18n.Init: %v", err)
	}

	hooks := module.NewHookRegistry(logger)
	return &module.Context{
		DB:          db,
		Dialect:     "sqlite3",
		Logger:      logger,
		Config:      &config.Config{},
		Hooks:       hooks,
		Collections: catalog,
	}, hooks
}

// ParseCatalog parses a TOML catalog or fails the test.
func ParseCatalog(t *testing.T, data string) *attribute.Catalog {
	t.Helper()

	cat, err := attribute.ParseCatalog([]byte(data))
	if err != nil {
		t.Fatalf("ParseCatalog: %v", err)
	}
	return cat
}
