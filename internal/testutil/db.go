// Package testutil provides shared fixtures for package tests.
package testutil

import (
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"gatepass/internal/config"
	"gatepass/internal/db"
	"gatepass/internal/logging"
)

// NewDB returns a migrated, private in-memory SQLite database.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	cfg := &config.Config{
		DBDriver:    config.DriverSQLite,
		DatabaseDSN: "file:" + uuid.NewString() + "?mode=memory&cache=shared&_foreign_keys=1",
	}
	gormDB, err := db.Open(cfg, logging.Discard())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.Migrate(gormDB); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	return gormDB
}
