package dbtest

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"knowledge-hub/internal/config"
	"knowledge-hub/internal/database"

	"gorm.io/gorm"
)

var memSeq atomic.Int64

// Open returns a migrated, isolated in-memory SQLite database that is
// closed when the test ends.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_foreign_keys=on", name, memSeq.Add(1))

	db, err := database.Init(config.DatabaseConfig{Driver: "sqlite", Path: dsn})
	if err != nil {
		t.Fatalf("init test database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}
