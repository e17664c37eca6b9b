package database

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"knowledge-hub/internal/config"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Init opens the configured database (SQLite by default, Postgres in
// shared deployments) with basic pool tuning.
func Init(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormLogger := logger.Default
	if !cfg.LogMode {
		gormLogger = gormLogger.LogMode(logger.Silent)
	}
	gormCfg := &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
	}

	var (
		db  *gorm.DB
		err error
	)
	switch cfg.Driver {
	case "postgres":
		db, err = gorm.Open(postgres.Open(cfg.DSN), gormCfg)
	default:
		if !isMemoryPath(cfg.Path) {
			if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
				return nil, fmt.Errorf("create db dir: %w", err)
			}
		}
		db, err = gorm.Open(sqlite.Open(sqliteDSN(cfg.Path)), gormCfg)
	}
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}

	// connection pool
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if cfg.Driver != "postgres" && !isMemoryPath(cfg.Path) {
		// journal mode is stored in the file, so one connection is enough
		_, _ = sqlDB.Exec("PRAGMA journal_mode = WAL;")
	}

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	slog.Default().Info("database connected",
		"module", "database",
		"operation", "connect",
		"outcome", "success",
		"driver", cfg.Driver,
	)
	return db, nil
}

// Ping checks that the database is reachable; used by the health endpoint.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// sqliteDSN adds the per-connection pragmas as driver parameters so every
// pooled connection gets them, not just the first one.
func sqliteDSN(path string) string {
	var params []string
	if !strings.Contains(path, "_foreign_keys=") && !strings.Contains(path, "_fk=") {
		params = append(params, "_foreign_keys=on")
	}
	if !strings.Contains(path, "_synchronous=") && !strings.Contains(path, "_sync=") {
		params = append(params, "_synchronous=NORMAL")
	}
	if len(params) == 0 {
		return path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + strings.Join(params, "&")
}

func isMemoryPath(path string) bool {
	return path == ":memory:" || strings.Contains(path, "mode=memory")
}
