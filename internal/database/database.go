package database

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/partyvault/partyvault/internal/model"
)

// swapped by tests
var (
	sqlitePragmas = defaultPragmas
	closeSQL      = (*sql.DB).Close
)

func defaultPragmas(journal string) []string {
	return []string{
		"PRAGMA user_version = 1;",
		"PRAGMA journal_mode = " + journal + ";",
		"PRAGMA synchronous = FULL;",
		"PRAGMA foreign_keys = ON;",
		"PRAGMA busy_timeout = 5000;",
	}
}

// memoryDSN returns a DSN for a private in-memory database. Each call gets its
// own database so independent backends never see each other's rows.
func memoryDSN() string {
	return fmt.Sprintf("file:partyvault-%s?mode=memory&cache=shared", uuid.NewString())
}

// OpenSqlite returns a connection to a SQLite database.
// If path is empty, uses a private in-memory database.
func OpenSqlite(path string, log *slog.Logger) (*gorm.DB, error) {
	if log == nil {
		log = slog.Default()
	}

	dsn := path
	journal := "WAL"
	if path == "" {
		dsn = memoryDSN()
		journal = "MEMORY"
	} else if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		// no *sql.DB to close; release whatever pool gorm holds
		if closer, ok := db.ConnPool.(interface{ Close() error }); ok {
			_ = closer.Close()
		}
		return nil, fmt.Errorf("failed to access sql interface: %w", err)
	}
	// a single connection keeps the in-memory database alive and serializes writers
	sqlDB.SetMaxOpenConns(1)

	for _, pragma := range sqlitePragmas(journal) {
		if err := db.Exec(pragma).Error; err != nil {
			_ = closeSQL(sqlDB)
			return nil, fmt.Errorf("error setting PRAGMA: %s", err)
		}
	}

	if path == "" {
		log.Info("Using SQLite DB in memory")
	} else {
		log.Info("Using local SQLite DB", "path", path)
	}
	return db, nil
}

// Migrate creates or updates the archive tables.
func Migrate(db *gorm.DB, log *slog.Logger) error {
	if log == nil {
		log = slog.Default()
	}

	log.Debug("Migrating schema")
	if err := db.AutoMigrate(model.DatabaseModels...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	log.Debug("Database setup complete")
	return nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return closeSQL(sqlDB)
}
