// Package sqlitestorage implements the storage.Backend interface using a
// SQLite database file. It wraps the GORM backend via composition; the only
// SQLite-specific concern is opening the connection.
package sqlitestorage

import (
	"fmt"

	"github.com/partyvault/partyvault/internal/config"
	"github.com/partyvault/partyvault/internal/database"
	"github.com/partyvault/partyvault/internal/logging"
	gormstorage "github.com/partyvault/partyvault/internal/storage/gorm"
	"github.com/partyvault/partyvault/pkg/core"
)

// Backend wraps the GORM backend for SQLite-specific behavior.
type Backend struct {
	*gormstorage.Backend
	path string
}

// New opens the SQLite database at cfg.Path. An empty path opens a private
// in-memory database.
func New(cfg config.SQLiteConfig, logManager *logging.SlogManager) (*Backend, error) {
	if logManager == nil {
		logManager = logging.NewSlogManager()
	}

	db, err := database.OpenSqlite(cfg.Path, logManager.Logger())
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open SQLite DB: %v", core.ErrStorageRead, err)
	}

	return &Backend{
		Backend: gormstorage.New(gormstorage.Dependencies{
			DB:         db,
			LogManager: logManager,
		}),
		path: cfg.Path,
	}, nil
}

// Path returns the database file path, empty for in-memory databases.
func (b *Backend) Path() string {
	return b.path
}
