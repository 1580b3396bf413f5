package main

import (
	"fmt"
	"log/slog"

	"github.com/partyvault/partyvault/internal/config"
	"github.com/partyvault/partyvault/internal/logging"
	"github.com/partyvault/partyvault/internal/storage"
	"github.com/partyvault/partyvault/internal/storage/filesystem"
	"github.com/partyvault/partyvault/internal/storage/memory"
	sqlitestorage "github.com/partyvault/partyvault/internal/storage/sqlite"
)

// initStorage creates the configured backend and takes ownership of it.
func initStorage(storageCfg config.StorageConfig, logManager *logging.SlogManager) (storage.Backend, error) {
	log := logManager.Logger()

	backend, err := newStorageBackend(storageCfg, logManager)
	if err != nil {
		log.Error("Failed to create storage backend", "error", err)
		return nil, err
	}
	if err := backend.Init(); err != nil {
		log.Error("Failed to initialize storage backend", "type", storageCfg.Type, "error", err)
		if cerr := backend.Close(); cerr != nil {
			log.Warn("Failed to close storage backend", "error", cerr)
		}
		return nil, err
	}
	return backend, nil
}

// swapped by tests
var newStorageBackend = createStorageBackend

func createStorageBackend(storageCfg config.StorageConfig, logManager *logging.SlogManager) (storage.Backend, error) {
	log := logManager.Logger()

	switch storageCfg.Type {
	case "memory":
		log.Info("Memory storage backend initialized")
		return memory.New(), nil

	case "sqlite":
		backend, err := sqlitestorage.New(storageCfg.SQLite, logManager)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite backend: %w", err)
		}
		log.Info("SQLite storage backend initialized", sqlitePathAttr(backend.Path()))
		return backend, nil

	case "", "filesystem":
		backend := filesystem.New(storageCfg.Filesystem)
		log.Info("Filesystem storage backend initialized", "dir", backend.Dir())
		return backend, nil

	default:
		return nil, fmt.Errorf("unknown storage type %q", storageCfg.Type)
	}
}

func sqlitePathAttr(path string) slog.Attr {
	if path == "" {
		return slog.String("path", ":memory:")
	}
	return slog.String("path", path)
}
