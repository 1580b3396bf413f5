package main

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partyvault/partyvault/internal/config"
	"github.com/partyvault/partyvault/internal/logging"
	"github.com/partyvault/partyvault/internal/storage"
	"github.com/partyvault/partyvault/internal/storage/filesystem"
	"github.com/partyvault/partyvault/internal/storage/memory"
	sqlitestorage "github.com/partyvault/partyvault/internal/storage/sqlite"
	"github.com/partyvault/partyvault/pkg/core"
)

func TestCreateStorageBackend(t *testing.T) {
	logManager := logging.NewSlogManager()

	t.Run("default is filesystem", func(t *testing.T) {
		backend, err := createStorageBackend(config.StorageConfig{
			Filesystem: config.FilesystemConfig{Dir: t.TempDir(), Extension: ".data"},
		}, logManager)
		require.NoError(t, err)
		assert.IsType(t, &filesystem.Backend{}, backend)
	})

	t.Run("memory", func(t *testing.T) {
		backend, err := createStorageBackend(config.StorageConfig{Type: "memory"}, logManager)
		require.NoError(t, err)
		assert.IsType(t, &memory.Backend{}, backend)
	})

	t.Run("sqlite", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "parties.db")
		backend, err := createStorageBackend(config.StorageConfig{
			Type:   "sqlite",
			SQLite: config.SQLiteConfig{Path: path},
		}, logManager)
		require.NoError(t, err)
		require.IsType(t, &sqlitestorage.Backend{}, backend)
		assert.Equal(t, path, backend.(*sqlitestorage.Backend).Path())
		require.NoError(t, backend.Close())
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := createStorageBackend(config.StorageConfig{Type: "postgres"}, logManager)
		assert.Error(t, err)
	})
}

func TestInitStorage(t *testing.T) {
	backend, err := initStorage(config.StorageConfig{
		Type:       "filesystem",
		Filesystem: config.FilesystemConfig{Dir: filepath.Join(t.TempDir(), "nested"), Extension: ".data"},
	}, logging.NewSlogManager())
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close() })

	names, err := backend.ListNames()
	require.NoError(t, err)
	assert.Empty(t, names)
}

// failingInitBackend fails Init and records Close.
type failingInitBackend struct {
	*memory.Backend
	closed int
}

func (b *failingInitBackend) Init() error {
	return errors.New("init failed")
}

func (b *failingInitBackend) Close() error {
	b.closed++
	return nil
}

func TestInitStorage_ClosesBackendWhenInitFails(t *testing.T) {
	fake := &failingInitBackend{Backend: memory.New()}
	orig := newStorageBackend
	newStorageBackend = func(config.StorageConfig, *logging.SlogManager) (storage.Backend, error) {
		return fake, nil
	}
	t.Cleanup(func() { newStorageBackend = orig })

	backend, err := initStorage(config.StorageConfig{Type: "memory"}, logging.NewSlogManager())
	require.Error(t, err)
	assert.Nil(t, backend)
	assert.Equal(t, 1, fake.closed)
}

func TestInitStorage_SQLiteReopensAfterClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "parties.db")
	backend, err := initStorage(config.StorageConfig{
		Type:   "sqlite",
		SQLite: config.SQLiteConfig{Path: path},
	}, logging.NewSlogManager())
	require.NoError(t, err)
	require.NoError(t, backend.Save("Hero", core.Party{{ClassID: 1}}))
	require.NoError(t, backend.Close())

	// the file is released on close and a fresh owner can read it
	again, err := initStorage(config.StorageConfig{
		Type:   "sqlite",
		SQLite: config.SQLiteConfig{Path: path},
	}, logging.NewSlogManager())
	require.NoError(t, err)
	t.Cleanup(func() { _ = again.Close() })
	names, err := again.ListNames()
	require.NoError(t, err)
	assert.Equal(t, []string{"Hero"}, names)
}
