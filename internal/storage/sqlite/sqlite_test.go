package sqlitestorage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partyvault/partyvault/internal/config"
	"github.com/partyvault/partyvault/internal/storage"
	"github.com/partyvault/partyvault/pkg/core"
)

var _ storage.Backend = (*Backend)(nil)

func TestNew_InMemory(t *testing.T) {
	b, err := New(config.SQLiteConfig{}, nil)
	require.NoError(t, err)
	require.NoError(t, b.Init())
	t.Cleanup(func() { _ = b.Close() })

	assert.Empty(t, b.Path())

	names, err := b.ListNames()
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "parties.db")
	party := core.Party{{ClassID: 3, Health: 77, Equipment: []int{5, 5}}}

	b, err := New(config.SQLiteConfig{Path: path}, nil)
	require.NoError(t, err)
	require.NoError(t, b.Init())
	require.NoError(t, b.Save("Hero", party))
	require.NoError(t, b.Close())

	reopened, err := New(config.SQLiteConfig{Path: path}, nil)
	require.NoError(t, err)
	require.NoError(t, reopened.Init())
	t.Cleanup(func() { _ = reopened.Close() })

	assert.Equal(t, path, reopened.Path())

	names, err := reopened.ListNames()
	require.NoError(t, err)
	assert.Equal(t, []string{"Hero"}, names)

	got, err := reopened.Load("Hero")
	require.NoError(t, err)
	assert.True(t, party.Equal(got))
}
