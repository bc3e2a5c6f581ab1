package db

import (
	"path/filepath"
	"testing"

	"pirbench/internal/benchmark"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStore_SQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	for _, typ := range []string{"sqlite", "SQLite3", ""} {
		store, err := NewStore(StoreConfig{Type: typ, ConnectionString: dbPath})
		require.NoError(t, err)
		_, ok := store.(*SQLiteStore)
		assert.True(t, ok, "Expected a SQLiteStore instance for type %q", typ)
		store.Close()
	}
}

func TestNewStore_DefaultPath(t *testing.T) {
	t.Chdir(t.TempDir())

	store, err := NewStore(StoreConfig{Type: "sqlite"})
	require.NoError(t, err)
	defer store.Close()
	assert.FileExists(t, DefaultSQLitePath)
}

func TestNewStore_JSON(t *testing.T) {
	store, err := NewStore(StoreConfig{Type: "json", ConnectionString: filepath.Join(t.TempDir(), "runs.json")})
	require.NoError(t, err)
	_, ok := store.(*benchmark.FileStore)
	assert.True(t, ok)
}

func TestNewStore_None(t *testing.T) {
	store, err := NewStore(StoreConfig{Type: "none"})
	require.NoError(t, err)
	assert.Nil(t, store)
}

func TestNewStore_Errors(t *testing.T) {
	_, err := NewStore(StoreConfig{Type: "postgres"})
	assert.Error(t, err)

	_, err = NewStore(StoreConfig{Type: "mongodb"})
	assert.Error(t, err)
}
