package iocache

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/huangsam/changescore/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateStore_SQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "migrate.sqlite")
	var out bytes.Buffer

	require.NoError(t, MigrateStore(&out, schema.SQLiteBackend, dbPath, -1))
	assert.Contains(t, out.String(), "to version 3")

	out.Reset()
	require.NoError(t, MigrateStore(&out, schema.SQLiteBackend, dbPath, -1))
	assert.Contains(t, out.String(), "already at the latest version")

	out.Reset()
	require.NoError(t, MigrateStore(&out, schema.SQLiteBackend, dbPath, 0))
	assert.Contains(t, out.String(), "rolled back")

	out.Reset()
	require.NoError(t, MigrateStore(&out, schema.SQLiteBackend, dbPath, 3))

	// Migrated schema is usable by the store
	store, err := NewStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	require.NoError(t, store.InsertEntries(context.Background(), []schema.Entry{testEntry("a@suse.com", "p", "- x", 0)}))
}

func TestMigrateStore_UnsupportedBackend(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, MigrateStore(&out, schema.DatabaseBackend("bogus"), "", -1))
}

func TestMigrationFilesPerBackend(t *testing.T) {
	for backend, dir := range migrationDir {
		entries, err := migrationsFS.ReadDir(dir)
		require.NoError(t, err, backend)
		assert.Len(t, entries, 6, "each backend has three up/down pairs")
	}
}
