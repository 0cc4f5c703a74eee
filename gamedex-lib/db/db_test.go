package db

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := Open(context.Background(), dbPath)
	require.NoError(t, err, "should open database without error")
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestOpen(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	db, err := Open(context.Background(), dbPath)
	require.NoError(t, err, "should open database without error")
	defer func() { _ = db.Close() }()

	// Check that the file was created
	_, err = os.Stat(dbPath)
	assert.NoError(t, err, "database file should exist")
}

func TestSchemaVersion(t *testing.T) {
	db := openTestDB(t)

	var version int
	err := db.Conn().QueryRow("SELECT MAX(version) FROM schema_version").Scan(&version)
	require.NoError(t, err)
	assert.Equal(t, 4, version, "schema version should be 4")
}

func TestTablesExist(t *testing.T) {
	db := openTestDB(t)

	tables := []string{
		"games", "games_fts", "blobs", "steam_apps", "play_states", "schema_version",
	}
	for _, table := range tables {
		var name string
		err := db.Conn().QueryRow(
			"SELECT name FROM sqlite_master WHERE type IN ('table', 'view') AND name=?",
			table,
		).Scan(&name)
		assert.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
}

func TestMigrationIdempotent(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	// Open and close multiple times
	for i := 0; i < 3; i++ {
		db, err := Open(context.Background(), dbPath)
		require.NoError(t, err, "should open database on attempt %d", i+1)
		_ = db.Close()
	}

	db, err := Open(context.Background(), dbPath)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	var version int
	err = db.Conn().QueryRow("SELECT MAX(version) FROM schema_version").Scan(&version)
	require.NoError(t, err)
	assert.Equal(t, 4, version, "schema version should still be 4 after multiple opens")
}
