package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenForTestingMigrates(t *testing.T) {
	database, err := OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	for _, table := range []string{"albums", "collection_meta"} {
		var name string
		err := database.QueryRow(`
			SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?
		`, table).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "penny.db")

	database, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, database.Close())

	// Reopening an already-migrated database applies nothing and succeeds.
	database, err = Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	var n int
	require.NoError(t, database.QueryRow(`SELECT COUNT(*) FROM albums`).Scan(&n))
	assert.Zero(t, n)
}
