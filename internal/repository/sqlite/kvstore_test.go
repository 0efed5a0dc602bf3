package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rrens/profilesync/internal/storage/storagetest"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.db")

	require.NoError(t, RunMigrations(path))

	db, err := Open(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestKVStore_Contract(t *testing.T) {
	storagetest.Run(t, NewKVStore(openTestDB(t)))
}

func TestKVStore_PersistsAcrossConnections(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	require.NoError(t, NewKVStore(db).Set(ctx, "refresh_token", "r1"))
	require.NoError(t, db.Close())

	reopened, err := Open(ctx, db.Path())
	require.NoError(t, err)
	defer reopened.Close()

	v, found, err := NewKVStore(reopened).Get(ctx, "refresh_token")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "r1", v)
}

func TestRunMigrations_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")
	require.NoError(t, RunMigrations(path))
	require.NoError(t, RunMigrations(path))
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open(context.Background(), "")
	assert.Error(t, err)
}
