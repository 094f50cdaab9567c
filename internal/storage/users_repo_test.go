package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Annany2002/nebula-admin/config"
)

func testDBSetup(t *testing.T) *sql.DB {
	t.Helper()
	cfg := &config.Config{DbDir: filepath.Join(t.TempDir(), "data"), DbFile: "admin_test.db"}
	db, err := Connect(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestConnectIsIdempotent(t *testing.T) {
	db := testDBSetup(t)
	require.NoError(t, Migrate(db))

	var name string
	err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name='admin_users'`).Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "admin_users", name)
}

func TestAdminUsers(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	db := testDBSetup(t)

	id, err := CreateAdminUser(ctx, db, "root", "hash", true)
	require.NoError(t, err)
	assert.Positive(id)

	_, err = CreateAdminUser(ctx, db, "root", "other", false)
	assert.ErrorIs(err, ErrUsernameExists)

	user, err := FindAdminUserByUsername(ctx, db, "root")
	require.NoError(t, err)
	assert.Equal(id, user.ID)
	assert.Equal("root", user.GetUsername())
	assert.Equal("hash", user.PasswordHash)
	assert.True(user.IsAdmin)
	assert.False(user.CreatedAt.IsZero())

	_, err = FindAdminUserByUsername(ctx, db, "nobody")
	assert.ErrorIs(err, ErrUserNotFound)
}

func TestEnsureAdminUser(t *testing.T) {
	ctx := context.Background()
	db := testDBSetup(t)

	created, err := EnsureAdminUser(ctx, db, "admin", "hash")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = EnsureAdminUser(ctx, db, "admin", "another")
	require.NoError(t, err)
	assert.False(t, created)

	user, err := FindAdminUserByUsername(ctx, db, "admin")
	require.NoError(t, err)
	assert.Equal(t, "hash", user.PasswordHash)
}
