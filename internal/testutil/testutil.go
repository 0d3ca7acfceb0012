package testutil

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/vytor/upsimu/internal/db"
	"github.com/vytor/upsimu/internal/logger"
)

// NewTestDB creates an in-memory SQLite database with all migrations applied
// and foreign keys enabled.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	sqlDB, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	require.NoError(t, err)
	// Every connection to :memory: is a separate database.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.Migrate(context.Background(), sqlDB, logger.Discard()), "failed to apply migrations")
	return sqlDB
}

// MustCreateProfile inserts a profile row and returns its id.
func MustCreateProfile(t *testing.T, sqlDB *sql.DB, username string) int64 {
	t.Helper()
	res, err := sqlDB.ExecContext(context.Background(), `INSERT INTO profiles (username) VALUES (?)`, username)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

// MustClose closes a resource and fails the test on error.
func MustClose(t *testing.T, closer interface{ Close() error }) {
	require.NoError(t, closer.Close())
}
