package migrate

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func TestUp_SQLiteIsIdempotent(t *testing.T) {
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "m.db"))
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	applied, err := Up(ctx, db, SQLite)
	require.NoError(t, err)
	assert.Equal(t, 1, applied)

	applied, err = Up(ctx, db, SQLite)
	require.NoError(t, err)
	assert.Equal(t, 0, applied)

	var count int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count))
	assert.Zero(t, count)
}

func TestUp_UnknownDialect(t *testing.T) {
	_, err := Up(context.Background(), nil, Dialect("oracle"))
	assert.ErrorContains(t, err, "unsupported migration dialect")
}

func TestEmbeddedMigrationsPresent(t *testing.T) {
	for _, d := range []Dialect{Postgres, SQLite} {
		entries, err := migrations.ReadDir(string(d))
		require.NoError(t, err)
		assert.NotEmpty(t, entries, "dialect %s", d)
	}
}
