// Package migrate applies the embedded schema migrations with goose.
package migrate

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

//go:embed postgres/*.sql sqlite/*.sql
var migrations embed.FS

// Dialect selects the migration set and the goose SQL dialect.
type Dialect string

const (
	// Postgres selects the postgres/ migration set.
	Postgres Dialect = "postgres"
	// SQLite selects the sqlite/ migration set.
	SQLite Dialect = "sqlite"
)

func (d Dialect) goose() (goose.Dialect, error) {
	switch d {
	case Postgres:
		return goose.DialectPostgres, nil
	case SQLite:
		return goose.DialectSQLite3, nil
	default:
		return "", fmt.Errorf("unsupported migration dialect %q", d)
	}
}

// Up applies every pending migration for the dialect and returns how many ran.
func Up(ctx context.Context, db *sql.DB, dialect Dialect) (int, error) {
	const op = "migrate.Up"

	gd, err := dialect.goose()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	fsys, err := fs.Sub(migrations, string(dialect))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	provider, err := goose.NewProvider(gd, db, fsys)
	if err != nil {
		return 0, fmt.Errorf("%s: new provider: %w", op, err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: apply: %w", op, err)
	}
	return len(results), nil
}
