// Package sqlite provides a UserStore backed by a single SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/hongminglow/userdir/internal/models"
	"github.com/hongminglow/userdir/internal/storage"
	"github.com/hongminglow/userdir/internal/storage/migrate"
	sqlitedrv "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var _ storage.UserStore = (*Store)(nil)

const userColumns = `id, login, email, password_hash, age, description, created_at, updated_at`

// toMillis normalizes timestamps into millisecond precision for storage.
func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Store implements user persistence over SQLite.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens the database at path and applies bundled migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := migrate.Up(ctx, db, migrate.SQLite); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Insert adds a new user row.
func (s *Store) Insert(ctx context.Context, user models.User) (models.User, error) {
	const query = `
		INSERT INTO users (login, email, password_hash, age, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING ` + userColumns
	now := toMillis(s.now())
	row := s.db.QueryRowContext(ctx, query, user.Login, user.Email, user.PasswordHash, user.Age, user.Description, now, now)
	created, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, storage.ErrAlreadyExists
		}
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	return created, nil
}

// FindByLogin fetches a user by login.
func (s *Store) FindByLogin(ctx context.Context, login string) (models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE login = ?`
	return scanUser(s.db.QueryRowContext(ctx, query, login))
}

// List returns a page of users ordered by id. instr keeps the substring match
// case-sensitive, unlike LIKE in SQLite.
func (s *Store) List(ctx context.Context, q storage.ListQuery) ([]models.User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users
		WHERE ?1 = '' OR instr(login, ?1) > 0
		ORDER BY id ASC
		LIMIT ?2 OFFSET ?3`
	if err := q.Validate(); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, query, q.LoginContains, q.Limit, q.Offset)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := make([]models.User, 0, q.Limit)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users (rows): %w", err)
	}
	return users, nil
}

// UpdateByLogin merges the supplied fields in a single statement; NULL
// parameters keep the stored column.
func (s *Store) UpdateByLogin(ctx context.Context, login string, update storage.UserUpdate) (models.User, error) {
	const query = `
		UPDATE users
		SET email = COALESCE(?, email),
			password_hash = COALESCE(?, password_hash),
			age = COALESCE(?, age),
			description = COALESCE(?, description),
			updated_at = ?
		WHERE login = ?
		RETURNING ` + userColumns
	row := s.db.QueryRowContext(ctx, query,
		nullable(update.Email), nullable(update.PasswordHash), nullable(update.Age), nullable(update.Description),
		toMillis(s.now()), login)
	return scanUser(row)
}

// DeleteByLogin removes the user and reports the affected row count.
func (s *Store) DeleteByLogin(ctx context.Context, login string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE login = ?`, login)
	if err != nil {
		return 0, fmt.Errorf("delete user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete user: rows affected: %w", err)
	}
	return affected, nil
}

// nullable turns a nil pointer into SQL NULL.
func nullable[T any](v *T) any {
	if v == nil {
		return nil
	}
	return *v
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (models.User, error) {
	var (
		user             models.User
		created, updated int64
	)
	if err := row.Scan(&user.ID, &user.Login, &user.Email, &user.PasswordHash, &user.Age, &user.Description, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, storage.ErrNotFound
		}
		return models.User{}, err
	}
	user.CreatedAt = fromMillis(created)
	user.UpdatedAt = fromMillis(updated)
	return user, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *sqlitedrv.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	code := sqliteErr.Code()
	if code == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return true
	}
	// Without extended result codes only the primary code is reported.
	return code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(sqliteErr.Error(), "UNIQUE")
}
