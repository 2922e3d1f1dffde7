package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hongminglow/userdir/internal/models"
	"github.com/hongminglow/userdir/internal/storage"
	"github.com/hongminglow/userdir/internal/storage/migrate"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
)

// Ensure Store satisfies the storage.UserStore interface at compile time.
var _ storage.UserStore = (*Store)(nil)

const uniqueViolation = "23505"

const userColumns = `id, login, email, password_hash, age, description, created_at, updated_at`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Store provides Postgres-backed persistence for users.
type Store struct {
	pool *pgxpool.Pool
}

// NewUserStore creates a new Store and runs migrations.
func NewUserStore(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	s := &Store{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

// Close releases database resources.
func (s *Store) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) migrate(ctx context.Context) error {
	// Closing the bridged *sql.DB leaves the pool open.
	db := stdlib.OpenDBFromPool(s.pool)
	defer db.Close()

	if _, err := migrate.Up(ctx, db, migrate.Postgres); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// Insert adds a new user row.
func (s *Store) Insert(ctx context.Context, user models.User) (models.User, error) {
	const query = `
		INSERT INTO users (login, email, password_hash, age, description)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + userColumns
	row := s.pool.QueryRow(ctx, query, user.Login, user.Email, user.PasswordHash, user.Age, user.Description)
	created, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, storage.ErrAlreadyExists
		}
		return models.User{}, err
	}
	return created, nil
}

// FindByLogin fetches a user by login.
func (s *Store) FindByLogin(ctx context.Context, login string) (models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE login = $1`
	return scanUser(s.pool.QueryRow(ctx, query, login))
}

// List returns a page of users whose login contains q.LoginContains, ordered by id.
func (s *Store) List(ctx context.Context, q storage.ListQuery) ([]models.User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users
		WHERE login LIKE $1
		ORDER BY id ASC
		OFFSET $2 LIMIT $3`
	if err := q.Validate(); err != nil {
		return nil, err
	}
	pattern := "%" + likeEscaper.Replace(q.LoginContains) + "%"
	rows, err := s.pool.Query(ctx, query, pattern, q.Offset, q.Limit)
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
		SET email = COALESCE($2, email),
			password_hash = COALESCE($3, password_hash),
			age = COALESCE($4, age),
			description = COALESCE($5, description),
			updated_at = NOW()
		WHERE login = $1
		RETURNING ` + userColumns
	row := s.pool.QueryRow(ctx, query, login, update.Email, update.PasswordHash, update.Age, update.Description)
	return scanUser(row)
}

// DeleteByLogin removes the user and reports the affected row count.
func (s *Store) DeleteByLogin(ctx context.Context, login string) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM users WHERE login = $1`, login)
	if err != nil {
		return 0, fmt.Errorf("delete user: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	if err := row.Scan(&user.ID, &user.Login, &user.Email, &user.PasswordHash, &user.Age, &user.Description, &user.CreatedAt, &user.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, storage.ErrNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
