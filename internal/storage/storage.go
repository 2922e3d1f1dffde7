package storage

import (
	"context"
	"errors"

	"github.com/hongminglow/userdir/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// ErrInvalidQuery indicates a ListQuery with a negative offset or limit.
var ErrInvalidQuery = errors.New("invalid list query")

// ListQuery selects a page of users. LoginContains is a case-sensitive
// substring filter; empty matches everything. Results are ordered by ID.
type ListQuery struct {
	LoginContains string
	Offset        int
	Limit         int
}

// Validate rejects negative paging values.
func (q ListQuery) Validate() error {
	if q.Offset < 0 || q.Limit < 0 {
		return ErrInvalidQuery
	}
	return nil
}

// UserUpdate is a partial write. Nil fields keep their stored values, and the
// merge happens inside the store in one atomic step.
type UserUpdate struct {
	Email        *string
	PasswordHash *string
	Age          *int
	Description  *string
}

// UserStore captures the persistence operations the directory needs. Each call
// is a single atomic unit against the backend.
type UserStore interface {
	Insert(ctx context.Context, user models.User) (models.User, error)
	FindByLogin(ctx context.Context, login string) (models.User, error)
	List(ctx context.Context, q ListQuery) ([]models.User, error)
	// UpdateByLogin applies the non-nil fields of update to the row keyed by
	// login and returns the stored result.
	UpdateByLogin(ctx context.Context, login string, update UserUpdate) (models.User, error)
	// DeleteByLogin reports how many rows were removed; zero is not an error.
	DeleteByLogin(ctx context.Context, login string) (int64, error)
	Ping(ctx context.Context) error
	Close() error
}
