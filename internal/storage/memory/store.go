// Package memory provides an in-memory UserStore for tests and local runs.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hongminglow/userdir/internal/models"
	"github.com/hongminglow/userdir/internal/storage"
)

var _ storage.UserStore = (*Store)(nil)

// Store keeps users in a map keyed by login. IDs are assigned from a
// monotonically increasing sequence so list order matches insertion order.
type Store struct {
	mu     sync.RWMutex
	users  map[string]models.User
	nextID int64
	now    func() time.Time
}

// New creates an empty store.
func New() *Store {
	return &Store{
		users: make(map[string]models.User),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Insert stores a new user and assigns its ID and timestamps.
func (s *Store) Insert(ctx context.Context, user models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[user.Login]; exists {
		return models.User{}, storage.ErrAlreadyExists
	}
	s.nextID++
	now := s.now()
	user.ID = s.nextID
	user.CreatedAt = now
	user.UpdatedAt = now
	s.users[user.Login] = user
	return user, nil
}

// FindByLogin returns the user with the exact login.
func (s *Store) FindByLogin(ctx context.Context, login string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[login]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	return user, nil
}

// List returns a page of users ordered by ID.
func (s *Store) List(ctx context.Context, q storage.ListQuery) ([]models.User, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	matched := make([]models.User, 0, len(s.users))
	for login, user := range s.users {
		if strings.Contains(login, q.LoginContains) {
			matched = append(matched, user)
		}
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	if q.Offset >= len(matched) {
		return []models.User{}, nil
	}
	end := len(matched)
	if q.Limit > 0 && q.Offset+q.Limit < end {
		end = q.Offset + q.Limit
	}
	return matched[q.Offset:end], nil
}

// UpdateByLogin merges the supplied fields while holding the write lock.
func (s *Store) UpdateByLogin(ctx context.Context, login string, update storage.UserUpdate) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.users[login]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	if update.Email != nil {
		current.Email = *update.Email
	}
	if update.PasswordHash != nil {
		current.PasswordHash = *update.PasswordHash
	}
	if update.Age != nil {
		current.Age = *update.Age
	}
	if update.Description != nil {
		current.Description = *update.Description
	}
	current.UpdatedAt = s.now()
	s.users[login] = current
	return current, nil
}

// DeleteByLogin removes the user and reports the number of removed rows.
func (s *Store) DeleteByLogin(ctx context.Context, login string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[login]; !ok {
		return 0, nil
	}
	delete(s.users, login)
	return 1, nil
}

// Ping always succeeds.
func (s *Store) Ping(ctx context.Context) error { return nil }

// Close is a no-op.
func (s *Store) Close() error { return nil }
