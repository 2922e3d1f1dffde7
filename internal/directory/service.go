// Package directory owns the user-record lifecycle: creation, lookup,
// filtered listing, partial update and deletion.
package directory

import (
	"context"
	"errors"
	"fmt"
	"math"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/hongminglow/userdir/internal/auth"
	"github.com/hongminglow/userdir/internal/models"
	"github.com/hongminglow/userdir/internal/storage"
)

// Paging defaults applied by ListParams.Normalize.
const (
	// DefaultPage is used when the requested page is below 1.
	DefaultPage = 1
	// DefaultLimit is used when the requested limit is below 1.
	DefaultLimit = 10
	// MaxLimit caps the page size.
	MaxLimit = 100
)

var (
	// ErrDuplicateLogin indicates a user with the login already exists.
	ErrDuplicateLogin = errors.New("login already exists")

	// ErrNotFound indicates no user has the requested login.
	ErrNotFound = errors.New("user not found")
)

// ListParams selects a page of users. Page is 1-indexed.
type ListParams struct {
	FilterLogin string
	Page        int
	Limit       int
}

// Normalize fills defaults, bounds the page size and clamps the page so the
// resulting offset cannot overflow.
func (p ListParams) Normalize() ListParams {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if maxPage := math.MaxInt/p.Limit + 1; p.Page > maxPage {
		p.Page = maxPage
	}
	return p
}

// Service implements directory operations over a UserStore.
type Service struct {
	store  storage.UserStore
	hasher auth.PasswordHasher
	tracer trace.Tracer
}

// NewService creates a directory service.
func NewService(store storage.UserStore, hasher auth.PasswordHasher) *Service {
	return &Service{
		store:  store,
		hasher: hasher,
		tracer: otel.Tracer("github.com/hongminglow/userdir/internal/directory"),
	}
}

// Create registers a new user. The password is hashed before it is stored.
func (s *Service) Create(ctx context.Context, in models.NewUser) (user models.User, err error) {
	const op = "directory.Create"
	ctx, span := s.start(ctx, op, in.Login)
	defer func() { endSpan(span, err) }()

	if _, err := s.store.FindByLogin(ctx, in.Login); err == nil {
		return models.User{}, ErrDuplicateLogin
	} else if !errors.Is(err, storage.ErrNotFound) {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return models.User{}, fmt.Errorf("%s: hash password: %w", op, err)
	}

	created, err := s.store.Insert(ctx, models.User{
		Login:        in.Login,
		Email:        in.Email,
		PasswordHash: hash,
		Age:          in.Age,
		Description:  in.Description,
	})
	if err != nil {
		// A concurrent registration can still win the race past the pre-check.
		if errors.Is(err, storage.ErrAlreadyExists) {
			return models.User{}, ErrDuplicateLogin
		}
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}
	return created, nil
}

// FindByLogin returns the user with exactly this login.
func (s *Service) FindByLogin(ctx context.Context, login string) (user models.User, err error) {
	const op = "directory.FindByLogin"
	ctx, span := s.start(ctx, op, login)
	defer func() { endSpan(span, err) }()

	user, err = s.store.FindByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

// List returns one page of users whose login contains FilterLogin, in id order.
func (s *Service) List(ctx context.Context, params ListParams) (users []models.User, err error) {
	const op = "directory.List"
	params = params.Normalize()

	ctx, span := s.tracer.Start(ctx, op, trace.WithAttributes(
		attribute.String("user.filter_login", params.FilterLogin),
		attribute.Int("page", params.Page),
		attribute.Int("limit", params.Limit),
	))
	defer func() { endSpan(span, err) }()

	users, err = s.store.List(ctx, storage.ListQuery{
		LoginContains: params.FilterLogin,
		Offset:        (params.Page - 1) * params.Limit,
		Limit:         params.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return users, nil
}

// Update applies the supplied fields to the existing user in one store call.
// Fields left nil in the patch keep their stored values.
func (s *Service) Update(ctx context.Context, login string, patch models.UserPatch) (user models.User, err error) {
	const op = "directory.Update"
	ctx, span := s.start(ctx, op, login)
	defer func() { endSpan(span, err) }()

	if patch.Empty() {
		current, err := s.store.FindByLogin(ctx, login)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return models.User{}, ErrNotFound
			}
			return models.User{}, fmt.Errorf("%s: %w", op, err)
		}
		return current, nil
	}

	update := storage.UserUpdate{
		Email:       patch.Email,
		Age:         patch.Age,
		Description: patch.Description,
	}
	if patch.Password != nil {
		hash, err := s.hasher.Hash(*patch.Password)
		if err != nil {
			return models.User{}, fmt.Errorf("%s: hash password: %w", op, err)
		}
		update.PasswordHash = &hash
	}

	updated, err := s.store.UpdateByLogin(ctx, login, update)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}
	return updated, nil
}

// Delete removes the user. Deleting a login that matches nothing is ErrNotFound.
func (s *Service) Delete(ctx context.Context, login string) (err error) {
	const op = "directory.Delete"
	ctx, span := s.start(ctx, op, login)
	defer func() { endSpan(span, err) }()

	affected, err := s.store.DeleteByLogin(ctx, login)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Service) start(ctx context.Context, op, login string) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, op, trace.WithAttributes(attribute.String("user.login", login)))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
