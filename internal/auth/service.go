// Package auth owns password verification and bearer-token issuance and
// verification.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/hongminglow/userdir/internal/models"
	"github.com/hongminglow/userdir/internal/storage"
)

const bearerScheme = "Bearer"

// UserLookup resolves a stored user by login.
type UserLookup interface {
	FindByLogin(ctx context.Context, login string) (models.User, error)
}

// Service is the credential service: it authenticates logins, issues tokens,
// and verifies presented tokens. It holds no mutable per-request state.
type Service struct {
	users  UserLookup
	tokens *TokenManager
	hasher PasswordHasher

	dummyOnce sync.Once
	dummyHash string
}

// NewService wires the credential service to its collaborators.
func NewService(users UserLookup, tokens *TokenManager, hasher PasswordHasher) *Service {
	return &Service{users: users, tokens: tokens, hasher: hasher}
}

// Authenticate returns the user when login and password match a stored record.
// Unknown logins and wrong passwords both yield ErrInvalidCredentials, and both
// paths run one hash comparison.
func (s *Service) Authenticate(ctx context.Context, login, password string) (models.User, error) {
	const op = "auth.Authenticate"

	user, err := s.users.FindByLogin(ctx, login)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return models.User{}, fmt.Errorf("%s: %w", op, err)
		}
		_, _ = s.hasher.Verify(password, s.dummy())
		return models.User{}, ErrInvalidCredentials
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return models.User{}, fmt.Errorf("%s: verify password: %w", op, err)
	}
	if !ok {
		return models.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// Login authenticates and issues a token in one step.
func (s *Service) Login(ctx context.Context, login, password string) (Token, error) {
	user, err := s.Authenticate(ctx, login, password)
	if err != nil {
		return Token{}, err
	}
	return s.IssueToken(user)
}

// IssueToken signs a token for user that expires after the configured TTL.
func (s *Service) IssueToken(user models.User) (Token, error) {
	return s.tokens.Generate(user)
}

// VerifyToken verifies a bare token string.
func (s *Service) VerifyToken(raw string) (Identity, error) {
	return s.tokens.Parse(raw)
}

// VerifyHeader parses an Authorization header value of the form
// "Bearer <token>" and verifies the token.
func (s *Service) VerifyHeader(header string) (Identity, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return Identity{}, ErrMissingToken
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, bearerScheme) {
		return Identity{}, ErrMalformedToken
	}
	token = strings.TrimSpace(token)
	if token == "" || strings.ContainsAny(token, " \t") {
		return Identity{}, ErrMalformedToken
	}
	return s.VerifyToken(token)
}

// dummy returns a hash used to keep unknown-login attempts as slow as real ones.
func (s *Service) dummy() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash("userdir-timing-equaliser")
		if err == nil {
			s.dummyHash = hash
		}
	})
	return s.dummyHash
}
