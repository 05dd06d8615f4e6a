// Package services contains server-side business logic. AccountService
// registers users, checks their credentials and resolves bearer tokens back
// to a profile.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/password"
	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/users"
	"github.com/dmitrijs2005/authkeeper/internal/validation"
)

// DefaultTokenTTL is used when the service is built with a zero TTL.
const DefaultTokenTTL = time.Hour

// AccountService implements register, login and profile lookup on top of a
// user repository, a password hasher and a token issuer.
type AccountService struct {
	users  users.Repository
	hasher password.Hasher
	tokens *auth.Issuer
	ttl    time.Duration
	logger logging.Logger

	dummyOnce sync.Once
	dummy     string
}

func NewAccountService(repo users.Repository, hasher password.Hasher, tokens *auth.Issuer, ttl time.Duration, logger logging.Logger) *AccountService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &AccountService{users: repo, hasher: hasher, tokens: tokens, ttl: ttl, logger: logger}
}

// Register validates the input, stores a new user and returns a token for it.
//
// Errors: ErrMissingFields, ErrInvalidEmail, ErrWeakPassword (all before any
// I/O), ErrUsernameTaken, ErrStorageUnavailable.
func (s *AccountService) Register(ctx context.Context, username, email, plaintext string) (string, error) {
	if username == "" || email == "" || plaintext == "" || !validation.ValidateUsername(username) {
		return "", common.ErrMissingFields
	}
	if !validation.ValidateEmail(email) {
		return "", common.ErrInvalidEmail
	}
	if !validation.ValidatePassword(plaintext) {
		return "", common.ErrWeakPassword
	}

	hash, err := s.hasher.Hash(plaintext)
	if err != nil {
		return "", fmt.Errorf("%w: hash password: %w", common.ErrorInternal, err)
	}

	u, err := s.users.Create(ctx, &models.User{UserName: username, Email: email, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, common.ErrConflict) {
			return "", common.ErrUsernameTaken
		}
		return "", s.storageError(ctx, "create user", err)
	}

	s.logger.Info(ctx, "user registered", "username", u.UserName)
	return s.issue(u.UserName)
}

// Login checks username and password and returns a fresh token. An unknown
// user and a wrong password both yield ErrInvalidCredentials.
func (s *AccountService) Login(ctx context.Context, username, plaintext string) (string, error) {
	if username == "" || plaintext == "" {
		return "", common.ErrMissingFields
	}

	u, err := s.users.GetUserByLogin(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// absent users take as long as a wrong password
			s.hasher.Verify(plaintext, s.dummyHash())
			return "", common.ErrInvalidCredentials
		}
		return "", s.storageError(ctx, "get user", err)
	}

	if !s.hasher.Verify(plaintext, u.PasswordHash) {
		s.logger.Warn(ctx, "failed login", "username", username)
		return "", common.ErrInvalidCredentials
	}

	return s.issue(u.UserName)
}

// Profile resolves token to the public view of its user.
//
// Errors: ErrTokenExpired, ErrInvalidToken, ErrorNotFound (user deleted
// since the token was issued), ErrStorageUnavailable.
func (s *AccountService) Profile(ctx context.Context, token string) (*models.Profile, error) {
	username, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	u, err := s.users.GetUserByLogin(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, s.storageError(ctx, "get user", err)
	}

	return u.Profile(), nil
}

// DeleteAccount removes the user. Tokens already issued stop resolving to a
// profile.
func (s *AccountService) DeleteAccount(ctx context.Context, username string) error {
	if err := s.users.Delete(ctx, username); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return s.storageError(ctx, "delete user", err)
	}
	s.logger.Info(ctx, "user deleted", "username", username)
	return nil
}

func (s *AccountService) dummyHash() string {
	s.dummyOnce.Do(func() {
		s.dummy, _ = s.hasher.Hash("Dummy-Passw0rd!")
	})
	return s.dummy
}

func (s *AccountService) issue(username string) (string, error) {
	token, err := s.tokens.Issue(username, s.ttl)
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}
	return token, nil
}

func (s *AccountService) storageError(ctx context.Context, op string, err error) error {
	s.logger.Error(ctx, "storage failure", "op", op, "error", err)
	return fmt.Errorf("%w: %s: %w", common.ErrStorageUnavailable, op, err)
}
