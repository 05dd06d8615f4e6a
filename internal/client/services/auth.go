// Package services contains application services for the authkeeper
// client. AuthService drives a user session: it registers or logs in
// through an account backend, keeps the resulting token in a secret store
// and answers who is logged in.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/client/secretstore"
	"github.com/dmitrijs2005/authkeeper/internal/clock"
	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/validation"
)

// AccountBackend performs the account operations on behalf of the client.
// The remote HTTP client and the in-process server AccountService both
// implement it.
type AccountBackend interface {
	Register(ctx context.Context, username, email, password string) (string, error)
	Login(ctx context.Context, username, password string) (string, error)
	Profile(ctx context.Context, token string) (*models.Profile, error)
}

// Pinger is implemented by backends that can report reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

type SessionState string

const (
	StateLoggedOut SessionState = "logged_out"
	StateLoggedIn  SessionState = "logged_in"
)

// verified remembers the last successful profile check of a token.
type verified struct {
	token     string
	profile   *models.Profile
	expiresAt time.Time
}

// AuthService is safe for concurrent use. Backend calls are made without
// holding any lock. Writes to the secret store, and the state change that
// goes with them, happen under session so a stale check never removes a
// token saved by a newer login.
type AuthService struct {
	backend AccountBackend
	secrets secretstore.Store
	clock   clock.Clock
	logger  logging.Logger

	session sync.Mutex

	mu    sync.Mutex
	state SessionState
	last  *verified
}

func NewAuthService(backend AccountBackend, secrets secretstore.Store, c clock.Clock, logger logging.Logger) *AuthService {
	if c == nil {
		c = clock.Real()
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &AuthService{backend: backend, secrets: secrets, clock: c, logger: logger, state: StateLoggedOut}
}

// Register checks the input locally, creates the account and stores the
// returned token. Invalid input fails before any I/O.
func (s *AuthService) Register(ctx context.Context, username, email, password string) error {
	if username == "" || email == "" || password == "" || !validation.ValidateUsername(username) {
		return common.ErrMissingFields
	}
	if !validation.ValidateEmail(email) {
		return common.ErrInvalidEmail
	}
	if !validation.ValidatePassword(password) {
		return common.ErrWeakPassword
	}

	token, err := s.backend.Register(ctx, username, email, password)
	if err != nil {
		return err
	}

	return s.startSession(ctx, token)
}

// Login exchanges credentials for a token and stores it.
func (s *AuthService) Login(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return common.ErrMissingFields
	}

	token, err := s.backend.Login(ctx, username, password)
	if err != nil {
		return err
	}

	return s.startSession(ctx, token)
}

// Logout forgets the stored token. Logging out twice is not an error.
func (s *AuthService) Logout(ctx context.Context) error {
	s.session.Lock()
	defer s.session.Unlock()

	if err := s.secrets.Delete(ctx); err != nil {
		return fmt.Errorf("%w: delete session: %w", common.ErrStorageUnavailable, err)
	}
	s.setState(StateLoggedOut, nil)
	return nil
}

// CurrentUser returns the profile of the logged-in user, or nil when nobody
// is logged in. A stored token that is expired, invalid or belongs to a
// deleted user is removed and reported as nil.
func (s *AuthService) CurrentUser(ctx context.Context) (*models.Profile, error) {
	token, err := s.loadToken(ctx)
	if err != nil || token == "" {
		return nil, err
	}
	return s.resolve(ctx, token)
}

// IsAuthenticated reports whether CurrentUser would return a profile. A
// previous successful check of the same token is reused until the token's
// expiry; storage or network errors count as not authenticated.
func (s *AuthService) IsAuthenticated(ctx context.Context) bool {
	token, err := s.loadToken(ctx)
	if err != nil || token == "" {
		return false
	}

	s.mu.Lock()
	last := s.last
	s.mu.Unlock()

	if last != nil && last.token == token && s.clock.Now().Before(last.expiresAt) {
		return true
	}

	p, err := s.resolve(ctx, token)
	return err == nil && p != nil
}

// State reports the session state as last observed.
func (s *AuthService) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Ping checks the backend, when it supports it.
func (s *AuthService) Ping(ctx context.Context) error {
	if p, ok := s.backend.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

func (s *AuthService) startSession(ctx context.Context, token string) error {
	s.session.Lock()
	defer s.session.Unlock()

	if err := s.secrets.Save(ctx, []byte(token)); err != nil {
		return fmt.Errorf("%w: save session: %w", common.ErrStorageUnavailable, err)
	}
	s.setState(StateLoggedIn, nil)
	return nil
}

// loadToken returns "" with a nil error when no usable token is stored.
func (s *AuthService) loadToken(ctx context.Context) (string, error) {
	raw, err := s.secrets.Load(ctx)
	switch {
	case err == nil:
		token := string(raw)
		common.WipeByteArray(raw)
		return token, nil
	case errors.Is(err, common.ErrorNotFound):
		return "", s.discardIf(ctx, isAbsent)
	case errors.Is(err, secretstore.ErrUnreadable):
		s.logger.Warn(ctx, "stored session cannot be opened, discarding it", "error", err)
		return "", s.discardIf(ctx, isUnreadable)
	default:
		return "", fmt.Errorf("%w: load session: %w", common.ErrStorageUnavailable, err)
	}
}

func (s *AuthService) resolve(ctx context.Context, token string) (*models.Profile, error) {
	p, err := s.backend.Profile(ctx, token)
	switch {
	case err == nil:
		exp, _ := auth.ExpiresAt(token)
		s.remember(ctx, &verified{token: token, profile: p, expiresAt: exp})
		return p, nil
	case errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrorNotFound):
		s.logger.Info(ctx, "stored session is no longer valid", "reason", common.Message(err))
		return nil, s.discardIf(ctx, holds(token))
	default:
		return nil, err
	}
}

// storedMatch inspects the result of a fresh secret store Load.
type storedMatch func(raw []byte, err error) bool

func isAbsent(_ []byte, err error) bool {
	return errors.Is(err, common.ErrorNotFound)
}

func isUnreadable(_ []byte, err error) bool {
	return errors.Is(err, secretstore.ErrUnreadable)
}

func holds(token string) storedMatch {
	return func(raw []byte, err error) bool {
		return err == nil && string(raw) == token
	}
}

// discardIf reloads the stored secret and deletes it only if match still
// holds. Anything saved since the caller's check is left alone.
func (s *AuthService) discardIf(ctx context.Context, match storedMatch) error {
	s.session.Lock()
	defer s.session.Unlock()

	raw, err := s.secrets.Load(ctx)
	stale := match(raw, err)
	common.WipeByteArray(raw)
	if !stale {
		return nil
	}

	if !errors.Is(err, common.ErrorNotFound) {
		if err := s.secrets.Delete(ctx); err != nil {
			return fmt.Errorf("%w: delete session: %w", common.ErrStorageUnavailable, err)
		}
	}
	s.setState(StateLoggedOut, nil)
	return nil
}

// remember records a successful check if the checked token is still the
// stored one.
func (s *AuthService) remember(ctx context.Context, v *verified) {
	s.session.Lock()
	defer s.session.Unlock()

	raw, err := s.secrets.Load(ctx)
	current := holds(v.token)(raw, err)
	common.WipeByteArray(raw)
	if current {
		s.setState(StateLoggedIn, v)
	}
}

func (s *AuthService) setState(state SessionState, last *verified) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	s.last = last
}
