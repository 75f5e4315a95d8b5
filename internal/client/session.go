package client

import (
	"context"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"stadtwache/internal/domain"
	"stadtwache/internal/validation"
	apperrors "stadtwache/pkg/errors"
)

// SessionState is the admin session's authentication state
type SessionState int

const (
	// Anonymous means no token is held
	Anonymous SessionState = iota
	// Verifying means a restored token is being checked by the server
	Verifying
	// Authenticated means the held token was issued or verified by the server
	Authenticated
)

func (s SessionState) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case Verifying:
		return "verifying"
	case Authenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// ErrInvalidCredentials is returned by Login for any rejected username/password pair
var ErrInvalidCredentials = &apperrors.AppError{
	Code:    apperrors.ErrCodeUnauthorized,
	Message: "invalid credentials",
	Status:  http.StatusUnauthorized,
}

// Session holds the admin token and notifies subscribers of state changes
type Session struct {
	c     *Client
	store TokenStore
	log   *zap.Logger

	mu     sync.Mutex
	token  string
	state  SessionState
	user   *domain.User
	subs   map[int]func(SessionState)
	nextID int
}

func newSession(c *Client, store TokenStore) *Session {
	if store == nil {
		store = NewMemoryTokenStore()
	}
	return &Session{
		c:     c,
		store: store,
		log:   c.log.Named("session"),
		subs:  make(map[int]func(SessionState)),
	}
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login exchanges credentials for a token and persists it. A rejected login
// always yields ErrInvalidCredentials and leaves the session anonymous.
func (s *Session) Login(ctx context.Context, username, password string) (string, error) {
	creds := credentials{Username: username, Password: password}
	if err := validation.Validate(validation.FormLogin, creds); err != nil {
		return "", err
	}

	resp, err := fetch[loginResponse](ctx, s.c, call{
		entity: "session",
		op:     "login",
		method: http.MethodPost,
		path:   "/api/admin/login",
		body:   creds,
	})
	if err != nil {
		if apperrors.IsUnauthorized(err) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	if err := s.store.Save(resp.AccessToken); err != nil {
		s.log.Warn("token not persisted", zap.Error(err))
	}
	s.set(resp.AccessToken, Authenticated, &domain.User{Username: username})
	s.log.Info("signed in", zap.String("username", username))
	return resp.AccessToken, nil
}

// Restore loads a persisted token and verifies it with the server. The
// session stays Verifying until the server answers; only then does it become
// Authenticated. A rejected token is discarded, while a token that could not
// be verified (network or server failure) is kept for the next start.
func (s *Session) Restore(ctx context.Context) error {
	token, err := s.store.Load()
	if err != nil {
		s.log.Warn("stored token unreadable", zap.Error(err))
		s.set("", Anonymous, nil)
		return nil
	}
	if token == "" {
		s.set("", Anonymous, nil)
		return nil
	}

	s.set(token, Verifying, nil)
	user, err := fetch[domain.User](ctx, s.c, call{
		entity: "session",
		op:     "restore",
		method: http.MethodGet,
		path:   "/api/admin/me",
		auth:   true,
	})
	switch {
	case err == nil:
		s.set(token, Authenticated, &user)
		return nil
	case apperrors.IsUnauthorized(err):
		// already expired by the request builder
		return nil
	default:
		s.log.Warn("token verification failed, keeping stored token", zap.Error(err))
		s.set("", Anonymous, nil)
		return err
	}
}

// Logout drops the token locally and asks the server to revoke it. The
// revocation is best effort and never keeps the session signed in.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	token := s.token
	s.mu.Unlock()

	err := s.clear()
	if token != "" {
		if revokeErr := s.c.do(ctx, call{
			entity: "session",
			op:     "logout",
			method: http.MethodPost,
			path:   "/api/admin/logout",
			auth:   true,
			bearer: token,
		}, nil); revokeErr != nil {
			s.log.Debug("server-side logout failed", zap.Error(revokeErr))
		}
	}
	return err
}

// Expire clears a session whose token the server rejected
func (s *Session) Expire() {
	s.mu.Lock()
	had := s.token != "" || s.state != Anonymous
	s.mu.Unlock()
	if !had {
		return
	}
	s.log.Info("session expired")
	_ = s.clear()
}

func (s *Session) clear() error {
	err := s.store.Clear()
	if err != nil {
		s.log.Warn("stored token not removed", zap.Error(err))
	}
	s.set("", Anonymous, nil)
	return err
}

// Subscribe registers fn for state changes and returns a function removing it
func (s *Session) Subscribe(fn func(SessionState)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// State returns the current state
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Token returns the current token, empty when anonymous
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// User returns the signed-in admin, or nil
func (s *Session) User() *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

func (s *Session) set(token string, state SessionState, user *domain.User) {
	s.mu.Lock()
	changed := s.state != state
	s.token, s.state, s.user = token, state, user
	subs := make([]func(SessionState), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	if !changed {
		return
	}
	for _, fn := range subs {
		fn(state)
	}
}
