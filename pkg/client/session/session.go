// Package session holds the client's authenticated state and hands the
// bearer token to the gateway.
package session

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"kafkaportal/pkg/client/gateway"
	"kafkaportal/pkg/domain"
	dErrors "kafkaportal/pkg/domain-errors"
)

// Store is the explicit session object shared by the clients of one user.
type Store struct {
	gw        *gateway.Client
	persister Persister
	logger    *slog.Logger
	now       func() time.Time

	mu      sync.RWMutex
	current *domain.Session
}

type Option func(*Store)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithClock overrides the time source used for expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore restores any session the persister holds. A nil persister keeps
// the session in memory only.
func NewStore(gw *gateway.Client, persister Persister, opts ...Option) (*Store, error) {
	if gw == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "gateway client is required")
	}
	if persister == nil {
		persister = &MemoryPersister{}
	}
	s := &Store{gw: gw, persister: persister, logger: slog.Default(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	restored, err := persister.Load()
	if err != nil {
		s.logger.Warn("discarding unreadable persisted session", "error", err)
		_ = persister.Clear()
		restored = nil
	}
	s.current = restored
	return s, nil
}

// Login exchanges credentials for a session and persists it.
func (s *Store) Login(ctx context.Context, username, password string) (*domain.Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "username and password are required")
	}

	var resp domain.LoginResponse
	err := s.gw.Post(ctx, "/api/auth/login", domain.LoginRequest{Username: username, Password: password}, &resp)
	if err != nil {
		return nil, err
	}

	user := resp.User
	sess := &domain.Session{
		Username: user.Username,
		Role:     user.Role(),
		Token:    resp.AccessToken,
		User:     &user,
	}
	// Without expires_in the session lives until logout or a 401.
	if resp.ExpiresIn > 0 {
		sess.ExpiresAt = s.now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	}
	if sess.Username == "" {
		sess.Username = username
	}

	s.mu.Lock()
	s.current = sess
	s.mu.Unlock()
	if err := s.persister.Save(sess); err != nil {
		s.logger.WarnContext(ctx, "failed to persist session", "error", err)
	}
	cp := *sess
	return &cp, nil
}

// Logout tells the server to revoke the token when one is held, then always
// clears local state. The server call is best effort.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	sess := s.current
	s.current = nil
	s.mu.Unlock()

	if sess != nil && sess.Token != "" {
		_, err := s.gw.Call(ctx, "/api/auth/logout", gateway.Options{
			Method:  http.MethodPost,
			Headers: map[string]string{"Authorization": "Bearer " + sess.Token},
		}, nil)
		if err != nil {
			s.logger.InfoContext(ctx, "server logout failed", "error", err)
		}
	}
	if err := s.persister.Clear(); err != nil {
		s.logger.WarnContext(ctx, "failed to clear persisted session", "error", err)
	}
}

// Current returns a copy of the live session. An expired session reads as
// absent.
func (s *Store) Current() (*domain.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil || s.current.Expired(s.now()) {
		return nil, false
	}
	cp := *s.current
	return &cp, true
}

// IsAdmin reports whether the live session carries the admin role.
func (s *Store) IsAdmin() bool {
	sess, ok := s.Current()
	return ok && sess.IsAdmin()
}

func (s *Store) Token() (string, bool) {
	sess, ok := s.Current()
	if !ok || sess.Token == "" {
		return "", false
	}
	return sess.Token, true
}

// HandleUnauthorized drops the session after the server refused its token.
func (s *Store) HandleUnauthorized() {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
	if err := s.persister.Clear(); err != nil {
		s.logger.Warn("failed to clear persisted session", "error", err)
	}
}

// Gateway returns gw bound to this store's token.
func (s *Store) Gateway() *gateway.Client {
	return s.gw.WithAuth(s)
}
