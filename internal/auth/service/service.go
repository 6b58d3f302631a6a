package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks UserStore,TokenIssuer,RevocationList,AuditRecorder,LoginLimiter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"kafkaportal/internal/auth/device"
	"kafkaportal/internal/identity"
	"kafkaportal/internal/platform/metrics"
	"kafkaportal/pkg/domain"
	dErrors "kafkaportal/pkg/domain-errors"
	"kafkaportal/pkg/platform/sentinel"
	txcontext "kafkaportal/pkg/platform/tx"
	"kafkaportal/pkg/requestcontext"
)

type UserStore interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id domain.UserID) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
}

type TokenIssuer interface {
	GenerateAccessToken(user *domain.User, expiresIn time.Duration) (token string, jti string, err error)
}

type RevocationList interface {
	RevokeToken(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type AuditRecorder interface {
	Record(ctx context.Context, entry domain.AuditEntry) error
}

type LoginLimiter interface {
	Check(ctx context.Context, username, ip string) error
}

// Service handles portal login and logout. The directory decides who may
// sign in; the user store keeps the portal's own record of them.
type Service struct {
	directory identity.Directory
	users     UserStore
	tokens    TokenIssuer
	trl       RevocationList
	audit     AuditRecorder
	limiter   LoginLimiter
	tx        txcontext.Runner
	tokenTTL  time.Duration
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithLimiter(l LoginLimiter) Option {
	return func(s *Service) { s.limiter = l }
}

// WithTx makes the user upsert and its audit entries one unit of work.
func WithTx(r txcontext.Runner) Option {
	return func(s *Service) { s.tx = r }
}

func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Service) { s.tokenTTL = ttl }
}

func New(directory identity.Directory, users UserStore, tokens TokenIssuer, trl RevocationList, audit AuditRecorder, opts ...Option) (*Service, error) {
	switch {
	case directory == nil:
		return nil, fmt.Errorf("directory is required")
	case users == nil:
		return nil, fmt.Errorf("user store is required")
	case tokens == nil:
		return nil, fmt.Errorf("token issuer is required")
	case trl == nil:
		return nil, fmt.Errorf("revocation list is required")
	case audit == nil:
		return nil, fmt.Errorf("audit recorder is required")
	}
	s := &Service{
		directory: directory,
		users:     users,
		tokens:    tokens,
		trl:       trl,
		audit:     audit,
		tx:        txcontext.NopRunner{},
		tokenTTL:  time.Hour,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Login authenticates against the directory, upserts the portal user and
// issues an access token.
func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error) {
	requestID := requestcontext.RequestID(ctx)
	ip := requestcontext.ClientIP(ctx)

	if req.Username == "" || req.Password == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "username and password are required")
	}
	if s.limiter != nil {
		if err := s.limiter.Check(ctx, req.Username, ip); err != nil {
			return nil, err
		}
	}

	ident, err := s.directory.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeUnauthorized) {
			s.authFailure(ctx, "invalid_credentials", "username", req.Username, "ip", ip)
			return nil, dErrors.New(dErrors.CodeUnauthorized, "Incorrect username or password")
		}
		s.logger.ErrorContext(ctx, "directory authentication failed",
			"request_id", requestID,
			"error", err,
		)
		if dErrors.HasCode(err, dErrors.CodeUnavailable) {
			return nil, err
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "authentication failed")
	}

	var user *domain.User
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		user, err = s.upsertUser(ctx, ident)
		return err
	})
	if err != nil {
		return nil, err
	}

	token, _, err := s.tokens.GenerateAccessToken(user, s.tokenTTL)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue access token")
	}

	s.logger.InfoContext(ctx, "user logged in",
		"request_id", requestID,
		"user_id", user.ID,
		"is_admin", user.IsAdmin,
	)
	return &domain.LoginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int(s.tokenTTL.Seconds()),
		User:        *user,
	}, nil
}

// upsertUser writes the portal user and up to three audit entries, each for
// one distinct fact: creation, role change, and the login itself.
func (s *Service) upsertUser(ctx context.Context, ident *identity.Identity) (*domain.User, error) {
	now := requestcontext.Now(ctx).UTC()

	user, err := s.users.FindByUsername(ctx, ident.Username)
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		user = &domain.User{
			ID:        domain.NewUserID(),
			Username:  ident.Username,
			Email:     ident.Email,
			IsAdmin:   ident.IsAdmin,
			IsActive:  true,
			CreatedAt: now,
		}
		if err := s.users.Create(ctx, user); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return nil, dErrors.New(dErrors.CodeConflict, "user was created concurrently, retry login")
			}
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
		}
		s.metrics.IncrementUsersCreated()
		if err := s.record(ctx, user, domain.AuditUserCreated, map[string]any{
			"username": user.Username,
			"email":    user.Email,
			"is_admin": user.IsAdmin,
		}); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	default:
		if !user.IsActive {
			s.authFailure(ctx, "inactive_user", "user_id", user.ID.String())
			return nil, dErrors.New(dErrors.CodeForbidden, "user account is disabled")
		}
		if user.IsAdmin != ident.IsAdmin {
			if err := s.record(ctx, user, domain.AuditUserRoleUpdated, map[string]any{
				"is_admin": map[string]any{"old": user.IsAdmin, "new": ident.IsAdmin},
			}); err != nil {
				return nil, err
			}
			user.IsAdmin = ident.IsAdmin
		}
		if ident.Email != "" {
			user.Email = ident.Email
		}
	}

	user.LastLogin = &now
	if err := s.users.Update(ctx, user); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update user")
	}
	if err := s.record(ctx, user, domain.AuditUserLogin, map[string]any{
		"device": device.ParseUserAgent(requestcontext.UserAgent(ctx)),
	}); err != nil {
		return nil, err
	}
	return user, nil
}

// Logout revokes the presented token for the rest of its lifetime.
func (s *Service) Logout(ctx context.Context) error {
	p, ok := requestcontext.PrincipalFrom(ctx)
	token, hasToken := requestcontext.TokenFrom(ctx)
	if !ok || !hasToken {
		return dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}

	ttl := token.ExpiresAt.Sub(requestcontext.Now(ctx))
	if ttl > 0 {
		if err := s.trl.RevokeToken(ctx, token.JTI, ttl); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke token")
		}
	}

	if err := s.audit.Record(ctx, domain.AuditEntry{
		ActorID:    p.UserID,
		Actor:      p.Username,
		Action:     domain.AuditUserLogout,
		EntityType: domain.EntityUser,
		EntityID:   p.UserID.String(),
	}); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "user logged out",
		"request_id", requestcontext.RequestID(ctx),
		"user_id", p.UserID,
	)
	return nil
}

// Me returns the caller's current record.
func (s *Service) Me(ctx context.Context) (*domain.User, error) {
	p, ok := requestcontext.PrincipalFrom(ctx)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	user, err := s.users.FindByID(ctx, p.UserID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	return user, nil
}

// IsTokenRevoked adapts the revocation list for the auth middleware.
func (s *Service) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	return s.trl.IsRevoked(ctx, jti)
}

func (s *Service) record(ctx context.Context, user *domain.User, action domain.AuditAction, changes map[string]any) error {
	return s.audit.Record(ctx, domain.AuditEntry{
		ActorID:    user.ID,
		Actor:      user.Username,
		Action:     action,
		EntityType: domain.EntityUser,
		EntityID:   user.ID.String(),
		Changes:    changes,
	})
}

func (s *Service) authFailure(ctx context.Context, reason string, attrs ...any) {
	args := append([]any{
		"log_type", "audit",
		"reason", reason,
		"request_id", requestcontext.RequestID(ctx),
	}, attrs...)
	s.logger.WarnContext(ctx, "auth_failed", args...)
}
