package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"kafkaportal/internal/audit"
	"kafkaportal/internal/auth/service/mocks"
	"kafkaportal/internal/auth/store/revocation"
	userStore "kafkaportal/internal/auth/store/user"
	"kafkaportal/internal/identity"
	jwttoken "kafkaportal/internal/jwt_token"
	"kafkaportal/pkg/domain"
	dErrors "kafkaportal/pkg/domain-errors"
	"kafkaportal/pkg/platform/sentinel"
	"kafkaportal/pkg/requestcontext"
)

// LoginFlowSuite drives the service with real in-memory collaborators.
type LoginFlowSuite struct {
	suite.Suite
	users   *userStore.InMemoryUserStore
	audit   *audit.Service
	trl     *revocation.InMemoryTRL
	jwt     *jwttoken.JWTService
	service *Service
	now     time.Time
}

func TestLoginFlowSuite(t *testing.T) {
	suite.Run(t, new(LoginFlowSuite))
}

func (s *LoginFlowSuite) SetupTest() {
	s.now = time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	dir, err := identity.NewMockDirectory(map[string]string{"admin": "admin"}, "company.com")
	s.Require().NoError(err)

	s.users = userStore.New()
	s.audit = audit.NewService(audit.NewInMemoryStore())
	s.trl = revocation.NewInMemoryTRL(func() time.Time { return s.now })
	s.jwt = jwttoken.NewJWTService("test-key", "portal", "portal")
	s.service, err = New(dir, s.users, s.jwt, s.trl, s.audit,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithTokenTTL(30*time.Minute),
	)
	s.Require().NoError(err)
}

func (s *LoginFlowSuite) ctx() context.Context {
	ctx := requestcontext.WithTime(context.Background(), s.now)
	return requestcontext.WithClientMetadata(ctx, "10.1.2.3", "Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0")
}

func (s *LoginFlowSuite) actions() []domain.AuditAction {
	admin := requestcontext.WithPrincipal(context.Background(), requestcontext.Principal{UserID: domain.NewUserID(), IsAdmin: true})
	entries, err := s.audit.List(admin, domain.AuditFilter{})
	s.Require().NoError(err)
	out := make([]domain.AuditAction, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		out = append(out, entries[i].Action)
	}
	return out
}

func (s *LoginFlowSuite) TestAdminLogin() {
	resp, err := s.service.Login(s.ctx(), domain.LoginRequest{Username: "admin", Password: "admin"})
	s.Require().NoError(err)
	s.Equal("bearer", resp.TokenType)
	s.Equal(1800, resp.ExpiresIn)
	s.True(resp.User.IsAdmin)
	s.Equal(domain.RoleAdmin, resp.User.Role())

	claims, err := s.jwt.ValidateToken(resp.AccessToken)
	s.Require().NoError(err)
	s.Equal(resp.User.ID.String(), claims.UserID)

	s.Equal([]domain.AuditAction{domain.AuditUserCreated, domain.AuditUserLogin}, s.actions())
}

func (s *LoginFlowSuite) TestRegularUserLogin() {
	resp, err := s.service.Login(s.ctx(), domain.LoginRequest{Username: "testuser", Password: "whatever"})
	s.Require().NoError(err)
	s.False(resp.User.IsAdmin)
	s.Equal("testuser@company.com", resp.User.Email)
	s.Require().NotNil(resp.User.LastLogin)
	s.Equal(s.now, *resp.User.LastLogin)
}

func (s *LoginFlowSuite) TestSecondLoginReusesUser() {
	first, err := s.service.Login(s.ctx(), domain.LoginRequest{Username: "testuser", Password: "a"})
	s.Require().NoError(err)
	second, err := s.service.Login(s.ctx(), domain.LoginRequest{Username: "testuser", Password: "b"})
	s.Require().NoError(err)
	s.Equal(first.User.ID, second.User.ID)
	s.Equal([]domain.AuditAction{domain.AuditUserCreated, domain.AuditUserLogin, domain.AuditUserLogin}, s.actions())
}

func (s *LoginFlowSuite) TestRoleChangeIsAudited() {
	s.Require().NoError(s.users.Create(context.Background(), &domain.User{
		ID: domain.NewUserID(), Username: "admin", IsActive: true, CreatedAt: s.now,
	}))
	resp, err := s.service.Login(s.ctx(), domain.LoginRequest{Username: "admin", Password: "admin"})
	s.Require().NoError(err)
	s.True(resp.User.IsAdmin)
	s.Equal([]domain.AuditAction{domain.AuditUserRoleUpdated, domain.AuditUserLogin}, s.actions())
}

func (s *LoginFlowSuite) TestLoginFailures() {
	s.Run("wrong admin password", func() {
		_, err := s.service.Login(s.ctx(), domain.LoginRequest{Username: "admin", Password: "nope"})
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
	s.Run("missing fields", func() {
		_, err := s.service.Login(s.ctx(), domain.LoginRequest{Username: "admin"})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
	s.Run("inactive user", func() {
		s.Require().NoError(s.users.Create(context.Background(), &domain.User{
			ID: domain.NewUserID(), Username: "gone", IsActive: false, CreatedAt: s.now,
		}))
		_, err := s.service.Login(s.ctx(), domain.LoginRequest{Username: "gone", Password: "pw"})
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})
}

func (s *LoginFlowSuite) TestLogoutRevokesToken() {
	resp, err := s.service.Login(s.ctx(), domain.LoginRequest{Username: "testuser", Password: "pw"})
	s.Require().NoError(err)
	claims, err := s.jwt.ValidateToken(resp.AccessToken)
	s.Require().NoError(err)

	ctx := requestcontext.WithPrincipal(s.ctx(), requestcontext.Principal{UserID: resp.User.ID, Username: "testuser"})
	ctx = requestcontext.WithToken(ctx, requestcontext.Token{JTI: claims.ID, ExpiresAt: claims.ExpiresAt.Time})
	s.Require().NoError(s.service.Logout(ctx))

	revoked, err := s.service.IsTokenRevoked(ctx, claims.ID)
	s.Require().NoError(err)
	s.True(revoked)
	s.Equal(domain.AuditUserLogout, s.actions()[len(s.actions())-1])
}

func (s *LoginFlowSuite) TestMe() {
	resp, err := s.service.Login(s.ctx(), domain.LoginRequest{Username: "testuser", Password: "pw"})
	s.Require().NoError(err)

	ctx := requestcontext.WithPrincipal(s.ctx(), requestcontext.Principal{UserID: resp.User.ID})
	me, err := s.service.Me(ctx)
	s.Require().NoError(err)
	s.Equal("testuser", me.Username)

	_, err = s.service.Me(context.Background())
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

// ServiceMockSuite covers collaborator failures with gomock.
type ServiceMockSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	users   *mocks.MockUserStore
	tokens  *mocks.MockTokenIssuer
	trl     *mocks.MockRevocationList
	audit   *mocks.MockAuditRecorder
	limiter *mocks.MockLoginLimiter
	service *Service
}

func TestServiceMockSuite(t *testing.T) {
	suite.Run(t, new(ServiceMockSuite))
}

func (s *ServiceMockSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.users = mocks.NewMockUserStore(s.ctrl)
	s.tokens = mocks.NewMockTokenIssuer(s.ctrl)
	s.trl = mocks.NewMockRevocationList(s.ctrl)
	s.audit = mocks.NewMockAuditRecorder(s.ctrl)
	s.limiter = mocks.NewMockLoginLimiter(s.ctrl)
	dir, err := identity.NewMockDirectory(nil, "company.com")
	s.Require().NoError(err)
	s.service, err = New(dir, s.users, s.tokens, s.trl, s.audit,
		WithLimiter(s.limiter),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	s.Require().NoError(err)
}

func (s *ServiceMockSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ServiceMockSuite) TestNew() {
	_, err := New(nil, s.users, s.tokens, s.trl, s.audit)
	s.ErrorContains(err, "directory is required")
}

func (s *ServiceMockSuite) TestRateLimitedBeforeDirectory() {
	s.limiter.EXPECT().Check(gomock.Any(), "bob", gomock.Any()).
		Return(dErrors.New(dErrors.CodeRateLimited, "slow down"))

	_, err := s.service.Login(context.Background(), domain.LoginRequest{Username: "bob", Password: "pw"})
	s.True(dErrors.HasCode(err, dErrors.CodeRateLimited))
}

func (s *ServiceMockSuite) TestStoreFailureIsInternal() {
	s.limiter.EXPECT().Check(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	s.users.EXPECT().FindByUsername(gomock.Any(), "bob").Return(nil, errors.New("connection reset"))

	_, err := s.service.Login(context.Background(), domain.LoginRequest{Username: "bob", Password: "pw"})
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}

func (s *ServiceMockSuite) TestConcurrentCreateIsConflict() {
	s.limiter.EXPECT().Check(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	s.users.EXPECT().FindByUsername(gomock.Any(), "bob").Return(nil, sentinel.ErrNotFound)
	s.users.EXPECT().Create(gomock.Any(), gomock.Any()).Return(sentinel.ErrConflict)

	_, err := s.service.Login(context.Background(), domain.LoginRequest{Username: "bob", Password: "pw"})
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *ServiceMockSuite) TestTokenFailureIsInternal() {
	s.limiter.EXPECT().Check(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	existing := &domain.User{ID: domain.NewUserID(), Username: "bob", IsActive: true}
	s.users.EXPECT().FindByUsername(gomock.Any(), "bob").Return(existing, nil)
	s.users.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)
	s.audit.EXPECT().Record(gomock.Any(), gomock.Any()).Return(nil)
	s.tokens.EXPECT().GenerateAccessToken(gomock.Any(), gomock.Any()).Return("", "", errors.New("no key"))

	_, err := s.service.Login(context.Background(), domain.LoginRequest{Username: "bob", Password: "pw"})
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}

func (s *ServiceMockSuite) TestLogoutSkipsExpiredToken() {
	now := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)
	ctx = requestcontext.WithPrincipal(ctx, requestcontext.Principal{UserID: domain.NewUserID(), Username: "bob"})
	ctx = requestcontext.WithToken(ctx, requestcontext.Token{JTI: "j", ExpiresAt: now.Add(-time.Minute)})
	s.audit.EXPECT().Record(gomock.Any(), gomock.Any()).Return(nil)

	s.NoError(s.service.Logout(ctx))
}

func (s *ServiceMockSuite) TestLogoutRevocationFailure() {
	now := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)
	ctx = requestcontext.WithPrincipal(ctx, requestcontext.Principal{UserID: domain.NewUserID(), Username: "bob"})
	ctx = requestcontext.WithToken(ctx, requestcontext.Token{JTI: "j", ExpiresAt: now.Add(time.Minute)})
	s.trl.EXPECT().RevokeToken(gomock.Any(), "j", time.Minute).Return(errors.New("redis down"))

	err := s.service.Logout(ctx)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}
