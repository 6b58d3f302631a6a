package handler

import (
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"kafkaportal/internal/auth/handler/mocks"
	"kafkaportal/pkg/domain"
	dErrors "kafkaportal/pkg/domain-errors"
	"kafkaportal/pkg/testutil"
)

type HandlerSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	service *mocks.MockService
	router  http.Handler
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.service = mocks.NewMockService(s.ctrl)
	h := New(s.service, slog.New(slog.NewTextHandler(io.Discard, nil)))
	r := chi.NewRouter()
	h.RegisterPublic(r)
	h.Register(r)
	s.router = r
}

func (s *HandlerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *HandlerSuite) TestLogin() {
	s.Run("success returns token body", func() {
		s.service.EXPECT().Login(gomock.Any(), domain.LoginRequest{Username: "admin", Password: "admin"}).
			Return(&domain.LoginResponse{AccessToken: "tok", TokenType: "bearer", ExpiresIn: 3600, User: domain.User{Username: "admin", IsAdmin: true}}, nil)

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/auth/login", domain.LoginRequest{Username: "admin", Password: "admin"}))
		testutil.AssertStatusOK(s.T(), rr)
		resp := testutil.UnmarshalResponse[domain.LoginResponse](s.T(), rr)
		s.Equal("tok", resp.AccessToken)
		s.True(resp.User.IsAdmin)
	})

	s.Run("bad credentials map to 401", func() {
		s.service.EXPECT().Login(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeUnauthorized, "Incorrect username or password"))

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/auth/login", domain.LoginRequest{Username: "x", Password: "y"}))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnauthorized, "unauthorized")
	})

	s.Run("rate limited maps to 429", func() {
		s.service.EXPECT().Login(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeRateLimited, "too many login attempts"))

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/auth/login", domain.LoginRequest{Username: "x", Password: "y"}))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusTooManyRequests, "rate_limited")
	})

	s.Run("malformed body is 400 without calling service", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequestWithBody(s.T(), http.MethodPost, "/api/auth/login", "{"))
		testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
	})
}

func (s *HandlerSuite) TestLogoutAndMe() {
	uid := domain.NewUserID()

	s.service.EXPECT().Logout(gomock.Any()).Return(nil)
	rr := testutil.DoRequest(s.router, testutil.WithUser(testutil.NewRequest(s.T(), http.MethodPost, "/api/auth/logout"), uid, "bob"))
	testutil.AssertJSONContains(s.T(), rr, "message", "Successfully logged out")

	s.service.EXPECT().Me(gomock.Any()).Return(&domain.User{ID: uid, Username: "bob", IsActive: true}, nil)
	rr = testutil.DoRequest(s.router, testutil.WithUser(testutil.NewRequest(s.T(), http.MethodGet, "/api/user/me"), uid, "bob"))
	testutil.AssertJSONContains(s.T(), rr, "username", "bob")
}
