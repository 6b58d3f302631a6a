package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"kafkaportal/internal/audit"
	"kafkaportal/pkg/domain"
	"kafkaportal/pkg/requestcontext"
)

type HandlerSuite struct {
	suite.Suite
	router    http.Handler
	service   *audit.Service
	principal requestcontext.Principal
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.service = audit.NewService(audit.NewInMemoryStore())
	s.principal = requestcontext.Principal{UserID: domain.NewUserID(), Username: "root", IsAdmin: true}

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(requestcontext.WithPrincipal(r.Context(), s.principal)))
		})
	})
	New(s.service, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(r)
	s.router = r

	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	for i, action := range []domain.AuditAction{domain.AuditUserLogin, domain.AuditRequestCreated, domain.AuditRequestApproved} {
		ctx := requestcontext.WithTime(requestcontext.WithPrincipal(context.Background(), s.principal), base.AddDate(0, 0, i))
		s.Require().NoError(s.service.Record(ctx, domain.AuditEntry{Action: action, EntityType: domain.EntityRequest}))
	}
}

func (s *HandlerSuite) get(target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func (s *HandlerSuite) TestListAll() {
	rec := s.get("/api/audit/logs")
	require.Equal(s.T(), http.StatusOK, rec.Code)

	var entries []domain.AuditEntry
	require.NoError(s.T(), json.NewDecoder(rec.Body).Decode(&entries))
	require.Len(s.T(), entries, 3)
	assert.Equal(s.T(), domain.AuditRequestApproved, entries[0].Action)
}

func (s *HandlerSuite) TestFilters() {
	s.Run("action", func() {
		rec := s.get("/api/audit/logs?action=USER_LOGIN")
		var entries []domain.AuditEntry
		s.Require().NoError(json.NewDecoder(rec.Body).Decode(&entries))
		s.Len(entries, 1)
	})
	s.Run("date window", func() {
		rec := s.get("/api/audit/logs?start_date=2026-02-02&end_date=2026-02-02T23:59:59Z")
		var entries []domain.AuditEntry
		s.Require().NoError(json.NewDecoder(rec.Body).Decode(&entries))
		s.Require().Len(entries, 1)
		s.Equal(domain.AuditRequestCreated, entries[0].Action)
	})
	s.Run("limit", func() {
		rec := s.get("/api/audit/logs?limit=2")
		var entries []domain.AuditEntry
		s.Require().NoError(json.NewDecoder(rec.Body).Decode(&entries))
		s.Len(entries, 2)
	})
}

func (s *HandlerSuite) TestMalformedQuery() {
	for _, target := range []string{
		"/api/audit/logs?start_date=yesterday",
		"/api/audit/logs?limit=abc",
		"/api/audit/logs?limit=5000",
		"/api/audit/logs?user_id=nope",
		"/api/audit/logs?entity_type=BROKER",
	} {
		rec := s.get(target)
		s.Equal(http.StatusUnprocessableEntity, rec.Code, target)
	}
}
