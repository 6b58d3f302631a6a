package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"kafkaportal/internal/requests/handler/mocks"
	"kafkaportal/pkg/domain"
	dErrors "kafkaportal/pkg/domain-errors"
	"kafkaportal/pkg/testutil"
)

type HandlerSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	service *mocks.MockService
	router  http.Handler
	userID  domain.UserID
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.service = mocks.NewMockService(s.ctrl)
	h := New(s.service, slog.New(slog.NewTextHandler(io.Discard, nil)))
	r := chi.NewRouter()
	h.Register(r)
	h.RegisterAdmin(r)
	s.router = r
	s.userID = domain.NewUserID()
}

func (s *HandlerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *HandlerSuite) pending(version int) *domain.Request {
	return &domain.Request{
		ID:          domain.NewRequestID(),
		RequesterID: s.userID,
		Requester:   "alice",
		Payload:     &domain.TopicDetails{TopicName: "orders", Partitions: 3, ReplicationFactor: 1},
		Rationale:   "orders service needs its own topic",
		Status:      domain.StatusPending,
		CreatedAt:   time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC),
		Version:     version,
	}
}

func (s *HandlerSuite) TestSubmitFillsRequestTypeFromPath() {
	created := s.pending(1)
	s.service.EXPECT().Submit(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, body domain.SubmitRequestBody) (*domain.Request, error) {
			s.Equal(domain.KindTopic, body.RequestType)
			return created, nil
		})

	body := map[string]any{
		"details":   map[string]any{"topic_name": "orders", "partitions": 3, "replication_factor": 1},
		"rationale": "orders service needs its own topic",
	}
	req := testutil.WithUser(testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/user/requests/topic", body), s.userID, "alice")
	rr := testutil.DoRequest(s.router, req)

	testutil.AssertStatus(s.T(), rr, http.StatusCreated)
	s.Equal(`"1"`, rr.Header().Get("ETag"))
	testutil.AssertJSONContains(s.T(), rr, "status", "PENDING")
	testutil.AssertJSONContains(s.T(), rr, "request_type", "TOPIC")
}

func (s *HandlerSuite) TestSubmitRejectsMismatchedType() {
	body := map[string]any{
		"request_type": "ACL",
		"details":      map[string]any{"topic_name": "orders"},
		"rationale":    "orders service needs its own topic",
	}
	req := testutil.WithUser(testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/user/requests/topic", body), s.userID, "alice")
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatusAndError(s.T(), rr, http.StatusUnprocessableEntity, string(dErrors.CodeValidation))
}

func (s *HandlerSuite) TestSubmitMalformedBody() {
	req := testutil.WithUser(testutil.NewRequestWithBody(s.T(), http.MethodPost, "/api/user/requests/acl", "{not json"), s.userID, "alice")
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeBadRequest))
}

func (s *HandlerSuite) TestGet() {
	s.Run("malformed id is not found", func() {
		req := testutil.WithUser(testutil.NewRequest(s.T(), http.MethodGet, "/api/user/requests/not-a-uuid"), s.userID, "alice")
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, string(dErrors.CodeNotFound))
	})

	s.Run("service not found passes through", func() {
		id := domain.NewRequestID()
		s.service.EXPECT().Get(gomock.Any(), id).Return(nil, dErrors.New(dErrors.CodeNotFound, "Request not found"))
		req := testutil.WithUser(testutil.NewRequest(s.T(), http.MethodGet, "/api/user/requests/"+id.String()), s.userID, "alice")
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, string(dErrors.CodeNotFound))
		s.Equal("Request not found", testutil.UnmarshalErrorResponse(s.T(), rr).Detail)
	})

	s.Run("own request carries its version", func() {
		found := s.pending(3)
		s.service.EXPECT().Get(gomock.Any(), found.ID).Return(found, nil)
		req := testutil.WithUser(testutil.NewRequest(s.T(), http.MethodGet, "/api/user/requests/"+found.ID.String()), s.userID, "alice")
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusOK(s.T(), rr)
		s.Equal(`"3"`, rr.Header().Get("ETag"))
	})
}

func (s *HandlerSuite) TestListOwnWithTrailingSlash() {
	s.service.EXPECT().ListOwn(gomock.Any()).Return([]*domain.Request{s.pending(1)}, nil).Times(2)
	for _, path := range []string{"/api/user/requests", "/api/user/requests/"} {
		rr := testutil.DoRequest(s.router, testutil.WithUser(testutil.NewRequest(s.T(), http.MethodGet, path), s.userID, "alice"))
		testutil.AssertStatusOK(s.T(), rr)
		var got []json.RawMessage
		require.NoError(s.T(), json.Unmarshal(testutil.ReadBody(s.T(), rr), &got))
		s.Len(got, 1)
	}
}

func (s *HandlerSuite) TestListAllStatusFilter() {
	s.Run("valid status is forwarded", func() {
		s.service.EXPECT().ListAll(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ any, status *domain.RequestStatus) ([]*domain.Request, error) {
				require.NotNil(s.T(), status)
				s.Equal(domain.StatusRejected, *status)
				return []*domain.Request{}, nil
			})
		rr := testutil.DoRequest(s.router, testutil.WithAdmin(testutil.NewRequest(s.T(), http.MethodGet, "/api/admin/requests?status=rejected"), s.userID, "root"))
		testutil.AssertStatusOK(s.T(), rr)
	})

	s.Run("unknown status is a validation error", func() {
		rr := testutil.DoRequest(s.router, testutil.WithAdmin(testutil.NewRequest(s.T(), http.MethodGet, "/api/admin/requests?status=LOST"), s.userID, "root"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnprocessableEntity, string(dErrors.CodeValidation))
	})
}

func (s *HandlerSuite) TestApproveForwardsIfMatch() {
	target := s.pending(2)
	approved := s.pending(3)
	approved.ID = target.ID
	approved.Status = domain.StatusApproved

	s.service.EXPECT().Approve(gomock.Any(), target.ID, 2).Return(approved, nil)
	req := testutil.NewRequest(s.T(), http.MethodPatch, "/api/admin/requests/"+target.ID.String()+"/approve")
	req.Header.Set("If-Match", `"2"`)
	rr := testutil.DoRequest(s.router, testutil.WithAdmin(req, s.userID, "root"))

	testutil.AssertStatusOK(s.T(), rr)
	s.Equal(`"3"`, rr.Header().Get("ETag"))
	testutil.AssertJSONContains(s.T(), rr, "status", "APPROVED")
}

func (s *HandlerSuite) TestApproveConflict() {
	id := domain.NewRequestID()
	s.service.EXPECT().Approve(gomock.Any(), id, 0).Return(nil, dErrors.New(dErrors.CodeConflict, "request is already approved"))
	req := testutil.NewRequest(s.T(), http.MethodPatch, "/api/admin/requests/"+id.String()+"/approve")
	rr := testutil.DoRequest(s.router, testutil.WithAdmin(req, s.userID, "root"))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusConflict, string(dErrors.CodeConflict))
}

func (s *HandlerSuite) TestApproveBadIfMatch() {
	req := testutil.NewRequest(s.T(), http.MethodPatch, "/api/admin/requests/"+domain.NewRequestID().String()+"/approve")
	req.Header.Set("If-Match", "yesterday")
	rr := testutil.DoRequest(s.router, testutil.WithAdmin(req, s.userID, "root"))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeBadRequest))
}

func (s *HandlerSuite) TestRejectForwardsReason() {
	target := s.pending(1)
	rejected := s.pending(2)
	rejected.ID = target.ID
	rejected.Status = domain.StatusRejected
	rejected.RejectionReason = "budget cut"

	s.service.EXPECT().Reject(gomock.Any(), target.ID, "budget cut", 0).Return(rejected, nil)
	req := testutil.NewJSONRequest(s.T(), http.MethodPatch, "/api/admin/requests/"+target.ID.String()+"/reject", domain.RejectBody{RejectionReason: "budget cut"})
	rr := testutil.DoRequest(s.router, testutil.WithAdmin(req, s.userID, "root"))

	testutil.AssertStatusOK(s.T(), rr)
	testutil.AssertJSONContains(s.T(), rr, "rejection_reason", "budget cut")
}

func TestParseIfMatch(t *testing.T) {
	cases := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{raw: "", want: 0},
		{raw: "*", want: 0},
		{raw: `"4"`, want: 4},
		{raw: `W/"4"`, want: 4},
		{raw: "7", want: 7},
		{raw: `"0"`, wantErr: true},
		{raw: `"abc"`, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			got, err := parseIfMatch(tc.raw)
			if tc.wantErr {
				assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
