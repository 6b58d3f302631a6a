package handler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"kafkaportal/internal/audit"
	"kafkaportal/internal/broker"
	"kafkaportal/internal/broker/handler/mocks"
	"kafkaportal/pkg/domain"
	dErrors "kafkaportal/pkg/domain-errors"
	"kafkaportal/pkg/platform/sentinel"
	"kafkaportal/pkg/testutil"
)

type HandlerSuite struct {
	suite.Suite
	admin      *broker.InMemoryAdmin
	auditStore *audit.InMemoryStore
	router     http.Handler
	adminID    domain.UserID
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.admin = broker.NewInMemoryAdmin()
	s.auditStore = audit.NewInMemoryStore()
	svc, err := broker.NewService(s.admin, audit.NewService(s.auditStore), broker.WithLogger(logger))
	s.Require().NoError(err)

	h := New(svc, logger)
	r := chi.NewRouter()
	h.Register(r)
	h.RegisterAdmin(r)
	s.router = r
	s.adminID = domain.NewUserID()
}

func (s *HandlerSuite) do(req *http.Request) *http.Response {
	rr := testutil.DoRequest(s.router, testutil.WithAdmin(req, s.adminID, "root"))
	return rr.Result()
}

func (s *HandlerSuite) TestTopicLifecycle() {
	spec := domain.TopicSpec{Name: "orders", Partitions: 3, ReplicationFactor: 1}

	rr := testutil.DoRequest(s.router, testutil.WithAdmin(testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/kafka/topics", spec), s.adminID, "root"))
	testutil.AssertStatus(s.T(), rr, http.StatusCreated)

	rr = testutil.DoRequest(s.router, testutil.WithAdmin(testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/kafka/topics", spec), s.adminID, "root"))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusConflict, string(dErrors.CodeConflict))

	rr = testutil.DoRequest(s.router, testutil.WithAdmin(testutil.NewRequest(s.T(), http.MethodGet, "/api/kafka/topics"), s.adminID, "root"))
	testutil.AssertStatusOK(s.T(), rr)
	list := testutil.UnmarshalResponse[domain.TopicList](s.T(), rr)
	s.Require().Len(list.Topics, 1)
	s.Equal("orders", list.Topics[0].Name)

	rr = testutil.DoRequest(s.router, testutil.WithAdmin(testutil.NewRequest(s.T(), http.MethodGet, "/api/kafka/topics/orders/config"), s.adminID, "root"))
	testutil.AssertStatusOK(s.T(), rr)
	cfg := testutil.UnmarshalResponse[map[string]string](s.T(), rr)
	s.Equal("delete", (*cfg)["cleanup.policy"])

	resp := s.do(testutil.NewRequest(s.T(), http.MethodDelete, "/api/kafka/topics/orders"))
	s.Equal(http.StatusNoContent, resp.StatusCode)

	rr = testutil.DoRequest(s.router, testutil.WithAdmin(testutil.NewRequest(s.T(), http.MethodDelete, "/api/kafka/topics/orders"), s.adminID, "root"))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, string(dErrors.CodeNotFound))

	entries, err := s.auditStore.List(context.Background(), domain.AuditFilter{Limit: 10})
	s.Require().NoError(err)
	s.Len(entries, 2)
}

func (s *HandlerSuite) TestCreateTopicValidation() {
	for _, body := range []domain.TopicSpec{
		{Name: "", Partitions: 1, ReplicationFactor: 1},
		{Name: "ok", Partitions: 0, ReplicationFactor: 1},
		{Name: "ok", Partitions: 1, ReplicationFactor: 4},
	} {
		rr := testutil.DoRequest(s.router, testutil.WithAdmin(testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/kafka/topics", body), s.adminID, "root"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnprocessableEntity, string(dErrors.CodeValidation))
	}
}

func (s *HandlerSuite) TestCreateACL() {
	body := map[string]any{
		"principal":     "svc-billing",
		"resource_type": "topic",
		"resource_name": "invoices",
		"operation":     "read",
	}
	rr := testutil.DoRequest(s.router, testutil.WithAdmin(testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/kafka/acls", body), s.adminID, "root"))
	testutil.AssertStatus(s.T(), rr, http.StatusCreated)
	entry := testutil.UnmarshalResponse[domain.ACLEntry](s.T(), rr)
	s.Equal("User:svc-billing", entry.Principal)
	s.Equal(domain.AnyHost, entry.Host)

	body["permission"] = "MAYBE"
	rr = testutil.DoRequest(s.router, testutil.WithAdmin(testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/kafka/acls", body), s.adminID, "root"))
	testutil.AssertStatus(s.T(), rr, http.StatusUnprocessableEntity)

	rr = testutil.DoRequest(s.router, testutil.WithAdmin(testutil.NewRequest(s.T(), http.MethodGet, "/api/kafka/acls"), s.adminID, "root"))
	acls := testutil.UnmarshalResponse[domain.ACLList](s.T(), rr)
	s.Len(acls.ACLs, 1)
}

func (s *HandlerSuite) TestClusterEndpoints() {
	rr := testutil.DoRequest(s.router, testutil.WithAdmin(testutil.NewRequest(s.T(), http.MethodGet, "/api/kafka/cluster/info"), s.adminID, "root"))
	testutil.AssertStatusOK(s.T(), rr)
	info := testutil.UnmarshalResponse[domain.ClusterInfo](s.T(), rr)
	s.Equal("in-memory", info.ClusterID)
	s.Len(info.Brokers, 1)

	rr = testutil.DoRequest(s.router, testutil.WithAdmin(testutil.NewRequest(s.T(), http.MethodGet, "/api/kafka/cluster/test"), s.adminID, "root"))
	testutil.AssertStatusOK(s.T(), rr)
	testutil.AssertJSONContains(s.T(), rr, "success", true)
}

// MockServiceSuite covers error mapping the in-memory cluster cannot produce.
type MockServiceSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	service *mocks.MockService
	router  http.Handler
}

func TestMockServiceSuite(t *testing.T) {
	suite.Run(t, new(MockServiceSuite))
}

func (s *MockServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.service = mocks.NewMockService(s.ctrl)
	r := chi.NewRouter()
	New(s.service, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(r)
	s.router = r
}

func (s *MockServiceSuite) TestBrokerDownIs502() {
	s.service.EXPECT().ListTopics(gomock.Any()).
		Return(nil, dErrors.Wrap(fmt.Errorf("%w: eof", sentinel.ErrUnavailable), dErrors.CodeUnavailable, "Kafka cluster unavailable"))

	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/api/kafka/topics"))
	testutil.AssertStatus(s.T(), rr, http.StatusBadGateway)
	testutil.AssertJSONContains(s.T(), rr, "detail", "Kafka cluster unavailable")
}

func (s *MockServiceSuite) TestInternalErrorIsGeneric() {
	s.service.EXPECT().ListACLs(gomock.Any()).Return(nil, fmt.Errorf("boom at 0xdeadbeef"))

	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/api/kafka/acls"))
	testutil.AssertStatus(s.T(), rr, http.StatusInternalServerError)
	testutil.AssertJSONContains(s.T(), rr, "detail", "internal server error")
}

func (s *HandlerSuite) TestCreateTopicAppliesConfig() {
	body := `{"name":"orders","partitions":3,"replication_factor":1,"config":{"retention.ms":"1000"}}`
	rr := testutil.DoRequest(s.router, testutil.WithAdmin(testutil.NewRequestWithBody(s.T(), http.MethodPost, "/api/kafka/topics", body), s.adminID, "root"))
	testutil.AssertStatus(s.T(), rr, http.StatusCreated)

	rr = testutil.DoRequest(s.router, testutil.WithAdmin(testutil.NewRequest(s.T(), http.MethodGet, "/api/kafka/topics/orders/config"), s.adminID, "root"))
	testutil.AssertStatusOK(s.T(), rr)
	testutil.AssertJSONContains(s.T(), rr, "retention.ms", "1000")
}
