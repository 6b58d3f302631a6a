package handler

//go:generate mockgen -source=handler.go -destination=mocks/broker-mocks.go -package=mocks Service

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"kafkaportal/pkg/domain"
	"kafkaportal/pkg/platform/httputil"
	"kafkaportal/pkg/requestcontext"
)

// Service is the broker inventory as seen by HTTP.
type Service interface {
	ListTopics(ctx context.Context) ([]domain.Topic, error)
	TopicConfig(ctx context.Context, name string) (*domain.TopicConfig, error)
	ListACLs(ctx context.Context) ([]domain.ACLEntry, error)
	CreateTopic(ctx context.Context, spec domain.TopicSpec) (*domain.Topic, error)
	DeleteTopic(ctx context.Context, name string) error
	CreateACL(ctx context.Context, binding domain.ACLBinding) (*domain.ACLEntry, error)
	ClusterInfo(ctx context.Context) (*domain.ClusterInfo, error)
	TestConnection(ctx context.Context) *domain.ConnectionTest
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the read-only inventory for any authenticated caller.
func (h *Handler) Register(r chi.Router) {
	r.Get("/api/kafka/topics", h.HandleListTopics)
	r.Get("/api/kafka/topics/{name}/config", h.HandleTopicConfig)
	r.Get("/api/kafka/acls", h.HandleListACLs)
}

// RegisterAdmin mounts the mutations and cluster diagnostics. The router is
// expected to carry the admin guard.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/api/kafka/topics", h.HandleCreateTopic)
	r.Delete("/api/kafka/topics/{name}", h.HandleDeleteTopic)
	r.Post("/api/kafka/acls", h.HandleCreateACL)
	r.Get("/api/kafka/cluster/info", h.HandleClusterInfo)
	r.Get("/api/kafka/cluster/test", h.HandleTestConnection)
}

func (h *Handler) HandleListTopics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	topics, err := h.service.ListTopics(ctx)
	if err != nil {
		h.fail(ctx, w, "failed to list topics", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, domain.TopicList{Topics: topics})
}

// HandleTopicConfig writes the topic's configuration as a flat map.
func (h *Handler) HandleTopicConfig(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cfg, err := h.service.TopicConfig(ctx, chi.URLParam(r, "name"))
	if err != nil {
		h.fail(ctx, w, "failed to describe topic config", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, cfg.Configs)
}

func (h *Handler) HandleListACLs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	acls, err := h.service.ListACLs(ctx)
	if err != nil {
		h.fail(ctx, w, "failed to list acls", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, domain.ACLList{ACLs: acls})
}

// HandleCreateTopic handles POST /api/kafka/topics.
func (h *Handler) HandleCreateTopic(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	spec, ok := httputil.DecodeAndPrepare[domain.TopicSpec](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	topic, err := h.service.CreateTopic(ctx, *spec)
	if err != nil {
		h.fail(ctx, w, "failed to create topic", err)
		return
	}
	h.logger.InfoContext(ctx, "topic created",
		"request_id", requestID,
		"topic", topic.Name,
	)
	httputil.WriteJSON(w, http.StatusCreated, topic)
}

// HandleDeleteTopic handles DELETE /api/kafka/topics/{name}.
func (h *Handler) HandleDeleteTopic(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := chi.URLParam(r, "name")
	if err := h.service.DeleteTopic(ctx, name); err != nil {
		h.fail(ctx, w, "failed to delete topic", err)
		return
	}
	h.logger.InfoContext(ctx, "topic deleted",
		"request_id", requestcontext.RequestID(ctx),
		"topic", name,
	)
	w.WriteHeader(http.StatusNoContent)
}

// HandleCreateACL handles POST /api/kafka/acls.
func (h *Handler) HandleCreateACL(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	body, ok := httputil.DecodeAndPrepare[domain.CreateACLBody](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	entry, err := h.service.CreateACL(ctx, body.Binding())
	if err != nil {
		h.fail(ctx, w, "failed to create acl", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, entry)
}

func (h *Handler) HandleClusterInfo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	info, err := h.service.ClusterInfo(ctx)
	if err != nil {
		h.fail(ctx, w, "failed to get cluster info", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, info)
}

func (h *Handler) HandleTestConnection(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.service.TestConnection(r.Context()))
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	h.logger.WarnContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
	httputil.WriteError(w, err)
}
