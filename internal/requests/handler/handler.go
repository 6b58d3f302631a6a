package handler

//go:generate mockgen -source=handler.go -destination=mocks/requests-mocks.go -package=mocks Service

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"kafkaportal/pkg/domain"
	dErrors "kafkaportal/pkg/domain-errors"
	"kafkaportal/pkg/platform/httputil"
	"kafkaportal/pkg/requestcontext"
)

// Service is the request workflow as seen by HTTP.
type Service interface {
	Submit(ctx context.Context, body domain.SubmitRequestBody) (*domain.Request, error)
	ListOwn(ctx context.Context) ([]*domain.Request, error)
	Get(ctx context.Context, id domain.RequestID) (*domain.Request, error)
	ListAll(ctx context.Context, status *domain.RequestStatus) ([]*domain.Request, error)
	ListPending(ctx context.Context) ([]*domain.Request, error)
	Approve(ctx context.Context, id domain.RequestID, expectedVersion int) (*domain.Request, error)
	Reject(ctx context.Context, id domain.RequestID, reason string, expectedVersion int) (*domain.Request, error)
	UserTopics(ctx context.Context) ([]domain.Topic, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the caller-scoped routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/api/user/requests/topic", h.submit(domain.KindTopic))
	r.Post("/api/user/requests/acl", h.submit(domain.KindACL))
	r.Get("/api/user/requests", h.HandleListOwn)
	r.Get("/api/user/requests/", h.HandleListOwn)
	r.Get("/api/user/requests/{id}", h.HandleGet)
	r.Get("/api/user/topics", h.HandleUserTopics)
}

// RegisterAdmin mounts the decision routes. The router is expected to carry
// the admin guard.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/api/admin/requests", h.HandleListAll)
	r.Get("/api/admin/requests/pending", h.HandleListPending)
	r.Patch("/api/admin/requests/{id}/approve", h.HandleApprove)
	r.Patch("/api/admin/requests/{id}/reject", h.HandleReject)
}

func (h *Handler) submit(kind domain.RequestKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		requestID := requestcontext.RequestID(ctx)

		body, ok := httputil.DecodeAndPrepare[domain.SubmitRequestBody](w, r, h.logger, ctx, requestID)
		if !ok {
			return
		}
		if body.RequestType == "" {
			body.RequestType = kind
		} else if parsed, err := domain.ParseRequestKind(string(body.RequestType)); err != nil || parsed != kind {
			httputil.WriteError(w, dErrors.Newf(dErrors.CodeValidation, "request_type must be %s on this endpoint", kind))
			return
		} else {
			body.RequestType = parsed
		}

		req, err := h.service.Submit(ctx, *body)
		if err != nil {
			h.fail(ctx, w, "failed to submit request", err)
			return
		}
		writeRequest(w, http.StatusCreated, req)
	}
}

func (h *Handler) HandleListOwn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqs, err := h.service.ListOwn(ctx)
	if err != nil {
		h.fail(ctx, w, "failed to list requests", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, reqs)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParseRequestID(chi.URLParam(r, "id"))
	if err != nil {
		// Malformed ids cannot name an existing request.
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "Request not found"))
		return
	}
	req, err := h.service.Get(ctx, id)
	if err != nil {
		h.fail(ctx, w, "failed to get request", err)
		return
	}
	writeRequest(w, http.StatusOK, req)
}

func (h *Handler) HandleUserTopics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	topics, err := h.service.UserTopics(ctx)
	if err != nil {
		h.fail(ctx, w, "failed to list user topics", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, domain.TopicList{Topics: topics})
}

// HandleListAll handles GET /api/admin/requests[?status=...].
func (h *Handler) HandleListAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var status *domain.RequestStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		st, err := domain.ParseRequestStatus(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		status = &st
	}
	reqs, err := h.service.ListAll(ctx, status)
	if err != nil {
		h.fail(ctx, w, "failed to list all requests", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, reqs)
}

func (h *Handler) HandleListPending(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqs, err := h.service.ListPending(ctx)
	if err != nil {
		h.fail(ctx, w, "failed to list pending requests", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, reqs)
}

// HandleApprove handles PATCH /api/admin/requests/{id}/approve.
func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, version, ok := h.decisionTarget(w, r)
	if !ok {
		return
	}
	req, err := h.service.Approve(ctx, id, version)
	if err != nil {
		h.fail(ctx, w, "failed to approve request", err)
		return
	}
	writeRequest(w, http.StatusOK, req)
}

// HandleReject handles PATCH /api/admin/requests/{id}/reject.
func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, version, ok := h.decisionTarget(w, r)
	if !ok {
		return
	}
	body, ok := httputil.DecodeAndPrepare[domain.RejectBody](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	req, err := h.service.Reject(ctx, id, body.RejectionReason, version)
	if err != nil {
		h.fail(ctx, w, "failed to reject request", err)
		return
	}
	writeRequest(w, http.StatusOK, req)
}

func (h *Handler) decisionTarget(w http.ResponseWriter, r *http.Request) (domain.RequestID, int, bool) {
	id, err := domain.ParseRequestID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "Request not found"))
		return id, 0, false
	}
	version, err := parseIfMatch(r.Header.Get("If-Match"))
	if err != nil {
		httputil.WriteError(w, err)
		return id, 0, false
	}
	return id, version, true
}

// parseIfMatch reads the request version from an If-Match header. An absent
// header or "*" matches any version and yields zero.
func parseIfMatch(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "*" {
		return 0, nil
	}
	raw = strings.Trim(strings.TrimPrefix(raw, "W/"), `"`)
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return 0, dErrors.New(dErrors.CodeBadRequest, "If-Match must carry a request version")
	}
	return v, nil
}

// ETag renders the version validator for a request.
func ETag(version int) string {
	return `"` + strconv.Itoa(version) + `"`
}

func writeRequest(w http.ResponseWriter, status int, req *domain.Request) {
	w.Header().Set("ETag", ETag(req.Version))
	httputil.WriteJSON(w, status, req)
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	h.logger.WarnContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
	httputil.WriteError(w, err)
}
