package handler

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"kafkaportal/pkg/domain"
	dErrors "kafkaportal/pkg/domain-errors"
	"kafkaportal/pkg/platform/httputil"
	"kafkaportal/pkg/requestcontext"
)

// Service lists audit entries visible to the caller.
type Service interface {
	List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the audit query endpoint. The router is expected to carry
// authentication already.
func (h *Handler) Register(r chi.Router) {
	r.Get("/api/audit/logs", h.HandleList)
}

// HandleList handles GET /api/audit/logs.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	filter, err := parseFilter(r.URL.Query())
	if err != nil {
		h.logger.WarnContext(ctx, "invalid audit query",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	entries, err := h.service.List(ctx, filter)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list audit entries",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, entries)
}

func parseFilter(q url.Values) (domain.AuditFilter, error) {
	var filter domain.AuditFilter
	var err error

	if filter.Limit, err = intParam(q, "limit"); err != nil {
		return filter, err
	}
	if filter.Offset, err = intParam(q, "offset"); err != nil {
		return filter, err
	}
	filter.Action = domain.AuditAction(q.Get("action"))
	filter.EntityType = domain.EntityType(q.Get("entity_type"))

	if raw := q.Get("user_id"); raw != "" {
		uid, err := domain.ParseUserID(raw)
		if err != nil {
			return filter, dErrors.New(dErrors.CodeValidation, "user_id must be a UUID")
		}
		filter.ActorID = &uid
	}
	if filter.StartDate, err = timeParam(q, "start_date"); err != nil {
		return filter, err
	}
	if filter.EndDate, err = timeParam(q, "end_date"); err != nil {
		return filter, err
	}
	return filter, nil
}

func intParam(q url.Values, key string) (int, error) {
	raw := q.Get(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, dErrors.Newf(dErrors.CodeValidation, "%s must be an integer", key)
	}
	return n, nil
}

// timeParam accepts RFC 3339 timestamps or bare dates.
func timeParam(q url.Values, key string) (*time.Time, error) {
	raw := q.Get(key)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, dErrors.Newf(dErrors.CodeValidation, "%s must be an ISO-8601 date", key)
}
