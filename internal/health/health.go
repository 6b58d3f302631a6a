// Package health reports whether the portal's backing services answer.
package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"kafkaportal/pkg/domain"
	"kafkaportal/pkg/platform/httputil"
	"kafkaportal/pkg/requestcontext"
)

const (
	StatusHealthy  = "healthy"
	StatusDegraded = "degraded"

	Connected    = "connected"
	Disconnected = "disconnected"
	Memory       = "memory"

	probeTimeout = 2 * time.Second
)

// Probe checks one dependency. A nil Probe means the dependency runs in
// memory.
type Probe func(ctx context.Context) error

type Handler struct {
	database Probe
	redis    Probe
	kafka    Probe
	version  string
	logger   *slog.Logger
}

type Option func(*Handler)

func WithDatabase(p Probe) Option { return func(h *Handler) { h.database = p } }
func WithRedis(p Probe) Option    { return func(h *Handler) { h.redis = p } }
func WithKafka(p Probe) Option    { return func(h *Handler) { h.kafka = p } }

func New(version string, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{version: version, logger: logger}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/", h.HandleRoot)
	r.Get("/health", h.HandleHealth)
}

func (h *Handler) HandleRoot(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Kafka Admin Portal API",
		"version": h.version,
		"status":  StatusHealthy,
	})
}

// HandleHealth runs every probe concurrently. Any disconnected dependency
// turns the report degraded and the status code 503.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	report := h.Check(r.Context())
	status := http.StatusOK
	if report.Status != StatusHealthy {
		status = http.StatusServiceUnavailable
	}
	httputil.WriteJSON(w, status, report)
}

// Check probes the dependencies and summarises the result.
func (h *Handler) Check(ctx context.Context) domain.HealthStatus {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	report := domain.HealthStatus{Status: StatusHealthy}
	var g errgroup.Group
	probe := func(dst *string, name string, p Probe) {
		g.Go(func() error {
			*dst = h.run(ctx, name, p)
			return nil
		})
	}
	probe(&report.Database, "database", h.database)
	probe(&report.Redis, "redis", h.redis)
	probe(&report.Kafka, "kafka", h.kafka)
	_ = g.Wait()

	for _, s := range []string{report.Database, report.Redis, report.Kafka} {
		if s == Disconnected {
			report.Status = StatusDegraded
		}
	}
	return report
}

func (h *Handler) run(ctx context.Context, name string, p Probe) string {
	if p == nil {
		return Memory
	}
	if err := p(ctx); err != nil {
		h.logger.WarnContext(ctx, "health probe failed",
			"dependency", name,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return Disconnected
	}
	return Connected
}
