package audit

import (
	"context"
	"log/slog"

	"kafkaportal/internal/audit/metrics"
	"kafkaportal/pkg/domain"
	dErrors "kafkaportal/pkg/domain-errors"
	"kafkaportal/pkg/requestcontext"
)

// Store persists audit entries. Append joins the transaction carried in ctx
// when there is one, so an entry commits or rolls back with the change it
// describes.
type Store interface {
	Append(ctx context.Context, entry domain.AuditEntry) error
	List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, error)
}

// Service records and queries audit entries. The store is the source of
// truth; an optional outbound queue mirrors entries to Kafka.
type Service struct {
	store   Store
	outbox  chan<- domain.AuditEntry
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithOutbox mirrors every recorded entry onto ch without blocking; a full
// channel drops the mirror copy, never the stored entry.
func WithOutbox(ch chan<- domain.AuditEntry) Option {
	return func(s *Service) {
		s.outbox = ch
	}
}

func NewService(store Store, opts ...Option) *Service {
	s := &Service{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Record fills actor, time, id and client IP from ctx where unset and appends
// the entry.
func (s *Service) Record(ctx context.Context, entry domain.AuditEntry) error {
	if (entry.ID == domain.AuditEntryID{}) {
		entry.ID = domain.NewAuditEntryID()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = requestcontext.Now(ctx).UTC()
	}
	if entry.IPAddress == "" {
		entry.IPAddress = requestcontext.ClientIP(ctx)
	}
	if p, ok := requestcontext.PrincipalFrom(ctx); ok {
		if entry.ActorID.IsNil() {
			entry.ActorID = p.UserID
		}
		if entry.Actor == "" {
			entry.Actor = p.Username
		}
	}
	if entry.ActorID.IsNil() {
		return dErrors.New(dErrors.CodeInvariantViolation, "audit entry requires an actor")
	}

	if err := s.store.Append(ctx, entry); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record audit entry")
	}
	s.metrics.IncrementRecorded(string(entry.Action))
	s.logger.InfoContext(ctx, string(entry.Action),
		"log_type", "audit",
		"user_id", entry.ActorID,
		"entity_type", entry.EntityType,
		"entity_id", entry.EntityID,
		"request_id", requestcontext.RequestID(ctx),
	)

	if s.outbox != nil {
		select {
		case s.outbox <- entry:
		default:
			s.metrics.IncrementDropped()
			s.logger.WarnContext(ctx, "audit outbox full, kafka mirror skipped",
				"audit_id", entry.ID,
				"request_id", requestcontext.RequestID(ctx),
			)
		}
	}
	return nil
}

// List returns a page of entries, newest first. Non-admin callers only ever
// see entries they are the actor of.
func (s *Service) List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, error) {
	filter.Normalize()
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	p, ok := requestcontext.PrincipalFrom(ctx)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	if !p.IsAdmin {
		self := p.UserID
		filter.ActorID = &self
	}
	entries, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list audit entries")
	}
	return entries, nil
}
