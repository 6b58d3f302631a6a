// Package requests implements the two-role approval workflow: users submit
// topic and ACL requests, admins approve or reject each one exactly once.
package requests

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store,AuditRecorder,Provisioner,TopicLister

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"kafkaportal/internal/requests/metrics"
	"kafkaportal/pkg/domain"
	dErrors "kafkaportal/pkg/domain-errors"
	"kafkaportal/pkg/platform/sentinel"
	txcontext "kafkaportal/pkg/platform/tx"
	"kafkaportal/pkg/requestcontext"
)

var tracer = otel.Tracer("kafkaportal/internal/requests")

// Store persists requests. Execute runs fn with the request locked and
// persists the mutated copy only when fn returns nil; other stores reached
// from fn through its ctx join the same unit of work.
type Store interface {
	Create(ctx context.Context, req *domain.Request) error
	FindByID(ctx context.Context, id domain.RequestID) (*domain.Request, error)
	ListByRequester(ctx context.Context, userID domain.UserID) ([]*domain.Request, error)
	ListAll(ctx context.Context, statuses []domain.RequestStatus) ([]*domain.Request, error)
	Execute(ctx context.Context, id domain.RequestID, fn func(ctx context.Context, req *domain.Request) error) (*domain.Request, error)
}

type AuditRecorder interface {
	Record(ctx context.Context, entry domain.AuditEntry) error
}

// Provisioner creates the requested resource on the cluster.
type Provisioner interface {
	Provision(ctx context.Context, payload domain.Payload) error
}

// TopicLister reads the cluster's topics.
type TopicLister interface {
	ListTopics(ctx context.Context) ([]domain.Topic, error)
}

type Service struct {
	store       Store
	audit       AuditRecorder
	topics      TopicLister
	provisioner Provisioner
	tx          txcontext.Runner
	logger      *slog.Logger
	metrics     *metrics.Metrics
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

// WithProvisioner applies approved requests to the cluster. Without it,
// approval only records the decision.
func WithProvisioner(p Provisioner) Option {
	return func(s *Service) {
		s.provisioner = p
	}
}

// WithTx makes submission and its audit entry one unit of work.
func WithTx(r txcontext.Runner) Option {
	return func(s *Service) {
		s.tx = r
	}
}

func New(store Store, audit AuditRecorder, topics TopicLister, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("request store is required")
	}
	if audit == nil {
		return nil, errors.New("audit recorder is required")
	}
	if topics == nil {
		return nil, errors.New("topic lister is required")
	}
	s := &Service{
		store:  store,
		audit:  audit,
		topics: topics,
		tx:     txcontext.NopRunner{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Submit creates a PENDING request for the caller and records REQUEST_CREATED.
func (s *Service) Submit(ctx context.Context, body domain.SubmitRequestBody) (_ *domain.Request, err error) {
	ctx, span := tracer.Start(ctx, "requests.Submit", trace.WithAttributes(attribute.String("request_type", string(body.RequestType))))
	defer func() { endSpan(span, err) }()

	p, err := requirePrincipal(ctx)
	if err != nil {
		return nil, err
	}
	kind, err := domain.ParseRequestKind(string(body.RequestType))
	if err != nil {
		return nil, err
	}
	payload, err := domain.DecodePayload(kind, body.Details)
	if err != nil {
		return nil, err
	}
	req, err := domain.NewRequest(domain.NewRequestID(), p.UserID, p.Username, payload, body.Rationale, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.store.Create(ctx, req); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save request")
		}
		return s.audit.Record(ctx, domain.AuditEntry{
			Action:     domain.AuditRequestCreated,
			EntityType: domain.EntityRequest,
			EntityID:   req.ID.String(),
			Changes: map[string]any{
				"request_type": req.Kind(),
				"status":       req.Status,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncrementSubmitted(string(kind))
	s.logger.InfoContext(ctx, "request submitted",
		"request_id", requestcontext.RequestID(ctx),
		"portal_request_id", req.ID,
		"request_type", kind,
		"user_id", p.UserID,
	)
	return req, nil
}

// ListOwn returns the caller's requests, newest first.
func (s *Service) ListOwn(ctx context.Context) ([]*domain.Request, error) {
	p, err := requirePrincipal(ctx)
	if err != nil {
		return nil, err
	}
	reqs, err := s.store.ListByRequester(ctx, p.UserID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list requests")
	}
	return reqs, nil
}

// Get returns one of the caller's requests. Requests of other users are
// reported as not found.
func (s *Service) Get(ctx context.Context, id domain.RequestID) (*domain.Request, error) {
	p, err := requirePrincipal(ctx)
	if err != nil {
		return nil, err
	}
	req, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, translateStoreErr(err)
	}
	if req.RequesterID != p.UserID {
		return nil, errRequestNotFound
	}
	return req, nil
}

// ListAll returns every request, optionally restricted to one status.
func (s *Service) ListAll(ctx context.Context, status *domain.RequestStatus) ([]*domain.Request, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	var statuses []domain.RequestStatus
	if status != nil {
		statuses = []domain.RequestStatus{*status}
	}
	reqs, err := s.store.ListAll(ctx, statuses)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list requests")
	}
	return reqs, nil
}

func (s *Service) ListPending(ctx context.Context) ([]*domain.Request, error) {
	pending := domain.StatusPending
	return s.ListAll(ctx, &pending)
}

// Approve decides a PENDING request. expectedVersion of zero skips the
// optimistic check. When a provisioner is configured the resource is created
// first; a provisioning failure leaves the request PENDING.
func (s *Service) Approve(ctx context.Context, id domain.RequestID, expectedVersion int) (_ *domain.Request, err error) {
	ctx, span := tracer.Start(ctx, "requests.Approve", trace.WithAttributes(attribute.String("portal_request_id", id.String())))
	defer func() { endSpan(span, err) }()

	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	admin := requestcontext.UserID(ctx)
	now := requestcontext.Now(ctx)

	req, err := s.store.Execute(ctx, id, func(ctx context.Context, req *domain.Request) error {
		if err := req.CanApprove(); err != nil {
			return err
		}
		if err := req.CheckVersion(expectedVersion); err != nil {
			return err
		}
		if s.provisioner != nil {
			if err := s.provisioner.Provision(ctx, req.Payload); err != nil {
				return err
			}
			span.AddEvent("provisioned")
		}
		req.ApplyApproval(admin, now)
		return s.audit.Record(ctx, domain.AuditEntry{
			Action:     domain.AuditRequestApproved,
			EntityType: domain.EntityRequest,
			EntityID:   req.ID.String(),
			Changes: map[string]any{
				"status":       map[string]any{"old": domain.StatusPending, "new": domain.StatusApproved},
				"request_type": req.Kind(),
				"provisioned":  s.provisioner != nil,
			},
		})
	})
	if err != nil {
		s.logger.WarnContext(ctx, "approve failed",
			"request_id", requestcontext.RequestID(ctx),
			"portal_request_id", id,
			"error", err,
		)
		return nil, translateStoreErr(err)
	}

	s.metrics.ObserveDecision("approved", now.Sub(req.CreatedAt))
	s.logger.InfoContext(ctx, "request approved",
		"request_id", requestcontext.RequestID(ctx),
		"portal_request_id", req.ID,
		"admin_user_id", admin,
	)
	return req, nil
}

// Reject decides a PENDING request with a mandatory reason.
func (s *Service) Reject(ctx context.Context, id domain.RequestID, reason string, expectedVersion int) (_ *domain.Request, err error) {
	ctx, span := tracer.Start(ctx, "requests.Reject", trace.WithAttributes(attribute.String("portal_request_id", id.String())))
	defer func() { endSpan(span, err) }()

	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	if err := domain.ValidateRejectionReason(reason); err != nil {
		return nil, err
	}
	admin := requestcontext.UserID(ctx)
	now := requestcontext.Now(ctx)

	req, err := s.store.Execute(ctx, id, func(ctx context.Context, req *domain.Request) error {
		if err := req.CanReject(reason); err != nil {
			return err
		}
		if err := req.CheckVersion(expectedVersion); err != nil {
			return err
		}
		req.ApplyRejection(admin, reason, now)
		return s.audit.Record(ctx, domain.AuditEntry{
			Action:     domain.AuditRequestRejected,
			EntityType: domain.EntityRequest,
			EntityID:   req.ID.String(),
			Changes: map[string]any{
				"status":           map[string]any{"old": domain.StatusPending, "new": domain.StatusRejected},
				"rejection_reason": req.RejectionReason,
			},
		})
	})
	if err != nil {
		s.logger.WarnContext(ctx, "reject failed",
			"request_id", requestcontext.RequestID(ctx),
			"portal_request_id", id,
			"error", err,
		)
		return nil, translateStoreErr(err)
	}

	s.metrics.ObserveDecision("rejected", now.Sub(req.CreatedAt))
	s.logger.InfoContext(ctx, "request rejected",
		"request_id", requestcontext.RequestID(ctx),
		"portal_request_id", req.ID,
		"admin_user_id", admin,
	)
	return req, nil
}

// UserTopics returns the cluster topics the caller's APPROVED requests name:
// topics they asked to create and topics they were granted an ACL on.
func (s *Service) UserTopics(ctx context.Context) ([]domain.Topic, error) {
	p, err := requirePrincipal(ctx)
	if err != nil {
		return nil, err
	}

	var (
		reqs   []*domain.Request
		topics []domain.Topic
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		reqs, err = s.store.ListByRequester(gctx, p.UserID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to list requests")
		}
		return nil
	})
	g.Go(func() error {
		var err error
		topics, err = s.topics.ListTopics(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	names := approvedTopicNames(reqs)
	out := []domain.Topic{}
	for _, t := range topics {
		if _, ok := names[t.Name]; ok {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func approvedTopicNames(reqs []*domain.Request) map[string]struct{} {
	names := make(map[string]struct{})
	for _, r := range reqs {
		if r.Status != domain.StatusApproved {
			continue
		}
		switch d := r.Payload.(type) {
		case *domain.TopicDetails:
			names[d.TopicName] = struct{}{}
		case *domain.ACLDetails:
			if d.ResourceType == domain.ResourceTopic {
				names[d.ResourceName] = struct{}{}
			}
		}
	}
	return names
}

var errRequestNotFound = dErrors.New(dErrors.CodeNotFound, "Request not found")

func translateStoreErr(err error) error {
	var de *dErrors.Error
	switch {
	case errors.As(err, &de):
		return err
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Wrap(err, dErrors.CodeNotFound, "Request not found")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "request store failure")
	}
}

func requirePrincipal(ctx context.Context) (requestcontext.Principal, error) {
	p, ok := requestcontext.PrincipalFrom(ctx)
	if !ok || p.UserID.IsNil() {
		return p, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	return p, nil
}

func requireAdmin(ctx context.Context) error {
	p, err := requirePrincipal(ctx)
	if err != nil {
		return err
	}
	if !p.IsAdmin {
		return dErrors.New(dErrors.CodeForbidden, "Admin privileges required")
	}
	return nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
