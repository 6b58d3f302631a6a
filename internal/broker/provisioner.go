package broker

import (
	"context"
	"errors"
	"log/slog"

	"kafkaportal/internal/broker/metrics"
	"kafkaportal/pkg/domain"
	dErrors "kafkaportal/pkg/domain-errors"
	"kafkaportal/pkg/platform/sentinel"
	"kafkaportal/pkg/requestcontext"
)

// Provisioner applies an approved request to the cluster. It writes no audit
// entry of its own; the approval it is part of is the audited fact.
type Provisioner struct {
	admin   Admin
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewProvisioner(admin Admin, logger *slog.Logger, m *metrics.Metrics) *Provisioner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provisioner{admin: admin, logger: logger, metrics: m}
}

// Provision creates the topic or ALLOW binding described by payload. Both
// are idempotent: a topic that already exists counts as provisioned, so an
// approval retried after a failed commit can still complete. Every other
// failure is Unavailable.
func (p *Provisioner) Provision(ctx context.Context, payload domain.Payload) error {
	var err error
	switch d := payload.(type) {
	case *domain.TopicDetails:
		err = p.admin.CreateTopic(ctx, domain.TopicSpecFromDetails(d))
		if errors.Is(err, sentinel.ErrConflict) {
			p.logger.InfoContext(ctx, "topic already on the cluster, treating as provisioned",
				"topic", d.TopicName,
				"request_id", requestcontext.RequestID(ctx),
			)
			err = nil
		}
	case *domain.ACLDetails:
		err = p.admin.CreateACL(ctx, domain.ACLBindingFromDetails(d))
	default:
		return dErrors.Newf(dErrors.CodeInternal, "cannot provision payload of type %T", payload)
	}
	p.metrics.ObserveProvision(string(payload.Kind()), err)
	if err == nil {
		return nil
	}

	p.logger.WarnContext(ctx, "provisioning failed",
		"request_type", payload.Kind(),
		"error", err,
		"request_id", requestcontext.RequestID(ctx),
	)
	return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to provision on the Kafka cluster")
}
