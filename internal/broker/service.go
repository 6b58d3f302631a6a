package broker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"kafkaportal/internal/broker/metrics"
	"kafkaportal/pkg/domain"
	dErrors "kafkaportal/pkg/domain-errors"
	"kafkaportal/pkg/platform/sentinel"
	"kafkaportal/pkg/requestcontext"
)

// AuditRecorder writes one entry per admin mutation.
type AuditRecorder interface {
	Record(ctx context.Context, entry domain.AuditEntry) error
}

// Service is the broker inventory: read-only views for every authenticated
// user plus the admin topic and ACL mutations.
type Service struct {
	admin   Admin
	audit   AuditRecorder
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

func NewService(admin Admin, audit AuditRecorder, opts ...Option) (*Service, error) {
	if admin == nil {
		return nil, errors.New("broker admin is required")
	}
	if audit == nil {
		return nil, errors.New("audit recorder is required")
	}
	s := &Service{admin: admin, audit: audit, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Service) ListTopics(ctx context.Context) ([]domain.Topic, error) {
	topics, err := s.admin.ListTopics(ctx)
	s.metrics.ObserveOperation("list_topics", err)
	if err != nil {
		return nil, s.translate(ctx, err, "list topics")
	}
	return topics, nil
}

func (s *Service) TopicConfig(ctx context.Context, name string) (*domain.TopicConfig, error) {
	if err := domain.ValidateTopicName(name); err != nil {
		return nil, err
	}
	cfg, err := s.admin.DescribeTopicConfig(ctx, name)
	s.metrics.ObserveOperation("describe_topic_config", err)
	if err != nil {
		return nil, s.translate(ctx, err, fmt.Sprintf("Topic '%s'", name))
	}
	return cfg, nil
}

func (s *Service) ListACLs(ctx context.Context) ([]domain.ACLEntry, error) {
	acls, err := s.admin.ListACLs(ctx)
	s.metrics.ObserveOperation("list_acls", err)
	if err != nil {
		return nil, s.translate(ctx, err, "list ACLs")
	}
	return acls, nil
}

// CreateTopic creates the topic and records TOPIC_CREATED.
func (s *Service) CreateTopic(ctx context.Context, spec domain.TopicSpec) (*domain.Topic, error) {
	spec.Normalize()
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	err := s.admin.CreateTopic(ctx, spec)
	s.metrics.ObserveOperation("create_topic", err)
	if err != nil {
		return nil, s.translate(ctx, err, fmt.Sprintf("Topic '%s'", spec.Name))
	}

	s.recordMutation(ctx, domain.AuditEntry{
		Action:     domain.AuditTopicCreated,
		EntityType: domain.EntityTopic,
		EntityID:   spec.Name,
		Changes: map[string]any{
			"partitions":         spec.Partitions,
			"replication_factor": spec.ReplicationFactor,
		},
	})
	return &domain.Topic{
		Name:              spec.Name,
		Partitions:        spec.Partitions,
		ReplicationFactor: spec.ReplicationFactor,
		Configs:           spec.Configs,
	}, nil
}

// DeleteTopic deletes the topic and records TOPIC_DELETED.
func (s *Service) DeleteTopic(ctx context.Context, name string) error {
	if err := domain.ValidateTopicName(name); err != nil {
		return err
	}
	err := s.admin.DeleteTopic(ctx, name)
	s.metrics.ObserveOperation("delete_topic", err)
	if err != nil {
		return s.translate(ctx, err, fmt.Sprintf("Topic '%s'", name))
	}
	s.recordMutation(ctx, domain.AuditEntry{
		Action:     domain.AuditTopicDeleted,
		EntityType: domain.EntityTopic,
		EntityID:   name,
	})
	return nil
}

// CreateACL creates the binding and records ACL_CREATED.
func (s *Service) CreateACL(ctx context.Context, binding domain.ACLBinding) (*domain.ACLEntry, error) {
	err := s.admin.CreateACL(ctx, binding)
	s.metrics.ObserveOperation("create_acl", err)
	if err != nil {
		return nil, s.translate(ctx, err, "ACL")
	}
	entry := domain.NewACLEntry(binding)
	s.recordMutation(ctx, domain.AuditEntry{
		Action:     domain.AuditACLCreated,
		EntityType: domain.EntityACL,
		EntityID:   entry.ID,
		Changes: map[string]any{
			"principal":     binding.Principal,
			"resource_type": binding.ResourceType,
			"resource_name": binding.ResourceName,
			"operation":     binding.Operation,
			"permission":    binding.Permission,
		},
	})
	return &entry, nil
}

func (s *Service) ClusterInfo(ctx context.Context) (*domain.ClusterInfo, error) {
	info, err := s.admin.ClusterInfo(ctx)
	s.metrics.ObserveOperation("cluster_info", err)
	if err != nil {
		return nil, s.translate(ctx, err, "cluster info")
	}
	return info, nil
}

// TestConnection probes the cluster. Failure is reported in the result, not
// as an error, so the caller always gets the bootstrap list back.
func (s *Service) TestConnection(ctx context.Context) *domain.ConnectionTest {
	result := &domain.ConnectionTest{BootstrapServers: s.admin.BootstrapServers()}

	err := s.admin.Ping(ctx)
	var topics []domain.Topic
	if err == nil {
		topics, err = s.admin.ListTopics(ctx)
	}
	s.metrics.ObserveOperation("test_connection", err)
	if err != nil {
		s.logger.WarnContext(ctx, "kafka connection test failed",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		result.Message = "Failed to connect to Kafka cluster: " + err.Error()
		return result
	}
	result.Success = true
	result.Message = "Successfully connected to Kafka cluster"
	result.TopicsCount = len(topics)
	return result
}

// recordMutation logs instead of failing: the broker change has already
// happened and cannot be rolled back.
func (s *Service) recordMutation(ctx context.Context, entry domain.AuditEntry) {
	if err := s.audit.Record(ctx, entry); err != nil {
		s.logger.ErrorContext(ctx, "failed to record broker audit entry",
			"action", entry.Action,
			"entity_id", entry.EntityID,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
}

func (s *Service) translate(ctx context.Context, err error, subject string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Wrap(err, dErrors.CodeNotFound, subject+" not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.Wrap(err, dErrors.CodeConflict, subject+" already exists")
	case errors.Is(err, sentinel.ErrInvalidState):
		return dErrors.Wrap(err, dErrors.CodeValidation, "Kafka rejected the request: "+err.Error())
	default:
		s.logger.ErrorContext(ctx, "kafka admin call failed",
			"subject", subject,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "Kafka cluster unavailable")
	}
}
