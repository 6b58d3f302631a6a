package broker

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/pkg/kmsg"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"kafkaportal/pkg/domain"
	"kafkaportal/pkg/platform/sentinel"
)

var tracer = otel.Tracer("kafkaportal/internal/broker")

// KadmAdmin implements Admin against a live cluster.
type KadmAdmin struct {
	client    *kgo.Client
	adm       *kadm.Client
	bootstrap []string
}

// NewKadmAdmin wraps an already connected client. bootstrap is reported back
// verbatim by ClusterInfo and the connection test.
func NewKadmAdmin(client *kgo.Client, bootstrap []string) *KadmAdmin {
	return &KadmAdmin{client: client, adm: kadm.NewClient(client), bootstrap: bootstrap}
}

func (a *KadmAdmin) BootstrapServers() []string {
	return append([]string(nil), a.bootstrap...)
}

func (a *KadmAdmin) Ping(ctx context.Context) (err error) {
	ctx, span := tracer.Start(ctx, "broker.Ping")
	defer func() { endSpan(span, err) }()

	if err := a.client.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %w", sentinel.ErrUnavailable, err)
	}
	return nil
}

func (a *KadmAdmin) ListTopics(ctx context.Context) (_ []domain.Topic, err error) {
	ctx, span := tracer.Start(ctx, "broker.ListTopics")
	defer func() { endSpan(span, err) }()

	details, err := a.adm.ListTopicsWithInternal(ctx)
	if err != nil {
		return nil, mapKafkaError(err)
	}
	topics := make([]domain.Topic, 0, len(details))
	for _, d := range details.Sorted() {
		if d.Err != nil {
			continue
		}
		topics = append(topics, topicFromDetail(d))
	}
	span.SetAttributes(attribute.Int("topics.count", len(topics)))
	return topics, nil
}

func topicFromDetail(d kadm.TopicDetail) domain.Topic {
	t := domain.Topic{Name: d.Topic, Partitions: len(d.Partitions), IsInternal: d.IsInternal}
	for _, p := range d.Partitions {
		if rf := len(p.Replicas); rf > t.ReplicationFactor {
			t.ReplicationFactor = rf
		}
	}
	return t
}

func (a *KadmAdmin) DescribeTopicConfig(ctx context.Context, name string) (_ *domain.TopicConfig, err error) {
	ctx, span := tracer.Start(ctx, "broker.DescribeTopicConfig", trace.WithAttributes(attribute.String("topic", name)))
	defer func() { endSpan(span, err) }()

	resources, err := a.adm.DescribeTopicConfigs(ctx, name)
	if err != nil {
		return nil, mapKafkaError(err)
	}
	for _, rc := range resources {
		if rc.Name != name {
			continue
		}
		if rc.Err != nil {
			return nil, mapKafkaError(rc.Err)
		}
		cfg := &domain.TopicConfig{Topic: name, Configs: make(map[string]string, len(rc.Configs))}
		for _, c := range rc.Configs {
			if c.Value != nil {
				cfg.Configs[c.Key] = *c.Value
			} else {
				cfg.Configs[c.Key] = ""
			}
		}
		return cfg, nil
	}
	return nil, fmt.Errorf("topic %q: %w", name, sentinel.ErrNotFound)
}

func (a *KadmAdmin) CreateTopic(ctx context.Context, spec domain.TopicSpec) (err error) {
	ctx, span := tracer.Start(ctx, "broker.CreateTopic", trace.WithAttributes(
		attribute.String("topic", spec.Name),
		attribute.Int("partitions", spec.Partitions),
		attribute.Int("replication_factor", spec.ReplicationFactor),
	))
	defer func() { endSpan(span, err) }()

	var configs map[string]*string
	if len(spec.Configs) > 0 {
		configs = make(map[string]*string, len(spec.Configs))
		for k, v := range spec.Configs {
			configs[k] = kadm.StringPtr(v)
		}
	}
	resp, err := a.adm.CreateTopic(ctx, int32(spec.Partitions), int16(spec.ReplicationFactor), configs, spec.Name)
	if err != nil {
		return mapKafkaError(err)
	}
	if resp.Err != nil {
		return mapKafkaError(resp.Err)
	}
	return nil
}

func (a *KadmAdmin) DeleteTopic(ctx context.Context, name string) (err error) {
	ctx, span := tracer.Start(ctx, "broker.DeleteTopic", trace.WithAttributes(attribute.String("topic", name)))
	defer func() { endSpan(span, err) }()

	resps, err := a.adm.DeleteTopics(ctx, name)
	if err != nil {
		return mapKafkaError(err)
	}
	if resp, ok := resps[name]; ok && resp.Err != nil {
		return mapKafkaError(resp.Err)
	}
	return nil
}

func (a *KadmAdmin) ListACLs(ctx context.Context) (_ []domain.ACLEntry, err error) {
	ctx, span := tracer.Start(ctx, "broker.ListACLs")
	defer func() { endSpan(span, err) }()

	filter := kadm.NewACLs().
		AnyResource().
		Allow().AllowHosts().
		Deny().DenyHosts().
		Operations(kadm.OpAny).
		ResourcePatternType(kadm.ACLPatternAny)
	results, err := a.adm.DescribeACLs(ctx, filter)
	if err != nil {
		if errors.Is(err, kerr.SecurityDisabled) {
			return []domain.ACLEntry{}, nil
		}
		return nil, mapKafkaError(err)
	}

	seen := make(map[string]struct{})
	entries := []domain.ACLEntry{}
	for _, res := range results {
		if res.Err != nil {
			// Clusters without an authorizer have no ACLs to list.
			if errors.Is(res.Err, kerr.SecurityDisabled) {
				continue
			}
			return nil, mapKafkaError(res.Err)
		}
		for _, d := range res.Described {
			entry := domain.NewACLEntry(bindingFromDescribed(d))
			if _, dup := seen[entry.ID]; dup {
				continue
			}
			seen[entry.ID] = struct{}{}
			entries = append(entries, entry)
		}
	}
	sortACLEntries(entries)
	span.SetAttributes(attribute.Int("acls.count", len(entries)))
	return entries, nil
}

func (a *KadmAdmin) CreateACL(ctx context.Context, binding domain.ACLBinding) (err error) {
	ctx, span := tracer.Start(ctx, "broker.CreateACL", trace.WithAttributes(
		attribute.String("principal", binding.Principal),
		attribute.String("resource_type", string(binding.ResourceType)),
		attribute.String("resource_name", binding.ResourceName),
	))
	defer func() { endSpan(span, err) }()

	b, err := builderFor(binding)
	if err != nil {
		return err
	}
	results, err := a.adm.CreateACLs(ctx, b)
	if err != nil {
		return mapKafkaError(err)
	}
	for _, r := range results {
		if r.Err != nil {
			return mapKafkaError(r.Err)
		}
	}
	return nil
}

func (a *KadmAdmin) ClusterInfo(ctx context.Context) (_ *domain.ClusterInfo, err error) {
	ctx, span := tracer.Start(ctx, "broker.ClusterInfo")
	defer func() { endSpan(span, err) }()

	meta, err := a.adm.BrokerMetadata(ctx)
	if err != nil {
		return nil, mapKafkaError(err)
	}
	info := &domain.ClusterInfo{
		ClusterID:        meta.Cluster,
		Controller:       meta.Controller,
		Brokers:          make([]domain.BrokerNode, 0, len(meta.Brokers)),
		BootstrapServers: a.BootstrapServers(),
	}
	for _, b := range meta.Brokers {
		info.Brokers = append(info.Brokers, domain.BrokerNode{ID: b.NodeID, Host: b.Host, Port: b.Port})
	}
	sort.Slice(info.Brokers, func(i, j int) bool { return info.Brokers[i].ID < info.Brokers[j].ID })
	return info, nil
}

func builderFor(binding domain.ACLBinding) (*kadm.ACLBuilder, error) {
	op, ok := operationToKadm[binding.Operation]
	if !ok {
		return nil, fmt.Errorf("operation %q: %w", binding.Operation, sentinel.ErrInvalidState)
	}
	pattern := kadm.ACLPatternLiteral
	if binding.PatternType == domain.PatternPrefixed {
		pattern = kadm.ACLPatternPrefixed
	}
	host := binding.Host
	if host == "" {
		host = domain.AnyHost
	}

	b := kadm.NewACLs()
	switch binding.ResourceType {
	case domain.ResourceTopic:
		b = b.Topics(binding.ResourceName)
	case domain.ResourceGroup:
		b = b.Groups(binding.ResourceName)
	case domain.ResourceCluster:
		b = b.Clusters()
	case domain.ResourceTransactionalID:
		b = b.TransactionalIDs(binding.ResourceName)
	default:
		return nil, fmt.Errorf("resource type %q: %w", binding.ResourceType, sentinel.ErrInvalidState)
	}
	if binding.Permission == domain.PermissionDeny {
		b = b.Deny(binding.Principal).DenyHosts(host)
	} else {
		b = b.Allow(binding.Principal).AllowHosts(host)
	}
	return b.Operations(op).ResourcePatternType(pattern), nil
}

var operationToKadm = map[domain.ACLOperation]kadm.ACLOperation{
	domain.OperationRead:     kadm.OpRead,
	domain.OperationWrite:    kadm.OpWrite,
	domain.OperationCreate:   kadm.OpCreate,
	domain.OperationDelete:   kadm.OpDelete,
	domain.OperationAlter:    kadm.OpAlter,
	domain.OperationDescribe: kadm.OpDescribe,
	domain.OperationAll:      kadm.OpAll,
}

func bindingFromDescribed(d kadm.DescribedACL) domain.ACLBinding {
	b := domain.ACLBinding{
		Principal:    d.Principal,
		ResourceName: d.Name,
		Host:         d.Host,
		PatternType:  domain.PatternLiteral,
		Permission:   domain.PermissionAllow,
	}
	switch d.Type {
	case kmsg.ACLResourceTypeTopic:
		b.ResourceType = domain.ResourceTopic
	case kmsg.ACLResourceTypeGroup:
		b.ResourceType = domain.ResourceGroup
	case kmsg.ACLResourceTypeCluster:
		b.ResourceType = domain.ResourceCluster
	case kmsg.ACLResourceTypeTransactionalId:
		b.ResourceType = domain.ResourceTransactionalID
	default:
		b.ResourceType = domain.ResourceType(d.Type.String())
	}
	if d.Pattern == kadm.ACLPatternPrefixed {
		b.PatternType = domain.PatternPrefixed
	}
	if d.Permission == kmsg.ACLPermissionTypeDeny {
		b.Permission = domain.PermissionDeny
	}
	b.Operation = domain.ACLOperation(d.Operation.String())
	for op, k := range operationToKadm {
		if k == d.Operation {
			b.Operation = op
			break
		}
	}
	return b
}

func sortACLEntries(entries []domain.ACLEntry) {
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.ResourceType != b.ResourceType {
			return a.ResourceType < b.ResourceType
		}
		if a.ResourceName != b.ResourceName {
			return a.ResourceName < b.ResourceName
		}
		if a.Principal != b.Principal {
			return a.Principal < b.Principal
		}
		return a.ID < b.ID
	})
}

// mapKafkaError translates broker error codes into sentinel errors. Anything
// unrecognized, including transport failures, is treated as unavailable.
func mapKafkaError(err error) error {
	switch {
	case errors.Is(err, kerr.TopicAlreadyExists):
		return fmt.Errorf("%w: %w", sentinel.ErrConflict, err)
	case errors.Is(err, kerr.UnknownTopicOrPartition), errors.Is(err, kerr.UnknownTopicID):
		return fmt.Errorf("%w: %w", sentinel.ErrNotFound, err)
	case errors.Is(err, kerr.InvalidReplicationFactor),
		errors.Is(err, kerr.InvalidPartitions),
		errors.Is(err, kerr.InvalidTopicException),
		errors.Is(err, kerr.InvalidConfig),
		errors.Is(err, kerr.PolicyViolation):
		return fmt.Errorf("%w: %w", sentinel.ErrInvalidState, err)
	default:
		return fmt.Errorf("%w: %w", sentinel.ErrUnavailable, err)
	}
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
