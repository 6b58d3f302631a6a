package broker

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"strings"
	"sync"

	"kafkaportal/pkg/domain"
	"kafkaportal/pkg/platform/sentinel"
)

// defaultTopicConfigs mirrors the broker defaults a fresh topic reports.
var defaultTopicConfigs = map[string]string{
	"cleanup.policy":      "delete",
	"retention.ms":        "604800000",
	"segment.bytes":       "1073741824",
	"min.insync.replicas": "1",
}

// InMemoryAdmin is a single-node cluster held in memory, used when no
// bootstrap servers are configured and in tests.
type InMemoryAdmin struct {
	mu     sync.RWMutex
	topics map[string]domain.Topic
	acls   map[string]domain.ACLEntry
}

func NewInMemoryAdmin() *InMemoryAdmin {
	return &InMemoryAdmin{
		topics: make(map[string]domain.Topic),
		acls:   make(map[string]domain.ACLEntry),
	}
}

func (a *InMemoryAdmin) BootstrapServers() []string {
	return []string{"memory"}
}

func (a *InMemoryAdmin) Ping(context.Context) error {
	return nil
}

func (a *InMemoryAdmin) ListTopics(context.Context) ([]domain.Topic, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	topics := make([]domain.Topic, 0, len(a.topics))
	for _, t := range a.topics {
		t.Configs = nil
		topics = append(topics, t)
	}
	sort.Slice(topics, func(i, j int) bool { return topics[i].Name < topics[j].Name })
	return topics, nil
}

func (a *InMemoryAdmin) DescribeTopicConfig(_ context.Context, name string) (*domain.TopicConfig, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	t, ok := a.topics[name]
	if !ok {
		return nil, fmt.Errorf("topic %q: %w", name, sentinel.ErrNotFound)
	}
	return &domain.TopicConfig{Topic: name, Configs: maps.Clone(t.Configs)}, nil
}

func (a *InMemoryAdmin) CreateTopic(_ context.Context, spec domain.TopicSpec) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.topics[spec.Name]; ok {
		return fmt.Errorf("topic %q: %w", spec.Name, sentinel.ErrConflict)
	}
	configs := maps.Clone(defaultTopicConfigs)
	maps.Copy(configs, spec.Configs)
	a.topics[spec.Name] = domain.Topic{
		Name:              spec.Name,
		Partitions:        spec.Partitions,
		ReplicationFactor: spec.ReplicationFactor,
		IsInternal:        strings.HasPrefix(spec.Name, "__"),
		Configs:           configs,
	}
	return nil
}

func (a *InMemoryAdmin) DeleteTopic(_ context.Context, name string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.topics[name]; !ok {
		return fmt.Errorf("topic %q: %w", name, sentinel.ErrNotFound)
	}
	delete(a.topics, name)
	return nil
}

func (a *InMemoryAdmin) ListACLs(context.Context) ([]domain.ACLEntry, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	entries := make([]domain.ACLEntry, 0, len(a.acls))
	for _, e := range a.acls {
		entries = append(entries, e)
	}
	sortACLEntries(entries)
	return entries, nil
}

// CreateACL is idempotent, like the broker: an identical binding is a no-op.
func (a *InMemoryAdmin) CreateACL(_ context.Context, binding domain.ACLBinding) error {
	if binding.Host == "" {
		binding.Host = domain.AnyHost
	}
	if binding.PatternType == "" {
		binding.PatternType = domain.PatternLiteral
	}
	if _, ok := operationToKadm[binding.Operation]; !ok {
		return fmt.Errorf("operation %q: %w", binding.Operation, sentinel.ErrInvalidState)
	}
	entry := domain.NewACLEntry(binding)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.acls[entry.ID] = entry
	return nil
}

func (a *InMemoryAdmin) ClusterInfo(context.Context) (*domain.ClusterInfo, error) {
	return &domain.ClusterInfo{
		ClusterID:        "in-memory",
		Controller:       0,
		Brokers:          []domain.BrokerNode{{ID: 0, Host: "localhost", Port: 9092}},
		BootstrapServers: a.BootstrapServers(),
	}, nil
}
