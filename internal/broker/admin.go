// Package broker exposes cluster state to the portal and applies approved
// requests to the cluster.
//
// Admin is the port to the broker. KadmAdmin talks to a real cluster through
// franz-go's admin client; InMemoryAdmin stands in when no bootstrap servers
// are configured. Both report failures as pkg/platform/sentinel errors:
//
//   - ErrNotFound: topic does not exist
//   - ErrConflict: topic already exists
//   - ErrUnavailable: cluster unreachable or the request was refused
package broker

//go:generate mockgen -source=admin.go -destination=mocks/admin-mocks.go -package=mocks Admin

import (
	"context"

	"kafkaportal/pkg/domain"
)

// Admin reads and mutates cluster resources.
type Admin interface {
	ListTopics(ctx context.Context) ([]domain.Topic, error)
	DescribeTopicConfig(ctx context.Context, name string) (*domain.TopicConfig, error)
	CreateTopic(ctx context.Context, spec domain.TopicSpec) error
	DeleteTopic(ctx context.Context, name string) error
	ListACLs(ctx context.Context) ([]domain.ACLEntry, error)
	CreateACL(ctx context.Context, binding domain.ACLBinding) error
	ClusterInfo(ctx context.Context) (*domain.ClusterInfo, error)
	Ping(ctx context.Context) error
	BootstrapServers() []string
}
