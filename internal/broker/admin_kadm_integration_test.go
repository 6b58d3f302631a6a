//go:build integration

package broker_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"kafkaportal/internal/broker"
	"kafkaportal/pkg/domain"
	"kafkaportal/pkg/platform/sentinel"
	"kafkaportal/pkg/testutil/containers"
)

type KadmAdminSuite struct {
	suite.Suite
	redpanda *containers.RedpandaContainer
	admin    *broker.KadmAdmin
}

func TestKadmAdminSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(KadmAdminSuite))
}

func (s *KadmAdminSuite) SetupSuite() {
	s.redpanda = containers.GetManager().GetRedpanda(s.T())
	s.admin = broker.NewKadmAdmin(s.redpanda.Client, []string{s.redpanda.Broker})
}

func (s *KadmAdminSuite) ctx() context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	s.T().Cleanup(cancel)
	return ctx
}

func (s *KadmAdminSuite) TestTopicLifecycle() {
	ctx := s.ctx()
	name := fmt.Sprintf("it-orders-%d", time.Now().UnixNano())

	s.Require().NoError(s.admin.CreateTopic(ctx, domain.TopicSpec{
		Name: name, Partitions: 3, ReplicationFactor: 1,
		Configs: map[string]string{"retention.ms": "3600000"},
	}))
	s.ErrorIs(s.admin.CreateTopic(ctx, domain.TopicSpec{Name: name, Partitions: 1, ReplicationFactor: 1}), sentinel.ErrConflict)

	topics, err := s.admin.ListTopics(ctx)
	s.Require().NoError(err)
	var found *domain.Topic
	for i := range topics {
		if topics[i].Name == name {
			found = &topics[i]
		}
	}
	s.Require().NotNil(found)
	s.Equal(3, found.Partitions)
	s.Equal(1, found.ReplicationFactor)

	cfg, err := s.admin.DescribeTopicConfig(ctx, name)
	s.Require().NoError(err)
	s.Equal("3600000", cfg.Configs["retention.ms"])

	s.Require().NoError(s.admin.DeleteTopic(ctx, name))
	s.ErrorIs(s.admin.DeleteTopic(ctx, name), sentinel.ErrNotFound)
}

func (s *KadmAdminSuite) TestACLRoundTrip() {
	ctx := s.ctx()
	binding := domain.ACLBindingFromDetails(&domain.ACLDetails{
		Principal:    "it-svc",
		ResourceType: domain.ResourceTopic,
		ResourceName: "it-acl-topic",
		Operation:    domain.OperationRead,
		HostPattern:  domain.AnyHost,
	})
	s.Require().NoError(s.admin.CreateACL(ctx, binding))

	acls, err := s.admin.ListACLs(ctx)
	s.Require().NoError(err)
	ids := make([]string, 0, len(acls))
	for _, a := range acls {
		ids = append(ids, a.ID)
	}
	s.Contains(ids, binding.ID())
}

func (s *KadmAdminSuite) TestClusterInfo() {
	ctx := s.ctx()
	s.Require().NoError(s.admin.Ping(ctx))

	info, err := s.admin.ClusterInfo(ctx)
	s.Require().NoError(err)
	s.NotEmpty(info.Brokers)
	s.Equal([]string{s.redpanda.Broker}, info.BootstrapServers)
}
