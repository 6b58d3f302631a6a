// Package inventory is a pass-through client for the broker inventory.
package inventory

import (
	"context"
	"net/url"

	"kafkaportal/pkg/client/gateway"
	"kafkaportal/pkg/domain"
	dErrors "kafkaportal/pkg/domain-errors"
)

// Session answers whether the caller may use admin operations.
type Session interface {
	IsAdmin() bool
}

type Client struct {
	gw      *gateway.Client
	session Session
}

// New expects gw to already carry the session's token.
func New(gw *gateway.Client, session Session) *Client {
	return &Client{gw: gw, session: session}
}

func (c *Client) ListTopics(ctx context.Context) ([]domain.Topic, error) {
	var list domain.TopicList
	if err := c.gw.Get(ctx, "/api/kafka/topics", &list); err != nil {
		return nil, err
	}
	return list.Topics, nil
}

// GetTopicConfig returns the topic's configuration entries.
func (c *Client) GetTopicConfig(ctx context.Context, name string) (map[string]string, error) {
	configs := map[string]string{}
	if err := c.gw.Get(ctx, "/api/kafka/topics/"+url.PathEscape(name)+"/config", &configs); err != nil {
		return nil, err
	}
	return configs, nil
}

func (c *Client) ListACLs(ctx context.Context) ([]domain.ACLEntry, error) {
	var list domain.ACLList
	if err := c.gw.Get(ctx, "/api/kafka/acls", &list); err != nil {
		return nil, err
	}
	return list.ACLs, nil
}

// ListMyTopics returns the topics the caller's approved requests created.
func (c *Client) ListMyTopics(ctx context.Context) ([]domain.Topic, error) {
	var list domain.TopicList
	if err := c.gw.Get(ctx, "/api/user/topics", &list); err != nil {
		return nil, err
	}
	return list.Topics, nil
}

func (c *Client) CreateTopic(ctx context.Context, spec domain.TopicSpec) (*domain.Topic, error) {
	if err := c.requireAdmin(); err != nil {
		return nil, err
	}
	var topic domain.Topic
	if err := c.gw.Post(ctx, "/api/kafka/topics", spec, &topic); err != nil {
		return nil, err
	}
	return &topic, nil
}

func (c *Client) DeleteTopic(ctx context.Context, name string) error {
	if err := c.requireAdmin(); err != nil {
		return err
	}
	return c.gw.Delete(ctx, "/api/kafka/topics/"+url.PathEscape(name))
}

func (c *Client) CreateACL(ctx context.Context, body domain.CreateACLBody) (*domain.ACLEntry, error) {
	if err := c.requireAdmin(); err != nil {
		return nil, err
	}
	var entry domain.ACLEntry
	if err := c.gw.Post(ctx, "/api/kafka/acls", body, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (c *Client) ClusterInfo(ctx context.Context) (*domain.ClusterInfo, error) {
	if err := c.requireAdmin(); err != nil {
		return nil, err
	}
	var info domain.ClusterInfo
	if err := c.gw.Get(ctx, "/api/kafka/cluster/info", &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// TestConnection reports a failed probe in the result rather than as an
// error. The error is for transport and authorization failures.
func (c *Client) TestConnection(ctx context.Context) (*domain.ConnectionTest, error) {
	if err := c.requireAdmin(); err != nil {
		return nil, err
	}
	var result domain.ConnectionTest
	if err := c.gw.Get(ctx, "/api/kafka/cluster/test", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) requireAdmin() error {
	if c.session == nil || !c.session.IsAdmin() {
		return dErrors.New(dErrors.CodeForbidden, "Admin privileges required")
	}
	return nil
}
