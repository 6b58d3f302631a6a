package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	dErrors "kafkaportal/pkg/domain-errors"
)

// Topic is a broker topic as reported by the cluster.
type Topic struct {
	Name              string            `json:"name"`
	Partitions        int               `json:"partitions"`
	ReplicationFactor int               `json:"replication_factor"`
	IsInternal        bool              `json:"is_internal"`
	Configs           map[string]string `json:"configs,omitempty"`
}

// TopicConfig is the full configuration of one topic.
type TopicConfig struct {
	Topic   string            `json:"topic"`
	Configs map[string]string `json:"configs"`
}

// TopicSpec describes a topic to create.
type TopicSpec struct {
	Name              string            `json:"name"`
	Partitions        int               `json:"partitions"`
	ReplicationFactor int               `json:"replication_factor"`
	Configs           map[string]string `json:"config,omitempty"`
}

func (s *TopicSpec) Normalize() {
	s.Name = strings.TrimSpace(s.Name)
}

// Validate applies the same bounds a topic request is held to.
func (s *TopicSpec) Validate() error {
	d := TopicDetails{TopicName: s.Name, Partitions: s.Partitions, ReplicationFactor: s.ReplicationFactor}
	return d.Validate()
}

// TopicSpecFromDetails converts an approved topic request into a create call.
func TopicSpecFromDetails(d *TopicDetails) TopicSpec {
	return TopicSpec{Name: d.TopicName, Partitions: d.Partitions, ReplicationFactor: d.ReplicationFactor}
}

// PatternType is how an ACL's resource name is matched.
type PatternType string

const (
	PatternLiteral  PatternType = "LITERAL"
	PatternPrefixed PatternType = "PREFIXED"
)

// Permission is whether an ACL allows or denies.
type Permission string

const (
	PermissionAllow Permission = "ALLOW"
	PermissionDeny  Permission = "DENY"
)

// ACLBinding is a broker ACL without an identity.
type ACLBinding struct {
	Principal    string       `json:"principal"`
	ResourceType ResourceType `json:"resource_type"`
	ResourceName string       `json:"resource_name"`
	PatternType  PatternType  `json:"pattern_type"`
	Operation    ACLOperation `json:"operation"`
	Permission   Permission   `json:"permission"`
	Host         string       `json:"host"`
}

// ACLBindingFromDetails converts an approved ACL request into a literal ALLOW binding.
func ACLBindingFromDetails(d *ACLDetails) ACLBinding {
	return ACLBinding{
		Principal:    PrincipalName(d.Principal),
		ResourceType: d.ResourceType,
		ResourceName: d.ResourceName,
		PatternType:  PatternLiteral,
		Operation:    d.Operation,
		Permission:   PermissionAllow,
		Host:         d.HostPattern,
	}
}

// PrincipalName defaults bare names to the User principal type.
func PrincipalName(p string) string {
	if strings.Contains(p, ":") {
		return p
	}
	return "User:" + p
}

// ID is a stable identifier derived from the binding, since brokers assign none.
func (b ACLBinding) ID() string {
	h := sha256.New()
	for _, part := range []string{
		b.Principal, string(b.ResourceType), b.ResourceName,
		string(b.PatternType), string(b.Operation), string(b.Permission), b.Host,
	} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// ACLEntry is an ACL as listed by the portal.
type ACLEntry struct {
	ID string `json:"id"`
	ACLBinding
}

// NewACLEntry attaches the derived id to a binding.
func NewACLEntry(b ACLBinding) ACLEntry {
	return ACLEntry{ID: b.ID(), ACLBinding: b}
}

// BrokerNode is one broker in the cluster.
type BrokerNode struct {
	ID   int32  `json:"id"`
	Host string `json:"host"`
	Port int32  `json:"port"`
}

// ClusterInfo summarizes cluster metadata.
type ClusterInfo struct {
	ClusterID        string       `json:"cluster_id"`
	Controller       int32        `json:"controller"`
	Brokers          []BrokerNode `json:"brokers"`
	BootstrapServers []string     `json:"bootstrap_servers"`
}

// ConnectionTest is the result of probing the cluster.
type ConnectionTest struct {
	Success          bool     `json:"success"`
	Message          string   `json:"message"`
	BootstrapServers []string `json:"bootstrap_servers"`
	TopicsCount      int      `json:"topics_count"`
}

// CreateACLBody is the body of POST /api/kafka/acls. Pattern type defaults to
// LITERAL and permission to ALLOW.
type CreateACLBody struct {
	ACLDetails
	PatternType PatternType `json:"pattern_type,omitempty"`
	Permission  Permission  `json:"permission,omitempty"`
}

func (b *CreateACLBody) Normalize() {
	b.ACLDetails.Normalize()
	b.PatternType = PatternType(strings.ToUpper(strings.TrimSpace(string(b.PatternType))))
	if b.PatternType == "" {
		b.PatternType = PatternLiteral
	}
	b.Permission = Permission(strings.ToUpper(strings.TrimSpace(string(b.Permission))))
	if b.Permission == "" {
		b.Permission = PermissionAllow
	}
}

func (b *CreateACLBody) Validate() error {
	if err := b.ACLDetails.Validate(); err != nil {
		return err
	}
	if b.PatternType != PatternLiteral && b.PatternType != PatternPrefixed {
		return dErrors.Newf(dErrors.CodeValidation, "unsupported pattern_type %q", b.PatternType)
	}
	if b.Permission != PermissionAllow && b.Permission != PermissionDeny {
		return dErrors.Newf(dErrors.CodeValidation, "unsupported permission %q", b.Permission)
	}
	return nil
}

// Binding converts the body into the binding to create.
func (b *CreateACLBody) Binding() ACLBinding {
	binding := ACLBindingFromDetails(&b.ACLDetails)
	binding.PatternType = b.PatternType
	binding.Permission = b.Permission
	return binding
}
