package domain

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	dErrors "kafkaportal/pkg/domain-errors"
)

// RequestKind tags the payload variant carried by a Request.
type RequestKind string

const (
	KindTopic RequestKind = "TOPIC"
	KindACL   RequestKind = "ACL"
)

// ParseRequestKind accepts the wire spelling case-insensitively.
func ParseRequestKind(s string) (RequestKind, error) {
	switch RequestKind(strings.ToUpper(strings.TrimSpace(s))) {
	case KindTopic:
		return KindTopic, nil
	case KindACL:
		return KindACL, nil
	}
	return "", dErrors.Newf(dErrors.CodeValidation, "unknown request type %q", s)
}

// Payload is the kind-specific body of a Request. The two variants are
// *TopicDetails and *ACLDetails; code that interprets a payload must switch
// over both and treat anything else as an error.
type Payload interface {
	Kind() RequestKind
	Normalize()
	Validate() error
}

const (
	TopicNameMaxLength      = 255
	TopicMinPartitions      = 1
	TopicMaxPartitions      = 100
	TopicMinReplication     = 1
	TopicMaxReplication     = 3
	TopicDescriptionMaxSize = 500

	// ClusterResourceName is the only resource name Kafka accepts for CLUSTER ACLs.
	ClusterResourceName = "kafka-cluster"
	AnyHost             = "*"
)

var topicNamePattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

// TopicDetails asks for a new topic.
type TopicDetails struct {
	TopicName         string `json:"topic_name"`
	Partitions        int    `json:"partitions"`
	ReplicationFactor int    `json:"replication_factor"`
	Description       string `json:"description,omitempty"`
}

func (d *TopicDetails) Kind() RequestKind { return KindTopic }

func (d *TopicDetails) Normalize() {
	d.TopicName = strings.TrimSpace(d.TopicName)
	d.Description = strings.TrimSpace(d.Description)
}

func (d *TopicDetails) Validate() error {
	if err := ValidateTopicName(d.TopicName); err != nil {
		return err
	}
	if d.Partitions < TopicMinPartitions || d.Partitions > TopicMaxPartitions {
		return dErrors.Newf(dErrors.CodeValidation, "partitions must be between %d and %d", TopicMinPartitions, TopicMaxPartitions)
	}
	if d.ReplicationFactor < TopicMinReplication || d.ReplicationFactor > TopicMaxReplication {
		return dErrors.Newf(dErrors.CodeValidation, "replication_factor must be between %d and %d", TopicMinReplication, TopicMaxReplication)
	}
	if utf8.RuneCountInString(d.Description) > TopicDescriptionMaxSize {
		return dErrors.Newf(dErrors.CodeValidation, "description must be at most %d characters", TopicDescriptionMaxSize)
	}
	return nil
}

// ValidateTopicName enforces the broker-safe topic naming rules.
func ValidateTopicName(name string) error {
	if name == "" {
		return dErrors.New(dErrors.CodeValidation, "topic_name is required")
	}
	if len(name) > TopicNameMaxLength {
		return dErrors.Newf(dErrors.CodeValidation, "topic_name must be at most %d characters", TopicNameMaxLength)
	}
	if name == "." || name == ".." {
		return dErrors.New(dErrors.CodeValidation, "topic_name cannot be '.' or '..'")
	}
	if !topicNamePattern.MatchString(name) {
		return dErrors.New(dErrors.CodeValidation, "topic_name may only contain letters, digits, '.', '_' and '-'")
	}
	return nil
}

// ResourceType is the kind of broker resource an ACL applies to.
type ResourceType string

const (
	ResourceTopic           ResourceType = "TOPIC"
	ResourceGroup           ResourceType = "GROUP"
	ResourceCluster         ResourceType = "CLUSTER"
	ResourceTransactionalID ResourceType = "TRANSACTIONAL_ID"
)

func (t ResourceType) IsValid() bool {
	switch t {
	case ResourceTopic, ResourceGroup, ResourceCluster, ResourceTransactionalID:
		return true
	}
	return false
}

// ACLOperation is the operation an ACL grants.
type ACLOperation string

const (
	OperationRead     ACLOperation = "READ"
	OperationWrite    ACLOperation = "WRITE"
	OperationCreate   ACLOperation = "CREATE"
	OperationDelete   ACLOperation = "DELETE"
	OperationAlter    ACLOperation = "ALTER"
	OperationDescribe ACLOperation = "DESCRIBE"
	OperationAll      ACLOperation = "ALL"
)

func (o ACLOperation) IsValid() bool {
	switch o {
	case OperationRead, OperationWrite, OperationCreate, OperationDelete,
		OperationAlter, OperationDescribe, OperationAll:
		return true
	}
	return false
}

// ACLDetails asks for a single ALLOW binding.
type ACLDetails struct {
	Principal    string       `json:"principal"`
	ResourceType ResourceType `json:"resource_type"`
	ResourceName string       `json:"resource_name"`
	Operation    ACLOperation `json:"operation"`
	HostPattern  string       `json:"host_pattern"`
}

func (d *ACLDetails) Kind() RequestKind { return KindACL }

func (d *ACLDetails) Normalize() {
	d.Principal = strings.TrimSpace(d.Principal)
	d.ResourceName = strings.TrimSpace(d.ResourceName)
	d.ResourceType = ResourceType(strings.ToUpper(strings.TrimSpace(string(d.ResourceType))))
	d.Operation = ACLOperation(strings.ToUpper(strings.TrimSpace(string(d.Operation))))
	d.HostPattern = strings.TrimSpace(d.HostPattern)
	if d.HostPattern == "" {
		d.HostPattern = AnyHost
	}
	if d.ResourceType == ResourceCluster && d.ResourceName == "" {
		d.ResourceName = ClusterResourceName
	}
}

func (d *ACLDetails) Validate() error {
	if d.Principal == "" {
		return dErrors.New(dErrors.CodeValidation, "principal is required")
	}
	if !d.ResourceType.IsValid() {
		return dErrors.Newf(dErrors.CodeValidation, "unsupported resource_type %q", d.ResourceType)
	}
	if d.ResourceName == "" {
		return dErrors.New(dErrors.CodeValidation, "resource_name is required")
	}
	if !d.Operation.IsValid() {
		return dErrors.Newf(dErrors.CodeValidation, "unsupported operation %q", d.Operation)
	}
	if d.HostPattern == "" {
		return dErrors.New(dErrors.CodeValidation, "host_pattern is required")
	}
	return nil
}

// DecodePayload decodes raw JSON into the variant selected by kind.
func DecodePayload(kind RequestKind, raw json.RawMessage) (Payload, error) {
	var p Payload
	switch kind {
	case KindTopic:
		p = &TopicDetails{}
	case KindACL:
		p = &ACLDetails{}
	default:
		return nil, dErrors.Newf(dErrors.CodeValidation, "unknown request type %q", kind)
	}
	if len(raw) == 0 || string(raw) == "null" {
		return nil, dErrors.New(dErrors.CodeValidation, "details are required")
	}
	if err := json.Unmarshal(raw, p); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, "details are malformed")
	}
	return p, nil
}

// ClonePayload returns a deep copy so stores never share payload memory.
func ClonePayload(p Payload) Payload {
	switch v := p.(type) {
	case *TopicDetails:
		c := *v
		return &c
	case *ACLDetails:
		c := *v
		return &c
	case nil:
		return nil
	default:
		panic(fmt.Sprintf("domain: unknown payload type %T", p))
	}
}
