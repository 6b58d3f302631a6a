package domain

import (
	"time"

	dErrors "kafkaportal/pkg/domain-errors"
)

// AuditAction names what happened.
type AuditAction string

const (
	AuditUserCreated     AuditAction = "USER_CREATED"
	AuditUserRoleUpdated AuditAction = "USER_ROLE_UPDATED"
	AuditUserLogin       AuditAction = "USER_LOGIN"
	AuditUserLogout      AuditAction = "USER_LOGOUT"
	AuditRequestCreated  AuditAction = "REQUEST_CREATED"
	AuditRequestApproved AuditAction = "REQUEST_APPROVED"
	AuditRequestRejected AuditAction = "REQUEST_REJECTED"
	AuditTopicCreated    AuditAction = "TOPIC_CREATED"
	AuditTopicDeleted    AuditAction = "TOPIC_DELETED"
	AuditACLCreated      AuditAction = "ACL_CREATED"
)

// EntityType names what an audit entry is about.
type EntityType string

const (
	EntityUser    EntityType = "USER"
	EntityRequest EntityType = "REQUEST"
	EntityTopic   EntityType = "TOPIC"
	EntityACL     EntityType = "ACL"
)

func (e EntityType) IsValid() bool {
	switch e {
	case EntityUser, EntityRequest, EntityTopic, EntityACL:
		return true
	}
	return false
}

// AuditEntry is an append-only record of one mutating action.
type AuditEntry struct {
	ID         AuditEntryID   `json:"id"`
	ActorID    UserID         `json:"user_id"`
	Actor      string         `json:"username,omitempty"`
	Action     AuditAction    `json:"action"`
	EntityType EntityType     `json:"entity_type"`
	EntityID   string         `json:"entity_id,omitempty"`
	Changes    map[string]any `json:"changes,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
	IPAddress  string         `json:"ip_address,omitempty"`
}

const (
	DefaultAuditLimit = 50
	MaxAuditLimit     = 1000
)

// AuditFilter selects a page of audit entries, newest first.
type AuditFilter struct {
	Limit      int
	Offset     int
	Action     AuditAction
	EntityType EntityType
	ActorID    *UserID
	StartDate  *time.Time
	EndDate    *time.Time
}

// Normalize applies the default page size.
func (f *AuditFilter) Normalize() {
	if f.Limit == 0 {
		f.Limit = DefaultAuditLimit
	}
}

func (f *AuditFilter) Validate() error {
	if f.Limit < 1 || f.Limit > MaxAuditLimit {
		return dErrors.Newf(dErrors.CodeValidation, "limit must be between 1 and %d", MaxAuditLimit)
	}
	if f.Offset < 0 {
		return dErrors.New(dErrors.CodeValidation, "offset must be non-negative")
	}
	if f.EntityType != "" && !f.EntityType.IsValid() {
		return dErrors.Newf(dErrors.CodeValidation, "unknown entity_type %q", f.EntityType)
	}
	if f.StartDate != nil && f.EndDate != nil && f.EndDate.Before(*f.StartDate) {
		return dErrors.New(dErrors.CodeValidation, "end_date must not be before start_date")
	}
	return nil
}

// Matches reports whether e passes every non-paging criterion.
func (f AuditFilter) Matches(e AuditEntry) bool {
	if f.Action != "" && e.Action != f.Action {
		return false
	}
	if f.EntityType != "" && e.EntityType != f.EntityType {
		return false
	}
	if f.ActorID != nil && e.ActorID != *f.ActorID {
		return false
	}
	if f.StartDate != nil && e.Timestamp.Before(*f.StartDate) {
		return false
	}
	if f.EndDate != nil && e.Timestamp.After(*f.EndDate) {
		return false
	}
	return true
}
