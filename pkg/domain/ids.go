package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "kafkaportal/pkg/domain-errors"
)

// Typed identifiers. Each wraps a UUID so a RequestID cannot be passed where a
// UserID is expected.
type (
	UserID       uuid.UUID
	RequestID    uuid.UUID
	AuditEntryID uuid.UUID
)

// maxIDLength bounds input before parsing; a canonical UUID is 36 characters
// and uuid.Parse also accepts urn and brace forms.
const maxIDLength = 45

func parseUUID(s, label string) (uuid.UUID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s id is required", label)
	}
	if len(s) > maxIDLength {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "invalid %s id", label)
	}
	u, err := uuid.Parse(s)
	if err != nil || u == uuid.Nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "invalid %s id", label)
	}
	return u, nil
}

func NewUserID() UserID { return UserID(uuid.New()) }

// ParseUserID parses a non-nil user id.
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s, "user")
	return UserID(u), err
}

func (i UserID) String() string { return uuid.UUID(i).String() }
func (i UserID) IsNil() bool    { return uuid.UUID(i) == uuid.Nil }

func (i UserID) MarshalText() ([]byte, error) { return []byte(i.String()), nil }

func (i *UserID) UnmarshalText(b []byte) error {
	u, err := uuid.ParseBytes(b)
	if err != nil {
		return dErrors.New(dErrors.CodeInvalidInput, "invalid user id")
	}
	*i = UserID(u)
	return nil
}

func NewRequestID() RequestID { return RequestID(uuid.New()) }

// ParseRequestID parses a non-nil request id.
func ParseRequestID(s string) (RequestID, error) {
	u, err := parseUUID(s, "request")
	return RequestID(u), err
}

func (i RequestID) String() string { return uuid.UUID(i).String() }
func (i RequestID) IsNil() bool    { return uuid.UUID(i) == uuid.Nil }

func (i RequestID) MarshalText() ([]byte, error) { return []byte(i.String()), nil }

func (i *RequestID) UnmarshalText(b []byte) error {
	u, err := uuid.ParseBytes(b)
	if err != nil {
		return dErrors.New(dErrors.CodeInvalidInput, "invalid request id")
	}
	*i = RequestID(u)
	return nil
}

func NewAuditEntryID() AuditEntryID { return AuditEntryID(uuid.New()) }

func (i AuditEntryID) String() string { return uuid.UUID(i).String() }

func (i AuditEntryID) MarshalText() ([]byte, error) { return []byte(i.String()), nil }

func (i *AuditEntryID) UnmarshalText(b []byte) error {
	u, err := uuid.ParseBytes(b)
	if err != nil {
		return dErrors.New(dErrors.CodeInvalidInput, "invalid audit entry id")
	}
	*i = AuditEntryID(u)
	return nil
}
