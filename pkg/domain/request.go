package domain

import (
	"encoding/json"
	"strings"
	"time"
	"unicode/utf8"

	dErrors "kafkaportal/pkg/domain-errors"
)

// RequestStatus is the approval state of a Request.
type RequestStatus string

const (
	StatusPending  RequestStatus = "PENDING"
	StatusApproved RequestStatus = "APPROVED"
	StatusRejected RequestStatus = "REJECTED"
)

func (s RequestStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is possible.
func (s RequestStatus) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// ParseRequestStatus accepts the wire spelling case-insensitively.
func ParseRequestStatus(s string) (RequestStatus, error) {
	status := RequestStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !status.IsValid() {
		return "", dErrors.Newf(dErrors.CodeValidation, "unknown status %q", s)
	}
	return status, nil
}

const (
	RationaleMinLength       = 10
	RationaleMaxLength       = 1000
	RejectionReasonMaxLength = 500
)

// ValidateRationale checks the trimmed rationale length.
func ValidateRationale(rationale string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(rationale))
	if n < RationaleMinLength {
		return dErrors.Newf(dErrors.CodeValidation, "rationale must be at least %d characters", RationaleMinLength)
	}
	if n > RationaleMaxLength {
		return dErrors.Newf(dErrors.CodeValidation, "rationale must be at most %d characters", RationaleMaxLength)
	}
	return nil
}

// ValidateRejectionReason requires a non-empty reason of bounded length.
func ValidateRejectionReason(reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return dErrors.New(dErrors.CodeValidation, "rejection_reason is required")
	}
	if utf8.RuneCountInString(reason) > RejectionReasonMaxLength {
		return dErrors.Newf(dErrors.CodeValidation, "rejection_reason must be at most %d characters", RejectionReasonMaxLength)
	}
	return nil
}

// Request is a user's ask for a broker resource, decided once by an admin.
//
// Invariants:
//   - Status moves PENDING -> APPROVED or PENDING -> REJECTED, exactly once
//   - DecidedAt and DeciderID are set iff Status != PENDING
//   - RejectionReason is non-empty iff Status == REJECTED
//   - Version starts at 1 and increments on every transition
type Request struct {
	ID              RequestID
	RequesterID     UserID
	Requester       string
	Payload         Payload
	Rationale       string
	Status          RequestStatus
	CreatedAt       time.Time
	DecidedAt       *time.Time
	DeciderID       *UserID
	RejectionReason string
	Version         int
}

// NewRequest builds a PENDING request after validating payload and rationale.
func NewRequest(id RequestID, requesterID UserID, requester string, payload Payload, rationale string, now time.Time) (*Request, error) {
	if requesterID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "requester is required")
	}
	if payload == nil {
		return nil, dErrors.New(dErrors.CodeValidation, "details are required")
	}
	payload.Normalize()
	if err := payload.Validate(); err != nil {
		return nil, err
	}
	rationale = strings.TrimSpace(rationale)
	if err := ValidateRationale(rationale); err != nil {
		return nil, err
	}
	return &Request{
		ID:          id,
		RequesterID: requesterID,
		Requester:   requester,
		Payload:     payload,
		Rationale:   rationale,
		Status:      StatusPending,
		CreatedAt:   now,
		Version:     1,
	}, nil
}

// Kind returns the payload tag.
func (r *Request) Kind() RequestKind {
	if r.Payload == nil {
		return ""
	}
	return r.Payload.Kind()
}

// CheckVersion fails with a conflict when expected is set and stale.
func (r *Request) CheckVersion(expected int) error {
	if expected > 0 && expected != r.Version {
		return dErrors.Newf(dErrors.CodeConflict, "request was modified (version %d, expected %d)", r.Version, expected)
	}
	return nil
}

func (r *Request) canDecide() error {
	if r.Status != StatusPending {
		return dErrors.Newf(dErrors.CodeConflict, "request is already %s", strings.ToLower(string(r.Status)))
	}
	return nil
}

// CanApprove checks the PENDING guard.
// Use with ApplyApproval in Execute callbacks.
func (r *Request) CanApprove() error {
	return r.canDecide()
}

// ApplyApproval records the decision. Call CanApprove first.
func (r *Request) ApplyApproval(decider UserID, now time.Time) {
	r.Status = StatusApproved
	r.DecidedAt = &now
	r.DeciderID = &decider
	r.Version++
}

// Approve validates and applies approval in one call.
func (r *Request) Approve(decider UserID, now time.Time) error {
	if err := r.CanApprove(); err != nil {
		return err
	}
	r.ApplyApproval(decider, now)
	return nil
}

// CanReject checks the PENDING guard and the reason.
// Use with ApplyRejection in Execute callbacks.
func (r *Request) CanReject(reason string) error {
	if err := ValidateRejectionReason(reason); err != nil {
		return err
	}
	return r.canDecide()
}

// ApplyRejection records the decision. Call CanReject first.
func (r *Request) ApplyRejection(decider UserID, reason string, now time.Time) {
	r.Status = StatusRejected
	r.DecidedAt = &now
	r.DeciderID = &decider
	r.RejectionReason = strings.TrimSpace(reason)
	r.Version++
}

// Reject validates and applies rejection in one call.
func (r *Request) Reject(decider UserID, reason string, now time.Time) error {
	if err := r.CanReject(reason); err != nil {
		return err
	}
	r.ApplyRejection(decider, reason, now)
	return nil
}

// CheckInvariants verifies a loaded request is internally consistent.
func (r *Request) CheckInvariants() error {
	if !r.Status.IsValid() {
		return dErrors.Newf(dErrors.CodeInvariantViolation, "unknown status %q", r.Status)
	}
	decided := r.DecidedAt != nil && r.DeciderID != nil
	if r.Status == StatusPending && (r.DecidedAt != nil || r.DeciderID != nil) {
		return dErrors.New(dErrors.CodeInvariantViolation, "pending request carries a decision")
	}
	if r.Status.IsTerminal() && !decided {
		return dErrors.New(dErrors.CodeInvariantViolation, "decided request is missing decision fields")
	}
	if (r.Status == StatusRejected) != (r.RejectionReason != "") {
		return dErrors.New(dErrors.CodeInvariantViolation, "rejection_reason must be set only on rejected requests")
	}
	if r.Version < 1 {
		return dErrors.New(dErrors.CodeInvariantViolation, "version must be positive")
	}
	return nil
}

// Clone returns a deep copy.
func (r *Request) Clone() *Request {
	c := *r
	c.Payload = ClonePayload(r.Payload)
	if r.DecidedAt != nil {
		t := *r.DecidedAt
		c.DecidedAt = &t
	}
	if r.DeciderID != nil {
		d := *r.DeciderID
		c.DeciderID = &d
	}
	return &c
}

type requestJSON struct {
	ID              RequestID       `json:"id"`
	RequesterID     UserID          `json:"user_id"`
	Requester       string          `json:"requester,omitempty"`
	RequestType     RequestKind     `json:"request_type"`
	Details         json.RawMessage `json:"details"`
	Rationale       string          `json:"rationale"`
	Status          RequestStatus   `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
	DecidedAt       *time.Time      `json:"decided_at,omitempty"`
	DeciderID       *UserID         `json:"admin_user_id,omitempty"`
	RejectionReason string          `json:"rejection_reason,omitempty"`
	Version         int             `json:"version"`
}

// MarshalJSON writes the payload under "details" tagged by "request_type".
func (r Request) MarshalJSON() ([]byte, error) {
	details, err := json.Marshal(r.Payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(requestJSON{
		ID:              r.ID,
		RequesterID:     r.RequesterID,
		Requester:       r.Requester,
		RequestType:     r.Kind(),
		Details:         details,
		Rationale:       r.Rationale,
		Status:          r.Status,
		CreatedAt:       r.CreatedAt,
		DecidedAt:       r.DecidedAt,
		DeciderID:       r.DeciderID,
		RejectionReason: r.RejectionReason,
		Version:         r.Version,
	})
}

// UnmarshalJSON decodes "details" into the variant named by "request_type".
func (r *Request) UnmarshalJSON(b []byte) error {
	var raw requestJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	payload, err := DecodePayload(raw.RequestType, raw.Details)
	if err != nil {
		return err
	}
	*r = Request{
		ID:              raw.ID,
		RequesterID:     raw.RequesterID,
		Requester:       raw.Requester,
		Payload:         payload,
		Rationale:       raw.Rationale,
		Status:          raw.Status,
		CreatedAt:       raw.CreatedAt,
		DecidedAt:       raw.DecidedAt,
		DeciderID:       raw.DeciderID,
		RejectionReason: raw.RejectionReason,
		Version:         raw.Version,
	}
	return nil
}

// StatusCounts tallies requests by status.
type StatusCounts struct {
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
}

// CountByStatus tallies requests by status.
func CountByStatus(reqs []*Request) StatusCounts {
	var c StatusCounts
	for _, r := range reqs {
		switch r.Status {
		case StatusPending:
			c.Pending++
		case StatusApproved:
			c.Approved++
		case StatusRejected:
			c.Rejected++
		}
	}
	return c
}
