// Package workflow is the client for topic and ACL requests and their
// approval.
package workflow

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"kafkaportal/pkg/client/gateway"
	"kafkaportal/pkg/domain"
	dErrors "kafkaportal/pkg/domain-errors"
)

// Session answers whether the caller may use admin operations.
type Session interface {
	IsAdmin() bool
}

// Client holds no cache: every call is a fresh round trip.
type Client struct {
	gw      *gateway.Client
	session Session
}

// New expects gw to already carry the session's token.
func New(gw *gateway.Client, session Session) *Client {
	return &Client{gw: gw, session: session}
}

// DecisionOption tunes an approve or reject call.
type DecisionOption func(*decision)

type decision struct {
	version int
}

// IfVersion makes the decision conditional on the request still being at
// version v.
func IfVersion(v int) DecisionOption {
	return func(d *decision) { d.version = v }
}

func (c *Client) SubmitTopicRequest(ctx context.Context, details domain.TopicDetails, rationale string) (*domain.Request, error) {
	return c.submit(ctx, "/api/user/requests/topic", &details, rationale)
}

func (c *Client) SubmitACLRequest(ctx context.Context, details domain.ACLDetails, rationale string) (*domain.Request, error) {
	return c.submit(ctx, "/api/user/requests/acl", &details, rationale)
}

func (c *Client) submit(ctx context.Context, path string, payload domain.Payload, rationale string) (*domain.Request, error) {
	payload.Normalize()
	if err := payload.Validate(); err != nil {
		return nil, err
	}
	rationale = strings.TrimSpace(rationale)
	if err := domain.ValidateRationale(rationale); err != nil {
		return nil, err
	}
	details, err := json.Marshal(payload)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeRequestFailed, "failed to encode details")
	}

	var req domain.Request
	body := domain.SubmitRequestBody{RequestType: payload.Kind(), Details: details, Rationale: rationale}
	if err := c.gw.Post(ctx, path, body, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

func (c *Client) ListOwnRequests(ctx context.Context) ([]*domain.Request, error) {
	return c.list(ctx, "/api/user/requests/")
}

// ListAllRequests lists every request, optionally narrowed to one status.
// Admin only.
func (c *Client) ListAllRequests(ctx context.Context, status *domain.RequestStatus) ([]*domain.Request, error) {
	if err := c.requireAdmin(); err != nil {
		return nil, err
	}
	path := "/api/admin/requests"
	if status != nil {
		path += "?" + url.Values{"status": {string(*status)}}.Encode()
	}
	return c.list(ctx, path)
}

// ListPendingRequests is the admin decision queue, newest first.
func (c *Client) ListPendingRequests(ctx context.Context) ([]*domain.Request, error) {
	if err := c.requireAdmin(); err != nil {
		return nil, err
	}
	return c.list(ctx, "/api/admin/requests/pending")
}

func (c *Client) GetRequest(ctx context.Context, id domain.RequestID) (*domain.Request, error) {
	var req domain.Request
	if err := c.gw.Get(ctx, "/api/user/requests/"+id.String(), &req); err != nil {
		return nil, err
	}
	return &req, nil
}

// Approve decides a pending request. Deciding an already decided request is
// a Conflict.
func (c *Client) Approve(ctx context.Context, id domain.RequestID, opts ...DecisionOption) (*domain.Request, error) {
	if err := c.requireAdmin(); err != nil {
		return nil, err
	}
	return c.decide(ctx, "/api/admin/requests/"+id.String()+"/approve", nil, opts)
}

// Reject decides a pending request with a reason, which must not be empty.
func (c *Client) Reject(ctx context.Context, id domain.RequestID, reason string, opts ...DecisionOption) (*domain.Request, error) {
	if err := c.requireAdmin(); err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if err := domain.ValidateRejectionReason(reason); err != nil {
		return nil, err
	}
	return c.decide(ctx, "/api/admin/requests/"+id.String()+"/reject", domain.RejectBody{RejectionReason: reason}, opts)
}

func (c *Client) decide(ctx context.Context, path string, body any, opts []DecisionOption) (*domain.Request, error) {
	var d decision
	for _, opt := range opts {
		opt(&d)
	}
	call := gateway.Options{Method: http.MethodPatch, Body: body}
	if d.version > 0 {
		call.Headers = map[string]string{"If-Match": `"` + strconv.Itoa(d.version) + `"`}
	}
	var req domain.Request
	if _, err := c.gw.Call(ctx, path, call, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

func (c *Client) list(ctx context.Context, path string) ([]*domain.Request, error) {
	var reqs []*domain.Request
	if err := c.gw.Get(ctx, path, &reqs); err != nil {
		return nil, err
	}
	return reqs, nil
}

func (c *Client) requireAdmin() error {
	if c.session == nil || !c.session.IsAdmin() {
		return dErrors.New(dErrors.CodeForbidden, "Admin privileges required")
	}
	return nil
}
