// Package auditlog queries the portal's audit trail.
package auditlog

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"kafkaportal/pkg/client/gateway"
	"kafkaportal/pkg/domain"
)

type Client struct {
	gw *gateway.Client
}

// New expects gw to already carry the session's token.
func New(gw *gateway.Client) *Client {
	return &Client{gw: gw}
}

// ListAuditEntries returns one page of entries, newest first.
func (c *Client) ListAuditEntries(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, error) {
	path := "/api/audit/logs"
	if q := Query(filter); len(q) > 0 {
		path += "?" + q.Encode()
	}
	entries := []domain.AuditEntry{}
	if err := c.gw.Get(ctx, path, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Query encodes filter for the audit endpoint. Zero paging values and empty
// criteria are left out so the server applies its defaults.
func Query(filter domain.AuditFilter) url.Values {
	q := url.Values{}
	if filter.Limit != 0 {
		q.Set("limit", strconv.Itoa(filter.Limit))
	}
	if filter.Offset != 0 {
		q.Set("offset", strconv.Itoa(filter.Offset))
	}
	if filter.Action != "" {
		q.Set("action", string(filter.Action))
	}
	if filter.EntityType != "" {
		q.Set("entity_type", string(filter.EntityType))
	}
	if filter.ActorID != nil {
		q.Set("user_id", filter.ActorID.String())
	}
	if filter.StartDate != nil {
		q.Set("start_date", filter.StartDate.UTC().Format(time.RFC3339))
	}
	if filter.EndDate != nil {
		q.Set("end_date", filter.EndDate.UTC().Format(time.RFC3339))
	}
	return q
}
