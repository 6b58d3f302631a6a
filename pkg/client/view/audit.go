package view

//go:generate mockgen -source=audit.go -destination=mocks/audit-mocks.go -package=mocks AuditSource

import (
	"context"
	"sync"

	"kafkaportal/pkg/domain"
)

// AuditSource is the audit query client.
type AuditSource interface {
	ListAuditEntries(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, error)
}

type AuditState struct {
	Entries []domain.AuditEntry
	Filter  domain.AuditFilter
}

// AuditBrowser pages through the audit trail, newest first.
type AuditBrowser struct {
	source   AuditSource
	notifier Notifier

	mu      sync.RWMutex
	filter  domain.AuditFilter
	entries []domain.AuditEntry
}

// NewAuditBrowser shows pageSize entries at a time; zero uses the server
// default page size.
func NewAuditBrowser(source AuditSource, notifier Notifier, pageSize int) *AuditBrowser {
	if pageSize <= 0 {
		pageSize = domain.DefaultAuditLimit
	}
	return &AuditBrowser{
		source:   source,
		notifier: orDiscard(notifier),
		filter:   domain.AuditFilter{Limit: pageSize},
	}
}

// SetFilter replaces the criteria, keeps the page size and returns to the
// first page.
func (b *AuditBrowser) SetFilter(ctx context.Context, filter domain.AuditFilter) error {
	b.mu.RLock()
	limit := b.filter.Limit
	b.mu.RUnlock()

	filter.Limit = limit
	filter.Offset = 0
	return b.load(ctx, filter)
}

func (b *AuditBrowser) Refresh(ctx context.Context) error {
	return b.load(ctx, b.State().Filter)
}

// HasNext reports whether the current page was full.
func (b *AuditBrowser) HasNext() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries) == b.filter.Limit
}

func (b *AuditBrowser) HasPrev() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.filter.Offset > 0
}

// Next moves one page forward. It is a no-op on the last page.
func (b *AuditBrowser) Next(ctx context.Context) error {
	if !b.HasNext() {
		return nil
	}
	filter := b.State().Filter
	filter.Offset += filter.Limit
	return b.load(ctx, filter)
}

// Prev moves one page back. It is a no-op on the first page.
func (b *AuditBrowser) Prev(ctx context.Context) error {
	filter := b.State().Filter
	if filter.Offset == 0 {
		return nil
	}
	filter.Offset = max(0, filter.Offset-filter.Limit)
	return b.load(ctx, filter)
}

func (b *AuditBrowser) State() AuditState {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return AuditState{Entries: b.entries, Filter: b.filter}
}

// load commits filter together with the page it produced, so a failed load
// leaves both as they were.
func (b *AuditBrowser) load(ctx context.Context, filter domain.AuditFilter) error {
	entries, err := b.source.ListAuditEntries(ctx, filter)
	if err != nil {
		notifyFailure(b.notifier, "Failed to load audit logs", err)
		return err
	}
	b.mu.Lock()
	b.filter = filter
	b.entries = entries
	b.mu.Unlock()
	return nil
}
