package audit

import (
	"context"
	"sort"
	"sync"

	"kafkaportal/pkg/domain"
)

// InMemoryStore keeps entries in insertion order.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries []domain.AuditEntry
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, entry domain.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, cloneEntry(entry))
	return nil
}

// List filters, sorts newest first (later insertions win ties) and pages.
func (s *InMemoryStore) List(_ context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]domain.AuditEntry, 0, len(s.entries))
	for i := len(s.entries) - 1; i >= 0; i-- {
		if filter.Matches(s.entries[i]) {
			matched = append(matched, cloneEntry(s.entries[i]))
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Timestamp.After(matched[j].Timestamp)
	})

	if filter.Offset >= len(matched) {
		return []domain.AuditEntry{}, nil
	}
	matched = matched[filter.Offset:]
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

func cloneEntry(e domain.AuditEntry) domain.AuditEntry {
	if e.Changes != nil {
		changes := make(map[string]any, len(e.Changes))
		for k, v := range e.Changes {
			changes[k] = v
		}
		e.Changes = changes
	}
	return e
}
