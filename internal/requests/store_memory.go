package requests

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"

	"kafkaportal/pkg/domain"
	"kafkaportal/pkg/platform/sentinel"
)

// InMemoryStore keeps requests in a map. Execute holds the store lock for
// the whole callback, so concurrent transitions of any request serialize.
type InMemoryStore struct {
	mu       sync.Mutex
	requests map[domain.RequestID]*domain.Request
	order    []domain.RequestID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{requests: make(map[domain.RequestID]*domain.Request)}
}

func (s *InMemoryStore) Create(_ context.Context, req *domain.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.requests[req.ID]; ok {
		return fmt.Errorf("request %s: %w", req.ID, sentinel.ErrConflict)
	}
	s.requests[req.ID] = req.Clone()
	s.order = append(s.order, req.ID)
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id domain.RequestID) (*domain.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.requests[id]
	if !ok {
		return nil, fmt.Errorf("request %s: %w", id, sentinel.ErrNotFound)
	}
	return req.Clone(), nil
}

func (s *InMemoryStore) ListByRequester(_ context.Context, userID domain.UserID) ([]*domain.Request, error) {
	return s.list(func(r *domain.Request) bool { return r.RequesterID == userID }), nil
}

// ListAll returns every request whose status is in statuses, or every request
// when statuses is empty.
func (s *InMemoryStore) ListAll(_ context.Context, statuses []domain.RequestStatus) ([]*domain.Request, error) {
	return s.list(func(r *domain.Request) bool {
		return len(statuses) == 0 || slices.Contains(statuses, r.Status)
	}), nil
}

func (s *InMemoryStore) list(keep func(*domain.Request) bool) []*domain.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*domain.Request{}
	for i := len(s.order) - 1; i >= 0; i-- {
		if r := s.requests[s.order[i]]; keep(r) {
			out = append(out, r.Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// Execute loads the request, runs fn on a copy and stores the copy only when
// fn succeeds and the result is consistent.
func (s *InMemoryStore) Execute(ctx context.Context, id domain.RequestID, fn func(ctx context.Context, req *domain.Request) error) (*domain.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.requests[id]
	if !ok {
		return nil, fmt.Errorf("request %s: %w", id, sentinel.ErrNotFound)
	}
	working := current.Clone()
	if err := fn(ctx, working); err != nil {
		return nil, err
	}
	if err := working.CheckInvariants(); err != nil {
		return nil, err
	}
	s.requests[id] = working
	return working.Clone(), nil
}
