package user

import (
	"context"
	"strings"
	"sync"

	"kafkaportal/pkg/domain"
	"kafkaportal/pkg/platform/sentinel"
)

// InMemoryUserStore is the user store used when no database is configured.
// Usernames are unique case-insensitively.
type InMemoryUserStore struct {
	mu         sync.RWMutex
	users      map[domain.UserID]*domain.User
	byUsername map[string]domain.UserID
}

func New() *InMemoryUserStore {
	return &InMemoryUserStore{
		users:      make(map[domain.UserID]*domain.User),
		byUsername: make(map[string]domain.UserID),
	}
}

func usernameKey(username string) string {
	return strings.ToLower(username)
}

func (s *InMemoryUserStore) Create(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byUsername[usernameKey(user.Username)]; ok {
		return sentinel.ErrConflict
	}
	if _, ok := s.users[user.ID]; ok {
		return sentinel.ErrConflict
	}
	c := *user
	s.users[user.ID] = &c
	s.byUsername[usernameKey(user.Username)] = user.ID
	return nil
}

// Update replaces the stored record. Username changes are not supported.
func (s *InMemoryUserStore) Update(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; !ok {
		return sentinel.ErrNotFound
	}
	c := *user
	s.users[user.ID] = &c
	return nil
}

func (s *InMemoryUserStore) FindByID(_ context.Context, id domain.UserID) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (s *InMemoryUserStore) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byUsername[usernameKey(username)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	c := *s.users[id]
	return &c, nil
}
