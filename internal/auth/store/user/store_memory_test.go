package user

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"kafkaportal/pkg/domain"
	"kafkaportal/pkg/platform/sentinel"
)

type InMemoryUserStoreSuite struct {
	suite.Suite
	store *InMemoryUserStore
}

func (s *InMemoryUserStoreSuite) SetupTest() {
	s.store = New()
}

func TestInMemoryUserStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryUserStoreSuite))
}

func newUser(username string) *domain.User {
	return &domain.User{
		ID:        domain.NewUserID(),
		Username:  username,
		Email:     username + "@company.com",
		IsActive:  true,
		CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (s *InMemoryUserStoreSuite) TestLookup() {
	ctx := context.Background()
	u := newUser("Jane")
	s.Require().NoError(s.store.Create(ctx, u))

	s.Run("by id", func() {
		found, err := s.store.FindByID(ctx, u.ID)
		s.Require().NoError(err)
		s.Equal(u, found)
	})

	s.Run("by username ignores case", func() {
		found, err := s.store.FindByUsername(ctx, "jane")
		s.Require().NoError(err)
		s.Equal(u.ID, found.ID)
	})

	s.Run("missing is ErrNotFound", func() {
		_, err := s.store.FindByID(ctx, domain.NewUserID())
		s.ErrorIs(err, sentinel.ErrNotFound)
		_, err = s.store.FindByUsername(ctx, "nobody")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *InMemoryUserStoreSuite) TestCreateAndUpdate() {
	ctx := context.Background()
	u := newUser("bob")
	s.Require().NoError(s.store.Create(ctx, u))

	s.Run("duplicate username conflicts", func() {
		s.ErrorIs(s.store.Create(ctx, newUser("BOB")), sentinel.ErrConflict)
	})

	s.Run("update persists and returned copies are isolated", func() {
		now := time.Now().UTC()
		u.IsAdmin = true
		u.LastLogin = &now
		s.Require().NoError(s.store.Update(ctx, u))

		found, err := s.store.FindByID(ctx, u.ID)
		s.Require().NoError(err)
		s.True(found.IsAdmin)
		found.IsAdmin = false

		again, err := s.store.FindByID(ctx, u.ID)
		s.Require().NoError(err)
		s.True(again.IsAdmin)
	})

	s.Run("update unknown is ErrNotFound", func() {
		s.ErrorIs(s.store.Update(ctx, newUser("ghost")), sentinel.ErrNotFound)
	})
}
