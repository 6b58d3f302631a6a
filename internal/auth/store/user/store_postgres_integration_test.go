//go:build integration

package user_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"kafkaportal/internal/auth/store/user"
	"kafkaportal/pkg/domain"
	"kafkaportal/pkg/platform/sentinel"
	"kafkaportal/pkg/testutil/containers"
)

type PostgresUserStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *user.PostgresUserStore
}

func TestPostgresUserStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresUserStoreSuite))
}

func (s *PostgresUserStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = user.NewPostgres(s.postgres.DB)
}

func (s *PostgresUserStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background()))
}

func (s *PostgresUserStoreSuite) TestRoundTrip() {
	ctx := context.Background()
	u := &domain.User{
		ID:        domain.NewUserID(),
		Username:  "Jane",
		Email:     "jane@company.com",
		IsActive:  true,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
	s.Require().NoError(s.store.Create(ctx, u))
	s.ErrorIs(s.store.Create(ctx, &domain.User{ID: domain.NewUserID(), Username: "jane", Email: "x", CreatedAt: u.CreatedAt}), sentinel.ErrConflict)

	found, err := s.store.FindByUsername(ctx, "JANE")
	s.Require().NoError(err)
	s.Equal(u.ID, found.ID)
	s.Nil(found.LastLogin)

	login := time.Now().UTC().Truncate(time.Microsecond)
	found.IsAdmin = true
	found.LastLogin = &login
	s.Require().NoError(s.store.Update(ctx, found))

	again, err := s.store.FindByID(ctx, u.ID)
	s.Require().NoError(err)
	s.True(again.IsAdmin)
	s.True(login.Equal(*again.LastLogin))

	_, err = s.store.FindByID(ctx, domain.NewUserID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}
