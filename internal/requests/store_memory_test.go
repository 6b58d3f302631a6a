package requests

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kafkaportal/pkg/domain"
	dErrors "kafkaportal/pkg/domain-errors"
	"kafkaportal/pkg/platform/sentinel"
)

func newPending(t *testing.T, requester domain.UserID, at time.Time) *domain.Request {
	t.Helper()
	req, err := domain.NewRequest(domain.NewRequestID(), requester, "alice",
		&domain.TopicDetails{TopicName: "orders", Partitions: 1, ReplicationFactor: 1},
		"needed for the orders service", at)
	require.NoError(t, err)
	return req
}

func TestInMemoryStoreListing(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	alice, bob := domain.NewUserID(), domain.NewUserID()
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	first := newPending(t, alice, base)
	second := newPending(t, alice, base.Add(time.Minute))
	other := newPending(t, bob, base.Add(2*time.Minute))
	for _, r := range []*domain.Request{first, second, other} {
		require.NoError(t, store.Create(ctx, r))
	}
	assert.ErrorIs(t, store.Create(ctx, first), sentinel.ErrConflict)

	own, err := store.ListByRequester(ctx, alice)
	require.NoError(t, err)
	require.Len(t, own, 2)
	assert.Equal(t, second.ID, own[0].ID, "newest first")

	all, err := store.ListAll(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	approved, err := store.ListAll(ctx, []domain.RequestStatus{domain.StatusApproved})
	require.NoError(t, err)
	assert.Empty(t, approved)

	_, err = store.FindByID(ctx, domain.NewRequestID())
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestInMemoryStoreExecute(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	req := newPending(t, domain.NewUserID(), time.Now())
	require.NoError(t, store.Create(ctx, req))
	admin := domain.NewUserID()

	t.Run("failed callback leaves the stored request untouched", func(t *testing.T) {
		_, err := store.Execute(ctx, req.ID, func(_ context.Context, r *domain.Request) error {
			r.ApplyApproval(admin, time.Now())
			return errors.New("provisioning failed")
		})
		require.Error(t, err)

		got, err := store.FindByID(ctx, req.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusPending, got.Status)
		assert.Equal(t, 1, got.Version)
	})

	t.Run("inconsistent result is refused", func(t *testing.T) {
		_, err := store.Execute(ctx, req.ID, func(_ context.Context, r *domain.Request) error {
			r.Status = domain.StatusRejected
			return nil
		})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("concurrent approvals have exactly one winner", func(t *testing.T) {
		var (
			wg        sync.WaitGroup
			successes atomic.Int32
			conflicts atomic.Int32
		)
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := store.Execute(ctx, req.ID, func(_ context.Context, r *domain.Request) error {
					return r.Approve(admin, time.Now())
				})
				switch {
				case err == nil:
					successes.Add(1)
				case dErrors.HasCode(err, dErrors.CodeConflict):
					conflicts.Add(1)
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(1), successes.Load())
		assert.Equal(t, int32(15), conflicts.Load())

		got, err := store.FindByID(ctx, req.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, got.Version)
	})
}
