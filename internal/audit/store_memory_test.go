package audit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kafkaportal/pkg/domain"
)

func TestInMemoryStoreList(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	actor := domain.NewUserID()
	other := domain.NewUserID()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		who := actor
		if i%2 == 1 {
			who = other
		}
		require.NoError(t, store.Append(ctx, domain.AuditEntry{
			ID:         domain.NewAuditEntryID(),
			ActorID:    who,
			Action:     domain.AuditTopicCreated,
			EntityType: domain.EntityTopic,
			EntityID:   string(rune('a' + i)),
			Timestamp:  base.Add(time.Duration(i) * time.Hour),
			Changes:    map[string]any{"n": i},
		}))
	}

	t.Run("newest first with paging", func(t *testing.T) {
		got, err := store.List(ctx, domain.AuditFilter{Limit: 2, Offset: 1})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "d", got[0].EntityID)
		assert.Equal(t, "c", got[1].EntityID)
	})

	t.Run("filters by actor and window", func(t *testing.T) {
		start := base.Add(time.Hour)
		end := base.Add(4 * time.Hour)
		got, err := store.List(ctx, domain.AuditFilter{Limit: 10, ActorID: &actor, StartDate: &start, EndDate: &end})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "e", got[0].EntityID)
		assert.Equal(t, "c", got[1].EntityID)
	})

	t.Run("offset past end is empty not nil", func(t *testing.T) {
		got, err := store.List(ctx, domain.AuditFilter{Limit: 10, Offset: 99})
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("returned entries are copies", func(t *testing.T) {
		got, err := store.List(ctx, domain.AuditFilter{Limit: 1})
		require.NoError(t, err)
		got[0].Changes["n"] = "mutated"

		again, err := store.List(ctx, domain.AuditFilter{Limit: 1})
		require.NoError(t, err)
		assert.Equal(t, 4, again[0].Changes["n"])
	})
}
