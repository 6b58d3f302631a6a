package view_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kafkaportal/pkg/client/gateway"
	"kafkaportal/pkg/client/internal/portaltest"
	"kafkaportal/pkg/client/session"
	"kafkaportal/pkg/client/view"
	"kafkaportal/pkg/client/workflow"
	"kafkaportal/pkg/domain"
	dErrors "kafkaportal/pkg/domain-errors"
)

func TestRequestForm(t *testing.T) {
	ctx := context.Background()
	portal := portaltest.Start(t)

	gw, err := gateway.New(portal.URL)
	require.NoError(t, err)
	store, err := session.NewStore(gw, nil)
	require.NoError(t, err)
	_, err = store.Login(ctx, "erin", "pw")
	require.NoError(t, err)

	toasts := view.NewToasts(0)
	form := view.NewRequestForm(workflow.New(store.Gateway(), store), toasts)

	t.Run("field errors warn without a request", func(t *testing.T) {
		portal.ResetCalls()
		_, err := form.SubmitTopic(ctx, domain.TopicDetails{TopicName: "orders", Partitions: 0, ReplicationFactor: 1}, "new orders topic please")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		_, err = form.SubmitACL(ctx, domain.ACLDetails{Principal: "User:erin", ResourceType: "TOPIC", ResourceName: "orders", Operation: "READ"}, "short")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))

		assert.Empty(t, portal.Calls())
		for _, n := range toasts.Drain() {
			assert.Equal(t, view.LevelWarning, n.Level)
		}
	})

	t.Run("valid topic request is submitted", func(t *testing.T) {
		req, err := form.SubmitTopic(ctx, domain.TopicDetails{TopicName: "orders", Partitions: 3, ReplicationFactor: 1}, "new orders topic please")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusPending, req.Status)

		items := toasts.Drain()
		require.Len(t, items, 1)
		assert.Equal(t, view.LevelSuccess, items[0].Level)
	})
}
