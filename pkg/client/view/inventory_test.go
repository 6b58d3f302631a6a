package view_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kafkaportal/pkg/client/gateway"
	"kafkaportal/pkg/client/inventory"
	"kafkaportal/pkg/client/view"
	dErrors "kafkaportal/pkg/domain-errors"
)

// flakyPortal serves one topic and one ACL until broken is set, then answers
// every call with a bare 500.
type flakyPortal struct {
	broken atomic.Bool
}

func (p *flakyPortal) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if p.broken.Load() {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("internal error"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/api/kafka/topics":
		_, _ = w.Write([]byte(`{"topics":[{"name":"orders","partitions":3,"replication_factor":1,"is_internal":false}]}`))
	case "/api/kafka/acls":
		_, _ = w.Write([]byte(`{"acls":[{"id":"abc","principal":"User:alice","resource_type":"TOPIC","resource_name":"orders","pattern_type":"LITERAL","operation":"READ","permission":"ALLOW","host":"*"}]}`))
	default:
		http.NotFound(w, r)
	}
}

func TestInventoryViewKeepsDataOnFailure(t *testing.T) {
	backend := &flakyPortal{}
	srv := httptest.NewServer(backend)
	defer srv.Close()

	gw, err := gateway.New(srv.URL)
	require.NoError(t, err)
	toasts := view.NewToasts(0)
	v := view.NewInventoryView(inventory.New(gw, nil), toasts)

	require.NoError(t, v.Refresh(context.Background()))
	before := v.State()
	require.Len(t, before.Topics, 1)
	require.Len(t, before.ACLs, 1)
	assert.Empty(t, toasts.Items())

	backend.broken.Store(true)
	err = v.Refresh(context.Background())
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeRequestFailed))

	after := v.State()
	assert.Equal(t, before, after)
	items := toasts.Items()
	require.Len(t, items, 1)
	assert.Equal(t, view.LevelError, items[0].Level)
	assert.Contains(t, items[0].Message, "HTTP 500")
}
