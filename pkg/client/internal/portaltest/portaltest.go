// Package portaltest runs a full in-memory portal behind httptest for the
// client packages' tests.
package portaltest

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"kafkaportal/internal/app"
	"kafkaportal/internal/broker"
	"kafkaportal/pkg/testutil"
)

// Portal is a running in-memory portal. Calls records every request path the
// server saw, so tests can assert that a client stayed off the network.
type Portal struct {
	URL     string
	Cluster *broker.InMemoryAdmin

	mu    sync.Mutex
	calls []string
}

// Start serves a fresh portal until the test ends.
func Start(t testing.TB) *Portal {
	t.Helper()
	p := &Portal{Cluster: broker.NewInMemoryAdmin()}
	a, err := app.New(context.Background(), testutil.PortalConfig(), slog.New(slog.NewTextHandler(io.Discard, nil)), app.WithBrokerAdmin(p.Cluster))
	require.NoError(t, err)

	handler := a.Handler()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p.mu.Lock()
		p.calls = append(p.calls, r.Method+" "+r.URL.Path)
		p.mu.Unlock()
		handler.ServeHTTP(w, r)
	}))
	t.Cleanup(func() {
		srv.Close()
		_ = a.Close()
	})
	p.URL = srv.URL
	return p
}

// Calls returns the requests seen so far as "METHOD /path".
func (p *Portal) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.calls...)
}

// ResetCalls forgets the recorded requests.
func (p *Portal) ResetCalls() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = nil
}
