package audit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kafkaportal/internal/audit/metrics"
	"kafkaportal/pkg/domain"
)

type recordingPublisher struct {
	mu      sync.Mutex
	entries []domain.AuditEntry
	failOn  domain.AuditAction
}

func (p *recordingPublisher) Publish(_ context.Context, entry domain.AuditEntry) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if entry.Action == p.failOn {
		return errors.New("broker down")
	}
	p.entries = append(p.entries, entry)
	return nil
}

func TestWorkerDrainsUntilClosed(t *testing.T) {
	inbox := make(chan domain.AuditEntry, 3)
	pub := &recordingPublisher{failOn: domain.AuditUserLogout}
	m := metrics.New(prometheus.NewRegistry())
	w := NewWorker(pub, inbox, slog.New(slog.NewTextHandler(io.Discard, nil)), m)

	inbox <- domain.AuditEntry{Action: domain.AuditUserLogin}
	inbox <- domain.AuditEntry{Action: domain.AuditUserLogout}
	inbox <- domain.AuditEntry{Action: domain.AuditRequestCreated}
	close(inbox)

	require.NoError(t, w.Run(context.Background()))
	assert.Len(t, pub.entries, 2)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PublishFailures))
}

func TestWorkerStopsOnCancel(t *testing.T) {
	inbox := make(chan domain.AuditEntry)
	w := NewWorker(&recordingPublisher{}, inbox, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
