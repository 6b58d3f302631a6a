package audit

import (
	"context"
	"log/slog"

	"kafkaportal/internal/audit/metrics"
	"kafkaportal/pkg/domain"
)

// Publisher mirrors an entry to an external sink.
type Publisher interface {
	Publish(ctx context.Context, entry domain.AuditEntry) error
}

// Worker drains the outbox channel into a Publisher. Publish failures are
// logged and counted; the stored entry is unaffected.
type Worker struct {
	publisher Publisher
	inbox     <-chan domain.AuditEntry
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

func NewWorker(publisher Publisher, inbox <-chan domain.AuditEntry, logger *slog.Logger, m *metrics.Metrics) *Worker {
	return &Worker{publisher: publisher, inbox: inbox, logger: logger, metrics: m}
}

// Run blocks until ctx is done or the inbox is closed.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case entry, ok := <-w.inbox:
			if !ok {
				return nil
			}
			if err := w.publisher.Publish(ctx, entry); err != nil {
				w.metrics.IncrementPublishFailures()
				w.logger.WarnContext(ctx, "failed to publish audit entry",
					"audit_id", entry.ID,
					"action", entry.Action,
					"error", err,
				)
			}
		}
	}
}
