package view

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"kafkaportal/pkg/domain"
)

// InventorySource is the part of the inventory client the browser reads.
type InventorySource interface {
	ListTopics(ctx context.Context) ([]domain.Topic, error)
	ListACLs(ctx context.Context) ([]domain.ACLEntry, error)
}

type InventoryState struct {
	Topics   []domain.Topic
	ACLs     []domain.ACLEntry
	LoadedAt time.Time
}

// InventoryView is the topic and ACL browser.
type InventoryView struct {
	source   InventorySource
	notifier Notifier

	mu    sync.RWMutex
	state InventoryState
}

func NewInventoryView(source InventorySource, notifier Notifier) *InventoryView {
	return &InventoryView{source: source, notifier: orDiscard(notifier)}
}

// Refresh loads topics and ACLs together. The shown state is replaced only
// when both succeed.
func (v *InventoryView) Refresh(ctx context.Context) error {
	var topics []domain.Topic
	var acls []domain.ACLEntry

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		topics, err = v.source.ListTopics(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		acls, err = v.source.ListACLs(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		notifyFailure(v.notifier, "Failed to load Kafka inventory", err)
		return err
	}

	v.mu.Lock()
	v.state = InventoryState{Topics: topics, ACLs: acls, LoadedAt: time.Now()}
	v.mu.Unlock()
	return nil
}

func (v *InventoryView) State() InventoryState {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.state
}
