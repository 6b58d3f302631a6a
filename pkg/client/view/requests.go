package view

//go:generate mockgen -source=requests.go -destination=mocks/requests-mocks.go -package=mocks RequestSource

import (
	"context"
	"strings"
	"sync"

	"kafkaportal/pkg/client/workflow"
	"kafkaportal/pkg/domain"
	dErrors "kafkaportal/pkg/domain-errors"
)

// RequestSource is the part of the workflow client the dashboards use.
type RequestSource interface {
	ListOwnRequests(ctx context.Context) ([]*domain.Request, error)
	ListAllRequests(ctx context.Context, status *domain.RequestStatus) ([]*domain.Request, error)
	Approve(ctx context.Context, id domain.RequestID, opts ...workflow.DecisionOption) (*domain.Request, error)
	Reject(ctx context.Context, id domain.RequestID, reason string, opts ...workflow.DecisionOption) (*domain.Request, error)
}

type BoardState struct {
	Requests []*domain.Request
	Counts   domain.StatusCounts
	Filter   *domain.RequestStatus
}

// RequestBoard is the user dashboard, or the admin review queue when admin
// is set.
type RequestBoard struct {
	source   RequestSource
	notifier Notifier
	admin    bool

	mu    sync.RWMutex
	state BoardState
}

func NewRequestBoard(source RequestSource, notifier Notifier, admin bool) *RequestBoard {
	return &RequestBoard{source: source, notifier: orDiscard(notifier), admin: admin}
}

// SetFilter narrows the admin board to one status. It takes effect on the
// next Refresh.
func (b *RequestBoard) SetFilter(status *domain.RequestStatus) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state.Filter = status
}

func (b *RequestBoard) Refresh(ctx context.Context) error {
	b.mu.RLock()
	filter := b.state.Filter
	b.mu.RUnlock()

	var reqs []*domain.Request
	var err error
	if b.admin {
		reqs, err = b.source.ListAllRequests(ctx, filter)
	} else {
		reqs, err = b.source.ListOwnRequests(ctx)
	}
	if err != nil {
		notifyFailure(b.notifier, "Failed to load requests", err)
		return err
	}

	b.mu.Lock()
	b.state.Requests = reqs
	b.state.Counts = domain.CountByStatus(reqs)
	b.mu.Unlock()
	return nil
}

func (b *RequestBoard) State() BoardState {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.state
}

// Approve decides id at the version the board last showed, then reloads. On
// failure the shown list is left as it was.
func (b *RequestBoard) Approve(ctx context.Context, id domain.RequestID) error {
	_, err := b.source.Approve(ctx, id, b.shownVersion(id)...)
	return b.afterDecision(ctx, "Request approved", "Failed to approve request", err)
}

// Reject decides id with reason at the version the board last showed, then
// reloads. An empty reason is refused without contacting the server.
func (b *RequestBoard) Reject(ctx context.Context, id domain.RequestID, reason string) error {
	if strings.TrimSpace(reason) == "" {
		err := dErrors.New(dErrors.CodeValidation, "rejection reason is required")
		notifyFailure(b.notifier, "Failed to reject request", err)
		return err
	}
	_, err := b.source.Reject(ctx, id, reason, b.shownVersion(id)...)
	return b.afterDecision(ctx, "Request rejected", "Failed to reject request", err)
}

func (b *RequestBoard) afterDecision(ctx context.Context, success, failure string, err error) error {
	if err != nil {
		notifyFailure(b.notifier, failure, err)
		return err
	}
	b.notifier.Notify(Notification{Level: LevelSuccess, Message: success})
	return b.Refresh(ctx)
}

func (b *RequestBoard) shownVersion(id domain.RequestID) []workflow.DecisionOption {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, r := range b.state.Requests {
		if r.ID == id {
			return []workflow.DecisionOption{workflow.IfVersion(r.Version)}
		}
	}
	return nil
}
