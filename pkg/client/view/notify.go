// Package view holds the state behind the portal screens. View models
// re-fetch after every mutation and never hold data the server has not
// confirmed.
package view

import (
	"sync"
	"time"

	dErrors "kafkaportal/pkg/domain-errors"
)

type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

type Notification struct {
	Level   Level
	Message string
	At      time.Time
}

// Notifier receives user-facing messages from the view models.
type Notifier interface {
	Notify(n Notification)
}

// Toasts keeps the most recent notifications in memory.
type Toasts struct {
	mu    sync.Mutex
	max   int
	items []Notification
}

// NewToasts keeps at most max notifications; zero means 20.
func NewToasts(max int) *Toasts {
	if max <= 0 {
		max = 20
	}
	return &Toasts{max: max}
}

func (t *Toasts) Notify(n Notification) {
	if n.At.IsZero() {
		n.At = time.Now()
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.items = append(t.items, n)
	if over := len(t.items) - t.max; over > 0 {
		t.items = t.items[over:]
	}
}

// Items returns the pending notifications, oldest first.
func (t *Toasts) Items() []Notification {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Notification(nil), t.items...)
}

// Drain returns and forgets the pending notifications.
func (t *Toasts) Drain() []Notification {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := t.items
	t.items = nil
	return out
}

type discard struct{}

func (discard) Notify(Notification) {}

func orDiscard(n Notifier) Notifier {
	if n == nil {
		return discard{}
	}
	return n
}

// notifyFailure turns err into a notification. Validation problems are the
// user's to fix and read as warnings.
func notifyFailure(n Notifier, action string, err error) {
	level := LevelError
	if dErrors.HasCode(err, dErrors.CodeValidation) {
		level = LevelWarning
	}
	n.Notify(Notification{Level: level, Message: action + ": " + dErrors.Message(err)})
}
