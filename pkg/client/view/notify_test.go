package view

import (
	"testing"

	"github.com/stretchr/testify/assert"

	dErrors "kafkaportal/pkg/domain-errors"
)

func TestToastsKeepsMostRecent(t *testing.T) {
	toasts := NewToasts(2)
	toasts.Notify(Notification{Level: LevelInfo, Message: "one"})
	toasts.Notify(Notification{Level: LevelInfo, Message: "two"})
	toasts.Notify(Notification{Level: LevelInfo, Message: "three"})

	items := toasts.Items()
	if assert.Len(t, items, 2) {
		assert.Equal(t, "two", items[0].Message)
		assert.False(t, items[1].At.IsZero())
	}
	assert.Len(t, toasts.Drain(), 2)
	assert.Empty(t, toasts.Items())
}

func TestNotifyFailureLevels(t *testing.T) {
	toasts := NewToasts(0)
	notifyFailure(toasts, "Save", dErrors.New(dErrors.CodeValidation, "name is required"))
	notifyFailure(toasts, "Save", dErrors.New(dErrors.CodeConflict, "request is already approved"))

	items := toasts.Items()
	assert.Equal(t, LevelWarning, items[0].Level)
	assert.Equal(t, "Save: name is required", items[0].Message)
	assert.Equal(t, LevelError, items[1].Level)
}
