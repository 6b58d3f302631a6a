package httpserver

import (
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	h := http.NotFoundHandler()

	s := New(":8000", h)
	assert.Equal(t, ":8000", s.Addr)
	assert.Equal(t, 30*time.Second, s.WriteTimeout)
	assert.Nil(t, s.ErrorLog)

	s = New(":8000", h, WithWriteTimeout(time.Minute), WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	assert.Equal(t, time.Minute, s.WriteTimeout)
	assert.NotNil(t, s.ErrorLog)
}
