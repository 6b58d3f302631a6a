package httputil

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"kafkaportal/pkg/domain"
	dErrors "kafkaportal/pkg/domain-errors"
)

func TestWriteError(t *testing.T) {
	t.Run("internal error hides the message", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeInternal, "db failed"))

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
		}

		var body domain.ErrorBody
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body.Detail != "internal server error" {
			t.Fatalf("expected generic detail, got %q", body.Detail)
		}
	})

	t.Run("conflict includes detail", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeConflict, "request is already approved"))

		if w.Code != http.StatusConflict {
			t.Fatalf("expected status %d, got %d", http.StatusConflict, w.Code)
		}

		var body domain.ErrorBody
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body.Code != "conflict" || body.Detail != "request is already approved" {
			t.Fatalf("unexpected body %+v", body)
		}
	})

	t.Run("uncoded errors are internal", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, io.ErrUnexpectedEOF)
		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
		}
	})
}

type rejectDTO struct {
	Reason string `json:"rejection_reason"`
}

func (d *rejectDTO) Normalize() { d.Reason = strings.TrimSpace(d.Reason) }

func (d *rejectDTO) Validate() error {
	if d.Reason == "" {
		return dErrors.New(dErrors.CodeValidation, "rejection_reason is required")
	}
	return nil
}

func TestDecodeAndPrepare(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("normalizes before validating", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(`{"rejection_reason":"  budget cut "}`))
		w := httptest.NewRecorder()
		dto, ok := DecodeAndPrepare[rejectDTO](w, r, logger, r.Context(), "req-1")
		if !ok {
			t.Fatalf("expected success, got status %d", w.Code)
		}
		if dto.Reason != "budget cut" {
			t.Fatalf("expected trimmed reason, got %q", dto.Reason)
		}
	})

	t.Run("validation failure is 422", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(`{"rejection_reason":"   "}`))
		w := httptest.NewRecorder()
		if _, ok := DecodeAndPrepare[rejectDTO](w, r, logger, r.Context(), "req-2"); ok {
			t.Fatalf("expected failure")
		}
		if w.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", w.Code)
		}
	})

	t.Run("malformed JSON is 400", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(`{`))
		w := httptest.NewRecorder()
		if _, ok := DecodeAndPrepare[rejectDTO](w, r, logger, r.Context(), "req-3"); ok {
			t.Fatalf("expected failure")
		}
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})
}
