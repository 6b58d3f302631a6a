package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "kafkaportal/pkg/domain-errors"
)

type staticToken struct {
	token        string
	unauthorized int
}

func (s *staticToken) Token() (string, bool) { return s.token, s.token != "" }
func (s *staticToken) HandleUnauthorized()    { s.unauthorized++ }

func TestCallAttachesTokenAndDecodes(t *testing.T) {
	var gotAuth, gotContentType, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		gotBody = body["name"]
		w.Header().Set("ETag", `"3"`)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"name":"orders"}`))
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)
	c = c.WithAuth(&staticToken{token: "tok"})

	var out struct {
		Name string `json:"name"`
	}
	res, err := c.Call(context.Background(), "/api/kafka/topics", Options{Method: http.MethodPost, Body: map[string]string{"name": "orders"}}, &out)
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, "orders", gotBody)
	assert.Equal(t, "orders", out.Name)
	assert.Equal(t, `"3"`, res.ETag)
	assert.Equal(t, http.StatusCreated, res.StatusCode)
}

func TestCallWithoutTokenSendsNoAuthorization(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, c.Get(context.Background(), "/health", &out))
	assert.Nil(t, out)
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		status  int
		body    string
		code    dErrors.Code
		message string
	}{
		{http.StatusUnauthorized, `{"detail":"Not authenticated"}`, dErrors.CodeUnauthorized, "Not authenticated"},
		{http.StatusForbidden, `{"detail":"Admin privileges required"}`, dErrors.CodeForbidden, "Admin privileges required"},
		{http.StatusNotFound, `{"detail":"Request not found"}`, dErrors.CodeNotFound, "Request not found"},
		{http.StatusConflict, `{"detail":"request is already approved"}`, dErrors.CodeConflict, "request is already approved"},
		{http.StatusUnprocessableEntity, `{"detail":"rationale too short"}`, dErrors.CodeValidation, "rationale too short"},
		{http.StatusInternalServerError, `<html>oops</html>`, dErrors.CodeRequestFailed, "HTTP 500"},
		{http.StatusBadGateway, `{"detail":"Kafka cluster unavailable"}`, dErrors.CodeRequestFailed, "Kafka cluster unavailable"},
	}
	for _, tc := range cases {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			c, err := New(srv.URL)
			require.NoError(t, err)
			err = c.Get(context.Background(), "/x", nil)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, tc.code), "got %v", err)
			assert.Equal(t, tc.message, dErrors.Message(err))
			assert.Equal(t, tc.status, StatusOf(err))
		})
	}
}

func TestUnauthorizedNotifiesTokenSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	src := &staticToken{token: "expired"}
	c, err := New(srv.URL)
	require.NoError(t, err)
	err = c.WithAuth(src).Get(context.Background(), "/api/user/me", nil)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	assert.Equal(t, 1, src.unauthorized)
}

func TestTransportFailureIsRequestFailed(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(url)
	require.NoError(t, err)
	err = c.Get(context.Background(), "/health", nil)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeRequestFailed))
	assert.Zero(t, StatusOf(err))
}

func TestNewRejectsRelativeURL(t *testing.T) {
	_, err := New("localhost:8000")
	assert.Error(t, err)
}
