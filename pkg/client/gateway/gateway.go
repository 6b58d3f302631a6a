// Package gateway is the single HTTP entry point the portal clients share.
// It makes one attempt per call; retries and timeouts are the caller's
// business.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"kafkaportal/pkg/domain"
	dErrors "kafkaportal/pkg/domain-errors"
)

// TokenSource supplies the bearer token for authenticated calls.
type TokenSource interface {
	Token() (string, bool)
}

// UnauthorizedHandler is implemented by token sources that want to drop
// their state when the server answers 401.
type UnauthorizedHandler interface {
	HandleUnauthorized()
}

// Options describes one call. A nil Body sends no payload.
type Options struct {
	Method  string
	Body    any
	Headers map[string]string
}

// CallResult carries response metadata that is not part of the body.
type CallResult struct {
	StatusCode int
	ETag       string
}

type Client struct {
	baseURL *url.URL
	http    *http.Client
	tokens  TokenSource
	logger  *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid portal base url %q", baseURL)
	}
	c := &Client{baseURL: u, http: http.DefaultClient, logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// WithAuth returns a copy of c that attaches tokens from src.
func (c *Client) WithAuth(src TokenSource) *Client {
	cp := *c
	cp.tokens = src
	return &cp
}

// Call sends one request and decodes a 2xx body into out. out may be nil,
// and an empty body leaves it untouched.
func (c *Client) Call(ctx context.Context, path string, opts Options, out any) (*CallResult, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if opts.Body != nil {
		b, err := json.Marshal(opts.Body)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeRequestFailed, "failed to encode request body")
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, body)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeRequestFailed, "failed to build request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token, ok := c.tokens.Token(); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "portal call failed",
			"method", method,
			"path", path,
			"error", err,
		)
		return nil, dErrors.Wrap(err, dErrors.CodeRequestFailed, "request failed")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeRequestFailed, "failed to read response")
	}
	result := &CallResult{StatusCode: resp.StatusCode, ETag: resp.Header.Get("ETag")}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if resp.StatusCode == http.StatusUnauthorized {
			if h, ok := c.tokens.(UnauthorizedHandler); ok {
				h.HandleUnauthorized()
			}
		}
		return result, errorFromResponse(resp.StatusCode, raw)
	}

	if out != nil && len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return result, dErrors.Wrap(err, dErrors.CodeRequestFailed, "failed to decode response")
		}
	}
	return result, nil
}

func (c *Client) Get(ctx context.Context, path string, out any) error {
	_, err := c.Call(ctx, path, Options{Method: http.MethodGet}, out)
	return err
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	_, err := c.Call(ctx, path, Options{Method: http.MethodPost, Body: body}, out)
	return err
}

func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	_, err := c.Call(ctx, path, Options{Method: http.MethodPatch, Body: body}, out)
	return err
}

func (c *Client) Delete(ctx context.Context, path string) error {
	_, err := c.Call(ctx, path, Options{Method: http.MethodDelete}, nil)
	return err
}

// errorFromResponse maps a non-2xx status to the client error taxonomy. The
// message is the server's detail, or "HTTP <status>" without one.
func errorFromResponse(status int, raw []byte) error {
	msg := fmt.Sprintf("HTTP %d", status)
	var envelope domain.ErrorBody
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Detail != "" {
		msg = envelope.Detail
	}
	return &StatusError{Status: status, Err: dErrors.New(codeForStatus(status), msg)}
}

func codeForStatus(status int) dErrors.Code {
	switch status {
	case http.StatusUnauthorized:
		return dErrors.CodeUnauthorized
	case http.StatusForbidden:
		return dErrors.CodeForbidden
	case http.StatusNotFound:
		return dErrors.CodeNotFound
	case http.StatusConflict, http.StatusPreconditionFailed:
		return dErrors.CodeConflict
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return dErrors.CodeValidation
	default:
		return dErrors.CodeRequestFailed
	}
}

// StatusError keeps the HTTP status alongside the mapped domain error.
type StatusError struct {
	Status int
	Err    *dErrors.Error
}

func (e *StatusError) Error() string { return e.Err.Error() }
func (e *StatusError) Unwrap() error { return e.Err }

// StatusOf returns the HTTP status behind err, or zero for transport and
// client-side failures.
func StatusOf(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status
	}
	return 0
}
