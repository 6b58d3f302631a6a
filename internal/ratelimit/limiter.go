// Package ratelimit throttles login attempts per username and client IP.
package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"kafkaportal/internal/ratelimit/metrics"
	"kafkaportal/internal/ratelimit/models"
	dErrors "kafkaportal/pkg/domain-errors"
	"kafkaportal/pkg/requestcontext"
)

// BucketStore counts attempts in a sliding window.
type BucketStore interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.RateLimitResult, error)
}

// LoginLimiter allows limit attempts per window for each username and IP
// pair, counting successful and failed logins alike. A store failure lets
// the attempt through so a Redis outage does not lock everyone out.
type LoginLimiter struct {
	store   BucketStore
	limit   int
	window  time.Duration
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*LoginLimiter)

func WithLogger(logger *slog.Logger) Option {
	return func(l *LoginLimiter) { l.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(l *LoginLimiter) { l.metrics = m }
}

func NewLoginLimiter(store BucketStore, limit int, window time.Duration, opts ...Option) (*LoginLimiter, error) {
	if store == nil {
		return nil, fmt.Errorf("bucket store is required")
	}
	if limit <= 0 || window <= 0 {
		return nil, fmt.Errorf("limit and window must be positive")
	}
	l := &LoginLimiter{store: store, limit: limit, window: window, logger: slog.Default()}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

func loginKey(username, ip string) string {
	return "login:" + strings.ToLower(strings.TrimSpace(username)) + ":" + ip
}

// Check records an attempt and returns CodeRateLimited once the window is
// full.
func (l *LoginLimiter) Check(ctx context.Context, username, ip string) error {
	result, err := l.store.Allow(ctx, loginKey(username, ip), l.limit, l.window)
	if err != nil {
		l.logger.WarnContext(ctx, "login rate limit check failed, allowing attempt",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		return nil
	}
	if !result.Allowed {
		l.metrics.IncrementDenied()
		retry := result.RetryAfter(requestcontext.Now(ctx))
		l.logger.WarnContext(ctx, "login rate limited",
			"request_id", requestcontext.RequestID(ctx),
			"username", username,
			"ip", ip,
			"retry_after_s", int(retry.Seconds()),
		)
		return dErrors.Newf(dErrors.CodeRateLimited, "too many login attempts, retry in %ds", int(retry.Seconds())+1)
	}
	l.metrics.IncrementAllowed()
	return nil
}
