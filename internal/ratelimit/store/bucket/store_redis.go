package bucket

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"kafkaportal/internal/ratelimit/models"
)

const bucketKeyPrefix = "portal:rl:"

// RedisBucketStore keeps each window as a sorted set of attempt timestamps.
// Denied attempts are removed again so they do not extend the lockout.
type RedisBucketStore struct {
	client *redis.Client
	now    func() time.Time
}

func NewRedisBucketStore(client *redis.Client) *RedisBucketStore {
	return &RedisBucketStore{client: client, now: time.Now}
}

func (s *RedisBucketStore) Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.RateLimitResult, error) {
	now := s.now()
	rkey := bucketKeyPrefix + key
	member := strconv.FormatInt(now.UnixNano(), 10) + "-" + uuid.NewString()
	cutoff := strconv.FormatInt(now.Add(-window).UnixMilli(), 10)

	var (
		card   *redis.IntCmd
		oldest *redis.ZSliceCmd
	)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRemRangeByScore(ctx, rkey, "-inf", cutoff)
		pipe.ZAdd(ctx, rkey, redis.Z{Score: float64(now.UnixMilli()), Member: member})
		card = pipe.ZCard(ctx, rkey)
		oldest = pipe.ZRangeWithScores(ctx, rkey, 0, 0)
		pipe.PExpire(ctx, rkey, window)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("rate limit window %s: %w", key, err)
	}

	count := int(card.Val())
	resetAt := now.Add(window)
	if zs := oldest.Val(); len(zs) > 0 {
		resetAt = time.UnixMilli(int64(zs[0].Score)).Add(window)
	}

	if count > limit {
		if err := s.client.ZRem(ctx, rkey, member).Err(); err != nil {
			return nil, fmt.Errorf("rate limit rollback %s: %w", key, err)
		}
		return &models.RateLimitResult{Allowed: false, Limit: limit, Remaining: 0, ResetAt: resetAt}, nil
	}
	return &models.RateLimitResult{Allowed: true, Limit: limit, Remaining: limit - count, ResetAt: resetAt}, nil
}

func (s *RedisBucketStore) Reset(ctx context.Context, key string) error {
	return s.client.Del(ctx, bucketKeyPrefix+key).Err()
}

// GetCurrentCount includes attempts not yet trimmed by a later Allow.
func (s *RedisBucketStore) GetCurrentCount(ctx context.Context, key string) (int, error) {
	n, err := s.client.ZCard(ctx, bucketKeyPrefix+key).Result()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
