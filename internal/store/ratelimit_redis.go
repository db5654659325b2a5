package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RateLimitRedis is a Redis-backed implementation of ratelimit.Store using
// a sorted set per key, scored by timestamp.
type RateLimitRedis struct {
	client *redis.Client
	prefix string
}

// NewRateLimitRedis creates a new Redis-backed rate limit store.
func NewRateLimitRedis(client *redis.Client) *RateLimitRedis {
	return &RateLimitRedis{
		client: client,
		prefix: "ratelimit:",
	}
}

// Record adds the current request to the key's window and returns the
// number of requests still inside it.
func (s *RateLimitRedis) Record(ctx context.Context, key string, window time.Duration) (int64, error) {
	now := time.Now()
	cutoff := now.Add(-window)
	redisKey := s.prefix + key

	pipe := s.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "0", fmt.Sprintf("%d", cutoff.UnixNano()))
	pipe.ZAdd(ctx, redisKey, redis.Z{
		Score: float64(now.UnixNano()),
		// Member must be unique per request so concurrent hits in the
		// same nanosecond are all counted.
		Member: uuid.NewString(),
	})
	count := pipe.ZCard(ctx, redisKey)
	pipe.Expire(ctx, redisKey, window)

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}

	return count.Val(), nil
}
