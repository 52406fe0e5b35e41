package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "provider-directory/internal/common/errors"
)

const keyPrefix = "chat:ratelimit:"

// RedisLimiter counts requests in fixed windows shared by every replica.
// The window starts with the first request for a key. Needs Redis 7 for
// EXPIRE NX.
type RedisLimiter struct {
	client redis.Cmdable
	limit  int
	window time.Duration
}

func NewRedisLimiter(client redis.Cmdable, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, limit: limit, window: window}
}

// Allow fails open: when redis is unreachable the request goes through and
// the error is returned for logging.
func (r *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := keyPrefix + key

	var count *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		count = pipe.Incr(ctx, redisKey)
		// NX arms only a key without expiry, so a window never outlives itself
		pipe.ExpireNX(ctx, redisKey, r.window)
		return nil
	})
	if err != nil {
		return true, apperrors.NewRedisConnectionFailedError(fmt.Errorf("count %s: %w", redisKey, err))
	}
	return count.Val() <= int64(r.limit), nil
}
