package api

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisThrottle counts attempts per key in Redis so all instances share one
// limit. The counter expires after the window; a successful attempt resets
// it early.
type RedisThrottle struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

// NewRedisThrottle creates a throttle allowing limit attempts per window.
func NewRedisThrottle(client *redis.Client, limit int64, window time.Duration) *RedisThrottle {
	return &RedisThrottle{client: client, limit: limit, window: window}
}

func (r *RedisThrottle) key(key string) string {
	return fmt.Sprintf("throttle:%s", key)
}

// Allow records one attempt and reports whether the key stays under the
// limit. The window TTL is set when the counter is first created so a
// steady stream of attempts cannot keep the counter alive forever.
func (r *RedisThrottle) Allow(ctx context.Context, key string) (bool, error) {
	k := r.key(key)
	var count *redis.IntCmd
	_, err := r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		count = pipe.Incr(ctx, k)
		pipe.ExpireNX(ctx, k, r.window)
		return nil
	})
	if err != nil {
		return false, err
	}
	return count.Val() <= r.limit, nil
}

// Reset clears the attempt counter for a key.
func (r *RedisThrottle) Reset(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.key(key)).Err()
}
