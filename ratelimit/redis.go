package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisSlidingWindow is a distributed sliding-window limiter backed by a
// per-key sorted set of request timestamps. All replicas sharing the Redis
// instance observe the same window, which matters once the orchestrator
// runs behind more than one process.
type RedisSlidingWindow struct {
	client    *redis.Client
	keyPrefix string
	limit     int
	window    time.Duration
	logger    *slog.Logger
}

func NewRedisSlidingWindow(client *redis.Client, keyPrefix string, limit int, window time.Duration, logger *slog.Logger) *RedisSlidingWindow {
	if keyPrefix == "" {
		keyPrefix = "ratelimit:"
	}
	return &RedisSlidingWindow{
		client:    client,
		keyPrefix: keyPrefix,
		limit:     limit,
		window:    window,
		logger:    logger,
	}
}

var slidingWindowScript = redis.NewScript(`
	local key = KEYS[1]
	local limit = tonumber(ARGV[1])
	local window_us = tonumber(ARGV[2])
	local now_us = tonumber(ARGV[3])

	redis.call('ZREMRANGEBYSCORE', key, 0, now_us - window_us)

	local count = redis.call('ZCARD', key)
	if count >= limit then
		return 0
	end

	redis.call('ZADD', key, now_us, now_us)
	redis.call('PEXPIRE', key, math.ceil(window_us / 1000))
	return 1
`)

// Allow runs the window check atomically in Redis. On a transport error
// the limiter fails open: rejecting every start operation because Redis
// blipped would be worse than briefly admitting extra requests.
func (r *RedisSlidingWindow) Allow(key string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	nowMicro := time.Now().UnixMicro()
	res, err := slidingWindowScript.Run(ctx, r.client,
		[]string{r.keyPrefix + key},
		r.limit, r.window.Microseconds(), nowMicro,
	).Int64()
	if err != nil {
		r.logger.Warn("rate limiter redis call failed, allowing request",
			slog.String("key", key), slog.Any("error", err))
		return true
	}
	return res == 1
}

// Reset clears the recorded window for the key.
func (r *RedisSlidingWindow) Reset(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to reset rate limit key %s: %w", key, err)
	}
	return nil
}
