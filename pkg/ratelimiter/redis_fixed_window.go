package ratelimiter

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// counterStore is the subset of *redis.Client used by RedisFixedWindow.
type counterStore interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// RedisFixedWindow shares one counter per window across every instance that
// points at the same Redis, so the limit holds for the whole deployment.
type RedisFixedWindow struct {
	store  counterStore
	prefix string
	limit  int64
	window time.Duration
	now    func() time.Time
}

// NewRedisFixedWindow allows limit requests per window. Keys are
// "<prefix>:<window index>" and expire with their window.
func NewRedisFixedWindow(rdb *redis.Client, prefix string, limit int, window time.Duration) *RedisFixedWindow {
	return newRedisFixedWindow(rdb, prefix, limit, window, time.Now)
}

func newRedisFixedWindow(store counterStore, prefix string, limit int, window time.Duration, now func() time.Time) *RedisFixedWindow {
	if prefix == "" {
		prefix = "querywise:ratelimit"
	}
	return &RedisFixedWindow{
		store:  store,
		prefix: prefix,
		limit:  int64(limit),
		window: window,
		now:    now,
	}
}

// Allow increments the current window's counter.
func (r *RedisFixedWindow) Allow(ctx context.Context) (bool, error) {
	key := r.key(r.now())

	count, err := r.store.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("incr %s: %w", key, err)
	}
	if count == 1 {
		if err := r.store.Expire(ctx, key, r.window).Err(); err != nil {
			return false, fmt.Errorf("expire %s: %w", key, err)
		}
	}
	return count <= r.limit, nil
}

func (r *RedisFixedWindow) key(t time.Time) string {
	return r.prefix + ":" + strconv.FormatInt(t.UnixNano()/int64(r.window), 10)
}
