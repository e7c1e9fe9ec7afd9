package ratelimiter

import (
	"context"
	"fmt"
	"time"

	"querywise/internal/config"

	"github.com/go-redis/redis/v8"
)

// 支持的限流算法。
const (
	AlgorithmTokenBucket      = "tokenBucket"
	AlgorithmRedisFixedWindow = "redisFixedWindow"
)

// RateLimiter is the interface for rate limiting.
// Allow reports whether one more request may proceed. An error means the
// limiter itself could not decide.
type RateLimiter interface {
	Allow(ctx context.Context) (bool, error)
}

// New builds the limiter selected by cfg.Algorithm. rdb is only used by the
// Redis-backed algorithm and may be nil otherwise.
func New(cfg config.RateLimiterConfig, rdb *redis.Client) (RateLimiter, error) {
	switch cfg.Algorithm {
	case "", AlgorithmTokenBucket:
		conf := cfg.TokenBucket
		if conf.Rate <= 0 || conf.Capacity <= 0 {
			return nil, fmt.Errorf("tokenBucket needs positive rate and capacity, got %v/%d", conf.Rate, conf.Capacity)
		}
		return NewTokenBucket(conf.Rate, conf.Capacity), nil
	case AlgorithmRedisFixedWindow:
		if rdb == nil {
			return nil, fmt.Errorf("redisFixedWindow needs a redis client")
		}
		conf := cfg.FixedWindow
		window, err := time.ParseDuration(conf.Window)
		if err != nil {
			return nil, fmt.Errorf("invalid fixedWindow duration: %w", err)
		}
		return NewRedisFixedWindow(rdb, conf.Key, conf.Limit, window), nil
	default:
		return nil, fmt.Errorf("unknown rate limiter algorithm: %s", cfg.Algorithm)
	}
}
