package redis

import (
	"querywise/internal/config"

	"github.com/go-redis/redis/v8"
)

// NewClient 创建一个 Redis 客户端，仅用于分布式限流计数。
// 连接由客户端按需建立。
func NewClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}
