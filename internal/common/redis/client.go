package redis

import (
	"context"
	"fmt"

	"wisefido-radar-sim/internal/common/config"

	"github.com/go-redis/redis/v8"
)

// NewRedisClient 创建Redis客户端（不立即连接）
func NewRedisClient(cfg *config.RedisConfig) *redis.Client {
	opts := &redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	return redis.NewClient(opts)
}

// Ping 确认 Redis 可达
func Ping(ctx context.Context, client *redis.Client) error {
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis %s unreachable: %w", client.Options().Addr, err)
	}
	return nil
}

// Close 关闭Redis连接，nil 安全
func Close(client *redis.Client) error {
	if client == nil {
		return nil
	}
	return client.Close()
}
