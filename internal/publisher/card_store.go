package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// ErrCacheMiss 缓存键不存在或已过期
var ErrCacheMiss = errors.New("cache miss")

// CardStore 卡片缓存存储，值按 JSON 编码整体读写
type CardStore interface {
	Load(ctx context.Context, key string, dst interface{}) error
	Save(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// RedisCardStore 以 Redis 字符串键保存卡片缓存，与卡片聚合服务读取的格式一致
type RedisCardStore struct {
	client *redis.Client
}

// NewRedisCardStore 创建基于 Redis 的卡片缓存存储
func NewRedisCardStore(client *redis.Client) *RedisCardStore {
	return &RedisCardStore{client: client}
}

// Load 读取并解码 key，不存在时返回 ErrCacheMiss
func (s *RedisCardStore) Load(ctx context.Context, key string, dst interface{}) error {
	data, err := s.client.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return ErrCacheMiss
	case err != nil:
		return fmt.Errorf("failed to get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return nil
}

// Save 编码并写入 key，ttl 为 0 时不过期
func (s *RedisCardStore) Save(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := s.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}
