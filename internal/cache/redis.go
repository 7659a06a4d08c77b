package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/skillroad/backend-go/internal/logger"
	"go.uber.org/zap"
)

// RedisStore Redis缓存后端
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore 创建Redis缓存后端
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool) {
	value, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Error("Failed to get from redis cache", zap.String("key", key), zap.Error(err))
		}
		return "", false
	}
	return value, true
}

func (s *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		logger.Error("Failed to save to redis cache", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		logger.Error("Failed to delete from redis cache", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}

func (s *RedisStore) ClearPrefix(ctx context.Context, prefix string) (int, error) {
	keys, err := s.client.Keys(ctx, prefix+":*").Result()
	if err != nil {
		logger.Error("Failed to list redis keys by prefix", zap.String("prefix", prefix), zap.Error(err))
		return 0, err
	}
	if len(keys) == 0 {
		return 0, nil
	}

	count, err := s.client.Del(ctx, keys...).Result()
	if err != nil {
		logger.Error("Failed to clear redis keys by prefix", zap.String("prefix", prefix), zap.Error(err))
		return 0, err
	}
	logger.Info("Cleared cache keys by prefix", zap.String("prefix", prefix), zap.Int64("count", count))
	return int(count), nil
}
