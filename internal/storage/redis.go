package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"storypal-server/internal/models"
)

// Compile-time check to ensure RedisGateway implements Gateway
var _ Gateway = (*RedisGateway)(nil)

// RedisGateway is the remote key/value backend.
type RedisGateway struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisGateway creates a Redis-backed Gateway around an existing client.
func NewRedisGateway(client *redis.Client, logger *zap.Logger) *RedisGateway {
	return &RedisGateway{
		client: client,
		logger: logger.Named("RedisGateway"),
	}
}

func (g *RedisGateway) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := g.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		g.logger.Error("Failed to get key from redis", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("failed to get key %q from redis: %w", key, err)
	}
	return value, nil
}

func (g *RedisGateway) Set(ctx context.Context, key string, value []byte) error {
	// No TTL: registry and library records live until explicitly deleted.
	if err := g.client.Set(ctx, key, value, 0).Err(); err != nil {
		g.logger.Error("Failed to set key in redis", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("failed to set key %q in redis: %w", key, err)
	}
	return nil
}

func (g *RedisGateway) Delete(ctx context.Context, key string) error {
	if err := g.client.Del(ctx, key).Err(); err != nil {
		g.logger.Error("Failed to delete key from redis", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("failed to delete key %q from redis: %w", key, err)
	}
	return nil
}
