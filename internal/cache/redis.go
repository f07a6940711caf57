package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"ctrnf-scores/internal/config"
	"ctrnf-scores/internal/constants"
)

// RedisCache wraps a go-redis client with the few calls the scores service needs.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects to redisURL and pings it.
func NewRedisCache(redisURL string) (*RedisCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), constants.DatabaseTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return &RedisCache{client: client}, nil
}

// New opens the cache when REDIS_URL is set. A nil cache disables caching.
func New(cfg *config.Config, logger zerolog.Logger) (*RedisCache, error) {
	if cfg.RedisURL == "" {
		logger.Info().Msg("redis not configured, rating updates will not be cached")
		return nil, nil
	}
	rc, err := NewRedisCache(cfg.RedisURL)
	if err != nil {
		logger.Error().Err(err).Msg("failed to connect to redis")
		return nil, err
	}
	logger.Info().Msg("redis connection established")
	return rc, nil
}

func (rc *RedisCache) Close() error {
	return rc.client.Close()
}

func (rc *RedisCache) HealthCheck(ctx context.Context) error {
	return rc.client.Ping(ctx).Err()
}

// Get returns ErrMiss when key is absent.
func (rc *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := rc.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, ErrMiss
	}
	return b, err
}

func (rc *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return rc.client.Set(ctx, key, value, ttl).Err()
}
