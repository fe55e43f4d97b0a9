package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/anatoly-dev/go-store-sync/pkg/config"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const tokenPrefix = "session:token:"

// RedisStore keeps the credential under a prefixed key with a sliding
// TTL, so session liveness survives process restarts and Touch pushes
// the expiry forward.
type RedisStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	logger *zap.Logger
}

func NewRedisStore(cfg *config.SessionConfig, logger *zap.Logger) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{
		client: client,
		key:    tokenPrefix + cfg.TokenKey,
		ttl:    cfg.TTL,
		logger: logger,
	}, nil
}

func (s *RedisStore) LoadToken() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	token, err := s.client.Get(ctx, s.key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", ErrNoToken
		}
		return "", fmt.Errorf("failed to load credential from Redis: %w", err)
	}

	return token, nil
}

func (s *RedisStore) SaveToken(token string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.client.Set(ctx, s.key, token, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save credential in Redis: %w", err)
	}

	return nil
}

func (s *RedisStore) DeleteToken() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("failed to delete credential from Redis: %w", err)
	}

	return nil
}

func (s *RedisStore) Touch() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.client.Expire(ctx, s.key, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to refresh credential TTL: %w", err)
	}

	return nil
}

func (s *RedisStore) Close() error {
	s.logger.Info("Closing Redis credential store")
	return s.client.Close()
}
