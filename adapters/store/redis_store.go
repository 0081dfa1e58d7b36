package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gebeta-eats/payflow/ports"
)

// RedisStore is a Redis implementation of the Store interface. Keys are
// namespaced as payflow:<scope>:<key>.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a new Redis store
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "payflow:",
	}
}

func (s *RedisStore) key(scope ports.Scope, key string) string {
	return fmt.Sprintf("%s%s:%s", s.prefix, scope, key)
}

// Set writes a value with expiration
func (s *RedisStore) Set(ctx context.Context, scope ports.Scope, key, value string, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.key(scope, key), value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set key: %w", err)
	}
	return nil
}

// Get retrieves a value; Redis evicts expired keys itself
func (s *RedisStore) Get(ctx context.Context, scope ports.Scope, key string) (string, error) {
	val, err := s.client.Get(ctx, s.key(scope, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ports.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get key: %w", err)
	}
	return val, nil
}

// Delete removes a key
func (s *RedisStore) Delete(ctx context.Context, scope ports.Scope, key string) error {
	if err := s.client.Del(ctx, s.key(scope, key)).Err(); err != nil {
		return fmt.Errorf("failed to delete key: %w", err)
	}
	return nil
}

// Ping checks connectivity to Redis
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis unavailable: %w", err)
	}
	return nil
}
