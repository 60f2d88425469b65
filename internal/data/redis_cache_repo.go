package data

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/target/hiring-pipeline/internal/core"
)

var _ core.CacheRepository = (*RedisCacheRepo)(nil)

// ErrEmptyCacheKey is returned for blank keys.
var ErrEmptyCacheKey = errors.New("cache key cannot be empty")

// RedisCacheRepo stores catalog entries in Redis under an optional key prefix.
type RedisCacheRepo struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisCacheRepo creates an unprefixed RedisCacheRepo.
func NewRedisCacheRepo(client redis.UniversalClient) *RedisCacheRepo {
	return NewRedisCacheRepoWithPrefix(client, "")
}

// NewRedisCacheRepoWithPrefix namespaces every key with prefix.
func NewRedisCacheRepoWithPrefix(client redis.UniversalClient, prefix string) *RedisCacheRepo {
	return &RedisCacheRepo{client: client, prefix: prefix}
}

func (r *RedisCacheRepo) key(k string) (string, error) {
	if k == "" {
		return "", ErrEmptyCacheKey
	}
	return r.prefix + k, nil
}

// Set writes value with ttl. A zero ttl never expires.
func (r *RedisCacheRepo) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	k, err := r.key(key)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, k, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Get returns nil without error on a miss.
func (r *RedisCacheRepo) Get(ctx context.Context, key string) ([]byte, error) {
	k, err := r.key(key)
	if err != nil {
		return nil, err
	}
	raw, err := r.client.Get(ctx, k).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return raw, nil
}

// Delete reports whether the key existed.
func (r *RedisCacheRepo) Delete(ctx context.Context, key string) (bool, error) {
	k, err := r.key(key)
	if err != nil {
		return false, err
	}
	n, err := r.client.Del(ctx, k).Result()
	if err != nil {
		return false, fmt.Errorf("redis del: %w", err)
	}
	return n > 0, nil
}

// Health pings Redis.
func (r *RedisCacheRepo) Health(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
