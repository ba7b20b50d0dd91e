// Package kvstore provides key-value persistence for engine state: Redis in
// production, an in-memory map for tests and credential-less startup.
package kvstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/couchcryptid/nice-weather-discovery/internal/domain"
)

// Redis implements domain.KeyValueStore on a Redis client. Values are never
// expired here; engine state is small and last-write-wins.
type Redis struct {
	client *redis.Client
}

// NewRedis creates a store around a Redis connection.
func NewRedis(addr, password string, db int) *Redis {
	return &Redis{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
	}
}

func (r *Redis) Get(ctx context.Context, key string) (string, error) {
	v, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, nil
}

func (r *Redis) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Ping reports connectivity for the infrastructure status endpoint.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close releases the client's connection pool.
func (r *Redis) Close() error {
	return r.client.Close()
}
