package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "projectchat:"

// Redis is a Store backed by a redis server. Keys are namespaced with a fixed prefix.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis connects to the server at redisURL and checks it answers
func NewRedis(ctx context.Context, redisURL string) (*Redis, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &Redis{client: client, prefix: redisKeyPrefix}, nil
}

func (r *Redis) key(key string) string {
	return r.prefix + key
}

// Get returns the value stored under key
func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := r.client.Get(ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get value for key %s: %w", key, err)
	}
	return value, true, nil
}

// Set writes value under key without expiry
func (r *Redis) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, r.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("failed to write value for key %s: %w", key, err)
	}

	slog.Debug("value written to redis", slog.String("key", key))
	return nil
}

// Close closes the redis connection
func (r *Redis) Close() error {
	return r.client.Close()
}
