package keystore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Redis is a [Store] backed by a Redis client. All keys are namespaced under
// the configured prefix. The multi-key Delete maps to a single DEL command,
// which Redis executes atomically, so a logout removes all credential keys in
// one step.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis wraps client. An empty prefix defaults to "gosession".
func NewRedis(client *redis.Client, prefix string) (*Redis, error) {
	if client == nil {
		return nil, errors.New("keystore: nil redis client")
	}
	if prefix == "" {
		prefix = "gosession"
	}
	return &Redis{client: client, prefix: prefix}, nil
}

func (r *Redis) key(name string) string {
	return r.prefix + ":" + name
}

// Get implements [Store].
func (r *Redis) Get(ctx context.Context, key string) (string, error) {
	value, err := r.client.Get(ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("keystore: redis get: %w", err)
	}
	return value, nil
}

// Set implements [Store].
func (r *Redis) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, r.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("keystore: redis set: %w", err)
	}
	return nil
}

// Delete implements [Store].
func (r *Redis) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, len(keys))
	for i, key := range keys {
		prefixed[i] = r.key(key)
	}
	if err := r.client.Del(ctx, prefixed...).Err(); err != nil {
		return fmt.Errorf("keystore: redis del: %w", err)
	}
	return nil
}
