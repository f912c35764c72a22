package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// DefaultRedisPrefix namespaces cache keys in a shared Redis.
const DefaultRedisPrefix = "songmatch:response:"

// Redis caches responses in Redis so several processes can share them.
type Redis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedis creates a cache over client. A zero TTL never expires entries.
func NewRedis(client *redis.Client, prefix string, ttl time.Duration) *Redis {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &Redis{client: client, prefix: prefix, ttl: ttl}
}

// DialRedis connects to addr and verifies the connection.
func DialRedis(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", addr, err)
	}
	return client, nil
}

// Get returns the body stored under key.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	body, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading cached response: %w", err)
	}
	return body, true, nil
}

// Set stores body under key.
func (r *Redis) Set(ctx context.Context, key string, body []byte) error {
	if err := r.client.Set(ctx, r.prefix+key, body, r.ttl).Err(); err != nil {
		return fmt.Errorf("storing cached response: %w", err)
	}
	return nil
}
