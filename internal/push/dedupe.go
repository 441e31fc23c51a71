package push

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ReminderWindow is the minimum gap between two SRS reminders to one user.
const ReminderWindow = 20 * time.Hour

// Deduper claims a key for a period. Claim returns false if the key is
// already held.
type Deduper interface {
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// RedisDeduper claims keys with SET NX.
type RedisDeduper struct {
	client *redis.Client
	prefix string
}

// NewRedisDeduper connects to the Redis server at redisURL.
func NewRedisDeduper(ctx context.Context, redisURL string) (*RedisDeduper, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisDeduper{client: client, prefix: "civicprep:push:"}, nil
}

// NewRedisDedupeClient wraps an existing client.
func NewRedisDedupeClient(client *redis.Client) *RedisDeduper {
	return &RedisDeduper{client: client, prefix: "civicprep:push:"}
}

func (d *RedisDeduper) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := d.client.SetNX(ctx, d.prefix+key, time.Now().Unix(), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim %s: %w", key, err)
	}
	return ok, nil
}

// Close closes the Redis connection.
func (d *RedisDeduper) Close() error {
	return d.client.Close()
}
