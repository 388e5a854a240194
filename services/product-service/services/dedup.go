package services

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultInFlightTTL bounds how long an uncommitted claim survives, so an
// invocation killed between Acquire and Commit does not block redelivery
// for the whole dedup window.
const DefaultInFlightTTL = 2 * time.Minute

// Deduplicator claims a key before a record is written so a redelivered
// message does not create a second product.
type Deduplicator interface {
	// Acquire claims key for the in-flight window. It reports false when
	// key was already claimed.
	Acquire(ctx context.Context, key string) (bool, error)
	// Commit keeps the claim for the full dedup window once the record is stored.
	Commit(ctx context.Context, key string) error
	Release(ctx context.Context, key string) error
}

// RedisDeduplicator claims keys with SETNX and a short TTL, then extends
// the TTL on commit.
type RedisDeduplicator struct {
	client   *redis.Client
	prefix   string
	ttl      time.Duration
	inFlight time.Duration
}

func NewRedisDeduplicator(client *redis.Client, ttl time.Duration) *RedisDeduplicator {
	return &RedisDeduplicator{
		client:   client,
		prefix:   "catalog:dedup:",
		ttl:      ttl,
		inFlight: min(DefaultInFlightTTL, ttl),
	}
}

func (d *RedisDeduplicator) Acquire(ctx context.Context, key string) (bool, error) {
	return d.client.SetNX(ctx, d.prefix+key, "pending:"+time.Now().UTC().Format(time.RFC3339), d.inFlight).Result()
}

func (d *RedisDeduplicator) Commit(ctx context.Context, key string) error {
	return d.client.Set(ctx, d.prefix+key, "done:"+time.Now().UTC().Format(time.RFC3339), d.ttl).Err()
}

func (d *RedisDeduplicator) Release(ctx context.Context, key string) error {
	return d.client.Del(ctx, d.prefix+key).Err()
}
