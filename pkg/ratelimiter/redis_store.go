package ratelimiter

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store on Redis so the window is shared across
// replicas. The window TTL lives in Redis, making expiry authoritative even
// if the process restarts.
type RedisStore struct {
	client    redis.Cmdable
	keyPrefix string
}

// RedisStoreOption configures a RedisStore.
type RedisStoreOption func(*RedisStore)

// WithKeyPrefix sets the prefix for rate limit keys.
func WithKeyPrefix(prefix string) RedisStoreOption {
	return func(rs *RedisStore) {
		if prefix != "" {
			rs.keyPrefix = prefix
		}
	}
}

// NewRedisStore creates a Redis-backed store.
func NewRedisStore(client redis.Cmdable, opts ...RedisStoreOption) *RedisStore {
	rs := &RedisStore{
		client:    client,
		keyPrefix: "ratelimit:",
	}
	for _, opt := range opts {
		opt(rs)
	}
	return rs
}

// Increment records an attempt via INCR and attaches the window TTL on the
// first attempt only (NX), so later attempts never extend the window.
func (rs *RedisStore) Increment(ctx context.Context, key string, windowLen time.Duration) (int, time.Time, error) {
	redisKey := rs.keyPrefix + key

	pipe := rs.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.ExpireNX(ctx, redisKey, windowLen)
	ttl := pipe.PTTL(ctx, redisKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, time.Time{}, errors.Join(ErrStoreUnavailable, err)
	}

	resetAt := time.Now().Add(windowLen)
	if d := ttl.Val(); d > 0 {
		resetAt = time.Now().Add(d)
	}

	return int(incr.Val()), resetAt, nil
}

// Reset clears the window for the given key.
func (rs *RedisStore) Reset(ctx context.Context, key string) error {
	if err := rs.client.Del(ctx, rs.keyPrefix+key).Err(); err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}
