package enrollment

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store on Redis, sharing pending sessions across
// replicas. Expiry is enforced by the key TTL, so an expired session simply
// disappears and reads report ErrSessionNotFound.
type RedisStore struct {
	client    redis.Cmdable
	ttl       time.Duration
	keyPrefix string
}

// RedisStoreOption configures a RedisStore.
type RedisStoreOption func(*RedisStore)

// WithKeyPrefix sets the prefix for session keys.
func WithKeyPrefix(prefix string) RedisStoreOption {
	return func(rs *RedisStore) {
		if prefix != "" {
			rs.keyPrefix = prefix
		}
	}
}

// NewRedisStore creates a Redis-backed store enforcing the given TTL.
func NewRedisStore(client redis.Cmdable, ttl time.Duration, opts ...RedisStoreOption) *RedisStore {
	rs := &RedisStore{
		client:    client,
		ttl:       ttl,
		keyPrefix: "2fa:setup:",
	}
	for _, opt := range opts {
		opt(rs)
	}
	return rs
}

func (rs *RedisStore) Create(ctx context.Context, session *Session) error {
	if session == nil || session.ID == "" {
		return ErrInvalidSession
	}

	data, err := json.Marshal(session)
	if err != nil {
		return errors.Join(ErrInvalidSession, err)
	}

	if err := rs.client.Set(ctx, rs.keyPrefix+session.ID, data, rs.ttl).Err(); err != nil {
		return err
	}
	return nil
}

func (rs *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	data, err := rs.client.Get(ctx, rs.keyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	session := &Session{}
	if err := json.Unmarshal(data, session); err != nil {
		return nil, errors.Join(ErrInvalidSession, err)
	}
	return session, nil
}

func (rs *RedisStore) Update(ctx context.Context, session *Session) error {
	if session == nil || session.ID == "" {
		return ErrInvalidSession
	}

	data, err := json.Marshal(session)
	if err != nil {
		return errors.Join(ErrInvalidSession, err)
	}

	// KEEPTTL preserves the original enrollment deadline; updating attempt
	// counters must not extend the session's life.
	ok, err := rs.client.SetXX(ctx, rs.keyPrefix+session.ID, data, redis.KeepTTL).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrSessionNotFound
	}
	return nil
}

func (rs *RedisStore) Delete(ctx context.Context, id string) error {
	return rs.client.Del(ctx, rs.keyPrefix+id).Err()
}
