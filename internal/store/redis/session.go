package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "storefront:session:"

// SessionStore keeps visitor sessions as Redis hashes with a sliding TTL.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to Redis and returns a SessionStore whose entries expire
// after ttl of inactivity.
func New(ctx context.Context, addr, password string, db int, ttl time.Duration) (*SessionStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis.New: ping: %w", err)
	}

	return NewSessionStore(client, ttl), nil
}

// NewSessionStore wraps an existing client.
func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

// SessionKey returns the Redis key holding session id.
func SessionKey(id string) string {
	return sessionKeyPrefix + id
}

func (s *SessionStore) Close() error {
	if err := s.client.Close(); err != nil {
		return fmt.Errorf("redis.SessionStore.Close: %w", err)
	}
	return nil
}

func (s *SessionStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis.SessionStore.Ping: %w", err)
	}
	return nil
}

// Load returns the values of session id and extends its TTL. An unknown or
// expired id yields an empty map.
func (s *SessionStore) Load(ctx context.Context, id string) (map[string]string, error) {
	key := SessionKey(id)

	pipe := s.client.Pipeline()
	get := pipe.HGetAll(ctx, key)
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("redis.SessionStore.Load: %w", err)
	}

	return get.Val(), nil
}

// Save replaces the values of session id.
func (s *SessionStore) Save(ctx context.Context, id string, values map[string]string) error {
	key := SessionKey(id)

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		if len(values) > 0 {
			args := make([]any, 0, 2*len(values))
			for k, v := range values {
				args = append(args, k, v)
			}
			pipe.HSet(ctx, key, args...)
			pipe.Expire(ctx, key, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis.SessionStore.Save: %w", err)
	}
	return nil
}
