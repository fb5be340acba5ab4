package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	redisclient "github.com/angelmondragon/shopadmin/pkg/redis"
	redislib "github.com/redis/go-redis/v9"
)

type tokenStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	SessionKey(name string) string
}

// RedisStore persists the token in redis so several processes can share one login.
type RedisStore struct {
	cached
	store tokenStore
	key   string
	ttl   time.Duration
}

// NewRedisStore loads any token already stored under key.
func NewRedisStore(ctx context.Context, client *redisclient.Client, key string, ttl time.Duration) (*RedisStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	return newRedisStore(ctx, client, key, ttl)
}

func newRedisStore(ctx context.Context, store tokenStore, key string, ttl time.Duration) (*RedisStore, error) {
	if strings.TrimSpace(key) == "" {
		key = DefaultKey
	}
	s := &RedisStore{store: store, key: store.SessionKey(key), ttl: ttl}
	token, err := store.Get(ctx, s.key)
	switch {
	case errors.Is(err, redislib.Nil):
	case err != nil:
		return nil, fmt.Errorf("load session token: %w", err)
	default:
		s.set(token)
	}
	return s, nil
}

func (s *RedisStore) SetToken(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return s.ClearToken(ctx)
	}
	if err := s.store.Set(ctx, s.key, token, s.ttl); err != nil {
		return fmt.Errorf("store session token: %w", err)
	}
	s.set(token)
	return nil
}

func (s *RedisStore) ClearToken(ctx context.Context) error {
	s.set("")
	if err := s.store.Del(ctx, s.key); err != nil {
		return fmt.Errorf("clear session token: %w", err)
	}
	return nil
}
