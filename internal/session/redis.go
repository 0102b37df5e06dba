package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the credential under one key without a TTL.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore stores the credential at "<prefix>:<name>".
func NewRedisStore(client *redis.Client, prefix, name string) *RedisStore {
	return &RedisStore{client: client, key: prefix + ":" + name}
}

func (s *RedisStore) Save(ctx context.Context, credential string) error {
	if err := validCredential(credential); err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key, credential, 0).Err(); err != nil {
		return fmt.Errorf("redis save session: %w", err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context) (string, error) {
	credential, err := s.client.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) || (err == nil && credential == "") {
		return "", ErrNoSession
	}
	if err != nil {
		return "", fmt.Errorf("redis load session: %w", err)
	}
	return credential, nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("redis clear session: %w", err)
	}
	return nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
