package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix  = "conversation:"
	defaultTTL = 24 * time.Hour
)

// RedisStore persists conversations as JSON values with a sliding TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) key(id string) string { return keyPrefix + id }

func (s *RedisStore) Get(ctx context.Context, id string) (*Conversation, error) {
	val, err := s.client.Get(ctx, s.key(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var conv Conversation
	if err := json.Unmarshal([]byte(val), &conv); err != nil {
		return nil, err
	}
	// Sliding expiry: reads keep active conversations alive.
	_ = s.client.Expire(ctx, s.key(id), s.ttl).Err()
	return &conv, nil
}

func (s *RedisStore) Save(ctx context.Context, conv *Conversation) error {
	conv.UpdatedAt = time.Now()
	val, err := json.Marshal(conv)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(conv.ID), val, s.ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, s.key(id)).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
