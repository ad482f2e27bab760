// Package redis provides a Redis-backed storage.Storage. Expiry is delegated
// to Redis key TTLs.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ggoodman/elicit/storage"
)

// DefaultKeyPrefix is prepended to every key when Config.KeyPrefix is empty.
const DefaultKeyPrefix = "elicit:storage:"

// Config contains configuration options for the Redis storage.
type Config struct {
	// Client is the Redis client instance.
	Client redis.UniversalClient

	// KeyPrefix is the prefix for all Redis keys.
	// Default: DefaultKeyPrefix
	KeyPrefix string
}

// Storage implements storage.Storage using Redis.
type Storage struct {
	client    redis.UniversalClient
	keyPrefix string
}

var _ storage.Storage = (*Storage)(nil)

// storedItem is the JSON envelope written to Redis.
type storedItem struct {
	Data      []byte     `json:"data"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// New creates a Redis-backed store.
func New(config Config) (*Storage, error) {
	if config.Client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if config.KeyPrefix == "" {
		config.KeyPrefix = DefaultKeyPrefix
	}
	return &Storage{client: config.Client, keyPrefix: config.KeyPrefix}, nil
}

func (s *Storage) Get(ctx context.Context, key string) (*storage.Item, error) {
	if key == "" {
		return nil, storage.ErrEmptyKey
	}
	redisKey := s.keyPrefix + key
	raw, err := s.client.Get(ctx, redisKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get key %s: %w", redisKey, err)
	}

	var stored storedItem
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, fmt.Errorf("failed to unmarshal stored data: %w", err)
	}
	item := &storage.Item{Data: stored.Data, CreatedAt: stored.CreatedAt, ExpiresAt: stored.ExpiresAt}
	if item.IsExpired() {
		s.client.Del(ctx, redisKey)
		return nil, nil
	}
	return item, nil
}

func (s *Storage) Set(ctx context.Context, key string, data []byte, opts ...storage.Option) error {
	if key == "" {
		return storage.ErrEmptyKey
	}
	o := storage.Apply(opts...)
	redisKey := s.keyPrefix + key

	now := time.Now()
	stored := storedItem{Data: data, CreatedAt: now}
	if o.TTL > 0 {
		exp := now.Add(o.TTL)
		stored.ExpiresAt = &exp
	}
	raw, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("failed to marshal storage item: %w", err)
	}
	if err := s.client.Set(ctx, redisKey, raw, o.TTL).Err(); err != nil {
		return fmt.Errorf("failed to set key %s: %w", redisKey, err)
	}
	return nil
}

func (s *Storage) Delete(ctx context.Context, key string) error {
	if key == "" {
		return storage.ErrEmptyKey
	}
	redisKey := s.keyPrefix + key
	if err := s.client.Del(ctx, redisKey).Err(); err != nil {
		return fmt.Errorf("failed to delete key %s: %w", redisKey, err)
	}
	return nil
}

// Close closes the underlying client.
func (s *Storage) Close() error {
	return s.client.Close()
}
