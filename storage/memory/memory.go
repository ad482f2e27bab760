// Package memory provides an in-memory storage.Storage backed by
// github.com/hashicorp/golang-lru/v2, evicting least recently used entries
// once the capacity is reached.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ggoodman/elicit/storage"
)

const sweepInterval = 5 * time.Minute

// Storage implements storage.Storage in process memory.
type Storage struct {
	cache *lru.Cache[string, *storage.Item]

	stop     chan struct{}
	stopOnce sync.Once
}

var _ storage.Storage = (*Storage)(nil)

// New creates a store holding at most maxItems entries.
func New(maxItems int) (*Storage, error) {
	cache, err := lru.New[string, *storage.Item](maxItems)
	if err != nil {
		return nil, fmt.Errorf("failed to create LRU cache: %w", err)
	}
	s := &Storage{cache: cache, stop: make(chan struct{})}
	go s.sweep(sweepInterval)
	return s, nil
}

func (s *Storage) Get(ctx context.Context, key string) (*storage.Item, error) {
	if key == "" {
		return nil, storage.ErrEmptyKey
	}
	item, ok := s.cache.Get(key)
	if !ok {
		return nil, nil
	}
	if item.IsExpired() {
		s.cache.Remove(key)
		return nil, nil
	}
	out := *item
	out.Data = append([]byte(nil), item.Data...)
	return &out, nil
}

func (s *Storage) Set(ctx context.Context, key string, data []byte, opts ...storage.Option) error {
	if key == "" {
		return storage.ErrEmptyKey
	}
	o := storage.Apply(opts...)
	now := time.Now()
	item := &storage.Item{
		Data:      append([]byte(nil), data...),
		CreatedAt: now,
	}
	if o.TTL > 0 {
		exp := now.Add(o.TTL)
		item.ExpiresAt = &exp
	}
	s.cache.Add(key, item)
	return nil
}

func (s *Storage) Delete(ctx context.Context, key string) error {
	if key == "" {
		return storage.ErrEmptyKey
	}
	s.cache.Remove(key)
	return nil
}

// Close stops the expiry sweeper and drops all entries.
func (s *Storage) Close() error {
	s.stopOnce.Do(func() { close(s.stop) })
	s.cache.Purge()
	return nil
}

// Len reports the number of entries, including expired ones not yet swept.
func (s *Storage) Len() int { return s.cache.Len() }

func (s *Storage) sweep(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.removeExpired()
		}
	}
}

func (s *Storage) removeExpired() {
	for _, key := range s.cache.Keys() {
		if item, ok := s.cache.Peek(key); ok && item.IsExpired() {
			s.cache.Remove(key)
		}
	}
}
