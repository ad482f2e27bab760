// Package storage defines a small key/value store for recorded elicitation
// answers, with in-memory and Redis backends.
package storage

import (
	"context"
	"errors"
	"time"
)

// Storage is a byte-oriented key/value store with optional expiry.
type Storage interface {
	// Get returns the item stored under key, or nil if it does not exist or
	// has expired. An error is returned only for backend failures.
	Get(ctx context.Context, key string) (*Item, error)

	// Set stores data under key, replacing any previous value.
	Set(ctx context.Context, key string, data []byte, opts ...Option) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Item is a stored value with its metadata.
type Item struct {
	Data      []byte
	CreatedAt time.Time
	ExpiresAt *time.Time // nil = no expiration
}

// IsExpired reports whether the item has passed its expiry.
func (it *Item) IsExpired() bool {
	return it.ExpiresAt != nil && time.Now().After(*it.ExpiresAt)
}

// Option configures a Set call.
type Option func(*Options)

// Options holds the resolved Set options.
type Options struct {
	TTL time.Duration // zero = no expiration
}

// WithTTL expires the value after ttl. Non-positive values mean no expiry.
func WithTTL(ttl time.Duration) Option {
	return func(o *Options) {
		if ttl > 0 {
			o.TTL = ttl
		}
	}
}

// Apply resolves opts into an Options value.
func Apply(opts ...Option) Options {
	var o Options
	for _, fn := range opts {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}

// ErrEmptyKey is returned when an operation is given an empty key.
var ErrEmptyKey = errors.New("storage: empty key")
