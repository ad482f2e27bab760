// Package config loads process configuration from the environment.
package config

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/joeshaw/envdecode"
	goredis "github.com/redis/go-redis/v9"

	"github.com/ggoodman/elicit/internal/logctx"
	"github.com/ggoodman/elicit/storage"
	"github.com/ggoodman/elicit/storage/memory"
	"github.com/ggoodman/elicit/storage/redis"
)

// Config is the full process configuration. Defaults live in the struct
// tags; every field may be overridden from the environment.
type Config struct {
	// LogLevel is one of debug, info, warn, error. ENV: ELICIT_LOG_LEVEL
	LogLevel slog.Level `env:"ELICIT_LOG_LEVEL,default=info"`
	// Timeout bounds each elicitation. ENV: ELICIT_TIMEOUT
	Timeout time.Duration `env:"ELICIT_TIMEOUT,default=5m"`
	// MaxAttempts is the console retry budget per field. ENV: ELICIT_MAX_ATTEMPTS
	MaxAttempts int `env:"ELICIT_MAX_ATTEMPTS,default=3"`

	Temporal Temporal
	Replay   Replay
}

// Temporal locates the Temporal frontend.
type Temporal struct {
	// HostPort like "localhost:7233". ENV: TEMPORAL_HOSTPORT
	HostPort string `env:"TEMPORAL_HOSTPORT,default=localhost:7233"`
	// Namespace. ENV: TEMPORAL_NAMESPACE
	Namespace string `env:"TEMPORAL_NAMESPACE,default=default"`
	// TaskQueue for booking workflows. ENV: ELICIT_TASK_QUEUE
	TaskQueue string `env:"ELICIT_TASK_QUEUE,default=elicit"`
}

// Replay configures answer recording.
type Replay struct {
	// RedisAddr like "localhost:6379"; empty keeps answers in memory.
	// ENV: REDIS_ADDR
	RedisAddr string `env:"REDIS_ADDR"`
	// Prefix for replay keys. ENV: ELICIT_REPLAY_PREFIX
	Prefix string `env:"ELICIT_REPLAY_PREFIX,default=replay:"`
	// TTL of recorded answers. ENV: ELICIT_REPLAY_TTL
	TTL time.Duration `env:"ELICIT_REPLAY_TTL,default=24h"`
	// MemoryItems caps the in-memory store. ENV: ELICIT_REPLAY_MEMORY_ITEMS
	MemoryItems int `env:"ELICIT_REPLAY_MEMORY_ITEMS,default=1024"`
}

// Load decodes the configuration from the environment. Malformed values are
// reported rather than silently ignored.
func Load() (Config, error) {
	var cfg Config
	if err := envdecode.StrictDecode(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if cfg.MaxAttempts < 1 {
		return Config{}, fmt.Errorf("config: ELICIT_MAX_ATTEMPTS must be at least 1, got %d", cfg.MaxAttempts)
	}
	if cfg.Timeout < 0 {
		return Config{}, fmt.Errorf("config: ELICIT_TIMEOUT must not be negative")
	}
	return cfg, nil
}

// Logger returns a text logger on w at the configured level, decorated with
// request-scoped context groups.
func (c Config) Logger(w io.Writer) *slog.Logger {
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: c.LogLevel})
	return slog.New(logctx.Handler{Handler: h})
}

// OpenStore opens the replay store: Redis when an address is configured,
// memory otherwise.
func (r Replay) OpenStore(ctx context.Context) (storage.Storage, error) {
	if r.RedisAddr == "" {
		return memory.New(r.MemoryItems)
	}
	cl := goredis.NewClient(&goredis.Options{Addr: r.RedisAddr})
	if err := cl.Ping(ctx).Err(); err != nil {
		_ = cl.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return redis.New(redis.Config{Client: cl})
}
