// Package cache provides the response cache shared by upstream clients.
//
// A Store maps request keys to raw response payloads with a per-entry
// time-to-live. Two backends exist: a bounded in-process LRU store and a Redis store
// for deployments running several gateway replicas. Both keep Statistics
// (always on) and optionally export them as Prometheus metrics.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/barnslig/mediacccde-graphql/errors"
)

// Store is a key/value cache for response payloads.
type Store interface {
	// Get returns the cached payload and true, or false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key for ttl. A ttl <= 0 stores nothing.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Stats returns the store's statistics.
	Stats() *Statistics

	// Close releases background resources.
	Close() error
}

// Backend names a Store implementation.
type Backend string

// Supported backends.
const (
	BackendMemory Backend = "memory"
	BackendRedis  Backend = "redis"
	BackendNone   Backend = "none"
)

// RedisConfig configures the Redis backend.
type RedisConfig struct {
	Addr     string `json:"addr" mapstructure:"addr"`
	Password string `json:"password,omitempty" mapstructure:"password"`
	DB       int    `json:"db" mapstructure:"db"`
	Prefix   string `json:"prefix" mapstructure:"prefix"`
}

// Config selects and configures the cache backend.
type Config struct {
	Backend            Backend     `json:"backend" mapstructure:"backend"`
	CleanupIntervalStr string      `json:"cleanup_interval" mapstructure:"cleanup_interval"`
	MaxEntries         int         `json:"max_entries" mapstructure:"max_entries"`
	Redis              RedisConfig `json:"redis" mapstructure:"redis"`

	cleanupInterval time.Duration
}

// DefaultMaxEntries bounds the memory backend when no limit is configured.
const DefaultMaxEntries = 1000

// DefaultConfig returns an in-memory cache configuration.
func DefaultConfig() Config {
	return Config{
		Backend:            BackendMemory,
		CleanupIntervalStr: "1m",
		MaxEntries:         DefaultMaxEntries,
		Redis: RedisConfig{
			Addr:   "localhost:6379",
			Prefix: "mediagql",
		},
	}
}

// Validate checks the configuration and applies defaults.
func (c *Config) Validate() error {
	if c.Backend == "" {
		c.Backend = BackendMemory
	}

	switch c.Backend {
	case BackendMemory, BackendNone:
	case BackendRedis:
		if c.Redis.Addr == "" {
			return errors.WrapInvalid(errors.ErrMissingConfig, "Config", "Validate",
				"redis backend requires redis.addr")
		}
		if c.Redis.Prefix == "" {
			c.Redis.Prefix = "mediagql"
		}
	default:
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			fmt.Sprintf("unknown cache backend %q", c.Backend))
	}

	if c.MaxEntries < 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			fmt.Sprintf("max_entries must not be negative, got %d", c.MaxEntries))
	}
	if c.MaxEntries == 0 {
		c.MaxEntries = DefaultMaxEntries
	}

	if c.CleanupIntervalStr == "" {
		c.cleanupInterval = time.Minute
		return nil
	}
	interval, err := time.ParseDuration(c.CleanupIntervalStr)
	if err != nil {
		return errors.WrapInvalid(err, "Config", "Validate",
			fmt.Sprintf("invalid cleanup_interval: %s", c.CleanupIntervalStr))
	}
	if interval <= 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			"cleanup_interval must be positive")
	}
	c.cleanupInterval = interval
	return nil
}

// CleanupInterval returns the parsed cleanup interval.
func (c *Config) CleanupInterval() time.Duration {
	return c.cleanupInterval
}

// New creates the Store selected by config.
func New(ctx context.Context, config Config, logger *slog.Logger, options ...Option) (Store, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	switch config.Backend {
	case BackendRedis:
		store, err := NewRedis(ctx, config.Redis, options...)
		if err != nil {
			return nil, err
		}
		logger.Info("Response cache using redis", "addr", config.Redis.Addr, "prefix", config.Redis.Prefix)
		return store, nil
	case BackendNone:
		logger.Info("Response cache disabled")
		return NewNoop(), nil
	default:
		options = append(options[:len(options):len(options)], WithMaxEntries(config.MaxEntries))
		store, err := NewMemory(ctx, config.CleanupInterval(), options...)
		if err != nil {
			return nil, err
		}
		logger.Info("Response cache using memory",
			"cleanup_interval", config.CleanupInterval(),
			"max_entries", config.MaxEntries)
		return store, nil
	}
}

// validateKey validates a cache key for basic requirements.
func validateKey(key string) error {
	if key == "" {
		return errors.WrapInvalid(errors.ErrInvalidData, "cache", "validateKey", "key cannot be empty")
	}
	return nil
}

type noopStore struct {
	stats *Statistics
}

// NewNoop returns a Store that never holds anything.
func NewNoop() Store {
	return &noopStore{stats: NewStatistics()}
}

func (n *noopStore) Get(context.Context, string) ([]byte, bool, error) {
	n.stats.Miss()
	return nil, false, nil
}

func (n *noopStore) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (n *noopStore) Delete(context.Context, string) error                   { return nil }
func (n *noopStore) Stats() *Statistics                                     { return n.stats }
func (n *noopStore) Close() error                                           { return nil }
