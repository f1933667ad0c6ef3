package cache

import (
	"github.com/barnslig/mediacccde-graphql/metric"
)

// Option configures a Store.
type Option func(*storeOptions)

type storeOptions struct {
	// metricsReg is optional - if provided, stats are also exposed as Prometheus metrics
	metricsReg    *metric.MetricsRegistry
	metricsPrefix string

	// evictCallback is called with the key of every expired or evicted entry
	evictCallback func(key string)

	maxEntries int
}

// WithMetrics enables Prometheus metrics export for cache statistics.
// A nil registry or empty prefix leaves metrics disabled.
func WithMetrics(registry *metric.MetricsRegistry, prefix string) Option {
	return func(opts *storeOptions) {
		if registry != nil && prefix != "" {
			opts.metricsReg = registry
			opts.metricsPrefix = prefix
		}
	}
}

// WithMaxEntries bounds the number of entries held by the memory backend.
// Values <= 0 select DefaultMaxEntries.
func WithMaxEntries(n int) Option {
	return func(opts *storeOptions) {
		opts.maxEntries = n
	}
}

// WithEvictionCallback sets a function called for each expired or evicted entry.
// Only the memory backend evicts locally; Redis expires keys on its own.
func WithEvictionCallback(callback func(key string)) Option {
	return func(opts *storeOptions) {
		opts.evictCallback = callback
	}
}

func applyOptions(options ...Option) *storeOptions {
	opts := &storeOptions{}
	for _, opt := range options {
		if opt != nil {
			opt(opts)
		}
	}
	return opts
}
