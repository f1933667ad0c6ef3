package upstream

import (
	"fmt"
	"net/url"
	"time"

	"github.com/barnslig/mediacccde-graphql/errors"
	"github.com/barnslig/mediacccde-graphql/pkg/retry"
)

// RetryConfig configures retries of transient upstream failures.
type RetryConfig struct {
	MaxAttempts     int    `json:"max_attempts" mapstructure:"max_attempts"`
	InitialDelayStr string `json:"initial_delay" mapstructure:"initial_delay"`
	MaxDelayStr     string `json:"max_delay" mapstructure:"max_delay"`
}

// BreakerConfig configures the per-source circuit breaker.
type BreakerConfig struct {
	MaxRequests  uint32  `json:"max_requests" mapstructure:"max_requests"`
	IntervalStr  string  `json:"interval" mapstructure:"interval"`
	TimeoutStr   string  `json:"timeout" mapstructure:"timeout"`
	MinRequests  uint32  `json:"min_requests" mapstructure:"min_requests"`
	FailureRatio float64 `json:"failure_ratio" mapstructure:"failure_ratio"`

	interval time.Duration
	timeout  time.Duration
}

// Config holds the upstream endpoints and client policies.
type Config struct {
	MediaBaseURL  string `json:"media_base_url" mapstructure:"media_base_url"`
	MirrorBaseURL string `json:"mirror_base_url" mapstructure:"mirror_base_url"`
	NewsURL       string `json:"news_url" mapstructure:"news_url"`

	TimeoutStr  string  `json:"timeout" mapstructure:"timeout"`
	UserAgent   string  `json:"user_agent" mapstructure:"user_agent"`
	CacheTTLStr string  `json:"cache_ttl" mapstructure:"cache_ttl"`
	RateLimit   float64 `json:"rate_limit" mapstructure:"rate_limit"`
	Burst       int     `json:"burst" mapstructure:"burst"`
	FanoutLimit int     `json:"fanout_limit" mapstructure:"fanout_limit"`

	Retry   RetryConfig   `json:"retry" mapstructure:"retry"`
	Breaker BreakerConfig `json:"breaker" mapstructure:"breaker"`

	timeout  time.Duration
	cacheTTL time.Duration
	retry    retry.Config
}

// DefaultConfig returns a configuration pointing at the public media.ccc.de services.
func DefaultConfig() Config {
	return Config{
		MediaBaseURL:  "https://api.media.ccc.de/public",
		MirrorBaseURL: "https://cdn-api.media.ccc.de",
		NewsURL:       "https://media.ccc.de/news.atom",
		TimeoutStr:    "15s",
		UserAgent:     "mediagql",
		CacheTTLStr:   "10m",
		RateLimit:     20,
		Burst:         40,
		FanoutLimit:   8,
		Retry: RetryConfig{
			MaxAttempts:     3,
			InitialDelayStr: "100ms",
			MaxDelayStr:     "2s",
		},
		Breaker: BreakerConfig{
			MaxRequests:  1,
			IntervalStr:  "30s",
			TimeoutStr:   "10s",
			MinRequests:  5,
			FailureRatio: 0.6,
		},
	}
}

func parseDuration(value, fallback, field string) (time.Duration, error) {
	if value == "" {
		value = fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, errors.WrapInvalid(err, "Config", "Validate", fmt.Sprintf("invalid %s: %s", field, value))
	}
	if d < 0 {
		return 0, errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			fmt.Sprintf("%s cannot be negative", field))
	}
	return d, nil
}

func validateURL(raw, field string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			fmt.Sprintf("%s must be an absolute URL: %q", field, raw))
	}
	return nil
}

// Validate checks the configuration and applies defaults.
func (c *Config) Validate() error {
	defaults := DefaultConfig()

	if c.MediaBaseURL == "" {
		c.MediaBaseURL = defaults.MediaBaseURL
	}
	if c.MirrorBaseURL == "" {
		c.MirrorBaseURL = defaults.MirrorBaseURL
	}
	if c.NewsURL == "" {
		c.NewsURL = defaults.NewsURL
	}
	for field, raw := range map[string]string{
		"media_base_url":  c.MediaBaseURL,
		"mirror_base_url": c.MirrorBaseURL,
		"news_url":        c.NewsURL,
	} {
		if err := validateURL(raw, field); err != nil {
			return err
		}
	}

	if c.UserAgent == "" {
		c.UserAgent = defaults.UserAgent
	}
	if c.RateLimit < 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate", "rate_limit cannot be negative")
	}
	if c.RateLimit > 0 && c.Burst <= 0 {
		c.Burst = max(1, int(c.RateLimit))
	}
	if c.FanoutLimit <= 0 {
		c.FanoutLimit = defaults.FanoutLimit
	}

	var err error
	if c.timeout, err = parseDuration(c.TimeoutStr, defaults.TimeoutStr, "timeout"); err != nil {
		return err
	}
	if c.cacheTTL, err = parseDuration(c.CacheTTLStr, defaults.CacheTTLStr, "cache_ttl"); err != nil {
		return err
	}

	initial, err := parseDuration(c.Retry.InitialDelayStr, defaults.Retry.InitialDelayStr, "retry.initial_delay")
	if err != nil {
		return err
	}
	maxDelay, err := parseDuration(c.Retry.MaxDelayStr, defaults.Retry.MaxDelayStr, "retry.max_delay")
	if err != nil {
		return err
	}
	c.retry = retry.DefaultConfig()
	c.retry.MaxAttempts = c.Retry.MaxAttempts
	c.retry.InitialDelay = initial
	c.retry.MaxDelay = maxDelay
	if err := c.retry.Validate(); err != nil {
		return errors.WrapInvalid(err, "Config", "Validate", "retry settings")
	}

	return c.Breaker.validate(defaults.Breaker)
}

func (b *BreakerConfig) validate(defaults BreakerConfig) error {
	if b.MaxRequests == 0 {
		b.MaxRequests = defaults.MaxRequests
	}
	if b.MinRequests == 0 {
		b.MinRequests = defaults.MinRequests
	}
	if b.FailureRatio == 0 {
		b.FailureRatio = defaults.FailureRatio
	}
	if b.FailureRatio < 0 || b.FailureRatio > 1 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			"breaker.failure_ratio must be within [0, 1]")
	}

	var err error
	if b.interval, err = parseDuration(b.IntervalStr, defaults.IntervalStr, "breaker.interval"); err != nil {
		return err
	}
	b.timeout, err = parseDuration(b.TimeoutStr, defaults.TimeoutStr, "breaker.timeout")
	return err
}

// Timeout returns the parsed per-request timeout.
func (c *Config) Timeout() time.Duration { return c.timeout }

// CacheTTL returns the parsed response cache TTL.
func (c *Config) CacheTTL() time.Duration { return c.cacheTTL }

// RetryPolicy returns the parsed retry configuration.
func (c *Config) RetryPolicy() retry.Config { return c.retry }
