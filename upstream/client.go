package upstream

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/go-querystring/query"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/barnslig/mediacccde-graphql/errors"
	"github.com/barnslig/mediacccde-graphql/health"
	"github.com/barnslig/mediacccde-graphql/metric"
	"github.com/barnslig/mediacccde-graphql/pkg/cache"
	"github.com/barnslig/mediacccde-graphql/pkg/retry"
)

// maxBodySize bounds a single upstream response. Full conference payloads
// are below one megabyte.
const maxBodySize = 32 << 20

// Client fetches JSON or feed documents from one upstream source. Requests
// pass through the response cache, the rate limiter, the retry policy and
// the circuit breaker, in that order.
type Client struct {
	source     string
	baseURL    string
	userAgent  string
	timeout    time.Duration
	httpClient *http.Client

	cache    cache.Store
	cacheTTL time.Duration
	limiter  *rate.Limiter
	breaker  *gobreaker.CircuitBreaker
	retry    retry.Config

	metrics *metric.Metrics
	logger  *slog.Logger

	mu           sync.Mutex
	lastErr      error
	lastActivity time.Time
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithCache enables response caching for ttl. A ttl <= 0 disables caching.
func WithCache(store cache.Store, ttl time.Duration) ClientOption {
	return func(c *Client) {
		c.cache = store
		c.cacheTTL = ttl
	}
}

// WithMetrics records request, retry and breaker metrics.
func WithMetrics(metrics *metric.Metrics) ClientOption {
	return func(c *Client) {
		c.metrics = metrics
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a client for source rooted at baseURL.
func NewClient(source, baseURL string, config Config, opts ...ClientOption) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if err := validateURL(baseURL, source+" base url"); err != nil {
		return nil, err
	}

	c := &Client{
		source:     source,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		userAgent:  config.UserAgent,
		timeout:    config.Timeout(),
		httpClient: http.DefaultClient,
		retry:      config.RetryPolicy(),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "upstream", "source", source)

	if config.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(config.RateLimit), config.Burst)
	}

	breaker := config.Breaker
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        source,
		MaxRequests: breaker.MaxRequests,
		Interval:    breaker.interval,
		Timeout:     breaker.timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= breaker.MinRequests && failureRatio >= breaker.FailureRatio
		},
		// only failures the upstream is responsible for count
		IsSuccessful: func(err error) bool {
			if err == nil || stderrors.Is(err, context.Canceled) {
				return true
			}
			return !errors.IsTransient(err)
		},
		OnStateChange: c.onStateChange,
	})
	if c.metrics != nil {
		c.metrics.RecordCircuitBreakerState(source, breakerGauge(gobreaker.StateClosed))
	}

	c.retry.ShouldRetry = func(err error) bool {
		return errors.IsTransient(err) && !stderrors.Is(err, errors.ErrCircuitOpen)
	}
	c.retry.OnRetry = func(attempt int, err error, delay time.Duration) {
		c.logger.Debug("Retrying upstream request", "attempt", attempt, "delay", delay, "error", err)
		if c.metrics != nil {
			c.metrics.RecordUpstreamRetry(source)
		}
	}

	return c, nil
}

// Source returns the source name used in logs and metrics.
func (c *Client) Source() string {
	return c.source
}

// Fetch performs GET baseURL+path with params encoded by go-querystring.
// params may be nil.
func (c *Client) Fetch(ctx context.Context, path string, params any) (*Response, error) {
	target, err := c.resolve(path, params)
	if err != nil {
		return nil, err
	}

	if resp, ok := c.cached(ctx, target); ok {
		return resp, nil
	}

	resp, err := retry.DoWithResult(ctx, c.retry, func() (*Response, error) {
		return c.roundTrip(ctx, target)
	})
	c.observe(err)
	if err != nil {
		return nil, err
	}

	c.store(ctx, target, resp)
	return resp, nil
}

func (c *Client) resolve(path string, params any) (string, error) {
	target := c.baseURL + path
	if params == nil {
		return target, nil
	}

	values, err := query.Values(params)
	if err != nil {
		return "", errors.WrapFatal(err, "upstream", "Fetch", "encode query parameters")
	}
	if encoded := values.Encode(); encoded != "" {
		target += "?" + encoded
	}
	return target, nil
}

func (c *Client) cacheKey(target string) string {
	return c.source + ":" + target
}

func (c *Client) cached(ctx context.Context, target string) (*Response, bool) {
	if c.cache == nil || c.cacheTTL <= 0 {
		return nil, false
	}

	payload, ok, err := c.cache.Get(ctx, c.cacheKey(target))
	if err != nil {
		c.logger.Warn("Response cache read failed", "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var resp Response
	if err := json.Unmarshal(payload, &resp); err != nil {
		c.logger.Warn("Dropping undecodable cache entry", "url", target, "error", err)
		_ = c.cache.Delete(ctx, c.cacheKey(target))
		return nil, false
	}
	resp.Cached = true
	return &resp, true
}

func (c *Client) store(ctx context.Context, target string, resp *Response) {
	if c.cache == nil || c.cacheTTL <= 0 {
		return
	}

	payload, err := json.Marshal(resp)
	if err != nil {
		c.logger.Warn("Response cache encode failed", "error", err)
		return
	}
	if err := c.cache.Set(ctx, c.cacheKey(target), payload, c.cacheTTL); err != nil {
		c.logger.Warn("Response cache write failed", "error", err)
	}
}

func (c *Client) roundTrip(ctx context.Context, target string) (*Response, error) {
	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.do(ctx, target)
	})
	if err != nil {
		if stderrors.Is(err, gobreaker.ErrOpenState) || stderrors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, errors.WrapTransient(fmt.Errorf("%w: %w", errors.ErrCircuitOpen, err),
				"upstream", "Fetch", c.source)
		}
		return nil, err
	}
	return out.(*Response), nil
}

func (c *Client) do(ctx context.Context, target string) (*Response, error) {
	action := "GET " + target

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, errors.WrapTransient(fmt.Errorf("%w: %w", errors.ErrRateLimited, err),
				"upstream", "Fetch", action)
		}
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, errors.WrapFatal(err, "upstream", "Fetch", "build request")
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json, application/atom+xml;q=0.9, */*;q=0.1")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.record("error", start)
		if stderrors.Is(err, context.DeadlineExceeded) {
			return nil, errors.WrapTransient(fmt.Errorf("%w: %w", errors.ErrConnectionTimeout, err),
				"upstream", "Fetch", action)
		}
		return nil, errors.WrapTransient(fmt.Errorf("%w: %w", errors.ErrUpstreamUnavailable, err),
			"upstream", "Fetch", action)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	c.record(strconv.Itoa(resp.StatusCode), start)
	if err != nil {
		return nil, errors.WrapTransient(fmt.Errorf("%w: %w", errors.ErrUpstreamUnavailable, err),
			"upstream", "Fetch", action)
	}

	switch status := resp.StatusCode; {
	case status >= 200 && status < 300:
		return &Response{Body: body, RawTotal: resp.Header.Get(TotalHeader)}, nil
	case status == http.StatusNotFound:
		return nil, errors.WrapInvalid(errors.ErrNotFound, "upstream", "Fetch", action)
	case status == http.StatusTooManyRequests:
		return nil, errors.WrapTransient(errors.ErrRateLimited, "upstream", "Fetch", action)
	case status >= 500:
		return nil, errors.WrapTransient(fmt.Errorf("%w: %d", errors.ErrUpstreamStatus, status),
			"upstream", "Fetch", action)
	default:
		return nil, errors.WrapInvalid(fmt.Errorf("%w: %d", errors.ErrUpstreamStatus, status),
			"upstream", "Fetch", action)
	}
}

func (c *Client) record(status string, start time.Time) {
	if c.metrics != nil {
		c.metrics.RecordUpstreamRequest(c.source, status, time.Since(start))
	}
}

func (c *Client) observe(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lastActivity = time.Now()
	if err != nil && errors.IsTransient(err) {
		c.lastErr = err
	}
}

func (c *Client) onStateChange(name string, from, to gobreaker.State) {
	level := slog.LevelInfo
	if to == gobreaker.StateOpen {
		level = slog.LevelWarn
	}
	c.logger.Log(context.Background(), level, "Circuit breaker state changed", "from", from.String(), "to", to.String())

	if c.metrics != nil {
		c.metrics.RecordCircuitBreakerState(name, breakerGauge(to))
	}
}

// Report summarizes the source's breaker state for health checks.
func (c *Client) Report() health.SourceReport {
	counts := c.breaker.Counts()

	c.mu.Lock()
	defer c.mu.Unlock()

	return health.SourceReport{
		State:        breakerState(c.breaker.State()),
		Requests:     counts.Requests,
		Failures:     counts.TotalFailures,
		LastError:    c.lastErr,
		LastActivity: c.lastActivity,
	}
}

// Health returns the source's health status under name.
func (c *Client) Health(name string) health.Status {
	return health.FromSource(name, c.Report())
}

func breakerState(s gobreaker.State) health.BreakerState {
	switch s {
	case gobreaker.StateOpen:
		return health.BreakerOpen
	case gobreaker.StateHalfOpen:
		return health.BreakerHalfOpen
	default:
		return health.BreakerClosed
	}
}

func breakerGauge(s gobreaker.State) int {
	return int(breakerState(s))
}
