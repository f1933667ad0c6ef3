package graphql

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/graphql-go/graphql"

	"github.com/barnslig/mediacccde-graphql/errors"
	"github.com/barnslig/mediacccde-graphql/health"
	"github.com/barnslig/mediacccde-graphql/metric"
)

// SystemName names the gateway in health reports.
const SystemName = "mediagql"

// Dependencies are the collaborators of a Gateway. Sources is required.
type Dependencies struct {
	Sources  Sources
	Registry *metric.MetricsRegistry
	Logger   *slog.Logger
	// Checkers report the health of upstream sources on /health.
	Checkers []health.Checker
}

// Gateway wires resolvers, schema and HTTP server together and records
// per-operation metrics.
type Gateway struct {
	name    string
	config  Config
	logger  *slog.Logger
	metrics *metric.Metrics

	schema graphql.Schema
	server *Server

	// Lifecycle state (atomic operations, no mutex needed for running flag)
	running atomic.Bool

	// Protects startTime and lastActivity for concurrent reads
	mu           sync.RWMutex
	startTime    time.Time
	lastActivity time.Time

	requestsTotal   atomic.Uint64
	requestsSuccess atomic.Uint64
	requestsFailed  atomic.Uint64
}

// NewGateway creates a new GraphQL gateway from configuration
func NewGateway(config Config, deps Dependencies) (*Gateway, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.WrapInvalid(err, "Gateway", "NewGateway", "config validation")
	}

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "graphql-gateway")

	gateway := &Gateway{
		name:   "graphql-gateway",
		config: config,
		logger: logger,
	}
	if deps.Registry != nil {
		gateway.metrics = deps.Registry.CoreMetrics()
	}

	resolver, err := NewResolver(deps.Sources, gateway, logger)
	if err != nil {
		return nil, errors.WrapFatal(err, "Gateway", "NewGateway", "create resolver")
	}

	schema, err := NewSchema(resolver)
	if err != nil {
		return nil, err
	}

	var monitorOpts []health.MonitorOption
	if gateway.metrics != nil {
		monitorOpts = append(monitorOpts, health.WithRecorder(gateway.metrics.RecordHealthStatus))
	}
	checkers := append([]health.Checker{gateway.Health}, deps.Checkers...)
	healthHandler := health.Handler(health.NewMonitor(monitorOpts...), SystemName, checkers...)

	server, err := NewServer(config,
		NewHandler(schema, config.Timeout(), config.MaxQueryDepth),
		healthHandler, logger)
	if err != nil {
		return nil, errors.WrapFatal(err, "Gateway", "NewGateway", "create server")
	}
	if err := server.Setup(); err != nil {
		return nil, errors.WrapFatal(err, "Gateway", "NewGateway", "server setup")
	}

	gateway.schema = schema
	gateway.server = server

	return gateway, nil
}

// Start serves until ctx is cancelled, then shuts the server down.
func (g *Gateway) Start(ctx context.Context) error {
	if !g.running.CompareAndSwap(false, true) {
		return errors.WrapFatal(errors.ErrAlreadyStarted, "Gateway", "Start",
			"gateway already running")
	}
	defer g.running.Store(false)

	g.mu.Lock()
	g.startTime = time.Now()
	g.mu.Unlock()

	g.logger.Info("GraphQL gateway starting")

	ready := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- g.server.Start(ctx, ready)
	}()

	select {
	case <-ready:
		g.logger.Info("GraphQL gateway started",
			"address", g.server.Address(),
			"path", g.config.Path)
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		return errors.WrapFatal(errors.ErrConnectionTimeout, "Gateway", "Start",
			"server failed to start within timeout")
	}

	err := <-done
	g.logger.Info("GraphQL gateway stopped")
	return err
}

// Stop gracefully stops the GraphQL gateway
func (g *Gateway) Stop(timeout time.Duration) error {
	if !g.running.Load() {
		return nil
	}
	return g.server.Stop(timeout)
}

// Handler returns the complete HTTP handler of the gateway.
func (g *Gateway) Handler() http.Handler {
	return g.server.Handler()
}

// Schema returns the executable schema.
func (g *Gateway) Schema() graphql.Schema {
	return g.schema
}

// Address returns the address the gateway listens on.
func (g *Gateway) Address() string {
	return g.server.Address()
}

// Stats summarizes the resolver operations handled so far.
type Stats struct {
	RequestsTotal   uint64
	RequestsSuccess uint64
	RequestsFailed  uint64
	ErrorRate       float64
	LastActivity    time.Time
	Uptime          time.Duration
}

// Stats returns the current operation counters.
func (g *Gateway) Stats() Stats {
	g.mu.RLock()
	defer g.mu.RUnlock()

	total := g.requestsTotal.Load()
	failed := g.requestsFailed.Load()

	var errorRate float64
	if total > 0 {
		errorRate = float64(failed) / float64(total)
	}

	var uptime time.Duration
	if g.running.Load() {
		uptime = time.Since(g.startTime)
	}

	return Stats{
		RequestsTotal:   total,
		RequestsSuccess: g.requestsSuccess.Load(),
		RequestsFailed:  failed,
		ErrorRate:       errorRate,
		LastActivity:    g.lastActivity,
		Uptime:          uptime,
	}
}

// Health returns the current health status
func (g *Gateway) Health() health.Status {
	stats := g.Stats()

	var status health.Status
	if g.running.Load() && g.server.IsRunning() {
		status = health.NewHealthy(g.name, "serving")
	} else {
		status = health.NewUnhealthy(g.name, "not running")
	}

	return status.WithMetrics(&health.Metrics{
		Requests:     uint32(stats.RequestsTotal),
		Failures:     uint32(stats.RequestsFailed),
		LastActivity: stats.LastActivity,
	})
}

// RecordMetrics wraps a GraphQL operation to record metrics
func (g *Gateway) RecordMetrics(_ context.Context, operation string, fn func() error) error {
	start := time.Now()

	g.requestsTotal.Add(1)

	err := fn()
	duration := time.Since(start)

	status := "success"
	if err != nil {
		status = "error"
		g.requestsFailed.Add(1)
		g.logger.Warn("GraphQL operation failed",
			"operation", operation,
			"duration", duration,
			"error", err)
		if g.metrics != nil {
			g.metrics.RecordError(g.name, errors.Classify(err).String())
		}
	} else {
		g.requestsSuccess.Add(1)
		g.logger.Debug("GraphQL operation succeeded",
			"operation", operation,
			"duration", duration)
	}

	if g.metrics != nil {
		g.metrics.RecordOperation(operation, status, duration)
	}

	g.mu.Lock()
	g.lastActivity = time.Now()
	g.mu.Unlock()

	return err
}
