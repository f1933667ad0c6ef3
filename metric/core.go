package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains the gateway-level metrics shared by all components.
type Metrics struct {
	// GraphQL metrics
	OperationsTotal   *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	ErrorsTotal       *prometheus.CounterVec

	// Upstream metrics
	UpstreamRequests *prometheus.CounterVec
	UpstreamDuration *prometheus.HistogramVec
	UpstreamRetries  *prometheus.CounterVec
	CircuitBreaker   *prometheus.GaugeVec

	HealthStatus *prometheus.GaugeVec
}

// NewMetrics creates a new Metrics instance
func NewMetrics() *Metrics {
	return &Metrics{
		OperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "graphql",
				Name:      "operations_total",
				Help:      "Total number of resolved GraphQL fields by operation and status",
			},
			[]string{"operation", "status"},
		),

		OperationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Subsystem: "graphql",
				Name:      "operation_duration_seconds",
				Help:      "GraphQL resolver duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),

		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "errors",
				Name:      "total",
				Help:      "Total number of errors by component and class",
			},
			[]string{"component", "class"},
		),

		UpstreamRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "upstream",
				Name:      "requests_total",
				Help:      "Total number of upstream HTTP requests by source and status",
			},
			[]string{"source", "status"},
		),

		UpstreamDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Subsystem: "upstream",
				Name:      "request_duration_seconds",
				Help:      "Upstream HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"source"},
		),

		UpstreamRetries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "upstream",
				Name:      "retries_total",
				Help:      "Total number of retried upstream requests",
			},
			[]string{"source"},
		),

		CircuitBreaker: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Subsystem: "upstream",
				Name:      "circuit_breaker",
				Help:      "Upstream circuit breaker state (0=closed, 1=open, 2=half-open)",
			},
			[]string{"source"},
		),

		HealthStatus: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Subsystem: "health",
				Name:      "status",
				Help:      "Health check status (0=unhealthy, 1=healthy)",
			},
			[]string{"component"},
		),
	}
}

func (c *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		c.OperationsTotal,
		c.OperationDuration,
		c.ErrorsTotal,
		c.UpstreamRequests,
		c.UpstreamDuration,
		c.UpstreamRetries,
		c.CircuitBreaker,
		c.HealthStatus,
	}
}

// RecordOperation records one resolver invocation
func (c *Metrics) RecordOperation(operation, status string, duration time.Duration) {
	c.OperationsTotal.WithLabelValues(operation, status).Inc()
	c.OperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordError increments error counter
func (c *Metrics) RecordError(component, class string) {
	c.ErrorsTotal.WithLabelValues(component, class).Inc()
}

// RecordUpstreamRequest records one upstream round trip. status is the HTTP
// status code, or "error" when no response was received.
func (c *Metrics) RecordUpstreamRequest(source, status string, duration time.Duration) {
	c.UpstreamRequests.WithLabelValues(source, status).Inc()
	c.UpstreamDuration.WithLabelValues(source).Observe(duration.Seconds())
}

// RecordUpstreamRetry increments the retry counter
func (c *Metrics) RecordUpstreamRetry(source string) {
	c.UpstreamRetries.WithLabelValues(source).Inc()
}

// RecordCircuitBreakerState updates circuit breaker status
func (c *Metrics) RecordCircuitBreakerState(source string, state int) {
	c.CircuitBreaker.WithLabelValues(source).Set(float64(state))
}

// RecordHealthStatus updates health check status
func (c *Metrics) RecordHealthStatus(component string, healthy bool) {
	value := 0.0
	if healthy {
		value = 1.0
	}
	c.HealthStatus.WithLabelValues(component).Set(value)
}
