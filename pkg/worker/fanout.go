// Package worker runs bounded, order-preserving fan-outs.
//
// A Fanout applies a task to every input with at most Limit tasks in flight
// and returns the results in input order. The first task error cancels the
// remaining tasks and is returned; partial results are discarded. Fan-outs
// are used to expand related events and conference event lists, where the
// upstream API only offers single-item lookups.
package worker

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/barnslig/mediacccde-graphql/errors"
	"github.com/barnslig/mediacccde-graphql/metric"
)

// DefaultLimit is the concurrency used when none is configured.
const DefaultLimit = 8

// Fanout bounds the concurrency of Map calls sharing it.
type Fanout struct {
	limit   int
	metrics *Metrics

	metricsRegistry *metric.MetricsRegistry
	metricsPrefix   string
}

// Metrics holds Prometheus metrics for fan-out monitoring
type Metrics struct {
	inFlight prometheus.Gauge
	tasks    prometheus.Counter
	failed   prometheus.Counter
	duration prometheus.Histogram
}

// Option represents a configuration option for a Fanout
type Option func(*Fanout)

// WithMetricsRegistry registers fan-out metrics under prefix
func WithMetricsRegistry(registry *metric.MetricsRegistry, prefix string) Option {
	return func(f *Fanout) {
		f.metricsRegistry = registry
		f.metricsPrefix = prefix
	}
}

// NewFanout creates a Fanout running at most limit tasks per Map call.
func NewFanout(limit int, opts ...Option) (*Fanout, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	f := &Fanout{limit: limit}
	for _, opt := range opts {
		opt(f)
	}

	if f.metricsRegistry != nil && f.metricsPrefix != "" {
		if err := f.initializeMetrics(); err != nil {
			return nil, err
		}
	}

	return f, nil
}

// Limit returns the per-call concurrency limit.
func (f *Fanout) Limit() int {
	return f.limit
}

func (f *Fanout) initializeMetrics() error {
	prefix := f.metricsPrefix

	m := &Metrics{
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metric.Namespace,
			Name:      prefix + "_fanout_in_flight",
			Help:      "Fan-out tasks currently running",
		}),
		tasks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metric.Namespace,
			Name:      prefix + "_fanout_tasks_total",
			Help:      "Total fan-out tasks started",
		}),
		failed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metric.Namespace,
			Name:      prefix + "_fanout_failed_total",
			Help:      "Total fan-out tasks that returned an error",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metric.Namespace,
			Name:      prefix + "_fanout_task_duration_seconds",
			Help:      "Fan-out task duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	register := []error{
		f.metricsRegistry.RegisterGauge(prefix, "fanout_in_flight", m.inFlight),
		f.metricsRegistry.RegisterCounter(prefix, "fanout_tasks_total", m.tasks),
		f.metricsRegistry.RegisterCounter(prefix, "fanout_failed_total", m.failed),
		f.metricsRegistry.RegisterHistogram(prefix, "fanout_task_duration_seconds", m.duration),
	}
	for _, err := range register {
		if err != nil {
			return errors.WrapFatal(ErrMetricsRegistration, "Fanout", "initializeMetrics", err.Error())
		}
	}

	f.metrics = m
	return nil
}

// Map calls fn for each input concurrently and returns the outputs in input
// order. A nil Fanout runs with DefaultLimit and no metrics.
func Map[In, Out any](ctx context.Context, f *Fanout, inputs []In, fn func(context.Context, In) (Out, error)) ([]Out, error) {
	if fn == nil {
		return nil, errors.WrapInvalid(ErrNilFunc, "worker", "Map", "validate task")
	}
	if len(inputs) == 0 {
		return []Out{}, nil
	}

	limit := DefaultLimit
	var metrics *Metrics
	if f != nil {
		limit, metrics = f.limit, f.metrics
	}

	results := make([]Out, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, in := range inputs {
		i, in := i, in
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			if metrics != nil {
				metrics.tasks.Inc()
				metrics.inFlight.Inc()
				start := time.Now()
				defer func() {
					metrics.inFlight.Dec()
					metrics.duration.Observe(time.Since(start).Seconds())
				}()
			}

			out, err := fn(gctx, in)
			if err != nil {
				if metrics != nil {
					metrics.failed.Inc()
				}
				return err
			}
			results[i] = out
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
