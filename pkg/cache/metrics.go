package cache

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/barnslig/mediacccde-graphql/metric"
)

// cacheMetrics mirrors Statistics as Prometheus collectors.
type cacheMetrics struct {
	hits      prometheus.Counter
	misses    prometheus.Counter
	sets      prometheus.Counter
	deletes   prometheus.Counter
	evictions prometheus.Counter
	errors    prometheus.Counter
	size      prometheus.Gauge
}

func newCacheMetrics(registry *metric.MetricsRegistry, prefix string, backend Backend) (*cacheMetrics, error) {
	labels := prometheus.Labels{"component": prefix, "backend": string(backend)}
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   metric.Namespace,
			Subsystem:   "cache",
			Name:        name,
			ConstLabels: labels,
			Help:        help,
		})
	}

	m := &cacheMetrics{
		hits:      counter("hits_total", "Total number of cache hits"),
		misses:    counter("misses_total", "Total number of cache misses"),
		sets:      counter("sets_total", "Total number of cache set operations"),
		deletes:   counter("deletes_total", "Total number of cache delete operations"),
		evictions: counter("evictions_total", "Total number of entries dropped on expiry or at the size limit"),
		errors:    counter("errors_total", "Total number of cache backend failures"),
		size: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   metric.Namespace,
			Subsystem:   "cache",
			Name:        "size",
			ConstLabels: labels,
			Help:        "Current number of entries in cache",
		}),
	}

	counters := map[string]prometheus.Counter{
		"cache_hits":      m.hits,
		"cache_misses":    m.misses,
		"cache_sets":      m.sets,
		"cache_deletes":   m.deletes,
		"cache_evictions": m.evictions,
		"cache_errors":    m.errors,
	}
	for name, c := range counters {
		if err := registry.RegisterCounter(prefix, name, c); err != nil {
			return nil, err
		}
	}
	if err := registry.RegisterGauge(prefix, "cache_size", m.size); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *cacheMetrics) recordHit()          { m.hits.Inc() }
func (m *cacheMetrics) recordMiss()         { m.misses.Inc() }
func (m *cacheMetrics) recordSet()          { m.sets.Inc() }
func (m *cacheMetrics) recordDelete()       { m.deletes.Inc() }
func (m *cacheMetrics) recordEviction()     { m.evictions.Inc() }
func (m *cacheMetrics) recordError()        { m.errors.Inc() }
func (m *cacheMetrics) updateSize(size int) { m.size.Set(float64(size)) }
