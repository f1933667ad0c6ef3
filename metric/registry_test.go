package metric

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsRegistry(t *testing.T) {
	registry := NewMetricsRegistry()

	assert.NotNil(t, registry)
	assert.NotNil(t, registry.PrometheusRegistry())
}

func TestMetricsRegistry_RegisterCounter(t *testing.T) {
	registry := NewMetricsRegistry()

	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "test_counter",
		Help: "A test counter",
	})

	err := registry.RegisterCounter("test-service", "test_counter", counter)
	require.NoError(t, err)

	// Should be able to increment the counter
	counter.Inc()

	// Verify the counter is registered in the underlying Prometheus registry
	metricFamilies, err := registry.PrometheusRegistry().Gather()
	require.NoError(t, err)

	found := false
	for _, mf := range metricFamilies {
		if mf.GetName() == "test_counter" {
			found = true
			break
		}
	}
	assert.True(t, found, "Counter should be registered in Prometheus registry")
}

func TestMetricsRegistry_RegisterGauge(t *testing.T) {
	registry := NewMetricsRegistry()

	gauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "test_gauge",
		Help: "A test gauge",
	})

	err := registry.RegisterGauge("test-service", "test_gauge", gauge)
	require.NoError(t, err)

	// Should be able to set the gauge
	gauge.Set(42.0)

	// Verify the gauge is registered
	metricFamilies, err := registry.PrometheusRegistry().Gather()
	require.NoError(t, err)

	found := false
	for _, mf := range metricFamilies {
		if mf.GetName() == "test_gauge" {
			found = true
			break
		}
	}
	assert.True(t, found, "Gauge should be registered in Prometheus registry")
}

func TestMetricsRegistry_RegisterHistogram(t *testing.T) {
	registry := NewMetricsRegistry()

	histogram := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "test_histogram",
		Help:    "A test histogram",
		Buckets: prometheus.DefBuckets,
	})

	err := registry.RegisterHistogram("test-service", "test_histogram", histogram)
	require.NoError(t, err)

	// Should be able to observe values
	histogram.Observe(1.5)

	// Verify the histogram is registered
	metricFamilies, err := registry.PrometheusRegistry().Gather()
	require.NoError(t, err)

	found := false
	for _, mf := range metricFamilies {
		if mf.GetName() == "test_histogram" {
			found = true
			break
		}
	}
	assert.True(t, found, "Histogram should be registered in Prometheus registry")
}

func TestMetricsRegistry_PreventDuplicateRegistration(t *testing.T) {
	registry := NewMetricsRegistry()

	counter1 := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "duplicate_counter",
		Help: "First counter",
	})

	counter2 := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "duplicate_counter",
		Help: "First counter", // Same help to avoid Prometheus validation error
	})

	// First registration should succeed
	err := registry.RegisterCounter("service1", "duplicate_counter", counter1)
	require.NoError(t, err)

	// Second registration with same name should fail with our custom tracking
	err = registry.RegisterCounter("service2", "duplicate_counter", counter2)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "prometheus conflict")
}

func TestMetricsRegistry_UnregisterMetric(t *testing.T) {
	registry := NewMetricsRegistry()

	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "unregister_counter",
		Help: "A counter to unregister",
	})

	// Register the counter
	err := registry.RegisterCounter("test-service", "unregister_counter", counter)
	require.NoError(t, err)

	// Verify it's registered
	metricFamilies, err := registry.PrometheusRegistry().Gather()
	require.NoError(t, err)

	found := false
	for _, mf := range metricFamilies {
		if mf.GetName() == "unregister_counter" {
			found = true
			break
		}
	}
	assert.True(t, found)

	// Unregister the counter
	success := registry.Unregister("test-service", "unregister_counter")
	assert.True(t, success)

	// Verify it's no longer registered
	metricFamilies, err = registry.PrometheusRegistry().Gather()
	require.NoError(t, err)

	found = false
	for _, mf := range metricFamilies {
		if mf.GetName() == "unregister_counter" {
			found = true
			break
		}
	}
	assert.False(t, found)
}

func TestMetricsRegistry_ThreadSafety(t *testing.T) {
	registry := NewMetricsRegistry()

	var wg sync.WaitGroup
	numGoroutines := 10

	// Register metrics concurrently
	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()

			counter := prometheus.NewCounter(prometheus.CounterOpts{
				Name: fmt.Sprintf("concurrent_counter_%d", id),
				Help: "A concurrent counter",
			})

			err := registry.RegisterCounter("concurrent-service",
				fmt.Sprintf("concurrent_counter_%d", id), counter)
			assert.NoError(t, err)
		}(i)
	}

	wg.Wait()

	// Verify all metrics were registered
	metricFamilies, err := registry.PrometheusRegistry().Gather()
	require.NoError(t, err)

	counterCount := 0
	for _, mf := range metricFamilies {
		if contains(mf.GetName(), "concurrent_counter_") {
			counterCount++
		}
	}

	assert.Equal(t, numGoroutines, counterCount,
		"All concurrent counters should be registered")
}

func TestMetricsRegistrar_Interface(t *testing.T) {
	registry := NewMetricsRegistry()

	// Verify registry implements MetricsRegistrar interface
	var registrar MetricsRegistrar = registry
	assert.NotNil(t, registrar)

	// Test registering through the interface
	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "interface_counter",
		Help: "Counter registered through interface",
	})

	err := registrar.RegisterCounter("interface-service", "interface_counter", counter)
	require.NoError(t, err)
}

func TestMetricsRegistry_CoreMetricsInitialization(t *testing.T) {
	registry := NewMetricsRegistry()

	// Vector metrics don't appear in Gather() until they have at least one value set
	coreMetrics := registry.CoreMetrics()
	coreMetrics.RecordOperation("Query.events", "success", 20*time.Millisecond)
	coreMetrics.RecordError("upstream", "transient")
	coreMetrics.RecordUpstreamRequest("media", "200", 100*time.Millisecond)
	coreMetrics.RecordUpstreamRetry("media")
	coreMetrics.RecordCircuitBreakerState("media", 0)
	coreMetrics.RecordHealthStatus("upstream.media", true)

	metricFamilies, err := registry.PrometheusRegistry().Gather()
	require.NoError(t, err)

	expectedCoreMetrics := []string{
		"mediagql_graphql_operations_total",
		"mediagql_graphql_operation_duration_seconds",
		"mediagql_errors_total",
		"mediagql_upstream_requests_total",
		"mediagql_upstream_request_duration_seconds",
		"mediagql_upstream_retries_total",
		"mediagql_upstream_circuit_breaker",
		"mediagql_health_status",
	}

	foundMetrics := make(map[string]bool)
	for _, mf := range metricFamilies {
		foundMetrics[mf.GetName()] = true
	}

	for _, expectedMetric := range expectedCoreMetrics {
		assert.True(t, foundMetrics[expectedMetric],
			"core metric %s should be initialized", expectedMetric)
	}
}

func TestCoreMetrics_RecordValues(t *testing.T) {
	registry := NewMetricsRegistry()
	coreMetrics := registry.CoreMetrics()

	coreMetrics.RecordOperation("Query.conferences", "success", time.Millisecond)
	coreMetrics.RecordOperation("Query.conferences", "success", time.Millisecond)
	coreMetrics.RecordOperation("Query.conferences", "error", time.Millisecond)
	coreMetrics.RecordCircuitBreakerState("mirrors", 1)
	coreMetrics.RecordHealthStatus("upstream.news", false)

	assert.Equal(t, 2.0, testutil.ToFloat64(
		coreMetrics.OperationsTotal.WithLabelValues("Query.conferences", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(
		coreMetrics.OperationsTotal.WithLabelValues("Query.conferences", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(coreMetrics.CircuitBreaker.WithLabelValues("mirrors")))
	assert.Equal(t, 0.0, testutil.ToFloat64(coreMetrics.HealthStatus.WithLabelValues("upstream.news")))
}

// Helper function to check if a string contains a substring
func contains(s, substr string) bool {
	return len(s) >= len(substr) && s[:len(substr)] == substr
}
