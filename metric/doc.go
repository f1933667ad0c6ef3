// Package metric provides Prometheus-based metrics collection and the HTTP
// endpoint exposing them.
//
// The package has three parts:
//
//  1. Core Metrics: gateway-level metrics registered automatically (Metrics type)
//  2. Component Registry: registration for component-specific metrics (MetricsRegistrar interface)
//  3. HTTP Server: metrics endpoint with a health check (Server type)
//
// # Basic Usage
//
//	registry := metric.NewMetricsRegistry()
//	server := metric.NewServer(9090, "/metrics", registry)
//
//	go func() {
//	    if err := server.Start(); err != nil {
//	        logger.Error("Metrics server failed", "error", err)
//	    }
//	}()
//
//	core := registry.CoreMetrics()
//	core.RecordOperation("Query.events", "success", elapsed)
//	core.RecordUpstreamRequest("media", "200", elapsed)
//
// # Core Metrics
//
// All names carry the "mediagql" namespace:
//
//   - graphql_operations_total, graphql_operation_duration_seconds: resolver calls by operation and status
//   - upstream_requests_total, upstream_request_duration_seconds: HTTP round trips by source and status
//   - upstream_retries_total: retried upstream requests
//   - upstream_circuit_breaker: breaker state per source (0=closed, 1=open, 2=half-open)
//   - health_status: 1 when a component reports healthy
//   - errors_total: errors by component and class
//
// # Component Metrics
//
// Components register their own collectors under a component name. The pair
// (component, metric name) must be unique, and Prometheus rejects two collectors
// with the same fully-qualified name:
//
//	hits := prometheus.NewCounter(prometheus.CounterOpts{
//	    Namespace: metric.Namespace,
//	    Subsystem: "cache",
//	    Name:      "hits_total",
//	    Help:      "Total number of cache hits",
//	})
//	if err := registry.RegisterCounter("upstream_media", "cache_hits", hits); err != nil {
//	    return err
//	}
//
// Registration errors are classified: duplicates are Invalid, other Prometheus
// failures are Fatal.
package metric
