// Package health tracks the health of the gateway's upstream sources.
//
// Each upstream (media, mirrors, news) reports a Status derived from its
// circuit breaker: closed is healthy, half-open is degraded and open is
// unhealthy. A Monitor keeps the latest Status per source and aggregates
// them with worst-case rules for the HTTP /health endpoint:
//
//   - any unhealthy source makes the gateway unhealthy (HTTP 503)
//   - otherwise any degraded source makes it degraded (HTTP 200)
//   - otherwise it is healthy
//
// Messages derived from errors are sanitized before they are stored, so
// upstream URLs, addresses and credentials never reach the health output.
//
//	monitor := health.NewMonitor(health.WithRecorder(core.RecordHealthStatus))
//	monitor.Update("upstream.media", health.FromSource("upstream.media", report))
//	http.Handle("/health", health.Handler(monitor, "mediagql"))
//
// The package does not return errors: a Status is the result of error
// handling, not part of it.
package health
