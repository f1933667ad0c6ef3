package health

import (
	"encoding/json"
	"net/http"
)

// Checker produces a fresh status on demand.
type Checker func() Status

// Handler serves the aggregated status of monitor as JSON. Unhealthy maps
// to 503; degraded still serves traffic and returns 200. Checkers run
// before aggregation so sources can refresh their entries.
func Handler(monitor *Monitor, systemName string, checkers ...Checker) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		for _, check := range checkers {
			status := check()
			monitor.Update(status.Component, status)
		}

		status := monitor.AggregateHealth(systemName)

		code := http.StatusOK
		if status.IsUnhealthy() {
			code = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(status)
	})
}
