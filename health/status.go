package health

import (
	"regexp"
	"strings"
	"time"
)

var (
	urlRegex         = regexp.MustCompile(`[a-z][a-z0-9+.-]*://[^\s]+`)
	unixPathRegex    = regexp.MustCompile(`/[a-zA-Z0-9/_.-]+`)
	windowsPathRegex = regexp.MustCompile(`[A-Z]:\\[^:\s]+`)
	ipAddrRegex      = regexp.MustCompile(`\b\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}\b`)
	portRegex        = regexp.MustCompile(`:\d{2,5}\b`)
	credentialRegex  = regexp.MustCompile(`(?i)(password|token|key|secret|credential)[^a-zA-Z]*[:=][^,\s}]+`)
)

// Status values.
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// Status represents the health state of a source or of the whole gateway
type Status struct {
	Component   string    `json:"component"`
	Healthy     bool      `json:"healthy"`
	Status      string    `json:"status"`
	Message     string    `json:"message"`
	Timestamp   time.Time `json:"timestamp"`
	SubStatuses []Status  `json:"sub_statuses,omitempty"`
	Metrics     *Metrics  `json:"metrics,omitempty"`
}

// Metrics contains request counters attached to a source status
type Metrics struct {
	Requests     uint32    `json:"requests"`
	Failures     uint32    `json:"failures"`
	LastActivity time.Time `json:"last_activity,omitempty"`
}

// IsHealthy returns true if the status is healthy
func (s Status) IsHealthy() bool {
	return s.Status == StatusHealthy
}

// IsDegraded returns true if the status is degraded
func (s Status) IsDegraded() bool {
	return s.Status == StatusDegraded
}

// IsUnhealthy returns true if the status is unhealthy
func (s Status) IsUnhealthy() bool {
	return s.Status == StatusUnhealthy
}

// WithMetrics returns a copy of the status with metrics attached
func (s Status) WithMetrics(metrics *Metrics) Status {
	s.Metrics = metrics
	return s
}

// WithSubStatus adds a sub-status and returns a copy
func (s Status) WithSubStatus(subStatus Status) Status {
	newSubStatuses := make([]Status, len(s.SubStatuses), len(s.SubStatuses)+1)
	copy(newSubStatuses, s.SubStatuses)
	s.SubStatuses = append(newSubStatuses, subStatus)
	return s
}

// sanitizeErrorMessage replaces URLs, paths, addresses, ports and
// credential assignments with placeholders.
func sanitizeErrorMessage(err string) string {
	if err == "" {
		return ""
	}

	// URLs first, they contain paths
	sanitized := urlRegex.ReplaceAllString(err, "[URL]")

	sanitized = unixPathRegex.ReplaceAllString(sanitized, "[PATH]")
	sanitized = windowsPathRegex.ReplaceAllString(sanitized, "[PATH]")
	sanitized = ipAddrRegex.ReplaceAllString(sanitized, "[IP]")
	sanitized = portRegex.ReplaceAllString(sanitized, "[PORT]")

	lower := strings.ToLower(sanitized)
	for _, word := range []string{"password", "token", "key", "secret", "credential"} {
		if strings.Contains(lower, word) {
			sanitized = credentialRegex.ReplaceAllString(sanitized, "[REDACTED]")
			break
		}
	}

	return sanitized
}

// BreakerState mirrors the three circuit breaker states.
type BreakerState int

// Breaker states, numbered like the circuit breaker metric.
const (
	BreakerClosed BreakerState = iota
	BreakerOpen
	BreakerHalfOpen
)

// SourceReport is what an upstream source knows about itself.
type SourceReport struct {
	State        BreakerState
	Requests     uint32
	Failures     uint32
	LastError    error
	LastActivity time.Time
}

// FromSource converts an upstream source report to a Status
func FromSource(name string, report SourceReport) Status {
	var status Status
	switch report.State {
	case BreakerOpen:
		status = NewUnhealthy(name, "Circuit breaker open")
	case BreakerHalfOpen:
		status = NewDegraded(name, "Circuit breaker half-open, probing upstream")
	default:
		status = NewHealthy(name, "Upstream reachable")
	}

	if report.LastError != nil && !status.IsHealthy() {
		status.Message += ": " + sanitizeErrorMessage(report.LastError.Error())
	}

	return status.WithMetrics(&Metrics{
		Requests:     report.Requests,
		Failures:     report.Failures,
		LastActivity: report.LastActivity,
	})
}
