package health

import (
	"sync"
	"time"
)

// Recorder receives every status update, typically a metrics gauge.
type Recorder func(component string, healthy bool)

// MonitorOption configures a Monitor.
type MonitorOption func(*Monitor)

// WithRecorder sets a function called on every Update.
func WithRecorder(recorder Recorder) MonitorOption {
	return func(m *Monitor) {
		m.recorder = recorder
	}
}

// Monitor tracks health of multiple sources in a thread-safe manner
type Monitor struct {
	mu       sync.RWMutex
	statuses map[string]Status
	recorder Recorder
}

// NewMonitor creates a new health monitor
func NewMonitor(options ...MonitorOption) *Monitor {
	m := &Monitor{
		statuses: make(map[string]Status),
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

// Update updates the health status for a named source
func (m *Monitor) Update(name string, status Status) {
	status.Component = name
	if status.Timestamp.IsZero() {
		status.Timestamp = time.Now()
	}

	m.mu.Lock()
	m.statuses[name] = status
	m.mu.Unlock()

	if m.recorder != nil {
		m.recorder(name, status.IsHealthy())
	}
}

// UpdateHealthy is a convenience method to update a source as healthy
func (m *Monitor) UpdateHealthy(name, message string) {
	m.Update(name, NewHealthy(name, message))
}

// UpdateUnhealthy is a convenience method to update a source as unhealthy
func (m *Monitor) UpdateUnhealthy(name, message string) {
	m.Update(name, NewUnhealthy(name, message))
}

// Get retrieves the health status for a named source
func (m *Monitor) Get(name string) (Status, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	status, exists := m.statuses[name]
	return status, exists
}

// GetAll returns a copy of all current health statuses
func (m *Monitor) GetAll() map[string]Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[string]Status, len(m.statuses))
	for name, status := range m.statuses {
		result[name] = status
	}
	return result
}

// Remove removes a source from monitoring
func (m *Monitor) Remove(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.statuses, name)
}

// AggregateHealth returns an aggregated health status for the entire gateway
func (m *Monitor) AggregateHealth(systemName string) Status {
	m.mu.RLock()
	subStatuses := make([]Status, 0, len(m.statuses))
	for _, status := range m.statuses {
		subStatuses = append(subStatuses, status)
	}
	m.mu.RUnlock()

	return Aggregate(systemName, subStatuses)
}
