package health

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// NewHealthy creates a new healthy status
func NewHealthy(component, message string) Status {
	return Status{
		Component: component,
		Healthy:   true,
		Status:    StatusHealthy,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// NewUnhealthy creates a new unhealthy status
func NewUnhealthy(component, message string) Status {
	return Status{
		Component: component,
		Healthy:   false,
		Status:    StatusUnhealthy,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// NewDegraded creates a new degraded status
func NewDegraded(component, message string) Status {
	return Status{
		Component: component,
		Healthy:   false,
		Status:    StatusDegraded,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// Aggregate creates a status from sub-statuses using worst-case rules.
// The message names the sources responsible for a non-healthy result.
// Sub-statuses are copied and sorted by component name.
func Aggregate(component string, subStatuses []Status) Status {
	if len(subStatuses) == 0 {
		return NewHealthy(component, "No sources registered")
	}

	var unhealthy, degraded []string
	for _, sub := range subStatuses {
		switch {
		case sub.IsUnhealthy():
			unhealthy = append(unhealthy, sub.Component)
		case sub.IsDegraded():
			degraded = append(degraded, sub.Component)
		}
	}

	var status Status
	switch {
	case len(unhealthy) > 0:
		slices.Sort(unhealthy)
		status = NewUnhealthy(component, fmt.Sprintf("Unhealthy: %s", strings.Join(unhealthy, ", ")))
	case len(degraded) > 0:
		slices.Sort(degraded)
		status = NewDegraded(component, fmt.Sprintf("Degraded: %s", strings.Join(degraded, ", ")))
	default:
		status = NewHealthy(component, "All sources are healthy")
	}

	status.SubStatuses = slices.Clone(subStatuses)
	slices.SortFunc(status.SubStatuses, func(a, b Status) int {
		return strings.Compare(a.Component, b.Component)
	})

	return status
}
