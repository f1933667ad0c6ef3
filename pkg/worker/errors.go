package worker

import "errors"

// Sentinel errors for fan-out operations
var (
	// ErrNilFunc indicates a nil task function was provided
	ErrNilFunc = errors.New("task function cannot be nil")

	// ErrMetricsRegistration indicates the fan-out metrics could not be registered
	ErrMetricsRegistration = errors.New("worker metrics registration failed")
)
