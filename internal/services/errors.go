package services

import "errors"

// Sentinel errors for transport-layer mapping.
var (
	// ErrDatasetUnavailable wraps a dataset load failure. The session is
	// over: callers show a fixed message, nothing is retried.
	ErrDatasetUnavailable = errors.New("dataset unavailable")

	// ErrInvalidSelection marks a filter selection that failed validation.
	ErrInvalidSelection = errors.New("invalid filter selection")
)
