package services

import (
	"context"
	"log/slog"
	"time"

	"nbadash/internal/dataset"
)

// Version is the application version, overridable at build time.
var Version = "dev"

// HealthStatus is the response body of the health endpoints.
type HealthStatus struct {
	Status        string    `json:"status"`
	DatasetLoaded bool      `json:"dataset_loaded"`
	Records       int       `json:"records,omitempty"`
	Version       string    `json:"version"`
	Timestamp     time.Time `json:"timestamp"`
}

// HealthService reports liveness and readiness of the dashboard backend.
type HealthService struct {
	store  *dataset.Store
	logger *slog.Logger
}

// NewHealthService creates a health service.
func NewHealthService(store *dataset.Store, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{store: store, logger: logger}
}

// Check reports liveness: the process is up regardless of dataset state.
func (s *HealthService) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:        "ok",
		DatasetLoaded: s.store.Loaded(),
		Version:       Version,
		Timestamp:     time.Now(),
	}
	if status.DatasetLoaded {
		if table, err := s.store.Table(ctx); err == nil {
			status.Records = len(table.Records)
		}
	}
	return status
}

// Ready reports readiness: the backend is ready once the dataset loaded.
func (s *HealthService) Ready(ctx context.Context) HealthStatus {
	status := s.Check(ctx)
	if !status.DatasetLoaded {
		status.Status = "not_ready"
	}
	return status
}
