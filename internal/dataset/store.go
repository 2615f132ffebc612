package dataset

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"nbadash/internal/infrastructure"
)

// Store is the process-wide handle to the loaded dataset. The source is read
// exactly once: the first caller triggers the load, concurrent first callers
// are deduplicated through singleflight, and every later call is served from
// the single cache slot. A load failure is cached too — the session is over,
// callers keep getting the same error instead of re-reading a broken source.
type Store struct {
	loader  *Loader
	logger  *slog.Logger
	metrics *infrastructure.Metrics

	group  singleflight.Group
	mu     sync.RWMutex
	table  *Table
	err    error
	loaded bool
}

// NewStore creates a store around the given loader. metrics may be nil.
func NewStore(loader *Loader, logger *slog.Logger, metrics *infrastructure.Metrics) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		loader:  loader,
		logger:  logger,
		metrics: metrics,
	}
}

// Table returns the cached dataset, loading it on first use.
func (s *Store) Table(ctx context.Context) (*Table, error) {
	s.mu.RLock()
	if s.loaded {
		table, err := s.table, s.err
		s.mu.RUnlock()
		return table, err
	}
	s.mu.RUnlock()

	result, err, _ := s.group.Do("load", func() (interface{}, error) {
		s.mu.RLock()
		if s.loaded {
			table, err := s.table, s.err
			s.mu.RUnlock()
			return table, err
		}
		s.mu.RUnlock()

		start := time.Now()
		table, err := s.loader.Load(ctx)
		elapsed := time.Since(start)

		if s.metrics != nil {
			s.metrics.DatasetLoadSeconds.Set(elapsed.Seconds())
			if table != nil {
				s.metrics.DatasetRecords.Set(float64(len(table.Records)))
			}
		}
		if err != nil {
			s.logger.ErrorContext(ctx, "dataset load failed",
				slog.String("error", err.Error()),
				slog.Duration("elapsed", elapsed))
		}

		s.mu.Lock()
		s.table, s.err, s.loaded = table, err, true
		s.mu.Unlock()

		return table, err
	})
	if err != nil {
		return nil, err
	}
	return result.(*Table), nil
}

// Loaded reports whether a load has completed successfully. Used by
// readiness checks.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded && s.err == nil
}
