package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"

	"nbadash/internal/dataset"
	"nbadash/internal/infrastructure"
	"nbadash/internal/stats"
	"nbadash/pkg/contracts/domain"
)

// FilterOptions lists the valid dashboard selections derived from the
// loaded dataset, plus any schema warnings the UI should surface.
type FilterOptions struct {
	Years     []int             `json:"years"`
	Teams     []string          `json:"teams"`
	GameTypes []domain.GameType `json:"game_types"`
	Warnings  []string          `json:"warnings,omitempty"`
}

// DashboardService answers filter-option and dashboard requests over the
// cached dataset. One selection change means one full recomputation.
type DashboardService struct {
	store    *dataset.Store
	engine   *stats.Engine
	metrics  *infrastructure.Metrics
	validate *validator.Validate
	logger   *slog.Logger
}

// NewDashboardService creates a dashboard service. metrics may be nil.
func NewDashboardService(store *dataset.Store, engine *stats.Engine, metrics *infrastructure.Metrics, logger *slog.Logger) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardService{
		store:    store,
		engine:   engine,
		metrics:  metrics,
		validate: validator.New(),
		logger:   logger.With(slog.String("component", "dashboard_service")),
	}
}

// FilterOptions returns the selectable years, teams and game types.
func (s *DashboardService) FilterOptions(ctx context.Context) (*FilterOptions, error) {
	table, err := s.store.Table(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrDatasetUnavailable, err)
	}

	return &FilterOptions{
		Years:     table.Years,
		Teams:     table.Teams,
		GameTypes: []domain.GameType{domain.GameTypeRegular, domain.GameTypePlayoff, domain.GameTypeBoth},
		Warnings:  table.Warnings,
	}, nil
}

// Dashboard validates the selection and recomputes the full dashboard.
func (s *DashboardService) Dashboard(ctx context.Context, sel stats.FilterSelection) (*stats.Dashboard, error) {
	if sel.GameType == "" {
		sel.GameType = domain.GameTypeBoth
	}
	if err := s.validate.Struct(sel); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSelection, err)
	}

	table, err := s.store.Table(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrDatasetUnavailable, err)
	}

	start := time.Now()
	dash, err := s.engine.Compute(ctx, table, sel)
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.DashboardComputes.Inc()
		s.metrics.DashboardComputeTime.Observe(time.Since(start).Seconds())
	}

	s.logger.InfoContext(ctx, "dashboard recomputed",
		slog.Int("year", sel.Year),
		slog.String("team", sel.Team),
		slog.String("game_type", string(sel.GameType)),
		slog.Int("games", dash.Summary.TotalGames),
		slog.Bool("has_data", dash.Summary.HasData))

	return dash, nil
}

// GameLog returns just the annotated game log and summary for a selection.
func (s *DashboardService) GameLog(ctx context.Context, sel stats.FilterSelection) ([]stats.AnnotatedGame, stats.Summary, error) {
	dash, err := s.Dashboard(ctx, sel)
	if err != nil {
		return nil, stats.Summary{}, err
	}
	return dash.Games, dash.Summary, nil
}
