package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "nbadash/internal/errors"
	"nbadash/internal/services"
	"nbadash/internal/stats"
	"nbadash/pkg/contracts/domain"
)

// DashboardServiceInterface is the service surface the handler depends on.
type DashboardServiceInterface interface {
	FilterOptions(ctx context.Context) (*services.FilterOptions, error)
	Dashboard(ctx context.Context, sel stats.FilterSelection) (*stats.Dashboard, error)
	GameLog(ctx context.Context, sel stats.FilterSelection) ([]stats.AnnotatedGame, stats.Summary, error)
}

// DashboardHandler handles dashboard HTTP requests
type DashboardHandler struct {
	service DashboardServiceInterface
	logger  *slog.Logger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(service DashboardServiceInterface, logger *slog.Logger) *DashboardHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "dashboard")),
	}
}

// Routes returns the dashboard routes
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/options", h.GetOptions)
	r.Get("/dashboard", h.GetDashboard)
	r.Get("/gamelog", h.GetGameLog)

	return r
}

// GetOptions handles GET /api/options
func (h *DashboardHandler) GetOptions(w http.ResponseWriter, r *http.Request) {
	options, err := h.service.FilterOptions(r.Context())
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	render.JSON(w, r, options)
}

// GetDashboard handles GET /api/dashboard?year=&team=&type=
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	sel, apiErr := selectionFromQuery(r)
	if apiErr != nil {
		render.Render(w, r, apiErr)
		return
	}

	dash, err := h.service.Dashboard(r.Context(), sel)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	render.JSON(w, r, dash)
}

// GetGameLog handles GET /api/gamelog?year=&team=&type=
func (h *DashboardHandler) GetGameLog(w http.ResponseWriter, r *http.Request) {
	sel, apiErr := selectionFromQuery(r)
	if apiErr != nil {
		render.Render(w, r, apiErr)
		return
	}

	games, summary, err := h.service.GameLog(r.Context(), sel)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"games":   games,
		"summary": summary,
	})
}

// selectionFromQuery parses and validates the filter query parameters.
func selectionFromQuery(r *http.Request) (stats.FilterSelection, *apierrors.APIError) {
	var sel stats.FilterSelection

	yearStr := r.URL.Query().Get("year")
	if yearStr == "" {
		return sel, apierrors.ErrValidation("year", "year is required")
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return sel, apierrors.ErrValidation("year", "year must be an integer")
	}
	sel.Year = year

	sel.Team = r.URL.Query().Get("team")
	if sel.Team == "" {
		return sel, apierrors.ErrValidation("team", "team is required")
	}

	gameType := domain.GameType(r.URL.Query().Get("type"))
	if gameType == "" {
		gameType = domain.GameTypeBoth
	}
	if !gameType.Valid() {
		return sel, apierrors.ErrValidation("type", "type must be one of regular, playoff, both")
	}
	sel.GameType = gameType

	return sel, nil
}

// renderError maps service errors onto API errors.
func (h *DashboardHandler) renderError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.ErrorContext(r.Context(), "request failed",
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()))

	switch {
	case errors.Is(err, services.ErrDatasetUnavailable):
		render.Render(w, r, apierrors.DatasetError(err))
	case errors.Is(err, services.ErrInvalidSelection):
		render.Render(w, r, apierrors.NewWithDetails(http.StatusBadRequest,
			"VALIDATION_FAILED", "Request validation failed", err.Error()))
	default:
		render.Render(w, r, apierrors.ErrInternalServer)
	}
}
