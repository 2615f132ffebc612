package websocket

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"nbadash/internal/services"
	"nbadash/internal/stats"
)

// DashboardComputer is the service surface a session needs: one filter
// selection in, one full dashboard out.
type DashboardComputer interface {
	Dashboard(ctx context.Context, sel stats.FilterSelection) (*stats.Dashboard, error)
}

// Message is the envelope sent back to the client.
type Message struct {
	Type  string           `json:"type"`
	Data  *stats.Dashboard `json:"data,omitempty"`
	Error string           `json:"error,omitempty"`
}

// Handler serves interactive dashboard sessions over a websocket. Each
// received filter selection triggers exactly one full recomputation; replies
// are sent in order, there is no concurrent recomputation within a session.
type Handler struct {
	service  DashboardComputer
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewHandler creates a websocket session handler.
func NewHandler(service DashboardComputer, checkOrigin func(*http.Request) bool, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
		logger: logger.With(slog.String("component", "ws_session")),
	}
}

// ServeHTTP upgrades the connection and runs the session loop.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "websocket upgrade failed",
			slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	sessionID := uuid.New().String()
	logger := h.logger.With(slog.String("session_id", sessionID))
	logger.InfoContext(r.Context(), "session started",
		slog.String("remote_addr", r.RemoteAddr))

	for {
		var sel stats.FilterSelection
		if err := conn.ReadJSON(&sel); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.WarnContext(r.Context(), "session closed unexpectedly",
					slog.String("error", err.Error()))
			} else {
				logger.InfoContext(r.Context(), "session closed")
			}
			return
		}

		reply := h.compute(r.Context(), logger, sel)
		if err := conn.WriteJSON(reply); err != nil {
			logger.WarnContext(r.Context(), "failed to write reply",
				slog.String("error", err.Error()))
			return
		}
	}
}

func (h *Handler) compute(ctx context.Context, logger *slog.Logger, sel stats.FilterSelection) Message {
	dash, err := h.service.Dashboard(ctx, sel)
	if err != nil {
		logger.ErrorContext(ctx, "dashboard computation failed",
			slog.Int("year", sel.Year),
			slog.String("team", sel.Team),
			slog.String("error", err.Error()))

		msg := Message{Type: "error", Error: "dashboard computation failed"}
		switch {
		case errors.Is(err, services.ErrInvalidSelection):
			msg.Error = "invalid filter selection"
		case errors.Is(err, services.ErrDatasetUnavailable):
			msg.Error = "game dataset could not be loaded"
		}
		return msg
	}

	return Message{Type: "dashboard", Data: dash}
}
