package ws

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"sketchparty/internal/app"
)

// Handler handles WebSocket connections
type Handler struct {
	registry *app.Registry
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(registry *app.Registry, logger *slog.Logger) *Handler {
	return &Handler{
		registry: registry,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// Allow all origins for development
				// In production, you should validate the origin
				return true
			},
		},
		logger: logger,
	}
}

// ServeHTTP handles WebSocket upgrade requests. Every connection gets a fresh
// session id; rejoining a room with the same username restores the old player.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	sessionID := uuid.New().String()
	client := NewClient(conn, h.registry, sessionID, h.logger)

	h.logger.Info("websocket connected", "sessionID", sessionID, "remoteAddr", r.RemoteAddr)

	client.Run()
}
