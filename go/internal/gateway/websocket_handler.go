package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

// WebSocketHandler handles WebSocket upgrade requests for the game room
type WebSocketHandler struct {
	connectionManager *ConnectionManager
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(cm *ConnectionManager) *WebSocketHandler {
	return &WebSocketHandler{
		connectionManager: cm,
	}
}

// HandleGameConnection upgrades a client. The player id is assigned by the
// server and returned to the client in joinSuccess.
func (h *WebSocketHandler) HandleGameConnection(w http.ResponseWriter, r *http.Request) {
	if _, err := h.connectionManager.UpgradeConnection(w, r); err != nil {
		// the upgrader has already replied with an HTTP error
		log.Error().
			Err(err).
			Str("remote_addr", r.RemoteAddr).
			Msg("failed to upgrade WebSocket connection")
	}
}

// HandleConnectionStats returns statistics about active connections
func (h *WebSocketHandler) HandleConnectionStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.connectionManager.GetConnectionStats()); err != nil {
		log.Error().Err(err).Msg("failed to encode connection stats")
	}
}

// RegisterRoutes registers WebSocket routes with an HTTP mux
func (h *WebSocketHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ws", h.HandleGameConnection)
	mux.HandleFunc("/ws/stats", h.HandleConnectionStats)
}
