package gateway

import (
	"context"
	"encoding/json"
	"math"
	"net/http"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/eightypercent/go/internal/game"
)

// StateProvider returns a consistent copy of the game state
type StateProvider interface {
	Snapshot(ctx context.Context) (game.State, error)
}

// GameStateResponse is the body of GET /api/game/state
type GameStateResponse struct {
	game.State
	TimeRemaining *int `json:"time_remaining_sec,omitempty"`
}

// StateHandler handles HTTP requests for game state
type StateHandler struct {
	stateProvider StateProvider
	clock         clockwork.Clock
}

// NewStateHandler creates a new state handler
func NewStateHandler(provider StateProvider, clock clockwork.Clock) *StateHandler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &StateHandler{
		stateProvider: provider,
		clock:         clock,
	}
}

// HandleGetGameState handles GET /api/game/state
func (h *StateHandler) HandleGetGameState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	state, err := h.stateProvider.Snapshot(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to get game state")
		http.Error(w, "Failed to get game state", http.StatusServiceUnavailable)
		return
	}

	resp := GameStateResponse{State: state}
	if state.RoundEndsAt != nil {
		remaining := int(math.Ceil(state.RoundEndsAt.Sub(h.clock.Now()).Seconds()))
		if remaining > 0 {
			resp.TimeRemaining = &remaining
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Error().Err(err).Msg("failed to encode game state response")
	}
}

// RegisterStateRoutes registers state-related HTTP routes
func (h *StateHandler) RegisterStateRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/game/state", h.HandleGetGameState)
}
