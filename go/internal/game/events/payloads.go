package events

import (
	"time"

	"github.com/mcdev12/eightypercent/go/internal/models"
)

// Event payload types shared between the game engine and the gateway

// EventType names an outbound notification on the wire
type EventType string

const (
	EventTypeJoinSuccess EventType = "joinSuccess"
	EventTypeJoinError   EventType = "joinError"
	EventTypePlayerList  EventType = "playerList"
	EventTypeRoundStart  EventType = "roundStart"
	EventTypeRoundEnd    EventType = "roundEnd"
	EventTypeGameOver    EventType = "gameOver"
	EventTypeTimerTick   EventType = "timerTick"
)

// Event is the closed set of notifications the game produces
type Event interface {
	Type() EventType
	isEvent()
}

// JoinSuccessPayload is sent only to the player who joined
type JoinSuccessPayload struct {
	PlayerID string `json:"player_id"`
}

// JoinErrorPayload is sent only to the player whose join was rejected
type JoinErrorPayload struct {
	Reason string `json:"reason"`
}

// PlayerListPayload carries the roster in join order
type PlayerListPayload struct {
	Players []models.Player `json:"players"`
}

// RoundStartPayload is broadcast when every present player is ready
type RoundStartPayload struct {
	Round             int       `json:"round"`
	DurationMs        int64     `json:"duration_ms"`
	PlayerCount       int       `json:"player_count"`
	NewRuleIntroduced bool      `json:"new_rule_introduced"`
	StartedAt         time.Time `json:"started_at"`
	EndsAt            time.Time `json:"ends_at"`
}

// RoundEndPayload is broadcast once every present player has submitted
type RoundEndPayload struct {
	WinnerID          *string         `json:"winner"`
	EliminatedIDs     []string        `json:"game_over_players"`
	Players           []models.Player `json:"players"`
	Round             int             `json:"round"`
	NewRuleIntroduced bool            `json:"new_rule_introduced"`
	GameOver          bool            `json:"game_over"`
}

// Winner identifies the last player standing
type Winner struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// GameOverPayload follows the final RoundEnd
type GameOverPayload struct {
	Winner *Winner `json:"winner"`
}

// TimerTickPayload is a display-only countdown update
type TimerTickPayload struct {
	Round        int       `json:"round"`
	RemainingSec int       `json:"remaining_sec"`
	TickedAt     time.Time `json:"ticked_at"`
}

func (JoinSuccessPayload) Type() EventType { return EventTypeJoinSuccess }
func (JoinErrorPayload) Type() EventType   { return EventTypeJoinError }
func (PlayerListPayload) Type() EventType  { return EventTypePlayerList }
func (RoundStartPayload) Type() EventType  { return EventTypeRoundStart }
func (RoundEndPayload) Type() EventType    { return EventTypeRoundEnd }
func (GameOverPayload) Type() EventType    { return EventTypeGameOver }
func (TimerTickPayload) Type() EventType   { return EventTypeTimerTick }

func (JoinSuccessPayload) isEvent() {}
func (JoinErrorPayload) isEvent()   {}
func (PlayerListPayload) isEvent()  {}
func (RoundStartPayload) isEvent()  {}
func (RoundEndPayload) isEvent()    {}
func (GameOverPayload) isEvent()    {}
func (TimerTickPayload) isEvent()   {}
