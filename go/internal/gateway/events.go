package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mcdev12/eightypercent/go/internal/game"
	"github.com/mcdev12/eightypercent/go/internal/game/events"
)

// GameEvent is the envelope for every message sent to clients
type GameEvent struct {
	ID        string           `json:"id"`        // Event UUID
	Type      events.EventType `json:"type"`      // Event type
	Timestamp time.Time        `json:"timestamp"` // Event creation time
	Data      json.RawMessage  `json:"data"`      // Event-specific payload
}

// NewGameEvent wraps an engine notification in the wire envelope
func NewGameEvent(event events.Event, now time.Time) (*GameEvent, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", event.Type(), err)
	}
	return &GameEvent{
		ID:        uuid.New().String(),
		Type:      event.Type(),
		Timestamp: now,
		Data:      data,
	}, nil
}

// ClientMessageType identifies an inbound client intent
type ClientMessageType string

const (
	ClientMessageJoin   ClientMessageType = "join"
	ClientMessageReady  ClientMessageType = "ready"
	ClientMessageSubmit ClientMessageType = "submitNumber"
)

// ClientMessage is the envelope clients send over the websocket
type ClientMessage struct {
	Type ClientMessageType `json:"type"`
	Data json.RawMessage   `json:"data,omitempty"`
}

// JoinData is the payload of a join message
type JoinData struct {
	Name string `json:"name"`
}

// SubmitData is the payload of a submitNumber message
type SubmitData struct {
	Number *int `json:"number"`
}

var (
	ErrUnknownMessage = errors.New("unknown message type")
	ErrInvalidPayload = errors.New("invalid payload")
)

// Command is one inbound intent attributed to a player, applied by the Room
type Command interface {
	isCommand()
}

// JoinCommand asks to enter the lobby under Name
type JoinCommand struct {
	PlayerID string
	Name     string
}

// ReadyCommand marks the player ready for the next round
type ReadyCommand struct {
	PlayerID string
}

// SubmitCommand carries a pick already checked against the rules' range
type SubmitCommand struct {
	PlayerID string
	Number   int
}

// LeaveCommand is queued when the player's connection closes
type LeaveCommand struct {
	PlayerID string
}

// snapshotCommand asks the room goroutine for a copy of the engine state
type snapshotCommand struct {
	reply chan game.State
}

func (JoinCommand) isCommand()     {}
func (ReadyCommand) isCommand()    {}
func (SubmitCommand) isCommand()   {}
func (LeaveCommand) isCommand()    {}
func (snapshotCommand) isCommand() {}

// ParseClientMessage decodes a raw websocket message into a command.
// Unknown shapes and numbers outside the rules' range are rejected here so
// the engine only ever sees well-formed intents.
func ParseClientMessage(playerID string, raw []byte, rules game.Rules) (Command, error) {
	var msg ClientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	switch msg.Type {
	case ClientMessageJoin:
		var data JoinData
		if err := decodeData(msg.Data, &data); err != nil {
			return nil, err
		}
		if strings.TrimSpace(data.Name) == "" {
			// let the engine report the missing name to the client
			return JoinCommand{PlayerID: playerID}, nil
		}
		return JoinCommand{PlayerID: playerID, Name: data.Name}, nil

	case ClientMessageReady:
		return ReadyCommand{PlayerID: playerID}, nil

	case ClientMessageSubmit:
		var data SubmitData
		if err := decodeData(msg.Data, &data); err != nil {
			return nil, err
		}
		if data.Number == nil {
			return nil, fmt.Errorf("%w: number is required", ErrInvalidPayload)
		}
		if !rules.InRange(*data.Number) {
			return nil, fmt.Errorf("%w: number %d out of range [%d,%d]",
				ErrInvalidPayload, *data.Number, rules.MinNumber, rules.MaxNumber)
		}
		return SubmitCommand{PlayerID: playerID, Number: *data.Number}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMessage, msg.Type)
	}
}

func decodeData(data json.RawMessage, target any) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: missing data", ErrInvalidPayload)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return nil
}
