package publish

import (
	"context"
	"encoding/json"
	"time"
)

// Event is a game notification handed to an external event stream
type Event struct {
	ID        string          `json:"id"`
	EventType string          `json:"event_type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// EventPublisher delivers game events outside the process
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}
