package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/eightypercent/go/internal/game/events"
	"github.com/mcdev12/eightypercent/go/internal/publish"
)

// MessageHandler receives client traffic from the connection manager
type MessageHandler interface {
	// HandleMessage is called for every text frame read from a connection
	HandleMessage(playerID string, message []byte)
	// HandleDisconnect is called exactly once per connection
	HandleDisconnect(playerID string)
}

// ConnectionManager manages WebSocket connections for the game room.
// Each connection id doubles as the player id.
type ConnectionManager struct {
	connections map[string]*Connection
	mu          sync.RWMutex

	upgrader websocket.Upgrader
	config   ConnectionConfig
	clock    clockwork.Clock

	broadcastCh chan BroadcastMessage
	handler     MessageHandler
	publisher   publish.EventPublisher

	sent    atomic.Uint64
	dropped atomic.Uint64
}

// Connection represents a WebSocket connection to a client
type Connection struct {
	ID      string
	Conn    *websocket.Conn
	Send    chan []byte
	Manager *ConnectionManager

	ConnectedAt time.Time
}

// ConnectionConfig holds configuration for WebSocket connections
type ConnectionConfig struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	PublishTimeout  time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	CheckOrigin     func(r *http.Request) bool
}

// BroadcastMessage is an envelope queued for delivery
type BroadcastMessage struct {
	Event    *GameEvent
	PlayerID string // Optional: if set, only send to this player
}

// DefaultConnectionConfig returns default WebSocket configuration
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		PublishTimeout:  2 * time.Second,
		MaxMessageSize:  1024,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
}

// NewConnectionManager creates a new WebSocket connection manager. Room-wide
// events are also handed to publisher.
func NewConnectionManager(config ConnectionConfig, publisher publish.EventPublisher, clock clockwork.Clock) *ConnectionManager {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if publisher == nil {
		publisher = publish.NewLogPublisher()
	}
	return &ConnectionManager{
		connections: make(map[string]*Connection),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		config:      config,
		clock:       clock,
		broadcastCh: make(chan BroadcastMessage, 1000),
		publisher:   publisher,
	}
}

// SetMessageHandler wires the receiver of client messages. Must be called
// before the first connection is upgraded.
func (cm *ConnectionManager) SetMessageHandler(h MessageHandler) {
	cm.handler = h
}

// Start begins processing broadcast messages
func (cm *ConnectionManager) Start(ctx context.Context) {
	log.Info().Msg("connection manager started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("connection manager shutting down")
			cm.closeAll()
			return
		case message := <-cm.broadcastCh:
			cm.handleBroadcast(ctx, message)
		}
	}
}

// UpgradeConnection upgrades an HTTP connection to WebSocket and returns the
// new connection's player id
func (cm *ConnectionManager) UpgradeConnection(w http.ResponseWriter, r *http.Request) (string, error) {
	conn, err := cm.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return "", fmt.Errorf("failed to upgrade connection: %w", err)
	}

	connection := &Connection{
		ID:          uuid.New().String(),
		Conn:        conn,
		Send:        make(chan []byte, 256),
		Manager:     cm,
		ConnectedAt: cm.clock.Now(),
	}

	cm.registerConnection(connection)

	go connection.writePump()
	go connection.readPump()

	log.Info().
		Str("connection_id", connection.ID).
		Str("remote_addr", r.RemoteAddr).
		Msg("WebSocket connection established")

	return connection.ID, nil
}

func (cm *ConnectionManager) registerConnection(conn *Connection) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	cm.connections[conn.ID] = conn

	log.Debug().
		Str("connection_id", conn.ID).
		Int("total_connections", len(cm.connections)).
		Msg("connection registered")
}

// unregisterConnection removes a connection and notifies the handler. Only the
// first call for a connection has any effect.
func (cm *ConnectionManager) unregisterConnection(conn *Connection) {
	cm.mu.Lock()
	current, exists := cm.connections[conn.ID]
	if !exists || current != conn {
		cm.mu.Unlock()
		return
	}
	delete(cm.connections, conn.ID)
	close(conn.Send)
	cm.mu.Unlock()

	log.Info().
		Str("connection_id", conn.ID).
		Dur("connected_for", cm.clock.Since(conn.ConnectedAt)).
		Msg("connection unregistered")

	if cm.handler != nil {
		cm.handler.HandleDisconnect(conn.ID)
	}
}

func (cm *ConnectionManager) closeAll() {
	cm.mu.RLock()
	conns := make([]*Connection, 0, len(cm.connections))
	for _, c := range cm.connections {
		conns = append(conns, c)
	}
	cm.mu.RUnlock()

	for _, c := range conns {
		c.Conn.Close()
	}
}

// Broadcast queues an event for every connected client
func (cm *ConnectionManager) Broadcast(event events.Event) {
	cm.enqueue("", event)
}

// SendTo queues an event for a single player
func (cm *ConnectionManager) SendTo(playerID string, event events.Event) {
	cm.enqueue(playerID, event)
}

func (cm *ConnectionManager) enqueue(playerID string, event events.Event) {
	envelope, err := NewGameEvent(event, cm.clock.Now())
	if err != nil {
		log.Error().Err(err).Msg("failed to build event envelope")
		return
	}

	select {
	case cm.broadcastCh <- BroadcastMessage{Event: envelope, PlayerID: playerID}:
	default:
		cm.dropped.Add(1)
		log.Warn().
			Str("event_type", string(envelope.Type)).
			Str("player_id", playerID).
			Msg("broadcast channel full, dropping message")
	}
}

func (cm *ConnectionManager) handleBroadcast(ctx context.Context, message BroadcastMessage) {
	eventData, err := json.Marshal(message.Event)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal event for broadcast")
		return
	}

	// Sends are non-blocking, so the read lock also keeps Send channels open
	// for the duration of the fan-out.
	var delivered int
	var slow []*Connection
	cm.mu.RLock()
	for id, conn := range cm.connections {
		if message.PlayerID != "" && id != message.PlayerID {
			continue
		}
		select {
		case conn.Send <- eventData:
			delivered++
		default:
			slow = append(slow, conn)
		}
	}
	cm.mu.RUnlock()

	for _, conn := range slow {
		log.Warn().
			Str("connection_id", conn.ID).
			Msg("connection send buffer full, closing connection")
		cm.unregisterConnection(conn)
		conn.Conn.Close()
	}
	cm.sent.Add(uint64(delivered))

	log.Debug().
		Str("event_type", string(message.Event.Type)).
		Str("player_id", message.PlayerID).
		Int("connections", delivered).
		Msg("event broadcasted")

	if message.PlayerID == "" {
		cm.publish(ctx, message.Event)
	}
}

func (cm *ConnectionManager) publish(ctx context.Context, event *GameEvent) {
	ctx, cancel := context.WithTimeout(ctx, cm.config.PublishTimeout)
	defer cancel()

	err := cm.publisher.Publish(ctx, publish.Event{
		ID:        event.ID,
		EventType: string(event.Type),
		Payload:   event.Data,
		CreatedAt: event.Timestamp,
	})
	if err != nil {
		log.Warn().
			Err(err).
			Str("event_id", event.ID).
			Str("event_type", string(event.Type)).
			Msg("failed to publish event")
	}
}

// GetConnectionStats returns statistics about active connections
func (cm *ConnectionManager) GetConnectionStats() map[string]interface{} {
	cm.mu.RLock()
	total := len(cm.connections)
	cm.mu.RUnlock()

	return map[string]interface{}{
		"total_connections":  total,
		"messages_sent":      cm.sent.Load(),
		"broadcasts_dropped": cm.dropped.Load(),
	}
}

// writePump handles sending messages to the WebSocket connection
func (c *Connection) writePump() {
	ticker := time.NewTicker(c.Manager.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
		c.Manager.unregisterConnection(c)
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("failed to write message to WebSocket")
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Debug().
					Err(err).
					Str("connection_id", c.ID).
					Msg("failed to send ping")
				return
			}
		}
	}
}

// readPump feeds client frames to the message handler
func (c *Connection) readPump() {
	defer func() {
		c.Manager.unregisterConnection(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(c.Manager.config.MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("unexpected WebSocket close error")
			}
			break
		}

		if h := c.Manager.handler; h != nil {
			h.HandleMessage(c.ID, message)
		}
		c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	}
}
