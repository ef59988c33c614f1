package gateway

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/eightypercent/go/internal/game"
	"github.com/mcdev12/eightypercent/go/internal/publish"
)

// Service is the game gateway: one room behind a WebSocket endpoint
type Service struct {
	connectionManager *ConnectionManager
	room              *Room
	wsHandler         *WebSocketHandler
	stateHandler      *StateHandler
	publisher         publish.EventPublisher
	metrics           *publish.CounterMetrics

	// set when the underlying publisher reports its broker link state
	connectivity connectionReporter

	stopOnce sync.Once
}

// Config holds configuration for the gateway service
type Config struct {
	ConnectionConfig ConnectionConfig
	TickInterval     time.Duration
	Clock            clockwork.Clock
	// Metrics, when set, counts every publish attempt
	Metrics *publish.CounterMetrics
}

// DefaultConfig returns default configuration for the gateway
func DefaultConfig() Config {
	return Config{
		ConnectionConfig: DefaultConnectionConfig(),
		TickInterval:     time.Second,
	}
}

// connectionReporter is implemented by publishers with a broker connection
type connectionReporter interface {
	Connected() bool
}

// NewService wires the connection manager, room and HTTP handlers together
func NewService(config Config, rules game.Rules, publisher publish.EventPublisher) *Service {
	clock := config.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if publisher == nil {
		publisher = publish.NewLogPublisher()
	}
	connectivity, _ := publisher.(connectionReporter)
	if config.Metrics != nil {
		publisher = publish.NewMetricPublisher(publisher, config.Metrics)
	}
	if config.TickInterval <= 0 {
		config.TickInterval = time.Second
	}

	connectionManager := NewConnectionManager(config.ConnectionConfig, publisher, clock)
	room := NewRoom(rules, connectionManager, clock, config.TickInterval)
	connectionManager.SetMessageHandler(room)

	return &Service{
		connectionManager: connectionManager,
		room:              room,
		wsHandler:         NewWebSocketHandler(connectionManager),
		stateHandler:      NewStateHandler(room, clock),
		publisher:         publisher,
		metrics:           config.Metrics,
		connectivity:      connectivity,
	}
}

// Start runs the room and the connection manager until ctx is cancelled
func (s *Service) Start(ctx context.Context) error {
	log.Info().Msg("starting game gateway service")

	go s.connectionManager.Start(ctx)
	go s.room.Run(ctx)

	<-ctx.Done()

	log.Info().Msg("game gateway service shutting down")
	return s.Stop()
}

// Stop closes the event publisher. Safe to call more than once.
func (s *Service) Stop() error {
	var err error
	s.stopOnce.Do(func() {
		if err = s.publisher.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close event publisher")
		}
		log.Info().Msg("game gateway service stopped")
	})
	return err
}

// RegisterRoutes registers the WebSocket and state routes
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	s.wsHandler.RegisterRoutes(mux)
	s.stateHandler.RegisterStateRoutes(mux)
	log.Info().Msg("game gateway routes registered")
}

// GetStats returns statistics about the gateway service
func (s *Service) GetStats() map[string]interface{} {
	stats := s.connectionManager.GetConnectionStats()
	stats["service"] = "eightypercent_gateway"
	stats["status"] = "running"
	if s.metrics != nil {
		stats["publish"] = s.metrics.Stats()
	}
	if s.connectivity != nil {
		stats["publisher_connected"] = s.connectivity.Connected()
	}
	return stats
}
