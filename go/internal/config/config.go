package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the process settings read from the environment
type Config struct {
	Port              string        `env:"PORT" envDefault:"8080"`
	LogLevel          string        `env:"LOG_LEVEL" envDefault:"info"`
	RulesFile         string        `env:"RULES_FILE"`
	TimerTickInterval time.Duration `env:"TIMER_TICK_INTERVAL" envDefault:"1s"`
	AllowedOrigins    []string      `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// NATS is optional; events are only logged when NATSURL is empty
	NATSURL           string        `env:"NATS_URL"`
	NATSStream        string        `env:"NATS_STREAM" envDefault:"GAME_EVENTS"`
	NATSSubjectPrefix string        `env:"NATS_SUBJECT_PREFIX" envDefault:"game.events"`
	NATSReconnectWait time.Duration `env:"NATS_RECONNECT_WAIT" envDefault:"2s"`
}

// NewConfigFromEnv parses the environment, applying defaults
func NewConfigFromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.TimerTickInterval <= 0 {
		return Config{}, fmt.Errorf("TIMER_TICK_INTERVAL must be positive, got %s", cfg.TimerTickInterval)
	}
	return cfg, nil
}

// Addr returns the HTTP listen address
func (c Config) Addr() string {
	return fmt.Sprintf(":%s", c.Port)
}
