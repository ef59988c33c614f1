package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/eightypercent/go/internal/config"
	"github.com/mcdev12/eightypercent/go/internal/gateway"
	"github.com/mcdev12/eightypercent/go/internal/publish"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("could not load .env file")
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.NewConfigFromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warn().Str("log_level", cfg.LogLevel).Msg("unknown log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	rules, err := config.LoadRules(cfg.RulesFile)
	if err != nil {
		log.Fatal().Err(err).Str("rules_file", cfg.RulesFile).Msg("failed to load rules")
	}

	publisher := setupPublisher(cfg)

	gatewayConfig := gateway.DefaultConfig()
	gatewayConfig.TickInterval = cfg.TimerTickInterval
	gatewayConfig.Metrics = publish.NewCounterMetrics()

	svc := gateway.NewService(gatewayConfig, rules, publisher)
	server := setupServer(cfg, svc)

	log.Info().
		Str("addr", server.Addr).
		Int("max_players", rules.MaxPlayers).
		Int("initial_score", rules.InitialScore).
		Dur("round_duration", rules.RoundDuration).
		Dur("escalated_duration", rules.EscalatedDuration).
		Bool("nats", cfg.NATSURL != "").
		Msg("starting eightypercent server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serviceDone := make(chan struct{})
	go func() {
		defer close(serviceDone)
		if err := svc.Start(ctx); err != nil {
			log.Error().Err(err).Msg("gateway service failed")
		}
	}()

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan

	log.Info().Str("signal", sig.String()).Msg("received shutdown signal")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	cancel()
	select {
	case <-serviceDone:
	case <-shutdownCtx.Done():
		log.Warn().Msg("gateway service did not stop in time")
	}

	log.Info().Msg("eightypercent shutdown complete")
}

// setupPublisher streams room events to JetStream when NATS_URL is set and
// only logs them otherwise
func setupPublisher(cfg config.Config) publish.EventPublisher {
	if cfg.NATSURL == "" {
		return publish.NewLogPublisher()
	}

	jsConfig := publish.DefaultJetStreamConfig()
	jsConfig.URL = cfg.NATSURL
	jsConfig.StreamName = cfg.NATSStream
	jsConfig.SubjectPrefix = cfg.NATSSubjectPrefix
	jsConfig.ReconnectWait = cfg.NATSReconnectWait

	publisher, err := publish.NewJetStreamPublisher(jsConfig)
	if err != nil {
		log.Fatal().Err(err).Str("nats_url", cfg.NATSURL).Msg("failed to create JetStream publisher")
	}
	return publisher
}
