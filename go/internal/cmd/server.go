package main

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mcdev12/eightypercent/go/internal/config"
	"github.com/mcdev12/eightypercent/go/internal/gateway"
)

const serviceVersion = "1.0.0"

func setupServer(cfg config.Config, svc *gateway.Service) *http.Server {
	mux := http.NewServeMux()

	// Setup CORS middleware
	c := cors.New(cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
		},
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedHeaders: []string{"*"},
	})

	// Register gateway routes (WebSocket and REST)
	svc.RegisterRoutes(mux)

	setupHealthCheck(mux)
	setupInfo(mux, svc)

	handler := c.Handler(mux)

	// WriteTimeout is left unset so hijacked WebSocket connections are not cut
	return &http.Server{
		Addr:              cfg.Addr(),
		Handler:           h2c.NewHandler(handler, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

func setupHealthCheck(mux *http.ServeMux) {
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			log.Error().Err(err).Msg("failed to write health check response")
		}
	})
}

func setupInfo(mux *http.ServeMux, svc *gateway.Service) {
	mux.HandleFunc("/info", func(w http.ResponseWriter, r *http.Request) {
		stats := svc.GetStats()
		w.Header().Set("Content-Type", "application/json")
		err := json.NewEncoder(w).Encode(map[string]interface{}{
			"service": "eightypercent",
			"version": serviceVersion,
			"stats":   stats,
		})
		if err != nil {
			log.Error().Err(err).Msg("failed to encode info response")
		}
	})
}
