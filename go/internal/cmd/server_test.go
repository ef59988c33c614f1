package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/rs/zerolog"

	"github.com/mcdev12/eightypercent/go/internal/config"
	"github.com/mcdev12/eightypercent/go/internal/game"
	"github.com/mcdev12/eightypercent/go/internal/gateway"
	"github.com/mcdev12/eightypercent/go/internal/publish"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.Disabled)
	os.Exit(m.Run())
}

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	cfg := config.Config{Port: "0", AllowedOrigins: []string{"https://play.example.com"}}
	gatewayConfig := gateway.DefaultConfig()
	gatewayConfig.Metrics = publish.NewCounterMetrics()
	svc := gateway.NewService(gatewayConfig, game.DefaultRules(), publish.NewLogPublisher())
	return setupServer(cfg, svc).Handler
}

func TestHealthCheck(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestHandler(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "OK" {
		t.Fatalf("expected OK, got %q", rec.Body.String())
	}
}

func TestInfo(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestHandler(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/info", nil))

	var body struct {
		Service string                 `json:"service"`
		Version string                 `json:"version"`
		Stats   map[string]interface{} `json:"stats"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Service != "eightypercent" || body.Version != serviceVersion {
		t.Fatalf("unexpected info %+v", body)
	}
	if _, ok := body.Stats["total_connections"]; !ok {
		t.Fatalf("expected connection stats, got %v", body.Stats)
	}
	if _, ok := body.Stats["publish"]; !ok {
		t.Fatalf("expected publish stats, got %v", body.Stats)
	}
}

func TestCORS(t *testing.T) {
	handler := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://play.example.com")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://play.example.com" {
		t.Fatalf("expected allowed origin echoed, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("expected no CORS header for unknown origin, got %q", got)
	}
}
