package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mcdev12/eightypercent/go/internal/game"
)

func writeRules(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write rules: %v", err)
	}
	return path
}

func TestLoadRulesDefaults(t *testing.T) {
	rules, err := LoadRules("")
	if err != nil {
		t.Fatalf("load rules: %v", err)
	}
	if rules != game.DefaultRules() {
		t.Fatalf("expected defaults, got %+v", rules)
	}
}

func TestLoadRulesOverlay(t *testing.T) {
	path := writeRules(t, "initial_score: 6\nround_duration: 30s\nescalated_duration: 2m\n")

	rules, err := LoadRules(path)
	if err != nil {
		t.Fatalf("load rules: %v", err)
	}
	if rules.InitialScore != 6 {
		t.Fatalf("expected initial score 6, got %d", rules.InitialScore)
	}
	if rules.RoundDuration != 30*time.Second || rules.EscalatedDuration != 2*time.Minute {
		t.Fatalf("unexpected durations %s/%s", rules.RoundDuration, rules.EscalatedDuration)
	}
	if rules.MaxPlayers != 5 || rules.TargetRatio != 0.8 {
		t.Fatalf("expected untouched fields to keep defaults, got %+v", rules)
	}
}

func TestLoadRulesInvalid(t *testing.T) {
	path := writeRules(t, "max_players: 1\n")

	_, err := LoadRules(path)
	if err == nil || !strings.Contains(err.Error(), "invalid rules") {
		t.Fatalf("expected invalid rules error, got %v", err)
	}
}

func TestLoadRulesMissingFile(t *testing.T) {
	_, err := LoadRules(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil || !strings.Contains(err.Error(), "failed to read rules file") {
		t.Fatalf("expected read error, got %v", err)
	}
}
