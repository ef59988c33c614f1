package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mcdev12/eightypercent/go/internal/game"
)

// LoadRules reads a YAML rules file on top of the default rules.
// An empty path returns the defaults.
func LoadRules(path string) (game.Rules, error) {
	rules := game.DefaultRules()
	if path == "" {
		return rules, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return game.Rules{}, fmt.Errorf("failed to read rules file: %w", err)
	}
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return game.Rules{}, fmt.Errorf("failed to parse rules: %w", err)
	}
	if err := rules.Validate(); err != nil {
		return game.Rules{}, fmt.Errorf("invalid rules: %w", err)
	}
	return rules, nil
}
