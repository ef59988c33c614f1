package game

import (
	"fmt"
	"time"
)

const (
	// PenaltyLoss is taken from a non-duplicate loser in a normal round
	PenaltyLoss = 1
	// PenaltyDuplicate is taken from players who shared a pick in a normal round
	PenaltyDuplicate = 2
	// PenaltyFourPlayerDuplicate is taken from duplicate pickers when four players remain
	PenaltyFourPlayerDuplicate = 1
	// PenaltyExactMatch is taken from every loser when three players remain and someone hits the target
	PenaltyExactMatch = 2

	endgameLowPick  = 0
	endgameHighPick = 100
)

// Rules holds the tunable parameters of a game session
type Rules struct {
	MaxPlayers        int           `yaml:"max_players"`
	InitialScore      int           `yaml:"initial_score"`
	MinNumber         int           `yaml:"min_number"`
	MaxNumber         int           `yaml:"max_number"`
	TargetRatio       float64       `yaml:"target_ratio"`
	RoundDuration     time.Duration `yaml:"round_duration"`
	EscalatedDuration time.Duration `yaml:"escalated_duration"`
}

// DefaultRules returns the standard five-player rule set
func DefaultRules() Rules {
	return Rules{
		MaxPlayers:        5,
		InitialScore:      10,
		MinNumber:         0,
		MaxNumber:         100,
		TargetRatio:       0.8,
		RoundDuration:     time.Minute,
		EscalatedDuration: 5 * time.Minute,
	}
}

// Validate checks that the rules describe a playable game
func (r Rules) Validate() error {
	if r.MaxPlayers < 2 {
		return fmt.Errorf("max_players must be at least 2, got %d", r.MaxPlayers)
	}
	if r.InitialScore <= 0 {
		return fmt.Errorf("initial_score must be positive, got %d", r.InitialScore)
	}
	if r.MinNumber > r.MaxNumber {
		return fmt.Errorf("min_number %d exceeds max_number %d", r.MinNumber, r.MaxNumber)
	}
	if r.TargetRatio <= 0 {
		return fmt.Errorf("target_ratio must be positive, got %v", r.TargetRatio)
	}
	if r.RoundDuration <= 0 || r.EscalatedDuration <= 0 {
		return fmt.Errorf("round durations must be positive")
	}
	return nil
}

// InRange reports whether a pick is inside the allowed number range
func (r Rules) InRange(number int) bool {
	return number >= r.MinNumber && number <= r.MaxNumber
}
