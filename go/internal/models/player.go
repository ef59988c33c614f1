package models

// Player represents a participant present in the game session
type Player struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Score           int    `json:"score"`
	Number          *int   `json:"number"` // nil until submitted for the current round
	Ready           bool   `json:"ready"`
	ConsecutiveWins int    `json:"consecutive_wins"`
}

// NewPlayer creates a player in its freshly joined state
func NewPlayer(id, name string, initialScore int) *Player {
	return &Player{
		ID:    id,
		Name:  name,
		Score: initialScore,
	}
}

// HasSubmitted reports whether the player picked a number this round
func (p *Player) HasSubmitted() bool {
	return p.Number != nil
}

// Submit records the player's pick for the current round
func (p *Player) Submit(number int) {
	p.Number = &number
}

// Penalize removes points from the player, never going below zero
func (p *Player) Penalize(points int) {
	p.Score = max(0, p.Score-points)
}

// RecordWin counts a round won outright
func (p *Player) RecordWin() {
	p.ConsecutiveWins++
}

// ResetRound clears the per-round fields
func (p *Player) ResetRound() {
	p.Number = nil
	p.Ready = false
}

// Clone returns a deep copy safe to hand to other goroutines
func (p *Player) Clone() Player {
	c := *p
	if p.Number != nil {
		n := *p.Number
		c.Number = &n
	}
	return c
}
