package game

import (
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/eightypercent/go/internal/game/events"
	"github.com/mcdev12/eightypercent/go/internal/models"
)

// Clock is the time source used for round timestamps.
// In production, use clockwork.NewRealClock(). In tests, a FakeClock.
type Clock interface {
	Now() time.Time
}

// Broadcaster delivers engine notifications to clients
type Broadcaster interface {
	// Broadcast sends to every connected client
	Broadcast(event events.Event)
	// SendTo sends to a single player only
	SendTo(playerID string, event events.Event)
}

// EliminationResult is the outcome of an elimination check
type EliminationResult struct {
	EliminatedIDs     []string
	NewRuleIntroduced bool
	GameOver          bool
}

// State is a read-only copy of the session
type State struct {
	Round               int             `json:"round"`
	RoundInProgress     bool            `json:"round_in_progress"`
	GameStarted         bool            `json:"game_started"`
	RoundDurationMs     int64           `json:"round_duration_ms"`
	RoundStartedAt      *time.Time      `json:"round_started_at,omitempty"`
	RoundEndsAt         *time.Time      `json:"round_ends_at,omitempty"`
	EliminatedCount     int             `json:"eliminated_count"`
	LastEliminatedCount int             `json:"last_eliminated_count"`
	LastWinner          string          `json:"last_winner,omitempty"`
	Players             []models.Player `json:"players"`
}

// Engine owns all player and round state of a single game session.
// It is not safe for concurrent use: callers must apply events one at a time.
type Engine struct {
	rules Rules
	clock Clock
	out   Broadcaster

	roster          *roster
	roundInProgress bool
	currentRound    int
	roundDuration   time.Duration
	roundStartedAt  time.Time
	gameStarted     bool
	lastWinner      string

	// eliminatedCount and lastEliminatedCount are maintained by the
	// elimination check. eliminatedSinceStart is set when a check removes
	// someone and consumed by the next round start; disconnects never set it.
	eliminatedCount      int
	lastEliminatedCount  int
	eliminatedSinceStart bool
}

// Option configures an Engine
type Option func(*Engine)

// WithClock overrides the real clock
func WithClock(c Clock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// NewEngine creates an engine with an empty lobby
func NewEngine(rules Rules, out Broadcaster, opts ...Option) *Engine {
	e := &Engine{
		rules: rules,
		clock: clockwork.NewRealClock(),
		out:   out,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.Reset()
	return e
}

// Reset returns the session to an empty lobby
func (e *Engine) Reset() {
	e.roster = newRoster()
	e.roundInProgress = false
	e.currentRound = 0
	e.roundDuration = e.rules.RoundDuration
	e.roundStartedAt = time.Time{}
	e.gameStarted = false
	e.lastWinner = ""
	e.eliminatedCount = 0
	e.lastEliminatedCount = 0
	e.eliminatedSinceStart = false
}

// Join adds a player to the lobby. On error nothing changes and the reason is
// sent to the joiner only.
func (e *Engine) Join(id, name string) error {
	name = strings.TrimSpace(name)
	if err := e.validateJoin(id, name); err != nil {
		log.Info().
			Err(err).
			Str("player_id", id).
			Str("name", name).
			Msg("join rejected")
		e.out.SendTo(id, events.JoinErrorPayload{Reason: err.Error()})
		return err
	}

	e.roster.add(models.NewPlayer(id, name, e.rules.InitialScore))

	log.Info().
		Str("player_id", id).
		Str("name", name).
		Int("players", e.roster.len()).
		Msg("player joined")

	e.out.SendTo(id, events.JoinSuccessPayload{PlayerID: id})
	e.broadcastPlayerList()
	return nil
}

func (e *Engine) validateJoin(id, name string) error {
	if e.gameStarted {
		return ErrGameAlreadyStarted
	}
	if e.roster.len() >= e.rules.MaxPlayers {
		return ErrGameFull
	}
	if _, ok := e.roster.get(id); ok {
		return ErrAlreadyJoined
	}
	if name == "" {
		return ErrNameRequired
	}
	if e.roster.nameTaken(name) {
		return ErrUsernameTaken
	}
	return nil
}

// Leave removes a player at any phase. Game over is never decided here. A
// round in progress resolves if at least two players remain and all of them
// have submitted; a lone remaining player ends the round with their next pick.
func (e *Engine) Leave(id string) {
	if !e.roster.remove(id) {
		return
	}

	log.Info().
		Str("player_id", id).
		Int("players", e.roster.len()).
		Bool("round_in_progress", e.roundInProgress).
		Msg("player left")

	e.broadcastPlayerList()

	if e.roundInProgress && e.roster.len() >= 2 {
		e.resolveIfComplete()
	}
}

// SetReady marks a player ready and starts the round once everyone is
func (e *Engine) SetReady(id string) {
	p, ok := e.roster.get(id)
	if !ok {
		return
	}
	p.Ready = true

	if e.roundInProgress {
		return
	}
	if e.roster.len() >= 2 && e.roster.allReady() {
		e.startRound()
	}
}

// Submit records a pick for the current round. Picks outside a round are ignored.
func (e *Engine) Submit(id string, number int) {
	if !e.roundInProgress {
		return
	}
	if p, ok := e.roster.get(id); ok {
		p.Submit(number)
	}
	e.resolveIfComplete()
}

// shouldEscalate is true for the first round and for any round right after a
// round end that eliminated someone
func (e *Engine) shouldEscalate() bool {
	return e.currentRound == 1 || e.eliminatedSinceStart
}

func (e *Engine) startRound() {
	e.gameStarted = true
	e.roundInProgress = true
	e.currentRound++

	escalated := e.shouldEscalate()
	if escalated {
		e.roundDuration = e.rules.EscalatedDuration
	} else {
		e.roundDuration = e.rules.RoundDuration
	}
	e.eliminatedSinceStart = false
	e.roundStartedAt = e.clock.Now()

	log.Info().
		Int("round", e.currentRound).
		Dur("duration", e.roundDuration).
		Int("players", e.roster.len()).
		Bool("new_rule_introduced", escalated).
		Msg("round started")

	e.out.Broadcast(events.RoundStartPayload{
		Round:             e.currentRound,
		DurationMs:        e.roundDuration.Milliseconds(),
		PlayerCount:       e.roster.len(),
		NewRuleIntroduced: escalated,
		StartedAt:         e.roundStartedAt,
		EndsAt:            e.roundStartedAt.Add(e.roundDuration),
	})
}

func (e *Engine) resolveIfComplete() {
	if !e.roster.allSubmitted() {
		return
	}
	e.endRound()
}

func (e *Engine) endRound() {
	players := e.roster.players()
	target := Target(submittedNumbers(players), e.rules.TargetRatio)

	outcome := scoreRound(players, e.rules.TargetRatio)
	var winnerID *string
	if outcome.winner != nil {
		id := outcome.winner.ID
		winnerID = &id
	}
	if outcome.lastWinner != nil {
		e.lastWinner = outcome.lastWinner.ID
	}

	result := e.checkEliminations()

	logEvent := log.Info().
		Int("round", e.currentRound).
		Float64("target", target).
		Strs("eliminated", result.EliminatedIDs).
		Bool("game_over", result.GameOver)
	if winnerID != nil {
		logEvent = logEvent.Str("winner_id", *winnerID)
	}
	logEvent.Msg("round ended")

	e.out.Broadcast(events.RoundEndPayload{
		WinnerID:          winnerID,
		EliminatedIDs:     result.EliminatedIDs,
		Players:           e.roster.snapshot(),
		Round:             e.currentRound,
		NewRuleIntroduced: result.NewRuleIntroduced,
		GameOver:          result.GameOver,
	})

	if result.GameOver {
		payload := events.GameOverPayload{}
		if p, ok := e.roster.first(); ok {
			payload.Winner = &events.Winner{ID: p.ID, Name: p.Name}
		}
		log.Info().Int("round", e.currentRound).Msg("game over")
		e.out.Broadcast(payload)
	}

	e.resetRound()
}

// checkEliminations removes every player out of points. Running it again
// without a score change removes nobody and reports no new rule.
func (e *Engine) checkEliminations() EliminationResult {
	result := EliminationResult{EliminatedIDs: []string{}}
	for _, p := range e.roster.players() {
		if p.Score <= 0 {
			result.EliminatedIDs = append(result.EliminatedIDs, p.ID)
		}
	}
	for _, id := range result.EliminatedIDs {
		e.roster.remove(id)
	}
	if len(result.EliminatedIDs) > 0 {
		e.eliminatedSinceStart = true
	}

	newEliminatedCount := e.rules.MaxPlayers - e.roster.len()
	result.NewRuleIntroduced = newEliminatedCount > e.lastEliminatedCount
	e.lastEliminatedCount = newEliminatedCount
	e.eliminatedCount = newEliminatedCount
	result.GameOver = e.roster.len() <= 1
	return result
}

// resetRound consumes readiness and picks; ready flags are only cleared here
func (e *Engine) resetRound() {
	for _, p := range e.roster.players() {
		p.ResetRound()
	}
	e.roundInProgress = false
}

func (e *Engine) broadcastPlayerList() {
	e.out.Broadcast(events.PlayerListPayload{Players: e.roster.snapshot()})
}

// Snapshot returns a copy of the session state
func (e *Engine) Snapshot() State {
	s := State{
		Round:               e.currentRound,
		RoundInProgress:     e.roundInProgress,
		GameStarted:         e.gameStarted,
		RoundDurationMs:     e.roundDuration.Milliseconds(),
		EliminatedCount:     e.eliminatedCount,
		LastEliminatedCount: e.lastEliminatedCount,
		LastWinner:          e.lastWinner,
		Players:             e.roster.snapshot(),
	}
	if e.roundInProgress {
		started := e.roundStartedAt
		ends := started.Add(e.roundDuration)
		s.RoundStartedAt = &started
		s.RoundEndsAt = &ends
	}
	return s
}
