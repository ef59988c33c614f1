package gateway

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/eightypercent/go/internal/game"
	"github.com/mcdev12/eightypercent/go/internal/game/events"
)

// ErrRoomClosed is returned once the room goroutine has exited
var ErrRoomClosed = errors.New("room closed")

// Room serializes every interaction with the engine onto one goroutine.
// Connections only ever talk to it through the inbox.
type Room struct {
	engine       *game.Engine
	rules        game.Rules
	out          game.Broadcaster
	clock        clockwork.Clock
	tickInterval time.Duration

	inbox chan Command
	done  chan struct{}

	// round whose zero countdown has already been sent
	expiredRound int
}

// NewRoom creates a room around a fresh engine
func NewRoom(rules game.Rules, out game.Broadcaster, clock clockwork.Clock, tickInterval time.Duration) *Room {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Room{
		engine:       game.NewEngine(rules, out, game.WithClock(clock)),
		rules:        rules,
		out:          out,
		clock:        clock,
		tickInterval: tickInterval,
		inbox:        make(chan Command, 256),
		done:         make(chan struct{}),
	}
}

// Run applies queued commands until ctx is cancelled. It must be called once.
func (r *Room) Run(ctx context.Context) {
	defer close(r.done)

	ticker := r.clock.NewTicker(r.tickInterval)
	defer ticker.Stop()

	log.Info().
		Int("max_players", r.rules.MaxPlayers).
		Dur("tick_interval", r.tickInterval).
		Msg("game room started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("game room stopped")
			return
		case cmd := <-r.inbox:
			r.apply(cmd)
		case now := <-ticker.Chan():
			r.tick(now)
		}
	}
}

// HandleMessage parses a client frame and queues the resulting command.
// Malformed frames are dropped here.
func (r *Room) HandleMessage(playerID string, message []byte) {
	cmd, err := ParseClientMessage(playerID, message, r.rules)
	if err != nil {
		log.Warn().
			Err(err).
			Str("player_id", playerID).
			Msg("dropping client message")
		return
	}
	r.enqueue(cmd)
}

// HandleDisconnect queues the player's departure
func (r *Room) HandleDisconnect(playerID string) {
	r.enqueue(LeaveCommand{PlayerID: playerID})
}

// Snapshot returns the engine state as seen by the room goroutine
func (r *Room) Snapshot(ctx context.Context) (game.State, error) {
	reply := make(chan game.State, 1)
	select {
	case r.inbox <- snapshotCommand{reply: reply}:
	case <-r.done:
		return game.State{}, ErrRoomClosed
	case <-ctx.Done():
		return game.State{}, ctx.Err()
	}

	select {
	case state := <-reply:
		return state, nil
	case <-r.done:
		return game.State{}, ErrRoomClosed
	case <-ctx.Done():
		return game.State{}, ctx.Err()
	}
}

func (r *Room) enqueue(cmd Command) {
	select {
	case r.inbox <- cmd:
	case <-r.done:
	}
}

func (r *Room) apply(cmd Command) {
	switch c := cmd.(type) {
	case JoinCommand:
		// rejections are reported to the joiner by the engine
		_ = r.engine.Join(c.PlayerID, c.Name)
	case ReadyCommand:
		r.engine.SetReady(c.PlayerID)
	case SubmitCommand:
		r.engine.Submit(c.PlayerID, c.Number)
	case LeaveCommand:
		r.engine.Leave(c.PlayerID)
		r.resetIfAbandoned()
	case snapshotCommand:
		c.reply <- r.engine.Snapshot()
	default:
		log.Error().Type("command", cmd).Msg("unhandled room command")
	}
}

// resetIfAbandoned reopens the lobby once everyone has left a started game
func (r *Room) resetIfAbandoned() {
	state := r.engine.Snapshot()
	if !state.GameStarted || len(state.Players) > 0 {
		return
	}
	r.engine.Reset()
	r.expiredRound = 0
	log.Info().Int("rounds_played", state.Round).Msg("room empty, lobby reset")
}

// tick broadcasts the remaining round time. Clients use it for display only;
// rounds still end when every present player has submitted.
func (r *Room) tick(now time.Time) {
	state := r.engine.Snapshot()
	if !state.RoundInProgress || state.RoundEndsAt == nil {
		return
	}

	remaining := int(math.Ceil(state.RoundEndsAt.Sub(now).Seconds()))
	if remaining <= 0 {
		if r.expiredRound == state.Round {
			return
		}
		r.expiredRound = state.Round
		remaining = 0
	}

	r.out.Broadcast(events.TimerTickPayload{
		Round:        state.Round,
		RemainingSec: remaining,
		TickedAt:     now,
	})
}
