// Package world owns the single game world a server process hosts: the
// GameState, its event/action queues, and the fixed-rate tick loop that
// drives the simulation. Grounded on server.c's main loop
// (accept_loop/handle_event/game_update/broadcast cycle), realized here as
// one goroutine reading from two buffered channels instead of the
// original's TsQueue pair.
package world

import (
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/fenix/serpent/config"
	"github.com/fenix/serpent/internal/game"
	"github.com/fenix/serpent/internal/inputguard"
)

// World drives one game from startup barrier through end condition.
type World struct {
	state *game.GameState
	rng   *rand.Rand
	log   zerolog.Logger

	events  chan Event
	actions chan Action

	startedAt time.Time
	barrier   time.Duration

	guard *inputguard.Guard

	done chan struct{}
}

// New constructs a World. The caller owns wiring Events into w.Events() and
// draining w.Actions(); New itself does not start the tick loop. guard may
// be nil, in which case no per-tick input-rate reset happens (the Receiver
// side of flood protection still works without it, just without the
// per-tick counter clear).
func New(cfg *config.ServerConfig, seed int64, guard *inputguard.Guard, log zerolog.Logger) *World {
	gt := cfg.GameTimeSeconds
	state := game.NewGameState(config.GridWidth, config.GridHeight, cfg.SinglePlayer, cfg.Timed(), gt, !cfg.ObstaclesEnabled)

	return &World{
		state:   state,
		rng:     rand.New(rand.NewSource(seed)),
		log:     log,
		events:  make(chan Event, config.EventQueueCapacity),
		actions: make(chan Action, config.ActionQueueCapacity),
		barrier: config.StartupBarrier,
		guard:   guard,
		done:    make(chan struct{}),
	}
}

// Events returns the channel Receivers and the Worker's timers send Events to.
func (w *World) Events() chan<- Event { return w.events }

// Actions returns the channel the Worker drains Actions from.
func (w *World) Actions() <-chan Action { return w.actions }

// Done is closed once the world has ended and delivered its final actions.
func (w *World) Done() <-chan struct{} { return w.done }

// State exposes the underlying GameState for one-time startup seeding
// (obstacle placement) before the tick loop begins. Once Run starts, the
// GameState must only be touched from the tick-loop goroutine — callers
// must not retain or mutate the returned pointer after calling Run.
func (w *World) State() *game.GameState { return w.state }

// SeedObstacles applies the configured obstacle policy before the tick loop
// starts. Returns an error only for a malformed obstacles file; a caller
// that gets one should abort startup.
func (w *World) SeedObstacles(cfg *config.ServerConfig, fromFile func() error) error {
	if !cfg.ObstaclesEnabled {
		return nil
	}
	if cfg.RandomWorld || fromFile == nil {
		w.state.SpawnObstaclesRandom(w.rng)
		return nil
	}
	return fromFile()
}

// Run executes the startup barrier (single-player games skip it, matching
// the original's immediate-start rule for a lone player) then the tick
// loop, until an end condition fires or ctx-style shutdown is requested via
// Stop. Run blocks; call it from its own goroutine.
func (w *World) Run(shutdown <-chan struct{}) {
	defer close(w.done)

	w.startedAt = time.Now()
	if !w.state.SinglePlayer {
		w.awaitBarrierOrFirstPlayer(shutdown)
	}

	ticker := time.NewTicker(config.TickPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-shutdown:
			w.broadcastError("server shutting down")
			return
		case ev := <-w.events:
			w.handleEvent(ev)
		case <-ticker.C:
			if w.tick() {
				return
			}
		}
	}
}

// awaitBarrierOrFirstPlayer blocks until either the startup barrier elapses
// or a player has joined, draining Events (mostly EventJoin) as they arrive
// so the first player isn't left waiting on a full queue. Grounded on the
// original's barrier semantics described in spec.md §4.3.
func (w *World) awaitBarrierOrFirstPlayer(shutdown <-chan struct{}) {
	deadline := time.After(w.barrier)
	for {
		select {
		case <-shutdown:
			return
		case ev := <-w.events:
			w.handleEvent(ev)
			if len(w.state.Players) > 0 {
				return
			}
		case <-deadline:
			return
		}
	}
}

// handleEvent applies one Event to GameState and emits any resulting
// Actions. Grounded on handle_event's dispatch table.
func (w *World) handleEvent(ev Event) {
	switch e := ev.(type) {
	case EventJoin:
		p := w.state.SpawnPlayer(e.ID, w.rng, w.state.Tick)
		w.state.SpawnFruit(w.rng)
		w.log.Info().Uint64("player", uint64(e.ID)).Msg("player joined")
		w.sendSnapshot(p.ID)

	case EventInput:
		if !w.state.SetDirection(e.ID, e.Direction) {
			w.emit(ActionSendError{ID: e.ID, Message: "invalid direction"})
		}

	case EventPause:
		w.state.Pause(e.ID)

	case EventResume:
		freezeUntil := w.state.Tick + config.ResumeFreezeSeconds*config.TickRate
		if w.state.ScheduleResume(e.ID, freezeUntil) {
			w.emit(ActionScheduleResumeFreeze{ID: e.ID, Delay: config.ResumeFreezeSeconds * time.Second})
		}

	case EventResumeFreezeElapsed:
		// Nothing to do: ResolvePendingResumes, called every tick, clears
		// Paused once the tick recorded by ScheduleResume is reached. This
		// event does not itself trigger a tick.

	case EventLeave:
		w.state.RemovePlayer(e.ID)
		if w.guard != nil {
			w.guard.Forget(uint64(e.ID))
		}
		w.emit(ActionDisconnect{ID: e.ID})
		if e.Err != nil {
			w.log.Warn().Uint64("player", uint64(e.ID)).Err(e.Err).Msg("player disconnected")
		} else {
			w.log.Info().Uint64("player", uint64(e.ID)).Msg("player left")
		}
	}
}

// tick advances the simulation by one step and broadcasts the result.
// Returns true if the world has ended.
func (w *World) tick() bool {
	if w.guard != nil {
		w.guard.ResetTick()
	}
	w.state.ResolvePendingResumes()
	for _, o := range w.state.Step(w.rng) {
		if o.Died {
			w.emit(ActionSendGameOver{ID: o.Player})
		}
	}

	if w.state.Timed && w.state.Tick%config.TickRate == 0 {
		w.state.GameTimeElapsed++
	}

	w.broadcastState()

	switch w.state.EvaluateEnd(config.GraceWaitSeconds * config.TickRate) {
	case game.EndSinglePlayerDied, game.EndAllPlayersGone, game.EndTimeExpired:
		w.broadcastGameOver()
		return true
	default:
		return false
	}
}

func (w *World) sendSnapshot(id game.PlayerID) {
	w.emit(ActionSendState{ID: id, Snapshot: w.state.Snapshot(id)})
}

func (w *World) broadcastState() {
	for _, id := range w.state.PlayerOrder {
		w.sendSnapshot(id)
	}
}

func (w *World) broadcastGameOver() {
	for _, id := range w.state.PlayerOrder {
		w.emit(ActionSendGameOver{ID: id})
	}
}

func (w *World) broadcastError(message string) {
	for _, id := range w.state.PlayerOrder {
		w.emit(ActionSendError{ID: id, Message: message})
	}
}

// emit pushes an Action to the Worker, dropping it with a log line rather
// than blocking the tick loop if the Worker has fallen behind — the
// ActionQueue is sized generously (config.ActionQueueCapacity) precisely so
// this should never trigger in practice.
func (w *World) emit(a Action) {
	select {
	case w.actions <- a:
	default:
		w.log.Warn().Msg("action queue full, dropping action")
	}
}
