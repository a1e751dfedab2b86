package transport

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/fenix/serpent/internal/game"
	"github.com/fenix/serpent/internal/protocol"
	"github.com/fenix/serpent/internal/registry"
	"github.com/fenix/serpent/internal/world"
)

// Worker drains the World's ActionQueue and performs the side effects
// decided by the Main loop: socket sends, registry teardown, and spawning
// the timers that feed delayed Events back in. Grounded on action_thread /
// exec_action.
type Worker struct {
	actions <-chan world.Action
	events  chan<- world.Event
	reg     *registry.Registry
	log     zerolog.Logger
}

// NewWorker constructs a Worker.
func NewWorker(actions <-chan world.Action, events chan<- world.Event, reg *registry.Registry, log zerolog.Logger) *Worker {
	return &Worker{actions: actions, events: events, reg: reg, log: log}
}

// Run drains actions until the channel is closed or shutdown fires. On
// shutdown it drains whatever is already queued before returning, so a
// GAME_OVER or ERROR enqueued just ahead of the shutdown signal is still
// delivered rather than lost to the select's pseudo-random case choice.
func (w *Worker) Run(shutdown <-chan struct{}) {
	for {
		select {
		case <-shutdown:
			w.drain()
			return
		case a, ok := <-w.actions:
			if !ok {
				return
			}
			w.exec(a)
		}
	}
}

// drain executes every Action already buffered on w.actions without
// blocking, for use on the shutdown path only.
func (w *Worker) drain() {
	for {
		select {
		case a := <-w.actions:
			w.exec(a)
		default:
			return
		}
	}
}

func (w *Worker) exec(a world.Action) {
	switch act := a.(type) {
	case world.ActionSendState:
		w.send(act.ID, func(c *registry.Client) error {
			return protocol.SendState(clientWriter{c}, act.Snapshot)
		})

	case world.ActionSendError:
		w.send(act.ID, func(c *registry.Client) error {
			return protocol.SendError(clientWriter{c}, act.Message)
		})

	case world.ActionSendGameOver:
		w.send(act.ID, func(c *registry.Client) error {
			return protocol.SendGameOver(clientWriter{c})
		})
		w.reg.Remove(act.ID)

	case world.ActionDisconnect:
		w.reg.Remove(act.ID)

	case world.ActionScheduleResumeFreeze:
		id := act.ID
		events := w.events
		time.AfterFunc(act.Delay, func() {
			events <- world.EventResumeFreezeElapsed{ID: id}
		})
	}
}

// send looks up id's client and runs fn against it, logging (not
// retrying) a write failure — a broken pipe here just means the client is
// already gone and its own Receiver will report the disconnect shortly.
func (w *Worker) send(id game.PlayerID, fn func(*registry.Client) error) {
	c, ok := w.reg.Find(id)
	if !ok {
		return
	}
	if err := fn(c); err != nil {
		w.log.Debug().Uint64("player", uint64(id)).Err(err).Msg("send failed")
	}
}

// clientWriter adapts a registry.Client (whose Write serializes against
// concurrent writers) to the io.Writer the protocol package expects.
type clientWriter struct{ c *registry.Client }

func (w clientWriter) Write(p []byte) (int, error) { return w.c.Write(p) }
