package transport

import (
	"errors"
	"io"
	"net"

	"github.com/rs/zerolog"

	"github.com/fenix/serpent/internal/game"
	"github.com/fenix/serpent/internal/protocol"
	"github.com/fenix/serpent/internal/world"
)

// Receiver owns one client connection's read side: it decodes frames and
// turns them into Events for the Main loop. Grounded on recv_input_thread.
type Receiver struct {
	id     game.PlayerID
	conn   net.Conn
	events chan<- world.Event
	log    zerolog.Logger

	guard InputGuard
}

// InputGuard rate-limits INPUT frames; satisfied by *inputguard.Guard.
// Declared here as an interface so this package doesn't need to import
// inputguard just to accept one.
type InputGuard interface {
	Allow(playerID uint64) bool
}

// NewReceiver constructs a Receiver. Call SetGuard before Run if input
// flood protection is wanted; a nil guard allows every input through.
func NewReceiver(id game.PlayerID, conn net.Conn, events chan<- world.Event, log zerolog.Logger) *Receiver {
	return &Receiver{id: id, conn: conn, events: events, log: log}
}

// SetGuard installs a flood guard.
func (r *Receiver) SetGuard(g InputGuard) { r.guard = g }

// Run posts Connected for this player before its first read, then reads
// frames until the connection closes or an unrecoverable decode error
// occurs, translating each into an Event. It always ends by emitting exactly
// one EventLeave, matching the original's guarantee that a client's
// disappearance is reported exactly once regardless of cause. Posting the
// join here, ahead of the read loop, guarantees it happens-before any
// Input/Pause/Resume/Disconnected event this same goroutine could otherwise
// raise a race against were the join instead posted by the Listener's
// separate goroutine.
func (r *Receiver) Run() {
	r.events <- world.EventJoin{ID: r.id, Conn: r.conn}

	var endErr error

	for {
		typ, payload, err := protocol.ReadFrame(r.conn)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				endErr = err
			}
			break
		}

		switch typ {
		case protocol.MsgInput:
			if r.guard != nil && !r.guard.Allow(uint64(r.id)) {
				continue
			}
			dir, err := protocol.DecodeInput(payload)
			if err != nil {
				r.log.Warn().Uint64("player", uint64(r.id)).Err(err).Msg("malformed input frame")
				continue
			}
			r.events <- world.EventInput{ID: r.id, Direction: dir}

		case protocol.MsgPause:
			r.events <- world.EventPause{ID: r.id}

		case protocol.MsgResume:
			r.events <- world.EventResume{ID: r.id}

		case protocol.MsgLeave:
			endErr = nil
			goto done

		default:
			r.log.Warn().Uint64("player", uint64(r.id)).Str("type", typ.String()).Msg("unexpected frame")
		}
	}

done:
	r.events <- world.EventLeave{ID: r.id, Err: endErr}
}
