// Package transport implements the Listener, Receiver, and Worker
// components that sit between client sockets and the World's event/action
// queues. Grounded on server.c's setup_server_socket/accept_loop pairing
// with recv_input_thread and action_thread.
package transport

import (
	"net"
	"os"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/fenix/serpent/internal/game"
	"github.com/fenix/serpent/internal/registry"
	"github.com/fenix/serpent/internal/world"
)

// Listener accepts connections on a Unix domain socket and hands each one
// to a freshly spawned Receiver. Grounded on setup_server_socket (bind,
// listen, unlink-before-bind) and accept_loop.
type Listener struct {
	socketPath string

	reg     *registry.Registry
	events  chan<- world.Event
	guard   InputGuard
	onReady func()
	log     zerolog.Logger

	nextID atomic.Uint64
}

// New constructs a Listener. Nothing is bound until Run is called. guard
// may be nil to accept every input frame unconditionally.
func New(socketPath string, reg *registry.Registry, events chan<- world.Event, guard InputGuard, log zerolog.Logger) *Listener {
	return &Listener{socketPath: socketPath, reg: reg, events: events, guard: guard, log: log}
}

// OnReady registers a callback invoked exactly once, after the socket is
// bound and listening but before the first Accept — this is what backs the
// "ready <socket_path>" stdout line emitted on startup.
func (l *Listener) OnReady(fn func()) { l.onReady = fn }

// Run binds the socket, invokes the OnReady callback once listening
// begins, then accepts connections until shutdown is closed or ln.Accept
// fails. Grounded on accept_loop_thread's poll-based loop, replaced here
// with a blocking Accept in its own goroutine plus a Close-triggered
// unblock, which is the idiomatic Go equivalent of a cooperative poll
// timeout.
func (l *Listener) Run(shutdown <-chan struct{}) error {
	if err := os.RemoveAll(l.socketPath); err != nil && !os.IsNotExist(err) {
		return err
	}

	ln, err := net.Listen("unix", l.socketPath)
	if err != nil {
		return err
	}
	defer ln.Close()
	defer os.RemoveAll(l.socketPath)

	if unixLn, ok := ln.(*net.UnixListener); ok {
		unixLn.SetUnlinkOnClose(true)
	}

	go func() {
		<-shutdown
		ln.Close()
	}()

	l.log.Info().Str("socket", l.socketPath).Msg("listening")
	if l.onReady != nil {
		l.onReady()
	}

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-shutdown:
				return nil
			default:
				l.log.Error().Err(err).Msg("accept failed")
				return err
			}
		}

		id := game.PlayerID(l.nextID.Add(1))
		l.reg.Register(id, conn)
		l.log.Debug().Uint64("player", uint64(id)).Msg("accepted connection")

		r := NewReceiver(id, conn, l.events, l.log)
		r.SetGuard(l.guard)
		go r.Run()
	}
}
