package world

import (
	"net"
	"time"

	"github.com/fenix/serpent/internal/game"
	"github.com/fenix/serpent/internal/protocol"
)

// Event is something the Main loop consumes from its EventQueue: a new
// connection, a decoded client frame, or a disconnect. Grounded on
// server.c's msg_to_event / handle_event dispatch, collapsed into a Go
// interface with a type switch rather than the original's tagged union.
type Event interface{ isEvent() }

// EventJoin is produced by a Receiver as its first action, for the
// connection the Listener has just accepted.
type EventJoin struct {
	ID   game.PlayerID
	Conn net.Conn
}

// EventInput is produced by a Receiver decoding an INPUT frame.
type EventInput struct {
	ID        game.PlayerID
	Direction protocol.Direction
}

// EventPause is produced by a Receiver decoding a PAUSE frame.
type EventPause struct{ ID game.PlayerID }

// EventResume is produced by a Receiver decoding a RESUME frame.
type EventResume struct{ ID game.PlayerID }

// EventLeave is produced by a Receiver decoding a LEAVE frame, or by a
// Receiver observing EOF/a read error — both end a player's participation.
type EventLeave struct {
	ID   game.PlayerID
	Err  error // nil for a voluntary LEAVE
}

// EventResumeFreezeElapsed is produced by a Worker-spawned timer once a
// player's post-RESUME freeze window has passed. Grounded on
// resume_wait_thread.
type EventResumeFreezeElapsed struct{ ID game.PlayerID }

func (EventJoin) isEvent()                 {}
func (EventInput) isEvent()                {}
func (EventPause) isEvent()                {}
func (EventResume) isEvent()               {}
func (EventLeave) isEvent()                {}
func (EventResumeFreezeElapsed) isEvent()  {}

// Action is something the Main loop produces for the Worker to carry out:
// a socket send, a registry removal, or a timer to spawn. Grounded on
// server.c's exec_action / Action tagged union.
type Action interface{ isAction() }

// ActionSendState tells the Worker to encode and send a fresh snapshot to
// one recipient.
type ActionSendState struct {
	ID       game.PlayerID
	Snapshot protocol.StateSnapshot
}

// ActionSendError tells the Worker to send an ERROR frame to one client.
type ActionSendError struct {
	ID      game.PlayerID
	Message string
}

// ActionSendGameOver tells the Worker to send a GAME_OVER frame to one
// client.
type ActionSendGameOver struct{ ID game.PlayerID }

// ActionDisconnect tells the Worker to remove a client from the registry,
// closing its connection.
type ActionDisconnect struct{ ID game.PlayerID }

// ActionScheduleResumeFreeze tells the Worker to spawn a timer that
// delivers an EventResumeFreezeElapsed back to the Main loop once Delay has
// elapsed. Grounded on resume_wait_thread being spawned from exec_action.
type ActionScheduleResumeFreeze struct {
	ID    game.PlayerID
	Delay time.Duration
}

func (ActionSendState) isAction()             {}
func (ActionSendError) isAction()             {}
func (ActionSendGameOver) isAction()          {}
func (ActionDisconnect) isAction()            {}
func (ActionScheduleResumeFreeze) isAction()  {}
