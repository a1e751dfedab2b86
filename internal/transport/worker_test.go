package transport

import (
	"io"
	"net"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/fenix/serpent/internal/game"
	"github.com/fenix/serpent/internal/protocol"
	"github.com/fenix/serpent/internal/registry"
	"github.com/fenix/serpent/internal/world"
)

func TestWorkerSendsStateToRegisteredClient(t *testing.T) {
	reg := registry.New()
	client, server := net.Pipe()
	defer client.Close()
	reg.Register(1, server)

	actions := make(chan world.Action, 1)
	events := make(chan world.Event, 1)
	w := NewWorker(actions, events, reg, zerolog.New(io.Discard))

	shutdown := make(chan struct{})
	defer close(shutdown)
	go w.Run(shutdown)

	snapshot := protocol.StateSnapshot{Width: 10, Height: 10}
	actions <- world.ActionSendState{ID: 1, Snapshot: snapshot}

	typ, _, err := protocol.ReadFrame(client)
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if typ != protocol.MsgState {
		t.Fatalf("type = %v, want MsgState", typ)
	}
}

func TestWorkerDisconnectRemovesClient(t *testing.T) {
	reg := registry.New()
	_, server := net.Pipe()
	reg.Register(1, server)

	actions := make(chan world.Action, 1)
	events := make(chan world.Event, 1)
	w := NewWorker(actions, events, reg, zerolog.New(io.Discard))

	shutdown := make(chan struct{})
	defer close(shutdown)
	go w.Run(shutdown)

	actions <- world.ActionDisconnect{ID: 1}

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if _, ok := reg.Find(1); !ok {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("client was not removed from the registry")
}

func TestWorkerDrainsPendingActionsOnShutdown(t *testing.T) {
	reg := registry.New()
	client, server := net.Pipe()
	defer client.Close()
	reg.Register(1, server)

	actions := make(chan world.Action, 1)
	events := make(chan world.Event, 1)
	w := NewWorker(actions, events, reg, zerolog.New(io.Discard))

	shutdown := make(chan struct{})
	go w.Run(shutdown)

	actions <- world.ActionSendGameOver{ID: 1}
	close(shutdown)

	typ, _, err := protocol.ReadFrame(client)
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if typ != protocol.MsgGameOver {
		t.Fatalf("type = %v, want MsgGameOver: a queued action must still be delivered on shutdown", typ)
	}
}

func TestWorkerSchedulesResumeFreezeEvent(t *testing.T) {
	reg := registry.New()
	actions := make(chan world.Action, 1)
	events := make(chan world.Event, 1)
	w := NewWorker(actions, events, reg, zerolog.New(io.Discard))

	shutdown := make(chan struct{})
	defer close(shutdown)
	go w.Run(shutdown)

	actions <- world.ActionScheduleResumeFreeze{ID: game.PlayerID(1), Delay: 10 * time.Millisecond}

	select {
	case ev := <-events:
		if _, ok := ev.(world.EventResumeFreezeElapsed); !ok {
			t.Fatalf("event = %+v, want EventResumeFreezeElapsed", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for EventResumeFreezeElapsed")
	}
}
