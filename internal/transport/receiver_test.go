package transport

import (
	"io"
	"net"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/fenix/serpent/internal/protocol"
	"github.com/fenix/serpent/internal/world"
)

func TestReceiverTranslatesInputFrame(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()

	events := make(chan world.Event, 4)
	r := NewReceiver(1, server, events, zerolog.New(io.Discard))
	go r.Run()

	<-events // EventJoin

	go func() {
		protocol.SendInput(client, protocol.DirUp)
		protocol.SendLeave(client)
	}()

	select {
	case ev := <-events:
		in, ok := ev.(world.EventInput)
		if !ok || in.Direction != protocol.DirUp {
			t.Fatalf("event = %+v, want EventInput{Direction: DirUp}", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for EventInput")
	}

	select {
	case ev := <-events:
		leave, ok := ev.(world.EventLeave)
		if !ok || leave.Err != nil {
			t.Fatalf("event = %+v, want a clean EventLeave", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for EventLeave")
	}
}

func TestReceiverEmitsLeaveOnDisconnect(t *testing.T) {
	client, server := net.Pipe()
	events := make(chan world.Event, 4)
	r := NewReceiver(2, server, events, zerolog.New(io.Discard))
	go r.Run()

	<-events // EventJoin

	client.Close()

	select {
	case ev := <-events:
		if _, ok := ev.(world.EventLeave); !ok {
			t.Fatalf("event = %+v, want EventLeave", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for EventLeave on disconnect")
	}
}

type rejectAllGuard struct{}

func (rejectAllGuard) Allow(uint64) bool { return false }

func TestReceiverDropsInputWhenGuardRejects(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()

	events := make(chan world.Event, 4)
	r := NewReceiver(1, server, events, zerolog.New(io.Discard))
	r.SetGuard(rejectAllGuard{})
	go r.Run()

	<-events // EventJoin

	go protocol.SendInput(client, protocol.DirDown)

	select {
	case ev := <-events:
		t.Fatalf("expected no event for a rejected input, got %+v", ev)
	case <-time.After(100 * time.Millisecond):
	}
}
