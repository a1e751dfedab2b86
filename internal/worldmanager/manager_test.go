package worldmanager

import (
	"io"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/fenix/serpent/config"
	"github.com/fenix/serpent/internal/protocol"
)

func TestManagerAcceptsAClientAndServesSnapshots(t *testing.T) {
	cfg := config.DefaultServerConfig()
	cfg.SocketPath = filepath.Join(t.TempDir(), "manager.sock")
	cfg.SinglePlayer = true

	mgr := New(cfg, 1, zerolog.New(io.Discard))

	ready := make(chan struct{})
	mgr.OnReady(func() { close(ready) })

	runErr := make(chan error, 1)
	go func() { runErr <- mgr.Run() }()

	select {
	case <-ready:
	case <-time.After(2 * time.Second):
		t.Fatal("manager never became ready")
	}

	conn, err := net.Dial("unix", cfg.SocketPath)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	typ, _, err := protocol.ReadFrame(conn)
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if typ != protocol.MsgState {
		t.Fatalf("type = %v, want MsgState (the join snapshot)", typ)
	}

	mgr.Stop()
	select {
	case <-runErr:
	case <-time.After(2 * time.Second):
		t.Fatal("manager did not shut down")
	}
}
