// Package worldmanager wires one Listener, one World, and one Worker
// together and runs their goroutines for the lifetime of a server process.
// A server hosts exactly one game world, so this package's job collapses
// the teacher's Matchmaker (which juggled many concurrent Rooms) down to
// orchestrating a single one: lazy creation on first connection attempt is
// replaced by eager creation at startup (the world must exist to run the
// startup barrier), and the Matchmaker's periodic empty-room cleanup sweep
// is replaced by the World's own grace-period end condition.
package worldmanager

import (
	"os"
	"sync"

	"github.com/rs/zerolog"

	"github.com/fenix/serpent/config"
	"github.com/fenix/serpent/internal/game"
	"github.com/fenix/serpent/internal/inputguard"
	"github.com/fenix/serpent/internal/registry"
	"github.com/fenix/serpent/internal/transport"
	"github.com/fenix/serpent/internal/world"
)

// Manager owns the full set of goroutines that make up one running server.
type Manager struct {
	cfg *config.ServerConfig
	log zerolog.Logger

	reg      *registry.Registry
	world    *world.World
	listener *transport.Listener
	worker   *transport.Worker
	guard    *inputguard.Guard

	shutdown chan struct{}
	stopOnce sync.Once
}

// New builds a Manager and its World, but does not start anything yet.
func New(cfg *config.ServerConfig, seed int64, log zerolog.Logger) *Manager {
	reg := registry.New()
	guard := inputguard.New(config.MaxInputsPerTick)
	w := world.New(cfg, seed, guard, log)

	ln := transport.New(cfg.SocketPath, reg, w.Events(), guard, log)
	worker := transport.NewWorker(w.Actions(), w.Events(), reg, log)

	return &Manager{
		cfg:      cfg,
		log:      log,
		reg:      reg,
		world:    w,
		listener: ln,
		worker:   worker,
		guard:    guard,
		shutdown: make(chan struct{}),
	}
}

// seedObstacles applies cfg's obstacle policy once, before any goroutine
// starts, since GameState must only be touched by the World's own goroutine
// from that point on.
func (m *Manager) seedObstacles() error {
	if m.cfg.ObstaclesFilePath == "" {
		return m.world.SeedObstacles(m.cfg, nil)
	}
	return m.world.SeedObstacles(m.cfg, func() error {
		f, err := os.Open(m.cfg.ObstaclesFilePath)
		if err != nil {
			return err
		}
		defer f.Close()
		return m.worldState().SpawnObstaclesFromFile(f)
	})
}

// worldState exposes the underlying GameState for obstacle seeding only;
// the rest of the codebase reaches GameState exclusively through World's
// Event/Action boundary.
func (m *Manager) worldState() *game.GameState { return m.world.State() }

// OnReady registers a callback fired once the listening socket is bound,
// before the first connection is accepted.
func (m *Manager) OnReady(fn func()) { m.listener.OnReady(fn) }

// Run starts the Listener, Worker, and World goroutines and blocks until
// the world ends or Stop is called. It returns the error, if any, that
// stopped the Listener from binding or accepting.
func (m *Manager) Run() error {
	if err := m.seedObstacles(); err != nil {
		return err
	}

	listenErr := make(chan error, 1)
	go func() { listenErr <- m.listener.Run(m.shutdown) }()

	go m.worker.Run(m.shutdown)
	go m.world.Run(m.shutdown)

	select {
	case err := <-listenErr:
		m.Stop()
		return err
	case <-m.world.Done():
		m.Stop()
		return nil
	}
}

// Stop requests an orderly shutdown; safe to call more than once or
// concurrently.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() { close(m.shutdown) })
}
