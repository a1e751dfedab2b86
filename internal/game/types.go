// Package game holds the server-authoritative simulation: the grid, snakes,
// fruit, obstacles, and the tick step that advances them. A GameState is
// owned and mutated by exactly one goroutine (the World's tick loop, see
// internal/world) — unlike the teacher's per-entity sync.RWMutex, no
// synchronization is needed inside this package.
package game

import "github.com/fenix/serpent/internal/protocol"

// Position is a grid coordinate.
type Position struct {
	X, Y int32
}

// Add returns the position offset by a direction step.
func (p Position) Add(d protocol.Direction) Position {
	switch d {
	case protocol.DirUp:
		return Position{X: p.X, Y: p.Y - 1}
	case protocol.DirDown:
		return Position{X: p.X, Y: p.Y + 1}
	case protocol.DirLeft:
		return Position{X: p.X - 1, Y: p.Y}
	case protocol.DirRight:
		return Position{X: p.X + 1, Y: p.Y}
	default:
		return p
	}
}

// PlayerID uniquely identifies a connected player for the lifetime of a
// world. It is assigned by the Listener on accept, not chosen by the client.
type PlayerID uint64

// Snake is an ordered body: Body[0] is the head.
type Snake struct {
	Body          []Position
	Direction     protocol.Direction
	NextDirection protocol.Direction
	PendingGrowth int
}

// Head returns the snake's head position.
func (s *Snake) Head() Position {
	return s.Body[0]
}

// Occupies reports whether pos is any segment of the snake's body.
func (s *Snake) Occupies(pos Position) bool {
	for _, seg := range s.Body {
		if seg == pos {
			return true
		}
	}
	return false
}

// Player is one connected participant: identity, score, pause state, and
// the snake it owns. Grounded on the original's Player struct
// (id/score/paused/resume_ev_pending/timer/snake) and the teacher's
// Player/PlayerState split, collapsed here since GameState mutation is
// single-threaded.
type Player struct {
	ID    PlayerID
	Score uint64

	Snake Snake

	Paused         bool
	ResumePending  bool
	ResumeFreezeAt int // tick at which a pending resume's freeze window ends

	JoinedAtTick  int
	TimeElapsedAt int // ticks of active (unpaused) play

	Alive bool
}

// Fruit is a single collectible on the grid. Inactive fruit are kept in
// place (not removed) until the spawn policy reactivates them, mirroring
// the original's fixed-capacity fruit array.
type Fruit struct {
	Pos    Position
	Active bool
}

// Obstacle is a static, impassable grid cell.
type Obstacle struct {
	Pos Position
}

// GameState is the full authoritative state of one game world.
type GameState struct {
	Width, Height int32

	Players map[PlayerID]*Player
	// PlayerOrder is kept alongside Players to give deterministic iteration
	// order for snapshot and broadcast construction.
	PlayerOrder []PlayerID

	Fruits    []Fruit
	Obstacles []Obstacle

	Tick int

	SinglePlayer    bool
	Timed           bool
	GameTimeTotal   int // seconds; meaningless if !Timed
	GameTimeElapsed int // seconds of active play

	// EasyMode swaps the wall from lethal to wraparound. Grounded on
	// main.c's "default easy world" comment: the original only turns walls
	// lethal when obstacles are enabled, so here EasyMode is the
	// complement of the obstacles-enabled setting rather than its own
	// independent toggle.
	EasyMode bool

	Over      bool
	GraceTick int // tick at which an empty-lobby grace period expires; -1 if not counting down
}

// NewGameState builds an empty grid of the given dimensions with no players,
// fruit, or obstacles; callers populate those via the spawn policies in
// spawn.go.
func NewGameState(width, height int32, singlePlayer, timed bool, gameTimeSeconds int, easyMode bool) *GameState {
	return &GameState{
		Width:         width,
		Height:        height,
		Players:       make(map[PlayerID]*Player),
		SinglePlayer:  singlePlayer,
		Timed:         timed,
		GameTimeTotal: gameTimeSeconds,
		EasyMode:      easyMode,
		GraceTick:     -1,
	}
}

// InBounds reports whether pos lies within the grid.
func (g *GameState) InBounds(pos Position) bool {
	return pos.X >= 0 && pos.X < g.Width && pos.Y >= 0 && pos.Y < g.Height
}

// wrap folds pos back onto the grid modulo its dimensions, for EasyMode's
// wraparound wall. Go's % can return a negative result for a negative
// dividend, so the result is normalized back into [0, dim) by adding the
// dimension before taking % again.
func (g *GameState) wrap(pos Position) Position {
	x := ((pos.X % g.Width) + g.Width) % g.Width
	y := ((pos.Y % g.Height) + g.Height) % g.Height
	return Position{X: x, Y: y}
}

// ObstacleAt reports whether an obstacle occupies pos.
func (g *GameState) ObstacleAt(pos Position) bool {
	for _, o := range g.Obstacles {
		if o.Pos == pos {
			return true
		}
	}
	return false
}

// AlivePlayerCount returns the number of players with a live snake.
func (g *GameState) AlivePlayerCount() int {
	n := 0
	for _, p := range g.Players {
		if p.Alive {
			n++
		}
	}
	return n
}
