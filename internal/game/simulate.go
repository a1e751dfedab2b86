package game

import (
	"math/rand"

	"github.com/fenix/serpent/internal/protocol"
)

// Outcome describes one per-player effect of a tick step, for the World to
// turn into network Actions (broadcasts, GAME_OVER frames) without this
// package knowing anything about transport.
type Outcome struct {
	Player   PlayerID
	Died     bool
	AteFruit bool
}

// Step advances every non-paused, alive snake by one cell and resolves
// collisions. Per snake: adopt the queued direction, compute the new head,
// then check the wall (wrapping the head in EasyMode, dying otherwise),
// obstacle collision, self/other-snake collision, and finally fruit
// consumption. A snake that dies this tick is marked dead and its body is
// left in GameState, but dead snakes are skipped by other snakes' collision
// checks (otherSnakeOccupies) and omitted from snapshots.
func (g *GameState) Step(rng *rand.Rand) []Outcome {
	var outcomes []Outcome
	g.Tick++

	for _, id := range g.PlayerOrder {
		p := g.Players[id]
		if p == nil || !p.Alive || p.Paused {
			continue
		}
		p.TimeElapsedAt++

		s := &p.Snake
		s.Direction = s.NextDirection
		newHead := s.Head().Add(s.Direction)

		if !g.InBounds(newHead) {
			if !g.EasyMode {
				p.Alive = false
				outcomes = append(outcomes, Outcome{Player: id, Died: true})
				continue
			}
			newHead = g.wrap(newHead)
		}

		if g.ObstacleAt(newHead) {
			p.Alive = false
			outcomes = append(outcomes, Outcome{Player: id, Died: true})
			continue
		}

		if g.snakeOccupiedExceptTail(s, newHead) || g.otherSnakeOccupies(id, newHead) {
			p.Alive = false
			outcomes = append(outcomes, Outcome{Player: id, Died: true})
			continue
		}

		ateFruit := g.consumeFruitAt(newHead)

		s.Body = append([]Position{newHead}, s.Body...)
		if ateFruit {
			p.Score++
			g.SpawnFruit(rng)
		} else if s.PendingGrowth > 0 {
			s.PendingGrowth--
		} else {
			s.Body = s.Body[:len(s.Body)-1]
		}

		if ateFruit {
			outcomes = append(outcomes, Outcome{Player: id, AteFruit: true})
		}
	}

	return outcomes
}

// snakeOccupiedExceptTail reports self-collision: newHead overlapping any of
// the snake's own segments except the very last, since that segment will
// vacate this tick. When PendingGrowth>0 the tail stays in place, so the full
// body, tail included, is checked instead.
func (g *GameState) snakeOccupiedExceptTail(s *Snake, newHead Position) bool {
	limit := len(s.Body) - 1
	if s.PendingGrowth > 0 {
		limit = len(s.Body)
	}
	for i := 0; i < limit; i++ {
		if s.Body[i] == newHead {
			return true
		}
	}
	return false
}

// otherSnakeOccupies reports whether any other live player's snake occupies
// newHead.
func (g *GameState) otherSnakeOccupies(self PlayerID, newHead Position) bool {
	for id, p := range g.Players {
		if id == self || !p.Alive {
			continue
		}
		if p.Snake.Occupies(newHead) {
			return true
		}
	}
	return false
}

// consumeFruitAt deactivates the fruit at pos, if any, and reports whether
// one was consumed.
func (g *GameState) consumeFruitAt(pos Position) bool {
	for i := range g.Fruits {
		if g.Fruits[i].Active && g.Fruits[i].Pos == pos {
			g.Fruits[i].Active = false
			return true
		}
	}
	return false
}

// SetDirection queues a new heading for a player's snake, rejecting an
// immediate reversal (a snake cannot turn directly onto its own neck).
// Grounded on game_update_player_direction.
func (g *GameState) SetDirection(id PlayerID, dir protocol.Direction) bool {
	p, ok := g.Players[id]
	if !ok || !p.Alive {
		return false
	}
	if dir.Opposite() == p.Snake.Direction && len(p.Snake.Body) > 1 {
		return false
	}
	p.Snake.NextDirection = dir
	return true
}
