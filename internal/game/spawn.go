package game

import (
	"bufio"
	"fmt"
	"io"
	"math/rand"
	"strings"

	"github.com/fenix/serpent/internal/protocol"
)

// maxObstacles caps obstacle count relative to grid area, mirroring the
// original's capacity-divisor scheme (server/game.c's game_spawn_obstacles).
func maxObstacles(g *GameState) int {
	n := int(g.Width*g.Height) / 120
	if n < 1 {
		n = 1
	}
	return n
}

// occupied reports whether pos is unavailable for a new spawn: inside any
// snake, on an obstacle, or on an active fruit.
func (g *GameState) occupied(pos Position) bool {
	if g.ObstacleAt(pos) {
		return true
	}
	for _, p := range g.Players {
		if p.Alive && p.Snake.Occupies(pos) {
			return true
		}
	}
	for _, f := range g.Fruits {
		if f.Active && f.Pos == pos {
			return true
		}
	}
	return false
}

// SpawnObstaclesRandom scatters obstacles at random unoccupied cells up to
// the computed cap, retrying placement attempts rather than failing outright
// when the grid is crowded. Grounded on game_spawn_obstacles, which always
// spawned randomly in the original (the from-file path was a TODO there).
// No placed obstacle may be adjacent (8-neighborhood, including itself) to
// another obstacle, so a lone gap is never narrower than one free cell.
func (g *GameState) SpawnObstaclesRandom(rng *rand.Rand) {
	target := maxObstacles(g)
	for len(g.Obstacles) < target {
		placed := false
		for attempt := 0; attempt < 1000; attempt++ {
			pos := Position{X: rng.Int31n(g.Width), Y: rng.Int31n(g.Height)}
			if g.occupied(pos) || g.obstacleAdjacent(pos) {
				continue
			}
			g.Obstacles = append(g.Obstacles, Obstacle{Pos: pos})
			placed = true
			break
		}
		if !placed {
			break
		}
	}
}

// obstacleAdjacent reports whether pos lies within Chebyshev distance 1 of
// any existing obstacle.
func (g *GameState) obstacleAdjacent(pos Position) bool {
	for _, o := range g.Obstacles {
		dx := pos.X - o.Pos.X
		if dx < 0 {
			dx = -dx
		}
		dy := pos.Y - o.Pos.Y
		if dy < 0 {
			dy = -dy
		}
		if dx <= 1 && dy <= 1 {
			return true
		}
	}
	return false
}

// SpawnObstaclesFromFile loads obstacle coordinates from r: one "x y" pair
// per line, blank lines and lines starting with '#' ignored. This resolves
// spec.md §9's open question on the obstacles-file format left unspecified
// by the distillation; coordinates outside the grid or colliding with an
// already-loaded obstacle are rejected with an error rather than silently
// dropped, since a malformed obstacle file is an operator mistake worth
// surfacing at startup.
func (g *GameState) SpawnObstaclesFromFile(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		var x, y int32
		if _, err := fmt.Sscanf(text, "%d %d", &x, &y); err != nil {
			return fmt.Errorf("obstacle file line %d: %q: %w", line, text, err)
		}

		pos := Position{X: x, Y: y}
		if !g.InBounds(pos) {
			return fmt.Errorf("obstacle file line %d: (%d,%d) outside %dx%d grid", line, x, y, g.Width, g.Height)
		}
		if g.ObstacleAt(pos) {
			return fmt.Errorf("obstacle file line %d: (%d,%d) duplicated", line, x, y)
		}
		g.Obstacles = append(g.Obstacles, Obstacle{Pos: pos})
	}
	return scanner.Err()
}

// SpawnFruit activates an inactive fruit slot at a random unoccupied cell,
// or appends a new one if every existing slot is active. Grounded on
// game_add_fruit; the original's commented-out consumption path is fully
// implemented here rather than left as a TODO.
func (g *GameState) SpawnFruit(rng *rand.Rand) {
	pos, ok := g.randomFreeCell(rng)
	if !ok {
		return
	}

	for i := range g.Fruits {
		if !g.Fruits[i].Active {
			g.Fruits[i] = Fruit{Pos: pos, Active: true}
			return
		}
	}
	g.Fruits = append(g.Fruits, Fruit{Pos: pos, Active: true})
}

func (g *GameState) randomFreeCell(rng *rand.Rand) (Position, bool) {
	for attempt := 0; attempt < 1000; attempt++ {
		pos := Position{X: rng.Int31n(g.Width), Y: rng.Int31n(g.Height)}
		if !g.occupied(pos) {
			return pos, true
		}
	}
	return Position{}, false
}

// SpawnPlayer places a new snake of InitialSnakeLength cells facing RIGHT,
// at a random run of in-bounds cells that avoids obstacles (see
// findSnakeSpawn). Grounded on game_add_player's placement loop; if no such
// run is found, it falls back to a single-cell snake at a random unoccupied
// cell, or at (0,0) if none is found either.
func (g *GameState) SpawnPlayer(id PlayerID, rng *rand.Rand, tick int) *Player {
	const length = 3

	body, dir, ok := g.findSnakeSpawn(rng, length)
	if !ok {
		// Degrade to a single-cell snake rather than refuse the join.
		if pos, found := g.randomFreeCell(rng); found {
			body = []Position{pos}
			dir = protocol.DirRight
		} else {
			body = []Position{{X: 0, Y: 0}}
			dir = protocol.DirRight
		}
	}

	p := &Player{
		ID:           id,
		Alive:        true,
		JoinedAtTick: tick,
		Snake: Snake{
			Body:          body,
			Direction:     dir,
			NextDirection: dir,
		},
	}
	g.Players[id] = p
	g.PlayerOrder = append(g.PlayerOrder, id)
	return p
}

// findSnakeSpawn searches for a straight run of `length` free cells, always
// facing RIGHT. A candidate run is rejected only when one of its cells
// coincides with an obstacle; other snakes and fruit do not block placement.
func (g *GameState) findSnakeSpawn(rng *rand.Rand, length int) ([]Position, protocol.Direction, bool) {
	const dir = protocol.DirRight

	for attempt := 0; attempt < 1000; attempt++ {
		head := Position{X: rng.Int31n(g.Width), Y: rng.Int31n(g.Height)}

		body := make([]Position, length)
		body[0] = head
		valid := g.InBounds(head) && !g.ObstacleAt(head)
		for i := 1; i < length && valid; i++ {
			prev := body[i-1]
			next := prev.Add(dir.Opposite())
			if !g.InBounds(next) || g.ObstacleAt(next) {
				valid = false
				break
			}
			body[i] = next
		}
		if valid {
			return body, dir, true
		}
	}
	return nil, 0, false
}
