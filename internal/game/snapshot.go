package game

import "github.com/fenix/serpent/internal/protocol"

// Snapshot builds the wire-ready state for one recipient. Every player's
// snake is included (not just the recipient's own), since the protocol's
// STATE frame is a full-world view; PlayerTimeElapsed reflects the
// recipient's own elapsed play time. Grounded on game_snapshot_each_client,
// which likewise builds one Message per connected client from shared
// GameState rather than maintaining per-client deltas.
func (g *GameState) Snapshot(recipient PlayerID) protocol.StateSnapshot {
	st := protocol.StateSnapshot{
		Width:             g.Width,
		Height:            g.Height,
		GameTimeRemaining: g.remainingSeconds(),
	}

	if p, ok := g.Players[recipient]; ok {
		st.Score = p.Score
		st.PlayerTimeElapsed = int32(p.TimeElapsedAt / tickRateHz)
	}

	st.Snakes = make([]protocol.SnakeSnapshot, 0, len(g.PlayerOrder))
	for _, id := range g.PlayerOrder {
		p := g.Players[id]
		if p == nil || !p.Alive {
			continue
		}
		body := make([]protocol.Position, len(p.Snake.Body))
		for i, seg := range p.Snake.Body {
			body[i] = protocol.Position{X: seg.X, Y: seg.Y}
		}
		st.Snakes = append(st.Snakes, protocol.SnakeSnapshot{Body: body})
	}

	st.Fruits = make([]protocol.FruitSnapshot, len(g.Fruits))
	for i, f := range g.Fruits {
		st.Fruits[i] = protocol.FruitSnapshot{
			Pos:    protocol.Position{X: f.Pos.X, Y: f.Pos.Y},
			Active: f.Active,
		}
	}

	st.Obstacles = make([]protocol.ObstacleSnapshot, len(g.Obstacles))
	for i, o := range g.Obstacles {
		st.Obstacles[i] = protocol.ObstacleSnapshot{Pos: protocol.Position{X: o.Pos.X, Y: o.Pos.Y}}
	}

	return st
}

// tickRateHz mirrors config.TickRate; duplicated as a constant here rather
// than importing config, since game must not depend on the config package's
// CLI-facing ServerConfig type.
const tickRateHz = 10

// remainingSeconds reports -1 for an untimed game, matching the wire
// convention the client treats as "no countdown".
func (g *GameState) remainingSeconds() int32 {
	if !g.Timed {
		return -1
	}
	remaining := g.GameTimeTotal - g.GameTimeElapsed
	if remaining < 0 {
		remaining = 0
	}
	return int32(remaining)
}
