package game

// Pause marks a player's snake as frozen for the tick loop: its Step is
// skipped until Resume (optionally after a freeze window) clears it. It also
// cancels any resume already pending, so a second PAUSE arriving before an
// earlier RESUME's freeze window elapses keeps the player paused instead of
// being overridden by the stale pending resume. Grounded on
// game_pause_player.
func (g *GameState) Pause(id PlayerID) bool {
	p, ok := g.Players[id]
	if !ok || !p.Alive {
		return false
	}
	p.Paused = true
	p.ResumePending = false
	return true
}

// ScheduleResume arms a pending resume that becomes effective at
// freezeUntilTick, giving the client a freeze window after RESUME before
// movement actually continues. Grounded on game_schedule_resume_player.
func (g *GameState) ScheduleResume(id PlayerID, freezeUntilTick int) bool {
	p, ok := g.Players[id]
	if !ok || !p.Alive || !p.Paused {
		return false
	}
	p.ResumePending = true
	p.ResumeFreezeAt = freezeUntilTick
	return true
}

// ResolvePendingResumes clears Paused for any player whose freeze window has
// elapsed as of the current tick. Called once per tick from the World
// before Step. Grounded on game_resume_player, split from
// ScheduleResume the way the original splits "resume requested" from
// "resume takes effect" across two functions.
func (g *GameState) ResolvePendingResumes() {
	for _, p := range g.Players {
		if p.ResumePending && g.Tick >= p.ResumeFreezeAt {
			p.Paused = false
			p.ResumePending = false
		}
	}
}

// RemovePlayer drops a player from the world entirely (LEAVE, or
// disconnect). Returns false if the player was not present.
func (g *GameState) RemovePlayer(id PlayerID) bool {
	if _, ok := g.Players[id]; !ok {
		return false
	}
	delete(g.Players, id)
	for i, pid := range g.PlayerOrder {
		if pid == id {
			g.PlayerOrder = append(g.PlayerOrder[:i], g.PlayerOrder[i+1:]...)
			break
		}
	}
	return true
}

// EndCondition reports whether the game should end on this tick, and why.
// Single-player games end the instant their one snake dies; multiplayer
// games end when the grace period after reaching zero players expires; a
// timed game, single- or multiplayer, also ends when its clock runs out.
// Grounded on handle_end_event and the
// grace-wait constant in server/game.c.
type EndReason int

const (
	EndNone EndReason = iota
	EndSinglePlayerDied
	EndAllPlayersGone
	EndTimeExpired
)

// EvaluateEnd must be called once per tick, after Step and after any
// pending-resume resolution, so it observes this tick's deaths.
func (g *GameState) EvaluateEnd(graceWaitTicks int) EndReason {
	if g.Timed && g.GameTimeElapsed >= g.GameTimeTotal {
		return EndTimeExpired
	}

	if g.SinglePlayer {
		for _, p := range g.Players {
			if !p.Alive {
				return EndSinglePlayerDied
			}
		}
		return EndNone
	}

	if len(g.Players) == 0 {
		if g.GraceTick < 0 {
			g.GraceTick = g.Tick + graceWaitTicks
		} else if g.Tick >= g.GraceTick {
			return EndAllPlayersGone
		}
	} else {
		g.GraceTick = -1
	}

	return EndNone
}
