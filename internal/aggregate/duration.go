package aggregate

import (
	"math"

	"github.com/vytor/chessduel/internal/models"
)

const (
	// MaxGameMinutes caps a single blitz or rapid game's estimated duration.
	MaxGameMinutes = 120

	defaultInitialSeconds  = 300
	secondsPerMoveOverhead = 2
)

// GameDurationMinutes estimates how long g took to play. Elapsed wall time is
// the baseline; a plausible clock-based estimate replaces it because
// lastMoveAt is unreliable in exported archives.
func GameDurationMinutes(g models.Game) int {
	return gameDuration(g, MoveCount(g.Moves))
}

func gameDuration(g models.Game, moves int) int {
	minutes := 0
	if g.LastMoveAt != 0 && g.CreatedAt != 0 {
		minutes = max(0, int(math.Round(float64(g.LastMoveAt-g.CreatedAt)/60000)))
	}

	if len(g.Clocks) > 0 {
		initial := defaultInitialSeconds
		if g.Clock != nil && g.Clock.Initial > 0 {
			initial = g.Clock.Initial
		}
		lastClock := float64(g.Clocks[len(g.Clocks)-1]) / 1000
		used := float64(initial) - lastClock
		est := int(math.Round((used + float64(moves*secondsPerMoveOverhead)) / 60))
		if est > 0 && est < MaxGameMinutes {
			minutes = est
		}
	}

	if g.Speed == models.SpeedBlitz || g.Speed == models.SpeedRapid {
		minutes = min(minutes, MaxGameMinutes)
	}
	return minutes
}

// EffectiveEnd returns lastMoveAt, or an estimate of one minute per ply
// after createdAt, or thirty minutes when there are no moves.
func EffectiveEnd(g models.Game) int64 {
	return effectiveEnd(g, MoveCount(g.Moves))
}

func effectiveEnd(g models.Game, moves int) int64 {
	if g.LastMoveAt != 0 {
		return g.LastMoveAt
	}
	if moves > 0 {
		return g.CreatedAt + int64(moves)*60_000
	}
	return g.CreatedAt + 30*60_000
}
