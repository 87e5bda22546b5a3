package testutil

import (
	"time"

	"github.com/vytor/chessduel/internal/models"
)

// Names used by NewGame unless WithPlayers overrides them.
const (
	Alice = "Alice"
	Bob   = "Bob"
)

// GameOption customizes a fixture game.
type GameOption func(*models.Game)

// NewGame returns a blitz game between Alice (white) and Bob (black) that
// white won by resignation.
func NewGame(id string, createdAt time.Time, opts ...GameOption) models.Game {
	g := models.Game{
		ID:        id,
		Rated:     true,
		Speed:     models.SpeedBlitz,
		CreatedAt: createdAt.UnixMilli(),
		Status:    models.StatusResign,
		Winner:    models.White,
		Players: models.Players{
			White: models.Player{User: models.User{Name: Alice}},
			Black: models.Player{User: models.User{Name: Bob}},
		},
	}
	for _, opt := range opts {
		opt(&g)
	}
	return g
}

func WithPlayers(white, black string) GameOption {
	return func(g *models.Game) {
		g.Players.White.User.Name = white
		g.Players.Black.User.Name = black
	}
}

func WithWinner(c models.Color) GameOption {
	return func(g *models.Game) { g.Winner = c }
}

// Drawn marks the game as a draw by agreement.
func Drawn() GameOption {
	return func(g *models.Game) {
		g.Winner = ""
		g.Status = models.StatusDraw
	}
}

func WithStatus(status string) GameOption {
	return func(g *models.Game) { g.Status = status }
}

func WithSpeed(speed string) GameOption {
	return func(g *models.Game) { g.Speed = speed }
}

func WithMoves(moves string) GameOption {
	return func(g *models.Game) { g.Moves = moves }
}

func WithOpening(name string) GameOption {
	return func(g *models.Game) { g.Opening = &models.Opening{Name: name} }
}

func WithLastMoveAt(t time.Time) GameOption {
	return func(g *models.Game) { g.LastMoveAt = t.UnixMilli() }
}

// WithClocks sets the initial time in seconds and the remaining-time samples
// in milliseconds.
func WithClocks(initial int, clocks ...int64) GameOption {
	return func(g *models.Game) {
		g.Clock = &models.Clock{Initial: initial}
		g.Clocks = clocks
	}
}

// WithAnalysis attaches per-side engine summaries; nil leaves a side
// unanalyzed.
func WithAnalysis(white, black *models.PlayerAnalysis) GameOption {
	return func(g *models.Game) {
		g.Players.White.Analysis = white
		g.Players.Black.Analysis = black
	}
}

func WithEvals(evals ...models.Eval) GameOption {
	return func(g *models.Game) { g.Analysis = evals }
}

// Accuracy builds an analysis block with the given accuracy and ACPL.
func Accuracy(accuracy float64, acpl, blunders int) *models.PlayerAnalysis {
	return &models.PlayerAnalysis{Accuracy: accuracy, ACPL: acpl, Blunder: blunders}
}

// Mate is an evaluation with a forced mate; positive favours White.
func Mate(n int) models.Eval {
	return models.Eval{Mate: &n}
}

// Cp is a centipawn evaluation.
func Cp(n int) models.Eval {
	return models.Eval{Eval: &n}
}

// At returns a UTC time for the given date and clock.
func At(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, time.UTC)
}

// ByMonth buckets games by their UTC creation month, keeping argument order.
func ByMonth(games ...models.Game) models.GamesByMonth {
	out := make(models.GamesByMonth)
	for _, g := range games {
		key := time.UnixMilli(g.CreatedAt).UTC().Format("2006-01")
		out[key] = append(out[key], g)
	}
	return out
}
