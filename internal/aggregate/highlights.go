package aggregate

import (
	"cmp"
	"slices"

	"github.com/vytor/chessduel/internal/models"
)

// HighlightLimit is the length of every highlight list.
const HighlightLimit = 10

const missedMateBase = 1000

type candidate struct {
	game        models.Game
	acpl        float64
	blunders    float64
	avgAccuracy float64
}

// FindHighlights ranks analyzed games into five top-10 lists. Games without
// an analysis block for either side are never considered. Ties keep month
// order.
func FindHighlights(games models.GamesByMonth, player1Name, player2Name string) models.Highlights {
	h := models.Highlights{
		MissedMates:  []models.HighlightEntry{},
		BigSwings:    []models.HighlightEntry{},
		HighBlunders: []models.HighlightEntry{},
		GreatGames:   []models.HighlightEntry{},
		ChaoticGames: []models.HighlightEntry{},
	}

	var candidates []candidate
	for _, g := range games.Flatten() {
		if !g.HasAnalysis() {
			continue
		}
		w, b := analysisOrZero(g.Players.White.Analysis), analysisOrZero(g.Players.Black.Analysis)
		candidates = append(candidates, candidate{
			game:        g,
			acpl:        float64(w.ACPL + b.ACPL),
			blunders:    float64(w.Blunder + b.Blunder),
			avgAccuracy: (w.Accuracy + b.Accuracy) / 2,
		})
	}
	if len(candidates) == 0 {
		return h
	}

	for _, c := range candidates {
		if mm := MissedMate(c.game); mm != nil {
			h.MissedMates = append(h.MissedMates, models.HighlightEntry{
				Game:       c.game,
				Score:      float64(missedMateBase - mm.MateIn),
				MissedMate: mm,
			})
		}
	}
	h.MissedMates = topEntries(h.MissedMates, true)

	h.BigSwings = rank(candidates, func(c candidate) float64 { return c.acpl }, true)
	h.HighBlunders = rank(candidates, func(c candidate) float64 { return c.blunders }, true)
	h.GreatGames = rank(candidates, func(c candidate) float64 { return c.avgAccuracy }, true)
	h.ChaoticGames = rank(candidates, func(c candidate) float64 { return c.avgAccuracy }, false)
	return h
}

// MissedMate reports the shortest forced mate the loser of g had on the
// board, or nil. Evaluations at even indexes follow White's moves and odd
// ones Black's; a positive mate favours White.
func MissedMate(g models.Game) *models.MissedMate {
	var loser models.Color
	switch g.Winner {
	case models.White:
		loser = models.Black
	case models.Black:
		loser = models.White
	default:
		return nil
	}

	best := 0
	for i, ev := range g.Analysis {
		if ev.Mate == nil {
			continue
		}
		mate := *ev.Mate
		var dist int
		switch {
		case loser == models.White && i%2 == 0 && mate > 0:
			dist = mate
		case loser == models.Black && i%2 == 1 && mate < 0:
			dist = -mate
		default:
			continue
		}
		if best == 0 || dist < best {
			best = dist
		}
	}
	if best == 0 {
		return nil
	}
	return &models.MissedMate{By: loser, MateIn: best}
}

func analysisOrZero(a *models.PlayerAnalysis) models.PlayerAnalysis {
	if a == nil {
		return models.PlayerAnalysis{}
	}
	return *a
}

func rank(candidates []candidate, metric func(candidate) float64, desc bool) []models.HighlightEntry {
	entries := make([]models.HighlightEntry, len(candidates))
	for i, c := range candidates {
		entries[i] = models.HighlightEntry{Game: c.game, Score: metric(c)}
	}
	return topEntries(entries, desc)
}

func topEntries(entries []models.HighlightEntry, desc bool) []models.HighlightEntry {
	slices.SortStableFunc(entries, func(a, b models.HighlightEntry) int {
		if desc {
			return cmp.Compare(b.Score, a.Score)
		}
		return cmp.Compare(a.Score, b.Score)
	})
	if len(entries) > HighlightLimit {
		entries = entries[:HighlightLimit]
	}
	return entries
}
