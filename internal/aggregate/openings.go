package aggregate

import (
	"cmp"
	"slices"

	"github.com/vytor/chessduel/internal/models"
)

// ComputeOpeningStats groups games by opening name. Games without an opening
// name are left out entirely.
func ComputeOpeningStats(games models.GamesByMonth, player1Name, player2Name string) map[string]*models.OpeningStat {
	openings := make(map[string]*models.OpeningStat)
	for _, g := range games.Flatten() {
		name := g.OpeningName()
		if name == "" {
			continue
		}
		o, ok := openings[name]
		if !ok {
			o = &models.OpeningStat{Name: name}
			openings[name] = o
		}

		o.Games++
		if g.WhiteName() == player1Name {
			o.Player1WhiteGames++
			o.Player2BlackGames++
		} else {
			o.Player1BlackGames++
			o.Player2WhiteGames++
		}

		switch slotOf(g, player1Name) {
		case models.SlotPlayer1:
			o.Player1Wins++
		case models.SlotPlayer2:
			o.Player2Wins++
		default:
			o.Draws++
		}
	}

	for _, o := range openings {
		o.Player1WinRate = DecisiveWinRate(o.Player1Wins, o.Player2Wins)
		o.Player2WinRate = DecisiveWinRate(o.Player2Wins, o.Player1Wins)
	}
	return openings
}

// SortOpenings lists openings by games played, most first, then by name.
func SortOpenings(openings map[string]*models.OpeningStat) []models.OpeningStat {
	out := make([]models.OpeningStat, 0, len(openings))
	for _, o := range openings {
		out = append(out, *o)
	}
	slices.SortFunc(out, func(a, b models.OpeningStat) int {
		if c := cmp.Compare(b.Games, a.Games); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return out
}
