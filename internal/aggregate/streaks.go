package aggregate

import "github.com/vytor/chessduel/internal/models"

// ComputeStreaks returns the longest run of consecutive wins for each player
// over games in the given order. A draw ends the run in progress.
func ComputeStreaks(games []models.Game, player1Name string) models.StreakPair {
	var (
		best    models.StreakPair
		leader  string
		current int
	)

	for _, g := range games {
		slot := slotOf(g, player1Name)
		switch {
		case slot == "":
			leader, current = "", 0
			continue
		case slot == leader:
			current++
		default:
			leader, current = slot, 1
		}

		if slot == models.SlotPlayer1 {
			best.Player1 = max(best.Player1, current)
		} else {
			best.Player2 = max(best.Player2, current)
		}
	}
	return best
}

// CurrentStreak scans back from the most recent game and reports who holds
// the active streak and how long it is. A trailing draw yields ("", 0).
func CurrentStreak(games []models.Game, player1Name string) (string, int) {
	var (
		leader string
		length int
	)
	for i := len(games) - 1; i >= 0; i-- {
		slot := slotOf(games[i], player1Name)
		if slot == "" {
			break
		}
		if leader != "" && slot != leader {
			break
		}
		leader = slot
		length++
	}
	return leader, length
}
