package aggregate

import "github.com/vytor/chessduel/internal/models"

// Default names used when the archive holds no games.
const (
	DefaultPlayer1Name = "Player 1"
	DefaultPlayer2Name = "Player 2"
)

// IdentityResolver names the two participants of an archive.
type IdentityResolver func(games models.GamesByMonth) (player1, player2 string)

// IdentifyPlayers takes White and Black of the first game in the earliest
// non-empty month as player 1 and player 2.
func IdentifyPlayers(games models.GamesByMonth) (string, string) {
	for _, key := range games.SortedKeys() {
		bucket := games[key]
		if len(bucket) == 0 {
			continue
		}
		first := bucket[0]
		p1, p2 := first.WhiteName(), first.BlackName()
		if p1 == "" {
			p1 = DefaultPlayer1Name
		}
		if p2 == "" {
			p2 = DefaultPlayer2Name
		}
		return p1, p2
	}
	return DefaultPlayer1Name, DefaultPlayer2Name
}

// slotOf returns the player slot that won g, or "" for a draw.
func slotOf(g models.Game, player1Name string) string {
	if g.Winner == "" {
		return ""
	}
	whiteIsP1 := g.WhiteName() == player1Name
	if (g.Winner == models.White) == whiteIsP1 {
		return models.SlotPlayer1
	}
	return models.SlotPlayer2
}
