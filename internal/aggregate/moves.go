package aggregate

import (
	"strings"

	"github.com/vytor/chessduel/internal/models"
)

// MoveScanner derives per-game values from the move list. The cache package
// provides a memoized implementation.
type MoveScanner interface {
	KingMoves(g models.Game) models.KingMoves
	MoveCount(g models.Game) int
}

// CountKingMoves counts castling and king moves per side. Tokens alternate
// White, Black by index; a move list with gaps is misattributed, not
// rejected.
func CountKingMoves(moves string) models.KingMoves {
	var km models.KingMoves
	for i, tok := range strings.Fields(moves) {
		if !isKingMove(tok) {
			continue
		}
		if i%2 == 0 {
			km.White++
		} else {
			km.Black++
		}
	}
	return km
}

func isKingMove(tok string) bool {
	return tok == "O-O" || tok == "O-O-O" || strings.HasPrefix(tok, "K")
}

// MoveCount returns the number of plies in the move list.
func MoveCount(moves string) int {
	return len(strings.Fields(moves))
}

// FirstMove returns the opening ply or "".
func FirstMove(moves string) string {
	fields := strings.Fields(moves)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

type directScanner struct{}

func (directScanner) KingMoves(g models.Game) models.KingMoves { return CountKingMoves(g.Moves) }
func (directScanner) MoveCount(g models.Game) int              { return MoveCount(g.Moves) }

// DirectScanner computes values on every call without memoization.
var DirectScanner MoveScanner = directScanner{}
