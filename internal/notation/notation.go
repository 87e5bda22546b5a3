// Package notation replays Lichess move lists with a real move generator and
// renders games as PGN.
package notation

import (
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/corentings/chess/v2"
	"github.com/corentings/chess/v2/opening"
	"github.com/vytor/chessduel/internal/models"
)

// ReplayError reports the first move the board rejected. Ply is 1-based.
type ReplayError struct {
	Ply  int
	Move string
	Err  error
}

func (e *ReplayError) Error() string {
	return fmt.Sprintf("illegal move %q at ply %d: %v", e.Move, e.Ply, e.Err)
}

func (e *ReplayError) Unwrap() error { return e.Err }

// MoveText numbers space separated SAN tokens: "e4 e5 Nf3" becomes
// "1. e4 e5 2. Nf3".
func MoveText(moves string) string {
	var b strings.Builder
	for i, tok := range strings.Fields(moves) {
		if i > 0 {
			b.WriteByte(' ')
		}
		if i%2 == 0 {
			b.WriteString(strconv.Itoa(i/2 + 1))
			b.WriteString(". ")
		}
		b.WriteString(tok)
	}
	return b.String()
}

func parse(tokens []string) (*chess.Game, error) {
	text := `[Event "?"]` + "\n\n" + MoveText(strings.Join(tokens, " ")) + " *\n"
	opt, err := chess.PGN(strings.NewReader(text))
	if err != nil {
		return nil, err
	}
	return chess.NewGame(opt), nil
}

// Replay plays moves from the initial position and returns the ply count.
// On failure the error is a *ReplayError naming the first illegal ply.
func Replay(moves string) (int, error) {
	g, err := replay(moves)
	if err != nil {
		return 0, err
	}
	return len(g.Moves()), nil
}

func replay(moves string) (*chess.Game, error) {
	tokens := strings.Fields(moves)
	g, err := parse(tokens)
	if err == nil {
		return g, nil
	}

	// Find the longest legal prefix; the token after it is the culprit.
	lo, hi := 0, len(tokens)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if _, perr := parse(tokens[:mid]); perr == nil {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	if lo >= len(tokens) {
		return nil, err
	}
	return nil, &ReplayError{Ply: lo + 1, Move: tokens[lo], Err: err}
}

// Inspection is what a board replay says about a move list. A failed
// replay leaves only Plies (the legal prefix) and the illegal move set.
type Inspection struct {
	Plies       int               `json:"plies"`
	UCI         []string          `json:"uci,omitempty"`
	KingMoves   *models.KingMoves `json:"king_moves,omitempty"`
	IllegalPly  int               `json:"illegal_ply,omitempty"`
	IllegalMove string            `json:"illegal_move,omitempty"`
}

// Legal reports whether every move replayed.
func (i Inspection) Legal() bool { return i.IllegalPly == 0 }

// Inspect replays moves once and reports the long algebraic moves and the
// king moves per side as the board sees them. It never alters the token
// based counts used by the statistics.
func Inspect(moves string) Inspection {
	g, err := replay(moves)
	if err != nil {
		var re *ReplayError
		if stderrors.As(err, &re) {
			return Inspection{Plies: re.Ply - 1, IllegalPly: re.Ply, IllegalMove: re.Move}
		}
		return Inspection{IllegalPly: 1}
	}

	played := g.Moves()
	positions := g.Positions()
	insp := Inspection{Plies: len(played), UCI: make([]string, 0, len(played)), KingMoves: &models.KingMoves{}}
	for i, mv := range played {
		insp.UCI = append(insp.UCI, toUCI(mv))
		if i >= len(positions) || positions[i].Board().Piece(mv.S1()).Type() != chess.King {
			continue
		}
		if i%2 == 0 {
			insp.KingMoves.White++
		} else {
			insp.KingMoves.Black++
		}
	}
	return insp
}

// toUCI renders a move in long algebraic notation ("e2e4", "e7e8q").
func toUCI(mv *chess.Move) string {
	uci := mv.S1().String() + mv.S2().String()
	switch mv.Promo() {
	case chess.Queen:
		uci += "q"
	case chess.Rook:
		uci += "r"
	case chess.Bishop:
		uci += "b"
	case chess.Knight:
		uci += "n"
	}
	return uci
}

// DetectOpening looks the move list up in the ECO book. ok is false when the
// moves do not replay or match no book line.
func DetectOpening(moves string) (*models.Opening, bool) {
	if strings.TrimSpace(moves) == "" {
		return nil, false
	}
	g, err := replay(moves)
	if err != nil {
		return nil, false
	}
	found := bookECO().Find(g.Moves())
	if found == nil {
		return nil, false
	}
	return &models.Opening{ECO: found.Code(), Name: found.Title()}, true
}

var bookECO = sync.OnceValue(opening.NewBookECO)
