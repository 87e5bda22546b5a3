package aggregate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vytor/chessduel/internal/aggregate"
	"github.com/vytor/chessduel/internal/models"
)

func TestCountKingMoves(t *testing.T) {
	tests := []struct {
		name     string
		moves    string
		expected models.KingMoves
	}{
		{name: "castle and king step", moves: "e4 e5 Nf3 Nc6 O-O Kd8", expected: models.KingMoves{White: 1, Black: 1}},
		{name: "empty", moves: "", expected: models.KingMoves{}},
		{name: "whitespace only", moves: "   ", expected: models.KingMoves{}},
		{name: "long castle", moves: "d4 d5 Bf4 Bf5 Nc3 Nc6 Qd2 Qd7 O-O-O O-O-O", expected: models.KingMoves{White: 1, Black: 1}},
		{name: "king captures", moves: "e4 e5 Ke2 Ke7 Kxe3", expected: models.KingMoves{White: 2, Black: 1}},
		{name: "knight is not a king", moves: "Nf3 Nf6 Nc3", expected: models.KingMoves{}},
		{name: "extra spaces", moves: "e4  e5\tKe2\nKe7", expected: models.KingMoves{White: 1, Black: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, aggregate.CountKingMoves(tt.moves))
		})
	}
}

// A move list that skips a ply shifts every later move to the other side.
// The counter does not try to detect or repair this.
func TestCountKingMoves_GapMisattributes(t *testing.T) {
	// White's e4 is followed directly by White's Ke2; Black's reply is missing.
	assert.Equal(t, models.KingMoves{White: 0, Black: 1}, aggregate.CountKingMoves("e4 Ke2"))
}

func TestMoveCount(t *testing.T) {
	assert.Equal(t, 0, aggregate.MoveCount(""))
	assert.Equal(t, 6, aggregate.MoveCount("e4 e5 Nf3 Nc6 O-O Kd8"))
	assert.Equal(t, 3, aggregate.MoveCount(" e4  e5 Nf3 "))
}

func TestFirstMove(t *testing.T) {
	assert.Equal(t, "", aggregate.FirstMove(""))
	assert.Equal(t, "d4", aggregate.FirstMove("d4 d5"))
}
