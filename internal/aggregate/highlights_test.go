package aggregate_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/chessduel/internal/aggregate"
	"github.com/vytor/chessduel/internal/models"
	"github.com/vytor/chessduel/internal/testutil"
)

func analyzed(id string, minute int, opts ...testutil.GameOption) models.Game {
	base := []testutil.GameOption{testutil.WithAnalysis(testutil.Accuracy(80, 30, 0), testutil.Accuracy(70, 40, 1))}
	return testutil.NewGame(id, testutil.At(2024, time.July, 1, 10, minute), append(base, opts...)...)
}

func entryIDs(entries []models.HighlightEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Game.ID)
	}
	return out
}

func TestMissedMate(t *testing.T) {
	tests := []struct {
		name     string
		game     models.Game
		expected *models.MissedMate
	}{
		{
			name: "white had mate in three and lost",
			game: analyzed("w", 0,
				testutil.WithWinner(models.Black),
				testutil.WithEvals(testutil.Cp(20), testutil.Cp(-10), testutil.Mate(3), testutil.Cp(-300))),
			expected: &models.MissedMate{By: models.White, MateIn: 3},
		},
		{
			name: "black had mate and lost",
			game: analyzed("b", 0,
				testutil.WithEvals(testutil.Cp(20), testutil.Mate(-2), testutil.Cp(400))),
			expected: &models.MissedMate{By: models.Black, MateIn: 2},
		},
		{
			name: "shortest mate is reported",
			game: analyzed("s", 0,
				testutil.WithWinner(models.Black),
				testutil.WithEvals(testutil.Mate(5), testutil.Cp(0), testutil.Mate(2), testutil.Cp(0))),
			expected: &models.MissedMate{By: models.White, MateIn: 2},
		},
		{
			name: "winner's own mate does not count",
			game: analyzed("own", 0,
				testutil.WithEvals(testutil.Cp(20), testutil.Cp(0), testutil.Mate(1))),
		},
		{
			name: "white mate at odd index is ignored",
			game: analyzed("parity", 0,
				testutil.WithWinner(models.Black),
				testutil.WithEvals(testutil.Cp(20), testutil.Mate(4))),
		},
		{
			name: "no mate fields",
			game: analyzed("none", 0,
				testutil.WithWinner(models.Black),
				testutil.WithEvals(testutil.Cp(20), testutil.Cp(-900))),
		},
		{
			name: "draw",
			game: analyzed("draw", 0, testutil.Drawn(), testutil.WithEvals(testutil.Mate(1))),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, aggregate.MissedMate(tt.game))
		})
	}
}

func TestFindHighlights_MissedMates(t *testing.T) {
	store := testutil.ByMonth(
		analyzed("mate3", 0, testutil.WithWinner(models.Black), testutil.WithEvals(testutil.Cp(0), testutil.Cp(0), testutil.Mate(3))),
		analyzed("quiet", 1, testutil.WithWinner(models.Black), testutil.WithEvals(testutil.Cp(0), testutil.Cp(-500))),
		analyzed("mate1", 2, testutil.WithEvals(testutil.Cp(0), testutil.Mate(-1))),
		analyzed("noevals", 3, testutil.WithWinner(models.Black)),
		// Evals without a per-player analysis block never become candidates.
		testutil.NewGame("unanalyzed", testutil.At(2024, time.July, 1, 10, 4),
			testutil.WithWinner(models.Black), testutil.WithEvals(testutil.Mate(1))),
	)

	h := aggregate.FindHighlights(store, testutil.Alice, testutil.Bob)
	require.Len(t, h.MissedMates, 2)
	assert.Equal(t, []string{"mate1", "mate3"}, entryIDs(h.MissedMates))
	assert.Equal(t, 999.0, h.MissedMates[0].Score)
	assert.Equal(t, &models.MissedMate{By: models.Black, MateIn: 1}, h.MissedMates[0].MissedMate)
	assert.Equal(t, 997.0, h.MissedMates[1].Score)
	assert.Equal(t, &models.MissedMate{By: models.White, MateIn: 3}, h.MissedMates[1].MissedMate)
}

func TestFindHighlights_Rankings(t *testing.T) {
	var games []models.Game
	for i := range 12 {
		games = append(games, analyzed(fmt.Sprintf("g%02d", i), i,
			testutil.WithAnalysis(testutil.Accuracy(float64(50+i), 10*i, i%3), testutil.Accuracy(float64(60-i), 5, 0))))
	}
	// One-sided analysis counts the missing side as zero accuracy.
	games = append(games, analyzed("half", 20, testutil.WithAnalysis(testutil.Accuracy(90, 200, 5), nil)))
	store := testutil.ByMonth(games...)

	h := aggregate.FindHighlights(store, testutil.Alice, testutil.Bob)

	lists := map[string]struct {
		entries []models.HighlightEntry
		desc    bool
	}{
		"big swings":    {h.BigSwings, true},
		"high blunders": {h.HighBlunders, true},
		"great games":   {h.GreatGames, true},
		"chaotic games": {h.ChaoticGames, false},
	}
	for name, l := range lists {
		t.Run(name, func(t *testing.T) {
			require.Len(t, l.entries, aggregate.HighlightLimit)
			for i := 1; i < len(l.entries); i++ {
				if l.desc {
					assert.GreaterOrEqual(t, l.entries[i-1].Score, l.entries[i].Score)
				} else {
					assert.LessOrEqual(t, l.entries[i-1].Score, l.entries[i].Score)
				}
			}
		})
	}

	assert.Equal(t, "half", h.BigSwings[0].Game.ID)
	assert.Equal(t, 200.0, h.BigSwings[0].Score)
	assert.Equal(t, "half", h.HighBlunders[0].Game.ID)
	assert.Equal(t, "half", h.ChaoticGames[0].Game.ID)
	assert.Equal(t, 45.0, h.ChaoticGames[0].Score)
	assert.Empty(t, h.MissedMates)
}

func TestFindHighlights_TiesKeepDiscoveryOrder(t *testing.T) {
	same := testutil.WithAnalysis(testutil.Accuracy(70, 20, 1), testutil.Accuracy(70, 20, 1))
	store := models.GamesByMonth{
		"2024-08": {analyzed("aug", 0, same)},
		"2024-07": {analyzed("jul-1", 0, same), analyzed("jul-2", 1, same)},
	}
	h := aggregate.FindHighlights(store, testutil.Alice, testutil.Bob)
	assert.Equal(t, []string{"jul-1", "jul-2", "aug"}, entryIDs(h.BigSwings))
	assert.Equal(t, []string{"jul-1", "jul-2", "aug"}, entryIDs(h.ChaoticGames))
}

func TestFindHighlights_NoAnalysis(t *testing.T) {
	for name, store := range map[string]models.GamesByMonth{
		"empty store": {},
		"unanalyzed games": testutil.ByMonth(
			testutil.NewGame("a", testutil.At(2024, time.July, 1, 10, 0)),
			testutil.NewGame("b", testutil.At(2024, time.July, 1, 11, 0)),
		),
	} {
		t.Run(name, func(t *testing.T) {
			h := aggregate.FindHighlights(store, testutil.Alice, testutil.Bob)
			for _, list := range [][]models.HighlightEntry{h.MissedMates, h.BigSwings, h.HighBlunders, h.GreatGames, h.ChaoticGames} {
				assert.NotNil(t, list)
				assert.Empty(t, list)
			}
		})
	}
}
