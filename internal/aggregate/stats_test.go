package aggregate_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/chessduel/internal/aggregate"
	"github.com/vytor/chessduel/internal/models"
	"github.com/vytor/chessduel/internal/testutil"
)

// statsStore is a four-game rivalry between Alice and Bob over two months.
func statsStore() models.GamesByMonth {
	return testutil.ByMonth(
		testutil.NewGame("g1", testutil.At(2024, time.January, 10, 10, 0),
			testutil.WithMoves("e4 e5 Ke2 Ke7 Qh5"),
			testutil.WithOpening("Italian Game"),
			testutil.WithClocks(180, 180000, 170000, 5000),
			testutil.WithAnalysis(testutil.Accuracy(80, 30, 1), testutil.Accuracy(60, 50, 2)),
		),
		testutil.NewGame("g2", testutil.At(2024, time.January, 10, 10, 10),
			testutil.WithPlayers(testutil.Bob, testutil.Alice),
			testutil.WithWinner(models.Black),
			testutil.WithStatus(models.StatusMate),
			testutil.WithMoves("d4 d5 c4"),
			testutil.WithOpening("Queen's Gambit"),
			testutil.WithClocks(180, 20000, 25000, 1000),
		),
		testutil.NewGame("g3", testutil.At(2024, time.February, 1, 9, 0),
			testutil.Drawn(),
			testutil.WithOpening("Italian Game"),
		),
		testutil.NewGame("g4", testutil.At(2024, time.February, 2, 9, 0),
			testutil.WithPlayers(testutil.Bob, testutil.Alice),
			testutil.WithStatus(models.StatusTimeout),
			testutil.WithMoves("e4 c5 Nf3 d6 O-O"),
			testutil.WithAnalysis(testutil.Accuracy(0, 10, 0), testutil.Accuracy(70, 40, 3)),
		),
	)
}

func TestComputeStats_Empty(t *testing.T) {
	assert.Nil(t, aggregate.ComputeStats(models.GamesByMonth{}, models.GamesByMonth{}, aggregate.IdentifyPlayers))
	assert.Nil(t, aggregate.ComputeStats(models.GamesByMonth{"2024-01": {}}, statsStore(), aggregate.IdentifyPlayers))
}

func TestComputeStats_Players(t *testing.T) {
	store := statsStore()
	s := aggregate.ComputeStats(store, store, aggregate.IdentifyPlayers)
	require.NotNil(t, s)

	assert.Equal(t, testutil.Alice, s.Player1Name)
	assert.Equal(t, testutil.Bob, s.Player2Name)
	assert.Equal(t, 4, s.TotalGames)

	alice, bob := s.Player1, s.Player2
	assert.Equal(t, 2, alice.Wins)
	assert.Equal(t, 1, alice.Losses)
	assert.Equal(t, 1, alice.Draws)
	assert.Equal(t, 1, alice.WinsAsWhite)
	assert.Equal(t, 1, alice.WinsAsBlack)
	assert.Equal(t, 0, alice.LossesAsWhite)
	assert.Equal(t, 1, alice.LossesAsBlack)
	assert.Equal(t, 2, alice.GamesAsWhite)
	assert.Equal(t, 2, alice.GamesAsBlack)

	assert.Equal(t, 1, bob.Wins)
	assert.Equal(t, 2, bob.Losses)
	assert.Equal(t, 1, bob.Draws)
	assert.Equal(t, 1, bob.WinsAsWhite)
	assert.Equal(t, 0, bob.WinsAsBlack)
	assert.Equal(t, 1, bob.LossesAsWhite)
	assert.Equal(t, 1, bob.LossesAsBlack)

	assert.InDelta(t, 200.0/3, alice.WinRate, 1e-9)
	assert.InDelta(t, 100.0, alice.WhiteWinRate, 1e-9)
	assert.InDelta(t, 50.0, alice.BlackWinRate, 1e-9)
	assert.InDelta(t, 100.0/3, bob.WinRate, 1e-9)
	assert.InDelta(t, 50.0, bob.WhiteWinRate, 1e-9)
	assert.InDelta(t, 0.0, bob.BlackWinRate, 1e-9)

	assert.Equal(t, 2, alice.BestStreak)
	assert.Equal(t, 1, bob.BestStreak)
	assert.Equal(t, 0, alice.CurrentStreak)
	assert.Equal(t, 1, bob.CurrentStreak)

	assert.Equal(t, []float64{80, 70}, alice.Accuracy)
	assert.Equal(t, 75, alice.AvgAccuracy)
	assert.Equal(t, []float64{60}, bob.Accuracy, "zero accuracy is not a sample")
	assert.Equal(t, 60, bob.AvgAccuracy)
	assert.Equal(t, 4, alice.Blunders)
	assert.Equal(t, 2, bob.Blunders)

	assert.Equal(t, []int{1, 0, 0}, alice.KingWalks)
	assert.Equal(t, []int{1, 0, 1}, bob.KingWalks)

	assert.Equal(t, 3, alice.FastestWin)
	assert.Equal(t, "g2", alice.FastestWinID)
	assert.Equal(t, 5, bob.FastestWin)
	assert.Equal(t, "g4", bob.FastestWinID)

	assert.Equal(t, map[string]int{"e4": 1}, alice.FirstMoves)
	assert.Equal(t, map[string]int{"d4": 1, "e4": 1}, bob.FirstMoves)

	assert.Equal(t, []float64{170, 25}, alice.TimeRemaining)
	assert.Equal(t, 1, alice.TimePressureWins)
	assert.Empty(t, bob.TimeRemaining)
	assert.Equal(t, 0, bob.TimePressureWins)

	assert.Equal(t, map[string]int{"resign": 1, "mate": 1, "draw": 1}, alice.ByTermination)
	assert.Equal(t, map[string]int{"draw": 1, "timeout": 1}, bob.ByTermination)
}

func TestComputeStats_Global(t *testing.T) {
	store := statsStore()
	s := aggregate.ComputeStats(store, store, aggregate.IdentifyPlayers)
	require.NotNil(t, s)

	assert.Equal(t, map[string]int{"resign": 1, "mate": 1, "draw": 1, "timeout": 1}, s.ByTermination)
	assert.Equal(t, "draw", s.MostCommonTermination, "ties resolve lexically")

	assert.Equal(t, []int{5, 3, 5}, s.GameLengths)
	assert.Equal(t, 4, s.AvgGameLength)
	assert.Equal(t, 5, s.LongestGame)
	assert.Equal(t, "g1", s.LongestGameID)
	assert.Equal(t, 3, s.ShortestGame)
	assert.Equal(t, "g2", s.ShortestGameID)

	assert.Equal(t, map[string]int{"Italian Game": 2, "Queen's Gambit": 1}, s.OpeningCounts)
	assert.Equal(t, "Italian Game", s.MostCommonOpening)
	assert.Equal(t, "e4", s.MostCommonFirstMove)
	assert.Equal(t, "(2024-01 to 2024-02)", s.DateRange)
	assert.Equal(t, []string{"2024-01", "2024-02"}, s.Months)

	jan := s.MonthlyStats["2024-01"]
	assert.Equal(t, 2, jan.Games)
	assert.Equal(t, 2, jan.Player1Wins)
	assert.Equal(t, 0, jan.Player2Wins)
	assert.Equal(t, 0, jan.Draws)
	assert.Equal(t, models.StreakPair{Player1: 2}, jan.Streaks)
	assert.InDelta(t, 100.0, jan.Player1WinRate, 1e-9)
	assert.Equal(t, []int{1, 0}, jan.Player1KingMoves)
	assert.Equal(t, []int{1, 0}, jan.Player2KingMoves)
	assert.Equal(t, []float64{80}, jan.Player1Accuracy)
	assert.Equal(t, []float64{60}, jan.Player2Accuracy)

	feb := s.MonthlyStats["2024-02"]
	assert.Equal(t, 2, feb.Games)
	assert.Equal(t, 1, feb.Player2Wins)
	assert.Equal(t, 1, feb.Draws)
	assert.Equal(t, models.StreakPair{Player2: 1}, feb.Streaks)
	assert.InDelta(t, 0.0, feb.Player1WinRate, 1e-9)
	assert.InDelta(t, 100.0, feb.Player2WinRate, 1e-9)
	assert.Equal(t, []int{0}, feb.Player1KingMoves)
	assert.Equal(t, []int{1}, feb.Player2KingMoves)
	assert.Equal(t, []float64{70}, feb.Player1Accuracy)
	assert.Empty(t, feb.Player2Accuracy)
}

func TestComputeStats_NamesComeFromFullStore(t *testing.T) {
	store := statsStore()
	// The filtered view only holds a game where Bob had White.
	filtered := aggregate.FilterByRangeIn(store, "2024", "02", "02", time.UTC)

	s := aggregate.ComputeStats(filtered, store, aggregate.IdentifyPlayers)
	require.NotNil(t, s)
	assert.Equal(t, testutil.Alice, s.Player1Name)
	assert.Equal(t, 1, s.Player2.Wins)
	assert.Equal(t, 1, s.Player1.Losses)
	assert.Equal(t, "(2024-02 to 2024-02)", s.DateRange)
}

func TestComputeStats_DecisiveWinRate(t *testing.T) {
	tests := []struct {
		name string
		seq  string
	}{
		{name: "with draws", seq: "aadbdab"},
		{name: "only draws", seq: "ddd"},
		{name: "one-sided", seq: "bbbd"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := testutil.ByMonth(results(tt.seq)...)
			s := aggregate.ComputeStats(store, store, aggregate.IdentifyPlayers)
			require.NotNil(t, s)

			for _, p := range []models.PlayerStats{s.Player1, s.Player2} {
				if p.Wins+p.Losses == 0 {
					assert.Zero(t, p.WinRate)
					continue
				}
				assert.InDelta(t, float64(p.Wins)/float64(p.Wins+p.Losses)*100, p.WinRate, 1e-9)
			}
			assert.Zero(t, s.Player1.AvgAccuracy)
			assert.Zero(t, s.AvgGameLength)
			assert.Equal(t, "-", s.MostCommonOpening)
			assert.Equal(t, "-", s.MostCommonFirstMove)
		})
	}
}

func TestDecisiveWinRate(t *testing.T) {
	assert.Zero(t, aggregate.DecisiveWinRate(0, 0))
	assert.InDelta(t, 75.0, aggregate.DecisiveWinRate(3, 1), 1e-9)
	assert.InDelta(t, 100.0, aggregate.DecisiveWinRate(2, 0), 1e-9)
}

type countingScanner struct {
	calls int
}

func (c *countingScanner) KingMoves(g models.Game) models.KingMoves {
	c.calls++
	return aggregate.CountKingMoves(g.Moves)
}

func (c *countingScanner) MoveCount(g models.Game) int {
	c.calls++
	return aggregate.MoveCount(g.Moves)
}

func TestComputeStats_WithMoveScanner(t *testing.T) {
	store := statsStore()
	scanner := &countingScanner{}

	withScanner := aggregate.ComputeStats(store, store, aggregate.IdentifyPlayers, aggregate.WithMoveScanner(scanner))
	direct := aggregate.ComputeStats(store, store, aggregate.IdentifyPlayers)

	assert.Positive(t, scanner.calls)
	assert.Equal(t, direct, withScanner)
}

func TestComputeStats_DoesNotMutateStore(t *testing.T) {
	store := testutil.ByMonth(
		testutil.NewGame("late", testutil.At(2024, time.March, 20, 10, 0)),
		testutil.NewGame("early", testutil.At(2024, time.March, 1, 10, 0)),
	)
	aggregate.ComputeStats(store, store, aggregate.IdentifyPlayers)
	assert.Equal(t, "late", store["2024-03"][0].ID)
}
