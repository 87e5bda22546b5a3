package aggregate_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/chessduel/internal/aggregate"
	"github.com/vytor/chessduel/internal/models"
	"github.com/vytor/chessduel/internal/testutil"
)

func timed(id string, start, end time.Time, opts ...testutil.GameOption) models.Game {
	return testutil.NewGame(id, start, append([]testutil.GameOption{testutil.WithLastMoveAt(end)}, opts...)...)
}

func sessionStore() models.GamesByMonth {
	day := func(d, h, m int) time.Time { return testutil.At(2024, time.March, d, h, m) }
	return testutil.ByMonth(
		timed("A", day(1, 10, 0), day(1, 10, 5)),
		timed("B", day(1, 10, 12), day(1, 10, 18), testutil.WithWinner(models.Black)),
		timed("C", day(1, 10, 25), day(1, 10, 30), testutil.Drawn()),
		timed("D", day(1, 11, 0), day(1, 11, 4)),
		timed("E", day(1, 23, 50), day(1, 23, 58)),
		timed("F", day(2, 0, 1), day(2, 0, 6)),
	)
}

func sessionIDs(sessions []models.Session) [][]string {
	out := make([][]string, len(sessions))
	for i, s := range sessions {
		for _, g := range s.Games {
			out[i] = append(out[i], g.ID)
		}
	}
	return out
}

func TestClusterIntoSessions_GapAndDayBoundary(t *testing.T) {
	tests := []struct {
		name     string
		gap      int
		expected [][]string
	}{
		{
			name:     "default gap",
			gap:      aggregate.DefaultSessionGapMinutes,
			expected: [][]string{{"A", "B", "C"}, {"D"}, {"E"}, {"F"}},
		},
		{
			name:     "wider gap joins D",
			gap:      60,
			expected: [][]string{{"A", "B", "C", "D"}, {"E"}, {"F"}},
		},
		{
			name:     "gap is capped at two hours",
			gap:      24 * 60,
			expected: [][]string{{"A", "B", "C", "D"}, {"E"}, {"F"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := aggregate.ClusterIntoSessionsIn(sessionStore(), testutil.Alice, tt.gap, time.UTC, nil)
			assert.Equal(t, tt.expected, sessionIDs(got))
		})
	}
}

func TestClusterIntoSessions_Scores(t *testing.T) {
	got := aggregate.ClusterIntoSessionsIn(sessionStore(), testutil.Alice, 15, time.UTC, nil)
	require.Len(t, got, 4)

	first := got[0]
	assert.Equal(t, 3, first.TotalGames)
	assert.Equal(t, 1.5, first.Player1Score)
	assert.Equal(t, 1.5, first.Player2Score)
	assert.Equal(t, models.SlotDraw, first.Winner)
	assert.Equal(t, testutil.At(2024, time.March, 1, 10, 0).UnixMilli(), first.StartTime)
	assert.Equal(t, testutil.At(2024, time.March, 1, 10, 30).UnixMilli(), first.EndTime)
	assert.Equal(t, 16, first.DurationMinutes)

	assert.Equal(t, models.SlotPlayer1, got[1].Winner)
	assert.Equal(t, 1.0, got[1].Player1Score)
	assert.Equal(t, 0.0, got[1].Player2Score)
}

func TestClusterIntoSessions_EstimatedEnd(t *testing.T) {
	day := func(h, m int) time.Time { return testutil.At(2024, time.May, 4, h, m) }
	store := testutil.ByMonth(
		// No lastMoveAt: ten plies end it at 10:10.
		testutil.NewGame("X", day(10, 0), testutil.WithMoves(strings.Repeat("e4 ", 10))),
		testutil.NewGame("Y", day(10, 24), testutil.WithLastMoveAt(day(10, 30))),
		// No lastMoveAt and no moves: assumed to end thirty minutes later.
		testutil.NewGame("Z", day(11, 0)),
		testutil.NewGame("W", day(11, 44)),
	)
	got := aggregate.ClusterIntoSessionsIn(store, testutil.Alice, 15, time.UTC, nil)
	assert.Equal(t, [][]string{{"X", "Y"}, {"Z", "W"}}, sessionIDs(got))
}

func TestClusterIntoSessions_NegativeGapSplits(t *testing.T) {
	day := func(h, m int) time.Time { return testutil.At(2024, time.June, 9, h, m) }
	store := testutil.ByMonth(
		// lastMoveAt ten hours after the start is corrupt and overlaps "b".
		timed("a", day(9, 0), day(19, 0)),
		timed("b", day(14, 0), day(14, 5)),
		timed("c", day(14, 10), day(14, 15)),
	)

	got := aggregate.ClusterIntoSessionsIn(store, testutil.Alice, 15, time.UTC, nil)
	require.Equal(t, [][]string{{"a"}, {"b", "c"}}, sessionIDs(got))
	assert.Equal(t, 10, got[1].DurationMinutes)
}

func TestClusterIntoSessions_Partition(t *testing.T) {
	store := sessionStore()
	// Reverse each bucket so the input is out of order.
	for key, bucket := range store {
		rev := make([]models.Game, len(bucket))
		for i, g := range bucket {
			rev[len(bucket)-1-i] = g
		}
		store[key] = rev
	}

	got := aggregate.ClusterIntoSessionsIn(store, testutil.Alice, 15, time.UTC, nil)

	var concatenated []string
	total := 0
	for _, s := range got {
		total += s.TotalGames
		for i, g := range s.Games {
			concatenated = append(concatenated, g.ID)
			if i > 0 {
				assert.LessOrEqual(t, s.Games[i-1].CreatedAt, g.CreatedAt)
			}
		}
	}
	assert.Equal(t, store.Len(), total)
	assert.Equal(t, []string{"A", "B", "C", "D", "E", "F"}, concatenated)
	assert.Equal(t, "F", store["2024-03"][0].ID, "input must not be reordered")
}

func TestClusterIntoSessions_Empty(t *testing.T) {
	got := aggregate.ClusterIntoSessions(models.GamesByMonth{}, testutil.Alice, aggregate.DefaultSessionGapMinutes)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSummarizeSessions(t *testing.T) {
	sessions := aggregate.ClusterIntoSessionsIn(sessionStore(), testutil.Alice, 15, time.UTC, nil)
	sum := aggregate.SummarizeSessions(sessions)

	assert.Equal(t, models.SessionSummary{
		TotalSessions:      4,
		Player1Wins:        3,
		Player2Wins:        0,
		Draws:              1,
		AvgGamesPerSession: 2,
		AvgDuration:        8,
	}, sum)

	assert.Equal(t, models.SessionSummary{}, aggregate.SummarizeSessions(nil))
}
