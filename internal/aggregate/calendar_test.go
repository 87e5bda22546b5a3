package aggregate_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vytor/chessduel/internal/aggregate"
	"github.com/vytor/chessduel/internal/models"
	"github.com/vytor/chessduel/internal/testutil"
)

func TestIntensity(t *testing.T) {
	tests := []struct {
		count, max int
		expected   int
	}{
		{0, 5, 0},
		{3, 0, 0},
		{5, 5, 5},
		{4, 5, 5},
		{3, 5, 4},
		{2, 5, 3},
		{1, 5, 2},
		{1, 10, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, aggregate.Intensity(tt.count, tt.max), "count=%d max=%d", tt.count, tt.max)
	}
}

func TestCalendar(t *testing.T) {
	var games []models.Game
	add := func(n int, at time.Time) {
		for i := range n {
			games = append(games, testutil.NewGame(at.Format(time.DateOnly)+string(rune('a'+i)), at.Add(time.Duration(i)*time.Minute)))
		}
	}
	add(5, testutil.At(2024, time.March, 1, 10, 0))
	add(1, testutil.At(2024, time.March, 2, 10, 0))
	add(3, testutil.At(2024, time.March, 3, 10, 0))
	add(2, testutil.At(2023, time.December, 31, 10, 0))
	store := testutil.ByMonth(games...)

	days := aggregate.Calendar(store, 2024, time.UTC)
	assert.Equal(t, []models.CalendarDay{
		{Date: "2024-03-01", Games: 5, Intensity: 5},
		{Date: "2024-03-02", Games: 1, Intensity: 2},
		{Date: "2024-03-03", Games: 3, Intensity: 4},
	}, days)

	assert.Len(t, aggregate.GamesByDay(store, time.UTC), 4)
	assert.Empty(t, aggregate.Calendar(store, 2019, time.UTC))
}
