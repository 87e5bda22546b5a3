package aggregate

import (
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/vytor/chessduel/internal/models"
)

// GamesByDay buckets games by local "YYYY-MM-DD".
func GamesByDay(games models.GamesByMonth, loc *time.Location) map[string][]models.Game {
	days := make(map[string][]models.Game)
	for _, g := range games.Flatten() {
		key := localTime(g.CreatedAt, loc).Format(time.DateOnly)
		days[key] = append(days[key], g)
	}
	return days
}

// Intensity maps a day's game count onto a 0-5 activity level relative to
// the busiest day.
func Intensity(count, maxCount int) int {
	if count <= 0 || maxCount <= 0 {
		return 0
	}
	ratio := float64(count) / float64(maxCount)
	switch {
	case ratio >= 0.8:
		return 5
	case ratio >= 0.6:
		return 4
	case ratio >= 0.4:
		return 3
	case ratio >= 0.2:
		return 2
	default:
		return 1
	}
}

// Calendar lists the days of year on which games were played, in date order.
// Intensity is relative to the busiest day across all of games.
func Calendar(games models.GamesByMonth, year int, loc *time.Location) []models.CalendarDay {
	days := GamesByDay(games, loc)
	busiest := 1
	for _, g := range days {
		busiest = max(busiest, len(g))
	}

	prefix := strconv.Itoa(year) + "-"
	out := []models.CalendarDay{}
	for date, g := range days {
		if !strings.HasPrefix(date, prefix) {
			continue
		}
		out = append(out, models.CalendarDay{
			Date:      date,
			Games:     len(g),
			Intensity: Intensity(len(g), busiest),
		})
	}
	slices.SortFunc(out, func(a, b models.CalendarDay) int {
		return strings.Compare(a.Date, b.Date)
	})
	return out
}
