// Package aggregate derives head-to-head statistics from an archive of games.
// Every function here is pure: inputs are never mutated and the same input
// always yields the same output.
package aggregate

import (
	"fmt"
	"strings"
	"time"

	"github.com/vytor/chessduel/internal/models"
)

// All selects every value of a range component.
const All = "all"

// FilterKey builds the cache key for a date range.
func FilterKey(year, month, day string) string {
	return fmt.Sprintf("%s-%s-%s", year, month, day)
}

// FilterByRange keeps the games that fall inside year/month/day, using the
// local time zone for day matching.
func FilterByRange(games models.GamesByMonth, year, month, day string) models.GamesByMonth {
	return FilterByRangeIn(games, year, month, day, time.Local)
}

// FilterByRangeIn is FilterByRange with an explicit location for day matching.
// A year of "all" returns games itself. Buckets emptied by the day filter are
// dropped.
func FilterByRangeIn(games models.GamesByMonth, year, month, day string, loc *time.Location) models.GamesByMonth {
	if year == All {
		return games
	}

	out := make(models.GamesByMonth)
	if year == "" {
		return out
	}

	for key, bucket := range games {
		keyYear, keyMonth, ok := strings.Cut(key, "-")
		if !ok || keyYear != year {
			continue
		}
		if month != "" && month != All && keyMonth != month {
			continue
		}

		if day == "" || day == All {
			if len(bucket) > 0 {
				out[key] = bucket
			}
			continue
		}

		var kept []models.Game
		for _, g := range bucket {
			if dayOfMonth(g.CreatedAt, loc) == day {
				kept = append(kept, g)
			}
		}
		if len(kept) > 0 {
			out[key] = kept
		}
	}
	return out
}

func dayOfMonth(ms int64, loc *time.Location) string {
	return fmt.Sprintf("%02d", localTime(ms, loc).Day())
}

func localTime(ms int64, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.UnixMilli(ms).In(loc)
}
