package aggregate

import (
	"math"
	"time"

	"github.com/vytor/chessduel/internal/models"
)

const (
	// DefaultSessionGapMinutes is the idle time that still joins two games.
	DefaultSessionGapMinutes = 15
	// MaxSessionGapMinutes bounds any configured gap.
	MaxSessionGapMinutes = 120
)

// ClusterIntoSessions groups games into same-day play sessions using the
// local time zone.
func ClusterIntoSessions(games models.GamesByMonth, player1Name string, maxGapMinutes int) []models.Session {
	return ClusterIntoSessionsIn(games, player1Name, maxGapMinutes, time.Local, DirectScanner)
}

// ClusterIntoSessionsIn walks games in createdAt order and starts a new
// session on a calendar day change or when the idle time since the previous
// game's end exceeds min(maxGapMinutes, 120). A negative idle time, from a
// lastMoveAt later than the next game's start, also starts a new session.
func ClusterIntoSessionsIn(games models.GamesByMonth, player1Name string, maxGapMinutes int, loc *time.Location, scanner MoveScanner) []models.Session {
	sequence := chronological(games)
	if len(sequence) == 0 {
		return []models.Session{}
	}
	if scanner == nil {
		scanner = DirectScanner
	}
	gap := float64(min(maxGapMinutes, MaxSessionGapMinutes))

	var (
		sessions []models.Session
		current  *models.Session
	)
	for i, g := range sequence {
		moves := scanner.MoveCount(g)
		if i > 0 {
			prev := sequence[i-1]
			prevEnd := effectiveEnd(prev, scanner.MoveCount(prev))
			idle := float64(g.CreatedAt-prevEnd) / 60000
			if !sameDay(prev.CreatedAt, g.CreatedAt, loc) || idle < 0 || idle > gap {
				sessions = append(sessions, *current)
				current = nil
			}
		}
		if current == nil {
			current = &models.Session{StartTime: g.CreatedAt}
		}

		current.Games = append(current.Games, g)
		current.EndTime = effectiveEnd(g, moves)
		current.DurationMinutes += gameDuration(g, moves)
		switch slotOf(g, player1Name) {
		case models.SlotPlayer1:
			current.Player1Score++
		case models.SlotPlayer2:
			current.Player2Score++
		default:
			current.Player1Score += 0.5
			current.Player2Score += 0.5
		}
	}
	sessions = append(sessions, *current)

	for i := range sessions {
		s := &sessions[i]
		s.TotalGames = len(s.Games)
		switch {
		case s.Player1Score > s.Player2Score:
			s.Winner = models.SlotPlayer1
		case s.Player2Score > s.Player1Score:
			s.Winner = models.SlotPlayer2
		default:
			s.Winner = models.SlotDraw
		}
	}
	return sessions
}

func sameDay(a, b int64, loc *time.Location) bool {
	ta, tb := localTime(a, loc), localTime(b, loc)
	return ta.Year() == tb.Year() && ta.YearDay() == tb.YearDay()
}

// SummarizeSessions tallies session winners and averages.
func SummarizeSessions(sessions []models.Session) models.SessionSummary {
	sum := models.SessionSummary{TotalSessions: len(sessions)}
	if len(sessions) == 0 {
		return sum
	}

	var games, minutes int
	for _, s := range sessions {
		switch s.Winner {
		case models.SlotPlayer1:
			sum.Player1Wins++
		case models.SlotPlayer2:
			sum.Player2Wins++
		default:
			sum.Draws++
		}
		games += s.TotalGames
		minutes += s.DurationMinutes
	}
	n := float64(len(sessions))
	sum.AvgGamesPerSession = int(math.Round(float64(games) / n))
	sum.AvgDuration = int(math.Round(float64(minutes) / n))
	return sum
}
