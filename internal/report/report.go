// Package report renders dashboard results for the terminal.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/vytor/chessduel/internal/models"
	"github.com/vytor/chessduel/internal/services"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F0F0F0")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	numberStyle = cellStyle.Align(lipgloss.Right)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#4A4A4A"))
)

// JSON writes v as indented JSON.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Stats writes the head-to-head summary. A nil stats prints a notice.
func Stats(w io.Writer, s *models.Stats) error {
	if s == nil {
		return line(w, mutedStyle.Render("no games in range"))
	}

	title := fmt.Sprintf("%s vs %s", s.Player1Name, s.Player2Name)
	sub := fmt.Sprintf("%d games %s", s.TotalGames, s.DateRange)
	if err := line(w, titleStyle.Render(title)+"  "+mutedStyle.Render(sub)); err != nil {
		return err
	}

	p1, p2 := s.Player1, s.Player2
	rows := [][]string{
		{"Wins", itoa(p1.Wins), itoa(p2.Wins)},
		{"Losses", itoa(p1.Losses), itoa(p2.Losses)},
		{"Draws", itoa(p1.Draws), itoa(p2.Draws)},
		{"Win rate", pct(p1.WinRate), pct(p2.WinRate)},
		{"As white", pct(p1.WhiteWinRate), pct(p2.WhiteWinRate)},
		{"As black", pct(p1.BlackWinRate), pct(p2.BlackWinRate)},
		{"Best streak", itoa(p1.BestStreak), itoa(p2.BestStreak)},
		{"Current streak", itoa(p1.CurrentStreak), itoa(p2.CurrentStreak)},
		{"Avg accuracy", itoa(p1.AvgAccuracy), itoa(p2.AvgAccuracy)},
		{"Blunders", itoa(p1.Blunders), itoa(p2.Blunders)},
		{"Avg king walks", fmt.Sprintf("%.1f", p1.AvgKingWalks), fmt.Sprintf("%.1f", p2.AvgKingWalks)},
		{"Fastest win", plies(p1.FastestWin, p1.FastestWinID), plies(p2.FastestWin, p2.FastestWinID)},
		{"Avg time left", fmt.Sprintf("%.1fs", p1.AvgTimeRemaining), fmt.Sprintf("%.1fs", p2.AvgTimeRemaining)},
		{"Time pressure wins", itoa(p1.TimePressureWins), itoa(p2.TimePressureWins)},
	}
	if err := line(w, render([]string{"", s.Player1Name, s.Player2Name}, rows)); err != nil {
		return err
	}

	facts := []string{
		fmt.Sprintf("Most common opening: %s", orDash(s.MostCommonOpening)),
		fmt.Sprintf("Most common ending: %s", orDash(s.MostCommonTermination)),
		fmt.Sprintf("Most common first move: %s", orDash(s.MostCommonFirstMove)),
		fmt.Sprintf("Game length: avg %d, shortest %d, longest %d plies", s.AvgGameLength, s.ShortestGame, s.LongestGame),
	}
	return line(w, mutedStyle.Render(strings.Join(facts, "\n")))
}

// Openings writes one row per opening, most played first.
func Openings(w io.Writer, m models.Matchup, openings []models.OpeningStat) error {
	if len(openings) == 0 {
		return line(w, mutedStyle.Render("no games in range"))
	}
	rows := make([][]string, 0, len(openings))
	for _, o := range openings {
		rows = append(rows, []string{
			o.Name,
			itoa(o.Games),
			itoa(o.Player1Wins),
			itoa(o.Player2Wins),
			itoa(o.Draws),
			pct(o.Player1WinRate),
		})
	}
	headers := []string{"Opening", "Games", m.Player1, m.Player2, "Draws", m.Player1 + " %"}
	return line(w, render(headers, rows))
}

// Sessions writes the session list followed by the summary.
func Sessions(w io.Writer, m models.Matchup, r models.SessionsReport, loc *time.Location) error {
	if len(r.Sessions) == 0 {
		return line(w, mutedStyle.Render("no games in range"))
	}
	rows := make([][]string, 0, len(r.Sessions))
	for _, s := range r.Sessions {
		rows = append(rows, []string{
			time.UnixMilli(s.StartTime).In(loc).Format("2006-01-02 15:04"),
			itoa(s.TotalGames),
			fmt.Sprintf("%g - %g", s.Player1Score, s.Player2Score),
			slotName(m, s.Winner),
			fmt.Sprintf("%dm", s.DurationMinutes),
		})
	}
	if err := line(w, render([]string{"Start", "Games", "Score", "Winner", "Duration"}, rows)); err != nil {
		return err
	}

	sum := r.Summary
	summary := fmt.Sprintf("%d sessions (gap %dm): %s %d, %s %d, drawn %d; avg %d games, %dm",
		sum.TotalSessions, r.GapMinutes, m.Player1, sum.Player1Wins, m.Player2, sum.Player2Wins,
		sum.Draws, sum.AvgGamesPerSession, sum.AvgDuration)
	return line(w, mutedStyle.Render(summary))
}

// Highlights writes each non-empty highlight category.
func Highlights(w io.Writer, h models.Highlights) error {
	sections := []struct {
		title   string
		entries []models.HighlightEntry
	}{
		{"Missed mates", h.MissedMates},
		{"Biggest swings", h.BigSwings},
		{"Most blunders", h.HighBlunders},
		{"Best played", h.GreatGames},
		{"Most chaotic", h.ChaoticGames},
	}

	printed := false
	for _, sec := range sections {
		if len(sec.entries) == 0 {
			continue
		}
		rows := make([][]string, 0, len(sec.entries))
		for _, e := range sec.entries {
			detail := fmt.Sprintf("%.1f", e.Score)
			if e.MissedMate != nil {
				detail = fmt.Sprintf("%s missed mate in %d", e.MissedMate.By, e.MissedMate.MateIn)
			}
			rows = append(rows, []string{e.Game.ID, e.Game.WhiteName(), e.Game.BlackName(), detail})
		}
		if err := line(w, titleStyle.Render(sec.title)); err != nil {
			return err
		}
		if err := line(w, render([]string{"Game", "White", "Black", "Score"}, rows)); err != nil {
			return err
		}
		printed = true
	}
	if !printed {
		return line(w, mutedStyle.Render("no analyzed games in range"))
	}
	return nil
}

// SyncResult writes a one-line summary of a finished sync.
func SyncResult(w io.Writer, r *services.SyncResult) error {
	msg := fmt.Sprintf("%s vs %s: fetched %d, added %d, %d games archived",
		r.Username, r.Opponent, r.Fetched, r.Added, r.Total)
	window := fmt.Sprintf("(%s to %s)", r.Since.Format(time.RFC3339), r.Until.Format(time.RFC3339))
	return line(w, titleStyle.Render(msg)+" "+mutedStyle.Render(window))
}

func render(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0:
				return cellStyle
			default:
				return numberStyle
			}
		}).
		String()
}

func line(w io.Writer, s string) error {
	_, err := fmt.Fprintln(w, s)
	return err
}

func slotName(m models.Matchup, slot string) string {
	switch slot {
	case models.SlotPlayer1:
		return m.Player1
	case models.SlotPlayer2:
		return m.Player2
	default:
		return "draw"
	}
}

func plies(n int, id string) string {
	if id == "" {
		return "-"
	}
	return fmt.Sprintf("%d (%s)", n, id)
}

func itoa(n int) string { return strconv.Itoa(n) }

func pct(f float64) string { return fmt.Sprintf("%.1f%%", f) }

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
