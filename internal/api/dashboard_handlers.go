package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/chessduel/internal/aggregate"
	"github.com/vytor/chessduel/internal/errors"
	"github.com/vytor/chessduel/internal/logger"
	"github.com/vytor/chessduel/internal/models"
	"github.com/vytor/chessduel/internal/notation"
)

func (s *Server) handlePlayers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.Dashboard.Players(r.Context()))
}

func (s *Server) handleMonths(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{"months": orEmpty(s.Dashboard.Months(r.Context()))})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	rng, err := parseRange(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	stats := s.Dashboard.Stats(r.Context(), rng)
	if stats == nil {
		handleError(w, r, errors.NewNotFoundError("games in range", aggregate.FilterKey(rng.Year, rng.Month, rng.Day)))
		return
	}
	writeJSON(w, r, http.StatusOK, stats)
}

func (s *Server) handleOpenings(w http.ResponseWriter, r *http.Request) {
	rng, err := parseRange(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"openings": orEmpty(s.Dashboard.Openings(r.Context(), rng))})
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	rng, err := parseRange(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	gap, err := parseGap(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	report := s.Dashboard.Sessions(r.Context(), rng, gap)
	report.Sessions = orEmpty(report.Sessions)
	writeJSON(w, r, http.StatusOK, report)
}

func (s *Server) handleHighlights(w http.ResponseWriter, r *http.Request) {
	rng, err := parseRange(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	h := s.Dashboard.Highlights(r.Context(), rng)
	h.MissedMates = orEmpty(h.MissedMates)
	h.BigSwings = orEmpty(h.BigSwings)
	h.HighBlunders = orEmpty(h.HighBlunders)
	h.GreatGames = orEmpty(h.GreatGames)
	h.ChaoticGames = orEmpty(h.ChaoticGames)
	writeJSON(w, r, http.StatusOK, h)
}

func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	rng, err := parseRange(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"points": orEmpty(s.Dashboard.Timeline(r.Context(), rng))})
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	year, err := parseCalendarYear(r, time.Now())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{
		"year": year,
		"days": orEmpty(s.Dashboard.Calendar(r.Context(), year)),
	})
}

func (s *Server) handleGames(w http.ResponseWriter, r *http.Request) {
	rng, err := parseRange(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	rows := orEmpty(s.Dashboard.Games(r.Context(), rng))
	writeJSON(w, r, http.StatusOK, map[string]any{"games": rows, "total": len(rows)})
}

// lookupGame checks the loaded store first, then the SQLite archive, which
// may hold games outside the current shard directory.
func (s *Server) lookupGame(r *http.Request, id string) (*models.Game, error) {
	game, err := s.Dashboard.Game(r.Context(), id)
	if err == nil || s.Archive == nil || !errors.HasCode(err, errors.ErrCodeNotFound) {
		return game, err
	}
	return s.Archive.GetGame(r.Context(), id)
}

// gameDetail is a game plus the board replay of its moves. ParityOK is false
// when the replay fails or disagrees with the token-based king-move counts
// the statistics use.
type gameDetail struct {
	models.Game
	Replay   notation.Inspection `json:"replay"`
	ParityOK bool                `json:"parity_ok"`
}

func (s *Server) handleGame(w http.ResponseWriter, r *http.Request) {
	game, err := s.lookupGame(r, chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}

	insp := notation.Inspect(game.Moves)
	parityOK := insp.Legal() && insp.KingMoves != nil && *insp.KingMoves == aggregate.CountKingMoves(game.Moves)
	if !insp.Legal() {
		logger.FromContext(r.Context()).Debug("game %s stops replaying at ply %d (%s)", game.ID, insp.IllegalPly, insp.IllegalMove)
	}
	writeJSON(w, r, http.StatusOK, gameDetail{Game: *game, Replay: insp, ParityOK: parityOK})
}

func (s *Server) handleGamePGN(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	id := chi.URLParam(r, "id")

	game, err := s.lookupGame(r, id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	pgn, err := notation.ToPGN(*game)
	if err != nil {
		log.Warn("cannot render pgn for game %s: %v", id, err)
		handleError(w, r, errors.NewInternalError(err))
		return
	}

	w.Header().Set("Content-Type", "application/x-chess-pgn; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+id+`.pgn"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(pgn))
}

// handleArchive pages through the SQLite archive rather than the in-memory
// store.
func (s *Server) handleArchive(w http.ResponseWriter, r *http.Request) {
	if s.Archive == nil {
		handleError(w, r, errUnavailable("game archive"))
		return
	}
	filter, err := parseArchiveFilter(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	games, total, err := s.Archive.ListGames(r.Context(), filter)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{
		"games":  orEmpty(games),
		"total":  total,
		"limit":  filter.Limit,
		"offset": filter.Offset,
	})
}
