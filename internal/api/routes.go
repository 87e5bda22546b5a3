package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) Routes() http.Handler {
	metrics, err := newHTTPMetrics(s.Meter)
	if err != nil {
		panic(fmt.Errorf("api metrics: %w", err))
	}

	r := chi.NewRouter()
	r.Use(loggingMiddleware)
	r.Use(metrics.middleware)
	r.Use(recoveryMiddleware)
	r.Use(securityHeadersMiddleware)

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/players", s.handlePlayers)
		r.Get("/months", s.handleMonths)
		r.Get("/stats", s.handleStats)
		r.Get("/openings", s.handleOpenings)
		r.Get("/sessions", s.handleSessions)
		r.Get("/highlights", s.handleHighlights)
		r.Get("/timeline", s.handleTimeline)
		r.Get("/calendar", s.handleCalendar)

		r.Get("/games", s.handleGames)
		r.Get("/games/{id}", s.handleGame)
		r.Get("/games/{id}/pgn", s.handleGamePGN)
		r.Get("/archive", s.handleArchive)

		r.Post("/sync", s.handleSync)
		r.Get("/sync/{id}", s.handleSyncStatus)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		handleError(w, r, errNoRoute(r))
	})
	return r
}
