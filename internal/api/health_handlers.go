package api

import (
	"context"
	"net/http"
	"time"

	"github.com/vytor/chessduel/internal/logger"
	"github.com/vytor/chessduel/internal/services"
)

type healthResponse struct {
	Status   string              `json:"status"`
	Games    int                 `json:"games"`
	Months   int                 `json:"months"`
	Cache    services.CacheStats `json:"cache"`
	Database string              `json:"database,omitempty"`
}

// handleHealth reports the loaded archive and cache counters. It answers 503
// when the database is configured but does not respond.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	store := s.Dashboard.Snapshot()
	resp := healthResponse{
		Status: "ok",
		Games:  store.Len(),
		Months: len(store),
		Cache:  s.Dashboard.CacheStats(),
	}

	status := http.StatusOK
	if s.DB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.DB.PingContext(ctx); err != nil {
			log.Warn("health check failed - database: %v", err)
			resp.Status = "degraded"
			resp.Database = "unavailable"
			status = http.StatusServiceUnavailable
		} else {
			resp.Database = "ok"
		}
	}
	writeJSON(w, r, status, resp)
}
