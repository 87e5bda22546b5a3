package api

import (
	stderrors "errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/vytor/chessduel/internal/errors"
	"github.com/vytor/chessduel/internal/logger"
	"github.com/vytor/chessduel/internal/worker"
)

type syncAccepted struct {
	JobID     string `json:"job_id"`
	Backfill  bool   `json:"backfill"`
	StatusURL string `json:"status_url"`
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	if s.Jobs == nil {
		handleError(w, r, errUnavailable("sync"))
		return
	}

	req, backfill, err := parseSyncRequest(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	id, err := s.Jobs.EnqueueSync(req, backfill)
	switch {
	case stderrors.Is(err, worker.ErrQueueFull):
		handleError(w, r, errors.NewUnavailableError("sync queue is full, try again later"))
		return
	case stderrors.Is(err, worker.ErrPoolStopped):
		handleError(w, r, errors.NewUnavailableError("sync workers are shutting down"))
		return
	case err != nil:
		handleError(w, r, err)
		return
	}

	log.Info("sync job queued: id=%s backfill=%t", id, backfill)
	writeJSON(w, r, http.StatusAccepted, syncAccepted{JobID: id, Backfill: backfill, StatusURL: "/api/sync/" + id})
}

func (s *Server) handleSyncStatus(w http.ResponseWriter, r *http.Request) {
	if s.JobStatus == nil {
		handleError(w, r, errUnavailable("sync"))
		return
	}

	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		handleError(w, r, errors.NewValidationError("id", "must be a UUID"))
		return
	}

	status, ok := s.JobStatus.Status(id)
	if !ok {
		handleError(w, r, errors.NewNotFoundError("sync job", id))
		return
	}
	writeJSON(w, r, http.StatusOK, status)
}
