package jobs

import (
	"context"
	"time"

	"github.com/vytor/chessduel/internal/logger"
	"github.com/vytor/chessduel/internal/services"
)

// SyncJob runs one Lichess sync or backfill and records its outcome.
type SyncJob struct {
	ID       string
	Service  services.SyncService
	Request  services.SyncRequest
	Backfill bool
	Tracker  *Tracker
}

func (j *SyncJob) Name() string {
	if j.Backfill {
		return "backfill_games"
	}
	return "sync_games"
}

func (j *SyncJob) Run(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("job_id", j.ID)
	started := time.Now()
	j.track(func(s *Status) { s.State = StateRunning })

	var (
		result *services.SyncResult
		err    error
	)
	if j.Backfill {
		result, err = j.Service.Backfill(ctx, j.Request)
	} else {
		result, err = j.Service.Sync(ctx, j.Request)
	}

	finished := time.Now()
	if err != nil {
		log.Warn("sync failed: %v", err)
		recordRun(ctx, j.Name(), StateFailed, finished.Sub(started), 0)
		j.track(func(s *Status) {
			s.State = StateFailed
			s.Error = err.Error()
			s.FinishedAt = &finished
		})
		return err
	}

	log.Info("sync added %d games", result.Added)
	recordRun(ctx, j.Name(), StateSucceeded, finished.Sub(started), result.Added)
	j.track(func(s *Status) {
		s.State = StateSucceeded
		s.Result = result
		s.FinishedAt = &finished
	})
	return nil
}

func (j *SyncJob) track(fn func(*Status)) {
	if j.Tracker != nil {
		j.Tracker.update(j.ID, fn)
	}
}
