package jobs

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vytor/chessduel/internal/services"
	"github.com/vytor/chessduel/internal/worker"
)

// WorkerQueue implements JobQueue using a worker pool
type WorkerQueue struct {
	pool        *worker.Pool
	syncService services.SyncService
	tracker     *Tracker
}

// NewWorkerQueue creates a new WorkerQueue implementation
func NewWorkerQueue(pool *worker.Pool, syncService services.SyncService, tracker *Tracker) *WorkerQueue {
	return &WorkerQueue{pool: pool, syncService: syncService, tracker: tracker}
}

var (
	_ JobQueue     = (*WorkerQueue)(nil)
	_ StatusReader = (*WorkerQueue)(nil)
)

func (q *WorkerQueue) EnqueueSync(req services.SyncRequest, backfill bool) (string, error) {
	job := &SyncJob{
		ID:       uuid.NewString(),
		Service:  q.syncService,
		Request:  req,
		Backfill: backfill,
		Tracker:  q.tracker,
	}
	q.tracker.put(Status{ID: job.ID, Kind: job.Name(), State: StateQueued, QueuedAt: time.Now()})

	if err := q.pool.Submit(job); err != nil {
		q.tracker.items.Delete(job.ID)
		return "", fmt.Errorf("enqueue %s: %w", job.Name(), err)
	}
	return job.ID, nil
}

func (q *WorkerQueue) Status(id string) (Status, bool) {
	return q.tracker.Status(id)
}
