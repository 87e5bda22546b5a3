package jobs

import (
	"time"

	"github.com/vytor/chessduel/internal/services"
)

// JobQueue provides an abstraction for enqueueing background jobs
type JobQueue interface {
	EnqueueSync(req services.SyncRequest, backfill bool) (string, error)
}

// StatusReader exposes the progress of queued jobs.
type StatusReader interface {
	Status(id string) (Status, bool)
}

type State string

const (
	StateQueued    State = "queued"
	StateRunning   State = "running"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
)

// Status is the externally visible state of one job.
type Status struct {
	ID         string               `json:"id"`
	Kind       string               `json:"kind"`
	State      State                `json:"state"`
	QueuedAt   time.Time            `json:"queued_at"`
	FinishedAt *time.Time           `json:"finished_at,omitempty"`
	Result     *services.SyncResult `json:"result,omitempty"`
	Error      string               `json:"error,omitempty"`
}
