package api

import (
	"context"

	"go.opentelemetry.io/otel/metric"

	"github.com/vytor/chessduel/internal/jobs"
	"github.com/vytor/chessduel/internal/services"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Server serves the head-to-head dashboard as JSON. Only Dashboard is
// required; routes backed by an unset dependency answer 503.
type Server struct {
	Dashboard services.DashboardService
	Archive   services.GameService
	Jobs      jobs.JobQueue
	JobStatus jobs.StatusReader
	DB        Pinger

	// Meter receives request metrics. Nil uses the global provider.
	Meter metric.Meter
}
