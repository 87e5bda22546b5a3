package jobs

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type jobMetrics struct {
	runs     metric.Int64Counter
	duration metric.Float64Histogram
	added    metric.Int64Counter
}

var metrics jobMetrics

func init() {
	meter := otel.Meter("chessduel/jobs")

	runs, err := meter.Int64Counter(
		"jobs/runs",
		metric.WithDescription("Finished background jobs by kind and final state"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create job runs metric: %w", err))
	}

	duration, err := meter.Float64Histogram(
		"jobs/duration_seconds",
		metric.WithDescription("Wall time of finished background jobs"),
		metric.WithUnit("s"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create job duration metric: %w", err))
	}

	added, err := meter.Int64Counter(
		"jobs/games_added",
		metric.WithDescription("Games added to the archive by sync jobs"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create games added metric: %w", err))
	}

	metrics = jobMetrics{runs: runs, duration: duration, added: added}
}

func recordRun(ctx context.Context, kind string, state State, elapsed time.Duration, added int) {
	attrs := metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("state", string(state)),
	)
	metrics.runs.Add(ctx, 1, attrs)
	metrics.duration.Record(ctx, elapsed.Seconds(), attrs)
	if added > 0 {
		metrics.added.Add(ctx, int64(added), metric.WithAttributes(attribute.String("kind", kind)))
	}
}
