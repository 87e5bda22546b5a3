package repository

import (
	"context"

	"github.com/vytor/chessduel/internal/models"
)

// GameRepository handles game archive access
type GameRepository interface {
	Get(ctx context.Context, id string) (*models.Game, error)
	List(ctx context.Context, filter models.GameFilter) ([]models.Game, error)
	Count(ctx context.Context, filter models.GameFilter) (int, error)
	// UpsertBatch stores every game of store under its bucket key and
	// returns how many ids were not present before.
	UpsertBatch(ctx context.Context, store models.GamesByMonth) (int, error)
	LoadAll(ctx context.Context) (models.GamesByMonth, error)
	// LatestCreatedAt returns the newest createdAt in epoch ms, or 0 when empty.
	LatestCreatedAt(ctx context.Context) (int64, error)
}
