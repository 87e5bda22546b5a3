package services

import (
	"context"
	"fmt"

	"github.com/vytor/chessduel/internal/archive"
	"github.com/vytor/chessduel/internal/logger"
	"github.com/vytor/chessduel/internal/models"
	"github.com/vytor/chessduel/internal/repository"
)

// OpenArchive loads the monthly JSON shards in dataDir. When the directory
// holds no games the database copy is used instead; otherwise the shards are
// upserted so the database catches up. A nil gameRepo skips the database.
func OpenArchive(ctx context.Context, dataDir string, gameRepo repository.GameRepository) (models.GamesByMonth, error) {
	log := logger.FromContext(ctx)

	store, err := archive.LoadDir(ctx, dataDir)
	if err != nil {
		return nil, err
	}
	if gameRepo == nil {
		return store, nil
	}

	if store.Len() == 0 {
		log.Info("no games in %s, loading archive from database", dataDir)
		store, err = gameRepo.LoadAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("load archive from database: %w", err)
		}
		return store, nil
	}

	inserted, err := gameRepo.UpsertBatch(ctx, store)
	if err != nil {
		return nil, fmt.Errorf("seed database from %s: %w", dataDir, err)
	}
	log.Info("archive loaded from %s: %d games, %d new in database", dataDir, store.Len(), inserted)
	return store, nil
}
