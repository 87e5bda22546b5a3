package services

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/vytor/chessduel/internal/errors"
	"github.com/vytor/chessduel/internal/logger"
	"github.com/vytor/chessduel/internal/models"
	"github.com/vytor/chessduel/internal/repository"
)

// GameService serves individual games and paged listings from the SQLite
// archive.
type GameService interface {
	GetGame(ctx context.Context, id string) (*models.Game, error)
	ListGames(ctx context.Context, filter models.GameFilter) ([]models.Game, int, error)
	LoadArchive(ctx context.Context) (models.GamesByMonth, error)
}

type gameService struct {
	gameRepo repository.GameRepository
}

// NewGameService creates a new GameService
func NewGameService(gameRepo repository.GameRepository) GameService {
	return &gameService{gameRepo: gameRepo}
}

func (s *gameService) GetGame(ctx context.Context, id string) (*models.Game, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting game: id=%s", id)

	game, err := s.gameRepo.Get(ctx, id)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewNotFoundError("game", id)
		}
		log.Error("failed to get game: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if game == nil {
		return nil, errors.NewNotFoundError("game", id)
	}
	return game, nil
}

func (s *gameService) ListGames(ctx context.Context, filter models.GameFilter) ([]models.Game, int, error) {
	log := logger.FromContext(ctx)
	log.Debug("listing games: month=%s, player=%s, limit=%d, offset=%d", filter.MonthKey, filter.Player, filter.Limit, filter.Offset)

	games, err := s.gameRepo.List(ctx, filter)
	if err != nil {
		log.Error("failed to list games: %v", err)
		return nil, 0, errors.NewInternalError(err)
	}

	total, err := s.gameRepo.Count(ctx, filter)
	if err != nil {
		log.Error("failed to count games: %v", err)
		return nil, 0, errors.NewInternalError(err)
	}
	return games, total, nil
}

func (s *gameService) LoadArchive(ctx context.Context) (models.GamesByMonth, error) {
	store, err := s.gameRepo.LoadAll(ctx)
	if err != nil {
		logger.FromContext(ctx).Error("failed to load archive: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return store, nil
}
