package lichess

import (
	"context"

	"github.com/vytor/chessduel/internal/models"
)

// ClientInterface defines the Lichess operations the sync service needs.
type ClientInterface interface {
	FetchGames(ctx context.Context, p FetchParams) ([]models.Game, error)
}

var _ ClientInterface = (*Client)(nil)
