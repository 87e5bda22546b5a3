package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/chessduel/internal/lichess"
	"github.com/vytor/chessduel/internal/models"
)

// MockLichessClient is a mock implementation of lichess.ClientInterface
type MockLichessClient struct {
	mock.Mock
}

func (m *MockLichessClient) FetchGames(ctx context.Context, p lichess.FetchParams) ([]models.Game, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Game), args.Error(1)
}
