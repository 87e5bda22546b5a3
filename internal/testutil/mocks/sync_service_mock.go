package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/chessduel/internal/services"
)

// MockSyncService is a mock implementation of services.SyncService
type MockSyncService struct {
	mock.Mock
}

func (m *MockSyncService) Sync(ctx context.Context, req services.SyncRequest) (*services.SyncResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.SyncResult), args.Error(1)
}

func (m *MockSyncService) Backfill(ctx context.Context, req services.SyncRequest) (*services.SyncResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.SyncResult), args.Error(1)
}
