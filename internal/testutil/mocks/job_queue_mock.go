package mocks

import (
	"github.com/stretchr/testify/mock"
	"github.com/vytor/chessduel/internal/jobs"
	"github.com/vytor/chessduel/internal/services"
)

// MockJobQueue is a mock implementation of jobs.JobQueue
type MockJobQueue struct {
	mock.Mock
}

func (m *MockJobQueue) EnqueueSync(req services.SyncRequest, backfill bool) (string, error) {
	args := m.Called(req, backfill)
	return args.String(0), args.Error(1)
}

// MockStatusReader is a mock implementation of jobs.StatusReader
type MockStatusReader struct {
	mock.Mock
}

func (m *MockStatusReader) Status(id string) (jobs.Status, bool) {
	args := m.Called(id)
	return args.Get(0).(jobs.Status), args.Bool(1)
}
