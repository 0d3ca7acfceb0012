package mocks

import (
	"github.com/stretchr/testify/mock"

	"github.com/vytor/upsimu/internal/models"
)

// MockJobQueue is a mock implementation of jobs.JobQueue
type MockJobQueue struct {
	mock.Mock
}

func (m *MockJobQueue) EnqueueArchive(rec models.AttemptRecord) error {
	args := m.Called(rec)
	return args.Error(0)
}
