package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/vytor/upsimu/internal/models"
)

// MockHistoryRepository is a mock implementation of repository.HistoryRepository
type MockHistoryRepository struct {
	mock.Mock
}

func (m *MockHistoryRepository) Insert(ctx context.Context, rec models.AttemptRecord) (int64, error) {
	args := m.Called(ctx, rec)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockHistoryRepository) List(ctx context.Context, filter models.HistoryFilter) ([]models.AttemptRecord, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AttemptRecord), args.Error(1)
}

func (m *MockHistoryRepository) Count(ctx context.Context, filter models.HistoryFilter) (int, error) {
	args := m.Called(ctx, filter)
	return args.Int(0), args.Error(1)
}

func (m *MockHistoryRepository) BestScores(ctx context.Context, profileID int64) ([]models.BestScore, error) {
	args := m.Called(ctx, profileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.BestScore), args.Error(1)
}

func (m *MockHistoryRepository) DeleteForProfile(ctx context.Context, profileID int64) error {
	args := m.Called(ctx, profileID)
	return args.Error(0)
}
