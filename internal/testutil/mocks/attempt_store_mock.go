package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/vytor/upsimu/internal/models"
)

// MockAttemptStore is a mock implementation of cache.AttemptStore
type MockAttemptStore struct {
	mock.Mock
}

func (m *MockAttemptStore) Get(ctx context.Context, id string) (*models.Attempt, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Attempt), args.Error(1)
}

func (m *MockAttemptStore) Save(ctx context.Context, a *models.Attempt) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAttemptStore) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAttemptStore) Sweep(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockAttemptStore) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
