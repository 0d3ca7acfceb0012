package jobs_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vytor/upsimu/internal/jobs"
	"github.com/vytor/upsimu/internal/models"
	"github.com/vytor/upsimu/internal/testutil/mocks"
	"github.com/vytor/upsimu/internal/worker"
)

func TestWorkerQueue_EnqueueArchive(t *testing.T) {
	history := new(mocks.MockHistoryRepository)
	rec := models.AttemptRecord{ProfileID: 1, ScenarioID: "volvo", AttemptID: "a1", Stars: 3}

	archived := make(chan struct{})
	history.On("Insert", mock.Anything, rec).Run(func(mock.Arguments) { close(archived) }).Return(int64(1), nil)

	pool := worker.NewPool(1, 4)
	pool.Start(context.Background())
	defer pool.Stop()

	q := jobs.NewWorkerQueue(pool, history)
	require.NoError(t, q.EnqueueArchive(rec))

	select {
	case <-archived:
	case <-time.After(2 * time.Second):
		t.Fatal("attempt was never archived")
	}
}

func TestWorkerQueue_StoppedPool(t *testing.T) {
	pool := worker.NewPool(1, 4)
	pool.Stop()

	q := jobs.NewWorkerQueue(pool, new(mocks.MockHistoryRepository))
	assert.ErrorIs(t, q.EnqueueArchive(models.AttemptRecord{}), worker.ErrPoolStopped)
}

func TestSyncQueue_EnqueueArchive(t *testing.T) {
	history := new(mocks.MockHistoryRepository)
	rec := models.AttemptRecord{ProfileID: 1, ScenarioID: "financial", AttemptID: "a2", Stars: 2}
	history.On("Insert", mock.Anything, rec).Return(int64(5), nil)

	require.NoError(t, jobs.NewSyncQueue(history).EnqueueArchive(rec))
	history.AssertExpectations(t)
}
