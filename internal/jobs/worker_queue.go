package jobs

import (
	"context"

	"github.com/vytor/upsimu/internal/models"
	"github.com/vytor/upsimu/internal/repository"
	"github.com/vytor/upsimu/internal/worker"
)

// WorkerQueue implements JobQueue using worker pools
type WorkerQueue struct {
	archivePool *worker.Pool
	history     repository.HistoryRepository
}

// NewWorkerQueue creates a new WorkerQueue implementation
func NewWorkerQueue(archivePool *worker.Pool, history repository.HistoryRepository) JobQueue {
	return &WorkerQueue{
		archivePool: archivePool,
		history:     history,
	}
}

func (q *WorkerQueue) EnqueueArchive(rec models.AttemptRecord) error {
	return q.archivePool.Submit(&worker.ArchiveAttemptJob{
		History: q.history,
		Record:  rec,
	})
}

// SyncQueue runs jobs on the caller's goroutine; the terminal client uses it so
// history is written before the process exits.
type SyncQueue struct {
	history repository.HistoryRepository
}

func NewSyncQueue(history repository.HistoryRepository) JobQueue {
	return &SyncQueue{history: history}
}

func (q *SyncQueue) EnqueueArchive(rec models.AttemptRecord) error {
	job := &worker.ArchiveAttemptJob{History: q.history, Record: rec}
	return job.Run(context.Background())
}
