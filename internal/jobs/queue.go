package jobs

import "github.com/vytor/upsimu/internal/models"

// JobQueue provides an abstraction for enqueueing background jobs
type JobQueue interface {
	EnqueueArchive(rec models.AttemptRecord) error
}
