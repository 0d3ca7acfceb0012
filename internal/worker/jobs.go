package worker

import (
	"context"
	"time"

	"github.com/vytor/upsimu/internal/logger"
	"github.com/vytor/upsimu/internal/models"
	"github.com/vytor/upsimu/internal/repository"
)

// AttemptSweeper drops expired live attempts. It keeps this package free of
// the cache package.
type AttemptSweeper interface {
	Sweep(ctx context.Context) (int, error)
}

// ArchiveAttemptJob writes a finished attempt to the history table.
type ArchiveAttemptJob struct {
	History repository.HistoryRepository
	Record  models.AttemptRecord
}

func (j *ArchiveAttemptJob) Name() string { return "archive_attempt" }

func (j *ArchiveAttemptJob) Run(ctx context.Context) error {
	log := logger.FromContext(ctx).WithFields(map[string]any{
		"attempt_id": j.Record.AttemptID,
		"profile_id": j.Record.ProfileID,
	})
	id, err := j.History.Insert(ctx, j.Record)
	if err != nil {
		return err
	}
	log.Debug("attempt archived: history_id=%d stars=%.1f", id, j.Record.Stars)
	return nil
}

type SweepJob struct {
	Store AttemptSweeper
}

func (j *SweepJob) Name() string { return "sweep_attempts" }

func (j *SweepJob) Run(ctx context.Context) error {
	removed, err := j.Store.Sweep(ctx)
	if err != nil {
		return err
	}
	if removed > 0 {
		logger.FromContext(ctx).Info("removed %d expired attempts", removed)
	}
	return nil
}

// StartSweeper submits a SweepJob every interval until ctx is done.
func StartSweeper(ctx context.Context, pool *Pool, store AttemptSweeper, interval time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := pool.Submit(&SweepJob{Store: store}); err != nil {
					logger.Default().WithPrefix("sweeper").Warn("could not schedule sweep: %v", err)
				}
			}
		}
	}()
}
