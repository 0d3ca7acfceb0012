// Package cache keeps live attempts between turns.
package cache

import (
	"context"

	"github.com/vytor/upsimu/internal/models"
)

// AttemptStore holds in-progress attempts. Get returns a not-found AppError for
// unknown or expired ids. Stored attempts are copies; mutate and Save again.
type AttemptStore interface {
	Get(ctx context.Context, id string) (*models.Attempt, error)
	Save(ctx context.Context, a *models.Attempt) error
	Delete(ctx context.Context, id string) error
	// Sweep drops expired attempts and returns how many were removed.
	Sweep(ctx context.Context) (int, error)
	Ping(ctx context.Context) error
}

func cloneAttempt(a *models.Attempt) *models.Attempt {
	c := *a
	c.Transcript = append([]models.Turn(nil), a.Transcript...)
	c.FollowUps = make(map[models.CoverageState]int, len(a.FollowUps))
	for k, v := range a.FollowUps {
		c.FollowUps[k] = v
	}
	return &c
}
