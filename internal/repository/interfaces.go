package repository

import (
	"context"
	"time"

	"github.com/vytor/upsimu/internal/models"
)

// ProfileRepository handles profile data access
type ProfileRepository interface {
	Get(ctx context.Context, id int64) (*models.Profile, error)
	List(ctx context.Context) ([]models.Profile, error)
	Upsert(ctx context.Context, username string) (*models.Profile, error)
	Touch(ctx context.Context, id int64, t time.Time) error
	Delete(ctx context.Context, id int64) error
}

// KVRepository stores opaque values per profile and key. Get returns nil, nil
// when the key is not set.
type KVRepository interface {
	Get(ctx context.Context, profileID int64, key string) ([]byte, error)
	Put(ctx context.Context, profileID int64, key string, value []byte) error
	Delete(ctx context.Context, profileID int64, key string) error
}

// HistoryRepository handles archived attempt outcomes
type HistoryRepository interface {
	Insert(ctx context.Context, rec models.AttemptRecord) (int64, error)
	List(ctx context.Context, filter models.HistoryFilter) ([]models.AttemptRecord, error)
	Count(ctx context.Context, filter models.HistoryFilter) (int, error)
	BestScores(ctx context.Context, profileID int64) ([]models.BestScore, error)
	DeleteForProfile(ctx context.Context, profileID int64) error
}
