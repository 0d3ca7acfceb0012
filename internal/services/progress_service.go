package services

import (
	"context"

	"github.com/vytor/upsimu/internal/errors"
	"github.com/vytor/upsimu/internal/logger"
	"github.com/vytor/upsimu/internal/models"
	"github.com/vytor/upsimu/internal/progress"
	"github.com/vytor/upsimu/internal/repository"
)

const maxHistoryLimit = 200

// ProgressView is the game state plus the derived total.
type ProgressView struct {
	models.GameState
	TotalStars float64 `json:"totalStars"`
}

// ProgressService handles stars, XP and level per profile
type ProgressService interface {
	GetProgress(ctx context.Context, profileID int64) (*ProgressView, error)
	Record(ctx context.Context, profileID int64, scenarioID string, stars float64) (*ProgressView, error)
	ResetProgress(ctx context.Context, profileID int64) error
	History(ctx context.Context, filter models.HistoryFilter) ([]models.AttemptRecord, int, error)
	BestScores(ctx context.Context, profileID int64) ([]models.BestScore, error)
}

type progressService struct {
	kvRepo      repository.KVRepository
	historyRepo repository.HistoryRepository
	locks       *keyedMutex[int64]
}

// NewProgressService creates a new ProgressService
func NewProgressService(kvRepo repository.KVRepository, historyRepo repository.HistoryRepository) ProgressService {
	return &progressService{
		kvRepo:      kvRepo,
		historyRepo: historyRepo,
		locks:       newKeyedMutex[int64](),
	}
}

func (s *progressService) tracker(ctx context.Context, profileID int64) (*progress.Tracker, error) {
	t := progress.NewTracker(progress.NewKVStore(s.kvRepo, profileID))
	if err := t.Load(ctx); err != nil {
		return nil, errors.NewInternalError(err)
	}
	return t, nil
}

func view(state models.GameState) *ProgressView {
	return &ProgressView{GameState: state, TotalStars: progress.TotalStars(state)}
}

func (s *progressService) GetProgress(ctx context.Context, profileID int64) (*ProgressView, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting progress: profile_id=%d", profileID)

	t, err := s.tracker(ctx, profileID)
	if err != nil {
		log.Error("failed to load progress: %v", err)
		return nil, err
	}
	return view(t.State()), nil
}

func (s *progressService) Record(ctx context.Context, profileID int64, scenarioID string, stars float64) (*ProgressView, error) {
	log := logger.FromContext(ctx)
	log.Debug("recording result: profile_id=%d scenario=%s stars=%.1f", profileID, scenarioID, stars)

	unlock := s.locks.Lock(profileID)
	defer unlock()

	t, err := s.tracker(ctx, profileID)
	if err != nil {
		log.Error("failed to load progress: %v", err)
		return nil, err
	}
	before := t.State().CurrentLevel
	state, err := t.Record(ctx, scenarioID, stars)
	if err != nil {
		log.Error("failed to save progress: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if state.CurrentLevel != before {
		log.Info("profile %d reached level %s", profileID, state.CurrentLevel)
	}
	return view(state), nil
}

func (s *progressService) ResetProgress(ctx context.Context, profileID int64) error {
	log := logger.FromContext(ctx)
	log.Debug("resetting progress: profile_id=%d", profileID)

	unlock := s.locks.Lock(profileID)
	defer unlock()

	t := progress.NewTracker(progress.NewKVStore(s.kvRepo, profileID))
	if err := t.Reset(ctx); err != nil {
		log.Error("failed to reset progress: %v", err)
		return errors.NewInternalError(err)
	}
	return nil
}

func (s *progressService) History(ctx context.Context, filter models.HistoryFilter) ([]models.AttemptRecord, int, error) {
	log := logger.FromContext(ctx)
	log.Debug("listing history: profile_id=%d scenario=%s", filter.ProfileID, filter.ScenarioID)

	if filter.Limit > maxHistoryLimit {
		return nil, 0, errors.NewValidationError("limit", "must be at most 200")
	}
	if filter.Offset < 0 {
		return nil, 0, errors.NewValidationError("offset", "cannot be negative")
	}
	if filter.OrderDir != "" && filter.OrderDir != "ASC" && filter.OrderDir != "DESC" {
		return nil, 0, errors.NewValidationError("order", "must be ASC or DESC")
	}

	records, err := s.historyRepo.List(ctx, filter)
	if err != nil {
		log.Error("failed to list history: %v", err)
		return nil, 0, errors.NewInternalError(err)
	}
	total, err := s.historyRepo.Count(ctx, filter)
	if err != nil {
		log.Error("failed to count history: %v", err)
		return nil, 0, errors.NewInternalError(err)
	}
	return records, total, nil
}

func (s *progressService) BestScores(ctx context.Context, profileID int64) ([]models.BestScore, error) {
	scores, err := s.historyRepo.BestScores(ctx, profileID)
	if err != nil {
		logger.FromContext(ctx).Error("failed to get best scores: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return scores, nil
}
