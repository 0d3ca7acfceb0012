package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/vytor/upsimu/internal/cache"
	"github.com/vytor/upsimu/internal/dialogue"
	"github.com/vytor/upsimu/internal/errors"
	"github.com/vytor/upsimu/internal/evaluator"
	"github.com/vytor/upsimu/internal/jobs"
	"github.com/vytor/upsimu/internal/logger"
	"github.com/vytor/upsimu/internal/models"
	"github.com/vytor/upsimu/internal/repository"
)

// TurnResult is the outcome of one submitted utterance. Result and Progress are
// set only when the attempt completed on this turn.
type TurnResult struct {
	Attempt  *models.Attempt          `json:"attempt"`
	Action   dialogue.Action          `json:"action"`
	Result   *models.EvaluationResult `json:"result,omitempty"`
	Progress *ProgressView            `json:"progress,omitempty"`
}

// ConversationService runs attempts from the opening question to the score
type ConversationService interface {
	Start(ctx context.Context, profileID int64, scenarioID string) (*models.Attempt, error)
	Submit(ctx context.Context, profileID int64, attemptID, text string) (*TurnResult, error)
	Get(ctx context.Context, profileID int64, attemptID string) (*models.Attempt, error)
	Abandon(ctx context.Context, profileID int64, attemptID string) error
}

type conversationService struct {
	scenarios   ScenarioSource
	engine      *dialogue.Engine
	evaluator   *evaluator.Evaluator
	store       cache.AttemptStore
	progress    ProgressService
	profileRepo repository.ProfileRepository
	queue       jobs.JobQueue
	locks       *keyedMutex[string]
	newID       func() string
	now         func() time.Time
}

// NewConversationService creates a new ConversationService
func NewConversationService(
	scenarios ScenarioSource,
	engine *dialogue.Engine,
	eval *evaluator.Evaluator,
	store cache.AttemptStore,
	progressService ProgressService,
	profileRepo repository.ProfileRepository,
	queue jobs.JobQueue,
) ConversationService {
	return &conversationService{
		scenarios:   scenarios,
		engine:      engine,
		evaluator:   eval,
		store:       store,
		progress:    progressService,
		profileRepo: profileRepo,
		queue:       queue,
		locks:       newKeyedMutex[string](),
		newID:       uuid.NewString,
		now:         time.Now,
	}
}

func (s *conversationService) Start(ctx context.Context, profileID int64, scenarioID string) (*models.Attempt, error) {
	log := logger.FromContext(ctx).WithField("profile_id", profileID)
	log.Debug("starting attempt: scenario=%s", scenarioID)

	sc, err := s.scenarios.Get(scenarioID)
	if err != nil {
		return nil, err
	}

	a := models.NewAttempt(s.newID(), profileID, sc, s.now())
	if err := s.store.Save(ctx, a); err != nil {
		log.Error("failed to store attempt: %v", err)
		return nil, errors.NewInternalError(err)
	}
	log.Info("attempt started: id=%s scenario=%s", a.ID, sc.ID)
	return a, nil
}

// load fetches an attempt and hides attempts owned by other profiles.
func (s *conversationService) load(ctx context.Context, profileID int64, attemptID string) (*models.Attempt, error) {
	a, err := s.store.Get(ctx, attemptID)
	if err != nil {
		if errors.HasCode(err, errors.ErrCodeNotFound) {
			return nil, err
		}
		logger.FromContext(ctx).Error("failed to load attempt %s: %v", attemptID, err)
		return nil, errors.NewInternalError(err)
	}
	if a.ProfileID != profileID {
		return nil, errors.NewNotFoundError("attempt", attemptID)
	}
	return a, nil
}

func (s *conversationService) Get(ctx context.Context, profileID int64, attemptID string) (*models.Attempt, error) {
	logger.FromContext(ctx).Debug("getting attempt: id=%s", attemptID)
	return s.load(ctx, profileID, attemptID)
}

func (s *conversationService) Submit(ctx context.Context, profileID int64, attemptID, text string) (*TurnResult, error) {
	log := logger.FromContext(ctx).WithFields(map[string]any{
		"profile_id": profileID,
		"attempt_id": attemptID,
	})
	log.Debug("submitting turn")

	unlock := s.locks.Lock(attemptID)
	defer unlock()

	a, err := s.load(ctx, profileID, attemptID)
	if err != nil {
		return nil, err
	}
	sc, err := s.scenarios.Get(a.ScenarioID)
	if err != nil {
		return nil, err
	}

	action, err := s.engine.Submit(a, sc, text)
	if err != nil {
		log.Debug("turn rejected: %v", err)
		return nil, err
	}

	out := &TurnResult{Attempt: a, Action: action}
	if !action.Completed() {
		if err := s.store.Save(ctx, a); err != nil {
			log.Error("failed to store attempt: %v", err)
			return nil, errors.NewInternalError(err)
		}
		log.Debug("follow-up: kind=%s", action.Kind)
		return out, nil
	}

	result := s.evaluator.Evaluate(action.FinalTranscript, sc)
	out.Result = &result
	log.Info("attempt completed: scenario=%s stars=%.1f off_topic=%t", sc.ID, result.Stars, action.OffTopic)

	// The stored attempt still holds the previous turn, so the answer can be resent.
	state, err := s.progress.Record(ctx, profileID, sc.ID, result.Stars)
	if err != nil {
		return nil, err
	}
	out.Progress = state

	// A finished attempt is not kept; the archive record is what remains.
	if err := s.store.Delete(ctx, a.ID); err != nil {
		log.Warn("failed to drop completed attempt: %v", err)
	}

	if err := s.profileRepo.Touch(ctx, profileID, s.now()); err != nil {
		log.Warn("failed to update last played time: %v", err)
	}

	rec := models.AttemptRecord{
		ProfileID:  profileID,
		ScenarioID: sc.ID,
		AttemptID:  a.ID,
		Stars:      result.Stars,
		Transcript: action.FinalTranscript,
		Feedback:   result.Feedback,
		OffTopic:   action.OffTopic,
		Turns:      len(a.UserTurns()),
		CreatedAt:  s.now(),
	}
	if err := s.queue.EnqueueArchive(rec); err != nil {
		log.Warn("failed to enqueue archive: %v", err)
	}
	return out, nil
}

func (s *conversationService) Abandon(ctx context.Context, profileID int64, attemptID string) error {
	log := logger.FromContext(ctx)
	log.Debug("abandoning attempt: id=%s", attemptID)

	unlock := s.locks.Lock(attemptID)
	defer unlock()

	if _, err := s.load(ctx, profileID, attemptID); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, attemptID); err != nil {
		log.Error("failed to delete attempt: %v", err)
		return errors.NewInternalError(err)
	}
	return nil
}
