package progress

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/vytor/upsimu/internal/logger"
	"github.com/vytor/upsimu/internal/models"
	"github.com/vytor/upsimu/internal/repository"
)

// StorageKey is the single key the game state is stored under.
const StorageKey = "up-simu-game-state"

// KVStore keeps one profile's game state as JSON in the key-value table.
type KVStore struct {
	repo      repository.KVRepository
	profileID int64
}

func NewKVStore(repo repository.KVRepository, profileID int64) *KVStore {
	return &KVStore{repo: repo, profileID: profileID}
}

// Load returns the stored state, or the initial state when nothing is stored
// or the stored record cannot be decoded.
func (s *KVStore) Load(ctx context.Context) (models.GameState, error) {
	log := logger.FromContext(ctx).WithPrefix("progress").WithField("profile_id", s.profileID)

	raw, err := s.repo.Get(ctx, s.profileID, StorageKey)
	if err != nil {
		log.Error("failed to load game state: %v", err)
		return models.GameState{}, err
	}
	if raw == nil {
		log.Debug("no stored game state, starting fresh")
		return InitialState(), nil
	}

	var state models.GameState
	if err := json.Unmarshal(raw, &state); err != nil {
		log.Error("failed to decode game state, starting fresh: %v", err)
		return InitialState(), nil
	}
	return Normalize(state), nil
}

func (s *KVStore) Save(ctx context.Context, state models.GameState) error {
	log := logger.FromContext(ctx).WithPrefix("progress").WithField("profile_id", s.profileID)

	raw, err := json.Marshal(Normalize(state))
	if err != nil {
		return fmt.Errorf("encode game state: %w", err)
	}
	if err := s.repo.Put(ctx, s.profileID, StorageKey, raw); err != nil {
		log.Error("failed to save game state: %v", err)
		return err
	}
	log.Debug("game state saved: level=%s xp=%d", state.CurrentLevel, state.TotalXP)
	return nil
}
