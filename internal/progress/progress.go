// Package progress keeps the player's stars, XP and level across sessions.
package progress

import (
	"context"
	"sort"
	"sync"

	"github.com/vytor/upsimu/internal/models"
)

const (
	XPPerStar = 100
	// StarsPerLevel is how many total stars each level above Beginner needs.
	StarsPerLevel = 3
)

// Store loads and saves the whole game state as one record.
type Store interface {
	Load(ctx context.Context) (models.GameState, error)
	Save(ctx context.Context, state models.GameState) error
}

func InitialState() models.GameState {
	return models.GameState{
		CurrentLevel:       models.LevelBeginner,
		TotalXP:            0,
		ScenarioProgress:   make(map[string]models.ScenarioProgress),
		CompletedScenarios: []string{},
	}
}

// Apply records one finished attempt and returns the updated state. The input
// state is not modified.
func Apply(state models.GameState, scenarioID string, stars float64) models.GameState {
	next := clone(state)

	p, ok := next.ScenarioProgress[scenarioID]
	if !ok {
		p = models.ScenarioProgress{ScenarioID: scenarioID}
	}
	p.Attempts++
	if stars > p.BestScore {
		p.BestScore = stars
	}
	p.Completed = p.BestScore >= models.MaxStars
	next.ScenarioProgress[scenarioID] = p

	if p.Completed && !containsID(next.CompletedScenarios, scenarioID) {
		next.CompletedScenarios = append(next.CompletedScenarios, scenarioID)
	}

	total := TotalStars(next)
	next.TotalXP = int(total * XPPerStar)
	next.CurrentLevel = LevelFor(total)
	return next
}

// TotalStars sums the best score of every scenario.
func TotalStars(state models.GameState) float64 {
	ids := make([]string, 0, len(state.ScenarioProgress))
	for id := range state.ScenarioProgress {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var total float64
	for _, id := range ids {
		total += state.ScenarioProgress[id].BestScore
	}
	return total
}

func LevelFor(totalStars float64) models.Level {
	switch {
	case totalStars >= StarsPerLevel*3:
		return models.LevelExpert
	case totalStars >= StarsPerLevel*2:
		return models.LevelProficient
	case totalStars >= StarsPerLevel:
		return models.LevelCompetent
	default:
		return models.LevelBeginner
	}
}

// Normalize fills the zero parts of a loaded state so callers never see nil maps.
func Normalize(state models.GameState) models.GameState {
	if state.CurrentLevel == "" {
		state.CurrentLevel = models.LevelBeginner
	}
	if state.ScenarioProgress == nil {
		state.ScenarioProgress = make(map[string]models.ScenarioProgress)
	}
	if state.CompletedScenarios == nil {
		state.CompletedScenarios = []string{}
	}
	return state
}

func clone(state models.GameState) models.GameState {
	state = Normalize(state)
	out := state
	out.ScenarioProgress = make(map[string]models.ScenarioProgress, len(state.ScenarioProgress))
	for k, v := range state.ScenarioProgress {
		out.ScenarioProgress[k] = v
	}
	out.CompletedScenarios = append([]string{}, state.CompletedScenarios...)
	return out
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// Tracker holds one player's state in memory. Record loads on first use and
// both Record and Reset save through the store immediately.
type Tracker struct {
	mu     sync.Mutex
	store  Store
	state  models.GameState
	loaded bool
}

func NewTracker(store Store) *Tracker {
	return &Tracker{store: store, state: InitialState()}
}

func (t *Tracker) Load(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.load(ctx)
}

func (t *Tracker) load(ctx context.Context) error {
	state, err := t.store.Load(ctx)
	if err != nil {
		return err
	}
	t.state = Normalize(state)
	t.loaded = true
	return nil
}

func (t *Tracker) Record(ctx context.Context, scenarioID string, stars float64) (models.GameState, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.loaded {
		if err := t.load(ctx); err != nil {
			return models.GameState{}, err
		}
	}

	next := Apply(t.state, scenarioID, stars)
	if err := t.store.Save(ctx, next); err != nil {
		return models.GameState{}, err
	}
	t.state = next
	return clone(next), nil
}

// State returns a copy of the current state.
func (t *Tracker) State() models.GameState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return clone(t.state)
}

func (t *Tracker) Scenario(id string) (models.ScenarioProgress, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.state.ScenarioProgress[id]
	return p, ok
}

func (t *Tracker) TotalStars() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return TotalStars(t.state)
}

func (t *Tracker) Reset(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	initial := InitialState()
	if err := t.store.Save(ctx, initial); err != nil {
		return err
	}
	t.state = initial
	t.loaded = true
	return nil
}
