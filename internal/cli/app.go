package cli

import (
	"context"
	"time"

	"github.com/vytor/upsimu/internal/cache"
	"github.com/vytor/upsimu/internal/catalog"
	"github.com/vytor/upsimu/internal/db"
	"github.com/vytor/upsimu/internal/dialogue"
	"github.com/vytor/upsimu/internal/evaluator"
	"github.com/vytor/upsimu/internal/jobs"
	"github.com/vytor/upsimu/internal/matcher"
	"github.com/vytor/upsimu/internal/models"
	"github.com/vytor/upsimu/internal/policy"
	"github.com/vytor/upsimu/internal/repository/sqlite"
	"github.com/vytor/upsimu/internal/services"
)

// localAttemptTTL only has to outlive one terminal session.
const localAttemptTTL = 24 * time.Hour

// app is the service graph behind the terminal client. Archiving runs inline
// since there is no server process to host a worker pool.
type app struct {
	db            *db.DB
	profile       *models.Profile
	scenarios     services.ScenarioService
	conversations services.ConversationService
	progress      services.ProgressService
}

func openApp(ctx context.Context, opts *rootOptions) (*app, error) {
	cat, err := catalog.LoadDefault()
	if err != nil {
		return nil, err
	}
	if opts.scenarioDir != "" {
		if err := cat.LoadFromDir(opts.scenarioDir); err != nil {
			return nil, err
		}
	}

	database, err := db.Open(opts.dbPath)
	if err != nil {
		return nil, err
	}

	profileRepo := sqlite.NewProfileRepository(database.DB)
	historyRepo := sqlite.NewHistoryRepository(database.DB)
	kvRepo := sqlite.NewKVRepository(database.DB)

	profile, err := services.NewProfileService(profileRepo).CreateProfile(ctx, opts.username)
	if err != nil {
		_ = database.Close()
		return nil, err
	}

	m := matcher.New()
	registry := policy.NewRegistry(m)
	engine := dialogue.NewEngine(m, registry,
		dialogue.WithVariator(dialogue.NewRandomVariator(opts.seed)),
		dialogue.WithMaxTurns(opts.maxTurns),
	)
	eval := evaluator.New(m, evaluator.WithRubrics(registry))

	progressSvc := services.NewProgressService(kvRepo, historyRepo)
	return &app{
		db:        database,
		profile:   profile,
		scenarios: services.NewScenarioService(cat),
		conversations: services.NewConversationService(
			cat, engine, eval, cache.NewMemoryStore(localAttemptTTL),
			progressSvc, profileRepo, jobs.NewSyncQueue(historyRepo),
		),
		progress: progressSvc,
	}, nil
}

func (a *app) Close() error {
	return a.db.Close()
}
