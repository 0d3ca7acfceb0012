package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vytor/upsimu/internal/api"
	"github.com/vytor/upsimu/internal/cache"
	"github.com/vytor/upsimu/internal/catalog"
	"github.com/vytor/upsimu/internal/config"
	"github.com/vytor/upsimu/internal/db"
	"github.com/vytor/upsimu/internal/dialogue"
	"github.com/vytor/upsimu/internal/evaluator"
	"github.com/vytor/upsimu/internal/jobs"
	"github.com/vytor/upsimu/internal/logger"
	"github.com/vytor/upsimu/internal/matcher"
	"github.com/vytor/upsimu/internal/policy"
	"github.com/vytor/upsimu/internal/repository/sqlite"
	"github.com/vytor/upsimu/internal/services"
	"github.com/vytor/upsimu/internal/worker"
)

func main() {
	cfg := config.Load()

	// Initialize logger
	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	log.Info("===========================================")
	log.Info("UpSimu Server Starting")
	log.Info("===========================================")

	if err := cfg.Validate(); err != nil {
		log.Error("%v", err)
		os.Exit(1)
	}
	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("scenario_dir=%s", cfg.ScenarioDir)
	log.Debug("redis_addr=%s", cfg.RedisAddr)
	log.Debug("attempt_ttl=%s", cfg.AttemptTTL())
	log.Debug("max_turns=%d", cfg.MaxTurns)
	log.Debug("archive_worker_count=%d", cfg.ArchiveWorkerCount)
	log.Debug("archive_queue_size=%d", cfg.ArchiveQueueSize)
	log.Debug("bonus_weight=%g", cfg.BonusWeight)

	// Load scenarios
	cat, err := catalog.LoadDefault()
	if err != nil {
		log.Error("failed to load built-in scenarios: %v", err)
		os.Exit(1)
	}
	if cfg.ScenarioDir != "" {
		if err := cat.LoadFromDir(cfg.ScenarioDir); err != nil {
			log.Error("failed to load scenarios: %v", err)
			os.Exit(1)
		}
	}
	log.Info("loaded %d scenarios", cat.Len())

	// Open database
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	profileRepo := sqlite.NewProfileRepository(database.DB)
	historyRepo := sqlite.NewHistoryRepository(database.DB)
	kvRepo := sqlite.NewKVRepository(database.DB)

	// Live attempts: Redis when configured, memory otherwise
	var store cache.AttemptStore
	var memStore *cache.MemoryStore
	if cfg.RedisAddr != "" {
		client := cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		redisStore := cache.NewRedisStore(client, cfg.AttemptTTL())
		defer redisStore.Close()
		store = redisStore
		log.Info("attempt store: redis at %s", cfg.RedisAddr)
	} else {
		memStore = cache.NewMemoryStore(cfg.AttemptTTL())
		store = memStore
		log.Info("attempt store: memory")
	}

	// Conversation core
	m := matcher.New()
	registry := policy.NewRegistry(m)
	engine := dialogue.NewEngine(m, registry,
		dialogue.WithMaxTurns(cfg.MaxTurns),
		dialogue.WithDelays(cfg.FollowUpDelay(), cfg.OffTopicDelay()),
		dialogue.WithVariator(dialogue.NewRandomVariator(cfg.PhraseSeed)),
	)
	eval := evaluator.New(m,
		evaluator.WithRubrics(registry),
		evaluator.WithBonusWeight(cfg.BonusWeight),
	)

	// Initialize worker pools
	archivePool := worker.NewPool(cfg.ArchiveWorkerCount, cfg.ArchiveQueueSize)
	maintenancePool := worker.NewPool(1, 4)

	// Initialize services
	progressService := services.NewProgressService(kvRepo, historyRepo)
	srv := &api.Server{
		ProfileService:  services.NewProfileService(profileRepo),
		ScenarioService: services.NewScenarioService(cat),
		ConversationService: services.NewConversationService(
			cat, engine, eval, store, progressService, profileRepo,
			jobs.NewWorkerQueue(archivePool, historyRepo),
		),
		ProgressService: progressService,
		DB:              database,
		Store:           store,
		CORSOrigins:     cfg.CORSOrigins,
	}

	// Archive jobs are drained on shutdown, so their pool outlives ctx
	ctx, cancel := context.WithCancel(context.Background())
	archivePool.Start(context.Background())
	maintenancePool.Start(ctx)
	if memStore != nil {
		worker.StartSweeper(ctx, maintenancePool, memStore, cfg.SweepInterval())
	}

	// Configure HTTP server
	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start HTTP server
	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	// Stop the sweeper, then drain queued archive jobs before the database closes
	cancel()
	log.Debug("stopping maintenance pool")
	maintenancePool.Stop()
	log.Debug("stopping archive pool")
	archivePool.Stop()

	log.Info("===========================================")
	log.Info("UpSimu Server Stopped")
	log.Info("===========================================")
}
