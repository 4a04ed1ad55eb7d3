package main

import (
	"github.com/tasktrace/tasktrace/internal/config"
	"github.com/tasktrace/tasktrace/internal/handlers"
	"github.com/tasktrace/tasktrace/internal/models"
	"github.com/tasktrace/tasktrace/internal/services"
	"github.com/tasktrace/tasktrace/internal/utils"
	"github.com/tasktrace/tasktrace/pkg/logger"
)

// appServices holds the initialized services and handlers the router needs.
type appServices struct {
	cfg           *config.Config
	activityQueue services.ActivityQueue
	worker        *services.Worker
	cleanup       *services.CleanupScheduler
	authHandler   *handlers.AuthHandler
	authService   *services.AuthService
}

// bootstrap initializes application dependencies: database, queue, schedulers.
func bootstrap(cfg *config.Config) *appServices {
	utils.SetJWTSecret(cfg.JWT.Secret)

	if err := models.InitDB(&cfg.Database); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	if err := models.AutoMigrate(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	db := models.GetDB()

	// Activity queue: asynq when Redis is enabled, sync otherwise; either
	// way entries land in ActivityService.Persist.
	activityService := services.NewActivityService(db)
	activityQueue := services.InitActivityQueue(cfg)
	if syncQueue, ok := activityQueue.(*services.SyncActivityQueue); ok {
		syncQueue.SetProcessor(activityService.Persist)
	}

	var worker *services.Worker
	if cfg.Redis.Enabled {
		worker = services.InitWorker(&cfg.Redis)
		if worker != nil {
			worker.SetProcessor(activityService.Persist)
			worker.Start()
		}
	}

	cleanup := services.NewCleanupScheduler(db, &cfg.Activity)
	if err := cleanup.Start(); err != nil {
		logger.Warn().Err(err).Msg("Failed to start cleanup scheduler")
	}

	return &appServices{
		cfg:           cfg,
		activityQueue: activityQueue,
		worker:        worker,
		cleanup:       cleanup,
		authHandler:   handlers.NewAuthHandler(db, cfg),
		authService:   services.NewAuthService(db, &cfg.JWT),
	}
}

// shutdown gracefully stops background services.
func (s *appServices) shutdown() {
	if s.cleanup != nil {
		s.cleanup.Stop()
	}
	if s.worker != nil {
		s.worker.Stop()
	}
	if s.activityQueue != nil {
		s.activityQueue.Close()
	}
	logger.Infof("Shutdown complete")
}
