package main

import (
	"github.com/robfig/cron/v3"

	"github.com/kalviumcommunity/mentorhub/backend/internal/config"
	"github.com/kalviumcommunity/mentorhub/backend/internal/handlers"
	"github.com/kalviumcommunity/mentorhub/backend/internal/models"
	"github.com/kalviumcommunity/mentorhub/backend/internal/services"
	"github.com/kalviumcommunity/mentorhub/backend/internal/utils"
	"github.com/kalviumcommunity/mentorhub/backend/pkg/logger"
)

// appServices holds the initialized services and handlers the router needs.
type appServices struct {
	cfg                *config.Config
	activityQueue      services.ActivityQueue
	engagementWorker   *services.EngagementWorker
	retentionScheduler *cron.Cron
	authHandler        *handlers.AuthHandler
}

// bootstrap initializes all application dependencies: database, activity
// queue, worker, schedulers.
func bootstrap(cfg *config.Config) *appServices {
	utils.SetJWTSecret(cfg.JWT.Secret)

	// Initialize database
	if err := models.InitDB(&cfg.Database); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto migrate database
	if err := models.AutoMigrate(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	// Initialize activity queue (uses Redis if enabled, otherwise sync mode)
	activityQueue := services.InitActivityQueue(cfg, models.GetDB())

	// Start async worker if Redis is enabled
	worker := services.NewEngagementWorker(&cfg.Redis, models.GetDB())
	if worker != nil {
		if err := worker.Start(); err != nil {
			logger.Warn().Err(err).Msg("Failed to start engagement worker")
		}
	}

	// Start engagement-log retention scheduler
	scheduler, err := services.StartRetentionScheduler(
		models.GetDB(), cfg.Engagement.CleanupCron, cfg.Engagement.RetentionDays)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to start retention scheduler")
	}

	return &appServices{
		cfg:                cfg,
		activityQueue:      activityQueue,
		engagementWorker:   worker,
		retentionScheduler: scheduler,
		authHandler:        handlers.NewAuthHandler(models.GetDB(), &cfg.JWT),
	}
}

// shutdown gracefully stops all background services.
func (s *appServices) shutdown() {
	if s.retentionScheduler != nil {
		s.retentionScheduler.Stop()
	}
	if s.engagementWorker != nil {
		s.engagementWorker.Stop()
	}
	if s.activityQueue != nil {
		s.activityQueue.Close()
	}
	logger.Info().Msg("All background services stopped")
}
