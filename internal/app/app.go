// Package app wires configuration, storage and services into the object
// graph shared by the API gateway and the batch report runner.
package app

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/srbenoit/mathops-db-sub010/internal/repository"
	"github.com/srbenoit/mathops-db-sub010/internal/service"
	"github.com/srbenoit/mathops-db-sub010/pkg/cache"
	"github.com/srbenoit/mathops-db-sub010/pkg/config"
	"github.com/srbenoit/mathops-db-sub010/pkg/database"
	"github.com/srbenoit/mathops-db-sub010/pkg/storage"
)

// App holds the long-lived dependencies of one process.
type App struct {
	Config *config.Config
	Logger *zap.Logger
	DB     *sqlx.DB
	Redis  *redis.Client

	Metrics       *service.MetricsService
	Terms         *service.TermService
	Milestones    *service.MilestoneService
	Pace          *service.PaceService
	Deadlines     *service.DeadlineService
	Registrations *service.RegistrationService
	Exports       *service.ExportService
	Files         *storage.LocalStorage
}

// New connects to PostgreSQL (and Redis when enabled) and builds the services.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logger.Warn("redis unavailable, milestone cache disabled", zap.Error(err))
			redisClient = nil
		}
	}

	a, err := Build(cfg, db, redisClient, logger)
	if err != nil {
		_ = db.Close()
		if redisClient != nil {
			_ = redisClient.Close()
		}
		return nil, err
	}
	return a, nil
}

// Build assembles the services on top of already opened connections.
// redisClient may be nil.
func Build(cfg *config.Config, db *sqlx.DB, redisClient *redis.Client, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	files, err := storage.NewLocalStorage(cfg.Reports.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("prepare report directory: %w", err)
	}

	metrics := service.NewMetricsService()
	cacheRepo := repository.NewCacheRepository(redisClient, logger)
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Cache.MilestoneTTL, logger, redisClient != nil)

	registrationRepo := repository.NewRegistrationRepository(db)
	milestoneRepo := repository.NewMilestoneRepository(db)
	overrideRepo := repository.NewStudentMilestoneRepository(db)

	terms := service.NewTermService(repository.NewTermRepository(db), logger)
	milestones := service.NewMilestoneService(
		milestoneRepo,
		overrideRepo,
		cacheSvc,
		metrics,
		service.MilestoneServiceConfig{CacheTTL: cfg.Cache.MilestoneTTL},
		logger.Named("milestones"),
	)
	pace := service.NewPaceService(registrationRepo, logger.Named("pace"))
	deadlines := service.NewDeadlineService(
		pace,
		milestoneRepo,
		overrideRepo,
		repository.NewExamRepository(db),
		repository.NewHomeworkRepository(db),
		logger.Named("deadlines"),
	)
	registrations := service.NewRegistrationService(registrationRepo, nil, logger.Named("registrations"))
	exports := service.NewExportService(terms, milestones, pace, deadlines, files, metrics, service.ExportConfig{
		ApplyRepairs: cfg.Reports.ApplyRepairs,
		ResultTTL:    cfg.Reports.ResultTTL,
	}, logger.Named("reports"))

	return &App{
		Config:        cfg,
		Logger:        logger,
		DB:            db,
		Redis:         redisClient,
		Metrics:       metrics,
		Terms:         terms,
		Milestones:    milestones,
		Pace:          pace,
		Deadlines:     deadlines,
		Registrations: registrations,
		Exports:       exports,
		Files:         files,
	}, nil
}

// Close releases the database and Redis connections.
func (a *App) Close() {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Logger.Warn("close redis", zap.Error(err))
		}
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.Logger.Warn("close database", zap.Error(err))
		}
	}
}
