package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/srbenoit/mathops-db-sub010/api/swagger"
	"github.com/srbenoit/mathops-db-sub010/internal/app"
	"github.com/srbenoit/mathops-db-sub010/internal/handler"
	internalmiddleware "github.com/srbenoit/mathops-db-sub010/internal/middleware"
	"github.com/srbenoit/mathops-db-sub010/internal/models"
	"github.com/srbenoit/mathops-db-sub010/internal/repository"
	"github.com/srbenoit/mathops-db-sub010/internal/service"
	"github.com/srbenoit/mathops-db-sub010/pkg/config"
	"github.com/srbenoit/mathops-db-sub010/pkg/jobs"
	"github.com/srbenoit/mathops-db-sub010/pkg/logger"
	corsmiddleware "github.com/srbenoit/mathops-db-sub010/pkg/middleware/cors"
	reqidmiddleware "github.com/srbenoit/mathops-db-sub010/pkg/middleware/requestid"
	"github.com/srbenoit/mathops-db-sub010/pkg/storage"
)

// @title MathOps Records API
// @version 1.0.0
// @description Administrative access to pacing, milestones, deadlines and batch reports
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logr)
	if err != nil {
		logr.Fatal("failed to initialise services", zap.Error(err))
	}
	defer a.Close()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	tokens := service.NewTokenService(service.TokenConfig{Secret: cfg.JWT.Secret, Issuer: cfg.JWT.Issuer})
	signer := storage.NewDownloadSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)
	jobRepo := repository.NewReportJobRepository()

	worker := service.NewReportWorker(jobRepo, a.Exports, signer, cfg.APIPrefix, cfg.Reports.WorkerRetries, logger.ForJob(logr, "report-worker"))
	queue := jobs.NewQueue("reports", worker.Handle, jobs.QueueConfig{
		Workers:    cfg.Reports.WorkerConcurrency,
		MaxRetries: cfg.Reports.WorkerRetries,
		RetryDelay: 5 * time.Second,
		Logger:     logr,
	})
	queue.Start(ctx)
	defer queue.Stop()

	reports := service.NewReportService(jobRepo, queue, a.Exports, signer, logr.Named("report-jobs"), service.ReportServiceConfig{
		DefaultFormat:   models.ReportFormat(cfg.Reports.Format),
		ResultTTL:       cfg.Reports.ResultTTL,
		CleanupInterval: cfg.Reports.CleanupInterval,
	})
	reports.StartCleanup(ctx)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(a.Metrics))

	metricsHandler := handler.NewMetricsHandler(a.Metrics, a.DB)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	termHandler := handler.NewTermHandler(a.Terms)
	milestoneHandler := handler.NewMilestoneHandler(a.Terms, a.Milestones)
	paceHandler := handler.NewPaceHandler(a.Terms, a.Pace)
	deadlineHandler := handler.NewDeadlineHandler(a.Terms, a.Deadlines)
	registrationHandler := handler.NewRegistrationHandler(a.Terms, a.Registrations)
	reportHandler := handler.NewReportHandler(reports, logr)

	api := r.Group(cfg.APIPrefix)
	api.GET("/reports/download/:token", reportHandler.DownloadReport)

	secured := api.Group("")
	secured.Use(internalmiddleware.JWT(tokens))
	secured.GET("/terms", termHandler.List)
	secured.GET("/terms/active", termHandler.GetActive)
	secured.GET("/milestones", milestoneHandler.Schedule)
	secured.GET("/milestones/validate", milestoneHandler.Validate)
	secured.GET("/students/:id/milestones/:number/:type", milestoneHandler.Deadline)
	secured.GET("/students/:id/pace", paceHandler.Student)
	secured.GET("/students/:id/deadlines", deadlineHandler.Student)
	secured.GET("/students/:id/registrations", registrationHandler.ListForStudent)
	secured.GET("/pace/summary", paceHandler.Summary)
	secured.GET("/deadlines", deadlineHandler.Term)
	secured.GET("/metrics/summary", metricsHandler.Summary)
	secured.POST("/reports", reportHandler.GenerateReport)
	secured.GET("/reports/jobs/:id", reportHandler.ReportStatus)

	admin := secured.Group("")
	admin.Use(internalmiddleware.RequireRoles(models.RoleAdmin))
	admin.DELETE("/milestones/cache", internalmiddleware.Audit(logr, "milestones.invalidate_cache"), milestoneHandler.InvalidateCache)
	admin.POST("/pace/repair", internalmiddleware.Audit(logr, "pace.repair"), paceHandler.Repair)

	staff := secured.Group("/registrations/:term/:id/:course/:sect")
	staff.Use(internalmiddleware.RequireRoles(models.RoleAdmin, models.RoleAdvisor), internalmiddleware.Audit(logr, "registration.update"))
	staff.PATCH("/open-status", registrationHandler.UpdateOpenStatus)
	staff.PATCH("/grading-option", registrationHandler.UpdateGradingOption)
	staff.PATCH("/pace-order", registrationHandler.UpdatePaceOrder)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "profile", cfg.Profile)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Errorw("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("graceful shutdown failed", zap.Error(err))
	}
}
