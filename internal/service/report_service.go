package service

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/srbenoit/mathops-db-sub010/internal/dto"
	"github.com/srbenoit/mathops-db-sub010/internal/models"
	"github.com/srbenoit/mathops-db-sub010/internal/repository"
	appErrors "github.com/srbenoit/mathops-db-sub010/pkg/errors"
	"github.com/srbenoit/mathops-db-sub010/pkg/jobs"
	"github.com/srbenoit/mathops-db-sub010/pkg/storage"
)

type reportJobStore interface {
	Create(ctx context.Context, job *models.ReportJob) error
	GetByID(ctx context.Context, id string) (*models.ReportJob, error)
	Update(ctx context.Context, id string, params repository.UpdateReportJobParams) error
	ListFinishedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.ReportJob, error)
	Delete(ctx context.Context, id string) error
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

type reportGenerator interface {
	Generate(ctx context.Context, kind models.ReportKind, format models.ReportFormat, rawTerm string) (*ExportResult, error)
}

type reportFiles interface {
	Open(relPath string) (*os.File, error)
	Delete(relPath string) error
	Cleanup(ttl time.Duration) ([]string, error)
}

type downloadSigner interface {
	Sign(jobID, relPath string) (string, time.Time, error)
	Verify(token string) (storage.DownloadClaims, error)
}

// ReportJobType is the queue job type of report generation.
const ReportJobType = "report"

// ReportServiceConfig governs job defaults and cleanup.
type ReportServiceConfig struct {
	DefaultFormat   models.ReportFormat
	ResultTTL       time.Duration
	CleanupInterval time.Duration
}

// ReportService orchestrates the report job lifecycle.
type ReportService struct {
	repo      reportJobStore
	queue     jobDispatcher
	files     reportFiles
	signer    downloadSigner
	validator *validator.Validate
	logger    *zap.Logger
	cfg       ReportServiceConfig
}

// ReportDownload aggregates resolved download data.
type ReportDownload struct {
	File      *os.File
	Filename  string
	Format    models.ReportFormat
	ExpiresAt time.Time
}

// NewReportService constructs the report service.
func NewReportService(repo reportJobStore, queue jobDispatcher, files reportFiles, signer downloadSigner, logger *zap.Logger, cfg ReportServiceConfig) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if !cfg.DefaultFormat.Valid() {
		cfg.DefaultFormat = models.ReportFormatText
	}
	return &ReportService{
		repo:      repo,
		queue:     queue,
		files:     files,
		signer:    signer,
		validator: validator.New(),
		logger:    logger,
		cfg:       cfg,
	}
}

// CreateJob validates the request, records the job and enqueues it.
func (s *ReportService) CreateJob(ctx context.Context, req dto.ReportRequest, actorID string, role models.StaffRole) (*dto.ReportJobResponse, error) {
	req.Term = strings.ToUpper(strings.TrimSpace(req.Term))
	if req.Format == "" {
		req.Format = s.cfg.DefaultFormat
	}
	if err := s.validateRequest(req, role); err != nil {
		return nil, err
	}
	job := &models.ReportJob{
		Kind:      req.Kind,
		Term:      req.Term,
		Format:    req.Format,
		Status:    models.ReportStatusQueued,
		CreatedBy: actorID,
	}
	if err := s.repo.Create(ctx, job); err != nil {
		return nil, appErrors.Internal(err, "failed to create report job")
	}
	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: ReportJobType}); err != nil {
		status := models.ReportStatusFailed
		msg := "failed to enqueue job"
		now := time.Now().UTC()
		progress := 100
		_ = s.repo.Update(ctx, job.ID, repository.UpdateReportJobParams{
			Status:       &status,
			Progress:     &progress,
			ErrorMessage: &msg,
			FinishedAt:   &now,
		})
		return nil, appErrors.Internal(err, "failed to enqueue report job")
	}
	s.logger.Info("report job queued",
		zap.String("job_id", job.ID),
		zap.String("kind", string(job.Kind)),
		zap.String("actor", actorID))
	return &dto.ReportJobResponse{ID: job.ID, Status: job.Status, Progress: job.Progress}, nil
}

// GetStatus exposes job metadata. Viewers only see their own jobs.
func (s *ReportService) GetStatus(ctx context.Context, id string, actorID string, role models.StaffRole) (*dto.ReportStatusResponse, error) {
	job, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if role == models.RoleViewer && job.CreatedBy != actorID {
		return nil, appErrors.ErrForbidden
	}
	resp := &dto.ReportStatusResponse{
		ID:        job.ID,
		Kind:      job.Kind,
		Term:      job.Term,
		Format:    job.Format,
		Status:    job.Status,
		Progress:  job.Progress,
		ResultURL: job.ResultURL,
	}
	if job.ErrorMessage != nil && *job.ErrorMessage != "" {
		resp.Error = job.ErrorMessage
	}
	return resp, nil
}

// ResolveDownload validates the token and opens the stored report file.
func (s *ReportService) ResolveDownload(ctx context.Context, token string) (*ReportDownload, error) {
	claims, err := s.signer.Verify(token)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")
	}
	job, err := s.load(ctx, claims.JobID)
	if err != nil {
		return nil, err
	}
	if job.Status != models.ReportStatusFinished {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "report not ready")
	}
	if job.ResultURL == nil || !strings.HasSuffix(*job.ResultURL, token) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "token mismatch")
	}
	file, err := s.files.Open(claims.Path)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to open report file")
	}
	return &ReportDownload{
		File:      file,
		Filename:  filepath.Base(claims.Path),
		Format:    job.Format,
		ExpiresAt: claims.ExpiresAt,
	}, nil
}

// StartCleanup boots a goroutine that purges expired reports until ctx ends.
func (s *ReportService) StartCleanup(ctx context.Context) {
	if s.cfg.CleanupInterval <= 0 {
		return
	}
	ticker := time.NewTicker(s.cfg.CleanupInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.CleanupExpired(ctx)
			}
		}
	}()
}

// CleanupExpired deletes the files and records of jobs that finished more
// than the result TTL ago, then sweeps stray files of the same age.
func (s *ReportService) CleanupExpired(ctx context.Context) int {
	cutoff := time.Now().Add(-s.cfg.ResultTTL)
	removed := 0
	for {
		expired, err := s.repo.ListFinishedBefore(ctx, cutoff, 100)
		if err != nil {
			s.logger.Warn("cleanup list failed", zap.Error(err))
			return removed
		}
		for _, job := range expired {
			if job.ResultPath != "" {
				if err := s.files.Delete(job.ResultPath); err != nil {
					s.logger.Warn("cleanup delete failed", zap.String("job_id", job.ID), zap.Error(err))
				}
			}
			if err := s.repo.Delete(ctx, job.ID); err != nil {
				s.logger.Warn("cleanup forget failed", zap.String("job_id", job.ID), zap.Error(err))
				return removed
			}
			removed++
		}
		if len(expired) < 100 {
			break
		}
	}
	if _, err := s.files.Cleanup(s.cfg.ResultTTL); err != nil {
		s.logger.Warn("filesystem cleanup failed", zap.Error(err))
	}
	return removed
}

func (s *ReportService) load(ctx context.Context, id string) (*models.ReportJob, error) {
	job, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "report job not found")
		}
		return nil, appErrors.Internal(err, "failed to load report job")
	}
	return job, nil
}

func (s *ReportService) validateRequest(req dto.ReportRequest, role models.StaffRole) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid report request")
	}
	if !req.Kind.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, "unsupported report kind")
	}
	if !req.Format.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, "unsupported report format")
	}
	if req.Term != "" {
		if _, err := models.ParseTermKey(req.Term); err != nil {
			return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid term")
		}
	}
	if req.Kind == models.ReportPaceOrderRepair && role != models.RoleAdmin {
		return appErrors.Clone(appErrors.ErrForbidden, "pace order repair requires the ADMIN role")
	}
	return nil
}

// ReportWorker bridges queue jobs to report generation.
type ReportWorker struct {
	repo       reportJobStore
	generator  reportGenerator
	signer     downloadSigner
	urlPrefix  string
	logger     *zap.Logger
	maxRetries int
}

// NewReportWorker constructs a worker. Download links are built as
// <urlPrefix>/reports/download/<token>.
func NewReportWorker(repo reportJobStore, generator reportGenerator, signer downloadSigner, urlPrefix string, maxRetries int, logger *zap.Logger) *ReportWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &ReportWorker{
		repo:       repo,
		generator:  generator,
		signer:     signer,
		urlPrefix:  strings.TrimRight(urlPrefix, "/"),
		logger:     logger,
		maxRetries: maxRetries,
	}
}

// Handle processes a queue job.
func (w *ReportWorker) Handle(ctx context.Context, job jobs.Job) error {
	record, err := w.repo.GetByID(ctx, job.ID)
	if err != nil {
		return err
	}
	processing := models.ReportStatusProcessing
	progress := 10
	if err := w.repo.Update(ctx, job.ID, repository.UpdateReportJobParams{
		Status:   &processing,
		Progress: &progress,
	}); err != nil {
		return err
	}

	result, err := w.generator.Generate(ctx, record.Kind, record.Format, record.Term)
	var token string
	if err == nil {
		token, _, err = w.signer.Sign(job.ID, result.RelativePath)
	}
	if err != nil {
		w.fail(ctx, job, err)
		return err
	}

	finished := models.ReportStatusFinished
	progress = 100
	now := time.Now().UTC()
	url := w.urlPrefix + "/reports/download/" + token
	noError := ""
	if err := w.repo.Update(ctx, job.ID, repository.UpdateReportJobParams{
		Status:       &finished,
		Progress:     &progress,
		ResultPath:   &result.RelativePath,
		ResultURL:    &url,
		ErrorMessage: &noError,
		FinishedAt:   &now,
	}); err != nil {
		w.logger.Warn("failed to mark job finished", zap.String("job_id", job.ID), zap.Error(err))
		return err
	}
	return nil
}

func (w *ReportWorker) fail(ctx context.Context, job jobs.Job, cause error) {
	msg := appErrors.FromError(cause).Message
	if job.Attempt >= w.maxRetries {
		failed := models.ReportStatusFailed
		progress := 100
		now := time.Now().UTC()
		if err := w.repo.Update(ctx, job.ID, repository.UpdateReportJobParams{
			Status:       &failed,
			Progress:     &progress,
			ErrorMessage: &msg,
			FinishedAt:   &now,
		}); err != nil {
			w.logger.Warn("failed to mark job failed", zap.String("job_id", job.ID), zap.Error(err))
		}
		return
	}
	queued := models.ReportStatusQueued
	reset := 0
	if err := w.repo.Update(ctx, job.ID, repository.UpdateReportJobParams{
		Status:       &queued,
		Progress:     &reset,
		ErrorMessage: &msg,
	}); err != nil {
		w.logger.Warn("failed to mark job queued", zap.String("job_id", job.ID), zap.Error(err))
	}
}
