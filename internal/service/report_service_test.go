package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/srbenoit/mathops-db-sub010/internal/dto"
	"github.com/srbenoit/mathops-db-sub010/internal/models"
	"github.com/srbenoit/mathops-db-sub010/internal/repository"
	appErrors "github.com/srbenoit/mathops-db-sub010/pkg/errors"
	"github.com/srbenoit/mathops-db-sub010/pkg/jobs"
	"github.com/srbenoit/mathops-db-sub010/pkg/storage"
)

type queueStub struct {
	jobs []jobs.Job
	err  error
}

func (q *queueStub) Enqueue(job jobs.Job) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

type generatorStub struct {
	result *ExportResult
	err    error
}

func (g generatorStub) Generate(ctx context.Context, kind models.ReportKind, format models.ReportFormat, rawTerm string) (*ExportResult, error) {
	return g.result, g.err
}

type filesStub struct {
	dir     string
	deleted []string
}

func (f *filesStub) Open(relPath string) (*os.File, error) {
	return os.Open(filepath.Join(f.dir, relPath))
}

func (f *filesStub) Delete(relPath string) error {
	f.deleted = append(f.deleted, relPath)
	return nil
}

func (f *filesStub) Cleanup(ttl time.Duration) ([]string, error) {
	return nil, nil
}

func newReportServiceForTest(t *testing.T, queue *queueStub) (*ReportService, *repository.ReportJobRepository, *storage.DownloadSigner, *filesStub) {
	t.Helper()
	repo := repository.NewReportJobRepository()
	signer := storage.NewDownloadSigner("secret", time.Hour)
	files := &filesStub{dir: t.TempDir()}
	svc := NewReportService(repo, queue, files, signer, zap.NewNop(), ReportServiceConfig{DefaultFormat: models.ReportFormatCSV, ResultTTL: time.Hour})
	return svc, repo, signer, files
}

func TestReportServiceCreateJob(t *testing.T) {
	queue := &queueStub{}
	svc, repo, _, _ := newReportServiceForTest(t, queue)

	resp, err := svc.CreateJob(context.Background(), dto.ReportRequest{Kind: models.ReportPaceSummary, Term: " fa24 "}, "advisor-1", models.RoleAdvisor)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusQueued, resp.Status)
	require.Len(t, queue.jobs, 1)
	assert.Equal(t, resp.ID, queue.jobs[0].ID)
	assert.Equal(t, ReportJobType, queue.jobs[0].Type)

	job, err := repo.GetByID(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.Equal(t, "FA24", job.Term)
	assert.Equal(t, models.ReportFormatCSV, job.Format)
	assert.Equal(t, "advisor-1", job.CreatedBy)
}

func TestReportServiceCreateJobValidation(t *testing.T) {
	svc, _, _, _ := newReportServiceForTest(t, &queueStub{})
	ctx := context.Background()

	_, err := svc.CreateJob(ctx, dto.ReportRequest{Kind: "bogus"}, "u", models.RoleAdmin)
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.CreateJob(ctx, dto.ReportRequest{Kind: models.ReportPaceSummary, Format: "xlsx"}, "u", models.RoleAdmin)
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.CreateJob(ctx, dto.ReportRequest{Kind: models.ReportPaceSummary, Term: "XX24"}, "u", models.RoleAdmin)
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.CreateJob(ctx, dto.ReportRequest{Kind: models.ReportPaceOrderRepair}, "u", models.RoleAdvisor)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	_, err = svc.CreateJob(ctx, dto.ReportRequest{Kind: models.ReportPaceOrderRepair}, "u", models.RoleAdmin)
	assert.NoError(t, err)
}

func TestReportServiceCreateJobEnqueueFailure(t *testing.T) {
	svc, repo, _, _ := newReportServiceForTest(t, &queueStub{err: errors.New("queue full")})

	_, err := svc.CreateJob(context.Background(), dto.ReportRequest{Kind: models.ReportMilestoneCheck}, "u", models.RoleAdmin)
	assert.ErrorIs(t, err, appErrors.ErrInternal)

	failed, err := repo.ListFinishedBefore(context.Background(), time.Now().Add(time.Minute), 10)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, models.ReportStatusFailed, failed[0].Status)
}

func TestReportServiceGetStatusOwnership(t *testing.T) {
	svc, _, _, _ := newReportServiceForTest(t, &queueStub{})
	ctx := context.Background()
	resp, err := svc.CreateJob(ctx, dto.ReportRequest{Kind: models.ReportMilestoneCheck}, "viewer-1", models.RoleViewer)
	require.NoError(t, err)

	status, err := svc.GetStatus(ctx, resp.ID, "viewer-1", models.RoleViewer)
	require.NoError(t, err)
	assert.Equal(t, models.ReportMilestoneCheck, status.Kind)

	_, err = svc.GetStatus(ctx, resp.ID, "viewer-2", models.RoleViewer)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	_, err = svc.GetStatus(ctx, resp.ID, "admin", models.RoleAdmin)
	assert.NoError(t, err)

	_, err = svc.GetStatus(ctx, "missing", "admin", models.RoleAdmin)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestReportWorkerSuccessAndDownload(t *testing.T) {
	queue := &queueStub{}
	svc, repo, signer, files := newReportServiceForTest(t, queue)
	ctx := context.Background()

	require.NoError(t, os.WriteFile(filepath.Join(files.dir, "pace-summary_FA24.csv"), []byte("a,b\n"), 0o644))
	resp, err := svc.CreateJob(ctx, dto.ReportRequest{Kind: models.ReportPaceSummary}, "u", models.RoleAdmin)
	require.NoError(t, err)

	worker := NewReportWorker(repo, generatorStub{result: &ExportResult{RelativePath: "pace-summary_FA24.csv"}}, signer, "/api/v1/", 0, zap.NewNop())
	require.NoError(t, worker.Handle(ctx, queue.jobs[0]))

	status, err := svc.GetStatus(ctx, resp.ID, "u", models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusFinished, status.Status)
	assert.Equal(t, 100, status.Progress)
	require.NotNil(t, status.ResultURL)
	assert.Contains(t, *status.ResultURL, "/api/v1/reports/download/")

	token := filepath.Base(*status.ResultURL)
	download, err := svc.ResolveDownload(ctx, token)
	require.NoError(t, err)
	defer download.File.Close()
	assert.Equal(t, "pace-summary_FA24.csv", download.Filename)
	assert.Equal(t, models.ReportFormatCSV, download.Format)

	_, err = svc.ResolveDownload(ctx, "garbage")
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	forged, _, err := signer.Sign(resp.ID, "other.csv")
	require.NoError(t, err)
	_, err = svc.ResolveDownload(ctx, forged)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
}

func TestReportWorkerFailure(t *testing.T) {
	queue := &queueStub{}
	svc, repo, signer, _ := newReportServiceForTest(t, queue)
	ctx := context.Background()
	resp, err := svc.CreateJob(ctx, dto.ReportRequest{Kind: models.ReportDeadlineStatus}, "u", models.RoleAdmin)
	require.NoError(t, err)

	cause := appErrors.Clone(appErrors.ErrNoActiveTerm, "no active term")
	worker := NewReportWorker(repo, generatorStub{err: cause}, signer, "/api/v1", 1, zap.NewNop())

	require.Error(t, worker.Handle(ctx, jobs.Job{ID: resp.ID}))
	job, err := repo.GetByID(ctx, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusQueued, job.Status)

	require.Error(t, worker.Handle(ctx, jobs.Job{ID: resp.ID, Attempt: 1}))
	job, err = repo.GetByID(ctx, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusFailed, job.Status)
	require.NotNil(t, job.ErrorMessage)
	assert.Equal(t, "no active term", *job.ErrorMessage)
}

func TestReportServiceCleanupExpired(t *testing.T) {
	svc, repo, _, files := newReportServiceForTest(t, &queueStub{})
	ctx := context.Background()

	old := time.Now().Add(-2 * time.Hour)
	job := &models.ReportJob{Kind: models.ReportPaceSummary}
	require.NoError(t, repo.Create(ctx, job))
	finished := models.ReportStatusFinished
	path := "old.csv"
	require.NoError(t, repo.Update(ctx, job.ID, repository.UpdateReportJobParams{Status: &finished, ResultPath: &path, FinishedAt: &old}))

	fresh := &models.ReportJob{Kind: models.ReportPaceSummary}
	require.NoError(t, repo.Create(ctx, fresh))

	assert.Equal(t, 1, svc.CleanupExpired(ctx))
	assert.Equal(t, []string{"old.csv"}, files.deleted)
	_, err := repo.GetByID(ctx, fresh.ID)
	assert.NoError(t, err)
}
