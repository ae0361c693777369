package dto

import "github.com/srbenoit/mathops-db-sub010/internal/models"

// ReportRequest captures the POST /reports payload. A blank term means the
// active term; a blank format means the configured default.
type ReportRequest struct {
	Kind   models.ReportKind   `json:"kind" validate:"required"`
	Term   string              `json:"term" validate:"omitempty,len=4|len=6"`
	Format models.ReportFormat `json:"format"`
}

// ReportJobResponse is returned after enqueueing a report.
type ReportJobResponse struct {
	ID       string              `json:"id"`
	Status   models.ReportStatus `json:"status"`
	Progress int                 `json:"progress"`
}

// ReportStatusResponse exposes job progress metadata.
type ReportStatusResponse struct {
	ID        string              `json:"id"`
	Kind      models.ReportKind   `json:"kind"`
	Term      string              `json:"term,omitempty"`
	Format    models.ReportFormat `json:"format"`
	Status    models.ReportStatus `json:"status"`
	Progress  int                 `json:"progress"`
	ResultURL *string             `json:"resultUrl,omitempty"`
	Error     *string             `json:"error,omitempty"`
}
