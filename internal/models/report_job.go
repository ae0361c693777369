package models

import "time"

// ReportKind enumerates the batch reports.
type ReportKind string

const (
	ReportMilestoneCheck  ReportKind = "milestone-check"
	ReportPaceSummary     ReportKind = "pace-summary"
	ReportDeadlineStatus  ReportKind = "deadline-status"
	ReportPaceOrderRepair ReportKind = "pace-order-repair"
)

// ReportKinds lists every report in run order.
var ReportKinds = []ReportKind{ReportMilestoneCheck, ReportPaceSummary, ReportDeadlineStatus, ReportPaceOrderRepair}

// Valid reports whether k names a known report.
func (k ReportKind) Valid() bool {
	for _, known := range ReportKinds {
		if k == known {
			return true
		}
	}
	return false
}

// ReportFormat enumerates supported output formats.
type ReportFormat string

const (
	ReportFormatText ReportFormat = "text"
	ReportFormatCSV  ReportFormat = "csv"
	ReportFormatPDF  ReportFormat = "pdf"
)

// Valid reports whether f is a supported format.
func (f ReportFormat) Valid() bool {
	return f == ReportFormatText || f == ReportFormatCSV || f == ReportFormatPDF
}

// ReportStatus captures background job lifecycle states.
type ReportStatus string

const (
	ReportStatusQueued     ReportStatus = "QUEUED"
	ReportStatusProcessing ReportStatus = "PROCESSING"
	ReportStatusFinished   ReportStatus = "FINISHED"
	ReportStatusFailed     ReportStatus = "FAILED"
)

// ReportJob tracks one asynchronous report generation.
type ReportJob struct {
	ID           string       `json:"id"`
	Kind         ReportKind   `json:"kind"`
	Term         string       `json:"term,omitempty"`
	Format       ReportFormat `json:"format"`
	Status       ReportStatus `json:"status"`
	Progress     int          `json:"progress"`
	ResultPath   string       `json:"-"`
	ResultURL    *string      `json:"result_url,omitempty"`
	CreatedBy    string       `json:"created_by"`
	CreatedAt    time.Time    `json:"created_at"`
	FinishedAt   *time.Time   `json:"finished_at,omitempty"`
	ErrorMessage *string      `json:"error_message,omitempty"`
}
