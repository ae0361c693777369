package service

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/srbenoit/mathops-db-sub010/internal/models"
	"github.com/srbenoit/mathops-db-sub010/internal/pacing"
	appErrors "github.com/srbenoit/mathops-db-sub010/pkg/errors"
	"github.com/srbenoit/mathops-db-sub010/pkg/export"
	"github.com/srbenoit/mathops-db-sub010/pkg/fields"
)

type termResolver interface {
	Resolve(ctx context.Context, raw string) (*models.Term, error)
}

type scheduleValidator interface {
	ValidateTerm(ctx context.Context, term *models.Term) (*pacing.Report, error)
}

type paceReporter interface {
	Summary(ctx context.Context, term models.TermKey) (*PaceSummary, error)
	RepairPaceOrder(ctx context.Context, term models.TermKey, dryRun bool) ([]PaceOrderChange, error)
}

type deadlineReporter interface {
	TermStatus(ctx context.Context, term *models.Term) (*DeadlineReport, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

// ExportConfig tunes report generation.
type ExportConfig struct {
	// ApplyRepairs makes pace-order-repair write its changes instead of listing them.
	ApplyRepairs bool
	ResultTTL    time.Duration
}

// ExportResult describes one rendered and stored report.
type ExportResult struct {
	Kind         models.ReportKind   `json:"kind"`
	Term         string              `json:"term"`
	Format       models.ReportFormat `json:"format"`
	RelativePath string              `json:"path"`
	Size         int                 `json:"size"`
}

// ExportService builds report documents and persists the rendered files.
type ExportService struct {
	terms     termResolver
	schedules scheduleValidator
	pace      paceReporter
	deadlines deadlineReporter
	storage   fileStorage
	renderers map[models.ReportFormat]export.Renderer
	metrics   *MetricsService
	logger    *zap.Logger
	cfg       ExportConfig
	now       func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(terms termResolver, schedules scheduleValidator, pace paceReporter, deadlines deadlineReporter, storage fileStorage, metrics *MetricsService, cfg ExportConfig, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	return &ExportService{
		terms:     terms,
		schedules: schedules,
		pace:      pace,
		deadlines: deadlines,
		storage:   storage,
		renderers: map[models.ReportFormat]export.Renderer{
			models.ReportFormatText: export.NewTextExporter(),
			models.ReportFormatCSV:  export.NewCSVExporter(),
			models.ReportFormatPDF:  export.NewPDFExporter(),
		},
		metrics: metrics,
		logger:  logger,
		cfg:     cfg,
		now:     time.Now,
	}
}

// Generate resolves the term (blank means the active term), builds the report,
// renders it in memory and saves it. Nothing is written when any step fails.
func (s *ExportService) Generate(ctx context.Context, kind models.ReportKind, format models.ReportFormat, rawTerm string) (result *ExportResult, err error) {
	start := time.Now()
	defer func() {
		s.metrics.ObserveReport(string(kind), err, time.Since(start))
	}()

	if !kind.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported report %q", kind))
	}
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported report format %q", format))
	}

	term, err := s.terms.Resolve(ctx, rawTerm)
	if err != nil {
		return nil, err
	}
	doc, err := s.Build(ctx, kind, term)
	if err != nil {
		return nil, err
	}
	payload, err := renderer.Render(doc)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to render report")
	}

	filename := s.buildFilename(kind, term.Key(), renderer.Extension())
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to save report")
	}

	s.logger.Info("report written",
		zap.String("kind", string(kind)),
		zap.String("term", term.Key().String()),
		zap.String("path", relPath),
		zap.Int("bytes", len(payload)))
	return &ExportResult{Kind: kind, Term: term.Key().String(), Format: format, RelativePath: relPath, Size: len(payload)}, nil
}

// Build assembles the tables of one report.
func (s *ExportService) Build(ctx context.Context, kind models.ReportKind, term *models.Term) (export.Document, error) {
	switch kind {
	case models.ReportMilestoneCheck:
		report, err := s.schedules.ValidateTerm(ctx, term)
		if err != nil {
			return export.Document{}, err
		}
		return milestoneCheckDocument(term, report), nil
	case models.ReportPaceSummary:
		summary, err := s.pace.Summary(ctx, term.Key())
		if err != nil {
			return export.Document{}, err
		}
		return paceSummaryDocument(summary), nil
	case models.ReportDeadlineStatus:
		report, err := s.deadlines.TermStatus(ctx, term)
		if err != nil {
			return export.Document{}, err
		}
		return deadlineStatusDocument(report), nil
	case models.ReportPaceOrderRepair:
		changes, err := s.pace.RepairPaceOrder(ctx, term.Key(), !s.cfg.ApplyRepairs)
		if err != nil {
			return export.Document{}, err
		}
		return paceOrderRepairDocument(term.Key(), changes, s.cfg.ApplyRepairs), nil
	default:
		return export.Document{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported report %q", kind))
	}
}

// Open returns a handle to a stored report.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored report.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes reports older than ttl, or the configured result TTL when ttl <= 0.
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func (s *ExportService) buildFilename(kind models.ReportKind, term models.TermKey, ext string) string {
	timestamp := s.now().UTC().Format("20060102_150405")
	return fmt.Sprintf("%s_%s_%s.%s", kind, sanitizeFilename(term.String()), timestamp, ext)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".")
	return replacer.Replace(raw)
}

func milestoneCheckDocument(term *models.Term, report *pacing.Report) export.Document {
	counts := report.CountByKind()
	kinds := make([]string, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)

	byKind := export.Dataset{Name: "Issues by kind", Headers: []string{"Kind", "Count"}}
	for _, k := range kinds {
		byKind.Rows = append(byKind.Rows, map[string]string{"Kind": k, "Count": strconv.Itoa(counts[pacing.IssueKind(k)])})
	}

	issues := export.Dataset{Name: "Issues", Headers: []string{"Kind", "Pace", "Track", "Milestone", "Type", "Message"}}
	for _, i := range report.Issues {
		issues.Rows = append(issues.Rows, map[string]string{
			"Kind":      string(i.Kind),
			"Pace":      strconv.Itoa(i.Pace),
			"Track":     string(i.Track),
			"Milestone": strconv.Itoa(i.Number),
			"Type":      string(i.Type),
			"Message":   i.Message,
		})
	}

	status := "OK"
	if !report.OK() {
		status = fmt.Sprintf("%d issue(s)", len(report.Issues))
	}
	return export.Document{
		Title: "Milestone Check " + term.Key().String(),
		Notes: []string{
			fmt.Sprintf("Term %s runs %s to %s", term.Key(), term.StartDate, term.EndDate),
			"Result: " + status,
		},
		Datasets: []export.Dataset{byKind, issues},
	}
}

func paceSummaryDocument(summary *PaceSummary) export.Document {
	tracks := export.Dataset{Name: "Students by pace and track", Headers: []string{"Pace", "Track", "Students", "Percent"}}
	for _, tc := range summary.Tracks {
		tracks.Rows = append(tracks.Rows, map[string]string{
			"Pace":     strconv.Itoa(tc.Pace),
			"Track":    string(tc.Track),
			"Students": strconv.Itoa(tc.Students),
			"Percent":  fmt.Sprintf("%.1f", tc.Percent),
		})
	}

	headers := []string{"Course"}
	for i := 1; i <= pacing.MaxPace; i++ {
		headers = append(headers, fmt.Sprintf("Order %d", i))
	}
	headers = append(headers, "Total")
	courses := export.Dataset{Name: "Courses by pace order", Headers: headers}
	for _, cc := range summary.Courses {
		row := map[string]string{"Course": cc.Course, "Total": strconv.Itoa(cc.Total)}
		for i, n := range cc.ByOrder {
			row[fmt.Sprintf("Order %d", i+1)] = strconv.Itoa(n)
		}
		courses.Rows = append(courses.Rows, row)
	}

	return export.Document{
		Title:    "Pace Summary " + summary.Term,
		Notes:    []string{fmt.Sprintf("Students with paced registrations: %d", summary.Students)},
		Datasets: []export.Dataset{tracks, courses},
	}
}

func deadlineStatusDocument(report *DeadlineReport) export.Document {
	tracks := export.Dataset{Name: "Milestones by track", Headers: []string{"Pace", "Track", "Students", "On time", "Last try", "Overdue", "Pending"}}
	for _, tc := range report.Tracks {
		tracks.Rows = append(tracks.Rows, map[string]string{
			"Pace":     strconv.Itoa(tc.Pace),
			"Track":    string(tc.Track),
			"Students": strconv.Itoa(tc.Students),
			"On time":  strconv.Itoa(tc.OnTime),
			"Last try": strconv.Itoa(tc.LastTry),
			"Overdue":  strconv.Itoa(tc.Overdue),
			"Pending":  strconv.Itoa(tc.Pending),
		})
	}

	students := export.Dataset{Name: "Students", Headers: []string{"Student", "Pace", "Track", "On time", "Last try", "Overdue", "Pending", "Last activity"}}
	overdue := export.Dataset{Name: "Overdue milestones", Headers: []string{"Student", "Course", "Milestone", "Type", "Deadline", "Last try", "Completed"}}
	for _, sd := range report.Students {
		students.Rows = append(students.Rows, map[string]string{
			"Student":       sd.StudentID,
			"Pace":          strconv.Itoa(sd.Pace),
			"Track":         string(sd.Track),
			"On time":       strconv.Itoa(sd.Counts[pacing.StatusOnTime]),
			"Last try":      strconv.Itoa(sd.Counts[pacing.StatusLastTry]),
			"Overdue":       strconv.Itoa(sd.Counts[pacing.StatusOverdue]),
			"Pending":       strconv.Itoa(sd.Counts[pacing.StatusPending]),
			"Last activity": formatDay(sd.LastActivity),
		})
		for _, ms := range sd.Milestones {
			if ms.Status != pacing.StatusOverdue {
				continue
			}
			overdue.Rows = append(overdue.Rows, map[string]string{
				"Student":   sd.StudentID,
				"Course":    ms.Course,
				"Milestone": strconv.Itoa(ms.Number),
				"Type":      string(ms.Type),
				"Deadline":  formatDay(&ms.Deadline),
				"Last try":  formatDay(ms.LastTry),
				"Completed": formatDay(ms.Completed),
			})
		}
	}

	return export.Document{
		Title:    "Deadline Status " + report.Term,
		Notes:    []string{"Evaluated as of " + report.AsOf.Format(fields.DateLayout)},
		Datasets: []export.Dataset{tracks, students, overdue},
	}
}

func paceOrderRepairDocument(term models.TermKey, changes []PaceOrderChange, applied bool) export.Document {
	mode := "Dry run: no registrations were changed"
	if applied {
		mode = "Changes were written to the registration table"
	}
	ds := export.Dataset{Name: "Pace order changes", Headers: []string{"Student", "Course", "Section", "Previous", "New order", "Applied"}}
	for _, c := range changes {
		prev := ""
		if c.Previous != nil {
			prev = strconv.Itoa(*c.Previous)
		}
		ds.Rows = append(ds.Rows, map[string]string{
			"Student":   c.StudentID,
			"Course":    c.Course,
			"Section":   c.Section,
			"Previous":  prev,
			"New order": strconv.Itoa(c.Order),
			"Applied":   strconv.FormatBool(c.Applied),
		})
	}
	return export.Document{
		Title:    "Pace Order Repair " + term.String(),
		Notes:    []string{mode, fmt.Sprintf("Registrations needing repair: %d", len(changes))},
		Datasets: []export.Dataset{ds},
	}
}

func formatDay(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(fields.DateLayout)
}
