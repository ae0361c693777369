package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/srbenoit/mathops-db-sub010/internal/models"
	"github.com/srbenoit/mathops-db-sub010/internal/pacing"
	"github.com/srbenoit/mathops-db-sub010/internal/repository"
	appErrors "github.com/srbenoit/mathops-db-sub010/pkg/errors"
)

type milestoneRepository interface {
	ListByTerm(ctx context.Context, term models.TermKey) ([]models.Milestone, error)
	ListByTrack(ctx context.Context, term models.TermKey, pace int, track models.PaceTrack) ([]models.Milestone, error)
}

type studentMilestoneRepository interface {
	ListByStudent(ctx context.Context, term models.TermKey, studentID string) ([]models.StudentMilestone, error)
	ListByTerm(ctx context.Context, term models.TermKey) ([]models.StudentMilestone, error)
}

type milestoneCache interface {
	Get(ctx context.Context, key string, dest interface{}) bool
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration)
	Invalidate(ctx context.Context, pattern string) error
}

// TrackSchedule is the milestone schedule of one (pace, track) with the
// integrity issues found in it.
type TrackSchedule struct {
	Term       string             `json:"term"`
	Pace       int                `json:"pace"`
	Track      models.PaceTrack   `json:"pace_track"`
	Milestones []models.Milestone `json:"milestones"`
	Issues     []pacing.Issue     `json:"issues"`
}

// MilestoneServiceConfig tunes template caching.
type MilestoneServiceConfig struct {
	CacheTTL time.Duration
}

// MilestoneService reads milestone schedules and resolves deadlines.
type MilestoneService struct {
	milestones milestoneRepository
	overrides  studentMilestoneRepository
	cache      milestoneCache
	metrics    *MetricsService
	cfg        MilestoneServiceConfig
	logger     *zap.Logger
}

// NewMilestoneService constructs the service. cache and metrics may be nil.
func NewMilestoneService(milestones milestoneRepository, overrides studentMilestoneRepository, cache milestoneCache, metrics *MetricsService, cfg MilestoneServiceConfig, logger *zap.Logger) *MilestoneService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MilestoneService{
		milestones: milestones,
		overrides:  overrides,
		cache:      cache,
		metrics:    metrics,
		cfg:        cfg,
		logger:     logger,
	}
}

// MilestonesFor returns the sorted schedule of (pace, track) in term. Missing,
// duplicated, out-of-term and out-of-sequence entries come back as issues.
func (s *MilestoneService) MilestonesFor(ctx context.Context, term *models.Term, pace int, track models.PaceTrack) (*TrackSchedule, error) {
	if !pacing.ValidTrack(pace, track) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("pace %d has no track %s", pace, track))
	}
	if err := requireTermDates(term); err != nil {
		return nil, err
	}

	ms, err := s.templates(ctx, term.Key(), pace, track)
	if err != nil {
		return nil, err
	}
	pacing.SortMilestones(ms)

	return &TrackSchedule{
		Term:       term.Key().String(),
		Pace:       pace,
		Track:      track,
		Milestones: ms,
		Issues:     pacing.CheckTrack(pace, track, term.StartDate.Time, term.EndDate.Time, ms),
	}, nil
}

// EffectiveDeadline resolves one student's deadline for a milestone slot.
func (s *MilestoneService) EffectiveDeadline(ctx context.Context, term models.TermKey, studentID string, pace int, track models.PaceTrack, slot pacing.Slot) (*pacing.Deadline, error) {
	if !pacing.ValidTrack(pace, track) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("pace %d has no track %s", pace, track))
	}
	ms, err := s.templates(ctx, term, pace, track)
	if err != nil {
		return nil, err
	}
	overrides, err := s.overrides.ListByStudent(ctx, term, studentID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load student milestones")
	}

	d, ok := pacing.ResolveDeadline(track, slot, findTemplate(ms, slot), overrides)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("no deadline for milestone %d %s", slot.Number, slot.Type))
	}
	return &d, nil
}

// ValidateTerm checks every (pace, track) schedule of term and every student
// override against the expected catalog.
func (s *MilestoneService) ValidateTerm(ctx context.Context, term *models.Term) (*pacing.Report, error) {
	if err := requireTermDates(term); err != nil {
		return nil, err
	}
	ms, err := s.milestones.ListByTerm(ctx, term.Key())
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load milestones")
	}
	overrides, err := s.overrides.ListByTerm(ctx, term.Key())
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load student milestones")
	}

	report := pacing.ValidateSchedule(term.StartDate.Time, term.EndDate.Time, ms)
	report.Add(pacing.CheckOverrides(overrides)...)
	s.metrics.RecordScheduleIssues(report)
	s.logger.Info("validated milestone schedule",
		zap.String("term", term.Key().String()),
		zap.Int("milestones", len(ms)),
		zap.Int("overrides", len(overrides)),
		zap.Int("issues", len(report.Issues)))
	return report, nil
}

// InvalidateTerm drops cached schedules of term.
func (s *MilestoneService) InvalidateTerm(ctx context.Context, term models.TermKey) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Invalidate(ctx, repository.CacheKey("milestones", term.String(), "*"))
}

func (s *MilestoneService) templates(ctx context.Context, term models.TermKey, pace int, track models.PaceTrack) ([]models.Milestone, error) {
	key := repository.CacheKey("milestones", term.String(), strconv.Itoa(pace), string(track))
	if s.cache != nil {
		var cached []models.Milestone
		if s.cache.Get(ctx, key, &cached) {
			return cached, nil
		}
	}

	ms, err := s.milestones.ListByTrack(ctx, term, pace, track)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, appErrors.Internal(err, "failed to load milestones")
	}
	if s.cache != nil && len(ms) > 0 {
		s.cache.Set(ctx, key, ms, s.cfg.CacheTTL)
	}
	return ms, nil
}

func findTemplate(ms []models.Milestone, slot pacing.Slot) *models.Milestone {
	for i := range ms {
		if pacing.SlotOf(ms[i]) == slot {
			return &ms[i]
		}
	}
	return nil
}

func requireTermDates(term *models.Term) error {
	if term == nil {
		return appErrors.Clone(appErrors.ErrValidation, "term is required")
	}
	if !term.StartDate.Valid || !term.EndDate.Valid {
		return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("term %s has no start or end date", term.Key()))
	}
	return nil
}
