package service

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/srbenoit/mathops-db-sub010/internal/models"
	"github.com/srbenoit/mathops-db-sub010/internal/pacing"
	"github.com/srbenoit/mathops-db-sub010/internal/repository"
	appErrors "github.com/srbenoit/mathops-db-sub010/pkg/errors"
)

type registrationRepository interface {
	ListByTerm(ctx context.Context, term models.TermKey, filter repository.RegistrationFilter) ([]models.Registration, error)
	ListByStudent(ctx context.Context, term models.TermKey, studentID string) ([]models.Registration, error)
	UpdatePaceOrder(ctx context.Context, key models.RegistrationKey, order *int) error
	UpdateOpenStatus(ctx context.Context, key models.RegistrationKey, status models.OpenStatus) error
	UpdateGradingOption(ctx context.Context, key models.RegistrationKey, option models.GradingOption) error
}

// StudentPace is the classification of one student in a term.
type StudentPace struct {
	StudentID     string                `json:"stu_id"`
	Pace          int                   `json:"pace"`
	Track         models.PaceTrack      `json:"pace_track"`
	Courses       []string              `json:"courses"`
	Registrations []models.Registration `json:"registrations"`
}

// TrackCount is the number of students on one (pace, track).
type TrackCount struct {
	Pace     int              `json:"pace"`
	Track    models.PaceTrack `json:"pace_track"`
	Students int              `json:"students"`
	Percent  float64          `json:"percent"`
}

// CourseCount tallies how many students take a course in each pace-order position.
type CourseCount struct {
	Course  string              `json:"course"`
	ByOrder [pacing.MaxPace]int `json:"by_order"`
	Total   int                 `json:"total"`
}

// PaceSummary aggregates the classifications of a term.
type PaceSummary struct {
	Term     string        `json:"term"`
	Students int           `json:"students"`
	Tracks   []TrackCount  `json:"tracks"`
	Courses  []CourseCount `json:"courses"`
}

// PaceOrderChange is one pace-order correction.
type PaceOrderChange struct {
	StudentID string `json:"stu_id"`
	Course    string `json:"course"`
	Section   string `json:"sect"`
	Previous  *int   `json:"previous,omitempty"`
	Order     int    `json:"pace_order"`
	Applied   bool   `json:"applied"`
}

// PaceService classifies students into pace and track.
type PaceService struct {
	registrations registrationRepository
	logger        *zap.Logger
}

// NewPaceService constructs the service.
func NewPaceService(registrations registrationRepository, logger *zap.Logger) *PaceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaceService{registrations: registrations, logger: logger}
}

// ClassifyStudent classifies one student. A student without counted
// registrations is pace 0 on track A.
func (s *PaceService) ClassifyStudent(ctx context.Context, term models.TermKey, studentID string) (*StudentPace, error) {
	regs, err := s.registrations.ListByStudent(ctx, term, studentID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load registrations")
	}
	sp := classifyStudent(studentID, regs)
	return &sp, nil
}

// ClassifyTerm classifies every student with a paced registration in term,
// ordered by student ID.
func (s *PaceService) ClassifyTerm(ctx context.Context, term models.TermKey) ([]StudentPace, error) {
	regs, err := s.registrations.ListByTerm(ctx, term, repository.RegistrationFilter{OnlyPaced: true})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load registrations")
	}

	byStudent := make(map[string][]models.Registration)
	ids := make([]string, 0)
	for _, r := range regs {
		id := r.StudentID.Str
		if _, ok := byStudent[id]; !ok {
			ids = append(ids, id)
		}
		byStudent[id] = append(byStudent[id], r)
	}
	sort.Strings(ids)

	out := make([]StudentPace, 0, len(ids))
	for _, id := range ids {
		out = append(out, classifyStudent(id, byStudent[id]))
	}
	return out, nil
}

// Summary counts students per (pace, track) and courses per pace-order position.
func (s *PaceService) Summary(ctx context.Context, term models.TermKey) (*PaceSummary, error) {
	students, err := s.ClassifyTerm(ctx, term)
	if err != nil {
		return nil, err
	}
	return summarize(term, students), nil
}

// RepairPaceOrder rewrites missing or inconsistent pace orders to match the
// canonical ordering. With dryRun nothing is written.
func (s *PaceService) RepairPaceOrder(ctx context.Context, term models.TermKey, dryRun bool) ([]PaceOrderChange, error) {
	students, err := s.ClassifyTerm(ctx, term)
	if err != nil {
		return nil, err
	}

	changes := make([]PaceOrderChange, 0)
	for _, sp := range students {
		c := pacing.Classify(sp.Registrations)
		for _, repair := range pacing.PaceOrderRepairs(c) {
			reg := repair.Registration
			change := PaceOrderChange{
				StudentID: reg.StudentID.Str,
				Course:    reg.CourseID(),
				Section:   reg.Section.Str,
				Previous:  repair.Previous,
				Order:     repair.Order,
			}
			if !dryRun {
				order := repair.Order
				if err := s.registrations.UpdatePaceOrder(ctx, reg.Key(), &order); err != nil {
					s.logger.Error("pace order update failed",
						zap.String("student", change.StudentID),
						zap.String("course", change.Course),
						zap.Error(err))
					return changes, appErrors.Internal(err, "failed to update pace order")
				}
				change.Applied = true
			}
			changes = append(changes, change)
		}
	}

	s.logger.Info("pace order repair finished",
		zap.String("term", term.String()),
		zap.Bool("dry_run", dryRun),
		zap.Int("students", len(students)),
		zap.Int("changes", len(changes)))
	return changes, nil
}

func classifyStudent(studentID string, regs []models.Registration) StudentPace {
	c := pacing.Classify(regs)
	courses := make([]string, len(c.Ordered))
	for i, r := range c.Ordered {
		courses[i] = r.CourseID()
	}
	return StudentPace{
		StudentID:     studentID,
		Pace:          c.Pace,
		Track:         c.Track,
		Courses:       courses,
		Registrations: regs,
	}
}

func summarize(term models.TermKey, students []StudentPace) *PaceSummary {
	tracks := make(map[pacing.TrackKey]int)
	courses := make(map[string]*CourseCount, len(models.PacedCourses))
	for _, c := range models.PacedCourses {
		courses[c] = &CourseCount{Course: c}
	}

	for _, sp := range students {
		tracks[pacing.TrackKey{Pace: sp.Pace, Track: sp.Track}]++
		for i, course := range sp.Courses {
			cc := courses[course]
			if cc == nil || i >= pacing.MaxPace {
				continue
			}
			cc.ByOrder[i]++
			cc.Total++
		}
	}

	summary := &PaceSummary{Term: term.String(), Students: len(students)}
	percent := func(n int) float64 {
		if len(students) == 0 {
			return 0
		}
		return float64(n) * 100 / float64(len(students))
	}
	if n := tracks[pacing.TrackKey{Pace: 0, Track: models.TrackA}]; n > 0 {
		summary.Tracks = append(summary.Tracks, TrackCount{Pace: 0, Track: models.TrackA, Students: n, Percent: percent(n)})
	}
	for pace := 1; pace <= pacing.MaxPace; pace++ {
		for _, track := range pacing.Tracks(pace) {
			n := tracks[pacing.TrackKey{Pace: pace, Track: track}]
			summary.Tracks = append(summary.Tracks, TrackCount{Pace: pace, Track: track, Students: n, Percent: percent(n)})
		}
	}
	for _, c := range models.PacedCourses {
		summary.Courses = append(summary.Courses, *courses[c])
	}
	return summary
}
