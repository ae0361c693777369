package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/srbenoit/mathops-db-sub010/internal/models"
	"github.com/srbenoit/mathops-db-sub010/internal/pacing"
	appErrors "github.com/srbenoit/mathops-db-sub010/pkg/errors"
	"github.com/srbenoit/mathops-db-sub010/pkg/fields"
)

type paceClassifier interface {
	ClassifyStudent(ctx context.Context, term models.TermKey, studentID string) (*StudentPace, error)
	ClassifyTerm(ctx context.Context, term models.TermKey) ([]StudentPace, error)
}

type examRepository interface {
	ListByStudent(ctx context.Context, studentID string, from, to time.Time) ([]models.ExamAttempt, error)
	ListPassedInRange(ctx context.Context, from, to time.Time) ([]models.ExamAttempt, error)
}

type homeworkRepository interface {
	ListByStudent(ctx context.Context, studentID string, from, to time.Time) ([]models.HomeworkAttempt, error)
	LatestActivity(ctx context.Context, from, to time.Time) ([]models.StudentActivity, error)
}

// MilestoneStatus is how one student stands on one milestone.
type MilestoneStatus struct {
	Course     string                  `json:"course"`
	Number     int                     `json:"ms_nbr"`
	Type       models.MilestoneType    `json:"ms_type"`
	Deadline   time.Time               `json:"deadline"`
	LastTry    *time.Time              `json:"last_try,omitempty"`
	Overridden bool                    `json:"overridden"`
	Completed  *time.Time              `json:"completed,omitempty"`
	Status     pacing.CompletionStatus `json:"status"`
}

// StudentDeadlines collects the milestone statuses of one student.
type StudentDeadlines struct {
	StudentID    string                          `json:"stu_id"`
	Pace         int                             `json:"pace"`
	Track        models.PaceTrack                `json:"pace_track"`
	LastActivity *time.Time                      `json:"last_activity,omitempty"`
	Milestones   []MilestoneStatus               `json:"milestones"`
	Counts       map[pacing.CompletionStatus]int `json:"counts"`
}

// TrackStatusCount aggregates milestone statuses over the students of a track.
type TrackStatusCount struct {
	Pace     int              `json:"pace"`
	Track    models.PaceTrack `json:"pace_track"`
	Students int              `json:"students"`
	OnTime   int              `json:"on_time"`
	LastTry  int              `json:"last_try"`
	Overdue  int              `json:"overdue"`
	Pending  int              `json:"pending"`
}

// DeadlineReport is the deadline standing of every paced student in a term.
type DeadlineReport struct {
	Term     string             `json:"term"`
	AsOf     time.Time          `json:"as_of"`
	Students []StudentDeadlines `json:"students"`
	Tracks   []TrackStatusCount `json:"tracks"`
}

// DeadlineService compares exam completions with effective deadlines.
type DeadlineService struct {
	pace       paceClassifier
	milestones milestoneRepository
	overrides  studentMilestoneRepository
	exams      examRepository
	homework   homeworkRepository
	now        func() time.Time
	logger     *zap.Logger
}

// NewDeadlineService constructs the service.
func NewDeadlineService(pace paceClassifier, milestones milestoneRepository, overrides studentMilestoneRepository, exams examRepository, homework homeworkRepository, logger *zap.Logger) *DeadlineService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DeadlineService{
		pace:       pace,
		milestones: milestones,
		overrides:  overrides,
		exams:      exams,
		homework:   homework,
		now:        time.Now,
		logger:     logger,
	}
}

// StudentStatus evaluates one student's milestones in term.
func (s *DeadlineService) StudentStatus(ctx context.Context, term *models.Term, studentID string) (*StudentDeadlines, error) {
	if err := requireTermDates(term); err != nil {
		return nil, err
	}
	key := term.Key()
	from, to := term.StartDate.Time, term.EndDate.Time

	sp, err := s.pace.ClassifyStudent(ctx, key, studentID)
	if err != nil {
		return nil, err
	}
	result := &StudentDeadlines{StudentID: studentID, Pace: sp.Pace, Track: sp.Track, Counts: map[pacing.CompletionStatus]int{}}

	exams, err := s.exams.ListByStudent(ctx, studentID, from, to)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load exams")
	}
	hws, err := s.homework.ListByStudent(ctx, studentID, from, to)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load homework")
	}
	result.LastActivity = latestActivity(exams, hws)

	if sp.Pace == 0 {
		return result, nil
	}
	templates, err := s.milestones.ListByTrack(ctx, key, sp.Pace, sp.Track)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load milestones")
	}
	overrides, err := s.overrides.ListByStudent(ctx, key, studentID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load student milestones")
	}

	s.evaluate(result, sp.Courses, templates, overrides, passedOnly(exams), s.asOf(term))
	return result, nil
}

// TermStatus evaluates every paced student of term.
func (s *DeadlineService) TermStatus(ctx context.Context, term *models.Term) (*DeadlineReport, error) {
	if err := requireTermDates(term); err != nil {
		return nil, err
	}
	key := term.Key()
	from, to := term.StartDate.Time, term.EndDate.Time

	students, err := s.pace.ClassifyTerm(ctx, key)
	if err != nil {
		return nil, err
	}
	templates, err := s.milestones.ListByTerm(ctx, key)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load milestones")
	}
	overrides, err := s.overrides.ListByTerm(ctx, key)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load student milestones")
	}
	exams, err := s.exams.ListPassedInRange(ctx, from, to)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load exams")
	}
	activity, err := s.homework.LatestActivity(ctx, from, to)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load student activity")
	}

	byTrack := make(map[pacing.TrackKey][]models.Milestone)
	for _, m := range templates {
		k := pacing.TrackKey{Pace: m.Pace, Track: m.Track}
		byTrack[k] = append(byTrack[k], m)
	}
	overridesByStudent := make(map[string][]models.StudentMilestone)
	for _, o := range overrides {
		overridesByStudent[o.StudentID.Str] = append(overridesByStudent[o.StudentID.Str], o)
	}
	examsByStudent := make(map[string][]models.ExamAttempt)
	for _, e := range exams {
		examsByStudent[e.StudentID.Str] = append(examsByStudent[e.StudentID.Str], e)
	}
	lastSeen := make(map[string]*time.Time, len(activity))
	for _, a := range activity {
		lastSeen[a.StudentID] = a.LastActivity.Ptr()
	}

	asOf := s.asOf(term)
	report := &DeadlineReport{Term: key.String(), AsOf: asOf}
	counts := make(map[pacing.TrackKey]*TrackStatusCount)
	for _, sp := range students {
		if sp.Pace == 0 {
			continue
		}
		sd := StudentDeadlines{
			StudentID:    sp.StudentID,
			Pace:         sp.Pace,
			Track:        sp.Track,
			LastActivity: lastSeen[sp.StudentID],
			Counts:       map[pacing.CompletionStatus]int{},
		}
		tk := pacing.TrackKey{Pace: sp.Pace, Track: sp.Track}
		s.evaluate(&sd, sp.Courses, byTrack[tk], overridesByStudent[sp.StudentID], examsByStudent[sp.StudentID], asOf)
		report.Students = append(report.Students, sd)

		tc := counts[tk]
		if tc == nil {
			tc = &TrackStatusCount{Pace: sp.Pace, Track: sp.Track}
			counts[tk] = tc
		}
		tc.Students++
		tc.OnTime += sd.Counts[pacing.StatusOnTime]
		tc.LastTry += sd.Counts[pacing.StatusLastTry]
		tc.Overdue += sd.Counts[pacing.StatusOverdue]
		tc.Pending += sd.Counts[pacing.StatusPending]
	}
	for pace := 1; pace <= pacing.MaxPace; pace++ {
		for _, track := range pacing.Tracks(pace) {
			if tc := counts[pacing.TrackKey{Pace: pace, Track: track}]; tc != nil {
				report.Tracks = append(report.Tracks, *tc)
			}
		}
	}

	s.logger.Info("evaluated deadlines",
		zap.String("term", key.String()),
		zap.Int("students", len(report.Students)),
		zap.Time("as_of", asOf))
	return report, nil
}

// evaluate fills sd with one status per primary milestone of the student's courses.
func (s *DeadlineService) evaluate(sd *StudentDeadlines, courses []string, templates []models.Milestone, overrides []models.StudentMilestone, passed []models.ExamAttempt, asOf time.Time) {
	for _, slot := range pacing.ExpectedSlots(sd.Pace) {
		examType, primary := pacing.ExamTypeOf(slot.Type)
		if !primary || slot.Order() < 1 || slot.Order() > len(courses) {
			continue
		}
		deadline, ok := pacing.ResolveDeadline(sd.Track, slot, findTemplate(templates, slot), overrides)
		if !ok {
			continue
		}

		course := courses[slot.Order()-1]
		status := MilestoneStatus{
			Course:     course,
			Number:     slot.Number,
			Type:       slot.Type,
			Deadline:   deadline.Date,
			Overridden: deadline.Overridden,
		}
		if partner, ok := pacing.LastTryOf(slot.Type); ok {
			lastTrySlot := pacing.Slot{Number: slot.Number, Type: partner}
			if lt, ok := pacing.ResolveDeadline(sd.Track, lastTrySlot, findTemplate(templates, lastTrySlot), overrides); ok {
				d := lt.Date
				status.LastTry = &d
			}
		}
		status.Completed = firstPassed(passed, course, slot, examType)
		status.Status = pacing.Evaluate(status.Deadline, status.LastTry, status.Completed, asOf)

		sd.Milestones = append(sd.Milestones, status)
		sd.Counts[status.Status]++
	}
}

// asOf is today, capped at the last day of term.
func (s *DeadlineService) asOf(term *models.Term) time.Time {
	today := fields.DateOf(s.now())
	if term.EndDate.Valid && today.After(term.EndDate.Time) {
		return term.EndDate.Time
	}
	return today
}

// firstPassed finds the earliest passing attempt that completes slot. Review
// and unit exams match on unit; midterms and finals match on exam type alone.
func firstPassed(passed []models.ExamAttempt, course string, slot pacing.Slot, examType models.ExamType) *time.Time {
	var first *time.Time
	for _, e := range passed {
		if !e.IsPassed() || e.Course.Str != course || e.ExamType.Str != string(examType) || !e.ExamDate.Valid {
			continue
		}
		if (examType == models.ExamTypeReview || examType == models.ExamTypeUnit) && int(e.Unit.Int64) != slot.Unit() {
			continue
		}
		if first == nil || e.ExamDate.Time.Before(*first) {
			d := e.ExamDate.Time
			first = &d
		}
	}
	return first
}

func passedOnly(exams []models.ExamAttempt) []models.ExamAttempt {
	out := make([]models.ExamAttempt, 0, len(exams))
	for _, e := range exams {
		if e.IsPassed() {
			out = append(out, e)
		}
	}
	return out
}

func latestActivity(exams []models.ExamAttempt, hws []models.HomeworkAttempt) *time.Time {
	var last *time.Time
	consider := func(d fields.Date) {
		if d.Valid && (last == nil || d.Time.After(*last)) {
			t := d.Time
			last = &t
		}
	}
	for _, e := range exams {
		consider(e.ExamDate)
	}
	for _, h := range hws {
		consider(h.HomeworkDate)
	}
	return last
}
