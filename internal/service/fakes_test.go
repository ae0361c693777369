package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/srbenoit/mathops-db-sub010/internal/models"
	"github.com/srbenoit/mathops-db-sub010/internal/pacing"
	"github.com/srbenoit/mathops-db-sub010/internal/repository"
	"github.com/srbenoit/mathops-db-sub010/pkg/fields"
)

type termRepoFake struct {
	terms  []models.Term
	active *models.Term
	err    error
}

func (f *termRepoFake) List(ctx context.Context) ([]models.Term, error) {
	return f.terms, f.err
}

func (f *termRepoFake) FindByKey(ctx context.Context, key models.TermKey) (*models.Term, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.terms {
		if f.terms[i].Key() == key {
			return &f.terms[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *termRepoFake) FindActive(ctx context.Context) (*models.Term, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.active == nil {
		return nil, sql.ErrNoRows
	}
	return f.active, nil
}

type milestoneRepoFake struct {
	rows       []models.Milestone
	err        error
	trackCalls int
}

func (f *milestoneRepoFake) ListByTerm(ctx context.Context, term models.TermKey) ([]models.Milestone, error) {
	return f.rows, f.err
}

func (f *milestoneRepoFake) ListByTrack(ctx context.Context, term models.TermKey, pace int, track models.PaceTrack) ([]models.Milestone, error) {
	f.trackCalls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([]models.Milestone, 0)
	for _, m := range f.rows {
		if m.Pace == pace && m.Track == track {
			out = append(out, m)
		}
	}
	return out, nil
}

type overrideRepoFake struct {
	rows []models.StudentMilestone
	err  error
}

func (f *overrideRepoFake) ListByStudent(ctx context.Context, term models.TermKey, studentID string) ([]models.StudentMilestone, error) {
	out := make([]models.StudentMilestone, 0)
	for _, o := range f.rows {
		if o.StudentID.Str == studentID {
			out = append(out, o)
		}
	}
	return out, f.err
}

func (f *overrideRepoFake) ListByTerm(ctx context.Context, term models.TermKey) ([]models.StudentMilestone, error) {
	return f.rows, f.err
}

type cacheFake struct {
	data        map[string][]byte
	invalidated []string
}

func newCacheFake() *cacheFake {
	return &cacheFake{data: map[string][]byte{}}
}

func (c *cacheFake) Get(ctx context.Context, key string, dest interface{}) bool {
	raw, ok := c.data[key]
	if !ok {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

func (c *cacheFake) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	raw, err := json.Marshal(value)
	if err == nil {
		c.data[key] = raw
	}
}

func (c *cacheFake) Invalidate(ctx context.Context, pattern string) error {
	c.invalidated = append(c.invalidated, pattern)
	c.data = map[string][]byte{}
	return nil
}

type registrationRepoFake struct {
	regs       []models.Registration
	err        error
	updateErr  error
	lastFilter repository.RegistrationFilter
	paceOrders map[models.RegistrationKey]*int
	openStatus map[models.RegistrationKey]models.OpenStatus
	grading    map[models.RegistrationKey]models.GradingOption
}

func newRegistrationRepoFake(regs ...models.Registration) *registrationRepoFake {
	return &registrationRepoFake{
		regs:       regs,
		paceOrders: map[models.RegistrationKey]*int{},
		openStatus: map[models.RegistrationKey]models.OpenStatus{},
		grading:    map[models.RegistrationKey]models.GradingOption{},
	}
}

func (f *registrationRepoFake) ListByTerm(ctx context.Context, term models.TermKey, filter repository.RegistrationFilter) ([]models.Registration, error) {
	f.lastFilter = filter
	if f.err != nil {
		return nil, f.err
	}
	out := make([]models.Registration, 0)
	for _, r := range f.regs {
		if filter.OnlyPaced && !models.IsPacedCourse(r.CourseID()) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (f *registrationRepoFake) ListByStudent(ctx context.Context, term models.TermKey, studentID string) ([]models.Registration, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]models.Registration, 0)
	for _, r := range f.regs {
		if r.StudentID.Str == studentID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *registrationRepoFake) UpdatePaceOrder(ctx context.Context, key models.RegistrationKey, order *int) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.paceOrders[key] = order
	return nil
}

func (f *registrationRepoFake) UpdateOpenStatus(ctx context.Context, key models.RegistrationKey, status models.OpenStatus) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.openStatus[key] = status
	return nil
}

func (f *registrationRepoFake) UpdateGradingOption(ctx context.Context, key models.RegistrationKey, option models.GradingOption) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.grading[key] = option
	return nil
}

type examRepoFake struct {
	rows []models.ExamAttempt
	err  error
}

func (f *examRepoFake) ListByStudent(ctx context.Context, studentID string, from, to time.Time) ([]models.ExamAttempt, error) {
	out := make([]models.ExamAttempt, 0)
	for _, e := range f.rows {
		if e.StudentID.Str == studentID {
			out = append(out, e)
		}
	}
	return out, f.err
}

func (f *examRepoFake) ListPassedInRange(ctx context.Context, from, to time.Time) ([]models.ExamAttempt, error) {
	return passedOnly(f.rows), f.err
}

type homeworkRepoFake struct {
	rows []models.HomeworkAttempt
}

func (f *homeworkRepoFake) ListByStudent(ctx context.Context, studentID string, from, to time.Time) ([]models.HomeworkAttempt, error) {
	out := make([]models.HomeworkAttempt, 0)
	for _, h := range f.rows {
		if h.StudentID.Str == studentID {
			out = append(out, h)
		}
	}
	return out, nil
}

func (f *homeworkRepoFake) LatestActivity(ctx context.Context, from, to time.Time) ([]models.StudentActivity, error) {
	latest := map[string]time.Time{}
	for _, h := range f.rows {
		if h.HomeworkDate.Time.After(latest[h.StudentID.Str]) {
			latest[h.StudentID.Str] = h.HomeworkDate.Time
		}
	}
	out := make([]models.StudentActivity, 0, len(latest))
	for id, d := range latest {
		out = append(out, models.StudentActivity{StudentID: id, LastActivity: fields.NewDate(d)})
	}
	return out, nil
}

func registration(student, course string, order int) models.Registration {
	r := models.Registration{
		StudentID: fields.NewString(student),
		Course:    fields.NewString(course),
		Section:   fields.NewString("001"),
		TermName:  fields.NewString("FA"),
		TermYear:  fields.NewYear(2024),
	}
	if order > 0 {
		r.PaceOrder = fields.NewInt(order)
	}
	return r
}

// trackSchedule builds a complete, in-sequence schedule for (pace, track)
// spread over the first 100 days of term.
func trackSchedule(term *models.Term, pace int, track models.PaceTrack) []models.Milestone {
	slots := pacing.ExpectedSlots(pace)
	out := make([]models.Milestone, len(slots))
	for i, s := range slots {
		out[i] = models.Milestone{
			TermName: term.Name,
			TermYear: term.Year,
			Pace:     pace,
			Track:    track,
			Number:   s.Number,
			Type:     s.Type,
			Date:     fields.NewDate(term.StartDate.Time.AddDate(0, 0, i*100/len(slots))),
		}
	}
	return out
}

func termSchedule(term *models.Term) []models.Milestone {
	var out []models.Milestone
	for pace := 1; pace <= pacing.MaxPace; pace++ {
		for _, track := range pacing.Tracks(pace) {
			out = append(out, trackSchedule(term, pace, track)...)
		}
	}
	return out
}

func exam(student, course, examType string, unit int, on time.Time, passed bool) models.ExamAttempt {
	flag := "N"
	if passed {
		flag = "Y"
	}
	return models.ExamAttempt{
		StudentID: fields.NewString(student),
		Course:    fields.NewString(course),
		Unit:      fields.NewInt(unit),
		ExamType:  fields.NewString(examType),
		ExamDate:  fields.NewDate(on),
		Passed:    fields.NewString(flag),
	}
}
