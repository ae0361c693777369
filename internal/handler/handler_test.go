package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srbenoit/mathops-db-sub010/internal/dto"
	"github.com/srbenoit/mathops-db-sub010/internal/middleware"
	"github.com/srbenoit/mathops-db-sub010/internal/models"
	"github.com/srbenoit/mathops-db-sub010/internal/pacing"
	"github.com/srbenoit/mathops-db-sub010/internal/service"
	appErrors "github.com/srbenoit/mathops-db-sub010/pkg/errors"
	"github.com/srbenoit/mathops-db-sub010/pkg/fields"
)

var testTokens = service.NewTokenService(service.TokenConfig{Secret: "secret"})

func bearer(t *testing.T, role models.StaffRole) string {
	t.Helper()
	token, err := testTokens.IssueToken("user-1", role, time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func doRequest(r http.Handler, method, path, auth string, body interface{}) *httptest.ResponseRecorder {
	var payload []byte
	if body != nil {
		payload, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type termStub struct {
	term *models.Term
	raw  string
}

func (s *termStub) Resolve(ctx context.Context, raw string) (*models.Term, error) {
	s.raw = raw
	if raw == "XX99" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid term")
	}
	return s.term, nil
}

func (s *termStub) List(ctx context.Context) ([]models.Term, error) {
	return []models.Term{*s.term}, nil
}

func (s *termStub) Active(ctx context.Context) (*models.Term, error) {
	return s.term, nil
}

type milestoneStub struct {
	pace        int
	track       models.PaceTrack
	slot        pacing.Slot
	invalidated *models.TermKey
}

func (s *milestoneStub) MilestonesFor(ctx context.Context, term *models.Term, pace int, track models.PaceTrack) (*service.TrackSchedule, error) {
	s.pace, s.track = pace, track
	return &service.TrackSchedule{Term: term.Key().String(), Pace: pace, Track: track}, nil
}

func (s *milestoneStub) EffectiveDeadline(ctx context.Context, term models.TermKey, studentID string, pace int, track models.PaceTrack, slot pacing.Slot) (*pacing.Deadline, error) {
	s.pace, s.track, s.slot = pace, track, slot
	return &pacing.Deadline{Slot: slot, Track: track}, nil
}

func (s *milestoneStub) ValidateTerm(ctx context.Context, term *models.Term) (*pacing.Report, error) {
	r := &pacing.Report{}
	r.Add(pacing.Issue{Kind: pacing.IssueMissing, Pace: 1, Track: models.TrackA, Number: 111, Type: models.MilestoneReviewExam})
	return r, nil
}

func (s *milestoneStub) InvalidateTerm(ctx context.Context, term models.TermKey) error {
	s.invalidated = &term
	return nil
}

type paceStub struct{ dryRun *bool }

func (s *paceStub) ClassifyStudent(ctx context.Context, term models.TermKey, studentID string) (*service.StudentPace, error) {
	return &service.StudentPace{StudentID: studentID, Pace: 2, Track: models.TrackB}, nil
}

func (s *paceStub) Summary(ctx context.Context, term models.TermKey) (*service.PaceSummary, error) {
	return &service.PaceSummary{Term: term.String(), Students: 3}, nil
}

func (s *paceStub) RepairPaceOrder(ctx context.Context, term models.TermKey, dryRun bool) ([]service.PaceOrderChange, error) {
	s.dryRun = &dryRun
	return []service.PaceOrderChange{{StudentID: "1", Course: "M 117", Order: 1}}, nil
}

type deadlineStub struct{}

func (deadlineStub) StudentStatus(ctx context.Context, term *models.Term, studentID string) (*service.StudentDeadlines, error) {
	return &service.StudentDeadlines{StudentID: studentID, Pace: 1}, nil
}

func (deadlineStub) TermStatus(ctx context.Context, term *models.Term) (*service.DeadlineReport, error) {
	return nil, appErrors.Internal(errors.New("db down"), "failed to load milestones")
}

type registrationStub struct {
	key    models.RegistrationKey
	status string
	order  *int
}

func (s *registrationStub) ListForStudent(ctx context.Context, term models.TermKey, studentID string) ([]models.Registration, error) {
	return []models.Registration{{StudentID: fields.NewString(studentID), Course: fields.NewString("M 117")}}, nil
}

func (s *registrationStub) Key(params dto.RegistrationKeyParams) (models.RegistrationKey, error) {
	term, err := models.ParseTermKey(params.Term)
	if err != nil {
		return models.RegistrationKey{}, appErrors.Clone(appErrors.ErrValidation, "invalid term")
	}
	return models.RegistrationKey{StudentID: params.StudentID, Course: params.Course, Section: params.Section, Term: term}, nil
}

func (s *registrationStub) UpdateOpenStatus(ctx context.Context, key models.RegistrationKey, req dto.UpdateOpenStatusRequest) error {
	s.key, s.status = key, req.OpenStatus
	return nil
}

func (s *registrationStub) UpdateGradingOption(ctx context.Context, key models.RegistrationKey, req dto.UpdateGradingOptionRequest) error {
	return appErrors.Clone(appErrors.ErrNotFound, "registration not found")
}

func (s *registrationStub) UpdatePaceOrder(ctx context.Context, key models.RegistrationKey, req dto.UpdatePaceOrderRequest) error {
	s.key, s.order = key, req.PaceOrder
	return nil
}

type fixture struct {
	router        *gin.Engine
	terms         *termStub
	milestones    *milestoneStub
	pace          *paceStub
	registrations *registrationStub
}

func newFixture() *fixture {
	gin.SetMode(gin.TestMode)
	f := &fixture{
		router: gin.New(),
		terms: &termStub{term: &models.Term{
			Name:      fields.NewString("FA"),
			Year:      fields.NewYear(2024),
			StartDate: fields.NewDate(time.Date(2024, 8, 26, 0, 0, 0, 0, time.UTC)),
			EndDate:   fields.NewDate(time.Date(2024, 12, 13, 0, 0, 0, 0, time.UTC)),
		}},
		milestones:    &milestoneStub{},
		pace:          &paceStub{},
		registrations: &registrationStub{},
	}

	termHandler := NewTermHandler(f.terms)
	milestoneHandler := NewMilestoneHandler(f.terms, f.milestones)
	paceHandler := NewPaceHandler(f.terms, f.pace)
	deadlineHandler := NewDeadlineHandler(f.terms, deadlineStub{})
	registrationHandler := NewRegistrationHandler(f.terms, f.registrations)

	api := f.router.Group("/api/v1", middleware.JWT(testTokens))
	api.GET("/terms", termHandler.List)
	api.GET("/terms/active", termHandler.GetActive)
	api.GET("/milestones", milestoneHandler.Schedule)
	api.GET("/milestones/validate", milestoneHandler.Validate)
	api.GET("/students/:id/milestones/:number/:type", milestoneHandler.Deadline)
	api.GET("/students/:id/pace", paceHandler.Student)
	api.GET("/students/:id/deadlines", deadlineHandler.Student)
	api.GET("/students/:id/registrations", registrationHandler.ListForStudent)
	api.GET("/pace/summary", paceHandler.Summary)
	api.GET("/deadlines", deadlineHandler.Term)

	admin := api.Group("", middleware.RequireRoles(models.RoleAdmin))
	admin.DELETE("/milestones/cache", milestoneHandler.InvalidateCache)
	admin.POST("/pace/repair", paceHandler.Repair)

	staff := api.Group("/registrations/:term/:id/:course/:sect", middleware.RequireRoles(models.RoleAdmin, models.RoleAdvisor))
	staff.PATCH("/open-status", registrationHandler.UpdateOpenStatus)
	staff.PATCH("/grading-option", registrationHandler.UpdateGradingOption)
	staff.PATCH("/pace-order", registrationHandler.UpdatePaceOrder)
	return f
}

func TestRoutesRequireToken(t *testing.T) {
	f := newFixture()

	w := doRequest(f.router, http.MethodGet, "/api/v1/terms/active", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(f.router, http.MethodGet, "/api/v1/terms/active", "Token abc", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(f.router, http.MethodGet, "/api/v1/terms/active", "Bearer not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(f.router, http.MethodGet, "/api/v1/terms/active", bearer(t, models.RoleViewer), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"term":"FA"`)
}

func TestMilestoneRoutes(t *testing.T) {
	f := newFixture()
	auth := bearer(t, models.RoleViewer)

	w := doRequest(f.router, http.MethodGet, "/api/v1/milestones?term=FA24&pace=3&track=b", auth, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, f.milestones.pace)
	assert.Equal(t, models.TrackB, f.milestones.track)
	assert.Equal(t, "FA24", f.terms.raw)

	w = doRequest(f.router, http.MethodGet, "/api/v1/milestones?track=A", auth, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(f.router, http.MethodGet, "/api/v1/milestones?pace=1&track=A&term=XX99", auth, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(f.router, http.MethodGet, "/api/v1/milestones/validate", auth, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Meta map[string]interface{} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body.Meta["ok"])

	w = doRequest(f.router, http.MethodGet, "/api/v1/students/111223333/milestones/211/re?pace=2&track=a", auth, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, pacing.Slot{Number: 211, Type: models.MilestoneReviewExam}, f.milestones.slot)

	w = doRequest(f.router, http.MethodDelete, "/api/v1/milestones/cache", auth, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Nil(t, f.milestones.invalidated)

	w = doRequest(f.router, http.MethodDelete, "/api/v1/milestones/cache", bearer(t, models.RoleAdmin), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	require.NotNil(t, f.milestones.invalidated)
}

func TestPaceAndDeadlineRoutes(t *testing.T) {
	f := newFixture()
	auth := bearer(t, models.RoleAdvisor)

	w := doRequest(f.router, http.MethodGet, "/api/v1/students/111223333/pace", auth, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"pace_track":"B"`)

	w = doRequest(f.router, http.MethodGet, "/api/v1/pace/summary", auth, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"term":"FA24"`)

	w = doRequest(f.router, http.MethodPost, "/api/v1/pace/repair", bearer(t, models.RoleAdmin), nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, f.pace.dryRun)
	assert.True(t, *f.pace.dryRun)

	w = doRequest(f.router, http.MethodPost, "/api/v1/pace/repair?dryRun=false", bearer(t, models.RoleAdmin), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, *f.pace.dryRun)

	w = doRequest(f.router, http.MethodPost, "/api/v1/pace/repair?dryRun=maybe", bearer(t, models.RoleAdmin), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(f.router, http.MethodGet, "/api/v1/students/111223333/deadlines", auth, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(f.router, http.MethodGet, "/api/v1/deadlines", auth, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
}

func TestRegistrationRoutes(t *testing.T) {
	f := newFixture()
	admin := bearer(t, models.RoleAdmin)

	w := doRequest(f.router, http.MethodGet, "/api/v1/students/111223333/registrations", bearer(t, models.RoleViewer), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"course":"M 117"`)

	w = doRequest(f.router, http.MethodPatch, "/api/v1/registrations/FA24/111223333/M%20117/001/open-status", admin, dto.UpdateOpenStatusRequest{OpenStatus: "D"})
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "M 117", f.registrations.key.Course)
	assert.Equal(t, "D", f.registrations.status)

	order := 2
	w = doRequest(f.router, http.MethodPatch, "/api/v1/registrations/FA24/111223333/M%20117/001/pace-order", admin, dto.UpdatePaceOrderRequest{PaceOrder: &order})
	require.Equal(t, http.StatusNoContent, w.Code)
	require.NotNil(t, f.registrations.order)
	assert.Equal(t, 2, *f.registrations.order)

	w = doRequest(f.router, http.MethodPatch, "/api/v1/registrations/FA24/111223333/M%20117/001/grading-option", admin, dto.UpdateGradingOptionRequest{GradingOption: "L"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(f.router, http.MethodPatch, "/api/v1/registrations/QQ24/111223333/M%20117/001/open-status", admin, dto.UpdateOpenStatusRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(f.router, http.MethodPatch, "/api/v1/registrations/FA24/111223333/M%20117/001/open-status", bearer(t, models.RoleAdvisor), dto.UpdateOpenStatusRequest{OpenStatus: "Y"})
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doRequest(f.router, http.MethodPatch, "/api/v1/registrations/FA24/111223333/M%20117/001/open-status", bearer(t, models.RoleViewer), dto.UpdateOpenStatusRequest{})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestMetricsHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewMetricsHandler(service.NewMetricsService(), pingStub{err: errors.New("refused")})
	r.GET("/health", h.Health)
	r.GET("/ready", h.Ready)
	r.GET("/metrics", h.Prometheus)
	r.GET("/metrics/summary", h.Summary)

	assert.Equal(t, http.StatusOK, doRequest(r, http.MethodGet, "/health", "", nil).Code)
	assert.Equal(t, http.StatusServiceUnavailable, doRequest(r, http.MethodGet, "/ready", "", nil).Code)

	w := doRequest(r, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "goroutines_total")

	w = doRequest(r, http.MethodGet, "/metrics/summary", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "cache_hit_ratio")
}

type pingStub struct{ err error }

func (p pingStub) PingContext(ctx context.Context) error { return p.err }
