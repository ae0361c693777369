package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srbenoit/mathops-db-sub010/internal/models"
	"github.com/srbenoit/mathops-db-sub010/internal/pacing"
	appErrors "github.com/srbenoit/mathops-db-sub010/pkg/errors"
	"github.com/srbenoit/mathops-db-sub010/pkg/fields"
)

func TestMilestoneServiceMilestonesForCaches(t *testing.T) {
	term := fall24Term()
	repo := &milestoneRepoFake{rows: trackSchedule(term, 2, models.TrackA)}
	cache := newCacheFake()
	svc := NewMilestoneService(repo, &overrideRepoFake{}, cache, nil, MilestoneServiceConfig{CacheTTL: time.Minute}, nil)
	ctx := context.Background()

	schedule, err := svc.MilestonesFor(ctx, term, 2, models.TrackA)
	require.NoError(t, err)
	assert.Len(t, schedule.Milestones, 63)
	assert.Empty(t, schedule.Issues)
	assert.Equal(t, "FA24", schedule.Term)

	again, err := svc.MilestonesFor(ctx, term, 2, models.TrackA)
	require.NoError(t, err)
	assert.Len(t, again.Milestones, 63)
	assert.Equal(t, 1, repo.trackCalls)

	require.NoError(t, svc.InvalidateTerm(ctx, term.Key()))
	assert.Equal(t, []string{"mathops:milestones:FA24:*"}, cache.invalidated)
}

func TestMilestoneServiceDoesNotCacheEmptySchedule(t *testing.T) {
	term := fall24Term()
	repo := &milestoneRepoFake{}
	cache := newCacheFake()
	svc := NewMilestoneService(repo, &overrideRepoFake{}, cache, nil, MilestoneServiceConfig{CacheTTL: time.Minute}, nil)
	ctx := context.Background()

	schedule, err := svc.MilestonesFor(ctx, term, 2, models.TrackA)
	require.NoError(t, err)
	assert.Empty(t, schedule.Milestones)
	assert.Empty(t, cache.data)

	repo.rows = trackSchedule(term, 2, models.TrackA)
	loaded, err := svc.MilestonesFor(ctx, term, 2, models.TrackA)
	require.NoError(t, err)
	assert.Len(t, loaded.Milestones, 63)
	assert.Empty(t, loaded.Issues)
	assert.Equal(t, 2, repo.trackCalls)
}

func TestMilestoneServiceMilestonesForReportsGaps(t *testing.T) {
	term := fall24Term()
	rows := trackSchedule(term, 1, models.TrackB)
	rows = rows[:len(rows)-1]
	svc := NewMilestoneService(&milestoneRepoFake{rows: rows}, &overrideRepoFake{}, nil, nil, MilestoneServiceConfig{}, nil)

	schedule, err := svc.MilestonesFor(context.Background(), term, 1, models.TrackB)
	require.NoError(t, err)
	require.Len(t, schedule.Issues, 1)
	assert.Equal(t, pacing.IssueMissing, schedule.Issues[0].Kind)
	assert.Equal(t, models.MilestoneFinalLastTry, schedule.Issues[0].Type)
}

func TestMilestoneServiceMilestonesForRejects(t *testing.T) {
	svc := NewMilestoneService(&milestoneRepoFake{}, &overrideRepoFake{}, nil, nil, MilestoneServiceConfig{}, nil)
	ctx := context.Background()

	_, err := svc.MilestonesFor(ctx, fall24Term(), 4, models.TrackC)
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	undated := fall24Term()
	undated.EndDate = fields.Date{}
	_, err = svc.MilestonesFor(ctx, undated, 1, models.TrackA)
	assert.ErrorIs(t, err, appErrors.ErrConflict)

	_, err = svc.MilestonesFor(ctx, nil, 1, models.TrackA)
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	broken := NewMilestoneService(&milestoneRepoFake{err: errors.New("timeout")}, &overrideRepoFake{}, nil, nil, MilestoneServiceConfig{}, nil)
	_, err = broken.MilestonesFor(ctx, fall24Term(), 1, models.TrackA)
	assert.ErrorIs(t, err, appErrors.ErrInternal)
}

func TestMilestoneServiceValidateTerm(t *testing.T) {
	term := fall24Term()
	rows := termSchedule(term)
	svc := NewMilestoneService(&milestoneRepoFake{rows: rows}, &overrideRepoFake{}, nil, nil, MilestoneServiceConfig{}, nil)

	report, err := svc.ValidateTerm(context.Background(), term)
	require.NoError(t, err)
	assert.True(t, report.OK(), "issues: %v", report.Issues)

	trimmed := make([]models.Milestone, 0, len(rows))
	for _, m := range rows {
		if m.Pace == 2 && m.Track == models.TrackA && m.Number == 211 && m.Type == models.MilestoneReviewExam {
			continue
		}
		trimmed = append(trimmed, m)
	}
	overrides := []models.StudentMilestone{{
		StudentID: fields.NewString("111223333"),
		Track:     models.TrackD,
		Number:    211,
		Type:      models.MilestoneReviewExam,
		Date:      fields.NewDate(day(2024, time.September, 3)),
	}}
	svc = NewMilestoneService(&milestoneRepoFake{rows: trimmed}, &overrideRepoFake{rows: overrides}, nil, nil, MilestoneServiceConfig{}, nil)

	report, err = svc.ValidateTerm(context.Background(), term)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Count(pacing.IssueMissing))
	assert.Equal(t, 1, report.Count(pacing.IssueUnexpected))
	assert.Len(t, report.Issues, 2)
}

func TestMilestoneServiceEffectiveDeadline(t *testing.T) {
	term := fall24Term()
	rows := trackSchedule(term, 1, models.TrackA)
	later := day(2024, time.September, 20)
	overrides := []models.StudentMilestone{
		{StudentID: fields.NewString("111223333"), Track: models.TrackA, Number: 111, Type: models.MilestoneReviewExam, Date: fields.NewDate(day(2024, time.September, 15))},
		{StudentID: fields.NewString("111223333"), Track: models.TrackA, Number: 111, Type: models.MilestoneReviewExam, Date: fields.NewDate(later)},
		{StudentID: fields.NewString("999999999"), Track: models.TrackA, Number: 111, Type: models.MilestoneReviewExam, Date: fields.NewDate(day(2024, time.October, 1))},
	}
	svc := NewMilestoneService(&milestoneRepoFake{rows: rows}, &overrideRepoFake{rows: overrides}, nil, nil, MilestoneServiceConfig{}, nil)
	ctx := context.Background()
	slot := pacing.Slot{Number: 111, Type: models.MilestoneReviewExam}

	d, err := svc.EffectiveDeadline(ctx, term.Key(), "111223333", 1, models.TrackA, slot)
	require.NoError(t, err)
	assert.True(t, d.Overridden)
	assert.Equal(t, later, d.Date)

	d, err = svc.EffectiveDeadline(ctx, term.Key(), "222334444", 1, models.TrackA, slot)
	require.NoError(t, err)
	assert.False(t, d.Overridden)
	assert.Equal(t, rows[1].Date.Time, d.Date)

	_, err = svc.EffectiveDeadline(ctx, term.Key(), "222334444", 1, models.TrackA, pacing.Slot{Number: 191, Type: models.MilestoneReviewExam})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}
