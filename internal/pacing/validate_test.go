package pacing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srbenoit/mathops-db-sub010/internal/models"
	"github.com/srbenoit/mathops-db-sub010/pkg/fields"
)

func TestCheckSequenceAcceptsNonDecreasing(t *testing.T) {
	ms := []models.Milestone{
		{Number: 111, Type: models.MilestoneReviewExam, Date: fields.NewDate(termStart)},
		{Number: 111, Type: models.MilestoneUnitExam, Date: fields.NewDate(termStart)},
		{Number: 112, Type: models.MilestoneReviewExam, Date: fields.NewDate(termStart.AddDate(0, 0, 3))},
		{Number: 113, Type: models.MilestoneReviewExam, Date: fields.NewDate(termStart.AddDate(0, 0, 3))},
	}
	assert.Empty(t, CheckSequence(ms))
	assert.Empty(t, CheckSequence(nil))
}

func TestCheckSequenceRejectsInversion(t *testing.T) {
	ms := []models.Milestone{
		{Pace: 1, Track: models.TrackA, Number: 111, Type: models.MilestoneReviewExam, Date: fields.NewDate(termStart.AddDate(0, 0, 5))},
		{Pace: 1, Track: models.TrackA, Number: 112, Type: models.MilestoneReviewExam, Date: fields.NewDate(termStart.AddDate(0, 0, 4))},
		{Pace: 1, Track: models.TrackA, Number: 113, Type: models.MilestoneReviewExam, Date: fields.NewDate(termStart.AddDate(0, 0, 6))},
	}
	issues := CheckSequence(ms)
	require.Len(t, issues, 1)
	assert.Equal(t, IssueOutOfSequence, issues[0].Kind)
	assert.Equal(t, 112, issues[0].Number)
}

func TestCheckSequenceSkipsUndated(t *testing.T) {
	ms := []models.Milestone{
		{Number: 111, Date: fields.NewDate(termStart.AddDate(0, 0, 2))},
		{Number: 112},
		{Number: 113, Date: fields.NewDate(termStart.AddDate(0, 0, 1))},
	}
	issues := CheckSequence(ms)
	require.Len(t, issues, 1)
	assert.Equal(t, 113, issues[0].Number)
}

func TestValidateScheduleCompleteTermHasNoIssues(t *testing.T) {
	report := ValidateSchedule(termStart, termEnd, fullTerm())
	assert.True(t, report.OK(), "unexpected issues: %v", report.Issues)
}

func TestValidateScheduleReportsSingleMissingMilestone(t *testing.T) {
	all := fullTerm()
	kept := all[:0]
	removed := 0
	for _, m := range all {
		if m.Pace == 2 && m.Track == models.TrackA && m.Number == 211 && m.Type == models.MilestoneReviewExam {
			removed++
			continue
		}
		kept = append(kept, m)
	}
	require.Equal(t, 1, removed)

	report := ValidateSchedule(termStart, termEnd, kept)
	require.Len(t, report.Issues, 1)
	issue := report.Issues[0]
	assert.Equal(t, IssueMissing, issue.Kind)
	assert.Equal(t, 2, issue.Pace)
	assert.Equal(t, models.TrackA, issue.Track)
	assert.Equal(t, 211, issue.Number)
	assert.Equal(t, models.MilestoneReviewExam, issue.Type)
	assert.Contains(t, issue.String(), "pace 2 track A milestone 211 RE")
}

func TestValidateScheduleFindsBoundsDuplicatesAndOrphans(t *testing.T) {
	all := fullTerm()
	for i := range all {
		if all[i].Pace == 5 && all[i].Number == 558 && all[i].Type == models.MilestoneFinalLastTry {
			all[i].Date = fields.NewDate(termEnd.AddDate(0, 0, 1))
		}
	}
	dup := scheduleFor(3, models.TrackB)[10]
	orphan := models.Milestone{Pace: 4, Track: models.TrackD, Number: 411, Type: models.MilestoneReviewExam, Date: fields.NewDate(termStart)}
	stray := models.Milestone{Pace: 1, Track: models.TrackA, Number: 199, Type: models.MilestoneReviewExam, Date: fields.NewDate(termEnd)}
	undated := models.Milestone{Pace: 1, Track: models.TrackB, Number: 111, Type: models.MilestoneReviewExam}
	all = append(all, dup, orphan, stray, undated)

	report := ValidateSchedule(termStart, termEnd, all)
	counts := report.CountByKind()
	assert.Equal(t, 1, counts[IssueOutOfTerm])
	assert.Equal(t, 2, counts[IssueDuplicate])
	assert.Equal(t, 2, counts[IssueUnexpected])
	assert.Equal(t, 1, counts[IssueNoDate])
	assert.Zero(t, counts[IssueMissing])
	assert.Zero(t, counts[IssueOutOfSequence])
	assert.Equal(t, 1, report.Count(IssueOutOfTerm))
}

func TestCheckTrackOrdersEachTypeByNumber(t *testing.T) {
	at := func(ms []models.Milestone, nbr int, typ models.MilestoneType) *models.Milestone {
		for i := range ms {
			if ms[i].Number == nbr && ms[i].Type == typ {
				return &ms[i]
			}
		}
		t.Fatalf("milestone %d %s not in schedule", nbr, typ)
		return nil
	}

	lateRetry := scheduleFor(1, models.TrackA)
	at(lateRetry, 111, models.MilestoneReviewLastTry).Date = fields.NewDate(termStart.AddDate(0, 0, 3))
	assert.Empty(t, CheckTrack(1, models.TrackA, termStart, termEnd, lateRetry))

	inverted := scheduleFor(1, models.TrackA)
	at(inverted, 113, models.MilestoneReviewExam).Date = fields.NewDate(termStart)
	issues := CheckTrack(1, models.TrackA, termStart, termEnd, inverted)
	require.Len(t, issues, 1)
	assert.Equal(t, IssueOutOfSequence, issues[0].Kind)
	assert.Equal(t, 113, issues[0].Number)
	assert.Equal(t, models.MilestoneReviewExam, issues[0].Type)
}

func TestCheckCompletenessOnEmptyTrack(t *testing.T) {
	issues := CheckCompleteness(4, models.TrackB, nil)
	assert.Len(t, issues, ExpectedCount(4))
	for _, i := range issues {
		assert.Equal(t, IssueMissing, i.Kind)
		assert.Equal(t, models.TrackB, i.Track)
	}
}

func TestCheckOverrides(t *testing.T) {
	overrides := []models.StudentMilestone{
		{StudentID: fields.NewString("823251213"), Track: models.TrackA, Number: 211, Type: models.MilestoneReviewExam},
		{StudentID: fields.NewString("823251213"), Track: models.TrackD, Number: 211, Type: models.MilestoneReviewExam},
		{StudentID: fields.NewString("888888888"), Track: models.TrackB, Number: 219, Type: models.MilestoneUnitExam},
		{StudentID: fields.NewString("888888888"), Track: models.TrackB, Number: 228, Type: models.MilestoneFinalLastTry},
	}
	issues := CheckOverrides(overrides)
	require.Len(t, issues, 2)
	assert.Equal(t, models.TrackD, issues[0].Track)
	assert.Contains(t, issues[0].Message, "track")
	assert.Equal(t, 219, issues[1].Number)
	assert.Equal(t, 2, issues[1].Pace)
}
