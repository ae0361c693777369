package pacing

import (
	"fmt"
	"sort"
	"time"

	"github.com/srbenoit/mathops-db-sub010/internal/models"
)

// IssueKind classifies a data-integrity finding.
type IssueKind string

const (
	IssueMissing       IssueKind = "missing"
	IssueDuplicate     IssueKind = "duplicate"
	IssueUnexpected    IssueKind = "unexpected"
	IssueOutOfTerm     IssueKind = "out_of_term"
	IssueOutOfSequence IssueKind = "out_of_sequence"
	IssueNoDate        IssueKind = "no_date"
)

// Issue is one finding. Issues are reported, never raised.
type Issue struct {
	Kind    IssueKind            `json:"kind"`
	Pace    int                  `json:"pace"`
	Track   models.PaceTrack     `json:"pace_track"`
	Number  int                  `json:"ms_nbr"`
	Type    models.MilestoneType `json:"ms_type"`
	Message string               `json:"message"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: pace %d track %s milestone %d %s: %s", i.Kind, i.Pace, i.Track, i.Number, i.Type, i.Message)
}

func issueFor(kind IssueKind, m models.Milestone, format string, args ...any) Issue {
	return Issue{Kind: kind, Pace: m.Pace, Track: m.Track, Number: m.Number, Type: m.Type, Message: fmt.Sprintf(format, args...)}
}

// Report accumulates issues across checks.
type Report struct {
	Issues []Issue `json:"issues"`
}

// Add appends issues.
func (r *Report) Add(issues ...Issue) {
	r.Issues = append(r.Issues, issues...)
}

// OK reports whether no issues were found.
func (r *Report) OK() bool {
	return len(r.Issues) == 0
}

// Count returns the number of issues of kind.
func (r *Report) Count(kind IssueKind) int {
	n := 0
	for _, i := range r.Issues {
		if i.Kind == kind {
			n++
		}
	}
	return n
}

// CountByKind tallies issues per kind.
func (r *Report) CountByKind() map[IssueKind]int {
	out := make(map[IssueKind]int)
	for _, i := range r.Issues {
		out[i.Kind]++
	}
	return out
}

// CheckSequence reports every position where a milestone's date precedes the
// date of the milestone listed before it. Equal dates are accepted and
// milestones without a date are skipped.
func CheckSequence(ms []models.Milestone) []Issue {
	var issues []Issue
	var prev *models.Milestone
	for i := range ms {
		cur := &ms[i]
		if !cur.Date.Valid {
			continue
		}
		if prev != nil && cur.Date.Time.Before(prev.Date.Time) {
			issues = append(issues, issueFor(IssueOutOfSequence, *cur,
				"date %s precedes %s of milestone %d %s",
				cur.Date, prev.Date, prev.Number, prev.Type))
		}
		prev = cur
	}
	return issues
}

// CheckCompleteness compares the milestones recorded for (pace, track) with
// the expected schedule and reports missing, duplicated and unexpected slots.
func CheckCompleteness(pace int, track models.PaceTrack, ms []models.Milestone) []Issue {
	var issues []Issue
	expected := ExpectedSlots(pace)
	want := make(map[Slot]bool, len(expected))
	for _, s := range expected {
		want[s] = true
	}

	seen := make(map[Slot]int, len(ms))
	for _, m := range ms {
		slot := SlotOf(m)
		seen[slot]++
		switch {
		case !want[slot]:
			issues = append(issues, issueFor(IssueUnexpected, m, "not part of the pace %d schedule", pace))
		case seen[slot] == 2:
			issues = append(issues, issueFor(IssueDuplicate, m, "recorded more than once"))
		}
	}

	for _, s := range expected {
		if seen[s] == 0 {
			issues = append(issues, Issue{
				Kind:    IssueMissing,
				Pace:    pace,
				Track:   track,
				Number:  s.Number,
				Type:    s.Type,
				Message: "expected milestone not found",
			})
		}
	}
	return issues
}

// CheckTermBounds reports milestones without a date or dated outside [start, end].
func CheckTermBounds(start, end time.Time, ms []models.Milestone) []Issue {
	var issues []Issue
	for _, m := range ms {
		if !m.Date.Valid {
			issues = append(issues, issueFor(IssueNoDate, m, "milestone has no date"))
			continue
		}
		if m.Date.Time.Before(start) || m.Date.Time.After(end) {
			issues = append(issues, issueFor(IssueOutOfTerm, m, "date %s outside term %s to %s",
				m.Date, start.Format("2006-01-02"), end.Format("2006-01-02")))
		}
	}
	return issues
}

// CheckTrack runs completeness, bounds and sequence checks for one track.
// ms need not be sorted. Sequence is checked in milestone-number order
// within each milestone type, so a last-try date may fall after the next
// unit's review deadline.
func CheckTrack(pace int, track models.PaceTrack, start, end time.Time, ms []models.Milestone) []Issue {
	sorted := make([]models.Milestone, len(ms))
	copy(sorted, ms)
	SortMilestones(sorted)

	var issues []Issue
	issues = append(issues, CheckCompleteness(pace, track, sorted)...)
	issues = append(issues, CheckTermBounds(start, end, sorted)...)
	for _, group := range groupByType(sorted) {
		issues = append(issues, CheckSequence(group)...)
	}
	return issues
}

// groupByType splits sorted milestones by type, keeping number order inside
// each group. Groups come back in type-rank order.
func groupByType(sorted []models.Milestone) [][]models.Milestone {
	index := make(map[models.MilestoneType]int)
	var groups [][]models.Milestone
	for _, m := range sorted {
		i, ok := index[m.Type]
		if !ok {
			i = len(groups)
			index[m.Type] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], m)
	}
	sort.SliceStable(groups, func(a, b int) bool {
		return TypeRank(groups[a][0].Type) < TypeRank(groups[b][0].Type)
	})
	return groups
}

// TrackKey identifies a (pace, track) schedule.
type TrackKey struct {
	Pace  int
	Track models.PaceTrack
}

// ValidateSchedule checks every valid (pace, track) of a term. Milestones
// filed under a pace or track that does not exist are reported as unexpected.
func ValidateSchedule(start, end time.Time, ms []models.Milestone) *Report {
	groups := make(map[TrackKey][]models.Milestone)
	for _, m := range ms {
		k := TrackKey{Pace: m.Pace, Track: m.Track}
		groups[k] = append(groups[k], m)
	}

	report := &Report{}
	for pace := 1; pace <= MaxPace; pace++ {
		for _, track := range trackSets[pace] {
			k := TrackKey{Pace: pace, Track: track}
			report.Add(CheckTrack(pace, track, start, end, groups[k])...)
			delete(groups, k)
		}
	}

	orphans := make([]models.Milestone, 0)
	for _, group := range groups {
		orphans = append(orphans, group...)
	}
	sortOrphans(orphans)
	for _, m := range orphans {
		report.Add(issueFor(IssueUnexpected, m, "no schedule exists for pace %d track %s", m.Pace, m.Track))
	}
	return report
}

func sortOrphans(ms []models.Milestone) {
	sort.SliceStable(ms, func(i, j int) bool {
		a, b := ms[i], ms[j]
		if a.Pace != b.Pace {
			return a.Pace < b.Pace
		}
		if a.Track != b.Track {
			return a.Track < b.Track
		}
		if a.Number != b.Number {
			return a.Number < b.Number
		}
		return TypeRank(a.Type) < TypeRank(b.Type)
	})
}

// CheckOverrides reports student overrides that name a track or slot absent
// from the schedule of the pace encoded in their milestone number.
func CheckOverrides(overrides []models.StudentMilestone) []Issue {
	expected := make(map[int]map[Slot]bool)
	var issues []Issue
	for _, o := range overrides {
		pace := o.Pace()
		issue := Issue{Kind: IssueUnexpected, Pace: pace, Track: o.Track, Number: o.Number, Type: o.Type}
		if !ValidTrack(pace, o.Track) {
			issue.Message = fmt.Sprintf("override for student %s names a track that does not exist", o.StudentID.Str)
			issues = append(issues, issue)
			continue
		}
		if expected[pace] == nil {
			expected[pace] = make(map[Slot]bool)
			for _, s := range ExpectedSlots(pace) {
				expected[pace][s] = true
			}
		}
		if !expected[pace][Slot{Number: o.Number, Type: o.Type}] {
			issue.Message = fmt.Sprintf("override for student %s names a milestone outside the schedule", o.StudentID.Str)
			issues = append(issues, issue)
		}
	}
	return issues
}
