package pacing

import (
	"time"

	"github.com/srbenoit/mathops-db-sub010/internal/models"
)

// Deadline is the date a student must meet for one milestone.
type Deadline struct {
	Slot            Slot             `json:"slot"`
	Track           models.PaceTrack `json:"pace_track"`
	Date            time.Time        `json:"date"`
	Overridden      bool             `json:"overridden"`
	AttemptsAllowed *int             `json:"attempts_allowed,omitempty"`
}

// ResolveDeadline starts from the template milestone (which may be nil) and
// applies the latest-dated matching override. When several overrides share
// the latest date, the last one in list order wins. It returns false when
// neither a dated template nor a matching override exists.
func ResolveDeadline(track models.PaceTrack, slot Slot, template *models.Milestone, overrides []models.StudentMilestone) (Deadline, bool) {
	d := Deadline{Slot: slot, Track: track}
	found := false
	if template != nil && template.Date.Valid {
		d.Date = template.Date.Time
		d.AttemptsAllowed = template.AttemptsAllowed.Ptr()
		found = true
	}

	var best *models.StudentMilestone
	for i := range overrides {
		o := &overrides[i]
		if o.Track != track || o.Number != slot.Number || o.Type != slot.Type || !o.Date.Valid {
			continue
		}
		if best == nil || !o.Date.Time.Before(best.Date.Time) {
			best = o
		}
	}
	if best != nil {
		d.Date = best.Date.Time
		d.Overridden = true
		if best.AttemptsAllowed.Valid {
			d.AttemptsAllowed = best.AttemptsAllowed.Ptr()
		}
		found = true
	}
	return d, found
}

// CompletionStatus compares when a milestone was met with its deadlines.
type CompletionStatus string

const (
	StatusOnTime  CompletionStatus = "on_time"
	StatusLastTry CompletionStatus = "last_try"
	StatusOverdue CompletionStatus = "overdue"
	StatusPending CompletionStatus = "pending"
)

// Evaluate rates a completion against the primary deadline and, when the
// milestone has one, its last-try deadline. completed is nil when the student
// has not yet met the milestone; asOf is the evaluation day.
func Evaluate(primary time.Time, lastTry *time.Time, completed *time.Time, asOf time.Time) CompletionStatus {
	final := primary
	if lastTry != nil && lastTry.After(primary) {
		final = *lastTry
	}
	if completed == nil {
		if asOf.After(final) {
			return StatusOverdue
		}
		return StatusPending
	}
	switch {
	case !completed.After(primary):
		return StatusOnTime
	case !completed.After(final):
		return StatusLastTry
	default:
		return StatusOverdue
	}
}
