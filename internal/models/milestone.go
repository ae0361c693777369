package models

import (
	"database/sql/driver"

	"github.com/srbenoit/mathops-db-sub010/pkg/fields"
)

// PaceTrack labels one of the standard schedules for a pace.
type PaceTrack string

const (
	TrackA PaceTrack = "A"
	TrackB PaceTrack = "B"
	TrackC PaceTrack = "C"
	TrackD PaceTrack = "D"
)

// Scan trims the fixed-width column value.
func (t *PaceTrack) Scan(src any) error {
	v, _ := fields.TrimmedString(src)
	*t = PaceTrack(v)
	return nil
}

// Value implements driver.Valuer.
func (t PaceTrack) Value() (driver.Value, error) {
	return string(t), nil
}

// MilestoneType distinguishes the deadlines sharing a milestone number.
type MilestoneType string

const (
	MilestoneUsersExam     MilestoneType = "US"
	MilestoneReviewExam    MilestoneType = "RE"
	MilestoneReviewLastTry MilestoneType = "R1"
	MilestoneUnitExam      MilestoneType = "UE"
	MilestoneUnitLastTry   MilestoneType = "U1"
	MilestoneMidterm       MilestoneType = "MT"
	MilestoneFinalExam     MilestoneType = "FE"
	MilestoneFinalLastTry  MilestoneType = "F1"
)

// Scan trims the fixed-width column value.
func (m *MilestoneType) Scan(src any) error {
	v, _ := fields.TrimmedString(src)
	*m = MilestoneType(v)
	return nil
}

// Value implements driver.Valuer.
func (m MilestoneType) Value() (driver.Value, error) {
	return string(m), nil
}

// Milestone is a term-wide deadline template row of the milestone table.
type Milestone struct {
	TermName        fields.String `db:"term" json:"term"`
	TermYear        fields.Year   `db:"term_yr" json:"term_yr"`
	Pace            int           `db:"pace" json:"pace"`
	Track           PaceTrack     `db:"pace_track" json:"pace_track"`
	Number          int           `db:"ms_nbr" json:"ms_nbr"`
	Type            MilestoneType `db:"ms_type" json:"ms_type"`
	Date            fields.Date   `db:"ms_date" json:"ms_date"`
	AttemptsAllowed fields.Int    `db:"nbr_atmpts_allow" json:"nbr_atmpts_allow"`
}

// StudentMilestone is a personalized deadline override row of the stmilestone table.
// The pace is carried in the milestone number.
type StudentMilestone struct {
	StudentID       fields.String `db:"stu_id" json:"stu_id"`
	TermName        fields.String `db:"term" json:"term"`
	TermYear        fields.Year   `db:"term_yr" json:"term_yr"`
	Track           PaceTrack     `db:"pace_track" json:"pace_track"`
	Number          int           `db:"ms_nbr" json:"ms_nbr"`
	Type            MilestoneType `db:"ms_type" json:"ms_type"`
	Date            fields.Date   `db:"ms_date" json:"ms_date"`
	AttemptsAllowed fields.Int    `db:"nbr_atmpts_allow" json:"nbr_atmpts_allow"`
}

// Pace derives the pace from the milestone number.
func (m StudentMilestone) Pace() int {
	return m.Number / 100
}
