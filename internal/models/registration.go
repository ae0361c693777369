package models

import "github.com/srbenoit/mathops-db-sub010/pkg/fields"

// OpenStatus is a registration's administrative state.
type OpenStatus string

const (
	OpenStatusOpen      OpenStatus = "Y"
	OpenStatusClosed    OpenStatus = "N"
	OpenStatusDropped   OpenStatus = "D"
	OpenStatusForfeit   OpenStatus = "G"
	OpenStatusNotOpened OpenStatus = ""
)

// Valid reports whether s may be stored in open_status.
func (s OpenStatus) Valid() bool {
	switch s {
	case OpenStatusOpen, OpenStatusClosed, OpenStatusDropped, OpenStatusForfeit, OpenStatusNotOpened:
		return true
	}
	return false
}

// GradingOption values accepted by the registration table.
type GradingOption string

const (
	GradingOptionLetter GradingOption = "L"
	GradingOptionSU     GradingOption = "S"
)

// Valid reports whether g is a known grading option.
func (g GradingOption) Valid() bool {
	return g == GradingOptionLetter || g == GradingOptionSU
}

// Registration is a row of the stcourse table: one student's registration in
// one course section for a term.
type Registration struct {
	StudentID          fields.String `db:"stu_id" json:"stu_id"`
	Course             fields.String `db:"course" json:"course"`
	Section            fields.String `db:"sect" json:"sect"`
	TermName           fields.String `db:"term" json:"term"`
	TermYear           fields.Year   `db:"term_yr" json:"term_yr"`
	PaceOrder          fields.Int    `db:"pace_order" json:"pace_order"`
	OpenStatus         fields.String `db:"open_status" json:"open_status"`
	GradingOption      fields.String `db:"grading_option" json:"grading_option"`
	Completed          fields.String `db:"completed" json:"completed"`
	Score              fields.Int    `db:"score" json:"score"`
	CourseGrade        fields.String `db:"course_grade" json:"course_grade"`
	PrereqSatisfied    fields.String `db:"prereq_satis" json:"prereq_satis"`
	InitClassRoll      fields.String `db:"init_class_roll" json:"init_class_roll"`
	StudentProvided    fields.String `db:"stu_provided" json:"stu_provided"`
	FinalClassRoll     fields.String `db:"final_class_roll" json:"final_class_roll"`
	ExamPlaced         fields.String `db:"exam_placed" json:"exam_placed"`
	ZeroUnit           fields.Int    `db:"zero_unit" json:"zero_unit"`
	ForfeitIncomplete  fields.String `db:"forfeit_i" json:"forfeit_i"`
	IncompleteActive   fields.String `db:"i_in_progress" json:"i_in_progress"`
	IncompleteCounted  fields.String `db:"i_counted" json:"i_counted"`
	IncompleteTerm     fields.String `db:"i_term" json:"i_term"`
	IncompleteTermYear fields.Year   `db:"i_term_yr" json:"i_term_yr"`
	IncompleteDeadline fields.Date   `db:"i_deadline_dt" json:"i_deadline_dt"`
	DeferredFinalDate  fields.Date   `db:"deferred_f_dt" json:"deferred_f_dt"`
	InstructionType    fields.String `db:"instrn_type" json:"instrn_type"`
	RegistrationStatus fields.String `db:"registration_status" json:"registration_status"`
	LastClassRollDate  fields.Date   `db:"last_class_roll_dt" json:"last_class_roll_dt"`
}

// RegistrationKey identifies a single registration row.
type RegistrationKey struct {
	StudentID string
	Course    string
	Section   string
	Term      TermKey
}

// Key returns the row identity.
func (r Registration) Key() RegistrationKey {
	return RegistrationKey{
		StudentID: r.StudentID.Str,
		Course:    r.Course.Str,
		Section:   r.Section.Str,
		Term:      TermKey{Name: TermName(r.TermName.Str), Year: r.TermYear.Year},
	}
}

// CourseID returns the trimmed course identifier.
func (r Registration) CourseID() string {
	return r.Course.Str
}

// PaceOrderValue returns the stored pace order, if any.
func (r Registration) PaceOrderValue() (int, bool) {
	return int(r.PaceOrder.Int64), r.PaceOrder.Valid
}

// IsDropped reports whether the registration was dropped.
func (r Registration) IsDropped() bool {
	return r.OpenStatus.Is(string(OpenStatusDropped))
}

// CountsTowardPace reports whether the registration occupies a pace slot.
// Dropped registrations never count; an incomplete carried from an earlier
// term counts only when flagged as counted.
func (r Registration) CountsTowardPace() bool {
	if r.IsDropped() {
		return false
	}
	if r.IncompleteActive.Is("Y") && !r.IncompleteCounted.Is("Y") {
		return false
	}
	return IsPacedCourse(r.Course.Str)
}

// Compare orders registrations by student, course, section, then term, nulls first.
func (r Registration) Compare(o Registration) int {
	return fields.Chain(
		r.StudentID.Compare(o.StudentID),
		r.Course.Compare(o.Course),
		r.Section.Compare(o.Section),
		r.TermYear.Compare(o.TermYear),
		r.TermName.Compare(o.TermName),
	)
}
