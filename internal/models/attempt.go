package models

import "github.com/srbenoit/mathops-db-sub010/pkg/fields"

// ExamType values stored in stexam.exam_type.
type ExamType string

const (
	ExamTypeReview  ExamType = "R"
	ExamTypeUnit    ExamType = "U"
	ExamTypeMidterm ExamType = "M"
	ExamTypeFinal   ExamType = "F"
)

// ExamAttempt is a row of the stexam table.
type ExamAttempt struct {
	SerialNumber fields.Int    `db:"serial_nbr" json:"serial_nbr"`
	StudentID    fields.String `db:"stu_id" json:"stu_id"`
	Course       fields.String `db:"course" json:"course"`
	Unit         fields.Int    `db:"unit" json:"unit"`
	Version      fields.String `db:"version" json:"version"`
	ExamType     fields.String `db:"exam_type" json:"exam_type"`
	ExamDate     fields.Date   `db:"exam_dt" json:"exam_dt"`
	Score        fields.Int    `db:"exam_score" json:"exam_score"`
	Passed       fields.String `db:"passed" json:"passed"`
	IsFirstPass  fields.String `db:"is_first_passed" json:"is_first_passed"`
	HowValidated fields.String `db:"how_validated" json:"how_validated"`
}

// IsPassed reports whether the attempt passed.
func (e ExamAttempt) IsPassed() bool {
	return e.Passed.Is("Y")
}

// HomeworkAttempt is a row of the sthomework table.
type HomeworkAttempt struct {
	SerialNumber fields.Int    `db:"serial_nbr" json:"serial_nbr"`
	StudentID    fields.String `db:"stu_id" json:"stu_id"`
	Course       fields.String `db:"course" json:"course"`
	Unit         fields.Int    `db:"unit" json:"unit"`
	Objective    fields.String `db:"objective" json:"objective"`
	Version      fields.String `db:"version" json:"version"`
	HomeworkDate fields.Date   `db:"hw_dt" json:"hw_dt"`
	Score        fields.Int    `db:"hw_score" json:"hw_score"`
	Passed       fields.String `db:"passed" json:"passed"`
}

// IsPassed reports whether the attempt passed.
func (h HomeworkAttempt) IsPassed() bool {
	return h.Passed.Is("Y")
}

// StudentActivity summarizes a student's most recent exam or homework work.
type StudentActivity struct {
	StudentID    string      `db:"stu_id" json:"stu_id"`
	LastActivity fields.Date `db:"last_dt" json:"last_dt"`
}
