package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/srbenoit/mathops-db-sub010/internal/models"
)

const registrationColumns = `stu_id, course, sect, term, term_yr, pace_order, open_status, grading_option, completed, score,
        course_grade, prereq_satis, init_class_roll, stu_provided, final_class_roll, exam_placed, zero_unit, forfeit_i,
        i_in_progress, i_counted, i_term, i_term_yr, i_deadline_dt, deferred_f_dt, instrn_type, registration_status,
        last_class_roll_dt`

// RegistrationFilter narrows registration queries within a term.
type RegistrationFilter struct {
	StudentID string
	OnlyPaced bool
}

// RegistrationRepository reads and updates rows of the stcourse table.
type RegistrationRepository struct {
	db *sqlx.DB
}

// NewRegistrationRepository constructs the repository.
func NewRegistrationRepository(db *sqlx.DB) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

// ListByTerm returns registrations of a term ordered by student and course.
func (r *RegistrationRepository) ListByTerm(ctx context.Context, term models.TermKey, filter RegistrationFilter) ([]models.Registration, error) {
	conditions := []string{"term = $1", "term_yr = $2"}
	args := []interface{}{string(term.Name), term.ShortYear()}

	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("stu_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.OnlyPaced {
		placeholders := make([]string, 0, len(models.PacedCourses))
		for _, c := range models.PacedCourses {
			placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)+1))
			args = append(args, c)
		}
		conditions = append(conditions, "course IN ("+strings.Join(placeholders, ", ")+")")
	}

	query := fmt.Sprintf("SELECT %s FROM stcourse WHERE %s ORDER BY stu_id, course", registrationColumns, strings.Join(conditions, " AND "))

	var regs []models.Registration
	if err := r.db.SelectContext(ctx, &regs, query, args...); err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	return regs, nil
}

// ListByStudent returns one student's registrations in a term.
func (r *RegistrationRepository) ListByStudent(ctx context.Context, term models.TermKey, studentID string) ([]models.Registration, error) {
	return r.ListByTerm(ctx, term, RegistrationFilter{StudentID: studentID})
}

// UpdatePaceOrder sets the pace order of one registration.
func (r *RegistrationRepository) UpdatePaceOrder(ctx context.Context, key models.RegistrationKey, order *int) error {
	var value interface{}
	if order != nil {
		value = *order
	}
	return r.updateField(ctx, "pace_order", value, key)
}

// UpdateOpenStatus sets the open status of one registration.
func (r *RegistrationRepository) UpdateOpenStatus(ctx context.Context, key models.RegistrationKey, status models.OpenStatus) error {
	var value interface{}
	if status != models.OpenStatusNotOpened {
		value = string(status)
	}
	return r.updateField(ctx, "open_status", value, key)
}

// UpdateGradingOption sets the grading option of one registration.
func (r *RegistrationRepository) UpdateGradingOption(ctx context.Context, key models.RegistrationKey, option models.GradingOption) error {
	return r.updateField(ctx, "grading_option", string(option), key)
}

func (r *RegistrationRepository) updateField(ctx context.Context, column string, value interface{}, key models.RegistrationKey) error {
	query := fmt.Sprintf("UPDATE stcourse SET %s = $1 WHERE stu_id = $2 AND course = $3 AND sect = $4 AND term = $5 AND term_yr = $6", column)
	res, err := r.db.ExecContext(ctx, query, value, key.StudentID, key.Course, key.Section, string(key.Term.Name), key.Term.ShortYear())
	if err != nil {
		return fmt.Errorf("update registration %s: %w", column, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update registration %s: %w", column, err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
