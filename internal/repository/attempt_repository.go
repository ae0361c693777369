package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/srbenoit/mathops-db-sub010/internal/models"
)

const (
	examColumns     = `serial_nbr, stu_id, course, unit, version, exam_type, exam_dt, exam_score, passed, is_first_passed, how_validated`
	homeworkColumns = `serial_nbr, stu_id, course, unit, objective, version, hw_dt, hw_score, passed`
)

// ExamRepository reads rows of the stexam table.
type ExamRepository struct {
	db *sqlx.DB
}

// NewExamRepository constructs the repository.
func NewExamRepository(db *sqlx.DB) *ExamRepository {
	return &ExamRepository{db: db}
}

// ListByStudent returns a student's exam attempts in [from, to], oldest first.
func (r *ExamRepository) ListByStudent(ctx context.Context, studentID string, from, to time.Time) ([]models.ExamAttempt, error) {
	query := fmt.Sprintf("SELECT %s FROM stexam WHERE stu_id = $1 AND exam_dt BETWEEN $2 AND $3 ORDER BY exam_dt, serial_nbr", examColumns)
	var exams []models.ExamAttempt
	if err := r.db.SelectContext(ctx, &exams, query, studentID, from, to); err != nil {
		return nil, fmt.Errorf("list student exams: %w", err)
	}
	return exams, nil
}

// ListPassedInRange returns passed exam attempts of every student in [from, to], oldest first.
func (r *ExamRepository) ListPassedInRange(ctx context.Context, from, to time.Time) ([]models.ExamAttempt, error) {
	query := fmt.Sprintf("SELECT %s FROM stexam WHERE passed = 'Y' AND exam_dt BETWEEN $1 AND $2 ORDER BY stu_id, exam_dt, serial_nbr", examColumns)
	var exams []models.ExamAttempt
	if err := r.db.SelectContext(ctx, &exams, query, from, to); err != nil {
		return nil, fmt.Errorf("list passed exams: %w", err)
	}
	return exams, nil
}

// HomeworkRepository reads rows of the sthomework table.
type HomeworkRepository struct {
	db *sqlx.DB
}

// NewHomeworkRepository constructs the repository.
func NewHomeworkRepository(db *sqlx.DB) *HomeworkRepository {
	return &HomeworkRepository{db: db}
}

// ListByStudent returns a student's homework attempts in [from, to], oldest first.
func (r *HomeworkRepository) ListByStudent(ctx context.Context, studentID string, from, to time.Time) ([]models.HomeworkAttempt, error) {
	query := fmt.Sprintf("SELECT %s FROM sthomework WHERE stu_id = $1 AND hw_dt BETWEEN $2 AND $3 ORDER BY hw_dt, serial_nbr", homeworkColumns)
	var hws []models.HomeworkAttempt
	if err := r.db.SelectContext(ctx, &hws, query, studentID, from, to); err != nil {
		return nil, fmt.Errorf("list student homework: %w", err)
	}
	return hws, nil
}

// LatestActivity returns, per student, the most recent exam or homework date in [from, to].
func (r *HomeworkRepository) LatestActivity(ctx context.Context, from, to time.Time) ([]models.StudentActivity, error) {
	const query = `SELECT stu_id, MAX(dt) AS last_dt FROM (
        SELECT stu_id, hw_dt AS dt FROM sthomework WHERE hw_dt BETWEEN $1 AND $2
        UNION ALL
        SELECT stu_id, exam_dt AS dt FROM stexam WHERE exam_dt BETWEEN $1 AND $2
        ) activity GROUP BY stu_id ORDER BY stu_id`
	var out []models.StudentActivity
	if err := r.db.SelectContext(ctx, &out, query, from, to); err != nil {
		return nil, fmt.Errorf("latest student activity: %w", err)
	}
	return out, nil
}
