package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/srbenoit/mathops-db-sub010/internal/models"
)

const (
	milestoneColumns        = `term, term_yr, pace, pace_track, ms_nbr, ms_type, ms_date, nbr_atmpts_allow`
	studentMilestoneColumns = `stu_id, term, term_yr, pace_track, ms_nbr, ms_type, ms_date, nbr_atmpts_allow`
)

// MilestoneRepository reads the term-wide milestone templates.
type MilestoneRepository struct {
	db *sqlx.DB
}

// NewMilestoneRepository constructs the repository.
func NewMilestoneRepository(db *sqlx.DB) *MilestoneRepository {
	return &MilestoneRepository{db: db}
}

// ListByTerm returns every milestone of a term.
func (r *MilestoneRepository) ListByTerm(ctx context.Context, term models.TermKey) ([]models.Milestone, error) {
	query := fmt.Sprintf("SELECT %s FROM milestone WHERE term = $1 AND term_yr = $2 ORDER BY pace, pace_track, ms_nbr", milestoneColumns)
	var ms []models.Milestone
	if err := r.db.SelectContext(ctx, &ms, query, string(term.Name), term.ShortYear()); err != nil {
		return nil, fmt.Errorf("list milestones: %w", err)
	}
	return ms, nil
}

// ListByTrack returns the milestones of one (pace, track) in a term.
func (r *MilestoneRepository) ListByTrack(ctx context.Context, term models.TermKey, pace int, track models.PaceTrack) ([]models.Milestone, error) {
	query := fmt.Sprintf("SELECT %s FROM milestone WHERE term = $1 AND term_yr = $2 AND pace = $3 AND pace_track = $4 ORDER BY ms_nbr", milestoneColumns)
	var ms []models.Milestone
	if err := r.db.SelectContext(ctx, &ms, query, string(term.Name), term.ShortYear(), pace, string(track)); err != nil {
		return nil, fmt.Errorf("list milestones for pace %d track %s: %w", pace, track, err)
	}
	return ms, nil
}

// StudentMilestoneRepository reads personalized deadline overrides.
type StudentMilestoneRepository struct {
	db *sqlx.DB
}

// NewStudentMilestoneRepository constructs the repository.
func NewStudentMilestoneRepository(db *sqlx.DB) *StudentMilestoneRepository {
	return &StudentMilestoneRepository{db: db}
}

// ListByStudent returns one student's overrides, ordered by date so the
// latest override for a key appears last.
func (r *StudentMilestoneRepository) ListByStudent(ctx context.Context, term models.TermKey, studentID string) ([]models.StudentMilestone, error) {
	query := fmt.Sprintf("SELECT %s FROM stmilestone WHERE term = $1 AND term_yr = $2 AND stu_id = $3 ORDER BY ms_nbr, ms_date", studentMilestoneColumns)
	var ms []models.StudentMilestone
	if err := r.db.SelectContext(ctx, &ms, query, string(term.Name), term.ShortYear(), studentID); err != nil {
		return nil, fmt.Errorf("list student milestones: %w", err)
	}
	return ms, nil
}

// ListByTerm returns all overrides of a term.
func (r *StudentMilestoneRepository) ListByTerm(ctx context.Context, term models.TermKey) ([]models.StudentMilestone, error) {
	query := fmt.Sprintf("SELECT %s FROM stmilestone WHERE term = $1 AND term_yr = $2 ORDER BY stu_id, ms_nbr, ms_date", studentMilestoneColumns)
	var ms []models.StudentMilestone
	if err := r.db.SelectContext(ctx, &ms, query, string(term.Name), term.ShortYear()); err != nil {
		return nil, fmt.Errorf("list term student milestones: %w", err)
	}
	return ms, nil
}
