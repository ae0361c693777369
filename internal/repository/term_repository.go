package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/srbenoit/mathops-db-sub010/internal/models"
)

const termColumns = `term, term_yr, start_dt, end_dt, academic_yr, active_index, drop_deadline_dt, withdraw_deadline_dt, inc_deadline_dt`

// TermRepository reads rows of the term table.
type TermRepository struct {
	db *sqlx.DB
}

// NewTermRepository instantiates a term repository.
func NewTermRepository(db *sqlx.DB) *TermRepository {
	return &TermRepository{db: db}
}

// List returns all terms, most recent first.
func (r *TermRepository) List(ctx context.Context) ([]models.Term, error) {
	query := fmt.Sprintf("SELECT %s FROM term ORDER BY term_yr DESC, start_dt DESC", termColumns)
	var terms []models.Term
	if err := r.db.SelectContext(ctx, &terms, query); err != nil {
		return nil, fmt.Errorf("list terms: %w", err)
	}
	return terms, nil
}

// FindByKey loads a term by name and year.
func (r *TermRepository) FindByKey(ctx context.Context, key models.TermKey) (*models.Term, error) {
	query := fmt.Sprintf("SELECT %s FROM term WHERE term = $1 AND term_yr = $2", termColumns)
	var term models.Term
	if err := r.db.GetContext(ctx, &term, query, string(key.Name), key.ShortYear()); err != nil {
		return nil, err
	}
	return &term, nil
}

// FindActive returns the term whose active index is zero.
func (r *TermRepository) FindActive(ctx context.Context) (*models.Term, error) {
	query := fmt.Sprintf("SELECT %s FROM term WHERE active_index = 0 LIMIT 1", termColumns)
	var term models.Term
	if err := r.db.GetContext(ctx, &term, query); err != nil {
		return nil, err
	}
	return &term, nil
}
