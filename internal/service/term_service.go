package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/srbenoit/mathops-db-sub010/internal/models"
	appErrors "github.com/srbenoit/mathops-db-sub010/pkg/errors"
)

type termRepository interface {
	List(ctx context.Context) ([]models.Term, error)
	FindByKey(ctx context.Context, key models.TermKey) (*models.Term, error)
	FindActive(ctx context.Context) (*models.Term, error)
}

// TermService looks up terms.
type TermService struct {
	repo   termRepository
	logger *zap.Logger
}

// NewTermService creates a new term service instance.
func NewTermService(repo termRepository, logger *zap.Logger) *TermService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TermService{repo: repo, logger: logger}
}

// List returns all terms, most recent first.
func (s *TermService) List(ctx context.Context) ([]models.Term, error) {
	terms, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list terms")
	}
	return terms, nil
}

// Active returns the current term.
func (s *TermService) Active(ctx context.Context) (*models.Term, error) {
	term, err := s.repo.FindActive(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNoActiveTerm
		}
		return nil, appErrors.Internal(err, "failed to load active term")
	}
	return term, nil
}

// Get loads one term by key.
func (s *TermService) Get(ctx context.Context, key models.TermKey) (*models.Term, error) {
	term, err := s.repo.FindByKey(ctx, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "term "+key.String()+" not found")
		}
		return nil, appErrors.Internal(err, "failed to load term")
	}
	return term, nil
}

// Resolve returns the term named by raw ("FA24" or "FA2024"), or the active
// term when raw is blank.
func (s *TermService) Resolve(ctx context.Context, raw string) (*models.Term, error) {
	if strings.TrimSpace(raw) == "" {
		return s.Active(ctx)
	}
	key, err := models.ParseTermKey(raw)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid term")
	}
	return s.Get(ctx, key)
}
