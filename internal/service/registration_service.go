package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/srbenoit/mathops-db-sub010/internal/dto"
	"github.com/srbenoit/mathops-db-sub010/internal/models"
	appErrors "github.com/srbenoit/mathops-db-sub010/pkg/errors"
)

// RegistrationService applies the targeted registration updates the
// administrative pages allow.
type RegistrationService struct {
	repo      registrationRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRegistrationService constructs the service.
func NewRegistrationService(repo registrationRepository, validate *validator.Validate, logger *zap.Logger) *RegistrationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &RegistrationService{repo: repo, validator: validate, logger: logger}
	svc.validator.RegisterValidation("open_status", func(fl validator.FieldLevel) bool {
		return models.OpenStatus(strings.ToUpper(strings.TrimSpace(fl.Field().String()))).Valid()
	})
	svc.validator.RegisterValidation("grading_option", func(fl validator.FieldLevel) bool {
		return models.GradingOption(strings.ToUpper(strings.TrimSpace(fl.Field().String()))).Valid()
	})
	return svc
}

// ListForStudent returns a student's registrations in term.
func (s *RegistrationService) ListForStudent(ctx context.Context, term models.TermKey, studentID string) ([]models.Registration, error) {
	regs, err := s.repo.ListByStudent(ctx, term, studentID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load registrations")
	}
	return regs, nil
}

// Key validates path parameters and builds the registration key.
func (s *RegistrationService) Key(params dto.RegistrationKeyParams) (models.RegistrationKey, error) {
	if err := s.validator.Struct(params); err != nil {
		return models.RegistrationKey{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration key")
	}
	term, err := models.ParseTermKey(params.Term)
	if err != nil {
		return models.RegistrationKey{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid term")
	}
	return models.RegistrationKey{
		StudentID: strings.TrimSpace(params.StudentID),
		Course:    strings.TrimSpace(params.Course),
		Section:   strings.TrimSpace(params.Section),
		Term:      term,
	}, nil
}

// UpdateOpenStatus sets the open status of one registration.
func (s *RegistrationService) UpdateOpenStatus(ctx context.Context, key models.RegistrationKey, req dto.UpdateOpenStatusRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid open status")
	}
	status := models.OpenStatus(strings.ToUpper(strings.TrimSpace(req.OpenStatus)))
	err := s.repo.UpdateOpenStatus(ctx, key, status)
	return s.finish(err, key, zap.String("open_status", string(status)))
}

// UpdateGradingOption sets the grading option of one registration.
func (s *RegistrationService) UpdateGradingOption(ctx context.Context, key models.RegistrationKey, req dto.UpdateGradingOptionRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grading option")
	}
	option := models.GradingOption(strings.ToUpper(strings.TrimSpace(req.GradingOption)))
	err := s.repo.UpdateGradingOption(ctx, key, option)
	return s.finish(err, key, zap.String("grading_option", string(option)))
}

// UpdatePaceOrder sets or clears the pace order of a paced registration.
func (s *RegistrationService) UpdatePaceOrder(ctx context.Context, key models.RegistrationKey, req dto.UpdatePaceOrderRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid pace order")
	}
	if !models.IsPacedCourse(key.Course) {
		return appErrors.Clone(appErrors.ErrValidation, key.Course+" is not a paced course")
	}
	err := s.repo.UpdatePaceOrder(ctx, key, req.PaceOrder)
	field := zap.Skip()
	if req.PaceOrder != nil {
		field = zap.Int("pace_order", *req.PaceOrder)
	}
	return s.finish(err, key, field)
}

func (s *RegistrationService) finish(err error, key models.RegistrationKey, change zap.Field) error {
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "registration not found")
		}
		return appErrors.Internal(err, "failed to update registration")
	}
	s.logger.Info("registration updated",
		zap.String("student", key.StudentID),
		zap.String("course", key.Course),
		zap.String("sect", key.Section),
		zap.String("term", key.Term.String()),
		change)
	return nil
}
