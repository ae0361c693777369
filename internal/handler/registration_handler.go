package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/srbenoit/mathops-db-sub010/internal/dto"
	"github.com/srbenoit/mathops-db-sub010/internal/models"
	appErrors "github.com/srbenoit/mathops-db-sub010/pkg/errors"
	"github.com/srbenoit/mathops-db-sub010/pkg/response"
)

type registrationUpdater interface {
	ListForStudent(ctx context.Context, term models.TermKey, studentID string) ([]models.Registration, error)
	Key(params dto.RegistrationKeyParams) (models.RegistrationKey, error)
	UpdateOpenStatus(ctx context.Context, key models.RegistrationKey, req dto.UpdateOpenStatusRequest) error
	UpdateGradingOption(ctx context.Context, key models.RegistrationKey, req dto.UpdateGradingOptionRequest) error
	UpdatePaceOrder(ctx context.Context, key models.RegistrationKey, req dto.UpdatePaceOrderRequest) error
}

// RegistrationHandler exposes registrations and their targeted updates.
type RegistrationHandler struct {
	terms         termResolver
	registrations registrationUpdater
}

// NewRegistrationHandler constructs a registration handler.
func NewRegistrationHandler(terms termResolver, registrations registrationUpdater) *RegistrationHandler {
	return &RegistrationHandler{terms: terms, registrations: registrations}
}

// ListForStudent godoc
// @Summary Registrations of one student
// @Tags Registrations
// @Produce json
// @Param id path string true "Student ID"
// @Param term query string false "Term key"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/registrations [get]
func (h *RegistrationHandler) ListForStudent(c *gin.Context) {
	term, err := resolveTerm(c, h.terms)
	if err != nil {
		response.Error(c, err)
		return
	}
	regs, err := h.registrations.ListForStudent(c.Request.Context(), term.Key(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, regs)
}

// UpdateOpenStatus godoc
// @Summary Set the open status of a registration
// @Tags Registrations
// @Accept json
// @Param term path string true "Term key"
// @Param id path string true "Student ID"
// @Param course path string true "Course"
// @Param sect path string true "Section"
// @Param payload body dto.UpdateOpenStatusRequest true "Open status"
// @Success 204
// @Router /registrations/{term}/{id}/{course}/{sect}/open-status [patch]
func (h *RegistrationHandler) UpdateOpenStatus(c *gin.Context) {
	var req dto.UpdateOpenStatusRequest
	key, ok := h.bind(c, &req)
	if !ok {
		return
	}
	h.finish(c, h.registrations.UpdateOpenStatus(c.Request.Context(), key, req))
}

// UpdateGradingOption godoc
// @Summary Set the grading option of a registration
// @Tags Registrations
// @Accept json
// @Param term path string true "Term key"
// @Param id path string true "Student ID"
// @Param course path string true "Course"
// @Param sect path string true "Section"
// @Param payload body dto.UpdateGradingOptionRequest true "Grading option"
// @Success 204
// @Router /registrations/{term}/{id}/{course}/{sect}/grading-option [patch]
func (h *RegistrationHandler) UpdateGradingOption(c *gin.Context) {
	var req dto.UpdateGradingOptionRequest
	key, ok := h.bind(c, &req)
	if !ok {
		return
	}
	h.finish(c, h.registrations.UpdateGradingOption(c.Request.Context(), key, req))
}

// UpdatePaceOrder godoc
// @Summary Set or clear the pace order of a registration
// @Tags Registrations
// @Accept json
// @Param term path string true "Term key"
// @Param id path string true "Student ID"
// @Param course path string true "Course"
// @Param sect path string true "Section"
// @Param payload body dto.UpdatePaceOrderRequest true "Pace order"
// @Success 204
// @Router /registrations/{term}/{id}/{course}/{sect}/pace-order [patch]
func (h *RegistrationHandler) UpdatePaceOrder(c *gin.Context) {
	var req dto.UpdatePaceOrderRequest
	key, ok := h.bind(c, &req)
	if !ok {
		return
	}
	h.finish(c, h.registrations.UpdatePaceOrder(c.Request.Context(), key, req))
}

func (h *RegistrationHandler) bind(c *gin.Context, req interface{}) (models.RegistrationKey, bool) {
	if err := c.ShouldBindJSON(req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid payload"))
		return models.RegistrationKey{}, false
	}
	key, err := h.registrations.Key(dto.RegistrationKeyParams{
		Term:      c.Param("term"),
		StudentID: c.Param("id"),
		Course:    c.Param("course"),
		Section:   c.Param("sect"),
	})
	if err != nil {
		response.Error(c, err)
		return models.RegistrationKey{}, false
	}
	return key, true
}

func (h *RegistrationHandler) finish(c *gin.Context, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
