package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/srbenoit/mathops-db-sub010/internal/models"
	"github.com/srbenoit/mathops-db-sub010/internal/service"
	appErrors "github.com/srbenoit/mathops-db-sub010/pkg/errors"
	"github.com/srbenoit/mathops-db-sub010/pkg/response"
)

type paceReader interface {
	ClassifyStudent(ctx context.Context, term models.TermKey, studentID string) (*service.StudentPace, error)
	Summary(ctx context.Context, term models.TermKey) (*service.PaceSummary, error)
	RepairPaceOrder(ctx context.Context, term models.TermKey, dryRun bool) ([]service.PaceOrderChange, error)
}

// PaceHandler exposes pace and track classification.
type PaceHandler struct {
	terms termResolver
	pace  paceReader
}

// NewPaceHandler constructs a pace handler.
func NewPaceHandler(terms termResolver, pace paceReader) *PaceHandler {
	return &PaceHandler{terms: terms, pace: pace}
}

// Student godoc
// @Summary Pace and track of one student
// @Tags Pace
// @Produce json
// @Param id path string true "Student ID"
// @Param term query string false "Term key"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/pace [get]
func (h *PaceHandler) Student(c *gin.Context) {
	term, err := resolveTerm(c, h.terms)
	if err != nil {
		response.Error(c, err)
		return
	}
	sp, err := h.pace.ClassifyStudent(c.Request.Context(), term.Key(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, sp)
}

// Summary godoc
// @Summary Student counts per pace and track
// @Tags Pace
// @Produce json
// @Param term query string false "Term key"
// @Success 200 {object} response.Envelope
// @Router /pace/summary [get]
func (h *PaceHandler) Summary(c *gin.Context) {
	term, err := resolveTerm(c, h.terms)
	if err != nil {
		response.Error(c, err)
		return
	}
	summary, err := h.pace.Summary(c.Request.Context(), term.Key())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, summary)
}

// Repair godoc
// @Summary Rewrite missing or inconsistent pace orders
// @Tags Pace
// @Produce json
// @Param term query string false "Term key"
// @Param dryRun query bool false "List changes without writing them (default true)"
// @Success 200 {object} response.Envelope
// @Router /pace/repair [post]
func (h *PaceHandler) Repair(c *gin.Context) {
	dryRun := true
	if raw := c.Query("dryRun"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "dryRun must be true or false"))
			return
		}
		dryRun = v
	}
	term, err := resolveTerm(c, h.terms)
	if err != nil {
		response.Error(c, err)
		return
	}
	changes, err := h.pace.RepairPaceOrder(c.Request.Context(), term.Key(), dryRun)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, changes, map[string]interface{}{"dryRun": dryRun, "changes": len(changes)})
}
