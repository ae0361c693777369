package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/srbenoit/mathops-db-sub010/internal/models"
	"github.com/srbenoit/mathops-db-sub010/internal/pacing"
	"github.com/srbenoit/mathops-db-sub010/internal/service"
	appErrors "github.com/srbenoit/mathops-db-sub010/pkg/errors"
	"github.com/srbenoit/mathops-db-sub010/pkg/response"
)

type milestoneReader interface {
	MilestonesFor(ctx context.Context, term *models.Term, pace int, track models.PaceTrack) (*service.TrackSchedule, error)
	EffectiveDeadline(ctx context.Context, term models.TermKey, studentID string, pace int, track models.PaceTrack, slot pacing.Slot) (*pacing.Deadline, error)
	ValidateTerm(ctx context.Context, term *models.Term) (*pacing.Report, error)
	InvalidateTerm(ctx context.Context, term models.TermKey) error
}

// MilestoneHandler exposes milestone schedules and validation.
type MilestoneHandler struct {
	terms      termResolver
	milestones milestoneReader
}

// NewMilestoneHandler constructs a milestone handler.
func NewMilestoneHandler(terms termResolver, milestones milestoneReader) *MilestoneHandler {
	return &MilestoneHandler{terms: terms, milestones: milestones}
}

// Schedule godoc
// @Summary Milestone schedule of one pace and track
// @Tags Milestones
// @Produce json
// @Param term query string false "Term key such as FA24; defaults to the active term"
// @Param pace query int true "Pace (1-5)"
// @Param track query string true "Pace track"
// @Success 200 {object} response.Envelope
// @Router /milestones [get]
func (h *MilestoneHandler) Schedule(c *gin.Context) {
	pace, err := queryInt(c, "pace")
	if err != nil {
		response.Error(c, err)
		return
	}
	track := models.PaceTrack(strings.ToUpper(c.Query("track")))
	term, err := resolveTerm(c, h.terms)
	if err != nil {
		response.Error(c, err)
		return
	}
	schedule, err := h.milestones.MilestonesFor(c.Request.Context(), term, pace, track)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, schedule)
}

// Validate godoc
// @Summary Validate every milestone schedule of a term
// @Tags Milestones
// @Produce json
// @Param term query string false "Term key"
// @Success 200 {object} response.Envelope
// @Router /milestones/validate [get]
func (h *MilestoneHandler) Validate(c *gin.Context) {
	term, err := resolveTerm(c, h.terms)
	if err != nil {
		response.Error(c, err)
		return
	}
	report, err := h.milestones.ValidateTerm(c.Request.Context(), term)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, map[string]interface{}{
		"term":   term.Key().String(),
		"ok":     report.OK(),
		"counts": report.CountByKind(),
	})
}

// Deadline godoc
// @Summary Effective deadline of one milestone for a student
// @Tags Milestones
// @Produce json
// @Param id path string true "Student ID"
// @Param number path int true "Milestone number"
// @Param type path string true "Milestone type"
// @Param term query string false "Term key"
// @Param pace query int true "Pace"
// @Param track query string true "Pace track"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/milestones/{number}/{type} [get]
func (h *MilestoneHandler) Deadline(c *gin.Context) {
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "milestone number must be a number"))
		return
	}
	pace, err := queryInt(c, "pace")
	if err != nil {
		response.Error(c, err)
		return
	}
	term, err := resolveTerm(c, h.terms)
	if err != nil {
		response.Error(c, err)
		return
	}
	slot := pacing.Slot{Number: number, Type: models.MilestoneType(strings.ToUpper(c.Param("type")))}
	track := models.PaceTrack(strings.ToUpper(c.Query("track")))
	deadline, err := h.milestones.EffectiveDeadline(c.Request.Context(), term.Key(), c.Param("id"), pace, track, slot)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, deadline)
}

// InvalidateCache godoc
// @Summary Drop cached milestone schedules of a term
// @Tags Milestones
// @Param term query string false "Term key"
// @Success 204
// @Router /milestones/cache [delete]
func (h *MilestoneHandler) InvalidateCache(c *gin.Context) {
	term, err := resolveTerm(c, h.terms)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.milestones.InvalidateTerm(c.Request.Context(), term.Key()); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
