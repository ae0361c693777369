package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/srbenoit/mathops-db-sub010/internal/models"
	"github.com/srbenoit/mathops-db-sub010/internal/service"
	"github.com/srbenoit/mathops-db-sub010/pkg/response"
)

type deadlineReader interface {
	StudentStatus(ctx context.Context, term *models.Term, studentID string) (*service.StudentDeadlines, error)
	TermStatus(ctx context.Context, term *models.Term) (*service.DeadlineReport, error)
}

// DeadlineHandler exposes milestone completion status.
type DeadlineHandler struct {
	terms     termResolver
	deadlines deadlineReader
}

// NewDeadlineHandler constructs a deadline handler.
func NewDeadlineHandler(terms termResolver, deadlines deadlineReader) *DeadlineHandler {
	return &DeadlineHandler{terms: terms, deadlines: deadlines}
}

// Student godoc
// @Summary Milestone status of one student
// @Tags Deadlines
// @Produce json
// @Param id path string true "Student ID"
// @Param term query string false "Term key"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/deadlines [get]
func (h *DeadlineHandler) Student(c *gin.Context) {
	term, err := resolveTerm(c, h.terms)
	if err != nil {
		response.Error(c, err)
		return
	}
	status, err := h.deadlines.StudentStatus(c.Request.Context(), term, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, status)
}

// Term godoc
// @Summary Milestone status of every paced student
// @Tags Deadlines
// @Produce json
// @Param term query string false "Term key"
// @Success 200 {object} response.Envelope
// @Router /deadlines [get]
func (h *DeadlineHandler) Term(c *gin.Context) {
	term, err := resolveTerm(c, h.terms)
	if err != nil {
		response.Error(c, err)
		return
	}
	report, err := h.deadlines.TermStatus(c.Request.Context(), term)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, report)
}
