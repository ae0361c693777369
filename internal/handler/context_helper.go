package handler

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/srbenoit/mathops-db-sub010/internal/middleware"
	"github.com/srbenoit/mathops-db-sub010/internal/models"
	appErrors "github.com/srbenoit/mathops-db-sub010/pkg/errors"
)

type termResolver interface {
	Resolve(ctx context.Context, raw string) (*models.Term, error)
}

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		return nil
	}
	return claims
}

// resolveTerm reads the optional "term" query parameter; blank means the active term.
func resolveTerm(c *gin.Context, terms termResolver) (*models.Term, error) {
	return terms.Resolve(c.Request.Context(), c.Query("term"))
}

func queryInt(c *gin.Context, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, appErrors.Clone(appErrors.ErrValidation, name+" is required")
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, appErrors.Clone(appErrors.ErrValidation, name+" must be a number")
	}
	return n, nil
}
