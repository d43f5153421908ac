package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/a96506/odoo-ai-platform-sub000/pkg/apperrors"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/automations/credit"
)

// creditProfileHandler handles GET /api/credit/{customer_id}.
func (s *Server) creditProfileHandler(c *gin.Context) {
	customerID, err := strconv.ParseInt(c.Param("customer_id"), 10, 64)
	if err != nil {
		writeError(c, apperrors.NewValidation("customer_id must be numeric"))
		return
	}
	profile, err := s.creditAuto.Profile(requestContext(c), customerID)
	if err != nil {
		notFound(c, "credit profile")
		return
	}
	c.JSON(http.StatusOK, ok(profile))
}

// creditCheckHandler handles POST /api/credit/check
// {customer_id, order_amount}.
func (s *Server) creditCheckHandler(c *gin.Context) {
	var req creditCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Error: "validation_failure", Message: err.Error()})
		return
	}
	profile, err := s.creditAuto.Profile(requestContext(c), req.CustomerID)
	if err != nil {
		notFound(c, "credit profile")
		return
	}
	result := credit.Check(profile, req.OrderAmount)
	c.JSON(http.StatusOK, ok(result))
}

// creditBatchRecalculateHandler handles POST /api/credit/batch-recalculate.
func (s *Server) creditBatchRecalculateHandler(c *gin.Context) {
	updated, err := s.creditAuto.ScanRecalculate(requestContext(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ok(gin.H{"updated": updated}))
}
