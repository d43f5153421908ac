package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/a96506/odoo-ai-platform-sub000/pkg/approval"
)

// approvalsPendingHandler handles GET /api/approvals?limit=N, listing
// audit rows awaiting an operator decision.
func (s *Server) approvalsPendingHandler(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		limit = 50
	}
	pending, err := s.approvals.Pending(requestContext(c), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ok(pending))
}

// approvalsHandler handles POST /api/approvals
// {audit_log_id, approved, approved_by}.
func (s *Server) approvalsHandler(c *gin.Context) {
	var req approvalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Error: "validation_failure", Message: err.Error()})
		return
	}

	log, err := s.approvals.Decide(requestContext(c), approval.Decision{
		AuditLogID: req.AuditLogID,
		Approved:   req.Approved,
		ApprovedBy: req.ApprovedBy,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ok(log))
}
