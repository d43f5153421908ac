package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/a96506/odoo-ai-platform-sub000/pkg/apperrors"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/audit"
)

// rulesListHandler handles GET /api/rules: the operator-tunable overrides
// layered on top of the YAML-defined automation rules.
func (s *Server) rulesListHandler(c *gin.Context) {
	rules, err := s.rules.ListAll(requestContext(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ok(rules))
}

// ruleUpsertHandler handles PUT /api/rules/{name}, letting an operator
// override a rule's confidence thresholds or enabled state without a
// config redeploy.
func (s *Server) ruleUpsertHandler(c *gin.Context) {
	name := c.Param("name")
	var req ruleUpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Error: "validation_failure", Message: err.Error()})
		return
	}

	ctx := requestContext(c)
	existing, err := s.rules.GetByName(ctx, name)
	if err != nil {
		existing = &audit.AutomationRule{ID: uuid.NewString(), Name: name, CreatedAt: time.Now()}
	}
	existing.EventType = req.EventType
	existing.Model = req.Model
	existing.Enabled = req.Enabled
	existing.DefaultConfidenceThreshold = req.DefaultConfidenceThreshold
	existing.AutoApproveThreshold = req.AutoApproveThreshold
	existing.UpdatedAt = time.Now()

	if err := s.rules.Upsert(ctx, existing); err != nil {
		writeError(c, apperrors.NewBusinessInvariant(err.Error()))
		return
	}
	c.JSON(http.StatusOK, ok(existing))
}
