package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/a96506/odoo-ai-platform-sub000/pkg/audit"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/orchestrator"
)

// ingestWebhookHandler handles POST /webhooks/erp. The X-Webhook-Signature
// check already ran in middleware; here the body is bound, validated, and
// handed to the orchestrator (spec.md §6).
func (s *Server) ingestWebhookHandler(c *gin.Context) {
	var req webhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, errorBody{Error: "validation_failure", Message: err.Error()})
		return
	}

	writeDate := time.Now().UTC()
	if req.Timestamp != "" {
		if parsed, err := time.Parse(time.RFC3339, req.Timestamp); err == nil {
			writeDate = parsed
		}
	}

	payload := orchestrator.WebhookPayload{
		EventType: req.EventType,
		Model:     req.Model,
		RecordID:  strconv.FormatInt(req.RecordID, 10),
		WriteDate: writeDate,
		Values:    req.Values,
		OldValues: req.OldValues,
	}

	result, err := s.orch.Ingest(requestContext(c), payload)
	if err != nil {
		writeError(c, err)
		return
	}

	if result.Status == audit.DispatchStatusDuplicate {
		c.JSON(http.StatusConflict, errorBody{Error: "duplicate_event", Message: "event already processed"})
		return
	}

	resp := acceptedWebhook{Accepted: true}
	if result.AutomationResult != nil && result.AutomationResult.AuditLogID != "" {
		id := result.AutomationResult.AuditLogID
		resp.AuditLogID = &id
	}
	if result.AgentOutcome != nil {
		id := result.AgentOutcome.RunID
		resp.RunID = &id
	}
	c.JSON(http.StatusOK, resp)
}
