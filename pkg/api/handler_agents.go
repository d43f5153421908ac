package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/a96506/odoo-ai-platform-sub000/pkg/agent"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/apperrors"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/config"
)

// agentRunHandler handles POST /api/agents/run {agent_type, initial_state}.
func (s *Server) agentRunHandler(c *gin.Context) {
	var req agentRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Error: "validation_failure", Message: err.Error()})
		return
	}

	cfg, err := s.agentCfgs.Get(req.AgentType)
	if err != nil {
		writeError(c, apperrors.NewValidation(err.Error()))
		return
	}
	g, err := s.agentRegistry.Compile(req.AgentType)
	if err != nil {
		writeError(c, apperrors.NewValidation(err.Error()))
		return
	}

	maxSteps, maxTokens, loopThreshold := config.ResolvedGuardrails(cfg, s.defaults)
	gr := agent.Guardrails{MaxSteps: maxSteps, MaxTokens: maxTokens, LoopThreshold: loopThreshold}

	outcome, err := s.runner.Start(requestContext(c), g, cfg.TriggerModel, "", agent.State(req.InitialState), gr)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ok(outcome))
}

// agentRunGetHandler handles GET /api/agents/runs/{id}.
func (s *Server) agentRunGetHandler(c *gin.Context) {
	run, err := s.agentRuns.GetRun(requestContext(c), c.Param("id"))
	if err != nil {
		notFound(c, "agent run")
		return
	}
	c.JSON(http.StatusOK, ok(run))
}

// agentRunResumeHandler handles POST /api/agents/runs/{id}/resume
// {suspension_id, event_data}.
func (s *Server) agentRunResumeHandler(c *gin.Context) {
	runID := c.Param("id")
	var req agentResumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Error: "validation_failure", Message: err.Error()})
		return
	}

	ctx := requestContext(c)
	run, err := s.agentRuns.GetRun(ctx, runID)
	if err != nil {
		notFound(c, "agent run")
		return
	}

	cfg, err := s.agentCfgs.Get(run.AgentName)
	if err != nil {
		writeError(c, apperrors.NewValidation(err.Error()))
		return
	}
	g, err := s.agentRegistry.Compile(run.AgentName)
	if err != nil {
		writeError(c, apperrors.NewValidation(err.Error()))
		return
	}

	maxSteps, maxTokens, loopThreshold := config.ResolvedGuardrails(cfg, s.defaults)
	gr := agent.Guardrails{MaxSteps: maxSteps, MaxTokens: maxTokens, LoopThreshold: loopThreshold}

	outcome, err := s.runner.Resume(ctx, g, runID, req.SuspensionID, agent.State(req.EventData), gr)
	if err != nil {
		writeError(c, apperrors.NewBusinessInvariant(err.Error()))
		return
	}
	c.JSON(http.StatusOK, ok(outcome))
}
