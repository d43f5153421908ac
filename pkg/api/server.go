// Package api is the C-external-interfaces HTTP layer (spec.md §6): one
// gin.Engine exposing the inbound ERP webhook and the operator API surface,
// generalizing the teacher's dual gin/echo Server (pkg/api/server.go,
// pkg/api/handlers.go) into a single gin.Engine wired against this
// module's services instead of tarsy's session manager.
package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/a96506/odoo-ai-platform-sub000/pkg/agent"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/approval"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/audit"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/automations/cashflow"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/automations/credit"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/automations/dedup"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/automations/documentprocessing"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/automations/monthend"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/automations/reconciliation"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/automations/reportbuilder"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/config"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/orchestrator"
)

// Server is the HTTP API server wiring every operator-facing component
// behind one gin.Engine.
type Server struct {
	engine *gin.Engine
	log    *zap.Logger

	orch        *orchestrator.Orchestrator
	approvals   *approval.Service
	monthEnd    *monthend.Automation
	reconciler  *reconciliation.Automation
	reconSess   *reconciliation.SessionStore
	dedupAuto   *dedup.Automation
	creditAuto  *credit.Automation
	cashflowAuto *cashflow.Automation
	docs        *documentprocessing.Automation
	reports     *reportbuilder.Automation
	agentRuns   audit.AgentRunStore
	rules       audit.RuleStore
	agentRegistry *agent.Registry
	agentCfgs   *config.AgentRegistry
	runner      *agent.Runner
	defaults    *config.Defaults

	apiKey        string
	webhookSecret string
}

// Dependencies bundles everything NewServer wires a Server from.
type Dependencies struct {
	Orchestrator       *orchestrator.Orchestrator
	Approvals          *approval.Service
	MonthEnd           *monthend.Automation
	Reconciler         *reconciliation.Automation
	ReconciliationSess *reconciliation.SessionStore
	Dedup              *dedup.Automation
	Credit             *credit.Automation
	Cashflow           *cashflow.Automation
	Documents          *documentprocessing.Automation
	Reports            *reportbuilder.Automation
	AgentRuns          audit.AgentRunStore
	Rules              audit.RuleStore
	AgentRegistry      *agent.Registry
	AgentConfigs       *config.AgentRegistry
	AgentRunner        *agent.Runner
	Defaults           *config.Defaults
	APIKey             string
	WebhookSecret      string
	Log                *zap.Logger
}

// NewServer builds a Server and registers every route.
func NewServer(deps Dependencies) *Server {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		engine:        gin.New(),
		log:           deps.Log,
		orch:          deps.Orchestrator,
		approvals:     deps.Approvals,
		monthEnd:      deps.MonthEnd,
		reconciler:    deps.Reconciler,
		reconSess:     deps.ReconciliationSess,
		dedupAuto:     deps.Dedup,
		creditAuto:    deps.Credit,
		cashflowAuto:  deps.Cashflow,
		docs:          deps.Documents,
		reports:       deps.Reports,
		agentRuns:     deps.AgentRuns,
		rules:         deps.Rules,
		agentRegistry: deps.AgentRegistry,
		agentCfgs:     deps.AgentConfigs,
		runner:        deps.AgentRunner,
		defaults:      deps.Defaults,
		apiKey:        deps.APIKey,
		webhookSecret: deps.WebhookSecret,
	}
	s.engine.Use(gin.Recovery(), securityHeaders())
	s.setupRoutes()
	return s
}

// securityHeaders mirrors the teacher's echo securityHeaders middleware
// (pkg/api/middleware.go) as a gin.HandlerFunc.
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Next()
	}
}

func (s *Server) setupRoutes() {
	s.engine.GET("/health", s.healthHandler)

	s.engine.POST("/webhooks/erp", webhookSignature(s.webhookSecret), s.ingestWebhookHandler)

	operator := s.engine.Group("/api", apiKeyAuth(s.apiKey))
	{
		operator.POST("/close/start", s.startCloseHandler)
		operator.GET("/close/:period/status", s.closeStatusHandler)

		operator.POST("/reconciliation/start", s.startReconciliationHandler)
		operator.GET("/reconciliation/:id/suggestions", s.reconciliationSuggestionsHandler)
		operator.POST("/reconciliation/:id/match", s.reconciliationMatchHandler)
		operator.POST("/reconciliation/:id/skip", s.reconciliationSkipHandler)

		operator.POST("/dedup/scan", s.dedupScanHandler)
		operator.GET("/dedup/scans", s.dedupScansHandler)
		operator.GET("/dedup/groups/:id", s.dedupGroupHandler)
		operator.POST("/dedup/groups/:id/merge", s.dedupMergeHandler)

		operator.GET("/credit/:customer_id", s.creditProfileHandler)
		operator.POST("/credit/check", s.creditCheckHandler)
		operator.POST("/credit/batch-recalculate", s.creditBatchRecalculateHandler)

		operator.GET("/forecast/cashflow", s.cashflowForecastHandler)
		operator.POST("/forecast/scenario", s.cashflowScenarioHandler)
		operator.GET("/forecast/accuracy", s.cashflowAccuracyHandler)

		operator.POST("/reports", s.reportRunHandler)
		operator.GET("/reports/:id", s.reportGetHandler)

		operator.POST("/documents/process", s.documentProcessHandler)
		operator.GET("/documents/:id", s.documentGetHandler)
		operator.POST("/documents/:id/correct", s.documentCorrectHandler)

		operator.POST("/agents/run", s.agentRunHandler)
		operator.GET("/agents/runs/:id", s.agentRunGetHandler)
		operator.POST("/agents/runs/:id/resume", s.agentRunResumeHandler)

		operator.GET("/approvals", s.approvalsPendingHandler)
		operator.POST("/approvals", s.approvalsHandler)

		operator.GET("/rules", s.rulesListHandler)
		operator.PUT("/rules/:name", s.ruleUpsertHandler)
	}
}

// Handler exposes the underlying http.Handler for use with http.Server.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// requestContext returns the incoming request's context, the same pattern
// the teacher's echo handlers use via c.Request().Context().
func requestContext(c *gin.Context) context.Context { return c.Request.Context() }
