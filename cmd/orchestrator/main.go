// Command orchestrator boots the ERP automation platform: it loads
// configuration, connects to Postgres, wires every automation and agent
// graph against the live ERP/LLM clients, and serves the operator HTTP
// API, generalizing the teacher's cmd/tarsy/main.go bootstrap sequence
// (flag -> .env -> config.Initialize -> database.NewClient -> service
// construction -> gin router) onto this module's service graph.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/a96506/odoo-ai-platform-sub000/pkg/agent"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/agents"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/api"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/approval"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/audit"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/automation"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/automations/accounting"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/automations/cashflow"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/automations/credit"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/automations/crm"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/automations/dedup"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/automations/digest"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/automations/documentprocessing"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/automations/hr"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/automations/monthend"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/automations/project"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/automations/purchase"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/automations/reconciliation"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/automations/reportbuilder"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/automations/sales"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/automations/supplychain"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/config"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/database"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/erpclient"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/events"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/llmclient"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/notify"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/orchestrator"
)

// Exit codes per the external-interfaces contract: 0 success, 1
// configuration error, 2 authentication/credential error, 3 runtime error.
const (
	exitOK        = 0
	exitConfig    = 1
	exitAuth      = 2
	exitRuntime   = 3
)

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func main() {
	os.Exit(run())
}

func run() int {
	configDir := flag.String("config-dir",
		getEnv("CONFIG_DIR", "./deploy/config"),
		"Path to configuration directory")
	flag.Parse()

	logger, err := newLogger(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		log.Printf("failed to build logger: %v", err)
		return exitConfig
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	envPath := filepath.Join(*configDir, ".env")
	if err := godotenv.Load(envPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("could not load .env file, continuing with existing environment", zap.String("path", envPath), zap.Error(err))
	}

	cfg, err := config.Initialize(*configDir)
	if err != nil {
		logger.Error("failed to initialize configuration", zap.Error(err))
		return exitConfig
	}

	suspensionTimeout, err := time.ParseDuration(cfg.Defaults.SuspensionTimeout)
	if err != nil {
		logger.Error("invalid suspension_timeout in defaults", zap.Error(err))
		return exitConfig
	}

	erpAPIKey := os.Getenv(cfg.ERP.APIKeyEnv)
	if erpAPIKey == "" {
		logger.Error("ERP API key not set", zap.String("env_var", cfg.ERP.APIKeyEnv))
		return exitAuth
	}
	webhookSecret := os.Getenv(cfg.ERP.WebhookSecret)
	if webhookSecret == "" {
		logger.Error("ERP webhook secret not set", zap.String("env_var", cfg.ERP.WebhookSecret))
		return exitAuth
	}
	operatorAPIKey := os.Getenv(cfg.System.APIKeyEnv)
	if operatorAPIKey == "" {
		logger.Error("operator API key not set", zap.String("env_var", cfg.System.APIKeyEnv))
		return exitAuth
	}

	dbConfig, err := database.LoadConfigFromEnv()
	if err != nil {
		logger.Error("failed to load database config", zap.Error(err))
		return exitConfig
	}
	dbClient, err := database.NewClient(dbConfig)
	if err != nil {
		logger.Error("failed to connect to database", zap.Error(err))
		return exitRuntime
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logger.Warn("error closing database client", zap.Error(err))
		}
	}()
	logger.Info("connected to postgres", zap.String("database", dbConfig.Database))

	auditLogs := audit.NewAuditLogPGStore(dbClient)
	ruleStore := audit.NewRulePGStore(dbClient)
	webhookEvents := audit.NewWebhookEventPGStore(dbClient)
	agentRuns := audit.NewAgentRunPGStore(dbClient)

	erp := erpclient.NewHTTPClient(erpclient.HTTPClientConfig{
		BaseURL:    cfg.ERP.BaseURL,
		APIKey:     erpAPIKey,
		Database:   cfg.ERP.Database,
		Timeout:    time.Duration(cfg.ERP.TimeoutMS) * time.Millisecond,
		MaxRetries: cfg.ERP.MaxRetries,
		Logger:     logger,
	})

	defaultLLM, err := newLLMClient(cfg, cfg.Defaults.LLMProvider, logger)
	if err != nil {
		logger.Error("failed to build default LLM client", zap.Error(err))
		return exitConfig
	}

	sender := newNotifySender(cfg, logger)

	connMgr := events.NewConnectionManager(10*time.Second, logger)
	publisher := events.NewPublisher(connMgr, logger)

	base := automation.NewBase(auditLogs)

	cashflowTracker := cashflow.NewAccuracyTracker()
	dedupStore := dedup.NewStore()
	digestStore := digest.NewStore()
	docStore := documentprocessing.NewStore()
	monthEndStore := monthend.NewStore()
	reportStore := reportbuilder.NewStore()
	supplyStore := supplychain.NewStore()
	reconSessions := reconciliation.NewSessionStore()

	accountingAuto := accounting.New(erp, defaultLLM)
	cashflowAuto := cashflow.New(erp, 90, cashflowTracker)
	creditAuto := credit.New(erp)
	crmAuto := crm.New(erp, defaultLLM)
	dedupAuto := dedup.New(erp, dedupStore)
	digestAuto := digest.New(auditLogs, sender, digestStore, digest.RoleChannel{})
	docAuto := documentprocessing.New(defaultLLM, docStore)
	monthEndAuto := monthend.New(erp, monthEndStore)
	reconAuto := reconciliation.New(erp)
	reportAuto := reportbuilder.New(erp, reportStore)
	supplyAuto := supplychain.New(erp, supplyStore)
	salesAuto := sales.New(erp, defaultLLM)
	purchaseAuto := purchase.New(erp, defaultLLM)
	hrAuto := hr.New(erp, defaultLLM)
	projectAuto := project.New(erp, defaultLLM)

	automations := automation.NewRegistry()
	automations.Register(accountingAuto)
	automations.Register(cashflowAuto)
	automations.Register(creditAuto)
	automations.Register(crmAuto)
	automations.Register(dedupAuto)
	automations.Register(digestAuto)
	automations.Register(docAuto)
	automations.Register(monthEndAuto)
	automations.Register(reconAuto)
	automations.Register(reportAuto)
	automations.Register(supplyAuto)
	automations.Register(salesAuto)
	automations.Register(purchaseAuto)
	automations.Register(hrAuto)
	automations.Register(projectAuto)

	agentRegistry := agent.NewRegistry()
	agentRegistry.Register("collection", func() *agent.Graph {
		return agents.CollectionGraph(erp, sender)
	})
	agentRegistry.Register("month_end_close", func() *agent.Graph {
		return agents.MonthEndCloseGraph(erp, defaultLLM, sender)
	})
	agentRegistry.Register("procure_to_pay", func() *agent.Graph {
		return agents.ProcureToPayGraph(erp, defaultLLM, sender, cfg.Defaults.DefaultConfidenceThreshold, cfg.Defaults.AutoApproveThreshold)
	})

	runner := agent.NewRunner(agentRuns, suspensionTimeout)

	orch := orchestrator.New(webhookEvents, cfg.AutomationRegistry, cfg.AgentRegistry, cfg.Defaults, automations, base, agentRegistry, runner, publisher, logger)
	approvals := approval.New(auditLogs, automations, base)

	srv := api.NewServer(api.Dependencies{
		Orchestrator:       orch,
		Approvals:          approvals,
		MonthEnd:           monthEndAuto,
		Reconciler:         reconAuto,
		ReconciliationSess: reconSessions,
		Dedup:              dedupAuto,
		Credit:             creditAuto,
		Cashflow:           cashflowAuto,
		Documents:          docAuto,
		Reports:            reportAuto,
		AgentRuns:          agentRuns,
		Rules:              ruleStore,
		AgentRegistry:      agentRegistry,
		AgentConfigs:       cfg.AgentRegistry,
		AgentRunner:        runner,
		Defaults:           cfg.Defaults,
		APIKey:             operatorAPIKey,
		WebhookSecret:      webhookSecret,
		Log:                logger,
	})

	httpPort := getEnv("HTTP_PORT", "8080")
	httpServer := &http.Server{
		Addr:              ":" + httpPort,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("starting orchestrator",
		zap.String("http_port", httpPort),
		zap.String("config_dir", *configDir),
		zap.Int("automations", cfg.Stats().Automations),
		zap.Int("agents", cfg.Stats().Agents),
	)

	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	ctx, stop := signalContext()
	defer stop()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		logger.Error("http server failed", zap.Error(err))
		return exitRuntime
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("error during graceful shutdown", zap.Error(err))
		return exitRuntime
	}
	return exitOK
}

// newLLMClient builds an llmclient.Client for providerName, resolving its
// configuration and API key through cfg's LLM provider registry.
func newLLMClient(cfg *config.Config, providerName string, logger *zap.Logger) (llmclient.Client, error) {
	provider, err := cfg.GetLLMProvider(providerName)
	if err != nil {
		return nil, err
	}
	apiKey := os.Getenv(provider.APIKeyEnv)
	return llmclient.NewHTTPClient(llmclient.HTTPClientConfig{
		BaseURL:     provider.BaseURL,
		APIKey:      apiKey,
		Model:       provider.Model,
		Temperature: provider.Temperature,
		Timeout:     time.Duration(provider.TimeoutMS) * time.Millisecond,
		MaxRetries:  provider.MaxRetries,
		Logger:      logger,
	}), nil
}

// newNotifySender builds the Slack sender when enabled, falling back to a
// no-op sender so automations that notify never need a nil check.
func newNotifySender(cfg *config.Config, logger *zap.Logger) notify.Sender {
	if cfg.System.Slack == nil || !cfg.System.Slack.Enabled {
		return notify.NewFake()
	}
	token := os.Getenv(cfg.System.Slack.TokenEnv)
	if token == "" {
		logger.Warn("slack enabled but token env var is empty, falling back to no-op sender", zap.String("env_var", cfg.System.Slack.TokenEnv))
		return notify.NewFake()
	}
	return notify.NewSlackSender(token, cfg.System.Slack.Channel, 10*time.Second)
}
