// Command scheduler runs the periodic automation sweeps (bank
// auto-match, dedup, credit recalculation, daily digest, supplier risk,
// cashflow refresh, month-end reopen, stale-lead, sales pipeline forecast,
// purchase reorder, and suspension timeout)
// as a standalone cron daemon against the same database and ERP the
// orchestrator API serves, mirroring the teacher's single composition-root
// bootstrap (cmd/tarsy/main.go) but driving pkg/scheduler instead of gin.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/a96506/odoo-ai-platform-sub000/pkg/audit"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/automations/cashflow"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/automations/credit"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/automations/crm"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/automations/dedup"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/automations/digest"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/automations/monthend"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/automations/purchase"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/automations/reconciliation"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/automations/sales"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/automations/supplychain"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/config"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/database"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/erpclient"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/events"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/llmclient"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/notify"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/scheduler"
)

const (
	exitOK      = 0
	exitConfig  = 1
	exitAuth    = 2
	exitRuntime = 3
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

	erpAPIKey := os.Getenv(cfg.ERP.APIKeyEnv)
	if erpAPIKey == "" {
		logger.Error("ERP API key not set", zap.String("env_var", cfg.ERP.APIKeyEnv))
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
	agentRuns := audit.NewAgentRunPGStore(dbClient)

	erp := erpclient.NewHTTPClient(erpclient.HTTPClientConfig{
		BaseURL:    cfg.ERP.BaseURL,
		APIKey:     erpAPIKey,
		Database:   cfg.ERP.Database,
		Timeout:    time.Duration(cfg.ERP.TimeoutMS) * time.Millisecond,
		MaxRetries: cfg.ERP.MaxRetries,
		Logger:     logger,
	})

	sender := newNotifySender(cfg, logger)

	defaultLLM, err := newLLMClient(cfg, cfg.Defaults.LLMProvider, logger)
	if err != nil {
		logger.Error("failed to build default LLM client", zap.Error(err))
		return exitConfig
	}

	connMgr := events.NewConnectionManager(10*time.Second, logger)
	publisher := events.NewPublisher(connMgr, logger)

	reconAuto := reconciliation.New(erp)
	dedupAuto := dedup.New(erp, dedup.NewStore())
	creditAuto := credit.New(erp)
	digestAuto := digest.New(auditLogs, sender, digest.NewStore(), digest.RoleChannel{})
	supplyAuto := supplychain.New(erp, supplychain.NewStore())
	cashflowAuto := cashflow.New(erp, 90, cashflow.NewAccuracyTracker())
	monthEndAuto := monthend.New(erp, monthend.NewStore())
	crmAuto := crm.New(erp, defaultLLM)
	salesAuto := sales.New(erp, defaultLLM)
	purchaseAuto := purchase.New(erp, defaultLLM)

	s := scheduler.New(auditLogs, publisher, logger)

	jobs := map[string]scheduler.JobFunc{
		"bank_scan":     reconAuto.ScanAutoMatch,
		"dedup_sweep":   dedupAuto.ScanAll,
		"daily_digest":  digestAuto.ScanDailyDigests,
		"supplier_risk": supplyAuto.ScanSupplierRisk,
		"suspension_timeout_sweep": scheduler.SuspensionTimeoutSweep(agentRuns, time.Now),
		"month_end_reopen_sweep":   monthEndAuto.ScanReopenedClosings,
		"credit_recalc": func(ctx context.Context) (string, error) {
			n, err := creditAuto.ScanRecalculate(ctx)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("%d credit profiles recalculated", n), nil
		},
		"cashflow_refresh": func(ctx context.Context) (string, error) {
			runway, err := cashflowAuto.ScanRefreshForecast(ctx, time.Now())
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("cashflow forecast refreshed, runway %.2f days", runway), nil
		},
		"stale_lead_sweep": func(ctx context.Context) (string, error) {
			n, err := crmAuto.ScanStaleLeads(ctx, time.Now())
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("%d stale leads flagged", n), nil
		},
		"sales_pipeline_forecast": salesAuto.ScanForecastPipeline,
		"purchase_reorder_sweep": purchaseAuto.ScanCheckReorderPoints,
	}

	if err := scheduler.RegisterDefaults(s, cfg.Scheduler, jobs); err != nil {
		logger.Error("failed to register scheduled jobs", zap.Error(err))
		return exitConfig
	}

	s.Start()
	logger.Info("scheduler started", zap.Int("jobs", len(jobs)))

	ctx, stop := signalContext()
	defer stop()
	<-ctx.Done()

	logger.Info("shutdown signal received, stopping scheduler")
	s.Stop()
	return exitOK
}

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
