package config

// SchedulerConfig holds cron cadences for the periodic automations (bank
// scan, deduplication sweep, credit recalculation, daily digest, supplier
// risk, suspension timeout, cashflow refresh, month-end reopen, stale-lead,
// sales pipeline forecast and purchase reorder) driven by pkg/scheduler
// (spec.md §4, component C6).
type SchedulerConfig struct {
	BankScanCron              string `yaml:"bank_scan_cron,omitempty"`
	DedupSweepCron            string `yaml:"dedup_sweep_cron,omitempty"`
	CreditRecalcCron          string `yaml:"credit_recalc_cron,omitempty"`
	DailyDigestCron           string `yaml:"daily_digest_cron,omitempty"`
	SupplierRiskCron          string `yaml:"supplier_risk_cron,omitempty"`
	SuspensionTimeoutCron     string `yaml:"suspension_timeout_sweep_cron,omitempty"`
	CashflowRefreshCron       string `yaml:"cashflow_refresh_cron,omitempty"`
	MonthEndReopenCron        string `yaml:"month_end_reopen_sweep_cron,omitempty"`
	StaleLeadSweepCron        string `yaml:"stale_lead_sweep_cron,omitempty"`
	SalesPipelineForecastCron string `yaml:"sales_pipeline_forecast_cron,omitempty"`
	PurchaseReorderSweepCron  string `yaml:"purchase_reorder_sweep_cron,omitempty"`
}

// DefaultSchedulerConfig returns the built-in cron cadences, applied when
// the YAML scheduler: block is absent or leaves a field blank.
func DefaultSchedulerConfig() *SchedulerConfig {
	return &SchedulerConfig{
		BankScanCron:              "*/15 * * * *",
		DedupSweepCron:            "0 3 * * *",
		CreditRecalcCron:          "0 2 * * *",
		DailyDigestCron:           "0 18 * * *",
		SupplierRiskCron:          "0 4 * * 1",
		SuspensionTimeoutCron:     "*/10 * * * *",
		CashflowRefreshCron:       "0 * * * *",
		MonthEndReopenCron:        "0 5 * * *",
		StaleLeadSweepCron:        "0 7 * * *",
		SalesPipelineForecastCron: "0 8 * * *",
		PurchaseReorderSweepCron:  "0 6 * * *",
	}
}

func resolveSchedulerConfig(user *SchedulerConfig) *SchedulerConfig {
	cfg := DefaultSchedulerConfig()
	if user == nil {
		return cfg
	}
	if user.BankScanCron != "" {
		cfg.BankScanCron = user.BankScanCron
	}
	if user.DedupSweepCron != "" {
		cfg.DedupSweepCron = user.DedupSweepCron
	}
	if user.CreditRecalcCron != "" {
		cfg.CreditRecalcCron = user.CreditRecalcCron
	}
	if user.DailyDigestCron != "" {
		cfg.DailyDigestCron = user.DailyDigestCron
	}
	if user.SupplierRiskCron != "" {
		cfg.SupplierRiskCron = user.SupplierRiskCron
	}
	if user.SuspensionTimeoutCron != "" {
		cfg.SuspensionTimeoutCron = user.SuspensionTimeoutCron
	}
	if user.CashflowRefreshCron != "" {
		cfg.CashflowRefreshCron = user.CashflowRefreshCron
	}
	if user.MonthEndReopenCron != "" {
		cfg.MonthEndReopenCron = user.MonthEndReopenCron
	}
	if user.StaleLeadSweepCron != "" {
		cfg.StaleLeadSweepCron = user.StaleLeadSweepCron
	}
	if user.SalesPipelineForecastCron != "" {
		cfg.SalesPipelineForecastCron = user.SalesPipelineForecastCron
	}
	if user.PurchaseReorderSweepCron != "" {
		cfg.PurchaseReorderSweepCron = user.PurchaseReorderSweepCron
	}
	return cfg
}
