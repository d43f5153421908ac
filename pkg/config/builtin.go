package config

// BuiltinConfig is the configuration shipped with the orchestrator,
// merged with user-supplied YAML so that a bare install still has sane
// reconciliation/dedup/credit automations wired up.
type BuiltinConfig struct {
	Automations map[string]AutomationConfig
	LLMProviders map[string]LLMProviderConfig
	Agents       map[string]AgentConfig
}

// GetBuiltinConfig returns the built-in defaults. User-defined YAML
// entries with the same name override these in load().
func GetBuiltinConfig() *BuiltinConfig {
	return &BuiltinConfig{
		Automations: map[string]AutomationConfig{
			"bank_reconciliation": {
				EventType: "bank_statement_line.created",
				Model:     "account.bank.statement.line",
				Enabled:   true,
			},
			"duplicate_detection": {
				EventType: "scheduled.dedup_sweep",
				Enabled:   true,
			},
			"credit_hold": {
				EventType: "sale_order.created",
				Model:     "sale.order",
				Enabled:   true,
			},
			"daily_digest": {
				EventType: "scheduled.daily_digest",
				Enabled:   true,
			},
		},
		LLMProviders: map[string]LLMProviderConfig{},
		Agents: map[string]AgentConfig{
			"procure_to_pay": {
				Description:  "Matches incoming vendor bills to purchase orders and receipts.",
				TriggerModel: "account.move",
				TriggerEvent: "account_move.created",
			},
			"collection": {
				Description:  "Works an overdue receivable towards payment or escalation.",
				TriggerModel: "account.move",
				TriggerEvent: "invoice.overdue",
			},
			"month_end_close": {
				Description: "Drives the month-end close checklist to completion.",
			},
		},
	}
}
