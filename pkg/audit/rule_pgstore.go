package audit

import (
	stdsql "database/sql"
	"context"
	"fmt"

	"github.com/a96506/odoo-ai-platform-sub000/pkg/database"
)

// RulePGStore is the pgx/database-sql-backed RuleStore.
type RulePGStore struct {
	db *stdsql.DB
}

// NewRulePGStore builds a RulePGStore backed by client.
func NewRulePGStore(client *database.Client) *RulePGStore {
	return &RulePGStore{db: client.DB()}
}

func (s *RulePGStore) Upsert(ctx context.Context, rule *AutomationRule) error {
	config, err := marshalJSON(rule.Config)
	if err != nil {
		return fmt.Errorf("audit: marshal rule config: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO automation_rules (
			id, name, event_type, model, enabled, default_confidence_threshold,
			auto_approve_threshold, config, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (name) DO UPDATE SET
			event_type=EXCLUDED.event_type, model=EXCLUDED.model, enabled=EXCLUDED.enabled,
			default_confidence_threshold=EXCLUDED.default_confidence_threshold,
			auto_approve_threshold=EXCLUDED.auto_approve_threshold, config=EXCLUDED.config,
			updated_at=EXCLUDED.updated_at`,
		rule.ID, rule.Name, rule.EventType, rule.Model, rule.Enabled, rule.DefaultConfidenceThreshold,
		rule.AutoApproveThreshold, config, rule.CreatedAt, rule.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("audit: upsert automation rule: %w", err)
	}
	return nil
}

const ruleSelectColumns = `id, name, event_type, model, enabled, default_confidence_threshold,
		auto_approve_threshold, config, created_at, updated_at`

func scanRule(row scannable) (*AutomationRule, error) {
	var rule AutomationRule
	var config []byte
	if err := row.Scan(
		&rule.ID, &rule.Name, &rule.EventType, &rule.Model, &rule.Enabled,
		&rule.DefaultConfidenceThreshold, &rule.AutoApproveThreshold, &config,
		&rule.CreatedAt, &rule.UpdatedAt,
	); err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("audit: scan automation rule: %w", err)
	}
	var err error
	if rule.Config, err = unmarshalJSON(config); err != nil {
		return nil, err
	}
	return &rule, nil
}

func (s *RulePGStore) Get(ctx context.Context, id string) (*AutomationRule, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+ruleSelectColumns+` FROM automation_rules WHERE id=$1`, id)
	return scanRule(row)
}

func (s *RulePGStore) GetByName(ctx context.Context, name string) (*AutomationRule, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+ruleSelectColumns+` FROM automation_rules WHERE name=$1`, name)
	return scanRule(row)
}

// GetForEvent resolves a rule the same way config.AutomationRegistry does:
// an exact (event_type, model) match wins over a model-agnostic rule for
// the same event_type.
func (s *RulePGStore) GetForEvent(ctx context.Context, eventType, model string) (*AutomationRule, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+ruleSelectColumns+` FROM automation_rules
		WHERE event_type=$1 AND model=$2 AND enabled=true`, eventType, model)
	rule, err := scanRule(row)
	if err == nil {
		return rule, nil
	}
	if err != ErrNotFound {
		return nil, err
	}

	row = s.db.QueryRowContext(ctx, `SELECT `+ruleSelectColumns+` FROM automation_rules
		WHERE event_type=$1 AND model='' AND enabled=true`, eventType)
	return scanRule(row)
}

func (s *RulePGStore) ListAll(ctx context.Context) ([]*AutomationRule, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+ruleSelectColumns+` FROM automation_rules ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("audit: list automation rules: %w", err)
	}
	defer rows.Close()

	var out []*AutomationRule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rule)
	}
	return out, rows.Err()
}
