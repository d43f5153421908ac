package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Validator validates loaded configuration comprehensively, with clear
// error messages attributing each failure to its component.
type Validator struct {
	cfg      *Config
	validate *validator.Validate
}

// NewValidator creates a validator for the given configuration.
func NewValidator(cfg *Config) *Validator {
	return &Validator{cfg: cfg, validate: validator.New()}
}

// ValidateAll performs comprehensive validation, fail-fast at the first
// error. Order matters: ERP/system settings are infrastructure that
// everything else depends on, so they're checked first.
func (v *Validator) ValidateAll() error {
	if err := v.validate.Struct(v.cfg.ERP); err != nil {
		return fmt.Errorf("erp validation failed: %w", err)
	}
	if err := validateSlack(v.cfg.System.Slack); err != nil {
		return fmt.Errorf("system validation failed: %w", err)
	}
	if err := v.validateAutomations(); err != nil {
		return fmt.Errorf("automation validation failed: %w", err)
	}
	if err := v.validateLLMProviders(); err != nil {
		return fmt.Errorf("llm provider validation failed: %w", err)
	}
	if err := v.validateAgents(); err != nil {
		return fmt.Errorf("agent validation failed: %w", err)
	}
	return nil
}

func (v *Validator) validateAutomations() error {
	for name, rule := range v.cfg.AutomationRegistry.GetAll() {
		if err := v.validate.Struct(rule); err != nil {
			return NewValidationError("automation", name, "", err)
		}
		if rule.DefaultConfidenceThreshold != nil && rule.AutoApproveThreshold != nil &&
			*rule.AutoApproveThreshold < *rule.DefaultConfidenceThreshold {
			return NewValidationError("automation", name, "auto_approve_threshold",
				fmt.Errorf("must be >= default_confidence_threshold"))
		}
	}
	return nil
}

func (v *Validator) validateLLMProviders() error {
	for name, p := range v.cfg.LLMProviderRegistry.GetAll() {
		if err := v.validate.Struct(p); err != nil {
			return NewValidationError("llm_provider", name, "", err)
		}
	}
	return nil
}

func (v *Validator) validateAgents() error {
	for name, a := range v.cfg.AgentRegistry.GetAll() {
		if a.LLMProvider != "" {
			if _, err := v.cfg.LLMProviderRegistry.Get(a.LLMProvider); err != nil {
				return NewValidationError("agent", name, "llm_provider", err)
			}
		}
	}
	return nil
}
