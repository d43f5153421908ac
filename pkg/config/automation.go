package config

import (
	"fmt"
	"sync"
)

// AutomationConfig configures one (event_type, model) automation binding,
// including its confidence thresholds (spec.md §2).
type AutomationConfig struct {
	EventType string `yaml:"event_type" validate:"required"`
	// Model, when empty, matches any ERP model for EventType.
	Model                      string                 `yaml:"model,omitempty"`
	Enabled                    bool                   `yaml:"enabled"`
	DefaultConfidenceThreshold *float64               `yaml:"default_confidence_threshold,omitempty" validate:"omitempty,gte=0,lte=1"`
	AutoApproveThreshold       *float64               `yaml:"auto_approve_threshold,omitempty" validate:"omitempty,gte=0,lte=1"`
	Settings                   map[string]interface{} `yaml:"settings,omitempty"`
}

// AutomationRegistry stores automation rule configurations in memory with
// thread-safe access, mirroring the teacher's AgentRegistry shape.
type AutomationRegistry struct {
	byName map[string]*AutomationConfig
	mu     sync.RWMutex
}

// NewAutomationRegistry creates a new automation registry. Defensive copy
// to prevent external mutation of the backing map.
func NewAutomationRegistry(rules map[string]*AutomationConfig) *AutomationRegistry {
	copied := make(map[string]*AutomationConfig, len(rules))
	for k, v := range rules {
		copied[k] = v
	}
	return &AutomationRegistry{byName: copied}
}

// Get retrieves an automation rule by its configured name.
func (r *AutomationRegistry) Get(name string) (*AutomationConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rule, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAutomationNotFound, name)
	}
	return rule, nil
}

// GetForEvent resolves the rule that should handle a webhook for
// (eventType, model): an exact (event_type, model) match wins; failing
// that, a model-agnostic rule for the same event_type is used (spec.md §2).
func (r *AutomationRegistry) GetForEvent(eventType, model string) (*AutomationConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var generic *AutomationConfig
	for _, rule := range r.byName {
		if rule.EventType != eventType {
			continue
		}
		if rule.Model == model && model != "" {
			return rule, nil
		}
		if rule.Model == "" {
			generic = rule
		}
	}
	if generic != nil {
		return generic, nil
	}
	return nil, fmt.Errorf("%w: event_type=%s model=%s", ErrAutomationNotFound, eventType, model)
}

// NameForEvent resolves the registered name of the rule GetForEvent would
// return for (eventType, model), for callers that need to look up the
// matching automation.Automation by its AutomationType rather than read
// its threshold config.
func (r *AutomationRegistry) NameForEvent(eventType, model string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var genericName string
	for name, rule := range r.byName {
		if rule.EventType != eventType {
			continue
		}
		if rule.Model == model && model != "" {
			return name, nil
		}
		if rule.Model == "" {
			genericName = name
		}
	}
	if genericName != "" {
		return genericName, nil
	}
	return "", fmt.Errorf("%w: event_type=%s model=%s", ErrAutomationNotFound, eventType, model)
}

// GetAll returns every registered automation rule.
func (r *AutomationRegistry) GetAll() map[string]*AutomationConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]*AutomationConfig, len(r.byName))
	for k, v := range r.byName {
		out[k] = v
	}
	return out
}

// ResolvedThresholds returns the rule's thresholds, falling back to the
// system defaults for any field the rule leaves unset.
func ResolvedThresholds(rule *AutomationConfig, defaults *Defaults) (confidence, autoApprove float64) {
	confidence = defaults.DefaultConfidenceThreshold
	autoApprove = defaults.AutoApproveThreshold
	if rule.DefaultConfidenceThreshold != nil {
		confidence = *rule.DefaultConfidenceThreshold
	}
	if rule.AutoApproveThreshold != nil {
		autoApprove = *rule.AutoApproveThreshold
	}
	return confidence, autoApprove
}
