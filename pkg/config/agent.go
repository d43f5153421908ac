package config

import (
	"fmt"
	"sync"
)

// AgentConfig configures one agent graph (spec.md §5): its entry trigger,
// LLM backend, and guardrail overrides.
type AgentConfig struct {
	Description   string `yaml:"description,omitempty"`
	TriggerModel  string `yaml:"trigger_model,omitempty"`
	TriggerEvent  string `yaml:"trigger_event,omitempty"`
	LLMProvider   string `yaml:"llm_provider,omitempty"`
	MaxSteps      *int   `yaml:"max_steps,omitempty" validate:"omitempty,min=1"`
	MaxTokens     *int   `yaml:"max_tokens,omitempty" validate:"omitempty,min=1"`
	MaxVisitsNode *int   `yaml:"max_visits_per_node,omitempty" validate:"omitempty,min=1"`
}

// AgentRegistry stores agent graph configurations in memory with
// thread-safe access.
type AgentRegistry struct {
	byName map[string]*AgentConfig
	mu     sync.RWMutex
}

// NewAgentRegistry creates a new agent registry.
func NewAgentRegistry(agents map[string]*AgentConfig) *AgentRegistry {
	copied := make(map[string]*AgentConfig, len(agents))
	for k, v := range agents {
		copied[k] = v
	}
	return &AgentRegistry{byName: copied}
}

// Get retrieves an agent configuration by name.
func (r *AgentRegistry) Get(name string) (*AgentConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAgentNotFound, name)
	}
	return a, nil
}

// NameForTrigger resolves the name of the agent configured to fire on
// (eventType, model), or ErrAgentNotFound if no agent watches that pair.
func (r *AgentRegistry) NameForTrigger(eventType, model string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for name, cfg := range r.byName {
		if cfg.TriggerEvent == eventType && cfg.TriggerModel == model {
			return name, nil
		}
	}
	return "", fmt.Errorf("%w: event_type=%s model=%s", ErrAgentNotFound, eventType, model)
}

// GetAll returns every registered agent configuration.
func (r *AgentRegistry) GetAll() map[string]*AgentConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]*AgentConfig, len(r.byName))
	for k, v := range r.byName {
		out[k] = v
	}
	return out
}

// ResolvedGuardrails returns the agent's guardrail overrides, falling back
// to system defaults for unset fields (spec.md §5, invariant A3).
func ResolvedGuardrails(a *AgentConfig, defaults *Defaults) (maxSteps, maxTokens, loopThreshold int) {
	maxSteps = defaults.MaxAgentSteps
	maxTokens = defaults.MaxAgentTokens
	loopThreshold = defaults.LoopThreshold
	if a.MaxSteps != nil {
		maxSteps = *a.MaxSteps
	}
	if a.MaxTokens != nil {
		maxTokens = *a.MaxTokens
	}
	if a.MaxVisitsNode != nil {
		loopThreshold = *a.MaxVisitsNode
	}
	return maxSteps, maxTokens, loopThreshold
}
