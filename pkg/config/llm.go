package config

import (
	"fmt"
	"sync"
)

// LLMProviderConfig describes one configured LLM backend (spec.md §5,
// component C2).
type LLMProviderConfig struct {
	Type        string  `yaml:"type" validate:"required,oneof=anthropic openai azure_openai"`
	BaseURL     string  `yaml:"base_url,omitempty"`
	APIKeyEnv   string  `yaml:"api_key_env" validate:"required"`
	Model       string  `yaml:"model" validate:"required"`
	TimeoutMS   int     `yaml:"timeout_ms,omitempty" validate:"omitempty,min=1"`
	MaxRetries  int     `yaml:"max_retries,omitempty" validate:"omitempty,min=0"`
	Temperature float64 `yaml:"temperature,omitempty" validate:"omitempty,gte=0,lte=2"`
}

// LLMProviderRegistry stores LLM provider configurations in memory with
// thread-safe access.
type LLMProviderRegistry struct {
	byName map[string]*LLMProviderConfig
	mu     sync.RWMutex
}

// NewLLMProviderRegistry creates a new LLM provider registry.
func NewLLMProviderRegistry(providers map[string]*LLMProviderConfig) *LLMProviderRegistry {
	copied := make(map[string]*LLMProviderConfig, len(providers))
	for k, v := range providers {
		copied[k] = v
	}
	return &LLMProviderRegistry{byName: copied}
}

// Get retrieves an LLM provider configuration by name.
func (r *LLMProviderRegistry) Get(name string) (*LLMProviderConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLLMProviderNotFound, name)
	}
	return p, nil
}

// GetAll returns every registered LLM provider.
func (r *LLMProviderRegistry) GetAll() map[string]*LLMProviderConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]*LLMProviderConfig, len(r.byName))
	for k, v := range r.byName {
		out[k] = v
	}
	return out
}
