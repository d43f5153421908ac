// Package config provides configuration management for the orchestrator:
// ERP connection settings, LLM providers, automation rules, scheduler
// cadences, and system-wide infrastructure settings.
package config

// Config is the umbrella configuration object returned by Initialize and
// used throughout the application.
type Config struct {
	configDir string

	Defaults *Defaults

	ERP       *ERPConfig
	System    *SystemConfig
	Scheduler *SchedulerConfig

	AutomationRegistry  *AutomationRegistry
	LLMProviderRegistry *LLMProviderRegistry
	AgentRegistry       *AgentRegistry
}

// Stats contains statistics about loaded configuration, surfaced in startup
// logs.
type Stats struct {
	Automations  int
	LLMProviders int
	Agents       int
}

// Stats returns configuration statistics for logging/monitoring.
func (c *Config) Stats() Stats {
	return Stats{
		Automations:  len(c.AutomationRegistry.GetAll()),
		LLMProviders: len(c.LLMProviderRegistry.GetAll()),
		Agents:       len(c.AgentRegistry.GetAll()),
	}
}

// ConfigDir returns the configuration directory path.
func (c *Config) ConfigDir() string {
	return c.configDir
}

// GetAutomation retrieves an automation rule by name.
func (c *Config) GetAutomation(name string) (*AutomationConfig, error) {
	return c.AutomationRegistry.Get(name)
}

// GetAutomationForEvent finds the best-matching rule for an (event_type,
// model) pair: an exact model match wins over a model-agnostic rule for the
// same event_type (spec.md §2).
func (c *Config) GetAutomationForEvent(eventType, model string) (*AutomationConfig, error) {
	return c.AutomationRegistry.GetForEvent(eventType, model)
}

// GetLLMProvider retrieves an LLM provider configuration by name.
func (c *Config) GetLLMProvider(name string) (*LLMProviderConfig, error) {
	return c.LLMProviderRegistry.Get(name)
}

// GetAgent retrieves an agent graph configuration by name.
func (c *Config) GetAgent(name string) (*AgentConfig, error) {
	return c.AgentRegistry.Get(name)
}
