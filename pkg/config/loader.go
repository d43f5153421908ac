package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// OrchestratorYAMLConfig represents the complete orchestrator.yaml file
// structure.
type OrchestratorYAMLConfig struct {
	ERP         *ERPYAMLConfig                `yaml:"erp"`
	System      *SystemYAMLConfig             `yaml:"system"`
	Scheduler   *SchedulerConfig              `yaml:"scheduler"`
	Automations map[string]AutomationConfig   `yaml:"automations"`
	Agents      map[string]AgentConfig        `yaml:"agents"`
	Defaults    *Defaults                     `yaml:"defaults"`
}

// LLMProvidersYAMLConfig represents the separate llm-providers.yaml file,
// kept apart so provider credentials can be managed/rotated independently
// of automation tuning.
type LLMProvidersYAMLConfig struct {
	LLMProviders map[string]LLMProviderConfig `yaml:"llm_providers"`
}

// Initialize loads, validates, and returns ready-to-use configuration.
// This is the primary entry point for configuration loading.
//
// Steps:
//  1. Load .env (if present) so ${VAR} references below resolve.
//  2. Load orchestrator.yaml and llm-providers.yaml from configDir.
//  3. Expand environment variables.
//  4. Merge built-in defaults with user-defined configuration.
//  5. Build in-memory registries.
//  6. Validate all configuration.
func Initialize(configDir string) (*Config, error) {
	log := zap.L().With(zap.String("config_dir", configDir))
	log.Info("initializing configuration")

	if err := godotenv.Load(filepath.Join(configDir, ".env")); err != nil && !os.IsNotExist(err) {
		log.Warn("failed to load .env file", zap.Error(err))
	}

	cfg, err := load(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := NewValidator(cfg).ValidateAll(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	stats := cfg.Stats()
	log.Info("configuration initialized",
		zap.Int("automations", stats.Automations),
		zap.Int("llm_providers", stats.LLMProviders),
		zap.Int("agents", stats.Agents))

	return cfg, nil
}

type configLoader struct {
	configDir string
}

func (l *configLoader) loadYAML(filename string, target any) error {
	path := filepath.Join(l.configDir, filename)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return err
	}

	data = ExpandEnv(data)

	if err := yaml.Unmarshal(data, target); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}
	return nil
}

func (l *configLoader) loadOrchestratorYAML() (*OrchestratorYAMLConfig, error) {
	var cfg OrchestratorYAMLConfig
	cfg.Automations = make(map[string]AutomationConfig)
	cfg.Agents = make(map[string]AgentConfig)

	if err := l.loadYAML("orchestrator.yaml", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (l *configLoader) loadLLMProvidersYAML() (map[string]LLMProviderConfig, error) {
	var cfg LLMProvidersYAMLConfig
	cfg.LLMProviders = make(map[string]LLMProviderConfig)

	if err := l.loadYAML("llm-providers.yaml", &cfg); err != nil {
		return nil, err
	}
	return cfg.LLMProviders, nil
}

func load(configDir string) (*Config, error) {
	loader := &configLoader{configDir: configDir}

	orch, err := loader.loadOrchestratorYAML()
	if err != nil {
		return nil, NewLoadError("orchestrator.yaml", err)
	}

	llmProviders, err := loader.loadLLMProvidersYAML()
	if err != nil {
		return nil, NewLoadError("llm-providers.yaml", err)
	}

	builtin := GetBuiltinConfig()

	automations, err := mergeAutomations(builtin.Automations, orch.Automations)
	if err != nil {
		return nil, fmt.Errorf("failed to merge automations: %w", err)
	}
	agents, err := mergeAgents(builtin.Agents, orch.Agents)
	if err != nil {
		return nil, fmt.Errorf("failed to merge agents: %w", err)
	}
	providers := mergeLLMProviders(builtin.LLMProviders, llmProviders)

	defaults := orch.Defaults
	if defaults == nil {
		defaults = &Defaults{}
	}
	defaults.applyBuiltinDefaults()

	return &Config{
		configDir:           configDir,
		Defaults:            defaults,
		ERP:                 resolveERPConfig(orch.ERP),
		System:              resolveSystemConfig(orch.System),
		Scheduler:            resolveSchedulerConfig(orch.Scheduler),
		AutomationRegistry:   NewAutomationRegistry(automations),
		LLMProviderRegistry:  NewLLMProviderRegistry(providers),
		AgentRegistry:        NewAgentRegistry(agents),
	}, nil
}
