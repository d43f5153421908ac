package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validConfigForTest() *Config {
	auto := 0.95
	def := 0.7
	return &Config{
		ERP: &ERPConfig{
			BaseURL:       "https://erp.example.com",
			WebhookSecret: "ERP_WEBHOOK_SECRET",
		},
		System: &SystemConfig{
			Slack: &SlackConfig{Enabled: false},
		},
		AutomationRegistry: NewAutomationRegistry(map[string]*AutomationConfig{
			"rule": {
				EventType:                  "x",
				DefaultConfidenceThreshold: &def,
				AutoApproveThreshold:       &auto,
			},
		}),
		LLMProviderRegistry: NewLLMProviderRegistry(map[string]*LLMProviderConfig{
			"default": {Type: "anthropic", Model: "claude", APIKeyEnv: "KEY"},
		}),
		AgentRegistry: NewAgentRegistry(map[string]*AgentConfig{}),
	}
}

func TestValidateAllPassesOnWellFormedConfig(t *testing.T) {
	err := NewValidator(validConfigForTest()).ValidateAll()
	assert.NoError(t, err)
}

func TestValidateAllRejectsAutoApproveBelowDefaultThreshold(t *testing.T) {
	cfg := validConfigForTest()
	auto := 0.5
	def := 0.7
	cfg.AutomationRegistry = NewAutomationRegistry(map[string]*AutomationConfig{
		"rule": {EventType: "x", DefaultConfidenceThreshold: &def, AutoApproveThreshold: &auto},
	})

	err := NewValidator(cfg).ValidateAll()
	assert.Error(t, err)
}

func TestValidateAllRejectsSlackEnabledWithoutChannel(t *testing.T) {
	cfg := validConfigForTest()
	cfg.System.Slack = &SlackConfig{Enabled: true}

	err := NewValidator(cfg).ValidateAll()
	assert.Error(t, err)
}

func TestValidateAllRejectsMissingERPBaseURL(t *testing.T) {
	cfg := validConfigForTest()
	cfg.ERP.BaseURL = ""

	err := NewValidator(cfg).ValidateAll()
	assert.Error(t, err)
}
