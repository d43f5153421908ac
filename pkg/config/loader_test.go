package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const testOrchestratorYAML = `
erp:
  base_url: ${TEST_ERP_BASE_URL}
  webhook_secret_env: ERP_WEBHOOK_SECRET
automations:
  bank_reconciliation:
    auto_approve_threshold: 0.92
agents: {}
defaults:
  default_confidence_threshold: 0.65
`

const testLLMProvidersYAML = `
llm_providers:
  default:
    type: anthropic
    model: claude-test
    api_key_env: TEST_LLM_KEY
`

func writeTestConfigDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "orchestrator.yaml"), []byte(testOrchestratorYAML), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "llm-providers.yaml"), []byte(testLLMProvidersYAML), 0o600))
	return dir
}

func TestInitializeLoadsMergesAndValidates(t *testing.T) {
	t.Setenv("TEST_ERP_BASE_URL", "https://erp.example.com")
	dir := writeTestConfigDir(t)

	cfg, err := Initialize(dir)
	require.NoError(t, err)

	rule, err := cfg.GetAutomation("bank_reconciliation")
	require.NoError(t, err)
	require.NotNil(t, rule.AutoApproveThreshold)
	require.Equal(t, 0.92, *rule.AutoApproveThreshold)
	require.Equal(t, "bank_statement_line.created", rule.EventType, "builtin fields survive the merge")

	provider, err := cfg.GetLLMProvider("default")
	require.NoError(t, err)
	require.Equal(t, "claude-test", provider.Model)

	require.Equal(t, "https://erp.example.com", cfg.ERP.BaseURL)
	require.Equal(t, 0.65, cfg.Defaults.DefaultConfidenceThreshold)
	require.Equal(t, 0.95, cfg.Defaults.AutoApproveThreshold,"builtin default survives since defaults: block didn't set it")
}

func TestInitializeMissingFileReturnsLoadError(t *testing.T) {
	dir := t.TempDir()
	_, err := Initialize(dir)
	require.Error(t, err)
}
