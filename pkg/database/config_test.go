package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigValidateRequiresPassword(t *testing.T) {
	cfg := Config{MaxOpenConns: 5, MaxIdleConns: 2}
	assert.Error(t, cfg.Validate())
}

func TestConfigValidateRejectsIdleExceedingOpen(t *testing.T) {
	cfg := Config{Password: "x", MaxOpenConns: 2, MaxIdleConns: 5}
	assert.Error(t, cfg.Validate())
}

func TestConfigValidatePasses(t *testing.T) {
	cfg := Config{Password: "x", MaxOpenConns: 5, MaxIdleConns: 2}
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigFromEnvRequiresPassword(t *testing.T) {
	t.Setenv("DB_PASSWORD", "")
	_, err := LoadConfigFromEnv()
	assert.Error(t, err)
}

func TestLoadConfigFromEnvAppliesDefaults(t *testing.T) {
	t.Setenv("DB_PASSWORD", "secret")
	cfg, err := LoadConfigFromEnv()
	assert.NoError(t, err)
	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, 5432, cfg.Port)
	assert.Equal(t, "orchestrator", cfg.Database)
}
