package config

import (
	"fmt"
	"time"
)

// SystemYAMLConfig groups system-wide infrastructure settings read from the
// top-level "system:" YAML block.
type SystemYAMLConfig struct {
	APIKeyEnv        string           `yaml:"api_key_env,omitempty"`
	AllowedWSOrigins []string         `yaml:"allowed_ws_origins,omitempty"`
	Slack            *SlackYAMLConfig `yaml:"slack,omitempty"`
	Retention        *RetentionConfig `yaml:"retention,omitempty"`
}

// SlackYAMLConfig holds Slack notification settings from YAML.
type SlackYAMLConfig struct {
	Enabled  *bool  `yaml:"enabled,omitempty"`
	TokenEnv string `yaml:"token_env,omitempty"`
	Channel  string `yaml:"channel,omitempty"`
}

// SlackConfig is the resolved Slack configuration used by pkg/notify.
type SlackConfig struct {
	Enabled  bool
	TokenEnv string
	Channel  string
}

// RetentionConfig controls how long audit trail data is kept before
// cleanup, mirroring the retention knobs spec.md §7 implies for audit logs.
type RetentionConfig struct {
	AuditLogRetentionDays int           `yaml:"audit_log_retention_days,omitempty"`
	EventTTL              time.Duration `yaml:"event_ttl,omitempty"`
	CleanupInterval       time.Duration `yaml:"cleanup_interval,omitempty"`
}

// DefaultRetentionConfig returns the built-in retention defaults.
func DefaultRetentionConfig() *RetentionConfig {
	return &RetentionConfig{
		AuditLogRetentionDays: 365,
		EventTTL:              30 * 24 * time.Hour,
		CleanupInterval:       24 * time.Hour,
	}
}

// SystemConfig is the resolved system configuration.
type SystemConfig struct {
	APIKeyEnv        string
	AllowedWSOrigins []string
	Slack            *SlackConfig
	Retention        *RetentionConfig
}

func resolveSystemConfig(sys *SystemYAMLConfig) *SystemConfig {
	cfg := &SystemConfig{
		APIKeyEnv: "OPERATOR_API_KEY",
		Slack:     resolveSlackConfig(sys),
		Retention: resolveRetentionConfig(sys),
	}
	if sys != nil {
		if sys.APIKeyEnv != "" {
			cfg.APIKeyEnv = sys.APIKeyEnv
		}
		cfg.AllowedWSOrigins = sys.AllowedWSOrigins
	}
	return cfg
}

func resolveSlackConfig(sys *SystemYAMLConfig) *SlackConfig {
	cfg := &SlackConfig{
		Enabled:  false,
		TokenEnv: "SLACK_BOT_TOKEN",
	}
	if sys == nil || sys.Slack == nil {
		return cfg
	}
	s := sys.Slack
	if s.Enabled != nil {
		cfg.Enabled = *s.Enabled
	}
	if s.TokenEnv != "" {
		cfg.TokenEnv = s.TokenEnv
	}
	if s.Channel != "" {
		cfg.Channel = s.Channel
	}
	return cfg
}

func resolveRetentionConfig(sys *SystemYAMLConfig) *RetentionConfig {
	cfg := DefaultRetentionConfig()
	if sys == nil || sys.Retention == nil {
		return cfg
	}
	r := sys.Retention
	if r.AuditLogRetentionDays > 0 {
		cfg.AuditLogRetentionDays = r.AuditLogRetentionDays
	}
	if r.EventTTL > 0 {
		cfg.EventTTL = r.EventTTL
	}
	if r.CleanupInterval > 0 {
		cfg.CleanupInterval = r.CleanupInterval
	}
	return cfg
}

func validateSlack(cfg *SlackConfig) error {
	if cfg.Enabled && cfg.Channel == "" {
		return fmt.Errorf("%w: slack.channel is required when slack.enabled is true", ErrMissingRequiredField)
	}
	return nil
}
