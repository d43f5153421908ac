package config

// ERPConfig holds connection settings for the upstream ERP's external API
// (spec.md §6, component C1).
type ERPConfig struct {
	BaseURL       string `yaml:"base_url" validate:"required,url"`
	APIKeyEnv     string `yaml:"api_key_env,omitempty"`
	Database      string `yaml:"database,omitempty"`
	TimeoutMS     int    `yaml:"timeout_ms,omitempty" validate:"omitempty,min=1"`
	MaxRetries    int    `yaml:"max_retries,omitempty" validate:"omitempty,min=0"`
	WebhookSecret string `yaml:"webhook_secret_env,omitempty" validate:"required"`
}

func resolveERPConfig(sys *ERPYAMLConfig) *ERPConfig {
	cfg := &ERPConfig{
		APIKeyEnv:     "ERP_API_KEY",
		TimeoutMS:     10000,
		MaxRetries:    3,
		WebhookSecret: "ERP_WEBHOOK_SECRET",
	}
	if sys == nil {
		return cfg
	}
	if sys.BaseURL != "" {
		cfg.BaseURL = sys.BaseURL
	}
	if sys.APIKeyEnv != "" {
		cfg.APIKeyEnv = sys.APIKeyEnv
	}
	if sys.Database != "" {
		cfg.Database = sys.Database
	}
	if sys.TimeoutMS > 0 {
		cfg.TimeoutMS = sys.TimeoutMS
	}
	if sys.MaxRetries > 0 {
		cfg.MaxRetries = sys.MaxRetries
	}
	if sys.WebhookSecretEnv != "" {
		cfg.WebhookSecret = sys.WebhookSecretEnv
	}
	return cfg
}

// ERPYAMLConfig is the raw YAML shape for the erp: block.
type ERPYAMLConfig struct {
	BaseURL          string `yaml:"base_url,omitempty"`
	APIKeyEnv        string `yaml:"api_key_env,omitempty"`
	Database         string `yaml:"database,omitempty"`
	TimeoutMS        int    `yaml:"timeout_ms,omitempty"`
	MaxRetries       int    `yaml:"max_retries,omitempty"`
	WebhookSecretEnv string `yaml:"webhook_secret_env,omitempty"`
}
