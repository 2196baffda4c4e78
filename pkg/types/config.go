package types

// Config is the full application configuration, loaded from YAML with
// environment overrides.
type Config struct {
	Images   []MonitoredImage `yaml:"images"`
	Registry RegistryConfig   `yaml:"registry"`
	Check    CheckConfig      `yaml:"check"`
	Server   ServerConfig     `yaml:"server"`
	Telegram TelegramConfig   `yaml:"telegram"`
	Webhook  WebhookConfig    `yaml:"webhook"`
	// StateFile is where the per-image state collection is persisted.
	StateFile string `yaml:"state_file"`
}

// RegistryConfig holds settings shared by the registry adapters.
type RegistryConfig struct {
	// Timeout is the per-request timeout in seconds.
	Timeout int `yaml:"timeout"`
	// GHCRToken optionally authenticates requests against ghcr.io.
	GHCRToken string `yaml:"ghcr_token,omitempty"`
	// CacheTTL is the adapter response cache lifetime in seconds.
	// Zero disables caching.
	CacheTTL int `yaml:"cache_ttl"`
}

// CheckConfig controls the batch check cadence.
type CheckConfig struct {
	// Interval between scheduled batch checks, in minutes.
	Interval int `yaml:"interval"`
	// Pacing between consecutive image checks within a batch, in
	// milliseconds. Keeps anonymous registry rate limits happy.
	Pacing int `yaml:"pacing_ms"`
}

// ServerConfig holds the HTTP API settings.
type ServerConfig struct {
	Listen string `yaml:"listen"`
}

// TelegramConfig holds Telegram notification settings.
type TelegramConfig struct {
	Enabled  bool   `yaml:"enabled"`
	BotToken string `yaml:"bot_token,omitempty"`
	ChatID   string `yaml:"chat_id,omitempty"`
	Template string `yaml:"template,omitempty"`
}

// WebhookConfig holds generic webhook notification settings.
type WebhookConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url,omitempty"`
}
