// Package config loads and persists the application configuration.
package config

import (
	"os"
	"path/filepath"
	"strconv"

	yaml "gopkg.in/yaml.v3"

	"github.com/user/registry-watch/pkg/errors"
	"github.com/user/registry-watch/pkg/types"
)

const (
	DefaultConfigDir  = ".registry-watch"
	DefaultConfigFile = "config.yaml"
	DefaultStateFile  = "state.json"
)

// Load reads configuration from file and environment. A missing file is not
// an error: defaults plus environment overrides apply.
func Load(configPath string) (*types.Config, error) {
	cfg := DefaultConfig()

	if configPath == "" {
		dir, err := defaultDir()
		if err != nil {
			return nil, errors.Wrap("config.Load", err)
		}
		configPath = filepath.Join(dir, DefaultConfigFile)
	}

	if err := loadFromFile(cfg, configPath); err != nil {
		if !os.IsNotExist(err) {
			return nil, errors.Wrapf("config.Load", err, "loading config file %s", configPath)
		}
	}

	loadFromEnv(cfg)

	if err := validate(cfg); err != nil {
		return nil, errors.Wrap("config.Load", err)
	}

	return cfg, nil
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *types.Config {
	return &types.Config{
		Registry: types.RegistryConfig{
			Timeout:  8,
			CacheTTL: 300,
		},
		Check: types.CheckConfig{
			Interval: 60,
			Pacing:   1000,
		},
		Server: types.ServerConfig{
			Listen: ":8080",
		},
		Telegram: types.TelegramConfig{
			Template: defaultMessageTemplate(),
		},
	}
}

func defaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, DefaultConfigDir), nil
}

// StatePath resolves the state file location, defaulting next to the config.
func StatePath(cfg *types.Config) (string, error) {
	if cfg.StateFile != "" {
		return cfg.StateFile, nil
	}
	dir, err := defaultDir()
	if err != nil {
		return "", errors.Wrap("config.StatePath", err)
	}
	return filepath.Join(dir, DefaultStateFile), nil
}

func loadFromFile(cfg *types.Config, filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return errors.Wrapf("config.loadFromFile", err, "parsing YAML file %s", filePath)
	}
	return nil
}

func loadFromEnv(cfg *types.Config) {
	if token := os.Getenv("GHCR_TOKEN"); token != "" {
		cfg.Registry.GHCRToken = token
	}
	if token := os.Getenv("GITHUB_TOKEN"); token != "" && cfg.Registry.GHCRToken == "" {
		cfg.Registry.GHCRToken = token
	}
	if timeout := os.Getenv("REGISTRY_TIMEOUT"); timeout != "" {
		if val, err := strconv.Atoi(timeout); err == nil && val > 0 {
			cfg.Registry.Timeout = val
		}
	}
	if interval := os.Getenv("CHECK_INTERVAL"); interval != "" {
		if val, err := strconv.Atoi(interval); err == nil && val > 0 {
			cfg.Check.Interval = val
		}
	}
	if listen := os.Getenv("LISTEN_ADDR"); listen != "" {
		cfg.Server.Listen = listen
	}
	if stateFile := os.Getenv("STATE_FILE"); stateFile != "" {
		cfg.StateFile = stateFile
	}

	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		cfg.Telegram.BotToken = token
	}
	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		cfg.Telegram.ChatID = chatID
	}
	if enabled := os.Getenv("TELEGRAM_ENABLED"); enabled != "" {
		if val, err := strconv.ParseBool(enabled); err == nil {
			cfg.Telegram.Enabled = val
		}
	}
	if url := os.Getenv("WEBHOOK_URL"); url != "" {
		cfg.Webhook.URL = url
		cfg.Webhook.Enabled = true
	}
}

func validate(cfg *types.Config) error {
	if cfg.Registry.Timeout <= 0 {
		return errors.New("config.validate", "registry timeout must be positive")
	}
	if cfg.Check.Interval <= 0 {
		return errors.New("config.validate", "check interval must be positive")
	}
	if cfg.Check.Pacing < 0 {
		return errors.New("config.validate", "check pacing must not be negative")
	}
	if cfg.Telegram.Enabled {
		if cfg.Telegram.BotToken == "" {
			return errors.New("config.validate", "telegram bot token is required when telegram is enabled")
		}
		if cfg.Telegram.ChatID == "" {
			return errors.New("config.validate", "telegram chat ID is required when telegram is enabled")
		}
	}
	if cfg.Webhook.Enabled && cfg.Webhook.URL == "" {
		return errors.New("config.validate", "webhook URL is required when webhook is enabled")
	}
	for _, img := range cfg.Images {
		if !img.IsValid() {
			return errors.Newf("config.validate", "monitored image %q has no image path", img.Name)
		}
		if img.Registry != "" && !img.Registry.IsValid() {
			return errors.Newf("config.validate", "monitored image %q has unknown registry kind %q", img.Name, img.Registry)
		}
	}
	return nil
}

// Save writes the configuration to a file, creating the default directory
// when no path is given.
func Save(cfg *types.Config, configPath string) error {
	if configPath == "" {
		dir, err := defaultDir()
		if err != nil {
			return errors.Wrap("config.Save", err)
		}
		if err := os.MkdirAll(dir, 0750); err != nil {
			return errors.Wrapf("config.Save", err, "creating config directory %s", dir)
		}
		configPath = filepath.Join(dir, DefaultConfigFile)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap("config.Save", err)
	}
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return errors.Wrapf("config.Save", err, "writing config file %s", configPath)
	}
	return nil
}

// defaultMessageTemplate renders the update notification message.
func defaultMessageTemplate() string {
	return `🐳 Image updates available

{{range .}}🔄 {{.Image}}:{{.Tag}}
   Newest: {{.RepresentativeTag}}{{if .LatestAvailableVersion}} ({{.LatestAvailableVersion}}){{end}}
{{end}}`
}
