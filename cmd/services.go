package cmd

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/user/registry-watch/internal/cache"
	"github.com/user/registry-watch/internal/checker"
	"github.com/user/registry-watch/internal/config"
	"github.com/user/registry-watch/internal/monitor"
	"github.com/user/registry-watch/internal/notifier"
	"github.com/user/registry-watch/internal/registry"
	"github.com/user/registry-watch/internal/store"
	"github.com/user/registry-watch/pkg/types"
)

// loadConfig reads the configuration honoring the --config flag.
func loadConfig(cmd *cobra.Command) (*types.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// buildMonitor assembles the full service stack from configuration.
func buildMonitor(cfg *types.Config, logger *slog.Logger) (*monitor.Service, error) {
	dispatcher := registry.NewDispatcher(registry.Options{
		Timeout:   time.Duration(cfg.Registry.Timeout) * time.Second,
		GHCRToken: cfg.Registry.GHCRToken,
	})

	var adapters checker.AdapterProvider = dispatcher
	if cfg.Registry.CacheTTL > 0 {
		registryCache := cache.New(time.Duration(cfg.Registry.CacheTTL) * time.Second)
		adapters = cache.WrapProvider(dispatcher, registryCache)
	}

	chk := checker.NewService(adapters, logger, time.Duration(cfg.Check.Pacing)*time.Millisecond)

	statePath, err := config.StatePath(cfg)
	if err != nil {
		return nil, err
	}
	stateStore := store.NewFileStore(statePath)

	notifySvc, err := buildNotifier(cfg)
	if err != nil {
		return nil, err
	}

	var mon *monitor.Service
	if notifySvc.HasClients() {
		mon = monitor.New(chk, stateStore, notifySvc, logger)
	} else {
		mon = monitor.New(chk, stateStore, nil, logger)
	}
	return mon, nil
}

func buildNotifier(cfg *types.Config) (*notifier.Service, error) {
	svc, err := notifier.NewService(cfg.Telegram.Template)
	if err != nil {
		return nil, fmt.Errorf("failed to build notifier: %w", err)
	}
	if cfg.Telegram.Enabled {
		svc.AddClient(notifier.NewTelegramClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID))
	}
	if cfg.Webhook.Enabled {
		svc.AddClient(notifier.NewWebhookClient(cfg.Webhook.URL))
	}
	return svc, nil
}
