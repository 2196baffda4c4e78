package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	yaml "gopkg.in/yaml.v3"

	"github.com/user/registry-watch/internal/config"
)

// newConfigCmd builds the configuration management command.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a configuration file with the default settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			cfg := config.DefaultConfig()
			if err := config.Save(cfg, configPath); err != nil {
				return fmt.Errorf("writing configuration: %w", err)
			}
			fmt.Println("Configuration initialized.")
			return nil
		},
	}
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			// Secrets stay out of the terminal.
			if cfg.Registry.GHCRToken != "" {
				cfg.Registry.GHCRToken = "***"
			}
			if cfg.Telegram.BotToken != "" {
				cfg.Telegram.BotToken = "***"
			}

			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("rendering configuration: %w", err)
			}
			fmt.Print(string(data))
			return nil
		},
	}
}
