package cmd

import (
	"github.com/spf13/cobra"
)

// NewRootCmd builds the application's root command.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "registry-watch",
		Short: "Registry Watch - track container image updates across registries",
		Long: `Registry Watch polls container registries for the images you monitor and
reports when a newer build or version is available.

It understands Docker Hub, GitHub Container Registry, Quay and arbitrary
OCI-compatible registries, keeps durable per-image state with user
dismissals, and can notify via Telegram or a generic webhook.`,
		Version: "0.1.0",
	}

	cmd.AddCommand(newCheckCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newImportCmd())
	cmd.AddCommand(newConfigCmd())

	cmd.PersistentFlags().StringP("config", "c", "", "Path to configuration file")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")

	return cmd
}
