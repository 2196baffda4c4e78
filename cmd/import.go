package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/user/registry-watch/internal/compose"
	"github.com/user/registry-watch/internal/config"
	"github.com/user/registry-watch/internal/docker"
	"github.com/user/registry-watch/pkg/types"
)

// newImportCmd builds the command that populates the monitored-image list
// from running containers or compose files.
func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [compose-file...]",
		Short: "Import monitored images from the Docker daemon or compose files",
		Long: `Import discovers container images and adds them to the configuration.

With no arguments it asks the local Docker daemon for the images of all
running containers. With compose file arguments it reads the image of every
service instead. Already-monitored images are kept as they are.`,
		RunE: runImport,
	}

	cmd.Flags().Bool("dry-run", false, "Show what would be imported without saving")

	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	logger := slog.Default()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	var discovered []types.MonitoredImage
	if len(args) == 0 {
		discovered, err = importFromDaemon(cmd, logger)
	} else {
		discovered, err = importFromComposeFiles(args)
	}
	if err != nil {
		return err
	}

	added := mergeImages(cfg, discovered)
	if len(added) == 0 {
		fmt.Println("No new images to import.")
		return nil
	}

	for _, img := range added {
		fmt.Printf("+ %s (%s)\n", img.Key(), img.Name)
	}
	fmt.Printf("\n%d new images, %d monitored in total\n", len(added), len(cfg.Images))

	if dryRun, _ := cmd.Flags().GetBool("dry-run"); dryRun {
		fmt.Println("Dry run: configuration not saved.")
		return nil
	}

	configPath, _ := cmd.Flags().GetString("config")
	if err := config.Save(cfg, configPath); err != nil {
		return fmt.Errorf("saving configuration: %w", err)
	}
	return nil
}

func importFromDaemon(cmd *cobra.Command, logger *slog.Logger) ([]types.MonitoredImage, error) {
	dockerClient, err := docker.NewClient(logger)
	if err != nil {
		return nil, fmt.Errorf("connecting to Docker daemon: %w", err)
	}
	defer dockerClient.Close()

	if err := dockerClient.Ping(cmd.Context()); err != nil {
		return nil, fmt.Errorf("Docker daemon not reachable: %w", err)
	}
	return dockerClient.ListRunningImages(cmd.Context())
}

func importFromComposeFiles(paths []string) ([]types.MonitoredImage, error) {
	parser := compose.NewParser()
	var discovered []types.MonitoredImage
	for _, path := range paths {
		images, err := parser.ParseFile(path)
		if err != nil {
			return nil, err
		}
		discovered = append(discovered, images...)
	}
	return discovered, nil
}

// mergeImages appends discovered images not yet monitored, keyed by
// (path, tag). Returns the newly added entries.
func mergeImages(cfg *types.Config, discovered []types.MonitoredImage) []types.MonitoredImage {
	existing := make(map[string]struct{}, len(cfg.Images))
	for _, img := range cfg.Images {
		existing[img.Key()] = struct{}{}
	}

	var added []types.MonitoredImage
	for _, img := range discovered {
		if _, ok := existing[img.Key()]; ok {
			continue
		}
		existing[img.Key()] = struct{}{}
		cfg.Images = append(cfg.Images, img)
		added = append(added, img)
	}
	return added
}
