package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/user/registry-watch/internal/report"
	"github.com/user/registry-watch/pkg/types"
)

const (
	formatConsole = "console"
	formatJSON    = "json"
	formatHTML    = "html"
)

// newCheckCmd builds the one-shot batch check command.
func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check all monitored images once and print the resulting state",
		RunE:  runCheck,
	}

	cmd.Flags().StringP("output", "o", formatConsole, "Output format (console, json, html)")
	cmd.Flags().String("output-file", "", "Write output to file instead of stdout")
	cmd.Flags().Bool("fail-on-updates", false, "Exit with non-zero code if updates are found")

	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	logger := slog.Default()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if len(cfg.Images) == 0 {
		return fmt.Errorf("no monitored images configured; add some with 'registry-watch import' or edit the config")
	}

	mon, err := buildMonitor(cfg, logger)
	if err != nil {
		return err
	}

	states, err := mon.RunAll(cmd.Context(), cfg.Images)
	if err != nil {
		return fmt.Errorf("batch check failed: %w", err)
	}

	outputFormat, _ := cmd.Flags().GetString("output")
	outputFile, _ := cmd.Flags().GetString("output-file")
	if err := writeOutput(states, outputFormat, outputFile); err != nil {
		return err
	}

	failOnUpdates, _ := cmd.Flags().GetBool("fail-on-updates")
	if failOnUpdates {
		for _, st := range states {
			if st.HasUpdate {
				return fmt.Errorf("updates available")
			}
		}
	}
	return nil
}

func writeOutput(states []types.ImageState, format, outputFile string) error {
	var formatted string
	switch format {
	case formatJSON:
		out, err := report.JSONFormatter{}.Format(states)
		if err != nil {
			return fmt.Errorf("formatting report: %w", err)
		}
		formatted = out
	case formatHTML:
		out, err := report.HTMLFormatter{}.Format(states)
		if err != nil {
			return fmt.Errorf("formatting report: %w", err)
		}
		formatted = out
	case formatConsole:
		formatted = consoleReport(states)
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}

	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(formatted), 0600); err != nil {
			return fmt.Errorf("writing output file: %w", err)
		}
		return nil
	}
	fmt.Println(formatted)
	return nil
}

func consoleReport(states []types.ImageState) string {
	out := ""
	updates := 0
	for _, st := range states {
		marker := "✓"
		detail := "up to date"
		switch {
		case st.Dismissed:
			marker = "•"
			detail = "update dismissed"
		case st.HasUpdate:
			marker = "!"
			updates++
			if st.LatestAvailableVersion != "" {
				detail = "update available: " + st.LatestAvailableVersion
			} else {
				detail = "update available: " + st.RepresentativeTag
			}
		}
		out += fmt.Sprintf("%s %s:%s  %s\n", marker, st.Image, st.Tag, detail)
	}
	out += fmt.Sprintf("\n%d images checked, %d with updates", len(states), updates)
	return out
}
