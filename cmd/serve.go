package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/user/registry-watch/internal/scheduler"
	"github.com/user/registry-watch/internal/server"
	"github.com/user/registry-watch/pkg/types"
)

// newServeCmd builds the long-running server command: HTTP API plus the
// periodic batch check.
func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the periodic batch check",
		RunE:  runServe,
	}

	cmd.Flags().String("listen", "", "Listen address (overrides config)")
	cmd.Flags().Bool("no-schedule", false, "Disable the periodic batch check")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := slog.Default()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	mon, err := buildMonitor(cfg, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	noSchedule, _ := cmd.Flags().GetBool("no-schedule")
	if !noSchedule {
		interval := time.Duration(cfg.Check.Interval) * time.Minute
		sched := scheduler.New(interval, func(ctx context.Context) error {
			_, err := mon.RunAll(ctx, cfg.Images)
			return err
		}, logger)
		go sched.Run(ctx)
	}

	listen := cfg.Server.Listen
	if flagListen, _ := cmd.Flags().GetString("listen"); flagListen != "" {
		listen = flagListen
	}

	srv := server.New(mon, func() []types.MonitoredImage { return cfg.Images }, logger)
	httpServer := &http.Server{
		Addr:              listen,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info("HTTP API listening", "addr", listen, "images", len(cfg.Images))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server failed: %w", err)
	}
	return nil
}
