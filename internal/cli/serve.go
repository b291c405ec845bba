package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the health/metrics server and the cache sweeper",
	RunE:  runServe,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check backend reachability and the local session",
	RunE: func(cmd *cobra.Command, args []string) error {
		report := app.Health(cmd.Context())

		w := newTable(stdout(), "COMPONENT\tSTATUS\tLATENCY\tDETAIL")
		for _, name := range []string{"backend", "session", "cache"} {
			c, ok := report.Components[name]
			if !ok {
				continue
			}
			detail := c.Detail
			if c.Error != "" {
				detail = c.Error
			}
			fmt.Fprintf(w, "%s\t%s\t%dms\t%s\n", c.Name, paint(string(c.Status)), c.LatencyMs, detail)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(stdout(), "\nsystem: %s\n", paint(string(report.SystemStatus)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, statusCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("start: %w", err)
	}

	slog.Info("topup started", "config", cfgPath, "api", cfg.API.BaseURL)

	sig := <-sigChan
	slog.Info("Received signal, shutting down...", "signal", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	slog.Info("topup stopped gracefully")
	return nil
}
