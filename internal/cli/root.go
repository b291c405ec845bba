package cli

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"github.com/vietddude/stylelog"

	"github.com/vietddude/topup/internal/control"
	"github.com/vietddude/topup/internal/core/config"
	"github.com/vietddude/topup/internal/infra/api"
	"github.com/vietddude/topup/internal/observability"
)

// Version is stamped at build time.
var Version = "dev"

var (
	cfgPath string
	isDebug bool

	cfg *config.AppConfig
	app *control.App
)

var rootCmd = &cobra.Command{
	Use:               "topup",
	Short:             "Admin client for the game top-up storefront",
	Long:              `topup manages users, games, products, orders, resellers and support messages through the storefront admin API.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if app != nil {
			_ = app.Client.Close()
		}
		observability.Flush()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("Command failed", "error", err)
		if !api.IsUnauthorized(err) {
			observability.Capture(err, map[string]string{"command": commandName()})
			observability.Flush()
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "config.yaml", "config file (default is config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&isDebug, "debug", false, "enable debug logging")
}

func setup(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	loaded, err := config.Load(cfgPath)
	if err != nil {
		stylelog.InitDefault()
		return fmt.Errorf("load config: %w", err)
	}
	cfg = loaded

	slogLevel := slog.LevelInfo
	switch {
	case isDebug || cfg.Logging.Level == "debug":
		slogLevel = slog.LevelDebug
	case cfg.Logging.Level == "warn":
		slogLevel = slog.LevelWarn
	case cfg.Logging.Level == "error":
		slogLevel = slog.LevelError
	}

	stylelog.InitDefault(&tint.Options{
		Level:      slogLevel,
		TimeFormat: time.RFC3339,
	})

	if cfg.API.ClientVersion == config.DefaultClientVersion && Version != "dev" {
		cfg.API.ClientVersion = Version
	}

	if err := observability.Init(cfg.Sentry.DSN, cfg.Sentry.Environment, Version, cfg.Sentry.SampleRate); err != nil {
		slog.Warn("Sentry disabled", "error", err)
	}

	app, err = control.NewApp(cfg)
	if err != nil {
		return fmt.Errorf("initialize app: %w", err)
	}
	return nil
}

func commandName() string {
	cmd, _, err := rootCmd.Find(os.Args[1:])
	if err != nil || cmd == nil {
		return "topup"
	}
	return cmd.CommandPath()
}
