// Package main provides the decmart binary entry point.
// Decmart is a terminal storefront client for the Raynott Decmart
// backend: browse the catalog, manage a local cart, and pay through
// the hosted gateway checkout.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/raynott/decmart/commands"
	"github.com/raynott/decmart/config"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "decmart"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		configPath string
		apiURL     string
		logLevel   string
	)

	// Commands are registered up front against this app; the persistent
	// pre-run fills it in once flags and config are known.
	app := &commands.App{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Terminal storefront for Raynott Decmart",
		Long: `Decmart is a terminal storefront client.

Browse the catalog, keep a cart on this machine, check out through the
hosted payment gateway, and track your orders. Admin accounts manage
the catalog, users and order statuses with the 'admin' subcommands.

Cart, session and checkout state live under ~/.local/state/decmart
and survive between runs.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(c *cobra.Command, args []string) error {
			logger := newLogger(logLevel)
			slog.SetDefault(logger)

			cfg, err := loadConfig(configPath, logger)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if apiURL != "" {
				cfg.API.BaseURL = apiURL
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			built, err := commands.NewApp(cfg, logger)
			if err != nil {
				return err
			}
			*app = *built
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Backend base URL (overrides config)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	commands.Register(cmd, app)

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	})

	return cmd
}

func newLogger(logLevel string) *slog.Logger {
	level := slog.LevelWarn
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "error":
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// loadConfig layers the usual sources, then an explicit --config file
// on top when given.
func loadConfig(configPath string, logger *slog.Logger) (*config.Config, error) {
	cfg, err := config.NewLoader(logger).Load()
	if err != nil {
		return nil, err
	}
	if configPath != "" {
		explicit, err := config.LoadFromFile(configPath)
		if err != nil {
			return nil, err
		}
		cfg.Merge(explicit)
	}
	return cfg, nil
}
