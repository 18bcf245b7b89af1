// Package main provides the CLI entrypoint for popwin.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/popwin/internal/config"
	"github.com/jmylchreest/popwin/internal/render"
)

// Build-time variables (set via ldflags)
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

// Global configuration and state
var (
	cfg        *config.Config
	globalOpts struct {
		verbose    bool
		configPath string
		color      string
	}
	logger *slog.Logger
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "popwin",
	Short: "Floating popup windows over a terminal grid",
	Long: `popwin lays out and draws floating popup windows over a text view.

It runs scripted popup scenarios, answers one-shot layout queries and
provides an interactive demo.

Running popwin without a subcommand launches the demo.`,
	Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime),
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogger()

		var err error
		cfg, err = config.LoadConfig(configPath())
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if globalOpts.color != "" {
			if _, ok := render.ParseProfile(globalOpts.color); !ok {
				return fmt.Errorf("invalid --color %q, must be one of: ascii, ansi, ansi256, truecolor", globalOpts.color)
			}
		}
		return nil
	},
	// Default to the demo when no subcommand is provided
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDemo(cmd, args)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&globalOpts.verbose, "verbose", "v", false,
		"Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&globalOpts.configPath, "config", "",
		"Path to config file (default: ~/.config/popwin/config.toml)")
	rootCmd.PersistentFlags().StringVar(&globalOpts.color, "color", "",
		"Force a color profile: ascii, ansi, ansi256, truecolor (default: detect)")
}

// setupLogger configures the global slog logger.
func setupLogger() {
	level := slog.LevelWarn
	if globalOpts.verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	// Log to stderr so stdout is clean for output
	handler := slog.NewTextHandler(os.Stderr, opts)
	logger = slog.New(handler)
	slog.SetDefault(logger)
}

// configPath returns the config file in use.
func configPath() string {
	if globalOpts.configPath != "" {
		return globalOpts.configPath
	}
	return config.ConfigPath()
}

// theme builds the highlight theme for stdout.
func theme() *render.Theme {
	return render.ThemeFromConfig(cfg, render.NewRenderer(globalOpts.color))
}
