// Package cli implements the continuity command tree.
package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dotcommander/continuity/internal/config"
	"github.com/dotcommander/continuity/internal/consistency"
)

var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets the version information injected via ldflags.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

var (
	configFile string
	logLevel   string

	// populated by loadConfig before any subcommand runs
	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "continuity",
	Short: "Narrative consistency checker for manuscripts",
	Long: `continuity analyses a manuscript (scenes, characters, locations and an
optional timeline) and reports consistency problems: characters acting out of
character, timeline and travel impossibilities, plot holes, dialogue drift,
prop and injury continuity, broken world rules, name variants and pacing.

Manuscripts are read from YAML, JSON or TOML files.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "continuity %s\ncommit: %s\nbuilt:  %s\n", appVersion, appCommit, appDate)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default $XDG_CONFIG_HOME/continuity/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level (debug, info, warn, error)")
	rootCmd.AddCommand(versionCmd)
}

func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	if configFile != "" {
		cfg, err = config.LoadFrom(configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)
	return nil
}

func newEngine() *consistency.Engine {
	return consistency.New(cfg.EngineOptions(logger)...)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// Exit codes
const (
	ExitOK         = 0
	ExitFailure    = 1
	ExitLowScore   = 2
	ExitFixRefused = 3
)

// ExitCode maps an error returned by Execute onto the process exit status
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrScoreBelowMinimum):
		return ExitLowScore
	case consistency.IsFixError(err):
		return ExitFixRefused
	default:
		return ExitFailure
	}
}
