package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dotcommander/continuity/internal/consistency"
	"github.com/dotcommander/continuity/internal/domain/manuscript"
	"github.com/dotcommander/continuity/internal/storage"
)

// ErrScoreBelowMinimum is returned by check when --min-score is not met
var ErrScoreBelowMinimum = errors.New("consistency score below minimum")

var (
	checkJSON     bool
	checkFormat   string
	checkSave     bool
	checkMinScore int
)

var checkCmd = &cobra.Command{
	Use:   "check <manuscript>",
	Short: "Analyse a manuscript and print the consistency report",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "print the report as JSON")
	checkCmd.Flags().StringVar(&checkFormat, "format", "", "output format: text, json or yaml (default from config)")
	checkCmd.Flags().BoolVar(&checkSave, "save", false, "store the report in the configured output directory")
	checkCmd.Flags().IntVar(&checkMinScore, "min-score", 0, "fail when the score is below this value")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	m, err := openManuscript(ctx, args[0])
	if err != nil {
		return err
	}

	report, err := newEngine().CheckConsistency(ctx, m.Input())
	if err != nil {
		return fmt.Errorf("analysing %s: %w", args[0], err)
	}

	format := outputFormat()
	if err := renderReport(cmd.OutOrStdout(), report, format); err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}

	if checkSave {
		reportFormat := storage.FormatJSON
		if format == "yaml" {
			reportFormat = storage.FormatYAML
		}
		name, err := storage.SaveReport(ctx, storage.NewFileSystem(cfg.Output.Dir), report, reportFormat)
		if err != nil {
			return err
		}
		logger.Info("Saved report", "path", filepath.Join(cfg.Output.Dir, name), "issues", len(report.Issues))
	}

	if report.Score < checkMinScore {
		return fmt.Errorf("%w: %d < %d", ErrScoreBelowMinimum, report.Score, checkMinScore)
	}
	return nil
}

func outputFormat() string {
	switch {
	case checkJSON:
		return "json"
	case checkFormat != "":
		return checkFormat
	default:
		return cfg.Output.Format
	}
}

func openManuscript(ctx context.Context, path string) (*manuscript.Manuscript, error) {
	fs, name, err := storage.OpenFile(path)
	if err != nil {
		return nil, err
	}
	return storage.LoadManuscript(ctx, fs, name)
}

func analyse(ctx context.Context, engine *consistency.Engine, path string) (*consistency.Report, error) {
	m, err := openManuscript(ctx, path)
	if err != nil {
		return nil, err
	}
	return engine.CheckConsistency(ctx, m.Input())
}
