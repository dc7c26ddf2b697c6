package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dotcommander/continuity/internal/consistency"
	"github.com/dotcommander/continuity/internal/storage"
)

var (
	fixReport string
	fixIssue  string
	fixWrite  bool
)

var fixCmd = &cobra.Command{
	Use:   "fix <manuscript>",
	Short: "Apply the auto-fix for one reported issue",
	Long: `fix applies the textual correction for one issue of a saved report.
Without --report the newest saved report for the manuscript's project is used.
Without --write the corrected scenes are printed and the manuscript is left
unchanged.`,
	Args: cobra.ExactArgs(1),
	RunE: runFix,
}

func init() {
	fixCmd.Flags().StringVar(&fixReport, "report", "", "report file holding the issue")
	fixCmd.Flags().StringVar(&fixIssue, "issue", "", "id of the issue to fix")
	fixCmd.Flags().BoolVar(&fixWrite, "write", false, "write the corrected manuscript back to disk")
	_ = fixCmd.MarkFlagRequired("issue")
	rootCmd.AddCommand(fixCmd)
}

func runFix(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	fs, name, err := storage.OpenFile(args[0])
	if err != nil {
		return err
	}
	m, err := storage.LoadManuscript(ctx, fs, name)
	if err != nil {
		return err
	}

	report, err := loadFixReport(cmd, m.Project.ID)
	if err != nil {
		return err
	}
	issue, ok := report.Issue(fixIssue)
	if !ok {
		return fmt.Errorf("%w: %s", consistency.ErrIssueNotFound, fixIssue)
	}

	result := newEngine().AutoFixIssue(issue, m.Scenes)
	if !result.Success {
		return result.Cause
	}

	out := cmd.OutOrStdout()
	changed := 0
	for i, s := range result.UpdatedScenes {
		if s.Content == m.Scenes[i].Content {
			continue
		}
		changed++
		fmt.Fprintf(out, "scene %s (%s) updated\n", s.ID, s.Title)
		if !fixWrite {
			fmt.Fprintf(out, "%s\n\n", s.Content)
		}
	}

	if !fixWrite {
		fmt.Fprintf(out, "%d scenes would change; rerun with --write to apply\n", changed)
		return nil
	}
	m.Scenes = result.UpdatedScenes
	if err := storage.SaveManuscript(ctx, fs, name, m); err != nil {
		return fmt.Errorf("writing %s: %w", args[0], err)
	}
	fmt.Fprintf(out, "%d scenes changed in %s\n", changed, args[0])
	return nil
}

func loadFixReport(cmd *cobra.Command, projectID string) (*consistency.Report, error) {
	ctx := cmd.Context()
	if fixReport != "" {
		fs, name, err := storage.OpenFile(fixReport)
		if err != nil {
			return nil, err
		}
		return storage.LoadReport(ctx, fs, name)
	}

	reports := storage.NewFileSystem(cfg.Output.Dir)
	name, ok, err := storage.LatestReport(ctx, reports, projectID)
	if err != nil {
		return nil, fmt.Errorf("finding saved report: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("no saved report for project %q in %s; run check --save or pass --report", projectID, cfg.Output.Dir)
	}
	logger.Debug("Using saved report", "path", filepath.Join(cfg.Output.Dir, name))
	return storage.LoadReport(ctx, reports, name)
}
