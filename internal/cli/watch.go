package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dotcommander/continuity/internal/consistency"
	"github.com/dotcommander/continuity/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch <manuscript>",
	Short: "Re-analyse a manuscript every time it is saved",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

// scoreboard prints each fresh report against the previous one
type scoreboard struct {
	out  io.Writer
	last *consistency.Report
}

func (b *scoreboard) update(report *consistency.Report) {
	st := report.Statistics
	if b.last == nil {
		fmt.Fprintf(b.out, "score %d, %d issues (%d errors, %d warnings, %d suggestions)\n",
			report.Score, st.TotalIssues, st.Errors, st.Warnings, st.Suggestions)
	} else {
		prev := b.last.Statistics
		fmt.Fprintf(b.out, "score %d%s, %d issues%s (%d errors%s, %d warnings%s, %d suggestions%s)\n",
			report.Score, delta(report.Score, b.last.Score),
			st.TotalIssues, delta(st.TotalIssues, prev.TotalIssues),
			st.Errors, delta(st.Errors, prev.Errors),
			st.Warnings, delta(st.Warnings, prev.Warnings),
			st.Suggestions, delta(st.Suggestions, prev.Suggestions))
	}
	b.last = report
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	path := args[0]
	engine := newEngine()
	board := &scoreboard{out: cmd.OutOrStdout()}

	report, err := analyse(ctx, engine, path)
	if err != nil {
		return err
	}
	board.update(report)

	w, err := watch.New(path,
		watch.WithDebounce(cfg.Watch.Debounce),
		watch.WithRate(cfg.Watch.ReanalysesPerMinute, cfg.Watch.BurstSize),
		watch.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	return w.Run(ctx, func(ctx context.Context) error {
		report, err := analyse(ctx, engine, path)
		if err != nil {
			return err
		}
		board.update(report)
		return nil
	})
}
