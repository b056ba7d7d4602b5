package main

import (
	"fmt"
	"io"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"orchard/internal/catalog"
	"orchard/internal/config"
	"orchard/internal/ingest"
)

func newIngestCommand(ctx *commandContext) *cobra.Command {
	var workers int

	cmd := &cobra.Command{
		Use:   "ingest [archive ...]",
		Short: "Extract education records from compressed archives",
		Long: "Ingest streams tar archives, keeps education documents, flattens them\n" +
			"into rows, and writes batched CSV segments. Without arguments, every\n" +
			"archive in the configured archive directory is processed.",
		RunE: func(cmd *cobra.Command, args []string) error {
			runCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if workers > 0 {
				cfg.Ingest.Workers = workers
			}

			logger, err := ctx.newLogger()
			if err != nil {
				return err
			}

			store, err := catalog.Open(cfg)
			if err != nil {
				return fmt.Errorf("open catalog: %w", err)
			}
			defer store.Close()

			coordinator, err := ingest.NewCoordinator(cfg, store, logger)
			if err != nil {
				return err
			}

			paths := make([]string, 0, len(args))
			for _, arg := range args {
				expanded, err := config.ExpandPath(arg)
				if err != nil {
					return err
				}
				paths = append(paths, expanded)
			}

			tracker := newIngestProgress(cmd.ErrOrStderr())
			if tracker != nil {
				coordinator.OnProgress(tracker.update)
			}

			report, err := coordinator.Run(runCtx, paths)
			if tracker != nil {
				tracker.stop()
			}
			if err != nil {
				return err
			}

			printIngestReport(cmd.OutOrStdout(), report)
			if failed := report.Failed(); failed > 0 {
				return fmt.Errorf("%d of %d archives failed", failed, len(report.Archives))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&workers, "workers", 0, "Override the configured worker count")
	return cmd
}

func printIngestReport(out io.Writer, report *ingest.Report) {
	if len(report.Archives) == 0 {
		fmt.Fprintf(out, "Run %s processed no archives\n", report.RunID)
		return
	}

	headers := []string{"Archive", "Status", "Entries", "Matched", "Errors", "Records", "Segments", "Elapsed"}
	rows := make([][]string, 0, len(report.Archives))
	for _, result := range report.Archives {
		rows = append(rows, []string{
			filepath.Base(result.Path),
			formatStatusLabel(string(result.Status)),
			formatCount(result.EntriesSeen),
			formatCount(result.EntriesMatched),
			formatCount(result.ParseErrors),
			formatCount(result.Records),
			formatCount(int64(len(result.Segments))),
			formatDuration(result.Elapsed),
		})
	}
	aligns := []columnAlignment{
		alignLeft, alignLeft, alignRight, alignRight,
		alignRight, alignRight, alignRight, alignRight,
	}
	fmt.Fprintln(out, renderTable(headers, rows, aligns))

	for _, result := range report.Archives {
		if result.Err != nil {
			fmt.Fprintf(out, "  %s: %v\n", filepath.Base(result.Path), result.Err)
		}
	}

	fmt.Fprintf(out, "Run %s: %d completed, %d failed, %d canceled; %s records in %d segments\n",
		report.RunID, report.Completed(), report.Failed(), report.Canceled(),
		formatCount(report.Records()), report.SegmentCount())
}
