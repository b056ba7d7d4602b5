package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"orchard/internal/archive"
	"orchard/internal/catalog"
	"orchard/internal/config"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var runID string
	var limit int

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the data directory and recent ingest runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			store, err := catalog.Open(cfg)
			if err != nil {
				return fmt.Errorf("open catalog: %w", err)
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			printEnvironment(out, cfg, colorize)

			if id := strings.TrimSpace(runID); id != "" {
				run, err := store.GetRun(cmd.Context(), id)
				if err != nil {
					return err
				}
				if run == nil {
					return fmt.Errorf("run %s not found", id)
				}
				return printRunDetail(cmd.Context(), out, store, run, colorize)
			}

			runs, err := store.RecentRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No ingest runs recorded")
				return nil
			}

			if err := printRecentRuns(cmd.Context(), out, store, runs, colorize); err != nil {
				return err
			}
			return printRunDetail(cmd.Context(), out, store, runs[0], colorize)
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "Show a specific run by id")
	cmd.Flags().IntVar(&limit, "limit", 5, "Number of recent runs to list")
	return cmd
}

func printEnvironment(out io.Writer, cfg *config.Config, colorize bool) {
	for _, line := range renderSectionHeader("Environment", colorize) {
		fmt.Fprintln(out, line)
	}

	archives, err := archive.Discover(cfg.Paths.ArchiveDir)
	switch {
	case err != nil:
		fmt.Fprintln(out, renderStatusLine("Archives", statusWarn, err.Error(), colorize))
	case len(archives) == 0:
		fmt.Fprintln(out, renderStatusLine("Archives", statusWarn, "none found in "+cfg.Paths.ArchiveDir, colorize))
	default:
		fmt.Fprintln(out, renderStatusLine("Archives", statusOK, fmt.Sprintf("%d in %s", len(archives), cfg.Paths.ArchiveDir), colorize))
	}

	segments, err := countSegmentFiles(cfg.SegmentsDir())
	switch {
	case err != nil:
		fmt.Fprintln(out, renderStatusLine("Segments", statusWarn, err.Error(), colorize))
	case segments == 0:
		fmt.Fprintln(out, renderStatusLine("Segments", statusInfo, "none yet", colorize))
	default:
		fmt.Fprintln(out, renderStatusLine("Segments", statusOK, fmt.Sprintf("%d in %s", segments, cfg.SegmentsDir()), colorize))
	}

	fmt.Fprintln(out, renderStatusLine("Catalog", statusInfo, cfg.CatalogPath(), colorize))
	fmt.Fprintln(out)
}

func printRecentRuns(ctx context.Context, out io.Writer, store *catalog.Store, runs []*catalog.Run, colorize bool) error {
	for _, line := range renderSectionHeader("Recent Runs", colorize) {
		fmt.Fprintln(out, line)
	}

	headers := []string{"Run", "Started", "Finished", "Workers", "Archives", "Completed", "Failed", "Records"}
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		archives, err := store.ArchivesByRun(ctx, run.ID)
		if err != nil {
			return err
		}
		var completed, failed int
		var records int64
		for _, row := range archives {
			switch row.Status {
			case catalog.StatusCompleted:
				completed++
			case catalog.StatusFailed:
				failed++
			}
			records += row.Records
		}
		rows = append(rows, []string{
			run.ID,
			formatDisplayTime(run.StartedAt),
			formatOptionalTime(run.FinishedAt),
			strconv.Itoa(run.Workers),
			strconv.Itoa(len(archives)),
			strconv.Itoa(completed),
			strconv.Itoa(failed),
			formatCount(records),
		})
	}
	aligns := []columnAlignment{
		alignLeft, alignLeft, alignLeft, alignRight,
		alignRight, alignRight, alignRight, alignRight,
	}
	fmt.Fprintln(out, renderTable(headers, rows, aligns))
	return nil
}

func printRunDetail(ctx context.Context, out io.Writer, store *catalog.Store, run *catalog.Run, colorize bool) error {
	archives, err := store.ArchivesByRun(ctx, run.ID)
	if err != nil {
		return err
	}

	for _, line := range renderSectionHeader("Run "+run.ID, colorize) {
		fmt.Fprintln(out, line)
	}
	if len(archives) == 0 {
		fmt.Fprintln(out, "No archives recorded for this run")
		return nil
	}

	headers := []string{"ID", "Archive", "Status", "Matched", "Errors", "Records", "Segments", "Elapsed", "Message"}
	rows := make([][]string, 0, len(archives))
	for _, row := range archives {
		rows = append(rows, []string{
			strconv.FormatInt(row.ID, 10),
			filepath.Base(row.Path),
			formatStatusLabel(string(row.Status)),
			formatCount(row.EntriesMatched),
			formatCount(row.ParseErrors),
			formatCount(row.Records),
			formatCount(row.Segments),
			formatElapsed(row.ElapsedSeconds),
			formatMessage(row.ErrorMessage, 48),
		})
	}
	aligns := []columnAlignment{
		alignRight, alignLeft, alignLeft, alignRight, alignRight,
		alignRight, alignRight, alignRight, alignLeft,
	}
	fmt.Fprintln(out, renderTable(headers, rows, aligns))
	return nil
}

func countSegmentFiles(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	count := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			count++
		}
	}
	return count, nil
}
