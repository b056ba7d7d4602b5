package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"orchard/internal/cleanse"
)

func newCleanCommand(ctx *commandContext) *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Normalize ingested segments into the cleaned education table",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.newLogger()
			if err != nil {
				return err
			}

			target := strings.TrimSpace(outputPath)
			if target == "" {
				target = cfg.CleanedPath()
			}

			summary, err := cleanse.Run(cmd.Context(), cfg, target, logger)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Cleaned %s rows into %s\n", formatCount(summary.OutputRows), target)
			fmt.Fprintf(out, "Read %s rows from %d segment files (%d skipped); dropped %s incomplete and %s unclassifiable\n",
				formatCount(summary.InputRows), summary.FilesProcessed, summary.FilesSkipped,
				formatCount(summary.MissingFieldDrops), formatCount(summary.UnclassifiableDrops))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Destination for the cleaned table")
	return cmd
}
