package main

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"orchard/internal/census"
	"orchard/internal/config"
)

func newFieldsCommand(ctx *commandContext) *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "fields [archive ...]",
		Short: "Count element paths across archived education documents",
		Long: "Fields surveys the raw documents before committing to an extraction:\n" +
			"it streams the archives and tallies how many documents carry each\n" +
			"distinct element path.",
		RunE: func(cmd *cobra.Command, args []string) error {
			runCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

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
				target = cfg.FieldsPath()
			}

			paths := make([]string, 0, len(args))
			for _, arg := range args {
				expanded, err := config.ExpandPath(arg)
				if err != nil {
					return err
				}
				paths = append(paths, expanded)
			}

			summary, err := census.Run(runCtx, cfg, paths, target, logger)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Counted %d fields across %s documents from %d archives into %s\n",
				summary.Fields, formatCount(summary.Documents), summary.Archives, target)
			if summary.ParseErrors > 0 {
				fmt.Fprintf(out, "Skipped %s malformed documents\n", formatCount(summary.ParseErrors))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Destination for the field census")
	return cmd
}
