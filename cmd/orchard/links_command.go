package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"orchard/internal/links"
)

func newLinksCommand(ctx *commandContext) *cobra.Command {
	var inputPath string
	var outputPath string

	cmd := &cobra.Command{
		Use:   "links",
		Short: "Derive degree-transition edges from the matched table",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.newLogger()
			if err != nil {
				return err
			}

			input := strings.TrimSpace(inputPath)
			if input == "" {
				input = cfg.MatchedPath()
			}
			output := strings.TrimSpace(outputPath)
			if output == "" {
				output = cfg.LinksPath()
			}

			summary, err := links.Run(cmd.Context(), input, output, logger)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Generated %s transitions from %s persons into %s\n",
				formatCount(int64(summary.Edges)), formatCount(int64(summary.Persons)), output)
			if summary.Ambiguous > 0 {
				fmt.Fprintf(out, "Skipped %s persons with ambiguous degree records\n",
					formatCount(int64(summary.Ambiguous)))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "Matched table to read")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Destination for the link table")
	return cmd
}
