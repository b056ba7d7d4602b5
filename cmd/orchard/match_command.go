package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"orchard/internal/match"
)

func newMatchCommand(ctx *commandContext) *cobra.Command {
	var inputPath string
	var outputPath string
	var topNames int
	var threshold float64

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Canonicalize university names by frequency and similarity",
		Long: "Match counts how often each university spelling occurs, takes the most\n" +
			"frequent spellings as anchors, and folds similar or contained variants\n" +
			"into them before rewriting the table.",
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
				input = cfg.CleanedPath()
			}
			output := strings.TrimSpace(outputPath)
			if output == "" {
				output = cfg.MatchedPath()
			}

			anchors := cfg.Match.TopNames
			if topNames > 0 {
				anchors = topNames
			}
			similarity := cfg.Match.SimilarityThreshold
			if cmd.Flags().Changed("threshold") {
				similarity = threshold
			}

			freq, err := match.CountColumn(input, cfg.Match.NameColumn)
			if err != nil {
				return err
			}

			mapping, substitutions := match.BuildMapping(freq, anchors, similarity, logger)

			result, err := match.Apply(input, output, cfg.Match.NameColumn, mapping)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Folded %s of %s distinct names under %d anchors\n",
				formatCount(int64(substitutions)), formatCount(int64(len(freq))), anchors)
			fmt.Fprintf(out, "Rewrote %s of %s rows into %s\n",
				formatCount(int64(result.Substituted)), formatCount(int64(result.Rows)), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "Cleaned table to canonicalize")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Destination for the matched table")
	cmd.Flags().IntVar(&topNames, "top-names", 0, "Override the configured anchor count")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "Override the configured similarity threshold")
	return cmd
}
