package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"orchard/internal/config"
	"orchard/internal/graph"
)

func newGraphCommand(ctx *commandContext) *cobra.Command {
	var linksPath string
	var worldCitiesPath string
	var outputPath string

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Export the weighted university network as GEXF",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.newLogger()
			if err != nil {
				return err
			}

			input := strings.TrimSpace(linksPath)
			if input == "" {
				input = cfg.LinksPath()
			}
			cities := strings.TrimSpace(worldCitiesPath)
			if cities == "" {
				cities = cfg.Graph.WorldCities
			} else {
				expanded, err := config.ExpandPath(cities)
				if err != nil {
					return err
				}
				cities = expanded
			}
			if cities == "" {
				return errors.New("world cities table required: set graph.world_cities in the config or pass --world-cities")
			}
			output := strings.TrimSpace(outputPath)
			if output == "" {
				output = cfg.NetworkPath()
			}

			summary, err := graph.Run(cmd.Context(), input, cities, output, logger)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Exported %s nodes and %s edges from %s links into %s\n",
				formatCount(int64(summary.Nodes)), formatCount(int64(summary.Edges)),
				formatCount(int64(summary.Links)), output)
			if summary.Excluded > 0 {
				fmt.Fprintf(out, "Excluded %s universities without resolvable coordinates\n",
					formatCount(int64(summary.Excluded)))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&linksPath, "links", "l", "", "Link table to read")
	cmd.Flags().StringVarP(&worldCitiesPath, "world-cities", "w", "", "World cities CSV with city_ascii, lat, lng columns")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Destination for the GEXF network")
	return cmd
}
