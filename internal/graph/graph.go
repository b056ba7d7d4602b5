package graph

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"orchard/internal/dataset"
	"orchard/internal/logging"
	"orchard/internal/pipeline"
)

// linkColumns are the link-table columns the network needs.
var linkColumns = []string{
	"source_university", "source_city",
	"destination_university", "destination_city",
}

type linkRow struct {
	sourceUniversity      string
	sourceCity            string
	destinationUniversity string
	destinationCity       string
}

type coordinates struct {
	lat float64
	lng float64
}

// Summary reports what one graph build did.
type Summary struct {
	// Links is the number of rows read from the link table.
	Links int
	// Universities is the number of distinct universities across both sides.
	Universities int
	// Excluded counts universities dropped for lacking resolvable coordinates.
	Excluded int
	Nodes    int
	Edges    int
}

// Run builds the weighted university network from the link table, resolving
// node coordinates through the world-cities table, and writes GEXF to
// outputPath. Each university sits at its modal city; universities whose
// modal city has no known coordinates are left out, along with every link
// touching them.
func Run(ctx context.Context, linksPath, worldCitiesPath, outputPath string, logger *slog.Logger) (*Summary, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "graph")

	rows, err := readLinks(ctx, linksPath)
	if err != nil {
		return nil, err
	}

	coords, err := loadWorldCities(worldCitiesPath)
	if err != nil {
		return nil, err
	}
	if len(coords) == 0 {
		return nil, fmt.Errorf("world cities table %s has no usable rows", worldCitiesPath)
	}

	cities, order := collectCities(rows)
	summary := &Summary{Links: len(rows), Universities: len(order)}

	nodes := make([]Node, 0, len(order))
	nodeSet := make(map[string]bool, len(order))
	for _, university := range order {
		city := modeCity(cities[university])
		coord, ok := coords[strings.ToLower(city)]
		if !ok {
			summary.Excluded++
			logger.Debug("excluding university without coordinates",
				logging.String("university", university),
				logging.String("city", city),
			)
			continue
		}
		nodes = append(nodes, Node{University: university, Lat: coord.lat, Lng: coord.lng})
		nodeSet[university] = true
	}

	edges := amalgamateEdges(rows, nodeSet)
	summary.Nodes = len(nodes)
	summary.Edges = len(edges)

	if err := writeGEXF(outputPath, nodes, edges); err != nil {
		return nil, pipeline.Wrap(pipeline.ErrOutputWrite, "graph", "write network", outputPath, err)
	}

	logger.Info("graph export complete",
		logging.Int("links", summary.Links),
		logging.Int("universities", summary.Universities),
		logging.Int("excluded", summary.Excluded),
		logging.Int("nodes", summary.Nodes),
		logging.Int("edges", summary.Edges),
	)
	return summary, nil
}

func readLinks(ctx context.Context, path string) ([]linkRow, error) {
	reader, err := dataset.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	indices, err := reader.Header().Require(linkColumns...)
	if err != nil {
		return nil, err
	}

	var rows []linkRow
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, linkRow{
			sourceUniversity:      row[indices[0]],
			sourceCity:            strings.TrimSpace(row[indices[1]]),
			destinationUniversity: row[indices[2]],
			destinationCity:       strings.TrimSpace(row[indices[3]]),
		})
	}
	return rows, nil
}

// loadWorldCities indexes coordinates by lowercased city name. The table
// lists larger cities first, so the first occurrence of an ambiguous name
// wins.
func loadWorldCities(path string) (map[string]coordinates, error) {
	reader, err := dataset.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	indices, err := reader.Header().Require("city_ascii", "lat", "lng")
	if err != nil {
		return nil, err
	}

	coords := make(map[string]coordinates)
	for {
		row, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		city := strings.ToLower(strings.TrimSpace(row[indices[0]]))
		if city == "" {
			continue
		}
		if _, ok := coords[city]; ok {
			continue
		}
		lat, err := strconv.ParseFloat(row[indices[1]], 64)
		if err != nil {
			return nil, fmt.Errorf("parse lat for %q: %w", city, err)
		}
		lng, err := strconv.ParseFloat(row[indices[2]], 64)
		if err != nil {
			return nil, fmt.Errorf("parse lng for %q: %w", city, err)
		}
		coords[city] = coordinates{lat: lat, lng: lng}
	}
	return coords, nil
}

// collectCities gathers every city a university appears with, both sides of
// every link, preserving first-appearance order of universities.
func collectCities(rows []linkRow) (map[string][]string, []string) {
	cities := make(map[string][]string)
	var order []string
	add := func(university, city string) {
		if university == "" || city == "" {
			return
		}
		if _, seen := cities[university]; !seen {
			order = append(order, university)
		}
		cities[university] = append(cities[university], city)
	}
	for _, row := range rows {
		add(row.sourceUniversity, row.sourceCity)
		add(row.destinationUniversity, row.destinationCity)
	}
	return cities, order
}

// modeCity returns the most frequent city, preferring the earliest seen when
// counts tie.
func modeCity(cities []string) string {
	counts := make(map[string]int, len(cities))
	order := make([]string, 0, len(cities))
	for _, city := range cities {
		if counts[city] == 0 {
			order = append(order, city)
		}
		counts[city]++
	}
	best := ""
	bestCount := 0
	for _, city := range order {
		if counts[city] > bestCount {
			best = city
			bestCount = counts[city]
		}
	}
	return best
}

// amalgamateEdges folds parallel links between node universities into
// weighted edges, in first-appearance order.
func amalgamateEdges(rows []linkRow, nodeSet map[string]bool) []Edge {
	weights := make(map[[2]string]int)
	var order [][2]string
	for _, row := range rows {
		if !nodeSet[row.sourceUniversity] || !nodeSet[row.destinationUniversity] {
			continue
		}
		key := [2]string{row.sourceUniversity, row.destinationUniversity}
		if weights[key] == 0 {
			order = append(order, key)
		}
		weights[key]++
	}
	edges := make([]Edge, 0, len(order))
	for _, key := range order {
		edges = append(edges, Edge{Source: key[0], Target: key[1], Weight: weights[key]})
	}
	return edges
}
