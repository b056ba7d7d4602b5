package links

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"strconv"

	"orchard/internal/cleanse"
	"orchard/internal/dataset"
	"orchard/internal/logging"
	"orchard/internal/pipeline"
)

// inputColumns are the matched-table columns a transition needs.
var inputColumns = []string{
	"id", "name", "university", "degree",
	"start_year", "end_year", "city", "region", "country",
}

// outputColumns describe one directed transition, source side first.
var outputColumns = []string{
	"name",
	"source_degree", "source_university", "source_start_year",
	"source_end_year", "source_city", "source_region", "source_country",
	"destination_degree", "destination_university", "destination_start_year",
	"destination_end_year", "destination_city", "destination_region",
	"destination_country",
}

// record is one person's stay at one institution.
type record struct {
	name       string
	university string
	degree     string
	startYear  string
	endYear    string
	city       string
	region     string
	country    string
}

// Summary reports what one link build did.
type Summary struct {
	// Persons is the number of distinct ids in the input.
	Persons int
	// Ambiguous counts persons skipped because two of their rows carry the
	// same degree, leaving no single record to transition from.
	Ambiguous int
	// Edges is the number of transitions written.
	Edges int
}

// Run reads the matched table at inputPath, derives degree transitions per
// person, and writes the edge table to outputPath. A person contributes
// bachelors to masters and masters to phd edges when both stays exist, and
// bachelors to phd only when no masters stay does.
func Run(ctx context.Context, inputPath, outputPath string, logger *slog.Logger) (*Summary, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "links")

	people, err := readGroups(ctx, inputPath)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(people))
	for id := range people {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	writer, err := dataset.NewWriter(outputPath, outputColumns)
	if err != nil {
		return nil, pipeline.Wrap(pipeline.ErrOutputWrite, "links", "create output", outputPath, err)
	}

	summary := &Summary{Persons: len(ids)}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			writer.Discard()
			return nil, err
		}

		group := people[id]
		byDegree := make(map[string]record, len(group))
		for _, rec := range group {
			byDegree[rec.degree] = rec
		}
		if len(byDegree) != len(group) {
			summary.Ambiguous++
			continue
		}

		bachelors, hasBachelors := byDegree[cleanse.DegreeBachelors]
		masters, hasMasters := byDegree[cleanse.DegreeMasters]
		phd, hasPhD := byDegree[cleanse.DegreePhD]

		if hasBachelors && hasMasters {
			if err := summary.addEdge(writer, bachelors, masters); err != nil {
				writer.Discard()
				return nil, pipeline.Wrap(pipeline.ErrOutputWrite, "links", "write edge", outputPath, err)
			}
		}
		if hasMasters && hasPhD {
			if err := summary.addEdge(writer, masters, phd); err != nil {
				writer.Discard()
				return nil, pipeline.Wrap(pipeline.ErrOutputWrite, "links", "write edge", outputPath, err)
			}
		}
		if hasBachelors && hasPhD && !hasMasters {
			if err := summary.addEdge(writer, bachelors, phd); err != nil {
				writer.Discard()
				return nil, pipeline.Wrap(pipeline.ErrOutputWrite, "links", "write edge", outputPath, err)
			}
		}
	}

	if err := writer.Commit(); err != nil {
		return nil, pipeline.Wrap(pipeline.ErrOutputWrite, "links", "commit output", outputPath, err)
	}

	logger.Info("link generation complete",
		logging.Int("persons", summary.Persons),
		logging.Int("ambiguous", summary.Ambiguous),
		logging.Int("edges", summary.Edges),
	)
	return summary, nil
}

// addEdge writes one transition if it is temporally plausible.
func (s *Summary) addEdge(writer *dataset.Writer, source, dest record) error {
	if !temporalOK(source.endYear, dest.startYear) {
		return nil
	}
	row := []string{
		source.name,
		source.degree, source.university, source.startYear,
		source.endYear, source.city, source.region, source.country,
		dest.degree, dest.university, dest.startYear,
		dest.endYear, dest.city, dest.region, dest.country,
	}
	if err := writer.Write(row); err != nil {
		return err
	}
	s.Edges++
	return nil
}

// temporalOK accepts a transition only when the source stay ends no later
// than the destination stay begins. Years that fail to parse reject the edge.
func temporalOK(sourceEnd, destStart string) bool {
	end, err := strconv.Atoi(sourceEnd)
	if err != nil {
		return false
	}
	start, err := strconv.Atoi(destStart)
	if err != nil {
		return false
	}
	return end <= start
}

// readGroups loads the matched table into per-person row groups.
func readGroups(ctx context.Context, path string) (map[string][]record, error) {
	reader, err := dataset.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	indices, err := reader.Header().Require(inputColumns...)
	if err != nil {
		return nil, err
	}

	people := make(map[string][]record)
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
		people[row[indices[0]]] = append(people[row[indices[0]]], record{
			name:       row[indices[1]],
			university: row[indices[2]],
			degree:     row[indices[3]],
			startYear:  row[indices[4]],
			endYear:    row[indices[5]],
			city:       row[indices[6]],
			region:     row[indices[7]],
			country:    row[indices[8]],
		})
	}
	return people, nil
}
