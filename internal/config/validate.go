package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateIngest(); err != nil {
		return err
	}
	if err := c.validateMatch(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateIngest() error {
	if err := ensurePositiveMap(map[string]int{
		"ingest.workers":           c.Ingest.Workers,
		"ingest.batch_size":        c.Ingest.BatchSize,
		"ingest.progress_interval": c.Ingest.ProgressInterval,
	}); err != nil {
		return err
	}
	if strings.ContainsAny(c.Ingest.OutputPrefix, "/\\") {
		return errors.New("ingest.output_prefix must not contain path separators")
	}
	return nil
}

func (c *Config) validateMatch() error {
	if c.Match.TopNames <= 0 {
		return errors.New("match.top_names must be positive")
	}
	if c.Match.SimilarityThreshold <= 0 || c.Match.SimilarityThreshold > 100 {
		return errors.New("match.similarity_threshold must be between 0 and 100")
	}
	if strings.TrimSpace(c.Match.NameColumn) == "" {
		return errors.New("match.name_column must be set")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
