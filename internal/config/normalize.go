package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeIngest()
	c.normalizeMatch()
	if err := c.normalizeGraph(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.ArchiveDir) == "" {
		c.Paths.ArchiveDir = defaultArchiveDir
	}
	if c.Paths.ArchiveDir, err = expandPath(c.Paths.ArchiveDir); err != nil {
		return fmt.Errorf("paths.archive_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeIngest() {
	c.Ingest.OutputPrefix = strings.TrimSpace(c.Ingest.OutputPrefix)
	if c.Ingest.OutputPrefix == "" {
		c.Ingest.OutputPrefix = defaultOutputPrefix
	}
}

func (c *Config) normalizeMatch() {
	c.Match.NameColumn = strings.TrimSpace(c.Match.NameColumn)
	if c.Match.NameColumn == "" {
		c.Match.NameColumn = defaultMatchNameColumn
	}
}

func (c *Config) normalizeGraph() error {
	c.Graph.WorldCities = strings.TrimSpace(c.Graph.WorldCities)
	if c.Graph.WorldCities == "" {
		return nil
	}
	expanded, err := expandPath(c.Graph.WorldCities)
	if err != nil {
		return fmt.Errorf("graph.world_cities: %w", err)
	}
	c.Graph.WorldCities = expanded
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
