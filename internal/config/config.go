package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	ArchiveDir string `toml:"archive_dir"`
	DataDir    string `toml:"data_dir"`
	LogDir     string `toml:"log_dir"`
}

// Ingest contains configuration for archive extraction.
type Ingest struct {
	Workers          int    `toml:"workers"`
	BatchSize        int    `toml:"batch_size"`
	OutputPrefix     string `toml:"output_prefix"`
	ProgressInterval int    `toml:"progress_interval"`
}

// Match contains configuration for university name canonicalization.
type Match struct {
	TopNames            int     `toml:"top_names"`
	SimilarityThreshold float64 `toml:"similarity_threshold"`
	NameColumn          string  `toml:"name_column"`
}

// Graph contains configuration for network export.
type Graph struct {
	WorldCities string `toml:"world_cities"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for orchard.
//
// Configuration sections by subsystem:
//   - Paths: archive input, working data, and log directories
//   - Ingest: worker pool sizing and segment batching
//   - Match: frequency ranking and similarity thresholds
//   - Graph: world cities reference data for network export
//   - Logging: log format and level
type Config struct {
	Paths   Paths   `toml:"paths"`
	Ingest  Ingest  `toml:"ingest"`
	Match   Match   `toml:"match"`
	Graph   Graph   `toml:"graph"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/orchard/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("orchard.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the pipeline reads from and
// writes into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.ArchiveDir, c.Paths.DataDir, c.SegmentsDir(), c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// SegmentsDir returns the directory ingest writes CSV segments into.
func (c *Config) SegmentsDir() string {
	return filepath.Join(c.Paths.DataDir, "segments")
}

// CatalogPath returns the sqlite catalog database location.
func (c *Config) CatalogPath() string {
	return filepath.Join(c.Paths.DataDir, "catalog.db")
}

// LockPath returns the single-instance lock file location.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.DataDir, "orchard.lock")
}

// CleanedPath returns the default location of the cleaned education table.
func (c *Config) CleanedPath() string {
	return filepath.Join(c.Paths.DataDir, "education_data_cleaned.csv")
}

// MatchedPath returns the default location of the canonicalized table.
func (c *Config) MatchedPath() string {
	return filepath.Join(c.Paths.DataDir, "education_data_matched.csv")
}

// LinksPath returns the default location of the degree-transition table.
func (c *Config) LinksPath() string {
	return filepath.Join(c.Paths.DataDir, "education_links.csv")
}

// NetworkPath returns the default location of the GEXF network export.
func (c *Config) NetworkPath() string {
	return filepath.Join(c.Paths.DataDir, "education_network.gexf")
}

// FieldsPath returns the default location of the field-occurrence census.
func (c *Config) FieldsPath() string {
	return filepath.Join(c.Paths.DataDir, "field_occurrences.csv")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
