package testsupport

import (
	"path/filepath"
	"testing"

	"orchard/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.ArchiveDir = filepath.Join(base, "archives")
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return builder.cfg
}

// WithWorkers sets the ingest worker count on the test config.
func WithWorkers(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Ingest.Workers = n
	}
}

// WithBatchSize sets the ingest batch size on the test config.
func WithBatchSize(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Ingest.BatchSize = n
	}
}

// WithProgressInterval sets the ingest progress interval on the test config.
func WithProgressInterval(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Ingest.ProgressInterval = n
	}
}

// WithSimilarityThreshold sets the match threshold on the test config.
func WithSimilarityThreshold(threshold float64) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Match.SimilarityThreshold = threshold
	}
}

// WithTopNames sets the match anchor count on the test config.
func WithTopNames(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Match.TopNames = n
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
