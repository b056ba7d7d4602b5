package config

const (
	defaultArchiveDir          = "~/.local/share/orchard/archives"
	defaultDataDir             = "~/.local/share/orchard/data"
	defaultLogDir              = "~/.local/share/orchard/logs"
	defaultIngestWorkers       = 4
	defaultIngestBatchSize     = 100000
	defaultOutputPrefix        = "education_raw"
	defaultProgressInterval    = 1000
	defaultMatchTopNames       = 500
	defaultSimilarityThreshold = 90.0
	defaultMatchNameColumn     = "university"
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			ArchiveDir: defaultArchiveDir,
			DataDir:    defaultDataDir,
			LogDir:     defaultLogDir,
		},
		Ingest: Ingest{
			Workers:          defaultIngestWorkers,
			BatchSize:        defaultIngestBatchSize,
			OutputPrefix:     defaultOutputPrefix,
			ProgressInterval: defaultProgressInterval,
		},
		Match: Match{
			TopNames:            defaultMatchTopNames,
			SimilarityThreshold: defaultSimilarityThreshold,
			NameColumn:          defaultMatchNameColumn,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
