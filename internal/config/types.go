package config

import "time"

// Timestamp policies.
const (
	PolicyAbort = "abort" // a bad timestamp fails the whole run
	PolicySkip  = "skip"  // a bad timestamp drops the line
)

// Output formats.
const (
	FormatCSV   = "csv"
	FormatXLSX  = "xlsx"
	FormatJSONL = "jsonl"
)

// Output compressions, csv and jsonl only.
const (
	CompressionNone = "none"
	CompressionGzip = "gzip"
	CompressionZstd = "zstd"
)

// Config is the root configuration structure loaded from YAML.
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Input   InputConfig   `yaml:"input"`
	Output  OutputConfig  `yaml:"output"`
	Watch   WatchConfig   `yaml:"watch"`
}

// LoggingConfig controls log verbosity and format.
type LoggingConfig struct {
	Level string `yaml:"level"` // e.g. "info", "debug"
	JSON  bool   `yaml:"json"`
}

// InputConfig describes the log directory we read.
type InputConfig struct {
	Dir            string `yaml:"dir"`              // holds access-stream.log and/or error.log
	Workers        int    `yaml:"workers"`          // files processed concurrently, 1 = sequential
	OnBadTimestamp string `yaml:"on_bad_timestamp"` // "abort" or "skip"
}

// OutputConfig describes the sink.
type OutputConfig struct {
	Path        string `yaml:"path"`
	Format      string `yaml:"format"`      // "csv", "xlsx", "jsonl"
	Compression string `yaml:"compression"` // "none", "gzip", "zstd"
}

// WatchConfig controls rerun-on-change mode.
type WatchConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Debounce time.Duration `yaml:"debounce"` // e.g. "500ms"
}
