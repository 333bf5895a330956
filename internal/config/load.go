package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const defaultDebounce = 500 * time.Millisecond

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "info"},
		Input: InputConfig{
			Workers:        1,
			OnBadTimestamp: PolicyAbort,
		},
		Output: OutputConfig{
			Format:      FormatCSV,
			Compression: CompressionNone,
		},
		Watch: WatchConfig{Debounce: defaultDebounce},
	}
}

// Load reads, parses, and validates configuration from the provided path.
// Keys missing from the file keep their Default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks c and fills defaults for empty fields.
func Validate(c *Config) error {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}

	if c.Input.Workers == 0 {
		c.Input.Workers = 1
	}
	if c.Input.Workers < 0 {
		return fmt.Errorf("input.workers must be > 0")
	}

	switch c.Input.OnBadTimestamp {
	case "":
		c.Input.OnBadTimestamp = PolicyAbort
	case PolicyAbort, PolicySkip:
	default:
		return fmt.Errorf("unsupported input.on_bad_timestamp %q", c.Input.OnBadTimestamp)
	}

	if c.Output.Format == "" {
		c.Output.Format = FormatCSV
	}
	if c.Output.Compression == "" {
		c.Output.Compression = CompressionNone
	}

	switch c.Output.Format {
	case FormatCSV, FormatJSONL:
	case FormatXLSX:
		if c.Output.Compression != CompressionNone {
			return fmt.Errorf("output.compression is not supported for xlsx")
		}
	default:
		return fmt.Errorf("unsupported output.format %q", c.Output.Format)
	}

	switch c.Output.Compression {
	case CompressionNone, CompressionGzip, CompressionZstd:
	default:
		return fmt.Errorf("unsupported output.compression %q", c.Output.Compression)
	}

	if c.Output.Path == "" {
		c.Output.Path = DefaultOutputPath(c.Output.Format, c.Output.Compression)
	}

	if c.Watch.Debounce <= 0 {
		c.Watch.Debounce = defaultDebounce
	}

	return nil
}

// DefaultOutputPath is combined_data.<ext> in the working directory.
func DefaultOutputPath(format, compression string) string {
	name := "combined_data." + format
	switch compression {
	case CompressionGzip:
		name += ".gz"
	case CompressionZstd:
		name += ".zst"
	}
	return name
}
