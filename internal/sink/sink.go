package sink

import (
	"errors"
	"fmt"

	"github.com/cyra/ngxlog/internal/config"
	"github.com/cyra/ngxlog/internal/record"
)

var (
	// ErrUnknownFormat is returned for an unsupported output format.
	ErrUnknownFormat = errors.New("unknown output format")
	// ErrUnknownCompression is returned for an unsupported compression.
	ErrUnknownCompression = errors.New("unknown output compression")
	// ErrClosed is returned when writing to a committed or aborted sink.
	ErrClosed = errors.New("sink closed")
)

// Sink receives records in order and publishes them all at once.
// Nothing is visible at Path until Commit succeeds; Abort discards everything written.
type Sink interface {
	Write(rec record.LogRecord) error
	Commit() error
	Abort() error
	Path() string
}

// New opens the sink described by cfg and writes the header row.
func New(cfg config.OutputConfig) (Sink, error) {
	switch cfg.Format {
	case config.FormatCSV, "":
		return newCSVSink(cfg.Path, cfg.Compression)
	case config.FormatJSONL:
		return newJSONLSink(cfg.Path, cfg.Compression)
	case config.FormatXLSX:
		if cfg.Compression != "" && cfg.Compression != config.CompressionNone {
			return nil, fmt.Errorf("%w: %s for xlsx", ErrUnknownCompression, cfg.Compression)
		}
		return newXLSXSink(cfg.Path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, cfg.Format)
	}
}

// WriteAll writes every batch to s in order and commits. On any error s is aborted.
func WriteAll(s Sink, batches ...[]record.LogRecord) error {
	for _, recs := range batches {
		for _, r := range recs {
			if err := s.Write(r); err != nil {
				_ = s.Abort()
				return err
			}
		}
	}
	if err := s.Commit(); err != nil {
		_ = s.Abort()
		return err
	}
	return nil
}
