package linesource

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/hpcloud/tail"
	"golang.org/x/text/encoding/unicode"

	"github.com/cyra/ngxlog/internal/logging"
)

// Stats describes one pass over a file.
type Stats struct {
	Lines        int
	DecodeErrors int // lines that had invalid UTF-8 replaced with U+FFFD
}

// LineFunc receives each line with its 1-based number. A non-nil error stops the read.
type LineFunc func(lineNo int, line string) error

// Reader streams lines from log files, one forward pass per file.
type Reader struct {
	logger *logging.Logger
}

// New creates a Reader.
func New(logger *logging.Logger) *Reader {
	return &Reader{logger: logger}
}

// Lines reads path to EOF and calls fn for every line. Lines have no length limit.
// The file is closed before Lines returns.
func (r *Reader) Lines(ctx context.Context, path string, fn LineFunc) (Stats, error) {
	var st Stats

	cfg := tail.Config{
		Follow:    false,
		ReOpen:    false,
		MustExist: true,
		Poll:      true,
		Logger:    tail.DiscardingLogger,
	}

	tf, err := tail.TailFile(path, cfg)
	if err != nil {
		return st, fmt.Errorf("open %s: %w", path, err)
	}

	// The tail goroutine blocks on sending lines, so an early stop has to drain.
	stop := func() {
		tf.Kill(nil)
		for range tf.Lines {
		}
	}

	dec := unicode.UTF8.NewDecoder()

	for {
		if err := ctx.Err(); err != nil {
			stop()
			return st, err
		}

		select {
		case <-ctx.Done():
			stop()
			return st, ctx.Err()
		case line, ok := <-tf.Lines:
			if !ok {
				if err := tf.Wait(); err != nil {
					return st, fmt.Errorf("read %s: %w", path, err)
				}
				return st, nil
			}
			if line.Err != nil {
				r.logger.Errorf("read %s: %v", path, line.Err)
				continue
			}

			st.Lines++
			text := line.Text
			if !utf8.ValidString(text) {
				st.DecodeErrors++
				text, err = dec.String(text)
				if err != nil {
					stop()
					return st, fmt.Errorf("decode %s line %d: %w", path, st.Lines, err)
				}
				r.logger.Debugf("%s line %d: invalid UTF-8 replaced", path, st.Lines)
			}

			if err := fn(st.Lines, text); err != nil {
				stop()
				return st, err
			}
		}
	}
}
