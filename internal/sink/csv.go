package sink

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/cyra/ngxlog/internal/record"
)

const defaultBufSize = 64 * 1024

type csvSink struct {
	file   *atomicFile
	stream io.WriteCloser
	buf    *bufio.Writer
	w      *csv.Writer
	closed bool
}

func newCSVSink(path, compression string) (*csvSink, error) {
	f, err := createAtomic(path)
	if err != nil {
		return nil, err
	}
	stream, err := compressor(f, compression)
	if err != nil {
		f.abort()
		return nil, err
	}
	buf := bufio.NewWriterSize(stream, defaultBufSize)
	s := &csvSink{file: f, stream: stream, buf: buf, w: csv.NewWriter(buf)}

	if err := s.w.Write(record.Header); err != nil {
		s.Abort()
		return nil, fmt.Errorf("csv sink: header: %w", err)
	}
	return s, nil
}

func (s *csvSink) Path() string { return s.file.path }

func (s *csvSink) Write(rec record.LogRecord) error {
	if s.closed {
		return ErrClosed
	}
	if err := s.w.Write(rec.Row()); err != nil {
		return fmt.Errorf("csv sink: write: %w", err)
	}
	return nil
}

func (s *csvSink) Commit() error {
	if s.closed {
		return ErrClosed
	}
	s.closed = true

	s.w.Flush()
	if err := s.w.Error(); err != nil {
		s.file.abort()
		return fmt.Errorf("csv sink: flush: %w", err)
	}
	if err := s.buf.Flush(); err != nil {
		s.file.abort()
		return fmt.Errorf("csv sink: flush: %w", err)
	}
	if err := s.stream.Close(); err != nil {
		s.file.abort()
		return fmt.Errorf("csv sink: close stream: %w", err)
	}
	return s.file.commit()
}

func (s *csvSink) Abort() error {
	if !s.closed {
		s.closed = true
		s.stream.Close()
	}
	return s.file.abort()
}
