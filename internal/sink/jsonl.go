package sink

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/valyala/fastjson"

	"github.com/cyra/ngxlog/internal/record"
)

// jsonlSink writes one object per line keyed by the record.Header names.
// The header itself is implied by the keys.
type jsonlSink struct {
	file   *atomicFile
	stream io.WriteCloser
	buf    *bufio.Writer
	arena  fastjson.Arena
	line   []byte
	closed bool
}

func newJSONLSink(path, compression string) (*jsonlSink, error) {
	f, err := createAtomic(path)
	if err != nil {
		return nil, err
	}
	stream, err := compressor(f, compression)
	if err != nil {
		f.abort()
		return nil, err
	}
	return &jsonlSink{
		file:   f,
		stream: stream,
		buf:    bufio.NewWriterSize(stream, defaultBufSize),
	}, nil
}

func (s *jsonlSink) Path() string { return s.file.path }

func (s *jsonlSink) Write(rec record.LogRecord) error {
	if s.closed {
		return ErrClosed
	}

	a := &s.arena
	a.Reset()
	o := a.NewObject()
	o.Set("Timestamp", a.NewString(rec.Timestamp))
	o.Set("SourceIP", a.NewString(rec.SourceIP))
	o.Set("UpstreamIP", a.NewString(rec.UpstreamIP))
	o.Set("SizeReq", a.NewNumberString(strconv.FormatInt(rec.SizeReq, 10)))
	o.Set("SizeResp", a.NewNumberString(strconv.FormatInt(rec.SizeResp, 10)))
	o.Set("Status", a.NewNumberInt(rec.Status))
	o.Set("ErrorDescription", a.NewString(rec.ErrorDescription))

	s.line = o.MarshalTo(s.line[:0])
	s.line = append(s.line, '\n')
	if _, err := s.buf.Write(s.line); err != nil {
		return fmt.Errorf("jsonl sink: write: %w", err)
	}
	return nil
}

func (s *jsonlSink) Commit() error {
	if s.closed {
		return ErrClosed
	}
	s.closed = true

	if err := s.buf.Flush(); err != nil {
		s.file.abort()
		return fmt.Errorf("jsonl sink: flush: %w", err)
	}
	if err := s.stream.Close(); err != nil {
		s.file.abort()
		return fmt.Errorf("jsonl sink: close stream: %w", err)
	}
	return s.file.commit()
}

func (s *jsonlSink) Abort() error {
	if !s.closed {
		s.closed = true
		s.stream.Close()
	}
	return s.file.abort()
}
