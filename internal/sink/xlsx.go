package sink

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/cyra/ngxlog/internal/record"
)

// SheetName is the worksheet records are written to.
const SheetName = "records"

type xlsxSink struct {
	file   *atomicFile
	book   *excelize.File
	sw     *excelize.StreamWriter
	row    int
	closed bool
}

func newXLSXSink(path string) (*xlsxSink, error) {
	f, err := createAtomic(path)
	if err != nil {
		return nil, err
	}

	book := excelize.NewFile()
	s := &xlsxSink{file: f, book: book}
	if err := book.SetSheetName("Sheet1", SheetName); err != nil {
		s.Abort()
		return nil, fmt.Errorf("xlsx sink: rename sheet: %w", err)
	}
	s.sw, err = book.NewStreamWriter(SheetName)
	if err != nil {
		s.Abort()
		return nil, fmt.Errorf("xlsx sink: stream writer: %w", err)
	}

	header := make([]interface{}, len(record.Header))
	for i, h := range record.Header {
		header[i] = h
	}
	if err := s.setRow(header); err != nil {
		s.Abort()
		return nil, err
	}
	return s, nil
}

func (s *xlsxSink) Path() string { return s.file.path }

func (s *xlsxSink) setRow(values []interface{}) error {
	s.row++
	cell, err := excelize.CoordinatesToCellName(1, s.row)
	if err != nil {
		return fmt.Errorf("xlsx sink: cell: %w", err)
	}
	if err := s.sw.SetRow(cell, values); err != nil {
		return fmt.Errorf("xlsx sink: row %d: %w", s.row, err)
	}
	return nil
}

// Write stores Timestamp as text so the 14-digit form survives spreadsheet number parsing.
func (s *xlsxSink) Write(rec record.LogRecord) error {
	if s.closed {
		return ErrClosed
	}
	return s.setRow([]interface{}{
		rec.Timestamp,
		rec.SourceIP,
		rec.UpstreamIP,
		rec.SizeReq,
		rec.SizeResp,
		rec.Status,
		rec.ErrorDescription,
	})
}

func (s *xlsxSink) Commit() error {
	if s.closed {
		return ErrClosed
	}
	s.closed = true
	defer s.book.Close()

	if err := s.sw.Flush(); err != nil {
		s.file.abort()
		return fmt.Errorf("xlsx sink: flush: %w", err)
	}
	if _, err := s.book.WriteTo(s.file); err != nil {
		s.file.abort()
		return fmt.Errorf("xlsx sink: write: %w", err)
	}
	return s.file.commit()
}

func (s *xlsxSink) Abort() error {
	if !s.closed {
		s.closed = true
		s.book.Close()
	}
	return s.file.abort()
}
