package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/cyra/ngxlog/internal/config"
	"github.com/cyra/ngxlog/internal/linesource"
	"github.com/cyra/ngxlog/internal/logging"
	"github.com/cyra/ngxlog/internal/parser"
	"github.com/cyra/ngxlog/internal/record"
	"github.com/cyra/ngxlog/internal/sink"
	"github.com/cyra/ngxlog/internal/timestamp"
)

// LineError locates a fatal failure in an input file.
type LineError struct {
	Path string
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("%s:%d: %v", e.Path, e.Line, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// FileStats summarizes one input file.
type FileStats struct {
	Path         string
	Kind         parser.Kind
	Lines        int
	Matched      int
	Skipped      int // lines that did not match the kind's pattern
	Quarantined  int // matched lines dropped for a bad timestamp under the skip policy
	DecodeErrors int
}

// Result describes a committed run.
type Result struct {
	RunID      string
	OutputPath string
	Records    int
	Files      []FileStats
}

// Pipeline turns a log directory into one sink. It keeps no state between runs.
type Pipeline struct {
	cfg    *config.Config
	logger *logging.Logger
	reader *linesource.Reader
}

// New creates a Pipeline for cfg.
func New(cfg *config.Config, logger *logging.Logger) *Pipeline {
	return &Pipeline{
		cfg:    cfg,
		logger: logger,
		reader: linesource.New(logger),
	}
}

// Run processes dir and replaces the configured sink. On error the sink is left untouched.
func (p *Pipeline) Run(ctx context.Context, dir string) (*Result, error) {
	res := &Result{RunID: uuid.NewString()}
	log := p.logger.With("run_id", res.RunID)

	for _, kind := range parser.Kinds {
		log.Infof("looking for %s logs in %s", kind, filepath.Join(dir, kind.FileName()))
	}
	inputs, err := Discover(dir)
	if err != nil {
		return nil, err
	}
	for _, in := range inputs {
		log.Infof("found %s log %s", in.Kind, in.Path)
	}
	if len(inputs) == 0 {
		log.Infof("no input files in %s, writing header only", dir)
	}

	batches := make([][]record.LogRecord, len(inputs))
	res.Files = make([]FileStats, len(inputs))

	if p.cfg.Input.Workers > 1 && len(inputs) > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(p.cfg.Input.Workers)
		for i, in := range inputs {
			i, in := i, in
			g.Go(func() error {
				recs, st, err := p.processFile(gctx, in, log)
				batches[i], res.Files[i] = recs, st
				return err
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i, in := range inputs {
			recs, st, err := p.processFile(ctx, in, log)
			if err != nil {
				return nil, err
			}
			batches[i], res.Files[i] = recs, st
		}
	}

	out, err := sink.New(p.cfg.Output)
	if err != nil {
		return nil, err
	}
	if err := sink.WriteAll(out, batches...); err != nil {
		return nil, err
	}
	for _, batch := range batches {
		res.Records += len(batch)
	}

	res.OutputPath = out.Path()
	log.Infof("wrote %d records to %s", res.Records, res.OutputPath)
	return res, nil
}

func (p *Pipeline) processFile(ctx context.Context, in Input, log *logging.Logger) ([]record.LogRecord, FileStats, error) {
	st := FileStats{Path: in.Path, Kind: in.Kind}

	m, err := parser.New(in.Kind)
	if err != nil {
		return nil, st, err
	}
	layout := in.Kind.Layout()
	skipBad := p.cfg.Input.OnBadTimestamp == config.PolicySkip

	var recs []record.LogRecord
	rs, err := p.reader.Lines(ctx, in.Path, func(n int, line string) error {
		ev, ok := m.Match(line)
		if !ok {
			st.Skipped++
			return nil
		}
		ts, err := timestamp.Normalize(ev.RawTimestamp, layout)
		if err != nil {
			if skipBad {
				st.Quarantined++
				log.Warnf("%s:%d: skipping line: %v", in.Path, n, err)
				return nil
			}
			return &LineError{Path: in.Path, Line: n, Err: err}
		}
		recs = append(recs, record.From(ev, ts))
		st.Matched++
		return nil
	})
	st.Lines, st.DecodeErrors = rs.Lines, rs.DecodeErrors
	if err != nil {
		return nil, st, err
	}

	log.Infof("processed %s log %s: lines=%d records=%d skipped=%d quarantined=%d decode_errors=%d",
		in.Kind, in.Path, st.Lines, st.Matched, st.Skipped, st.Quarantined, st.DecodeErrors)
	return recs, st, nil
}
