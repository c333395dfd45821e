package dataprocessing

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"stickycost/internal/files"
	"stickycost/internal/panel"
)

// Recorder receives load measurements.
type Recorder interface {
	RecordRowsLoaded(ctx context.Context, source string, n int)
}

type nopRecorder struct{}

func (nopRecorder) RecordRowsLoaded(context.Context, string, int) {}

// Loader reads the yearly extracts concurrently and concatenates them in
// year order.
type Loader struct {
	opts     Options
	parser   *Parser
	recorder Recorder
	logger   *slog.Logger
}

// LoaderOption customises a Loader.
type LoaderOption func(*Loader)

// WithRecorder sets the metrics recorder.
func WithRecorder(rec Recorder) LoaderOption {
	return func(l *Loader) { l.recorder = rec }
}

// NewLoader creates a loader.
func NewLoader(opts Options, logger *slog.Logger, options ...LoaderOption) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultOptions().Workers
	}
	l := &Loader{
		opts:     opts,
		parser:   NewParser(opts.LastYear, logger),
		recorder: nopRecorder{},
		logger:   logger,
	}
	for _, o := range options {
		o(l)
	}
	return l
}

// Load parses every extract and returns the records in the order of
// extracts, which FindExtracts sorts by year. The first failing file
// cancels the rest and its error is returned.
func (l *Loader) Load(ctx context.Context, extracts []files.FileInfo) ([]panel.Record, LoadStats, error) {
	start := time.Now()
	parts := make([][]panel.Record, len(extracts))
	stats := make([]ParseStats, len(extracts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.opts.Workers)
	for i, extract := range extracts {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			records, st, err := l.parser.ParseFile(extract.Path)
			if err != nil {
				return err
			}
			parts[i] = records
			stats[i] = st
			l.recorder.RecordRowsLoaded(gctx, strconv.Itoa(extract.Year), len(records))
			l.logger.Info("Imported extract",
				slog.String("file", extract.Name),
				slog.Int("year", extract.Year),
				slog.Int("rows", len(records)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, LoadStats{}, err
	}

	total := 0
	for _, part := range parts {
		total += len(part)
	}
	records := make([]panel.Record, 0, total)
	summary := LoadStats{Files: len(extracts), Duration: time.Since(start)}
	for i, part := range parts {
		records = append(records, part...)
		summary.add(stats[i])
	}

	l.logger.Info("Loaded extracts",
		slog.Int("files", summary.Files),
		slog.Int("rows", summary.Rows),
		slog.Int("kept", summary.Kept),
		slog.Int("after_last_year", summary.AfterLast),
		slog.Int("missing_industry", summary.NoIndustry),
		slog.Duration("duration", summary.Duration))
	return records, summary, nil
}
