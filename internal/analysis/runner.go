// Package analysis runs the cost stickiness models over a processed panel.
//
// For every model in order the Runner selects the sample, derives the
// model's variables, fits the regression and formats the result. The results
// table and the sample selection ledger are values threaded through RunModel
// and returned with each step; nothing is accumulated in shared state. A
// failing model aborts the run with an error naming the model.
package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"stickycost/internal/models"
	"stickycost/internal/panel"
	"stickycost/internal/regression"
	"stickycost/internal/report"
	"stickycost/internal/selection"
	"stickycost/internal/variables"
)

const tracerName = "stickycost/analysis"

// Recorder receives pipeline measurements.
type Recorder interface {
	RecordExcluded(ctx context.Context, model, step string, n int)
	RecordFit(ctx context.Context, model string, d time.Duration, err error)
}

type nopRecorder struct{}

func (nopRecorder) RecordExcluded(context.Context, string, string, int)     {}
func (nopRecorder) RecordFit(context.Context, string, time.Duration, error) {}

// Options configures a Runner.
type Options struct {
	Cost                 panel.Field
	FirstYear            int
	LastYear             int
	MinPayroll           float64 // nominal payroll floor; 0 disables the filter
	YearFixedEffects     bool
	IndustryFixedEffects bool
	Formatter            report.Formatter
	ExcludedIndustries   []string // nil selects selection.DefaultExcludedIndustries
}

// Outcome is the accumulated output of a run.
type Outcome struct {
	Results report.ResultsTable
	Ledger  selection.Ledger
}

// Runner executes model specifications.
type Runner struct {
	opts     Options
	selector *selection.Selector
	builder  *variables.Builder
	engine   *regression.Engine
	tracer   trace.Tracer
	metrics  Recorder
	logger   *slog.Logger
}

// Option customises a Runner.
type Option func(*Runner)

// WithTracer sets the tracer; the global provider is used otherwise.
func WithTracer(t trace.Tracer) Option {
	return func(r *Runner) { r.tracer = t }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(rec Recorder) Option {
	return func(r *Runner) { r.metrics = rec }
}

// NewRunner returns a runner. A nil logger uses the default logger.
func NewRunner(opts Options, logger *slog.Logger, options ...Option) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Runner{
		opts: opts,
		selector: selection.NewSelector(selection.Options{
			FirstYear:          opts.FirstYear,
			LastYear:           opts.LastYear,
			CostLabel:          opts.Cost.String(),
			ExcludedIndustries: opts.ExcludedIndustries,
		}, logger),
		builder: variables.NewBuilder(logger),
		engine:  regression.NewEngine(logger),
		tracer:  otel.Tracer(tracerName),
		metrics: nopRecorder{},
		logger:  logger.With(slog.String("component", "analysis")),
	}
	for _, o := range options {
		o(r)
	}
	return r
}

// NewOutcome returns the empty outcome a run starts from.
func (r *Runner) NewOutcome() Outcome {
	return Outcome{Results: report.NewResultsTable("_" + r.opts.Cost.String())}
}

// PrepareSample keeps firm-years whose nominal payroll exceeds MinPayroll.
func (r *Runner) PrepareSample(p *panel.Panel) *panel.Panel {
	if r.opts.MinPayroll <= 0 {
		return p
	}
	out := p.Filter(func(rec *panel.Record) bool {
		return rec.PayrollNominal > r.opts.MinPayroll
	})
	r.logger.Info("Applied payroll floor",
		slog.Float64("min_payroll", r.opts.MinPayroll),
		slog.Int("before", p.Len()),
		slog.Int("after", out.Len()),
	)
	return out
}

// Run fits every spec in order and returns the finalized results table and
// the ledger.
func (r *Runner) Run(ctx context.Context, p *panel.Panel, specs []*models.Spec) (Outcome, error) {
	ctx, span := r.tracer.Start(ctx, "analysis.run", trace.WithAttributes(
		attribute.String("cost_variable", r.opts.Cost.String()),
		attribute.Int("models", len(specs)),
	))
	defer span.End()

	records := r.PrepareSample(p).Records()
	span.SetAttributes(attribute.Int("panel_rows", len(records)))

	out := r.NewOutcome()
	for _, spec := range specs {
		var err error
		out, err = r.RunModel(ctx, records, spec, out)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "model failed")
			return Outcome{}, fmt.Errorf("model %q: %w", spec.Label(), err)
		}
	}

	out.Results = out.Results.Finalize()
	r.logger.InfoContext(ctx, "Analysis complete",
		slog.String("cost_variable", r.opts.Cost.String()),
		slog.Int("models", len(specs)),
	)
	return out, nil
}

// RunModel processes one spec and returns acc with the model's column added
// to both the results table and the ledger. acc is not modified.
func (r *Runner) RunModel(ctx context.Context, records []panel.Record, spec *models.Spec, acc Outcome) (Outcome, error) {
	ctx, span := r.tracer.Start(ctx, "analysis.model", trace.WithAttributes(
		attribute.String("model", spec.Label()),
	))
	defer span.End()

	rows, col := r.selector.Select(records, spec)
	if err := col.Check(); err != nil {
		return acc, err
	}
	for _, e := range col.Entries {
		if e.Kind == selection.EntryRemoved && e.HasCount {
			r.metrics.RecordExcluded(ctx, spec.Label(), e.Label, e.Count)
		}
	}
	ledger, err := acc.Ledger.Append(col)
	if err != nil {
		return acc, err
	}
	span.SetAttributes(attribute.Int("observations", len(rows)))

	frame, err := r.builder.Build(rows, spec.Formulas())
	if err != nil {
		return acc, err
	}

	start := time.Now()
	res, err := r.engine.Fit(ctx, frame, regression.Request{
		Dependent:            spec.Dependent(),
		Regressors:           spec.Regressors(),
		YearFixedEffects:     r.opts.YearFixedEffects,
		IndustryFixedEffects: r.opts.IndustryFixedEffects,
	})
	r.metrics.RecordFit(ctx, spec.Label(), time.Since(start), err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fit failed")
		return acc, err
	}
	span.SetAttributes(attribute.Float64("r_squared", res.RSquared))

	results, err := acc.Results.With(r.opts.Formatter.Column(spec.Label(), res))
	if err != nil {
		return acc, err
	}

	return Outcome{Results: results, Ledger: ledger}, nil
}
