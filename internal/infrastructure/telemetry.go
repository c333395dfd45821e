package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	ServiceName    = "stickycost"
	ServiceVersion = "1.0.0"
	MeterName      = "stickycost"
)

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	ServiceName   string
	TraceExporter string // "stdout", "none"
	TraceWriter   io.Writer
}

// Telemetry holds the providers for one batch run. Metrics are collected
// into a private Prometheus registry and written out once at the end of
// the run, the way node-exporter textfile collectors expect.
type Telemetry struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	Registry       *promclient.Registry
	Metrics        *PipelineMetrics
	logger         *slog.Logger
}

// InitializeTelemetry sets up tracing and metrics and registers them as the
// global OpenTelemetry providers.
func InitializeTelemetry(cfg TelemetryConfig, logger *slog.Logger) (*Telemetry, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = ServiceName
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(ServiceVersion),
	)

	tel := &Telemetry{logger: logger}

	tracerOpts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
	switch cfg.TraceExporter {
	case "stdout":
		w := cfg.TraceWriter
		if w == nil {
			w = os.Stderr
		}
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
		if err != nil {
			return nil, fmt.Errorf("failed to create trace exporter: %w", err)
		}
		tracerOpts = append(tracerOpts, sdktrace.WithBatcher(exporter))
	case "", "none":
	default:
		return nil, fmt.Errorf("unsupported trace exporter: %s", cfg.TraceExporter)
	}
	tel.TracerProvider = sdktrace.NewTracerProvider(tracerOpts...)
	tel.Tracer = tel.TracerProvider.Tracer(MeterName, trace.WithInstrumentationVersion(ServiceVersion))
	otel.SetTracerProvider(tel.TracerProvider)

	tel.Registry = promclient.NewRegistry()
	exporter, err := otelprom.New(otelprom.WithRegisterer(tel.Registry))
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}
	tel.MeterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)
	tel.Meter = tel.MeterProvider.Meter(MeterName, metric.WithInstrumentationVersion(ServiceVersion))
	otel.SetMeterProvider(tel.MeterProvider)

	tel.Metrics, err = NewPipelineMetrics(tel.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline metrics: %w", err)
	}

	logger.Debug("Telemetry initialized",
		slog.String("trace_exporter", cfg.TraceExporter))

	return tel, nil
}

// WriteMetrics writes the collected metrics in the Prometheus text format.
func (t *Telemetry) WriteMetrics(path string) error {
	if path == "" {
		return nil
	}
	if err := promclient.WriteToTextfile(path, t.Registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile %s: %w", path, err)
	}
	t.logger.Info("Metrics written", slog.String("path", path))
	return nil
}

// Shutdown flushes and stops both providers.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error
	if t.TracerProvider != nil {
		errs = append(errs, t.TracerProvider.Shutdown(ctx))
	}
	if t.MeterProvider != nil {
		errs = append(errs, t.MeterProvider.Shutdown(ctx))
	}
	return errors.Join(errs...)
}

// PipelineMetrics groups the instruments recorded by the analysis run.
type PipelineMetrics struct {
	rowsLoaded   metric.Int64Counter
	rowsExcluded metric.Int64Counter
	modelFits    metric.Int64Counter
	fitDuration  metric.Float64Histogram
}

// NewPipelineMetrics creates the pipeline instruments on meter.
func NewPipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	rowsLoaded, err := meter.Int64Counter(
		"panel_rows_loaded",
		metric.WithDescription("Number of firm-year rows read from a source"),
	)
	if err != nil {
		return nil, err
	}

	rowsExcluded, err := meter.Int64Counter(
		"sample_rows_excluded",
		metric.WithDescription("Number of firm-year rows removed by a sample selection step"),
	)
	if err != nil {
		return nil, err
	}

	modelFits, err := meter.Int64Counter(
		"model_fits",
		metric.WithDescription("Number of regression fits by outcome"),
	)
	if err != nil {
		return nil, err
	}

	fitDuration, err := meter.Float64Histogram(
		"model_fit_duration_seconds",
		metric.WithDescription("Regression fit duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &PipelineMetrics{
		rowsLoaded:   rowsLoaded,
		rowsExcluded: rowsExcluded,
		modelFits:    modelFits,
		fitDuration:  fitDuration,
	}, nil
}

// RecordRowsLoaded counts rows read from source.
func (m *PipelineMetrics) RecordRowsLoaded(ctx context.Context, source string, n int) {
	m.rowsLoaded.Add(ctx, int64(n), metric.WithAttributes(attribute.String("source", source)))
}

// RecordExcluded counts rows removed by a selection step of a model.
func (m *PipelineMetrics) RecordExcluded(ctx context.Context, model, step string, n int) {
	m.rowsExcluded.Add(ctx, int64(n), metric.WithAttributes(
		attribute.String("model", model),
		attribute.String("step", step),
	))
}

// RecordFit records the duration and outcome of a regression fit.
func (m *PipelineMetrics) RecordFit(ctx context.Context, model string, d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "failed"
	}
	attrs := metric.WithAttributes(
		attribute.String("model", model),
		attribute.String("status", status),
	)
	m.modelFits.Add(ctx, 1, attrs)
	m.fitDuration.Record(ctx, d.Seconds(), attrs)
}
