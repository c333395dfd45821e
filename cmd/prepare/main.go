// Command prepare builds the processed firm-year panel from the yearly
// accounting extracts: it loads and zero-fills the raw items, deflates them
// with the consumer price index, attaches the prior-year values and GDP and
// writes the panel that the analyze command reads.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"

	"stickycost/internal/config"
	"stickycost/internal/dataprocessing"
	"stickycost/internal/deflation"
	"stickycost/internal/files"
	"stickycost/internal/infrastructure"
	"stickycost/internal/panel"
	"stickycost/internal/refdata"
	"stickycost/internal/validation"
)

func main() {
	configFile := flag.String("config", "", "optional YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("Failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", slog.String("error", err.Error()))
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	ctx := infrastructure.WithRunID(context.Background(), infrastructure.GenerateRunID())

	tel, err := infrastructure.InitializeTelemetry(infrastructure.TelemetryConfig{
		ServiceName:   infrastructure.ServiceName + "-prepare",
		TraceExporter: cfg.Telemetry.TraceExporter,
	}, logger)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to initialize telemetry", slog.String("error", err.Error()))
		os.Exit(1)
	}

	err = run(ctx, cfg, logger, tel)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if shutdownErr := tel.Shutdown(shutdownCtx); shutdownErr != nil {
		logger.WarnContext(ctx, "Telemetry shutdown failed", slog.String("error", shutdownErr.Error()))
	}

	if err != nil {
		logger.ErrorContext(ctx, "Preparation failed", slog.String("error", err.Error()))
		infrastructure.CloseLogFile()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, tel *infrastructure.Telemetry) error {
	start := time.Now()

	paths, err := config.ResolvePaths(cfg)
	if err != nil {
		return err
	}
	paths.LogPathResolution(logger)
	if err := paths.EnsureDirectories(); err != nil {
		return err
	}
	manager := files.NewManager(paths, logger)

	validator := validation.NewFileValidator(logger)
	if err := validator.ValidateInputDirectory(paths.ExtractsDir, "*.csv"); err != nil {
		return err
	}
	for _, path := range []string{paths.CPIFile, paths.GDPFile} {
		if err := validator.ValidateFile(path); err != nil {
			return err
		}
	}

	extracts, err := files.NewDiscovery(paths.BaseDir).FindExtracts(paths.ExtractsDir)
	if err != nil {
		return err
	}
	extracts = files.FilterYears(extracts, cfg.Analysis.LastYear)
	if len(extracts) == 0 {
		return fmt.Errorf("no extracts up to %d in %s", cfg.Analysis.LastYear, paths.ExtractsDir)
	}
	logger.InfoContext(ctx, "Discovered extracts",
		slog.Int("count", len(extracts)),
		slog.Any("years", files.Years(extracts)))

	loader := dataprocessing.NewLoader(dataprocessing.Options{LastYear: cfg.Analysis.LastYear}, logger,
		dataprocessing.WithRecorder(tel.Metrics))
	var records []panel.Record
	if err := traced(ctx, tel.Tracer, "prepare.load", func(ctx context.Context) error {
		var err error
		records, _, err = loader.Load(ctx, extracts)
		return err
	}); err != nil {
		return err
	}

	summarizer := dataprocessing.NewSummarizer(logger)
	coverage := summarizer.Summarize(ctx, records)
	if err := summarizer.WriteJSON(ctx, coveragePath(paths.ProcessedFile), coverage); err != nil {
		return err
	}

	p, err := panel.New(records)
	if err != nil {
		return err
	}

	if err := traced(ctx, tel.Tracer, "prepare.deflate", func(context.Context) error {
		cpi, err := refdata.LoadCPI(paths.CPIFile)
		if err != nil {
			return err
		}
		return deflation.NewDeflator(cpi, panel.MonetaryFields(), logger).Apply(p)
	}); err != nil {
		return err
	}

	spec := panel.DefaultLagSpec()
	if err := traced(ctx, tel.Tracer, "prepare.lags", func(context.Context) error {
		gdp, err := refdata.LoadGDP(paths.GDPFile)
		if err != nil {
			return err
		}
		p, err = panel.AttachLags(p, spec, cfg.Analysis.FirstYear)
		if err != nil {
			return err
		}
		return panel.AttachGDP(p, gdp)
	}); err != nil {
		return err
	}

	if err := manager.WriteAtomic(paths.ProcessedFile, func(w io.Writer) error {
		return panel.WriteCSV(w, p, spec)
	}); err != nil {
		return err
	}

	if cfg.Telemetry.MetricsFile != "" {
		if err := tel.WriteMetrics(manager.ResolvePath(cfg.Telemetry.MetricsFile)); err != nil {
			return err
		}
	}

	logger.InfoContext(ctx, "Processed panel written",
		slog.String("path", paths.ProcessedFile),
		slog.Int("rows", p.Len()),
		slog.Duration("duration", time.Since(start)))
	return nil
}

func traced(ctx context.Context, tracer trace.Tracer, name string, fn func(context.Context) error) error {
	ctx, span := tracer.Start(ctx, name)
	defer span.End()
	if err := fn(ctx); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

// coveragePath places the coverage summary next to the processed panel.
func coveragePath(processed string) string {
	return strings.TrimSuffix(processed, ".csv") + "_coverage.json"
}
