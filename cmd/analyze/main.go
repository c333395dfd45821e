// Command analyze fits the four cost stickiness models to the processed
// panel and writes the results table and the sample selection table.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"stickycost/internal/analysis"
	"stickycost/internal/config"
	"stickycost/internal/exporter"
	"stickycost/internal/files"
	"stickycost/internal/infrastructure"
	"stickycost/internal/models"
	"stickycost/internal/panel"
	"stickycost/internal/report"
	"stickycost/internal/validation"

	apperrors "stickycost/internal/errors"
)

func main() {
	configFile := flag.String("config", "", "optional YAML configuration file")
	cost := flag.String("cost", "", "cost variable to analyse (Driftskostnader or Varekostnader); overrides the configuration")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("Failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if *cost != "" {
		cfg.Analysis.CostVariable = *cost
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", slog.String("error", err.Error()))
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	ctx := infrastructure.WithRunID(context.Background(), infrastructure.GenerateRunID())

	tel, err := infrastructure.InitializeTelemetry(infrastructure.TelemetryConfig{
		ServiceName:   infrastructure.ServiceName + "-analyze",
		TraceExporter: cfg.Telemetry.TraceExporter,
	}, logger)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to initialize telemetry", slog.String("error", err.Error()))
		os.Exit(1)
	}

	written, err := run(ctx, cfg, logger, tel)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if shutdownErr := tel.Shutdown(shutdownCtx); shutdownErr != nil {
		logger.WarnContext(ctx, "Telemetry shutdown failed", slog.String("error", shutdownErr.Error()))
	}

	if err != nil {
		logger.ErrorContext(ctx, "Analysis failed",
			slog.String("error", err.Error()),
			slog.String("error_type", string(apperrors.TypeOf(err))))
		infrastructure.CloseLogFile()
		os.Exit(1)
	}
	logger.InfoContext(ctx, "Artifacts written", slog.Any("files", written))
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, tel *infrastructure.Telemetry) ([]string, error) {
	cost, err := models.CostField(cfg.Analysis.CostVariable)
	if err != nil {
		return nil, err
	}

	paths, err := config.ResolvePaths(cfg)
	if err != nil {
		return nil, err
	}
	paths.LogPathResolution(logger)
	if err := paths.EnsureDirectories(); err != nil {
		return nil, err
	}

	validator := validation.NewFileValidator(logger)
	if err := validator.ValidateCSVFile(paths.ProcessedFile, panel.Separator, panel.ColOrgNr, panel.ColYear); err != nil {
		return nil, err
	}
	if err := validator.ValidateOutputDirectory(paths.ResultsDir); err != nil {
		return nil, err
	}

	p, err := readPanel(paths.ProcessedFile)
	if err != nil {
		return nil, err
	}
	logger.InfoContext(ctx, "Loaded processed panel",
		slog.String("path", paths.ProcessedFile),
		slog.Int("rows", p.Len()))

	specs, err := models.Standard(cost)
	if err != nil {
		return nil, err
	}

	runner := analysis.NewRunner(analysis.Options{
		Cost:                 cost,
		FirstYear:            cfg.Analysis.FirstYear,
		LastYear:             cfg.Analysis.LastYear,
		MinPayroll:           cfg.Analysis.MinPayroll,
		YearFixedEffects:     cfg.Analysis.YearFixedEffects,
		IndustryFixedEffects: cfg.Analysis.IndustryFixedEffects,
		Formatter: report.Formatter{
			Decimals:  cfg.Analysis.Decimals,
			Separator: cfg.Analysis.DecimalSeparator,
		},
	}, logger, analysis.WithTracer(tel.Tracer), analysis.WithRecorder(tel.Metrics))

	out, err := runner.Run(ctx, p, specs)
	if err != nil {
		return nil, err
	}

	written, err := exporter.NewArtifactWriter(paths, logger).Write(cost.String(), out.Results, out.Ledger, cfg.Output.Formats)
	if err != nil {
		return nil, err
	}

	if cfg.Telemetry.MetricsFile != "" {
		path := files.NewManager(paths, logger).ResolvePath(cfg.Telemetry.MetricsFile)
		if err := tel.WriteMetrics(path); err != nil {
			return nil, err
		}
	}
	return written, nil
}

func readPanel(path string) (*panel.Panel, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to open processed panel", err).WithContext("path", path)
	}
	defer f.Close()
	return panel.ReadCSV(f)
}
