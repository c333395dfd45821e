package exporter

import (
	"fmt"
	"log/slog"

	"stickycost/internal/config"
	"stickycost/internal/report"
	"stickycost/internal/selection"
)

// Output formats.
const (
	FormatXLSX = "xlsx"
	FormatCSV  = "csv"
)

// Sheet names of the workbooks.
const (
	ResultsSheet   = "Results"
	SelectionSheet = "Sample_selection"
)

// ResultsFileName returns the base name of the results artifact.
func ResultsFileName(cost, format string) string {
	return fmt.Sprintf("Results_%s.%s", cost, format)
}

// SelectionFileName returns the base name of the sample selection artifact.
func SelectionFileName(cost, format string) string {
	return fmt.Sprintf("Sample_selection_%s.%s", cost, format)
}

// ArtifactWriter writes the results table and the selection ledger.
type ArtifactWriter struct {
	paths  *config.Paths
	csv    *CSVWriter
	logger *slog.Logger
}

// NewArtifactWriter returns a writer targeting paths.ResultsDir.
func NewArtifactWriter(paths *config.Paths, logger *slog.Logger) *ArtifactWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ArtifactWriter{
		paths:  paths,
		csv:    NewCSVWriter(paths, logger),
		logger: logger.With(slog.String("component", "exporter")),
	}
}

// Write exports results and ledger in every requested format and returns
// the written paths.
func (w *ArtifactWriter) Write(cost string, results report.ResultsTable, ledger selection.Ledger, formats []string) ([]string, error) {
	resultsGrid := results.Grid()
	ledgerGrid := report.LedgerGrid(ledger)

	var written []string
	for _, format := range formats {
		resultsPath := w.paths.GetResultsPath(ResultsFileName(cost, format))
		selectionPath := w.paths.GetResultsPath(SelectionFileName(cost, format))

		switch format {
		case FormatXLSX:
			if err := WriteXLSX(resultsPath, ResultsSheet, resultsGrid); err != nil {
				return written, err
			}
			if err := WriteXLSX(selectionPath, SelectionSheet, ledgerGrid); err != nil {
				return written, err
			}
		case FormatCSV:
			if err := w.csv.WriteGrid(resultsPath, resultsGrid); err != nil {
				return written, err
			}
			if err := w.csv.WriteGrid(selectionPath, ledgerGrid); err != nil {
				return written, err
			}
		default:
			return written, fmt.Errorf("unknown output format %q", format)
		}
		written = append(written, resultsPath, selectionPath)
	}

	w.logger.Info("Exported artifacts",
		slog.String("cost_variable", cost),
		slog.Any("files", written),
	)
	return written, nil
}
