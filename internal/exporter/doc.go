// Package exporter writes the analysis artifacts to disk.
//
// CSVWriter writes delimited text with an optional UTF-8 BOM so spreadsheet
// programs detect the encoding. WriteXLSX writes a single-sheet workbook
// with excelize. ArtifactWriter combines them to produce the two published
// files of a run:
//
//	Results_<cost>.xlsx           model comparison table
//	Sample_selection_<cost>.xlsx  sample selection ledger
//
// and their .csv twins when the csv format is enabled.
//
// Example usage:
//
//	w := exporter.NewArtifactWriter(paths, logger)
//	files, err := w.Write("Varekostnader", outcome.Results, outcome.Ledger, []string{"xlsx"})
package exporter
