package exporter

import (
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	apperrors "stickycost/internal/errors"
)

// labelColumnWidth fits the longest ledger label.
const labelColumnWidth = 45

// WriteXLSX writes grid to a new workbook with one sheet. The first row and
// the first column are bold.
func WriteXLSX(path, sheet string, grid [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.NewStorageError("failed to create directory", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return apperrors.NewStorageError("failed to name sheet", err)
	}

	for i, row := range grid {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return apperrors.NewStorageError("invalid cell", err)
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return apperrors.NewStorageError("failed to write row", err).WithContext("row", i+1)
		}
	}

	if len(grid) > 0 {
		bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			return apperrors.NewStorageError("failed to create style", err)
		}
		last, err := excelize.CoordinatesToCellName(len(grid[0]), 1)
		if err != nil {
			return apperrors.NewStorageError("invalid cell", err)
		}
		if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
			return apperrors.NewStorageError("failed to style header", err)
		}
		bottom, _ := excelize.CoordinatesToCellName(1, len(grid))
		if err := f.SetCellStyle(sheet, "A1", bottom, bold); err != nil {
			return apperrors.NewStorageError("failed to style labels", err)
		}
		if err := f.SetColWidth(sheet, "A", "A", labelColumnWidth); err != nil {
			return apperrors.NewStorageError("failed to size label column", err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return apperrors.NewStorageError("failed to save workbook", err).WithContext("path", path)
	}
	return nil
}

// ReadXLSX returns the rows of a workbook sheet.
func ReadXLSX(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to open workbook", err).WithContext("path", path)
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, apperrors.NewParsingError("failed to read sheet", err).WithContext("sheet", sheet)
	}
	return rows, nil
}
