package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/conveyor-ci/conveyor/internal/pipeline"
)

const matrixSheet = "Matrix"

// ExportMatrixXLSX writes the matrix result to an .xlsx artifact, one row per
// version with its outcome and captured output or error text.
func ExportMatrixXLSX(result pipeline.MatrixResult, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(matrixSheet)
	if err != nil {
		return fmt.Errorf("creating sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("removing default sheet: %w", err)
	}

	headers := []any{"Version", "Outcome", "Details"}
	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("resolving header cell: %w", err)
		}
		if err := f.SetCellValue(matrixSheet, cell, header); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for i, outcome := range result {
		status := "PASSED"
		details := outcome.Output
		if !outcome.Passed() {
			status = "FAILED"
			details = outcome.Err.Error()
		}
		row := []any{outcome.Version, status, details}
		for col, value := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return fmt.Errorf("resolving cell: %w", err)
			}
			if err := f.SetCellValue(matrixSheet, cell, value); err != nil {
				return fmt.Errorf("writing row %d: %w", i+1, err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}
