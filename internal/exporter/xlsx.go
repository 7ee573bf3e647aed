package exporter

import (
	"fmt"
	"io"
	"math"

	"github.com/xuri/excelize/v2"

	apierrors "refracalc/internal/errors"
	"refracalc/internal/refractometer"
)

const (
	calibrationSheet = "Calibration"
	reportSheet      = "Report"
)

func writePointsXLSX(w io.Writer, points []refractometer.CalibrationPoint) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", calibrationSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := setRow(f, calibrationSheet, 1, toCells(pointHeaders)); err != nil {
		return err
	}
	for i, p := range points {
		if err := setRow(f, calibrationSheet, i+2, []interface{}{i, p.Actual, p.Target}); err != nil {
			return err
		}
	}
	_ = f.SetColWidth(calibrationSheet, "A", "C", 12)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeReportXLSX(w io.Writer, rows []ReportRow) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", reportSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := setRow(f, reportSheet, 1, toCells(reportHeaders)); err != nil {
		return err
	}
	for i, row := range rows {
		cells := []interface{}{
			row.Input.Model.String(),
			row.Input.InitialBrix,
			row.Input.FinalBrix,
			row.Input.CorrectionFactor,
			row.Calibration,
			row.Result.Stage.String(),
		}
		for _, v := range reportValues(row.Result) {
			cells = append(cells, cellValue(v))
		}
		if err := setRow(f, reportSheet, i+2, cells); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, cells []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}

// cellValue leaves unavailable values as empty cells
func cellValue(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}

func toCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}

// readPointsXLSX reads the first sheet of a workbook
func readPointsXLSX(r io.Reader) ([]refractometer.CalibrationPoint, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apierrors.NewParsingError("invalid workbook", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apierrors.NewParsingError("workbook has no sheets", nil)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, apierrors.NewParsingError("failed to read sheet", err).
			With("sheet", sheets[0])
	}
	return pointsFromRows(rows)
}
