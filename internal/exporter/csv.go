package exporter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	apierrors "refracalc/internal/errors"
	"refracalc/internal/refractometer"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var pointHeaders = []string{"Index", "Actual", "Target"}

var reportHeaders = []string{
	"Model", "Initial Brix", "Final Brix", "Correction Factor", "Calibration", "Stage",
	"OE (°P)", "OE (SG)", "AE (°P)", "FG (SG)", "RE (°P)", "RE (SG)",
	"ABW (%)", "ABV (%)", "ADF (%)", "RDF (%)", "kcal/100mL", "kJ/100mL",
}

// writeCSV writes headers and records, optionally prefixed with a BOM
func writeCSV(w io.Writer, bom bool, headers []string, records [][]string) error {
	if bom {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for i, record := range records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func pointRecords(points []refractometer.CalibrationPoint) [][]string {
	records := make([][]string, 0, len(points))
	for i, p := range points {
		records = append(records, []string{
			strconv.Itoa(i),
			strconv.FormatFloat(p.Actual, 'f', -1, 64),
			strconv.FormatFloat(p.Target, 'f', -1, 64),
		})
	}
	return records
}

// reportValues returns the result columns of a report row in header order
func reportValues(r refractometer.Result) []float64 {
	return []float64{
		r.OE, r.OESG(), r.AE, r.FG, r.RE, r.RESG(),
		r.ABW, r.ABV, r.ADF, r.RDF, r.Kcal, r.KJ,
	}
}

// reportDecimals are the display precisions of reportValues
var reportDecimals = []int{2, 4, 2, 4, 2, 4, 2, 2, 1, 1, 0, 0}

func reportRecords(rows []ReportRow) [][]string {
	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		record := []string{
			row.Input.Model.String(),
			row.Input.InitialBrix,
			row.Input.FinalBrix,
			row.Input.CorrectionFactor,
			row.Calibration,
			row.Result.Stage.String(),
		}
		for i, v := range reportValues(row.Result) {
			record = append(record, formatFloat(v, reportDecimals[i]))
		}
		records = append(records, record)
	}
	return records
}

// readPointsCSV reads Actual and Target columns located by header name
func readPointsCSV(r io.Reader) ([]refractometer.CalibrationPoint, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, apierrors.NewParsingError("failed to read CSV", err)
	}
	reader := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, apierrors.NewParsingError("invalid CSV", err)
	}
	return pointsFromRows(rows)
}

// pointsFromRows converts a header row plus data rows into points. Blank
// rows are skipped.
func pointsFromRows(rows [][]string) ([]refractometer.CalibrationPoint, error) {
	if len(rows) == 0 {
		return []refractometer.CalibrationPoint{}, nil
	}

	actualCol, targetCol := -1, -1
	for i, h := range rows[0] {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "actual", "x":
			actualCol = i
		case "target", "y":
			targetCol = i
		}
	}
	if actualCol < 0 || targetCol < 0 {
		return nil, apierrors.NewParsingError("missing Actual and Target columns", nil)
	}

	points := make([]refractometer.CalibrationPoint, 0, len(rows)-1)
	for n, row := range rows[1:] {
		line := n + 2
		if isBlankRow(row) {
			continue
		}
		if actualCol >= len(row) || targetCol >= len(row) {
			return nil, apierrors.NewParsingError("row has too few columns", nil).
				With("row", line)
		}
		actual, err := parseCell(row[actualCol])
		if err != nil {
			return nil, apierrors.NewParsingError("invalid Actual value", err).With("row", line)
		}
		target, err := parseCell(row[targetCol])
		if err != nil {
			return nil, apierrors.NewParsingError("invalid Target value", err).With("row", line)
		}
		points = append(points, refractometer.CalibrationPoint{Actual: actual, Target: target})
	}
	return points, nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
