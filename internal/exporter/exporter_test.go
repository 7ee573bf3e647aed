package exporter

import (
	"bytes"
	"encoding/csv"
	"io"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apierrors "refracalc/internal/errors"
	"refracalc/internal/refractometer"
)

func newTestExporter() *Exporter {
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

var testPoints = []refractometer.CalibrationPoint{
	{Actual: 5, Target: 5.2},
	{Actual: 10.5, Target: 10.9},
	{Actual: 20, Target: 21},
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{"", FormatJSON, false},
		{"CSV", FormatCSV, false},
		{".xlsx", FormatXLSX, false},
		{" xlsx ", FormatXLSX, false},
		{"pdf", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormat_ContentType(t *testing.T) {
	assert.Equal(t, "application/json", FormatJSON.ContentType())
	assert.Contains(t, FormatCSV.ContentType(), "text/csv")
	assert.Contains(t, FormatXLSX.ContentType(), "spreadsheetml")
	assert.Equal(t, ".xlsx", FormatXLSX.Extension())
}

func TestExportImportPoints(t *testing.T) {
	for _, format := range []Format{FormatJSON, FormatCSV, FormatXLSX} {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, newTestExporter().ExportPoints(&buf, format, testPoints))

			assert.Equal(t, format, SniffFormat(buf.Bytes()))

			got, err := ImportPoints(&buf, format)
			require.NoError(t, err)
			assert.Equal(t, testPoints, got)
		})
	}
}

func TestExportPoints_CSVLayout(t *testing.T) {
	var buf bytes.Buffer
	exp := newTestExporter()
	exp.BOM = false
	require.NoError(t, exp.ExportPoints(&buf, FormatCSV, testPoints[:1]))

	assert.Equal(t, "Index,Actual,Target\n0,5,5.2\n", buf.String())
}

func TestExportPoints_CSVWithBOM(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, newTestExporter().ExportPoints(&buf, FormatCSV, nil))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), utf8BOM))
}

func TestExportPoints_Unsupported(t *testing.T) {
	err := newTestExporter().ExportPoints(io.Discard, Format("pdf"), testPoints)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestImportPoints_CSV(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    []refractometer.CalibrationPoint
		wantErr bool
	}{
		{
			name: "columns in any order",
			data: "Target,Note,Actual\n5.2,first,5\n",
			want: []refractometer.CalibrationPoint{{Actual: 5, Target: 5.2}},
		},
		{
			name: "legacy names and blank rows",
			data: "x,y\n\n10,10.5\n,\n",
			want: []refractometer.CalibrationPoint{{Actual: 10, Target: 10.5}},
		},
		{
			name:    "semicolon separated",
			data:    "Actual;Target\n1;2\n",
			wantErr: true,
		},
		{
			name: "empty input",
			data: "",
			want: []refractometer.CalibrationPoint{},
		},
		{
			name:    "missing columns",
			data:    "a,b\n1,2\n",
			wantErr: true,
		},
		{
			name:    "bad number",
			data:    "Actual,Target\n1,abc\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ImportPoints(strings.NewReader(tt.data), FormatCSV)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apierrors.IsType(err, apierrors.ErrTypeParsing))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCell(t *testing.T) {
	v, err := parseCell(" 10,5 ")
	require.NoError(t, err)
	assert.Equal(t, 10.5, v)

	v, err = parseCell("1.5")
	require.NoError(t, err)
	assert.Equal(t, 1.5, v)

	_, err = parseCell("")
	assert.Error(t, err)
}

func TestImportPoints_JSON(t *testing.T) {
	got, err := ImportPoints(strings.NewReader(`{"version":1,"points":[{"x":1,"y":2}]}`), FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, []refractometer.CalibrationPoint{{Actual: 1, Target: 2}}, got)

	_, err = ImportPoints(strings.NewReader(`[{"x":1}]`), FormatJSON)
	require.Error(t, err)
	assert.True(t, apierrors.IsType(err, apierrors.ErrTypeParsing))
}

func TestImportPoints_XLSXFirstSheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "Actual"))
	require.NoError(t, f.SetCellValue("Sheet1", "B1", "Target"))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", 12.5))
	require.NoError(t, f.SetCellValue("Sheet1", "B2", 13))
	_, err := f.NewSheet("Other")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	got, err := ImportPoints(&buf, FormatXLSX)
	require.NoError(t, err)
	assert.Equal(t, []refractometer.CalibrationPoint{{Actual: 12.5, Target: 13}}, got)
}

func TestImportPoints_XLSXInvalid(t *testing.T) {
	_, err := ImportPoints(strings.NewReader("not a workbook"), FormatXLSX)
	require.Error(t, err)
	assert.True(t, apierrors.IsType(err, apierrors.ErrTypeParsing))
}

func sampleReport(t *testing.T) []ReportRow {
	t.Helper()
	full := refractometer.EstimationInput{
		Model:            refractometer.TerrillLinear,
		InitialBrix:      "20",
		FinalBrix:        "10",
		CorrectionFactor: "1",
	}
	preview := full
	preview.FinalBrix = ""

	var rows []ReportRow
	for _, in := range []refractometer.EstimationInput{full, preview} {
		res, err := refractometer.Estimate(nil, in)
		require.NoError(t, err)
		rows = append(rows, ReportRow{Input: in, Result: res, Calibration: "none"})
	}
	return rows
}

func TestExportReport_CSV(t *testing.T) {
	var buf bytes.Buffer
	exp := newTestExporter()
	exp.BOM = false
	require.NoError(t, exp.ExportReport(&buf, FormatCSV, sampleReport(t)))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, reportHeaders, records[0])

	full := records[1]
	assert.Equal(t, "terrill-linear", full[0])
	assert.Equal(t, "full", full[5])
	assert.Equal(t, "20.00", full[6])
	assert.Equal(t, "1.0178", full[9])

	preview := records[2]
	assert.Equal(t, "preview", preview[5])
	assert.Equal(t, "20.00", preview[6])
	for _, cell := range preview[8:] {
		assert.Empty(t, cell)
	}
}

func TestExportReport_XLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, newTestExporter().ExportReport(&buf, FormatXLSX, sampleReport(t)))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(reportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "OE (°P)", rows[0][6])
	assert.Equal(t, "20", rows[1][6])
}

func TestExportReport_JSONUnsupported(t *testing.T) {
	err := newTestExporter().ExportReport(io.Discard, FormatJSON, nil)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestFormatFloat(t *testing.T) {
	assert.Equal(t, "13.40", formatFloat(13.4, 2))
	assert.Equal(t, "", formatFloat(math.NaN(), 2))
	assert.Equal(t, "", formatFloat(math.Inf(1), 2))
}
