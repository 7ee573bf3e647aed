package exporter

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"

	apierrors "refracalc/internal/errors"
	"refracalc/internal/refractometer"
)

// ErrUnsupportedFormat is returned for unknown format names
var ErrUnsupportedFormat = errors.New("unsupported format")

// ReportRow is one estimation in a report
type ReportRow struct {
	Input       refractometer.EstimationInput
	Result      refractometer.Result
	Calibration string
}

// Exporter writes calibration sets and reports
type Exporter struct {
	logger *slog.Logger
	// BOM prefixes CSV output with a UTF-8 byte order mark
	BOM bool
}

// New creates an exporter that writes a BOM in CSV output
func New(logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{logger: logger, BOM: true}
}

// ExportPoints writes a calibration set in the given format
func (e *Exporter) ExportPoints(w io.Writer, format Format, points []refractometer.CalibrationPoint) error {
	e.logger.Debug("exporting calibration points",
		slog.String("format", string(format)),
		slog.Int("points", len(points)))

	switch format {
	case FormatJSON:
		return refractometer.EncodePoints(w, points)
	case FormatCSV:
		return writeCSV(w, e.BOM, pointHeaders, pointRecords(points))
	case FormatXLSX:
		return writePointsXLSX(w, points)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// ExportReport writes estimation results. JSON reports are not supported;
// the HTTP API already returns results as JSON.
func (e *Exporter) ExportReport(w io.Writer, format Format, rows []ReportRow) error {
	e.logger.Debug("exporting estimation report",
		slog.String("format", string(format)),
		slog.Int("rows", len(rows)))

	switch format {
	case FormatCSV:
		return writeCSV(w, e.BOM, reportHeaders, reportRecords(rows))
	case FormatXLSX:
		return writeReportXLSX(w, rows)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// ImportPoints reads a calibration set. The whole input is read before
// parsing; import replaces a collection wholesale so partial results are
// never useful.
func ImportPoints(r io.Reader, format Format) ([]refractometer.CalibrationPoint, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, apierrors.NewParsingError("failed to read import data", err)
	}

	switch format {
	case FormatJSON:
		points, err := refractometer.DecodePoints(data)
		if err != nil {
			return nil, apierrors.NewParsingError("invalid calibration JSON", err)
		}
		return points, nil
	case FormatCSV:
		return readPointsCSV(bytes.NewReader(data))
	case FormatXLSX:
		return readPointsXLSX(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// SniffFormat guesses the format of import data from its first bytes
func SniffFormat(data []byte) Format {
	trimmed := bytes.TrimSpace(bytes.TrimPrefix(data, utf8BOM))
	switch {
	case bytes.HasPrefix(trimmed, []byte("PK")):
		return FormatXLSX
	case len(trimmed) > 0 && (trimmed[0] == '[' || trimmed[0] == '{'):
		return FormatJSON
	default:
		return FormatCSV
	}
}
