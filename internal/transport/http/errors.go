package http

import (
	"errors"
	"net/http"

	apierrors "refracalc/internal/errors"
	"refracalc/internal/exporter"
	"refracalc/internal/services"
)

// translateError maps service errors that carry no HTTP meaning of their
// own onto API errors. Everything else is left to the error handler.
func translateError(err error) error {
	switch {
	case errors.Is(err, services.ErrEmptyBatch):
		return apierrors.ErrValidation("inputs", "at least one input is required")
	case errors.Is(err, services.ErrBatchTooLarge):
		return apierrors.NewWithDetails(http.StatusRequestEntityTooLarge, "BATCH_TOO_LARGE",
			"Batch exceeds maximum size", err.Error())
	case errors.Is(err, exporter.ErrUnsupportedFormat):
		return apierrors.NewWithDetails(http.StatusUnsupportedMediaType, "UNSUPPORTED_FORMAT",
			"Unsupported format", []string{string(exporter.FormatJSON), string(exporter.FormatCSV), string(exporter.FormatXLSX)})
	default:
		return err
	}
}
