package http

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "refracalc/internal/errors"
	"refracalc/internal/exporter"
	"refracalc/internal/middleware"
	"refracalc/internal/refractometer"
	"refracalc/internal/services"
	apiv1 "refracalc/pkg/contracts/api/v1"
)

// maxImportSize bounds uploaded calibration files
const maxImportSize = 10 << 20

// CalibrationHandler manages the calibration point collection
type CalibrationHandler struct {
	service      *services.RefractometerService
	validator    *middleware.Validator
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
}

// NewCalibrationHandler creates a new calibration handler
func NewCalibrationHandler(service *services.RefractometerService, validator *middleware.Validator, errorHandler *apierrors.ErrorHandler, logger *slog.Logger) *CalibrationHandler {
	return &CalibrationHandler{
		service:      service,
		validator:    validator,
		errorHandler: errorHandler,
		logger:       logger.With(slog.String("handler", "calibration")),
	}
}

// RegisterRoutes registers the calibration routes
func (h *CalibrationHandler) RegisterRoutes(r chi.Router) {
	r.Route("/calibration", func(r chi.Router) {
		r.Get("/", h.GetCalibration)
		r.Put("/", h.ReplaceCalibration)
		r.Get("/export", h.Export)
		r.Post("/import", h.Import)
		r.Post("/points", h.AddPoint)
		r.Put("/points/{index}", h.ReplacePoint)
		r.Delete("/points/{index}", h.DeletePoint)
	})
}

// GetCalibration handles GET /api/calibration
func (h *CalibrationHandler) GetCalibration(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, services.ToCalibrationResponse(h.service.Calibration()))
}

// ReplaceCalibration handles PUT /api/calibration
func (h *CalibrationHandler) ReplaceCalibration(w http.ResponseWriter, r *http.Request) {
	var req apiv1.CalibrationSetRequest
	if err := h.validator.DecodeJSON(w, r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	points := make([]refractometer.CalibrationPoint, len(req.Points))
	for i, p := range req.Points {
		points[i] = toPoint(apiv1.CalibrationPointRequest(p))
	}
	cal, err := h.service.ReplacePoints(r.Context(), points, "")
	h.respond(w, r, http.StatusOK, cal, err)
}

// AddPoint handles POST /api/calibration/points
func (h *CalibrationHandler) AddPoint(w http.ResponseWriter, r *http.Request) {
	var req apiv1.CalibrationPointRequest
	if err := h.validator.DecodeJSON(w, r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	cal, err := h.service.AddPoint(r.Context(), toPoint(req))
	h.respond(w, r, http.StatusCreated, cal, err)
}

// ReplacePoint handles PUT /api/calibration/points/{index}
func (h *CalibrationHandler) ReplacePoint(w http.ResponseWriter, r *http.Request) {
	index, err := pointIndex(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	var req apiv1.CalibrationPointRequest
	if err := h.validator.DecodeJSON(w, r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	cal, err := h.service.ReplacePoint(r.Context(), index, toPoint(req))
	h.respond(w, r, http.StatusOK, cal, err)
}

// DeletePoint handles DELETE /api/calibration/points/{index}
func (h *CalibrationHandler) DeletePoint(w http.ResponseWriter, r *http.Request) {
	index, err := pointIndex(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	cal, err := h.service.DeletePoint(r.Context(), index)
	h.respond(w, r, http.StatusOK, cal, err)
}

// Export handles GET /api/calibration/export?format=json|csv|xlsx
func (h *CalibrationHandler) Export(w http.ResponseWriter, r *http.Request) {
	format, err := exporter.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		h.errorHandler.HandleError(w, r, translateError(err))
		return
	}

	var buf bytes.Buffer
	if err := h.service.ExportPoints(r.Context(), &buf, format); err != nil {
		h.errorHandler.HandleError(w, r, translateError(err))
		return
	}
	writeFile(w, format, "calibration", buf.Bytes())
}

// Import handles POST /api/calibration/import. The body is either a
// multipart form with a "file" field or the raw file. The format comes from
// ?format, the file extension or the content, in that order.
func (h *CalibrationHandler) Import(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	r.Body = http.MaxBytesReader(w, r.Body, maxImportSize)

	data, name, err := readUpload(r)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.errorHandler.HandleError(w, r, apierrors.ErrPayloadTooLarge)
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	format, err := importFormat(r.URL.Query().Get("format"), name, data)
	if err != nil {
		h.errorHandler.HandleError(w, r, translateError(err))
		return
	}

	h.logger.InfoContext(ctx, "importing calibration",
		slog.String("format", string(format)),
		slog.Int("bytes", len(data)))

	cal, err := h.service.ImportPoints(ctx, bytes.NewReader(data), format)
	h.respond(w, r, http.StatusOK, cal, err)
}

func (h *CalibrationHandler) respond(w http.ResponseWriter, r *http.Request, status int, cal *refractometer.Calibration, err error) {
	if err != nil {
		h.errorHandler.HandleError(w, r, translateError(err))
		return
	}
	render.Status(r, status)
	render.JSON(w, r, services.ToCalibrationResponse(cal))
}

func toPoint(p apiv1.CalibrationPointRequest) refractometer.CalibrationPoint {
	var pt refractometer.CalibrationPoint
	if p.Actual != nil {
		pt.Actual = *p.Actual
	}
	if p.Target != nil {
		pt.Target = *p.Target
	}
	return pt
}

func pointIndex(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "index")
	index, err := strconv.Atoi(raw)
	if err != nil || index < 0 {
		return 0, apierrors.ErrValidation("index", "index must be a non-negative integer")
	}
	return index, nil
}

// readUpload returns the uploaded bytes and the client file name, if any
func readUpload(r *http.Request) ([]byte, string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		data, err := io.ReadAll(r.Body)
		return data, "", err
	}

	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		return nil, "", err
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, "", err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	return data, header.Filename, err
}

func importFormat(query, filename string, data []byte) (exporter.Format, error) {
	if query != "" {
		return exporter.ParseFormat(query)
	}
	if ext := strings.TrimPrefix(filepath.Ext(filename), "."); ext != "" {
		return exporter.ParseFormat(ext)
	}
	return exporter.SniffFormat(data), nil
}
