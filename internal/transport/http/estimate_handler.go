package http

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "refracalc/internal/errors"
	"refracalc/internal/exporter"
	"refracalc/internal/middleware"
	"refracalc/internal/refractometer"
	"refracalc/internal/services"
	apiv1 "refracalc/pkg/contracts/api/v1"
)

// EstimateHandler serves model listings and estimations
type EstimateHandler struct {
	service      *services.RefractometerService
	validator    *middleware.Validator
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
}

// NewEstimateHandler creates a new estimate handler
func NewEstimateHandler(service *services.RefractometerService, validator *middleware.Validator, errorHandler *apierrors.ErrorHandler, logger *slog.Logger) *EstimateHandler {
	return &EstimateHandler{
		service:      service,
		validator:    validator,
		errorHandler: errorHandler,
		logger:       logger.With(slog.String("handler", "estimate")),
	}
}

// RegisterRoutes registers the estimation routes
func (h *EstimateHandler) RegisterRoutes(r chi.Router) {
	r.Get("/models", h.ListModels)
	r.Route("/estimate", func(r chi.Router) {
		r.Use(middleware.ContentTypeValidator(h.errorHandler, "application/json"))
		r.Post("/", h.Estimate)
		r.Post("/batch", h.EstimateBatch)
		r.Get("/last", h.LastInput)
	})
}

// ListModels handles GET /api/models
func (h *EstimateHandler) ListModels(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, apiv1.ModelsResponse{
		Models:  services.ModelInfos(),
		Default: h.service.DefaultModel().String(),
	})
}

// Estimate handles POST /api/estimate. Unusable readings are not errors;
// they produce a partial result with null values.
func (h *EstimateHandler) Estimate(w http.ResponseWriter, r *http.Request) {
	var req apiv1.EstimateRequest
	if err := h.validator.DecodeJSON(w, r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	in, err := h.input(req)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	est, err := h.service.Estimate(r.Context(), in)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, services.ToEstimateResponse(est))
}

// EstimateBatch handles POST /api/estimate/batch. With ?format=csv or
// ?format=xlsx the successful results are returned as a report file.
func (h *EstimateHandler) EstimateBatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req apiv1.BatchEstimateRequest
	if err := h.validator.DecodeJSON(w, r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	var reportFormat exporter.Format
	if f := r.URL.Query().Get("format"); f != "" && f != string(exporter.FormatJSON) {
		var err error
		if reportFormat, err = exporter.ParseFormat(f); err != nil {
			h.errorHandler.HandleError(w, r, translateError(err))
			return
		}
	}

	// inputs naming an unknown model fail individually
	inputs := make([]refractometer.EstimationInput, len(req.Inputs))
	inputErrs := make([]error, len(req.Inputs))
	for i, item := range req.Inputs {
		inputs[i], inputErrs[i] = h.input(item)
		if inputErrs[i] != nil {
			inputs[i].Model = refractometer.ModelID(-1)
		}
	}

	items, err := h.service.EstimateBatch(ctx, inputs)
	if err != nil {
		h.errorHandler.HandleError(w, r, translateError(err))
		return
	}

	if reportFormat != "" {
		var buf bytes.Buffer
		if err := h.service.ExportReport(ctx, &buf, reportFormat, items); err != nil {
			h.errorHandler.HandleError(w, r, translateError(err))
			return
		}
		writeFile(w, reportFormat, "estimation-report", buf.Bytes())
		return
	}

	resp := apiv1.BatchEstimateResponse{Results: make([]apiv1.BatchEstimateItem, 0, len(items))}
	for i, item := range items {
		out := apiv1.BatchEstimateItem{Index: item.Index}
		switch {
		case inputErrs[i] != nil:
			out.Error = inputErrs[i].Error()
		case item.Err != nil:
			out.Error = item.Err.Error()
		default:
			res := services.ToEstimateResponse(item.Estimation)
			out.Result = &res
		}
		resp.Results = append(resp.Results, out)
	}
	render.JSON(w, r, resp)
}

// LastInput handles GET /api/estimate/last
func (h *EstimateHandler) LastInput(w http.ResponseWriter, r *http.Request) {
	last, ok, err := h.service.LastInput(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	if !ok {
		h.errorHandler.HandleError(w, r, apierrors.NotFoundError("last input"))
		return
	}

	updated := last.UpdatedAt
	render.JSON(w, r, apiv1.LastInputResponse{
		Input:     services.ToInputRequest(last.Input),
		UpdatedAt: &updated,
	})
}

func (h *EstimateHandler) input(req apiv1.EstimateRequest) (refractometer.EstimationInput, error) {
	return h.service.NewInput(req.Model, req.InitialBrix, req.FinalBrix, req.CorrectionFactor)
}

// writeFile sends data as a download named base plus the format extension
func writeFile(w http.ResponseWriter, format exporter.Format, base string, data []byte) {
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s%s"`, base, format.Extension()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
