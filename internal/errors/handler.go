package errors

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"

	"refracalc/internal/infrastructure"
	"refracalc/internal/refractometer"
)

// Problem types
const (
	TypeValidation      = "/errors/validation"
	TypeUnknownModel    = "/errors/unknown-model"
	TypeNotFound        = "/errors/not-found"
	TypeRateLimit       = "/errors/rate-limit"
	TypeInternal        = "/errors/internal"
	TypeTimeout         = "/errors/timeout"
	TypePayloadTooLarge = "/errors/payload-too-large"
	TypeUnsupported     = "/errors/unsupported-format"
	TypeStorage         = "/errors/storage"
	TypeCalibrationData = "/errors/calibration-data"
)

// ErrorHandler converts errors into RFC 7807 responses
type ErrorHandler struct {
	logger       *slog.Logger
	includeStack bool
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *slog.Logger, includeStack bool) *ErrorHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ErrorHandler{
		logger:       logger.With(slog.String("component", "error_handler")),
		includeStack: includeStack,
	}
}

// HandleError converts any error to RFC 7807 format and responds
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}
	ctx := r.Context()
	traceID := infrastructure.GetTraceID(ctx)

	problem := h.ErrorToProblem(err, r)
	if traceID != "" {
		problem.WithExtension("trace_id", traceID)
	}

	level := slog.LevelWarn
	if problem.Status >= http.StatusInternalServerError {
		level = slog.LevelError
		if h.includeStack {
			problem.WithExtension("stack", string(debug.Stack()))
		}
	}
	h.logger.Log(ctx, level, "request failed",
		slog.String("error", err.Error()),
		slog.Int("status", problem.Status),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)

	if err := problem.Write(w); err != nil {
		h.logger.ErrorContext(ctx, "failed to write problem response", slog.String("error", err.Error()))
	}
}

// ErrorToProblem maps an error onto Problem Details
func (h *ErrorHandler) ErrorToProblem(err error, r *http.Request) *ProblemDetails {
	instance := r.URL.Path

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return NewProblemDetails(http.StatusGatewayTimeout, TypeTimeout,
			"Request Timeout", "The request took too long to process and was cancelled", instance)
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErrorToProblem(apiErr, instance)
	}

	if errors.Is(err, refractometer.ErrUnknownModel) {
		return NewProblemDetails(http.StatusBadRequest, TypeUnknownModel,
			"Unknown Model", err.Error(), instance).
			WithExtension("models", modelNames())
	}

	var verr *refractometer.ValidationError
	if errors.As(err, &verr) {
		return NewProblemDetails(http.StatusBadRequest, TypeValidation,
			"Validation Failed", err.Error(), instance).
			WithExtension("errors", []ValidationError{{Field: verr.Field, Message: verr.Message}})
	}
	if errors.Is(err, refractometer.ErrInvalidArgument) {
		return NewProblemDetails(http.StatusBadRequest, TypeValidation,
			"Validation Failed", err.Error(), instance)
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErrorToProblem(appErr, instance)
	}

	return NewProblemDetails(http.StatusInternalServerError, TypeInternal,
		"Internal Server Error", "An unexpected error occurred", instance)
}

func apiErrorToProblem(e *APIError, instance string) *ProblemDetails {
	problemType := TypeInternal
	switch e.StatusCode {
	case http.StatusBadRequest:
		problemType = TypeValidation
		if e.ErrorCode == ErrUnknownModel.ErrorCode {
			problemType = TypeUnknownModel
		}
	case http.StatusNotFound:
		problemType = TypeNotFound
	case http.StatusRequestEntityTooLarge:
		problemType = TypePayloadTooLarge
	case http.StatusUnsupportedMediaType:
		problemType = TypeUnsupported
	case http.StatusUnprocessableEntity:
		problemType = TypeCalibrationData
	case http.StatusTooManyRequests:
		problemType = TypeRateLimit
	}

	problem := NewProblemDetails(e.StatusCode, problemType, http.StatusText(e.StatusCode), e.Message, instance).
		WithExtension("error_code", e.ErrorCode)
	if e.Details != nil {
		if verrs, ok := e.Details.([]ValidationError); ok {
			problem.WithExtension("errors", verrs)
		} else {
			problem.WithExtension("details", e.Details)
		}
	}
	return problem
}

func appErrorToProblem(e *AppError, instance string) *ProblemDetails {
	var problem *ProblemDetails
	switch e.Type {
	case ErrTypeNotFound:
		problem = NewProblemDetails(http.StatusNotFound, TypeNotFound, "Resource Not Found", e.Message, instance)
	case ErrTypeParsing:
		problem = NewProblemDetails(http.StatusUnprocessableEntity, TypeCalibrationData,
			"Unreadable Calibration Data", e.Error(), instance)
	case ErrTypeStorage:
		problem = NewProblemDetails(http.StatusInternalServerError, TypeStorage,
			"Storage Error", "Calibration storage failed", instance)
	default:
		problem = NewProblemDetails(http.StatusInternalServerError, TypeInternal,
			"Internal Server Error", "An unexpected error occurred", instance)
	}
	if problem.Status < http.StatusInternalServerError {
		for k, v := range e.Fields {
			problem.WithExtension(k, v)
		}
	}
	return problem
}

func modelNames() []string {
	models := refractometer.Models()
	names := make([]string, len(models))
	for i, m := range models {
		names[i] = m.ID().String()
	}
	return names
}
