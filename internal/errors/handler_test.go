package errors

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"refracalc/internal/infrastructure"
	"refracalc/internal/refractometer"
)

func newTestHandler() *ErrorHandler {
	return NewErrorHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), false)
}

func TestErrorToProblem(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{"unknown model", fmt.Errorf("lookup: %w", refractometer.ErrUnknownModel), http.StatusBadRequest, TypeUnknownModel},
		{"engine validation", &refractometer.ValidationError{Field: "final_brix", Message: "too high"}, http.StatusBadRequest, TypeValidation},
		{"invalid argument", refractometer.ErrInvalidArgument, http.StatusBadRequest, TypeValidation},
		{"api not found", NotFoundError("calibration point 3"), http.StatusNotFound, TypeNotFound},
		{"api unknown model", ErrUnknownModel, http.StatusBadRequest, TypeUnknownModel},
		{"api too large", ErrPayloadTooLarge, http.StatusRequestEntityTooLarge, TypePayloadTooLarge},
		{"app parsing", NewParsingError("bad calibration file", io.ErrUnexpectedEOF), http.StatusUnprocessableEntity, TypeCalibrationData},
		{"app storage", NewStorageError("write failed", io.ErrShortWrite), http.StatusInternalServerError, TypeStorage},
		{"app not found", NewNotFoundError("calibration point"), http.StatusNotFound, TypeNotFound},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout, TypeTimeout},
		{"unknown", io.EOF, http.StatusInternalServerError, TypeInternal},
	}

	h := newTestHandler()
	r := httptest.NewRequest(http.MethodGet, "/api/estimate", nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := h.ErrorToProblem(tt.err, r)
			assert.Equal(t, tt.wantStatus, p.Status)
			assert.Equal(t, tt.wantType, p.Type)
			assert.Equal(t, "/api/estimate", p.Instance)
		})
	}
}

func TestHandleErrorWritesProblemJSON(t *testing.T) {
	h := newTestHandler()
	r := httptest.NewRequest(http.MethodPost, "/api/calibration/points", nil)
	r = r.WithContext(infrastructure.WithTraceID(r.Context(), "abc-123"))
	w := httptest.NewRecorder()

	h.HandleError(w, r, ErrValidation("target", "must be a finite number"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, TypeValidation, body["type"])
	assert.Equal(t, float64(400), body["status"])
	assert.Equal(t, "abc-123", body["trace_id"])
	assert.Equal(t, "VALIDATION_FAILED", body["error_code"])

	errs, ok := body["errors"].([]interface{})
	require.True(t, ok)
	require.Len(t, errs, 1)
	assert.Equal(t, "target", errs[0].(map[string]interface{})["field"])
}

func TestHandleErrorNil(t *testing.T) {
	w := httptest.NewRecorder()
	newTestHandler().HandleError(w, httptest.NewRequest(http.MethodGet, "/", nil), nil)
	assert.Equal(t, 0, w.Body.Len())
}

func TestUnknownModelProblemListsModels(t *testing.T) {
	p := newTestHandler().ErrorToProblem(refractometer.ErrUnknownModel, httptest.NewRequest(http.MethodGet, "/", nil))
	models, ok := p.Extensions["models"].([]string)
	require.True(t, ok)
	assert.Len(t, models, 8)
	assert.Equal(t, "terrill-linear", models[0])
}

func TestProblemDetailsMarshal(t *testing.T) {
	p := NewProblemDetails(http.StatusNotFound, TypeNotFound, "Not Found", "", "/x").
		WithExtension("trace_id", "t1").
		WithExtension("status", 999) // standard fields win

	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"/errors/not-found","title":"Not Found","status":404,"instance":"/x","trace_id":"t1"}`, string(data))
}

func TestAppError(t *testing.T) {
	cause := io.ErrUnexpectedEOF
	err := NewParsingError("decode calibration points", cause).With("file", "points.json")

	assert.ErrorIs(t, err, cause)
	assert.True(t, IsType(err, ErrTypeParsing))
	assert.False(t, IsType(err, ErrTypeStorage))
	assert.True(t, IsType(fmt.Errorf("wrap: %w", err), ErrTypeParsing))
	assert.Equal(t, "parsing: decode calibration points: unexpected EOF", err.Error())
	assert.Equal(t, "points.json", err.Fields["file"])

	assert.Equal(t, "not_found: point not found", NewNotFoundError("point").Error())
}
