package refractometer

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"sync"
)

// ParsePositive parses user input. It reports false for empty, non-numeric,
// non-finite and non-positive values, all of which the pipeline treats as
// absent.
func ParsePositive(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, false
	}
	return v, true
}

// Evaluate runs model on raw readings through cal and computes every derived
// metric. It does not validate its arguments.
func Evaluate(cal *Calibration, model Model, bxi, bxf, wcf float64) Result {
	cbxi := cal.Transform(bxi)
	cbxf := cal.Transform(bxf)
	ex := model.Calc(cbxi, cbxf, wcf)

	var abw *float64
	if am, ok := model.(ABWModel); ok {
		v := am.ABW(cbxi, cbxf, wcf)
		abw = &v
	}
	return Derive(model.ID(), ex, abw)
}

// Estimate applies the partial result policy to in against cal:
//
//   - without a usable initial reading and correction factor nothing is set
//   - with both, the original extract preview is set
//   - with a usable final reading below the initial one, everything is set
//
// The only error is an unknown model.
func Estimate(cal *Calibration, in EstimationInput) (Result, error) {
	model, err := LookupModel(in.Model)
	if err != nil {
		return NewResult(in.Model), err
	}

	result := NewResult(in.Model)
	bxi, okI := ParsePositive(in.InitialBrix)
	wcf, okW := ParsePositive(in.CorrectionFactor)
	if !okI || !okW {
		return result, nil
	}

	result.OE = CorrectBrix(cal.Transform(bxi), wcf)
	result.Stage = StagePreview

	bxf, okF := ParsePositive(in.FinalBrix)
	if okF && bxi > bxf {
		result = Evaluate(cal, model, bxi, bxf, wcf)
	}
	return result, nil
}

// Engine owns the calibration point collection and the calibration fitted
// from it. Rebuilds replace the calibration as a whole; estimations work on
// the snapshot that was current when they started.
type Engine struct {
	mu          sync.RWMutex
	calibration *Calibration
	logger      *slog.Logger
}

// NewEngine creates an engine calibrated with points.
func NewEngine(points []CalibrationPoint, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{logger: logger}
	e.calibration = NewCalibration(points)
	return e
}

// Rebuild fits a new calibration from points and makes it current. The fit
// happens before the swap so concurrent readers never observe a partially
// built curve.
func (e *Engine) Rebuild(ctx context.Context, points []CalibrationPoint) *Calibration {
	cal := NewCalibration(points)

	e.mu.Lock()
	e.calibration = cal
	e.mu.Unlock()

	e.logger.InfoContext(ctx, "calibration rebuilt",
		"points", len(points),
		"degree", cal.Degree(),
		"kind", cal.Kind().String())
	return cal
}

// Calibration returns the current calibration snapshot
func (e *Engine) Calibration() *Calibration {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.calibration
}

// Points returns the points of the current calibration
func (e *Engine) Points() []CalibrationPoint {
	return e.Calibration().Points()
}

// Estimate evaluates user input against the current calibration.
func (e *Engine) Estimate(ctx context.Context, in EstimationInput) (Result, error) {
	return e.EstimateWith(ctx, e.Calibration(), in)
}

// EstimateWith evaluates user input against a snapshot previously obtained
// from Calibration. Batches use it to share one snapshot.
func (e *Engine) EstimateWith(ctx context.Context, cal *Calibration, in EstimationInput) (Result, error) {
	result, err := Estimate(cal, in)
	if err != nil {
		e.logger.WarnContext(ctx, "estimation rejected", "model", int(in.Model), "error", err)
		return result, err
	}
	e.logger.DebugContext(ctx, "estimation completed",
		"model", in.Model.String(),
		"stage", result.Stage.String())
	return result, nil
}

// EstimateValues is the numeric entry point. Unlike Estimate it reports
// unusable readings as errors.
func (e *Engine) EstimateValues(ctx context.Context, id ModelID, bxi, bxf, wcf float64) (Result, error) {
	model, err := LookupModel(id)
	if err != nil {
		return NewResult(id), err
	}
	if err := validateValues(bxi, bxf, wcf); err != nil {
		return NewResult(id), fmt.Errorf("validate inputs: %w", err)
	}
	if bxi <= bxf {
		return NewResult(id), fmt.Errorf("%w: %w", ErrInvalidArgument, &ValidationError{
			Field:   "final_brix",
			Message: "final reading must be below initial reading",
			Value:   bxf,
		})
	}
	result := Evaluate(e.Calibration(), model, bxi, bxf, wcf)
	e.logger.DebugContext(ctx, "estimation completed",
		"model", id.String(),
		"stage", result.Stage.String())
	return result, nil
}

func validateValues(bxi, bxf, wcf float64) error {
	fields := []struct {
		name  string
		value float64
	}{
		{"initial_brix", bxi},
		{"final_brix", bxf},
		{"correction_factor", wcf},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) || f.value <= 0 {
			return fmt.Errorf("%w: %w", ErrInvalidArgument, &ValidationError{
				Field:   f.name,
				Message: "must be a finite positive number",
				Value:   f.value,
			})
		}
	}
	return nil
}
