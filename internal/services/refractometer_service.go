package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"

	"refracalc/internal/config"
	apierrors "refracalc/internal/errors"
	"refracalc/internal/exporter"
	"refracalc/internal/infrastructure"
	"refracalc/internal/refractometer"
	"refracalc/internal/store"
	"refracalc/pkg/contracts/events"
)

// EventPublisher receives calibration change events
type EventPublisher interface {
	Publish(ctx context.Context, msg events.WebSocketMessage)
}

// Estimation is one evaluated input together with the calibration it used
type Estimation struct {
	Input       refractometer.EstimationInput
	Result      refractometer.Result
	Calibration *refractometer.Calibration
}

// BatchItem is the outcome of one batch input
type BatchItem struct {
	Index      int
	Estimation Estimation
	Err        error
}

// RefractometerService coordinates the estimation engine with persistence,
// metrics and change events.
type RefractometerService struct {
	// mu serializes calibration changes; estimations never take it
	mu        sync.Mutex
	engine    *refractometer.Engine
	store     store.Store
	exporter  *exporter.Exporter
	publisher EventPublisher
	metrics   *infrastructure.Metrics
	tracer    trace.Tracer
	cfg       config.EngineConfig
	logger    *slog.Logger
}

// NewRefractometerService loads the stored calibration points and builds the
// engine from them. publisher, metrics and tracer may be nil.
func NewRefractometerService(
	ctx context.Context,
	cfg config.EngineConfig,
	st store.Store,
	publisher EventPublisher,
	metrics *infrastructure.Metrics,
	tracer trace.Tracer,
	logger *slog.Logger,
) (*RefractometerService, error) {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	logger = logger.With(slog.String("component", "refractometer.service"))
	if metrics == nil {
		metrics = infrastructure.NoopMetrics()
	}
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer(infrastructure.ServiceName)
	}
	if cfg.BatchConcurrency < 1 {
		cfg.BatchConcurrency = 1
	}

	points, err := st.LoadPoints(ctx)
	if err != nil {
		return nil, fmt.Errorf("load calibration points: %w", err)
	}

	s := &RefractometerService{
		engine:    refractometer.NewEngine(nil, logger),
		store:     st,
		exporter:  exporter.New(logger),
		publisher: publisher,
		metrics:   metrics,
		tracer:    tracer,
		cfg:       cfg,
		logger:    logger,
	}
	cal := s.engine.Rebuild(ctx, points)
	s.metrics.RecordCalibration(ctx, cal.Kind().String(), len(points))
	return s, nil
}

// Engine exposes the underlying engine
func (s *RefractometerService) Engine() *refractometer.Engine {
	return s.engine
}

// DefaultModel returns the configured model used when a request names none
func (s *RefractometerService) DefaultModel() refractometer.ModelID {
	if id, err := refractometer.ParseModelID(s.cfg.DefaultModel); err == nil {
		return id
	}
	return refractometer.TerrillCubic
}

// NewInput builds an estimation input from request fields. An empty model
// selects the configured default; an empty correction factor selects the
// configured default factor. Readings are passed through untouched.
func (s *RefractometerService) NewInput(model, initialBrix, finalBrix, correctionFactor string) (refractometer.EstimationInput, error) {
	id := s.DefaultModel()
	if strings.TrimSpace(model) != "" {
		var err error
		if id, err = refractometer.ParseModelID(model); err != nil {
			return refractometer.EstimationInput{}, err
		}
	}
	if correctionFactor == "" && s.cfg.DefaultCorrectionFactor > 0 {
		correctionFactor = fmt.Sprintf("%g", s.cfg.DefaultCorrectionFactor)
	}
	return refractometer.EstimationInput{
		Model:            id,
		InitialBrix:      initialBrix,
		FinalBrix:        finalBrix,
		CorrectionFactor: correctionFactor,
	}, nil
}

// Estimate evaluates in against the current calibration and remembers it as
// the last-used input. Failing to remember the input is logged, not returned.
func (s *RefractometerService) Estimate(ctx context.Context, in refractometer.EstimationInput) (Estimation, error) {
	ctx, span := s.tracer.Start(ctx, "refractometer.estimate")
	defer span.End()

	est, err := s.estimateWith(ctx, s.engine.Calibration(), in)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return est, err
	}
	span.SetAttributes(
		attribute.String("model", in.Model.String()),
		attribute.String("stage", est.Result.Stage.String()),
	)

	if err := s.store.SaveLastInput(ctx, in); err != nil {
		s.logger.WarnContext(ctx, "failed to save last input", slog.String("error", err.Error()))
	}
	return est, nil
}

func (s *RefractometerService) estimateWith(ctx context.Context, cal *refractometer.Calibration, in refractometer.EstimationInput) (Estimation, error) {
	start := time.Now()
	result, err := s.engine.EstimateWith(ctx, cal, in)
	s.metrics.RecordEstimation(ctx, in.Model.String(), result.Stage.String(), time.Since(start), err)
	return Estimation{Input: in, Result: result, Calibration: cal}, err
}

// EstimateBatch evaluates every input against one calibration snapshot.
// Per-input failures are reported in the matching item; the call itself
// only fails for an empty or oversized batch or a cancelled context.
func (s *RefractometerService) EstimateBatch(ctx context.Context, inputs []refractometer.EstimationInput) ([]BatchItem, error) {
	if len(inputs) == 0 {
		return nil, ErrEmptyBatch
	}
	if s.cfg.MaxBatchSize > 0 && len(inputs) > s.cfg.MaxBatchSize {
		return nil, fmt.Errorf("%w: %d inputs, limit %d", ErrBatchTooLarge, len(inputs), s.cfg.MaxBatchSize)
	}

	ctx, span := s.tracer.Start(ctx, "refractometer.estimate_batch",
		trace.WithAttributes(attribute.Int("batch.size", len(inputs))))
	defer span.End()
	s.metrics.BatchSize.Record(ctx, int64(len(inputs)))

	cal := s.engine.Calibration()
	items := make([]BatchItem, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.BatchConcurrency)
	for i, in := range inputs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			est, err := s.estimateWith(gctx, cal, in)
			items[i] = BatchItem{Index: i, Estimation: est, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, err
	}

	s.logger.DebugContext(ctx, "batch estimation completed",
		slog.Int("inputs", len(inputs)),
		slog.String("calibration", cal.Kind().String()))
	return items, nil
}

// LastInput returns the most recently estimated input
func (s *RefractometerService) LastInput(ctx context.Context) (store.LastInput, bool, error) {
	return s.store.LoadLastInput(ctx)
}

// Calibration returns the current calibration snapshot
func (s *RefractometerService) Calibration() *refractometer.Calibration {
	return s.engine.Calibration()
}

// AddPoint appends a calibration point
func (s *RefractometerService) AddPoint(ctx context.Context, p refractometer.CalibrationPoint) (*refractometer.Calibration, error) {
	if err := validatePoint("point", p); err != nil {
		return nil, err
	}
	return s.mutate(ctx, events.ActionPointAdded, func(points []refractometer.CalibrationPoint) ([]refractometer.CalibrationPoint, error) {
		return append(points, p), nil
	})
}

// ReplacePoint replaces the point at index
func (s *RefractometerService) ReplacePoint(ctx context.Context, index int, p refractometer.CalibrationPoint) (*refractometer.Calibration, error) {
	if err := validatePoint("point", p); err != nil {
		return nil, err
	}
	return s.mutate(ctx, events.ActionPointReplaced, func(points []refractometer.CalibrationPoint) ([]refractometer.CalibrationPoint, error) {
		if index < 0 || index >= len(points) {
			return nil, pointNotFound(index)
		}
		points[index] = p
		return points, nil
	})
}

// DeletePoint removes the point at index
func (s *RefractometerService) DeletePoint(ctx context.Context, index int) (*refractometer.Calibration, error) {
	return s.mutate(ctx, events.ActionPointDeleted, func(points []refractometer.CalibrationPoint) ([]refractometer.CalibrationPoint, error) {
		if index < 0 || index >= len(points) {
			return nil, pointNotFound(index)
		}
		return append(points[:index], points[index+1:]...), nil
	})
}

// ReplacePoints replaces the whole collection, as an import does. Unlike
// AddPoint and ReplacePoint it accepts any finite values.
func (s *RefractometerService) ReplacePoints(ctx context.Context, points []refractometer.CalibrationPoint, action string) (*refractometer.Calibration, error) {
	for i, p := range points {
		if err := validateFinite(fmt.Sprintf("points[%d]", i), p); err != nil {
			return nil, err
		}
	}
	if action == "" {
		action = events.ActionReplaced
	}
	replacement := append([]refractometer.CalibrationPoint(nil), points...)
	return s.mutate(ctx, action, func([]refractometer.CalibrationPoint) ([]refractometer.CalibrationPoint, error) {
		return replacement, nil
	})
}

// ImportPoints replaces the collection with points read from r
func (s *RefractometerService) ImportPoints(ctx context.Context, r io.Reader, format exporter.Format) (*refractometer.Calibration, error) {
	points, err := exporter.ImportPoints(r, format)
	if err != nil {
		return nil, err
	}
	return s.ReplacePoints(ctx, points, events.ActionImported)
}

// ExportPoints writes the current collection to w
func (s *RefractometerService) ExportPoints(ctx context.Context, w io.Writer, format exporter.Format) error {
	return s.exporter.ExportPoints(w, format, s.engine.Points())
}

// ExportReport writes batch results to w. Failed items are skipped.
func (s *RefractometerService) ExportReport(ctx context.Context, w io.Writer, format exporter.Format, items []BatchItem) error {
	rows := make([]exporter.ReportRow, 0, len(items))
	for _, item := range items {
		if item.Err != nil {
			continue
		}
		rows = append(rows, exporter.ReportRow{
			Input:       item.Estimation.Input,
			Result:      item.Estimation.Result,
			Calibration: item.Estimation.Calibration.Kind().String(),
		})
	}
	return s.exporter.ExportReport(w, format, rows)
}

// mutate applies change to a copy of the current points, persists the
// result, rebuilds the calibration and publishes the change.
func (s *RefractometerService) mutate(
	ctx context.Context,
	action string,
	change func([]refractometer.CalibrationPoint) ([]refractometer.CalibrationPoint, error),
) (*refractometer.Calibration, error) {
	ctx, span := s.tracer.Start(ctx, "refractometer.calibration_update",
		trace.WithAttributes(attribute.String("action", action)))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	points, err := change(s.engine.Points())
	if err != nil {
		return nil, err
	}
	if err := s.store.SavePoints(ctx, points); err != nil {
		infrastructure.RecordError(ctx, err)
		s.logger.ErrorContext(ctx, "failed to save calibration points",
			slog.String("action", action),
			slog.String("error", err.Error()))
		return nil, err
	}

	cal := s.engine.Rebuild(ctx, points)
	s.metrics.RecordCalibration(ctx, cal.Kind().String(), len(points))
	s.publish(ctx, action, cal)
	return cal, nil
}

func (s *RefractometerService) publish(ctx context.Context, action string, cal *refractometer.Calibration) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(ctx, events.WebSocketMessage{
		ID:        uuid.New().String(),
		Type:      events.MessageTypeCalibrationUpdated,
		Action:    action,
		Timestamp: time.Now().UTC(),
		TraceID:   infrastructure.GetTraceID(ctx),
		Data: events.CalibrationUpdated{
			Kind:   cal.Kind().String(),
			Degree: cal.Degree(),
			Points: len(cal.Points()),
		},
	})
}

// validatePoint accepts points whose values are both finite and positive
func validatePoint(field string, p refractometer.CalibrationPoint) error {
	for _, v := range []float64{p.Actual, p.Target} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return fmt.Errorf("%w: %w", ErrInvalidPoint, &refractometer.ValidationError{
				Field:   field,
				Message: "actual and target must be positive numbers",
				Value:   p,
			})
		}
	}
	return nil
}

// validateFinite accepts points whose values are both finite
func validateFinite(field string, p refractometer.CalibrationPoint) error {
	if p.IsFinite() {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidPoint, &refractometer.ValidationError{
		Field:   field,
		Message: "actual and target must be finite numbers",
		Value:   p,
	})
}

func pointNotFound(index int) error {
	return apierrors.NewNotFoundError(fmt.Sprintf("calibration point %d", index)).
		With("index", index)
}
