// Package refractometer estimates fermentation parameters from handheld
// refractometer readings.
//
// A refractometer reports a Brix value that drifts from the true sugar
// concentration and, once alcohol is present, no longer tracks extract
// directly. This package corrects both effects:
//
//  1. Calibration: a polynomial (degree 1 to 3) fitted through the origin
//     from user supplied (actual reading, true value) pairs maps raw readings
//     onto corrected readings.
//  2. Correlation models: eight published regressions turn an initial and a
//     final Brix reading into original extract, apparent extract and final
//     gravity.
//  3. Derived metrics: real extract, alcohol by weight and volume, apparent
//     and real degree of fermentation and caloric content follow analytically.
//
// # Architecture
//
//   - types.go: model identifiers, calibration points, inputs and results
//   - conversion.go: Plato and specific gravity conversions, wort correction
//   - correlation.go: the correlation model registry
//   - derived.go: analytical metrics computed from a model's extracts
//   - regression.go: least-squares polynomial fitting
//   - calibration.go: the immutable calibration curve
//   - engine.go: the estimation pipeline and the active calibration snapshot
//   - persist.go: calibration point encoding
//
// # Usage Example
//
//	engine := refractometer.NewEngine([]refractometer.CalibrationPoint{
//	    {Actual: 10.0, Target: 10.5},
//	}, slog.Default())
//
//	result, err := engine.Estimate(ctx, refractometer.EstimationInput{
//	    Model:            refractometer.TerrillCubic,
//	    InitialBrix:      "16.5",
//	    FinalBrix:        "8.2",
//	    CorrectionFactor: "1.04",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("FG %.3f, ABV %.1f%%\n", result.FG, result.ABV)
//
// Values that cannot be computed from the supplied input are NaN. Callers
// should present them as unavailable rather than as zero.
package refractometer
