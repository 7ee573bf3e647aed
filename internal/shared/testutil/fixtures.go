package testutil

import "refracalc/internal/refractometer"

// ThreePoints is a calibration set that yields a cubic curve
func ThreePoints() []refractometer.CalibrationPoint {
	return []refractometer.CalibrationPoint{
		{Actual: 5, Target: 5.2},
		{Actual: 10, Target: 10.3},
		{Actual: 15, Target: 15.5},
	}
}

// OnePoint is a calibration set that yields a straight line through the origin
func OnePoint() []refractometer.CalibrationPoint {
	return []refractometer.CalibrationPoint{{Actual: 10, Target: 10.5}}
}

// FullInput is an input that runs the whole pipeline: 20 °Bx down to 10 °Bx
// with no wort correction.
func FullInput(model refractometer.ModelID) refractometer.EstimationInput {
	return refractometer.EstimationInput{
		Model:            model,
		InitialBrix:      "20",
		FinalBrix:        "10",
		CorrectionFactor: "1",
	}
}
