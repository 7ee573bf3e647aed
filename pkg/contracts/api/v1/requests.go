// Package api contains the v1 HTTP contract of the refracalc service.
package api

// EstimateRequest carries readings as entered by the user. Readings are
// strings on purpose: empty or unusable readings are treated as absent and
// produce a partial result rather than a validation error.
type EstimateRequest struct {
	Model            string `json:"model" validate:"omitempty,max=32"`
	InitialBrix      string `json:"initial_brix" validate:"max=32"`
	FinalBrix        string `json:"final_brix" validate:"max=32"`
	CorrectionFactor string `json:"correction_factor" validate:"max=32"`
}

// BatchEstimateRequest evaluates several inputs against one calibration
type BatchEstimateRequest struct {
	Inputs []EstimateRequest `json:"inputs" validate:"required,min=1,dive"`
}

// CalibrationPointRequest adds or replaces one calibration point. Both values
// must be positive, matching what a user can read off an instrument.
type CalibrationPointRequest struct {
	Actual *float64 `json:"actual" validate:"required,gt=0"`
	Target *float64 `json:"target" validate:"required,gt=0"`
}

// CalibrationSetPoint is one point of a replacement set. Any value is
// accepted, as with a file import.
type CalibrationSetPoint struct {
	Actual *float64 `json:"actual" validate:"required"`
	Target *float64 `json:"target" validate:"required"`
}

// CalibrationSetRequest replaces the whole calibration point collection
type CalibrationSetRequest struct {
	Points []CalibrationSetPoint `json:"points" validate:"dive"`
}
