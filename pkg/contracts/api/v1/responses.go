package api

import "time"

// EstimateResponse mirrors an estimation result. Quantities that could not be
// computed are null.
type EstimateResponse struct {
	Model string `json:"model"`
	Stage string `json:"stage"`

	OE   *float64 `json:"oe"`
	OESG *float64 `json:"oe_sg"`
	AE   *float64 `json:"ae"`
	FG   *float64 `json:"fg"`
	RE   *float64 `json:"re"`
	RESG *float64 `json:"re_sg"`
	ABW  *float64 `json:"abw"`
	ABV  *float64 `json:"abv"`
	ADF  *float64 `json:"adf"`
	RDF  *float64 `json:"rdf"`
	Kcal *float64 `json:"kcal"`
	KJ   *float64 `json:"kj"`

	Calibration string `json:"calibration"`
}

// BatchEstimateResponse holds one entry per input, in input order
type BatchEstimateResponse struct {
	Results []BatchEstimateItem `json:"results"`
}

// BatchEstimateItem is either a result or an error for one input
type BatchEstimateItem struct {
	Index  int               `json:"index"`
	Result *EstimateResponse `json:"result,omitempty"`
	Error  string            `json:"error,omitempty"`
}

// LastInputResponse is the most recently submitted estimation input
type LastInputResponse struct {
	Input     EstimateRequest `json:"input"`
	UpdatedAt *time.Time      `json:"updated_at,omitempty"`
}

// ModelInfo describes one correlation model
type ModelInfo struct {
	Index       int    `json:"index"`
	Name        string `json:"name"`
	DirectABW   bool   `json:"direct_abw"`
	Description string `json:"description"`
}

// ModelsResponse lists the correlation models in selector order
type ModelsResponse struct {
	Models  []ModelInfo `json:"models"`
	Default string      `json:"default"`
}

// CalibrationPoint is the wire form of one calibration point
type CalibrationPoint struct {
	Index  int     `json:"index"`
	Actual float64 `json:"actual"`
	Target float64 `json:"target"`
}

// CalibrationResponse summarizes the active calibration
type CalibrationResponse struct {
	Kind         string             `json:"kind"`
	Degree       int                `json:"degree"`
	Coefficients []float64          `json:"coefficients"`
	Points       []CalibrationPoint `json:"points"`
}

// HealthResponse reports service health
type HealthResponse struct {
	Status    string            `json:"status"`
	Version   string            `json:"version"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}
