package refractometer

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrUnknownModel is returned when a model identifier does not name a
	// registered correlation model.
	ErrUnknownModel = errors.New("unknown correlation model")

	// ErrInvalidArgument is returned by numeric entry points when a value
	// violates a precondition such as a non-positive correction factor.
	ErrInvalidArgument = errors.New("invalid argument")
)

// ModelID identifies a correlation model. The numeric values are stable and
// match the selector order used by clients.
type ModelID int

const (
	// TerrillLinear is Sean Terrill's linear FG correlation (2011)
	TerrillLinear ModelID = iota
	// TerrillCubic is Sean Terrill's cubic FG correlation (2011)
	TerrillCubic
	// NovotnyLinear is Petr Novotny's linear correction (2017)
	NovotnyLinear
	// NovotnyQuadratic is Petr Novotny's quadratic correction (2017)
	NovotnyQuadratic
	// Novotrill picks Terrill or Novotny depending on the expected gravity
	Novotrill
	// Bonham is the standard correlation published in Zymurgy (2001)
	Bonham
	// Gardner is the linear apparent extract formula from Zymurgy (2001)
	Gardner
	// Gossett derives alcohol by weight first (2012)
	Gossett
)

var modelNames = [...]string{
	TerrillLinear:    "terrill-linear",
	TerrillCubic:     "terrill-cubic",
	NovotnyLinear:    "novotny-linear",
	NovotnyQuadratic: "novotny-quadratic",
	Novotrill:        "novotrill",
	Bonham:           "bonham",
	Gardner:          "gardner",
	Gossett:          "gossett",
}

// String returns the canonical name of the model
func (m ModelID) String() string {
	if !m.IsValid() {
		return "unknown"
	}
	return modelNames[m]
}

// IsValid reports whether m names a registered model
func (m ModelID) IsValid() bool {
	return m >= TerrillLinear && m <= Gossett
}

// ParseModelID accepts either a canonical model name or its numeric index.
func ParseModelID(s string) (ModelID, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range modelNames {
		if name == s {
			return ModelID(i), nil
		}
	}
	if n, err := strconv.Atoi(s); err == nil {
		if id := ModelID(n); id.IsValid() {
			return id, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownModel, s)
}

// CalibrationPoint pairs a raw refractometer reading with the value it should
// have shown. Both values are in Brix.
type CalibrationPoint struct {
	Actual float64 `json:"actual"`
	Target float64 `json:"target"`
}

// IsFinite reports whether both coordinates are usable by the regression
func (p CalibrationPoint) IsFinite() bool {
	return !math.IsNaN(p.Actual) && !math.IsInf(p.Actual, 0) &&
		!math.IsNaN(p.Target) && !math.IsInf(p.Target, 0)
}

// EstimationInput carries readings exactly as a user entered them. Fields
// that are empty or not strictly positive numbers are treated as absent.
type EstimationInput struct {
	Model            ModelID `json:"model"`
	InitialBrix      string  `json:"initial_brix"`
	FinalBrix        string  `json:"final_brix"`
	CorrectionFactor string  `json:"correction_factor"`
}

// Extracts is the output shared by every correlation model
type Extracts struct {
	OE float64 // original extract (°P)
	AE float64 // apparent extract (°P)
	FG float64 // final gravity (SG)
}

// Stage reports how far the pipeline got for a given input.
type Stage int

const (
	// StageNone means neither initial reading nor correction factor was usable
	StageNone Stage = iota
	// StagePreview means only the original extract is known
	StagePreview
	// StageFull means every metric has been computed
	StageFull
)

// String returns the string representation of the stage
func (s Stage) String() string {
	switch s {
	case StageNone:
		return "none"
	case StagePreview:
		return "preview"
	case StageFull:
		return "full"
	default:
		return "unknown"
	}
}

// Result holds every estimated quantity. Fields that could not be computed
// are NaN, so a Result must not be handed to encoding/json directly; the
// transport layer maps NaN to null.
type Result struct {
	Model ModelID
	Stage Stage

	OE   float64 // original extract (°P)
	AE   float64 // apparent extract (°P)
	FG   float64 // final gravity (SG)
	RE   float64 // real extract (°P)
	ABW  float64 // alcohol by weight (%)
	ABV  float64 // alcohol by volume (%)
	ADF  float64 // apparent degree of fermentation (%)
	RDF  float64 // real degree of fermentation (%)
	Kcal float64 // kcal per 100 mL
	KJ   float64 // kJ per 100 mL
}

// NewResult returns a result with every quantity unset.
func NewResult(model ModelID) Result {
	nan := math.NaN()
	return Result{
		Model: model,
		Stage: StageNone,
		OE:    nan, AE: nan, FG: nan, RE: nan, ABW: nan,
		ABV: nan, ADF: nan, RDF: nan, Kcal: nan, KJ: nan,
	}
}

// OESG returns the original extract on the specific gravity scale
func (r Result) OESG() float64 {
	return PlatoToSG(r.OE)
}

// RESG returns the real extract on the specific gravity scale
func (r Result) RESG() float64 {
	return PlatoToSG(r.RE)
}

// IsComplete reports whether the full pipeline ran
func (r Result) IsComplete() bool {
	return r.Stage == StageFull
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
	Value   interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error in field %s: %s (value: %v)", e.Field, e.Message, e.Value)
}
