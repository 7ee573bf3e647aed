package services

import (
	"math"

	"refracalc/internal/refractometer"
	apiv1 "refracalc/pkg/contracts/api/v1"
)

var modelDescriptions = map[refractometer.ModelID]string{
	refractometer.TerrillLinear:    "Sean Terrill linear FG correlation",
	refractometer.TerrillCubic:     "Sean Terrill cubic FG correlation",
	refractometer.NovotnyLinear:    "Petr Novotný linear FG correlation",
	refractometer.NovotnyQuadratic: "Petr Novotný quadratic FG correlation",
	refractometer.Novotrill:        "Terrill linear below a mean FG of 1.014, Novotný linear above",
	refractometer.Bonham:           "Louis Bonham FG correlation",
	refractometer.Gardner:          "Gardner apparent extract correlation",
	refractometer.Gossett:          "Gossett direct alcohol by weight correlation",
}

// ModelInfos lists the registered models in selector order
func ModelInfos() []apiv1.ModelInfo {
	models := refractometer.Models()
	infos := make([]apiv1.ModelInfo, 0, len(models))
	for _, m := range models {
		_, direct := m.(refractometer.ABWModel)
		infos = append(infos, apiv1.ModelInfo{
			Index:       int(m.ID()),
			Name:        m.ID().String(),
			DirectABW:   direct,
			Description: modelDescriptions[m.ID()],
		})
	}
	return infos
}

// ToEstimateResponse converts an estimation to its wire form
func ToEstimateResponse(est Estimation) apiv1.EstimateResponse {
	r := est.Result
	return apiv1.EstimateResponse{
		Model:       r.Model.String(),
		Stage:       r.Stage.String(),
		OE:          optional(r.OE),
		OESG:        optional(r.OESG()),
		AE:          optional(r.AE),
		FG:          optional(r.FG),
		RE:          optional(r.RE),
		RESG:        optional(r.RESG()),
		ABW:         optional(r.ABW),
		ABV:         optional(r.ABV),
		ADF:         optional(r.ADF),
		RDF:         optional(r.RDF),
		Kcal:        optional(r.Kcal),
		KJ:          optional(r.KJ),
		Calibration: est.Calibration.Kind().String(),
	}
}

// ToCalibrationResponse summarizes a calibration
func ToCalibrationResponse(cal *refractometer.Calibration) apiv1.CalibrationResponse {
	points := cal.Points()
	resp := apiv1.CalibrationResponse{
		Kind:         cal.Kind().String(),
		Degree:       cal.Degree(),
		Coefficients: cal.Coefficients(),
		Points:       make([]apiv1.CalibrationPoint, 0, len(points)),
	}
	if resp.Coefficients == nil {
		resp.Coefficients = []float64{}
	}
	for i, p := range points {
		resp.Points = append(resp.Points, apiv1.CalibrationPoint{Index: i, Actual: p.Actual, Target: p.Target})
	}
	return resp
}

// ToInputRequest converts a stored input back to request form
func ToInputRequest(in refractometer.EstimationInput) apiv1.EstimateRequest {
	return apiv1.EstimateRequest{
		Model:            in.Model.String(),
		InitialBrix:      in.InitialBrix,
		FinalBrix:        in.FinalBrix,
		CorrectionFactor: in.CorrectionFactor,
	}
}

// optional maps unavailable values to nil so they encode as JSON null
func optional(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
