package refractometer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// wirePoint accepts both the current {"actual","target"} shape and the
// legacy {"x","y"} shape, where x is the actual reading and y the target.
type wirePoint struct {
	Actual *float64 `json:"actual,omitempty"`
	Target *float64 `json:"target,omitempty"`
	X      *float64 `json:"x,omitempty"`
	Y      *float64 `json:"y,omitempty"`
}

// pointSet is the optional envelope form of a point list.
type pointSet struct {
	Version int         `json:"version"`
	Points  []wirePoint `json:"points"`
}

// EncodePoints writes points as a flat JSON list.
func EncodePoints(w io.Writer, points []CalibrationPoint) error {
	if points == nil {
		points = []CalibrationPoint{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(points); err != nil {
		return fmt.Errorf("encode calibration points: %w", err)
	}
	return nil
}

// DecodePoints parses a calibration point list. It accepts a flat list or an
// object with a "points" list, in either point shape.
func DecodePoints(data []byte) ([]CalibrationPoint, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return []CalibrationPoint{}, nil
	}

	var raw []wirePoint
	if data[0] == '{' {
		var set pointSet
		if err := json.Unmarshal(data, &set); err != nil {
			return nil, fmt.Errorf("decode calibration points: %w", err)
		}
		raw = set.Points
	} else if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode calibration points: %w", err)
	}

	points := make([]CalibrationPoint, 0, len(raw))
	for i, wp := range raw {
		var p CalibrationPoint
		switch {
		case wp.Actual != nil && wp.Target != nil:
			p = CalibrationPoint{Actual: *wp.Actual, Target: *wp.Target}
		case wp.X != nil && wp.Y != nil:
			p = CalibrationPoint{Actual: *wp.X, Target: *wp.Y}
		default:
			return nil, &ValidationError{
				Field:   fmt.Sprintf("points[%d]", i),
				Message: "point needs actual and target values",
				Value:   i,
			}
		}
		points = append(points, p)
	}
	return points, nil
}
