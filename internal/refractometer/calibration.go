package refractometer

// CalibrationKind classifies a fitted calibration curve.
type CalibrationKind int

const (
	// SinglePoint means only the implicit origin is known: the identity map
	SinglePoint CalibrationKind = iota
	// TwoPoint means a straight line through the origin and one reading
	TwoPoint
	// MultiPoint means a polynomial of degree 2 or 3
	MultiPoint
)

// String returns the string representation of the kind
func (k CalibrationKind) String() string {
	switch k {
	case SinglePoint:
		return "single-point"
	case TwoPoint:
		return "two-point"
	case MultiPoint:
		return "multi-point"
	default:
		return "unknown"
	}
}

// origin is appended to every fit so a zero reading stays zero.
var origin = CalibrationPoint{Actual: 0, Target: 0}

// Calibration maps raw refractometer readings onto corrected readings. It is
// immutable; a changed point set requires a new Calibration.
type Calibration struct {
	points []CalibrationPoint
	degree int
	coef   []float64
}

// fitInput builds the regression input from user points: non-finite points
// are skipped, the origin is appended and the degree is one less than the
// point count, capped at MaxDegree. Repeated readings do not add rank to the
// fit, so the degree is also bounded by the number of distinct readings.
// A degree of 0 means no fit is required.
func fitInput(points []CalibrationPoint) (x, y []float64, degree int) {
	x = make([]float64, 0, len(points)+1)
	y = make([]float64, 0, len(points)+1)
	distinct := map[float64]struct{}{origin.Actual: {}}
	for _, p := range points {
		if !p.IsFinite() {
			continue
		}
		x = append(x, p.Actual)
		y = append(y, p.Target)
		distinct[p.Actual] = struct{}{}
	}
	x = append(x, origin.Actual)
	y = append(y, origin.Target)

	degree = min(len(x)-1, len(distinct)-1, MaxDegree)
	return x, y, degree
}

// NewCalibration fits a calibration curve to points. With no usable points
// the result is the identity. If the solver still reports a singular system
// the degree is lowered until a fit succeeds, falling back to the identity.
func NewCalibration(points []CalibrationPoint) *Calibration {
	c := &Calibration{points: append([]CalibrationPoint(nil), points...)}

	x, y, degree := fitInput(points)
	for d := degree; d >= 1; d-- {
		coef, err := polyfit(x, y, d)
		if err != nil {
			continue
		}
		c.degree = d
		c.coef = coef
		break
	}
	return c
}

// Transform returns the corrected value for a raw reading.
func (c *Calibration) Transform(x float64) float64 {
	if c == nil || c.degree == 0 {
		return x
	}
	return horner(c.coef, x)
}

// Degree returns the fitted polynomial degree, 0 for the identity
func (c *Calibration) Degree() int {
	if c == nil {
		return 0
	}
	return c.degree
}

// Kind classifies the fit
func (c *Calibration) Kind() CalibrationKind {
	switch c.Degree() {
	case 0:
		return SinglePoint
	case 1:
		return TwoPoint
	default:
		return MultiPoint
	}
}

// Coefficients returns a copy of the polynomial coefficients, lowest power
// first. It is empty for the identity.
func (c *Calibration) Coefficients() []float64 {
	if c == nil {
		return nil
	}
	return append([]float64(nil), c.coef...)
}

// Points returns a copy of the points the calibration was built from
func (c *Calibration) Points() []CalibrationPoint {
	if c == nil {
		return nil
	}
	return append([]CalibrationPoint(nil), c.points...)
}

// IsIdentity reports whether Transform returns its input unchanged
func (c *Calibration) IsIdentity() bool {
	return c.Degree() == 0
}
