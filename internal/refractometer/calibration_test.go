package refractometer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitInput(t *testing.T) {
	tests := []struct {
		name       string
		points     []CalibrationPoint
		wantLen    int
		wantDegree int
	}{
		{"no points", nil, 1, 0},
		{"one point", []CalibrationPoint{{10, 10.5}}, 2, 1},
		{"two points", []CalibrationPoint{{10, 10.5}, {20, 20.8}}, 3, 2},
		{"three points", []CalibrationPoint{{5, 5.2}, {10, 10.5}, {20, 20.8}}, 4, 3},
		{"six points capped", []CalibrationPoint{{2, 2.1}, {5, 5.2}, {8, 8.3}, {10, 10.5}, {15, 15.6}, {20, 20.8}}, 7, 3},
		{"repeated reading", []CalibrationPoint{{10, 10.5}, {10, 10.7}}, 3, 1},
		{"reading at origin", []CalibrationPoint{{0, 0.3}}, 2, 0},
		{"non-finite skipped", []CalibrationPoint{{math.NaN(), 1}, {10, math.Inf(1)}, {10, 10.5}}, 2, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y, degree := fitInput(tt.points)
			require.Len(t, x, tt.wantLen)
			require.Len(t, y, tt.wantLen)
			assert.Equal(t, tt.wantDegree, degree)
			// origin is always last
			assert.Equal(t, 0.0, x[len(x)-1])
			assert.Equal(t, 0.0, y[len(y)-1])
		})
	}
}

func TestCalibrationIdentity(t *testing.T) {
	cal := NewCalibration(nil)

	assert.True(t, cal.IsIdentity())
	assert.Equal(t, SinglePoint, cal.Kind())
	assert.Equal(t, 0, cal.Degree())
	assert.Empty(t, cal.Coefficients())
	for _, x := range []float64{0, 1.5, 10, 25.25, -3} {
		assert.Equal(t, x, cal.Transform(x))
	}

	var nilCal *Calibration
	assert.Equal(t, 12.0, nilCal.Transform(12))
}

func TestCalibrationSinglePoint(t *testing.T) {
	cal := NewCalibration([]CalibrationPoint{{Actual: 10, Target: 10.5}})

	assert.Equal(t, TwoPoint, cal.Kind())
	assert.Equal(t, 1, cal.Degree())
	assert.InDelta(t, 10.5, cal.Transform(10), 1e-9)
	assert.InDelta(t, 0, cal.Transform(0), 1e-9)
	assert.InDelta(t, 21, cal.Transform(20), 1e-9)

	coef := cal.Coefficients()
	require.Len(t, coef, 2)
	assert.InDelta(t, 0, coef[0], 1e-9)
	assert.InDelta(t, 1.05, coef[1], 1e-9)
}

func TestCalibrationMultiPoint(t *testing.T) {
	t.Run("two points interpolate exactly", func(t *testing.T) {
		points := []CalibrationPoint{{10, 10.5}, {20, 20.8}}
		cal := NewCalibration(points)

		assert.Equal(t, MultiPoint, cal.Kind())
		assert.Equal(t, 2, cal.Degree())
		for _, p := range points {
			assert.InDelta(t, p.Target, cal.Transform(p.Actual), 1e-9)
		}
		assert.InDelta(t, 0, cal.Transform(0), 1e-9)
	})

	t.Run("degree capped at three", func(t *testing.T) {
		points := []CalibrationPoint{{2, 2.1}, {5, 5.2}, {8, 8.3}, {10, 10.5}, {15, 15.6}, {20, 20.8}}
		cal := NewCalibration(points)

		assert.Equal(t, MultiPoint, cal.Kind())
		assert.Equal(t, MaxDegree, cal.Degree())
		assert.Len(t, cal.Coefficients(), MaxDegree+1)
		// least squares, so only approximately through the points
		for _, p := range points {
			assert.InDelta(t, p.Target, cal.Transform(p.Actual), 0.1)
		}
	})

	t.Run("exact cubic is recovered", func(t *testing.T) {
		f := func(x float64) float64 { return 1.02*x + 0.001*x*x - 0.00002*x*x*x }
		var points []CalibrationPoint
		for _, x := range []float64{4, 8, 12, 16, 24} {
			points = append(points, CalibrationPoint{Actual: x, Target: f(x)})
		}
		cal := NewCalibration(points)

		require.Equal(t, 3, cal.Degree())
		for _, x := range []float64{1, 6, 18, 30} {
			assert.InDelta(t, f(x), cal.Transform(x), 1e-8)
		}
	})
}

// Repeated readings and readings at zero add no rank to the fit, so the
// degree follows the distinct non-zero readings rather than the point count.
func TestCalibrationRepeatedReadings(t *testing.T) {
	tests := []struct {
		name       string
		points     []CalibrationPoint
		wantDegree int
		wantKind   CalibrationKind
		at, want   float64
	}{
		// the line is a least-squares compromise between the two targets
		{"two targets for one reading", []CalibrationPoint{{10, 10.5}, {10, 10.7}}, 1, TwoPoint, 10, 10.6},
		{"same point three times", []CalibrationPoint{{10, 10.5}, {10, 10.5}, {10, 10.5}}, 1, TwoPoint, 10, 10.5},
		{"reading at zero", []CalibrationPoint{{0, 0.3}}, 0, SinglePoint, 5, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cal := NewCalibration(tt.points)
			assert.Equal(t, tt.wantDegree, cal.Degree())
			assert.Equal(t, tt.wantKind, cal.Kind())
			assert.InDelta(t, tt.want, cal.Transform(tt.at), 1e-9)
			for _, c := range cal.Coefficients() {
				assert.False(t, math.IsNaN(c) || math.IsInf(c, 0), "coefficient %v", c)
			}
			assert.Len(t, cal.Points(), len(tt.points))
		})
	}
}

func TestCalibrationIsImmutable(t *testing.T) {
	points := []CalibrationPoint{{10, 10.5}}
	cal := NewCalibration(points)

	points[0].Target = 99
	assert.InDelta(t, 10.5, cal.Transform(10), 1e-9)

	got := cal.Points()
	got[0].Actual = 42
	assert.Equal(t, 10.0, cal.Points()[0].Actual)

	coef := cal.Coefficients()
	coef[1] = 0
	assert.InDelta(t, 21, cal.Transform(20), 1e-9)
}

func TestCalibrationKindString(t *testing.T) {
	assert.Equal(t, "single-point", SinglePoint.String())
	assert.Equal(t, "two-point", TwoPoint.String())
	assert.Equal(t, "multi-point", MultiPoint.String())
	assert.Equal(t, "unknown", CalibrationKind(9).String())
}

func TestPolyfitErrors(t *testing.T) {
	_, err := polyfit([]float64{1, 2}, []float64{1}, 1)
	assert.Error(t, err)

	_, err = polyfit([]float64{1, 2}, []float64{1, 2}, 2)
	assert.ErrorIs(t, err, errDegenerateFit)
}

func TestHorner(t *testing.T) {
	assert.Equal(t, 0.0, horner(nil, 5))
	assert.Equal(t, 1.0+2*3+4*9.0, horner([]float64{1, 2, 4}, 3))
}
