package refractometer

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// MaxDegree is the highest polynomial degree a calibration fit will use.
const MaxDegree = 3

var errDegenerateFit = errors.New("degenerate polynomial fit")

// polyfit returns least-squares coefficients, lowest power first, of a
// polynomial of the given degree through (x, y). It fails if the system is
// underdetermined or numerically singular.
func polyfit(x, y []float64, degree int) ([]float64, error) {
	if len(x) != len(y) {
		return nil, fmt.Errorf("polyfit: %d x values but %d y values", len(x), len(y))
	}
	if degree < 1 || len(x) < degree+1 {
		return nil, fmt.Errorf("polyfit: degree %d needs at least %d points, have %d: %w",
			degree, degree+1, len(x), errDegenerateFit)
	}

	a := vandermonde(x, degree)
	b := mat.NewVecDense(len(y), y)
	c := mat.NewVecDense(degree+1, nil)

	qr := new(mat.QR)
	qr.Factorize(a)
	if err := qr.SolveVecTo(c, false, b); err != nil {
		return nil, fmt.Errorf("polyfit: solve QR: %w", err)
	}

	coef := make([]float64, degree+1)
	for i := range coef {
		v := c.AtVec(i)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("polyfit: non-finite coefficient %d: %w", i, errDegenerateFit)
		}
		coef[i] = v
	}
	return coef, nil
}

// vandermonde builds the design matrix with columns x^0 .. x^degree.
func vandermonde(a []float64, degree int) *mat.Dense {
	x := mat.NewDense(len(a), degree+1, nil)
	for i := range a {
		for j, p := 0, 1.0; j <= degree; j, p = j+1, p*a[i] {
			x.Set(i, j, p)
		}
	}
	return x
}

// horner evaluates a polynomial with coefficients lowest power first.
func horner(coef []float64, x float64) float64 {
	y := 0.0
	for i := len(coef) - 1; i >= 0; i-- {
		y = y*x + coef[i]
	}
	return y
}
