// Package gradcheck compares analytic gradients against central finite
// differences of the loss.
package gradcheck

import (
	"math"
	"math/rand"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
)

// DefaultStep is the finite-difference step used when none is given.
const DefaultStep = 1e-5

// absFloor is the absolute difference below which two gradient entries are
// considered equal regardless of their relative error.
const absFloor = 1e-8

// Func evaluates the loss at a weight matrix. It must not retain W.
type Func func(W *mat.Dense) (float64, error)

// Check is one sampled gradient entry.
type Check struct {
	Row, Col  int
	Numerical float64
	Analytic  float64
	RelError  float64
}

// Pass reports whether the check is within tol relative error.
func (c Check) Pass(tol float64) bool {
	return c.RelError <= tol || math.Abs(c.Numerical-c.Analytic) <= absFloor
}

// RelError returns |a-b| / (|a|+|b|), or 0 when both are zero.
func RelError(a, b float64) float64 {
	den := math.Abs(a) + math.Abs(b)
	if den == 0 {
		return 0
	}
	return math.Abs(a-b) / den
}

// MaxRelError returns the largest relative error among checks.
func MaxRelError(checks []Check) float64 {
	max := 0.0
	for _, c := range checks {
		if c.RelError > max {
			max = c.RelError
		}
	}
	return max
}

// Numerical returns the full numerical gradient of f at W using central
// differences. It costs two loss evaluations per entry of W.
func Numerical(f Func, W mat.Matrix, step float64) (*mat.Dense, error) {
	if step <= 0 {
		step = DefaultStep
	}
	r, c := W.Dims()
	x := mat.DenseCopyOf(W).RawMatrix().Data

	var firstErr error
	grad := fd.Gradient(nil, func(w []float64) float64 {
		loss, err := f(mat.NewDense(r, c, w))
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			return math.NaN()
		}
		return loss
	}, x, &fd.Settings{Formula: fd.Central, Step: step})
	if firstErr != nil {
		return nil, errors.Wrap(firstErr, "gradcheck: numerical gradient")
	}
	return mat.NewDense(r, c, grad), nil
}

// Sparse compares analytic against central differences of f at numChecks
// randomly chosen entries of W. W itself is not modified.
func Sparse(f Func, W, analytic mat.Matrix, numChecks int, step float64, rng *rand.Rand) ([]Check, error) {
	if step <= 0 {
		step = DefaultStep
	}
	if numChecks < 0 {
		return nil, errors.Errorf("gradcheck: num checks must be >= 0 (got %d)", numChecks)
	}
	r, c := W.Dims()
	if r == 0 || c == 0 {
		return nil, errors.Errorf("gradcheck: weights are %dx%d", r, c)
	}
	if ar, ac := analytic.Dims(); ar != r || ac != c {
		return nil, errors.Errorf("gradcheck: analytic gradient is %dx%d, weights are %dx%d", ar, ac, r, c)
	}

	w := mat.DenseCopyOf(W)
	checks := make([]Check, 0, numChecks)
	for n := 0; n < numChecks; n++ {
		i, j := rng.Intn(r), rng.Intn(c)
		orig := w.At(i, j)

		var firstErr error
		num := fd.Derivative(func(v float64) float64 {
			w.Set(i, j, v)
			loss, err := f(w)
			if err != nil && firstErr == nil {
				firstErr = err
			}
			return loss
		}, orig, &fd.Settings{Formula: fd.Central, Step: step})
		w.Set(i, j, orig)
		if firstErr != nil {
			return nil, errors.Wrapf(firstErr, "gradcheck: entry (%d,%d)", i, j)
		}

		ana := analytic.At(i, j)
		checks = append(checks, Check{
			Row:       i,
			Col:       j,
			Numerical: num,
			Analytic:  ana,
			RelError:  RelError(num, ana),
		})
	}
	return checks, nil
}
