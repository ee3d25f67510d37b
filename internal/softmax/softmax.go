// Package softmax computes the softmax cross-entropy loss of a linear
// classifier and its gradient with respect to the weight matrix.
//
// Shapes follow the usual convention: W is DxC, X is NxD and y holds N class
// indices in [0, C). The loss is
//
//	mean_i( log Σ_j exp(f_ij) - f_iy_i ) + reg·Σ W²,  f = X·W
//
// and the gradient is Xᵀ·(P - Y)/N + 2·reg·W, where P holds the row-wise
// softmax probabilities and Y the one-hot labels. Both strategies subtract the
// row maximum before exponentiating.
//
// All functions are pure: inputs are only read and the gradient is freshly
// allocated, so concurrent calls on shared inputs are safe.
package softmax

import (
	"fmt"
	"math"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// LossFunc computes the loss and the gradient with respect to W.
type LossFunc func(W, X mat.Matrix, y []int, reg float64) (float64, *mat.Dense, error)

// Strategy selects how the loss is computed.
type Strategy int

const (
	// Naive uses explicit loops over examples, classes and features.
	Naive Strategy = iota
	// Vectorized uses whole-matrix operations.
	Vectorized
)

// Strategies lists every supported strategy.
var Strategies = []Strategy{Naive, Vectorized}

func (s Strategy) String() string {
	switch s {
	case Naive:
		return "naive"
	case Vectorized:
		return "vectorized"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// ParseStrategy maps a name such as "naive" or "vectorized" to a Strategy.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "naive", "loop":
		return Naive, nil
	case "vectorized", "vec":
		return Vectorized, nil
	}
	return 0, errors.Errorf("softmax: unknown strategy %q", name)
}

// Func returns the LossFunc implementing s, or nil for an unknown strategy.
func (s Strategy) Func() LossFunc {
	switch s {
	case Naive:
		return LossNaive
	case Vectorized:
		return LossVectorized
	}
	return nil
}

// Evaluate computes the loss and gradient with the given strategy.
func Evaluate(s Strategy, W, X mat.Matrix, y []int, reg float64) (float64, *mat.Dense, error) {
	f := s.Func()
	if f == nil {
		return 0, nil, errors.Errorf("softmax: unknown %v", s)
	}
	return f(W, X, y, reg)
}

// validate checks the inputs and returns N, D and C.
func validate(W, X mat.Matrix, y []int, reg float64) (n, d, c int, err error) {
	if W == nil || X == nil {
		return 0, 0, 0, errors.Wrap(ErrShapeMismatch, "nil matrix")
	}
	d, c = W.Dims()
	if d == 0 || c == 0 {
		return 0, 0, 0, errors.Wrapf(ErrShapeMismatch, "W is %dx%d", d, c)
	}
	n, xd := X.Dims()
	if n == 0 && len(y) == 0 {
		return 0, 0, 0, ErrEmptyBatch
	}
	if xd != d {
		return 0, 0, 0, errors.Wrapf(ErrShapeMismatch, "X has %d columns, W has %d rows", xd, d)
	}
	if len(y) != n {
		return 0, 0, 0, errors.Wrapf(ErrShapeMismatch, "y has %d labels, X has %d rows", len(y), n)
	}
	if reg < 0 || math.IsNaN(reg) {
		return 0, 0, 0, errors.Wrapf(ErrInvalidRegularization, "reg=%v", reg)
	}
	for i, label := range y {
		if label < 0 || label >= c {
			return 0, 0, 0, errors.Wrapf(ErrInvalidLabel, "y[%d]=%d with %d classes", i, label, c)
		}
	}
	return n, d, c, nil
}

func finish(loss float64, dW *mat.Dense) (float64, *mat.Dense, error) {
	if math.IsNaN(loss) || math.IsInf(loss, 0) {
		return 0, nil, errors.Wrapf(ErrNotANumber, "loss=%v", loss)
	}
	return loss, dW, nil
}
