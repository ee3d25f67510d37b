package softmax

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// LossNaive computes the loss and gradient one example at a time. It is the
// reference the vectorized form is checked against.
func LossNaive(W, X mat.Matrix, y []int, reg float64) (float64, *mat.Dense, error) {
	n, d, c, err := validate(W, X, y, reg)
	if err != nil {
		return 0, nil, err
	}

	dW := mat.NewDense(d, c, nil)
	scores := make([]float64, c)
	loss := 0.0
	for i := 0; i < n; i++ {
		for j := 0; j < c; j++ {
			s := 0.0
			for k := 0; k < d; k++ {
				s += X.At(i, k) * W.At(k, j)
			}
			scores[j] = s
		}
		correct := scores[y[i]]
		sum, max := expShift(scores)
		loss += math.Log(sum) - (correct - max)

		for j := 0; j < c; j++ {
			p := scores[j] / sum
			if j == y[i] {
				p--
			}
			for k := 0; k < d; k++ {
				dW.Set(k, j, dW.At(k, j)+p*X.At(i, k))
			}
		}
	}

	inv := 1 / float64(n)
	loss *= inv
	// With reg == 0 the weights are not touched: Σ W² may overflow.
	penalty := 0.0
	for k := 0; k < d; k++ {
		for j := 0; j < c; j++ {
			g := dW.At(k, j) * inv
			if reg != 0 {
				w := W.At(k, j)
				penalty += w * w
				g += 2 * reg * w
			}
			dW.Set(k, j, g)
		}
	}
	if reg != 0 {
		loss += reg * penalty
	}
	return finish(loss, dW)
}
