package softmax

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// LossVectorized computes the same result as LossNaive with whole-matrix
// operations instead of per-example loops.
func LossVectorized(W, X mat.Matrix, y []int, reg float64) (float64, *mat.Dense, error) {
	n, _, c, err := validate(W, X, y, reg)
	if err != nil {
		return 0, nil, err
	}
	labels := oneHot(y, c)

	var scores mat.Dense
	scores.Mul(X, W)

	// Σ_i f_iy_i, taken before scores is overwritten.
	var picked mat.Dense
	picked.MulElem(&scores, labels)
	correct := mat.Sum(&picked)

	maxes := rowMaxes(&scores)
	scores.Apply(func(i, _ int, v float64) float64 {
		return math.Exp(v - maxes[i])
	}, &scores)

	ones := make([]float64, c)
	floats.AddConst(1, ones)
	var sums mat.VecDense
	sums.MulVec(&scores, mat.NewVecDense(c, ones))

	var logSums mat.Dense
	logSums.Apply(func(_, _ int, v float64) float64 {
		return math.Log(v)
	}, &sums)
	loss := (mat.Sum(&logSums) + floats.Sum(maxes) - correct) / float64(n)

	if reg != 0 {
		var sq mat.Dense
		sq.MulElem(W, W)
		loss += reg * mat.Sum(&sq)
	}

	// scores becomes P - Y.
	scores.Apply(func(i, _ int, v float64) float64 {
		return v / sums.AtVec(i)
	}, &scores)
	scores.Sub(&scores, labels)

	var dW mat.Dense
	dW.Mul(X.T(), &scores)
	dW.Scale(1/float64(n), &dW)
	if reg != 0 {
		var regGrad mat.Dense
		regGrad.Scale(2*reg, W)
		dW.Add(&dW, &regGrad)
	}

	return finish(loss, &dW)
}

// oneHot returns the NxC indicator matrix of labels.
func oneHot(y []int, c int) *mat.Dense {
	m := mat.NewDense(len(y), c, nil)
	for i, label := range y {
		m.Set(i, label, 1)
	}
	return m
}
