package softmax

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"softmax-forge/internal/gradcheck"
)

func randomProblem(seed int64, n, d, c int, scale float64) (*mat.Dense, *mat.Dense, []int) {
	rng := rand.New(rand.NewSource(seed))
	W := mat.NewDense(d, c, nil)
	W.Apply(func(_, _ int, _ float64) float64 { return rng.NormFloat64() * scale }, W)
	X := mat.NewDense(n, d, nil)
	X.Apply(func(_, _ int, _ float64) float64 { return rng.NormFloat64() }, X)
	y := make([]int, n)
	for i := range y {
		y[i] = rng.Intn(c)
	}
	return W, X, y
}

func TestNaiveAndVectorizedAgree(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		rng := rand.New(rand.NewSource(seed))
		n, d, c := 1+rng.Intn(30), 1+rng.Intn(20), 1+rng.Intn(10)
		reg := rng.Float64()
		W, X, y := randomProblem(seed, n, d, c, 0.5)

		lossN, dWN, err := LossNaive(W, X, y, reg)
		require.NoError(t, err)
		lossV, dWV, err := LossVectorized(W, X, y, reg)
		require.NoError(t, err)

		require.InEpsilon(t, lossN, lossV, 1e-7, "seed=%d", seed)
		require.True(t, floats.EqualApprox(dWN.RawMatrix().Data, dWV.RawMatrix().Data, 1e-6), "seed=%d", seed)
	}
}

func TestGradientMatchesFiniteDifferences(t *testing.T) {
	W, X, y := randomProblem(7, 6, 4, 3, 0.3)
	const reg = 0.25
	d, c := W.Dims()

	for _, s := range Strategies {
		t.Run(s.String(), func(t *testing.T) {
			_, dW, err := Evaluate(s, W, X, y, reg)
			require.NoError(t, err)

			numerical, err := gradcheck.Numerical(func(w *mat.Dense) (float64, error) {
				loss, _, err := Evaluate(s, w, X, y, reg)
				return loss, err
			}, W, 1e-5)
			require.NoError(t, err)

			for i := 0; i < d; i++ {
				for j := 0; j < c; j++ {
					a, n := dW.At(i, j), numerical.At(i, j)
					if math.Abs(a-n) > 1e-8 && gradcheck.RelError(a, n) > 1e-5 {
						t.Fatalf("entry (%d,%d): analytic=%g numerical=%g", i, j, a, n)
					}
				}
			}
		})
	}
}

func TestRegularizationContribution(t *testing.T) {
	W, X, y := randomProblem(11, 8, 5, 4, 1)
	const reg = 0.7

	var sq mat.Dense
	sq.MulElem(W, W)
	penalty := mat.Sum(&sq)

	for _, s := range Strategies {
		loss0, dW0, err := Evaluate(s, W, X, y, 0)
		require.NoError(t, err)
		lossR, dWR, err := Evaluate(s, W, X, y, reg)
		require.NoError(t, err)

		require.InDelta(t, reg*penalty, lossR-loss0, 1e-10, s.String())

		var diff, want mat.Dense
		diff.Sub(dWR, dW0)
		want.Scale(2*reg, W)
		require.True(t, mat.EqualApprox(&diff, &want, 1e-12), s.String())
	}
}

func TestZeroRegularizationAddsNothing(t *testing.T) {
	W := mat.NewDense(2, 2, []float64{3, -2, 5, 1})
	X := mat.NewDense(1, 2, []float64{0, 0})
	y := []int{1}
	for _, s := range Strategies {
		loss, dW, err := Evaluate(s, W, X, y, 0)
		require.NoError(t, err)
		// Zero features give uniform scores: loss is log(C), gradient is zero.
		require.InDelta(t, math.Log(2), loss, 1e-15)
		require.Equal(t, []float64{0, 0, 0, 0}, dW.RawMatrix().Data)
	}
}

func TestConcurrentCallsOnSharedInputs(t *testing.T) {
	W, X, y := randomProblem(5, 16, 6, 4, 0.2)
	want, _, err := LossVectorized(W, X, y, 0.1)
	require.NoError(t, err)

	results := make(chan float64, 8)
	for i := 0; i < cap(results); i++ {
		s := Strategies[i%len(Strategies)]
		go func() {
			loss, _, err := Evaluate(s, W, X, y, 0.1)
			if err != nil {
				loss = math.NaN()
			}
			results <- loss
		}()
	}
	for i := 0; i < cap(results); i++ {
		require.InEpsilon(t, want, <-results, 1e-7)
	}
}

func TestZeroRegularizationIgnoresHugeWeights(t *testing.T) {
	// Σ W² overflows, but the scores are [1, 0].
	W := mat.NewDense(2, 2, []float64{1e200, 0, 0, 1})
	X := mat.NewDense(1, 2, []float64{1e-200, 0})
	y := []int{0}
	for _, s := range Strategies {
		loss, dW, err := Evaluate(s, W, X, y, 0)
		require.NoError(t, err, s.String())
		require.InDelta(t, 0.3133, loss, 1e-4, s.String())
		for _, v := range dW.RawMatrix().Data {
			require.False(t, math.IsNaN(v) || math.IsInf(v, 0), s.String())
		}
	}
}
