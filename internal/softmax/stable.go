package softmax

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// expShift replaces row with exp(row - max(row)) and returns the sum of the
// exponentials together with the subtracted maximum. row must not be empty.
func expShift(row []float64) (sum, max float64) {
	max = floats.Max(row)
	floats.AddConst(-max, row)
	for i, v := range row {
		row[i] = math.Exp(v)
	}
	return floats.Sum(row), max
}

// rowMaxes returns the largest entry of every row of m.
func rowMaxes(m *mat.Dense) []float64 {
	r, _ := m.Dims()
	out := make([]float64, r)
	for i := range out {
		out[i] = floats.Max(m.RawRowView(i))
	}
	return out
}

// Softmax returns the probability distribution for a row of scores.
// Shifting every score by the same constant leaves the result unchanged.
func Softmax(scores []float64) []float64 {
	out := make([]float64, len(scores))
	if len(scores) == 0 {
		return out
	}
	copy(out, scores)
	sum, _ := expShift(out)
	floats.Scale(1/sum, out)
	return out
}
