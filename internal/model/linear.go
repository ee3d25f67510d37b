package model

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"softmax-forge/internal/softmax"
)

// Linear is a linear classifier scored with softmax cross-entropy.
type Linear struct {
	weights  *mat.Dense
	strategy softmax.Strategy
}

// NewLinear wraps a DxC weight matrix. The matrix is used as is; callers that
// update it must not do so while Loss or Predict is running.
func NewLinear(weights *mat.Dense, strategy softmax.Strategy) *Linear {
	return &Linear{weights: weights, strategy: strategy}
}

// Weights returns the underlying weight matrix.
func (m *Linear) Weights() *mat.Dense {
	return m.weights
}

// Strategy returns the strategy used by Loss.
func (m *Linear) Strategy() softmax.Strategy {
	return m.strategy
}

// Loss returns the regularized softmax loss on batch and its gradient.
func (m *Linear) Loss(batch Batch, reg float64) (float64, *mat.Dense, error) {
	return softmax.Evaluate(m.strategy, m.weights, batch.Inputs, batch.Labels, reg)
}

// Predict returns the highest scoring class for every row of inputs. Inputs
// whose width differs from the weights' rows fail with
// softmax.ErrShapeMismatch.
func (m *Linear) Predict(inputs mat.Matrix) ([]int, error) {
	if inputs == nil {
		return nil, errors.Wrap(softmax.ErrShapeMismatch, "nil inputs")
	}
	d, _ := m.weights.Dims()
	if _, xd := inputs.Dims(); xd != d {
		return nil, errors.Wrapf(softmax.ErrShapeMismatch, "inputs have %d columns, weights have %d rows", xd, d)
	}
	var scores mat.Dense
	scores.Mul(inputs, m.weights)
	n, _ := scores.Dims()
	out := make([]int, n)
	for i := range out {
		out[i] = floats.MaxIdx(scores.RawRowView(i))
	}
	return out, nil
}

// Accuracy returns the fraction of rows in batch predicted correctly.
func Accuracy(m Model, batch Batch) (float64, error) {
	if len(batch.Labels) == 0 {
		return 0, nil
	}
	preds, err := m.Predict(batch.Inputs)
	if err != nil {
		return 0, err
	}
	if len(preds) != len(batch.Labels) {
		return 0, errors.Wrapf(softmax.ErrShapeMismatch, "%d labels for %d rows", len(batch.Labels), len(preds))
	}
	correct := 0
	for i, p := range preds {
		if p == batch.Labels[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(batch.Labels)), nil
}
