// Package dataset generates reproducible synthetic problems for the loss
// checks: a weight matrix, a feature batch and labels.
package dataset

import (
	"errors"
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Options configures a synthetic problem. With Bias set the last feature
// column is constant 1, so the last row of W acts as the bias.
type Options struct {
	NumTrain    int
	Dim         int
	NumClasses  int
	WeightScale float64
	Bias        bool
	Seed        int64
}

// Sample is a random weight matrix together with a labeled batch.
type Sample struct {
	Weights  *mat.Dense
	Features *mat.Dense
	Labels   []int
}

// Generate builds a reproducible random problem: standard normal features,
// uniform labels and normal weights scaled by WeightScale.
func Generate(opts Options) (Sample, error) {
	if opts.NumTrain <= 0 {
		return Sample{}, fmt.Errorf("dataset: num_train must be > 0 (got %d)", opts.NumTrain)
	}
	if opts.Dim <= 0 {
		return Sample{}, fmt.Errorf("dataset: dim must be > 0 (got %d)", opts.Dim)
	}
	if opts.NumClasses <= 0 {
		return Sample{}, fmt.Errorf("dataset: num_classes must be > 0 (got %d)", opts.NumClasses)
	}
	if opts.WeightScale < 0 {
		return Sample{}, errors.New("dataset: weight_scale must be >= 0")
	}
	if opts.Seed == 0 {
		opts.Seed = 42
	}
	rng := rand.New(rand.NewSource(opts.Seed))

	features := mat.NewDense(opts.NumTrain, opts.Dim, nil)
	features.Apply(func(_, j int, _ float64) float64 {
		if opts.Bias && j == opts.Dim-1 {
			return 1
		}
		return rng.NormFloat64()
	}, features)

	labels := make([]int, opts.NumTrain)
	for i := range labels {
		labels[i] = rng.Intn(opts.NumClasses)
	}

	weights := mat.NewDense(opts.Dim, opts.NumClasses, nil)
	weights.Apply(func(_, _ int, _ float64) float64 {
		return rng.NormFloat64() * opts.WeightScale
	}, weights)

	return Sample{Weights: weights, Features: features, Labels: labels}, nil
}
