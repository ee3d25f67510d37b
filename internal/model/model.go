package model

import (
	"gonum.org/v1/gonum/mat"
)

// Batch represents a minibatch of features and labels.
type Batch struct {
	Inputs *mat.Dense
	Labels []int
}

// Model defines the minimal functionality an optimizer needs from a classifier.
type Model interface {
	Loss(batch Batch, reg float64) (float64, *mat.Dense, error)
	Predict(inputs mat.Matrix) ([]int, error)
}
