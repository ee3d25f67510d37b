package softmax

import "github.com/pkg/errors"

var (
	// ErrShapeMismatch reports incompatible dimensions between W, X and y.
	ErrShapeMismatch = errors.New("softmax: shape mismatch")
	// ErrInvalidLabel reports a label outside [0, C).
	ErrInvalidLabel = errors.New("softmax: invalid label")
	// ErrEmptyBatch reports a batch with no examples.
	ErrEmptyBatch = errors.New("softmax: empty batch")
	// ErrInvalidRegularization reports a negative or NaN regularization strength.
	ErrInvalidRegularization = errors.New("softmax: invalid regularization strength")
	// ErrNotANumber reports a non-finite loss, which happens only for
	// non-finite inputs.
	ErrNotANumber = errors.New("softmax: loss is not a finite number")
)
