// Package surrogate defines the regression model contract consumed by the
// infill layer, together with a Kriging reference implementation and input
// normalization.
package surrogate

import "errors"

// ErrNotFitted is returned when predictions are requested from a model that
// has not been trained yet.
var ErrNotFitted = errors.New("surrogate: model is not fitted")

// Model is a trained multi-output regression model. Outputs are laid out as
// objective columns followed by constraint columns; the split is applied by
// the caller, the model only knows its total output count.
type Model interface {
	// NumOutputs returns the number of output columns the model predicts.
	NumOutputs() int

	// PredictValues estimates the mean response for each row of x.
	PredictValues(x [][]float64) ([][]float64, error)

	// PredictVariances estimates the predictive variance for each row of x.
	// Not every backend supports batched variance queries, so callers must
	// be prepared to call this one row at a time.
	PredictVariances(x [][]float64) ([][]float64, error)
}

// Trainer is implemented by models that are (re)trained inside the
// optimization loop.
type Trainer interface {
	Fit(x, y [][]float64) error
}

// Normalization maps design vectors into the space the model was trained in.
type Normalization interface {
	Forward(x [][]float64) [][]float64
	Backward(x [][]float64) [][]float64
}
