package models

import "errors"

var (
	ErrNotFitted    = errors.New("model is not fitted")
	ErrFeatureCount = errors.New("feature count does not match the model")
)

// Classifier is a multi-class model over dense float features. Labels are
// integer codes in [0, k). Predictions fail with ErrFeatureCount when a row
// is not NumFeatures wide.
type Classifier interface {
	Fit(X [][]float64, y []int) error
	Predict(X [][]float64) ([]int, error)
	PredictProba(X [][]float64) ([][]float64, error)
	NumFeatures() int
	Name() string
}
