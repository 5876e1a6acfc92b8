// Package ml defines the model fit/predict contract used by the backtesters
// and the in-process models that satisfy it.
package ml

import "errors"

var (
	// ErrSingleClass indicates a classification training set with only one label
	ErrSingleClass = errors.New("training labels contain a single class")

	// ErrNotFitted indicates prediction was requested before Fit
	ErrNotFitted = errors.New("model is not fitted")

	// ErrEmptyTrainingSet indicates Fit was called without rows
	ErrEmptyTrainingSet = errors.New("empty training set")

	// ErrDimensionMismatch indicates feature rows of inconsistent width
	ErrDimensionMismatch = errors.New("feature dimension mismatch")

	// ErrInvalidLabel indicates a classification label other than 0 or 1
	ErrInvalidLabel = errors.New("classification labels must be 0 or 1")

	// ErrNonFinite indicates a fit that produced NaN or infinite coefficients
	ErrNonFinite = errors.New("non-finite model coefficients")
)
