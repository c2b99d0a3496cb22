// Package preprocessing provides the feature transformers used to turn raw Ames rows
// into the design matrix of the price model.
//
//   - SimpleImputer: fills NaN cells of a numeric matrix with the column median
//   - CategoricalImputer: fills missing string cells with the column mode
//   - StandardScaler: removes the mean and scales to unit population variance
//   - OneHotEncoder: encodes string columns as 0/1 indicator blocks
//   - ColumnTransformer: composes the four over a declared dataset.Schema
//
// All transformers follow the Fit / Transform / FitTransform pattern, keep their learned
// state in exported fields so it survives gob persistence, and never refit in Transform.
package preprocessing

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/ezoic/houseprice/core/model"
	"github.com/ezoic/houseprice/core/parallel"
	hpErrors "github.com/ezoic/houseprice/pkg/errors"
)

// minScale is the standard deviation below which a column is treated as constant.
const minScale = 1e-8

// StandardScaler centers each numeric column on its training mean and divides by its
// training population standard deviation.
type StandardScaler struct {
	model.BaseEstimator

	// Mean is the per-column mean seen during Fit.
	Mean []float64

	// Scale is the per-column population standard deviation, or 1 for constant columns.
	Scale []float64

	NFeatures int
}

// NewStandardScaler creates an unfitted scaler.
//
// Example:
//
//	scaler := preprocessing.NewStandardScaler()
//	err := scaler.Fit(XTrain)
//	XScaled, err := scaler.Transform(XTest)
func NewStandardScaler() *StandardScaler {
	return &StandardScaler{}
}

// Fit learns the mean and population standard deviation of every column of X.
//
// Errors:
//   - ErrEmptyData: if X has no rows or no columns
func (s *StandardScaler) Fit(X mat.Matrix) (err error) {
	defer hpErrors.Recover(&err, "StandardScaler.Fit")
	rows, cols := X.Dims()
	if rows == 0 || cols == 0 {
		return hpErrors.NewModelError("StandardScaler.Fit", "empty data", hpErrors.ErrEmptyData)
	}

	mean := make([]float64, cols)
	scale := make([]float64, cols)
	column := make([]float64, rows)
	for j := range cols {
		mat.Col(column, j, X)
		m, variance := stat.PopMeanVariance(column, nil)
		mean[j] = m
		scale[j] = math.Sqrt(variance)
		if scale[j] < minScale {
			scale[j] = 1
		}
	}

	s.Mean, s.Scale, s.NFeatures = mean, scale, cols
	s.SetFitted()
	return nil
}

// Transform returns (X - Mean) / Scale.
//
// Errors:
//   - NotFittedError: if the scaler has not been fitted
//   - DimensionError: if X does not have NFeatures columns
func (s *StandardScaler) Transform(X mat.Matrix) (_ mat.Matrix, err error) {
	defer hpErrors.Recover(&err, "StandardScaler.Transform")
	if !s.IsFitted() {
		return nil, hpErrors.NewNotFittedError("StandardScaler", "Transform")
	}

	rows, cols := X.Dims()
	if cols != s.NFeatures {
		return nil, hpErrors.NewDimensionError("StandardScaler.Transform", s.NFeatures, cols, 1)
	}

	out := mat.NewDense(rows, cols, nil)
	parallel.ParallelizeWithThreshold(rows, parallel.DefaultThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			for j := range cols {
				out.Set(i, j, (X.At(i, j)-s.Mean[j])/s.Scale[j])
			}
		}
	})
	return out, nil
}

// FitTransform fits on X and returns X standardized.
func (s *StandardScaler) FitTransform(X mat.Matrix) (_ mat.Matrix, err error) {
	defer hpErrors.Recover(&err, "StandardScaler.FitTransform")
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

func (s *StandardScaler) String() string {
	if !s.IsFitted() {
		return "StandardScaler()"
	}
	return fmt.Sprintf("StandardScaler(n_features=%d)", s.NFeatures)
}
