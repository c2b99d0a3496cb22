package preprocessing

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/houseprice/core/model"
	"github.com/ezoic/houseprice/core/parallel"
	"github.com/ezoic/houseprice/dataset"
	hpErrors "github.com/ezoic/houseprice/pkg/errors"
)

// Strategy names reported in EmptyColumnWarning.
const (
	StrategyMedian       = "median"
	StrategyMostFrequent = "most_frequent"
)

// SimpleImputer replaces NaN cells of a numeric matrix with the column median.
type SimpleImputer struct {
	model.BaseEstimator

	// FillValue is used for columns with no observed value at fit time.
	FillValue float64

	// FeatureNames names the columns in warnings. Optional.
	FeatureNames []string

	// Statistics holds the median learned for each column.
	Statistics []float64

	NFeatures int
}

// NewSimpleImputer creates an unfitted median imputer.
//
// Example:
//
//	imp := preprocessing.NewSimpleImputer()
//	filled, err := imp.FitTransform(X)
func NewSimpleImputer() *SimpleImputer {
	return &SimpleImputer{}
}

// Fit learns the median of the non-NaN cells of each column of X. A column with no
// observed value falls back to FillValue and emits an EmptyColumnWarning.
func (s *SimpleImputer) Fit(X mat.Matrix) (err error) {
	defer hpErrors.Recover(&err, "SimpleImputer.Fit")
	rows, cols := X.Dims()
	if rows == 0 || cols == 0 {
		return hpErrors.NewModelError("SimpleImputer.Fit", "empty data", hpErrors.ErrEmptyData)
	}

	stats := make([]float64, cols)
	observed := make([]float64, 0, rows)
	for j := range cols {
		observed = observed[:0]
		for i := range rows {
			if v := X.At(i, j); !math.IsNaN(v) {
				observed = append(observed, v)
			}
		}
		if len(observed) == 0 {
			stats[j] = s.FillValue
			hpErrors.Warn(hpErrors.NewEmptyColumnWarning(featureName(s.FeatureNames, j), StrategyMedian,
				fmt.Sprintf("%g", s.FillValue)))
			continue
		}
		stats[j] = median(observed)
	}

	s.Statistics, s.NFeatures = stats, cols
	s.SetFitted()
	return nil
}

// Transform returns a copy of X with every NaN replaced by its column statistic.
func (s *SimpleImputer) Transform(X mat.Matrix) (_ mat.Matrix, err error) {
	defer hpErrors.Recover(&err, "SimpleImputer.Transform")
	if !s.IsFitted() {
		return nil, hpErrors.NewNotFittedError("SimpleImputer", "Transform")
	}

	r, c := X.Dims()
	if c != s.NFeatures {
		return nil, hpErrors.NewDimensionError("SimpleImputer.Transform", s.NFeatures, c, 1)
	}

	result := mat.NewDense(r, c, nil)
	parallel.ParallelizeWithThreshold(r, parallel.DefaultThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			for j := 0; j < c; j++ {
				v := X.At(i, j)
				if math.IsNaN(v) {
					v = s.Statistics[j]
				}
				result.Set(i, j, v)
			}
		}
	})
	return result, nil
}

// FitTransform fits the imputer on X and returns X filled.
func (s *SimpleImputer) FitTransform(X mat.Matrix) (_ mat.Matrix, err error) {
	defer hpErrors.Recover(&err, "SimpleImputer.FitTransform")
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// CategoricalImputer replaces missing string cells with a per-column statistic.
// A cell is missing when dataset.IsMissing reports it.
type CategoricalImputer struct {
	model.BaseEstimator

	// FillValue is used for columns with no observed value at fit time.
	FillValue string

	FeatureNames []string
	Statistics   []string
	NFeatures    int
}

// NewCategoricalImputer creates a most-frequent imputer for string columns.
func NewCategoricalImputer() *CategoricalImputer {
	return &CategoricalImputer{}
}

// Fit learns the most frequent observed value of each column, ties going to the
// lexicographically smallest value.
func (c *CategoricalImputer) Fit(data [][]string) (err error) {
	defer hpErrors.Recover(&err, "CategoricalImputer.Fit")
	if len(data) == 0 || len(data[0]) == 0 {
		return hpErrors.NewModelError("CategoricalImputer.Fit", "empty data", hpErrors.ErrEmptyData)
	}

	nFeatures := len(data[0])
	for i, row := range data {
		if len(row) != nFeatures {
			return hpErrors.NewDimensionError(fmt.Sprintf("CategoricalImputer.Fit row %d", i), nFeatures, len(row), 1)
		}
	}

	c.NFeatures = nFeatures
	c.Statistics = make([]string, nFeatures)

	observed := make([]string, 0, len(data))
	for j := 0; j < nFeatures; j++ {
		observed = observed[:0]
		for _, row := range data {
			if !dataset.IsMissing(row[j]) {
				observed = append(observed, row[j])
			}
		}
		if len(observed) == 0 {
			c.Statistics[j] = c.FillValue
			hpErrors.Warn(hpErrors.NewEmptyColumnWarning(featureName(c.FeatureNames, j), StrategyMostFrequent,
				fmt.Sprintf("%q", c.FillValue)))
			continue
		}
		c.Statistics[j] = modeString(observed)
	}

	c.SetFitted()
	return nil
}

// Transform returns a copy of data with missing cells filled.
func (c *CategoricalImputer) Transform(data [][]string) (_ [][]string, err error) {
	defer hpErrors.Recover(&err, "CategoricalImputer.Transform")
	if !c.IsFitted() {
		return nil, hpErrors.NewNotFittedError("CategoricalImputer", "Transform")
	}

	out := make([][]string, len(data))
	for i, row := range data {
		if len(row) != c.NFeatures {
			return nil, hpErrors.NewDimensionError("CategoricalImputer.Transform", c.NFeatures, len(row), 1)
		}
		filled := make([]string, len(row))
		for j, v := range row {
			if dataset.IsMissing(v) {
				v = c.Statistics[j]
			}
			filled[j] = v
		}
		out[i] = filled
	}
	return out, nil
}

// FitTransform fits the imputer on data and returns data filled.
func (c *CategoricalImputer) FitTransform(data [][]string) (_ [][]string, err error) {
	defer hpErrors.Recover(&err, "CategoricalImputer.FitTransform")
	if err := c.Fit(data); err != nil {
		return nil, err
	}
	return c.Transform(data)
}
