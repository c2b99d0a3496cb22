package preprocessing

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/houseprice/core/model"
	hpErrors "github.com/ezoic/houseprice/pkg/errors"
)

// OneHotEncoder encodes string columns as blocks of 0/1 indicator columns, one block per
// input column and one indicator per category seen during Fit. Categories not seen
// during Fit encode to an all-zero block.
type OneHotEncoder struct {
	model.BaseEstimator

	// Categories holds the sorted vocabulary of each input column.
	Categories [][]string

	// CategoryToIdx maps category to position within its block.
	CategoryToIdx []map[string]int

	NFeatures int

	// NOutputs is the total number of indicator columns.
	NOutputs int
}

// NewOneHotEncoder creates an unfitted OneHotEncoder.
//
// Example:
//
//	encoder := preprocessing.NewOneHotEncoder()
//	err := encoder.Fit(data)
//	encoded, err := encoder.Transform(data)
func NewOneHotEncoder() *OneHotEncoder {
	return &OneHotEncoder{}
}

// Fit learns the sorted vocabulary of each column of data (n_samples × n_features).
func (e *OneHotEncoder) Fit(data [][]string) (err error) {
	defer hpErrors.Recover(&err, "OneHotEncoder.Fit")
	if len(data) == 0 {
		return hpErrors.NewModelError("OneHotEncoder.Fit", "empty data", hpErrors.ErrEmptyData)
	}
	if len(data[0]) == 0 {
		return hpErrors.NewModelError("OneHotEncoder.Fit", "empty features", hpErrors.ErrEmptyData)
	}

	nFeatures := len(data[0])
	for _, row := range data {
		if len(row) != nFeatures {
			return hpErrors.NewDimensionError("OneHotEncoder.Fit", nFeatures, len(row), 1)
		}
	}

	e.NFeatures = nFeatures
	e.Categories = make([][]string, nFeatures)
	e.CategoryToIdx = make([]map[string]int, nFeatures)
	e.NOutputs = 0

	for j := 0; j < nFeatures; j++ {
		seen := make(map[string]bool)
		for _, row := range data {
			seen[row[j]] = true
		}

		categories := make([]string, 0, len(seen))
		for category := range seen {
			categories = append(categories, category)
		}
		sort.Strings(categories)

		index := make(map[string]int, len(categories))
		for idx, category := range categories {
			index[category] = idx
		}

		e.Categories[j] = categories
		e.CategoryToIdx[j] = index
		e.NOutputs += len(categories)
	}

	e.SetFitted()
	return nil
}

// Transform encodes data with the fitted vocabulary.
func (e *OneHotEncoder) Transform(data [][]string) (_ mat.Matrix, err error) {
	defer hpErrors.Recover(&err, "OneHotEncoder.Transform")
	if !e.IsFitted() {
		return nil, hpErrors.NewNotFittedError("OneHotEncoder", "Transform")
	}

	if len(data) == 0 {
		return &mat.Dense{}, nil
	}

	result := mat.NewDense(len(data), e.NOutputs, nil)
	for i, row := range data {
		if len(row) != e.NFeatures {
			return nil, hpErrors.NewDimensionError("OneHotEncoder.Transform", e.NFeatures, len(row), 1)
		}
		offset := 0
		for j, category := range row {
			if idx, ok := e.CategoryToIdx[j][category]; ok {
				result.Set(i, offset+idx, 1.0)
			}
			offset += len(e.Categories[j])
		}
	}

	return result, nil
}

// FitTransform fits the encoder on data and returns data encoded.
func (e *OneHotEncoder) FitTransform(data [][]string) (_ mat.Matrix, err error) {
	defer hpErrors.Recover(&err, "OneHotEncoder.FitTransform")
	if err := e.Fit(data); err != nil {
		return nil, err
	}
	return e.Transform(data)
}

// GetFeatureNamesOut returns "<input>_<category>" for every output column. Inputs without
// a name in inputFeatures are called x0, x1, ...
//
// For inputs ["animal", "size"] the result looks like
// ["animal_cat", "animal_dog", "size_large", "size_small"].
func (e *OneHotEncoder) GetFeatureNamesOut(inputFeatures []string) []string {
	if !e.IsFitted() {
		return nil
	}

	names := make([]string, 0, e.NOutputs)
	for j, categories := range e.Categories {
		input := featureName(inputFeatures, j)
		for _, category := range categories {
			names = append(names, fmt.Sprintf("%s_%s", input, category))
		}
	}
	return names
}
