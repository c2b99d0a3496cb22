package preprocessing_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	hpErrors "github.com/ezoic/houseprice/pkg/errors"
	"github.com/ezoic/houseprice/preprocessing"
)

func TestSimpleImputerMedian(t *testing.T) {
	nan := math.NaN()
	// Lot Area with one missing value; Garage Cars with an even count of observations.
	X := mat.NewDense(5, 2, []float64{
		8450, 2,
		9600, nan,
		11250, 2,
		nan, 3,
		14260, 1,
	})

	imp := preprocessing.NewSimpleImputer()
	out, err := imp.FitTransform(X)
	require.NoError(t, err)

	assert.Equal(t, []float64{10425, 2}, imp.Statistics)
	assert.Equal(t, 10425.0, out.At(3, 0))
	assert.Equal(t, 2.0, out.At(1, 1))
	assert.Equal(t, 14260.0, out.At(4, 0))
	assert.True(t, math.IsNaN(X.At(3, 0)), "input is not modified")
}

func TestSimpleImputerAllMissingColumnWarns(t *testing.T) {
	var warnings []error
	hpErrors.SetWarningHandler(func(w error) { warnings = append(warnings, w) })
	t.Cleanup(func() { hpErrors.SetWarningHandler(nil) })

	nan := math.NaN()
	imp := preprocessing.NewSimpleImputer()
	imp.FeatureNames = []string{"Lot Area", "Pool Area"}
	out, err := imp.FitTransform(mat.NewDense(2, 2, []float64{1, nan, 3, nan}))
	require.NoError(t, err)

	assert.Equal(t, 0.0, out.At(0, 1))
	require.Len(t, warnings, 1)
	var w *hpErrors.EmptyColumnWarning
	require.ErrorAs(t, warnings[0], &w)
	assert.Equal(t, "Pool Area", w.Column)
	assert.Equal(t, preprocessing.StrategyMedian, w.Strategy)
}

func TestSimpleImputerErrors(t *testing.T) {
	imp := preprocessing.NewSimpleImputer()
	_, err := imp.Transform(mat.NewDense(1, 1, []float64{1}))
	var nf *hpErrors.NotFittedError
	assert.ErrorAs(t, err, &nf)

	assert.ErrorIs(t, imp.Fit(&mat.Dense{}), hpErrors.ErrEmptyData)

	require.NoError(t, imp.Fit(mat.NewDense(1, 2, []float64{1, 2})))
	_, err = imp.Transform(mat.NewDense(1, 1, []float64{1}))
	var de *hpErrors.DimensionError
	assert.ErrorAs(t, err, &de)
}

func TestCategoricalImputer(t *testing.T) {
	data := [][]string{
		{"Pave", "NA"},
		{"Grvl", "Gd"},
		{"", "TA"},
		{"Grvl", "Gd"},
		{"Pave", "None"},
	}

	imp := preprocessing.NewCategoricalImputer()
	out, err := imp.FitTransform(data)
	require.NoError(t, err)

	// Pave and Grvl tie; the lexicographically smaller wins.
	assert.Equal(t, []string{"Grvl", "Gd"}, imp.Statistics)
	assert.Equal(t, []string{"Grvl", "TA"}, out[2])
	assert.Equal(t, []string{"Pave", "Gd"}, out[0])
	assert.Equal(t, "NA", data[0][1], "input is not modified")
}

func TestCategoricalImputerAllMissing(t *testing.T) {
	hpErrors.SetWarningHandler(func(error) {})
	t.Cleanup(func() { hpErrors.SetWarningHandler(nil) })

	imp := preprocessing.NewCategoricalImputer()
	out, err := imp.FitTransform([][]string{{"NA"}, {""}})
	require.NoError(t, err)
	assert.Equal(t, []string{""}, imp.Statistics)
	assert.Equal(t, "", out[0][0])
}

func TestCategoricalImputerErrors(t *testing.T) {
	imp := preprocessing.NewCategoricalImputer()
	_, err := imp.Transform([][]string{{"a"}})
	assert.Error(t, err)

	assert.Error(t, imp.Fit(nil))
	assert.Error(t, imp.Fit([][]string{{"a", "b"}, {"c"}}))
}
