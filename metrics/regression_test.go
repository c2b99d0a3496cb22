package metrics

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	hpErrors "github.com/ezoic/houseprice/pkg/errors"
)

func TestMetricsValidation(t *testing.T) {
	empty := &mat.VecDense{}
	a := mat.NewVecDense(2, []float64{1, 2})
	b := mat.NewVecDense(3, []float64{1, 2, 3})

	fns := map[string]func(x, y *mat.VecDense) (float64, error){
		"MSE": MSE, "RMSE": RMSE, "MAE": MAE, "R2Score": R2Score, "MAPE": MAPE,
	}
	for name, fn := range fns {
		t.Run(name, func(t *testing.T) {
			_, err := fn(empty, empty)
			var ve *hpErrors.ValueError
			assert.ErrorAs(t, err, &ve)

			_, err = fn(a, b)
			var de *hpErrors.DimensionError
			assert.ErrorAs(t, err, &de)
		})
	}

	_, err := Evaluate(a, b)
	assert.Error(t, err)
}

func TestRMSENeverBelowMAE(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for trial := 0; trial < 50; trial++ {
		n := 1 + rng.IntN(40)
		yTrue := mat.NewVecDense(n, nil)
		yPred := mat.NewVecDense(n, nil)
		for i := 0; i < n; i++ {
			yTrue.SetVec(i, 50000+rng.Float64()*400000)
			yPred.SetVec(i, 50000+rng.Float64()*400000)
		}

		rep, err := Evaluate(yTrue, yPred)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, rep.MAE, 0.0)
		assert.False(t, math.IsInf(rep.RMSE, 0) || math.IsNaN(rep.RMSE))
		assert.GreaterOrEqual(t, rep.RMSE+1e-9, rep.MAE)
	}
}

func TestR2ScoreConstantTarget(t *testing.T) {
	var warnings []error
	hpErrors.SetWarningHandler(func(w error) { warnings = append(warnings, w) })
	t.Cleanup(func() { hpErrors.SetWarningHandler(nil) })

	y := mat.NewVecDense(3, []float64{5, 5, 5})

	r2, err := R2Score(y, mat.NewVecDense(3, []float64{5, 5, 5}))
	require.NoError(t, err)
	assert.Equal(t, 1.0, r2)

	r2, err = R2Score(y, mat.NewVecDense(3, []float64{4, 5, 6}))
	require.NoError(t, err)
	assert.Equal(t, 0.0, r2)

	require.Len(t, warnings, 2)
	var w *hpErrors.UndefinedMetricWarning
	assert.ErrorAs(t, warnings[1], &w)
}

func TestMSEMatrixRequiresColumn(t *testing.T) {
	_, err := MSEMatrix(mat.NewDense(2, 2, nil), mat.NewDense(2, 2, nil))
	assert.Error(t, err)

	_, err = MSEMatrix(mat.NewDense(2, 1, nil), mat.NewDense(3, 1, nil))
	var de *hpErrors.DimensionError
	assert.ErrorAs(t, err, &de)
}

func TestColumnVector(t *testing.T) {
	v, err := ColumnVector(mat.NewDense(3, 1, []float64{1, 2, 3}))
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, v.RawVector().Data)

	_, err = ColumnVector(mat.NewDense(1, 2, []float64{1, 2}))
	assert.Error(t, err)
}

func TestEvaluateZeroTargetsSkipMAPE(t *testing.T) {
	hpErrors.SetWarningHandler(nil)
	rep, err := Evaluate(mat.NewVecDense(2, []float64{0, 0}), mat.NewVecDense(2, []float64{1, -1}))
	require.NoError(t, err)
	assert.True(t, math.IsNaN(rep.MAPE))
	assert.Equal(t, 1.0, rep.MAE)
	assert.Equal(t, 1.0, rep.RMSE)
}
