// Package metrics provides the regression metrics used to evaluate the price model.
//
//   - MAE: mean absolute error
//   - MSE / RMSE: mean squared error and its square root
//   - R2Score: coefficient of determination
//   - MAPE: mean absolute percentage error
//
// Evaluate computes all of them at once into a Report. Inputs are *mat.VecDense;
// MSEMatrix and ColumnVector accept n×1 matrices such as the output of Predict.
package metrics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	hpErrors "github.com/ezoic/houseprice/pkg/errors"
)

func validate(op string, yTrue, yPred *mat.VecDense) (int, error) {
	if yTrue == nil || yPred == nil || yTrue.Len() == 0 {
		return 0, hpErrors.NewValueError(op, "empty vector")
	}
	n := yTrue.Len()
	if yPred.Len() != n {
		return 0, hpErrors.NewDimensionError(op, n, yPred.Len(), 0)
	}
	return n, nil
}

// MSE calculates the Mean Squared Error between true and predicted values.
//
// Errors:
//   - ValueError: if the input vectors are empty
//   - DimensionError: if yTrue and yPred have different lengths
//
// Example:
//
//	mse, err := metrics.MSE(yTrue, yPred)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("MSE: %.4f\n", mse)
func MSE(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := validate("MSE", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	// MSE = (1/n) * Σ(yTrue - yPred)²
	var sum float64
	for i := 0; i < n; i++ {
		diff := yTrue.AtVec(i) - yPred.AtVec(i)
		sum += diff * diff
	}
	return sum / float64(n), nil
}

// MSEMatrix calculates MSE for n×1 column matrices.
func MSEMatrix(yTrue, yPred mat.Matrix) (float64, error) {
	rTrue, cTrue := yTrue.Dims()
	rPred, cPred := yPred.Dims()

	if rTrue == 0 || cTrue == 0 {
		return 0, hpErrors.NewValueError("MSEMatrix", "empty matrix")
	}
	if rTrue != rPred || cTrue != cPred {
		return 0, hpErrors.NewDimensionError("MSEMatrix", rTrue, rPred, 0)
	}

	yTrueVec, err := ColumnVector(yTrue)
	if err != nil {
		return 0, err
	}
	yPredVec, err := ColumnVector(yPred)
	if err != nil {
		return 0, err
	}
	return MSE(yTrueVec, yPredVec)
}

// ColumnVector copies an n×1 matrix into a vector.
func ColumnVector(m mat.Matrix) (*mat.VecDense, error) {
	r, c := m.Dims()
	if c != 1 {
		return nil, hpErrors.NewValueError("ColumnVector", "must be a column vector (n×1 matrix)")
	}
	if r == 0 {
		return nil, hpErrors.NewValueError("ColumnVector", "empty matrix")
	}
	v := mat.NewVecDense(r, nil)
	for i := 0; i < r; i++ {
		v.SetVec(i, m.At(i, 0))
	}
	return v, nil
}

// RMSE is the square root of MSE, in the units of the target.
func RMSE(yTrue, yPred *mat.VecDense) (float64, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// MAE calculates the Mean Absolute Error between true and predicted values.
// MAE never exceeds RMSE for the same inputs.
//
// Example:
//
//	mae, err := metrics.MAE(yTrue, yPred)
//	fmt.Printf("MAE: %.4f\n", mae)
func MAE(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := validate("MAE", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	// MAE = (1/n) * Σ|yTrue - yPred|
	var sum float64
	for i := 0; i < n; i++ {
		sum += math.Abs(yTrue.AtVec(i) - yPred.AtVec(i))
	}
	return sum / float64(n), nil
}

// R2Score calculates the coefficient of determination 1 - RSS/TSS.
//
// When yTrue is constant R² is undefined: the result is 1 for perfect predictions and
// 0 otherwise, and an UndefinedMetricWarning is emitted.
func R2Score(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := validate("R2Score", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	var yMean float64
	for i := 0; i < n; i++ {
		yMean += yTrue.AtVec(i)
	}
	yMean /= float64(n)

	var tss, rss float64
	for i := 0; i < n; i++ {
		yTrueVal := yTrue.AtVec(i)
		yPredVal := yPred.AtVec(i)

		tss += (yTrueVal - yMean) * (yTrueVal - yMean)
		rss += (yTrueVal - yPredVal) * (yTrueVal - yPredVal)
	}

	if tss == 0 {
		result := 0.0
		if rss == 0 {
			result = 1.0
		}
		hpErrors.Warn(hpErrors.NewUndefinedMetricWarning("R2Score", "constant yTrue", result))
		return result, nil
	}

	return 1 - rss/tss, nil
}

// MAPE calculates the Mean Absolute Percentage Error, in percent. Samples whose true
// value is zero are skipped.
func MAPE(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := validate("MAPE", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	// MAPE = (100/n) * Σ|yTrue - yPred|/|yTrue|
	var sum float64
	validCount := 0
	for i := 0; i < n; i++ {
		yTrueVal := yTrue.AtVec(i)
		if yTrueVal != 0 {
			sum += math.Abs(yTrueVal-yPred.AtVec(i)) / math.Abs(yTrueVal)
			validCount++
		}
	}

	if validCount == 0 {
		return 0, hpErrors.NewValueError("MAPE", "all yTrue values are zero")
	}
	return (sum / float64(validCount)) * 100, nil
}

// Report holds every metric for one evaluation.
type Report struct {
	N    int
	MAE  float64
	MSE  float64
	RMSE float64
	R2   float64
	MAPE float64
}

// Evaluate computes MAE, MSE, RMSE, R² and MAPE for yPred against yTrue.
func Evaluate(yTrue, yPred *mat.VecDense) (Report, error) {
	n, err := validate("Evaluate", yTrue, yPred)
	if err != nil {
		return Report{}, err
	}

	rep := Report{N: n}
	if rep.MAE, err = MAE(yTrue, yPred); err != nil {
		return Report{}, err
	}
	if rep.MSE, err = MSE(yTrue, yPred); err != nil {
		return Report{}, err
	}
	rep.RMSE = math.Sqrt(rep.MSE)
	if rep.R2, err = R2Score(yTrue, yPred); err != nil {
		return Report{}, err
	}
	if rep.MAPE, err = MAPE(yTrue, yPred); err != nil {
		rep.MAPE = math.NaN()
	}
	return rep, nil
}

func (r Report) String() string {
	return fmt.Sprintf("n=%d MAE=%.4f RMSE=%.4f R2=%.4f MAPE=%.2f%%", r.N, r.MAE, r.RMSE, r.R2, r.MAPE)
}
