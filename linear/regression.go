// Package linear provides the ordinary least squares model used to predict sale prices.
//
// LinearRegression fits y = Xβ + b without regularization. The problem is solved on
// centered data with a rank-revealing SVD, so rank-deficient designs (duplicated
// one-hot columns, a single training row) yield the minimum-norm solution instead of
// failing.
//
// Example usage:
//
//	lr := linear.NewLinearRegression()
//	if err := lr.Fit(X, y); err != nil {
//		log.Fatal(err)
//	}
//	predictions, err := lr.Predict(XTest)
package linear

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/ezoic/houseprice/core/model"
	"github.com/ezoic/houseprice/core/parallel"
	"github.com/ezoic/houseprice/metrics"
	hpErrors "github.com/ezoic/houseprice/pkg/errors"
	"github.com/ezoic/houseprice/pkg/log"
)

var _ model.Regressor = (*LinearRegression)(nil)

// LinearRegression is an ordinary least squares regressor with an intercept.
type LinearRegression struct {
	State     *model.StateManager // Public for gob encoding
	Coef      []float64           // one coefficient per feature
	Intercept float64
	NFeatures int
	Rank      int // effective rank of the centered design matrix
	logger    log.Logger
}

// NewLinearRegression creates an untrained model.
//
// Example:
//
//	lr := linear.NewLinearRegression()
//	err := lr.Fit(X, y)
//	predictions, err := lr.Predict(XTest)
func NewLinearRegression() *LinearRegression {
	lr := &LinearRegression{
		State: model.NewStateManager(),
	}
	lr.SetLogger(log.GetLoggerWithName("linear"))
	return lr
}

// SetLogger replaces the model's logger. Models decoded from disk have no logger until
// this is called.
func (lr *LinearRegression) SetLogger(l log.Logger) {
	if l == nil {
		lr.logger = nil
		return
	}
	lr.logger = l.With(
		log.ModelNameKey, "LinearRegression",
		log.ComponentKey, "linear",
	)
}

// IsFitted reports whether Fit has completed or a fitted model was loaded.
func (lr *LinearRegression) IsFitted() bool {
	return lr.State != nil && lr.State.IsFitted()
}

// Fit learns coefficients and intercept from X (n_samples × n_features) and the
// column vector y.
//
// X and y are centered, the centered system is solved by least squares through a thin
// SVD truncated at rank eps·max(n, p) relative to the largest singular value, and the
// intercept is mean(y) - mean(X)·β. A design with rank 0, for example a single row,
// gives β = 0 and intercept = mean(y).
//
// Errors:
//   - ErrEmptyData: if X is empty
//   - DimensionError: if X and y disagree on the number of samples
//   - ValueError: if y is not a column vector or a value is not finite
func (lr *LinearRegression) Fit(X, y mat.Matrix) (err error) {
	defer hpErrors.Recover(&err, "LinearRegression.Fit")

	startTime := time.Now()
	r, c := X.Dims()
	ry, cy := y.Dims()

	if lr.logger != nil {
		lr.logger.Info("Training started",
			log.OperationKey, log.OperationFit,
			log.PhaseKey, log.PhaseTraining,
			log.SamplesKey, r,
			log.FeaturesKey, c,
		)
	}

	if r == 0 || c == 0 {
		return hpErrors.NewModelError("LinearRegression.Fit", "empty data", hpErrors.ErrEmptyData)
	}
	if ry != r {
		return hpErrors.NewDimensionError("LinearRegression.Fit", r, ry, 0)
	}
	if cy != 1 {
		return hpErrors.NewValueError("LinearRegression.Fit", "y must be a column vector")
	}

	xMean := make([]float64, c)
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, X)
		if !allFinite(col) {
			return hpErrors.NewValueError("LinearRegression.Fit", fmt.Sprintf("feature %d contains NaN or Inf", j))
		}
		xMean[j] = stat.Mean(col, nil)
	}
	mat.Col(col, 0, y)
	if !allFinite(col) {
		return hpErrors.NewValueError("LinearRegression.Fit", "y contains NaN or Inf")
	}
	yMean := stat.Mean(col, nil)

	Xc := mat.NewDense(r, c, nil)
	yc := mat.NewDense(r, 1, nil)
	parallel.ParallelizeWithThreshold(r, parallel.DefaultThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			for j := 0; j < c; j++ {
				Xc.Set(i, j, X.At(i, j)-xMean[j])
			}
			yc.Set(i, 0, y.At(i, 0)-yMean)
		}
	})

	var svd mat.SVD
	if ok := svd.Factorize(Xc, mat.SVDThin); !ok {
		return hpErrors.NewModelError("LinearRegression.Fit", "SVD did not converge", hpErrors.ErrSingularMatrix)
	}

	rcond := epsilon * float64(max(r, c))
	rank := svd.Rank(rcond)

	coef := make([]float64, c)
	if rank > 0 {
		var beta mat.Dense
		svd.SolveTo(&beta, yc, rank)
		mat.Col(coef, 0, &beta)
	}

	lr.Coef = coef
	lr.Intercept = yMean - floats.Dot(xMean, coef)
	lr.NFeatures = c
	lr.Rank = rank

	if lr.State == nil {
		lr.State = model.NewStateManager()
	}
	lr.State.SetDimensions(c, r)
	lr.State.SetFitted()

	if lr.logger != nil {
		lr.logger.Info("Training completed",
			log.OperationKey, log.OperationFit,
			log.PhaseKey, log.PhaseTraining,
			log.DurationMsKey, time.Since(startTime).Milliseconds(),
			log.SamplesKey, r,
			log.FeaturesKey, c,
			log.RankKey, rank,
		)
		if rank < min(r-1, c) {
			lr.logger.Debug("Design matrix is rank deficient; using minimum-norm solution",
				log.RankKey, rank,
				log.FeaturesKey, c,
			)
		}
	}

	return nil
}

// Predict returns an n_samples × 1 matrix of X·β + intercept.
//
// Errors:
//   - NotFittedError: if the model is not fitted
//   - DimensionError: if X does not have NFeatures columns
func (lr *LinearRegression) Predict(X mat.Matrix) (_ mat.Matrix, err error) {
	defer hpErrors.Recover(&err, "LinearRegression.Predict")
	if !lr.IsFitted() {
		return nil, hpErrors.NewNotFittedError("LinearRegression", "Predict")
	}

	r, c := X.Dims()
	if c != lr.NFeatures {
		return nil, hpErrors.NewDimensionError("LinearRegression.Predict", lr.NFeatures, c, 1)
	}

	if lr.logger != nil {
		lr.logger.Debug("Prediction started",
			log.OperationKey, log.OperationPredict,
			log.PhaseKey, log.PhaseInference,
			log.SamplesKey, r,
		)
	}

	predictions := mat.NewDense(r, 1, nil)
	parallel.ParallelizeWithThreshold(r, parallel.DefaultThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			pred := lr.Intercept
			for j := 0; j < c; j++ {
				pred += X.At(i, j) * lr.Coef[j]
			}
			predictions.Set(i, 0, pred)
		}
	})

	if lr.logger != nil {
		lr.logger.Debug("Prediction completed",
			log.OperationKey, log.OperationPredict,
			log.PredsKey, r,
		)
	}

	return predictions, nil
}

// Coefficients returns a copy of the learned coefficients.
func (lr *LinearRegression) Coefficients() []float64 {
	if lr.Coef == nil {
		return nil
	}
	return append([]float64(nil), lr.Coef...)
}

// GetIntercept returns the learned intercept, or 0 before fitting.
func (lr *LinearRegression) GetIntercept() float64 {
	if !lr.IsFitted() {
		return 0
	}
	return lr.Intercept
}

// Score returns the coefficient of determination R² of the predictions for X against y.
func (lr *LinearRegression) Score(X, y mat.Matrix) (_ float64, err error) {
	defer hpErrors.Recover(&err, "LinearRegression.Score")
	if !lr.IsFitted() {
		return 0, hpErrors.NewNotFittedError("LinearRegression", "Score")
	}

	yPred, err := lr.Predict(X)
	if err != nil {
		return 0, err
	}

	r, _ := y.Dims()
	yTrue := mat.NewVecDense(r, nil)
	yHat := mat.NewVecDense(r, nil)
	for i := 0; i < r; i++ {
		yTrue.SetVec(i, y.At(i, 0))
		yHat.SetVec(i, yPred.At(i, 0))
	}
	return metrics.R2Score(yTrue, yHat)
}

func (lr *LinearRegression) String() string {
	if !lr.IsFitted() {
		return "LinearRegression()"
	}
	return fmt.Sprintf("LinearRegression(n_features=%d, rank=%d, intercept=%g)", lr.NFeatures, lr.Rank, lr.Intercept)
}

// epsilon is the float64 machine epsilon.
var epsilon = math.Nextafter(1, 2) - 1

func allFinite(values []float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
