package model

import "gonum.org/v1/gonum/mat"

// Transformer learns a transformation from X and applies it.
type Transformer interface {
	Fit(X mat.Matrix) error
	Transform(X mat.Matrix) (mat.Matrix, error)
	FitTransform(X mat.Matrix) (mat.Matrix, error)
}

// Fitter is a supervised model that learns from X and y.
type Fitter interface {
	Fit(X, y mat.Matrix) error
}

// Predictor produces one prediction per row of X.
type Predictor interface {
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Regressor is a fitted-state-aware supervised regression model.
type Regressor interface {
	Fitter
	Predictor
	IsFitted() bool
}
